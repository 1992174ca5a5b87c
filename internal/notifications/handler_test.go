package notifications

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/leslie0605/magic-prep-backend/internal/documents"
)

func TestNotificationsEndpoint(t *testing.T) {
	gin.SetMode(gin.TestMode)

	repo := documents.NewMemoryRepo()
	now := time.Now().UTC()
	if err := repo.Upsert(context.Background(), documents.Document{
		ID:               "doc-1",
		StudentID:        "student-1",
		Status:           documents.StatusCompleted,
		Title:            "CV/Resume",
		Type:             "cv",
		FeedbackComments: "Looks ready to submit.",
		CreatedAt:        now,
		UpdatedAt:        now,
	}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	r := gin.New()
	h := &Handler{Projector: &Projector{Repo: repo}}
	h.RegisterRoutes(r.Group("/api/v1"))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/documents/notifications/student-1", nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}

	var payload struct {
		Success       bool           `json:"success"`
		Notifications []Notification `json:"notifications"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !payload.Success {
		t.Fatalf("expected success=true")
	}
	if len(payload.Notifications) != 1 {
		t.Fatalf("expected 1 notification, got %d", len(payload.Notifications))
	}
	if payload.Notifications[0].FeedbackComments != "Looks ready to submit." {
		t.Fatalf("expected feedback comments carried, got %q", payload.Notifications[0].FeedbackComments)
	}
}
