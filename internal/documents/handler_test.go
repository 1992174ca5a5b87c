package documents_test

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/leslie0605/magic-prep-backend/internal/bootstrap"
	"github.com/leslie0605/magic-prep-backend/internal/documents"
	"github.com/leslie0605/magic-prep-backend/internal/shared/config"
)

func buildTestApp(t *testing.T) *bootstrap.App {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := config.Config{
		Port:            "0",
		Env:             "dev",
		CORSAllowOrigin: []string{"http://localhost:5173"},
		ObjectStoreType: "local",
		LocalStoreDir:   t.TempDir(),
	}
	app, err := bootstrap.Build(cfg)
	if err != nil {
		t.Fatalf("bootstrap build: %v", err)
	}
	return app
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, payload any) *httptest.ResponseRecorder {
	t.Helper()
	var body *bytes.Buffer
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("marshal payload: %v", err)
		}
		body = bytes.NewBuffer(raw)
	} else {
		body = &bytes.Buffer{}
	}
	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	return resp
}

func seedDoc(t *testing.T, app *bootstrap.App, doc documents.Document) {
	t.Helper()
	if doc.Status == "" {
		doc.Status = documents.StatusPending
	}
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = time.Now().UTC()
		doc.UpdatedAt = doc.CreatedAt
	}
	if err := app.DocumentsRepo.Upsert(context.Background(), doc); err != nil {
		t.Fatalf("seed document: %v", err)
	}
}

func TestStudentSubmissionFlow(t *testing.T) {
	app := buildTestApp(t)

	// Place the submitted file in the store first, as the intake side does.
	content := strings.Repeat("Research experience in computational biology. ", 4)
	key, _, _, err := app.Store.Save(context.Background(), "student-1", "essay.txt", strings.NewReader(content))
	if err != nil {
		t.Fatalf("store save: %v", err)
	}

	resp := doJSON(t, app.Router, http.MethodPost, "/api/v1/documents/student-submission", map[string]any{
		"documentId":   "doc-1",
		"documentName": "essay.txt",
		"documentType": "sop",
		"studentId":    "student-1",
		"studentName":  "Jordan",
		"fileUrl":      "/api/v1/files/" + key,
	})
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", resp.Code, resp.Body.String())
	}

	var created struct {
		Success  bool                       `json:"success"`
		Document documents.DocumentResponse `json:"document"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !created.Success {
		t.Fatalf("expected success=true")
	}
	if created.Document.Title != "essay.txt" {
		t.Fatalf("expected title from document name, got %q", created.Document.Title)
	}
	if created.Document.Type != "Statement of Purpose" {
		t.Fatalf("expected display type, got %q", created.Document.Type)
	}
	if created.Document.Status != documents.StatusPending {
		t.Fatalf("expected pending, got %q", created.Document.Status)
	}
	if created.Document.AIScore == nil {
		t.Fatalf("expected a review score")
	}

	respGet := doJSON(t, app.Router, http.MethodGet, "/api/v1/documents/student/student-1", nil)
	if respGet.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", respGet.Code)
	}
	var listed []documents.DocumentResponse
	if err := json.NewDecoder(respGet.Body).Decode(&listed); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(listed) != 1 || listed[0].ID != "doc-1" {
		t.Fatalf("expected the submitted document, got %+v", listed)
	}
}

func TestStudentSubmissionValidation(t *testing.T) {
	app := buildTestApp(t)

	resp := doJSON(t, app.Router, http.MethodPost, "/api/v1/documents/student-submission", map[string]any{
		"documentType": "sop",
	})
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}

	// studentName is required, not defaulted.
	resp = doJSON(t, app.Router, http.MethodPost, "/api/v1/documents/student-submission", map[string]any{
		"documentId":   "doc-1",
		"documentName": "essay.txt",
		"documentType": "sop",
		"studentId":    "student-1",
		"fileUrl":      "/api/v1/files/student-1/essay.txt",
	})
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing studentName, got %d", resp.Code)
	}
}

func TestSaveEditsEndpoint(t *testing.T) {
	app := buildTestApp(t)
	seedDoc(t, app, documents.Document{ID: "doc-1", StudentID: "student-1"})

	resp := doJSON(t, app.Router, http.MethodPost, "/api/v1/documents/doc-1/edits", map[string]any{
		"edits": []map[string]any{
			{"text": "better opening", "position": 0, "originalText": "opening"},
		},
		"mentorId":   "mentor-1",
		"mentorName": "Sam",
	})
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}

	var saved struct {
		DocumentID string                     `json:"documentId"`
		Edits      []documents.Edit           `json:"edits"`
		EditsSaved int                        `json:"editsSaved"`
		Document   documents.DocumentResponse `json:"document"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&saved); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if saved.EditsSaved != 1 {
		t.Fatalf("expected 1 edit saved, got %d", saved.EditsSaved)
	}
	if saved.DocumentID != "doc-1" {
		t.Fatalf("expected documentId in response, got %q", saved.DocumentID)
	}
	if len(saved.Edits) != 1 || !strings.HasPrefix(saved.Edits[0].ID, "edit-") || saved.Edits[0].MentorName != "Sam" {
		t.Fatalf("expected stamped edits in response, got %+v", saved.Edits)
	}
	if len(saved.Document.MentorEdits) != 1 || saved.Document.MentorEdits[0].MentorName != "Sam" {
		t.Fatalf("expected attributed mentor edit, got %+v", saved.Document.MentorEdits)
	}
}

func TestSaveEditsMissingArrayRejected(t *testing.T) {
	app := buildTestApp(t)
	seedDoc(t, app, documents.Document{ID: "doc-1"})

	resp := doJSON(t, app.Router, http.MethodPost, "/api/v1/documents/doc-1/edits", map[string]any{
		"mentorId": "mentor-1",
	})
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing edits array, got %d", resp.Code)
	}
}

func TestSaveEditsUnknownDocument(t *testing.T) {
	app := buildTestApp(t)

	resp := doJSON(t, app.Router, http.MethodPost, "/api/v1/documents/missing/edits", map[string]any{
		"edits": []map[string]any{},
	})
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.Code)
	}
}

func TestSaveEditsAfterCompletionConflicts(t *testing.T) {
	app := buildTestApp(t)
	seedDoc(t, app, documents.Document{ID: "doc-1", Status: documents.StatusCompleted})

	resp := doJSON(t, app.Router, http.MethodPost, "/api/v1/documents/doc-1/edits", map[string]any{
		"edits": []map[string]any{{"text": "x"}},
	})
	if resp.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d: %s", resp.Code, resp.Body.String())
	}
}

func TestResolveSuggestionEndpoint(t *testing.T) {
	app := buildTestApp(t)
	seedDoc(t, app, documents.Document{
		ID: "doc-1",
		Suggestions: []documents.Suggestion{
			{ID: "suggestion-1", Position: 2, OriginalText: "good", SuggestedText: "strong"},
		},
	})

	resp := doJSON(t, app.Router, http.MethodPost, "/api/v1/documents/doc-1/suggestions", map[string]any{
		"suggestionId": "suggestion-1",
		"accepted":     true,
		"mentorId":     "mentor-1",
		"mentorName":   "Sam",
	})
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}

	var payload struct {
		Document documents.DocumentResponse `json:"document"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !payload.Document.Suggestions[0].Resolved || !payload.Document.Suggestions[0].Accepted {
		t.Fatalf("expected accepted suggestion, got %+v", payload.Document.Suggestions[0])
	}
	if len(payload.Document.EditHistory) != 1 || !payload.Document.EditHistory[0].FromSuggestion {
		t.Fatalf("expected suggestion-sourced log entry, got %+v", payload.Document.EditHistory)
	}
}

func TestResolveSuggestionRequiresAccepted(t *testing.T) {
	app := buildTestApp(t)
	seedDoc(t, app, documents.Document{ID: "doc-1"})

	resp := doJSON(t, app.Router, http.MethodPost, "/api/v1/documents/doc-1/suggestions", map[string]any{
		"suggestionId": "suggestion-1",
	})
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
}

func TestEditedDocumentUploadAndDownload(t *testing.T) {
	app := buildTestApp(t)
	seedDoc(t, app, documents.Document{ID: "doc-1", StudentID: "student-1"})

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	if err := writer.WriteField("documentId", "doc-1"); err != nil {
		t.Fatalf("write field: %v", err)
	}
	if err := writer.WriteField("mentorId", "mentor-1"); err != nil {
		t.Fatalf("write field: %v", err)
	}
	if err := writer.WriteField("mentorName", "Sam"); err != nil {
		t.Fatalf("write field: %v", err)
	}
	fw, err := writer.CreateFormFile("editedFile", "revised.pdf")
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := fw.Write([]byte("%PDF-1.4 revised")); err != nil {
		t.Fatalf("write file: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/documents/edited-document", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	resp := httptest.NewRecorder()
	app.Router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}

	respDl := doJSON(t, app.Router, http.MethodGet, "/api/v1/documents/doc-1/edited-file", nil)
	if respDl.Code != http.StatusOK {
		t.Fatalf("expected 200 download, got %d", respDl.Code)
	}
	if respDl.Body.String() != "%PDF-1.4 revised" {
		t.Fatalf("expected file bytes, got %q", respDl.Body.String())
	}
	if got := respDl.Header().Get("Content-Disposition"); !strings.Contains(got, "revised.pdf") {
		t.Fatalf("expected filename in disposition, got %q", got)
	}
}

func TestEditedDocumentRequiresMentorID(t *testing.T) {
	app := buildTestApp(t)
	seedDoc(t, app, documents.Document{ID: "doc-1"})

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	_ = writer.WriteField("documentId", "doc-1")
	fw, _ := writer.CreateFormFile("editedFile", "revised.pdf")
	_, _ = fw.Write([]byte("%PDF-1.4"))
	_ = writer.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/documents/edited-document", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	resp := httptest.NewRecorder()
	app.Router.ServeHTTP(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing mentorId, got %d: %s", resp.Code, resp.Body.String())
	}

	// the identity header can stand in for the form field
	body2 := &bytes.Buffer{}
	writer2 := multipart.NewWriter(body2)
	_ = writer2.WriteField("documentId", "doc-1")
	fw2, _ := writer2.CreateFormFile("editedFile", "revised.pdf")
	_, _ = fw2.Write([]byte("%PDF-1.4"))
	_ = writer2.Close()

	req2 := httptest.NewRequest(http.MethodPost, "/api/v1/documents/edited-document", body2)
	req2.Header.Set("Content-Type", writer2.FormDataContentType())
	req2.Header.Set("X-Mentor-Id", "mentor-1")
	resp2 := httptest.NewRecorder()
	app.Router.ServeHTTP(resp2, req2)
	if resp2.Code != http.StatusOK {
		t.Fatalf("expected 200 with identity header, got %d: %s", resp2.Code, resp2.Body.String())
	}
}

func TestEditedDocumentRejectsUnsupportedType(t *testing.T) {
	app := buildTestApp(t)
	seedDoc(t, app, documents.Document{ID: "doc-1"})

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	_ = writer.WriteField("documentId", "doc-1")
	_ = writer.WriteField("mentorId", "mentor-1")
	fw, _ := writer.CreateFormFile("editedFile", "script.sh")
	_, _ = fw.Write([]byte("#!/bin/sh"))
	_ = writer.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/documents/edited-document", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	resp := httptest.NewRecorder()
	app.Router.ServeHTTP(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
}

func TestFeedbackSubmissionFlow(t *testing.T) {
	app := buildTestApp(t)
	seedDoc(t, app, documents.Document{ID: "doc-1", StudentID: "student-1"})

	resp := doJSON(t, app.Router, http.MethodPost, "/api/v1/documents/doc-1/feedback", map[string]any{
		"feedbackComments": "Strong draft overall.",
		"mentorId":         "mentor-1",
		"mentorName":       "Sam",
	})
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}

	stored, err := app.DocumentsRepo.GetByID(context.Background(), "doc-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if stored.FeedbackComments != "Strong draft overall." {
		t.Fatalf("expected feedbackComments persisted, got %q", stored.FeedbackComments)
	}

	var fb documents.FeedbackResponse
	if err := json.NewDecoder(resp.Body).Decode(&fb); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if fb.Status != documents.StatusCompleted {
		t.Fatalf("expected completed, got %q", fb.Status)
	}
	if fb.HasEditedFile {
		t.Fatalf("expected hasEditedFile=false")
	}

	// Feedback stays callable after completion and overwrites comments.
	resp2 := doJSON(t, app.Router, http.MethodPost, "/api/v1/documents/doc-1/feedback", map[string]any{
		"feedbackComments": "Updated comments.",
	})
	if resp2.Code != http.StatusOK {
		t.Fatalf("expected 200 on resubmit, got %d", resp2.Code)
	}

	doc, err := app.DocumentsRepo.GetByID(context.Background(), "doc-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if doc.FeedbackComments != "Updated comments." {
		t.Fatalf("expected overwritten comments, got %q", doc.FeedbackComments)
	}
}

func TestGetDocumentNotFound(t *testing.T) {
	app := buildTestApp(t)

	resp := doJSON(t, app.Router, http.MethodGet, "/api/v1/documents/missing", nil)
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.Code)
	}

	var body struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Error.Code != "not_found" {
		t.Fatalf("expected not_found code, got %q", body.Error.Code)
	}
}

func TestCreateDocumentEndpoint(t *testing.T) {
	app := buildTestApp(t)

	resp := doJSON(t, app.Router, http.MethodPost, "/api/v1/documents", map[string]any{
		"title":   "Draft SOP",
		"type":    "sop",
		"content": "First draft content.",
	})
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", resp.Code, resp.Body.String())
	}

	var doc documents.DocumentResponse
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if doc.ID == "" || doc.Status != documents.StatusPending {
		t.Fatalf("expected created pending document, got %+v", doc)
	}
	if doc.Suggestions == nil || doc.EditHistory == nil || doc.MentorEdits == nil {
		t.Fatalf("expected empty arrays, not null")
	}
}
