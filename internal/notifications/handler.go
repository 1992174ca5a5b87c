package notifications

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/leslie0605/magic-prep-backend/internal/documents"
	"github.com/leslie0605/magic-prep-backend/internal/shared/server/respond"
)

// Handler serves the notifications projection.
type Handler struct {
	Projector *Projector
}

// RegisterRoutes mounts the notification endpoint. The route lives under
// /documents because notifications are derived from document reviews.
func (h *Handler) RegisterRoutes(g *gin.RouterGroup) {
	g.GET("/documents/notifications/:studentId", h.forStudent)
}

func (h *Handler) forStudent(c *gin.Context) {
	notifs, err := h.Projector.ForStudent(c.Request.Context(), c.Param("studentId"))
	if err != nil {
		if errors.Is(err, documents.ErrInvalidInput) {
			respond.Error(c, http.StatusBadRequest, "invalid_request", err.Error(), nil)
			return
		}
		respond.Error(c, http.StatusInternalServerError, "internal_error", "Internal server error", nil)
		return
	}
	respond.OK(c, gin.H{
		"success":       true,
		"notifications": notifs,
	})
}
