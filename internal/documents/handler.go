package documents

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/leslie0605/magic-prep-backend/internal/shared/server/middleware"
	"github.com/leslie0605/magic-prep-backend/internal/shared/server/respond"
	"github.com/leslie0605/magic-prep-backend/internal/shared/util"
)

// MaxEditedFileBytes caps mentor file replacement uploads.
const MaxEditedFileBytes = 5 << 20

// Handler exposes the document review workflow over HTTP.
type Handler struct {
	Service *Service
}

// RegisterRoutes mounts the document endpoints on the given group.
func (h *Handler) RegisterRoutes(g *gin.RouterGroup) {
	g.GET("/documents", h.list)
	g.POST("/documents", h.create)
	g.GET("/documents/student/:studentId", h.listByStudent)
	g.POST("/documents/student-submission", h.ingest)
	g.POST("/documents/edited-document", h.replaceEditedFile)
	g.GET("/documents/:id", h.get)
	g.GET("/documents/:id/edited-file", h.downloadEditedFile)
	g.POST("/documents/:id/edits", h.saveEdits)
	g.POST("/documents/:id/suggestions", h.resolveSuggestion)
	g.POST("/documents/:id/feedback", h.submitFeedback)
}

func (h *Handler) list(c *gin.Context) {
	docs, err := h.Service.List(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	respond.OK(c, ToResponses(docs))
}

func (h *Handler) listByStudent(c *gin.Context) {
	studentID := c.Param("studentId")
	docs, err := h.Service.ListByStudent(c.Request.Context(), studentID)
	if err != nil {
		h.fail(c, err)
		return
	}
	respond.OK(c, ToResponses(docs))
}

func (h *Handler) get(c *gin.Context) {
	c.Set("documentId", c.Param("id"))
	doc, err := h.Service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	respond.OK(c, ToResponse(doc))
}

func (h *Handler) create(c *gin.Context) {
	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "invalid_request", "Invalid JSON body", err.Error())
		return
	}
	doc, err := h.Service.Create(c.Request.Context(), CreateInput{
		Title:            req.Title,
		Type:             req.Type,
		Content:          req.Content,
		StudentID:        req.StudentID,
		StudentName:      req.StudentName,
		TargetProgram:    req.TargetProgram,
		TargetUniversity: req.TargetUniversity,
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	c.Set("documentId", doc.ID)
	respond.JSON(c, http.StatusCreated, ToResponse(doc))
}

func (h *Handler) ingest(c *gin.Context) {
	var req IngestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "invalid_request", "Invalid JSON body", err.Error())
		return
	}
	c.Set("documentId", req.DocumentID)
	doc, err := h.Service.Ingest(c.Request.Context(), IngestInput{
		DocumentID:       req.DocumentID,
		DocumentName:     req.DocumentName,
		DocumentType:     req.DocumentType,
		FileURL:          req.FileURL,
		StudentID:        req.StudentID,
		StudentName:      req.StudentName,
		TargetProgram:    req.TargetProgram,
		TargetUniversity: req.TargetUniversity,
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	respond.JSON(c, http.StatusCreated, gin.H{
		"success":  true,
		"message":  "Document submitted for mentor review",
		"document": ToResponse(doc),
	})
}

func (h *Handler) saveEdits(c *gin.Context) {
	docID := c.Param("id")
	c.Set("documentId", docID)

	var req EditsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "invalid_request", "Invalid JSON body", err.Error())
		return
	}
	edits := make([]InlineEdit, 0, len(req.Edits))
	for _, e := range req.Edits {
		edits = append(edits, InlineEdit{
			Text:         e.Text,
			Position:     e.Position,
			OriginalText: e.OriginalText,
			MentorTags:   e.MentorTags,
			EditSummary:  e.EditSummary,
		})
	}
	if req.Edits == nil {
		edits = nil
	}

	doc, stamped, err := h.Service.ApplyInlineEdits(c.Request.Context(), docID, edits, h.mentor(c, req.MentorID, req.MentorName))
	if err != nil {
		h.fail(c, err)
		return
	}
	if stamped == nil {
		stamped = []Edit{}
	}
	respond.OK(c, gin.H{
		"success":    true,
		"message":    "Saved " + strconv.Itoa(len(stamped)) + " edits",
		"documentId": doc.ID,
		"edits":      stamped,
		"document":   ToResponse(doc),
		"editsSaved": len(stamped),
	})
}

func (h *Handler) resolveSuggestion(c *gin.Context) {
	docID := c.Param("id")
	c.Set("documentId", docID)

	var req SuggestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "invalid_request", "Invalid JSON body", err.Error())
		return
	}
	if req.Accepted == nil {
		respond.Error(c, http.StatusBadRequest, "invalid_request", "accepted is required", nil)
		return
	}

	doc, err := h.Service.ResolveSuggestion(c.Request.Context(), docID, req.SuggestionID, *req.Accepted, h.mentor(c, req.MentorID, req.MentorName))
	if err != nil {
		h.fail(c, err)
		return
	}
	respond.OK(c, gin.H{
		"success":  true,
		"message":  "Suggestion " + resolution(*req.Accepted),
		"document": ToResponse(doc),
	})
}

func (h *Handler) replaceEditedFile(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, MaxEditedFileBytes)
	if err := c.Request.ParseMultipartForm(MaxEditedFileBytes); err != nil {
		respond.Error(c, http.StatusBadRequest, "file_too_large", "File size cannot exceed 5MB", nil)
		return
	}

	docID := c.PostForm("documentId")
	c.Set("documentId", docID)
	if docID == "" {
		respond.Error(c, http.StatusBadRequest, "invalid_request", "documentId is required", nil)
		return
	}
	header, err := c.FormFile("editedFile")
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "invalid_request", "editedFile is required", nil)
		return
	}
	mentor := h.mentor(c, c.PostForm("mentorId"), c.PostForm("mentorName"))
	if mentor.ID == "" {
		respond.Error(c, http.StatusBadRequest, "invalid_request", "mentorId is required", nil)
		return
	}

	doc, err := h.Service.ReplaceEditedFile(c.Request.Context(), docID, header, mentor, c.PostFormArray("mentorTags"), c.PostForm("editSummary"))
	if err != nil {
		h.fail(c, err)
		return
	}
	respond.OK(c, gin.H{
		"success":  true,
		"message":  "Edited document uploaded",
		"document": ToResponse(doc),
	})
}

func (h *Handler) submitFeedback(c *gin.Context) {
	docID := c.Param("id")
	c.Set("documentId", docID)

	var req FeedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "invalid_request", "Invalid JSON body", err.Error())
		return
	}

	doc, transitioned, err := h.Service.SubmitFeedback(c.Request.Context(), docID, req.FeedbackComments, h.mentor(c, req.MentorID, req.MentorName))
	if err != nil {
		h.fail(c, err)
		return
	}
	if transitioned {
		c.Set("statusTransition", StatusPending+"->"+StatusCompleted)
	}
	respond.OK(c, FeedbackResponse{
		Success:       true,
		Message:       "Feedback submitted successfully",
		DocumentID:    doc.ID,
		Status:        doc.Status,
		HasEditedFile: doc.HasEditedFile(),
	})
}

func (h *Handler) downloadEditedFile(c *gin.Context) {
	docID := c.Param("id")
	c.Set("documentId", docID)

	body, doc, err := h.Service.OpenEditedFile(c.Request.Context(), docID)
	if err != nil {
		h.fail(c, err)
		return
	}
	defer body.Close()

	fileName := "edited-document"
	mimeType := "application/octet-stream"
	for i := len(doc.EditHistory) - 1; i >= 0; i-- {
		if fd := doc.EditHistory[i].FileDetails; doc.EditHistory[i].EditType == EditTypeFile && fd != nil {
			if safe, err := util.SanitizeFileName(fd.Name); err == nil {
				fileName = safe
			}
			if fd.MimeType != "" {
				mimeType = fd.MimeType
			}
			break
		}
	}
	c.Header("Content-Disposition", `attachment; filename="`+fileName+`"`)
	c.DataFromReader(http.StatusOK, -1, mimeType, body, nil)
}

// mentor resolves the acting mentor, preferring explicit body fields over
// the identity header.
func (h *Handler) mentor(c *gin.Context, bodyID, bodyName string) MentorIdentity {
	id := bodyID
	if id == "" {
		id = middleware.MentorIDFromContext(c)
	}
	if id != "" {
		c.Set("mentorId", id)
	}
	return MentorIdentity{ID: id, Name: bodyName}
}

func (h *Handler) fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		respond.Error(c, http.StatusNotFound, "not_found", "Document not found", nil)
	case errors.Is(err, ErrSuggestionNotFound):
		respond.Error(c, http.StatusNotFound, "suggestion_not_found", "Suggestion not found", nil)
	case errors.Is(err, ErrInvalidInput):
		respond.Error(c, http.StatusBadRequest, "invalid_request", err.Error(), nil)
	case errors.Is(err, ErrCompleted):
		respond.Error(c, http.StatusConflict, "review_completed", "Document review is already completed", nil)
	case errors.Is(err, ErrFileType):
		respond.Error(c, http.StatusBadRequest, "unsupported_file_type", "Only PDF, DOC, DOCX and TEX files are allowed", nil)
	case errors.Is(err, ErrNoEditedFile):
		respond.Error(c, http.StatusNotFound, "no_edited_file", "No edited file available for this document", nil)
	default:
		respond.Error(c, http.StatusInternalServerError, "internal_error", "Internal server error", nil)
	}
}

func resolution(accepted bool) string {
	if accepted {
		return "accepted"
	}
	return "rejected"
}
