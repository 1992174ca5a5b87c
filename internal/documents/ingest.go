package documents

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/leslie0605/magic-prep-backend/internal/extract"
	"github.com/leslie0605/magic-prep-backend/internal/reviewer"
	"github.com/leslie0605/magic-prep-backend/internal/shared/metrics"
	"github.com/leslie0605/magic-prep-backend/internal/shared/storage/object"
	"github.com/leslie0605/magic-prep-backend/internal/shared/telemetry"
)

// Service implements document ingestion and the mentor review workflow.
type Service struct {
	Repo     Repo
	Store    object.ObjectStore
	Reviewer reviewer.Client
}

// displayTypes maps submission type codes to the labels shown on the
// mentor dashboard.
var displayTypes = map[string]string{
	"cv":  "CV/Resume",
	"sop": "Statement of Purpose",
	"phs": "Personal History Statement",
}

// DisplayType returns the dashboard label for a submission type code.
// Unrecognized codes pass through unchanged.
func DisplayType(docType string) string {
	if label, ok := displayTypes[strings.ToLower(docType)]; ok {
		return label
	}
	return docType
}

// IngestInput is a student submission arriving from the intake pipeline.
// DocumentName is the student's file name and doubles as the record title.
type IngestInput struct {
	DocumentID       string
	DocumentName     string
	DocumentType     string
	FileURL          string
	StudentID        string
	StudentName      string
	TargetProgram    string
	TargetUniversity string
	SubmittedAt      time.Time
}

// Ingest registers a student submission: extracts text from the stored file,
// runs automated review when enough text is available, and persists the
// record in pending status. Extraction or review failure never fails the
// ingest; the record falls back to placeholder content and the neutral
// default review.
func (s *Service) Ingest(ctx context.Context, in IngestInput) (Document, error) {
	start := time.Now()

	if strings.TrimSpace(in.DocumentID) == "" {
		return Document{}, fmt.Errorf("%w: documentId is required", ErrInvalidInput)
	}
	if strings.TrimSpace(in.DocumentName) == "" {
		return Document{}, fmt.Errorf("%w: documentName is required", ErrInvalidInput)
	}
	if strings.TrimSpace(in.DocumentType) == "" {
		return Document{}, fmt.Errorf("%w: documentType is required", ErrInvalidInput)
	}
	if strings.TrimSpace(in.FileURL) == "" {
		return Document{}, fmt.Errorf("%w: fileUrl is required", ErrInvalidInput)
	}
	if strings.TrimSpace(in.StudentID) == "" {
		return Document{}, fmt.Errorf("%w: studentId is required", ErrInvalidInput)
	}
	if strings.TrimSpace(in.StudentName) == "" {
		return Document{}, fmt.Errorf("%w: studentName is required", ErrInvalidInput)
	}

	submittedAt := in.SubmittedAt
	if submittedAt.IsZero() {
		submittedAt = time.Now().UTC()
	}

	content := s.extractContent(ctx, in)
	score, feedback, suggestions := s.review(ctx, in.DocumentType, in.StudentName, content)

	doc := Document{
		ID:               in.DocumentID,
		Title:            in.DocumentName,
		Type:             DisplayType(in.DocumentType),
		StudentID:        in.StudentID,
		StudentName:      in.StudentName,
		Content:          content,
		TargetProgram:    in.TargetProgram,
		TargetUniversity: in.TargetUniversity,
		FileURL:          in.FileURL,
		AIScore:          &score,
		AIFeedback:       feedback,
		Suggestions:      suggestions,
		EditHistory:      []Edit{},
		Status:           StatusPending,
		FeedbackComments: "",
		CreatedAt:        submittedAt,
		UpdatedAt:        submittedAt,
	}

	if err := s.Repo.Upsert(ctx, doc); err != nil {
		return Document{}, fmt.Errorf("ingest document %s: %w", doc.ID, err)
	}

	metrics.IncSubmissionIngested()
	metrics.ObserveIngestDurationMs(float64(time.Since(start).Milliseconds()))
	telemetry.Info("documents.ingested", map[string]any{
		"document_id": doc.ID,
		"student_id":  doc.StudentID,
		"type":        doc.Type,
		"suggestions": len(doc.Suggestions),
	})
	return doc, nil
}

// extractContent pulls text from the submitted file, falling back to a
// placeholder when the file cannot be read or yields nothing.
func (s *Service) extractContent(ctx context.Context, in IngestInput) string {
	text, err := extract.Text(ctx, s.Store, storageKeyFromURL(in.FileURL), in.DocumentName)
	if err != nil {
		metrics.IncExtractionFailed()
		telemetry.Warn("documents.extract_failed", map[string]any{
			"document_id": in.DocumentID,
			"file_name":   in.DocumentName,
			"error":       err.Error(),
		})
		return "Unable to extract content from " + in.DocumentName
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return fmt.Sprintf("Empty %s submitted by %s", DisplayType(in.DocumentType), in.StudentName)
	}
	return text
}

// review scores the content, returning the neutral default when the text is
// too short or the provider fails.
func (s *Service) review(ctx context.Context, docType, studentName, content string) (int, []string, []Suggestion) {
	result := reviewer.DefaultResult()
	if len(content) > reviewer.MinReviewableLength {
		got, err := s.Reviewer.Review(ctx, reviewer.Input{
			DocumentType: docType,
			StudentName:  studentName,
			Text:         content,
		})
		if err != nil {
			telemetry.Warn("documents.review_failed", map[string]any{
				"type":  docType,
				"error": err.Error(),
			})
		} else {
			result = got
		}
	}

	suggestions := make([]Suggestion, 0, len(result.Suggestions))
	for _, sg := range result.Suggestions {
		suggestions = append(suggestions, Suggestion{
			ID:            "suggestion-" + uuid.NewString(),
			Position:      sg.Position,
			OriginalText:  sg.OriginalText,
			SuggestedText: sg.SuggestedText,
		})
	}
	return result.Score, result.Feedback, suggestions
}

// storageKeyFromURL maps a public file URL to the object-store key. Intake
// URLs take the form /api/v1/files/<key>; anything else is used as-is.
func storageKeyFromURL(fileURL string) string {
	const prefix = "/api/v1/files/"
	if idx := strings.Index(fileURL, prefix); idx >= 0 {
		return fileURL[idx+len(prefix):]
	}
	return strings.TrimPrefix(fileURL, "/")
}

// CreateInput is a directly-created document with inline content.
type CreateInput struct {
	Title            string
	Type             string
	Content          string
	StudentID        string
	StudentName      string
	TargetProgram    string
	TargetUniversity string
}

// Create registers a document from inline content, skipping extraction and
// review. Used for drafts composed in the client rather than file uploads.
func (s *Service) Create(ctx context.Context, in CreateInput) (Document, error) {
	if strings.TrimSpace(in.Title) == "" {
		return Document{}, fmt.Errorf("%w: title is required", ErrInvalidInput)
	}
	if strings.TrimSpace(in.Content) == "" {
		return Document{}, fmt.Errorf("%w: content is required", ErrInvalidInput)
	}

	docType := strings.ToLower(strings.TrimSpace(in.Type))
	if docType == "" {
		docType = "unknown"
	}
	studentID := strings.TrimSpace(in.StudentID)
	if studentID == "" {
		studentID = "unknown"
	}
	studentName := strings.TrimSpace(in.StudentName)
	if studentName == "" {
		studentName = "Anonymous Student"
	}

	now := time.Now().UTC()
	doc := Document{
		ID:               "doc-" + uuid.NewString(),
		Title:            in.Title,
		Type:             docType,
		StudentID:        studentID,
		StudentName:      studentName,
		Content:          in.Content,
		TargetProgram:    in.TargetProgram,
		TargetUniversity: in.TargetUniversity,
		EditHistory:      []Edit{},
		Status:           StatusPending,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := s.Repo.Upsert(ctx, doc); err != nil {
		return Document{}, fmt.Errorf("create document: %w", err)
	}
	return doc, nil
}

// Get returns a single document by ID.
func (s *Service) Get(ctx context.Context, id string) (Document, error) {
	return s.Repo.GetByID(ctx, id)
}

// List returns all documents ordered oldest-first.
func (s *Service) List(ctx context.Context) ([]Document, error) {
	return s.Repo.List(ctx)
}

// ListByStudent returns a student's documents ordered oldest-first.
func (s *Service) ListByStudent(ctx context.Context, studentID string) ([]Document, error) {
	if strings.TrimSpace(studentID) == "" {
		return nil, fmt.Errorf("%w: studentId is required", ErrInvalidInput)
	}
	return s.Repo.ListByStudent(ctx, studentID)
}
