package documents

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/leslie0605/magic-prep-backend/internal/shared/metrics"
	"github.com/leslie0605/magic-prep-backend/internal/shared/telemetry"
)

// InlineEdit is one mentor-authored text change in a batch save.
type InlineEdit struct {
	Text         string
	Position     int
	OriginalText string
	MentorTags   []string
	EditSummary  string
}

// MentorIdentity attributes an edit-log entry to the acting mentor.
type MentorIdentity struct {
	ID   string
	Name string
}

func (m MentorIdentity) withDefaults() MentorIdentity {
	if strings.TrimSpace(m.Name) == "" {
		m.Name = "Anonymous Mentor"
	}
	if strings.TrimSpace(m.ID) == "" {
		m.ID = "unknown"
	}
	return m
}

// ApplyInlineEdits appends a batch of mentor text edits to the document's
// edit log and returns the stamped entries alongside the updated record.
// An empty batch is a valid no-op save; a nil batch is rejected. Completed
// documents reject further edits.
func (s *Service) ApplyInlineEdits(ctx context.Context, docID string, edits []InlineEdit, mentor MentorIdentity) (Document, []Edit, error) {
	if edits == nil {
		return Document{}, nil, fmt.Errorf("%w: edits array is required", ErrInvalidInput)
	}
	mentor = mentor.withDefaults()

	var stamped []Edit
	doc, err := s.Repo.Update(ctx, docID, func(doc *Document) error {
		if doc.Status == StatusCompleted {
			return ErrCompleted
		}
		now := time.Now().UTC()
		stamped = make([]Edit, 0, len(edits))
		for _, e := range edits {
			stamped = append(stamped, Edit{
				ID:           "edit-" + uuid.NewString(),
				EditType:     EditTypeDirect,
				Text:         e.Text,
				Position:     e.Position,
				OriginalText: e.OriginalText,
				MentorName:   mentor.Name,
				MentorID:     mentor.ID,
				MentorTags:   e.MentorTags,
				EditSummary:  e.EditSummary,
				Timestamp:    now,
			})
		}
		doc.EditHistory = append(doc.EditHistory, stamped...)
		doc.UpdatedAt = now
		return nil
	})
	if err != nil {
		return Document{}, nil, err
	}

	metrics.AddEditsSaved(len(stamped))
	telemetry.Info("documents.edits_saved", map[string]any{
		"document_id": docID,
		"mentor_id":   mentor.ID,
		"count":       len(stamped),
	})
	return doc, stamped, nil
}

// ResolveSuggestion records a mentor's accept or reject decision for an AI
// suggestion. Accepting appends an attributed entry to the edit log;
// rejecting only marks the suggestion resolved. Re-resolving a suggestion
// overwrites the previous decision.
func (s *Service) ResolveSuggestion(ctx context.Context, docID, suggestionID string, accepted bool, mentor MentorIdentity) (Document, error) {
	if strings.TrimSpace(suggestionID) == "" {
		return Document{}, fmt.Errorf("%w: suggestionId is required", ErrInvalidInput)
	}
	mentor = mentor.withDefaults()

	doc, err := s.Repo.Update(ctx, docID, func(doc *Document) error {
		if doc.Status == StatusCompleted {
			return ErrCompleted
		}
		idx := -1
		for i := range doc.Suggestions {
			if doc.Suggestions[i].ID == suggestionID {
				idx = i
				break
			}
		}
		if idx < 0 {
			return ErrSuggestionNotFound
		}
		sg := &doc.Suggestions[idx]
		sg.Resolved = true
		sg.Accepted = accepted

		now := time.Now().UTC()
		if accepted {
			doc.EditHistory = append(doc.EditHistory, Edit{
				ID:             "edit-" + uuid.NewString(),
				EditType:       EditTypeSuggestion,
				Text:           sg.SuggestedText,
				Position:       sg.Position,
				OriginalText:   sg.OriginalText,
				MentorName:     mentor.Name,
				MentorID:       mentor.ID,
				FromSuggestion: true,
				SuggestionID:   sg.ID,
				Timestamp:      now,
			})
		}
		doc.UpdatedAt = now
		return nil
	})
	if err != nil {
		return Document{}, err
	}

	telemetry.Info("documents.suggestion_resolved", map[string]any{
		"document_id":   docID,
		"suggestion_id": suggestionID,
		"accepted":      accepted,
		"mentor_id":     mentor.ID,
	})
	return doc, nil
}

// allowed extensions for mentor-revised replacement files.
var editedFileExts = map[string]bool{
	".pdf":  true,
	".doc":  true,
	".docx": true,
	".tex":  true,
}

// ReplaceEditedFile stores a mentor's fully revised file and appends a file
// entry to the edit log. The revised file supersedes earlier replacements
// but the log keeps every entry.
func (s *Service) ReplaceEditedFile(ctx context.Context, docID string, header *multipart.FileHeader, mentor MentorIdentity, tags []string, summary string) (Document, error) {
	if header == nil {
		return Document{}, fmt.Errorf("%w: editedFile is required", ErrInvalidInput)
	}
	ext := strings.ToLower(filepath.Ext(header.Filename))
	if !editedFileExts[ext] {
		return Document{}, fmt.Errorf("%w: %s", ErrFileType, ext)
	}
	mentor = mentor.withDefaults()

	file, err := header.Open()
	if err != nil {
		return Document{}, fmt.Errorf("open edited file: %w", err)
	}
	defer file.Close()

	doc, err := s.Repo.Update(ctx, docID, func(doc *Document) error {
		if doc.Status == StatusCompleted {
			return ErrCompleted
		}
		key, size, mimeType, err := s.Store.Save(ctx, mentor.ID, header.Filename, file)
		if err != nil {
			return fmt.Errorf("store edited file: %w", err)
		}
		now := time.Now().UTC()
		doc.EditedFileKey = key
		doc.EditedFileURL = "/api/v1/documents/" + doc.ID + "/edited-file"
		doc.EditHistory = append(doc.EditHistory, Edit{
			ID:          "edit-" + uuid.NewString(),
			EditType:    EditTypeFile,
			MentorName:  mentor.Name,
			MentorID:    mentor.ID,
			MentorTags:  tags,
			EditSummary: summary,
			FileDetails: &FileDetails{
				Name:      header.Filename,
				Path:      key,
				SizeBytes: size,
				MimeType:  mimeType,
			},
			Timestamp: now,
		})
		doc.UpdatedAt = now
		return nil
	})
	if err != nil {
		return Document{}, err
	}

	telemetry.Info("documents.edited_file_replaced", map[string]any{
		"document_id": docID,
		"mentor_id":   mentor.ID,
		"file_name":   header.Filename,
	})
	return doc, nil
}

// SubmitFeedback records the mentor's final comments and marks the review
// completed. Submitting again overwrites the comments and refreshes the
// timestamp; the status transition happens at most once.
func (s *Service) SubmitFeedback(ctx context.Context, docID, comments string, mentor MentorIdentity) (Document, bool, error) {
	mentor = mentor.withDefaults()

	var transitioned bool
	doc, err := s.Repo.Update(ctx, docID, func(doc *Document) error {
		transitioned = doc.Status != StatusCompleted
		doc.Status = StatusCompleted
		doc.FeedbackComments = comments
		doc.UpdatedAt = time.Now().UTC()
		return nil
	})
	if err != nil {
		return Document{}, false, err
	}

	if transitioned {
		metrics.IncReviewCompleted()
	}
	telemetry.Info("documents.feedback_submitted", map[string]any{
		"document_id": docID,
		"mentor_id":   mentor.ID,
		"transition":  transitioned,
	})
	return doc, transitioned, nil
}

// OpenEditedFile streams the mentor-revised file for a document.
func (s *Service) OpenEditedFile(ctx context.Context, docID string) (io.ReadCloser, Document, error) {
	doc, err := s.Repo.GetByID(ctx, docID)
	if err != nil {
		return nil, Document{}, err
	}
	if !doc.HasEditedFile() || doc.EditedFileKey == "" {
		return nil, Document{}, ErrNoEditedFile
	}
	body, err := s.Store.Open(ctx, doc.EditedFileKey)
	if err != nil {
		return nil, Document{}, fmt.Errorf("open edited file %s: %w", doc.EditedFileKey, err)
	}
	return body, doc, nil
}
