// Package notifications derives student-facing feedback notifications from
// completed document reviews. Notifications are a read-side projection with
// no storage of their own.
package notifications

import (
	"context"
	"time"

	"github.com/leslie0605/magic-prep-backend/internal/documents"
)

// Notification tells a student that a mentor finished reviewing a document.
type Notification struct {
	ID               string    `json:"id"`
	Type             string    `json:"type"`
	DocumentID       string    `json:"documentId"`
	DocumentType     string    `json:"documentType"`
	Title            string    `json:"title"`
	Message          string    `json:"message"`
	MentorName       string    `json:"mentorName"`
	EditsAccepted    int       `json:"editsAccepted"`
	CommentsAdded    int       `json:"commentsAdded"`
	FileURL          string    `json:"fileUrl,omitempty"`
	EditedFileURL    string    `json:"editedFileUrl,omitempty"`
	FeedbackComments string    `json:"feedbackComments,omitempty"`
	IsRead           bool      `json:"isRead"`
	Date             time.Time `json:"date"`
}

// Projector builds notifications from the document store.
type Projector struct {
	Repo documents.Repo
}

// ForStudent returns one notification per completed review for the student,
// ordered the same way the underlying documents are.
func (p *Projector) ForStudent(ctx context.Context, studentID string) ([]Notification, error) {
	docs, err := p.Repo.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}

	out := make([]Notification, 0, len(docs))
	for _, doc := range docs {
		if doc.Status != documents.StatusCompleted {
			continue
		}
		out = append(out, fromDocument(doc))
	}
	return out, nil
}

func fromDocument(doc documents.Document) Notification {
	edits := doc.MentorEdits()

	// placeholder only when no mentor has edited at all
	mentorName := "Your Mentor"
	if len(edits) > 0 {
		mentorName = edits[len(edits)-1].MentorName
	}

	accepted := 0
	comments := 0
	for _, e := range edits {
		if e.FromSuggestion {
			accepted++
		} else {
			comments++
		}
	}

	return Notification{
		ID:               "notification-" + doc.ID,
		Type:             "document_feedback",
		DocumentID:       doc.ID,
		DocumentType:     doc.Type,
		Title:            "Feedback on your " + doc.Title,
		Message:          mentorName + " has reviewed your " + doc.Title + " and provided feedback.",
		MentorName:       mentorName,
		EditsAccepted:    accepted,
		CommentsAdded:    comments,
		FileURL:          doc.FileURL,
		EditedFileURL:    doc.EditedFileURL,
		FeedbackComments: doc.FeedbackComments,
		IsRead:           false,
		Date:             doc.UpdatedAt,
	}
}
