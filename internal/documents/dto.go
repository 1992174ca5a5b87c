package documents

import "time"

// DocumentResponse is the wire shape for a document record. MentorEdits is
// the derived text-level view of the edit log; EditHistory is the full log
// including file replacements.
type DocumentResponse struct {
	ID               string       `json:"id"`
	Title            string       `json:"title"`
	Type             string       `json:"type"`
	StudentID        string       `json:"studentId"`
	StudentName      string       `json:"studentName"`
	Content          string       `json:"content"`
	TargetProgram    string       `json:"targetProgram,omitempty"`
	TargetUniversity string       `json:"targetUniversity,omitempty"`
	FileURL          string       `json:"fileUrl,omitempty"`
	EditedFileURL    string       `json:"editedFileUrl,omitempty"`
	AIScore          *int         `json:"aiScore,omitempty"`
	AIFeedback       []string     `json:"aiFeedback"`
	Suggestions      []Suggestion `json:"suggestions"`
	MentorEdits      []Edit       `json:"mentorEdits"`
	EditHistory      []Edit       `json:"editHistory"`
	Status           string       `json:"status"`
	FeedbackComments string       `json:"feedbackComments,omitempty"`
	CreatedAt        time.Time    `json:"createdAt"`
	UpdatedAt        time.Time    `json:"updatedAt"`
}

// ToResponse converts a record to its wire shape, materializing empty
// slices so clients never see null arrays.
func ToResponse(doc Document) DocumentResponse {
	return DocumentResponse{
		ID:               doc.ID,
		Title:            doc.Title,
		Type:             doc.Type,
		StudentID:        doc.StudentID,
		StudentName:      doc.StudentName,
		Content:          doc.Content,
		TargetProgram:    doc.TargetProgram,
		TargetUniversity: doc.TargetUniversity,
		FileURL:          doc.FileURL,
		EditedFileURL:    doc.EditedFileURL,
		AIScore:          doc.AIScore,
		AIFeedback:       emptyIfNilStrings(doc.AIFeedback),
		Suggestions:      emptyIfNilSuggestions(doc.Suggestions),
		MentorEdits:      emptyIfNilEdits(doc.MentorEdits()),
		EditHistory:      emptyIfNilEdits(doc.EditHistory),
		Status:           doc.Status,
		FeedbackComments: doc.FeedbackComments,
		CreatedAt:        doc.CreatedAt,
		UpdatedAt:        doc.UpdatedAt,
	}
}

// ToResponses converts a list of records.
func ToResponses(docs []Document) []DocumentResponse {
	out := make([]DocumentResponse, 0, len(docs))
	for _, d := range docs {
		out = append(out, ToResponse(d))
	}
	return out
}

// IngestRequest is the intake payload for a student file submission.
type IngestRequest struct {
	DocumentID       string `json:"documentId"`
	DocumentName     string `json:"documentName"`
	DocumentType     string `json:"documentType"`
	FileURL          string `json:"fileUrl"`
	StudentID        string `json:"studentId"`
	StudentName      string `json:"studentName"`
	TargetProgram    string `json:"targetProgram"`
	TargetUniversity string `json:"targetUniversity"`
}

// CreateRequest is the payload for direct document creation.
type CreateRequest struct {
	Title            string `json:"title"`
	Type             string `json:"type"`
	Content          string `json:"content"`
	StudentID        string `json:"studentId"`
	StudentName      string `json:"studentName"`
	TargetProgram    string `json:"targetProgram"`
	TargetUniversity string `json:"targetUniversity"`
}

// InlineEditPayload is one mentor edit in a batch save request.
type InlineEditPayload struct {
	Text         string   `json:"text"`
	Position     int      `json:"position"`
	OriginalText string   `json:"originalText"`
	MentorTags   []string `json:"mentorTags"`
	EditSummary  string   `json:"editSummary"`
}

// EditsRequest is the batch inline-edit payload.
type EditsRequest struct {
	Edits      []InlineEditPayload `json:"edits"`
	MentorID   string              `json:"mentorId"`
	MentorName string              `json:"mentorName"`
}

// SuggestionRequest resolves one AI suggestion.
type SuggestionRequest struct {
	SuggestionID string `json:"suggestionId"`
	Accepted     *bool  `json:"accepted"`
	MentorID     string `json:"mentorId"`
	MentorName   string `json:"mentorName"`
}

// FeedbackRequest carries the mentor's final comments.
type FeedbackRequest struct {
	FeedbackComments string `json:"feedbackComments"`
	MentorID         string `json:"mentorId"`
	MentorName       string `json:"mentorName"`
}

// FeedbackResponse reports the completion outcome.
type FeedbackResponse struct {
	Success       bool   `json:"success"`
	Message       string `json:"message"`
	DocumentID    string `json:"documentId"`
	Status        string `json:"status"`
	HasEditedFile bool   `json:"hasEditedFile"`
}
