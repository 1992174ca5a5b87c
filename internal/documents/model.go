package documents

import "time"

// Document status values. The transition is one-way: a record starts pending
// and only feedback submission moves it to completed.
const (
	StatusPending   = "pending"
	StatusCompleted = "completed"
)

// Edit log entry types.
const (
	EditTypeDirect     = "direct"
	EditTypeSuggestion = "suggestion"
	EditTypeFile       = "file"
)

// FileDetails describes a mentor-uploaded replacement file.
type FileDetails struct {
	Name      string `json:"name"`
	Path      string `json:"path"`
	SizeBytes int64  `json:"sizeBytes"`
	MimeType  string `json:"mimeType"`
}

// Edit is a single attributed entry in a document's append-only edit log.
// EditType discriminates inline edits, accepted suggestions, and file
// replacements; the unused fields of the other variants stay zero.
type Edit struct {
	ID             string       `json:"id"`
	EditType       string       `json:"editType"`
	Text           string       `json:"text,omitempty"`
	Position       int          `json:"position"`
	OriginalText   string       `json:"originalText,omitempty"`
	MentorName     string       `json:"mentorName"`
	MentorID       string       `json:"mentorId"`
	FromSuggestion bool         `json:"fromSuggestion,omitempty"`
	SuggestionID   string       `json:"suggestionId,omitempty"`
	FileDetails    *FileDetails `json:"fileDetails,omitempty"`
	MentorTags     []string     `json:"mentorTags,omitempty"`
	EditSummary    string       `json:"editSummary,omitempty"`
	Timestamp      time.Time    `json:"timestamp"`
}

// Suggestion is an AI-proposed change awaiting mentor resolution. Once
// resolved it is immutable except as the source for a new Edit.
type Suggestion struct {
	ID            string `json:"id"`
	Position      int    `json:"position"`
	OriginalText  string `json:"originalText"`
	SuggestedText string `json:"suggestedText"`
	Resolved      bool   `json:"resolved"`
	Accepted      bool   `json:"accepted"`
}

// Document is the per-submission record tracking content, review
// suggestions, the edit log, and review status.
type Document struct {
	ID               string
	Title            string
	Type             string
	StudentID        string
	StudentName      string
	Content          string
	TargetProgram    string
	TargetUniversity string
	FileURL          string
	EditedFileURL    string
	EditedFileKey    string
	AIScore          *int
	AIFeedback       []string
	Suggestions      []Suggestion
	EditHistory      []Edit
	Status           string
	FeedbackComments string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// MentorEdits returns the text-level view of the edit log: inline edits and
// accepted suggestions, excluding file replacements.
func (d Document) MentorEdits() []Edit {
	out := make([]Edit, 0, len(d.EditHistory))
	for _, e := range d.EditHistory {
		if e.EditType != EditTypeFile {
			out = append(out, e)
		}
	}
	return out
}

// HasEditedFile reports whether a mentor-revised file has been attached.
func (d Document) HasEditedFile() bool {
	return d.EditedFileURL != ""
}

// Clone returns a deep copy so repository callers never share log slices
// with the stored record.
func (d Document) Clone() Document {
	out := d
	if d.AIScore != nil {
		score := *d.AIScore
		out.AIScore = &score
	}
	out.AIFeedback = append([]string(nil), d.AIFeedback...)
	out.Suggestions = append([]Suggestion(nil), d.Suggestions...)
	out.EditHistory = make([]Edit, len(d.EditHistory))
	for i, e := range d.EditHistory {
		out.EditHistory[i] = e
		if e.FileDetails != nil {
			fd := *e.FileDetails
			out.EditHistory[i].FileDetails = &fd
		}
		out.EditHistory[i].MentorTags = append([]string(nil), e.MentorTags...)
	}
	return out
}
