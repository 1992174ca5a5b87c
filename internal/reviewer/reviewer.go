package reviewer

import (
	"context"
	"errors"
)

// MinReviewableLength is the minimum extracted-text length worth analyzing.
// Shorter inputs get the neutral default instead of an API call.
const MinReviewableLength = 100

// Suggestion is a proposed textual change produced by automated analysis.
type Suggestion struct {
	Position      int
	OriginalText  string
	SuggestedText string
}

// Result carries the bounded score, feedback lines, and proposed suggestions.
type Result struct {
	Score       int
	Feedback    []string
	Suggestions []Suggestion
}

// Input captures what the reviewer needs to score a document.
type Input struct {
	DocumentType string
	StudentName  string
	Text         string
}

// Client abstracts review providers.
type Client interface {
	Review(ctx context.Context, input Input) (Result, error)
}

// ErrNotConfigured is returned by the placeholder client.
var ErrNotConfigured = errors.New("review client not configured")

// PlaceholderClient is a stub implementation until provider wiring is added.
type PlaceholderClient struct{}

// Review returns ErrNotConfigured.
func (PlaceholderClient) Review(ctx context.Context, input Input) (Result, error) {
	_ = ctx
	_ = input
	return Result{}, ErrNotConfigured
}

// DefaultResult is the neutral fallback used when analysis fails or the
// input is too short to score.
func DefaultResult() Result {
	return Result{
		Score: 50,
		Feedback: []string{
			"We couldn't analyze your document completely. Please try again later.",
			"Make sure your document includes key sections like education, research experience, and publications.",
			"Consider highlighting your academic achievements and skills relevant to your field.",
		},
	}
}
