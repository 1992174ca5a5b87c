package openai

import (
	"strings"
	"testing"

	"github.com/leslie0605/magic-prep-backend/internal/reviewer"
)

func TestNewClientValidation(t *testing.T) {
	if _, err := NewClient("", "gpt-4o"); err == nil {
		t.Fatalf("expected error for missing api key")
	}
	if _, err := NewClient("sk-test", ""); err == nil {
		t.Fatalf("expected error for missing model")
	}
	if _, err := NewClient("sk-test", "gpt-4o"); err != nil {
		t.Fatalf("NewClient: %v", err)
	}
}

func TestToResultClampsScoreAndFiltersEmpties(t *testing.T) {
	payload := reviewPayload{
		Score:    150,
		Feedback: []string{"  good structure  ", "", "   "},
		Suggestions: []suggestionPayload{
			{Position: 3, OriginalText: "a", SuggestedText: "b"},
			{Position: 9, OriginalText: "c", SuggestedText: "   "},
		},
	}

	got := toResult(payload)
	if got.Score != 100 {
		t.Fatalf("expected score clamped to 100, got %d", got.Score)
	}
	if len(got.Feedback) != 1 || got.Feedback[0] != "good structure" {
		t.Fatalf("expected trimmed non-empty feedback, got %v", got.Feedback)
	}
	if len(got.Suggestions) != 1 || got.Suggestions[0].SuggestedText != "b" {
		t.Fatalf("expected empty suggestion dropped, got %v", got.Suggestions)
	}

	if toResult(reviewPayload{Score: -5}).Score != 0 {
		t.Fatalf("expected negative score clamped to 0")
	}
}

func TestBuildPromptSelectsIntroByType(t *testing.T) {
	cv := buildPrompt(reviewer.Input{DocumentType: "CV/Resume", Text: "body"})
	if !strings.Contains(cv, "academic CVs/resumes") {
		t.Fatalf("expected CV intro, got %q", cv[:80])
	}

	sop := buildPrompt(reviewer.Input{DocumentType: "Statement of Purpose", Text: "body"})
	if !strings.Contains(sop, "Statements of Purpose") {
		t.Fatalf("expected SOP intro, got %q", sop[:80])
	}

	other := buildPrompt(reviewer.Input{DocumentType: "essay", Text: "body"})
	if !strings.Contains(other, "application documents") {
		t.Fatalf("expected generic intro, got %q", other[:80])
	}
	if !strings.Contains(other, "body") {
		t.Fatalf("expected document text embedded")
	}
}
