package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/leslie0605/magic-prep-backend/internal/reviewer"
)

const apiURL = "https://api.openai.com/v1/chat/completions"

// Client implements reviewer.Client using OpenAI Chat Completions.
type Client struct {
	apiKey     string
	model      string
	httpClient *http.Client
}

// NewClient constructs a new OpenAI client.
func NewClient(apiKey, model string) (*Client, error) {
	if strings.TrimSpace(model) == "" {
		return nil, fmt.Errorf("REVIEW_MODEL is required for OpenAI")
	}
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY is required")
	}
	timeout := 60 * time.Second
	if raw := strings.TrimSpace(os.Getenv("OPENAI_TIMEOUT_SECONDS")); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			timeout = time.Duration(parsed) * time.Second
		}
	}
	return &Client{
		apiKey: apiKey,
		model:  model,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}, nil
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model          string          `json:"model"`
	Messages       []chatMessage   `json:"messages"`
	Temperature    float32         `json:"temperature"`
	MaxTokens      int             `json:"max_tokens"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatResponse struct {
	ID      string `json:"id"`
	Model   string `json:"model"`
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

type reviewPayload struct {
	Score       int                 `json:"score"`
	Feedback    []string            `json:"feedback"`
	Suggestions []suggestionPayload `json:"suggestions"`
}

type suggestionPayload struct {
	Position      int    `json:"position"`
	OriginalText  string `json:"originalText"`
	SuggestedText string `json:"suggestedText"`
}

// Review scores a document and proposes suggestions via chat completions.
func (c *Client) Review(ctx context.Context, input reviewer.Input) (reviewer.Result, error) {
	body, err := json.Marshal(chatRequest{
		Model:          c.model,
		Messages:       []chatMessage{{Role: "user", Content: buildPrompt(input)}},
		Temperature:    0.7,
		MaxTokens:      800,
		ResponseFormat: &responseFormat{Type: "json_object"},
	})
	if err != nil {
		return reviewer.Result{}, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, apiURL, bytes.NewReader(body))
	if err != nil {
		return reviewer.Result{}, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return reviewer.Result{}, fmt.Errorf("openai request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return reviewer.Result{}, fmt.Errorf("read response: %w", err)
	}

	var parsed chatResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return reviewer.Result{}, fmt.Errorf("decode response: %w", err)
	}
	if parsed.Error != nil {
		return reviewer.Result{}, fmt.Errorf("openai error: %s", parsed.Error.Message)
	}
	if resp.StatusCode != http.StatusOK {
		return reviewer.Result{}, fmt.Errorf("openai status %d", resp.StatusCode)
	}
	if len(parsed.Choices) == 0 {
		return reviewer.Result{}, fmt.Errorf("openai returned no choices")
	}

	var payload reviewPayload
	if err := json.Unmarshal([]byte(parsed.Choices[0].Message.Content), &payload); err != nil {
		return reviewer.Result{}, fmt.Errorf("decode review payload: %w", err)
	}

	return toResult(payload), nil
}

func toResult(payload reviewPayload) reviewer.Result {
	score := payload.Score
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}

	feedback := make([]string, 0, len(payload.Feedback))
	for _, line := range payload.Feedback {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			feedback = append(feedback, trimmed)
		}
	}

	suggestions := make([]reviewer.Suggestion, 0, len(payload.Suggestions))
	for _, s := range payload.Suggestions {
		if strings.TrimSpace(s.SuggestedText) == "" {
			continue
		}
		suggestions = append(suggestions, reviewer.Suggestion{
			Position:      s.Position,
			OriginalText:  s.OriginalText,
			SuggestedText: s.SuggestedText,
		})
	}

	return reviewer.Result{Score: score, Feedback: feedback, Suggestions: suggestions}
}

func buildPrompt(input reviewer.Input) string {
	var intro string
	switch {
	case strings.Contains(strings.ToLower(input.DocumentType), "cv"), strings.Contains(strings.ToLower(input.DocumentType), "resume"):
		intro = "You are an expert career consultant and PhD mentor specialized in evaluating academic CVs/resumes."
	case strings.Contains(strings.ToLower(input.DocumentType), "purpose"):
		intro = "You are an expert graduate admissions advisor specialized in evaluating Statements of Purpose for academic programs."
	default:
		intro = "You are an expert graduate admissions advisor evaluating application documents."
	}

	return fmt.Sprintf(`%s
Please analyze the following %s and:

1. Evaluate its strengths and weaknesses on a scale of 0-100.
2. Provide 3-5 specific pieces of feedback for improvement.
3. Propose up to 3 concrete inline text suggestions, each with the original passage and an improved version.

Document Content:
%s

Respond in the following JSON format:
{
  "score": <number between 0-100>,
  "feedback": ["<specific feedback point>", ...],
  "suggestions": [
    {"position": <character offset>, "originalText": "<passage>", "suggestedText": "<improved passage>"}
  ]
}`, intro, input.DocumentType, input.Text)
}

var _ reviewer.Client = (*Client)(nil)
