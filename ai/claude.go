package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const anthropicURL = "https://api.anthropic.com/v1/messages"

// Claude calls the Anthropic messages API. It implements Analyzer.
type Claude struct {
	apiKey     string
	model      string
	maxTokens  int
	httpClient *http.Client
}

func NewClaude(apiKey, model string, maxTokens int) *Claude {
	if maxTokens <= 0 {
		maxTokens = 300
	}
	return &Claude{
		apiKey:    apiKey,
		model:     model,
		maxTokens: maxTokens,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type request struct {
	Model     string    `json:"model"`
	MaxTokens int       `json:"max_tokens"`
	Messages  []message `json:"messages"`
}

type response struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
}

// Analyze sends the prompt and returns the reply text as the summary. The
// model is asked for narrative reasoning only; sentiment and confidence stay
// neutral so the caller's own numbers are never overridden by prose.
func (c *Claude) Analyze(ctx context.Context, prompt string) (Analysis, error) {
	body, err := json.Marshal(request{
		Model:     c.model,
		MaxTokens: c.maxTokens,
		Messages:  []message{{Role: "user", Content: prompt}},
	})
	if err != nil {
		return Analysis{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, anthropicURL, bytes.NewReader(body))
	if err != nil {
		return Analysis{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("anthropic-version", "2023-06-01")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Analysis{}, fmt.Errorf("ai request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return Analysis{}, err
	}
	if resp.StatusCode != http.StatusOK {
		return Analysis{}, fmt.Errorf("ai request: status %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}

	var r response
	if err := json.Unmarshal(raw, &r); err != nil {
		return Analysis{}, fmt.Errorf("ai response: %w", err)
	}

	var b strings.Builder
	for _, part := range r.Content {
		if part.Type == "text" {
			b.WriteString(part.Text)
		}
	}
	text := strings.TrimSpace(b.String())
	if text == "" {
		return Analysis{}, fmt.Errorf("ai response: empty content")
	}

	return Analysis{Summary: text, Confidence: 0.5}, nil
}
