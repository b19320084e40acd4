package rewrite

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"NewsIngest/internal/apperr"
	"NewsIngest/internal/config"
	"NewsIngest/internal/ports"
)

// Client talks to an OpenAI-style completions endpoint (DeepSeek in
// production). Any non-2xx status, malformed JSON, oversized body or empty
// choices list is reported as an error so the caller can mark the record
// failed.
type Client struct {
	endpoint         string
	model            string
	apiKey           string
	prompt           string
	maxTokens        int
	temperature      float64
	topP             float64
	maxResponseBytes int64
	httpClient       *http.Client
}

var _ ports.Rewriter = (*Client)(nil)

type completionRequest struct {
	Model       string  `json:"model"`
	Prompt      string  `json:"prompt"`
	MaxTokens   int     `json:"max_tokens"`
	Temperature float64 `json:"temperature"`
	TopP        float64 `json:"top_p"`
}

type completionResponse struct {
	Choices []struct {
		Text string `json:"text"`
	} `json:"choices"`
}

// NewClient builds a client from configuration.
func NewClient(cfg config.Rewrite) *Client {
	maxBytes := cfg.MaxResponseBytes
	if maxBytes <= 0 {
		maxBytes = 1 << 20
	}
	return &Client{
		endpoint:         strings.TrimSuffix(cfg.Endpoint, "/"),
		model:            cfg.Model,
		apiKey:           cfg.APIKey,
		prompt:           cfg.Prompt,
		maxTokens:        cfg.MaxTokens,
		temperature:      cfg.Temperature,
		topP:             cfg.TopP,
		maxResponseBytes: maxBytes,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

// Rewrite submits the raw content and returns the polished text.
func (c *Client) Rewrite(ctx context.Context, content string) (string, error) {
	if c.apiKey == "" || c.endpoint == "" || c.model == "" {
		return "", fmt.Errorf("rewrite client misconfigured")
	}

	prompt := fmt.Sprintf("%s\n\nOriginal Content:\n%s\n\nRewritten Content:\n", c.prompt, content)

	body, err := json.Marshal(completionRequest{
		Model:       c.model,
		Prompt:      prompt,
		MaxTokens:   c.maxTokens,
		Temperature: c.temperature,
		TopP:        c.topP,
	})
	if err != nil {
		return "", fmt.Errorf("marshal completion payload: %w", err)
	}

	url := c.endpoint + "/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", apperr.NewFetch(url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return "", fmt.Errorf("rewrite service error %s: %s", resp.Status, strings.TrimSpace(string(payload)))
	}

	// Cap the accepted body; a response cut off at the limit decodes as
	// invalid JSON and the record is marked failed.
	raw, err := io.ReadAll(io.LimitReader(resp.Body, c.maxResponseBytes))
	if err != nil {
		return "", apperr.NewFetch(url, err)
	}

	var parsed completionResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", apperr.NewParse(url, err)
	}

	if len(parsed.Choices) == 0 {
		return "", apperr.NewParse(url, fmt.Errorf("empty choices"))
	}

	text := strings.TrimSpace(parsed.Choices[0].Text)
	if text == "" {
		return "", apperr.NewParse(url, fmt.Errorf("blank completion text"))
	}

	return text, nil
}
