// Package genai provides a client for the Gemini text generation API.
package genai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/bradwmorris/worldfair-connect/internal/httpc"
)

const defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"

// Models used by the bot. The voice model carries the live conversation;
// the RAG model answers knowledge-base lookups.
const (
	RAGModel   = "gemini-2.0-flash-lite-preview-02-05"
	VoiceModel = "gemini-2.0-flash"
)

// Client calls the Gemini generateContent endpoint. It is a long-lived,
// read-only handle safe for concurrent use.
type Client struct {
	apiKey  string
	baseURL string
	http    *http.Client
}

// NewClient creates a Gemini client with the given API key.
func NewClient(apiKey string) *Client {
	return &Client{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		http:    httpc.Client,
	}
}

// WithBaseURL returns a copy of the client pointed at a different endpoint.
// Used by tests to target a local server.
func (c *Client) WithBaseURL(baseURL string) *Client {
	cp := *c
	cp.baseURL = strings.TrimRight(baseURL, "/")
	return &cp
}

// Options are the sampling parameters for a generation call.
type Options struct {
	Temperature     float64
	MaxOutputTokens int
}

// Generate issues one non-streaming generation request and returns the
// produced text. The call honors ctx for cancellation.
func (c *Client) Generate(ctx context.Context, model, prompt string, opts Options) (string, error) {
	if c.apiKey == "" {
		return "", fmt.Errorf("genai: API key not set")
	}

	payload := map[string]any{
		"contents": []map[string]any{
			{
				"parts": []map[string]any{
					{"text": prompt},
				},
			},
		},
		"generationConfig": map[string]any{
			"temperature":     opts.Temperature,
			"maxOutputTokens": opts.MaxOutputTokens,
		},
	}

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("genai: failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", c.baseURL, model, c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonData))
	if err != nil {
		return "", fmt.Errorf("genai: failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("genai: API request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("genai: failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("genai: API error (status %d): %s", resp.StatusCode, truncate(string(body), 200))
	}

	var result generateResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return "", fmt.Errorf("genai: failed to parse response: %w", err)
	}

	if result.Error.Message != "" {
		return "", fmt.Errorf("genai: %s", result.Error.Message)
	}

	if len(result.Candidates) > 0 && len(result.Candidates[0].Content.Parts) > 0 {
		return strings.TrimSpace(result.Candidates[0].Content.Parts[0].Text), nil
	}

	return "", fmt.Errorf("genai: no candidates in response")
}

// generateResponse is the response envelope from the Gemini API.
type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
	Error struct {
		Message string `json:"message"`
		Code    int    `json:"code"`
	} `json:"error"`
}

// truncate shortens a string to maxLen characters for error messages.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
