// Package llm wraps the OpenRouter-style chat-completions API behind a
// uniform success/failure contract: Generate never returns a Go error, it
// returns the produced text plus a Meta block that records elapsed time,
// token usage and any failure message. Callers decide what a failure means.
package llm

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

// requestTimeout bounds a single upstream call. There are no retries; one
// attempt either produces text or a failure Meta.
const requestTimeout = 30 * time.Second

// Request carries everything one generation needs. UserTemplate contains a
// single literal {question} placeholder that is substituted verbatim.
type Request struct {
	SystemPrompt string
	UserTemplate string
	Question     string
	Model        string
	Temperature  float64
	MaxTokens    int
}

// Meta is the diagnostic side channel of a generation attempt.
type Meta struct {
	ResponseTimeMs int64
	TokenCount     int
	Success        bool
	ErrorMessage   string
}

// Client talks to one chat-completions endpoint.
type Client struct {
	httpClient *http.Client
	apiKey     string
	baseURL    string
	referer    string
	siteName   string
}

// NewClient builds a client for the given API base. referer and siteName
// fill the two identification headers the provider requires alongside the
// bearer token.
func NewClient(apiKey, baseURL, referer, siteName string) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: requestTimeout},
		apiKey:     apiKey,
		baseURL:    strings.TrimRight(baseURL, "/"),
		referer:    referer,
		siteName:   siteName,
	}
}

// Wire types for the chat-completions contract.
type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Usage struct {
		TotalTokens int `json:"total_tokens"`
	} `json:"usage"`
}

// RenderUserPrompt substitutes the question into the {question} placeholder.
// The substitution is verbatim; prompt text is trusted template data and the
// question is user data the upstream model is expected to treat as content.
func RenderUserPrompt(template, question string) string {
	return strings.ReplaceAll(template, "{question}", question)
}

// Generate issues one synchronous chat-completions call. On HTTP 200 it
// returns the first choice's text and a success Meta with the reported
// token total. On any transport error or non-200 status it returns an empty
// answer and a failure Meta with the elapsed time measured up to the
// failure point. It never panics and never returns an error value.
func (c *Client) Generate(ctx context.Context, req Request) (string, Meta) {
	start := time.Now()
	fail := func(msg string) (string, Meta) {
		return "", Meta{
			ResponseTimeMs: time.Since(start).Milliseconds(),
			Success:        false,
			ErrorMessage:   msg,
		}
	}

	payload := chatRequest{
		Model: req.Model,
		Messages: []chatMessage{
			{Role: "system", Content: req.SystemPrompt},
			{Role: "user", Content: RenderUserPrompt(req.UserTemplate, req.Question)},
		},
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fail(fmt.Sprintf("encode request: %v", err))
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return fail(fmt.Sprintf("build request: %v", err))
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	httpReq.Header.Set("HTTP-Referer", c.referer)
	httpReq.Header.Set("X-Title", c.siteName)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fail(fmt.Sprintf("upstream call: %v", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		// Keep a bounded slice of the body for diagnostics.
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fail(fmt.Sprintf("upstream status %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet))))
	}

	var out chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return fail(fmt.Sprintf("decode response: %v", err))
	}
	if len(out.Choices) == 0 {
		return fail("upstream returned no choices")
	}

	return out.Choices[0].Message.Content, Meta{
		ResponseTimeMs: time.Since(start).Milliseconds(),
		TokenCount:     out.Usage.TotalTokens,
		Success:        true,
	}
}
