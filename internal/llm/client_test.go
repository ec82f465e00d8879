package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderUserPrompt(t *testing.T) {
	assert.Equal(t, "Q: will it rain?", RenderUserPrompt("Q: {question}", "will it rain?"))
	assert.Equal(t, "no placeholder", RenderUserPrompt("no placeholder", "ignored"))
	assert.Equal(t, "a b / a b", RenderUserPrompt("{question} / {question}", "a b"))
}

func TestGenerate_Success(t *testing.T) {
	var gotAuth, gotReferer, gotTitle string
	var gotBody chatRequest

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/chat/completions", r.URL.Path)
		gotAuth = r.Header.Get("Authorization")
		gotReferer = r.Header.Get("HTTP-Referer")
		gotTitle = r.Header.Get("X-Title")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"choices":[{"message":{"role":"assistant","content":"the stars align"}}],
			"usage":{"total_tokens":123}
		}`))
	}))
	defer srv.Close()

	c := NewClient("sk-test", srv.URL, "http://localhost:3000", "FateWave")
	answer, meta := c.Generate(context.Background(), Request{
		SystemPrompt: "sys",
		UserTemplate: "Q: {question}",
		Question:     "hm?",
		Model:        "test/model",
		Temperature:  0.8,
		MaxTokens:    1000,
	})

	assert.Equal(t, "the stars align", answer)
	assert.True(t, meta.Success)
	assert.Equal(t, 123, meta.TokenCount)
	assert.Empty(t, meta.ErrorMessage)

	assert.Equal(t, "Bearer sk-test", gotAuth)
	assert.Equal(t, "http://localhost:3000", gotReferer)
	assert.Equal(t, "FateWave", gotTitle)

	assert.Equal(t, "test/model", gotBody.Model)
	require.Len(t, gotBody.Messages, 2)
	assert.Equal(t, "system", gotBody.Messages[0].Role)
	assert.Equal(t, "sys", gotBody.Messages[0].Content)
	assert.Equal(t, "user", gotBody.Messages[1].Role)
	assert.Equal(t, "Q: hm?", gotBody.Messages[1].Content, "placeholder must be substituted before sending")
}

func TestGenerate_UpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"error":"overloaded"}`))
	}))
	defer srv.Close()

	c := NewClient("sk-test", srv.URL, "", "")
	answer, meta := c.Generate(context.Background(), Request{Model: "m", Question: "q"})

	assert.Empty(t, answer)
	assert.False(t, meta.Success)
	assert.Contains(t, meta.ErrorMessage, "503")
	assert.Contains(t, meta.ErrorMessage, "overloaded")
}

func TestGenerate_ConnectionRefused(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // nothing listening anymore

	c := NewClient("sk-test", srv.URL, "", "")
	answer, meta := c.Generate(context.Background(), Request{Model: "m"})

	assert.Empty(t, answer)
	assert.False(t, meta.Success)
	assert.NotEmpty(t, meta.ErrorMessage)
}

func TestGenerate_EmptyChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[],"usage":{"total_tokens":0}}`))
	}))
	defer srv.Close()

	c := NewClient("sk-test", srv.URL, "", "")
	answer, meta := c.Generate(context.Background(), Request{Model: "m"})

	assert.Empty(t, answer)
	assert.False(t, meta.Success)
	assert.Contains(t, meta.ErrorMessage, "no choices")
}

func TestNewClient_TrimsTrailingSlash(t *testing.T) {
	c := NewClient("k", "https://openrouter.ai/api/v1/", "", "")
	assert.Equal(t, "https://openrouter.ai/api/v1", c.baseURL)
}
