package extract

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/IslamTayeb/job-sheet-tracker/internal/errs"
)

func TestClientComplete(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var req llmRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "test-model", req.Model)
		require.Len(t, req.Messages, 1)
		assert.Equal(t, "user", req.Messages[0].Role)
		assert.Equal(t, "extract this", req.Messages[0].Content)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices": [{"message": {"content": "{\"position\": \"SWE\"}"}}]}`))
	}))
	defer server.Close()

	c := NewClient(LLMConfig{APIBase: server.URL, APIKey: "test-key", Model: "test-model", MaxTokens: 100})

	got, err := c.Complete(context.Background(), "extract this")
	require.NoError(t, err)
	assert.Equal(t, `{"position": "SWE"}`, got)
}

func TestClientCompleteAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error": "quota exceeded"}`, http.StatusTooManyRequests)
	}))
	defer server.Close()

	c := NewClient(LLMConfig{APIBase: server.URL, APIKey: "test-key", Model: "test-model"})

	_, err := c.Complete(context.Background(), "extract this")
	require.Error(t, err)
	assert.True(t, errs.IsKind(err, errs.KindService))
	assert.Contains(t, err.Error(), "quota exceeded")
}

func TestClientCompleteEmptyChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices": []}`))
	}))
	defer server.Close()

	c := NewClient(LLMConfig{APIBase: server.URL})

	_, err := c.Complete(context.Background(), "extract this")
	require.Error(t, err)
	assert.True(t, errs.IsKind(err, errs.KindService))
}

func TestClientCompleteUnreachable(t *testing.T) {
	c := NewClient(LLMConfig{APIBase: "http://127.0.0.1:1"})

	_, err := c.Complete(context.Background(), "extract this")
	require.Error(t, err)
	assert.True(t, errs.IsKind(err, errs.KindService))
}
