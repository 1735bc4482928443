package openai_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/aretw0/parley/internal/adapters/openai"
	"github.com/aretw0/parley/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProviderComplete(t *testing.T) {
	var gotAuth string
	var gotBody map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"role": "assistant", "content": "Sure, happy to help."}},
			},
		})
	}))
	defer server.Close()

	p := openai.New("sk-test", "gpt-3.5-turbo", openai.WithBaseURL(server.URL))

	result, err := p.Complete(context.Background(), ports.CompletionRequest{
		SystemPrompt: "You are a booking assistant.",
		Utterance:    "what times work?",
		Temperature:  0.4,
		MaxTokens:    200,
	})
	require.NoError(t, err)
	assert.Equal(t, "Sure, happy to help.", result.Text)

	assert.Equal(t, "Bearer sk-test", gotAuth)
	assert.Equal(t, "gpt-3.5-turbo", gotBody["model"])
	messages := gotBody["messages"].([]any)
	require.Len(t, messages, 2)
	first := messages[0].(map[string]any)
	assert.Equal(t, "system", first["role"])
	assert.Equal(t, "You are a booking assistant.", first["content"])
}

func TestProviderAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]any{"message": "rate limited", "type": "rate_limit_error"},
		})
	}))
	defer server.Close()

	p := openai.New("sk-test", "gpt-3.5-turbo", openai.WithBaseURL(server.URL))

	_, err := p.Complete(context.Background(), ports.CompletionRequest{Utterance: "hi"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rate limited")
}

func TestProviderEmptyChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"choices": []any{}})
	}))
	defer server.Close()

	p := openai.New("", "gpt-3.5-turbo", openai.WithBaseURL(server.URL))

	_, err := p.Complete(context.Background(), ports.CompletionRequest{Utterance: "hi"})
	assert.Error(t, err)
}
