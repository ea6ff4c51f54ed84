// internal/common/openai/client_test.go
package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"survey-workers/internal/common/config"
	"survey-workers/internal/common/errors"
)

func newTestClient(serverURL string) *Client {
	return NewClient(config.OpenAIConfig{
		BaseURL:     serverURL,
		APIKey:      "test-key",
		Model:       "gpt-4o-mini",
		Temperature: 0.3,
		MaxTokens:   2000,
		Timeout:     5 * time.Second,
	})
}

func TestCreateJSONCompletion_Success(t *testing.T) {
	var captured chatRequest

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"choices": []map[string]interface{}{
				{"message": map[string]string{"content": `{"summary":"ok"}`}},
			},
		})
	}))
	defer server.Close()

	client := newTestClient(server.URL)

	content, err := client.CreateJSONCompletion(context.Background(), "system prompt", "user prompt")
	require.NoError(t, err)
	assert.Equal(t, `{"summary":"ok"}`, content)

	assert.Equal(t, "gpt-4o-mini", captured.Model)
	assert.Equal(t, "json_object", captured.ResponseFormat.Type)
	assert.InDelta(t, 0.3, captured.Temperature, 0.001)
	assert.Equal(t, 2000, captured.MaxTokens)
	require.Len(t, captured.Messages, 2)
	assert.Equal(t, "system", captured.Messages[0].Role)
	assert.Equal(t, "user", captured.Messages[1].Role)
}

func TestCreateJSONCompletion_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream overloaded", http.StatusBadGateway)
	}))
	defer server.Close()

	client := newTestClient(server.URL)

	_, err := client.CreateJSONCompletion(context.Background(), "s", "u")
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeExternalCallFailure, errors.CodeOf(err))
	assert.True(t, errors.IsRetryable(err))
}

func TestCreateJSONCompletion_EmptyChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[]}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)

	_, err := client.CreateJSONCompletion(context.Background(), "s", "u")
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeExternalCallFailure, errors.CodeOf(err))
}

func TestCreateJSONCompletion_ContextTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer server.Close()

	client := newTestClient(server.URL)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := client.CreateJSONCompletion(ctx, "s", "u")
	require.Error(t, err)
	assert.True(t, errors.IsRetryable(err))
}
