package huggingface

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"ai-knowledge-bot/pkg/llm"
	"ai-knowledge-bot/pkg/retry"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChat(t *testing.T) {
	var got chatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer hf_key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"Bonjour"}}]}`))
	}))
	defer srv.Close()

	p := NewHuggingFaceProvider("hf_key", srv.URL+"/v1", "mistral")
	out, err := p.Chat(context.Background(), []llm.Message{
		{Role: llm.RoleSystem, Content: "be brief"},
		{Role: llm.RoleUser, Content: "hello"},
	}, llm.WithTemperature(0.2))

	require.NoError(t, err)
	assert.Equal(t, "Bonjour", out)
	assert.Equal(t, "mistral", got.Model)
	assert.Len(t, got.Messages, 2)
	assert.InDelta(t, 0.2, got.Temperature, 1e-9)
	assert.Equal(t, 1024, got.MaxTokens)
}

func TestChatErrors(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		wantStatus int
	}{
		{name: "rate limited", status: http.StatusTooManyRequests, body: `{}`, wantStatus: 429},
		{name: "bad request", status: http.StatusBadRequest, body: `{"error":{"message":"bad"}}`, wantStatus: 400},
		{name: "api error body", status: http.StatusOK, body: `{"error":{"message":"model loading"}}`},
		{name: "no choices", status: http.StatusOK, body: `{"choices":[]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := NewHuggingFaceProvider("k", srv.URL, "m").Generate(context.Background(), "hi")
			require.Error(t, err)

			var statusErr *retry.StatusError
			if tt.wantStatus != 0 {
				require.True(t, errors.As(err, &statusErr))
				assert.Equal(t, tt.wantStatus, statusErr.StatusCode)
			} else {
				assert.False(t, errors.As(err, &statusErr))
			}
		})
	}
}
