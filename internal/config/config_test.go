package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnvDefaults(t *testing.T) {
	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, 1000, cfg.Rag.ChunkSize)
	assert.Equal(t, 40, cfg.Rag.ChunkOverlap)
	assert.Equal(t, 3, cfg.Rag.TopK)
	assert.Equal(t, 20, cfg.Rag.MemoryMaxTurns)
	assert.Equal(t, "!", cfg.Rag.QuestionPrefix)
	assert.Equal(t, "mistral", cfg.Ai.EmbeddingModel)
	assert.Equal(t, "chromem", cfg.Store.VectorBackend)
	assert.Equal(t, 32, cfg.Telegram.MaxWorkers)

	policy := cfg.Ai.LLMPolicy()
	assert.EqualValues(t, 3, policy.MaxTries)
	assert.Equal(t, 200*time.Millisecond, policy.InitialInterval)
	assert.Equal(t, 5*time.Second, policy.MaxInterval)
	assert.Equal(t, 120*time.Second, policy.AttemptTimeout)
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("CHUNK_SIZE", "500")
	t.Setenv("CHUNK_OVERLAP", "50")
	t.Setenv("EMBED_TIMEOUT", "5s")
	t.Setenv("TELEGRAM_DEBUG", "true")
	t.Setenv("ANSWER_LANGUAGE", "English")

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, 500, cfg.Rag.ChunkSize)
	assert.Equal(t, 50, cfg.Rag.ChunkOverlap)
	assert.Equal(t, 5*time.Second, cfg.Ai.EmbedPolicy().AttemptTimeout)
	assert.True(t, cfg.Telegram.Debug)
	assert.Equal(t, "English", cfg.Rag.AnswerLanguage)
}

func TestFromEnvRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{name: "overlap not below size", env: map[string]string{"CHUNK_SIZE": "40", "CHUNK_OVERLAP": "40"}},
		{name: "unknown vector backend", env: map[string]string{"VECTOR_BACKEND": "faiss"}},
		{name: "pgvector on sqlite", env: map[string]string{"VECTOR_BACKEND": "pgvector"}},
		{name: "huggingface without key", env: map[string]string{"LLM_PROVIDER": "huggingface"}},
		{name: "zero workers", env: map[string]string{"TELEGRAM_MAX_WORKERS": "0"}},
		{name: "empty prefix", env: map[string]string{"QUESTION_PREFIX": ""}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := FromEnv()
			assert.Error(t, err)
		})
	}
}
