package embedding

import (
	"context"
	"log"
	"math"
	"time"

	"ai-knowledge-bot/pkg/apperror"
	"ai-knowledge-bot/pkg/retry"
)

// EmbeddingProvider defines the interface for generating text embeddings
type EmbeddingProvider interface {
	Generate(ctx context.Context, text string) ([]float32, error)
}

// ResilientProvider bounds every call with a timeout and retries transient
// failures. Errors that survive the retries are reported as service errors.
type ResilientProvider struct {
	inner  EmbeddingProvider
	policy retry.Policy
}

func NewResilientProvider(inner EmbeddingProvider, policy retry.Policy) *ResilientProvider {
	return &ResilientProvider{inner: inner, policy: policy}
}

func (p *ResilientProvider) Generate(ctx context.Context, text string) ([]float32, error) {
	vec, err := retry.Do(ctx, p.policy, func(attempt uint, err error, wait time.Duration) {
		log.Printf("[WARN] Embedding attempt %d failed, retrying in %s: %v", attempt, wait, err)
	}, func(ctx context.Context) ([]float32, error) {
		return p.inner.Generate(ctx, text)
	})
	if err != nil {
		return nil, apperror.Service("embedding.Generate", err)
	}
	return vec, nil
}

// normalizeVector scales a vector to unit length; cosine similarity on both
// chromem and pgvector assumes it.
func normalizeVector(vec []float32) []float32 {
	var magnitude float64
	for _, v := range vec {
		magnitude += float64(v) * float64(v)
	}
	magnitude = math.Sqrt(magnitude)

	if magnitude == 0 {
		return vec
	}

	normalized := make([]float32, len(vec))
	for i, v := range vec {
		normalized[i] = float32(float64(v) / magnitude)
	}
	return normalized
}
