package bot

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"ai-knowledge-bot/pkg/apperror"
	"ai-knowledge-bot/pkg/llm"
	"ai-knowledge-bot/pkg/rag/answerer"
	"ai-knowledge-bot/pkg/rag/knowledge"
	"ai-knowledge-bot/pkg/utils"
	"ai-knowledge-bot/pkg/vectorstore/chromem"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticLoader struct {
	docs []utils.Document
	err  error
}

func (l *staticLoader) Load(_ context.Context, _ string) ([]utils.Document, error) {
	return l.docs, l.err
}

type lengthEmbedder struct{}

func (lengthEmbedder) Generate(_ context.Context, text string) ([]float32, error) {
	return []float32{float32(len(text)%7) + 1, float32(strings.Count(text, "e")) + 1}, nil
}

type countingLLM struct{ calls int }

func (c *countingLLM) Chat(_ context.Context, _ []llm.Message, _ ...llm.Option) (string, error) {
	c.calls++
	return "answer", nil
}

func (c *countingLLM) Generate(ctx context.Context, p string, opts ...llm.Option) (string, error) {
	return c.Chat(ctx, nil, opts...)
}

func newBot(t *testing.T, l *staticLoader, provider llm.LLMProvider) *KnowledgeBot {
	t.Helper()
	index, err := chromem.Open(filepath.Join(t.TempDir(), "index"))
	require.NoError(t, err)
	store := knowledge.NewStore(index, lengthEmbedder{}, 3)
	return New("1", store, nil, Deps{Loader: l, LLM: provider})
}

func TestKnowledgeBotTrainThenAsk(t *testing.T) {
	ctx := context.Background()
	provider := &countingLLM{}
	l := &staticLoader{docs: []utils.Document{{
		Content:  "first line\nsecond line\nthird line",
		Metadata: map[string]string{"source": "http://example.com", "title": "Example"},
	}}}
	b := newBot(t, l, provider)

	answer, err := b.Ask(ctx, "before training")
	require.NoError(t, err)
	assert.Equal(t, answerer.NotTrainedMessage, answer.Result)
	assert.Zero(t, provider.calls)

	result, err := b.Train(ctx, "http://example.com")
	require.NoError(t, err)
	assert.Equal(t, "Example", result.Title)
	assert.Equal(t, 1, result.Documents)
	assert.Equal(t, 1, result.Chunks)

	trained, err := b.Trained(ctx)
	require.NoError(t, err)
	assert.True(t, trained)

	answer, err = b.Ask(ctx, "what is it")
	require.NoError(t, err)
	assert.Equal(t, "answer", answer.Result)
	assert.Equal(t, 1, provider.calls)
	assert.Equal(t, 1, b.Memory().Len())
}

func TestKnowledgeBotTrainRebuildsAnswerer(t *testing.T) {
	ctx := context.Background()
	l := &staticLoader{docs: []utils.Document{{Content: "text"}}}
	b := newBot(t, l, &countingLLM{})

	_, err := b.Train(ctx, "http://a")
	require.NoError(t, err)
	first := b.currentAnswerer()
	assert.Same(t, first, b.currentAnswerer())

	_, err = b.Train(ctx, "http://b")
	require.NoError(t, err)
	assert.NotSame(t, first, b.currentAnswerer())
}

func TestKnowledgeBotTrainLoadFailure(t *testing.T) {
	ctx := context.Background()
	l := &staticLoader{err: apperror.Transport("loader.Load", errors.New("no such host"))}
	b := newBot(t, l, &countingLLM{})

	_, err := b.Train(ctx, "http://nowhere.invalid")
	assert.Equal(t, apperror.KindTransport, apperror.KindOf(err))

	trained, err := b.Trained(ctx)
	require.NoError(t, err)
	assert.False(t, trained)
}
