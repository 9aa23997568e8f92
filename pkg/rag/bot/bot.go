package bot

import (
	"context"
	"fmt"
	"sync"

	"ai-knowledge-bot/pkg/llm"
	"ai-knowledge-bot/pkg/loader"
	"ai-knowledge-bot/pkg/rag/answerer"
	"ai-knowledge-bot/pkg/rag/knowledge"
	"ai-knowledge-bot/pkg/rag/memory"
	"ai-knowledge-bot/pkg/utils"
)

// TrainResult describes one ingested page.
type TrainResult struct {
	URL       string
	Title     string
	Documents int
	Chunks    int
}

// Deps are the collaborators shared by every user's bot.
type Deps struct {
	Loader   loader.DocumentLoader
	Splitter *utils.CharacterSplitter
	LLM      llm.LLMProvider
	Answer   answerer.Config
}

// KnowledgeBot owns one user's knowledge store and conversation memory. The
// answerer is built on the first question after a training run.
type KnowledgeBot struct {
	ownerID string
	store   *knowledge.Store
	memory  *memory.Buffer
	deps    Deps

	mu       sync.Mutex
	answerer *answerer.Answerer
}

func New(ownerID string, store *knowledge.Store, mem *memory.Buffer, deps Deps) *KnowledgeBot {
	if deps.Splitter == nil {
		deps.Splitter = utils.NewDefaultSplitter()
	}
	if mem == nil {
		mem = memory.NewBuffer(0)
	}
	return &KnowledgeBot{
		ownerID: ownerID,
		store:   store,
		memory:  mem,
		deps:    deps,
	}
}

func (b *KnowledgeBot) OwnerID() string {
	return b.ownerID
}

func (b *KnowledgeBot) Memory() *memory.Buffer {
	return b.memory
}

// Train loads url, splits it and adds the chunks to the store.
func (b *KnowledgeBot) Train(ctx context.Context, url string) (TrainResult, error) {
	result := TrainResult{URL: url}

	docs, err := b.deps.Loader.Load(ctx, url)
	if err != nil {
		return result, err
	}
	result.Documents = len(docs)
	if len(docs) > 0 {
		result.Title = docs[0].Metadata["title"]
	}

	chunks := b.deps.Splitter.SplitDocuments(docs)
	added, err := b.store.AddDocuments(ctx, chunks)
	if err != nil {
		return result, fmt.Errorf("train on %s: %w", url, err)
	}
	result.Chunks = added

	b.mu.Lock()
	b.answerer = nil
	b.mu.Unlock()

	return result, nil
}

// Ask answers a question, or returns the not-trained answer for an empty store.
func (b *KnowledgeBot) Ask(ctx context.Context, question string) (answerer.Answer, error) {
	return b.currentAnswerer().Ask(ctx, question)
}

func (b *KnowledgeBot) currentAnswerer() *answerer.Answerer {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.answerer == nil {
		b.answerer = answerer.New(b.store, b.deps.LLM, b.memory, b.deps.Answer)
	}
	return b.answerer
}

func (b *KnowledgeBot) ChunkCount(ctx context.Context) (int, error) {
	return b.store.Count(ctx)
}

func (b *KnowledgeBot) Trained(ctx context.Context) (bool, error) {
	n, err := b.store.Count(ctx)
	return n > 0, err
}
