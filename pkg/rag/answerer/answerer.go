package answerer

import (
	"context"
	"strings"
	"time"

	"ai-knowledge-bot/pkg/apperror"
	"ai-knowledge-bot/pkg/llm"
	"ai-knowledge-bot/pkg/rag/knowledge"
	"ai-knowledge-bot/pkg/rag/memory"
	"ai-knowledge-bot/pkg/rag/prompt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// NotTrainedMessage is returned instead of an answer while the knowledge base is empty.
const NotTrainedMessage = "Model has not been trained yet. Please train the model first."

var tracer = otel.Tracer("ai-knowledge-bot/answerer")

// Retriever is the read side of the knowledge store.
type Retriever interface {
	Retrieve(ctx context.Context, query string, k int) ([]knowledge.ScoredChunk, error)
	Count(ctx context.Context) (int, error)
}

type Config struct {
	TopK        int
	Language    string
	Temperature float64
}

// Answer mirrors the {query, result} object a retrieval chain returns.
type Answer struct {
	Query   string
	Result  string
	Sources []knowledge.ScoredChunk
	Trained bool
}

func (a Answer) ResultText() string {
	return a.Result
}

type Answerer struct {
	retriever Retriever
	provider  llm.LLMProvider
	memory    *memory.Buffer
	cfg       Config
}

func New(retriever Retriever, provider llm.LLMProvider, mem *memory.Buffer, cfg Config) *Answerer {
	if cfg.TopK <= 0 {
		cfg.TopK = knowledge.DefaultTopK
	}
	if mem == nil {
		mem = memory.NewBuffer(0)
	}
	return &Answerer{
		retriever: retriever,
		provider:  provider,
		memory:    mem,
		cfg:       cfg,
	}
}

// Ask answers question from the retrieved context. An untrained store yields
// NotTrainedMessage without touching the embedder or the LLM.
func (a *Answerer) Ask(ctx context.Context, question string) (Answer, error) {
	ctx, span := tracer.Start(ctx, "answerer.Ask")
	defer span.End()

	question = strings.TrimSpace(question)
	answer := Answer{Query: question}

	count, err := a.retriever.Count(ctx)
	if err != nil {
		span.RecordError(err)
		return answer, err
	}
	if count == 0 {
		span.SetAttributes(attribute.Bool("trained", false))
		answer.Result = NotTrainedMessage
		return answer, nil
	}
	answer.Trained = true

	chunks, err := a.retriever.Retrieve(ctx, question, a.cfg.TopK)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "retrieve failed")
		return answer, err
	}
	answer.Sources = chunks
	span.SetAttributes(attribute.Int("sources", len(chunks)))

	messages := make([]llm.Message, 0, 2+a.memory.Len()*2)
	messages = append(messages, llm.Message{Role: llm.RoleSystem, Content: prompt.SystemPrompt})
	messages = append(messages, a.memory.Messages()...)
	messages = append(messages, llm.Message{
		Role:    llm.RoleUser,
		Content: prompt.NewContextualBuilder(chunks, question, a.cfg.Language).Build(),
	})

	var opts []llm.Option
	if a.cfg.Temperature > 0 {
		opts = append(opts, llm.WithTemperature(a.cfg.Temperature))
	}

	out, err := a.provider.Chat(ctx, messages, opts...)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "llm failed")
		if apperror.KindOf(err) == apperror.KindUnknown {
			err = apperror.Service("answerer.Ask", err)
		}
		return answer, err
	}

	answer.Result = strings.TrimSpace(out)
	a.memory.Append(memory.Turn{Question: question, Answer: answer.Result, At: time.Now()})
	return answer, nil
}

func (a *Answerer) Memory() *memory.Buffer {
	return a.memory
}
