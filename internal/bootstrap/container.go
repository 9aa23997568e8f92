package bootstrap

import (
	"context"
	"fmt"
	"log"
	"path/filepath"

	"ai-knowledge-bot/internal/config"
	"ai-knowledge-bot/internal/controller"
	"ai-knowledge-bot/internal/pkg/logger"
	"ai-knowledge-bot/internal/repository/contract"
	"ai-knowledge-bot/internal/repository/implementation"
	"ai-knowledge-bot/internal/repository/memory"
	"ai-knowledge-bot/internal/repository/unitofwork"
	"ai-knowledge-bot/internal/service"
	"ai-knowledge-bot/pkg/embedding"
	"ai-knowledge-bot/pkg/embedding/jina"
	"ai-knowledge-bot/pkg/llm"
	"ai-knowledge-bot/pkg/llm/factory"
	"ai-knowledge-bot/pkg/loader"
	"ai-knowledge-bot/pkg/rag/answerer"
	"ai-knowledge-bot/pkg/rag/bot"
	"ai-knowledge-bot/pkg/rag/history"
	"ai-knowledge-bot/pkg/rag/session"
	"ai-knowledge-bot/pkg/rag/state"
	"ai-knowledge-bot/pkg/utils"
	"ai-knowledge-bot/pkg/vectorstore"
	"ai-knowledge-bot/pkg/vectorstore/chromem"
	"ai-knowledge-bot/pkg/vectorstore/pgvector"

	pktNats "ai-knowledge-bot/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	Logger logger.ILogger

	// Conversation
	Sessions     *session.Manager
	Conversation service.IConversationService

	// Controllers
	SessionController controller.ISessionController
	LogController     controller.ILogController
	HealthController  controller.IHealthController

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService

	closers []func()
}

func NewContainer(db *gorm.DB, cfg *config.Config, sysLogger logger.ILogger) (*Container, error) {
	c := &Container{Logger: sysLogger}

	// 1. Core Facades
	uowFactory := unitofwork.NewRepositoryFactory(db)

	states, err := c.stateRepository(db, cfg)
	if err != nil {
		c.Close()
		return nil, err
	}

	var indexes vectorstore.Factory
	switch cfg.Store.VectorBackend {
	case "pgvector":
		indexes = pgvector.NewFactory(implementation.NewKnowledgeChunkRepository(db))
	default:
		indexes = chromem.NewFactory(filepath.Clean(cfg.App.DataDir))
	}
	log.Printf("[INFO] Using vector backend: %s", cfg.Store.VectorBackend)

	// 2. Event Bus
	pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NewStdLogger(false, false))
	c.closers = append(c.closers, func() { _ = pubSub.Close() })

	var sink service.EventSink
	if cfg.App.NatsURL != "" {
		natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
		if err != nil {
			log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
		} else {
			sink = natsPub
			c.closers = append(c.closers, natsPub.Close)
		}
	}

	// 3. AI providers
	var embedder embedding.EmbeddingProvider
	switch cfg.Ai.EmbeddingProvider {
	case "jina":
		embedder = jina.NewJinaProvider(cfg.Ai.JinaAPIKey, cfg.Ai.JinaBaseURL, cfg.Ai.EmbeddingModel)
	default:
		embedder = embedding.NewOllamaProvider(cfg.Ai.OllamaBaseURL, cfg.Ai.EmbeddingModel)
	}
	embedder = embedding.NewResilientProvider(embedder, cfg.Ai.EmbedPolicy())
	log.Printf("[INFO] Using Embedding Provider: %s (%s)", cfg.Ai.EmbeddingProvider, cfg.Ai.EmbeddingModel)

	llmBaseURL := cfg.Ai.OllamaBaseURL
	if cfg.Ai.LLMProvider == "huggingface" {
		llmBaseURL = cfg.Ai.HuggingFaceBaseURL
	}
	chat, err := factory.NewLLMProvider(cfg.Ai.LLMProvider, cfg.Ai.LLMModel, llmBaseURL, cfg.Ai.HuggingFaceAPIKey)
	if err != nil {
		c.Close()
		return nil, fmt.Errorf("init LLM provider: %w", err)
	}
	chat = llm.NewResilientProvider(chat, cfg.Ai.LLMPolicy())
	log.Printf("[INFO] Using LLM Provider: %s (%s)", cfg.Ai.LLMProvider, cfg.Ai.LLMModel)

	splitter, err := utils.NewCharacterSplitter("\n", cfg.Rag.ChunkSize, cfg.Rag.ChunkOverlap)
	if err != nil {
		c.Close()
		return nil, err
	}

	// 4. Sessions
	sessionCache := memory.NewSessionRepository(cfg.Store.SessionTTL)
	sessionCache.OnEvicted(func(userID string) {
		sysLogger.Debug("SESSION", "Session evicted", map[string]interface{}{"user_id": userID})
	})

	manager := session.NewManager(
		uowFactory,
		states,
		sessionCache,
		indexes,
		embedder,
		history.NewLoader(uowFactory, cfg.Rag.MemoryMaxTurns),
		bot.Deps{
			Loader:   loader.NewWebLoader(cfg.Rag.LoaderTimeout, cfg.Rag.LoaderMaxBytes),
			Splitter: splitter,
			LLM:      chat,
			Answer: answerer.Config{
				TopK:        cfg.Rag.TopK,
				Language:    cfg.Rag.AnswerLanguage,
				Temperature: cfg.Ai.Temperature,
			},
		},
		cfg.Rag.TopK,
		sysLogger,
	)

	// 5. Services
	publisherService := service.NewPublisherService(cfg.App.EventTopic, pubSub)
	c.ConsumerService = service.NewConsumerService(pubSub, cfg.App.EventTopic, sink, sysLogger)
	c.Sessions = manager
	c.Conversation = service.NewConversationService(
		manager,
		state.NewManager(nil),
		publisherService,
		cfg.Rag.QuestionPrefix,
		sysLogger,
	)

	// 6. Controllers
	c.SessionController = controller.NewSessionController(manager)
	c.LogController = controller.NewLogController(sysLogger)
	c.HealthController = controller.NewHealthController(manager.Loaded)

	return c, nil
}

func (c *Container) stateRepository(db *gorm.DB, cfg *config.Config) (contract.UserStateRepository, error) {
	if cfg.Store.StateBackend != "redis" {
		return implementation.NewUserStateRepository(db), nil
	}

	opt, err := redis.ParseURL(cfg.App.RedisURL)
	if err != nil {
		log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
		opt = &redis.Options{Addr: cfg.App.RedisURL}
	}
	rdb := redis.NewClient(opt)
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	c.closers = append(c.closers, func() { _ = rdb.Close() })
	log.Printf("[INFO] Conversation state stored in Redis (%s)", opt.Addr)
	return implementation.NewRedisUserStateRepository(rdb, cfg.Store.StateTTL), nil
}

// Close releases the event bus and external connections in reverse order.
func (c *Container) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
	c.closers = nil
}
