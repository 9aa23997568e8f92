package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"ai-knowledge-bot/pkg/retry"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	Telegram TelegramConfig
	Database DatabaseConfig
	Ai       AIConfig
	Rag      RagConfig
	Store    StoreConfig
	Admin    AdminConfig
	Otel     OtelConfig
}

type AppConfig struct {
	Port               string `validate:"required"`
	Environment        string
	LogFilePath        string `validate:"required"`
	CorsAllowedOrigins string
	NatsURL            string
	RedisURL           string
	DataDir            string `validate:"required"`
	EventTopic         string `validate:"required"`
}

type TelegramConfig struct {
	Token       string
	MaxWorkers  int `validate:"gt=0"`
	PollTimeout int `validate:"gt=0"`
	Debug       bool
}

type DatabaseConfig struct {
	Driver   string `validate:"oneof=sqlite postgres"`
	Path     string
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

type AIConfig struct {
	EmbeddingProvider  string `validate:"oneof=ollama jina"`
	EmbeddingModel     string `validate:"required"`
	OllamaBaseURL      string `validate:"required,url"`
	JinaAPIKey         string
	JinaBaseURL        string
	LLMProvider        string `validate:"oneof=ollama huggingface"`
	LLMModel           string `validate:"required"`
	HuggingFaceAPIKey  string
	HuggingFaceBaseURL string
	Temperature        float64       `validate:"gte=0,lte=2"`
	EmbedTimeout       time.Duration `validate:"gt=0"`
	LLMTimeout         time.Duration `validate:"gt=0"`
	MaxRetries         int           `validate:"gt=0"`
	RetryInitial       time.Duration `validate:"gt=0"`
	RetryMax           time.Duration `validate:"gtefield=RetryInitial"`
}

type RagConfig struct {
	ChunkSize      int `validate:"gt=0"`
	ChunkOverlap   int `validate:"gte=0,ltfield=ChunkSize"`
	TopK           int `validate:"gt=0"`
	MemoryMaxTurns int `validate:"gte=0"`
	AnswerLanguage string
	QuestionPrefix string        `validate:"required"`
	LoaderTimeout  time.Duration `validate:"gt=0"`
	LoaderMaxBytes int64         `validate:"gt=0"`
}

type StoreConfig struct {
	VectorBackend string        `validate:"oneof=chromem pgvector"`
	StateBackend  string        `validate:"oneof=db redis"`
	StateTTL      time.Duration `validate:"gte=0"`
	SessionTTL    time.Duration `validate:"gt=0"`
}

type AdminConfig struct {
	JWTSecret string
}

type OtelConfig struct {
	Enabled     bool
	Endpoint    string
	ServiceName string
}

// Load reads .env when present, then the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, using system environment")
	}
	return FromEnv()
}

func FromEnv() (*Config, error) {
	cfg := &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "logs/bot.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "*"),
			NatsURL:            getEnv("NATS_URL", ""),
			RedisURL:           getEnv("REDIS_URL", "redis://localhost:6379"),
			DataDir:            getEnv("DATA_DIR", "data"),
			EventTopic:         getEnv("EVENT_TOPIC", "bot.events"),
		},
		Telegram: TelegramConfig{
			Token:       getEnv("TELEGRAM_BOT_TOKEN", ""),
			MaxWorkers:  getEnvAsInt("TELEGRAM_MAX_WORKERS", 32),
			PollTimeout: getEnvAsInt("TELEGRAM_POLL_TIMEOUT", 60),
			Debug:       getEnvAsBool("TELEGRAM_DEBUG", false),
		},
		Database: DatabaseConfig{
			Driver:   getEnv("DB_DRIVER", "sqlite"),
			Path:     getEnv("DB_PATH", "data/bot.db"),
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			Name:     getEnv("DB_NAME", "knowledge_bot"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Ai: AIConfig{
			EmbeddingProvider:  getEnv("EMBEDDING_PROVIDER", "ollama"),
			EmbeddingModel:     getEnv("EMBEDDING_MODEL", "mistral"),
			OllamaBaseURL:      getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
			JinaAPIKey:         getEnv("JINA_API_KEY", ""),
			JinaBaseURL:        getEnv("JINA_BASE_URL", ""),
			LLMProvider:        getEnv("LLM_PROVIDER", "ollama"),
			LLMModel:           getEnv("LLM_MODEL", "mistral"),
			HuggingFaceAPIKey:  getEnv("HUGGINGFACE_API_KEY", ""),
			HuggingFaceBaseURL: getEnv("HUGGINGFACE_BASE_URL", ""),
			Temperature:        getEnvAsFloat("LLM_TEMPERATURE", 0.2),
			EmbedTimeout:       getEnvAsDuration("EMBED_TIMEOUT", 30*time.Second),
			LLMTimeout:         getEnvAsDuration("LLM_TIMEOUT", 120*time.Second),
			MaxRetries:         getEnvAsInt("AI_MAX_RETRIES", 3),
			RetryInitial:       getEnvAsDuration("AI_RETRY_INITIAL", 200*time.Millisecond),
			RetryMax:           getEnvAsDuration("AI_RETRY_MAX", 5*time.Second),
		},
		Rag: RagConfig{
			ChunkSize:      getEnvAsInt("CHUNK_SIZE", 1000),
			ChunkOverlap:   getEnvAsInt("CHUNK_OVERLAP", 40),
			TopK:           getEnvAsInt("RETRIEVE_TOP_K", 3),
			MemoryMaxTurns: getEnvAsInt("MEMORY_MAX_TURNS", 20),
			AnswerLanguage: getEnv("ANSWER_LANGUAGE", "Russian"),
			QuestionPrefix: getEnv("QUESTION_PREFIX", "!"),
			LoaderTimeout:  getEnvAsDuration("LOADER_TIMEOUT", 30*time.Second),
			LoaderMaxBytes: getEnvAsInt64("LOADER_MAX_BYTES", 5<<20),
		},
		Store: StoreConfig{
			VectorBackend: getEnv("VECTOR_BACKEND", "chromem"),
			StateBackend:  getEnv("STATE_BACKEND", "db"),
			StateTTL:      getEnvAsDuration("STATE_TTL", 0),
			SessionTTL:    getEnvAsDuration("SESSION_TTL", time.Hour),
		},
		Admin: AdminConfig{
			JWTSecret: getEnv("ADMIN_JWT_SECRET", ""),
		},
		Otel: OtelConfig{
			Enabled:     getEnvAsBool("OTEL_ENABLED", false),
			Endpoint:    getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4318"),
			ServiceName: getEnv("OTEL_SERVICE_NAME", "ai-knowledge-bot"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the struct tags and the cross-field rules they cannot
// express.
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		errs, ok := err.(validator.ValidationErrors)
		if !ok {
			return err
		}
		msgs := make([]string, 0, len(errs))
		for _, e := range errs {
			msgs = append(msgs, fmt.Sprintf("%s failed on '%s' tag", e.Namespace(), e.Tag()))
		}
		return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
	}

	if c.Database.Driver == "postgres" && c.Database.Host == "" {
		return fmt.Errorf("invalid config: DB_HOST is required for postgres")
	}
	if c.Database.Driver == "sqlite" && c.Database.Path == "" {
		return fmt.Errorf("invalid config: DB_PATH is required for sqlite")
	}
	if c.Store.VectorBackend == "pgvector" && c.Database.Driver != "postgres" {
		return fmt.Errorf("invalid config: VECTOR_BACKEND=pgvector needs DB_DRIVER=postgres")
	}
	if c.Ai.EmbeddingProvider == "jina" && c.Ai.JinaAPIKey == "" {
		return fmt.Errorf("invalid config: JINA_API_KEY is required for the jina embedder")
	}
	if c.Ai.LLMProvider == "huggingface" && c.Ai.HuggingFaceAPIKey == "" {
		return fmt.Errorf("invalid config: HUGGINGFACE_API_KEY is required for the huggingface provider")
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

func (c AIConfig) policy(timeout time.Duration) retry.Policy {
	return retry.Policy{
		MaxTries:        uint(c.MaxRetries),
		AttemptTimeout:  timeout,
		InitialInterval: c.RetryInitial,
		MaxInterval:     c.RetryMax,
	}
}

func (c AIConfig) EmbedPolicy() retry.Policy {
	return c.policy(c.EmbedTimeout)
}

func (c AIConfig) LLMPolicy() retry.Policy {
	return c.policy(c.LLMTimeout)
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsInt64(key string, fallback int64) int64 {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseInt(strValue, 10, 64); err == nil {
		return value
	}
	return fallback
}

func getEnvAsFloat(key string, fallback float64) float64 {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseFloat(strValue, 64); err == nil {
		return value
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseBool(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	strValue := getEnv(key, "")
	if value, err := time.ParseDuration(strValue); err == nil {
		return value
	}
	return fallback
}
