package bootstrap

import (
	"context"
	"path/filepath"
	"testing"

	"ai-knowledge-bot/internal/config"
	"ai-knowledge-bot/internal/dto"
	"ai-knowledge-bot/internal/pkg/logger"
	"ai-knowledge-bot/pkg/database"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewContainerWiresDefaults(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("DATA_DIR", dir)
	t.Setenv("DB_PATH", filepath.Join(dir, "bot.db"))

	cfg, err := config.FromEnv()
	require.NoError(t, err)

	db, err := OpenDatabase(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close(db) })

	c, err := NewContainer(db, cfg, logger.NewNop())
	require.NoError(t, err)
	defer c.Close()

	require.NotNil(t, c.Conversation)
	require.NotNil(t, c.ConsumerService)
	require.NoError(t, c.ConsumerService.Consume(context.Background()))

	var replies []dto.BotReply
	err = c.Conversation.Handle(context.Background(), dto.BotRequest{UserID: "5", Command: "start"},
		func(_ context.Context, r dto.BotReply) error {
			replies = append(replies, r)
			return nil
		})
	require.NoError(t, err)
	require.Len(t, replies, 1)
	assert.Equal(t, 1, c.Sessions.Loaded())
	assert.DirExists(t, filepath.Join(dir, "users", "5"))
}

func TestNewContainerRejectsUnknownLLM(t *testing.T) {
	t.Setenv("DATA_DIR", t.TempDir())
	cfg, err := config.FromEnv()
	require.NoError(t, err)
	cfg.Ai.LLMProvider = "gemini"

	_, err = NewContainer(nil, cfg, logger.NewNop())
	assert.Error(t, err)
}

func TestGormConfig(t *testing.T) {
	cfg := &config.Config{
		App:      config.AppConfig{Environment: "production"},
		Database: config.DatabaseConfig{Driver: "postgres", Host: "db", Port: "5432", Name: "bot", SSLMode: "disable"},
	}
	got := GormConfig(cfg)
	assert.Equal(t, database.DriverPostgres, got.Driver)
	assert.Equal(t, "bot", got.DBName)
	assert.Equal(t, "db", got.Host)
	assert.NotZero(t, got.LogLevel)
}
