package implementation

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"ai-knowledge-bot/internal/entity"
	"ai-knowledge-bot/internal/model"
	"ai-knowledge-bot/internal/repository/specification"
	"ai-knowledge-bot/pkg/database"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.NewGormDB(database.GormConfig{
		Driver:   database.DriverSQLite,
		Path:     filepath.Join(t.TempDir(), "bot.db"),
		LogLevel: logger.Silent,
	})
	require.NoError(t, err)
	require.NoError(t, model.AutoMigrate(db, false))
	t.Cleanup(func() { _ = database.Close(db) })
	return db
}

func TestUserStateRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewUserStateRepository(newTestDB(t))

	got, err := repo.Get(ctx, "42")
	require.NoError(t, err)
	assert.Nil(t, got)

	require.NoError(t, repo.Upsert(ctx, &entity.UserState{UserId: "42", State: "AWAITING_URL"}))
	got, err = repo.Get(ctx, "42")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "AWAITING_URL", got.State)

	require.NoError(t, repo.Upsert(ctx, &entity.UserState{UserId: "42"}))
	got, err = repo.Get(ctx, "42")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Empty(t, got.State)

	require.NoError(t, repo.Delete(ctx, "42"))
	got, err = repo.Get(ctx, "42")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestUserBotRepositoryUpsertKeepsIdentity(t *testing.T) {
	ctx := context.Background()
	repo := NewUserBotRepository(newTestDB(t))

	bot := &entity.UserBot{UserId: "7", IndexDir: "/data/users/7/index"}
	require.NoError(t, repo.Upsert(ctx, bot))
	firstID := bot.Id

	now := time.Now()
	again := &entity.UserBot{UserId: "7", IndexDir: "/data/users/7/index", ChunkCount: 12, TrainedAt: &now}
	require.NoError(t, repo.Upsert(ctx, again))

	stored, err := repo.FindOne(ctx, specification.ByUserID{UserID: "7"})
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, firstID, stored.Id)
	assert.Equal(t, 12, stored.ChunkCount)
	assert.NotNil(t, stored.TrainedAt)

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)
}

func TestChatTurnRepositoryRecentAndTrim(t *testing.T) {
	ctx := context.Background()
	repo := NewChatTurnRepository(newTestDB(t))

	base := time.Now().Add(-time.Hour)
	for i, q := range []string{"q1", "q2", "q3", "q4"} {
		turn := &entity.ChatTurn{UserId: "1", Question: q, Answer: "a", CreatedAt: base.Add(time.Duration(i) * time.Minute)}
		require.NoError(t, repo.Create(ctx, turn))
	}
	require.NoError(t, repo.Create(ctx, &entity.ChatTurn{UserId: "2", Question: "other", Answer: "a"}))

	recent, err := repo.FindRecent(ctx, "1", 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, "q3", recent[0].Question)
	assert.Equal(t, "q4", recent[1].Question)

	require.NoError(t, repo.TrimToLatest(ctx, "1", 3))
	count, err := repo.Count(ctx, specification.ByUserID{UserID: "1"})
	require.NoError(t, err)
	assert.EqualValues(t, 3, count)

	others, err := repo.Count(ctx, specification.ByUserID{UserID: "2"})
	require.NoError(t, err)
	assert.EqualValues(t, 1, others)
}

func TestChatTurnRepositoryOrdersTiedTimestamps(t *testing.T) {
	ctx := context.Background()
	repo := NewChatTurnRepository(newTestDB(t))

	at := time.Now().Truncate(time.Second)
	for _, q := range []string{"first", "second", "third", "fourth"} {
		require.NoError(t, repo.Create(ctx, &entity.ChatTurn{UserId: "1", Question: q, Answer: "a", CreatedAt: at}))
	}

	recent, err := repo.FindRecent(ctx, "1", 3)
	require.NoError(t, err)
	require.Len(t, recent, 3)
	assert.Equal(t, "second", recent[0].Question)
	assert.Equal(t, "third", recent[1].Question)
	assert.Equal(t, "fourth", recent[2].Question)
	assert.Less(t, recent[0].Seq, recent[2].Seq)

	require.NoError(t, repo.TrimToLatest(ctx, "1", 2))
	kept, err := repo.FindRecent(ctx, "1", 10)
	require.NoError(t, err)
	require.Len(t, kept, 2)
	assert.Equal(t, "third", kept[0].Question)
	assert.Equal(t, "fourth", kept[1].Question)
}

func TestTrainedSourceRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewTrainedSourceRepository(newTestDB(t))

	source := &entity.TrainedSource{
		UserId:     "1",
		Url:        "https://example.com",
		Title:      "Example",
		ChunkCount: 4,
		Metadata:   map[string]interface{}{"content_type": "text/html"},
	}
	require.NoError(t, repo.Create(ctx, source))

	all, err := repo.FindAll(ctx, specification.ByUserID{UserID: "1"})
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "Example", all[0].Title)
	assert.Equal(t, "text/html", all[0].Metadata["content_type"])

	require.NoError(t, repo.DeleteByUserId(ctx, "1"))
	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)
}
