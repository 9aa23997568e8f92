package memory

import (
	"testing"
	"time"

	"ai-knowledge-bot/pkg/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionRepositorySaveGetDelete(t *testing.T) {
	repo := NewSessionRepository(time.Minute)

	_, found := repo.Get("1")
	assert.False(t, found)

	s := &store.Session{UserID: "1", IndexDir: "/tmp/users/1/index"}
	repo.Save(s)

	got, found := repo.Get("1")
	require.True(t, found)
	assert.Same(t, s, got)
	assert.Equal(t, 1, repo.Count())

	var evicted string
	repo.OnEvicted(func(userID string) { evicted = userID })
	repo.Delete("1")
	_, found = repo.Get("1")
	assert.False(t, found)
	assert.Equal(t, "1", evicted)
}

func TestSessionRepositoryExpires(t *testing.T) {
	repo := NewSessionRepository(20 * time.Millisecond)
	repo.Save(&store.Session{UserID: "2"})

	time.Sleep(40 * time.Millisecond)
	_, found := repo.Get("2")
	assert.False(t, found)
}
