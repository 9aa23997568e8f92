package store

import (
	"time"

	"ai-knowledge-bot/pkg/rag/bot"
)

// Session is a user's live bot as held by the session cache. The
// conversation state is kept in the state repository, not here.
type Session struct {
	UserID   string
	IndexDir string
	Bot      *bot.KnowledgeBot
	LoadedAt time.Time
}
