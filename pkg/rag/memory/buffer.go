package memory

import (
	"sync"
	"time"

	"ai-knowledge-bot/pkg/llm"
)

// DefaultMaxTurns is the retention window used when none is configured.
const DefaultMaxTurns = 20

// Turn is one answered question.
type Turn struct {
	Question string
	Answer   string
	At       time.Time
}

// Buffer holds the most recent turns in insertion order. A non-positive
// capacity keeps every turn.
type Buffer struct {
	mu       sync.RWMutex
	turns    []Turn
	maxTurns int
}

func NewBuffer(maxTurns int, initial ...Turn) *Buffer {
	b := &Buffer{maxTurns: maxTurns}
	for _, t := range initial {
		b.Append(t)
	}
	return b
}

// Append adds a turn and returns how many old turns were evicted.
func (b *Buffer) Append(t Turn) int {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.turns = append(b.turns, t)
	if b.maxTurns <= 0 || len(b.turns) <= b.maxTurns {
		return 0
	}

	evicted := len(b.turns) - b.maxTurns
	kept := make([]Turn, b.maxTurns)
	copy(kept, b.turns[evicted:])
	b.turns = kept
	return evicted
}

func (b *Buffer) Turns() []Turn {
	b.mu.RLock()
	defer b.mu.RUnlock()

	out := make([]Turn, len(b.turns))
	copy(out, b.turns)
	return out
}

// Messages renders the turns as alternating user and assistant messages.
func (b *Buffer) Messages() []llm.Message {
	b.mu.RLock()
	defer b.mu.RUnlock()

	messages := make([]llm.Message, 0, len(b.turns)*2)
	for _, t := range b.turns {
		messages = append(messages,
			llm.Message{Role: llm.RoleUser, Content: t.Question},
			llm.Message{Role: llm.RoleAssistant, Content: t.Answer},
		)
	}
	return messages
}

func (b *Buffer) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.turns)
}

func (b *Buffer) Capacity() int {
	return b.maxTurns
}

func (b *Buffer) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.turns = nil
}
