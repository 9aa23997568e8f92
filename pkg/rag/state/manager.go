package state

import (
	"fmt"
	"log"
)

// State is the pending intent of a conversation. The zero value is Idle.
type State string

const (
	Idle        State = ""
	AwaitingURL State = "AWAITING_URL"
)

func (s State) String() string {
	if s == Idle {
		return "IDLE"
	}
	return string(s)
}

// Parse accepts the persisted form of a state.
func Parse(raw string) (State, error) {
	switch State(raw) {
	case Idle, AwaitingURL:
		return State(raw), nil
	case "IDLE":
		return Idle, nil
	}
	return Idle, fmt.Errorf("unknown conversation state %q", raw)
}

// Event is something the user did.
type Event string

const (
	EventTrain  Event = "train"
	EventCancel Event = "cancel"
	EventText   Event = "text"
)

// Action tells the controller what to do after a transition.
type Action string

const (
	ActionPromptURL  Action = "PROMPT_URL"
	ActionTrain      Action = "TRAIN"
	ActionHandleText Action = "HANDLE_TEXT"
	ActionShowMenu   Action = "SHOW_MENU"
)

// Manager handles conversation state transitions
type Manager struct {
	logger *log.Logger
}

func NewManager(logger *log.Logger) *Manager {
	if logger == nil {
		logger = log.Default()
	}
	return &Manager{logger: logger}
}

// Transition returns the next state and the action it implies. Text while
// awaiting a URL consumes the pending intent whatever training later does.
func (m *Manager) Transition(userID string, from State, ev Event) (State, Action) {
	var to State
	var action Action

	switch ev {
	case EventTrain:
		to, action = AwaitingURL, ActionPromptURL
	case EventCancel:
		to, action = Idle, ActionShowMenu
	case EventText:
		if from == AwaitingURL {
			to, action = Idle, ActionTrain
		} else {
			to, action = Idle, ActionHandleText
		}
	default:
		to, action = from, ActionShowMenu
	}

	if to != from {
		m.logger.Printf("[STATE] user %s: %s -> %s (%s)", userID, from, to, ev)
	}
	return to, action
}
