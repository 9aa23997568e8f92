package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"ai-knowledge-bot/internal/constant"
	"ai-knowledge-bot/internal/dto"
	"ai-knowledge-bot/internal/entity"
	"ai-knowledge-bot/internal/pkg/logger"
	"ai-knowledge-bot/pkg/apperror"
	"ai-knowledge-bot/pkg/events"
	"ai-knowledge-bot/pkg/rag/answerer"
	"ai-knowledge-bot/pkg/rag/bot"
	"ai-knowledge-bot/pkg/rag/response"
	"ai-knowledge-bot/pkg/rag/session"
	"ai-knowledge-bot/pkg/rag/state"
	"ai-knowledge-bot/pkg/store"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

const (
	conversationModule = "CONVERSATION"
	trainingModule     = "TRAINING"
)

var tracer = otel.Tracer("ai-knowledge-bot/conversation")

// ReplyFunc delivers one reply to the user. Replies are sent in order.
type ReplyFunc func(ctx context.Context, reply dto.BotReply) error

// SessionStore is what the conversation needs from the session manager.
type SessionStore interface {
	WithUser(ctx context.Context, userID string, fn func(ctx context.Context) error) error
	Get(ctx context.Context, userID string) (*store.Session, error)
	GetState(ctx context.Context, userID string) (state.State, error)
	SetState(ctx context.Context, userID string, s state.State) error
	ClearState(ctx context.Context, userID string) error
	RecordTraining(ctx context.Context, userID string, result bot.TrainResult) (*entity.TrainedSource, error)
	RecordAnswer(ctx context.Context, userID string, answer answerer.Answer) error
	Forget(ctx context.Context, userID string) error
	Status(ctx context.Context, userID string) (*session.Status, error)
}

type IConversationService interface {
	Handle(ctx context.Context, req dto.BotRequest, reply ReplyFunc) error
}

type conversationService struct {
	sessions       SessionStore
	machine        *state.Manager
	publisher      IPublisherService
	questionPrefix string
	logger         logger.ILogger
}

func NewConversationService(
	sessions SessionStore,
	machine *state.Manager,
	publisher IPublisherService,
	questionPrefix string,
	log logger.ILogger,
) IConversationService {
	return &conversationService{
		sessions:       sessions,
		machine:        machine,
		publisher:      publisher,
		questionPrefix: questionPrefix,
		logger:         log,
	}
}

func menuButtons() []dto.Button {
	return []dto.Button{{Text: constant.ButtonTrain, Data: constant.CallbackTrain}}
}

// Handle runs one interaction inside the user's serialized section. Failures
// that are not delivery failures are reported to the user and logged.
func (s *conversationService) Handle(ctx context.Context, req dto.BotRequest, reply ReplyFunc) error {
	ctx, span := tracer.Start(ctx, "conversation.Handle")
	defer span.End()
	span.SetAttributes(attribute.String("user_id", req.UserID))

	var delivery error
	send := func(ctx context.Context, r dto.BotReply) error {
		if err := reply(ctx, r); err != nil {
			delivery = err
			return err
		}
		return nil
	}

	err := s.sessions.WithUser(ctx, req.UserID, func(ctx context.Context) error {
		switch {
		case req.Command != "":
			return s.handleCommand(ctx, req, send)
		case req.Callback != "":
			return s.handleCallback(ctx, req.UserID, req.Callback, send)
		default:
			return s.handleText(ctx, req.UserID, req.Text, send)
		}
	})
	if err == nil || delivery != nil {
		return delivery
	}

	s.logger.Error(conversationModule, "Interaction failed", map[string]interface{}{
		"user_id": req.UserID,
		"kind":    string(apperror.KindOf(err)),
		"error":   err.Error(),
	})
	return reply(ctx, dto.BotReply{Text: constant.TextServiceFailed})
}

func (s *conversationService) handleCommand(ctx context.Context, req dto.BotRequest, send ReplyFunc) error {
	switch req.Command {
	case constant.CommandStart:
		if _, err := s.sessions.Get(ctx, req.UserID); err != nil {
			return err
		}
		name := req.DisplayName
		if name == "" {
			name = "there"
		}
		return send(ctx, dto.BotReply{
			Text:    fmt.Sprintf(constant.TextGreeting, name),
			Buttons: menuButtons(),
		})
	case constant.CommandStatus:
		status, err := s.sessions.Status(ctx, req.UserID)
		if err != nil {
			return err
		}
		return send(ctx, dto.BotReply{Text: renderStatus(status)})
	case constant.CommandForget:
		if err := s.sessions.Forget(ctx, req.UserID); err != nil {
			return err
		}
		return send(ctx, dto.BotReply{Text: constant.TextMemoryCleared})
	default:
		return send(ctx, dto.BotReply{
			Text:    fmt.Sprintf(constant.TextHelp, s.questionPrefix),
			Buttons: menuButtons(),
		})
	}
}

func (s *conversationService) handleCallback(ctx context.Context, userID, data string, send ReplyFunc) error {
	event := state.Event(data)
	if event != state.EventTrain && event != state.EventCancel {
		return send(ctx, dto.BotReply{Text: constant.TextMenu, Buttons: menuButtons()})
	}

	from, err := s.sessions.GetState(ctx, userID)
	if err != nil {
		return err
	}
	to, action := s.machine.Transition(userID, from, event)
	if err := s.persistState(ctx, userID, from, to); err != nil {
		return err
	}

	switch action {
	case state.ActionPromptURL:
		return send(ctx, dto.BotReply{
			Text:        constant.TextPromptURL,
			Buttons:     []dto.Button{{Text: constant.ButtonCancel, Data: constant.CallbackCancel}},
			EditMessage: true,
		})
	default:
		if from != state.AwaitingURL {
			return send(ctx, dto.BotReply{Text: constant.TextMenu, Buttons: menuButtons()})
		}
		s.publish(ctx, events.TrainingCancelled(userID))
		if err := send(ctx, dto.BotReply{Text: constant.TextTrainingCancel, EditMessage: true}); err != nil {
			return err
		}
		return send(ctx, dto.BotReply{Text: constant.TextMenu, Buttons: menuButtons()})
	}
}

func (s *conversationService) handleText(ctx context.Context, userID, text string, send ReplyFunc) error {
	from, err := s.sessions.GetState(ctx, userID)
	if err != nil {
		return err
	}
	to, action := s.machine.Transition(userID, from, state.EventText)
	// The pending intent is consumed before training runs, whatever its outcome.
	if err := s.persistState(ctx, userID, from, to); err != nil {
		return err
	}

	if action == state.ActionTrain {
		return s.train(ctx, userID, strings.TrimSpace(text), send)
	}
	return s.answer(ctx, userID, text, send)
}

func (s *conversationService) persistState(ctx context.Context, userID string, from, to state.State) error {
	if from == to {
		return nil
	}
	if to == state.Idle {
		return s.sessions.ClearState(ctx, userID)
	}
	return s.sessions.SetState(ctx, userID, to)
}

func (s *conversationService) train(ctx context.Context, userID, url string, send ReplyFunc) error {
	if err := send(ctx, dto.BotReply{Text: constant.TextTrainingStarted}); err != nil {
		return err
	}

	sess, err := s.sessions.Get(ctx, userID)
	if err != nil {
		return err
	}

	started := time.Now()
	result, err := sess.Bot.Train(ctx, url)
	if err != nil {
		kind := apperror.KindOf(err)
		s.logger.Warn(trainingModule, "Training failed", map[string]interface{}{
			"user_id": userID,
			"url":     url,
			"kind":    string(kind),
			"error":   err.Error(),
		})
		s.publish(ctx, events.TrainingFailed(userID, url, strings.ToLower(string(kind)), err.Error()))

		text := constant.TextServiceFailed
		if kind == apperror.KindTransport {
			text = fmt.Sprintf(constant.TextLoadFailed, url)
		}
		return send(ctx, dto.BotReply{Text: text, Buttons: menuButtons()})
	}

	if _, err := s.sessions.RecordTraining(ctx, userID, result); err != nil {
		s.logger.Error(trainingModule, "Failed to record training", map[string]interface{}{
			"user_id": userID,
			"url":     url,
			"error":   err.Error(),
		})
	}

	s.logger.Info(trainingModule, "Training completed", map[string]interface{}{
		"user_id":     userID,
		"url":         url,
		"title":       result.Title,
		"chunks":      result.Chunks,
		"duration_ms": time.Since(started).Milliseconds(),
	})
	s.publish(ctx, events.TrainingCompleted(userID, url, result.Title, result.Chunks))

	source := result.Title
	if source == "" {
		source = url
	}
	return send(ctx, dto.BotReply{Text: fmt.Sprintf(constant.TextTrainingDone, result.Chunks, source, s.questionPrefix)})
}

func (s *conversationService) answer(ctx context.Context, userID, text string, send ReplyFunc) error {
	if !strings.HasPrefix(text, s.questionPrefix) {
		return send(ctx, dto.BotReply{Text: fmt.Sprintf(constant.TextPrefixReminder, s.questionPrefix)})
	}
	question := strings.TrimSpace(strings.TrimPrefix(text, s.questionPrefix))
	if question == "" {
		return send(ctx, dto.BotReply{Text: fmt.Sprintf(constant.TextPrefixReminder, s.questionPrefix)})
	}

	sess, err := s.sessions.Get(ctx, userID)
	if err != nil {
		return err
	}

	started := time.Now()
	ans, err := sess.Bot.Ask(ctx, question)
	if err != nil {
		s.logger.Warn(conversationModule, "Question failed", map[string]interface{}{
			"user_id": userID,
			"kind":    string(apperror.KindOf(err)),
			"error":   err.Error(),
		})
		return send(ctx, dto.BotReply{Text: constant.TextServiceFailed})
	}

	if err := s.sessions.RecordAnswer(ctx, userID, ans); err != nil {
		s.logger.Error(conversationModule, "Failed to store turn", map[string]interface{}{
			"user_id": userID,
			"error":   err.Error(),
		})
	}
	s.publish(ctx, events.QuestionAnswered(userID, ans.Trained, len(ans.Sources), time.Since(started)))

	out := dto.BotReply{Text: response.Format(ans), Markdown: true}
	if !ans.Trained {
		out.Buttons = menuButtons()
	}
	return send(ctx, out)
}

func (s *conversationService) publish(ctx context.Context, event events.Event) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Warn(conversationModule, "Failed to publish event", map[string]interface{}{
			"type":  event.EventType(),
			"error": err.Error(),
		})
	}
}

func renderStatus(st *session.Status) string {
	var b strings.Builder
	fmt.Fprintf(&b, "State: %s\n", st.State)
	fmt.Fprintf(&b, "Chunks: %d\n", st.Chunks)
	fmt.Fprintf(&b, "Remembered turns: %d\n", st.Turns)
	if st.TrainedAt != nil {
		fmt.Fprintf(&b, "Last trained: %s\n", st.TrainedAt.Format(time.RFC1123))
	}
	if len(st.Sources) == 0 {
		b.WriteString("Sources: none yet")
		return b.String()
	}
	b.WriteString("Sources:")
	for _, src := range st.Sources {
		title := src.Title
		if title == "" {
			title = src.Url
		}
		fmt.Fprintf(&b, "\n- %s (%d chunks) %s", title, src.ChunkCount, src.Url)
	}
	return b.String()
}
