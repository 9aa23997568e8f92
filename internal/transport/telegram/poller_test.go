package telegram

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"
	"unicode/utf8"

	"ai-knowledge-bot/internal/constant"
	"ai-knowledge-bot/internal/dto"
	"ai-knowledge-bot/internal/pkg/logger"
	"ai-knowledge-bot/internal/service"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAPI struct {
	updates chan tgbotapi.Update

	mu       sync.Mutex
	sent     []tgbotapi.Chattable
	requests []tgbotapi.Chattable
	stopped  bool

	rejectMarkdown bool
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{updates: make(chan tgbotapi.Update, 8)}
}

func (f *fakeAPI) GetUpdatesChan(_ tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel {
	return f.updates
}

func (f *fakeAPI) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if msg, ok := c.(tgbotapi.MessageConfig); ok {
		if utf8.RuneCountInString(msg.Text) > maxMessageRunes {
			return tgbotapi.Message{}, errors.New("Bad Request: message is too long")
		}
		if f.rejectMarkdown && msg.ParseMode != "" {
			return tgbotapi.Message{}, errors.New("Bad Request: can't parse entities")
		}
	}
	f.sent = append(f.sent, c)
	return tgbotapi.Message{}, nil
}

func (f *fakeAPI) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, c)
	return &tgbotapi.APIResponse{Ok: true}, nil
}

func (f *fakeAPI) StopReceivingUpdates() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stopped = true
}

func (f *fakeAPI) sentCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent)
}

type echoConversation struct {
	mu   sync.Mutex
	reqs []dto.BotRequest
}

func (e *echoConversation) Handle(ctx context.Context, req dto.BotRequest, reply service.ReplyFunc) error {
	e.mu.Lock()
	e.reqs = append(e.reqs, req)
	e.mu.Unlock()
	if req.Callback != "" {
		return reply(ctx, dto.BotReply{Text: "edited", EditMessage: true})
	}
	return reply(ctx, dto.BotReply{Text: "got " + req.Text + req.Command})
}

func TestToRequest(t *testing.T) {
	user := &tgbotapi.User{ID: 42, FirstName: "Ada", LastName: "Lovelace"}
	chat := &tgbotapi.Chat{ID: 1001}

	tests := []struct {
		name      string
		update    tgbotapi.Update
		want      dto.BotRequest
		wantChat  int64
		wantMsgID int
		wantOK    bool
	}{
		{
			name:     "plain text",
			update:   tgbotapi.Update{Message: &tgbotapi.Message{From: user, Chat: chat, Text: "!hello"}},
			want:     dto.BotRequest{UserID: "42", DisplayName: "Ada Lovelace", Text: "!hello"},
			wantChat: 1001,
			wantOK:   true,
		},
		{
			name: "command",
			update: tgbotapi.Update{Message: &tgbotapi.Message{
				From: user, Chat: chat, Text: "/start",
				Entities: []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: 6}},
			}},
			want:     dto.BotRequest{UserID: "42", DisplayName: "Ada Lovelace", Command: "start"},
			wantChat: 1001,
			wantOK:   true,
		},
		{
			name: "callback",
			update: tgbotapi.Update{CallbackQuery: &tgbotapi.CallbackQuery{
				ID: "cb", From: user, Data: "train",
				Message: &tgbotapi.Message{MessageID: 9, Chat: chat},
			}},
			want:      dto.BotRequest{UserID: "42", DisplayName: "Ada Lovelace", Callback: "train"},
			wantChat:  1001,
			wantMsgID: 9,
			wantOK:    true,
		},
		{
			name:   "media without text",
			update: tgbotapi.Update{Message: &tgbotapi.Message{From: user, Chat: chat}},
		},
		{
			name:   "edited message",
			update: tgbotapi.Update{EditedMessage: &tgbotapi.Message{From: user, Chat: chat, Text: "x"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, chatID, msgID, ok := toRequest(tt.update)
			assert.Equal(t, tt.wantOK, ok)
			if !tt.wantOK {
				return
			}
			assert.Equal(t, tt.want, req)
			assert.Equal(t, tt.wantChat, chatID)
			assert.Equal(t, tt.wantMsgID, msgID)
		})
	}
}

func TestRender(t *testing.T) {
	reply := dto.BotReply{
		Text:     "Done\\.",
		Markdown: true,
		Buttons:  []dto.Button{{Text: "Train me", Data: "train"}},
	}

	calls := render(5, 0, reply)
	require.Len(t, calls, 1)
	msg, ok := calls[0].(tgbotapi.MessageConfig)
	require.True(t, ok)
	assert.Equal(t, tgbotapi.ModeMarkdownV2, msg.ParseMode)
	kb, ok := msg.ReplyMarkup.(tgbotapi.InlineKeyboardMarkup)
	require.True(t, ok)
	require.Len(t, kb.InlineKeyboard, 1)
	assert.Equal(t, "train", *kb.InlineKeyboard[0][0].CallbackData)

	reply.EditMessage = true
	reply.Markdown = false
	calls = render(5, 9, reply)
	require.Len(t, calls, 1)
	edit, ok := calls[0].(tgbotapi.EditMessageTextConfig)
	require.True(t, ok)
	assert.Equal(t, 9, edit.MessageID)
	assert.Empty(t, edit.ParseMode)
	require.NotNil(t, edit.ReplyMarkup)

	_, ok = render(5, 0, reply)[0].(tgbotapi.MessageConfig)
	assert.True(t, ok, "edit without a message id falls back to a new message")

	plain, ok := render(5, 0, dto.BotReply{Text: "hi"})[0].(tgbotapi.MessageConfig)
	require.True(t, ok)
	assert.Nil(t, plain.ReplyMarkup)
}

func TestRenderSplitsLongText(t *testing.T) {
	text := strings.Repeat("Step 1\\. Run `go build`\\.\n", 200)
	reply := dto.BotReply{
		Text:     text,
		Markdown: true,
		Buttons:  []dto.Button{{Text: "Train me", Data: "train"}},
	}

	calls := render(5, 0, reply)
	require.Greater(t, len(calls), 1)

	var joined strings.Builder
	for i, c := range calls {
		msg, ok := c.(tgbotapi.MessageConfig)
		require.True(t, ok)
		assert.LessOrEqual(t, utf8.RuneCountInString(msg.Text), maxMessageRunes)
		assert.Equal(t, tgbotapi.ModeMarkdownV2, msg.ParseMode)
		if i == len(calls)-1 {
			assert.NotNil(t, msg.ReplyMarkup)
		} else {
			assert.Nil(t, msg.ReplyMarkup)
		}
		joined.WriteString(msg.Text)
	}
	assert.Equal(t, text, joined.String())
}

func TestSplitTextKeepsEscapePairs(t *testing.T) {
	// the cut at 5 would separate the backslash from the dot
	pieces := splitText("abcd\\.efgh", 5)
	assert.Equal(t, []string{"abcd", "\\.efg", "h"}, pieces)

	pieces = splitText("abc\n"+strings.Repeat("x", 5), 6)
	assert.Equal(t, []string{"abc\n", "xxxxx"}, pieces)

	assert.Equal(t, []string{"short"}, splitText("short", 10))
	assert.Equal(t, []string{""}, splitText("", 10))
}

func TestPollerDispatchesAndStops(t *testing.T) {
	api := newFakeAPI()
	convo := &echoConversation{}
	p := NewPoller(api, convo, 2, 1, logger.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- p.Run(ctx) }()

	user := &tgbotapi.User{ID: 7}
	chat := &tgbotapi.Chat{ID: 7}
	api.updates <- tgbotapi.Update{UpdateID: 1, Message: &tgbotapi.Message{From: user, Chat: chat, Text: "hello"}}
	api.updates <- tgbotapi.Update{UpdateID: 2, CallbackQuery: &tgbotapi.CallbackQuery{
		ID: "cb", From: user, Data: "cancel", Message: &tgbotapi.Message{MessageID: 3, Chat: chat},
	}}

	require.Eventually(t, func() bool { return api.sentCount() == 2 }, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("poller did not stop")
	}

	api.mu.Lock()
	defer api.mu.Unlock()
	assert.True(t, api.stopped)
	require.Len(t, api.requests, 1)
	ack, ok := api.requests[0].(tgbotapi.CallbackConfig)
	require.True(t, ok)
	assert.Equal(t, "cb", ack.CallbackQueryID)
	assert.Len(t, convo.reqs, 2)
}

type longAnswerConversation struct{}

func (longAnswerConversation) Handle(ctx context.Context, _ dto.BotRequest, reply service.ReplyFunc) error {
	return reply(ctx, dto.BotReply{Text: strings.Repeat("a", 5000), Markdown: true})
}

func TestPollerSendsLongAnswerInPieces(t *testing.T) {
	api := newFakeAPI()
	p := NewPoller(api, longAnswerConversation{}, 1, 1, logger.NewNop())

	p.handle(context.Background(), tgbotapi.Update{Message: &tgbotapi.Message{
		From: &tgbotapi.User{ID: 7}, Chat: &tgbotapi.Chat{ID: 7}, Text: "!long",
	}})

	api.mu.Lock()
	defer api.mu.Unlock()
	require.Len(t, api.sent, 2)
	first := api.sent[0].(tgbotapi.MessageConfig)
	second := api.sent[1].(tgbotapi.MessageConfig)
	assert.Equal(t, maxMessageRunes, utf8.RuneCountInString(first.Text))
	assert.Equal(t, 5000-maxMessageRunes, utf8.RuneCountInString(second.Text))
}

func TestPollerFallsBackWhenDeliveryFails(t *testing.T) {
	api := newFakeAPI()
	api.rejectMarkdown = true
	p := NewPoller(api, longAnswerConversation{}, 1, 1, logger.NewNop())

	p.handle(context.Background(), tgbotapi.Update{Message: &tgbotapi.Message{
		From: &tgbotapi.User{ID: 7}, Chat: &tgbotapi.Chat{ID: 7}, Text: "!long",
	}})

	api.mu.Lock()
	defer api.mu.Unlock()
	require.Len(t, api.sent, 1)
	msg := api.sent[0].(tgbotapi.MessageConfig)
	assert.Equal(t, constant.TextServiceFailed, msg.Text)
	assert.Empty(t, msg.ParseMode)
	assert.Equal(t, int64(7), msg.ChatID)
}
