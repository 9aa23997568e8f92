package telegram

import (
	"context"
	"strconv"
	"strings"
	"sync"

	"ai-knowledge-bot/internal/constant"
	"ai-knowledge-bot/internal/dto"
	"ai-knowledge-bot/internal/pkg/logger"
	"ai-knowledge-bot/internal/service"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const logModule = "TELEGRAM"

// API is the part of *tgbotapi.BotAPI the poller uses.
type API interface {
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	StopReceivingUpdates()
}

// NewBotAPI connects to Telegram with token.
func NewBotAPI(token string, debug bool) (*tgbotapi.BotAPI, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}
	api.Debug = debug
	return api, nil
}

type Poller struct {
	api         API
	convo       service.IConversationService
	pollTimeout int
	workers     chan struct{}
	wg          sync.WaitGroup
	logger      logger.ILogger
}

func NewPoller(api API, convo service.IConversationService, maxWorkers, pollTimeout int, log logger.ILogger) *Poller {
	if maxWorkers <= 0 {
		maxWorkers = 1
	}
	return &Poller{
		api:         api,
		convo:       convo,
		pollTimeout: pollTimeout,
		workers:     make(chan struct{}, maxWorkers),
		logger:      log,
	}
}

// Run long-polls until ctx is cancelled or the update channel closes, then
// waits for in-flight handlers.
func (p *Poller) Run(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = p.pollTimeout
	updates := p.api.GetUpdatesChan(u)

	p.logger.Info(logModule, "Polling started", map[string]interface{}{"workers": cap(p.workers)})
	defer p.wg.Wait()

	for {
		select {
		case <-ctx.Done():
			p.api.StopReceivingUpdates()
			p.logger.Info(logModule, "Polling stopped", nil)
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			select {
			case p.workers <- struct{}{}:
			case <-ctx.Done():
				p.api.StopReceivingUpdates()
				return nil
			}
			p.wg.Add(1)
			go func(update tgbotapi.Update) {
				defer func() {
					<-p.workers
					p.wg.Done()
				}()
				p.handle(context.WithoutCancel(ctx), update)
			}(update)
		}
	}
}

// Wait blocks until every dispatched update is handled.
func (p *Poller) Wait() {
	p.wg.Wait()
}

func (p *Poller) handle(ctx context.Context, update tgbotapi.Update) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error(logModule, "Handler panicked", map[string]interface{}{
				"update_id": update.UpdateID,
				"panic":     r,
			})
		}
	}()

	req, chatID, messageID, ok := toRequest(update)
	if !ok {
		return
	}

	if cq := update.CallbackQuery; cq != nil {
		if _, err := p.api.Request(tgbotapi.NewCallback(cq.ID, "")); err != nil {
			p.logger.Warn(logModule, "Callback ack failed", map[string]interface{}{
				"user_id": req.UserID,
				"error":   err.Error(),
			})
		}
	}

	err := p.convo.Handle(ctx, req, func(_ context.Context, reply dto.BotReply) error {
		for _, c := range render(chatID, messageID, reply) {
			if _, err := p.api.Send(c); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		p.logger.Error(logModule, "Reply delivery failed", map[string]interface{}{
			"user_id": req.UserID,
			"chat_id": chatID,
			"error":   err.Error(),
		})
		// plain text so a formatting rejection cannot repeat
		if _, err := p.api.Send(tgbotapi.NewMessage(chatID, constant.TextServiceFailed)); err != nil {
			p.logger.Error(logModule, "Fallback reply failed", map[string]interface{}{
				"user_id": req.UserID,
				"error":   err.Error(),
			})
		}
	}
}

// toRequest maps an update to a transport-free request. Updates the bot does
// not handle (edits, channel posts, media) report ok=false.
func toRequest(update tgbotapi.Update) (req dto.BotRequest, chatID int64, messageID int, ok bool) {
	switch {
	case update.CallbackQuery != nil:
		cq := update.CallbackQuery
		if cq.Message == nil || cq.From == nil {
			return req, 0, 0, false
		}
		req = dto.BotRequest{
			UserID:      strconv.FormatInt(cq.From.ID, 10),
			DisplayName: displayName(cq.From),
			Callback:    cq.Data,
		}
		return req, cq.Message.Chat.ID, cq.Message.MessageID, true

	case update.Message != nil:
		msg := update.Message
		req = dto.BotRequest{UserID: strconv.FormatInt(msg.Chat.ID, 10)}
		if msg.From != nil {
			req.UserID = strconv.FormatInt(msg.From.ID, 10)
			req.DisplayName = displayName(msg.From)
		}
		if msg.IsCommand() {
			req.Command = msg.Command()
		} else if msg.Text != "" {
			req.Text = msg.Text
		} else {
			return req, 0, 0, false
		}
		return req, msg.Chat.ID, 0, true
	}
	return req, 0, 0, false
}

func displayName(u *tgbotapi.User) string {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name == "" {
		name = u.UserName
	}
	return name
}
