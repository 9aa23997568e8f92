package service

import (
	"context"

	"ai-knowledge-bot/internal/pkg/logger"
	"ai-knowledge-bot/pkg/events"

	"github.com/ThreeDotsLabs/watermill/message"
)

const eventsModule = "EVENTS"

// EventSink receives every relayed event. The NATS publisher is one.
type EventSink interface {
	Publish(ctx context.Context, event events.Event) error
}

type IConsumerService interface {
	Consume(ctx context.Context) error
}

// consumerService relays events from the in-process bus to the log and,
// when configured, to an external sink.
type consumerService struct {
	subscriber message.Subscriber
	topicName  string
	sink       EventSink
	logger     logger.ILogger
}

func NewConsumerService(subscriber message.Subscriber, topicName string, sink EventSink, log logger.ILogger) IConsumerService {
	return &consumerService{
		subscriber: subscriber,
		topicName:  topicName,
		sink:       sink,
		logger:     log,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.subscriber.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	event, err := events.Unmarshal(msg.Payload)
	if err != nil {
		cs.logger.Error(eventsModule, "Dropping undecodable event", map[string]interface{}{
			"message_id": msg.UUID,
			"error":      err.Error(),
		})
		msg.Ack()
		return
	}

	cs.logger.Info(eventsModule, event.EventType(), event.Payload())

	if cs.sink != nil {
		if err := cs.sink.Publish(ctx, event); err != nil {
			// The bus redelivers nacked messages at once; a down broker would spin.
			cs.logger.Warn(eventsModule, "Failed to forward event", map[string]interface{}{
				"type":  event.EventType(),
				"error": err.Error(),
			})
		}
	}

	msg.Ack()
}
