package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"ai-knowledge-bot/internal/config"
	"ai-knowledge-bot/pkg/events"
	pktNats "ai-knowledge-bot/pkg/nats"

	"github.com/fatih/color"
)

// events tails the bot's JetStream event stream.
func main() {
	subject := flag.String("subject", pktNats.StreamSubjects, "subject filter, e.g. events.bot.training.failed")
	durable := flag.String("durable", "", "durable consumer name; empty only shows new events")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Error: %v", err)
	}
	if cfg.App.NatsURL == "" {
		log.Fatal("Error: NATS_URL is not set")
	}

	// The publisher owns the stream definition; make sure it exists.
	pub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Fatalf("Error: %v", err)
	}
	pub.Close()

	sub, err := pktNats.NewSubscriber(cfg.App.NatsURL)
	if err != nil {
		log.Fatalf("Error: %v", err)
	}
	defer sub.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err = sub.Subscribe(ctx, *subject, *durable, func(_ context.Context, e events.Event) error {
		data, _ := json.Marshal(e.Payload())
		switch e.EventType() {
		case events.TypeTrainingFailed:
			color.Red("%s %s %s", e.Timestamp().Format("15:04:05"), e.EventType(), data)
		case events.TypeTrainingCompleted:
			color.Green("%s %s %s", e.Timestamp().Format("15:04:05"), e.EventType(), data)
		default:
			color.Cyan("%s %s %s", e.Timestamp().Format("15:04:05"), e.EventType(), data)
		}
		return nil
	})
	if err != nil {
		log.Fatalf("Error: %v", err)
	}

	<-ctx.Done()
}
