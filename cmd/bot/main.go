package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ai-knowledge-bot/internal/bootstrap"
	"ai-knowledge-bot/internal/config"
	"ai-knowledge-bot/internal/pkg/logger"
	"ai-knowledge-bot/internal/server"
	"ai-knowledge-bot/internal/tracer"
	"ai-knowledge-bot/internal/transport/telegram"
	"ai-knowledge-bot/pkg/database"
)

func main() {
	// 1. Load Configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Error: %v", err)
	}
	if cfg.Telegram.Token == "" {
		log.Fatal("Error: TELEGRAM_BOT_TOKEN is not set")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 2. Tracing
	shutdownTracer := tracer.InitTracer(cfg.Otel)

	// 3. Database
	db, err := bootstrap.OpenDatabase(cfg)
	if err != nil {
		log.Fatalf("Unable to open database: %v", err)
	}

	// 4. Bootstrap Dependencies (Container)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.IsProduction())
	container, err := bootstrap.NewContainer(db, cfg, sysLogger)
	if err != nil {
		log.Fatalf("Unable to build container: %v", err)
	}

	// 5. Background Services
	if err := container.ConsumerService.Consume(ctx); err != nil {
		log.Printf("Background Consumer Error: %v", err)
	}

	srv := server.New(cfg, container)
	go func() {
		if err := srv.Run(); err != nil {
			log.Printf("Ops server stopped: %v", err)
		}
	}()

	// 6. Telegram
	api, err := telegram.NewBotAPI(cfg.Telegram.Token, cfg.Telegram.Debug)
	if err != nil {
		log.Fatalf("Unable to connect to Telegram: %v", err)
	}
	log.Printf("Authorized on account %s", api.Self.UserName)

	poller := telegram.NewPoller(api, container.Conversation, cfg.Telegram.MaxWorkers, cfg.Telegram.PollTimeout, sysLogger)
	if err := poller.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Printf("Poller stopped: %v", err)
	}

	// 7. Shutdown
	log.Println("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Ops server shutdown: %v", err)
	}
	if err := shutdownTracer(shutdownCtx); err != nil {
		log.Printf("Tracer shutdown: %v", err)
	}
	container.Close()
	if err := database.Close(db); err != nil {
		log.Printf("Database close: %v", err)
	}
	_ = sysLogger.Sync()
}
