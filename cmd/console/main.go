package main

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"ai-knowledge-bot/internal/bootstrap"
	"ai-knowledge-bot/internal/config"
	"ai-knowledge-bot/internal/dto"
	"ai-knowledge-bot/internal/pkg/logger"
	"ai-knowledge-bot/pkg/database"

	"github.com/fatih/color"
)

const consoleUser = "console"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Error: %v", err)
	}

	db, err := bootstrap.OpenDatabase(cfg)
	if err != nil {
		log.Fatalf("Unable to open database: %v", err)
	}
	defer database.Close(db)

	sysLogger := logger.New(logger.Options{FilePath: cfg.App.LogFilePath, FileOnly: true})
	defer sysLogger.Sync()

	container, err := bootstrap.NewContainer(db, cfg, sysLogger)
	if err != nil {
		log.Fatalf("Unable to build container: %v", err)
	}
	defer container.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	color.Cyan("Knowledge bot console. Commands: /start /status /forget /help, buttons: @train @cancel, Ctrl+D to quit.\n")

	show := func(_ context.Context, reply dto.BotReply) error {
		text := reply.Text
		if reply.Markdown {
			text = unescapeMarkdown(text)
		}
		if reply.EditMessage {
			color.Magenta("bot (edit)> %s", text)
		} else {
			color.Green("bot> %s", text)
		}
		for _, b := range reply.Buttons {
			color.Yellow("      [@%s] %s", b.Data, b.Text)
		}
		return nil
	}

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("you> ")
		if !scanner.Scan() || ctx.Err() != nil {
			fmt.Println()
			return
		}
		req, ok := parseLine(consoleUser, scanner.Text())
		if !ok {
			continue
		}
		if err := container.Conversation.Handle(ctx, req, show); err != nil {
			color.Red("error: %v", err)
		}
	}
}

// parseLine maps console input onto a bot request: "/cmd" is a command,
// "@data" presses a button and anything else is plain text.
func parseLine(userID, line string) (dto.BotRequest, bool) {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return dto.BotRequest{}, false
	}
	req := dto.BotRequest{UserID: userID, DisplayName: "console"}
	switch {
	case strings.HasPrefix(trimmed, "/") && len(trimmed) > 1:
		req.Command = strings.Fields(trimmed[1:])[0]
	case strings.HasPrefix(trimmed, "@") && len(trimmed) > 1:
		req.Callback = trimmed[1:]
	default:
		req.Text = line
	}
	return req, true
}

func unescapeMarkdown(s string) string {
	var b strings.Builder
	escaped := false
	for _, r := range s {
		if r == '\\' && !escaped {
			escaped = true
			continue
		}
		escaped = false
		b.WriteRune(r)
	}
	return b.String()
}
