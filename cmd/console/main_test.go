package main

import (
	"testing"

	"ai-knowledge-bot/internal/dto"

	"github.com/stretchr/testify/assert"
)

func TestParseLine(t *testing.T) {
	tests := []struct {
		line   string
		want   dto.BotRequest
		wantOK bool
	}{
		{line: "   ", wantOK: false},
		{line: "/start", want: dto.BotRequest{UserID: "u", DisplayName: "console", Command: "start"}, wantOK: true},
		{line: "/status now", want: dto.BotRequest{UserID: "u", DisplayName: "console", Command: "status"}, wantOK: true},
		{line: "@train", want: dto.BotRequest{UserID: "u", DisplayName: "console", Callback: "train"}, wantOK: true},
		{line: "!what is it", want: dto.BotRequest{UserID: "u", DisplayName: "console", Text: "!what is it"}, wantOK: true},
		{line: "@", want: dto.BotRequest{UserID: "u", DisplayName: "console", Text: "@"}, wantOK: true},
	}
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			got, ok := parseLine("u", tt.line)
			assert.Equal(t, tt.wantOK, ok)
			if ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestUnescapeMarkdown(t *testing.T) {
	assert.Equal(t, "It is (a) test.", unescapeMarkdown("It is \\(a\\) test\\."))
	assert.Equal(t, `a\b`, unescapeMarkdown(`a\\b`))
}
