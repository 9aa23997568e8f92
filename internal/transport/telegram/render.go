package telegram

import (
	"ai-knowledge-bot/internal/dto"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// keyboard lays every button out on its own row.
func keyboard(buttons []dto.Button) *tgbotapi.InlineKeyboardMarkup {
	if len(buttons) == 0 {
		return nil
	}
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(buttons))
	for _, b := range buttons {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData(b.Text, b.Data)))
	}
	markup := tgbotapi.NewInlineKeyboardMarkup(rows...)
	return &markup
}

// maxMessageRunes is the Bot API limit on message text.
const maxMessageRunes = 4096

// render turns a reply into Bot API calls, one per message-sized piece of
// text. Edits need the id of the message that carried the pressed button;
// without it a new message is sent. Only the first piece edits and only the
// last piece carries the keyboard.
func render(chatID int64, messageID int, reply dto.BotReply) []tgbotapi.Chattable {
	parseMode := ""
	if reply.Markdown {
		parseMode = tgbotapi.ModeMarkdownV2
	}
	kb := keyboard(reply.Buttons)

	pieces := splitText(reply.Text, maxMessageRunes)
	out := make([]tgbotapi.Chattable, 0, len(pieces))
	for i, text := range pieces {
		var markup *tgbotapi.InlineKeyboardMarkup
		if i == len(pieces)-1 {
			markup = kb
		}

		if i == 0 && reply.EditMessage && messageID != 0 {
			edit := tgbotapi.NewEditMessageText(chatID, messageID, text)
			edit.ParseMode = parseMode
			edit.ReplyMarkup = markup
			out = append(out, edit)
			continue
		}

		msg := tgbotapi.NewMessage(chatID, text)
		msg.ParseMode = parseMode
		if markup != nil {
			msg.ReplyMarkup = *markup
		}
		out = append(out, msg)
	}
	return out
}

// splitText cuts text into pieces of at most limit runes, preferring line
// breaks. A piece never ends inside a backslash escape pair.
func splitText(text string, limit int) []string {
	runes := []rune(text)
	if len(runes) <= limit {
		return []string{text}
	}

	var pieces []string
	for len(runes) > limit {
		cut := limit
		for j := limit; j > limit/2; j-- {
			if runes[j-1] == '\n' {
				cut = j
				break
			}
		}

		trailing := 0
		for j := cut - 1; j >= 0 && runes[j] == '\\'; j-- {
			trailing++
		}
		if trailing%2 == 1 {
			cut--
		}

		pieces = append(pieces, string(runes[:cut]))
		runes = runes[cut:]
	}
	if len(runes) > 0 {
		pieces = append(pieces, string(runes))
	}
	return pieces
}
