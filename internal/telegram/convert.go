package telegram

import (
	"bytes"
	"strconv"
	"strings"

	tele "gopkg.in/telebot.v3"

	"moneytrack/internal/bot"
)

func userID(u *tele.User) string {
	return strconv.FormatInt(u.ID, 10)
}

func displayName(u *tele.User) string {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name == "" {
		return u.Username
	}
	return name
}

// callbackData drops the "\f" marker telebot puts in front of unique buttons.
func callbackData(data string) string {
	return strings.TrimSpace(strings.ReplaceAll(data, "\f", ""))
}

// sendable is the payload for r: its text, or its document captioned with the text.
func sendable(r bot.Reply) any {
	if r.Document == nil {
		return r.Text
	}
	return &tele.Document{
		File:     tele.FromReader(bytes.NewReader(r.Document.Data)),
		FileName: r.Document.Name,
		Caption:  r.Text,
	}
}

func sendOptions(r bot.Reply) *tele.SendOptions {
	opts := &tele.SendOptions{ReplyMarkup: markup(r)}
	if r.Markdown {
		opts.ParseMode = tele.ModeMarkdown
	}
	return opts
}

func markup(r bot.Reply) *tele.ReplyMarkup {
	switch {
	case len(r.Inline) > 0:
		rows := make([][]tele.InlineButton, 0, len(r.Inline))
		for _, row := range r.Inline {
			buttons := make([]tele.InlineButton, 0, len(row))
			for _, b := range row {
				buttons = append(buttons, tele.InlineButton{Text: b.Text, Data: b.Data})
			}
			rows = append(rows, buttons)
		}
		return &tele.ReplyMarkup{InlineKeyboard: rows}
	case len(r.Keyboard) > 0:
		rows := make([][]tele.ReplyButton, 0, len(r.Keyboard))
		for _, row := range r.Keyboard {
			buttons := make([]tele.ReplyButton, 0, len(row))
			for _, text := range row {
				buttons = append(buttons, tele.ReplyButton{Text: text})
			}
			rows = append(rows, buttons)
		}
		return &tele.ReplyMarkup{ReplyKeyboard: rows, ResizeKeyboard: true, OneTimeKeyboard: r.OneTime}
	}
	return nil
}
