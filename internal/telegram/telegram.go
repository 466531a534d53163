// Package telegram connects the bot to the Telegram Bot API by long polling.
package telegram

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	tele "gopkg.in/telebot.v3"

	"moneytrack/internal/bot"
	"moneytrack/internal/log"
)

// DefaultPollTimeout is the long polling timeout.
const DefaultPollTimeout = 10 * time.Second

// Handler processes one chat event.
type Handler interface {
	Handle(ctx context.Context, ev bot.Event) error
}

// Transport receives updates and delivers replies.
type Transport struct {
	api    *tele.Bot
	logger *log.Logger
}

var _ bot.Deliverer = (*Transport)(nil)

func New(token string, pollTimeout time.Duration, logger *log.Logger) (*Transport, error) {
	if strings.TrimSpace(token) == "" {
		return nil, errors.New("missing telegram token")
	}
	if pollTimeout <= 0 {
		pollTimeout = DefaultPollTimeout
	}
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	logger = logger.WithComponent(log.ComponentTelegram)

	api, err := tele.NewBot(tele.Settings{
		Token:  token,
		Poller: &tele.LongPoller{Timeout: pollTimeout},
		OnError: func(err error, c tele.Context) {
			logger.Error("Telegram update failed", log.FieldError, err)
		},
	})
	if err != nil {
		return nil, fmt.Errorf("create telegram bot: %w", err)
	}
	return &Transport{api: api, logger: logger}, nil
}

// Run polls for updates and hands them to h until ctx is done.
func (t *Transport) Run(ctx context.Context, h Handler) error {
	t.api.Handle(tele.OnText, func(c tele.Context) error {
		sender := c.Sender()
		if sender == nil {
			return nil
		}
		at := time.Now()
		if m := c.Message(); m != nil && m.Unixtime > 0 {
			at = time.Unix(m.Unixtime, 0)
		}
		ev := bot.FromText(userID(sender), displayName(sender), c.Text(), at)
		if err := h.Handle(ctx, ev); err != nil {
			t.logger.DebugContext(ctx, "Text event returned error", log.FieldError, err)
		}
		return nil
	})

	t.api.Handle(tele.OnCallback, func(c tele.Context) error {
		sender, cb := c.Sender(), c.Callback()
		if sender == nil || cb == nil {
			return nil
		}
		ev := bot.FromCallback(userID(sender), displayName(sender), callbackData(cb.Data), time.Now())
		if err := h.Handle(ctx, ev); err != nil {
			t.logger.DebugContext(ctx, "Callback event returned error", log.FieldError, err)
		}
		// Acknowledge so the client stops its spinner; failures are cosmetic.
		if err := c.Respond(); err != nil {
			t.logger.WarnContext(ctx, "Failed to answer callback", log.FieldError, err)
		}
		return nil
	})

	go func() {
		<-ctx.Done()
		t.api.Stop()
	}()

	t.logger.InfoContext(ctx, "Telegram polling started", "bot", t.api.Me.Username)
	t.api.Start()
	t.logger.InfoContext(ctx, "Telegram polling stopped")
	return nil
}

// Deliver sends r to the private chat of userID.
func (t *Transport) Deliver(ctx context.Context, userID string, r bot.Reply) error {
	id, err := strconv.ParseInt(userID, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid chat id %q: %w", userID, err)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := t.api.Send(tele.ChatID(id), sendable(r), sendOptions(r)); err != nil {
		return fmt.Errorf("send message: %w", err)
	}
	return nil
}
