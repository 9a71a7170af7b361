package notifier

import (
	"context"
	"errors"
	"fmt"
	"html"
	"net/http"
	"strings"
	"time"

	tele "gopkg.in/telebot.v4"
)

// telegram sends pushes as bot messages. The bot never polls.
type telegram struct {
	bot      *tele.Bot
	chat     *tele.Chat
	threadID int
}

// NewTelegram builds a Telegram transport. Token and chat id are required.
func NewTelegram(cfg TelegramConfig, timeout time.Duration) (Transport, error) {
	if strings.TrimSpace(cfg.Token) == "" {
		return nil, errors.New("telegram token is empty")
	}
	if cfg.ChatID == 0 {
		return nil, errors.New("telegram chat_id is required")
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	b, err := tele.NewBot(tele.Settings{
		Token:   cfg.Token,
		URL:     strings.TrimSpace(cfg.APIURL),
		Offline: true,
		Client:  &http.Client{Timeout: timeout},
	})
	if err != nil {
		return nil, err
	}
	return &telegram{bot: b, chat: &tele.Chat{ID: cfg.ChatID}, threadID: cfg.ThreadID}, nil
}

func (t *telegram) Send(ctx context.Context, p Push) error {
	// telebot has no context plumbing; honor cancellation before the call.
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := t.bot.Send(t.chat, formatTelegram(p), &tele.SendOptions{
		ParseMode:             tele.ModeHTML,
		DisableWebPagePreview: true,
		DisableNotification:   p.Priority < 1,
		ThreadID:              t.threadID,
	})
	if err != nil {
		return fmt.Errorf("telegram: %w", err)
	}
	return nil
}

func formatTelegram(p Push) string {
	if p.Title == "" {
		return html.EscapeString(p.Message)
	}
	return "<b>" + html.EscapeString(p.Title) + "</b>\n" + html.EscapeString(p.Message)
}
