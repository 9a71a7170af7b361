package notifier

import (
	"context"
	"errors"
	"time"
)

var ErrNotify = errors.New("notification failed")

const (
	DefaultTitle    = "KS"
	DefaultPriority = 1
)

// Push is one outbound notification.
type Push struct {
	Message  string
	Title    string
	Priority int // pushover scale: -2 lowest .. 2 emergency
}

// Transport delivers a Push.
type Transport interface {
	Send(ctx context.Context, p Push) error
}

// Config controls the dispatcher and its transport.
type Config struct {
	Driver     string
	Title      string
	Priority   int
	RatePerSec float64 // 0 means 1 push per second
	Timeout    time.Duration

	Pushover PushoverConfig
	Telegram TelegramConfig
}

type PushoverConfig struct {
	APIToken  string
	ClientKey string
	Endpoint  string // default: https://api.pushover.net/1/messages.json
}

type TelegramConfig struct {
	Token    string
	ChatID   int64
	ThreadID int
	APIURL   string // default: telebot's api.telegram.org
}
