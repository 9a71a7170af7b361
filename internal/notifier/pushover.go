package notifier

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const pushoverEndpoint = "https://api.pushover.net/1/messages.json"

type pushover struct {
	token     string
	clientKey string
	endpoint  string
	http      *http.Client
}

type pushoverResponse struct {
	Status  int      `json:"status"`
	Request string   `json:"request"`
	Errors  []string `json:"errors"`
}

// NewPushover builds a Pushover transport. Both credentials are required.
func NewPushover(cfg PushoverConfig, timeout time.Duration) (Transport, error) {
	if strings.TrimSpace(cfg.APIToken) == "" || strings.TrimSpace(cfg.ClientKey) == "" {
		return nil, errors.New("pushover api_token and client_key are required")
	}
	endpoint := strings.TrimSpace(cfg.Endpoint)
	if endpoint == "" {
		endpoint = pushoverEndpoint
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &pushover{
		token:     cfg.APIToken,
		clientKey: cfg.ClientKey,
		endpoint:  endpoint,
		http:      &http.Client{Timeout: timeout},
	}, nil
}

func (p *pushover) Send(ctx context.Context, push Push) error {
	form := url.Values{}
	form.Set("token", p.token)
	form.Set("user", p.clientKey)
	form.Set("message", push.Message)
	if push.Title != "" {
		form.Set("title", push.Title)
	}
	form.Set("priority", strconv.Itoa(push.Priority))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := p.http.Do(req)
	if err != nil {
		return fmt.Errorf("pushover: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil {
		return fmt.Errorf("pushover: read response: %w", err)
	}

	var pr pushoverResponse
	_ = json.Unmarshal(body, &pr)
	if resp.StatusCode < 200 || resp.StatusCode > 299 || pr.Status != 1 {
		msg := strings.Join(pr.Errors, "; ")
		if msg == "" {
			msg = strings.TrimSpace(string(body))
		}
		return fmt.Errorf("pushover: http %d: %s", resp.StatusCode, msg)
	}
	return nil
}
