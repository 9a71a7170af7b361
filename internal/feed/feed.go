// Package feed retrieves the raw OVH availability payload.
package feed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	logx "kswatch/pkg/logx"
)

const DefaultURL = "https://ws.ovh.com/dedicated/r2/ws.dispatcher/getAvailability2"

var ErrFetch = errors.New("availability fetch failed")

// maxBody caps the payload we are willing to decode.
const maxBody = 32 << 20

type Config struct {
	URL       string
	Timeout   time.Duration
	UserAgent string
}

// Client performs a single GET per call. It does not retry.
type Client struct {
	url  string
	ua   string
	http *http.Client
	log  logx.Logger
}

func New(cfg Config, log logx.Logger) *Client {
	if log.IsZero() {
		log = logx.Nop()
	}
	u := strings.TrimSpace(cfg.URL)
	if u == "" {
		u = DefaultURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	ua := cfg.UserAgent
	if ua == "" {
		ua = "kswatch/1"
	}
	return &Client{url: u, ua: ua, http: &http.Client{Timeout: timeout}, log: log}
}

// FetchAvailability returns the feed body decoded into a generic tree.
// Every failure (transport, timeout, status, decode) wraps ErrFetch.
func (c *Client) FetchAvailability(ctx context.Context) (any, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFetch, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.ua)

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFetch, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("%w: http %d: %s", ErrFetch, resp.StatusCode, strings.TrimSpace(string(snippet)))
	}

	var raw any
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBody)).Decode(&raw); err != nil {
		return nil, fmt.Errorf("%w: decode: %w", ErrFetch, err)
	}
	c.log.Debug("availability fetched",
		logx.String("url", c.url),
		logx.Int("status", resp.StatusCode),
		logx.Duration("took", time.Since(start)),
	)
	return raw, nil
}
