package notifier

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestTelegramSendsMessage(t *testing.T) {
	var (
		path string
		body map[string]any
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		b, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(b, &body)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"ok":true,"result":{"message_id":7,"date":0,"chat":{"id":42,"type":"private"}}}`))
	}))
	defer srv.Close()

	tr, err := NewTelegram(TelegramConfig{Token: "123:abc", ChatID: 42, APIURL: srv.URL}, time.Second)
	if err != nil {
		t.Fatalf("NewTelegram: %v", err)
	}
	if err := tr.Send(context.Background(), Push{Message: "1801sk13 available in gra", Title: "KS", Priority: 1}); err != nil {
		t.Fatalf("Send: %v", err)
	}

	if !strings.HasSuffix(path, "/sendMessage") {
		t.Fatalf("unexpected api path %q", path)
	}
	text, _ := body["text"].(string)
	if !strings.Contains(text, "<b>KS</b>") || !strings.Contains(text, "1801sk13 available in gra") {
		t.Fatalf("unexpected text %q", text)
	}
}

func TestFormatTelegramEscapes(t *testing.T) {
	got := formatTelegram(Push{Title: "A&B", Message: "<x>"})
	if got != "<b>A&amp;B</b>\n&lt;x&gt;" {
		t.Fatalf("formatTelegram = %q", got)
	}
	if got := formatTelegram(Push{Message: "plain"}); got != "plain" {
		t.Fatalf("formatTelegram without title = %q", got)
	}
}
