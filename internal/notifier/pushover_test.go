package notifier

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestPushoverSendsForm(t *testing.T) {
	var got map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if err := r.ParseForm(); err != nil {
			t.Errorf("ParseForm: %v", err)
		}
		got = map[string]string{}
		for k := range r.PostForm {
			got[k] = r.PostForm.Get(k)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":1,"request":"abc"}`))
	}))
	defer srv.Close()

	tr, err := NewPushover(PushoverConfig{APIToken: "tok", ClientKey: "usr", Endpoint: srv.URL}, time.Second)
	if err != nil {
		t.Fatalf("NewPushover: %v", err)
	}
	if err := tr.Send(context.Background(), Push{Message: "m", Title: "KS", Priority: 1}); err != nil {
		t.Fatalf("Send: %v", err)
	}

	want := map[string]string{"token": "tok", "user": "usr", "message": "m", "title": "KS", "priority": "1"}
	for k, v := range want {
		if got[k] != v {
			t.Fatalf("form[%s] = %q, want %q (form=%v)", k, got[k], v, got)
		}
	}
}

func TestPushoverRejectedRequest(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"status":0,"errors":["application token is invalid"]}`))
	}))
	defer srv.Close()

	tr, err := NewPushover(PushoverConfig{APIToken: "bad", ClientKey: "usr", Endpoint: srv.URL}, time.Second)
	if err != nil {
		t.Fatalf("NewPushover: %v", err)
	}
	err = tr.Send(context.Background(), Push{Message: "m"})
	if err == nil || !strings.Contains(err.Error(), "application token is invalid") {
		t.Fatalf("expected provider error, got %v", err)
	}
}

func TestPushoverStatusZeroOn200(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":0}`))
	}))
	defer srv.Close()

	tr, _ := NewPushover(PushoverConfig{APIToken: "t", ClientKey: "u", Endpoint: srv.URL}, time.Second)
	if err := tr.Send(context.Background(), Push{Message: "m"}); err == nil {
		t.Fatal("expected error when status != 1")
	}
}
