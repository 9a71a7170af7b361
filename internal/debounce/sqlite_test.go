package debounce

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	logx "kswatch/pkg/logx"
)

func TestSQLiteStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "state", "markers.db")
	st, err := Open(Config{Driver: "sqlite", Path: path, BusyTimeout: time.Second}, logx.Nop())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer st.Close()

	if _, ok, err := st.Get(ctx, "1801sk13"); err != nil || ok {
		t.Fatalf("Get before Set = ok:%v err:%v", ok, err)
	}
	at := time.UnixMilli(time.Now().UnixMilli())
	if err := st.Set(ctx, "1801sk13", at); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := st.Set(ctx, "1801sk13", at.Add(time.Minute)); err != nil {
		t.Fatalf("Set upsert: %v", err)
	}
	got, ok, err := st.Get(ctx, "1801sk13")
	if err != nil || !ok {
		t.Fatalf("Get = ok:%v err:%v", ok, err)
	}
	if !got.Equal(at.Add(time.Minute)) {
		t.Fatalf("Get = %v, want %v", got, at.Add(time.Minute))
	}
}

func TestSQLiteStorePersistsAcrossOpen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "markers.db")
	cfg := Config{Driver: "sqlite", Path: path}

	st, err := Open(cfg, logx.Nop())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	g := NewGate(st)
	if ok, err := g.ShouldAlert(ctx, "1801sk13", time.Hour); err != nil || !ok {
		t.Fatalf("first ShouldAlert = %v, %v", ok, err)
	}
	_ = st.Close()

	st, err = Open(cfg, logx.Nop())
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer st.Close()
	if ok, err := NewGate(st).ShouldAlert(ctx, "1801sk13", time.Hour); err != nil || ok {
		t.Fatalf("after reopen ShouldAlert = %v, %v; want false", ok, err)
	}
}
