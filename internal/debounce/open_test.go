package debounce

import (
	"testing"

	logx "kswatch/pkg/logx"
)

func TestOpenDrivers(t *testing.T) {
	st, err := Open(Config{Driver: "memory"}, logx.Nop())
	if err != nil {
		t.Fatalf("memory: %v", err)
	}
	if _, ok := st.(*Memory); !ok {
		t.Fatalf("memory driver returned %T", st)
	}

	st, err = Open(Config{Driver: "", Path: t.TempDir()}, logx.Logger{})
	if err != nil {
		t.Fatalf("default driver: %v", err)
	}
	if _, ok := st.(*markerStore); !ok {
		t.Fatalf("default driver returned %T", st)
	}

	if _, err := Open(Config{Driver: "etcd"}, logx.Nop()); err == nil {
		t.Fatal("expected error for unknown driver")
	}
	if _, err := Open(Config{Driver: "sqlite"}, logx.Nop()); err == nil {
		t.Fatal("expected error for sqlite without path")
	}
	if _, err := Open(Config{Driver: "redis"}, logx.Nop()); err == nil {
		t.Fatal("expected error for redis without addr")
	}
}
