package app

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"crondesc/internal/bot"
	"crondesc/internal/config"
	logx "crondesc/pkg/logx"
)

type fakeTransport struct {
	mu      sync.Mutex
	out     chan<- bot.Message
	sent    chan string
	stopped bool
}

func (f *fakeTransport) Start(_ context.Context, out chan<- bot.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.out = out
	return nil
}

func (f *fakeTransport) Stop(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stopped = true
	return nil
}

func (f *fakeTransport) SendText(_ context.Context, _ bot.Chat, text string) error {
	f.sent <- text
	return nil
}

func (f *fakeTransport) deliver(m bot.Message) {
	f.mu.Lock()
	out := f.out
	f.mu.Unlock()
	out <- m
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func waitReply(t *testing.T, ch <-chan string) string {
	t.Helper()
	select {
	case s := <-ch:
		return s
	case <-time.After(3 * time.Second):
		t.Fatal("no reply within deadline")
		return ""
	}
}

// Not parallel: swaps sdNotify.
func TestAppLifecycle(t *testing.T) {
	var (
		notifyMu sync.Mutex
		states   []string
	)
	prev := sdNotify
	sdNotify = func(_ bool, state string) (bool, error) {
		notifyMu.Lock()
		defer notifyMu.Unlock()
		states = append(states, state)
		return false, nil
	}
	t.Cleanup(func() { sdNotify = prev })

	dir := t.TempDir()
	path := writeConfig(t, `
logging:
  level: error
telegram:
  token: "123:abc"
storage:
  driver: file
  path: `+filepath.Join(dir, "hist")+`
`)

	ft := &fakeTransport{sent: make(chan string, 4)}
	a, err := build(path, func(*config.Config, logx.Logger) (Transport, error) { return ft, nil })
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if err := a.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}

	ft.deliver(bot.Message{ChatID: 5, FromID: 1, Text: "/cron 0 0 * * *"})
	if got := waitReply(t, ft.sent); len(got) < len("At 12:00 AM.") || got[:len("At 12:00 AM.")] != "At 12:00 AM." {
		t.Fatalf("reply = %q", got)
	}

	ft.deliver(bot.Message{ChatID: 5, FromID: 1, Text: "/history"})
	if got, want := waitReply(t, ft.sent), "Recent translations:\n0 0 * * *: At 12:00 AM."; got != want {
		t.Fatalf("history = %q, want %q", got, want)
	}

	// Live reload: restrict the bot to another user.
	newCfg := *a.cfgm.Get()
	newCfg.Telegram.AllowedUserIDs = []int64{99}
	a.apply(a.cfgm.Get(), &newCfg)
	ft.deliver(bot.Message{ChatID: 5, FromID: 1, Text: "/help"})
	ft.deliver(bot.Message{ChatID: 5, FromID: 99, Text: "/cron * * * * *"})
	if got := waitReply(t, ft.sent); len(got) < len("At every minute.") || got[:len("At every minute.")] != "At every minute." {
		t.Fatalf("reply after reload = %q", got)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := a.Stop(ctx, StopSignal); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	select {
	case <-a.Done():
	default:
		t.Fatal("Done not closed after Stop")
	}
	ft.mu.Lock()
	stopped := ft.stopped
	ft.mu.Unlock()
	if !stopped {
		t.Fatal("transport not stopped")
	}

	notifyMu.Lock()
	defer notifyMu.Unlock()
	if len(states) != 2 || states[0] != "READY=1" || states[1] != "STOPPING=1" {
		t.Fatalf("sd_notify states = %q", states)
	}
}

func TestBuildRejectsBadConfig(t *testing.T) {
	t.Parallel()
	path := writeConfig(t, "storage:\n  driver: postgres\n")
	_, err := build(path, func(*config.Config, logx.Logger) (Transport, error) { return &fakeTransport{}, nil })
	if err == nil {
		t.Fatal("expected error for unknown storage driver")
	}
}

func TestBuildSkipsTransportWhenStorageFails(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	blocker := filepath.Join(dir, "blocker")
	if err := os.WriteFile(blocker, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	// The history directory would have to live under a regular file.
	path := writeConfig(t, "storage:\n  driver: file\n  path: "+filepath.Join(blocker, "hist")+"\n")

	called := false
	_, err := build(path, func(*config.Config, logx.Logger) (Transport, error) {
		called = true
		return &fakeTransport{}, nil
	})
	if err == nil {
		t.Fatal("expected storage error")
	}
	if called {
		t.Fatal("transport was created although storage failed")
	}
}

func TestBuildTransportError(t *testing.T) {
	t.Parallel()
	path := writeConfig(t, "logging:\n  level: error\n")
	wantErr := errors.New("no token")
	_, err := build(path, func(*config.Config, logx.Logger) (Transport, error) { return nil, wantErr })
	if !errors.Is(err, wantErr) {
		t.Fatalf("build err = %v, want %v", err, wantErr)
	}
}
