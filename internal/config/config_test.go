package config

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeFile(t *testing.T, path, body string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
}

func TestDecodeFormats(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		path string
		body string
	}{
		{
			name: "json",
			path: "c.json",
			body: `{"logging":{"level":"debug"},"storage":{"driver":"file","path":"./h"},"bot":{"burst":2}}`,
		},
		{
			name: "yaml",
			path: "c.yaml",
			body: "logging:\n  level: debug\nstorage:\n  driver: file\n  path: ./h\nbot:\n  burst: 2\n",
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg, err := Decode(tt.path, []byte(tt.body))
			if err != nil {
				t.Fatalf("Decode error: %v", err)
			}
			if cfg.Logging.Level != "debug" {
				t.Fatalf("Logging.Level = %q", cfg.Logging.Level)
			}
			if cfg.Storage == nil || cfg.Storage.Driver != "file" || cfg.Storage.Path != "./h" {
				t.Fatalf("Storage = %#v", cfg.Storage)
			}
			if cfg.Bot.Burst != 2 {
				t.Fatalf("Bot.Burst = %d", cfg.Bot.Burst)
			}
		})
	}
}

func TestDecodeRejects(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		path string
		body string
		want string
	}{
		{name: "unknown key", path: "c.json", body: `{"nope":1}`, want: "unknown field"},
		{name: "trailing data", path: "c.json", body: `{} {}`, want: "trailing data"},
		{name: "bad yaml", path: "c.yml", body: "logging: [", want: "yaml"},
		{name: "bad driver", path: "c.json", body: `{"storage":{"driver":"postgres"}}`, want: "storage.driver"},
		{name: "bad busy timeout", path: "c.json", body: `{"storage":{"driver":"sqlite","busy_timeout":"soon"}}`, want: "storage.busy_timeout"},
		{name: "bad poll timeout", path: "c.json", body: `{"telegram":{"poll_timeout":"-1s"}}`, want: "telegram.poll_timeout"},
		{name: "negative limit", path: "c.json", body: `{"bot":{"rate_per_min":-1}}`, want: "bot"},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := Decode(tt.path, []byte(tt.body))
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("error %q should mention %q", err, tt.want)
			}
		})
	}
}

func TestEmptyYAMLIsZeroConfig(t *testing.T) {
	t.Parallel()
	cfg, err := Decode("c.yaml", nil)
	if err != nil {
		t.Fatalf("Decode error: %v", err)
	}
	if cfg.Storage != nil {
		t.Fatalf("Storage = %#v, want nil", cfg.Storage)
	}
	sc, err := cfg.StorageSettings()
	if err != nil || sc.Driver != "" {
		t.Fatalf("StorageSettings = %#v, %v", sc, err)
	}
}

func TestStorageSettings(t *testing.T) {
	t.Parallel()
	cfg := &Config{Storage: &StorageConfig{Driver: "sqlite", Path: "x.db", BusyTimeout: "2s"}}
	sc, err := cfg.StorageSettings()
	if err != nil {
		t.Fatal(err)
	}
	if sc.Driver != "sqlite" || sc.Path != "x.db" || sc.BusyTimeout != 2*time.Second {
		t.Fatalf("StorageSettings = %#v", sc)
	}
}

func TestBotDefaults(t *testing.T) {
	t.Parallel()
	got := BotConfig{Burst: 9}.WithDefaults()
	want := BotConfig{RatePerMin: 20, Burst: 9, PreviewRuns: 3, HistorySize: 10}
	if got != want {
		t.Fatalf("WithDefaults = %#v, want %#v", got, want)
	}
	d, err := TelegramConfig{}.PollTimeoutOrDefault()
	if err != nil || d != 10*time.Second {
		t.Fatalf("PollTimeoutOrDefault = %v, %v", d, err)
	}
}

func TestSummarize(t *testing.T) {
	t.Parallel()
	oldCfg := &Config{Telegram: TelegramConfig{Token: "secret-a"}}
	newCfg := &Config{
		Logging:  LoggingConfig{Level: "debug"},
		Telegram: TelegramConfig{Token: "secret-b"},
		Bot:      BotConfig{Burst: 3},
	}
	changed, fields := Summarize(oldCfg, newCfg)
	if strings.Join(changed, ",") != "logging,telegram,bot" {
		t.Fatalf("changed = %v", changed)
	}
	if len(fields) == 0 {
		t.Fatal("expected log fields")
	}
	if !RequiresRestart(oldCfg, newCfg) {
		t.Fatal("token change should require restart")
	}
	if RequiresRestart(&Config{}, &Config{Bot: BotConfig{Burst: 1}}) {
		t.Fatal("bot change should apply live")
	}
	if c, _ := Summarize(newCfg, newCfg); len(c) != 0 {
		t.Fatalf("identical configs reported %v", c)
	}
}

func TestManagerReloadPublishes(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "crondesc.json")
	writeFile(t, path, `{"bot":{"burst":1}}`)

	m := NewManager(path)
	if _, err := m.Load(); err != nil {
		t.Fatalf("Load: %v", err)
	}
	ch := m.Subscribe(1)
	defer m.Unsubscribe(ch)

	// Unchanged content is not republished.
	m.reload(context.Background())
	select {
	case <-ch:
		t.Fatal("unchanged config should not be published")
	default:
	}

	writeFile(t, path, `{"bot":{"burst":7}}`)
	m.reload(context.Background())
	select {
	case cfg := <-ch:
		if cfg.Bot.Burst != 7 {
			t.Fatalf("published burst = %d", cfg.Bot.Burst)
		}
	default:
		t.Fatal("expected a published config")
	}
	if m.Get().Bot.Burst != 7 {
		t.Fatalf("Get().Bot.Burst = %d", m.Get().Bot.Burst)
	}
}

func TestManagerValidatorRejects(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "crondesc.json")
	writeFile(t, path, `{}`)

	m := NewManager(path)
	if _, err := m.Load(); err != nil {
		t.Fatal(err)
	}
	m.SetValidator(func(ctx context.Context, cfg *Config) error {
		if cfg.Bot.Burst > 5 {
			return context.DeadlineExceeded
		}
		return nil
	})
	writeFile(t, path, `{"bot":{"burst":50}}`)
	m.reload(context.Background())
	if m.Get().Bot.Burst != 0 {
		t.Fatalf("rejected config was committed: %#v", m.Get().Bot)
	}
}

func TestManagerWatch(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "crondesc.yaml")
	writeFile(t, path, "bot:\n  burst: 1\n")

	m := NewManager(path)
	if _, err := m.Load(); err != nil {
		t.Fatal(err)
	}
	ch := m.Subscribe(1)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- m.Watch(ctx) }()
	defer func() {
		cancel()
		<-done
	}()

	// Give the watcher time to register, then write once. Writes closer
	// together than reloadDebounce would keep resetting the timer.
	time.Sleep(reloadDebounce + 50*time.Millisecond)
	writeFile(t, path, "bot:\n  burst: 9\n")

	deadline := time.After(5 * time.Second)
	tick := time.NewTicker(4 * reloadDebounce)
	defer tick.Stop()
	for {
		select {
		case cfg := <-ch:
			if cfg.Bot.Burst != 9 {
				t.Fatalf("published burst = %d, want 9", cfg.Bot.Burst)
			}
			return
		case <-tick.C:
			// Only reached when the first write raced watcher setup.
			writeFile(t, path, "bot:\n  burst: 9\n")
		case <-deadline:
			t.Fatal("timed out waiting for reload")
		}
	}
}
