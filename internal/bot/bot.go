// Package bot is the chat front-end: it turns incoming messages into
// translations and replies through a Sender.
package bot

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"crondesc/internal/config"
	"crondesc/internal/storage"
	"crondesc/internal/translate"
	logx "crondesc/pkg/logx"
)

const (
	sendTimeout = 15 * time.Second

	helpText = `Send me a five-field cron expression and I will describe it in English.

/cron MIN HOUR DAY MONTH WEEKDAY - describe an expression
/history - your recent translations
/help - this message

Example: /cron 30 9 * * 1-5`

	cronUsage    = "usage: /cron MIN HOUR DAY MONTH WEEKDAY"
	slowDownText = "Slow down a little, try again in a minute."
	unknownText  = "Unknown command. Try /help"
)

// Settings are the live-reloadable knobs of the bot.
type Settings struct {
	RatePerMin     int
	Burst          int
	PreviewRuns    int
	HistorySize    int
	AllowedUserIDs []int64
}

// SettingsFrom maps the bot and telegram sections, applying defaults.
func SettingsFrom(cfg *config.Config) Settings {
	if cfg == nil {
		cfg = &config.Config{}
	}
	b := cfg.Bot.WithDefaults()
	return Settings{
		RatePerMin:     b.RatePerMin,
		Burst:          b.Burst,
		PreviewRuns:    b.PreviewRuns,
		HistorySize:    b.HistorySize,
		AllowedUserIDs: append([]int64(nil), cfg.Telegram.AllowedUserIDs...),
	}
}

type Bot struct {
	log logx.Logger
	svc *translate.Service
	out Sender
	lim *chatLimiter

	mu  sync.RWMutex
	set Settings

	now func() time.Time
}

func New(log logx.Logger, svc *translate.Service, out Sender, set Settings) *Bot {
	if log.IsZero() {
		log = logx.Nop()
	}
	return &Bot{
		log: log.With(logx.String("comp", "bot")),
		svc: svc,
		out: out,
		lim: newChatLimiter(set.RatePerMin, set.Burst),
		set: set,
		now: time.Now,
	}
}

// Apply swaps in new settings. Existing rate buckets keep their tokens.
func (b *Bot) Apply(set Settings) {
	b.mu.Lock()
	b.set = set
	b.mu.Unlock()
	b.lim.setLimits(set.RatePerMin, set.Burst)
	b.log.Info("bot settings applied",
		logx.Int("rate_per_min", set.RatePerMin),
		logx.Int("burst", set.Burst),
		logx.Int("preview_runs", set.PreviewRuns),
		logx.Int("history_size", set.HistorySize),
		logx.Int("allowed_users", len(set.AllowedUserIDs)),
	)
}

func (b *Bot) settings() Settings {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.set
}

// Run replies to messages from in until ctx is done or in is closed.
func (b *Bot) Run(ctx context.Context, in <-chan Message) error {
	b.log.Info("update loop started")
	defer b.log.Info("update loop stopped")
	for {
		select {
		case <-ctx.Done():
			return nil
		case m, ok := <-in:
			if !ok {
				return nil
			}
			reply := b.Handle(ctx, m)
			if reply == "" || b.out == nil {
				continue
			}
			sctx, cancel := context.WithTimeout(ctx, sendTimeout)
			err := b.out.SendText(sctx, Chat{ID: m.ChatID, ThreadID: m.ThreadID}, reply)
			cancel()
			if err != nil && ctx.Err() == nil {
				b.log.Warn("reply failed", logx.Int64("chat_id", m.ChatID), logx.Err(err))
			}
		}
	}
}

// Handle returns the reply for m, or "" when the message gets none.
func (b *Bot) Handle(ctx context.Context, m Message) string {
	set := b.settings()
	log := b.log.With(logx.Int64("chat_id", m.ChatID), logx.Int64("from_id", m.FromID))

	if len(set.AllowedUserIDs) > 0 && !slices.Contains(set.AllowedUserIDs, m.FromID) {
		log.Debug("message from user outside allowlist ignored")
		return ""
	}

	text := strings.TrimSpace(m.Text)
	if text == "" {
		return ""
	}

	var handle func() string
	if strings.HasPrefix(text, "/") {
		word, rest := splitCommand(text)
		switch word {
		case "start", "help":
			handle = func() string { return helpText }
		case "cron":
			handle = func() string {
				if rest == "" {
					return cronUsage
				}
				return b.translate(ctx, m, rest, set)
			}
		case "history":
			handle = func() string { return b.history(ctx, m, set) }
		default:
			// Groups may host other bots; stay quiet there.
			if !m.Private {
				return ""
			}
			handle = func() string { return unknownText }
		}
	} else {
		if !m.Private {
			return ""
		}
		handle = func() string { return b.translate(ctx, m, text, set) }
	}

	ok, warn := b.lim.allow(m.ChatID)
	if !ok {
		log.Debug("rate limited", logx.Bool("notified", warn))
		if warn {
			return slowDownText
		}
		return ""
	}
	return handle()
}

// splitCommand splits "/cron@my_bot 0 0 * * *" into "cron" and "0 0 * * *".
// Spacing inside the argument is preserved.
func splitCommand(text string) (word, rest string) {
	head, rest, _ := strings.Cut(text, " ")
	word = strings.TrimPrefix(head, "/")
	if i := strings.IndexByte(word, '@'); i >= 0 {
		word = word[:i]
	}
	return strings.ToLower(word), strings.TrimSpace(rest)
}

func (b *Bot) translate(ctx context.Context, m Message, text string, set Settings) string {
	res := b.svc.Translate(ctx, translate.Request{
		Text:   text,
		Source: "telegram",
		ChatID: m.ChatID,
		Next:   set.PreviewRuns,
		Now:    b.now(),
	})
	return formatResult(res)
}

func formatResult(res translate.Result) string {
	if !res.OK {
		return res.Message()
	}
	var sb strings.Builder
	sb.WriteString(res.Sentence)
	switch {
	case len(res.Runs) > 0:
		sb.WriteString("\n\nNext runs (UTC):")
		for _, t := range res.Runs {
			sb.WriteString("\n  ")
			sb.WriteString(t.UTC().Format("Mon, 02 Jan 2006 15:04"))
		}
	case res.RunsErr != nil:
		sb.WriteString("\n\nThis schedule never fires on a real calendar.")
	}
	return sb.String()
}

func (b *Bot) history(ctx context.Context, m Message, set Settings) string {
	entries, err := b.svc.History(ctx, m.ChatID, set.HistorySize)
	if errors.Is(err, storage.ErrDisabled) {
		return "History is not enabled."
	}
	if err != nil {
		b.log.Warn("history lookup failed", logx.Int64("chat_id", m.ChatID), logx.Err(err))
		return "History is unavailable right now."
	}
	if len(entries) == 0 {
		return "No translations yet."
	}
	var sb strings.Builder
	sb.WriteString("Recent translations:")
	for _, e := range entries {
		sentence := e.Sentence
		if !e.OK {
			sentence = translate.FailureMessage
		}
		fmt.Fprintf(&sb, "\n%s: %s", e.Input, sentence)
	}
	return sb.String()
}
