package bot

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	tele "gopkg.in/telebot.v4"

	rtsup "crondesc/internal/runtime/supervisor"
	logx "crondesc/pkg/logx"
)

// AdapterConfig configures the Telegram long poller.
type AdapterConfig struct {
	Token       string
	PollTimeout time.Duration
}

// Adapter bridges telebot to Message values and implements Sender.
type Adapter struct {
	log logx.Logger
	bot *tele.Bot

	out atomic.Value // chan<- Message

	runMu sync.Mutex
	sup   *rtsup.Supervisor

	dropped atomic.Uint64
}

func NewAdapter(cfg AdapterConfig, log logx.Logger) (*Adapter, error) {
	if strings.TrimSpace(cfg.Token) == "" {
		return nil, errors.New("telegram token is empty")
	}
	timeout := cfg.PollTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	b, err := tele.NewBot(tele.Settings{
		Token:  cfg.Token,
		Poller: &tele.LongPoller{Timeout: timeout},
	})
	if err != nil {
		return nil, err
	}
	if log.IsZero() {
		log = logx.Nop()
	}
	a := &Adapter{log: log.With(logx.String("comp", "telegram")), bot: b}
	var nilOut chan<- Message
	a.out.Store(nilOut)

	b.Handle(tele.OnText, func(c tele.Context) error {
		m := c.Message()
		if m == nil || m.Chat == nil {
			return nil
		}
		msg := Message{
			ID:       m.ID,
			ChatID:   m.Chat.ID,
			ThreadID: m.ThreadID,
			Text:     m.Text,
			Private:  m.Chat.Type == tele.ChatPrivate,
		}
		if m.Sender != nil {
			msg.FromID = m.Sender.ID
		}
		a.forward(msg)
		return nil
	})
	return a, nil
}

// forward never blocks the poll loop; a full channel drops the update.
func (a *Adapter) forward(m Message) {
	out, _ := a.out.Load().(chan<- Message)
	if out == nil {
		return
	}
	select {
	case out <- m:
	default:
		a.dropped.Add(1)
	}
}

// Start begins long polling and forwards text messages to out.
func (a *Adapter) Start(ctx context.Context, out chan<- Message) error {
	a.runMu.Lock()
	defer a.runMu.Unlock()
	if a.sup != nil {
		return nil
	}
	a.out.Store(out)
	sup := rtsup.New(ctx, rtsup.WithLogger(a.log))
	a.sup = sup

	sup.Go0("telegram.drop_report", func(c context.Context) {
		t := time.NewTicker(5 * time.Second)
		defer t.Stop()
		for {
			select {
			case <-c.Done():
				return
			case <-t.C:
				if n := a.dropped.Swap(0); n > 0 {
					a.log.Warn("incoming updates dropped (channel full)", logx.Int64("count", int64(n)))
				}
			}
		}
	})
	sup.Go0("telegram.stop_on_cancel", func(c context.Context) {
		<-c.Done()
		a.bot.Stop()
	})
	// Start blocks until Stop; restart it if it returns while we are still running.
	sup.GoRestart("telegram.poll", func(c context.Context) error {
		a.log.Info("polling started")
		a.bot.Start()
		a.log.Info("polling stopped")
		return nil
	},
		rtsup.WithRestartBackoff(500*time.Millisecond, 10*time.Second),
		rtsup.WithStopOnCleanExit(false),
	)
	return nil
}

// Stop ends polling. It waits at most until ctx is done.
func (a *Adapter) Stop(ctx context.Context) error {
	a.runMu.Lock()
	sup := a.sup
	a.sup = nil
	var nilOut chan<- Message
	a.out.Store(nilOut)
	a.runMu.Unlock()

	if sup == nil {
		return nil
	}
	if err := sup.Stop(ctx); err != nil && !errors.Is(err, context.Canceled) {
		a.log.Warn("telegram stop", logx.Err(err))
		return err
	}
	return nil
}

func (a *Adapter) SendText(ctx context.Context, to Chat, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := a.bot.Send(&tele.Chat{ID: to.ID}, text, &tele.SendOptions{
		ThreadID:              to.ThreadID,
		DisableWebPagePreview: true,
	})
	return err
}
