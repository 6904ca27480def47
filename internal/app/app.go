// Package app wires configuration, logging, storage, the translator and the
// Telegram front-end into a long-running bot process.
package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/coreos/go-systemd/v22/daemon"

	"crondesc/internal/bot"
	"crondesc/internal/config"
	rtsup "crondesc/internal/runtime/supervisor"
	"crondesc/internal/storage"
	"crondesc/internal/translate"
	logx "crondesc/pkg/logx"
)

// Transport is the chat connection the bot runs on. *bot.Adapter implements it.
type Transport interface {
	bot.Sender
	Start(ctx context.Context, out chan<- bot.Message) error
	Stop(ctx context.Context) error
}

// StopReason is logged when the app shuts down.
type StopReason string

const (
	StopSignal     StopReason = "signal"
	StopFatalError StopReason = "fatal_error"
)

// sdNotify is swapped in tests.
var sdNotify = daemon.SdNotify

type App struct {
	cfgm *config.Manager
	sup  *rtsup.Supervisor

	log   logx.Logger
	logs  *logx.Service
	store storage.Store

	transport Transport
	bot       *bot.Bot

	updates chan bot.Message
}

// New loads cfgPath and builds the Telegram-backed app.
func New(cfgPath string) (*App, error) {
	return build(cfgPath, func(cfg *config.Config, log logx.Logger) (Transport, error) {
		pollTimeout, err := cfg.Telegram.PollTimeoutOrDefault()
		if err != nil {
			return nil, err
		}
		return bot.NewAdapter(bot.AdapterConfig{
			Token:       cfg.Telegram.Token,
			PollTimeout: pollTimeout,
		}, log)
	})
}

func build(cfgPath string, newTransport func(*config.Config, logx.Logger) (Transport, error)) (*App, error) {
	cfgm := config.NewManager(cfgPath)
	cfg, err := cfgm.Load()
	if err != nil {
		return nil, err
	}

	logSvc, log := logx.NewService(cfg.LogConfig())
	appLog := log.With(logx.String("comp", "app"))

	sc, err := cfg.StorageSettings()
	if err != nil {
		_ = logSvc.Close()
		return nil, err
	}
	store, err := storage.Open(sc, log)
	if err != nil {
		_ = logSvc.Close()
		return nil, err
	}

	tr, err := newTransport(cfg, log)
	if err != nil {
		if store != nil {
			_ = store.Close()
		}
		_ = logSvc.Close()
		return nil, err
	}
	if store != nil {
		appLog.Info("storage enabled", logx.String("driver", sc.Driver))
	}

	svc := translate.New(log, store)
	b := bot.New(log, svc, tr, bot.SettingsFrom(cfg))

	return &App{
		cfgm:      cfgm,
		log:       appLog,
		logs:      logSvc,
		store:     store,
		transport: tr,
		bot:       b,
		updates:   make(chan bot.Message, 256),
	}, nil
}

// Done is closed when the app supervisor context is canceled (fatal error or Stop()).
func (a *App) Done() <-chan struct{} {
	if a.sup == nil {
		ch := make(chan struct{})
		close(ch)
		return ch
	}
	return a.sup.Context().Done()
}

// Err returns the first fatal error observed by the supervisor (if any).
func (a *App) Err() error {
	if a.sup == nil {
		return nil
	}
	return a.sup.Err()
}

func (a *App) Start(ctx context.Context) error {
	a.sup = rtsup.New(ctx, rtsup.WithLogger(a.log), rtsup.WithCancelOnError(true))

	a.cfgm.SetLogger(a.log.With(logx.String("comp", "config")))
	a.cfgm.SetValidator(func(_ context.Context, cfg *config.Config) error {
		if strings.TrimSpace(cfg.Telegram.Token) == "" {
			return errors.New("telegram.token is required")
		}
		return nil
	})

	if err := a.transport.Start(a.sup.Context(), a.updates); err != nil {
		return err
	}

	a.sup.Go("bot.loop", func(c context.Context) error {
		return a.bot.Run(c, a.updates)
	})

	sub := a.cfgm.Subscribe(8)
	a.sup.Go0("config.apply", func(c context.Context) {
		defer a.cfgm.Unsubscribe(sub)
		lastApplied := a.cfgm.Get()
		for {
			select {
			case <-c.Done():
				return
			case newCfg, ok := <-sub:
				if !ok {
					return
				}
				// Coalesce bursts: keep only the latest config in the channel.
				for drained := false; !drained; {
					select {
					case newer := <-sub:
						if newer != nil {
							newCfg = newer
						}
					default:
						drained = true
					}
				}
				a.apply(lastApplied, newCfg)
				lastApplied = newCfg
			}
		}
	})

	a.sup.Go("config.watch", func(c context.Context) error {
		return a.cfgm.Watch(c)
	})

	if sent, err := sdNotify(false, daemon.SdNotifyReady); err != nil {
		a.log.Warn("sd_notify ready failed", logx.Err(err))
	} else if sent {
		a.log.Debug("sd_notify ready sent")
	}

	a.log.Info("app started")
	return nil
}

// apply pushes the live-reloadable sections of newCfg into running components.
func (a *App) apply(oldCfg, newCfg *config.Config) {
	sections, fields := config.Summarize(oldCfg, newCfg)
	if len(sections) == 0 {
		a.log.Info("config reloaded (no changes)")
		return
	}
	if config.RequiresRestart(oldCfg, newCfg) {
		a.log.Warn("telegram connection or storage settings changed; restart required for them to take effect")
	}
	a.logs.Apply(newCfg.LogConfig())
	a.bot.Apply(bot.SettingsFrom(newCfg))
	a.log.Info("config reloaded", fields...)
}

func (a *App) Stop(ctx context.Context, reason StopReason) error {
	if a.sup == nil {
		return nil
	}
	a.log.Info("stopping", logx.String("reason", string(reason)))
	if _, err := sdNotify(false, daemon.SdNotifyStopping); err != nil {
		a.log.Debug("sd_notify stopping failed", logx.Err(err))
	}

	a.sup.Cancel()

	var errs []error
	step := func(name string, max time.Duration, fn func(context.Context) error) {
		start := time.Now()
		stepCtx, cancel := context.WithTimeout(ctx, max)
		defer cancel()

		done := make(chan error, 1)
		go func() {
			defer func() {
				if r := recover(); r != nil {
					done <- fmt.Errorf("panic in stop step %s: %v", name, r)
				}
			}()
			done <- fn(stepCtx)
		}()

		select {
		case err := <-done:
			if err != nil {
				a.log.Warn("stop step error", logx.String("name", name), logx.Err(err))
				errs = append(errs, fmt.Errorf("%s: %w", name, err))
			}
			a.log.Debug("stop step end", logx.String("name", name), logx.Duration("took", time.Since(start)))
		case <-stepCtx.Done():
			a.log.Warn("stop step deadline reached (continuing)",
				logx.String("name", name),
				logx.Duration("elapsed", time.Since(start)),
			)
		}
	}

	step("transport", 3*time.Second, a.transport.Stop)
	step("supervisor", 2*time.Second, a.sup.Wait)
	step("storage", time.Second, func(context.Context) error {
		if a.store != nil {
			return a.store.Close()
		}
		return nil
	})

	a.log.Info("stopped")
	if a.logs != nil {
		_ = a.logs.Close()
	}
	return errors.Join(errs...)
}
