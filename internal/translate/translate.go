// Package translate runs the cron-to-English pipeline for callers that want
// logging, an upcoming-run preview and history recording around it.
package translate

import (
	"context"
	"errors"
	"time"

	"crondesc/internal/cronexpr"
	"crondesc/internal/storage"
	logx "crondesc/pkg/logx"
)

// FailureMessage is what every front-end prints for unparseable input.
const FailureMessage = "Expression could not be parsed!"

// Request is one line to translate.
type Request struct {
	Text   string
	Source string // "cli" | "stdin" | "telegram"
	ChatID int64
	// Next is how many upcoming runs to compute; 0 skips the preview.
	Next int
	// Now anchors the preview; zero means time.Now().
	Now time.Time
}

// Result is the outcome of a Request.
type Result struct {
	Input    string
	Sentence string
	OK       bool
	Err      error
	// Runs is empty when Next was 0 or the expression is not schedulable.
	Runs    []time.Time
	RunsErr error
}

// Message returns the sentence, or FailureMessage when parsing failed.
func (r Result) Message() string {
	if !r.OK {
		return FailureMessage
	}
	return r.Sentence
}

// Service is safe for concurrent use. A nil store disables history.
type Service struct {
	log   logx.Logger
	store storage.Store
}

func New(log logx.Logger, store storage.Store) *Service {
	if log.IsZero() {
		log = logx.Nop()
	}
	return &Service{log: log.With(logx.String("comp", "translate")), store: store}
}

func (s *Service) Translate(ctx context.Context, req Request) Result {
	res := Result{Input: req.Text}

	expr, err := cronexpr.Parse(req.Text)
	if err != nil {
		res.Err = err
		s.log.Info("expression rejected",
			logx.String("source", req.Source),
			logx.String("input", req.Text),
			logx.Err(err),
		)
		s.record(ctx, req, res)
		return res
	}

	res.OK = true
	res.Sentence = cronexpr.Render(expr)
	s.log.Debug("expression translated",
		logx.String("source", req.Source),
		logx.String("input", req.Text),
		logx.String("sentence", res.Sentence),
	)

	if req.Next > 0 {
		now := req.Now
		if now.IsZero() {
			now = time.Now()
		}
		res.Runs, res.RunsErr = cronexpr.NextRuns(expr, now, req.Next)
		if res.RunsErr != nil {
			s.log.Debug("no run preview", logx.String("input", req.Text), logx.Err(res.RunsErr))
		}
	}

	s.record(ctx, req, res)
	return res
}

// History returns recent entries for chatID, newest first.
func (s *Service) History(ctx context.Context, chatID int64, limit int) ([]storage.Entry, error) {
	if s.store == nil {
		return nil, storage.ErrDisabled
	}
	return s.store.Recent(ctx, chatID, limit)
}

// record appends res to history. Store failures are logged, never returned.
func (s *Service) record(ctx context.Context, req Request, res Result) {
	if s.store == nil {
		return
	}
	e := storage.Entry{
		At:       time.Now(),
		Source:   req.Source,
		ChatID:   req.ChatID,
		Input:    req.Text,
		Sentence: res.Sentence,
		OK:       res.OK,
	}
	if err := s.store.Append(ctx, e); err != nil && !errors.Is(err, context.Canceled) {
		s.log.Warn("history append failed", logx.Err(err))
	}
}
