package storage

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	logx "crondesc/pkg/logx"
)

// tailSize bounds how many entries per chat the file store keeps in memory.
const tailSize = 100

// fileStore appends entries to <prefix>.history.jsonl and serves Recent
// from an in-memory tail rebuilt from that file on open.
type fileStore struct {
	log logx.Logger

	mu    sync.Mutex
	f     *os.File
	tails map[int64][]Entry
}

func openFile(cfg Config, log logx.Logger) (Store, error) {
	path := strings.TrimSpace(cfg.Path)
	if path == "" {
		return nil, errors.New("storage.path is required for file driver")
	}

	dir := filepath.Dir(path)
	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	histPath := filepath.Join(dir, base) + ".history.jsonl"

	tails := map[int64][]Entry{}
	skipped, err := replayHistory(histPath, tails)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}
	if skipped > 0 {
		log.Warn("skipped corrupt history lines", logx.Int("count", skipped), logx.String("path", histPath))
	}

	f, err := os.OpenFile(histPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, err
	}
	log.Debug("file store opened", logx.String("path", histPath))
	return &fileStore{log: log, f: f, tails: tails}, nil
}

func (s *fileStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.f == nil {
		return nil
	}
	err := s.f.Close()
	s.f = nil
	return err
}

func (s *fileStore) Append(ctx context.Context, e Entry) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if e.At.IsZero() {
		e.At = time.Now()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.f == nil {
		return ErrDisabled
	}
	if err := json.NewEncoder(s.f).Encode(e); err != nil {
		return err
	}
	pushTail(s.tails, e)
	return nil
}

func (s *fileStore) Recent(ctx context.Context, chatID int64, limit int) ([]Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if limit <= 0 {
		return nil, nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.f == nil {
		return nil, ErrDisabled
	}
	tail := s.tails[chatID]
	n := min(limit, len(tail))
	out := make([]Entry, 0, n)
	for i := len(tail) - 1; i >= len(tail)-n; i-- {
		out = append(out, tail[i])
	}
	return out, nil
}

func pushTail(tails map[int64][]Entry, e Entry) {
	t := append(tails[e.ChatID], e)
	if len(t) > tailSize {
		t = append(t[:0:0], t[len(t)-tailSize:]...)
	}
	tails[e.ChatID] = t
}

// replayHistory loads the log into tails and returns how many lines were unreadable.
func replayHistory(path string, tails map[int64][]Entry) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	skipped := 0
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		var e Entry
		if err := json.Unmarshal(sc.Bytes(), &e); err != nil {
			skipped++
			continue
		}
		pushTail(tails, e)
	}
	return skipped, sc.Err()
}
