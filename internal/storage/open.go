package storage

import (
	"context"
	"errors"
	"strings"

	logx "crondesc/pkg/logx"
)

// Store is the persistence API used by the translation service and the bot.
type Store interface {
	Append(ctx context.Context, e Entry) error
	// Recent returns up to limit entries for chatID, newest first.
	Recent(ctx context.Context, chatID int64, limit int) ([]Entry, error)
	Close() error
}

// Open initializes the configured store.
// It returns (nil, nil) if storage is disabled.
func Open(cfg Config, log logx.Logger) (Store, error) {
	driver := strings.ToLower(strings.TrimSpace(cfg.Driver))
	if driver == "" || driver == "none" {
		return nil, nil
	}
	if log.IsZero() {
		log = logx.Nop()
	}
	log = log.With(logx.String("comp", "storage"), logx.String("driver", driver))

	switch driver {
	case "file":
		return openFile(cfg, log)
	case "sqlite", "sqlite3":
		return openSQLite(cfg, log)
	default:
		return nil, errors.New("unknown storage driver: " + driver)
	}
}
