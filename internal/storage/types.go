package storage

import (
	"errors"
	"time"
)

var ErrDisabled = errors.New("storage disabled")

// Config configures storage. An empty Driver or "none" disables it.
type Config struct {
	Driver      string
	Path        string
	BusyTimeout time.Duration // sqlite only; 0 means driver default
}

// Entry is one translation attempt.
type Entry struct {
	At       time.Time `json:"at"`
	Source   string    `json:"source"` // "cli" | "stdin" | "telegram"
	ChatID   int64     `json:"chat_id,omitempty"`
	Input    string    `json:"input"`
	Sentence string    `json:"sentence,omitempty"`
	OK       bool      `json:"ok"`
}
