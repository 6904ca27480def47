package bot

import "context"

// Message is an incoming chat message, independent of the transport.
type Message struct {
	ID       int
	ChatID   int64
	ThreadID int // forum topic; 0 if none
	FromID   int64
	Text     string
	// Private is true for one-to-one chats. Only private chats get replies
	// to bare (non-command) text.
	Private bool
}

// Chat addresses a reply.
type Chat struct {
	ID       int64
	ThreadID int
}

// Sender delivers replies. The Telegram Adapter implements it.
type Sender interface {
	SendText(ctx context.Context, to Chat, text string) error
}
