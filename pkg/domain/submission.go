package domain

import (
	"context"
	"io"
	"time"
)

// AudioSource yields the raw bytes of a voice message.
type AudioSource interface {
	Open(ctx context.Context) (io.ReadCloser, error)
}

type Submission struct {
	ID         string
	UserID     int64
	ChatID     int64
	Username   string
	ReceivedAt time.Time
	Audio      AudioSource
}
