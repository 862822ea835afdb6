package msgsync

import (
	"context"

	"classchat/internal/models"
)

// Fetcher loads the most recent page of a room's messages. The page may be
// ordered newest-first or oldest-first.
type Fetcher interface {
	FetchMessages(ctx context.Context, roomID string) ([]models.Message, error)
}

// FetchFunc adapts an ordinary function to the Fetcher interface.
type FetchFunc func(ctx context.Context, roomID string) ([]models.Message, error)

// FetchMessages calls f(ctx, roomID).
func (f FetchFunc) FetchMessages(ctx context.Context, roomID string) ([]models.Message, error) {
	return f(ctx, roomID)
}
