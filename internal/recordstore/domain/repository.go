package domain

import (
	"context"
	"errors"
)

// Repository supplies read-only entity snapshots. Implementations must
// never write; the engine owns nothing but its derived reports.
type Repository interface {
	LoadSnapshots(ctx context.Context) (Snapshots, error)
}

var (
	ErrStoreUnavailable = errors.New("store_unavailable")
)
