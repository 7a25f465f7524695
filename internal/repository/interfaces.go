package repository

import (
	"context"
	"errors"

	"nearbot/internal/domain/entities"
)

// ErrNotFound is returned by KV.Get for a key that has never been written.
var ErrNotFound = errors.New("key not found")

// KV is the flat key-value cache behind the bot. Values are opaque JSON blobs;
// the typed Store decides what goes in them.
type KV interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Close() error
}

// PartitionStore resolves a region name to its toilet records. A region with
// no stored data yields an empty slice and no error.
type PartitionStore interface {
	Lookup(ctx context.Context, partition string) ([]entities.ToiletRecord, error)
	Save(ctx context.Context, partition string, records []entities.ToiletRecord) error
}

// LotteryStore caches published draws per game and draw date (YYYY-MM-DD).
// The empty game holds the first draw listed for a date.
type LotteryStore interface {
	GetDraw(ctx context.Context, game, date string) (*entities.LotteryDraw, error)
	SaveDraw(ctx context.Context, game string, draw *entities.LotteryDraw) error
}
