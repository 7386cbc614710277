package ports

import (
	"context"

	"github.com/ewilliams-labs/moodqueue/internal/core/domain"
)

// MediaResolver maps a free-text query to the first matching playable item.
// A false result means nothing usable was found; errors are never returned.
type MediaResolver interface {
	Resolve(ctx context.Context, query string) (domain.MediaRef, bool)
}

// CollectionSearcher finds and enumerates externally hosted collections.
type CollectionSearcher interface {
	FindCollection(ctx context.Context, query string) (domain.Collection, bool, error)
	ListItems(ctx context.Context, collectionID string, max int) ([]domain.CollectionItem, error)
}

// StatsProvider returns public counters for a batch of media ids.
type StatsProvider interface {
	VideoStats(ctx context.Context, ids []string) (map[string]domain.MediaStats, error)
}
