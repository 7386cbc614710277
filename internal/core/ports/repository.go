package ports

import (
	"context"

	"github.com/ewilliams-labs/moodqueue/internal/core/domain"
)

// QueueRepository stores the single most recent build.
// LoadPersistedQueue returns domain.ErrNotFound when nothing was saved.
type QueueRepository interface {
	LoadPersistedQueue(ctx context.Context) (domain.PersistedQueue, error)
	SavePersistedQueue(ctx context.Context, q domain.PersistedQueue) error
	ClearPersistedQueue(ctx context.Context) error
}
