package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/ewilliams-labs/moodqueue/internal/core/domain"
	"github.com/ewilliams-labs/moodqueue/internal/core/ports"
)

// Builder is the queue building operation the orchestrator drives.
type Builder interface {
	Build(ctx context.Context, prompt string) (domain.BuildResult, error)
}

// Orchestrator coordinates queue builds with the persisted-queue repository
// and the statistics lookup.
type Orchestrator struct {
	builder Builder
	repo    ports.QueueRepository
	stats   ports.StatsProvider
	log     *zap.Logger
	now     func() time.Time
}

// NewOrchestrator constructs an Orchestrator. repo and stats may be nil.
func NewOrchestrator(builder Builder, repo ports.QueueRepository, stats ports.StatsProvider, log *zap.Logger) *Orchestrator {
	if log == nil {
		log = zap.NewNop()
	}
	return &Orchestrator{
		builder: builder,
		repo:    repo,
		stats:   stats,
		log:     log,
		now:     time.Now,
	}
}

// BuildQueue builds a queue for prompt and overwrites the persisted record.
// A failed save is logged; the build result is still returned.
func (o *Orchestrator) BuildQueue(ctx context.Context, prompt string) (domain.BuildResult, error) {
	res, err := o.builder.Build(ctx, prompt)
	if err != nil {
		return domain.BuildResult{}, err
	}

	if o.repo != nil {
		if err := o.repo.SavePersistedQueue(ctx, domain.NewPersistedQueue(res, o.now())); err != nil {
			o.log.Warn("failed to persist queue", zap.Error(err))
		}
	}
	return res, nil
}

// LastQueue returns the most recently persisted record.
func (o *Orchestrator) LastQueue(ctx context.Context) (domain.PersistedQueue, error) {
	if o.repo == nil {
		return domain.PersistedQueue{}, domain.ErrNotFound
	}
	rec, err := o.repo.LoadPersistedQueue(ctx)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.PersistedQueue{}, err
		}
		return domain.PersistedQueue{}, fmt.Errorf("service: failed to load queue: %w", err)
	}
	return rec, nil
}

// ClearQueue discards the persisted record.
func (o *Orchestrator) ClearQueue(ctx context.Context) error {
	if o.repo == nil {
		return nil
	}
	if err := o.repo.ClearPersistedQueue(ctx); err != nil {
		return fmt.Errorf("service: failed to clear queue: %w", err)
	}
	return nil
}

// Stats returns view and like counts for the given media ids.
func (o *Orchestrator) Stats(ctx context.Context, ids []string) (map[string]domain.MediaStats, error) {
	if len(ids) == 0 {
		return map[string]domain.MediaStats{}, nil
	}
	if o.stats == nil {
		return nil, errors.New("service: statistics are not configured")
	}
	out, err := o.stats.VideoStats(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("service: failed to load stats: %w", err)
	}
	return out, nil
}
