package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ewilliams-labs/moodqueue/internal/core/domain"
	"github.com/ewilliams-labs/moodqueue/internal/core/ports"
)

const (
	// DefaultResolveTimeout bounds a single resolver call.
	DefaultResolveTimeout = 5 * time.Second
	// DefaultConcurrency bounds in-flight resolver calls per build.
	DefaultConcurrency = 10
	// DefaultLowConfidence is the match score below which a resolved track
	// is reported as a weak match.
	DefaultLowConfidence = 0.5

	tracerName = "github.com/ewilliams-labs/moodqueue/internal/core/services"
)

// FallbackPicker supplies a known-good media id.
type FallbackPicker interface {
	Pick() string
}

// BuilderConfig tunes resolution.
type BuilderConfig struct {
	ResolveTimeout time.Duration
	Concurrency    int
	LowConfidence  float64
}

// QueueBuilder turns a prompt into a validated queue.
type QueueBuilder struct {
	gen         ports.SuggestionGenerator
	resolver    ports.MediaResolver
	fallback    FallbackPicker
	timeout     time.Duration
	concurrency int
	lowScore    float64
	log         *zap.Logger
	tracer      trace.Tracer
}

// NewQueueBuilder wires a builder. resolver and fallback are only used for
// candidate lists and may be nil when gen only returns collections.
func NewQueueBuilder(gen ports.SuggestionGenerator, resolver ports.MediaResolver, fallback FallbackPicker, cfg BuilderConfig, log *zap.Logger) *QueueBuilder {
	if cfg.ResolveTimeout <= 0 {
		cfg.ResolveTimeout = DefaultResolveTimeout
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = DefaultConcurrency
	}
	if cfg.LowConfidence <= 0 {
		cfg.LowConfidence = DefaultLowConfidence
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &QueueBuilder{
		gen:         gen,
		resolver:    resolver,
		fallback:    fallback,
		timeout:     cfg.ResolveTimeout,
		concurrency: cfg.Concurrency,
		lowScore:    cfg.LowConfidence,
		log:         log,
		tracer:      otel.Tracer(tracerName),
	}
}

// Build runs one prompt through generation, resolution and validation.
func (b *QueueBuilder) Build(ctx context.Context, prompt string) (domain.BuildResult, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return domain.BuildResult{}, domain.ErrInvalidInput
	}

	buildID := uuid.NewString()
	log := b.log.With(zap.String("build_id", buildID))
	ctx, span := b.tracer.Start(ctx, "queue.build", trace.WithAttributes(
		attribute.String("build.id", buildID),
		attribute.Int("prompt.length", len(prompt)),
	))
	defer span.End()

	started := time.Now()
	raw, err := b.gen.Generate(ctx, prompt)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		log.Warn("suggestion generation failed", zap.Error(err))
		return domain.BuildResult{}, err
	}

	var res domain.BuildResult
	switch raw.Kind {
	case domain.KindCandidates:
		res, err = b.fromCandidates(ctx, log, raw.Candidates)
	case domain.KindCollection:
		res, err = b.fromCollection(log, raw)
	default:
		err = fmt.Errorf("service: unknown raw material kind %d", raw.Kind)
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		log.Warn("queue build failed", zap.Error(err))
		return domain.BuildResult{}, err
	}

	res.Prompt = prompt
	span.SetAttributes(
		attribute.Int("queue.length", res.Queue.Len()),
		attribute.Int("queue.low_confidence", len(res.LowConfidence)),
	)
	log.Info("queue built",
		zap.Int("tracks", res.Queue.Len()),
		zap.Ints("low_confidence", res.LowConfidence),
		zap.Bool("collection", res.Collection != nil),
		zap.Duration("elapsed", time.Since(started)),
	)
	return res, nil
}

func (b *QueueBuilder) fromCandidates(ctx context.Context, log *zap.Logger, candidates []domain.Candidate) (domain.BuildResult, error) {
	if len(candidates) == 0 {
		return domain.BuildResult{}, domain.ErrNoSuggestions
	}
	if b.resolver == nil || b.fallback == nil {
		return domain.BuildResult{}, fmt.Errorf("service: candidate resolution is not configured")
	}

	tracks := make([]domain.Track, len(candidates))
	weak := make([]bool, len(candidates))
	var g errgroup.Group
	g.SetLimit(b.concurrency)
	for i, c := range candidates {
		g.Go(func() error {
			tracks[i], weak[i] = b.resolveCandidate(ctx, log, c)
			return nil
		})
	}
	_ = g.Wait()

	q, err := domain.NewQueue(tracks)
	if err != nil {
		return domain.BuildResult{}, fmt.Errorf("service: %w", err)
	}
	res := domain.BuildResult{Queue: q}
	for i, w := range weak {
		if w {
			res.LowConfidence = append(res.LowConfidence, i)
		}
	}
	return res, nil
}

// resolveCandidate returns the track for c and whether the resolved media
// only weakly matched the query. Fallback picks are never weak.
func (b *QueueBuilder) resolveCandidate(ctx context.Context, log *zap.Logger, c domain.Candidate) (domain.Track, bool) {
	query := fmt.Sprintf("%s %s official audio", c.Title, c.Artist)

	ref, ok := b.resolveWithTimeout(ctx, query)
	if !ok {
		id := b.fallback.Pick()
		log.Info("using fallback media", zap.String("query", query), zap.String("media_id", id))
		return domain.Track{
			Title:        c.Title,
			Artist:       c.Artist,
			MediaID:      id,
			ThumbnailURL: domain.ThumbnailFor(id),
		}, false
	}

	weak := ref.Scored && ref.Score < b.lowScore
	if weak {
		log.Debug("weak media match",
			zap.String("query", query),
			zap.String("media_id", ref.MediaID),
			zap.Float64("score", ref.Score),
		)
	}

	thumb := ref.ThumbnailURL
	if thumb == "" {
		thumb = domain.ThumbnailFor(ref.MediaID)
	}
	return domain.Track{
		Title:        c.Title,
		Artist:       c.Artist,
		MediaID:      ref.MediaID,
		ThumbnailURL: thumb,
	}, weak
}

type resolveResult struct {
	ref domain.MediaRef
	ok  bool
}

// resolveWithTimeout treats a resolver that outlives the timeout as NotFound,
// even if it ignores cancellation.
func (b *QueueBuilder) resolveWithTimeout(ctx context.Context, query string) (domain.MediaRef, bool) {
	callCtx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()

	ch := make(chan resolveResult, 1)
	go func() {
		ref, ok := b.resolver.Resolve(callCtx, query)
		ch <- resolveResult{ref: ref, ok: ok}
	}()

	select {
	case r := <-ch:
		if !r.ok || strings.TrimSpace(r.ref.MediaID) == "" {
			return domain.MediaRef{}, false
		}
		return r.ref, true
	case <-callCtx.Done():
		b.log.Debug("resolve timed out", zap.String("query", query), zap.Duration("timeout", b.timeout))
		return domain.MediaRef{}, false
	}
}

func (b *QueueBuilder) fromCollection(log *zap.Logger, raw domain.RawMaterial) (domain.BuildResult, error) {
	tracks := make([]domain.Track, 0, len(raw.Items))
	for _, it := range raw.Items {
		t, err := domain.NewTrack(it.Title, it.Artist, it.MediaID, it.Thumbnail)
		if err != nil {
			log.Debug("dropping collection item", zap.String("title", it.Title), zap.Error(err))
			continue
		}
		tracks = append(tracks, t)
	}
	if len(tracks) == 0 {
		return domain.BuildResult{}, domain.ErrNoPlayableItems
	}

	q, err := domain.NewQueue(tracks)
	if err != nil {
		return domain.BuildResult{}, fmt.Errorf("service: %w", err)
	}
	info := raw.Collection
	return domain.BuildResult{Queue: q, Collection: &info}, nil
}
