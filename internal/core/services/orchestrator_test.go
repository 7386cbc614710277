package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ewilliams-labs/moodqueue/internal/core/domain"
)

// TestOrchestrator_BuildQueue verifies BuildQueue persistence behavior.
func TestOrchestrator_BuildQueue(t *testing.T) {
	type fields struct {
		builder mockBuilder
		repo    mockRepo
	}
	tests := []struct {
		name       string
		fields     fields
		wantErr    bool
		wantSaved  bool
		wantPrompt string
	}{
		{
			name: "Happy Path",
			fields: fields{
				builder: mockBuilder{
					tracks: []domain.Track{{Title: "Fainted", Artist: "Narvent", MediaID: "dJWFUBAUM0E"}},
				},
			},
			wantErr:    false,
			wantSaved:  true,
			wantPrompt: "night drive",
		},
		{
			name: "Builder error",
			fields: fields{
				builder: mockBuilder{err: domain.ErrNoSuggestions},
			},
			wantErr:   true,
			wantSaved: false,
		},
		{
			name: "Repository save error is not fatal",
			fields: fields{
				builder: mockBuilder{
					tracks: []domain.Track{{Title: "Fainted", Artist: "Narvent", MediaID: "dJWFUBAUM0E"}},
				},
				repo: mockRepo{saveErr: errors.New("disk full")},
			},
			wantErr:   false,
			wantSaved: false,
		},
	}

	for _, tc := range tests {
		tc := tc // capture range variable
		t.Run(tc.name, func(t *testing.T) {
			o := NewOrchestrator(&tc.fields.builder, &tc.fields.repo, nil, nil)
			fixed := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
			o.now = func() time.Time { return fixed }

			res, err := o.BuildQueue(context.Background(), "night drive")
			if (err != nil) != tc.wantErr {
				t.Fatalf("unexpected error state: got err=%v wantErr=%v", err, tc.wantErr)
			}
			if !tc.wantErr && res.Queue.Len() != len(tc.fields.builder.tracks) {
				t.Fatalf("expected %d tracks, got %d", len(tc.fields.builder.tracks), res.Queue.Len())
			}

			if tc.wantSaved {
				if tc.fields.repo.saved == nil {
					t.Fatalf("expected queue to be saved, but Save was not called")
				}
				if tc.fields.repo.saved.Prompt != tc.wantPrompt {
					t.Fatalf("saved prompt: got %q, want %q", tc.fields.repo.saved.Prompt, tc.wantPrompt)
				}
				if !tc.fields.repo.saved.CreatedAt.Equal(fixed) {
					t.Fatalf("saved createdAt: got %v, want %v", tc.fields.repo.saved.CreatedAt, fixed)
				}
			} else if tc.fields.repo.saved != nil {
				t.Fatalf("did not expect Save to succeed, but it did")
			}
		})
	}
}

func TestOrchestrator_LastQueue(t *testing.T) {
	o := NewOrchestrator(&mockBuilder{}, &mockRepo{}, nil, nil)
	if _, err := o.LastQueue(context.Background()); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	repo := &mockRepo{saved: &domain.PersistedQueue{Prompt: "rain"}}
	o = NewOrchestrator(&mockBuilder{}, repo, nil, nil)
	rec, err := o.LastQueue(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Prompt != "rain" {
		t.Fatalf("expected prompt rain, got %q", rec.Prompt)
	}

	if err := o.ClearQueue(context.Background()); err != nil {
		t.Fatalf("unexpected clear error: %v", err)
	}
	if repo.saved != nil {
		t.Fatalf("expected record to be cleared")
	}
}

func TestOrchestrator_Stats(t *testing.T) {
	stats := &mockStats{out: map[string]domain.MediaStats{"a": {ViewCount: 10, LikeCount: 2}}}
	o := NewOrchestrator(&mockBuilder{}, nil, stats, nil)

	got, err := o.Stats(context.Background(), []string{"a"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got["a"].ViewCount != 10 {
		t.Fatalf("expected 10 views, got %d", got["a"].ViewCount)
	}

	got, err = o.Stats(context.Background(), nil)
	if err != nil || len(got) != 0 {
		t.Fatalf("expected empty result for no ids, got %v, %v", got, err)
	}
	if stats.calls != 1 {
		t.Fatalf("expected a single upstream call, got %d", stats.calls)
	}

	if _, err := NewOrchestrator(&mockBuilder{}, nil, nil, nil).Stats(context.Background(), []string{"a"}); err == nil {
		t.Fatalf("expected error without a stats provider")
	}
}

// --- Mocks ---

type mockBuilder struct {
	tracks []domain.Track
	err    error
}

func (m *mockBuilder) Build(ctx context.Context, prompt string) (domain.BuildResult, error) {
	if m.err != nil {
		return domain.BuildResult{}, m.err
	}
	q, err := domain.NewQueue(m.tracks)
	if err != nil {
		return domain.BuildResult{}, err
	}
	return domain.BuildResult{Queue: q, Prompt: prompt}, nil
}

// mockRepo is a minimal in-memory QueueRepository.
type mockRepo struct {
	saveErr error

	saved *domain.PersistedQueue
}

func (m *mockRepo) LoadPersistedQueue(ctx context.Context) (domain.PersistedQueue, error) {
	if m.saved == nil {
		return domain.PersistedQueue{}, domain.ErrNotFound
	}
	return *m.saved, nil
}

func (m *mockRepo) SavePersistedQueue(ctx context.Context, q domain.PersistedQueue) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.saved = &q
	return nil
}

func (m *mockRepo) ClearPersistedQueue(ctx context.Context) error {
	m.saved = nil
	return nil
}

type mockStats struct {
	out   map[string]domain.MediaStats
	calls int
}

func (m *mockStats) VideoStats(ctx context.Context, ids []string) (map[string]domain.MediaStats, error) {
	m.calls++
	return m.out, nil
}
