package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/ewilliams-labs/moodqueue/internal/core/domain"
)

func newTestAdapter(t *testing.T) *Adapter {
	t.Helper()
	a, err := NewAdapter(":memory:")
	if err != nil {
		t.Fatalf("new adapter: %v", err)
	}
	t.Cleanup(func() { _ = a.Close() })
	return a
}

func sampleQueue() domain.PersistedQueue {
	return domain.PersistedQueue{
		Songs: []domain.Track{
			{Title: "Fainted", Artist: "Narvent", MediaID: "dJWFUBAUM0E", ThumbnailURL: "https://img.test/1.jpg"},
			{Title: "Memory Reboot", Artist: "Narvent", MediaID: "AOODUXy1cGk"},
			{Title: "Sunflower", Artist: "Post Malone", MediaID: "ApXoWvfEYVU", ThumbnailURL: "https://img.test/3.jpg"},
		},
		Prompt:    "late night drive",
		CreatedAt: time.Date(2026, 3, 14, 9, 26, 53, 589000000, time.UTC),
	}
}

func TestAdapter_LoadPersistedQueue(t *testing.T) {
	withInfo := sampleQueue()
	withInfo.PlaylistInfo = &domain.CollectionInfo{Title: "Night Drive Mix", Thumbnail: "https://img.test/pl.jpg"}

	tests := []struct {
		name    string
		saved   []domain.PersistedQueue
		want    domain.PersistedQueue
		wantErr error
	}{
		{
			name:    "not found",
			wantErr: domain.ErrNotFound,
		},
		{
			name:  "round trip keeps order",
			saved: []domain.PersistedQueue{sampleQueue()},
			want:  sampleQueue(),
		},
		{
			name:  "playlist info is kept",
			saved: []domain.PersistedQueue{withInfo},
			want:  withInfo,
		},
		{
			name: "second save overwrites the first",
			saved: []domain.PersistedQueue{withInfo, {
				Songs:     []domain.Track{{Title: "Lo-Fi", Artist: "Chill", MediaID: "zzz"}},
				Prompt:    "study",
				CreatedAt: time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC),
			}},
			want: domain.PersistedQueue{
				Songs:     []domain.Track{{Title: "Lo-Fi", Artist: "Chill", MediaID: "zzz"}},
				Prompt:    "study",
				CreatedAt: time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := newTestAdapter(t)
			ctx := context.Background()
			for _, q := range tt.saved {
				if err := a.SavePersistedQueue(ctx, q); err != nil {
					t.Fatalf("save: %v", err)
				}
			}

			got, err := a.LoadPersistedQueue(ctx)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected error %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("load: %v", err)
			}
			if got.Prompt != tt.want.Prompt {
				t.Fatalf("prompt: got %q, want %q", got.Prompt, tt.want.Prompt)
			}
			if !got.CreatedAt.Equal(tt.want.CreatedAt) {
				t.Fatalf("createdAt: got %v, want %v", got.CreatedAt, tt.want.CreatedAt)
			}
			if len(got.Songs) != len(tt.want.Songs) {
				t.Fatalf("songs: got %d, want %d", len(got.Songs), len(tt.want.Songs))
			}
			for i := range got.Songs {
				if got.Songs[i] != tt.want.Songs[i] {
					t.Fatalf("song %d: got %+v, want %+v", i, got.Songs[i], tt.want.Songs[i])
				}
			}
			switch {
			case tt.want.PlaylistInfo == nil && got.PlaylistInfo != nil:
				t.Fatalf("expected no playlist info, got %+v", got.PlaylistInfo)
			case tt.want.PlaylistInfo != nil && (got.PlaylistInfo == nil || *got.PlaylistInfo != *tt.want.PlaylistInfo):
				t.Fatalf("playlist info: got %+v, want %+v", got.PlaylistInfo, tt.want.PlaylistInfo)
			}
		})
	}
}

func TestAdapter_ClearPersistedQueue(t *testing.T) {
	a := newTestAdapter(t)
	ctx := context.Background()

	if err := a.ClearPersistedQueue(ctx); err != nil {
		t.Fatalf("clear empty store: %v", err)
	}
	if err := a.SavePersistedQueue(ctx, sampleQueue()); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := a.ClearPersistedQueue(ctx); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if _, err := a.LoadPersistedQueue(ctx); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after clear, got %v", err)
	}

	var n int
	if err := a.db.QueryRow("SELECT COUNT(*) FROM queue_tracks").Scan(&n); err != nil {
		t.Fatalf("count tracks: %v", err)
	}
	if n != 0 {
		t.Fatalf("expected tracks to be removed, %d left", n)
	}
}

func TestAdapter_PersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "moodqueue.db")
	ctx := context.Background()

	a, err := NewAdapter(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := a.SavePersistedQueue(ctx, sampleQueue()); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := a.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	b, err := NewAdapter(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer b.Close()

	got, err := b.LoadPersistedQueue(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(got.Songs) != 3 || got.Songs[0].MediaID != "dJWFUBAUM0E" {
		t.Fatalf("unexpected songs after reopen: %+v", got.Songs)
	}
}
