package playback

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ewilliams-labs/moodqueue/internal/core/domain"
	"github.com/ewilliams-labs/moodqueue/internal/core/fallback"
)

func queueOf(t *testing.T, n int) domain.Queue {
	t.Helper()
	tracks := make([]domain.Track, n)
	for i := range tracks {
		tracks[i] = domain.Track{Title: fmt.Sprintf("t%d", i), Artist: "a", MediaID: fmt.Sprintf("id%d", i)}
	}
	q, err := domain.NewQueue(tracks)
	require.NoError(t, err)
	return q
}

func newTestSession(t *testing.T, n int) *Session {
	t.Helper()
	return NewSession(queueOf(t, n), rand.New(rand.NewSource(11)))
}

func TestNewSession_Defaults(t *testing.T) {
	s := newTestSession(t, 3)
	assert.Equal(t, 0, s.Index())
	assert.False(t, s.IsPlaying())
	assert.False(t, s.Shuffle())
	assert.False(t, s.Repeat())
	assert.Equal(t, DefaultVolume, s.Volume())
	assert.Equal(t, "id0", s.Current().MediaID)
}

func TestAdvance_WrapsAround(t *testing.T) {
	for _, n := range []int{1, 2, 5, 13} {
		s := newTestSession(t, n)
		visited := []int{s.Index()}
		for i := 0; i < n; i++ {
			restart := s.Advance()
			assert.False(t, restart)
			assert.True(t, s.IsPlaying())
			visited = append(visited, s.Index())
		}
		for i := 0; i < n; i++ {
			assert.Equal(t, i, visited[i], "n=%d step %d", n, i)
		}
		assert.Equal(t, 0, visited[n], "n=%d should return to 0", n)
	}
}

func TestAdvance_LastToFirst(t *testing.T) {
	s := newTestSession(t, 5)
	s.SelectTrack(4)
	s.Advance()
	assert.Equal(t, 0, s.Index())
}

func TestAdvance_RepeatPinsIndex(t *testing.T) {
	for _, shuffle := range []bool{false, true} {
		s := newTestSession(t, 6)
		s.SelectTrack(3)
		s.SetRepeat(true)
		s.SetShuffle(shuffle)
		for i := 0; i < 20; i++ {
			assert.True(t, s.Advance())
			assert.Equal(t, 3, s.Index(), "shuffle=%v", shuffle)
		}
	}
}

func TestAdvance_ShuffleNeverRepeatsCurrent(t *testing.T) {
	s := newTestSession(t, 4)
	s.SetShuffle(true)
	seen := map[int]bool{}
	for i := 0; i < 200; i++ {
		before := s.Index()
		s.Advance()
		require.NotEqual(t, before, s.Index())
		require.True(t, s.Index() >= 0 && s.Index() < 4)
		seen[s.Index()] = true
	}
	assert.Len(t, seen, 4)

	single := newTestSession(t, 1)
	single.SetShuffle(true)
	single.Advance()
	assert.Equal(t, 0, single.Index())
}

func TestRetreat(t *testing.T) {
	s := newTestSession(t, 3)
	s.Retreat()
	assert.Equal(t, 2, s.Index())
	assert.True(t, s.IsPlaying())
	s.Retreat()
	assert.Equal(t, 1, s.Index())

	s.SetRepeat(true)
	s.Retreat()
	assert.Equal(t, 0, s.Index(), "retreat ignores repeat")

	s.SetShuffle(true)
	for i := 0; i < 50; i++ {
		before := s.Index()
		s.Retreat()
		require.NotEqual(t, before, s.Index())
	}
}

func TestSelectTrack(t *testing.T) {
	s := newTestSession(t, 3)
	s.SelectTrack(2)
	assert.Equal(t, 2, s.Index())
	assert.True(t, s.IsPlaying())

	assert.Panics(t, func() { s.SelectTrack(3) })
	assert.Panics(t, func() { s.SelectTrack(-1) })
}

func TestFieldSetters(t *testing.T) {
	s := newTestSession(t, 3)
	s.SelectTrack(1)

	s.TogglePlay()
	assert.False(t, s.IsPlaying())
	s.TogglePlay()
	assert.True(t, s.IsPlaying())

	tests := []struct {
		in, want int
	}{
		{in: -10, want: 0},
		{in: 0, want: 0},
		{in: 73, want: 73},
		{in: 100, want: 100},
		{in: 250, want: 100},
	}
	for _, tc := range tests {
		s.SetVolume(tc.in)
		assert.Equal(t, tc.want, s.Volume(), "volume %d", tc.in)
	}
	assert.Equal(t, 1, s.Index(), "setters must not move the index")
}

func TestLoadAndClear(t *testing.T) {
	s := newTestSession(t, 3)
	s.SelectTrack(2)
	s.SetShuffle(true)
	s.SetVolume(80)

	s.Load(queueOf(t, 5))
	assert.Equal(t, 0, s.Index())
	assert.False(t, s.IsPlaying())
	assert.Equal(t, 5, s.Queue().Len())
	assert.True(t, s.Shuffle())
	assert.Equal(t, 80, s.Volume())

	s.Clear()
	assert.Equal(t, fallback.DefaultQueue().Len(), s.Queue().Len())
	assert.Equal(t, 0, s.Index())
	assert.False(t, s.IsPlaying())
	assert.False(t, s.Shuffle())
	assert.False(t, s.Repeat())
	assert.Equal(t, DefaultVolume, s.Volume())
}

func TestNextIndex_Pure(t *testing.T) {
	tests := []struct {
		name        string
		pos         Position
		want        int
		wantRestart bool
	}{
		{name: "empty", pos: Position{Len: 0}, want: 0},
		{name: "linear", pos: Position{Len: 3, Index: 1}, want: 2},
		{name: "wrap", pos: Position{Len: 3, Index: 2}, want: 0},
		{name: "repeat", pos: Position{Len: 3, Index: 2, Repeat: true}, want: 2, wantRestart: true},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			got, restart := NextIndex(tc.pos, rand.New(rand.NewSource(1)))
			assert.Equal(t, tc.want, got)
			assert.Equal(t, tc.wantRestart, restart)
		})
	}
	assert.Equal(t, 2, PrevIndex(Position{Len: 3, Index: 0}, nil))
}

func TestSnapshot(t *testing.T) {
	s := newTestSession(t, 2)
	s.SelectTrack(1)
	st := s.Snapshot()
	assert.Equal(t, 1, st.Index)
	assert.True(t, st.IsPlaying)
	assert.Len(t, st.Queue, 2)
	st.Queue[0].Title = "changed"
	assert.Equal(t, "t0", s.Queue().At(0).Title)
}
