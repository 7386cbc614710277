package domain

import (
	"errors"
	"fmt"
	"time"
)

// ErrEmptyQueue is returned when a queue would have no tracks.
var ErrEmptyQueue = errors.New("domain: queue must contain at least one track")

// Queue is an ordered, immutable list of playable tracks.
type Queue struct {
	tracks []Track
}

// NewQueue copies tracks into a Queue. Every track must be playable.
func NewQueue(tracks []Track) (Queue, error) {
	if len(tracks) == 0 {
		return Queue{}, ErrEmptyQueue
	}
	out := make([]Track, len(tracks))
	for i, t := range tracks {
		if !t.Playable() {
			return Queue{}, fmt.Errorf("domain: track %d (%q) has no media id", i, t.Title)
		}
		out[i] = t
	}
	return Queue{tracks: out}, nil
}

// Len returns the number of tracks.
func (q Queue) Len() int {
	return len(q.tracks)
}

// At returns the track at index i. It panics when i is out of range.
func (q Queue) At(i int) Track {
	return q.tracks[i]
}

// Tracks returns a copy of the tracks in order.
func (q Queue) Tracks() []Track {
	out := make([]Track, len(q.tracks))
	copy(out, q.tracks)
	return out
}

// CollectionInfo describes the external collection a queue came from.
type CollectionInfo struct {
	Title     string `json:"title"`
	Thumbnail string `json:"thumbnail"`
}

// Collection is a collection search hit.
type Collection struct {
	ID   string
	Info CollectionInfo
}

// CollectionItem is one raw entry of an enumerated collection.
type CollectionItem struct {
	Title     string
	Artist    string
	MediaID   string
	Thumbnail string
}

// BuildResult is the outcome of a single successful build. LowConfidence
// lists the queue positions whose resolved media weakly matched the
// suggestion; those tracks are still played.
type BuildResult struct {
	Queue         Queue
	Prompt        string
	Collection    *CollectionInfo
	LowConfidence []int
}

// PersistedQueue is the client-local record written after every build.
type PersistedQueue struct {
	Songs        []Track         `json:"songs"`
	Prompt       string          `json:"prompt"`
	PlaylistInfo *CollectionInfo `json:"playlistInfo,omitempty"`
	CreatedAt    time.Time       `json:"createdAt"`
}

// NewPersistedQueue snapshots a build result.
func NewPersistedQueue(res BuildResult, now time.Time) PersistedQueue {
	return PersistedQueue{
		Songs:        res.Queue.Tracks(),
		Prompt:       res.Prompt,
		PlaylistInfo: res.Collection,
		CreatedAt:    now.UTC(),
	}
}

// RawKind tags the variant held by RawMaterial.
type RawKind int

const (
	KindCandidates RawKind = iota + 1
	KindCollection
)

// RawMaterial is what a suggestion strategy produces before resolution.
// Candidates is set for KindCandidates; Collection and Items for KindCollection.
type RawMaterial struct {
	Kind       RawKind
	Candidates []Candidate
	Collection CollectionInfo
	Items      []CollectionItem
}
