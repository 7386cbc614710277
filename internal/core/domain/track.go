package domain

import (
	"errors"
	"strings"
)

// Track is a resolved, playable queue entry.
type Track struct {
	Title        string `json:"title"`
	Artist       string `json:"artist"`
	MediaID      string `json:"videoId"`
	ThumbnailURL string `json:"thumbnail,omitempty"`
}

// NewTrack validates and builds a Track. Thumbnail may be empty.
func NewTrack(title, artist, mediaID, thumbnail string) (Track, error) {
	title = strings.TrimSpace(title)
	artist = strings.TrimSpace(artist)
	mediaID = strings.TrimSpace(mediaID)
	if title == "" || artist == "" {
		return Track{}, errors.New("domain: track title and artist are required")
	}
	if mediaID == "" {
		return Track{}, errors.New("domain: track media id is required")
	}
	return Track{
		Title:        title,
		Artist:       artist,
		MediaID:      mediaID,
		ThumbnailURL: thumbnail,
	}, nil
}

// Playable reports whether the track carries a media id.
func (t Track) Playable() bool {
	return strings.TrimSpace(t.MediaID) != ""
}

// Candidate is an unresolved suggestion.
type Candidate struct {
	Title  string `json:"title"`
	Artist string `json:"artist"`
}

// MediaRef is what a resolver returns for a single query. Score is how
// well the matched item's title covers the query, in [0,1]; it is only
// meaningful when Scored is set.
type MediaRef struct {
	MediaID      string
	ThumbnailURL string
	Score        float64
	Scored       bool
}

// ThumbnailFor derives the standard thumbnail URL for a video id.
func ThumbnailFor(mediaID string) string {
	if mediaID == "" {
		return ""
	}
	return "https://i.ytimg.com/vi/" + mediaID + "/hqdefault.jpg"
}

// MediaStats holds public counters for one media id.
type MediaStats struct {
	ViewCount uint64 `json:"views"`
	LikeCount uint64 `json:"likes"`
}
