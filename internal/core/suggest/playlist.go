package suggest

import (
	"context"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/ewilliams-labs/moodqueue/internal/core/domain"
	"github.com/ewilliams-labs/moodqueue/internal/core/ports"
)

const (
	// DefaultCollectionSize is how many items are enumerated by default.
	DefaultCollectionSize = 10
	// MaxCollectionSize caps enumeration.
	MaxCollectionSize = 15

	unknownArtist = "Unknown Artist"
)

const searchPhrasePrompt = `You are a helpful assistant that creates YouTube playlist search queries.
Based on the user's request, create a concise search query that would find a relevant playlist on YouTube.

Examples:
- "lofi hip hop chill music" -> "lofi hip hop chill"
- "90s rock hits" -> "90s rock hits"
- "workout motivation music" -> "workout motivation"
- "jazz for studying" -> "jazz study"

Return only the search query, nothing else.`

var topicSuffix = regexp.MustCompile(`\s*-\s*Topic$`)

// PlaylistSearchStrategy asks the model for a search phrase and enumerates
// the first matching collection.
type PlaylistSearchStrategy struct {
	gen      ports.TextGenerator
	searcher ports.CollectionSearcher
	size     int
	log      *zap.Logger
}

var _ ports.SuggestionGenerator = (*PlaylistSearchStrategy)(nil)

// NewPlaylistSearchStrategy returns a strategy enumerating size items.
func NewPlaylistSearchStrategy(gen ports.TextGenerator, searcher ports.CollectionSearcher, size int, log *zap.Logger) *PlaylistSearchStrategy {
	switch {
	case size <= 0:
		size = DefaultCollectionSize
	case size > MaxCollectionSize:
		size = MaxCollectionSize
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &PlaylistSearchStrategy{gen: gen, searcher: searcher, size: size, log: log}
}

// Generate returns the collection info and its raw, unfiltered items.
func (s *PlaylistSearchStrategy) Generate(ctx context.Context, prompt string) (domain.RawMaterial, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return domain.RawMaterial{}, domain.ErrInvalidInput
	}

	content, err := s.gen.Complete(ctx, searchPhrasePrompt, prompt)
	if err != nil {
		return domain.RawMaterial{}, asTransport("llm", err)
	}
	phrase := cleanPhrase(content)
	if phrase == "" {
		return domain.RawMaterial{}, domain.ErrNoSearchQuery
	}
	s.log.Info("generated search query", zap.String("query", phrase))

	collection, ok, err := s.searcher.FindCollection(ctx, phrase+" playlist")
	if err != nil {
		return domain.RawMaterial{}, asTransport("youtube", err)
	}
	if !ok || collection.ID == "" {
		return domain.RawMaterial{}, domain.ErrNoCollectionFound
	}
	s.log.Info("found playlist", zap.String("playlist_id", collection.ID), zap.String("title", collection.Info.Title))

	items, err := s.searcher.ListItems(ctx, collection.ID, s.size)
	if err != nil {
		return domain.RawMaterial{}, asTransport("youtube", err)
	}
	if len(items) > s.size {
		items = items[:s.size]
	}

	out := make([]domain.CollectionItem, len(items))
	for i, it := range items {
		artist, title := SplitTitle(it.Title, it.Artist)
		out[i] = domain.CollectionItem{
			Title:     title,
			Artist:    artist,
			MediaID:   it.MediaID,
			Thumbnail: it.Thumbnail,
		}
	}

	return domain.RawMaterial{
		Kind:       domain.KindCollection,
		Collection: collection.Info,
		Items:      out,
	}, nil
}

// SplitTitle splits a display title on the first " - " into artist and
// title. Without a delimiter the channel is the artist. A trailing
// "- Topic" is stripped from the artist.
func SplitTitle(display, channel string) (artist, title string) {
	title = strings.TrimSpace(display)
	artist = strings.TrimSpace(channel)
	if artist == "" {
		artist = unknownArtist
	}
	if before, after, found := strings.Cut(display, " - "); found {
		artist = strings.TrimSpace(before)
		title = strings.TrimSpace(after)
	}
	return topicSuffix.ReplaceAllString(artist, ""), title
}

func cleanPhrase(content string) string {
	phrase := strings.TrimSpace(content)
	if i := strings.IndexByte(phrase, '\n'); i >= 0 {
		phrase = strings.TrimSpace(phrase[:i])
	}
	return strings.TrimSpace(strings.Trim(phrase, "\"'`"))
}
