// Package suggest holds the suggestion strategies that turn a free-text
// prompt into unresolved raw material for the queue builder.
package suggest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/ewilliams-labs/moodqueue/internal/core/domain"
	"github.com/ewilliams-labs/moodqueue/internal/core/ports"
)

// DefaultSongCount is the number of songs requested when none is configured.
const DefaultSongCount = 10

const songListPrompt = `You are a music curator. Based on the user's mood or request, suggest exactly %d real, existing songs.

Rules:
Return ONLY a JSON array, no prose and no surrounding object.
Each element must be an object with exactly two string fields: "title" and "artist".
Example: [{"title": "Fainted", "artist": "Narvent"}, {"title": "After Dark", "artist": "Mr.Kitty"}]`

// SongListStrategy asks the model for an explicit list of songs.
type SongListStrategy struct {
	gen   ports.TextGenerator
	count int
	log   *zap.Logger
}

var _ ports.SuggestionGenerator = (*SongListStrategy)(nil)

// NewSongListStrategy returns a strategy that requests count songs.
func NewSongListStrategy(gen ports.TextGenerator, count int, log *zap.Logger) *SongListStrategy {
	if count <= 0 {
		count = DefaultSongCount
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &SongListStrategy{gen: gen, count: count, log: log}
}

// Generate returns at most count candidates in model order.
func (s *SongListStrategy) Generate(ctx context.Context, prompt string) (domain.RawMaterial, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return domain.RawMaterial{}, domain.ErrInvalidInput
	}

	content, err := s.gen.Complete(ctx, fmt.Sprintf(songListPrompt, s.count), prompt)
	if err != nil {
		return domain.RawMaterial{}, asTransport("llm", err)
	}

	candidates, err := ParseSongList(content, s.count)
	if err != nil {
		s.log.Warn("unusable song list", zap.Error(err), zap.Int("content_len", len(content)))
		return domain.RawMaterial{}, err
	}

	s.log.Debug("song list generated", zap.Int("count", len(candidates)))
	return domain.RawMaterial{Kind: domain.KindCandidates, Candidates: candidates}, nil
}

// ParseSongList decodes a strict JSON array of {title, artist} objects.
// The array is truncated to its first max entries, then entries missing
// either field are dropped.
func ParseSongList(content string, max int) ([]domain.Candidate, error) {
	body := stripCodeFence(content)
	if !strings.HasPrefix(body, "[") {
		return nil, domain.ErrInvalidSuggestionFormat
	}

	var raw []domain.Candidate
	if err := json.Unmarshal([]byte(body), &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidSuggestionFormat, err)
	}

	if max > 0 && len(raw) > max {
		raw = raw[:max]
	}

	out := make([]domain.Candidate, 0, len(raw))
	for _, c := range raw {
		c.Title = strings.TrimSpace(c.Title)
		c.Artist = strings.TrimSpace(c.Artist)
		if c.Title == "" || c.Artist == "" {
			continue
		}
		out = append(out, c)
	}
	if len(out) == 0 {
		return nil, domain.ErrNoSuggestions
	}
	return out, nil
}

func stripCodeFence(content string) string {
	body := strings.TrimSpace(content)
	if !strings.HasPrefix(body, "```") {
		return body
	}
	body = strings.TrimPrefix(body, "```")
	if nl := strings.IndexByte(body, '\n'); nl >= 0 {
		body = body[nl+1:]
	}
	body = strings.TrimSuffix(strings.TrimSpace(body), "```")
	return strings.TrimSpace(body)
}

func asTransport(service string, err error) error {
	if errors.Is(err, domain.ErrTransport) {
		return err
	}
	return &domain.TransportError{Service: service, Err: err}
}
