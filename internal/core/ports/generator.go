package ports

import (
	"context"

	"github.com/ewilliams-labs/moodqueue/internal/core/domain"
)

// TextGenerator is a chat-style language model.
type TextGenerator interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

// SuggestionGenerator turns a prompt into unresolved raw material.
type SuggestionGenerator interface {
	Generate(ctx context.Context, prompt string) (domain.RawMaterial, error)
}
