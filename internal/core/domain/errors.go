package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned by repositories when no record exists.
	ErrNotFound = errors.New("domain: not found")

	ErrInvalidInput            = errors.New("prompt must not be empty")
	ErrInvalidSuggestionFormat = errors.New("suggestions were not a valid list")
	ErrNoSuggestions           = errors.New("no suggestions were generated")
	ErrNoSearchQuery           = errors.New("no search query was generated")
	ErrNoCollectionFound       = errors.New("no playlist found for the prompt")
	ErrNoPlayableItems         = errors.New("playlist had no playable items")
	ErrTransport               = errors.New("upstream service unavailable")
)

// TransportError wraps a network, auth, quota or server failure of an
// upstream service.
type TransportError struct {
	Service    string
	StatusCode int
	Err        error
}

func (e *TransportError) Error() string {
	switch {
	case e.StatusCode != 0 && e.Err != nil:
		return fmt.Sprintf("%s: status %d: %v", e.Service, e.StatusCode, e.Err)
	case e.StatusCode != 0:
		return fmt.Sprintf("%s: status %d", e.Service, e.StatusCode)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Service, e.Err)
	}
	return e.Service + ": " + ErrTransport.Error()
}

func (e *TransportError) Is(target error) bool {
	return target == ErrTransport
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// IsNotFound reports whether err belongs to the not-found family.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNoSuggestions) ||
		errors.Is(err, ErrNoSearchQuery) ||
		errors.Is(err, ErrNoCollectionFound) ||
		errors.Is(err, ErrNoPlayableItems)
}
