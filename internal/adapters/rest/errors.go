package rest

import (
	"errors"
	"net/http"

	"github.com/ewilliams-labs/moodqueue/internal/core/domain"
)

const (
	errCodeInvalidInput            = "INVALID_INPUT"
	errCodeNoSuggestions           = "NO_SUGGESTIONS"
	errCodeNoSearchQuery           = "NO_SEARCH_QUERY"
	errCodeNoCollectionFound       = "NO_COLLECTION_FOUND"
	errCodeNoPlayableItems         = "NO_PLAYABLE_ITEMS"
	errCodeInvalidSuggestionFormat = "INVALID_SUGGESTION_FORMAT"
	errCodeUpstreamUnavailable     = "UPSTREAM_UNAVAILABLE"
	errCodeNotFound                = "NOT_FOUND"
	errCodeInternal                = "INTERNAL"
)

type apiError struct {
	status  int
	code    string
	message string
}

// classify maps a service error to a status, code and user facing message.
func classify(err error) apiError {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return apiError{http.StatusBadRequest, errCodeInvalidInput, "Prompt is required"}
	case errors.Is(err, domain.ErrNoSuggestions):
		return apiError{http.StatusNotFound, errCodeNoSuggestions, "No songs were suggested. Try a different prompt."}
	case errors.Is(err, domain.ErrNoSearchQuery):
		return apiError{http.StatusNotFound, errCodeNoSearchQuery, "Could not turn the prompt into a search. Try a different prompt."}
	case errors.Is(err, domain.ErrNoCollectionFound):
		return apiError{http.StatusNotFound, errCodeNoCollectionFound, "No playlist found. Try a different prompt."}
	case errors.Is(err, domain.ErrNoPlayableItems):
		return apiError{http.StatusNotFound, errCodeNoPlayableItems, "No songs found in playlist. Try a different prompt."}
	case errors.Is(err, domain.ErrInvalidSuggestionFormat):
		return apiError{http.StatusInternalServerError, errCodeInvalidSuggestionFormat, "Suggestions came back in an unexpected format. Please try again."}
	case errors.Is(err, domain.ErrTransport):
		return apiError{http.StatusInternalServerError, errCodeUpstreamUnavailable, "An upstream service is unavailable. Please try again."}
	case errors.Is(err, domain.ErrNotFound):
		return apiError{http.StatusNotFound, errCodeNotFound, "Nothing saved yet"}
	}
	return apiError{http.StatusInternalServerError, errCodeInternal, "Something went wrong. Please try again."}
}

func writeServiceError(w http.ResponseWriter, err error) {
	e := classify(err)
	writeErrorWithCode(w, e.status, e.message, e.code)
}
