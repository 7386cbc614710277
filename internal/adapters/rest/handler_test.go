package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ewilliams-labs/moodqueue/internal/core/domain"
	"github.com/ewilliams-labs/moodqueue/internal/core/services"
)

// --- Mocks ---

// mockBuilder stands in for the queue builder behind a real Orchestrator.
type mockBuilder struct {
	res        domain.BuildResult
	err        error
	calledWith string
}

func (m *mockBuilder) Build(ctx context.Context, prompt string) (domain.BuildResult, error) {
	m.calledWith = prompt
	if m.err != nil {
		return domain.BuildResult{}, m.err
	}
	res := m.res
	res.Prompt = prompt
	return res, nil
}

type mockStats struct {
	err    error
	gotIDs []string
}

func (m *mockStats) VideoStats(ctx context.Context, ids []string) (map[string]domain.MediaStats, error) {
	m.gotIDs = ids
	if m.err != nil {
		return nil, m.err
	}
	out := make(map[string]domain.MediaStats, len(ids))
	for i, id := range ids {
		out[id] = domain.MediaStats{ViewCount: uint64(1000 * (i + 1)), LikeCount: uint64(10 * (i + 1))}
	}
	return out, nil
}

type panicBuilder struct{}

func (panicBuilder) Build(ctx context.Context, prompt string) (domain.BuildResult, error) {
	panic("boom")
}

func mustQueue(t *testing.T, tracks ...domain.Track) domain.Queue {
	t.Helper()
	q, err := domain.NewQueue(tracks)
	if err != nil {
		t.Fatalf("new queue: %v", err)
	}
	return q
}

// --- Tests ---

func TestHandler_GeneratePlaylist(t *testing.T) {
	songs := []domain.Track{
		{Title: "Fainted", Artist: "Narvent", MediaID: "dJWFUBAUM0E", ThumbnailURL: "https://i.ytimg.com/vi/dJWFUBAUM0E/hqdefault.jpg"},
		{Title: "Memory Reboot", Artist: "Narvent", MediaID: "AOODUXy1cGk"},
	}

	tests := []struct {
		name           string
		contentType    string
		body           string
		result         domain.BuildResult
		buildErr       error
		expectedStatus int
		expectedBody   []string
	}{
		{
			name:           "Success: songs in order",
			contentType:    "application/json",
			body:           `{"prompt":"late night drive"}`,
			result:         domain.BuildResult{Queue: mustQueue(t, songs...)},
			expectedStatus: http.StatusOK,
			expectedBody:   []string{`"videoId":"dJWFUBAUM0E"`, `"title":"Memory Reboot"`},
		},
		{
			name:        "Success: playlist info for collection builds",
			contentType: "application/json; charset=utf-8",
			body:        `{"prompt":"jazz study"}`,
			result: domain.BuildResult{
				Queue:      mustQueue(t, songs[0]),
				Collection: &domain.CollectionInfo{Title: "Jazz Study", Thumbnail: "https://img.test/pl.jpg"},
			},
			expectedStatus: http.StatusOK,
			expectedBody:   []string{`"playlistInfo":{"title":"Jazz Study"`},
		},
		{
			name:           "Unsupported media type",
			contentType:    "text/plain",
			body:           `{"prompt":"x"}`,
			expectedStatus: http.StatusUnsupportedMediaType,
			expectedBody:   []string{"Content-Type must be application/json"},
		},
		{
			name:           "Bad Request: malformed json",
			contentType:    "application/json",
			body:           `{invalid-json`,
			expectedStatus: http.StatusBadRequest,
			expectedBody:   []string{"Invalid request body", `"code":"INVALID_INPUT"`},
		},
		{
			name:           "Bad Request: blank prompt",
			contentType:    "application/json",
			body:           `{"prompt":"   "}`,
			expectedStatus: http.StatusBadRequest,
			expectedBody:   []string{"Prompt is required"},
		},
		{
			name:           "Not Found: no playlist",
			contentType:    "application/json",
			body:           `{"prompt":"zzz"}`,
			buildErr:       domain.ErrNoCollectionFound,
			expectedStatus: http.StatusNotFound,
			expectedBody:   []string{"No playlist found", `"code":"NO_COLLECTION_FOUND"`},
		},
		{
			name:           "Not Found: no playable items",
			contentType:    "application/json",
			body:           `{"prompt":"zzz"}`,
			buildErr:       fmt.Errorf("service: %w", domain.ErrNoPlayableItems),
			expectedStatus: http.StatusNotFound,
			expectedBody:   []string{"No songs found in playlist", `"code":"NO_PLAYABLE_ITEMS"`},
		},
		{
			name:           "Not Found: no suggestions",
			contentType:    "application/json",
			body:           `{"prompt":"zzz"}`,
			buildErr:       domain.ErrNoSuggestions,
			expectedStatus: http.StatusNotFound,
			expectedBody:   []string{`"code":"NO_SUGGESTIONS"`},
		},
		{
			name:           "Server Error: malformed suggestions",
			contentType:    "application/json",
			body:           `{"prompt":"zzz"}`,
			buildErr:       fmt.Errorf("%w: unexpected token", domain.ErrInvalidSuggestionFormat),
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   []string{`"code":"INVALID_SUGGESTION_FORMAT"`},
		},
		{
			name:           "Server Error: upstream down",
			contentType:    "application/json",
			body:           `{"prompt":"zzz"}`,
			buildErr:       &domain.TransportError{Service: "youtube", StatusCode: http.StatusForbidden},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   []string{`"code":"UPSTREAM_UNAVAILABLE"`},
		},
		{
			name:           "Server Error: anything else",
			contentType:    "application/json",
			body:           `{"prompt":"zzz"}`,
			buildErr:       errors.New("kaboom"),
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   []string{`"code":"INTERNAL"`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// 1. Setup: a real Orchestrator with mock dependencies
			builder := &mockBuilder{res: tt.result, err: tt.buildErr}
			svc := services.NewOrchestrator(builder, nil, nil, nil)
			h := NewHandler(svc, nil, nil)

			// 2. Request
			req := httptest.NewRequest(http.MethodPost, "/api/generate-playlist", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", tt.contentType)
			rec := httptest.NewRecorder()

			// 3. Execute
			h.ServeHTTP(rec, req)

			// 4. Assertions
			if rec.Code != tt.expectedStatus {
				t.Fatalf("expected status %d, got %d, body: %s", tt.expectedStatus, rec.Code, strings.TrimSpace(rec.Body.String()))
			}
			for _, want := range tt.expectedBody {
				if !strings.Contains(rec.Body.String(), want) {
					t.Errorf("expected body to contain %q, got %q", want, rec.Body.String())
				}
			}
			if rec.Header().Get(RequestIDHeader) == "" {
				t.Errorf("expected %s header", RequestIDHeader)
			}
		})
	}
}

func TestHandler_GeneratePlaylist_ResponseShape(t *testing.T) {
	builder := &mockBuilder{res: domain.BuildResult{
		Queue: mustQueue(t,
			domain.Track{Title: "A", Artist: "X", MediaID: "aaa"},
			domain.Track{Title: "B", Artist: "Y", MediaID: "bbb"},
		),
		LowConfidence: []int{1},
	}}
	h := NewHandler(services.NewOrchestrator(builder, nil, nil, nil), nil, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/generate-playlist", bytes.NewBufferString(`{"prompt":"  rainy  "}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var resp playlistResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Songs) != 2 || resp.Songs[0].MediaID != "aaa" || resp.Songs[1].MediaID != "bbb" {
		t.Fatalf("unexpected songs: %+v", resp.Songs)
	}
	if resp.PlaylistInfo != nil {
		t.Fatalf("expected no playlist info, got %+v", resp.PlaylistInfo)
	}
	if len(resp.LowConfidence) != 1 || resp.LowConfidence[0] != 1 {
		t.Fatalf("expected second song flagged low confidence, got %v", resp.LowConfidence)
	}
	if builder.calledWith != "  rainy  " {
		t.Fatalf("expected prompt to reach the builder unchanged, got %q", builder.calledWith)
	}
}

func TestHandler_NoServerSidePlaylist(t *testing.T) {
	builder := &mockBuilder{res: domain.BuildResult{Queue: mustQueue(t, domain.Track{Title: "A", Artist: "X", MediaID: "aaa"})}}
	h := NewHandler(services.NewOrchestrator(builder, nil, nil, nil), nil, nil)

	do := func(method, path, body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec
	}

	if rec := do(http.MethodPost, "/api/generate-playlist", `{"prompt":"focus"}`); rec.Code != http.StatusOK {
		t.Fatalf("build: got %d", rec.Code)
	}
	for _, method := range []string{http.MethodGet, http.MethodDelete} {
		if rec := do(method, "/api/playlist", ""); rec.Code != http.StatusNotFound {
			t.Errorf("%s /api/playlist: expected 404, got %d", method, rec.Code)
		}
	}
}

func TestHandler_Stats(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		statsErr       error
		expectedStatus int
		expectedBody   string
	}{
		{
			name:           "Success",
			body:           `{"ids":["a","b"]}`,
			expectedStatus: http.StatusOK,
			expectedBody:   `"b":{"views":2000,"likes":20}`,
		},
		{
			name:           "Empty ids",
			body:           `{"ids":[]}`,
			expectedStatus: http.StatusOK,
			expectedBody:   `"stats":{}`,
		},
		{
			name:           "Upstream failure",
			body:           `{"ids":["a"]}`,
			statsErr:       &domain.TransportError{Service: "youtube", StatusCode: http.StatusForbidden},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   `"code":"UPSTREAM_UNAVAILABLE"`,
		},
		{
			name:           "Bad body",
			body:           `{"ids":`,
			expectedStatus: http.StatusBadRequest,
			expectedBody:   "Invalid request body",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stats := &mockStats{err: tt.statsErr}
			h := NewHandler(services.NewOrchestrator(&mockBuilder{}, nil, stats, nil), nil, nil)

			req := httptest.NewRequest(http.MethodPost, "/api/stats", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			if rec.Code != tt.expectedStatus {
				t.Fatalf("expected status %d, got %d, body: %s", tt.expectedStatus, rec.Code, rec.Body.String())
			}
			if !strings.Contains(rec.Body.String(), tt.expectedBody) {
				t.Errorf("expected body to contain %q, got %q", tt.expectedBody, rec.Body.String())
			}
		})
	}
}

func TestHandler_Defaults(t *testing.T) {
	h := NewHandler(services.NewOrchestrator(&mockBuilder{}, nil, nil, nil), nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/defaults", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var resp playlistResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Songs) != 13 {
		t.Fatalf("expected 13 default songs, got %d", len(resp.Songs))
	}
}

func TestHandler_HealthCheck(t *testing.T) {
	h := NewHandler(services.NewOrchestrator(&mockBuilder{}, nil, nil, nil), nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(RequestIDHeader, "req-123")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if got := rec.Header().Get(RequestIDHeader); got != "req-123" {
		t.Fatalf("expected request id to be echoed, got %q", got)
	}
	if !strings.Contains(rec.Body.String(), `"status":"ok"`) {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}
}

func TestHandler_RecoversPanics(t *testing.T) {
	h := NewHandler(services.NewOrchestrator(panicBuilder{}, nil, nil, nil), nil, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/generate-playlist", strings.NewReader(`{"prompt":"x"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
}

func TestHandler_PlayerRoute(t *testing.T) {
	player := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})
	h := NewHandler(services.NewOrchestrator(&mockBuilder{}, nil, nil, nil), player, nil)

	req := httptest.NewRequest(http.MethodGet, "/ws/player", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusTeapot {
		t.Fatalf("expected player handler to be mounted, got %d", rec.Code)
	}
}
