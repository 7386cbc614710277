package youtube

import (
	"context"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"github.com/ewilliams-labs/moodqueue/internal/core/domain"
)

// SearchVideo returns the first video matching query.
func (c *Client) SearchVideo(ctx context.Context, query string) (domain.MediaRef, bool, error) {
	item, ok, err := c.searchFirst(ctx, query, "video")
	if err != nil || !ok {
		return domain.MediaRef{}, false, err
	}
	if item.ID.VideoID == "" {
		return domain.MediaRef{}, false, nil
	}

	ref := mapVideoToRef(query, item)
	c.log.Debug("video match",
		zap.String("query", query),
		zap.String("title", item.Snippet.Title),
		zap.Float64("score", ref.Score),
	)
	return ref, true, nil
}

// Resolve implements ports.MediaResolver. Lookup errors are logged and
// reported as not found.
func (c *Client) Resolve(ctx context.Context, query string) (domain.MediaRef, bool) {
	if strings.TrimSpace(query) == "" {
		return domain.MediaRef{}, false
	}
	ref, ok, err := c.SearchVideo(ctx, query)
	if err != nil {
		c.log.Warn("resolve failed", zap.String("query", query), zap.Error(err))
		return domain.MediaRef{}, false
	}
	return ref, ok
}

// FindCollection implements ports.CollectionSearcher with the first
// playlist matching query.
func (c *Client) FindCollection(ctx context.Context, query string) (domain.Collection, bool, error) {
	item, ok, err := c.searchFirst(ctx, query, "playlist")
	if err != nil || !ok {
		return domain.Collection{}, false, err
	}
	if item.ID.PlaylistID == "" {
		return domain.Collection{}, false, nil
	}
	return mapPlaylistToCollection(item), true, nil
}

func (c *Client) searchFirst(ctx context.Context, query string, kind string) (searchItem, bool, error) {
	params := url.Values{}
	params.Set("part", "snippet")
	params.Set("type", kind)
	params.Set("maxResults", "1")
	params.Set("q", query)

	var body searchResponse
	if err := c.getJSON(ctx, "/search", params, &body); err != nil {
		return searchItem{}, false, err
	}
	if len(body.Items) == 0 {
		return searchItem{}, false, nil
	}
	return body.Items[0], true, nil
}
