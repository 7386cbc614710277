package youtube

import (
	"context"
	"errors"
	"net/url"
	"strconv"

	"github.com/ewilliams-labs/moodqueue/internal/core/domain"
)

// maxPageSize is the API limit for maxResults.
const maxPageSize = 50

// ListItems enumerates up to max items of a playlist in playlist order.
func (c *Client) ListItems(ctx context.Context, playlistID string, max int) ([]domain.CollectionItem, error) {
	if playlistID == "" {
		return nil, errors.New("youtube adapter: playlist id is required")
	}
	if max <= 0 || max > maxPageSize {
		max = maxPageSize
	}

	params := url.Values{}
	params.Set("part", "snippet")
	params.Set("playlistId", playlistID)
	params.Set("maxResults", strconv.Itoa(max))

	var body playlistItemsResponse
	if err := c.getJSON(ctx, "/playlistItems", params, &body); err != nil {
		return nil, err
	}

	items := body.Items
	if len(items) > max {
		items = items[:max]
	}
	out := make([]domain.CollectionItem, 0, len(items))
	for _, it := range items {
		out = append(out, mapPlaylistItem(it))
	}
	return out, nil
}
