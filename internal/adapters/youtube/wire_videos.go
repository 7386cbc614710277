package youtube

import (
	"context"
	"net/url"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/ewilliams-labs/moodqueue/internal/core/domain"
)

const (
	// maxIDsPerRequest is the videos endpoint limit for the id parameter.
	maxIDsPerRequest = 50
	statsConcurrency = 4
)

// VideoStats implements ports.StatsProvider. ids are looked up in chunks of
// 50; ids the API does not return are absent from the result.
func (c *Client) VideoStats(ctx context.Context, ids []string) (map[string]domain.MediaStats, error) {
	chunks := chunkIDs(ids, maxIDsPerRequest)
	results := make([][]videoItem, len(chunks))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(statsConcurrency)
	for i, chunk := range chunks {
		g.Go(func() error {
			params := url.Values{}
			params.Set("part", "statistics")
			params.Set("id", strings.Join(chunk, ","))

			var body videosResponse
			if err := c.getJSON(gctx, "/videos", params, &body); err != nil {
				return err
			}
			results[i] = body.Items
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make(map[string]domain.MediaStats, len(ids))
	for _, items := range results {
		for _, it := range items {
			out[it.ID] = mapStats(it)
		}
	}
	return out, nil
}

func chunkIDs(ids []string, size int) [][]string {
	seen := make(map[string]struct{}, len(ids))
	var clean []string
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		clean = append(clean, id)
	}

	var chunks [][]string
	for start := 0; start < len(clean); start += size {
		end := min(start+size, len(clean))
		chunks = append(chunks, clean[start:end])
	}
	return chunks
}
