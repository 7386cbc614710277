package youtube

import (
	"strconv"

	"github.com/ewilliams-labs/moodqueue/internal/core/domain"
)

func mapVideoToRef(query string, item searchItem) domain.MediaRef {
	thumb := item.Snippet.Thumbnails.best()
	if thumb == "" {
		thumb = domain.ThumbnailFor(item.ID.VideoID)
	}
	return domain.MediaRef{
		MediaID:      item.ID.VideoID,
		ThumbnailURL: thumb,
		Score:        matchScore(query, item.Snippet.Title),
		Scored:       true,
	}
}

func mapPlaylistToCollection(item searchItem) domain.Collection {
	return domain.Collection{
		ID: item.ID.PlaylistID,
		Info: domain.CollectionInfo{
			Title:     item.Snippet.Title,
			Thumbnail: item.Snippet.Thumbnails.best(),
		},
	}
}

// mapPlaylistItem keeps the raw display title and channel; splitting into
// artist and title happens in the suggestion strategy.
func mapPlaylistItem(item playlistItem) domain.CollectionItem {
	return domain.CollectionItem{
		Title:     item.Snippet.Title,
		Artist:    item.Snippet.VideoOwnerChannelTitle,
		MediaID:   item.Snippet.ResourceID.VideoID,
		Thumbnail: item.Snippet.Thumbnails.best(),
	}
}

func mapStats(item videoItem) domain.MediaStats {
	views, _ := strconv.ParseUint(item.Statistics.ViewCount, 10, 64)
	likes, _ := strconv.ParseUint(item.Statistics.LikeCount, 10, 64)
	return domain.MediaStats{ViewCount: views, LikeCount: likes}
}
