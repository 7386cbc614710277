package youtube

type thumbnail struct {
	URL string `json:"url"`
}

type thumbnails struct {
	Default *thumbnail `json:"default,omitempty"`
	Medium  *thumbnail `json:"medium,omitempty"`
	High    *thumbnail `json:"high,omitempty"`
}

// best prefers the high resolution thumbnail.
func (t thumbnails) best() string {
	switch {
	case t.High != nil && t.High.URL != "":
		return t.High.URL
	case t.Default != nil && t.Default.URL != "":
		return t.Default.URL
	case t.Medium != nil:
		return t.Medium.URL
	}
	return ""
}

type searchResponse struct {
	Items []searchItem `json:"items"`
}

type searchItem struct {
	ID struct {
		Kind       string `json:"kind"`
		VideoID    string `json:"videoId"`
		PlaylistID string `json:"playlistId"`
	} `json:"id"`
	Snippet struct {
		Title        string     `json:"title"`
		ChannelTitle string     `json:"channelTitle"`
		Thumbnails   thumbnails `json:"thumbnails"`
	} `json:"snippet"`
}

type playlistItemsResponse struct {
	Items []playlistItem `json:"items"`
}

type playlistItem struct {
	Snippet struct {
		Title                  string     `json:"title"`
		VideoOwnerChannelTitle string     `json:"videoOwnerChannelTitle"`
		Thumbnails             thumbnails `json:"thumbnails"`
		ResourceID             struct {
			VideoID string `json:"videoId"`
		} `json:"resourceId"`
	} `json:"snippet"`
}

type videosResponse struct {
	Items []videoItem `json:"items"`
}

type videoItem struct {
	ID         string `json:"id"`
	Statistics struct {
		ViewCount string `json:"viewCount"`
		LikeCount string `json:"likeCount"`
	} `json:"statistics"`
}

type apiErrorResponse struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}
