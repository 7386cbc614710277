package fallback

import "github.com/ewilliams-labs/moodqueue/internal/core/domain"

var defaultSongs = []struct {
	title, artist, id string
}{
	{"I watch the moon", "Khaos Lan", "WBgpL0c9dCQ"},
	{"Fainted", "Narvent", "dJWFUBAUM0E"},
	{"Memory Reboot", "Narvent", "mHSnuL-LGNU"},
	{"Dream Space", "DVRST", "dSPiDFZmAnQ"},
	{"Close Eyes", "DVRST", "OSbhFr5TzkQ"},
	{"After Dark", "Mr.Kitty", "Cl5Vkd4N03Q"},
	{"Drained", "auritni", "95XmCt17-Dg"},
	{"TOKYO-3", "auritni", "WCpir8ytV9Y"},
	{"Despond", "auritni", "6RC5wI5MQfE"},
	{"SEA OF PROBLEMS", "GLICHERY", "gtpCl_QWaLg"},
	{"RAPTURE", "INTERWORLD", "i5zR6toPVQ8"},
	{"METAMORPHOSIS", "INTERWORLD", "317RHaFF7Xk"},
	{"SO TIRED", "NUEKI", "turCAoWsH-U"},
}

// DefaultIDs returns the media ids of the default songs.
func DefaultIDs() []string {
	ids := make([]string, len(defaultSongs))
	for i, s := range defaultSongs {
		ids[i] = s.id
	}
	return ids
}

// DefaultTracks returns the default songs in order.
func DefaultTracks() []domain.Track {
	out := make([]domain.Track, len(defaultSongs))
	for i, s := range defaultSongs {
		out[i] = domain.Track{
			Title:        s.title,
			Artist:       s.artist,
			MediaID:      s.id,
			ThumbnailURL: domain.ThumbnailFor(s.id),
		}
	}
	return out
}

// DefaultQueue returns the queue a cleared session is bound to.
func DefaultQueue() domain.Queue {
	q, err := domain.NewQueue(DefaultTracks())
	if err != nil {
		panic("fallback: default songs are invalid: " + err.Error())
	}
	return q
}
