package youtube

import (
	"strings"
	"unicode"
)

// fillerWords appear in video titles and resolver queries without saying
// anything about which song it is.
var fillerWords = map[string]bool{
	"audio": true, "clip": true, "explicit": true, "feat": true, "ft": true,
	"hd": true, "hq": true, "lyric": true, "lyrics": true, "mv": true,
	"official": true, "remaster": true, "remastered": true, "video": true,
	"visualizer": true, "4k": true,
}

// matchScore is the share of distinct query words present in the result
// title, in [0,1]. Word order is ignored because titles are usually
// "Artist - Title" while queries are "Title Artist".
func matchScore(query, title string) float64 {
	want := matchWords(query)
	if len(want) == 0 {
		return 0
	}
	have := make(map[string]bool)
	for _, w := range matchWords(title) {
		have[w] = true
	}

	seen := make(map[string]bool, len(want))
	found := 0
	for _, w := range want {
		if seen[w] {
			continue
		}
		seen[w] = true
		if have[w] {
			found++
		}
	}
	return float64(found) / float64(len(seen))
}

// matchWords lowercases s, skips anything inside () or [], splits on
// non-alphanumerics and drops filler words.
func matchWords(s string) []string {
	var (
		words []string
		cur   strings.Builder
		depth int
	)
	flush := func() {
		if cur.Len() == 0 {
			return
		}
		if w := cur.String(); !fillerWords[w] {
			words = append(words, w)
		}
		cur.Reset()
	}

	for _, r := range strings.ToLower(s) {
		switch {
		case r == '(' || r == '[':
			flush()
			depth++
		case r == ')' || r == ']':
			flush()
			if depth > 0 {
				depth--
			}
		case depth > 0:
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			cur.WriteRune(r)
		default:
			flush()
		}
	}
	flush()
	return words
}
