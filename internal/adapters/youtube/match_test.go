package youtube

import (
	"reflect"
	"testing"
)

func TestMatchWords(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{name: "drops bracketed and filler", input: "Narvent - Fainted (Official Audio) [HD]", want: []string{"narvent", "fainted"}},
		{name: "splits punctuation", input: "Mr.Kitty - After Dark", want: []string{"mr", "kitty", "after", "dark"}},
		{name: "keeps digits", input: "TOKYO-3 auritni official audio", want: []string{"tokyo", "3", "auritni"}},
		{name: "unbalanced close", input: "a) b", want: []string{"a", "b"}},
		{name: "empty", input: "", want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := matchWords(tt.input); !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestMatchScore(t *testing.T) {
	tests := []struct {
		name  string
		query string
		title string
		want  float64
	}{
		{name: "order independent", query: "Fainted Narvent official audio", title: "Narvent - Fainted (Official Audio)", want: 1},
		{name: "half the words", query: "Die With Smile Lady official audio", title: "Lady Smile compilation", want: 0.5},
		{name: "unrelated", query: "Sunflower Post Malone official audio", title: "10 hours of rain sounds", want: 0},
		{name: "repeated query words count once", query: "dream dream space", title: "Dream", want: 0.5},
		{name: "only filler in query", query: "official audio", title: "anything", want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := matchScore(tt.query, tt.title); got != tt.want {
				t.Fatalf("score: got %.2f, want %.2f", got, tt.want)
			}
		})
	}
}
