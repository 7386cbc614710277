package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/pterm/pterm"

	"github.com/ewilliams-labs/moodqueue/internal/core/domain"
)

var nowUTC = func() time.Time { return time.Now().UTC() }

type queueOutput struct {
	domain.PersistedQueue
	Stats map[string]domain.MediaStats `json:"stats,omitempty"`
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func (c *cli) printQueue(w io.Writer, rec domain.PersistedQueue, stats map[string]domain.MediaStats) error {
	if c.json {
		return writeJSON(w, queueOutput{PersistedQueue: rec, Stats: stats})
	}

	if rec.PlaylistInfo != nil && rec.PlaylistInfo.Title != "" {
		fmt.Fprint(w, pterm.DefaultSection.Sprint(rec.PlaylistInfo.Title))
	} else if rec.Prompt != "" {
		fmt.Fprint(w, pterm.DefaultSection.Sprint(rec.Prompt))
	}

	table, err := pterm.DefaultTable.
		WithHasHeader().
		WithData(queueTable(rec.Songs, stats)).
		Srender()
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, table)
	return err
}

func queueTable(songs []domain.Track, stats map[string]domain.MediaStats) pterm.TableData {
	header := []string{"#", "Title", "Artist", "Video"}
	if stats != nil {
		header = append(header, "Views", "Likes")
	}
	data := pterm.TableData{header}
	for i, s := range songs {
		row := []string{strconv.Itoa(i + 1), s.Title, s.Artist, s.MediaID}
		if stats != nil {
			st := stats[s.MediaID]
			row = append(row, strconv.FormatUint(st.ViewCount, 10), strconv.FormatUint(st.LikeCount, 10))
		}
		data = append(data, row)
	}
	return data
}
