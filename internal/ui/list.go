package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	"github.com/desertthunder/moodcrowd/internal/formatter"
	"github.com/desertthunder/moodcrowd/internal/models"
	"github.com/desertthunder/moodcrowd/internal/session"
)

var (
	_ list.Item = playlistItem{}
	_ list.Item = entryItem{}
)

// playlistItem wraps [models.Playlist] to implement [list.Item].
type playlistItem struct {
	playlist models.Playlist
}

func (i playlistItem) FilterValue() string { return i.playlist.Name }
func (i playlistItem) Title() string       { return i.playlist.Name }
func (i playlistItem) Description() string { return formatter.Summary(i.playlist) }

// entryItem wraps [session.Entry] to implement [list.Item].
type entryItem struct {
	index int
	entry session.Entry
}

func (i entryItem) FilterValue() string { return i.entry.Title() }
func (i entryItem) Title() string       { return fmt.Sprintf("%d. %s", i.index+1, i.entry.Title()) }
func (i entryItem) Description() string {
	desc := formatter.Text(i.entry.Track.Artist)
	if bpm := i.entry.Track.BPM; bpm != nil {
		desc = fmt.Sprintf("%s • %s bpm", desc, formatter.BPM(bpm))
	}
	return desc
}

func playlistItems(playlists []models.Playlist) []list.Item {
	items := make([]list.Item, len(playlists))
	for i, pl := range playlists {
		items[i] = playlistItem{playlist: pl}
	}
	return items
}

func entryItems(entries []session.Entry) []list.Item {
	items := make([]list.Item, len(entries))
	for i, e := range entries {
		items[i] = entryItem{index: i, entry: e}
	}
	return items
}
