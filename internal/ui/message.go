package ui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/moodcrowd/internal/models"
	"github.com/desertthunder/moodcrowd/internal/session"
)

// MsgKind enumerates all message types in the application.
type MsgKind int

// Msg represents all possible messages in the TUI (Elm-style message union).
type Msg struct {
	kind MsgKind
	data any
}

var (
	_ tea.Msg = Msg{}
)

const (
	MsgStarted MsgKind = iota
	MsgAuthDone
	MsgFilesSelected
	MsgAnalyzed
	MsgSaved
	MsgPlaylistsFetched
	MsgPlayback
	MsgTick
)

// authResult is the payload of [MsgAuthDone].
type authResult struct {
	mode  session.AuthMode
	email string
	err   error
}

// selectResult is the payload of [MsgFilesSelected].
type selectResult struct {
	dir   string
	files []models.FileHandle
	err   error
}

// startedMsg is the constructor for [MsgStarted]
func startedMsg(screen session.Screen) Msg {
	return Msg{kind: MsgStarted, data: screen}
}

// authDoneMsg is the constructor for [MsgAuthDone]
func authDoneMsg(mode session.AuthMode, email string, err error) Msg {
	return Msg{kind: MsgAuthDone, data: authResult{mode, email, err}}
}

// filesSelectedMsg is the constructor for [MsgFilesSelected]
func filesSelectedMsg(dir string, files []models.FileHandle, err error) Msg {
	return Msg{kind: MsgFilesSelected, data: selectResult{dir, files, err}}
}

// analyzedMsg is the constructor for [MsgAnalyzed]
func analyzedMsg(tracks []models.Track, err error) Msg {
	return Msg{
		kind: MsgAnalyzed,
		data: struct {
			tracks []models.Track
			err    error
		}{tracks, err},
	}
}

// savedMsg is the constructor for [MsgSaved]
func savedMsg(err error) Msg {
	return Msg{kind: MsgSaved, data: err}
}

// playlistsFetchedMsg is the constructor for [MsgPlaylistsFetched]
func playlistsFetchedMsg(playlists []models.Playlist, err error) Msg {
	return Msg{
		kind: MsgPlaylistsFetched,
		data: struct {
			playlists []models.Playlist
			err       error
		}{playlists, err},
	}
}

// playbackMsg is the constructor for [MsgPlayback]
func playbackMsg(ev session.PlaybackEvent) Msg {
	return Msg{kind: MsgPlayback, data: ev}
}

// tickMsg is the constructor for [MsgTick]
func tickMsg(t time.Time) Msg {
	return Msg{kind: MsgTick, data: t}
}

// Events carries playback events from audio goroutines to the model.
type Events chan session.PlaybackEvent

// NewEvents creates a buffered event channel.
func NewEvents() Events {
	return make(Events, 16)
}

// Forward queues ev without blocking. When the buffer is full the event is dropped;
// the next tick redraws from session state anyway.
func (e Events) Forward(ev session.PlaybackEvent) {
	select {
	case e <- ev:
	default:
	}
}

// wait blocks until the next playback event.
func (e Events) wait() tea.Cmd {
	if e == nil {
		return nil
	}
	return func() tea.Msg {
		ev, ok := <-e
		if !ok {
			return nil
		}
		return playbackMsg(ev)
	}
}
