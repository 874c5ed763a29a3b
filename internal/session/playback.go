package session

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/moodcrowd/internal/models"
	"github.com/desertthunder/moodcrowd/internal/shared"
)

// Resource is one bound media resource. Close must be safe to call once after a failed Start.
type Resource interface {
	Start() error
	Close() error
}

// Media binds local files to playable resources.
//
// onEnded is called once, from any goroutine, when playback reaches the natural end of the file.
// It must not be called synchronously from Load, Start or Close.
type Media interface {
	Load(file models.FileHandle, onEnded func()) (Resource, error)
}

// Entry pairs a playlist track with the local file that plays it.
type Entry struct {
	Track models.Track
	File  models.FileHandle
}

// Title is the track title, falling back to the file name.
func (e Entry) Title() string {
	if e.Track.Title != nil && *e.Track.Title != "" {
		return *e.Track.Title
	}
	return e.File.Name
}

// Match joins tracks to files by name, in playlist order.
//
// An empty playlist fails with [shared.ErrEmptyPlaylist] and zero matches with
// [shared.ErrNoMatchingFiles]. Tracks without a file are dropped.
func Match(pl models.Playlist, files []models.FileHandle) ([]Entry, error) {
	if len(pl.Tracks) == 0 {
		return nil, shared.ErrEmptyPlaylist
	}

	byName := make(map[string]models.FileHandle, len(files))
	for _, f := range files {
		if _, ok := byName[f.Name]; !ok {
			byName[f.Name] = f
		}
	}

	entries := make([]Entry, 0, len(pl.Tracks))
	for _, t := range pl.Tracks {
		if f, ok := byName[t.Filename]; ok {
			entries = append(entries, Entry{Track: t, File: f})
		}
	}
	if len(entries) == 0 {
		return nil, shared.ErrNoMatchingFiles
	}
	return entries, nil
}

// EventKind describes a [PlaybackEvent].
type EventKind int

const (
	EventStarted EventKind = iota
	EventRejected
	EventFinished
	EventClosed
)

// PlaybackEvent reports a state change, including ones caused by auto-advance.
type PlaybackEvent struct {
	Kind  EventKind
	Index int
	Entry Entry
	Err   error
}

// PlaybackSession plays matched entries one at a time.
type PlaybackSession struct {
	mu         sync.Mutex
	media      Media
	entries    []Entry
	index      int
	resource   Resource
	generation uint64
	playing    bool
	closed     bool
	listener   func(PlaybackEvent)
	logger     *log.Logger
}

// Len is the number of playable entries.
func (s *PlaybackSession) Len() int {
	return len(s.entries)
}

// Entries returns the matched entries in play order.
func (s *PlaybackSession) Entries() []Entry {
	out := make([]Entry, len(s.entries))
	copy(out, s.entries)
	return out
}

// Index is the current position.
func (s *PlaybackSession) Index() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.index
}

// Current returns the entry at the current position.
func (s *PlaybackSession) Current() (Entry, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.entries[s.index], s.index
}

func (s *PlaybackSession) Playing() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.playing
}

func (s *PlaybackSession) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// TogglePause pauses or resumes the bound resource when it supports pausing.
// It reports whether playback is now paused.
func (s *PlaybackSession) TogglePause() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.resource.(interface{ TogglePause() bool })
	if !ok || !s.playing {
		return false
	}
	return p.TogglePause()
}

// Progress reports position and length of the bound resource, or zeros when unknown.
func (s *PlaybackSession) Progress() (time.Duration, time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.resource.(interface {
		Progress() (time.Duration, time.Duration)
	})
	if !ok {
		return 0, 0
	}
	return p.Progress()
}

// PlayIndex releases the current resource and starts entry i.
//
// The index is recorded before starting, so a rejected start leaves the session on entry i
// and [PlaybackSession.Retry] replays it.
func (s *PlaybackSession) PlayIndex(i int) error {
	s.mu.Lock()
	ev, err := s.playLocked(i)
	s.mu.Unlock()

	s.emit(ev)
	return err
}

// Next plays the following entry. At the last entry it does nothing.
func (s *PlaybackSession) Next() error {
	return s.step(1)
}

// Previous plays the preceding entry. At the first entry it does nothing.
func (s *PlaybackSession) Previous() error {
	return s.step(-1)
}

// Retry replays the current entry.
func (s *PlaybackSession) Retry() error {
	return s.step(0)
}

func (s *PlaybackSession) step(delta int) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return shared.ErrNoSession
	}
	target := s.index + delta
	if target < 0 || target >= len(s.entries) {
		s.mu.Unlock()
		return nil
	}
	ev, err := s.playLocked(target)
	s.mu.Unlock()

	s.emit(ev)
	return err
}

// Close stops playback and releases the resource. Later completions are ignored.
func (s *PlaybackSession) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.generation++
	s.playing = false
	err := s.releaseLocked()
	ev := &PlaybackEvent{Kind: EventClosed, Index: s.index, Entry: s.entries[s.index]}
	s.mu.Unlock()

	s.emit(ev)
	return err
}

func (s *PlaybackSession) playLocked(i int) (*PlaybackEvent, error) {
	if s.closed {
		return nil, shared.ErrNoSession
	}
	if i < 0 || i >= len(s.entries) {
		return nil, fmt.Errorf("%w: %d not in [0, %d)", shared.ErrIndexOutOfRange, i, len(s.entries))
	}

	if err := s.releaseLocked(); err != nil {
		s.logger.Warn("failed to release media", "error", err)
	}

	s.index = i
	s.generation++
	s.playing = false
	entry := s.entries[i]
	gen := s.generation

	res, err := s.media.Load(entry.File, func() { s.ended(gen) })
	if err != nil {
		err = fmt.Errorf("%w: %s: %v", shared.ErrPlaybackRejected, entry.File.Name, err)
		return &PlaybackEvent{Kind: EventRejected, Index: i, Entry: entry, Err: err}, err
	}

	if err := res.Start(); err != nil {
		if cerr := res.Close(); cerr != nil {
			s.logger.Warn("failed to release rejected media", "error", cerr)
		}
		err = fmt.Errorf("%w: %s: %v", shared.ErrPlaybackRejected, entry.File.Name, err)
		return &PlaybackEvent{Kind: EventRejected, Index: i, Entry: entry, Err: err}, err
	}

	s.resource = res
	s.playing = true
	s.logger.Debug("playing", "index", i, "file", entry.File.Name)
	return &PlaybackEvent{Kind: EventStarted, Index: i, Entry: entry}, nil
}

func (s *PlaybackSession) releaseLocked() error {
	if s.resource == nil {
		return nil
	}
	res := s.resource
	s.resource = nil
	return res.Close()
}

// ended handles a natural end of track for the resource bound at generation gen.
func (s *PlaybackSession) ended(gen uint64) {
	s.mu.Lock()
	if s.closed || gen != s.generation {
		s.mu.Unlock()
		return
	}

	var ev *PlaybackEvent
	if s.index < len(s.entries)-1 {
		ev, _ = s.playLocked(s.index + 1)
	} else {
		s.generation++
		s.playing = false
		if err := s.releaseLocked(); err != nil {
			s.logger.Warn("failed to release media", "error", err)
		}
		ev = &PlaybackEvent{Kind: EventFinished, Index: s.index, Entry: s.entries[s.index]}
	}
	s.mu.Unlock()

	s.emit(ev)
}

func (s *PlaybackSession) emit(ev *PlaybackEvent) {
	if ev == nil || s.listener == nil {
		return
	}
	s.listener(*ev)
}

// PlaybackCoordinator owns at most one [PlaybackSession].
type PlaybackCoordinator struct {
	mu       sync.Mutex
	media    Media
	session  *PlaybackSession
	listener func(PlaybackEvent)
	logger   *log.Logger
}

// NewPlaybackCoordinator creates a coordinator. listener may be nil.
func NewPlaybackCoordinator(media Media, listener func(PlaybackEvent), logger *log.Logger) *PlaybackCoordinator {
	if logger == nil {
		logger = shared.NewLogger(io.Discard)
	}
	return &PlaybackCoordinator{media: media, listener: listener, logger: logger}
}

// Load matches pl against files and replaces the current session, closing the old one.
//
// The new session is positioned at entry 0 but not started.
func (p *PlaybackCoordinator) Load(pl models.Playlist, files []models.FileHandle) (*PlaybackSession, error) {
	entries, err := Match(pl, files)
	if err != nil {
		return nil, err
	}

	next := &PlaybackSession{
		media:    p.media,
		entries:  entries,
		listener: p.listener,
		logger:   shared.WithLogger(p.logger, "playlist", pl.Name),
	}

	p.mu.Lock()
	prev := p.session
	p.session = next
	p.mu.Unlock()

	if prev != nil {
		if err := prev.Close(); err != nil {
			p.logger.Warn("failed to close previous session", "error", err)
		}
	}

	if len(entries) < len(pl.Tracks) {
		p.logger.Info("playing partial playlist", "matched", len(entries), "tracks", len(pl.Tracks))
	}
	return next, nil
}

// Session returns the active session, or nil.
func (p *PlaybackCoordinator) Session() *PlaybackSession {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.session
}

// Close tears down the active session.
func (p *PlaybackCoordinator) Close() error {
	p.mu.Lock()
	s := p.session
	p.session = nil
	p.mu.Unlock()

	if s == nil {
		return nil
	}
	return s.Close()
}
