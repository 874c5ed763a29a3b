package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/moodcrowd/internal/models"
	"github.com/desertthunder/moodcrowd/internal/shared"
)

// Authenticator is the account side of the backend.
type Authenticator interface {
	Register(ctx context.Context, email, password string) error
	Login(ctx context.Context, email, password string) error
	Probe(ctx context.Context) error
}

// Analyzer turns audio files into track records.
type Analyzer interface {
	Analyze(ctx context.Context, files []models.FileHandle) ([]models.Track, error)
}

// Options wires an [App].
type Options struct {
	Auth     Authenticator
	Analyzer Analyzer
	Store    Store
	Media    Media
	Surface  Surface
	Notifier Notifier
	Logger   *log.Logger

	// RequireAuth gates saving and listing playlists behind a login.
	RequireAuth        bool
	CaseInsensitiveExt bool
	Autoplay           bool

	// OnPlayback receives playback events after the App has handled them.
	OnPlayback func(PlaybackEvent)
}

// App is the session state object. Every exported method is a command handler: it runs the
// action, turns failures into an error notice and returns the error for callers that need it.
type App struct {
	View      *ViewCoordinator
	Selection *FileSelection
	Cache     *PlaylistCache
	Player    *PlaybackCoordinator

	auth     Authenticator
	analyzer Analyzer
	notifier Notifier
	logger   *log.Logger
	seq      *Sequencer

	requireAuth bool
	autoplay    bool
	onPlayback  func(PlaybackEvent)

	mu            sync.RWMutex
	authenticated bool
}

// NewApp builds the coordinators from opts.
func NewApp(opts Options) *App {
	logger := opts.Logger
	if logger == nil {
		logger = shared.NewLogger(io.Discard)
	}
	notifier := opts.Notifier
	if notifier == nil {
		notifier = LogNotifier{Logger: logger}
	}

	a := &App{
		View:        NewViewCoordinator(opts.Surface),
		Selection:   NewFileSelection(opts.CaseInsensitiveExt),
		Cache:       NewPlaylistCache(opts.Store),
		auth:        opts.Auth,
		analyzer:    opts.Analyzer,
		notifier:    notifier,
		logger:      logger,
		seq:         NewSequencer(),
		requireAuth: opts.RequireAuth,
		autoplay:    opts.Autoplay,
		onPlayback:  opts.OnPlayback,
	}
	a.Player = NewPlaybackCoordinator(opts.Media, a.handlePlayback, logger)
	return a
}

func (a *App) notify(level Level, format string, args ...any) {
	a.notifier.Notify(Notice{Level: level, Message: fmt.Sprintf(format, args...)})
}

// fail logs err and posts it as an error notice, unless it is a dropped stale response.
func (a *App) fail(action string, err error) error {
	if errors.Is(err, shared.ErrStaleResponse) {
		a.logger.Debug("dropped stale response", "action", action)
		return err
	}
	a.logger.Error(action+" failed", "error", err)
	a.notify(LevelError, "%s failed: %v", action, err)
	return err
}

// Authenticated reports whether the session is logged in.
func (a *App) Authenticated() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.authenticated
}

func (a *App) setAuthenticated(v bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.authenticated = v
}

// PlaylistsAvailable reports whether the playlists action should be offered.
func (a *App) PlaylistsAvailable() bool {
	return !a.requireAuth || a.Authenticated()
}

// Start probes the backend and shows the first screen.
func (a *App) Start(ctx context.Context) Screen {
	if a.auth == nil {
		a.setAuthenticated(false)
		if a.requireAuth {
			return a.View.ShowOnly(ScreenAuth)
		}
		return a.View.ShowOnly(ScreenUpload)
	}

	screen := a.View.Start(ctx, a.auth.Probe)
	a.setAuthenticated(screen == ScreenUpload)
	a.logger.Debug("session started", "screen", screen)
	return screen
}

// ShowAuthMode switches the auth form.
func (a *App) ShowAuthMode(m AuthMode) {
	a.View.SetAuthMode(m)
	a.View.ShowOnly(ScreenAuth)
}

// Register creates an account and switches the auth screen to login.
func (a *App) Register(ctx context.Context, email, password string) error {
	t, err := a.seq.Begin(ActionRegister)
	if err != nil {
		return a.fail("Registration", err)
	}
	err = a.auth.Register(ctx, strings.TrimSpace(email), password)
	if !a.seq.Finish(t) {
		return a.fail("Registration", shared.ErrStaleResponse)
	}
	if err != nil {
		return a.fail("Registration", err)
	}

	a.ShowAuthMode(AuthLogin)
	a.notify(LevelSuccess, "Registration successful. Please log in.")
	return nil
}

// Login authenticates and shows the upload screen.
func (a *App) Login(ctx context.Context, email, password string) error {
	t, err := a.seq.Begin(ActionLogin)
	if err != nil {
		return a.fail("Login", err)
	}
	err = a.auth.Login(ctx, strings.TrimSpace(email), password)
	if !a.seq.Finish(t) {
		return a.fail("Login", shared.ErrStaleResponse)
	}
	if err != nil {
		return a.fail("Login", err)
	}

	a.setAuthenticated(true)
	a.View.ShowOnly(ScreenUpload)
	a.notify(LevelSuccess, "Logged in.")
	return nil
}

// Logout forgets the session state and returns to the login form.
func (a *App) Logout() {
	a.seq.Invalidate(ActionRegister)
	a.seq.Invalidate(ActionLogin)
	a.seq.Invalidate(ActionRefresh)
	a.seq.Invalidate(ActionAnalyze)
	a.seq.Invalidate(ActionSave)
	if err := a.Player.Close(); err != nil {
		a.logger.Warn("failed to stop playback", "error", err)
	}
	a.Cache.Reset()
	a.Selection.Clear()
	a.setAuthenticated(false)
	a.ShowAuthMode(AuthLogin)
}

// SelectFiles replaces the selection with the audio files among candidates.
//
// A successful selection supersedes any analysis still in flight.
func (a *App) SelectFiles(candidates []models.FileHandle) ([]models.FileHandle, error) {
	files, err := a.Selection.Select(candidates)
	if err != nil {
		a.logger.Warn("selection rejected", "error", err)
		a.notify(LevelError, "At most %d files can be selected.", MaxFiles)
		return nil, err
	}

	a.seq.Invalidate(ActionAnalyze)
	a.notify(LevelInfo, "Selected: %d files", len(files))
	return files, nil
}

// SelectPaths expands paths (files, or directories one level deep) and selects the audio files.
func (a *App) SelectPaths(paths []string) ([]models.FileHandle, error) {
	candidates, err := FromPaths(paths)
	if err != nil {
		return nil, a.fail("Selection", err)
	}
	return a.SelectFiles(candidates)
}

// CanAnalyze reports whether analyze should be enabled.
func (a *App) CanAnalyze() bool {
	return a.Selection.CanAnalyze() && !a.seq.Pending(ActionAnalyze)
}

// Analyze sends the selection to the analyzer, caches the result and shows the results screen.
func (a *App) Analyze(ctx context.Context) ([]models.Track, error) {
	files := a.Selection.Files()
	if len(files) == 0 {
		return nil, a.fail("Analysis", &ValidationError{Err: shared.ErrNoFiles})
	}

	t, err := a.seq.Begin(ActionAnalyze)
	if err != nil {
		return nil, a.fail("Analysis", err)
	}

	a.logger.Info("analyzing", "files", len(files))
	tracks, err := a.analyzer.Analyze(ctx, files)
	if !a.seq.Finish(t) {
		return nil, a.fail("Analysis", shared.ErrStaleResponse)
	}
	if err != nil {
		return nil, a.fail("Analysis", err)
	}

	a.Cache.SetAnalysis(tracks, files)
	a.View.ShowOnly(ScreenResults)
	for _, tr := range tracks {
		if tr.Failed() {
			a.logger.Warn("file not analyzed", "file", tr.Filename, "error", tr.Error)
		}
	}
	return tracks, nil
}

// SavePlaylist saves the last analysis under name. The playlist cache is left as it was.
func (a *App) SavePlaylist(ctx context.Context, name string) error {
	if a.requireAuth && !a.Authenticated() {
		return a.fail("Save", shared.ErrNotAuthenticated)
	}

	tracks, _ := a.Cache.Analysis()
	if len(tracks) == 0 {
		return a.fail("Save", &ValidationError{Err: shared.ErrNoTracks})
	}

	t, err := a.seq.Begin(ActionSave)
	if err != nil {
		return a.fail("Save", err)
	}
	err = a.Cache.Save(ctx, name, tracks)
	if !a.seq.Finish(t) {
		return a.fail("Save", shared.ErrStaleResponse)
	}
	if err != nil {
		return a.fail("Save", err)
	}

	a.logger.Info("playlist saved", "name", strings.TrimSpace(name), "tracks", len(tracks))
	a.notify(LevelSuccess, "Playlist %q saved.", strings.TrimSpace(name))
	return nil
}

// ShowPlaylists refreshes the cache and shows the playlists screen.
func (a *App) ShowPlaylists(ctx context.Context) ([]models.Playlist, error) {
	if !a.PlaylistsAvailable() {
		return nil, a.fail("Loading playlists", shared.ErrNotAuthenticated)
	}

	t, err := a.seq.Begin(ActionRefresh)
	if err != nil {
		return nil, a.fail("Loading playlists", err)
	}
	playlists, err := a.Cache.Fetch(ctx)
	if !a.seq.Finish(t) {
		return nil, a.fail("Loading playlists", shared.ErrStaleResponse)
	}
	if err != nil {
		return nil, a.fail("Loading playlists", err)
	}

	a.Cache.Replace(playlists)
	a.View.ShowOnly(ScreenPlaylists)
	if len(playlists) == 0 {
		a.notify(LevelInfo, "You have no saved playlists.")
	}
	return playlists, nil
}

// ViewPlaylist looks up a cached playlist and posts its track list as a notice.
func (a *App) ViewPlaylist(id models.PlaylistID) (models.Playlist, error) {
	pl, ok := a.Cache.FindByID(id)
	if !ok {
		return models.Playlist{}, a.fail("Opening playlist", fmt.Errorf("%w: %s", shared.ErrPlaylistNotFound, id))
	}

	titles := make([]string, 0, len(pl.Tracks))
	for _, t := range pl.Tracks {
		titles = append(titles, t.DisplayTitle())
	}
	a.notify(LevelInfo, "Playlist: %s\nTracks:\n%s", pl.Name, strings.Join(titles, "\n"))
	return pl, nil
}

// PlayPlaylist matches a cached playlist against the selected files and shows the player.
//
// A rejected start is reported but the session stays loaded so [App.Retry] can start it.
func (a *App) PlayPlaylist(id models.PlaylistID) (*PlaybackSession, error) {
	return a.PlayPlaylistFrom(id, 0)
}

// PlayPlaylistFrom is [App.PlayPlaylist] with autoplay starting at entry start instead of the first.
func (a *App) PlayPlaylistFrom(id models.PlaylistID, start int) (*PlaybackSession, error) {
	pl, ok := a.Cache.FindByID(id)
	if !ok {
		return nil, a.fail("Playback", fmt.Errorf("%w: %s", shared.ErrPlaylistNotFound, id))
	}
	return a.play(pl, a.Selection.Files(), start)
}

// PlayAnalysis plays the last analysed tracks against the files they came from.
func (a *App) PlayAnalysis() (*PlaybackSession, error) {
	return a.PlayAnalysisFrom(0)
}

// PlayAnalysisFrom is [App.PlayAnalysis] with autoplay starting at entry start.
func (a *App) PlayAnalysisFrom(start int) (*PlaybackSession, error) {
	tracks, files := a.Cache.Analysis()
	return a.play(models.Playlist{Name: "Analysis", Tracks: tracks}, files, start)
}

// play loads pl and, with autoplay, starts entry start directly.
func (a *App) play(pl models.Playlist, files []models.FileHandle, start int) (*PlaybackSession, error) {
	s, err := a.Player.Load(pl, files)
	if err != nil {
		return nil, a.playbackFailure(err)
	}
	if start < 0 || start >= s.Len() {
		err := fmt.Errorf("%w: %d not in [0, %d)", shared.ErrIndexOutOfRange, start, s.Len())
		return nil, a.fail("Playback", err)
	}

	a.View.ShowOnly(ScreenPlayer)
	if a.autoplay {
		// rejection is reported through handlePlayback
		_ = s.PlayIndex(start)
	}
	return s, nil
}

func (a *App) playbackFailure(err error) error {
	switch {
	case errors.Is(err, shared.ErrEmptyPlaylist):
		a.notify(LevelError, "The playlist is empty.")
	case errors.Is(err, shared.ErrNoMatchingFiles):
		a.notify(LevelError, "No selected files to play. Select the same MP3 files again.")
	default:
		return a.fail("Playback", err)
	}
	a.logger.Warn("playback not started", "error", err)
	return err
}

// Next advances the player; at the last track it does nothing.
func (a *App) Next() error { return a.control("Next", (*PlaybackSession).Next) }

// Previous goes back one track; at the first track it does nothing.
func (a *App) Previous() error { return a.control("Previous", (*PlaybackSession).Previous) }

// Retry restarts the current track, e.g. after a rejected start.
func (a *App) Retry() error { return a.control("Play", (*PlaybackSession).Retry) }

// PlayIndex jumps to entry i of the current session.
func (a *App) PlayIndex(i int) error {
	return a.control("Play", func(s *PlaybackSession) error { return s.PlayIndex(i) })
}

// Stop ends the playback session.
func (a *App) Stop() error {
	return a.Player.Close()
}

func (a *App) control(action string, fn func(*PlaybackSession) error) error {
	s := a.Player.Session()
	if s == nil {
		return a.fail(action, shared.ErrNoSession)
	}
	err := fn(s)
	if errors.Is(err, shared.ErrPlaybackRejected) {
		// already reported by handlePlayback
		return err
	}
	if err != nil {
		return a.fail(action, err)
	}
	return nil
}

// Back shows screen without touching playback.
func (a *App) Back(screen Screen) Screen {
	return a.View.ShowOnly(screen)
}

func (a *App) handlePlayback(ev PlaybackEvent) {
	switch ev.Kind {
	case EventRejected:
		a.logger.Warn("playback rejected", "index", ev.Index, "error", ev.Err)
		a.notify(LevelError, "Could not play %s. Press play to try again.", ev.Entry.Title())
	case EventFinished:
		a.logger.Debug("playlist finished", "index", ev.Index)
	}
	if a.onPlayback != nil {
		a.onPlayback(ev)
	}
}
