package ui

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/desertthunder/moodcrowd/internal/models"
	"github.com/desertthunder/moodcrowd/internal/prefs"
	"github.com/desertthunder/moodcrowd/internal/session"
	"github.com/desertthunder/moodcrowd/internal/shared"
)

const tickInterval = 500 * time.Millisecond

// Options configures a [Model].
type Options struct {
	Prefs     prefs.Prefs
	PrefsPath string // empty disables saving preferences
	Logger    *log.Logger
	// Logout runs before the session is reset, e.g. to forget stored cookies.
	Logout func() error
}

// Model represents the TUI application state.
type Model struct {
	ctx    context.Context
	app    *session.App
	board  *session.NoticeBoard
	events Events
	opts   Options
	logger *log.Logger

	width  int
	height int

	email     textinput.Model
	password  textinput.Model
	path      textinput.Model
	name      textinput.Model
	playlists list.Model
	entries   list.Model
	loaded    *session.PlaybackSession
	spinner   spinner.Model
	help      help.Model
	keys      keyMap

	pending   int
	paused    bool
	showChart bool
	returnTo  session.Screen
	prefs     prefs.Prefs
}

// NewModel creates a TUI over app. board must be the notifier app posts to.
func NewModel(ctx context.Context, app *session.App, board *session.NoticeBoard, events Events, opts Options) *Model {
	logger := opts.Logger
	if logger == nil {
		logger = shared.NewLogger(io.Discard)
	}
	if board == nil {
		board = session.NewNoticeBoard(0)
	}

	email := textinput.New()
	email.Placeholder = "email"
	email.CharLimit = 254
	email.Width = 40
	email.SetValue(opts.Prefs.LastEmail)

	password := textinput.New()
	password.Placeholder = "password"
	password.EchoMode = textinput.EchoPassword
	password.EchoCharacter = '•'
	password.Width = 40

	path := textinput.New()
	path.Placeholder = "folder or files, separated by " + string(filepath.ListSeparator)
	path.Width = 60
	path.SetValue(opts.Prefs.LastDirectory)

	name := textinput.New()
	name.Placeholder = "playlist name"
	name.CharLimit = 100
	name.Width = 40

	playlists := list.New(nil, list.NewDefaultDelegate(), 0, 0)
	playlists.Title = "Your Playlists"
	playlists.SetShowHelp(false)

	entries := list.New(nil, list.NewDefaultDelegate(), 0, 0)
	entries.Title = "Queue"
	entries.SetShowHelp(false)
	entries.SetFilteringEnabled(false)

	return &Model{
		ctx:       ctx,
		app:       app,
		board:     board,
		events:    events,
		opts:      opts,
		logger:    logger,
		email:     email,
		password:  password,
		path:      path,
		name:      name,
		playlists: playlists,
		entries:   entries,
		spinner:   spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(styles.warn)),
		help:      help.New(),
		keys:      newKeyMap(),
		showChart: opts.Prefs.ShowChart,
		returnTo:  session.ScreenUpload,
		prefs:     opts.Prefs,
	}
}

// Init probes the session and starts the background ticks.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.start(), m.tick(), m.spinner.Tick, m.events.wait())
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	model, cmd := m.update(msg)
	m.syncPlayer()
	return model, cmd
}

func (m *Model) update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.playlists.SetSize(msg.Width-4, msg.Height-8)
		m.entries.SetSize(msg.Width-4, max(msg.Height-14, 4))
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if key.Matches(msg, m.keys.abort) {
			return m, tea.Quit
		}
		switch m.app.View.Visible() {
		case session.ScreenAuth:
			return m.handleAuthKeys(msg)
		case session.ScreenUpload:
			return m.handleUploadKeys(msg)
		case session.ScreenResults:
			return m.handleResultsKeys(msg)
		case session.ScreenPlaylists:
			return m.handlePlaylistsKeys(msg)
		case session.ScreenPlayer:
			return m.handlePlayerKeys(msg)
		}
		if key.Matches(msg, m.keys.quit) {
			return m, tea.Quit
		}
		return m, nil

	case Msg:
		return m.handleMsg(msg)
	}
	return m, nil
}

func (m *Model) handleMsg(msg Msg) (tea.Model, tea.Cmd) {
	switch msg.kind {
	case MsgStarted:
		m.done()
		return m, m.focusFor(msg.data.(session.Screen))

	case MsgAuthDone:
		m.done()
		res := msg.data.(authResult)
		if res.err != nil {
			return m, nil
		}
		m.password.Reset()
		if res.mode == session.AuthLogin {
			m.prefs.LastEmail = res.email
			m.savePrefs()
		}
		return m, m.focusFor(m.app.View.Visible())

	case MsgFilesSelected:
		m.done()
		res := msg.data.(selectResult)
		if res.err == nil {
			m.path.Blur()
			if res.dir != "" {
				m.prefs.LastDirectory = res.dir
				m.savePrefs()
			}
		}
		return m, nil

	case MsgAnalyzed:
		m.done()
		m.path.Blur()
		return m, nil

	case MsgSaved:
		m.done()
		if err, _ := msg.data.(error); err == nil {
			m.name.Reset()
			m.name.Blur()
		}
		return m, nil

	case MsgPlaylistsFetched:
		m.done()
		res := msg.data.(struct {
			playlists []models.Playlist
			err       error
		})
		if res.err != nil {
			return m, nil
		}
		return m, m.playlists.SetItems(playlistItems(res.playlists))

	case MsgPlayback:
		ev := msg.data.(session.PlaybackEvent)
		if ev.Kind == session.EventStarted {
			m.paused = false
			m.entries.Select(ev.Index)
		}
		return m, m.events.wait()

	case MsgTick:
		return m, m.tick()
	}
	return m, nil
}

func (m *Model) handleAuthKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.field):
		return m, m.toggleAuthField()
	case key.Matches(msg, m.keys.mode):
		if m.app.View.AuthMode() == session.AuthLogin {
			m.app.ShowAuthMode(session.AuthRegister)
		} else {
			m.app.ShowAuthMode(session.AuthLogin)
		}
		return m, nil
	case key.Matches(msg, m.keys.enter):
		if m.pending > 0 {
			return m, nil
		}
		return m, m.submitAuth()
	case key.Matches(msg, m.keys.back):
		if m.app.PlaylistsAvailable() {
			m.app.Back(session.ScreenUpload)
			m.email.Blur()
			m.password.Blur()
			return m, m.focusFor(session.ScreenUpload)
		}
		return m, nil
	}
	return m, m.updateFocused(msg)
}

func (m *Model) handleUploadKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.path.Focused() {
		switch {
		case key.Matches(msg, m.keys.enter):
			if m.pending > 0 {
				return m, nil
			}
			return m, m.selectFiles(m.path.Value())
		case key.Matches(msg, m.keys.back):
			m.path.Blur()
			return m, nil
		}
		return m, m.updateFocused(msg)
	}

	switch {
	case key.Matches(msg, m.keys.input):
		return m, m.path.Focus()
	case key.Matches(msg, m.keys.analyze):
		if m.pending > 0 || !m.app.CanAnalyze() {
			return m, nil
		}
		return m, m.analyze()
	case key.Matches(msg, m.keys.lists):
		return m, m.fetchPlaylists()
	case key.Matches(msg, m.keys.player):
		m.showPlayer(session.ScreenUpload)
	case key.Matches(msg, m.keys.logout):
		return m, m.logout()
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	}
	return m, nil
}

func (m *Model) handleResultsKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.name.Focused() {
		switch {
		case key.Matches(msg, m.keys.enter):
			if m.pending > 0 {
				return m, nil
			}
			return m, m.save(m.name.Value())
		case key.Matches(msg, m.keys.back):
			m.name.Blur()
			return m, nil
		}
		return m, m.updateFocused(msg)
	}

	switch {
	case key.Matches(msg, m.keys.save):
		return m, m.name.Focus()
	case key.Matches(msg, m.keys.chart):
		m.showChart = !m.showChart
		m.prefs.ShowChart = m.showChart
		m.savePrefs()
	case key.Matches(msg, m.keys.play):
		if _, err := m.app.PlayAnalysis(); err == nil {
			m.returnTo = session.ScreenResults
		}
	case key.Matches(msg, m.keys.lists):
		return m, m.fetchPlaylists()
	case key.Matches(msg, m.keys.player):
		m.showPlayer(session.ScreenResults)
	case key.Matches(msg, m.keys.back):
		m.app.Back(session.ScreenUpload)
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	}
	return m, nil
}

func (m *Model) handlePlaylistsKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	if m.playlists.FilterState() == list.Filtering {
		m.playlists, cmd = m.playlists.Update(msg)
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.keys.play):
		if pl, ok := m.selectedPlaylist(); ok {
			if _, err := m.app.PlayPlaylist(pl.ID); err == nil {
				m.returnTo = session.ScreenPlaylists
			}
		}
		return m, nil
	case key.Matches(msg, m.keys.view):
		if pl, ok := m.selectedPlaylist(); ok {
			m.app.ViewPlaylist(pl.ID)
		}
		return m, nil
	case key.Matches(msg, m.keys.refresh):
		return m, m.fetchPlaylists()
	case key.Matches(msg, m.keys.player):
		m.showPlayer(session.ScreenPlaylists)
		return m, nil
	case key.Matches(msg, m.keys.back):
		m.app.Back(session.ScreenUpload)
		return m, nil
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	}

	m.playlists, cmd = m.playlists.Update(msg)
	return m, cmd
}

func (m *Model) handlePlayerKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.next):
		m.app.Next()
	case key.Matches(msg, m.keys.previous):
		m.app.Previous()
	case key.Matches(msg, m.keys.pause):
		if s := m.app.Player.Session(); s != nil {
			m.paused = s.TogglePause()
		}
	case key.Matches(msg, m.keys.retry):
		m.app.Retry()
	case key.Matches(msg, m.keys.play):
		if item, ok := m.entries.SelectedItem().(entryItem); ok {
			m.app.PlayIndex(item.index)
		}
	case key.Matches(msg, m.keys.stop):
		if err := m.app.Stop(); err != nil {
			m.logger.Warn("failed to stop playback", "error", err)
		}
	case key.Matches(msg, m.keys.back):
		m.app.Back(m.returnTo)
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	default:
		var cmd tea.Cmd
		m.entries, cmd = m.entries.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *Model) showPlayer(from session.Screen) {
	if m.app.Player.Session() == nil {
		return
	}
	m.returnTo = from
	m.app.Back(session.ScreenPlayer)
}

func (m *Model) selectedPlaylist() (models.Playlist, bool) {
	item, ok := m.playlists.SelectedItem().(playlistItem)
	if !ok {
		return models.Playlist{}, false
	}
	return item.playlist, true
}

// syncPlayer rebuilds the queue when the app loads a new playback session.
func (m *Model) syncPlayer() {
	s := m.app.Player.Session()
	if s == m.loaded {
		return
	}
	m.loaded = s
	m.paused = false
	if s == nil {
		m.entries.SetItems(nil)
		return
	}
	m.entries.SetItems(entryItems(s.Entries()))
	m.entries.Select(s.Index())
}

func (m *Model) toggleAuthField() tea.Cmd {
	if m.email.Focused() {
		m.email.Blur()
		return m.password.Focus()
	}
	m.password.Blur()
	return m.email.Focus()
}

// focusFor focuses the natural input of screen.
func (m *Model) focusFor(screen session.Screen) tea.Cmd {
	switch screen {
	case session.ScreenAuth:
		m.password.Blur()
		return m.email.Focus()
	case session.ScreenUpload:
		return m.path.Focus()
	}
	return nil
}

// updateFocused forwards msg to whichever text input has focus.
func (m *Model) updateFocused(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	switch {
	case m.email.Focused():
		m.email, cmd = m.email.Update(msg)
	case m.password.Focused():
		m.password, cmd = m.password.Update(msg)
	case m.path.Focused():
		m.path, cmd = m.path.Update(msg)
	case m.name.Focused():
		m.name, cmd = m.name.Update(msg)
	}
	return cmd
}

func (m *Model) done() {
	if m.pending > 0 {
		m.pending--
	}
}

func (m *Model) savePrefs() {
	if m.opts.PrefsPath == "" {
		return
	}
	if err := prefs.Save(m.opts.PrefsPath, m.prefs); err != nil {
		m.logger.Warn("failed to save preferences", "error", err)
	}
}

func (m *Model) tick() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m *Model) start() tea.Cmd {
	m.pending++
	return func() tea.Msg {
		return startedMsg(m.app.Start(m.ctx))
	}
}

func (m *Model) submitAuth() tea.Cmd {
	mode := m.app.View.AuthMode()
	email, password := strings.TrimSpace(m.email.Value()), m.password.Value()
	m.pending++
	return func() tea.Msg {
		var err error
		if mode == session.AuthRegister {
			err = m.app.Register(m.ctx, email, password)
		} else {
			err = m.app.Login(m.ctx, email, password)
		}
		return authDoneMsg(mode, email, err)
	}
}

func (m *Model) selectFiles(raw string) tea.Cmd {
	paths := splitPaths(raw)
	m.pending++
	return func() tea.Msg {
		files, err := m.app.SelectPaths(paths)
		return filesSelectedMsg(lastDirectory(paths), files, err)
	}
}

func (m *Model) analyze() tea.Cmd {
	m.pending++
	return func() tea.Msg {
		tracks, err := m.app.Analyze(m.ctx)
		return analyzedMsg(tracks, err)
	}
}

func (m *Model) save(name string) tea.Cmd {
	m.pending++
	return func() tea.Msg {
		return savedMsg(m.app.SavePlaylist(m.ctx, name))
	}
}

func (m *Model) fetchPlaylists() tea.Cmd {
	m.pending++
	return func() tea.Msg {
		playlists, err := m.app.ShowPlaylists(m.ctx)
		return playlistsFetchedMsg(playlists, err)
	}
}

func (m *Model) logout() tea.Cmd {
	if m.opts.Logout != nil {
		if err := m.opts.Logout(); err != nil {
			m.logger.Warn("failed to clear stored session", "error", err)
		}
	}
	m.app.Logout()
	m.playlists.SetItems(nil)
	m.name.Reset()
	return m.focusFor(session.ScreenAuth)
}

// splitPaths splits an OS path list, dropping blanks.
func splitPaths(raw string) []string {
	var out []string
	for _, p := range filepath.SplitList(raw) {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// lastDirectory is the directory worth remembering for the next run: the first path when it
// is a directory, otherwise its parent.
func lastDirectory(paths []string) string {
	if len(paths) == 0 {
		return ""
	}
	p := shared.ExpandHome(paths[0])
	if info, err := os.Stat(p); err == nil && info.IsDir() {
		return p
	}
	return filepath.Dir(p)
}
