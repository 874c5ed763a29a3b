package ui

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/moodcrowd/internal/models"
	"github.com/desertthunder/moodcrowd/internal/prefs"
	"github.com/desertthunder/moodcrowd/internal/session"
	tu "github.com/desertthunder/moodcrowd/internal/testing"
)

type stubResource struct{}

func (stubResource) Start() error { return nil }
func (stubResource) Close() error { return nil }

type stubMedia struct {
	mu    sync.Mutex
	names []string
}

func (m *stubMedia) Load(file models.FileHandle, onEnded func()) (session.Resource, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.names = append(m.names, file.Name)
	return stubResource{}, nil
}

func (m *stubMedia) loads() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.names...)
}

type fixture struct {
	t         *testing.T
	m         *Model
	app       *session.App
	auth      *tu.MockAuth
	analyzer  *tu.MockAnalyzer
	store     *tu.MockStore
	media     *stubMedia
	board     *session.NoticeBoard
	events    Events
	prefsPath string
	logouts   int
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		t:         t,
		auth:      &tu.MockAuth{},
		analyzer:  &tu.MockAnalyzer{},
		store:     &tu.MockStore{},
		media:     &stubMedia{},
		board:     session.NewNoticeBoard(time.Minute),
		events:    NewEvents(),
		prefsPath: filepath.Join(t.TempDir(), "prefs.toml"),
	}
	f.app = session.NewApp(session.Options{
		Auth:        f.auth,
		Analyzer:    f.analyzer,
		Store:       f.store,
		Media:       f.media,
		Notifier:    f.board,
		RequireAuth: true,
		Autoplay:    true,
		OnPlayback:  f.events.Forward,
	})
	f.m = NewModel(context.Background(), f.app, f.board, f.events, Options{
		Prefs:     prefs.Prefs{ShowChart: true},
		PrefsPath: f.prefsPath,
		Logout:    func() error { f.logouts++; return nil },
	})
	f.send(tea.WindowSizeMsg{Width: 100, Height: 40})
	return f
}

func (f *fixture) send(msg tea.Msg) tea.Cmd {
	f.t.Helper()
	_, cmd := f.m.Update(msg)
	return cmd
}

// run executes an action command and feeds its result back into the model.
func (f *fixture) run(cmd tea.Cmd) {
	f.t.Helper()
	if cmd == nil {
		f.t.Fatal("expected a command")
	}
	f.send(cmd())
}

func (f *fixture) start() {
	f.t.Helper()
	f.run(f.m.start())
}

func (f *fixture) typeText(s string) {
	f.t.Helper()
	for _, r := range s {
		f.send(runes(string(r)))
	}
}

func (f *fixture) visible() session.Screen {
	return f.app.View.Visible()
}

func (f *fixture) notice() string {
	n, ok := f.board.Current()
	if !ok {
		return ""
	}
	return n.Message
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

var (
	enter = tea.KeyMsg{Type: tea.KeyEnter}
	esc   = tea.KeyMsg{Type: tea.KeyEsc}
	tab   = tea.KeyMsg{Type: tea.KeyTab}
	ctrlR = tea.KeyMsg{Type: tea.KeyCtrlR}
)

func mp3Dir(t *testing.T, names ...string) string {
	t.Helper()
	dir := t.TempDir()
	for _, n := range names {
		tu.MustWriteFile(t, dir, n, "audio")
	}
	return dir
}

func TestAuthScreen(t *testing.T) {
	t.Run("Login from the form", func(t *testing.T) {
		f := newFixture(t)
		f.auth.ProbeErr = errors.New("HTTP 401")
		f.start()
		if f.visible() != session.ScreenAuth {
			t.Fatalf("expected auth screen, got %v", f.visible())
		}
		if !strings.Contains(f.m.View(), "Log in") {
			t.Error("expected login form")
		}

		f.typeText("me@example.com")
		f.send(tab)
		f.typeText("secret")
		if f.m.password.Value() != "secret" {
			t.Fatalf("expected password to be typed, got %q", f.m.password.Value())
		}

		f.run(f.send(enter))
		if f.visible() != session.ScreenUpload {
			t.Errorf("expected upload screen, got %v", f.visible())
		}
		if len(f.auth.Logins) != 1 || f.auth.Logins[0] != "me@example.com" {
			t.Errorf("unexpected logins %v", f.auth.Logins)
		}
		if f.m.password.Value() != "" {
			t.Error("expected password to be cleared")
		}
		if !f.m.path.Focused() {
			t.Error("expected path input to take focus")
		}

		saved, err := prefs.Load(f.prefsPath)
		if err != nil || saved.LastEmail != "me@example.com" {
			t.Errorf("expected email to be remembered, got %+v (%v)", saved, err)
		}
	})

	t.Run("Failed login stays on the form", func(t *testing.T) {
		f := newFixture(t)
		f.auth.ProbeErr = errors.New("HTTP 401")
		f.auth.LoginErr = errors.New("HTTP 401: invalid credentials")
		f.start()

		f.typeText("me@example.com")
		f.run(f.send(enter))
		if f.visible() != session.ScreenAuth {
			t.Errorf("expected auth screen, got %v", f.visible())
		}
		if !strings.Contains(f.notice(), "Login failed") {
			t.Errorf("expected failure notice, got %q", f.notice())
		}
		if !strings.Contains(f.m.View(), "Login failed") {
			t.Error("expected notice in the view")
		}
	})

	t.Run("Register switches back to login", func(t *testing.T) {
		f := newFixture(t)
		f.auth.ProbeErr = errors.New("HTTP 401")
		f.start()

		f.send(ctrlR)
		if f.app.View.AuthMode() != session.AuthRegister {
			t.Fatal("expected register form")
		}
		if !strings.Contains(f.m.View(), "Create an account") {
			t.Error("expected register title")
		}

		f.typeText("new@example.com")
		f.run(f.send(enter))
		if f.app.View.AuthMode() != session.AuthLogin {
			t.Error("expected login form after registration")
		}
		if !strings.Contains(f.notice(), "Registration successful") {
			t.Errorf("unexpected notice %q", f.notice())
		}
	})

	t.Run("Esc cannot skip a required login", func(t *testing.T) {
		f := newFixture(t)
		f.auth.ProbeErr = errors.New("HTTP 401")
		f.start()
		f.send(esc)
		if f.visible() != session.ScreenAuth {
			t.Errorf("expected auth screen, got %v", f.visible())
		}
	})
}

func TestAnalyzeAndSave(t *testing.T) {
	f := newFixture(t)
	f.start()
	if f.visible() != session.ScreenUpload {
		t.Fatalf("expected upload screen, got %v", f.visible())
	}

	dir := mp3Dir(t, "a.mp3", "b.mp3", "c.mp3", "notes.txt")
	f.m.path.SetValue(dir)
	f.run(f.send(enter))
	if f.app.Selection.Count() != 3 {
		t.Fatalf("expected 3 selected files, got %d", f.app.Selection.Count())
	}
	if f.m.path.Focused() {
		t.Error("expected path input to release focus")
	}
	if saved, _ := prefs.Load(f.prefsPath); saved.LastDirectory != dir {
		t.Errorf("expected directory to be remembered, got %q", saved.LastDirectory)
	}
	if !strings.Contains(f.m.View(), "Selected: 3/10 files") {
		t.Error("expected selection count in the view")
	}

	f.analyzer.Tracks = []models.Track{
		tu.Track("a.mp3", "Song A", 120),
		tu.Track("b.mp3", "Song B", -1),
		tu.Track("c.mp3", "", 98.5),
	}
	f.run(f.send(runes("a")))
	if f.visible() != session.ScreenResults {
		t.Fatalf("expected results screen, got %v", f.visible())
	}

	view := f.m.View()
	for _, want := range []string{"Analysis (3 tracks)", "Song A", "Song B", "98.5", "—", "BPM by track"} {
		if !strings.Contains(view, want) {
			t.Errorf("expected %q in results view", want)
		}
	}

	f.send(runes("s"))
	if !f.m.name.Focused() {
		t.Fatal("expected name input to take focus")
	}
	f.typeText("Road Trip")
	f.run(f.send(enter))

	if len(f.store.Saved) != 1 {
		t.Fatalf("expected one save, got %d", len(f.store.Saved))
	}
	if got := f.store.Saved[0]; got.Name != "Road Trip" || len(got.Tracks) != 3 {
		t.Errorf("unexpected save %+v", got)
	}
	if f.m.name.Value() != "" || f.m.name.Focused() {
		t.Error("expected name input to reset after saving")
	}

	t.Run("Chart toggle is remembered", func(t *testing.T) {
		f.send(runes("c"))
		if f.m.showChart {
			t.Error("expected chart to be hidden")
		}
		if strings.Contains(f.m.View(), "BPM by track") {
			t.Error("expected no chart heading")
		}
		if saved, _ := prefs.Load(f.prefsPath); saved.ShowChart {
			t.Error("expected show_chart = false to be saved")
		}
	})
}

func TestAnalyzeDisabledWithoutFiles(t *testing.T) {
	f := newFixture(t)
	f.start()
	f.send(esc)
	if cmd := f.send(runes("a")); cmd != nil {
		t.Error("expected analyze to be ignored with nothing selected")
	}
	if len(f.analyzer.Calls) != 0 {
		t.Error("analyzer should not be called")
	}
}

func TestPlaylistsAndPlayer(t *testing.T) {
	f := newFixture(t)
	f.store.Playlists = []models.Playlist{{
		ID:     "7",
		Name:   "Party",
		Tracks: []models.Track{tu.Track("a.mp3", "A", 120), tu.Track("b.mp3", "B", 90)},
	}}
	f.start()
	f.app.SelectFiles(tu.Files("a.mp3", "b.mp3"))
	f.send(esc)

	f.run(f.send(runes("p")))
	if f.visible() != session.ScreenPlaylists {
		t.Fatalf("expected playlists screen, got %v", f.visible())
	}
	if n := len(f.m.playlists.Items()); n != 1 {
		t.Fatalf("expected 1 playlist item, got %d", n)
	}

	f.send(runes("v"))
	if !strings.Contains(f.notice(), "Playlist: Party") {
		t.Errorf("expected playlist notice, got %q", f.notice())
	}

	f.send(enter)
	if f.visible() != session.ScreenPlayer {
		t.Fatalf("expected player screen, got %v", f.visible())
	}
	if got := f.media.loads(); len(got) != 1 || got[0] != "a.mp3" {
		t.Errorf("expected a.mp3 to load, got %v", got)
	}
	if n := len(f.m.entries.Items()); n != 2 {
		t.Errorf("expected queue of 2, got %d", n)
	}
	if !strings.Contains(f.m.View(), "track 1 of 2") {
		t.Error("expected track position in the view")
	}

	select {
	case ev := <-f.events:
		if ev.Kind != session.EventStarted || ev.Index != 0 {
			t.Errorf("unexpected event %+v", ev)
		}
		f.send(playbackMsg(ev))
	default:
		t.Error("expected a playback event")
	}

	f.send(runes("n"))
	if s := f.app.Player.Session(); s == nil || s.Index() != 1 {
		t.Error("expected next track")
	}
	f.send(runes("b"))
	if s := f.app.Player.Session(); s == nil || s.Index() != 0 {
		t.Error("expected previous track")
	}

	f.send(esc)
	if f.visible() != session.ScreenPlaylists {
		t.Errorf("expected back to playlists, got %v", f.visible())
	}
	if !f.app.Player.Session().Playing() {
		t.Error("leaving the player must not stop playback")
	}

	f.send(runes("m"))
	if f.visible() != session.ScreenPlayer {
		t.Errorf("expected player again, got %v", f.visible())
	}

	f.send(runes("x"))
	if f.app.Player.Session() != nil {
		t.Error("expected stop to end the session")
	}
	if !strings.Contains(f.m.View(), "Nothing is playing") {
		t.Error("expected empty player view")
	}

	cmd := f.send(runes("q"))
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("expected tea.QuitMsg")
	}
}

func TestLogout(t *testing.T) {
	f := newFixture(t)
	f.start()
	f.send(esc)

	f.send(runes("L"))
	if f.visible() != session.ScreenAuth {
		t.Errorf("expected auth screen, got %v", f.visible())
	}
	if f.logouts != 1 {
		t.Errorf("expected logout hook to run once, got %d", f.logouts)
	}
	if f.app.Authenticated() {
		t.Error("expected session to be logged out")
	}
	if !f.m.email.Focused() {
		t.Error("expected email input to take focus")
	}
}

func TestCtrlCAlwaysQuits(t *testing.T) {
	f := newFixture(t)
	f.auth.ProbeErr = errors.New("HTTP 401")
	f.start()

	cmd := f.send(tea.KeyMsg{Type: tea.KeyCtrlC})
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("expected tea.QuitMsg")
	}
}

func TestHelpers(t *testing.T) {
	t.Run("progressBar", func(t *testing.T) {
		cases := []struct {
			name       string
			pos, total time.Duration
			filled     int
		}{
			{"empty", 0, time.Minute, 0},
			{"half", 30 * time.Second, time.Minute, 5},
			{"full", time.Minute, time.Minute, 10},
			{"overflow", 2 * time.Minute, time.Minute, 10},
			{"unknown length", time.Second, 0, 0},
		}
		for _, tc := range cases {
			t.Run(tc.name, func(t *testing.T) {
				got := progressBar(tc.pos, tc.total, 10)
				if n := strings.Count(got, "█"); n != tc.filled {
					t.Errorf("filled = %d, want %d (%q)", n, tc.filled, got)
				}
				if n := len([]rune(got)); n != 10 {
					t.Errorf("width = %d, want 10", n)
				}
			})
		}
	})

	t.Run("formatDuration", func(t *testing.T) {
		cases := map[time.Duration]string{
			0:                                     "0:00",
			-time.Second:                          "0:00",
			59 * time.Second:                      "0:59",
			3*time.Minute + 5*time.Second:         "3:05",
			61*time.Minute + 500*time.Millisecond: "61:01",
		}
		for d, want := range cases {
			if got := formatDuration(d); got != want {
				t.Errorf("formatDuration(%v) = %q, want %q", d, got, want)
			}
		}
	})

	t.Run("splitPaths", func(t *testing.T) {
		sep := string(filepath.ListSeparator)
		got := splitPaths(" /music/a.mp3 " + sep + sep + "/music/b.mp3")
		if len(got) != 2 || got[0] != "/music/a.mp3" || got[1] != "/music/b.mp3" {
			t.Errorf("unexpected paths %v", got)
		}
		if splitPaths("  ") != nil {
			t.Error("expected no paths for blank input")
		}
	})

	t.Run("lastDirectory", func(t *testing.T) {
		dir := mp3Dir(t, "a.mp3")
		if got := lastDirectory([]string{dir}); got != dir {
			t.Errorf("directory: got %q", got)
		}
		if got := lastDirectory([]string{filepath.Join(dir, "a.mp3")}); got != dir {
			t.Errorf("file: got %q", got)
		}
		if got := lastDirectory(nil); got != "" {
			t.Errorf("empty: got %q", got)
		}
	})

	t.Run("Events drop when full", func(t *testing.T) {
		events := make(Events, 1)
		events.Forward(session.PlaybackEvent{Index: 1})
		events.Forward(session.PlaybackEvent{Index: 2})
		if len(events) != 1 {
			t.Fatalf("expected one queued event, got %d", len(events))
		}
		if ev := <-events; ev.Index != 1 {
			t.Errorf("expected first event to be kept, got %d", ev.Index)
		}
	})
}
