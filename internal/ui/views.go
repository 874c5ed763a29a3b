package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/NimbleMarkets/ntcharts/barchart"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"
	"github.com/desertthunder/moodcrowd/internal/formatter"
	"github.com/desertthunder/moodcrowd/internal/models"
	"github.com/desertthunder/moodcrowd/internal/session"
)

const (
	chartHeight   = 10
	progressWidth = 40
)

var barStyle = NewStyle("#7D56F4")

// View renders the header, the visible screen, the current notice and contextual help.
func (m *Model) View() string {
	screen := m.app.View.Visible()

	var body string
	var keys []key.Binding
	switch screen {
	case session.ScreenAuth:
		body, keys = m.renderAuth()
	case session.ScreenUpload:
		body, keys = m.renderUpload()
	case session.ScreenResults:
		body, keys = m.renderResults()
	case session.ScreenPlaylists:
		body, keys = m.renderPlaylists()
	case session.ScreenPlayer:
		body, keys = m.renderPlayer()
	default:
		body, keys = "Connecting...", []key.Binding{m.keys.abort}
	}

	parts := []string{m.renderHeader(screen), body}
	if notice := m.renderNotice(); notice != "" {
		parts = append(parts, notice)
	}
	parts = append(parts, m.help.ShortHelpView(keys))
	return strings.Join(parts, "\n\n")
}

func (m *Model) renderHeader(visible session.Screen) string {
	tabs := make([]string, 0, len(session.Screens)+2)
	tabs = append(tabs, styles.header.Render("moodcrowd"))
	for _, s := range session.Screens {
		if s == visible {
			tabs = append(tabs, styles.active.Render(s.String()))
		} else {
			tabs = append(tabs, styles.tab.Render(s.String()))
		}
	}
	if m.pending > 0 {
		tabs = append(tabs, m.spinner.View())
	}
	return lipgloss.JoinHorizontal(lipgloss.Center, tabs...)
}

func (m *Model) renderNotice() string {
	n, ok := m.board.Current()
	if !ok {
		return ""
	}
	return styles.notice(n.Level).Render(n.Message)
}

func (m *Model) renderAuth() (string, []key.Binding) {
	title := "Log in"
	submit := key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "log in"))
	if m.app.View.AuthMode() == session.AuthRegister {
		title = "Create an account"
		submit = key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "register"))
	}

	body := fmt.Sprintf("%s\n%s\n%s", styles.title.Render(title), m.email.View(), m.password.View())
	keys := []key.Binding{submit, m.keys.field, m.keys.mode}
	if m.app.PlaylistsAvailable() {
		keys = append(keys, key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "skip")))
	}
	return body, append(keys, m.keys.abort)
}

func (m *Model) renderUpload() (string, []key.Binding) {
	var b strings.Builder
	b.WriteString(styles.title.Render("Choose MP3 files"))
	b.WriteString("\n")
	b.WriteString(m.path.View())
	b.WriteString("\n\n")

	files := m.app.Selection.Files()
	fmt.Fprintf(&b, "Selected: %d/%d files\n", len(files), session.MaxFiles)
	for _, f := range files {
		fmt.Fprintf(&b, "  • %s\n", f.Name)
	}
	if len(files) == 0 {
		b.WriteString(styles.help.Render("Nothing selected yet."))
	}

	if m.path.Focused() {
		return b.String(), []key.Binding{
			key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "select")),
			key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "done")),
			m.keys.abort,
		}
	}

	keys := []key.Binding{m.keys.input}
	if m.app.CanAnalyze() && m.pending == 0 {
		keys = append(keys, m.keys.analyze)
	}
	if m.app.PlaylistsAvailable() {
		keys = append(keys, m.keys.lists)
	}
	if m.app.Player.Session() != nil {
		keys = append(keys, m.keys.player)
	}
	return b.String(), append(keys, m.keys.logout, m.keys.quit)
}

func (m *Model) renderResults() (string, []key.Binding) {
	tracks, _ := m.app.Cache.Analysis()

	var b strings.Builder
	b.WriteString(styles.title.Render(fmt.Sprintf("Analysis (%d tracks)", len(tracks))))
	b.WriteString("\n")
	b.WriteString(formatter.ResultsTable(tracks, styles.header))

	for _, t := range tracks {
		if t.Failed() {
			b.WriteString("\n")
			b.WriteString(styles.err.Render(fmt.Sprintf("%s: %s", t.Filename, t.Error)))
		}
	}

	if m.showChart {
		if chart := bpmChart(tracks, m.chartWidth(), chartHeight); chart != "" {
			b.WriteString("\n\n")
			b.WriteString(styles.help.Render("BPM by track"))
			b.WriteString("\n")
			b.WriteString(chart)
		}
	}

	b.WriteString("\n\n")
	b.WriteString(m.name.View())

	if m.name.Focused() {
		return b.String(), []key.Binding{
			key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "save")),
			key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
			m.keys.abort,
		}
	}
	keys := []key.Binding{m.keys.save, m.keys.play, m.keys.chart}
	if m.app.PlaylistsAvailable() {
		keys = append(keys, m.keys.lists)
	}
	return b.String(), append(keys, m.keys.back, m.keys.quit)
}

func (m *Model) renderPlaylists() (string, []key.Binding) {
	return m.playlists.View(), []key.Binding{
		m.keys.play, m.keys.view, m.keys.refresh, m.keys.back, m.keys.quit,
	}
}

func (m *Model) renderPlayer() (string, []key.Binding) {
	s := m.app.Player.Session()
	if s == nil {
		return styles.help.Render("Nothing is playing."), []key.Binding{m.keys.back, m.keys.quit}
	}

	entry, index := s.Current()
	status := "stopped"
	switch {
	case s.Playing() && m.paused:
		status = "paused"
	case s.Playing():
		status = "playing"
	}

	pos, length := s.Progress()
	var b strings.Builder
	b.WriteString(styles.title.Render(entry.Title()))
	b.WriteString("\n")
	fmt.Fprintf(&b, "%s • track %d of %d • %s\n", formatter.Text(entry.Track.Artist), index+1, s.Len(), status)
	fmt.Fprintf(&b, "%s %s / %s\n\n", progressBar(pos, length, progressWidth), formatDuration(pos), formatDuration(length))
	b.WriteString(m.entries.View())

	return b.String(), []key.Binding{
		m.keys.pause, m.keys.next, m.keys.previous, m.keys.retry, m.keys.stop, m.keys.back, m.keys.quit,
	}
}

func (m *Model) chartWidth() int {
	if m.width <= 0 {
		return 60
	}
	return max(m.width-4, 20)
}

// bpmChart draws one bar per track, bpm or zero.
func bpmChart(tracks []models.Track, width, height int) string {
	points := formatter.ChartDataset(tracks)
	if len(points) == 0 {
		return ""
	}

	data := make([]barchart.BarData, len(points))
	for i, p := range points {
		data[i] = barchart.BarData{
			Label:  p.Label,
			Values: []barchart.BarValue{{Name: p.Label, Value: p.Value, Style: barStyle}},
		}
	}

	bc := barchart.New(width, height)
	bc.PushAll(data)
	bc.Draw()
	return bc.View()
}

// progressBar renders pos/total as a fixed width bar.
func progressBar(pos, total time.Duration, width int) string {
	if width <= 0 {
		return ""
	}
	filled := 0
	if total > 0 {
		filled = int(float64(width) * float64(pos) / float64(total))
	}
	filled = min(max(filled, 0), width)
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}

// formatDuration renders d as m:ss.
func formatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	secs := int(d.Round(time.Second).Seconds())
	return fmt.Sprintf("%d:%02d", secs/60, secs%60)
}
