// package formatter renders analysed tracks and playlists for display and export (table, chart, CSV, Markdown, plain text)
package formatter

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/desertthunder/moodcrowd/internal/models"
	"github.com/desertthunder/moodcrowd/internal/shared"
)

// Unknown is shown in place of an absent value.
const Unknown = "—"

// Export formats accepted by [WriteExport].
const (
	FormatCSV      = "csv"
	FormatMarkdown = "markdown"
	FormatText     = "text"
	FormatJSON     = "json"
)

// Row is one line of the results table.
type Row struct {
	Filename string
	Title    string
	Artist   string
	Genre    string
	BPM      string
	Error    string
}

// Cells returns the displayed columns in table order.
func (r Row) Cells() []string {
	return []string{r.Title, r.Artist, r.Genre, r.BPM}
}

// Headers are the results table column names.
var Headers = []string{"Title", "Artist", "Genre", "BPM"}

// Text returns *s, or [Unknown] when it is nil or blank.
func Text(s *string) string {
	if s == nil || strings.TrimSpace(*s) == "" {
		return Unknown
	}
	return *s
}

// BPM formats a tempo without trailing zeros, or [Unknown] when absent.
func BPM(v *float64) string {
	if v == nil {
		return Unknown
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

// Rows builds one row per track, in input order.
func Rows(tracks []models.Track) []Row {
	rows := make([]Row, 0, len(tracks))
	for _, t := range tracks {
		rows = append(rows, Row{
			Filename: t.Filename,
			Title:    Text(t.Title),
			Artist:   Text(t.Artist),
			Genre:    Text(t.Genre),
			BPM:      BPM(t.BPM),
			Error:    t.Error,
		})
	}
	return rows
}

// ChartPoint is one bar of the BPM chart.
type ChartPoint struct {
	Label string
	Value float64
}

// ChartDataset labels tracks "Track N" with their tempo, 0 when absent.
func ChartDataset(tracks []models.Track) []ChartPoint {
	points := make([]ChartPoint, 0, len(tracks))
	for i, t := range tracks {
		points = append(points, ChartPoint{Label: fmt.Sprintf("Track %d", i+1), Value: t.BPMValue()})
	}
	return points
}

// ResultsTable renders tracks as a bordered table.
func ResultsTable(tracks []models.Track, headerStyle lipgloss.Style) string {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers(Headers...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle.Padding(0, 1)
			}
			return lipgloss.NewStyle().Padding(0, 1)
		})
	for _, r := range Rows(tracks) {
		t.Row(r.Cells()...)
	}
	return t.Render()
}

// Summary is the one-line description of a playlist: track count and creation date.
func Summary(p models.Playlist) string {
	date := Unknown
	if !p.CreatedAt.IsZero() {
		date = p.CreatedAt.Local().Format("2006-01-02")
	}
	return fmt.Sprintf("%d tracks • %s", len(p.Tracks), date)
}

// ExportToCSV converts a playlist to CSV with columns: Filename, Title, Artist, Genre, BPM
func ExportToCSV(p models.Playlist) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if err := writer.Write([]string{"Filename", "Title", "Artist", "Genre", "BPM"}); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, t := range p.Tracks {
		bpm := ""
		if t.BPM != nil {
			bpm = BPM(t.BPM)
		}
		record := []string{t.Filename, deref(t.Title), deref(t.Artist), deref(t.Genre), bpm}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}
	return buf.Bytes(), nil
}

// ExportToMarkdown converts a playlist to a Markdown table
func ExportToMarkdown(p models.Playlist) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "# %s\n\n", p.Name)
	fmt.Fprintf(&buf, "**Tracks**: %d\n", len(p.Tracks))
	if !p.CreatedAt.IsZero() {
		fmt.Fprintf(&buf, "**Created**: %s\n", p.CreatedAt.Format("2006-01-02 15:04"))
	}
	buf.WriteString("\n| # | Title | Artist | Genre | BPM |\n|---|---|---|---|---|\n")

	for i, r := range Rows(p.Tracks) {
		fmt.Fprintf(&buf, "| %d | %s | %s | %s | %s |\n", i+1, mdEscape(r.Title), mdEscape(r.Artist), mdEscape(r.Genre), r.BPM)
	}
	return buf.Bytes(), nil
}

// ExportToText converts a playlist to plain text format
func ExportToText(p models.Playlist) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "Playlist: %s\n", p.Name)
	fmt.Fprintf(&buf, "%s\n\n", Summary(p))
	for i, t := range p.Tracks {
		fmt.Fprintf(&buf, "%d. %s - %s [%s BPM]\n", i+1, Text(t.Artist), t.DisplayTitle(), BPM(t.BPM))
	}
	return buf.Bytes(), nil
}

// Extension returns the file extension written for format.
func Extension(format string) (string, error) {
	switch strings.ToLower(format) {
	case FormatCSV:
		return ".csv", nil
	case FormatMarkdown, "md":
		return ".md", nil
	case FormatText, "txt":
		return ".txt", nil
	case FormatJSON:
		return ".json", nil
	default:
		return "", fmt.Errorf("%w: unknown export format %q", shared.ErrInvalidArgument, format)
	}
}

// WriteExport writes p in format to path and returns the path written.
//
// An empty path defaults to "<name>.<ext>" in the working directory.
func WriteExport(p models.Playlist, format, path string) (string, error) {
	ext, err := Extension(format)
	if err != nil {
		return "", err
	}

	var data []byte
	switch ext {
	case ".csv":
		data, err = ExportToCSV(p)
	case ".md":
		data, err = ExportToMarkdown(p)
	case ".txt":
		data, err = ExportToText(p)
	default:
		data, err = json.MarshalIndent(p, "", "  ")
	}
	if err != nil {
		return "", fmt.Errorf("failed to generate %s: %w", format, err)
	}

	if path == "" {
		path = Slug(p.Name) + ext
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return "", fmt.Errorf("failed to create directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	return path, nil
}

// Slug turns a playlist name into a file name stem.
func Slug(name string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		switch {
		case r == '-' || r == '_' || r == ' ' || r == '.' || r == '/' || r == '\\':
			if !dash && b.Len() > 0 {
				b.WriteRune('-')
				dash = true
			}
		case strconv.IsPrint(r):
			b.WriteRune(r)
			dash = false
		}
	}
	out := strings.TrimSuffix(b.String(), "-")
	if out == "" {
		return "playlist"
	}
	return out
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func mdEscape(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}
