package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Track is the backend's analysis result for one file.
//
// Error is set instead of the metadata fields when the backend could not analyse the file.
type Track struct {
	Filename string   `json:"filename"`
	Title    *string  `json:"title,omitempty"`
	Artist   *string  `json:"artist,omitempty"`
	Genre    *string  `json:"genre,omitempty"`
	BPM      *float64 `json:"bpm,omitempty"`
	Error    string   `json:"error,omitempty"`
}

// BPMValue returns the tempo or 0 when it is absent.
func (t Track) BPMValue() float64 {
	if t.BPM == nil {
		return 0
	}
	return *t.BPM
}

// DisplayTitle returns the title, falling back to the filename.
func (t Track) DisplayTitle() string {
	if t.Title != nil && strings.TrimSpace(*t.Title) != "" {
		return *t.Title
	}
	return t.Filename
}

// Failed reports whether the backend returned an analysis error for this file.
func (t Track) Failed() bool { return t.Error != "" }

// PlaylistID is a playlist identifier in canonical string form.
//
// The backend sends integer ids while the local store uses uuids; both decode into the
// same type so lookups never compare a number against a string.
type PlaylistID string

// ParsePlaylistID normalises user input ("007", " 7 ", "7.0", "7e0") into canonical form.
//
// Decimal text with an integral value is formatted as an integer; anything else is kept as is.
func ParsePlaylistID(s string) PlaylistID {
	s = strings.TrimSpace(s)
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return PlaylistID(strconv.FormatInt(n, 10))
	}
	if n, ok := integralDecimal(s); ok {
		return PlaylistID(strconv.FormatInt(n, 10))
	}
	return PlaylistID(s)
}

// integralDecimal parses plain decimal or exponent notation whose value is a whole int64.
func integralDecimal(s string) (int64, bool) {
	if s == "" || strings.Trim(s, "0123456789+-.eE") != "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != math.Trunc(f) || f < math.MinInt64 || f >= math.MaxInt64 {
		return 0, false
	}
	return int64(f), true
}

// UnmarshalJSON accepts JSON numbers and strings.
func (id *PlaylistID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}

	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ParsePlaylistID(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("playlist id: %w", err)
	}
	*id = ParsePlaylistID(n.String())
	return nil
}

func (id PlaylistID) String() string { return string(id) }

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// Timestamp is a point in time that tolerates the layouts the backend produces.
type Timestamp struct {
	time.Time
}

// UnmarshalJSON parses RFC 3339 and SQLite CURRENT_TIMESTAMP values. Null leaves it zero.
func (ts *Timestamp) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		ts.Time = time.Time{}
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("timestamp: %w", err)
	}
	if s == "" {
		ts.Time = time.Time{}
		return nil
	}

	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			ts.Time = t
			return nil
		}
	}
	return fmt.Errorf("timestamp: unrecognised format %q", s)
}

// MarshalJSON writes RFC 3339, or null for the zero time.
func (ts Timestamp) MarshalJSON() ([]byte, error) {
	if ts.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(ts.Format(time.RFC3339))
}

// Playlist is a saved, named collection of analysed tracks.
type Playlist struct {
	ID        PlaylistID `json:"id"`
	Name      string     `json:"name"`
	CreatedAt Timestamp  `json:"created_at"`
	Tracks    []Track    `json:"tracks"`
}

// Validate checks the fields a save request needs.
func (p Playlist) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("playlist name is required")
	}
	return nil
}

// FileHandle is a local audio file chosen by the user.
type FileHandle struct {
	Name string // base name, the join key against Track.Filename
	Path string
	Size int64
}

// NewFileHandle stats path and builds a handle for it.
func NewFileHandle(path string) (FileHandle, error) {
	info, err := os.Stat(path)
	if err != nil {
		return FileHandle{}, err
	}
	if info.IsDir() {
		return FileHandle{}, fmt.Errorf("%s is a directory", path)
	}
	return FileHandle{Name: filepath.Base(path), Path: path, Size: info.Size()}, nil
}

// Open opens the underlying file for reading.
func (f FileHandle) Open() (*os.File, error) {
	return os.Open(f.Path)
}

// Ptr returns a pointer to v, for building optional fields.
func Ptr[T any](v T) *T {
	return &v
}
