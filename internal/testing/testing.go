// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/desertthunder/moodcrowd/internal/models"
)

// SaveCall records one [MockStore.SavePlaylist] call.
type SaveCall struct {
	Name   string
	Tracks []models.Track
}

// MockStore is an in-memory playlist store with injectable failures.
type MockStore struct {
	mu        sync.Mutex
	Playlists []models.Playlist
	ListErr   error
	SaveErr   error
	Saved     []SaveCall
	ListCalls int
}

func (m *MockStore) ListPlaylists(ctx context.Context) ([]models.Playlist, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ListCalls++
	if m.ListErr != nil {
		return nil, m.ListErr
	}
	out := make([]models.Playlist, len(m.Playlists))
	copy(out, m.Playlists)
	return out, nil
}

func (m *MockStore) SavePlaylist(ctx context.Context, name string, tracks []models.Track) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SaveErr != nil {
		return m.SaveErr
	}
	m.Saved = append(m.Saved, SaveCall{Name: name, Tracks: tracks})
	return nil
}

// MockAuth is a test double for the account endpoints.
// When RegisterGate is set Register waits for a value on it.
type MockAuth struct {
	mu              sync.Mutex
	ProbeErr        error
	LoginErr        error
	RegisterErr     error
	RegisterGate    chan struct{}
	RegisterStarted chan struct{}
	Logins          []string
}

func (m *MockAuth) Register(ctx context.Context, email, password string) error {
	if m.RegisterStarted != nil {
		m.RegisterStarted <- struct{}{}
	}
	if m.RegisterGate != nil {
		select {
		case <-m.RegisterGate:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return m.RegisterErr
}

func (m *MockAuth) Login(ctx context.Context, email, password string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Logins = append(m.Logins, email)
	return m.LoginErr
}

func (m *MockAuth) Probe(ctx context.Context) error {
	return m.ProbeErr
}

// MockAnalyzer returns Tracks for every call. When Gate is set each call waits for a value on it.
type MockAnalyzer struct {
	Tracks  []models.Track
	Err     error
	Gate    chan struct{}
	Started chan struct{}

	mu    sync.Mutex
	Calls [][]models.FileHandle
}

func (m *MockAnalyzer) Analyze(ctx context.Context, files []models.FileHandle) ([]models.Track, error) {
	m.mu.Lock()
	m.Calls = append(m.Calls, files)
	m.mu.Unlock()

	if m.Started != nil {
		m.Started <- struct{}{}
	}
	if m.Gate != nil {
		select {
		case <-m.Gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return m.Tracks, m.Err
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) LimitedWriter {
	return LimitedWriter{maxWrites: maxWrites, written: written, target: target}
}

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return m.response, m.err
}

// FCloser simulates a failure when reading response body
type FCloser struct{}

func (f *FCloser) Read(p []byte) (n int, err error) {
	return 0, errors.New("read failed")
}

func (f *FCloser) Close() error {
	return nil
}

// Track builds a track with an optional title and bpm (bpm < 0 leaves it absent).
func Track(filename, title string, bpm float64) models.Track {
	t := models.Track{Filename: filename}
	if title != "" {
		t.Title = models.Ptr(title)
	}
	if bpm >= 0 {
		t.BPM = models.Ptr(bpm)
	}
	return t
}

// Files builds handles with the given names, without touching the file system.
func Files(names ...string) []models.FileHandle {
	out := make([]models.FileHandle, 0, len(names))
	for _, n := range names {
		out = append(out, models.FileHandle{Name: n, Path: "/music/" + n})
	}
	return out
}

// MustWriteFile writes content to dir/name and returns the path.
func MustWriteFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("Failed to create directory for %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write file %s: %v", path, err)
	}
	return path
}

func MustGetwd(t *testing.T) string {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Failed to get working directory: %v", err)
	}
	return wd
}

func MustChdir(t *testing.T, dir string) {
	t.Helper()
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("Failed to change directory to %s: %v", dir, err)
	}
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}
