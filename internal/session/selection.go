package session

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/desertthunder/moodcrowd/internal/models"
	"github.com/desertthunder/moodcrowd/internal/shared"
)

// MaxFiles is the largest selection accepted.
const MaxFiles = 10

const audioExt = ".mp3"

// ValidationError is bad local input. Err is one of the shared input sentinels.
type ValidationError struct {
	Err    error
	Detail string
}

func (e *ValidationError) Error() string {
	if e.Detail == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("%v: %s", e.Err, e.Detail)
}

func (e *ValidationError) Unwrap() error { return e.Err }

// FileSelection holds the selected file set, replaced wholesale on every successful selection.
type FileSelection struct {
	mu              sync.RWMutex
	files           []models.FileHandle
	caseInsensitive bool
}

// NewFileSelection creates an empty selection. caseInsensitive also accepts ".MP3".
func NewFileSelection(caseInsensitive bool) *FileSelection {
	return &FileSelection{caseInsensitive: caseInsensitive}
}

// IsAudio reports whether name has the accepted extension.
func (s *FileSelection) IsAudio(name string) bool {
	if s.caseInsensitive {
		return strings.HasSuffix(strings.ToLower(name), audioExt)
	}
	return strings.HasSuffix(name, audioExt)
}

// Select filters candidates to audio files and replaces the selection with them.
//
// More than [MaxFiles] after filtering is a [*ValidationError] and the previous selection is kept.
func (s *FileSelection) Select(candidates []models.FileHandle) ([]models.FileHandle, error) {
	filtered := make([]models.FileHandle, 0, len(candidates))
	for _, c := range candidates {
		if s.IsAudio(c.Name) {
			filtered = append(filtered, c)
		}
	}

	if len(filtered) > MaxFiles {
		return nil, &ValidationError{
			Err:    shared.ErrTooManyFiles,
			Detail: fmt.Sprintf("%d files, at most %d", len(filtered), MaxFiles),
		}
	}

	s.mu.Lock()
	s.files = filtered
	s.mu.Unlock()

	return cloneFiles(filtered), nil
}

// Files returns a copy of the selection in selection order.
func (s *FileSelection) Files() []models.FileHandle {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneFiles(s.files)
}

func (s *FileSelection) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.files)
}

// CanAnalyze reports whether the analyze action should be enabled.
func (s *FileSelection) CanAnalyze() bool { return s.Count() > 0 }

// Clear empties the selection.
func (s *FileSelection) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.files = nil
}

// FromPaths builds handles for paths. A directory contributes its regular files, one level deep,
// in name order. Filtering by extension is left to [FileSelection.Select].
func FromPaths(paths []string) ([]models.FileHandle, error) {
	var out []models.FileHandle
	for _, p := range paths {
		p = shared.ExpandHome(p)
		info, err := os.Stat(p)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", shared.ErrInvalidArgument, err)
		}

		if !info.IsDir() {
			out = append(out, models.FileHandle{Name: filepath.Base(p), Path: p, Size: info.Size()})
			continue
		}

		entries, err := os.ReadDir(p)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", p, err)
		}
		for _, e := range entries {
			if !e.Type().IsRegular() {
				continue
			}
			fi, err := e.Info()
			if err != nil {
				continue
			}
			out = append(out, models.FileHandle{Name: e.Name(), Path: filepath.Join(p, e.Name()), Size: fi.Size()})
		}
	}
	return out, nil
}

func cloneFiles(files []models.FileHandle) []models.FileHandle {
	if files == nil {
		return nil
	}
	out := make([]models.FileHandle, len(files))
	copy(out, files)
	return out
}
