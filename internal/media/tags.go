package media

import (
	"fmt"
	"strings"

	"github.com/dhowden/tag"
	"github.com/desertthunder/moodcrowd/internal/models"
)

// ReadTags returns a track with the title, artist and genre stored in the file. BPM is never set.
//
// A file without tags is not an error; the fields are simply left nil.
func ReadTags(file models.FileHandle) (models.Track, error) {
	t := models.Track{Filename: file.Name}

	f, err := file.Open()
	if err != nil {
		return t, fmt.Errorf("failed to open %s: %w", file.Name, err)
	}
	defer f.Close()

	m, err := tag.ReadFrom(f)
	if err == tag.ErrNoTagsFound {
		return t, nil
	} else if err != nil {
		return t, fmt.Errorf("failed to read tags from %s: %w", file.Name, err)
	}

	t.Title = optional(m.Title())
	t.Artist = optional(m.Artist())
	t.Genre = optional(m.Genre())
	return t, nil
}

// ReadAllTags reads tags for every file, keeping the filename-only track when a file has none
// or cannot be read.
func ReadAllTags(files []models.FileHandle) []models.Track {
	out := make([]models.Track, 0, len(files))
	for _, f := range files {
		t, _ := ReadTags(f)
		out = append(out, t)
	}
	return out
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
