// Package prefs persists small TUI preferences between runs in ~/.moodcrowd/prefs.toml.
//
// Preferences are a convenience: a missing or unreadable file yields defaults rather than an error.
package prefs

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/desertthunder/moodcrowd/internal/shared"
	toml "github.com/pelletier/go-toml/v2"
)

const DefaultPath = "~/.moodcrowd/prefs.toml"

// Prefs holds values remembered by the TUI.
type Prefs struct {
	LastEmail     string `toml:"last_email"`
	LastDirectory string `toml:"last_directory"`
	ShowChart     bool   `toml:"show_chart"`
}

func defaults() Prefs {
	return Prefs{ShowChart: true}
}

// Load reads preferences from path, or [DefaultPath] when path is blank.
func Load(path string) (Prefs, error) {
	p := defaults()

	data, err := os.ReadFile(resolve(path))
	if errors.Is(err, os.ErrNotExist) {
		return p, nil
	} else if err != nil {
		return p, fmt.Errorf("read prefs: %w", err)
	}

	if err := toml.Unmarshal(data, &p); err != nil {
		return defaults(), fmt.Errorf("%w: prefs: %v", shared.ErrInvalidConfig, err)
	}
	p.LastEmail = strings.TrimSpace(p.LastEmail)
	p.LastDirectory = strings.TrimSpace(p.LastDirectory)
	return p, nil
}

// Save writes p to path, creating directories as needed.
func Save(path string, p Prefs) error {
	resolved := resolve(path)
	if err := os.MkdirAll(filepath.Dir(resolved), 0o755); err != nil {
		return fmt.Errorf("create prefs dir: %w", err)
	}

	data, err := toml.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal prefs: %w", err)
	}
	if err := os.WriteFile(resolved, data, 0o644); err != nil {
		return fmt.Errorf("write prefs: %w", err)
	}
	return nil
}

func resolve(path string) string {
	if strings.TrimSpace(path) == "" {
		path = DefaultPath
	}
	return shared.ExpandHome(strings.TrimSpace(path))
}
