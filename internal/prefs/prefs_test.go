package prefs

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/desertthunder/moodcrowd/internal/shared"
)

func TestLoad(t *testing.T) {
	t.Run("Missing file uses defaults", func(t *testing.T) {
		t.Setenv("HOME", t.TempDir())

		p, err := Load("")
		if err != nil {
			t.Fatalf("Load returned error: %v", err)
		}
		if p.LastEmail != "" || p.LastDirectory != "" || !p.ShowChart {
			t.Errorf("unexpected defaults %+v", p)
		}
	})

	t.Run("Default path under home", func(t *testing.T) {
		home := t.TempDir()
		t.Setenv("HOME", home)

		dir := filepath.Join(home, ".moodcrowd")
		if err := os.MkdirAll(dir, 0o755); err != nil {
			t.Fatalf("MkdirAll: %v", err)
		}
		content := "last_email = \"  me@example.com \"\nlast_directory = \"/music\"\nshow_chart = false\n"
		if err := os.WriteFile(filepath.Join(dir, "prefs.toml"), []byte(content), 0o644); err != nil {
			t.Fatalf("WriteFile: %v", err)
		}

		p, err := Load("")
		if err != nil {
			t.Fatalf("Load returned error: %v", err)
		}
		if p.LastEmail != "me@example.com" {
			t.Errorf("LastEmail = %q", p.LastEmail)
		}
		if p.LastDirectory != "/music" {
			t.Errorf("LastDirectory = %q", p.LastDirectory)
		}
		if p.ShowChart {
			t.Error("expected show_chart = false to be honoured")
		}
	})

	t.Run("Corrupt file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "prefs.toml")
		if err := os.WriteFile(path, []byte("last_email = [broken"), 0o644); err != nil {
			t.Fatalf("WriteFile: %v", err)
		}

		p, err := Load(path)
		if !errors.Is(err, shared.ErrInvalidConfig) {
			t.Errorf("expected ErrInvalidConfig, got %v", err)
		}
		if !p.ShowChart || p.LastEmail != "" {
			t.Errorf("expected defaults alongside the error, got %+v", p)
		}
	})
}

func TestSave(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "prefs.toml")
	want := Prefs{LastEmail: "me@example.com", LastDirectory: "/music/mix", ShowChart: false}

	if err := Save(path, want); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}

	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if got != want {
		t.Errorf("round trip = %+v, want %+v", got, want)
	}
}
