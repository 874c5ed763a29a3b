package main

import (
	"context"
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/desertthunder/moodcrowd/internal/formatter"
	"github.com/desertthunder/moodcrowd/internal/media"
	"github.com/desertthunder/moodcrowd/internal/models"
	"github.com/desertthunder/moodcrowd/internal/session"
	"github.com/desertthunder/moodcrowd/internal/shared"
	"github.com/urfave/cli/v3"
)

var headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7D56F4"))

func pathArgs(cmd *cli.Command) ([]string, error) {
	paths := cmd.Args().Slice()
	if len(paths) == 0 {
		return nil, fmt.Errorf("%w: at least one MP3 file or directory", shared.ErrMissingArgument)
	}
	return paths, nil
}

// analyzeSelection selects paths and runs them through the analyzer.
func (r *Runner) analyzeSelection(ctx context.Context, app *session.App, paths []string) ([]models.Track, error) {
	files, err := app.SelectPaths(paths)
	if err != nil {
		return nil, err
	}
	r.logger.Info("uploading for analysis", "files", len(files))
	return app.Analyze(ctx)
}

// Analyze uploads MP3 files to the analyzer and prints one row per file.
func (r *Runner) Analyze(ctx context.Context, cmd *cli.Command) error {
	paths, err := pathArgs(cmd)
	if err != nil {
		return err
	}

	tracks, err := r.analyzeSelection(ctx, r.newApp(nil, nil), paths)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(tracks, cmd.Bool("pretty"))
	}
	return r.writeTracks(fmt.Sprintf("Analysis (%d tracks)", len(tracks)), tracks)
}

// Files reads embedded tags from local MP3 files without contacting the backend.
func (r *Runner) Files(ctx context.Context, cmd *cli.Command) error {
	paths, err := pathArgs(cmd)
	if err != nil {
		return err
	}

	files, err := r.audioFiles(paths)
	if err != nil {
		return err
	}

	tracks := media.ReadAllTags(files)
	if cmd.Bool("json") {
		return r.writeJSON(tracks, cmd.Bool("pretty"))
	}
	return r.writeTracks(fmt.Sprintf("Local tags (%d files)", len(tracks)), tracks)
}

func (r *Runner) writeTracks(title string, tracks []models.Track) error {
	r.writePlainHeader(title)
	if err := r.writePlain("%s\n", formatter.ResultsTable(tracks, headerStyle)); err != nil {
		return err
	}
	for _, t := range tracks {
		if t.Failed() {
			r.writePlain("✗ %s: %s\n", t.Filename, t.Error)
		}
	}
	return nil
}
