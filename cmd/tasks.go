package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/moodcrowd/internal/models"
	"github.com/desertthunder/moodcrowd/internal/session"
	"github.com/desertthunder/moodcrowd/internal/shared"
	"github.com/desertthunder/moodcrowd/internal/tasks"
	"github.com/urfave/cli/v3"
)

// printProgress writes updates until ch is closed; the returned channel closes once it has drained.
func (r *Runner) printProgress(ch <-chan tasks.ProgressUpdate, quiet bool) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range ch {
			if quiet {
				continue
			}
			r.writePlain("  %s\n", update.Message)
		}
	}()
	return done
}

// audioFiles expands paths and keeps the audio files, without the selection limit.
func (r *Runner) audioFiles(paths []string) ([]models.FileHandle, error) {
	candidates, err := session.FromPaths(paths)
	if err != nil {
		return nil, err
	}

	sel := session.NewFileSelection(r.config.Behavior.CaseInsensitiveExt)
	files := make([]models.FileHandle, 0, len(candidates))
	for _, c := range candidates {
		if sel.IsAudio(c.Name) {
			files = append(files, c)
		}
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("%w: no MP3 files in %v", shared.ErrNoFiles, paths)
	}
	return files, nil
}

// Scan analyzes a whole library in batches.
func (r *Runner) Scan(ctx context.Context, cmd *cli.Command) error {
	paths, err := pathArgs(cmd)
	if err != nil {
		return err
	}
	files, err := r.audioFiles(paths)
	if err != nil {
		return err
	}

	asJSON := cmd.Bool("json")
	if !asJSON {
		r.writePlain("Scanning %d files...\n", len(files))
	}
	r.logger.Info("scanning library", "files", len(files))

	progressCh := make(chan tasks.ProgressUpdate, 50)
	done := r.printProgress(progressCh, asJSON)

	engine := tasks.NewEngine(r.client, r.logger)
	result, err := engine.AnalyzeLibrary(ctx, files, progressCh, tasks.LibraryOpts{
		BatchSize:  int(cmd.Int("batch-size")),
		NumWorkers: int(cmd.Int("workers")),
		RateLimit:  float64(cmd.Int("rate")),
	})
	close(progressCh)
	<-done

	if err != nil {
		return err
	}

	if asJSON {
		return r.writeJSON(result.Tracks, cmd.Bool("pretty"))
	}
	r.writePlain("\n")
	if err := r.writeTracks(fmt.Sprintf("Analysis (%d tracks)", len(result.Tracks)), result.Tracks); err != nil {
		return err
	}
	if result.FailedBatches > 0 {
		r.writePlain("\n%d of %d batches failed\n", result.FailedBatches, result.Batches)
	}
	return nil
}

// PlaylistsExportAll writes every saved playlist into one directory.
func (r *Runner) PlaylistsExportAll(ctx context.Context, cmd *cli.Command) error {
	playlists, err := r.fetchPlaylists(ctx, r.newApp(nil, nil))
	if err != nil {
		return err
	}
	if len(playlists) == 0 {
		return r.writePlain("You have no saved playlists.\n")
	}

	r.writePlain("Exporting %d playlists...\n", len(playlists))

	progressCh := make(chan tasks.ProgressUpdate, 50)
	done := r.printProgress(progressCh, false)

	engine := tasks.NewEngine(r.client, r.logger)
	result, err := engine.BulkExport(ctx, playlists, progressCh, tasks.BulkExportOpts{
		Format:     cmd.String("format"),
		OutputDir:  cmd.String("dir"),
		NumWorkers: int(cmd.Int("workers")),
	})
	close(progressCh)
	<-done

	if err != nil {
		return err
	}

	r.logger.Info("bulk export finished", "dir", result.OutputDirectory, "ok", result.SuccessfulExports, "failed", result.FailedExports)
	r.writePlain("\n✓ Exported %d/%d playlists to %s\n", result.SuccessfulExports, result.TotalPlaylists, result.OutputDirectory)
	r.writePlain("  Manifest: %s\n", result.ManifestPath)
	if result.FailedExports > 0 {
		return fmt.Errorf("%d playlists failed to export", result.FailedExports)
	}
	return nil
}
