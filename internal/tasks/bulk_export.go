package tasks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/desertthunder/moodcrowd/internal/formatter"
	"github.com/desertthunder/moodcrowd/internal/models"
)

// ManifestName is the summary file written next to the exports.
const ManifestName = "export_manifest.json"

// BulkExportOpts contains configuration for bulk playlist exports.
type BulkExportOpts struct {
	Format     string // Export format: csv, markdown, text, json (default: csv)
	OutputDir  string // Base output directory (default: moodcrowd_export_{epoch})
	NumWorkers int    // Concurrent workers (default: 4)
}

// PlaylistExportResult is the outcome for one playlist.
type PlaylistExportResult struct {
	PlaylistID   models.PlaylistID `json:"playlist_id"`
	PlaylistName string            `json:"playlist_name"`
	File         string            `json:"file,omitempty"`
	Success      bool              `json:"success"`
	Error        string            `json:"error,omitempty"`
}

// BulkExportResult summarizes a bulk export; it is also the manifest content.
type BulkExportResult struct {
	Format            string                 `json:"format"`
	ExportedAt        time.Time              `json:"exported_at"`
	TotalPlaylists    int                    `json:"total_playlists"`
	SuccessfulExports int                    `json:"successful_exports"`
	FailedExports     int                    `json:"failed_exports"`
	OutputDirectory   string                 `json:"output_directory"`
	ManifestPath      string                 `json:"-"`
	Results           []PlaylistExportResult `json:"results"`
}

// BulkExport writes every playlist to OutputDir from a worker pool and records the outcome in a manifest.
//
// Results keep the order of playlists. A failed playlist does not stop the others.
func (e *Engine) BulkExport(ctx context.Context, playlists []models.Playlist, progress chan<- ProgressUpdate, opts BulkExportOpts) (*BulkExportResult, error) {
	if opts.Format == "" {
		opts.Format = formatter.FormatCSV
	}
	ext, err := formatter.Extension(opts.Format)
	if err != nil {
		return nil, err
	}
	if opts.OutputDir == "" {
		opts.OutputDir = fmt.Sprintf("moodcrowd_export_%d", time.Now().Unix())
	}
	if opts.NumWorkers <= 0 {
		opts.NumWorkers = 4
	}
	if opts.NumWorkers > 10 {
		opts.NumWorkers = 10
	}

	if err := os.MkdirAll(opts.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	result := &BulkExportResult{
		Format:          opts.Format,
		ExportedAt:      time.Now().UTC(),
		TotalPlaylists:  len(playlists),
		OutputDirectory: opts.OutputDir,
		Results:         make([]PlaylistExportResult, len(playlists)),
	}

	jobs := make(chan int, len(playlists))
	results := make(chan indexedExport, len(playlists))

	var wg sync.WaitGroup
	for i := 0; i < opts.NumWorkers; i++ {
		wg.Add(1)
		go e.exportWorker(ctx, &wg, playlists, jobs, results, opts, ext)
	}

	for i := range playlists {
		jobs <- i
	}
	close(jobs)

	go func() {
		wg.Wait()
		close(results)
	}()

	completed := 0
	for res := range results {
		completed++
		result.Results[res.index] = res.PlaylistExportResult

		if res.Success {
			result.SuccessfulExports++
			e.sendProgress(progress, exportCompletedUpdate(completed, len(playlists), res.PlaylistName, res.File))
		} else {
			result.FailedExports++
			e.sendProgress(progress, exportFailedUpdate(completed, len(playlists), res.PlaylistName, errors.New(res.Error)))
		}
	}

	manifestPath := filepath.Join(opts.OutputDir, ManifestName)
	if err := writeManifest(result, manifestPath); err != nil {
		return result, fmt.Errorf("export completed but failed to write manifest: %w", err)
	}
	result.ManifestPath = manifestPath
	return result, ctx.Err()
}

type indexedExport struct {
	PlaylistExportResult
	index int
}

// exportWorker is a worker goroutine that exports playlists from the jobs channel.
func (e *Engine) exportWorker(
	ctx context.Context,
	wg *sync.WaitGroup,
	playlists []models.Playlist,
	jobs <-chan int,
	results chan<- indexedExport,
	opts BulkExportOpts,
	ext string,
) {
	defer wg.Done()

	for i := range jobs {
		p := playlists[i]
		res := indexedExport{index: i, PlaylistExportResult: PlaylistExportResult{PlaylistID: p.ID, PlaylistName: p.Name}}

		if err := ctx.Err(); err != nil {
			res.Error = err.Error()
			results <- res
			continue
		}

		name := fmt.Sprintf("%s-%s%s", formatter.Slug(string(p.ID)), formatter.Slug(p.Name), ext)
		path, err := formatter.WriteExport(p, opts.Format, filepath.Join(opts.OutputDir, name))
		if err != nil {
			e.logger.Warn("export failed", "playlist", p.Name, "error", err)
			res.Error = err.Error()
		} else {
			res.File = path
			res.Success = true
		}
		results <- res
	}
}

func writeManifest(result *BulkExportResult, path string) error {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
