package tasks

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/moodcrowd/internal/models"
	"github.com/desertthunder/moodcrowd/internal/services"
	"github.com/desertthunder/moodcrowd/internal/shared"
	"golang.org/x/time/rate"
)

// Analyzer turns one batch of files into tracks. [services.APIClient] implements it.
type Analyzer interface {
	Analyze(ctx context.Context, files []models.FileHandle) ([]models.Track, error)
}

// Engine runs batch jobs against the backend.
type Engine struct {
	analyzer Analyzer
	logger   *log.Logger
}

// NewEngine creates an Engine. logger may be nil.
func NewEngine(analyzer Analyzer, logger *log.Logger) *Engine {
	if logger == nil {
		logger = shared.NewLogger(io.Discard)
	}
	return &Engine{analyzer: analyzer, logger: logger}
}

// LibraryOpts configures [Engine.AnalyzeLibrary].
type LibraryOpts struct {
	BatchSize  int     // Files per request (default and maximum: services.MaxAnalyzeFiles)
	NumWorkers int     // Concurrent uploads (default: 2, maximum: 4)
	RateLimit  float64 // Requests per second (default: 1)
}

// BatchResult is the outcome of one analyzer request.
type BatchResult struct {
	Index  int
	Files  []models.FileHandle
	Tracks []models.Track
	Err    error
}

// LibraryResult collects the tracks of every batch in input order.
type LibraryResult struct {
	Tracks        []models.Track
	Batches       int
	FailedBatches int
}

// sendProgress sends a progress update through the channel without blocking.
func (e *Engine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

// AnalyzeLibrary analyzes files in batches from a rate-limited worker pool.
//
// A failed batch does not stop the others; its files come back as tracks carrying the error.
// The error return is set when ctx ends or every batch failed.
func (e *Engine) AnalyzeLibrary(ctx context.Context, files []models.FileHandle, progress chan<- ProgressUpdate, opts LibraryOpts) (*LibraryResult, error) {
	if e.analyzer == nil {
		return nil, fmt.Errorf("%w: analyzer not initialized", shared.ErrServiceUnavailable)
	}
	if len(files) == 0 {
		return nil, shared.ErrNoFiles
	}

	if opts.BatchSize <= 0 || opts.BatchSize > services.MaxAnalyzeFiles {
		opts.BatchSize = services.MaxAnalyzeFiles
	}
	if opts.NumWorkers <= 0 {
		opts.NumWorkers = 2
	}
	if opts.NumWorkers > 4 {
		opts.NumWorkers = 4
	}
	if opts.RateLimit <= 0 {
		opts.RateLimit = 1
	}

	batches := chunk(files, opts.BatchSize)
	limiter := rate.NewLimiter(rate.Limit(opts.RateLimit), 1)

	jobs := make(chan int, len(batches))
	results := make(chan BatchResult, len(batches))

	var wg sync.WaitGroup
	for i := 0; i < opts.NumWorkers; i++ {
		wg.Add(1)
		go e.analyzeWorker(ctx, &wg, limiter, batches, jobs, results, progress)
	}

	for i := range batches {
		jobs <- i
	}
	close(jobs)

	go func() {
		wg.Wait()
		close(results)
	}()

	ordered := make([]BatchResult, len(batches))
	completed := 0
	for res := range results {
		completed++
		ordered[res.Index] = res
		e.sendProgress(progress, batchFinishedUpdate(completed, len(batches), res))
	}

	result := &LibraryResult{Batches: len(batches), Tracks: make([]models.Track, 0, len(files))}
	var firstErr error
	for _, res := range ordered {
		if res.Err != nil {
			result.FailedBatches++
			if firstErr == nil {
				firstErr = res.Err
			}
			for _, f := range res.Files {
				result.Tracks = append(result.Tracks, models.Track{Filename: f.Name, Error: res.Err.Error()})
			}
			continue
		}
		if len(res.Tracks) != len(res.Files) {
			e.logger.Warn("analyzer returned a different number of tracks", "batch", res.Index, "files", len(res.Files), "tracks", len(res.Tracks))
		}
		result.Tracks = append(result.Tracks, res.Tracks...)
	}

	if err := ctx.Err(); err != nil {
		return result, err
	}
	if result.FailedBatches == result.Batches {
		return result, firstErr
	}
	return result, nil
}

// analyzeWorker uploads batches taken from jobs until it is closed.
func (e *Engine) analyzeWorker(
	ctx context.Context,
	wg *sync.WaitGroup,
	limiter *rate.Limiter,
	batches [][]models.FileHandle,
	jobs <-chan int,
	results chan<- BatchResult,
	progress chan<- ProgressUpdate,
) {
	defer wg.Done()

	for i := range jobs {
		res := BatchResult{Index: i, Files: batches[i]}

		if err := limiter.Wait(ctx); err != nil {
			res.Err = err
			results <- res
			continue
		}

		e.sendProgress(progress, batchStartedUpdate(i+1, len(batches), len(batches[i])))
		res.Tracks, res.Err = e.analyzer.Analyze(ctx, batches[i])
		if res.Err != nil {
			e.logger.Warn("batch failed", "batch", i, "error", res.Err)
		}
		results <- res
	}
}

func chunk(files []models.FileHandle, size int) [][]models.FileHandle {
	out := make([][]models.FileHandle, 0, (len(files)+size-1)/size)
	for start := 0; start < len(files); start += size {
		end := min(start+size, len(files))
		out = append(out, files[start:end])
	}
	return out
}
