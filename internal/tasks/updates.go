package tasks

import "fmt"

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Operation phase enumeration
type Phase int

const (
	AnalyzeBatch Phase = iota
	ExportPlaylist
)

func (p Phase) String() string {
	switch p {
	case AnalyzeBatch:
		return "analyze_batch"
	case ExportPlaylist:
		return "export_playlist"
	default:
		return ""
	}
}

func batchStartedUpdate(step, total, files int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   AnalyzeBatch,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("Analyzing batch %d of %d (%d files)...", step, total, files),
	}
}

func batchFinishedUpdate(step, total int, res BatchResult) ProgressUpdate {
	msg := fmt.Sprintf("✓ Batch %d/%d analyzed", step, total)
	if res.Err != nil {
		msg = fmt.Sprintf("✗ Batch %d/%d failed: %v", step, total, res.Err)
	}
	return ProgressUpdate{
		Phase:   AnalyzeBatch,
		Step:    step,
		Total:   total,
		Message: msg,
		Data:    res,
	}
}

func exportCompletedUpdate(step, total int, name, file string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ExportPlaylist,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("✓ Exported %s to %s", name, file),
		Data:    file,
	}
}

func exportFailedUpdate(step, total int, name string, err error) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ExportPlaylist,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("✗ Failed to export %s: %v", name, err),
	}
}
