// Package tasks runs the long multi-request jobs behind the CLI with real-time progress reporting.
//
// # Core Operations
//
// [Engine] offers two operations:
//
//  1. [Engine.AnalyzeLibrary] : analyze any number of MP3 files
//     - Splits the files into batches the analyzer accepts
//     - Uploads batches from a small worker pool, paced by a rate limiter
//     - Returns one track per file in input order; a failed batch marks its tracks with the error
//
//  2. [Engine.BulkExport] : export playlists into a directory
//     - Writes one file per playlist from a worker pool
//     - Records every result in export_manifest.json
//
// # Progress Reporting
//
// Both operations take an optional channel of [ProgressUpdate]. Updates use select with default so a slow
// reader never blocks the job.
package tasks
