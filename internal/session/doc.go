// Package session holds the client-side state of a moodcrowd session and the coordinators that act on it.
//
// Nothing in this package knows about terminals or HTTP. UI adapters (the CLI in cmd and the TUI in
// internal/ui) call [App] command handlers, and [App] delegates to:
//   - [ViewCoordinator] : which single screen is visible
//   - [FileSelection] : the selected audio files, at most [MaxFiles] ".mp3" names
//   - [PlaylistCache] : the last fetched playlists and the last analysis result
//   - [PlaybackCoordinator] : pairs playlist tracks with selected files and plays them in order
//   - [Notifier] : transient messages for the user
//
// Handlers may be called from goroutines (bubbletea commands), so every coordinator guards its
// state with a mutex. A [Sequencer] rejects overlapping requests of the same kind with
// [shared.ErrRequestPending] and drops responses superseded by a newer selection or logout
// with [shared.ErrStaleResponse].
package session
