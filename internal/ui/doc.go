// Package ui implements an interactive terminal client using bubbletea's Elm architecture.
//
// The TUI mirrors the screens of the session coordinator:
//  1. Auth : log in or register
//  2. Upload : choose a folder or files and send them for analysis
//  3. Results : table of analysed tracks, BPM chart and save form
//  4. Playlists : browse saved playlists, view or play one
//  5. Player : sequential playback of matched local files
//
// The [Model] holds no screen state of its own; it asks [session.App] which screen is visible and
// renders it. Every backend call runs in a [tea.Cmd] and reports back through the [Msg] union.
// Playback events raised on audio goroutines reach the model through [Events].
//
// Text inputs take every key while focused. Press esc to leave an input and use the single-key
// bindings, which are listed at the bottom of each screen via charmbracelet/bubbles/help.
package ui
