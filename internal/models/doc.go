// Package models defines the data exchanged with the moodcrowd backend and held by the client session.
//
// Types:
//   - [Track] : analysis result for one audio file, keyed by its original filename
//   - [Playlist] : a named, ordered collection of tracks saved by the user
//   - [PlaylistID] : canonical playlist identifier (numbers and strings decode to the same value)
//   - [Timestamp] : creation time accepting both RFC 3339 and SQLite layouts
//   - [FileHandle] : a local audio file the user selected; its Name joins against [Track.Filename]
//
// Optional track metadata is modelled with pointers. Rendering an absent value as "unknown"
// is left to the presentation layer (internal/formatter).
package models
