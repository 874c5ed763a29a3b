// Package repositories implements the SQLite-backed local playlist store.
//
// The store is a demo fallback for running without the backend (storage.mode = "local"). All
// playlists live as one JSON array under a single key of the kv table, rewritten on every save.
// The payload is not versioned.
//
// Key Implementations:
//   - [KVStore] : string values by key with transactional read-modify-write
//   - [LocalPlaylistStore] : the session.Store contract on top of [KVStore]
package repositories
