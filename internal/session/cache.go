package session

import (
	"context"
	"strings"
	"sync"

	"github.com/desertthunder/moodcrowd/internal/models"
	"github.com/desertthunder/moodcrowd/internal/shared"
)

// Store persists playlists. [services.APIClient] and [repositories.LocalPlaylistStore] implement it.
type Store interface {
	ListPlaylists(ctx context.Context) ([]models.Playlist, error)
	SavePlaylist(ctx context.Context, name string, tracks []models.Track) error
}

// PlaylistCache holds the last fetched playlists and the last analysis.
type PlaylistCache struct {
	mu        sync.RWMutex
	store     Store
	playlists []models.Playlist
	tracks    []models.Track
	files     []models.FileHandle
}

func NewPlaylistCache(store Store) *PlaylistCache {
	return &PlaylistCache{store: store}
}

// Fetch lists playlists without touching the cache.
func (c *PlaylistCache) Fetch(ctx context.Context) ([]models.Playlist, error) {
	return c.store.ListPlaylists(ctx)
}

// Replace swaps the cached list wholesale.
func (c *PlaylistCache) Replace(playlists []models.Playlist) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.playlists = playlists
}

// Refresh fetches and replaces the cached list. On error the cache is unchanged.
func (c *PlaylistCache) Refresh(ctx context.Context) ([]models.Playlist, error) {
	playlists, err := c.Fetch(ctx)
	if err != nil {
		return nil, err
	}
	c.Replace(playlists)
	return playlists, nil
}

// Playlists returns the cached list.
func (c *PlaylistCache) Playlists() []models.Playlist {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]models.Playlist, len(c.playlists))
	copy(out, c.playlists)
	return out
}

// FindByID looks a playlist up by canonical id.
func (c *PlaylistCache) FindByID(id models.PlaylistID) (models.Playlist, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, p := range c.playlists {
		if p.ID == id {
			return p, true
		}
	}
	return models.Playlist{}, false
}

// Save sends name and tracks to the store.
//
// The cache is not updated; call [PlaylistCache.Refresh] to see the new playlist.
func (c *PlaylistCache) Save(ctx context.Context, name string, tracks []models.Track) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return &ValidationError{Err: shared.ErrEmptyName}
	}
	if len(tracks) == 0 {
		return &ValidationError{Err: shared.ErrNoTracks}
	}
	return c.store.SavePlaylist(ctx, name, tracks)
}

// SetAnalysis records the result of an analysis and the files it came from.
func (c *PlaylistCache) SetAnalysis(tracks []models.Track, files []models.FileHandle) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tracks = tracks
	c.files = files
}

// Analysis returns the last analysed tracks and files.
func (c *PlaylistCache) Analysis() ([]models.Track, []models.FileHandle) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	tracks := make([]models.Track, len(c.tracks))
	copy(tracks, c.tracks)
	return tracks, cloneFiles(c.files)
}

// Reset forgets everything, as after a logout.
func (c *PlaylistCache) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.playlists = nil
	c.tracks = nil
	c.files = nil
}
