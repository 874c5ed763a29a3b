package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/desertthunder/moodcrowd/internal/models"
	"github.com/desertthunder/moodcrowd/internal/shared"
)

// PlaylistsKey is the kv key holding the saved playlists.
const PlaylistsKey = "moodcrowd.playlists"

// LocalPlaylistStore keeps playlists in the local database instead of the backend.
type LocalPlaylistStore struct {
	kv  *KVStore
	now func() time.Time
}

// NewLocalPlaylistStore creates a LocalPlaylistStore with the given database connection
func NewLocalPlaylistStore(db *sql.DB) *LocalPlaylistStore {
	return &LocalPlaylistStore{kv: NewKVStore(db), now: time.Now}
}

// ListPlaylists returns every saved playlist in save order.
func (s *LocalPlaylistStore) ListPlaylists(ctx context.Context) ([]models.Playlist, error) {
	raw, ok, err := s.kv.Get(ctx, PlaylistsKey)
	if err != nil {
		return nil, err
	}
	if !ok {
		return []models.Playlist{}, nil
	}
	return decodePlaylists(raw)
}

// SavePlaylist appends a playlist with a generated id.
func (s *LocalPlaylistStore) SavePlaylist(ctx context.Context, name string, tracks []models.Track) error {
	pl := models.Playlist{
		ID:        models.PlaylistID(shared.GenerateID()),
		Name:      strings.TrimSpace(name),
		CreatedAt: models.Timestamp{Time: s.now().UTC().Truncate(time.Second)},
		Tracks:    tracks,
	}
	if err := pl.Validate(); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrInvalidInput, err)
	}

	return s.kv.Update(ctx, PlaylistsKey, func(old string, ok bool) (string, error) {
		playlists := []models.Playlist{}
		if ok {
			existing, err := decodePlaylists(old)
			if err != nil {
				return "", err
			}
			playlists = existing
		}
		return encodePlaylists(append(playlists, pl))
	})
}

// DeletePlaylist removes the playlist with id.
func (s *LocalPlaylistStore) DeletePlaylist(ctx context.Context, id models.PlaylistID) error {
	return s.kv.Update(ctx, PlaylistsKey, func(old string, ok bool) (string, error) {
		if !ok {
			return "", fmt.Errorf("%w: %s", shared.ErrPlaylistNotFound, id)
		}
		playlists, err := decodePlaylists(old)
		if err != nil {
			return "", err
		}

		kept := playlists[:0]
		for _, p := range playlists {
			if p.ID != id {
				kept = append(kept, p)
			}
		}
		if len(kept) == len(playlists) {
			return "", fmt.Errorf("%w: %s", shared.ErrPlaylistNotFound, id)
		}
		return encodePlaylists(kept)
	})
}

// Clear removes every saved playlist.
func (s *LocalPlaylistStore) Clear(ctx context.Context) error {
	return s.kv.Delete(ctx, PlaylistsKey)
}

func decodePlaylists(raw string) ([]models.Playlist, error) {
	var playlists []models.Playlist
	if err := json.Unmarshal([]byte(raw), &playlists); err != nil {
		return nil, fmt.Errorf("%w: stored playlists: %v", shared.ErrInvalidInput, err)
	}
	if playlists == nil {
		playlists = []models.Playlist{}
	}
	return playlists, nil
}

func encodePlaylists(playlists []models.Playlist) (string, error) {
	data, err := json.Marshal(playlists)
	if err != nil {
		return "", fmt.Errorf("failed to encode playlists: %w", err)
	}
	return string(data), nil
}
