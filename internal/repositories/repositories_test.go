package repositories

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/desertthunder/moodcrowd/internal/models"
	"github.com/desertthunder/moodcrowd/internal/shared"
)

// setupTestDB creates an in-memory SQLite database with migrations applied
func setupTestDB(t *testing.T, driver string) *sql.DB {
	t.Helper()

	db, err := shared.NewDatabase(driver, ":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	shared.ConfigureDatabase(db, 1, 1)

	if err := shared.RunMigrations(db); err != nil {
		db.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}

	t.Cleanup(func() { db.Close() })
	return db
}

func TestKVStore(t *testing.T) {
	ctx := context.Background()

	for _, driver := range []string{"sqlite3", "sqlite"} {
		t.Run(driver, func(t *testing.T) {
			kv := NewKVStore(setupTestDB(t, driver))

			t.Run("Missing Key", func(t *testing.T) {
				_, ok, err := kv.Get(ctx, "nope")
				if err != nil || ok {
					t.Errorf("expected missing key, got ok=%v err=%v", ok, err)
				}
			})

			t.Run("Put Overwrites", func(t *testing.T) {
				if err := kv.Put(ctx, "k", "one"); err != nil {
					t.Fatalf("put: %v", err)
				}
				if err := kv.Put(ctx, "k", "two"); err != nil {
					t.Fatalf("put: %v", err)
				}
				v, ok, err := kv.Get(ctx, "k")
				if err != nil || !ok || v != "two" {
					t.Errorf("expected two, got %q %v %v", v, ok, err)
				}
			})

			t.Run("Update", func(t *testing.T) {
				err := kv.Update(ctx, "counter", func(old string, ok bool) (string, error) {
					if ok {
						t.Error("expected no previous value")
					}
					return "1", nil
				})
				if err != nil {
					t.Fatalf("update: %v", err)
				}

				err = kv.Update(ctx, "counter", func(old string, ok bool) (string, error) {
					return old + "1", nil
				})
				if err != nil {
					t.Fatalf("update: %v", err)
				}
				if v, _, _ := kv.Get(ctx, "counter"); v != "11" {
					t.Errorf("expected 11, got %q", v)
				}
			})

			t.Run("Update Error Rolls Back", func(t *testing.T) {
				boom := errors.New("boom")
				err := kv.Update(ctx, "k", func(string, bool) (string, error) { return "", boom })
				if !errors.Is(err, boom) {
					t.Fatalf("expected boom, got %v", err)
				}
				if v, _, _ := kv.Get(ctx, "k"); v != "two" {
					t.Errorf("value changed by failed update: %q", v)
				}
			})

			t.Run("Delete", func(t *testing.T) {
				if err := kv.Delete(ctx, "k"); err != nil {
					t.Fatalf("delete: %v", err)
				}
				if _, ok, _ := kv.Get(ctx, "k"); ok {
					t.Error("expected key removed")
				}
				if err := kv.Delete(ctx, "k"); err != nil {
					t.Errorf("deleting a missing key: %v", err)
				}
			})
		})
	}
}

func TestLocalPlaylistStore(t *testing.T) {
	ctx := context.Background()
	tracks := []models.Track{
		{Filename: "a.mp3", Title: models.Ptr("A"), BPM: models.Ptr(120.0)},
		{Filename: "b.mp3"},
	}

	t.Run("Empty", func(t *testing.T) {
		store := NewLocalPlaylistStore(setupTestDB(t, "sqlite3"))
		playlists, err := store.ListPlaylists(ctx)
		if err != nil || playlists == nil || len(playlists) != 0 {
			t.Errorf("expected empty list, got %v %v", playlists, err)
		}
	})

	t.Run("Save Appends", func(t *testing.T) {
		store := NewLocalPlaylistStore(setupTestDB(t, "sqlite"))
		fixed := time.Date(2024, 3, 1, 18, 30, 0, 500, time.UTC)
		store.now = func() time.Time { return fixed }

		if err := store.SavePlaylist(ctx, " Party ", tracks); err != nil {
			t.Fatalf("save: %v", err)
		}
		if err := store.SavePlaylist(ctx, "Chill", tracks[:1]); err != nil {
			t.Fatalf("save: %v", err)
		}

		playlists, err := store.ListPlaylists(ctx)
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		if len(playlists) != 2 || playlists[0].Name != "Party" || playlists[1].Name != "Chill" {
			t.Fatalf("unexpected playlists %+v", playlists)
		}
		if playlists[0].ID == "" || playlists[0].ID == playlists[1].ID {
			t.Error("expected distinct generated ids")
		}
		if !playlists[0].CreatedAt.Equal(fixed.Truncate(time.Second)) {
			t.Errorf("unexpected created_at %v", playlists[0].CreatedAt)
		}
		got := playlists[0].Tracks
		if len(got) != 2 || got[0].BPMValue() != 120 || got[1].Title != nil {
			t.Errorf("tracks not preserved: %+v", got)
		}
	})

	t.Run("Rejects Blank Name", func(t *testing.T) {
		store := NewLocalPlaylistStore(setupTestDB(t, "sqlite3"))
		if err := store.SavePlaylist(ctx, " ", tracks); !errors.Is(err, shared.ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput, got %v", err)
		}
	})

	t.Run("Corrupt Payload", func(t *testing.T) {
		db := setupTestDB(t, "sqlite3")
		NewKVStore(db).Put(ctx, PlaylistsKey, "{not json")
		store := NewLocalPlaylistStore(db)

		if _, err := store.ListPlaylists(ctx); !errors.Is(err, shared.ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput, got %v", err)
		}
		if err := store.SavePlaylist(ctx, "Party", tracks); err == nil {
			t.Error("expected save to refuse to overwrite a corrupt payload")
		}
	})

	t.Run("Delete And Clear", func(t *testing.T) {
		store := NewLocalPlaylistStore(setupTestDB(t, "sqlite3"))
		store.SavePlaylist(ctx, "One", tracks)
		store.SavePlaylist(ctx, "Two", tracks)
		playlists, _ := store.ListPlaylists(ctx)

		if err := store.DeletePlaylist(ctx, playlists[0].ID); err != nil {
			t.Fatalf("delete: %v", err)
		}
		if err := store.DeletePlaylist(ctx, "missing"); !errors.Is(err, shared.ErrPlaylistNotFound) {
			t.Errorf("expected ErrPlaylistNotFound, got %v", err)
		}
		remaining, _ := store.ListPlaylists(ctx)
		if len(remaining) != 1 || remaining[0].Name != "Two" {
			t.Errorf("unexpected playlists %+v", remaining)
		}

		if err := store.Clear(ctx); err != nil {
			t.Fatalf("clear: %v", err)
		}
		if remaining, _ := store.ListPlaylists(ctx); len(remaining) != 0 {
			t.Error("expected no playlists after clear")
		}
	})

	t.Run("Concurrent Saves", func(t *testing.T) {
		store := NewLocalPlaylistStore(setupTestDB(t, "sqlite3"))

		var wg sync.WaitGroup
		for i := 0; i < 8; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if err := store.SavePlaylist(ctx, "P", tracks); err != nil {
					t.Errorf("save: %v", err)
				}
			}()
		}
		wg.Wait()

		playlists, _ := store.ListPlaylists(ctx)
		if len(playlists) != 8 {
			t.Errorf("expected 8 playlists, got %d", len(playlists))
		}
	})
}
