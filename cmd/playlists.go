package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/desertthunder/moodcrowd/internal/formatter"
	"github.com/desertthunder/moodcrowd/internal/models"
	"github.com/desertthunder/moodcrowd/internal/repositories"
	"github.com/desertthunder/moodcrowd/internal/session"
	"github.com/desertthunder/moodcrowd/internal/shared"
	"github.com/urfave/cli/v3"
)

// fetchPlaylists refreshes app's playlist cache, probing the session first when listing needs a login.
func (r *Runner) fetchPlaylists(ctx context.Context, app *session.App) ([]models.Playlist, error) {
	if r.config.Behavior.RequireAuthForSave {
		app.Start(ctx)
	}
	return app.ShowPlaylists(ctx)
}

// findPlaylist fetches the list and looks up the id given as the first argument.
func (r *Runner) findPlaylist(ctx context.Context, app *session.App, cmd *cli.Command) (models.Playlist, error) {
	raw := cmd.StringArg("id")
	if strings.TrimSpace(raw) == "" {
		return models.Playlist{}, fmt.Errorf("%w: playlist id", shared.ErrMissingArgument)
	}
	if _, err := r.fetchPlaylists(ctx, app); err != nil {
		return models.Playlist{}, err
	}
	return app.ViewPlaylist(models.ParsePlaylistID(raw))
}

func (r *Runner) localStore() (*repositories.LocalPlaylistStore, error) {
	local, ok := r.store.(*repositories.LocalPlaylistStore)
	if !ok {
		return nil, fmt.Errorf("%w: only available with storage.mode = %q", shared.ErrInvalidConfig, shared.StorageLocal)
	}
	return local, nil
}

// PlaylistsList prints the saved playlists.
func (r *Runner) PlaylistsList(ctx context.Context, cmd *cli.Command) error {
	playlists, err := r.fetchPlaylists(ctx, r.newApp(nil, nil))
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(playlists, cmd.Bool("pretty"))
	}

	if len(playlists) == 0 {
		return r.writePlain("You have no saved playlists.\n")
	}

	r.writePlain("Found %d playlists:\n\n", len(playlists))
	for i, p := range playlists {
		r.writePlain("%d. %s\n", i+1, p.Name)
		r.writePlain("   ID: %s\n", p.ID)
		r.writePlain("   %s\n\n", formatter.Summary(p))
	}
	return nil
}

// PlaylistsView prints one playlist's tracks.
func (r *Runner) PlaylistsView(ctx context.Context, cmd *cli.Command) error {
	pl, err := r.findPlaylist(ctx, r.newApp(nil, nil), cmd)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(pl, cmd.Bool("pretty"))
	}
	r.writePlainHeader(pl.Name)
	r.writePlain("%s\n", formatter.Summary(pl))
	return r.writePlain("%s\n", formatter.ResultsTable(pl.Tracks, headerStyle))
}

// PlaylistsSave analyzes files and saves the result under --name.
func (r *Runner) PlaylistsSave(ctx context.Context, cmd *cli.Command) error {
	name := strings.TrimSpace(cmd.String("name"))
	if name == "" {
		return fmt.Errorf("%w: --name", shared.ErrEmptyName)
	}
	paths, err := pathArgs(cmd)
	if err != nil {
		return err
	}

	app := r.newApp(nil, nil)
	if r.config.Behavior.RequireAuthForSave {
		app.Start(ctx)
		if !app.Authenticated() {
			return shared.ErrNotAuthenticated
		}
	}

	tracks, err := r.analyzeSelection(ctx, app, paths)
	if err != nil {
		return err
	}
	if err := app.SavePlaylist(ctx, name); err != nil {
		return err
	}

	r.writePlain("✓ Saved %q\n", name)
	r.writePlain("  Tracks: %d\n", len(tracks))
	return nil
}

// PlaylistsExport writes one playlist to a file.
func (r *Runner) PlaylistsExport(ctx context.Context, cmd *cli.Command) error {
	pl, err := r.findPlaylist(ctx, r.newApp(nil, nil), cmd)
	if err != nil {
		return err
	}

	path, err := formatter.WriteExport(pl, cmd.String("format"), cmd.String("output"))
	if err != nil {
		return err
	}

	r.logger.Info("playlist exported", "id", pl.ID, "path", path)
	r.writePlain("✓ Playlist exported to %s\n", path)
	r.writePlain("  Playlist: %s\n", pl.Name)
	r.writePlain("  Tracks: %d\n", len(pl.Tracks))
	return nil
}

// PlaylistsDelete removes a playlist from the local store.
func (r *Runner) PlaylistsDelete(ctx context.Context, cmd *cli.Command) error {
	local, err := r.localStore()
	if err != nil {
		return err
	}
	raw := cmd.StringArg("id")
	if strings.TrimSpace(raw) == "" {
		return fmt.Errorf("%w: playlist id", shared.ErrMissingArgument)
	}

	id := models.ParsePlaylistID(raw)
	if err := local.DeletePlaylist(ctx, id); err != nil {
		return err
	}
	return r.writePlain("✓ Deleted playlist %s\n", id)
}

// PlaylistsClear removes every playlist from the local store.
func (r *Runner) PlaylistsClear(ctx context.Context, cmd *cli.Command) error {
	local, err := r.localStore()
	if err != nil {
		return err
	}
	if err := local.Clear(ctx); err != nil {
		return err
	}
	return r.writePlain("✓ Local playlists cleared\n")
}
