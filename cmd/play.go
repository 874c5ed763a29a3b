package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"strings"

	"github.com/desertthunder/moodcrowd/internal/models"
	"github.com/desertthunder/moodcrowd/internal/session"
	"github.com/desertthunder/moodcrowd/internal/shared"
	"github.com/urfave/cli/v3"
)

// Play plays a saved playlist (--id) against local files, or analyzes the files and plays them in order.
//
// It blocks until the last track ends or the command is interrupted.
func (r *Runner) Play(ctx context.Context, cmd *cli.Command) error {
	paths, err := pathArgs(cmd)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	events := make(chan session.PlaybackEvent, 16)
	app := r.newApp(nil, func(ev session.PlaybackEvent) {
		select {
		case events <- ev:
		default:
			r.logger.Warn("dropped playback event", "kind", ev.Kind, "index", ev.Index)
		}
	})
	defer app.Stop()

	start := int(cmd.Int("start")) - 1

	var s *session.PlaybackSession
	if id := strings.TrimSpace(cmd.String("id")); id != "" {
		if _, err := r.fetchPlaylists(ctx, app); err != nil {
			return err
		}
		if _, err := app.SelectPaths(paths); err != nil {
			return err
		}
		s, err = app.PlayPlaylistFrom(models.ParsePlaylistID(id), start)
	} else {
		if _, err := r.analyzeSelection(ctx, app, paths); err != nil {
			return err
		}
		s, err = app.PlayAnalysisFrom(start)
	}
	if err != nil {
		return err
	}

	if !r.config.Player.Autoplay {
		if err := app.PlayIndex(start); err != nil && !errors.Is(err, shared.ErrPlaybackRejected) {
			return err
		}
	}

	return r.followPlayback(ctx, app, s, events)
}

// followPlayback prints track changes until the session ends or ctx is done.
// A rejected current track is skipped unless it is the last one; rejections of earlier positions are only printed.
func (r *Runner) followPlayback(ctx context.Context, app *session.App, s *session.PlaybackSession, events <-chan session.PlaybackEvent) error {
	for {
		select {
		case <-ctx.Done():
			r.writePlain("\nStopped.\n")
			return nil
		case ev := <-events:
			switch ev.Kind {
			case session.EventStarted:
				r.writePlain("▶ %d/%d %s\n", ev.Index+1, s.Len(), ev.Entry.Title())
			case session.EventRejected:
				r.writePlain("✗ %s: %v\n", ev.Entry.Title(), ev.Err)
				if ev.Index != s.Index() {
					continue
				}
				if ev.Index >= s.Len()-1 {
					return ev.Err
				}
				if err := app.Next(); err != nil && !errors.Is(err, shared.ErrPlaybackRejected) {
					return err
				}
			case session.EventFinished:
				return r.writePlain("✓ Finished %d tracks\n", s.Len())
			case session.EventClosed:
				return nil
			}
		}
	}
}
