package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/moodcrowd/internal/session"
	"github.com/desertthunder/moodcrowd/internal/shared"
	"github.com/desertthunder/moodcrowd/internal/ui"
	"github.com/urfave/cli/v3"
)

const defaultTUILog = "./tmp/moodcrowd-tui.log"

// TUI launches the interactive terminal UI.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	logFile := r.config.Log.File
	if logFile == "" {
		logFile = defaultTUILog
	}

	// Redirect logs to file to avoid interfering with TUI rendering
	fileLogger, err := shared.NewFileLogger(shared.ExpandHome(logFile))
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	if err := shared.ApplyLogLevel(fileLogger, r.config.Log.Level); err != nil {
		fileLogger.Warn("ignoring log level", "error", err)
	}
	r.SetLogger(fileLogger)

	board := session.NewNoticeBoard(r.config.Behavior.NoticeTTL.Duration)
	events := ui.NewEvents()
	app := r.newApp(session.Notifiers{board, session.LogNotifier{Logger: fileLogger}}, events.Forward)

	model := ui.NewModel(ctx, app, board, events, ui.Options{
		Prefs:     r.loadPrefs(),
		PrefsPath: r.prefsPath,
		Logger:    fileLogger,
		Logout: func() error {
			return r.client.ClearSession(r.config.Session.CookieFile)
		},
	})
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))

	_, err = p.Run()
	if stopErr := app.Stop(); stopErr != nil {
		fileLogger.Warn("failed to stop playback", "error", stopErr)
	}
	if app.Authenticated() {
		r.saveSession()
	}
	if err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}
	return nil
}
