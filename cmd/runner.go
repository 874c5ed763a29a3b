package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/moodcrowd/internal/media"
	"github.com/desertthunder/moodcrowd/internal/prefs"
	"github.com/desertthunder/moodcrowd/internal/services"
	"github.com/desertthunder/moodcrowd/internal/session"
	"github.com/desertthunder/moodcrowd/internal/shared"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config     *shared.Config
	configPath string
	client     *services.APIClient
	store      session.Store
	media      session.Media
	prefsPath  string
	logger     *log.Logger
	output     io.Writer
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config     *shared.Config
	ConfigPath string
	Client     *services.APIClient
	Store      session.Store // defaults to Client
	Media      session.Media
	PrefsPath  string
	Logger     *log.Logger
	Output     io.Writer
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.ConfigPath == "" {
		opts.ConfigPath = defaultConfigPath
	}
	if opts.PrefsPath == "" {
		opts.PrefsPath = prefs.DefaultPath
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.Client == nil {
		client, err := services.NewAPIClient(services.OptionsFromConfig(opts.Config.API, opts.Logger))
		if err != nil {
			opts.Logger.Warn("invalid api settings, using defaults", "error", err)
			client, _ = services.NewAPIClient(services.ClientOptions{Logger: opts.Logger})
		}
		opts.Client = client
	}
	if opts.Store == nil {
		opts.Store = opts.Client
	}
	if opts.Media == nil {
		opts.Media = media.NewSpeaker(opts.Logger)
	}

	return &Runner{
		config:     opts.Config,
		configPath: opts.ConfigPath,
		client:     opts.Client,
		store:      opts.Store,
		media:      opts.Media,
		prefsPath:  opts.PrefsPath,
		logger:     opts.Logger,
		output:     opts.Output,
	}
}

// SetLogger replaces the logger used by the runner, its API client and the speaker.
func (r *Runner) SetLogger(l *log.Logger) {
	r.logger = l
	r.client.SetLogger(l)
	if m, ok := r.media.(interface{ SetLogger(*log.Logger) }); ok {
		m.SetLogger(l)
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, authCommand, analyzeCommand, scanCommand, filesCommand, playlistsCommand, playCommand, apiCommand, tuiCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// newApp wires a session for one command. notifier and onPlayback may be nil.
func (r *Runner) newApp(notifier session.Notifier, onPlayback func(session.PlaybackEvent)) *session.App {
	return session.NewApp(session.Options{
		Auth:               r.client,
		Analyzer:           r.client,
		Store:              r.store,
		Media:              r.media,
		Notifier:           notifier,
		Logger:             r.logger,
		RequireAuth:        r.config.Behavior.RequireAuthForSave,
		CaseInsensitiveExt: r.config.Behavior.CaseInsensitiveExt,
		Autoplay:           r.config.Player.Autoplay,
		OnPlayback:         onPlayback,
	})
}

// saveSession persists the client cookies to the configured session file.
func (r *Runner) saveSession() {
	if r.config.Session.CookieFile == "" {
		return
	}
	if err := r.client.SaveSession(r.config.Session.CookieFile); err != nil {
		r.logger.Warn("failed to save session", "error", err)
	}
}

// loadPrefs reads the remembered preferences, falling back to defaults.
func (r *Runner) loadPrefs() prefs.Prefs {
	p, err := prefs.Load(r.prefsPath)
	if err != nil {
		r.logger.Warn("ignoring preferences", "error", err)
	}
	return p
}

func (r *Runner) updatePrefs(fn func(*prefs.Prefs)) {
	p := r.loadPrefs()
	fn(&p)
	if err := prefs.Save(r.prefsPath, p); err != nil {
		r.logger.Warn("failed to save preferences", "error", err)
	}
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainHeader(title string) {
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("%v\n", title)
	r.writePlain("═══════════════════════════════════════\n")
}
