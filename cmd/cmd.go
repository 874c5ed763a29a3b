// submodule cmd contains command definitions
package main

import (
	"github.com/desertthunder/moodcrowd/internal/formatter"
	"github.com/urfave/cli/v3"
)

func jsonFlags() []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{
			Name:  "json",
			Usage: "Output raw JSON",
		},
		&cli.BoolFlag{
			Name:  "pretty",
			Usage: "Pretty-print JSON output",
		},
	}
}

func credentialFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "email",
			Aliases: []string{"e"},
			Usage:   "Account email (defaults to the last one used)",
		},
		&cli.StringFlag{
			Name:    "password",
			Aliases: []string{"p"},
			Usage:   "Account password",
			Sources: cli.EnvVars("MOODCROWD_PASSWORD"),
		},
	}
}

func playlistIDArg() []cli.Argument {
	return []cli.Argument{
		&cli.StringArg{Name: "id"},
	}
}

// setupCommand handles configuration and database setup
func setupCommand(r *Runner) *cli.Command {
	configFlag := func() cli.Flag {
		return &cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "Path to configuration file",
			Value:   r.configPath,
		}
	}

	return &cli.Command{
		Name:  "setup",
		Usage: "Setup and configuration commands",
		Commands: []*cli.Command{
			{
				Name:   "config",
				Usage:  "Write an example config.toml",
				Flags:  []cli.Flag{configFlag()},
				Action: r.SetupConfig,
			},
			{
				Name:    "database",
				Aliases: []string{"db"},
				Usage:   "Initialize the local playlist database and run migrations",
				Flags: []cli.Flag{
					configFlag(),
					&cli.BoolFlag{
						Name:  "rollback",
						Usage: "Revert the most recent migration instead",
					},
				},
				Action:  r.SetupDatabase,
			},
		},
	}
}

// authCommand manages the backend session
func authCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Manage authentication",
		Commands: []*cli.Command{
			{
				Name:   "register",
				Usage:  "Create an account",
				Flags:  credentialFlags(),
				Action: r.AuthRegister,
			},
			{
				Name:   "login",
				Usage:  "Log in and save the session cookie",
				Flags:  credentialFlags(),
				Action: r.AuthLogin,
			},
			{
				Name:  "import",
				Usage: "Reuse a browser session copied from DevTools (Copy as cURL)",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "curl",
						Usage: "cURL command from browser DevTools",
					},
					&cli.StringFlag{
						Name:  "curl-file",
						Usage: "Path to .sh file containing cURL command",
					},
				},
				Action: r.AuthImport,
			},
			{
				Name:   "status",
				Usage:  "Check whether the stored session is still valid",
				Flags:  jsonFlags()[:1],
				Action: r.AuthStatus,
			},
			{
				Name:   "logout",
				Usage:  "Forget the stored session",
				Action: r.AuthLogout,
			},
		},
	}
}

// analyzeCommand uploads files to the analyzer
func analyzeCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "analyze",
		Usage:     "Analyze up to 10 MP3 files (files or directories)",
		ArgsUsage: "<path>...",
		Flags:     jsonFlags(),
		Action:    r.Analyze,
	}
}

// scanCommand analyzes a library in batches
func scanCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "scan",
		Usage:     "Analyze any number of MP3 files in batches",
		ArgsUsage: "<path>...",
		Flags: append(jsonFlags(),
			&cli.IntFlag{
				Name:  "batch-size",
				Usage: "Files per upload (at most 10)",
				Value: 10,
			},
			&cli.IntFlag{
				Name:  "workers",
				Usage: "Concurrent uploads (at most 4)",
				Value: 2,
			},
			&cli.IntFlag{
				Name:  "rate",
				Usage: "Uploads per second",
				Value: 1,
			},
		),
		Action: r.Scan,
	}
}

// filesCommand reads local tags
func filesCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "files",
		Usage:     "Show the tags embedded in local MP3 files",
		ArgsUsage: "<path>...",
		Flags:     jsonFlags(),
		Action:    r.Files,
	}
}

// playlistsCommand handles saved playlists
func playlistsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "playlists",
		Aliases: []string{"pl"},
		Usage:   "Saved playlist operations",
		Commands: []*cli.Command{
			{
				Name:    "list",
				Aliases: []string{"ls"},
				Usage:   "List saved playlists",
				Flags:   jsonFlags(),
				Action:  r.PlaylistsList,
			},
			{
				Name:      "view",
				Usage:     "Show a playlist's tracks",
				Arguments: playlistIDArg(),
				Flags:     jsonFlags(),
				Action:    r.PlaylistsView,
			},
			{
				Name:      "save",
				Usage:     "Analyze files and save them as a playlist",
				ArgsUsage: "<path>...",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "name",
						Aliases:  []string{"n"},
						Usage:    "Playlist name",
						Required: true,
					},
				},
				Action: r.PlaylistsSave,
			},
			{
				Name:      "export",
				Usage:     "Export a playlist to a file",
				Arguments: playlistIDArg(),
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Usage:   "csv, markdown, text or json",
						Value:   formatter.FormatCSV,
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Output file path (default: <name>.<ext>)",
					},
				},
				Action: r.PlaylistsExport,
			},
			{
				Name:  "export-all",
				Usage: "Export every playlist into a directory with a manifest",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Usage:   "csv, markdown, text or json",
						Value:   formatter.FormatCSV,
					},
					&cli.StringFlag{
						Name:    "dir",
						Aliases: []string{"d"},
						Usage:   "Output directory (default: moodcrowd_export_<epoch>)",
					},
					&cli.IntFlag{
						Name:  "workers",
						Usage: "Concurrent writers (at most 10)",
						Value: 4,
					},
				},
				Action: r.PlaylistsExportAll,
			},
			{
				Name:      "delete",
				Usage:     "Delete a playlist from the local store",
				Arguments: playlistIDArg(),
				Action:    r.PlaylistsDelete,
			},
			{
				Name:   "clear",
				Usage:  "Delete every playlist from the local store",
				Action: r.PlaylistsClear,
			},
		},
	}
}

// playCommand plays local files
func playCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "play",
		Usage:     "Play a saved playlist from local files, or analyze and play the files",
		ArgsUsage: "<path>...",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "id",
				Usage: "Saved playlist to play; the files must include its tracks",
			},
			&cli.IntFlag{
				Name:  "start",
				Usage: "Track number to start at",
				Value: 1,
			},
		},
		Action: r.Play,
	}
}

// apiCommand makes raw backend calls
func apiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "api",
		Usage: "Direct calls to the backend",
		Commands: []*cli.Command{
			{
				Name:  "get",
				Usage: "GET a backend path with the stored session",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "path",
					},
				},
				Flags:  jsonFlags()[1:],
				Action: r.APIGet,
			},
			{
				Name:  "post",
				Usage: "POST a JSON body to a backend path",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "path",
					},
				},
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "data",
						Aliases:  []string{"d"},
						Usage:    "JSON body to send",
						Required: true,
					},
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print JSON output",
					},
				},
				Action: r.APIPost,
			},
		},
	}
}

// tuiCommand launches the interactive client
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "tui",
		Aliases: []string{"interactive", "ui"},
		Usage:   "Launch the interactive TUI",
		Action:  r.TUI,
	}
}
