// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

// setupCommand handles setup operations for the database and configuration.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Setup and configuration commands",
		Commands: []*cli.Command{
			{
				Name:  "database",
				Usage: "Create the config file if missing, initialize the database and run migrations",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "config",
						Aliases: []string{"c"},
						Usage:   "Path to configuration file",
						Value:   defaultConfigPath,
					},
				},
				Action: r.SetupDatabase,
			},
		},
	}
}

// authCommand handles sign-in state
func authCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Manage the signed-in user",
		Commands: []*cli.Command{
			{
				Name:  "login",
				Usage: "Sign in, creating the user on first login",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "email",
						Aliases:  []string{"e"},
						Usage:    "Email address of the user",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "name",
						Usage: "Display name",
					},
				},
				Action: r.AuthLogin,
			},
			{
				Name:   "logout",
				Usage:  "Sign out",
				Action: r.AuthLogout,
			},
			{
				Name:  "status",
				Usage: "Show the signed-in user",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.AuthStatus,
			},
		},
	}
}

// libraryCommand handles the signed-in user's saved movies
func libraryCommand(r *Runner) *cli.Command {
	genreFlag := func() cli.Flag {
		return &cli.StringFlag{
			Name:    "genre",
			Aliases: []string{"g"},
			Usage:   "Genre id to filter by (see 'library genres')",
			Value:   "all",
		}
	}

	return &cli.Command{
		Name:    "library",
		Aliases: []string{"lib"},
		Usage:   "My library operations",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List saved movies",
				Flags: []cli.Flag{
					genreFlag(),
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print output",
					},
				},
				Action: r.LibraryList,
			},
			{
				Name:  "genres",
				Usage: "List the genres in the library",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.LibraryGenres,
			},
			{
				Name:  "add",
				Usage: "Save a movie to the library",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
				},
				Action: r.LibraryAdd,
			},
			{
				Name:    "remove",
				Aliases: []string{"rm"},
				Usage:   "Remove a movie from the library",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
				},
				Action: r.LibraryRemove,
			},
			{
				Name:  "export",
				Usage: "Export the library to a file",
				Flags: []cli.Flag{
					genreFlag(),
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Usage:   "Output format: json, yaml, csv, markdown or txt",
						Value:   "markdown",
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Output file path, or - for stdout (default: library.<ext>)",
					},
				},
				Action: r.LibraryExport,
			},
		},
	}
}

// cacheCommand handles the local movie detail cache
func cacheCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "cache",
		Usage: "Manage cached movie details",
		Commands: []*cli.Command{
			{
				Name:  "purge",
				Usage: "Delete cached movie details",
				Flags: []cli.Flag{
					&cli.DurationFlag{
						Name:  "older-than",
						Usage: "Only delete entries fetched longer ago than this (0 deletes everything)",
					},
				},
				Action: r.CachePurge,
			},
			{
				Name:  "warm",
				Usage: "Prefetch details for saved movies",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "all",
						Usage: "Warm every user's library instead of the signed-in user's",
					},
					&cli.IntFlag{
						Name:  "workers",
						Usage: "Concurrent fetches (max 10)",
						Value: 5,
					},
					&cli.FloatFlag{
						Name:  "rate",
						Usage: "Fetches queued per second (0 for no extra limit)",
					},
				},
				Action: r.CacheWarm,
			},
		},
	}
}

// tuiCommand launches the interactive library view
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "tui",
		Usage:  "Browse the library in an interactive terminal view",
		Action: r.TUI,
	}
}

// serveCommand serves the library page over HTTP
func serveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Serve the library page over HTTP",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "host",
				Usage: "Host to listen on (default from config)",
			},
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Usage:   "Port to listen on (default from config)",
			},
			&cli.BoolFlag{
				Name:  "open",
				Usage: "Open the library page in the default browser",
			},
		},
		Action: r.Serve,
	}
}

// buildCommand builds the static site
func buildCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "build",
		Usage: "Build the static site, inlining <load src=\"...\"/> partials",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "root",
				Usage: "Site root (default from config)",
			},
			&cli.StringFlag{
				Name:  "out",
				Usage: "Output directory (default from config)",
			},
			&cli.StringFlag{
				Name:  "base",
				Usage: "Public base path (default from config)",
			},
			&cli.BoolFlag{
				Name:  "init",
				Usage: "Write the starter pages into the site root before building",
			},
		},
		Action: r.Build,
	}
}
