// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, authCommand, browseCommand, mangaCommand, tagsCommand, libraryCommand, cacheCommand, tuiCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// setupCommand handles setup operations for configuration and the local cache.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Setup and configuration commands",
		Commands: []*cli.Command{
			{
				Name:  "database",
				Usage: "Initialize the local cache database and run migrations",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "config",
						Aliases: []string{"c"},
						Usage:   "Path to configuration file",
						Value:   "config.toml",
					},
				},
				Action: r.SetupDatabase,
			},
		},
	}
}

// authCommand handles account and session operations
func authCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Manage authentication",
		Commands: []*cli.Command{
			{
				Name:  "register",
				Usage: "Create an account and sign in",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "username",
						Aliases:  []string{"u"},
						Usage:    "Account username",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "email",
						Aliases:  []string{"e"},
						Usage:    "Account email",
						Required: true,
					},
				},
				Action: r.AuthRegister,
			},
			{
				Name:  "login",
				Usage: "Sign in with email and password",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "email",
						Aliases:  []string{"e"},
						Usage:    "Account email",
						Required: true,
					},
				},
				Action: r.AuthLogin,
			},
			{
				Name:   "logout",
				Usage:  "Discard the stored session token",
				Action: r.AuthLogout,
			},
			{
				Name:  "whoami",
				Usage: "Show the signed-in account",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.AuthWhoami,
			},
		},
	}
}

// browseCommand searches the catalogue
func browseCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "browse",
		Aliases: []string{"search"},
		Usage:   "Search and page through the catalogue",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "search",
				Aliases: []string{"s"},
				Usage:   "Title search term",
			},
			&cli.StringSliceFlag{
				Name:    "tag",
				Aliases: []string{"t"},
				Usage:   "Filter by tag (repeatable)",
			},
			&cli.FloatFlag{
				Name:  "rating",
				Usage: "Minimum rating (0, 3, 4 or 4.5)",
			},
			&cli.StringFlag{
				Name:  "sort",
				Usage: "Sort order: popular, rating, newest or title",
				Value: "popular",
			},
			&cli.IntFlag{
				Name:    "page",
				Aliases: []string{"p"},
				Usage:   "Result page",
				Value:   1,
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
			&cli.BoolFlag{
				Name:  "cache",
				Usage: "Store fetched entries in the local cache",
			},
		},
		Action: r.Browse,
	}
}

// mangaCommand shows a single catalogue entry
func mangaCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "manga",
		Usage: "Catalogue entry operations",
		Commands: []*cli.Command{
			{
				Name:  "show",
				Usage: "Show a catalogue entry with its reviews",
				Arguments: []cli.Argument{
					&cli.IntArg{Name: "id"},
				},
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.MangaShow,
			},
			{
				Name:  "review",
				Usage: "Post a review for a catalogue entry",
				Arguments: []cli.Argument{
					&cli.IntArg{Name: "id"},
				},
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "content",
						Aliases:  []string{"m"},
						Usage:    "Review text",
						Required: true,
					},
					&cli.FloatFlag{
						Name:     "rating",
						Usage:    "Rating between 0 and 5",
						Required: true,
					},
				},
				Action: r.MangaReview,
			},
		},
	}
}

// tagsCommand lists the catalogue's tags
func tagsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "tags",
		Usage: "List catalogue tags",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
		},
		Action: r.TagsList,
	}
}

// libraryCommand handles the user's tracked entries
func libraryCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "library",
		Aliases: []string{"lib"},
		Usage:   "Manage your library",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List tracked entries grouped by reading status",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "status",
						Usage: "Only show entries with this status",
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.LibraryList,
			},
			{
				Name:  "add",
				Usage: "Track a catalogue entry",
				Arguments: []cli.Argument{
					&cli.IntArg{Name: "id"},
				},
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "status",
						Usage: "Initial reading status",
						Value: "plan-to-read",
					},
				},
				Action: r.LibraryAdd,
			},
			{
				Name:  "set",
				Usage: "Change the reading status of a tracked entry",
				Arguments: []cli.Argument{
					&cli.IntArg{Name: "id"},
				},
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "status",
						Usage:    "New reading status",
						Required: true,
					},
				},
				Action: r.LibrarySet,
			},
			{
				Name:    "rm",
				Aliases: []string{"remove"},
				Usage:   "Stop tracking an entry",
				Arguments: []cli.Argument{
					&cli.IntArg{Name: "id"},
				},
				Action: r.LibraryRemove,
			},
			{
				Name:   "sync",
				Usage:  "Refresh the local cache from the catalogue service",
				Action: r.LibrarySync,
			},
			{
				Name:  "export",
				Usage: "Export the library with rate-limited detail fetches",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Usage:   "Export format: json, csv, markdown or txt",
						Value:   "json",
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Output directory",
					},
					&cli.IntFlag{
						Name:  "workers",
						Usage: "Concurrent fetch workers",
					},
					&cli.FloatFlag{
						Name:  "rate",
						Usage: "Requests per second",
					},
					&cli.BoolFlag{
						Name:  "covers",
						Usage: "Download cover images",
					},
				},
				Action: r.LibraryExport,
			},
		},
	}
}

// cacheCommand inspects the local catalogue cache
func cacheCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "cache",
		Usage: "Inspect the local catalogue cache",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List cached catalogue entries",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "title",
						Usage: "Filter by title substring",
					},
					&cli.StringFlag{
						Name:  "tag",
						Usage: "Filter by tag",
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.CacheList,
			},
			{
				Name:   "purge",
				Usage:  "Remove all cached catalogue entries",
				Action: r.CachePurge,
			},
		},
	}
}

// tuiCommand returns the top-level TUI command for interactive browsing.
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "tui",
		Aliases: []string{"interactive", "ui"},
		Usage:   "Launch interactive TUI for catalogue browsing",
		Action:  r.TUI,
	}
}
