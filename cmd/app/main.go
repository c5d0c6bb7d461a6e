package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/mtaverne/corkboard/internal"
	"github.com/mtaverne/corkboard/internal/mcpserver"
	"github.com/mtaverne/corkboard/internal/store"
	"github.com/mtaverne/corkboard/internal/tui"
	pkgconfig "github.com/mtaverne/corkboard/pkg/config"
)

func serve(ctx context.Context, cmd *cli.Command) error {
	configPath := cmd.String("config")

	cfg := internal.NewDefaultConfig()
	if _, err := os.Stat(configPath); err == nil {
		if err := pkgconfig.Load(configPath, cfg); err != nil {
			return fmt.Errorf("failed to parse config: %w", err)
		}
	} else if cmd.IsSet("config") {
		return fmt.Errorf("config file not found: %s", configPath)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	opts := []internal.Option{
		internal.WithConfig(cfg),
	}

	if err := internal.Run(ctx, opts...); err != nil {
		return fmt.Errorf("app run error: %w", err)
	}

	return nil
}

func terminalBoard(ctx context.Context, cmd *cli.Command) error {
	return tui.Run(ctx, tui.Options{
		Server:  cmd.String("server"),
		BoardID: cmd.String("board"),
	})
}

func mcpStdio(ctx context.Context, cmd *cli.Command) error {
	boards, err := store.Open(cmd.String("dsn"))
	if err != nil {
		return fmt.Errorf("init store: %w", err)
	}
	defer boards.Close()

	return mcpserver.New(boards).ServeStdio()
}

func main() {
	cmd := &cli.Command{
		Name:  "corkboard",
		Usage: "Anonymous shareable sticky-note boards with debounced background sync",
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Run the board server",
				Action: serve,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:        "config",
						Aliases:     []string{"c"},
						Usage:       "Path to config file",
						DefaultText: "config/config.yaml",
						Value:       "config/config.yaml",
						Sources:     cli.EnvVars("APP_CONFIG_FILE"),
					},
				},
			},
			{
				Name:   "board",
				Usage:  "Open a board in the terminal client",
				Action: terminalBoard,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "server",
						Aliases: []string{"s"},
						Usage:   "Board server address",
						Value:   "127.0.0.1:8080",
						Sources: cli.EnvVars("CORKBOARD_SERVER"),
					},
					&cli.StringFlag{
						Name:    "board",
						Aliases: []string{"b"},
						Usage:   "Identifier of an existing board to open",
					},
				},
			},
			{
				Name:   "mcp",
				Usage:  "Serve board tools over MCP stdio",
				Action: mcpStdio,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "dsn",
						Usage: "Store DSN (defaults to in-memory)",
					},
				},
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
