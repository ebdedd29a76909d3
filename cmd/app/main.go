package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/starford/professor/internal"
	pkgconfig "github.com/starford/professor/pkg/config"
)

var errNeedsRegeneration = errors.New("reference list needs regeneration")

func loadConfig(cmd *cli.Command) (*internal.Config, error) {
	configPath := cmd.String("config")

	cfg := internal.NewDefaultConfig()
	if _, err := pkgconfig.LoadOptional(configPath, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}

func serve(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	if err := internal.Run(ctx, internal.WithConfig(cfg)); err != nil {
		return fmt.Errorf("app run error: %w", err)
	}
	return nil
}

func serveMCP(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	return internal.RunMCP(ctx, internal.WithConfig(cfg))
}

func check(ctx context.Context, cmd *cli.Command) error {
	if cmd.Args().Len() != 1 {
		return errors.New("usage: professor check <file.md>")
	}
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	data, err := os.ReadFile(cmd.Args().First())
	if err != nil {
		return fmt.Errorf("read markdown: %w", err)
	}

	report, err := internal.CheckReferences(ctx, string(data), os.Stdout, internal.WithConfig(cfg))
	if err != nil {
		return err
	}
	if cmd.Bool("strict") && report.NeedsRegeneration {
		return fmt.Errorf("%w: %d of %d links valid", errNeedsRegeneration, report.ValidLinks, report.TotalLinks)
	}
	return nil
}

func main() {
	cmd := &cli.Command{
		Name:   "professor",
		Usage:  "Interactive lecture backend with validated reference links",
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
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Run the HTTP API (default)",
				Action: serve,
			},
			{
				Name:   "mcp",
				Usage:  "Serve the reference validation tools over MCP stdio",
				Action: serveMCP,
			},
			{
				Name:      "check",
				Usage:     "Validate the links in a Markdown reference list",
				ArgsUsage: "<file.md>",
				Action:    check,
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "strict",
						Usage: "Exit non-zero when the list should be regenerated",
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
