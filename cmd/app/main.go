package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/starford/vibeindex/internal"
	"github.com/starford/vibeindex/internal/catalog"
	"github.com/starford/vibeindex/internal/toolservice"
	"github.com/starford/vibeindex/internal/tui"
	pkgconfig "github.com/starford/vibeindex/pkg/config"
)

func loadConfig(cmd *cli.Command) (*internal.Config, error) {
	cfg := internal.NewDefaultConfig()
	if err := pkgconfig.LoadWithDefaults(cmd.String("config"), "", cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if p := cmd.String("catalog"); p != "" {
		cfg.Catalog.Path = p
	}
	return cfg, nil
}

func serve(mode string) cli.ActionFunc {
	return func(ctx context.Context, cmd *cli.Command) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if cmd.Bool("watch") {
			cfg.Catalog.Watch = true
			if err := cfg.Validate(); err != nil {
				return err
			}
		}

		opts := []internal.Option{
			internal.WithConfig(cfg),
			internal.WithMode(mode),
		}

		if err := internal.Run(ctx, opts...); err != nil {
			return fmt.Errorf("app run error: %w", err)
		}

		return nil
	}
}

// openService builds the service for one-shot commands.
func openService(cmd *cli.Command) (*toolservice.Service, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	logger, closer, err := internal.NewLogger(cfg, "")
	if err != nil {
		return nil, err
	}
	defer closer.Close()
	return internal.NewService(cfg, logger)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func searchAction(ctx context.Context, cmd *cli.Command) error {
	query := strings.Join(cmd.Args().Slice(), " ")
	if strings.TrimSpace(query) == "" {
		return fmt.Errorf("search: a query is required")
	}
	svc, err := openService(cmd)
	if err != nil {
		return err
	}
	res, err := svc.Search(ctx, query, cmd.String("category"), int(cmd.Int("limit")))
	if err != nil {
		return err
	}
	if cmd.Bool("json") {
		return writeJSON(cmd.Root().Writer, res)
	}
	_, err = fmt.Fprint(cmd.Root().Writer, tui.Render(res))
	return err
}

func browseAction(ctx context.Context, cmd *cli.Command) error {
	svc, err := openService(cmd)
	if err != nil {
		return err
	}
	res, err := svc.Browse(ctx, cmd.String("category"))
	if err != nil {
		return err
	}
	if cmd.Bool("json") {
		return writeJSON(cmd.Root().Writer, res)
	}
	_, err = fmt.Fprint(cmd.Root().Writer, tui.Render(res))
	return err
}

func categoriesAction(ctx context.Context, cmd *cli.Command) error {
	svc, err := openService(cmd)
	if err != nil {
		return err
	}
	cats, err := svc.Categories(ctx)
	if err != nil {
		return err
	}
	if cmd.Bool("json") {
		return writeJSON(cmd.Root().Writer, cats)
	}
	for _, c := range cats {
		if _, err := fmt.Fprintf(cmd.Root().Writer, "%-45s %3d\n", c.Label, c.Count); err != nil {
			return err
		}
	}
	return nil
}

func categoryFlag() cli.Flag {
	return &cli.StringFlag{
		Name:  "category",
		Usage: "Restrict results to one category",
		Value: catalog.All,
	}
}

func jsonFlag() cli.Flag {
	return &cli.BoolFlag{Name: "json", Usage: "Print results as JSON"}
}

func watchFlag() cli.Flag {
	return &cli.BoolFlag{Name: "watch", Usage: "Reload the catalog file when it changes"}
}

func main() {
	cmd := &cli.Command{
		Name:   "vibeindex",
		Usage:  "Fuzzy search and browse the vibe tools directory",
		Action: serve(internal.ModeTUI),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "Path to config file",
				DefaultText: "config/config.yaml",
				Value:       "config/config.yaml",
				Sources:     cli.EnvVars("APP_CONFIG_FILE"),
			},
			&cli.StringFlag{
				Name:  "catalog",
				Usage: "Path to a catalog YAML document (overrides catalog.path)",
			},
		},
		Commands: []*cli.Command{
			{
				Name:      "search",
				Usage:     "Rank tools matching a query",
				ArgsUsage: "<query>",
				Flags: []cli.Flag{
					categoryFlag(),
					jsonFlag(),
					&cli.IntFlag{Name: "limit", Usage: "Maximum number of results (0 for all)"},
				},
				Action: searchAction,
			},
			{
				Name:   "browse",
				Usage:  "List tools grouped by category",
				Flags:  []cli.Flag{categoryFlag(), jsonFlag()},
				Action: browseAction,
			},
			{
				Name:   "categories",
				Usage:  "List categories with tool counts",
				Flags:  []cli.Flag{jsonFlag()},
				Action: categoriesAction,
			},
			{
				Name:   "tui",
				Usage:  "Interactive directory (default)",
				Flags:  []cli.Flag{watchFlag()},
				Action: serve(internal.ModeTUI),
			},
			{
				Name:   "mcp",
				Usage:  "Serve the directory to MCP clients over stdio",
				Flags:  []cli.Flag{watchFlag()},
				Action: serve(internal.ModeMCP),
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
