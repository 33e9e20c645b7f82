// Command flatintern is the CLI front end for the flat-file interning
// parser: one-shot parse, a watch mode that reparses changed files, and an
// MCP tool server, plus config show/init — following the teacher's
// urfave/cli app shape, scaled down to four subcommands instead of its dozen.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/urfave/cli/v2"

	"github.com/standardbeagle/flatintern/internal/cache"
	"github.com/standardbeagle/flatintern/internal/config"
	"github.com/standardbeagle/flatintern/internal/idcodec"
	"github.com/standardbeagle/flatintern/internal/mcp"
	"github.com/standardbeagle/flatintern/internal/metrics"
	"github.com/standardbeagle/flatintern/internal/tokenizer"
	"github.com/standardbeagle/flatintern/internal/watch"
	"github.com/standardbeagle/flatintern/internal/wire"
)

// Version is overridden at build time via -ldflags.
var Version = "0.1.0-dev"

func main() {
	app := &cli.App{
		Name:                   "flatintern",
		Usage:                  "Streaming flat-file tokenizer with interning",
		Version:                Version,
		UseShortOptionHandling: true,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "root",
				Aliases: []string{"r"},
				Usage:   "Project root to load .flatintern.kdl/.flatintern.toml from",
				Value:   ".",
			},
		},
		Commands: []*cli.Command{
			parseCommand(),
			watchCommand(),
			serveMCPCommand(),
			configCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "flatintern:", err)
		os.Exit(1)
	}
}

func loadConfig(c *cli.Context) (config.Config, error) {
	root := c.String("root")
	return config.Load(root)
}

func parseCommand() *cli.Command {
	return &cli.Command{
		Name:      "parse",
		Usage:     "Parse a flat file and report its shape",
		ArgsUsage: "<file>",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "json", Aliases: []string{"j"}, Usage: "Print stats as JSON"},
			&cli.StringFlag{Name: "wire-out", Usage: "Write the parsed matrix in wire format to this path"},
			&cli.IntFlag{Name: "max-lines", Usage: "Override configured max line count (0 = use config)"},
			&cli.IntFlag{Name: "max-cells", Usage: "Override configured max cell count (0 = use config)"},
		},
		Action: parseAction,
	}
}

func parseAction(c *cli.Context) error {
	if c.Args().Len() != 1 {
		return fmt.Errorf("parse requires exactly one file argument")
	}
	path := c.Args().First()

	cfg, err := loadConfig(c)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	tcfg := cfg.Tokenizer()
	if n := c.Int("max-lines"); n > 0 {
		tcfg.MaxLineCount = n
	}
	if n := c.Int("max-cells"); n > 0 {
		tcfg.MaxCellCount = n
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	m, shape, err := tokenizer.ParseWithShape(f, tcfg)
	if err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}

	stats := metrics.FromMatrix(m).WithTrieShape(shape.NodeCount, shape.ArenaWords)

	if c.Bool("json") {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(stats); err != nil {
			return fmt.Errorf("encoding stats: %w", err)
		}
	} else {
		fmt.Printf("%s: %d columns, %d lines (%d content), %d cells, %d distinct (%.2fx), separator=%q\n",
			path, stats.Columns, stats.Lines, stats.ContentLines, stats.CellCount,
			stats.DistinctContentCount, stats.CompressionRatio, m.Diagnostics.Separator)
		if stats.Truncated {
			fmt.Println("  truncated: cell cap reached before end of input")
		}
		if stats.UnexpectedCellCount > 0 {
			fmt.Printf("  %d unexpected cell(s) beyond the header width:\n", stats.UnexpectedCellCount)
			for _, uc := range m.Diagnostics.UnexpectedCells {
				fmt.Printf("    %s\n", idcodec.CellTag(uc.Line, uc.Column, uc.ID))
			}
		}
	}

	if out := c.String("wire-out"); out != "" {
		wf, err := os.Create(out)
		if err != nil {
			return fmt.Errorf("creating %s: %w", out, err)
		}
		defer wf.Close()
		if err := wire.Marshal(wf, m); err != nil {
			return fmt.Errorf("writing wire format to %s: %w", out, err)
		}
	}

	return nil
}

func watchCommand() *cli.Command {
	return &cli.Command{
		Name:      "watch",
		Usage:     "Watch a directory and reparse flat files as they change",
		ArgsUsage: "[dir]",
		Action:    watchAction,
	}
}

func watchAction(c *cli.Context) error {
	root := c.Args().First()
	if root == "" {
		root = c.String("root")
	}
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return fmt.Errorf("resolving root %q: %w", root, err)
	}

	cfg, err := config.Load(absRoot)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	parseCache := cache.New(cache.DefaultConfig())
	defer parseCache.Close()

	onEvent := func(ev watch.Event) {
		if ev.Type == watch.Removed {
			parseCache.Invalidate(ev.Path)
			fmt.Printf("removed: %s\n", ev.Path)
			return
		}

		content, err := os.ReadFile(ev.Path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "watch: reading %s: %v\n", ev.Path, err)
			return
		}
		hash := cache.HashContent(content)
		m, ok := parseCache.Get(ev.Path, hash)
		if !ok {
			m, err = tokenizer.Parse(bytes.NewReader(content), cfg.Tokenizer())
			if err != nil {
				fmt.Fprintf(os.Stderr, "watch: parsing %s: %v\n", ev.Path, err)
				return
			}
			parseCache.Put(ev.Path, hash, m)
		}
		stats := metrics.FromMatrix(m)
		fmt.Printf("changed: %s: %d columns, %d lines, %d distinct cells\n",
			ev.Path, stats.Columns, stats.Lines, stats.DistinctContentCount)
		for _, uc := range m.Diagnostics.UnexpectedCells {
			fmt.Printf("  unexpected cell %s\n", idcodec.CellTag(uc.Line, uc.Column, uc.ID))
		}
	}

	w, err := watch.New(absRoot, cfg, onEvent)
	if err != nil {
		return fmt.Errorf("starting watcher: %w", err)
	}
	if err := w.Start(); err != nil {
		return fmt.Errorf("starting watcher: %w", err)
	}

	fmt.Printf("watching %s (patterns: %v)\n", absRoot, cfg.Include)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	<-ctx.Done()

	return w.Stop()
}

func serveMCPCommand() *cli.Command {
	return &cli.Command{
		Name:   "serve-mcp",
		Usage:  "Start the MCP tool server over stdio",
		Action: serveMCPAction,
	}
}

func serveMCPAction(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	server := mcp.NewServer(cfg)
	defer server.Close()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	return server.Start(ctx)
}

func configCommand() *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "Inspect or initialize project configuration",
		Subcommands: []*cli.Command{
			{
				Name:  "show",
				Usage: "Print the effective configuration as JSON",
				Action: func(c *cli.Context) error {
					cfg, err := loadConfig(c)
					if err != nil {
						return fmt.Errorf("loading config: %w", err)
					}
					enc := json.NewEncoder(os.Stdout)
					enc.SetIndent("", "  ")
					return enc.Encode(cfg)
				},
			},
			{
				Name:  "init",
				Usage: "Write a default .flatintern.kdl in the project root",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "force", Usage: "Overwrite an existing config file"},
				},
				Action: configInitAction,
			},
		},
	}
}

func configInitAction(c *cli.Context) error {
	root := c.String("root")
	path := filepath.Join(root, ".flatintern.kdl")

	if !c.Bool("force") {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%s already exists (use --force to overwrite)", path)
		}
	}

	dc := config.Default()
	content := fmt.Sprintf(`max_line_count %d
max_cell_count %d
read_buffer_size %d
include "**/*.tsv" "**/*.csv"
`, dc.MaxLineCount, dc.MaxCellCount, dc.ReadBufferSize)

	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	fmt.Printf("configuration written to %s\n", path)
	return nil
}
