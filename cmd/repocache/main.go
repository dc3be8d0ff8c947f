package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/natefinch/atomic"
	flag "github.com/spf13/pflag"

	"repocache/internal/cache"
	"repocache/internal/codec"
	"repocache/internal/config"
	"repocache/internal/fixture"
	"repocache/internal/loader"
	"repocache/internal/repository/sqlite"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		log.Fatalf("repocache: %v", err)
	}
}

// run builds the fixture plan into the store and writes the cache snapshot
func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	flags := flag.NewFlagSet("repocache", flag.ContinueOnError)
	flags.SetOutput(stderr)
	configPath := flags.StringP("config", "c", "", "config file (default: search $REPOCACHE_CONFIG, ./repocache.yaml, XDG, /etc)")
	dbPath := flags.String("db", "", "SQLite database path (overrides config)")
	planPath := flags.StringP("plan", "p", "", "fixture plan file, .yaml or .json (overrides config)")
	format := flags.StringP("format", "f", "", "snapshot format: json or yaml (overrides config)")
	outPath := flags.StringP("out", "o", "", "snapshot file (overrides config; default stdout)")
	seedPath := flags.StringP("from-snapshot", "s", "", "seed the cache from a snapshot of an earlier run against the same database")
	saveConfig := flags.String("save-config", "", "write the effective config to this path and exit")
	verbose := flags.BoolP("verbose", "v", false, "log fixture events")
	if err := flags.Parse(args); err != nil {
		return err
	}

	cfg, path, err := loadConfig(*configPath)
	if err != nil {
		return err
	}
	if *dbPath != "" {
		cfg.Database.Path = *dbPath
	}
	if *planPath != "" {
		cfg.Plan.Path = *planPath
	}
	if *format != "" {
		cfg.Output.Format = *format
	}
	if *outPath != "" {
		cfg.Output.Path = *outPath
	}
	if *verbose {
		cfg.Log.Level = "debug"
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	level, _ := config.ParseLevel(cfg.Log.Level)
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))
	if path != "" {
		logger.Info("config loaded", "path", path)
	}
	logger.Debug("effective config", "summary", cfg.Summary())

	if *saveConfig != "" {
		if err := cfg.Save(*saveConfig); err != nil {
			return fmt.Errorf("save config: %w", err)
		}
		logger.Info("config saved", "path", *saveConfig)
		return nil
	}

	if cfg.Timeout != nil {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Timeout.Duration())
		defer cancel()
	}

	plan, err := loader.Load(cfg.Plan.Path)
	if err != nil {
		return fmt.Errorf("load plan %s: %w", cfg.Plan.Path, err)
	}

	repo, err := sqlite.New(cfg.Database.Path)
	if err != nil {
		return err
	}
	defer repo.Close()

	builder, err := fixture.New(repo, plan.Kinds, fixture.WithLogger(logger))
	if err != nil {
		return err
	}

	base := cache.New()
	if *seedPath != "" {
		if base, err = readSnapshot(*seedPath); err != nil {
			return err
		}
		logger.Info("snapshot restored", "path", *seedPath, "schemas", len(base.Schemas()), "aliases", len(base.Registered()))
	}

	c, err := plan.Apply(ctx, builder, base)
	if err != nil {
		return err
	}

	total := 0
	for _, schema := range c.Schemas() {
		total += len(c.Names(schema))
	}
	logger.Info("fixtures built", "schemas", len(c.Schemas()), "entries", total, "aliases", len(c.Registered()))

	return writeSnapshot(c, cfg.Output, stdout)
}

func loadConfig(path string) (*config.Config, string, error) {
	if path != "" {
		return config.LoadFromPath(path)
	}
	return config.Load()
}

// readSnapshot restores a cache of fixture records from a snapshot file
func readSnapshot(path string) (*cache.Cache, error) {
	importer, err := codec.ForPath(path)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open snapshot: %w", err)
	}
	defer f.Close()

	snap, err := importer.Parse(f)
	if err != nil {
		return nil, fmt.Errorf("read snapshot %s: %w", path, err)
	}
	return snap.Restore(fixture.DecodeRecord)
}

func writeSnapshot(c *cache.Cache, out config.OutputConfig, stdout io.Writer) error {
	exporter, err := codec.ForFormat(out.Format)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := exporter.Export(codec.NewSnapshot(c), &buf); err != nil {
		return err
	}

	if out.Path == "" {
		_, err := stdout.Write(buf.Bytes())
		return err
	}
	if err := atomic.WriteFile(out.Path, &buf); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	return nil
}
