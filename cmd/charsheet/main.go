// Package main runs the interactive character sheet console: it loads rules content,
// starts the stat engine dispatcher and reads commands from stdin.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/cory-johannsen/charsheet/internal/config"
	"github.com/cory-johannsen/charsheet/internal/frontend/console"
	"github.com/cory-johannsen/charsheet/internal/game/dice"
	"github.com/cory-johannsen/charsheet/internal/game/inventory"
	"github.com/cory-johannsen/charsheet/internal/game/ruleset"
	"github.com/cory-johannsen/charsheet/internal/game/unit"
	"github.com/cory-johannsen/charsheet/internal/gameserver"
	"github.com/cory-johannsen/charsheet/internal/observability"
	"github.com/cory-johannsen/charsheet/internal/scripting"
	"github.com/cory-johannsen/charsheet/internal/server"
	"github.com/cory-johannsen/charsheet/internal/storage/postgres"
)

func main() {
	start := time.Now()

	configPath := flag.String("config", "configs/dev.yaml", "path to configuration file")
	migrationsDir := flag.String("migrations", "migrations", "migration directory applied at startup when the database is enabled; empty skips migrating")
	color := flag.Bool("color", true, "colorize console output")
	prompt := flag.String("prompt", "> ", "console prompt")
	timeout := flag.Duration("command-timeout", 10*time.Second, "per-command deadline")
	flag.Parse()

	ctx := context.Background()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	var src dice.Source = dice.NewSource()
	if cfg.Engine.Seed != 0 {
		src = dice.NewSeededSource(cfg.Engine.Seed)
	}
	roller := dice.NewRoller(src, logger)
	scripts := scripting.NewManager(roller, logger, cfg.Engine.ScriptInstructionLimit)
	defer scripts.Close()

	// Load rules, items and scripts concurrently.
	contentStart := time.Now()
	var (
		rules *ruleset.Registry
		items = inventory.NewRegistry()
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		rules, err = ruleset.Load(gctx, ruleset.Dirs{
			Races:       cfg.Content.Path(cfg.Content.Races),
			Classes:     cfg.Content.Path(cfg.Content.Classes),
			Backgrounds: cfg.Content.Path(cfg.Content.Backgrounds),
			Enemies:     cfg.Content.Path(cfg.Content.Enemies),
		})
		return err
	})
	g.Go(func() error {
		defs, err := inventory.LoadItems(cfg.Content.Path(cfg.Content.Items))
		if err != nil {
			return err
		}
		for _, d := range defs {
			if err := items.RegisterItem(d); err != nil {
				return err
			}
		}
		return nil
	})
	if dir := cfg.Content.Path(cfg.Content.Scripts); dir != "" {
		g.Go(func() error { return scripts.Load(dir) })
	}
	if err := g.Wait(); err != nil {
		logger.Fatal("loading content", zap.Error(err))
	}
	logger.Info("content loaded",
		zap.Int("items", len(items.AllItems())),
		zap.Int("races", len(rules.RaceIDs())),
		zap.Int("classes", len(rules.ClassIDs())),
		zap.Int("backgrounds", len(rules.BackgroundIDs())),
		zap.Int("enemies", len(rules.EnemyIDs())),
		zap.Duration("elapsed", time.Since(contentStart)),
	)

	// Optional persistence.
	var store gameserver.CharacterStore
	if cfg.Database.Enabled {
		if *migrationsDir != "" {
			version, changed, err := postgres.Migrate(cfg.Database.DSN(), *migrationsDir, 0)
			if err != nil {
				logger.Fatal("migrating database", zap.Error(err))
			}
			logger.Info("database schema ready", zap.Uint("version", version), zap.Bool("migrated", changed))
		}
		dbStart := time.Now()
		pool, err := postgres.NewPool(ctx, cfg.Database)
		if err != nil {
			logger.Fatal("connecting to database", zap.Error(err))
		}
		defer pool.Close()
		logger.Info("database connected",
			zap.String("host", cfg.Database.Host),
			zap.Duration("elapsed", time.Since(dbStart)),
		)
		store = postgres.NewCharacterRepository(pool.DB())
	}

	counter := observability.NewRecomputeCounter(logger)
	engine := unit.NewEngine(logger,
		unit.WithMaxDepth(cfg.Engine.MaxCascadeDepth),
		unit.WithObserver(counter),
	)
	world := gameserver.NewWorld(gameserver.Content{Rules: rules, Items: items}, engine, roller, scripts, logger)
	dispatcher := gameserver.NewDispatcher(world, cfg.Engine.QueueSize, logger)
	svc := gameserver.NewGameService(dispatcher, store, logger)
	repl := console.New(svc, counter, os.Stdin, os.Stdout, console.Options{
		Color:          *color,
		Prompt:         *prompt,
		CommandTimeout: *timeout,
	}, logger)

	lifecycle := server.NewLifecycle(logger)
	lifecycle.Add("dispatcher", dispatcher)
	lifecycle.Add("console", repl)

	logger.Info("charsheet ready",
		zap.Bool("storage", store != nil),
		zap.Duration("startup", time.Since(start)),
	)
	if err := lifecycle.Run(ctx); err != nil {
		logger.Error("charsheet exited with error", zap.Error(err))
		os.Exit(1)
	}
}
