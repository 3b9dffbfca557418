package main

import (
	"context"
	"fmt"

	"github.com/google/wire"
	"go.uber.org/zap"

	"github.com/cory-johannsen/blightfall/internal/config"
	"github.com/cory-johannsen/blightfall/internal/game/ability"
	"github.com/cory-johannsen/blightfall/internal/game/balance"
	"github.com/cory-johannsen/blightfall/internal/game/combat"
	"github.com/cory-johannsen/blightfall/internal/game/dice"
	"github.com/cory-johannsen/blightfall/internal/game/effect"
	"github.com/cory-johannsen/blightfall/internal/game/ruleset"
	"github.com/cory-johannsen/blightfall/internal/observability"
	"github.com/cory-johannsen/blightfall/internal/scripting"
	"github.com/cory-johannsen/blightfall/internal/simulation"
	"github.com/cory-johannsen/blightfall/internal/storage/postgres"
)

var providerSet = wire.NewSet(
	provideLogger,
	provideCatalog,
	provideEffects,
	provideRules,
	provideBalance,
	provideScripts,
	provideRegistry,
	provideDetection,
	provideDeps,
	provideSourceFactory,
	combat.NewEngine,
	provideArchiver,
	provideRunner,
)

func provideLogger(cfg config.Config) (*zap.Logger, func(), error) {
	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		return nil, nil, fmt.Errorf("creating logger: %w", err)
	}
	return logger, func() { _ = logger.Sync() }, nil
}

func provideCatalog(cfg config.Config) (*ability.Catalog, error) {
	return ability.LoadDirectory(cfg.Content.AbilitiesDir)
}

func provideEffects(cfg config.Config) (*effect.Registry, error) {
	if cfg.Content.EffectsDir == "" {
		return effect.DefaultRegistry(), nil
	}
	return effect.LoadDirectory(cfg.Content.EffectsDir)
}

func provideRules(cfg config.Config, cat *ability.Catalog) (*ruleset.Rules, error) {
	rules, err := ruleset.Load(cfg.Content.RacesDir, cfg.Content.ClassesDir)
	if err != nil {
		return nil, err
	}
	if err := rules.Validate(cat); err != nil {
		return nil, fmt.Errorf("validating races and classes: %w", err)
	}
	return rules, nil
}

func provideBalance(cfg config.Config) (*balance.Store, error) {
	b := balance.Default()
	if cfg.Content.BalanceFile != "" {
		loaded, err := balance.LoadFile(cfg.Content.BalanceFile)
		if err != nil {
			return nil, err
		}
		b = loaded
	}
	return balance.NewStore(b)
}

func provideScripts(cfg config.Config, logger *zap.Logger) (*scripting.Manager, func(), error) {
	mgr := scripting.NewManager(logger)
	if cfg.Content.ScriptsDir != "" {
		if err := mgr.Load(cfg.Content.ScriptsDir, cfg.Content.ScriptInstructionLimit); err != nil {
			mgr.Close()
			return nil, nil, fmt.Errorf("loading ability scripts: %w", err)
		}
	}
	return mgr, mgr.Close, nil
}

func provideRegistry(cat *ability.Catalog) (*combat.Registry, error) {
	reg := combat.NewRegistry()
	if err := combat.RegisterDefaults(reg, cat); err != nil {
		return nil, err
	}
	return reg, nil
}

// detectionLog reports role detections to the operator log.
type detectionLog struct {
	logger *zap.Logger
}

func (d detectionLog) RoleDetected(detectorID, detectedID string, round int) {
	d.logger.Info("corruption detected",
		zap.String("detector", detectorID),
		zap.String("detected", detectedID),
		zap.Int("round", round),
	)
}

func provideDetection(logger *zap.Logger) combat.DetectionHook {
	return detectionLog{logger: logger}
}

func provideDeps(
	reg *combat.Registry,
	cat *ability.Catalog,
	fx *effect.Registry,
	store *balance.Store,
	scripts *scripting.Manager,
	detection combat.DetectionHook,
	logger *zap.Logger,
) combat.Deps {
	return combat.Deps{
		Registry:  reg,
		Catalog:   cat,
		Effects:   fx,
		Balance:   store,
		Detection: detection,
		Scripts:   scripts,
		Logger:    logger,
	}
}

// provideSourceFactory seeds every room from the configured seed; 0 picks
// an unpredictable source per room.
func provideSourceFactory(cfg config.Config) combat.SourceFactory {
	if seed := cfg.Simulation.Seed; seed != 0 {
		return func() dice.Source { return dice.NewSeededSource(seed) }
	}
	return dice.NewRoomSource
}

func provideArchiver(ctx context.Context, cfg config.Config, logger *zap.Logger) (simulation.Archiver, func(), error) {
	if !cfg.Archive.Enabled {
		return nil, func() {}, nil
	}
	pool, err := postgres.NewPool(ctx, cfg.Database)
	if err != nil {
		return nil, nil, fmt.Errorf("connecting archive database: %w", err)
	}
	logger.Info("archiving rounds", zap.String("database", cfg.Database.Name))
	return simulation.NewStoreArchiver(pool.RoundLogs()), pool.Close, nil
}

func provideRunner(engine *combat.Engine, rules *ruleset.Rules, archiver simulation.Archiver, cfg config.Config, logger *zap.Logger) *simulation.Runner {
	return simulation.NewRunner(engine, rules, archiver, cfg.Simulation.MaxRounds, logger)
}
