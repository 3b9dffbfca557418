// Package main runs a scripted scenario through the round engine and prints
// the public log followed by each player's private view.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"time"

	"github.com/cory-johannsen/blightfall/internal/config"
	"github.com/cory-johannsen/blightfall/internal/simulation"
)

func main() {
	start := time.Now()

	configPath := flag.String("config", "configs/dev.yaml", "path to configuration file")
	scenarioPath := flag.String("scenario", "content/scenarios/ashfall_crossing.yaml", "path to scenario YAML")
	seed := flag.Uint64("seed", 0, "override simulation.seed (0 = keep configured)")
	archive := flag.Bool("archive", false, "archive every round to PostgreSQL")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}
	if *seed != 0 {
		cfg.Simulation.Seed = *seed
	}
	if *archive {
		cfg.Archive.Enabled = true
		if err := cfg.Validate(); err != nil {
			log.Fatalf("validating config: %v", err)
		}
	}

	scenario, err := simulation.LoadScenario(*scenarioPath)
	if err != nil {
		log.Fatalf("loading scenario: %v", err)
	}

	runner, cleanup, err := initializeRunner(ctx, cfg)
	if err != nil {
		log.Fatalf("initializing: %v", err)
	}
	defer cleanup()

	report, err := runner.Run(ctx, scenario)
	if err != nil {
		log.Printf("scenario stopped early: %v", err)
	}
	if werr := simulation.WriteReport(os.Stdout, scenario, report); werr != nil {
		log.Printf("writing report: %v", werr)
	}
	log.Printf("simulation complete [%s]", time.Since(start))
	if err != nil {
		cleanup()
		os.Exit(1)
	}
}
