package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"envprobe/internal/classifier"
	"envprobe/internal/config"
	"envprobe/internal/datastore"
	"envprobe/internal/expander"
	"envprobe/internal/jsminer"
	"envprobe/internal/logger"
	"envprobe/internal/models"
	"envprobe/internal/scanner"
	"envprobe/internal/urlhandler"
)

func main() {
	opts := parseFlags()

	if opts.TargetsFile == "" {
		log.Fatalln("[FATAL] -targets argument is required")
	}

	gCfg, err := config.LoadGlobalConfig(opts.ConfigFile)
	if err != nil {
		log.Fatalf("[FATAL] Could not load config: %v", err)
	}

	// Flags take precedence over the config file.
	if opts.Mode != "" {
		gCfg.LogConfig.Mode = opts.Mode
	}
	if opts.JSMode != "" {
		gCfg.MinerConfig.JSMode = opts.JSMode
	}
	if opts.Concurrency > 0 {
		gCfg.ScannerConfig.Concurrency = opts.Concurrency
	}
	if opts.OutputFile != "" {
		gCfg.OutputConfig.OutputFile = opts.OutputFile
	}

	if err := config.ValidateConfig(gCfg); err != nil {
		log.Fatalf("[FATAL] Configuration validation failed: %v", err)
	}

	zLogger, err := logger.New(gCfg.LogConfig)
	if err != nil {
		log.Fatalf("[FATAL] Could not initialize logger: %v", err)
	}

	targetManager := urlhandler.NewTargetManager(zLogger)
	targets, err := targetManager.LoadTargets(opts.TargetsFile)
	if err != nil {
		zLogger.Error().Err(err).Str("file", opts.TargetsFile).Msg("Could not read targets file")
		os.Exit(1)
	}
	if len(targets) == 0 {
		zLogger.Error().Str("file", opts.TargetsFile).Msg("No usable targets in input file")
		os.Exit(1)
	}

	stats := &models.RunStats{}
	store, err := datastore.NewDiscoveryStore(gCfg.OutputConfig, gCfg.LogConfig.Mode, stats, zLogger)
	if err != nil {
		zLogger.Error().Err(err).Msg("Could not open output file")
		os.Exit(1)
	}
	defer store.Close()

	sched, err := scanner.NewSchedulerBuilder(zLogger).
		WithConfig(gCfg.ScannerConfig).
		WithMinerConfig(gCfg.MinerConfig).
		WithScanners(
			classifier.NewRuleClassifier(zLogger),
			jsminer.New(gCfg.MinerConfig, zLogger),
		).
		WithStore(store).
		WithStats(stats).
		Build()
	if err != nil {
		zLogger.Error().Err(err).Msg("Could not build scheduler")
		os.Exit(1)
	}

	// Operator abort stops admitting fetches; in-flight ones drain and
	// every discovery committed so far stays on disk.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigChan
		zLogger.Warn().Str("signal", sig.String()).Msg("Interrupt received, draining in-flight fetches")
		cancel()
	}()

	exp := expander.NewExpander(gCfg.ExpanderConfig)
	if err := sched.Run(ctx, targets, exp); err != nil {
		zLogger.Error().Err(err).Msg("Run aborted on output failure")
		os.Exit(1)
	}

	if gCfg.LogConfig.Mode != logger.ModeQuiet {
		fmt.Printf("[DONE] Saved %d discoveries to %s\n", store.Count(), store.Path())
	}
}
