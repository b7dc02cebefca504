package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"dexlyn-cycle-bot/internal/app"
	"dexlyn-cycle-bot/internal/config"

	"go.uber.org/zap"
)

func main() {
	configDir := flag.String("config-dir", "config", "directory holding the JSON configuration files")
	strategyName := flag.String("strategy", "", "strategy to run (default from config.json)")
	cycles := flag.Int("cycles", 0, "override cycle count (-1 runs until interrupted)")
	strategyFile := flag.String("strategy-file", "", "extra strategy file merged over strategies.json")
	generate := flag.Bool("generate-configs", false, "write default configuration files and exit")
	flag.Parse()

	if err := config.LoadEnv(".env"); err != nil {
		fmt.Fprintf(os.Stderr, "failed to load .env: %v\n", err)
	}

	if *generate {
		written, err := config.WriteDefaults(*configDir)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to write configs: %v\n", err)
			os.Exit(1)
		}
		for _, name := range written {
			fmt.Println("wrote", name)
		}
		return
	}

	log := app.NewLogger(*configDir)
	defer func() { _ = log.Sync() }()

	application, err := app.New(app.Options{
		ConfigDir:    *configDir,
		Strategy:     *strategyName,
		Cycles:       *cycles,
		StrategyFile: *strategyFile,
	}, log)
	if err != nil {
		log.Error("failed to initialize bot", zap.Error(err))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := application.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Error("bot terminated", zap.Error(err))
		os.Exit(1)
	}
}
