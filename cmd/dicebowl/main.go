// Package main is the entry point for the dicebowl desktop client.
package main

import (
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/Faultbox/dicebowl/internal/config"
	"github.com/Faultbox/dicebowl/internal/game"
	"github.com/Faultbox/dicebowl/internal/logger"
)

func main() {
	// Parse CLI flags first
	config.ParseFlags()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Setup(cfg.Logging); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Log.Info("=== dicebowl ===")
	logger.Sugar.Debugf("Config: %+v", cfg)

	g, err := game.New(cfg)
	if err != nil {
		logger.Log.Error("failed to create game", zap.Error(err))
		os.Exit(1)
	}

	runErr := g.Run()
	if err := g.Close(); err != nil {
		logger.Log.Error("shutdown", zap.Error(err))
	}
	if runErr != nil {
		logger.Log.Error("game error", zap.Error(runErr))
		os.Exit(1)
	}

	logger.Log.Info("game closed normally")
}
