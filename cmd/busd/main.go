// Package main is the entry point for busd, the shared httpbus.Server
// that lets broadcastctl instances on separate machines reach the same
// channels.
package main

import (
	"log"

	"github.com/alkime/broadcast/internal/bus/httpbus"
	"github.com/alkime/broadcast/internal/config"
	"github.com/alkime/broadcast/internal/logger"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	appLogger := logger.SetupLogger(cfg)
	appLogger.Info("starting busd", "env", cfg.Env, "port", cfg.Port)

	srv := httpbus.NewServer(cfg, appLogger)
	if err := httpbus.Run(srv); err != nil {
		appLogger.Error("busd failed", "error", err)
		log.Fatalf("fatal: %v", err)
	}
}
