package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"taskmanager/app/config"
	"taskmanager/app/logs"
	"taskmanager/app/server"
)

func main() {
	cfg, err := config.Load(os.Getenv("TASKMGR_CONFIG"))
	if err != nil {
		log.Fatal("Failed to load configuration:", err)
	}

	logger, closer, err := logs.New(cfg.Log, os.Stderr)
	if err != nil {
		log.Fatal("Failed to initialize logger:", err)
	}
	defer closer.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Open the store and wire the service, controller and route layers
	app, err := server.New(ctx, cfg, logger)
	if err != nil {
		log.Fatal("Failed to start:", err)
	}
	defer app.Close(context.Background())

	if err := app.Run(ctx); err != nil {
		logger.Error("server stopped", "error", err)
	}
}
