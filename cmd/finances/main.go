package main

import (
	"context"
	"fmt"
	"log"
	"os/signal"
	"syscall"

	"github.com/Evgen-Mutagen/finances/internal/app"
	"github.com/Evgen-Mutagen/finances/internal/util/logger"
	"go.uber.org/zap"
)

func main() {
	cfg, err := app.NewConfigFromFlags()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	if err := logger.Init(cfg.LogLevel); err != nil {
		panic(fmt.Sprintf("Failed to init logger: %v", err))
	}
	defer logger.Sync()

	application, err := app.New(cfg)
	if err != nil {
		log.Fatalf("Application initialization failed: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := application.Run(ctx); err != nil {
		logger.Log.Fatal("Server stopped with error", zap.Error(err))
	}
}
