package main

import (
	"log"

	"go.uber.org/zap"

	"github.com/ibrahimkeyboad/agrilink/internal/app"
	"github.com/ibrahimkeyboad/agrilink/internal/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer logger.Sync()

	if err := app.Run(cfg, logger); err != nil {
		logger.Fatal("app", zap.Error(err))
	}
}
