package main

import (
	"context"
	"net/http"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"wordimposter/internal/config"
	"wordimposter/internal/httpapi"
	"wordimposter/internal/hub"
	"wordimposter/internal/words"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()

	wordList, err := words.Embedded()
	if err != nil {
		logger.Fatal("loading word list", zap.Error(err))
	}

	ctx := context.Background()
	h := hub.NewHub(ctx, wordList, logger)

	handler := httpapi.SetupRoutes(h, cfg, logger)

	logger.Info("listening", zap.String("addr", cfg.Address()))
	if err := http.ListenAndServe(cfg.Address(), handler); err != nil {
		logger.Fatal("server exited", zap.Error(err))
	}
}
