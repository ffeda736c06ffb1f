package main

import (
	"github.com/R-M-Tejaswini/slack-leave-app/internal/app"
	"github.com/R-M-Tejaswini/slack-leave-app/internal/config"
	"github.com/R-M-Tejaswini/slack-leave-app/internal/shared/apperror"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	_ = godotenv.Load()
	logger, err := zap.NewDevelopment()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()
	zap.ReplaceGlobals(logger)

	apperror.Init()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("load config failed", zap.Error(err))
	}

	if err := app.RunWorker(cfg); err != nil {
		logger.Fatal("worker stopped", zap.Error(err))
	}
}
