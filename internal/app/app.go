package app

import (
	"time"

	"github.com/R-M-Tejaswini/slack-leave-app/internal/config"
	"github.com/R-M-Tejaswini/slack-leave-app/internal/shared/connection"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// BuildApp connects the infrastructure and registers every module on
// the router. It returns once the API process is ready to serve.
func BuildApp(router *gin.Engine, cfg config.Config) error {
	logger := zap.L().Named("app")

	gormDB, err := connection.ConnectGORMWithRetry(
		cfg.DBHost, cfg.DBUser, cfg.DBPassword, cfg.DBName, cfg.DBPort, cfg.DBSSLMode, 5,
	)
	if err != nil {
		return err
	}
	logger.Info("database connection established")

	redisClient, err := connection.ConnectRedisWithRetry(cfg.RedisAddr, 5)
	if err != nil {
		return err
	}
	logger.Info("redis connection established")

	return registerModules(router, gormDB, redisClient, cfg, time.Now)
}
