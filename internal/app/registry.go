package app

import (
	"time"

	"github.com/R-M-Tejaswini/slack-leave-app/internal/auth"
	"github.com/R-M-Tejaswini/slack-leave-app/internal/config"
	"github.com/R-M-Tejaswini/slack-leave-app/internal/employee"
	"github.com/R-M-Tejaswini/slack-leave-app/internal/holiday"
	"github.com/R-M-Tejaswini/slack-leave-app/internal/leave"
	"github.com/R-M-Tejaswini/slack-leave-app/internal/leavetype"
	"github.com/R-M-Tejaswini/slack-leave-app/internal/messaging/kafka"
	"github.com/R-M-Tejaswini/slack-leave-app/internal/middleware"
	"github.com/R-M-Tejaswini/slack-leave-app/internal/notify"
	"github.com/R-M-Tejaswini/slack-leave-app/internal/scheduler"
	"github.com/R-M-Tejaswini/slack-leave-app/internal/slackapp"
	"github.com/R-M-Tejaswini/slack-leave-app/internal/team"
	"github.com/R-M-Tejaswini/slack-leave-app/internal/webhook"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func registerModules(
	router *gin.Engine,
	gormDB *gorm.DB,
	rdb *redis.Client,
	cfg config.Config,
	now func() time.Time,
) error {
	logger := zap.L()

	// --- Repositories ---
	authRepo := auth.NewRepository(gormDB)
	teamRepo := team.NewRepository(gormDB)
	employeeRepo := employee.NewRepository(gormDB)
	leaveTypeRepo := leavetype.NewRepository(gormDB)
	holidayRepo := holiday.NewRepository(gormDB)
	leaveRepo := leave.NewRepository(gormDB)
	outboxRepo := kafka.NewOutboxRepository(gormDB)

	// --- Services ---
	catalog := leavetype.NewCatalog(leaveTypeRepo, rdb)
	validator := leave.NewValidator(cfg.Leave, now)

	authService := auth.NewService(authRepo, cfg.JWTSecret)
	teamService := team.NewService(gormDB, teamRepo)
	employeeService := employee.NewService(gormDB, employeeRepo)
	leaveTypeService := leavetype.NewService(gormDB, leaveTypeRepo, catalog)
	holidayService := holiday.NewService(holidayRepo)
	leaveService := leave.NewService(gormDB, leaveRepo, leaveTypeRepo, holidayRepo, outboxRepo, validator, cfg.Leave)

	// --- Slack surface ---
	slackClient := slackapp.NewClient(cfg.Slack.BotToken)
	jobStore := scheduler.NewStore(gormDB, now)
	notifier := notify.NewNotifier(slackClient, leaveService, jobStore, cfg.Slack, cfg.Leave.ReminderDelay)
	webhookHandler := webhook.NewHandler(employeeService, leaveService, notifier, slackClient, catalog, now)

	// --- Handlers ---
	authHandler := auth.NewHandler(authService)
	teamHandler := team.NewHandler(teamService)
	employeeHandler := employee.NewHandler(employeeService)
	leaveTypeHandler := leavetype.NewHandler(leaveTypeService)
	holidayHandler := holiday.NewHandler(holidayService)
	leaveHandler := leave.NewHandler(leaveService)

	// --- Routes ---
	router.Use(middleware.RequestID())

	api := router.Group("/api/v1")
	{
		auth.RegisterRoutes(api, authHandler, cfg.JWTSecret)
		team.RegisterRoutes(api, teamHandler, cfg.JWTSecret)
		employee.RegisterRoutes(api, employeeHandler, cfg.JWTSecret)
		leavetype.RegisterRoutes(api, leaveTypeHandler, cfg.JWTSecret)
		holiday.RegisterRoutes(api, holidayHandler, cfg.JWTSecret)
		leave.RegisterRoutes(api, leaveHandler, cfg.JWTSecret)
		webhook.RegisterRoutes(api, webhookHandler, cfg.Slack.SigningSecret, logger)
	}

	return nil
}
