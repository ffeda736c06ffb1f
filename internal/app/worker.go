package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/R-M-Tejaswini/slack-leave-app/internal/config"
	"github.com/R-M-Tejaswini/slack-leave-app/internal/holiday"
	"github.com/R-M-Tejaswini/slack-leave-app/internal/leave"
	"github.com/R-M-Tejaswini/slack-leave-app/internal/leavetype"
	"github.com/R-M-Tejaswini/slack-leave-app/internal/messaging/kafka"
	"github.com/R-M-Tejaswini/slack-leave-app/internal/messaging/kafka/producer"
	"github.com/R-M-Tejaswini/slack-leave-app/internal/notify"
	"github.com/R-M-Tejaswini/slack-leave-app/internal/scheduler"
	"github.com/R-M-Tejaswini/slack-leave-app/internal/shared/connection"
	"github.com/R-M-Tejaswini/slack-leave-app/internal/slackapp"

	"go.uber.org/zap"
)

// RunWorker drives the two background loops: draining the outbox to
// Kafka and firing due scheduled jobs (the manager reminders).
func RunWorker(cfg config.Config) error {
	logger := zap.L().Named("app.worker")

	gormDB, err := connection.ConnectGORMWithRetry(
		cfg.DBHost, cfg.DBUser, cfg.DBPassword, cfg.DBName, cfg.DBPort, cfg.DBSSLMode, 5,
	)
	if err != nil {
		return err
	}

	if cfg.KafkaBroker == "" {
		return fmt.Errorf("KAFKA_BROKER is required")
	}
	kafkaWriter, err := connection.ConnectKafkaWithRetry(cfg.KafkaBroker, 5)
	if err != nil {
		return err
	}
	defer kafkaWriter.Close()

	outboxRepo := kafka.NewOutboxRepository(gormDB)

	// The reminder callback needs the leave service and a Slack client.
	leaveRepo := leave.NewRepository(gormDB)
	leaveTypeRepo := leavetype.NewRepository(gormDB)
	holidayRepo := holiday.NewRepository(gormDB)
	validator := leave.NewValidator(cfg.Leave, time.Now)
	leaveService := leave.NewService(gormDB, leaveRepo, leaveTypeRepo, holidayRepo, outboxRepo, validator, cfg.Leave)

	slackClient := slackapp.NewClient(cfg.Slack.BotToken)
	jobStore := scheduler.NewStore(gormDB, time.Now)
	notifier := notify.NewNotifier(slackClient, leaveService, jobStore, cfg.Slack, cfg.Leave.ReminderDelay)

	runner := scheduler.NewRunner(gormDB)
	runner.Register(notify.ReminderCallbackID, notifier.ReminderDue)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go producer.ProcessOutboxEvents(ctx, outboxRepo, kafkaWriter, logger, 3*time.Second)
	go runner.Run(ctx, 10*time.Second)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("worker shutting down")
	cancel()

	return nil
}
