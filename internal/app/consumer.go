package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/R-M-Tejaswini/slack-leave-app/internal/config"
	"github.com/R-M-Tejaswini/slack-leave-app/internal/events"
	"github.com/R-M-Tejaswini/slack-leave-app/internal/notify"
	"github.com/R-M-Tejaswini/slack-leave-app/internal/shared/connection"
	"github.com/R-M-Tejaswini/slack-leave-app/internal/slackapp"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// RunConsumer reads leave lifecycle events and posts the public team
// announcements for approved leave.
func RunConsumer(cfg config.Config) error {
	logger := zap.L().Named("app.consumer")

	if cfg.KafkaBroker == "" {
		return fmt.Errorf("KAFKA_BROKER is required")
	}

	redisClient, err := connection.ConnectRedisWithRetry(cfg.RedisAddr, 5)
	if err != nil {
		return err
	}

	slackClient := slackapp.NewClient(cfg.Slack.BotToken)

	reader := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:        []string{cfg.KafkaBroker},
		Topic:          events.LeaveRequestsTopic,
		GroupID:        "slack-leave-app-announcements",
		CommitInterval: 0,
		StartOffset:    kafkago.FirstOffset,
	})
	defer reader.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go notify.ConsumeLeaveAnnouncements(ctx, reader, slackClient, redisClient, cfg.Slack, logger)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("consumer shutting down")
	cancel()

	return nil
}
