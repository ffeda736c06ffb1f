package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/R-M-Tejaswini/slack-leave-app/internal/config"
	"github.com/R-M-Tejaswini/slack-leave-app/internal/events"
	"github.com/R-M-Tejaswini/slack-leave-app/internal/slackapp"

	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

const announceDedupTTL = 24 * time.Hour

// ConsumeLeaveAnnouncements reads lifecycle events and posts the "FYI,
// X is away" message to the employee's team channel on approval.
// Retrospective leave is never announced: the absence already happened.
// The outbox pipeline is at-least-once, so a Redis SETNX key per event
// keeps redeliveries from posting twice.
func ConsumeLeaveAnnouncements(
	ctx context.Context,
	reader *kafkago.Reader,
	client slackapp.Client,
	rdb *redis.Client,
	slackCfg config.SlackConfig,
	logger *zap.Logger,
) {
	log := logger.Named("kafka.consumer.leave_announcements")
	log.Info("leave announcement consumer started")

	for {
		msg, err := reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				log.Info("leave announcement consumer stopped")
				return
			}
			log.Error("fetch leave event failed", zap.Error(err))
			continue
		}

		var event events.LeaveRequestEvent
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			log.Error("decode leave event failed", zap.Error(err))
			_ = reader.CommitMessages(ctx, msg)
			continue
		}

		if err := announce(ctx, client, rdb, slackCfg, event, log); err != nil {
			log.Error("post leave announcement failed",
				zap.String("request_id", event.RequestID),
				zap.Error(err),
			)
			continue
		}

		if err := reader.CommitMessages(ctx, msg); err != nil {
			log.Error("commit leave event failed", zap.Error(err))
		}
	}
}

func announce(
	ctx context.Context,
	client slackapp.Client,
	rdb *redis.Client,
	slackCfg config.SlackConfig,
	event events.LeaveRequestEvent,
	log *zap.Logger,
) error {
	if event.EventType != events.LeaveRequestApproved || event.Retrospective {
		return nil
	}

	channel := event.TeamChannelID
	if channel == "" {
		channel = slackCfg.FallbackChannel
	}
	if channel == "" {
		log.Warn("no team or fallback channel for announcement",
			zap.String("request_id", event.RequestID),
		)
		return nil
	}

	dedupKey := fmt.Sprintf("announce:%s:%s", event.RequestID, event.EventType)
	fresh, err := rdb.SetNX(ctx, dedupKey, 1, announceDedupTTL).Result()
	if err != nil {
		return err
	}
	if !fresh {
		log.Info("announcement already posted, skipping",
			zap.String("request_id", event.RequestID),
		)
		return nil
	}

	message := announcementText(event)
	if _, err := client.PostMessage(ctx, channel, message); err != nil {
		// Free the key so a redelivery can retry the post.
		_ = rdb.Del(ctx, dedupKey).Err()
		return err
	}

	log.Info("leave announcement posted",
		zap.String("request_id", event.RequestID),
		zap.String("channel", channel),
	)
	return nil
}

func announcementText(event events.LeaveRequestEvent) string {
	start, _ := time.Parse("2006-01-02", event.StartDate)
	end, _ := time.Parse("2006-01-02", event.EndDate)
	if start.Equal(end) {
		return fmt.Sprintf("FYI: %s will be on leave on %s.", event.EmployeeName, start.Format("January 02"))
	}
	return fmt.Sprintf("FYI: %s will be on leave from %s to %s.",
		event.EmployeeName, start.Format("January 02"), end.Format("January 02"))
}
