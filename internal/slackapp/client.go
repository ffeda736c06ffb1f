package slackapp

import (
	"context"

	"github.com/slack-go/slack"
	"go.uber.org/zap"
)

// MessageRef addresses a posted message for later in-place updates.
type MessageRef struct {
	Channel   string
	Timestamp string
}

// Client is the narrow slice of the Slack web API the app uses.
// Keeping it small lets tests swap in a fake without touching HTTP.
type Client interface {
	PostMessage(ctx context.Context, channelID string, fallbackText string, blocks ...slack.Block) (MessageRef, error)
	UpdateMessage(ctx context.Context, ref MessageRef, fallbackText string, blocks ...slack.Block) error
	PostEphemeral(ctx context.Context, channelID, userID, text string) error
	OpenView(ctx context.Context, triggerID string, view slack.ModalViewRequest) error
	UpdateView(ctx context.Context, viewID string, view slack.ModalViewRequest) error
}

type apiClient struct {
	api    *slack.Client
	logger *zap.Logger
}

func NewClient(botToken string, logger ...*zap.Logger) Client {
	l := zap.L().Named("slackapp.client")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("slackapp.client")
	}
	return &apiClient{api: slack.New(botToken), logger: l}
}

func (c *apiClient) PostMessage(ctx context.Context, channelID, fallbackText string, blocks ...slack.Block) (MessageRef, error) {
	opts := []slack.MsgOption{slack.MsgOptionText(fallbackText, false)}
	if len(blocks) > 0 {
		opts = append(opts, slack.MsgOptionBlocks(blocks...))
	}
	channel, ts, err := c.api.PostMessageContext(ctx, channelID, opts...)
	if err != nil {
		c.logger.Warn("post message failed", zap.String("channel", channelID), zap.Error(err))
		return MessageRef{}, err
	}
	return MessageRef{Channel: channel, Timestamp: ts}, nil
}

func (c *apiClient) UpdateMessage(ctx context.Context, ref MessageRef, fallbackText string, blocks ...slack.Block) error {
	opts := []slack.MsgOption{slack.MsgOptionText(fallbackText, false)}
	if len(blocks) > 0 {
		opts = append(opts, slack.MsgOptionBlocks(blocks...))
	}
	_, _, _, err := c.api.UpdateMessageContext(ctx, ref.Channel, ref.Timestamp, opts...)
	if err != nil {
		c.logger.Warn("update message failed",
			zap.String("channel", ref.Channel),
			zap.String("ts", ref.Timestamp),
			zap.Error(err),
		)
	}
	return err
}

func (c *apiClient) PostEphemeral(ctx context.Context, channelID, userID, text string) error {
	_, err := c.api.PostEphemeralContext(ctx, channelID, userID, slack.MsgOptionText(text, false))
	if err != nil {
		c.logger.Warn("post ephemeral failed", zap.String("channel", channelID), zap.Error(err))
	}
	return err
}

func (c *apiClient) OpenView(ctx context.Context, triggerID string, view slack.ModalViewRequest) error {
	_, err := c.api.OpenViewContext(ctx, triggerID, view)
	if err != nil {
		c.logger.Warn("open view failed", zap.Error(err))
	}
	return err
}

func (c *apiClient) UpdateView(ctx context.Context, viewID string, view slack.ModalViewRequest) error {
	_, err := c.api.UpdateViewContext(ctx, view, "", "", viewID)
	if err != nil {
		c.logger.Warn("update view failed", zap.Error(err))
	}
	return err
}
