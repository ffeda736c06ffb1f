package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/R-M-Tejaswini/slack-leave-app/internal/config"
	"github.com/R-M-Tejaswini/slack-leave-app/internal/leave"
	"github.com/R-M-Tejaswini/slack-leave-app/internal/scheduler"
	"github.com/R-M-Tejaswini/slack-leave-app/internal/slackapp"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ReminderCallbackID selects the pending-request reminder handler in
// the scheduler runner.
const ReminderCallbackID = "leave.manager_reminder"

const (
	sendAttempts = 3
	sendBackoff  = 500 * time.Millisecond
)

type reminderPayload struct {
	LeaveRequestID string `json:"leave_request_id"`
}

// Notifier translates committed lifecycle transitions into Slack
// messages. Delivery is best effort: the request state is already
// committed, so a Slack failure is logged and retried but never rolls
// anything back.
type Notifier struct {
	client    slackapp.Client
	leaves    leave.Service
	scheduler scheduler.Scheduler
	slackCfg  config.SlackConfig
	delay     time.Duration
	logger    *zap.Logger
}

func NewNotifier(
	client slackapp.Client,
	leaves leave.Service,
	sched scheduler.Scheduler,
	slackCfg config.SlackConfig,
	reminderDelay time.Duration,
	logger ...*zap.Logger,
) *Notifier {
	l := zap.L().Named("notify")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("notify")
	}
	return &Notifier{
		client:    client,
		leaves:    leaves,
		scheduler: sched,
		slackCfg:  slackCfg,
		delay:     reminderDelay,
		logger:    l,
	}
}

// OnCreated posts the approval prompt to the manager (or the fallback
// channel when the employee has none), records where it landed,
// confirms to the employee, and schedules the pending reminder.
func (n *Notifier) OnCreated(ctx context.Context, req *leave.Request) {
	view, err := n.buildView(ctx, req)
	if err != nil {
		n.logger.Error("build request view failed", zap.String("request_id", req.ID.String()), zap.Error(err))
		return
	}

	// The approval prompt is best effort: a missing destination loses
	// the prompt, not the confirmation or the reminder.
	if channel := n.approvalChannel(req); channel == "" {
		n.logger.Error("no manager or fallback channel for approval prompt",
			zap.String("request_id", req.ID.String()),
		)
	} else {
		blocks := slackapp.ApprovalMessageBlocks(view, false, false)
		fallback := fmt.Sprintf("New leave request from %s", view.EmployeeName)

		var ref slackapp.MessageRef
		err = n.withRetry(ctx, "post approval prompt", req.ID, func() error {
			var postErr error
			ref, postErr = n.client.PostMessage(ctx, channel, fallback, blocks...)
			return postErr
		})
		if err == nil {
			attached, attachErr := n.leaves.AttachMessageHandle(ctx, req.ID, ref.Channel, ref.Timestamp)
			if attachErr != nil {
				n.logger.Error("attach message handle failed", zap.String("request_id", req.ID.String()), zap.Error(attachErr))
			} else if !attached {
				n.logger.Warn("message handle already attached, keeping the first",
					zap.String("request_id", req.ID.String()),
				)
			}
		}
	}

	confirmation := fmt.Sprintf(
		"Your %s request for %s has been submitted and is awaiting approval.",
		view.LeaveType, formatRange(req.StartDate, req.EndDate),
	)
	_ = n.withRetry(ctx, "confirm to employee", req.ID, func() error {
		_, err := n.client.PostMessage(ctx, view.SlackUserID, confirmation)
		return err
	})

	n.scheduleReminder(ctx, req.ID)
}

// OnUpdated rewrites the existing approval prompt in place with an
// UPDATED banner and confirms the change to the employee. When the
// prompt was never delivered it falls back to the create path so the
// manager still hears about the request.
func (n *Notifier) OnUpdated(ctx context.Context, req *leave.Request) {
	if !req.HasMessageHandle() {
		n.OnCreated(ctx, req)
		return
	}

	view, err := n.buildView(ctx, req)
	if err != nil {
		n.logger.Error("build request view failed", zap.String("request_id", req.ID.String()), zap.Error(err))
		return
	}

	blocks := slackapp.ApprovalMessageBlocks(view, false, true)
	fallback := fmt.Sprintf("Leave request for %s has been updated.", view.EmployeeName)
	ref := slackapp.MessageRef{Channel: req.SlackChannelID, Timestamp: req.SlackMessageTS}

	_ = n.withRetry(ctx, "update approval prompt", req.ID, func() error {
		return n.client.UpdateMessage(ctx, ref, fallback, blocks...)
	})

	confirmation := fmt.Sprintf(
		"Your %s request for %s has been updated and is awaiting approval.",
		view.LeaveType, formatRange(req.StartDate, req.EndDate),
	)
	_ = n.withRetry(ctx, "confirm update to employee", req.ID, func() error {
		_, err := n.client.PostMessage(ctx, view.SlackUserID, confirmation)
		return err
	})
}

// OnDecided rewrites the approval prompt with the outcome, removing
// the action buttons, and DMs the employee the result.
func (n *Notifier) OnDecided(ctx context.Context, req *leave.Request) {
	n.finalizePrompt(ctx, req)
	n.notifyEmployee(ctx, req)
}

// OnCancelled mirrors OnDecided for employee-initiated cancellation.
func (n *Notifier) OnCancelled(ctx context.Context, req *leave.Request) {
	n.finalizePrompt(ctx, req)
	n.notifyEmployee(ctx, req)
}

// ReminderDue is the scheduler callback. It re-reads the request so a
// decision made during the delay suppresses the reminder; idempotent
// because every run re-derives everything from current state.
func (n *Notifier) ReminderDue(ctx context.Context, payload []byte) error {
	var p reminderPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return err
	}
	id, err := uuid.Parse(p.LeaveRequestID)
	if err != nil {
		return err
	}

	req, err := n.leaves.GetByID(ctx, id)
	if err != nil {
		// The request may have been deleted; nothing to remind about.
		n.logger.Info("reminder skipped, request not loadable", zap.String("request_id", p.LeaveRequestID), zap.Error(err))
		return nil
	}

	if req.Status != leave.StatusPending || req.Employee == nil || req.Employee.Manager == nil {
		n.logger.Info("reminder not needed",
			zap.String("request_id", req.ID.String()),
			zap.String("status", req.Status),
		)
		return nil
	}

	message := fmt.Sprintf(
		"Hi there! This is a friendly reminder that a leave request from *%s* (submitted on %s) is still awaiting your approval.",
		req.Employee.Name, req.CreatedAt.Format("Jan 02"),
	)
	_, err = n.client.PostMessage(ctx, req.Employee.Manager.SlackUserID, message)
	return err
}

func (n *Notifier) finalizePrompt(ctx context.Context, req *leave.Request) {
	if !req.HasMessageHandle() {
		n.logger.Warn("cannot finalize approval prompt, no message handle",
			zap.String("request_id", req.ID.String()),
		)
		return
	}

	view, err := n.buildView(ctx, req)
	if err != nil {
		n.logger.Error("build request view failed", zap.String("request_id", req.ID.String()), zap.Error(err))
		return
	}

	blocks := slackapp.ApprovalMessageBlocks(view, true, false)
	fallback := fmt.Sprintf("Leave request for %s has been %s.", view.EmployeeName, req.Status)
	ref := slackapp.MessageRef{Channel: req.SlackChannelID, Timestamp: req.SlackMessageTS}

	_ = n.withRetry(ctx, "finalize approval prompt", req.ID, func() error {
		return n.client.UpdateMessage(ctx, ref, fallback, blocks...)
	})
}

func (n *Notifier) notifyEmployee(ctx context.Context, req *leave.Request) {
	view, err := n.buildView(ctx, req)
	if err != nil {
		n.logger.Error("build request view failed", zap.String("request_id", req.ID.String()), zap.Error(err))
		return
	}

	blocks := slackapp.EmployeeNotificationBlocks(view)
	fallback := fmt.Sprintf("Your leave request for %s has been %s.", req.StartDate.Format("2006-01-02"), req.Status)

	_ = n.withRetry(ctx, "notify employee", req.ID, func() error {
		_, err := n.client.PostMessage(ctx, view.SlackUserID, fallback, blocks...)
		return err
	})
}

func (n *Notifier) scheduleReminder(ctx context.Context, requestID uuid.UUID) {
	if n.scheduler == nil || n.delay <= 0 {
		return
	}
	payload, _ := json.Marshal(reminderPayload{LeaveRequestID: requestID.String()})
	if _, err := n.scheduler.Schedule(ctx, ReminderCallbackID, payload, n.delay); err != nil {
		n.logger.Error("schedule reminder failed", zap.String("request_id", requestID.String()), zap.Error(err))
	}
}

func (n *Notifier) approvalChannel(req *leave.Request) string {
	if req.Employee != nil && req.Employee.Manager != nil {
		return req.Employee.Manager.SlackUserID
	}
	return n.slackCfg.FallbackChannel
}

func (n *Notifier) buildView(ctx context.Context, req *leave.Request) (slackapp.RequestView, error) {
	days, err := n.leaves.DurationDays(ctx, req)
	if err != nil {
		return slackapp.RequestView{}, err
	}

	view := slackapp.RequestView{
		ID:           req.ID.String(),
		EmployeeID:   req.EmployeeID.String(),
		StartDate:    req.StartDate,
		EndDate:      req.EndDate,
		Reason:       req.Reason,
		Status:       req.Status,
		DurationDays: days,
		CreatedAt:    req.CreatedAt,
	}
	if req.Employee != nil {
		view.EmployeeName = req.Employee.Name
		view.SlackUserID = req.Employee.SlackUserID
	}
	if req.LeaveType != nil {
		view.LeaveType = req.LeaveType.Name
	}
	if req.Approver != nil {
		view.ApproverName = req.Approver.Name
	}
	return view, nil
}

func (n *Notifier) withRetry(ctx context.Context, op string, requestID uuid.UUID, fn func() error) error {
	var err error
	for attempt := 1; attempt <= sendAttempts; attempt++ {
		if err = fn(); err == nil {
			return nil
		}
		n.logger.Warn("slack delivery attempt failed",
			zap.String("op", op),
			zap.String("request_id", requestID.String()),
			zap.Int("attempt", attempt),
			zap.Error(err),
		)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Duration(attempt) * sendBackoff):
		}
	}
	n.logger.Error("slack delivery failed after retries",
		zap.String("op", op),
		zap.String("request_id", requestID.String()),
		zap.Error(err),
	)
	return err
}

func formatRange(start, end time.Time) string {
	if start.Equal(end) {
		return start.Format("January 02, 2006")
	}
	return fmt.Sprintf("%s to %s", start.Format("Jan 02"), end.Format("Jan 02, 2006"))
}
