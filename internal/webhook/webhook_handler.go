package webhook

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/R-M-Tejaswini/slack-leave-app/internal/employee"
	"github.com/R-M-Tejaswini/slack-leave-app/internal/leave"
	leaveerrors "github.com/R-M-Tejaswini/slack-leave-app/internal/leave/errors"
	"github.com/R-M-Tejaswini/slack-leave-app/internal/leavetype"
	"github.com/R-M-Tejaswini/slack-leave-app/internal/notify"
	"github.com/R-M-Tejaswini/slack-leave-app/internal/slackapp"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/slack-go/slack"
	"go.uber.org/zap"
)

// Handler routes Slack slash commands and interaction payloads to the
// domain services. Routing is a closed switch over known command,
// callback and action ids; anything else is logged and acknowledged so
// Slack does not retry it.
type Handler struct {
	employees employee.Service
	leaves    leave.Service
	notifier  *notify.Notifier
	client    slackapp.Client
	catalog   *leavetype.Catalog
	now       func() time.Time
	logger    *zap.Logger
}

func NewHandler(
	employees employee.Service,
	leaves leave.Service,
	notifier *notify.Notifier,
	client slackapp.Client,
	catalog *leavetype.Catalog,
	now func() time.Time,
	logger ...*zap.Logger,
) *Handler {
	l := zap.L().Named("webhook.handler")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("webhook.handler")
	}
	if now == nil {
		now = time.Now
	}
	return &Handler{
		employees: employees,
		leaves:    leaves,
		notifier:  notifier,
		client:    client,
		catalog:   catalog,
		now:       now,
		logger:    l,
	}
}

func (h *Handler) SlashCommand(c *gin.Context) {
	cmd, err := slack.SlashCommandParse(c.Request)
	if err != nil {
		h.logger.Warn("parse slash command failed", zap.Error(err))
		c.String(http.StatusBadRequest, "invalid command payload")
		return
	}
	if cmd.Command == "" || cmd.UserID == "" || cmd.TriggerID == "" {
		c.String(http.StatusBadRequest, "missing required command fields")
		return
	}

	ctx := c.Request.Context()
	emp, err := h.employees.EnsureBySlackID(ctx, cmd.UserID, cmd.UserName)
	if err != nil {
		h.logger.Error("ensure employee failed", zap.String("slack_user_id", cmd.UserID), zap.Error(err))
		c.String(http.StatusOK, "Sorry, something went wrong. Please try again.")
		return
	}

	switch cmd.Command {
	case slackapp.CommandApplyLeave:
		h.openLeaveForm(ctx, cmd.TriggerID)
	case slackapp.CommandMyLeaves:
		h.openMyCalendar(ctx, cmd.TriggerID, emp)
	case slackapp.CommandUpdateLeave:
		h.openSelection(ctx, cmd.TriggerID, emp, slackapp.SelectionUpdate)
	case slackapp.CommandCancelLeave:
		h.openSelection(ctx, cmd.TriggerID, emp, slackapp.SelectionCancel)
	default:
		h.logger.Warn("unrecognized slash command", zap.String("command", cmd.Command))
		c.String(http.StatusBadRequest, "Command is not recognized.")
		return
	}
	c.Status(http.StatusOK)
}

func (h *Handler) Interactions(c *gin.Context) {
	var cb slack.InteractionCallback
	if err := json.Unmarshal([]byte(c.PostForm("payload")), &cb); err != nil {
		h.logger.Warn("parse interaction payload failed", zap.Error(err))
		c.String(http.StatusBadRequest, "invalid interaction payload")
		return
	}

	switch cb.Type {
	case slack.InteractionTypeViewSubmission:
		h.routeViewSubmission(c, &cb)
	case slack.InteractionTypeBlockActions:
		h.routeBlockAction(c, &cb)
	default:
		h.logger.Warn("unhandled interaction type", zap.String("type", string(cb.Type)))
		c.Status(http.StatusOK)
	}
}

func (h *Handler) routeViewSubmission(c *gin.Context, cb *slack.InteractionCallback) {
	switch cb.View.CallbackID {
	case slackapp.CallbackLeaveRequestModal:
		h.handleNewLeaveSubmission(c, cb)
	case slackapp.CallbackCancelLeaveSubmission:
		h.handleCancelSubmission(c, cb)
	case slackapp.CallbackLeaveUpdateSubmission:
		h.handleUpdateSubmission(c, cb)
	case slackapp.CallbackSelectLeaveToUpdate:
		h.handleUpdateSelection(c, cb)
	default:
		h.logger.Warn("unhandled view submission", zap.String("callback_id", cb.View.CallbackID))
		c.Status(http.StatusOK)
	}
}

func (h *Handler) routeBlockAction(c *gin.Context, cb *slack.InteractionCallback) {
	if len(cb.ActionCallback.BlockActions) == 0 {
		c.Status(http.StatusOK)
		return
	}
	action := cb.ActionCallback.BlockActions[0]

	switch action.ActionID {
	case slackapp.ActionApproveLeave, slackapp.ActionRejectLeave:
		h.handleDecision(c, cb, action)
	case slackapp.ActionViewOverlappingLeave:
		h.handleTeamCalendar(c, cb, action)
	case slackapp.ActionNavigateCalendarPrev, slackapp.ActionNavigateCalendarNext:
		h.handleCalendarNavigation(c, cb, action)
	default:
		h.logger.Warn("unhandled block action", zap.String("action_id", action.ActionID))
		c.Status(http.StatusOK)
	}
}

// --- commands ---

func (h *Handler) openLeaveForm(ctx context.Context, triggerID string) {
	names, err := h.catalog.Names(ctx)
	if err != nil {
		h.logger.Error("load leave type catalog failed", zap.Error(err))
		names = nil
	}
	if err := h.client.OpenView(ctx, triggerID, slackapp.LeaveFormModal(names, h.now())); err != nil {
		h.logger.Error("open leave form failed", zap.Error(err))
	}
}

func (h *Handler) openMyCalendar(ctx context.Context, triggerID string, emp *employee.Employee) {
	today := h.now()
	overview, err := h.leaves.MonthOverview(ctx, emp, today.Year(), today.Month())
	if err != nil {
		h.logger.Error("load month overview failed", zap.Error(err))
		return
	}

	views := ownRequestViews(overview.Requests, emp)
	summary := &slackapp.MonthSummary{Allowance: overview.Allowance, Remaining: overview.Remaining}
	modal := slackapp.CalendarModal(views, today, "My Leave Calendar", emp.ID.String(), summary)
	if err := h.client.OpenView(ctx, triggerID, modal); err != nil {
		h.logger.Error("open my calendar failed", zap.Error(err))
	}
}

func (h *Handler) openSelection(ctx context.Context, triggerID string, emp *employee.Employee, action slackapp.SelectionAction) {
	pending, err := h.leaves.ListPendingByEmployee(ctx, emp.ID)
	if err != nil {
		h.logger.Error("list pending requests failed", zap.Error(err))
		return
	}
	if len(pending) == 0 {
		_ = h.client.PostEphemeral(ctx, emp.SlackUserID, emp.SlackUserID, "You have no pending leave requests to modify.")
		return
	}

	modal := slackapp.SelectionModal(ownRequestViews(pending, emp), action)
	if err := h.client.OpenView(ctx, triggerID, modal); err != nil {
		h.logger.Error("open selection modal failed", zap.Error(err))
	}
}

// --- view submissions ---

func (h *Handler) handleNewLeaveSubmission(c *gin.Context, cb *slack.InteractionCallback) {
	ctx := c.Request.Context()
	emp, err := h.employees.EnsureBySlackID(ctx, cb.User.ID, cb.User.Name)
	if err != nil {
		respondFieldError(c, slackapp.BlockStartDate, "Your user profile was not found.")
		return
	}

	form, fieldErr := parseLeaveForm(cb)
	if fieldErr != nil {
		respondFieldErrors(c, fieldErr)
		return
	}

	req, err := h.leaves.Create(ctx, leave.CreateInput{
		Employee:      emp,
		LeaveTypeName: form.LeaveType,
		StartDate:     form.StartDate,
		EndDate:       form.EndDate,
		Reason:        form.Reason,
	})
	if err != nil {
		respondFieldErrors(c, validationFieldError(err))
		return
	}

	go h.notifier.OnCreated(context.Background(), req)
	c.Status(http.StatusOK)
}

func (h *Handler) handleCancelSubmission(c *gin.Context, cb *slack.InteractionCallback) {
	ctx := c.Request.Context()
	id, ok := selectedRequestID(cb)
	if !ok {
		c.Status(http.StatusOK)
		return
	}

	req, err := h.leaves.Cancel(ctx, id)
	if err != nil {
		switch {
		case errors.Is(err, leaveerrors.ErrAlreadyActioned):
			_ = h.client.PostEphemeral(ctx, cb.User.ID, cb.User.ID,
				"This request cannot be cancelled as it has already been actioned.")
		case errors.Is(err, leaveerrors.ErrRequestNotFound):
			_ = h.client.PostEphemeral(ctx, cb.User.ID, cb.User.ID, "The request was not found.")
		default:
			h.logger.Error("cancel request failed", zap.String("request_id", id.String()), zap.Error(err))
		}
		c.Status(http.StatusOK)
		return
	}

	go h.notifier.OnCancelled(context.Background(), req)
	c.Status(http.StatusOK)
}

// handleUpdateSelection swaps the picker modal for the pre-filled edit
// form via a response_action update.
func (h *Handler) handleUpdateSelection(c *gin.Context, cb *slack.InteractionCallback) {
	ctx := c.Request.Context()
	id, ok := selectedRequestID(cb)
	if !ok {
		c.JSON(http.StatusOK, gin.H{"response_action": "clear"})
		return
	}

	req, err := h.leaves.GetByID(ctx, id)
	if err != nil {
		h.logger.Error("load request for update failed", zap.String("request_id", id.String()), zap.Error(err))
		c.JSON(http.StatusOK, gin.H{"response_action": "clear"})
		return
	}

	names, err := h.catalog.Names(ctx)
	if err != nil {
		names = nil
	}

	view := requestViewOf(req)
	modal := slackapp.UpdateFormModal(view, names, h.now())
	c.JSON(http.StatusOK, gin.H{"response_action": "update", "view": modal})
}

func (h *Handler) handleUpdateSubmission(c *gin.Context, cb *slack.InteractionCallback) {
	ctx := c.Request.Context()

	var meta slackapp.UpdateModalMetadata
	if err := json.Unmarshal([]byte(cb.View.PrivateMetadata), &meta); err != nil {
		respondFieldError(c, slackapp.BlockStartDate, "The original request was not found.")
		return
	}
	id, err := uuid.Parse(meta.LeaveRequestID)
	if err != nil {
		respondFieldError(c, slackapp.BlockStartDate, "The original request was not found.")
		return
	}

	form, fieldErr := parseLeaveForm(cb)
	if fieldErr != nil {
		respondFieldErrors(c, fieldErr)
		return
	}

	req, err := h.leaves.Update(ctx, id, leave.UpdateInput{
		LeaveTypeName: form.LeaveType,
		StartDate:     form.StartDate,
		EndDate:       form.EndDate,
		Reason:        form.Reason,
	})
	if err != nil {
		respondFieldErrors(c, validationFieldError(err))
		return
	}

	go h.notifier.OnUpdated(context.Background(), req)
	c.Status(http.StatusOK)
}

// --- block actions ---

func (h *Handler) handleDecision(c *gin.Context, cb *slack.InteractionCallback, action *slack.BlockAction) {
	ctx := c.Request.Context()

	manager, err := h.employees.EnsureBySlackID(ctx, cb.User.ID, cb.User.Name)
	if err != nil {
		h.logger.Error("ensure manager failed", zap.String("slack_user_id", cb.User.ID), zap.Error(err))
		c.Status(http.StatusOK)
		return
	}

	id, err := uuid.Parse(action.Value)
	if err != nil {
		h.logger.Warn("bad request id in decision action", zap.String("value", action.Value))
		c.Status(http.StatusOK)
		return
	}

	approve := action.ActionID == slackapp.ActionApproveLeave
	req, err := h.leaves.Decide(ctx, id, manager, approve)
	if err != nil {
		if errors.Is(err, leaveerrors.ErrAlreadyActioned) {
			_ = h.client.PostEphemeral(ctx, cb.User.ID, cb.User.ID,
				"This request has already been actioned.")
		} else {
			h.logger.Error("decide request failed", zap.String("request_id", id.String()), zap.Error(err))
		}
		c.Status(http.StatusOK)
		return
	}

	go h.notifier.OnDecided(context.Background(), req)
	c.Status(http.StatusOK)
}

// handleTeamCalendar answers the "Who's Away?" button with the team
// calendar for the month the contested request starts in.
func (h *Handler) handleTeamCalendar(c *gin.Context, cb *slack.InteractionCallback, action *slack.BlockAction) {
	ctx := c.Request.Context()

	manager, err := h.employees.EnsureBySlackID(ctx, cb.User.ID, cb.User.Name)
	if err != nil {
		c.Status(http.StatusOK)
		return
	}
	id, err := uuid.Parse(action.Value)
	if err != nil {
		c.Status(http.StatusOK)
		return
	}
	req, err := h.leaves.GetByID(ctx, id)
	if err != nil {
		h.logger.Error("load request for team calendar failed", zap.String("request_id", id.String()), zap.Error(err))
		c.Status(http.StatusOK)
		return
	}

	monthDate := req.StartDate
	modal, err := h.teamCalendarModal(ctx, monthDate, manager.ID.String())
	if err != nil {
		c.Status(http.StatusOK)
		return
	}
	if err := h.client.OpenView(ctx, cb.TriggerID, modal); err != nil {
		h.logger.Error("open team calendar failed", zap.Error(err))
	}
	c.Status(http.StatusOK)
}

func (h *Handler) handleCalendarNavigation(c *gin.Context, cb *slack.InteractionCallback, action *slack.BlockAction) {
	ctx := c.Request.Context()

	monthDate, err := time.Parse("2006-01-02", action.Value)
	if err != nil {
		c.Status(http.StatusOK)
		return
	}

	emp, err := h.employees.EnsureBySlackID(ctx, cb.User.ID, cb.User.Name)
	if err != nil {
		c.Status(http.StatusOK)
		return
	}

	title := cb.View.Title.Text
	var modal slack.ModalViewRequest
	if title == "My Leave Calendar" {
		overview, err := h.leaves.MonthOverview(ctx, emp, monthDate.Year(), monthDate.Month())
		if err != nil {
			c.Status(http.StatusOK)
			return
		}
		summary := &slackapp.MonthSummary{Allowance: overview.Allowance, Remaining: overview.Remaining}
		modal = slackapp.CalendarModal(ownRequestViews(overview.Requests, emp), monthDate, title, emp.ID.String(), summary)
	} else {
		modal, err = h.teamCalendarModal(ctx, monthDate, emp.ID.String())
		if err != nil {
			c.Status(http.StatusOK)
			return
		}
	}

	if err := h.client.UpdateView(ctx, cb.View.ID, modal); err != nil {
		h.logger.Error("update calendar view failed", zap.Error(err))
	}
	c.Status(http.StatusOK)
}

func (h *Handler) teamCalendarModal(ctx context.Context, monthDate time.Time, viewerID string) (slack.ModalViewRequest, error) {
	monthStart := time.Date(monthDate.Year(), monthDate.Month(), 1, 0, 0, 0, 0, time.UTC)
	monthEnd := monthStart.AddDate(0, 1, -1)

	approved, err := h.leaves.ApprovedInRange(ctx, monthStart, monthEnd)
	if err != nil {
		h.logger.Error("load approved requests failed", zap.Error(err))
		return slack.ModalViewRequest{}, err
	}

	views := make([]slackapp.RequestView, 0, len(approved))
	for i := range approved {
		views = append(views, requestViewOf(&approved[i]))
	}
	return slackapp.CalendarModal(views, monthDate, "Team Leave Calendar", viewerID, nil), nil
}
