package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/R-M-Tejaswini/slack-leave-app/internal/config"
	"github.com/R-M-Tejaswini/slack-leave-app/internal/employee"
	"github.com/R-M-Tejaswini/slack-leave-app/internal/leave"
	leaveerrors "github.com/R-M-Tejaswini/slack-leave-app/internal/leave/errors"
	"github.com/R-M-Tejaswini/slack-leave-app/internal/leavetype"
	"github.com/R-M-Tejaswini/slack-leave-app/internal/slackapp"

	"github.com/google/uuid"
	slackgo "github.com/slack-go/slack"
	"github.com/stretchr/testify/assert"
)

type postedMessage struct {
	Channel  string
	Fallback string
	Blocks   []slackgo.Block
}

type updatedMessage struct {
	Ref      slackapp.MessageRef
	Fallback string
	Blocks   []slackgo.Block
}

type fakeClient struct {
	posted      []postedMessage
	updates     []updatedMessage
	postErr     error
	postErrOnce bool
}

func (f *fakeClient) PostMessage(ctx context.Context, channelID, fallbackText string, blocks ...slackgo.Block) (slackapp.MessageRef, error) {
	if f.postErr != nil {
		err := f.postErr
		if f.postErrOnce {
			f.postErr = nil
		}
		return slackapp.MessageRef{}, err
	}
	f.posted = append(f.posted, postedMessage{Channel: channelID, Fallback: fallbackText, Blocks: blocks})
	return slackapp.MessageRef{Channel: channelID, Timestamp: fmt.Sprintf("17000000%d.0", len(f.posted))}, nil
}
func (f *fakeClient) UpdateMessage(ctx context.Context, ref slackapp.MessageRef, fallbackText string, blocks ...slackgo.Block) error {
	f.updates = append(f.updates, updatedMessage{Ref: ref, Fallback: fallbackText, Blocks: blocks})
	return nil
}
func (f *fakeClient) PostEphemeral(ctx context.Context, channelID, userID, text string) error {
	return nil
}
func (f *fakeClient) OpenView(ctx context.Context, triggerID string, view slackgo.ModalViewRequest) error {
	return nil
}
func (f *fakeClient) UpdateView(ctx context.Context, viewID string, view slackgo.ModalViewRequest) error {
	return nil
}

type fakeLeaveService struct {
	getByIDFn func(ctx context.Context, id uuid.UUID) (*leave.Request, error)
	attached  []slackapp.MessageRef
	attachOK  bool
}

func (f *fakeLeaveService) Create(ctx context.Context, input leave.CreateInput) (*leave.Request, error) {
	return nil, nil
}
func (f *fakeLeaveService) Update(ctx context.Context, id uuid.UUID, input leave.UpdateInput) (*leave.Request, error) {
	return nil, nil
}
func (f *fakeLeaveService) Cancel(ctx context.Context, id uuid.UUID) (*leave.Request, error) {
	return nil, nil
}
func (f *fakeLeaveService) Decide(ctx context.Context, id uuid.UUID, approver *employee.Employee, approve bool) (*leave.Request, error) {
	return nil, nil
}
func (f *fakeLeaveService) AttachMessageHandle(ctx context.Context, id uuid.UUID, channelID, ts string) (bool, error) {
	f.attached = append(f.attached, slackapp.MessageRef{Channel: channelID, Timestamp: ts})
	return f.attachOK, nil
}
func (f *fakeLeaveService) GetByID(ctx context.Context, id uuid.UUID) (*leave.Request, error) {
	return f.getByIDFn(ctx, id)
}
func (f *fakeLeaveService) ListPendingByEmployee(ctx context.Context, employeeID uuid.UUID) ([]leave.Request, error) {
	return nil, nil
}
func (f *fakeLeaveService) ListOverlappingActive(ctx context.Context, employeeID uuid.UUID, start, end time.Time, excludeID *uuid.UUID) ([]leave.Request, error) {
	return nil, nil
}
func (f *fakeLeaveService) MonthOverview(ctx context.Context, emp *employee.Employee, year int, month time.Month) (*leave.MonthOverview, error) {
	return nil, nil
}
func (f *fakeLeaveService) ApprovedInRange(ctx context.Context, start, end time.Time) ([]leave.Request, error) {
	return nil, nil
}
func (f *fakeLeaveService) DurationDays(ctx context.Context, r *leave.Request) (int, error) {
	return 2, nil
}
func (f *fakeLeaveService) History(ctx context.Context, requestID uuid.UUID) ([]leave.Audit, error) {
	return nil, nil
}

type scheduledJob struct {
	CallbackID string
	Payload    []byte
	Delay      time.Duration
}

type fakeScheduler struct {
	jobs []scheduledJob
}

func (f *fakeScheduler) Schedule(ctx context.Context, callbackID string, payload []byte, delay time.Duration) (uuid.UUID, error) {
	f.jobs = append(f.jobs, scheduledJob{CallbackID: callbackID, Payload: payload, Delay: delay})
	return uuid.New(), nil
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func pendingRequest(withManager bool) *leave.Request {
	emp := &employee.Employee{
		ID:          uuid.New(),
		SlackUserID: "U-emp",
		Name:        "Asha Rao",
	}
	if withManager {
		emp.Manager = &employee.Employee{ID: uuid.New(), SlackUserID: "U-mgr", Name: "Priya Mehta"}
	}
	return &leave.Request{
		ID:        uuid.New(),
		Employee:  emp,
		LeaveType: &leavetype.LeaveType{Name: "Annual"},
		StartDate: day(2026, time.March, 18),
		EndDate:   day(2026, time.March, 19),
		Status:    leave.StatusPending,
		CreatedAt: day(2026, time.March, 16),
	}
}

func newTestNotifier(client *fakeClient, leaves *fakeLeaveService, sched *fakeScheduler, delay time.Duration) *Notifier {
	return NewNotifier(client, leaves, sched, config.SlackConfig{FallbackChannel: "C-fallback"}, delay)
}

func TestNotifier_OnCreated(t *testing.T) {
	client := &fakeClient{}
	leaves := &fakeLeaveService{attachOK: true}
	sched := &fakeScheduler{}
	n := newTestNotifier(client, leaves, sched, 24*time.Hour)
	req := pendingRequest(true)

	n.OnCreated(context.Background(), req)

	// Approval prompt to the manager, then confirmation to the employee.
	if assert.Len(t, client.posted, 2) {
		assert.Equal(t, "U-mgr", client.posted[0].Channel)
		assert.Contains(t, client.posted[0].Fallback, "New leave request from Asha Rao")
		assert.NotEmpty(t, client.posted[0].Blocks)

		assert.Equal(t, "U-emp", client.posted[1].Channel)
		assert.Contains(t, client.posted[1].Fallback, "awaiting approval")
	}

	if assert.Len(t, leaves.attached, 1) {
		assert.Equal(t, "U-mgr", leaves.attached[0].Channel)
		assert.NotEmpty(t, leaves.attached[0].Timestamp)
	}

	if assert.Len(t, sched.jobs, 1) {
		assert.Equal(t, ReminderCallbackID, sched.jobs[0].CallbackID)
		assert.Equal(t, 24*time.Hour, sched.jobs[0].Delay)

		var payload reminderPayload
		assert.NoError(t, json.Unmarshal(sched.jobs[0].Payload, &payload))
		assert.Equal(t, req.ID.String(), payload.LeaveRequestID)
	}
}

func TestNotifier_OnCreated_FallbackChannelWithoutManager(t *testing.T) {
	client := &fakeClient{}
	n := newTestNotifier(client, &fakeLeaveService{attachOK: true}, &fakeScheduler{}, 0)

	n.OnCreated(context.Background(), pendingRequest(false))

	if assert.NotEmpty(t, client.posted) {
		assert.Equal(t, "C-fallback", client.posted[0].Channel)
	}
}

func TestNotifier_OnCreated_NoDestinationStillConfirmsEmployee(t *testing.T) {
	client := &fakeClient{}
	leaves := &fakeLeaveService{attachOK: true}
	sched := &fakeScheduler{}
	n := NewNotifier(client, leaves, sched, config.SlackConfig{}, 24*time.Hour)

	// No manager and no fallback channel: the approval prompt has
	// nowhere to go, but the request is already committed.
	n.OnCreated(context.Background(), pendingRequest(false))

	if assert.Len(t, client.posted, 1) {
		assert.Equal(t, "U-emp", client.posted[0].Channel)
		assert.Contains(t, client.posted[0].Fallback, "awaiting approval")
	}
	assert.Empty(t, leaves.attached)
	assert.Len(t, sched.jobs, 1)
}

func TestNotifier_OnCreated_RetriesTransientFailure(t *testing.T) {
	client := &fakeClient{postErr: fmt.Errorf("rate limited"), postErrOnce: true}
	leaves := &fakeLeaveService{attachOK: true}
	n := newTestNotifier(client, leaves, &fakeScheduler{}, 0)

	n.OnCreated(context.Background(), pendingRequest(true))

	// The first attempt fails, the retry lands.
	if assert.Len(t, client.posted, 2) {
		assert.Equal(t, "U-mgr", client.posted[0].Channel)
	}
	assert.Len(t, leaves.attached, 1)
}

func TestNotifier_OnUpdated_RewritesPromptInPlace(t *testing.T) {
	client := &fakeClient{}
	n := newTestNotifier(client, &fakeLeaveService{}, &fakeScheduler{}, 0)

	req := pendingRequest(true)
	req.SlackChannelID = "C-mgr"
	req.SlackMessageTS = "1700000000.0"

	n.OnUpdated(context.Background(), req)

	if assert.Len(t, client.updates, 1) {
		assert.Equal(t, slackapp.MessageRef{Channel: "C-mgr", Timestamp: "1700000000.0"}, client.updates[0].Ref)
		assert.Contains(t, client.updates[0].Fallback, "has been updated")
	}

	// The employee hears about the change too.
	if assert.Len(t, client.posted, 1) {
		assert.Equal(t, "U-emp", client.posted[0].Channel)
		assert.Contains(t, client.posted[0].Fallback, "has been updated")
		assert.Contains(t, client.posted[0].Fallback, "awaiting approval")
	}
}

func TestNotifier_OnUpdated_FallsBackToCreateWithoutHandle(t *testing.T) {
	client := &fakeClient{}
	sched := &fakeScheduler{}
	n := newTestNotifier(client, &fakeLeaveService{attachOK: true}, sched, time.Hour)

	n.OnUpdated(context.Background(), pendingRequest(true))

	assert.Empty(t, client.updates)
	assert.NotEmpty(t, client.posted)
	assert.Len(t, sched.jobs, 1)
}

func TestNotifier_OnDecided(t *testing.T) {
	client := &fakeClient{}
	n := newTestNotifier(client, &fakeLeaveService{}, &fakeScheduler{}, 0)

	req := pendingRequest(true)
	req.Status = leave.StatusApproved
	req.Approver = &employee.Employee{Name: "Priya Mehta"}
	req.SlackChannelID = "C-mgr"
	req.SlackMessageTS = "1700000000.0"

	n.OnDecided(context.Background(), req)

	// Prompt rewritten with the outcome, employee DM'd the result.
	if assert.Len(t, client.updates, 1) {
		assert.Contains(t, client.updates[0].Fallback, "has been approved")
	}
	if assert.Len(t, client.posted, 1) {
		assert.Equal(t, "U-emp", client.posted[0].Channel)
	}
}

func TestNotifier_ReminderDue_PostsToManager(t *testing.T) {
	client := &fakeClient{}
	req := pendingRequest(true)
	leaves := &fakeLeaveService{getByIDFn: func(ctx context.Context, id uuid.UUID) (*leave.Request, error) {
		return req, nil
	}}
	n := newTestNotifier(client, leaves, &fakeScheduler{}, 0)

	payload, _ := json.Marshal(reminderPayload{LeaveRequestID: req.ID.String()})
	assert.NoError(t, n.ReminderDue(context.Background(), payload))

	if assert.Len(t, client.posted, 1) {
		assert.Equal(t, "U-mgr", client.posted[0].Channel)
		assert.Contains(t, client.posted[0].Fallback, "still awaiting your approval")
		assert.Contains(t, client.posted[0].Fallback, "Asha Rao")
		assert.Contains(t, client.posted[0].Fallback, "Mar 16")
	}
}

func TestNotifier_ReminderDue_SkipsDecidedRequest(t *testing.T) {
	client := &fakeClient{}
	req := pendingRequest(true)
	req.Status = leave.StatusApproved
	leaves := &fakeLeaveService{getByIDFn: func(ctx context.Context, id uuid.UUID) (*leave.Request, error) {
		return req, nil
	}}
	n := newTestNotifier(client, leaves, &fakeScheduler{}, 0)

	payload, _ := json.Marshal(reminderPayload{LeaveRequestID: req.ID.String()})
	assert.NoError(t, n.ReminderDue(context.Background(), payload))
	assert.Empty(t, client.posted)
}

func TestNotifier_ReminderDue_MissingRequestIsNotAnError(t *testing.T) {
	leaves := &fakeLeaveService{getByIDFn: func(ctx context.Context, id uuid.UUID) (*leave.Request, error) {
		return nil, leaveerrors.ErrRequestNotFound
	}}
	n := newTestNotifier(&fakeClient{}, leaves, &fakeScheduler{}, 0)

	payload, _ := json.Marshal(reminderPayload{LeaveRequestID: uuid.New().String()})
	assert.NoError(t, n.ReminderDue(context.Background(), payload))
}
