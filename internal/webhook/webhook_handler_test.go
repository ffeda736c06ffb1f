package webhook

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/R-M-Tejaswini/slack-leave-app/internal/config"
	"github.com/R-M-Tejaswini/slack-leave-app/internal/employee"
	"github.com/R-M-Tejaswini/slack-leave-app/internal/leave"
	leaveerrors "github.com/R-M-Tejaswini/slack-leave-app/internal/leave/errors"
	"github.com/R-M-Tejaswini/slack-leave-app/internal/leavetype"
	"github.com/R-M-Tejaswini/slack-leave-app/internal/notify"
	"github.com/R-M-Tejaswini/slack-leave-app/internal/slackapp"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	slackgo "github.com/slack-go/slack"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

type fakeEmployeeService struct {
	ensureBySlackIDFn func(ctx context.Context, slackUserID, name string) (*employee.Employee, error)
}

func (f *fakeEmployeeService) Create(ctx context.Context, req employee.CreateEmployeeRequest) (employee.EmployeeResponse, error) {
	return employee.EmployeeResponse{}, nil
}
func (f *fakeEmployeeService) GetAll(ctx context.Context) ([]employee.EmployeeResponse, error) {
	return nil, nil
}
func (f *fakeEmployeeService) GetByID(ctx context.Context, id string) (employee.EmployeeResponse, error) {
	return employee.EmployeeResponse{}, nil
}
func (f *fakeEmployeeService) Update(ctx context.Context, id string, req employee.UpdateEmployeeRequest) (employee.EmployeeResponse, error) {
	return employee.EmployeeResponse{}, nil
}
func (f *fakeEmployeeService) Delete(ctx context.Context, id string) error { return nil }
func (f *fakeEmployeeService) EnsureBySlackID(ctx context.Context, slackUserID, name string) (*employee.Employee, error) {
	return f.ensureBySlackIDFn(ctx, slackUserID, name)
}

type fakeLeaveService struct {
	createFn          func(ctx context.Context, input leave.CreateInput) (*leave.Request, error)
	updateFn          func(ctx context.Context, id uuid.UUID, input leave.UpdateInput) (*leave.Request, error)
	cancelFn          func(ctx context.Context, id uuid.UUID) (*leave.Request, error)
	decideFn          func(ctx context.Context, id uuid.UUID, approver *employee.Employee, approve bool) (*leave.Request, error)
	getByIDFn         func(ctx context.Context, id uuid.UUID) (*leave.Request, error)
	listPendingFn     func(ctx context.Context, employeeID uuid.UUID) ([]leave.Request, error)
	monthOverviewFn   func(ctx context.Context, emp *employee.Employee, year int, month time.Month) (*leave.MonthOverview, error)
	approvedInRangeFn func(ctx context.Context, start, end time.Time) ([]leave.Request, error)
}

func (f *fakeLeaveService) Create(ctx context.Context, input leave.CreateInput) (*leave.Request, error) {
	return f.createFn(ctx, input)
}
func (f *fakeLeaveService) Update(ctx context.Context, id uuid.UUID, input leave.UpdateInput) (*leave.Request, error) {
	return f.updateFn(ctx, id, input)
}
func (f *fakeLeaveService) Cancel(ctx context.Context, id uuid.UUID) (*leave.Request, error) {
	return f.cancelFn(ctx, id)
}
func (f *fakeLeaveService) Decide(ctx context.Context, id uuid.UUID, approver *employee.Employee, approve bool) (*leave.Request, error) {
	return f.decideFn(ctx, id, approver, approve)
}
func (f *fakeLeaveService) AttachMessageHandle(ctx context.Context, id uuid.UUID, channelID, ts string) (bool, error) {
	return true, nil
}
func (f *fakeLeaveService) GetByID(ctx context.Context, id uuid.UUID) (*leave.Request, error) {
	return f.getByIDFn(ctx, id)
}
func (f *fakeLeaveService) ListPendingByEmployee(ctx context.Context, employeeID uuid.UUID) ([]leave.Request, error) {
	return f.listPendingFn(ctx, employeeID)
}
func (f *fakeLeaveService) ListOverlappingActive(ctx context.Context, employeeID uuid.UUID, start, end time.Time, excludeID *uuid.UUID) ([]leave.Request, error) {
	return nil, nil
}
func (f *fakeLeaveService) MonthOverview(ctx context.Context, emp *employee.Employee, year int, month time.Month) (*leave.MonthOverview, error) {
	return f.monthOverviewFn(ctx, emp, year, month)
}
func (f *fakeLeaveService) ApprovedInRange(ctx context.Context, start, end time.Time) ([]leave.Request, error) {
	return f.approvedInRangeFn(ctx, start, end)
}
func (f *fakeLeaveService) DurationDays(ctx context.Context, r *leave.Request) (int, error) {
	return 1, nil
}
func (f *fakeLeaveService) History(ctx context.Context, requestID uuid.UUID) ([]leave.Audit, error) {
	return nil, nil
}

// fakeClient is safe for the notifier goroutines the handler spawns.
type fakeClient struct {
	mu         sync.Mutex
	opened     []slackgo.ModalViewRequest
	updated    []slackgo.ModalViewRequest
	ephemerals []string
}

func (f *fakeClient) PostMessage(ctx context.Context, channelID, fallbackText string, blocks ...slackgo.Block) (slackapp.MessageRef, error) {
	return slackapp.MessageRef{Channel: channelID, Timestamp: "1.1"}, nil
}
func (f *fakeClient) UpdateMessage(ctx context.Context, ref slackapp.MessageRef, fallbackText string, blocks ...slackgo.Block) error {
	return nil
}
func (f *fakeClient) PostEphemeral(ctx context.Context, channelID, userID, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ephemerals = append(f.ephemerals, text)
	return nil
}
func (f *fakeClient) OpenView(ctx context.Context, triggerID string, view slackgo.ModalViewRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.opened = append(f.opened, view)
	return nil
}
func (f *fakeClient) UpdateView(ctx context.Context, viewID string, view slackgo.ModalViewRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updated = append(f.updated, view)
	return nil
}

func (f *fakeClient) lastOpened(t *testing.T) slackgo.ModalViewRequest {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.opened) == 0 {
		t.Fatal("no view was opened")
	}
	return f.opened[len(f.opened)-1]
}

type staticTypeRepo struct {
	names []string
}

func (s *staticTypeRepo) WithTx(tx *gorm.DB) leavetype.Repository { return s }
func (s *staticTypeRepo) Create(ctx context.Context, lt *leavetype.LeaveType) error {
	return nil
}
func (s *staticTypeRepo) FindAll(ctx context.Context) ([]leavetype.LeaveType, error) {
	types := make([]leavetype.LeaveType, len(s.names))
	for i, name := range s.names {
		types[i] = leavetype.LeaveType{ID: uuid.New(), Name: name}
	}
	return types, nil
}
func (s *staticTypeRepo) FindByID(ctx context.Context, id string) (*leavetype.LeaveType, error) {
	return nil, gorm.ErrRecordNotFound
}
func (s *staticTypeRepo) FindByName(ctx context.Context, name string) (*leavetype.LeaveType, error) {
	return nil, gorm.ErrRecordNotFound
}
func (s *staticTypeRepo) Update(ctx context.Context, lt *leavetype.LeaveType) error { return nil }
func (s *staticTypeRepo) Delete(ctx context.Context, id string) error               { return nil }
func (s *staticTypeRepo) CountRequestsReferencing(ctx context.Context, id string) (int64, error) {
	return 0, nil
}

type testHarness struct {
	handler   *Handler
	employees *fakeEmployeeService
	leaves    *fakeLeaveService
	client    *fakeClient
	router    *gin.Engine
	employee  *employee.Employee
}

func newHarness(t *testing.T) *testHarness {
	t.Helper()
	gin.SetMode(gin.TestMode)

	emp := &employee.Employee{ID: uuid.New(), SlackUserID: "U123", Name: "asha"}
	employees := &fakeEmployeeService{
		ensureBySlackIDFn: func(ctx context.Context, slackUserID, name string) (*employee.Employee, error) {
			return emp, nil
		},
	}
	leaves := &fakeLeaveService{}
	client := &fakeClient{}
	catalog := leavetype.NewCatalog(&staticTypeRepo{names: []string{"Annual", "Sick"}}, nil)
	notifier := notify.NewNotifier(client, leaves, nil, config.SlackConfig{FallbackChannel: "C-fallback"}, 0)

	handler := NewHandler(employees, leaves, notifier, client, catalog,
		func() time.Time { return day(2026, time.March, 16) })

	router := gin.New()
	router.POST("/commands", handler.SlashCommand)
	router.POST("/interactions", handler.Interactions)

	return &testHarness{
		handler:   handler,
		employees: employees,
		leaves:    leaves,
		client:    client,
		router:    router,
		employee:  emp,
	}
}

func (h *testHarness) postCommand(command string) *httptest.ResponseRecorder {
	form := url.Values{}
	form.Set("command", command)
	form.Set("user_id", "U123")
	form.Set("user_name", "asha")
	form.Set("trigger_id", "trigger-1")

	req := httptest.NewRequest(http.MethodPost, "/commands", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	h.router.ServeHTTP(w, req)
	return w
}

func (h *testHarness) postInteraction(payload string) *httptest.ResponseRecorder {
	form := url.Values{}
	form.Set("payload", payload)

	req := httptest.NewRequest(http.MethodPost, "/interactions", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	h.router.ServeHTTP(w, req)
	return w
}

func leaveFormPayload(callbackID, privateMetadata, start, end, leaveType, reason string) string {
	return fmt.Sprintf(`{
		"type": "view_submission",
		"user": {"id": "U123", "name": "asha"},
		"view": {
			"id": "V1",
			"callback_id": %q,
			"private_metadata": %q,
			"state": {"values": {
				"start_date_block": {"start_date_input": {"type": "datepicker", "selected_date": %q}},
				"end_date_block": {"end_date_input": {"type": "datepicker", "selected_date": %q}},
				"leave_type_block": {"leave_type_select": {"type": "static_select", "selected_option": {"value": %q}}},
				"reason_block": {"reason_input": {"type": "plain_text_input", "value": %q}}
			}}
		}
	}`, callbackID, privateMetadata, start, end, leaveType, reason)
}

func selectionPayload(callbackID, selectedValue string) string {
	return fmt.Sprintf(`{
		"type": "view_submission",
		"user": {"id": "U123", "name": "asha"},
		"view": {
			"id": "V1",
			"callback_id": %q,
			"state": {"values": {
				"request_selection_block": {"request_select_action": {"type": "static_select", "selected_option": {"value": %q}}}
			}}
		}
	}`, callbackID, selectedValue)
}

func blockActionPayload(actionID, value, viewTitle string) string {
	return fmt.Sprintf(`{
		"type": "block_actions",
		"user": {"id": "U999", "name": "manager"},
		"trigger_id": "trigger-2",
		"view": {"id": "V2", "title": {"type": "plain_text", "text": %q}},
		"actions": [{"action_id": %q, "block_id": "b1", "type": "button", "value": %q}]
	}`, viewTitle, actionID, value)
}

func TestSlashCommand_ApplyLeave(t *testing.T) {
	h := newHarness(t)

	w := h.postCommand("/apply_leave")
	assert.Equal(t, http.StatusOK, w.Code)

	modal := h.client.lastOpened(t)
	assert.Equal(t, slackapp.CallbackLeaveRequestModal, modal.CallbackID)
}

func TestSlashCommand_Unrecognized(t *testing.T) {
	h := newHarness(t)

	w := h.postCommand("/fire_everyone")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Command is not recognized.")
}

func TestSlashCommand_MyLeaves(t *testing.T) {
	h := newHarness(t)
	h.leaves.monthOverviewFn = func(ctx context.Context, emp *employee.Employee, year int, month time.Month) (*leave.MonthOverview, error) {
		assert.Equal(t, 2026, year)
		assert.Equal(t, time.March, month)
		return &leave.MonthOverview{Year: year, Month: month, Allowance: 2, Remaining: 1}, nil
	}

	w := h.postCommand("/my_leaves")
	assert.Equal(t, http.StatusOK, w.Code)

	modal := h.client.lastOpened(t)
	assert.Equal(t, "My Leave Calendar", modal.Title.Text)
}

func TestSlashCommand_CancelWithNothingPending(t *testing.T) {
	h := newHarness(t)
	h.leaves.listPendingFn = func(ctx context.Context, employeeID uuid.UUID) ([]leave.Request, error) {
		return nil, nil
	}

	w := h.postCommand("/cancel_leave")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, h.client.ephemerals, "You have no pending leave requests to modify.")
}

func TestSlashCommand_UpdateOpensSelection(t *testing.T) {
	h := newHarness(t)
	h.leaves.listPendingFn = func(ctx context.Context, employeeID uuid.UUID) ([]leave.Request, error) {
		return []leave.Request{{
			ID:        uuid.New(),
			StartDate: day(2026, time.March, 18),
			EndDate:   day(2026, time.March, 19),
			Status:    leave.StatusPending,
		}}, nil
	}

	w := h.postCommand("/update_leave")
	assert.Equal(t, http.StatusOK, w.Code)

	modal := h.client.lastOpened(t)
	assert.Equal(t, slackapp.CallbackSelectLeaveToUpdate, modal.CallbackID)
}

func TestInteractions_NewLeaveSubmission(t *testing.T) {
	h := newHarness(t)

	var got leave.CreateInput
	h.leaves.createFn = func(ctx context.Context, input leave.CreateInput) (*leave.Request, error) {
		got = input
		return &leave.Request{ID: uuid.New(), Status: leave.StatusPending, Employee: h.employee}, nil
	}

	payload := leaveFormPayload(slackapp.CallbackLeaveRequestModal, "", "2026-03-18", "2026-03-19", "Annual", "family visit")
	w := h.postInteraction(payload)
	assert.Equal(t, http.StatusOK, w.Code)

	assert.Equal(t, h.employee, got.Employee)
	assert.Equal(t, "Annual", got.LeaveTypeName)
	assert.Equal(t, day(2026, time.March, 18), got.StartDate)
	assert.Equal(t, day(2026, time.March, 19), got.EndDate)
	assert.Equal(t, "family visit", got.Reason)
}

func TestInteractions_SubmissionValidationErrors(t *testing.T) {
	cases := []struct {
		name      string
		err       error
		wantBlock string
	}{
		{"invalid range lands on end date", leaveerrors.ErrInvalidRange, slackapp.BlockEndDate},
		{"unknown type lands on leave type", leaveerrors.ErrLeaveTypeUnknown, slackapp.BlockLeaveType},
		{"overlap lands on start date", leaveerrors.ErrOverlap, slackapp.BlockStartDate},
		{"past date lands on start date", leaveerrors.ErrPastDate, slackapp.BlockStartDate},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := newHarness(t)
			h.leaves.createFn = func(ctx context.Context, input leave.CreateInput) (*leave.Request, error) {
				return nil, tc.err
			}

			payload := leaveFormPayload(slackapp.CallbackLeaveRequestModal, "", "2026-03-18", "2026-03-19", "Annual", "")
			w := h.postInteraction(payload)
			assert.Equal(t, http.StatusOK, w.Code)

			var resp struct {
				ResponseAction string            `json:"response_action"`
				Errors         map[string]string `json:"errors"`
			}
			assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, "errors", resp.ResponseAction)
			assert.Contains(t, resp.Errors, tc.wantBlock)
		})
	}
}

func TestInteractions_SubmissionMissingDate(t *testing.T) {
	h := newHarness(t)

	payload := leaveFormPayload(slackapp.CallbackLeaveRequestModal, "", "", "2026-03-19", "Annual", "")
	w := h.postInteraction(payload)
	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Errors map[string]string `json:"errors"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Please select a start date.", resp.Errors[slackapp.BlockStartDate])
}

func TestInteractions_CancelSubmission(t *testing.T) {
	h := newHarness(t)
	requestID := uuid.New()

	var cancelled uuid.UUID
	h.leaves.cancelFn = func(ctx context.Context, id uuid.UUID) (*leave.Request, error) {
		cancelled = id
		return &leave.Request{ID: id, Status: leave.StatusCancelled, Employee: h.employee}, nil
	}

	w := h.postInteraction(selectionPayload(slackapp.CallbackCancelLeaveSubmission, requestID.String()))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, requestID, cancelled)
}

func TestInteractions_CancelAlreadyActioned(t *testing.T) {
	h := newHarness(t)
	h.leaves.cancelFn = func(ctx context.Context, id uuid.UUID) (*leave.Request, error) {
		return nil, leaveerrors.ErrAlreadyActioned
	}

	w := h.postInteraction(selectionPayload(slackapp.CallbackCancelLeaveSubmission, uuid.New().String()))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, h.client.ephemerals, "This request cannot be cancelled as it has already been actioned.")
}

func TestInteractions_UpdateSelectionSwapsModal(t *testing.T) {
	h := newHarness(t)
	requestID := uuid.New()

	h.leaves.getByIDFn = func(ctx context.Context, id uuid.UUID) (*leave.Request, error) {
		return &leave.Request{
			ID:        id,
			StartDate: day(2026, time.March, 18),
			EndDate:   day(2026, time.March, 19),
			Status:    leave.StatusPending,
			LeaveType: &leavetype.LeaveType{Name: "Annual"},
		}, nil
	}

	w := h.postInteraction(selectionPayload(slackapp.CallbackSelectLeaveToUpdate, requestID.String()))
	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		ResponseAction string                   `json:"response_action"`
		View           slackgo.ModalViewRequest `json:"view"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "update", resp.ResponseAction)
	assert.Equal(t, slackapp.CallbackLeaveUpdateSubmission, resp.View.CallbackID)
	assert.Contains(t, resp.View.PrivateMetadata, requestID.String())
}

func TestInteractions_UpdateSelectionMissingRequestClears(t *testing.T) {
	h := newHarness(t)
	h.leaves.getByIDFn = func(ctx context.Context, id uuid.UUID) (*leave.Request, error) {
		return nil, leaveerrors.ErrRequestNotFound
	}

	w := h.postInteraction(selectionPayload(slackapp.CallbackSelectLeaveToUpdate, uuid.New().String()))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"response_action":"clear"`)
}

func TestInteractions_UpdateSubmission(t *testing.T) {
	h := newHarness(t)
	requestID := uuid.New()

	var gotID uuid.UUID
	var got leave.UpdateInput
	h.leaves.updateFn = func(ctx context.Context, id uuid.UUID, input leave.UpdateInput) (*leave.Request, error) {
		gotID, got = id, input
		return &leave.Request{ID: id, Status: leave.StatusPending, Employee: h.employee}, nil
	}

	payload := leaveFormPayload(slackapp.CallbackLeaveUpdateSubmission,
		fmt.Sprintf(`{"leave_request_id":"%s"}`, requestID.String()),
		"2026-03-20", "2026-03-20", "Sick", "fever")

	w := h.postInteraction(payload)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, requestID, gotID)
	assert.Equal(t, "Sick", got.LeaveTypeName)
	assert.Equal(t, day(2026, time.March, 20), got.StartDate)
}

func TestInteractions_UpdateSubmissionBadMetadata(t *testing.T) {
	h := newHarness(t)

	payload := leaveFormPayload(slackapp.CallbackLeaveUpdateSubmission, "not json", "2026-03-20", "2026-03-20", "Sick", "")
	w := h.postInteraction(payload)
	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Errors map[string]string `json:"errors"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "The original request was not found.", resp.Errors[slackapp.BlockStartDate])
}

func TestInteractions_ApproveAndReject(t *testing.T) {
	h := newHarness(t)
	requestID := uuid.New()

	var approved []bool
	h.leaves.decideFn = func(ctx context.Context, id uuid.UUID, approver *employee.Employee, approve bool) (*leave.Request, error) {
		assert.Equal(t, requestID, id)
		approved = append(approved, approve)
		status := leave.StatusRejected
		if approve {
			status = leave.StatusApproved
		}
		return &leave.Request{ID: id, Status: status, Employee: h.employee}, nil
	}

	w := h.postInteraction(blockActionPayload(slackapp.ActionApproveLeave, requestID.String(), ""))
	assert.Equal(t, http.StatusOK, w.Code)
	w = h.postInteraction(blockActionPayload(slackapp.ActionRejectLeave, requestID.String(), ""))
	assert.Equal(t, http.StatusOK, w.Code)

	assert.Equal(t, []bool{true, false}, approved)
}

func TestInteractions_DecisionRaceLoserGetsEphemeral(t *testing.T) {
	h := newHarness(t)
	h.leaves.decideFn = func(ctx context.Context, id uuid.UUID, approver *employee.Employee, approve bool) (*leave.Request, error) {
		return nil, leaveerrors.ErrAlreadyActioned
	}

	w := h.postInteraction(blockActionPayload(slackapp.ActionApproveLeave, uuid.New().String(), ""))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, h.client.ephemerals, "This request has already been actioned.")
}

func TestInteractions_WhoIsAwayOpensTeamCalendar(t *testing.T) {
	h := newHarness(t)
	requestID := uuid.New()

	h.leaves.getByIDFn = func(ctx context.Context, id uuid.UUID) (*leave.Request, error) {
		return &leave.Request{
			ID:        id,
			StartDate: day(2026, time.April, 6),
			EndDate:   day(2026, time.April, 7),
			Status:    leave.StatusPending,
		}, nil
	}
	h.leaves.approvedInRangeFn = func(ctx context.Context, start, end time.Time) ([]leave.Request, error) {
		assert.Equal(t, day(2026, time.April, 1), start)
		assert.Equal(t, day(2026, time.April, 30), end)
		return nil, nil
	}

	w := h.postInteraction(blockActionPayload(slackapp.ActionViewOverlappingLeave, requestID.String(), ""))
	assert.Equal(t, http.StatusOK, w.Code)

	modal := h.client.lastOpened(t)
	assert.Equal(t, "Team Leave Calendar", modal.Title.Text)
}

func TestInteractions_CalendarNavigation(t *testing.T) {
	h := newHarness(t)
	h.leaves.monthOverviewFn = func(ctx context.Context, emp *employee.Employee, year int, month time.Month) (*leave.MonthOverview, error) {
		assert.Equal(t, 2026, year)
		assert.Equal(t, time.April, month)
		return &leave.MonthOverview{Year: year, Month: month, Allowance: 2, Remaining: 2}, nil
	}

	w := h.postInteraction(blockActionPayload(slackapp.ActionNavigateCalendarNext, "2026-04-01", "My Leave Calendar"))
	assert.Equal(t, http.StatusOK, w.Code)

	h.client.mu.Lock()
	defer h.client.mu.Unlock()
	if assert.Len(t, h.client.updated, 1) {
		assert.Equal(t, "My Leave Calendar", h.client.updated[0].Title.Text)
	}
}

func TestInteractions_UnhandledCallbackIsAcknowledged(t *testing.T) {
	h := newHarness(t)

	payload := `{"type": "view_submission", "user": {"id": "U123"}, "view": {"callback_id": "something_else"}}`
	w := h.postInteraction(payload)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Body.String())
}
