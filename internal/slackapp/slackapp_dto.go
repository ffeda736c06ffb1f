package slackapp

import "time"

// Slash commands the app responds to.
const (
	CommandApplyLeave  = "/apply_leave"
	CommandMyLeaves    = "/my_leaves"
	CommandUpdateLeave = "/update_leave"
	CommandCancelLeave = "/cancel_leave"
)

// View submission callback ids.
const (
	CallbackLeaveRequestModal     = "leave_request_modal"
	CallbackSelectLeaveToUpdate   = "select_leave_to_update"
	CallbackCancelLeaveSubmission = "cancel_leave_submission"
	CallbackLeaveUpdateSubmission = "leave_update_modal_submission"
	CallbackTeamLeaveCalendar     = "team_leave_calendar_modal"
)

// Block action ids.
const (
	ActionApproveLeave         = "approve_leave"
	ActionRejectLeave          = "reject_leave"
	ActionViewOverlappingLeave = "view_overlapping_leave"
	ActionNavigateCalendarPrev = "navigate_calendar_prev"
	ActionNavigateCalendarNext = "navigate_calendar_next"
	ActionRequestSelect        = "request_select_action"
)

// Form block and element ids shared by the create and update modals.
// Validation failures are attached to these block ids so the error
// shows up under the offending field.
const (
	BlockStartDate   = "start_date_block"
	BlockEndDate     = "end_date_block"
	BlockLeaveType   = "leave_type_block"
	BlockReason      = "reason_block"
	BlockRequestPick = "request_selection_block"

	InputStartDate   = "start_date_input"
	InputEndDate     = "end_date_input"
	SelectLeaveType  = "leave_type_select"
	InputReason      = "reason_input"
)

// RequestView is the presentation snapshot of a leave request. Callers
// assemble it from the domain entities so this package stays free of
// database types.
type RequestView struct {
	ID           string
	EmployeeID   string
	EmployeeName string
	SlackUserID  string
	LeaveType    string
	StartDate    time.Time
	EndDate      time.Time
	Reason       string
	Status       string
	DurationDays int
	ApproverName string
	CreatedAt    time.Time
}

// MonthSummary carries the allowance figures shown above an employee's
// own calendar.
type MonthSummary struct {
	Allowance int
	Remaining int
}

// SelectionAction distinguishes the two uses of the request picker.
type SelectionAction string

const (
	SelectionUpdate SelectionAction = "update"
	SelectionCancel SelectionAction = "cancel"
)

// UpdateModalMetadata rides in the update modal's private metadata so
// the submission can be tied back to the request being edited.
type UpdateModalMetadata struct {
	LeaveRequestID string `json:"leave_request_id"`
}
