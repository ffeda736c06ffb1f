package events

import "time"

const LeaveRequestsTopic = "leave.requests.v1"

const (
	LeaveRequestCreated   = "leave.request.created"
	LeaveRequestUpdated   = "leave.request.updated"
	LeaveRequestCancelled = "leave.request.cancelled"
	LeaveRequestApproved  = "leave.request.approved"
	LeaveRequestRejected  = "leave.request.rejected"
)

// LeaveRequestEvent is the wire form of a lifecycle transition. It is
// self-contained: consumers act on it without reading the database, so
// it carries the employee and channel details alongside the request.
type LeaveRequestEvent struct {
	EventType     string    `json:"event_type"`
	RequestID     string    `json:"request_id"`
	EmployeeID    string    `json:"employee_id"`
	EmployeeName  string    `json:"employee_name"`
	SlackUserID   string    `json:"slack_user_id"`
	TeamChannelID string    `json:"team_channel_id,omitempty"`
	LeaveType     string    `json:"leave_type"`
	Retrospective bool      `json:"retrospective"`
	StartDate     string    `json:"start_date"`
	EndDate       string    `json:"end_date"`
	WorkingDays   int       `json:"working_days"`
	Status        string    `json:"status"`
	OccurredAt    time.Time `json:"occurred_at"`
}
