package leave

import (
	"time"

	"github.com/R-M-Tejaswini/slack-leave-app/internal/employee"

	"github.com/google/uuid"
)

// CreateInput carries a fully resolved employee: callers look the
// employee up (or provision them) before asking for a request.
type CreateInput struct {
	Employee      *employee.Employee
	LeaveTypeName string
	StartDate     time.Time
	EndDate       time.Time
	Reason        string
}

type UpdateInput struct {
	LeaveTypeName string
	StartDate     time.Time
	EndDate       time.Time
	Reason        string
}

// MonthOverview is the per-employee summary shown on the calendar view:
// the employee's pending and approved requests whose start date falls in
// the month, plus the allowance arithmetic for that month.
type MonthOverview struct {
	Year      int
	Month     time.Month
	Requests  []Request
	Allowance int
	DaysTaken int
	Remaining int
}

type RequestResponse struct {
	ID             uuid.UUID  `json:"id"`
	EmployeeID     uuid.UUID  `json:"employee_id"`
	EmployeeName   string     `json:"employee_name,omitempty"`
	LeaveType      string     `json:"leave_type,omitempty"`
	StartDate      string     `json:"start_date"`
	EndDate        string     `json:"end_date"`
	Reason         string     `json:"reason,omitempty"`
	Status         string     `json:"status"`
	ApproverID     *uuid.UUID `json:"approver_id,omitempty"`
	SlackChannelID string     `json:"slack_channel_id,omitempty"`
	SlackMessageTS string     `json:"slack_message_ts,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

func ToRequestResponse(r *Request) RequestResponse {
	resp := RequestResponse{
		ID:             r.ID,
		EmployeeID:     r.EmployeeID,
		StartDate:      r.StartDate.Format("2006-01-02"),
		EndDate:        r.EndDate.Format("2006-01-02"),
		Reason:         r.Reason,
		Status:         r.Status,
		ApproverID:     r.ApproverID,
		SlackChannelID: r.SlackChannelID,
		SlackMessageTS: r.SlackMessageTS,
		CreatedAt:      r.CreatedAt,
		UpdatedAt:      r.UpdatedAt,
	}
	if r.Employee != nil {
		resp.EmployeeName = r.Employee.Name
	}
	if r.LeaveType != nil {
		resp.LeaveType = r.LeaveType.Name
	}
	return resp
}

type AuditResponse struct {
	ID        uuid.UUID `json:"id"`
	Action    string    `json:"action"`
	ActorID   *uuid.UUID `json:"actor_id,omitempty"`
	ActorName string    `json:"actor_name,omitempty"`
	Note      string    `json:"note,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func ToAuditResponse(a *Audit) AuditResponse {
	resp := AuditResponse{
		ID:        a.ID,
		Action:    a.Action,
		ActorID:   a.ActorID,
		Note:      a.Note,
		CreatedAt: a.CreatedAt,
	}
	if a.Actor != nil {
		resp.ActorName = a.Actor.Name
	}
	return resp
}
