package leave

import (
	"time"

	"github.com/R-M-Tejaswini/slack-leave-app/internal/employee"
	"github.com/R-M-Tejaswini/slack-leave-app/internal/leavetype"

	"github.com/google/uuid"
)

const (
	StatusPending   = "pending"
	StatusApproved  = "approved"
	StatusRejected  = "rejected"
	StatusCancelled = "cancelled"
)

const (
	ActionCreated   = "created"
	ActionUpdated   = "updated"
	ActionCancelled = "cancelled"
	ActionApproved  = "approved"
	ActionRejected  = "rejected"
)

// Request is the central transactional entity. Its duration in working
// days is always derived from the dates and the holiday table, never
// stored. The slack channel/ts pair is the handle of the approval
// message sent to the manager; it is written once and read on every
// later update of that message.
type Request struct {
	ID         uuid.UUID          `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	EmployeeID uuid.UUID          `gorm:"type:uuid;not null;index:idx_leave_requests_employee_dates"`
	Employee   *employee.Employee `gorm:"foreignKey:EmployeeID"`

	LeaveTypeID uuid.UUID            `gorm:"type:uuid;not null"`
	LeaveType   *leavetype.LeaveType `gorm:"foreignKey:LeaveTypeID"`

	StartDate time.Time `gorm:"type:date;not null;index:idx_leave_requests_employee_dates"`
	EndDate   time.Time `gorm:"type:date;not null;index:idx_leave_requests_employee_dates"`
	Reason    string    `gorm:"type:text"`

	Status     string             `gorm:"type:varchar(10);not null;default:'pending';index"`
	ApproverID *uuid.UUID         `gorm:"type:uuid"`
	Approver   *employee.Employee `gorm:"foreignKey:ApproverID"`

	SlackChannelID string `gorm:"type:varchar(50)"`
	SlackMessageTS string `gorm:"type:varchar(50)"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (Request) TableName() string { return "leave_requests" }

// Terminal reports whether the request has reached a final state.
func (r *Request) Terminal() bool {
	return r.Status != StatusPending
}

// HasMessageHandle reports whether the approval prompt was delivered.
func (r *Request) HasMessageHandle() bool {
	return r.SlackChannelID != "" && r.SlackMessageTS != ""
}

// Audit is an append-only history row. Audit rows are the source of
// historical truth and are never updated or deleted; a nil actor means
// the action was performed by the system.
type Audit struct {
	ID        uuid.UUID          `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	RequestID uuid.UUID          `gorm:"type:uuid;not null;index"`
	Action    string             `gorm:"type:varchar(50);not null"`
	ActorID   *uuid.UUID         `gorm:"type:uuid"`
	Actor     *employee.Employee `gorm:"foreignKey:ActorID"`
	Note      string             `gorm:"type:text"`
	CreatedAt time.Time
}

func (Audit) TableName() string { return "leave_request_audits" }
