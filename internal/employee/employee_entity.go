package employee

import (
	"time"

	"github.com/R-M-Tejaswini/slack-leave-app/internal/team"

	"github.com/google/uuid"
)

// Employee links a Slack identity to the org structure. Manager is a
// self-reference kept as a nullable id so a manager can be removed
// without touching their reports.
type Employee struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SlackUserID string    `gorm:"type:varchar(50);not null;uniqueIndex"`
	Name        string    `gorm:"type:varchar(100);not null"`
	Email       string    `gorm:"type:varchar(255);not null;uniqueIndex"`

	ManagerID *uuid.UUID `gorm:"type:uuid"`
	Manager   *Employee  `gorm:"foreignKey:ManagerID"`
	TeamID    *uuid.UUID `gorm:"type:uuid"`
	Team      *team.Team `gorm:"foreignKey:TeamID"`

	MonthlyLeaveAllowance int `gorm:"type:int;not null;default:2"`

	CreatedAt time.Time
	UpdatedAt time.Time
}
