package scheduler

import (
	"time"

	"github.com/google/uuid"
)

const (
	JobStatusPending = "pending"
	JobStatusDone    = "done"
	JobStatusFailed  = "failed"
)

const maxAttempts = 3

// Job is a one-shot callback persisted to survive restarts. The worker
// picks jobs up once run_at passes; the callback id selects a handler
// registered at startup and the payload is handler-defined JSON.
type Job struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CallbackID string    `gorm:"type:varchar(64);not null"`
	Payload    []byte    `gorm:"type:jsonb;not null"`
	RunAt      time.Time `gorm:"not null;index"`
	Status     string    `gorm:"type:varchar(10);not null;default:'pending';index"`
	Attempts   int       `gorm:"not null;default:0"`
	LastError  string    `gorm:"type:varchar(500)"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (Job) TableName() string { return "scheduled_jobs" }
