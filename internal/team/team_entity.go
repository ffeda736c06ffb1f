package team

import (
	"time"

	"github.com/google/uuid"
)

type Team struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name           string    `gorm:"type:varchar(100);not null;uniqueIndex"`
	SlackChannelID string    `gorm:"type:varchar(50);not null"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
