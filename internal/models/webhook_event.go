package models

import (
	"time"
)

// WebhookEvent records a processed provider event. The unique index on
// EventID is the idempotency guard for at-least-once webhook delivery.
type WebhookEvent struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	EventID   string    `gorm:"size:128;uniqueIndex;not null" json:"event_id"`
	Name      string    `gorm:"size:64;not null" json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

func (WebhookEvent) TableName() string {
	return "webhook_events"
}
