package models

import (
	"time"
)

const (
	OutboxStatusPending = "PENDING"
	OutboxStatusSent    = "SENT"
	OutboxStatusFailed  = "FAILED"
)

// OutboxEvent is a domain event queued for Kafka. Rows are written in the
// same database transaction as the state change they describe and published
// by the background sender.
type OutboxEvent struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	Topic      string    `gorm:"size:64;not null" json:"topic"`
	EventKey   string    `gorm:"size:128;not null" json:"event_key"`
	Payload    string    `gorm:"type:text;not null" json:"payload"`
	Status     string    `gorm:"size:10;not null;index;default:PENDING" json:"status"`
	RetryCount int       `gorm:"not null;default:0" json:"retry_count"`
	CreatedAt  time.Time `gorm:"index" json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func (OutboxEvent) TableName() string {
	return "outbox_events"
}
