package repository

import (
	"errors"

	"salonemart/internal/models"

	"gorm.io/gorm"
)

var ErrDuplicateEvent = errors.New("webhook event already processed")

type WebhookEventRepository struct {
	db *gorm.DB
}

func NewWebhookEventRepository(db *gorm.DB) *WebhookEventRepository {
	return &WebhookEventRepository{db: db}
}

func (r *WebhookEventRepository) Seen(eventID string) (bool, error) {
	var count int64
	err := r.db.Model(&models.WebhookEvent{}).Where("event_id = ?", eventID).Count(&count).Error
	return count > 0, err
}

// Record inserts the processed-event marker. The unique index on event_id
// makes this the authoritative duplicate check under concurrent deliveries.
func (r *WebhookEventRepository) Record(evt *models.WebhookEvent) error {
	if err := r.db.Create(evt).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrDuplicateEvent
		}
		return err
	}
	return nil
}
