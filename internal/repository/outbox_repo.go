package repository

import (
	"salonemart/internal/models"

	"gorm.io/gorm"
)

type OutboxRepository struct {
	db *gorm.DB
}

func NewOutboxRepository(db *gorm.DB) *OutboxRepository {
	return &OutboxRepository{db: db}
}

// Enqueue writes an event outside any surrounding transaction; state-changing
// repos create outbox rows in their own transactions instead.
func (r *OutboxRepository) Enqueue(evt *models.OutboxEvent) error {
	return r.db.Create(evt).Error
}

func (r *OutboxRepository) GetPending(limit int) ([]models.OutboxEvent, error) {
	var events []models.OutboxEvent
	err := r.db.
		Where("status = ?", models.OutboxStatusPending).
		Order("created_at ASC").
		Limit(limit).
		Find(&events).Error
	return events, err
}

func (r *OutboxRepository) MarkSent(id uint) error {
	return r.db.Model(&models.OutboxEvent{}).Where("id = ?", id).
		Update("status", models.OutboxStatusSent).Error
}

func (r *OutboxRepository) IncrementRetry(id uint) error {
	return r.db.Model(&models.OutboxEvent{}).Where("id = ?", id).
		UpdateColumn("retry_count", gorm.Expr("retry_count + 1")).Error
}

func (r *OutboxRepository) MarkFailed(id uint) error {
	return r.db.Model(&models.OutboxEvent{}).Where("id = ?", id).
		Update("status", models.OutboxStatusFailed).Error
}
