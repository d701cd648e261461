package service

import (
	"encoding/json"
	"errors"
	"log"

	"salonemart/internal/models"
)

// Shared business-rule sentinels. Repository-level errors (invalid amount,
// invalid transition, not found) live in the repository package.
var (
	ErrInvalidState        = errors.New("escrow is not in the required state")
	ErrAlreadyProcessed    = errors.New("already processed")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrAccountFrozen       = errors.New("account is frozen")
	ErrSameParty           = errors.New("buyer and seller must differ")
	ErrNotOwner            = errors.New("not a party to this order")
)

// LedgerStore is the append-only ledger as the services consume it.
type LedgerStore interface {
	Append(e *models.LedgerEntry) error
	Finalize(entryID uint, status string) error
	Balance(userID uint) (int64, error)
	FindPendingByProviderRef(providerRef, entryType string) (*models.LedgerEntry, error)
	FindPendingByReference(reference, entryType string) (*models.LedgerEntry, error)
	ListByUser(userID uint, limit, offset int) ([]models.LedgerEntry, error)
}

// OrderStore persists orders and their escrow transitions.
type OrderStore interface {
	OpenEscrow(o *models.Order, debit *models.LedgerEntry, evt *models.OutboxEvent) error
	ResolveEscrow(orderNo, toEscrow, toStatus string, credit *models.LedgerEntry, evt *models.OutboxEvent) error
	UpdateStatus(orderNo, from, to string) error
	GetByOrderNo(orderNo string) (*models.Order, error)
	ListByUser(userID uint, limit, offset int) ([]models.Order, error)
}

type UserStore interface {
	GetByID(id uint) (*models.User, error)
}

// WebhookEventStore is the processed-events record backing webhook
// idempotency.
type WebhookEventStore interface {
	Seen(eventID string) (bool, error)
	Record(evt *models.WebhookEvent) error
}

// EventQueue accepts domain events for asynchronous publication.
type EventQueue interface {
	Enqueue(evt *models.OutboxEvent) error
}

// newOutboxEvent builds an outbox row, or nil when the topic is unset
// (event publishing disabled) or the payload cannot be marshalled.
func newOutboxEvent(topic, key string, payload interface{}) *models.OutboxEvent {
	if topic == "" {
		return nil
	}
	b, err := json.Marshal(payload)
	if err != nil {
		log.Printf("[Outbox] marshal %s event: %v", topic, err)
		return nil
	}
	return &models.OutboxEvent{
		Topic:    topic,
		EventKey: key,
		Payload:  string(b),
		Status:   models.OutboxStatusPending,
	}
}
