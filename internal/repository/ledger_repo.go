package repository

import (
	"errors"
	"fmt"
	"time"

	"salonemart/internal/domain"
	"salonemart/internal/models"

	"gorm.io/gorm"
)

var (
	ErrInvalidAmount     = errors.New("amount must be a positive integer of minor units")
	ErrInvalidTransition = errors.New("invalid ledger status transition")
	ErrEntryNotFound     = errors.New("ledger entry not found")
)

// LedgerRepository is the append-only store of monetary events and the single
// source of truth for balances.
type LedgerRepository struct {
	db *gorm.DB
}

func NewLedgerRepository(db *gorm.DB) *LedgerRepository {
	return &LedgerRepository{db: db}
}

// Append writes a new immutable entry. Amounts must be positive; no business
// validation happens here, that belongs to callers.
func (r *LedgerRepository) Append(e *models.LedgerEntry) error {
	if e.Amount <= 0 {
		return ErrInvalidAmount
	}
	if !domain.IsEntryType(e.Type) {
		return fmt.Errorf("unknown transaction type %q", e.Type)
	}
	if e.Status == "" {
		e.Status = domain.EntryStatusPending
	}
	return r.db.Create(e).Error
}

// Finalize moves a pending entry to success or failed. The transition is a
// compare-and-set on status so concurrent webhook deliveries converge to one
// outcome. Re-finalizing an entry to the terminal status it already has is a
// no-op, to tolerate at-least-once delivery.
func (r *LedgerRepository) Finalize(entryID uint, status string) error {
	if status != domain.EntryStatusSuccess && status != domain.EntryStatusFailed {
		return fmt.Errorf("%w: %q is not a terminal status", ErrInvalidTransition, status)
	}
	res := r.db.Model(&models.LedgerEntry{}).
		Where("id = ? AND status = ?", entryID, domain.EntryStatusPending).
		Update("status", status)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 1 {
		return nil
	}
	var current models.LedgerEntry
	if err := r.db.Select("status").First(&current, entryID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrEntryNotFound
		}
		return err
	}
	if current.Status == status {
		return nil
	}
	return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, current.Status, status)
}

// Balance folds over all success entries for the user: credits minus debits.
// It is always derived in one aggregate query, never read from a stored
// running total.
func (r *LedgerRepository) Balance(userID uint) (int64, error) {
	var balance int64
	err := r.db.Model(&models.LedgerEntry{}).
		Select("COALESCE(SUM(CASE WHEN type IN ('deposit','earning','refund') THEN amount ELSE -amount END), 0)").
		Where("user_id = ? AND status = ?", userID, domain.EntryStatusSuccess).
		Scan(&balance).Error
	if err != nil {
		return 0, err
	}
	return balance, nil
}

// FindPendingByProviderRef locates the pending entry a provider confirmation
// refers to.
func (r *LedgerRepository) FindPendingByProviderRef(providerRef, entryType string) (*models.LedgerEntry, error) {
	var e models.LedgerEntry
	err := r.db.
		Where("provider_ref = ? AND type = ? AND status = ?", providerRef, entryType, domain.EntryStatusPending).
		First(&e).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEntryNotFound
		}
		return nil, err
	}
	return &e, nil
}

// FindPendingByReference matches on our internal reference instead, for
// provider events that echo the reference back rather than their own id.
func (r *LedgerRepository) FindPendingByReference(reference, entryType string) (*models.LedgerEntry, error) {
	var e models.LedgerEntry
	err := r.db.
		Where("reference = ? AND type = ? AND status = ?", reference, entryType, domain.EntryStatusPending).
		First(&e).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEntryNotFound
		}
		return nil, err
	}
	return &e, nil
}

func (r *LedgerRepository) ListByUser(userID uint, limit, offset int) ([]models.LedgerEntry, error) {
	var entries []models.LedgerEntry
	err := r.db.
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Limit(limit).Offset(offset).
		Find(&entries).Error
	return entries, err
}

// UserBalance is one row of the grouped balance scan.
type UserBalance struct {
	UserID  uint  `json:"user_id"`
	Balance int64 `json:"balance"`
}

// NegativeBalances returns every user whose derived balance is below zero, a
// hard invariant violation.
func (r *LedgerRepository) NegativeBalances() ([]UserBalance, error) {
	var rows []UserBalance
	err := r.db.Model(&models.LedgerEntry{}).
		Select("user_id, SUM(CASE WHEN type IN ('deposit','earning','refund') THEN amount ELSE -amount END) AS balance").
		Where("status = ?", domain.EntryStatusSuccess).
		Group("user_id").
		Having("balance < 0").
		Scan(&rows).Error
	return rows, err
}

// StalePendingEntries returns pending entries older than the cutoff; a
// withdrawal or deposit that never saw its webhook.
func (r *LedgerRepository) StalePendingEntries(olderThan time.Time) ([]models.LedgerEntry, error) {
	var entries []models.LedgerEntry
	err := r.db.
		Where("status = ? AND created_at < ?", domain.EntryStatusPending, olderThan).
		Order("created_at ASC").
		Find(&entries).Error
	return entries, err
}

// EntriesOutsideUnitRange flags success amounts that fall outside the
// expected minor-unit range, usually a cents/major-unit mixup at a caller.
func (r *LedgerRepository) EntriesOutsideUnitRange(floor, ceiling int64) ([]models.LedgerEntry, error) {
	var entries []models.LedgerEntry
	err := r.db.
		Where("status = ? AND (amount < ? OR amount > ?)", domain.EntryStatusSuccess, floor, ceiling).
		Order("created_at ASC").
		Find(&entries).Error
	return entries, err
}
