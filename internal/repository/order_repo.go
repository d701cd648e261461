package repository

import (
	"errors"
	"time"

	"salonemart/internal/domain"
	"salonemart/internal/models"

	"gorm.io/gorm"
)

var (
	ErrAlreadyOpen      = errors.New("escrow already open for this order")
	ErrOrderNotFound    = errors.New("order not found")
	ErrEscrowNotHolding = errors.New("escrow is not holding")
	ErrStatusConflict   = errors.New("order is not in the required status")
)

type OrderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

// OpenEscrow creates the order row together with the buyer's payment debit
// and the outbox event, all in one database transaction. A duplicate order
// number means escrow is already open.
func (r *OrderRepository) OpenEscrow(o *models.Order, debit *models.LedgerEntry, evt *models.OutboxEvent) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(o).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrAlreadyOpen
			}
			return err
		}
		if err := tx.Create(debit).Error; err != nil {
			return err
		}
		if evt != nil {
			if err := tx.Create(evt).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// ResolveEscrow performs the terminal escrow transition as a compare-and-set
// on escrow_status and writes the resolution credit in the same transaction.
// RowsAffected == 0 means another request resolved the escrow first; callers
// decide whether that is "already processed" or a genuine state error.
func (r *OrderRepository) ResolveEscrow(orderNo, toEscrow, toStatus string, credit *models.LedgerEntry, evt *models.OutboxEvent) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		now := time.Now()
		res := tx.Model(&models.Order{}).
			Where("order_no = ? AND escrow_status = ?", orderNo, domain.EscrowHolding).
			Updates(map[string]interface{}{
				"escrow_status": toEscrow,
				"status":        toStatus,
				"resolved_at":   now,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrEscrowNotHolding
		}
		if err := tx.Create(credit).Error; err != nil {
			return err
		}
		if evt != nil {
			if err := tx.Create(evt).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// UpdateStatus moves the buyer-facing status with a compare-and-set on the
// expected current status.
func (r *OrderRepository) UpdateStatus(orderNo, from, to string) error {
	res := r.db.Model(&models.Order{}).
		Where("order_no = ? AND status = ?", orderNo, from).
		Update("status", to)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrStatusConflict
	}
	return nil
}

func (r *OrderRepository) GetByOrderNo(orderNo string) (*models.Order, error) {
	var o models.Order
	err := r.db.Where("order_no = ?", orderNo).First(&o).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	return &o, nil
}

func (r *OrderRepository) ListByUser(userID uint, limit, offset int) ([]models.Order, error) {
	var orders []models.Order
	err := r.db.
		Where("buyer_id = ? OR seller_id = ?", userID, userID).
		Order("created_at DESC, id DESC").
		Limit(limit).Offset(offset).
		Find(&orders).Error
	return orders, err
}

// MissingResolutionCredit returns terminally-resolved orders with no matching
// success credit in the ledger. The CONCAT shapes mirror domain reference
// helpers.
func (r *OrderRepository) MissingResolutionCredit() ([]models.Order, error) {
	var orders []models.Order
	err := r.db.Raw(`
		SELECT o.* FROM orders o
		LEFT JOIN ledger_entries e
		  ON e.status = 'success'
		 AND e.reference = CONCAT('order:', o.order_no, ':',
		       CASE o.escrow_status WHEN 'released' THEN 'release' ELSE 'refund' END)
		WHERE o.escrow_status IN ('released', 'refunded') AND e.id IS NULL
	`).Scan(&orders).Error
	return orders, err
}

// MissingPaymentDebit returns orders with no success payment debit; every
// open escrow must have been funded by exactly one buyer debit.
func (r *OrderRepository) MissingPaymentDebit() ([]models.Order, error) {
	var orders []models.Order
	err := r.db.Raw(`
		SELECT o.* FROM orders o
		LEFT JOIN ledger_entries e
		  ON e.status = 'success'
		 AND e.reference = CONCAT('order:', o.order_no, ':payment')
		WHERE e.id IS NULL
	`).Scan(&orders).Error
	return orders, err
}

// ReferenceCount is one row of the duplicate-credit scan.
type ReferenceCount struct {
	Reference string `json:"reference"`
	Count     int64  `json:"count"`
}

// DuplicateResolutionCredits returns escrow resolution references that carry
// more than one success credit, a double-release or double-refund.
func (r *OrderRepository) DuplicateResolutionCredits() ([]ReferenceCount, error) {
	var rows []ReferenceCount
	err := r.db.Raw(`
		SELECT reference, COUNT(*) AS count FROM ledger_entries
		WHERE status = 'success'
		  AND (reference LIKE 'order:%:release' OR reference LIKE 'order:%:refund')
		GROUP BY reference
		HAVING COUNT(*) > 1
	`).Scan(&rows).Error
	return rows, err
}
