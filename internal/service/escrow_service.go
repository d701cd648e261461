package service

import (
	"context"
	"errors"
	"fmt"
	"log"

	"salonemart/internal/cache"
	"salonemart/internal/domain"
	"salonemart/internal/models"
	"salonemart/internal/repository"

	"github.com/google/uuid"
)

// EscrowService owns the buyer-pays -> hold -> release-or-refund lifecycle.
// The terminal escrow transition and its ledger credit are written atomically
// by the order store; this service supplies the business rules around them.
type EscrowService struct {
	orders      OrderStore
	ledger      LedgerStore
	users       UserStore
	balances    *cache.BalanceCache
	releaseRate float64
	escrowTopic string
}

func NewEscrowService(orders OrderStore, ledger LedgerStore, users UserStore, balances *cache.BalanceCache, releaseRate float64, escrowTopic string) *EscrowService {
	return &EscrowService{
		orders:      orders,
		ledger:      ledger,
		users:       users,
		balances:    balances,
		releaseRate: releaseRate,
		escrowTopic: escrowTopic,
	}
}

// Open checks out an order: the buyer's wallet is debited for the full amount
// and the escrow opens in holding. The debit is written with status success
// since wallet funds are captured at this moment.
func (s *EscrowService) Open(ctx context.Context, buyerID, sellerID uint, total int64, description string) (*models.Order, error) {
	if total <= 0 {
		return nil, repository.ErrInvalidAmount
	}
	if buyerID == sellerID {
		return nil, ErrSameParty
	}
	if _, err := s.users.GetByID(sellerID); err != nil {
		return nil, fmt.Errorf("seller lookup: %w", err)
	}
	balance, err := s.ledger.Balance(buyerID)
	if err != nil {
		return nil, fmt.Errorf("buyer balance: %w", err)
	}
	if balance < total {
		return nil, ErrInsufficientBalance
	}

	order := &models.Order{
		OrderNo:      fmt.Sprintf("ord-%s", uuid.New().String()),
		BuyerID:      buyerID,
		SellerID:     sellerID,
		TotalAmount:  total,
		Description:  description,
		Status:       domain.OrderProcessing,
		EscrowStatus: domain.EscrowHolding,
	}
	debit := &models.LedgerEntry{
		UserID:    buyerID,
		Type:      domain.EntryTypePayment,
		Amount:    total,
		Status:    domain.EntryStatusSuccess,
		Reference: domain.OrderPaymentRef(order.OrderNo),
	}
	evt := newOutboxEvent(s.escrowTopic, order.OrderNo, map[string]interface{}{
		"event":    "escrow.opened",
		"order_no": order.OrderNo,
		"buyer_id": buyerID,
		"amount":   total,
	})
	if err := s.orders.OpenEscrow(order, debit, evt); err != nil {
		return nil, err
	}
	s.balances.Invalidate(ctx, buyerID)
	return order, nil
}

// Ship marks the order shipped. Seller only.
func (s *EscrowService) Ship(ctx context.Context, orderNo string, sellerID uint) error {
	o, err := s.orders.GetByOrderNo(orderNo)
	if err != nil {
		return err
	}
	if o.SellerID != sellerID {
		return ErrNotOwner
	}
	if !domain.CanTransition(o.Status, domain.OrderShipped) {
		return fmt.Errorf("%w: cannot ship from %s", repository.ErrStatusConflict, o.Status)
	}
	return s.orders.UpdateStatus(orderNo, o.Status, domain.OrderShipped)
}

// ConfirmDelivery is the buyer acknowledging receipt; it releases the escrow
// to the seller. Safe to retry: a repeat confirmation surfaces as
// ErrAlreadyProcessed, which callers treat as success.
func (s *EscrowService) ConfirmDelivery(ctx context.Context, orderNo string, buyerID uint) error {
	o, err := s.orders.GetByOrderNo(orderNo)
	if err != nil {
		return err
	}
	if o.BuyerID != buyerID {
		return ErrNotOwner
	}
	switch o.Status {
	case domain.OrderShipped:
		// A crash between this write and the release leaves the order
		// delivered/holding; retrying the confirmation recovers it.
		if err := s.orders.UpdateStatus(orderNo, domain.OrderShipped, domain.OrderDelivered); err != nil &&
			!errors.Is(err, repository.ErrStatusConflict) {
			return err
		}
	case domain.OrderDelivered, domain.OrderCompleted:
		// retry path; Release below resolves to ErrAlreadyProcessed if
		// the escrow has already gone out
	default:
		return fmt.Errorf("%w: cannot confirm delivery from %s", repository.ErrStatusConflict, o.Status)
	}
	return s.Release(ctx, orderNo)
}

// Release credits the seller with the order total minus the platform fee and
// moves the escrow holding -> released. The compare-and-set inside
// ResolveEscrow guarantees at most one seller credit under concurrent calls.
func (s *EscrowService) Release(ctx context.Context, orderNo string) error {
	o, err := s.orders.GetByOrderNo(orderNo)
	if err != nil {
		return err
	}
	fee := domain.Fee(o.TotalAmount, s.releaseRate)
	credit := &models.LedgerEntry{
		UserID:    o.SellerID,
		Type:      domain.EntryTypeEarning,
		Amount:    o.TotalAmount - fee,
		Status:    domain.EntryStatusSuccess,
		Reference: domain.OrderReleaseRef(orderNo),
		Metadata:  fmt.Sprintf(`{"order_no":%q,"fee":%d}`, orderNo, fee),
	}
	evt := newOutboxEvent(s.escrowTopic, orderNo, map[string]interface{}{
		"event":     "escrow.released",
		"order_no":  orderNo,
		"seller_id": o.SellerID,
		"amount":    o.TotalAmount - fee,
		"fee":       fee,
	})
	err = s.orders.ResolveEscrow(orderNo, domain.EscrowReleased, domain.OrderCompleted, credit, evt)
	if err != nil {
		if errors.Is(err, repository.ErrEscrowNotHolding) {
			return s.resolveConflict(orderNo, domain.EscrowReleased)
		}
		return err
	}
	s.balances.Invalidate(ctx, o.SellerID)
	return nil
}

// Refund credits the buyer with the full order total and moves the escrow
// holding -> refunded.
func (s *EscrowService) Refund(ctx context.Context, orderNo, reason string) error {
	o, err := s.orders.GetByOrderNo(orderNo)
	if err != nil {
		return err
	}
	credit := &models.LedgerEntry{
		UserID:    o.BuyerID,
		Type:      domain.EntryTypeRefund,
		Amount:    o.TotalAmount,
		Status:    domain.EntryStatusSuccess,
		Reference: domain.OrderRefundRef(orderNo),
		Metadata:  fmt.Sprintf(`{"order_no":%q,"reason":%q}`, orderNo, reason),
	}
	evt := newOutboxEvent(s.escrowTopic, orderNo, map[string]interface{}{
		"event":    "escrow.refunded",
		"order_no": orderNo,
		"buyer_id": o.BuyerID,
		"amount":   o.TotalAmount,
		"reason":   reason,
	})
	err = s.orders.ResolveEscrow(orderNo, domain.EscrowRefunded, domain.OrderCancelled, credit, evt)
	if err != nil {
		if errors.Is(err, repository.ErrEscrowNotHolding) {
			return s.resolveConflict(orderNo, domain.EscrowRefunded)
		}
		return err
	}
	s.balances.Invalidate(ctx, o.BuyerID)
	return nil
}

// resolveConflict distinguishes "this exact resolution already happened"
// (idempotent no-op for callers) from "the escrow went the other way"
// (a genuine state error that must not be silently accepted).
func (s *EscrowService) resolveConflict(orderNo, wanted string) error {
	o, err := s.orders.GetByOrderNo(orderNo)
	if err != nil {
		return err
	}
	if o.EscrowStatus == wanted {
		log.Printf("[Escrow] %s of order %s already processed", wanted, orderNo)
		return ErrAlreadyProcessed
	}
	return fmt.Errorf("%w: escrow is %s, wanted %s", ErrInvalidState, o.EscrowStatus, wanted)
}

// Cancel refunds an unshipped order. Either party may cancel while the order
// is still processing; after shipment the dispute path is the only way out.
func (s *EscrowService) Cancel(ctx context.Context, orderNo string, userID uint, reason string) error {
	o, err := s.orders.GetByOrderNo(orderNo)
	if err != nil {
		return err
	}
	if o.BuyerID != userID && o.SellerID != userID {
		return ErrNotOwner
	}
	if o.Status != domain.OrderProcessing && o.Status != domain.OrderPendingPayment {
		return fmt.Errorf("%w: cannot cancel from %s", repository.ErrStatusConflict, o.Status)
	}
	return s.Refund(ctx, orderNo, reason)
}

// Dispute freezes the order for admin review; the escrow stays holding until
// a ruling.
func (s *EscrowService) Dispute(ctx context.Context, orderNo string, buyerID uint) error {
	o, err := s.orders.GetByOrderNo(orderNo)
	if err != nil {
		return err
	}
	if o.BuyerID != buyerID {
		return ErrNotOwner
	}
	if !domain.CanTransition(o.Status, domain.OrderDisputed) {
		return fmt.Errorf("%w: cannot dispute from %s", repository.ErrStatusConflict, o.Status)
	}
	return s.orders.UpdateStatus(orderNo, o.Status, domain.OrderDisputed)
}

// ResolveDispute applies an admin ruling to a disputed order.
func (s *EscrowService) ResolveDispute(ctx context.Context, orderNo, ruling string) error {
	o, err := s.orders.GetByOrderNo(orderNo)
	if err != nil {
		return err
	}
	if o.Status != domain.OrderDisputed {
		return fmt.Errorf("%w: order is %s, not disputed", repository.ErrStatusConflict, o.Status)
	}
	switch ruling {
	case "release":
		return s.Release(ctx, orderNo)
	case "refund":
		return s.Refund(ctx, orderNo, "dispute ruled for buyer")
	default:
		return fmt.Errorf("unknown ruling %q", ruling)
	}
}

func (s *EscrowService) Get(orderNo string) (*models.Order, error) {
	return s.orders.GetByOrderNo(orderNo)
}

func (s *EscrowService) ListForUser(userID uint, limit, offset int) ([]models.Order, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return s.orders.ListByUser(userID, limit, offset)
}
