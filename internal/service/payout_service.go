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
	"salonemart/pkg/payment"

	"github.com/google/uuid"
)

// Provider webhook event names.
const (
	EventPayoutCompleted  = "payout.completed"
	EventPayoutFailed     = "payout.failed"
	EventPaymentCompleted = "payment.completed"
	EventPaymentFailed    = "payment.failed"
)

// ErrUnsupportedEvent marks webhook events we acknowledge but do not act on.
var ErrUnsupportedEvent = errors.New("unsupported webhook event")

// PayoutService bridges the wallet to the external mobile-money provider.
// Withdrawals and deposits are written as pending ledger entries that only
// affect the balance once a webhook confirms them, matching real-world fund
// movement.
type PayoutService struct {
	ledger         LedgerStore
	users          UserStore
	events         WebhookEventStore
	outbox         EventQueue
	provider       payment.Provider
	balances       *cache.BalanceCache
	currency       string
	withdrawalRate float64
	walletTopic    string
}

func NewPayoutService(
	ledger LedgerStore,
	users UserStore,
	events WebhookEventStore,
	outbox EventQueue,
	provider payment.Provider,
	balances *cache.BalanceCache,
	currency string,
	withdrawalRate float64,
	walletTopic string,
) *PayoutService {
	return &PayoutService{
		ledger:         ledger,
		users:          users,
		events:         events,
		outbox:         outbox,
		provider:       provider,
		balances:       balances,
		currency:       currency,
		withdrawalRate: withdrawalRate,
		walletTopic:    walletTopic,
	}
}

// InitiateWithdrawal asks the provider to send amount minus the platform fee
// to the user's mobile-money account and records a pending debit of the full
// amount. A pending debit never affects the balance, so the funds stay
// spendable until the provider confirms the transfer actually happened.
//
// Fail-closed: if the provider call errors, nothing is written. The inverse
// failure (provider accepted, ledger write failed) means money may move with
// no local record; that is logged as critical for the consistency scan and
// the on-call.
func (s *PayoutService) InitiateWithdrawal(ctx context.Context, userID uint, amount int64, phoneNumber, momoProvider string) (*models.LedgerEntry, error) {
	if amount <= 0 {
		return nil, repository.ErrInvalidAmount
	}
	u, err := s.users.GetByID(userID)
	if err != nil {
		return nil, err
	}
	if u.Frozen {
		return nil, ErrAccountFrozen
	}
	balance, err := s.ledger.Balance(userID)
	if err != nil {
		return nil, fmt.Errorf("balance: %w", err)
	}
	if amount > balance {
		return nil, ErrInsufficientBalance
	}

	fee := domain.Fee(amount, s.withdrawalRate)
	ref := domain.WithdrawalRef(uuid.New().String())
	resp, err := s.provider.CreatePayout(ctx, payment.PayoutRequest{
		AmountMinor:  amount - fee,
		Currency:     s.currency,
		PhoneNumber:  phoneNumber,
		MomoProvider: momoProvider,
		Reference:    ref,
		Metadata:     map[string]string{"user_id": fmt.Sprint(userID)},
	})
	if err != nil {
		return nil, fmt.Errorf("initiate payout: %w", err)
	}

	entry := &models.LedgerEntry{
		UserID:      userID,
		Type:        domain.EntryTypeWithdrawal,
		Amount:      amount,
		Status:      domain.EntryStatusPending,
		Reference:   ref,
		ProviderRef: resp.ID,
		Metadata:    fmt.Sprintf(`{"fee":%d,"phone":%q}`, fee, phoneNumber),
	}
	if err := s.ledger.Append(entry); err != nil {
		log.Printf("[Payout] CRITICAL: orphaned payout %s (user=%d amount=%d): provider accepted but ledger write failed: %v",
			resp.ID, userID, amount, err)
		return nil, fmt.Errorf("record withdrawal: %w", err)
	}
	s.balances.Invalidate(ctx, userID)
	s.enqueue(entry.Reference, map[string]interface{}{
		"event":        "wallet.withdrawal.initiated",
		"user_id":      userID,
		"amount":       amount,
		"fee":          fee,
		"provider_ref": resp.ID,
	})
	return entry, nil
}

// InitiateDeposit creates a provider collection code and records a pending
// credit that the payment webhook finalizes.
func (s *PayoutService) InitiateDeposit(ctx context.Context, userID uint, amount int64) (*models.LedgerEntry, string, error) {
	if amount <= 0 {
		return nil, "", repository.ErrInvalidAmount
	}
	u, err := s.users.GetByID(userID)
	if err != nil {
		return nil, "", err
	}

	ref := domain.DepositRef(uuid.New().String())
	code, err := s.provider.CreatePaymentCode(ctx, payment.PaymentCodeRequest{
		AmountMinor: amount,
		Currency:    s.currency,
		Name:        fmt.Sprintf("Wallet top-up for %s", u.Username),
		Reference:   ref,
	})
	if err != nil {
		return nil, "", fmt.Errorf("initiate deposit: %w", err)
	}

	entry := &models.LedgerEntry{
		UserID:      userID,
		Type:        domain.EntryTypeDeposit,
		Amount:      amount,
		Status:      domain.EntryStatusPending,
		Reference:   ref,
		ProviderRef: code.ID,
	}
	if err := s.ledger.Append(entry); err != nil {
		log.Printf("[Payout] CRITICAL: orphaned payment code %s (user=%d amount=%d): %v", code.ID, userID, amount, err)
		return nil, "", fmt.Errorf("record deposit: %w", err)
	}
	s.balances.Invalidate(ctx, userID)
	s.enqueue(entry.Reference, map[string]interface{}{
		"event":        "wallet.deposit.initiated",
		"user_id":      userID,
		"amount":       amount,
		"provider_ref": code.ID,
	})
	return entry, code.USSDCode, nil
}

// HandleWebhook folds one provider confirmation into the ledger, exactly
// once. Duplicate event ids are acknowledged without side effects. A missing
// pending entry is an error so the provider retries later (the entry write
// may still be in flight on our side).
//
// Ordering: finalize first, record the event id second. If we crash in
// between, the provider's retry re-runs a finalize that is already a no-op
// and then records the event, so the flow converges.
func (s *PayoutService) HandleWebhook(ctx context.Context, eventID, eventName, providerRef string) error {
	seen, err := s.events.Seen(eventID)
	if err != nil {
		return fmt.Errorf("check event: %w", err)
	}
	if seen {
		log.Printf("[Webhook] duplicate event %s (%s), ignoring", eventID, eventName)
		return ErrAlreadyProcessed
	}

	var entryType, status string
	switch eventName {
	case EventPayoutCompleted:
		entryType, status = domain.EntryTypeWithdrawal, domain.EntryStatusSuccess
	case EventPayoutFailed:
		entryType, status = domain.EntryTypeWithdrawal, domain.EntryStatusFailed
	case EventPaymentCompleted:
		entryType, status = domain.EntryTypeDeposit, domain.EntryStatusSuccess
	case EventPaymentFailed:
		entryType, status = domain.EntryTypeDeposit, domain.EntryStatusFailed
	default:
		// Acknowledge and remember so the provider stops resending.
		s.record(eventID, eventName)
		return fmt.Errorf("%w: %s", ErrUnsupportedEvent, eventName)
	}

	entry, err := s.ledger.FindPendingByProviderRef(providerRef, entryType)
	if errors.Is(err, repository.ErrEntryNotFound) {
		// Some events carry our reference where the payout id is expected.
		entry, err = s.ledger.FindPendingByReference(providerRef, entryType)
	}
	if err != nil {
		return fmt.Errorf("match %s event %s to pending %s entry: %w", eventName, eventID, entryType, err)
	}
	if err := s.ledger.Finalize(entry.ID, status); err != nil {
		return fmt.Errorf("finalize entry %d: %w", entry.ID, err)
	}
	s.balances.Invalidate(ctx, entry.UserID)
	s.record(eventID, eventName)
	s.enqueue(entry.Reference, map[string]interface{}{
		"event":        "wallet.entry.finalized",
		"entry_id":     entry.ID,
		"user_id":      entry.UserID,
		"type":         entry.Type,
		"status":       status,
		"provider_ref": providerRef,
	})
	log.Printf("[Webhook] event %s finalized entry %d (%s -> %s)", eventID, entry.ID, entry.Type, status)
	return nil
}

func (s *PayoutService) record(eventID, eventName string) {
	err := s.events.Record(&models.WebhookEvent{EventID: eventID, Name: eventName})
	if err != nil && !errors.Is(err, repository.ErrDuplicateEvent) {
		// The finalize above is idempotent, so losing the marker only
		// costs one redundant retry from the provider.
		log.Printf("[Webhook] record event %s: %v", eventID, err)
	}
}

func (s *PayoutService) enqueue(key string, payload map[string]interface{}) {
	evt := newOutboxEvent(s.walletTopic, key, payload)
	if evt == nil || s.outbox == nil {
		return
	}
	if err := s.outbox.Enqueue(evt); err != nil {
		log.Printf("[Outbox] enqueue %s: %v", key, err)
	}
}
