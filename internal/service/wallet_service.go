package service

import (
	"context"
	"fmt"

	"salonemart/internal/cache"
	"salonemart/internal/models"
)

// WalletService exposes the derived balance and the entry history. The
// balance is always the ledger fold; the cache in front of it is read-through
// and invalidated on every append and finalize, so it can lag but never
// drift from the ledger.
type WalletService struct {
	ledger   LedgerStore
	balances *cache.BalanceCache
	currency string
}

func NewWalletService(ledger LedgerStore, balances *cache.BalanceCache, currency string) *WalletService {
	return &WalletService{ledger: ledger, balances: balances, currency: currency}
}

func (s *WalletService) Currency() string {
	return s.currency
}

func (s *WalletService) Balance(ctx context.Context, userID uint) (int64, error) {
	if bal, ok := s.balances.Get(ctx, userID); ok {
		return bal, nil
	}
	bal, err := s.ledger.Balance(userID)
	if err != nil {
		return 0, fmt.Errorf("derive balance: %w", err)
	}
	s.balances.Set(ctx, userID, bal)
	return bal, nil
}

func (s *WalletService) Transactions(userID uint, limit, offset int) ([]models.LedgerEntry, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return s.ledger.ListByUser(userID, limit, offset)
}
