package service

import (
	"context"
	"testing"

	"salonemart/internal/domain"
	"salonemart/internal/models"
)

func seedEntry(t *testing.T, ledger *fakeLedger, userID uint, typ string, amount int64, status string) {
	t.Helper()
	err := ledger.Append(&models.LedgerEntry{UserID: userID, Type: typ, Amount: amount, Status: status})
	if err != nil {
		t.Fatalf("seed %s/%d: %v", typ, amount, err)
	}
}

func TestBalanceFoldsOnlySuccessEntries(t *testing.T) {
	ledger := newFakeLedger()
	svc := NewWalletService(ledger, nil, "SLE")
	userID := uint(7)

	seedEntry(t, ledger, userID, domain.EntryTypeDeposit, 10000, domain.EntryStatusSuccess)
	seedEntry(t, ledger, userID, domain.EntryTypeEarning, 3920, domain.EntryStatusSuccess)
	seedEntry(t, ledger, userID, domain.EntryTypePayment, 4000, domain.EntryStatusSuccess)
	seedEntry(t, ledger, userID, domain.EntryTypeRefund, 500, domain.EntryStatusSuccess)
	seedEntry(t, ledger, userID, domain.EntryTypeWithdrawal, 2000, domain.EntryStatusSuccess)
	// Pending and failed entries must not count.
	seedEntry(t, ledger, userID, domain.EntryTypeWithdrawal, 9999, domain.EntryStatusPending)
	seedEntry(t, ledger, userID, domain.EntryTypeDeposit, 8888, domain.EntryStatusFailed)
	// Another user's money is not ours.
	seedEntry(t, ledger, 99, domain.EntryTypeDeposit, 77777, domain.EntryStatusSuccess)

	balance, err := svc.Balance(context.Background(), userID)
	if err != nil {
		t.Fatalf("Balance: %v", err)
	}
	want := int64(10000 + 3920 - 4000 + 500 - 2000)
	if balance != want {
		t.Errorf("balance = %d, want %d", balance, want)
	}
}

func TestTransactionsClampsLimit(t *testing.T) {
	ledger := newFakeLedger()
	svc := NewWalletService(ledger, nil, "SLE")
	userID := uint(7)
	for i := 0; i < 30; i++ {
		seedEntry(t, ledger, userID, domain.EntryTypeDeposit, 100, domain.EntryStatusSuccess)
	}

	entries, err := svc.Transactions(userID, 0, 0)
	if err != nil {
		t.Fatalf("Transactions: %v", err)
	}
	if len(entries) != 20 {
		t.Errorf("default limit returned %d entries, want 20", len(entries))
	}

	entries, _ = svc.Transactions(userID, 1000, 0)
	if len(entries) != 20 {
		t.Errorf("oversized limit returned %d entries, want 20", len(entries))
	}

	entries, _ = svc.Transactions(userID, 5, 0)
	if len(entries) != 5 {
		t.Errorf("limit 5 returned %d entries", len(entries))
	}
	// Newest first.
	if len(entries) > 1 && entries[0].ID < entries[1].ID {
		t.Error("entries not ordered newest first")
	}
}
