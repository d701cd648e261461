package domain

import "testing"

func TestCanTransition(t *testing.T) {
	cases := []struct {
		from, to string
		want     bool
	}{
		{OrderPendingPayment, OrderProcessing, true},
		{OrderProcessing, OrderShipped, true},
		{OrderProcessing, OrderCancelled, true},
		{OrderProcessing, OrderDisputed, true},
		{OrderShipped, OrderDelivered, true},
		{OrderShipped, OrderDisputed, true},
		{OrderDelivered, OrderCompleted, true},
		{OrderDisputed, OrderCompleted, true},
		{OrderDisputed, OrderCancelled, true},

		{OrderProcessing, OrderCompleted, false},
		{OrderShipped, OrderCancelled, false},
		{OrderCompleted, OrderDisputed, false},
		{OrderCancelled, OrderProcessing, false},
		{OrderCompleted, OrderCancelled, false},
		{"nonsense", OrderShipped, false},
	}
	for _, c := range cases {
		if got := CanTransition(c.from, c.to); got != c.want {
			t.Errorf("CanTransition(%q, %q) = %v, want %v", c.from, c.to, got, c.want)
		}
	}
}

func TestIsCredit(t *testing.T) {
	credits := []string{EntryTypeDeposit, EntryTypeEarning, EntryTypeRefund}
	debits := []string{EntryTypeWithdrawal, EntryTypePayment}
	for _, typ := range credits {
		if !IsCredit(typ) {
			t.Errorf("IsCredit(%q) = false, want true", typ)
		}
	}
	for _, typ := range debits {
		if IsCredit(typ) {
			t.Errorf("IsCredit(%q) = true, want false", typ)
		}
	}
	if IsCredit("bogus") {
		t.Error("IsCredit accepted an unknown type")
	}
}

func TestIsEntryType(t *testing.T) {
	for _, typ := range []string{EntryTypeDeposit, EntryTypeWithdrawal, EntryTypeEarning, EntryTypeRefund, EntryTypePayment} {
		if !IsEntryType(typ) {
			t.Errorf("IsEntryType(%q) = false, want true", typ)
		}
	}
	if IsEntryType("DEPOSIT") {
		t.Error("entry types are lowercase, IsEntryType should reject uppercase")
	}
}

func TestFee(t *testing.T) {
	cases := []struct {
		amount int64
		rate   float64
		want   int64
	}{
		{4000, 0.02, 80},
		{5000, 0.02, 100},
		{100, 0.02, 2},
		{99, 0.02, 2}, // 1.98 rounds up
		{49, 0.02, 1}, // 0.98 rounds up
		{24, 0.02, 0}, // 0.48 rounds down
		{25, 0.02, 1}, // 0.50 rounds half away from zero
		{1_000_000, 0.025, 25_000},
		{0, 0.02, 0},
	}
	for _, c := range cases {
		if got := Fee(c.amount, c.rate); got != c.want {
			t.Errorf("Fee(%d, %v) = %d, want %d", c.amount, c.rate, got, c.want)
		}
	}
}

func TestReferenceShapes(t *testing.T) {
	if got := OrderPaymentRef("ord-42"); got != "order:ord-42:payment" {
		t.Errorf("OrderPaymentRef = %q", got)
	}
	if got := OrderReleaseRef("ord-42"); got != "order:ord-42:release" {
		t.Errorf("OrderReleaseRef = %q", got)
	}
	if got := OrderRefundRef("ord-42"); got != "order:ord-42:refund" {
		t.Errorf("OrderRefundRef = %q", got)
	}
	if got := WithdrawalRef("abc"); got != "withdraw:abc" {
		t.Errorf("WithdrawalRef = %q", got)
	}
	if got := DepositRef("abc"); got != "deposit:abc" {
		t.Errorf("DepositRef = %q", got)
	}
}
