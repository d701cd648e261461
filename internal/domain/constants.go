package domain

const (
	RoleBuyer  = "BUYER"
	RoleSeller = "SELLER"
	RoleAdmin  = "ADMIN"
)

// Ledger transaction types. Sign is implied by the type: deposit, earning and
// refund credit the wallet; withdrawal and payment debit it.
const (
	EntryTypeDeposit    = "deposit"
	EntryTypeWithdrawal = "withdrawal"
	EntryTypeEarning    = "earning"
	EntryTypeRefund     = "refund"
	EntryTypePayment    = "payment"
)

// Ledger entry statuses. Entries are written once; the only permitted
// mutation is pending -> success or pending -> failed. Only success entries
// count towards a balance.
const (
	EntryStatusPending = "pending"
	EntryStatusSuccess = "success"
	EntryStatusFailed  = "failed"
)

// Escrow statuses. holding -> released and holding -> refunded are the only
// legal transitions.
const (
	EscrowHolding  = "holding"
	EscrowReleased = "released"
	EscrowRefunded = "refunded"
)

// Buyer-facing order statuses.
const (
	OrderPendingPayment = "pending_payment"
	OrderProcessing     = "processing"
	OrderShipped        = "shipped"
	OrderDelivered      = "delivered"
	OrderCompleted      = "completed"
	OrderCancelled      = "cancelled"
	OrderDisputed       = "disputed"
)

var orderTransitions = map[string][]string{
	OrderPendingPayment: {OrderProcessing, OrderCancelled},
	OrderProcessing:     {OrderShipped, OrderCancelled, OrderDisputed},
	OrderShipped:        {OrderDelivered, OrderDisputed},
	OrderDelivered:      {OrderCompleted, OrderDisputed},
	OrderDisputed:       {OrderCompleted, OrderCancelled},
}

// CanTransition reports whether an order may move from one buyer-facing
// status to another.
func CanTransition(from, to string) bool {
	for _, s := range orderTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// IsCredit reports whether a transaction type adds to the wallet balance.
func IsCredit(entryType string) bool {
	switch entryType {
	case EntryTypeDeposit, EntryTypeEarning, EntryTypeRefund:
		return true
	}
	return false
}

// IsEntryType reports whether the given string is a known transaction type.
func IsEntryType(s string) bool {
	switch s {
	case EntryTypeDeposit, EntryTypeWithdrawal, EntryTypeEarning, EntryTypeRefund, EntryTypePayment:
		return true
	}
	return false
}
