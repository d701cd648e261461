package payment

import (
	"context"
)

// PayoutRequest asks the provider to disburse mobile money to a customer.
// Amounts are minor units of the given currency.
type PayoutRequest struct {
	AmountMinor  int64
	Currency     string
	PhoneNumber  string // e.g. 23276123456
	MomoProvider string // provider code, e.g. m17 (Orange Money SL)
	Reference    string // internal reference; doubles as the idempotency key
	Metadata     map[string]string
}

// PayoutResponse carries the provider's transfer id used for webhook
// reconciliation.
type PayoutResponse struct {
	ID     string
	Status string
}

// PaymentCodeRequest asks the provider for a collection (deposit) code the
// customer dials to pay us.
type PaymentCodeRequest struct {
	AmountMinor int64
	Currency    string
	Name        string
	Reference   string
}

type PaymentCodeResponse struct {
	ID       string
	USSDCode string
	Status   string
}

// Provider is the disbursement/collection gateway. Implementations must be
// safe for concurrent use.
type Provider interface {
	CreatePayout(ctx context.Context, req PayoutRequest) (*PayoutResponse, error)
	CreatePaymentCode(ctx context.Context, req PaymentCodeRequest) (*PaymentCodeResponse, error)
}
