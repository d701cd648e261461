package payment

import (
	"context"
	"fmt"
	"log"

	"github.com/google/uuid"
)

// StubProvider acknowledges everything without touching the network. Used in
// development when no Monime credentials are configured; transfers never
// complete because no webhook ever arrives.
type StubProvider struct{}

func NewStubProvider() *StubProvider {
	return &StubProvider{}
}

func (s *StubProvider) CreatePayout(ctx context.Context, req PayoutRequest) (*PayoutResponse, error) {
	id := "stub-payout-" + uuid.New().String()
	log.Printf("[StubProvider] payout %d %s to %s -> %s", req.AmountMinor, req.Currency, req.PhoneNumber, id)
	return &PayoutResponse{ID: id, Status: "pending"}, nil
}

func (s *StubProvider) CreatePaymentCode(ctx context.Context, req PaymentCodeRequest) (*PaymentCodeResponse, error) {
	id := "stub-code-" + uuid.New().String()
	log.Printf("[StubProvider] payment code %d %s -> %s", req.AmountMinor, req.Currency, id)
	return &PaymentCodeResponse{
		ID:       id,
		USSDCode: fmt.Sprintf("*715*%s#", id[len(id)-6:]),
		Status:   "pending",
	}, nil
}
