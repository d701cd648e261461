package payment

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestCreatePayoutRequestShape(t *testing.T) {
	var gotPath string
	var gotHeaders http.Header
	var gotBody map[string]interface{}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotHeaders = r.Header
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decode request body: %v", err)
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"success":true,"result":{"id":"po-123","status":"pending"}}`))
	}))
	defer srv.Close()

	p := NewMonimeProvider(srv.URL, "space-1", "token-1")
	resp, err := p.CreatePayout(context.Background(), PayoutRequest{
		AmountMinor:  4900,
		Currency:     "SLE",
		PhoneNumber:  "23276123456",
		MomoProvider: "m17",
		Reference:    "withdraw:abc",
		Metadata:     map[string]string{"user_id": "7"},
	})
	if err != nil {
		t.Fatalf("CreatePayout: %v", err)
	}
	if resp.ID != "po-123" || resp.Status != "pending" {
		t.Errorf("resp = %+v", resp)
	}

	if gotPath != "/v1/payouts" {
		t.Errorf("path = %q", gotPath)
	}
	if got := gotHeaders.Get("Authorization"); got != "Bearer token-1" {
		t.Errorf("Authorization = %q", got)
	}
	if got := gotHeaders.Get("Monime-Space-Id"); got != "space-1" {
		t.Errorf("Monime-Space-Id = %q", got)
	}
	if got := gotHeaders.Get("Idempotency-Key"); got != "withdraw:abc" {
		t.Errorf("Idempotency-Key = %q", got)
	}

	amount, _ := gotBody["amount"].(map[string]interface{})
	if amount["currency"] != "SLE" || amount["value"] != float64(4900) {
		t.Errorf("amount = %v", amount)
	}
	dest, _ := gotBody["destination"].(map[string]interface{})
	if dest["type"] != "momo" || dest["providerId"] != "m17" || dest["accountNumber"] != "23276123456" {
		t.Errorf("destination = %v", dest)
	}
	if gotBody["reference"] != "withdraw:abc" {
		t.Errorf("reference = %v", gotBody["reference"])
	}
}

func TestCreatePayoutRejectsMissingTransferID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success":true,"result":{}}`))
	}))
	defer srv.Close()

	p := NewMonimeProvider(srv.URL, "space-1", "token-1")
	_, err := p.CreatePayout(context.Background(), PayoutRequest{AmountMinor: 100, Currency: "SLE"})
	if err == nil {
		t.Fatal("expected error for response without transfer id")
	}
}

func TestCreatePayoutNon2xxIsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		w.Write([]byte(`{"success":false,"messages":["insufficient float"]}`))
	}))
	defer srv.Close()

	p := NewMonimeProvider(srv.URL, "space-1", "token-1")
	_, err := p.CreatePayout(context.Background(), PayoutRequest{AmountMinor: 100, Currency: "SLE"})
	if err == nil {
		t.Fatal("expected error on 422 response")
	}
}

func TestCreatePaymentCode(t *testing.T) {
	var gotBody map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/payment-codes" {
			t.Errorf("path = %q", r.URL.Path)
		}
		json.NewDecoder(r.Body).Decode(&gotBody)
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"success":true,"result":{"id":"pc-9","ussdCode":"*715*44#","status":"active"}}`))
	}))
	defer srv.Close()

	p := NewMonimeProvider(srv.URL, "space-1", "token-1")
	resp, err := p.CreatePaymentCode(context.Background(), PaymentCodeRequest{
		AmountMinor: 2500,
		Currency:    "SLE",
		Name:        "Wallet top-up for amara",
		Reference:   "deposit:xyz",
	})
	if err != nil {
		t.Fatalf("CreatePaymentCode: %v", err)
	}
	if resp.USSDCode != "*715*44#" || resp.ID != "pc-9" {
		t.Errorf("resp = %+v", resp)
	}
	if gotBody["mode"] != "one_time" {
		t.Errorf("mode = %v", gotBody["mode"])
	}
}

func TestStubProviderRoundTrips(t *testing.T) {
	s := NewStubProvider()
	resp, err := s.CreatePayout(context.Background(), PayoutRequest{AmountMinor: 100, Currency: "SLE"})
	if err != nil {
		t.Fatalf("stub payout: %v", err)
	}
	if resp.ID == "" {
		t.Error("stub payout id empty")
	}
	code, err := s.CreatePaymentCode(context.Background(), PaymentCodeRequest{AmountMinor: 100, Currency: "SLE"})
	if err != nil {
		t.Fatalf("stub payment code: %v", err)
	}
	if code.USSDCode == "" {
		t.Error("stub ussd code empty")
	}
}
