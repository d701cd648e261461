package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"
)

// MonimeProvider talks to the Monime mobile-money API (payouts and payment
// codes). Requests carry a bearer token, the Monime space id and an
// Idempotency-Key header derived from our internal reference, so a retried
// call cannot create a second transfer.
type MonimeProvider struct {
	BaseURL  string
	SpaceID  string
	APIToken string
	client   *http.Client
}

func NewMonimeProvider(baseURL, spaceID, apiToken string) *MonimeProvider {
	if baseURL == "" {
		baseURL = "https://api.monime.io"
	}
	return &MonimeProvider{
		BaseURL:  baseURL,
		SpaceID:  spaceID,
		APIToken: apiToken,
		client:   &http.Client{Timeout: 30 * time.Second},
	}
}

type monimeAmount struct {
	Currency string `json:"currency"`
	Value    int64  `json:"value"` // minor units
}

type monimeDestination struct {
	Type          string `json:"type"`
	ProviderID    string `json:"providerId"`
	AccountNumber string `json:"accountNumber"`
}

type monimePayoutReq struct {
	Amount      monimeAmount      `json:"amount"`
	Destination monimeDestination `json:"destination"`
	Reference   string            `json:"reference,omitempty"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}

type monimePayoutResult struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

type monimePayoutResp struct {
	Success  bool               `json:"success"`
	Messages []string           `json:"messages"`
	Result   monimePayoutResult `json:"result"`
}

// CreatePayout creates a mobile-money transfer of req.AmountMinor to the
// destination phone number.
func (p *MonimeProvider) CreatePayout(ctx context.Context, req PayoutRequest) (*PayoutResponse, error) {
	payload := monimePayoutReq{
		Amount: monimeAmount{Currency: req.Currency, Value: req.AmountMinor},
		Destination: monimeDestination{
			Type:          "momo",
			ProviderID:    req.MomoProvider,
			AccountNumber: req.PhoneNumber,
		},
		Reference: req.Reference,
		Metadata:  req.Metadata,
	}
	var out monimePayoutResp
	if err := p.post(ctx, "/v1/payouts", req.Reference, payload, &out); err != nil {
		return nil, fmt.Errorf("monime payout: %w", err)
	}
	if out.Result.ID == "" {
		return nil, fmt.Errorf("monime payout: response missing transfer id")
	}
	return &PayoutResponse{ID: out.Result.ID, Status: out.Result.Status}, nil
}

type monimePaymentCodeReq struct {
	Name      string       `json:"name"`
	Mode      string       `json:"mode"`
	Amount    monimeAmount `json:"amount"`
	Reference string       `json:"reference,omitempty"`
}

type monimePaymentCodeResult struct {
	ID       string `json:"id"`
	USSDCode string `json:"ussdCode"`
	Status   string `json:"status"`
}

type monimePaymentCodeResp struct {
	Success bool                    `json:"success"`
	Result  monimePaymentCodeResult `json:"result"`
}

// CreatePaymentCode creates a one-time USSD collection code the customer
// dials to fund a deposit.
func (p *MonimeProvider) CreatePaymentCode(ctx context.Context, req PaymentCodeRequest) (*PaymentCodeResponse, error) {
	payload := monimePaymentCodeReq{
		Name:      req.Name,
		Mode:      "one_time",
		Amount:    monimeAmount{Currency: req.Currency, Value: req.AmountMinor},
		Reference: req.Reference,
	}
	var out monimePaymentCodeResp
	if err := p.post(ctx, "/v1/payment-codes", req.Reference, payload, &out); err != nil {
		return nil, fmt.Errorf("monime payment code: %w", err)
	}
	if out.Result.ID == "" {
		return nil, fmt.Errorf("monime payment code: response missing id")
	}
	return &PaymentCodeResponse{
		ID:       out.Result.ID,
		USSDCode: out.Result.USSDCode,
		Status:   out.Result.Status,
	}, nil
}

func (p *MonimeProvider) post(ctx context.Context, path, idempotencyKey string, payload, out interface{}) error {
	body, _ := json.Marshal(payload)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.BaseURL+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.APIToken)
	req.Header.Set("Monime-Space-Id", p.SpaceID)
	if idempotencyKey != "" {
		req.Header.Set("Idempotency-Key", idempotencyKey)
	}
	log.Printf("[Monime] POST %s%s key=%s", p.BaseURL, path, idempotencyKey)
	resp, err := p.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return fmt.Errorf("%s: %d %s", path, resp.StatusCode, string(respBody))
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("%s: decode response: %w", path, err)
	}
	return nil
}
