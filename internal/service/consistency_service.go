package service

import (
	"fmt"
	"time"

	"salonemart/config"
	"salonemart/internal/models"
	"salonemart/internal/repository"
)

// Finding severities.
const (
	SeverityCritical = "critical"
	SeverityWarning  = "warning"
)

// Finding codes.
const (
	CodeNegativeBalance     = "negative_balance"
	CodeMissingResolution   = "missing_resolution_credit"
	CodeDuplicateResolution = "duplicate_resolution_credit"
	CodeMissingPayment      = "missing_payment_debit"
	CodeStalePending        = "stale_pending_entry"
	CodeSuspectAmount       = "amount_outside_unit_range"
)

type Finding struct {
	Code      string `json:"code"`
	Severity  string `json:"severity"`
	Detail    string `json:"detail"`
	UserID    uint   `json:"user_id,omitempty"`
	OrderNo   string `json:"order_no,omitempty"`
	EntryID   uint   `json:"entry_id,omitempty"`
	Reference string `json:"reference,omitempty"`
}

type Report struct {
	GeneratedAt time.Time `json:"generated_at"`
	Healthy     bool      `json:"healthy"`
	Findings    []Finding `json:"findings"`
}

// LedgerScanner and OrderScanner are the read-only scan queries the checker
// runs over the two tables.
type LedgerScanner interface {
	NegativeBalances() ([]repository.UserBalance, error)
	StalePendingEntries(olderThan time.Time) ([]models.LedgerEntry, error)
	EntriesOutsideUnitRange(floor, ceiling int64) ([]models.LedgerEntry, error)
}

type OrderScanner interface {
	MissingResolutionCredit() ([]models.Order, error)
	MissingPaymentDebit() ([]models.Order, error)
	DuplicateResolutionCredits() ([]repository.ReferenceCount, error)
}

// ConsistencyService is the diagnostic safety net behind the write-time
// invariants: it scans the ledger and escrow tables and reports violations
// for manual review. It never corrects anything.
type ConsistencyService struct {
	ledger LedgerScanner
	orders OrderScanner
	cfg    config.ConsistencyConfig
}

func NewConsistencyService(ledger LedgerScanner, orders OrderScanner, cfg config.ConsistencyConfig) *ConsistencyService {
	return &ConsistencyService{ledger: ledger, orders: orders, cfg: cfg}
}

func (s *ConsistencyService) Run() (*Report, error) {
	report := &Report{GeneratedAt: time.Now(), Findings: []Finding{}}

	negative, err := s.ledger.NegativeBalances()
	if err != nil {
		return nil, fmt.Errorf("scan balances: %w", err)
	}
	for _, nb := range negative {
		report.Findings = append(report.Findings, Finding{
			Code:     CodeNegativeBalance,
			Severity: SeverityCritical,
			Detail:   fmt.Sprintf("derived balance is %d", nb.Balance),
			UserID:   nb.UserID,
		})
	}

	missing, err := s.orders.MissingResolutionCredit()
	if err != nil {
		return nil, fmt.Errorf("scan resolutions: %w", err)
	}
	for _, o := range missing {
		report.Findings = append(report.Findings, Finding{
			Code:     CodeMissingResolution,
			Severity: SeverityCritical,
			Detail:   fmt.Sprintf("escrow is %s but no matching ledger credit exists", o.EscrowStatus),
			OrderNo:  o.OrderNo,
		})
	}

	duplicates, err := s.orders.DuplicateResolutionCredits()
	if err != nil {
		return nil, fmt.Errorf("scan duplicate credits: %w", err)
	}
	for _, d := range duplicates {
		report.Findings = append(report.Findings, Finding{
			Code:      CodeDuplicateResolution,
			Severity:  SeverityCritical,
			Detail:    fmt.Sprintf("%d success credits share one resolution reference", d.Count),
			Reference: d.Reference,
		})
	}

	unfunded, err := s.orders.MissingPaymentDebit()
	if err != nil {
		return nil, fmt.Errorf("scan payment debits: %w", err)
	}
	for _, o := range unfunded {
		report.Findings = append(report.Findings, Finding{
			Code:     CodeMissingPayment,
			Severity: SeverityCritical,
			Detail:   "order has no success payment debit",
			OrderNo:  o.OrderNo,
		})
	}

	stale, err := s.ledger.StalePendingEntries(time.Now().Add(-s.cfg.PendingStaleness))
	if err != nil {
		return nil, fmt.Errorf("scan stale pending: %w", err)
	}
	for _, e := range stale {
		report.Findings = append(report.Findings, Finding{
			Code:     CodeStalePending,
			Severity: SeverityWarning,
			Detail:   fmt.Sprintf("%s entry pending since %s", e.Type, e.CreatedAt.Format(time.RFC3339)),
			UserID:   e.UserID,
			EntryID:  e.ID,
		})
	}

	suspect, err := s.ledger.EntriesOutsideUnitRange(s.cfg.MinorUnitFloor, s.cfg.MinorUnitCeiling)
	if err != nil {
		return nil, fmt.Errorf("scan amounts: %w", err)
	}
	for _, e := range suspect {
		report.Findings = append(report.Findings, Finding{
			Code:     CodeSuspectAmount,
			Severity: SeverityWarning,
			Detail:   fmt.Sprintf("amount %d is outside the expected minor-unit range, possible major-unit write", e.Amount),
			UserID:   e.UserID,
			EntryID:  e.ID,
		})
	}

	report.Healthy = len(report.Findings) == 0
	return report, nil
}
