package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"salonemart/internal/domain"
	"salonemart/internal/models"
	"salonemart/internal/repository"
	"salonemart/pkg/payment"
)

// fakeLedger mimics the repository's append-only semantics in memory,
// including the compare-and-set finalize.
type fakeLedger struct {
	entries []*models.LedgerEntry
	nextID  uint

	appendErr error
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{nextID: 1}
}

func (f *fakeLedger) Append(e *models.LedgerEntry) error {
	if f.appendErr != nil {
		return f.appendErr
	}
	if e.Amount <= 0 {
		return repository.ErrInvalidAmount
	}
	if !domain.IsEntryType(e.Type) {
		return fmt.Errorf("unknown entry type %q", e.Type)
	}
	if e.Status == "" {
		e.Status = domain.EntryStatusPending
	}
	e.ID = f.nextID
	e.CreatedAt = time.Now()
	f.nextID++
	f.entries = append(f.entries, e)
	return nil
}

func (f *fakeLedger) Finalize(entryID uint, status string) error {
	for _, e := range f.entries {
		if e.ID != entryID {
			continue
		}
		if e.Status == domain.EntryStatusPending {
			e.Status = status
			return nil
		}
		if e.Status == status {
			return nil
		}
		return fmt.Errorf("%w: entry %d is %s", repository.ErrInvalidTransition, entryID, e.Status)
	}
	return repository.ErrEntryNotFound
}

func (f *fakeLedger) Balance(userID uint) (int64, error) {
	var sum int64
	for _, e := range f.entries {
		if e.UserID != userID || e.Status != domain.EntryStatusSuccess {
			continue
		}
		if domain.IsCredit(e.Type) {
			sum += e.Amount
		} else {
			sum -= e.Amount
		}
	}
	return sum, nil
}

func (f *fakeLedger) FindPendingByProviderRef(providerRef, entryType string) (*models.LedgerEntry, error) {
	for _, e := range f.entries {
		if e.ProviderRef == providerRef && e.Type == entryType && e.Status == domain.EntryStatusPending {
			return e, nil
		}
	}
	return nil, repository.ErrEntryNotFound
}

func (f *fakeLedger) FindPendingByReference(reference, entryType string) (*models.LedgerEntry, error) {
	for _, e := range f.entries {
		if e.Reference == reference && e.Type == entryType && e.Status == domain.EntryStatusPending {
			return e, nil
		}
	}
	return nil, repository.ErrEntryNotFound
}

func (f *fakeLedger) ListByUser(userID uint, limit, offset int) ([]models.LedgerEntry, error) {
	var out []models.LedgerEntry
	for _, e := range f.entries {
		if e.UserID == userID {
			out = append(out, *e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	if offset > len(out) {
		offset = len(out)
	}
	out = out[offset:]
	if limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeLedger) byReference(ref string) *models.LedgerEntry {
	for _, e := range f.entries {
		if e.Reference == ref {
			return e
		}
	}
	return nil
}

// fakeOrders writes orders and their escrow credits against a fakeLedger,
// mirroring the transactional repository.
type fakeOrders struct {
	ledger *fakeLedger
	orders map[string]*models.Order
	events []*models.OutboxEvent
	nextID uint
}

func newFakeOrders(ledger *fakeLedger) *fakeOrders {
	return &fakeOrders{ledger: ledger, orders: make(map[string]*models.Order), nextID: 1}
}

func (f *fakeOrders) OpenEscrow(o *models.Order, debit *models.LedgerEntry, evt *models.OutboxEvent) error {
	if _, ok := f.orders[o.OrderNo]; ok {
		return repository.ErrAlreadyOpen
	}
	o.ID = f.nextID
	f.nextID++
	f.orders[o.OrderNo] = o
	if err := f.ledger.Append(debit); err != nil {
		delete(f.orders, o.OrderNo)
		return err
	}
	if evt != nil {
		f.events = append(f.events, evt)
	}
	return nil
}

func (f *fakeOrders) ResolveEscrow(orderNo, toEscrow, toStatus string, credit *models.LedgerEntry, evt *models.OutboxEvent) error {
	o, ok := f.orders[orderNo]
	if !ok {
		return repository.ErrOrderNotFound
	}
	if o.EscrowStatus != domain.EscrowHolding {
		return repository.ErrEscrowNotHolding
	}
	o.EscrowStatus = toEscrow
	o.Status = toStatus
	now := time.Now()
	o.ResolvedAt = &now
	if err := f.ledger.Append(credit); err != nil {
		return err
	}
	if evt != nil {
		f.events = append(f.events, evt)
	}
	return nil
}

func (f *fakeOrders) UpdateStatus(orderNo, from, to string) error {
	o, ok := f.orders[orderNo]
	if !ok {
		return repository.ErrOrderNotFound
	}
	if o.Status != from {
		return repository.ErrStatusConflict
	}
	o.Status = to
	return nil
}

func (f *fakeOrders) GetByOrderNo(orderNo string) (*models.Order, error) {
	o, ok := f.orders[orderNo]
	if !ok {
		return nil, repository.ErrOrderNotFound
	}
	cp := *o
	return &cp, nil
}

func (f *fakeOrders) ListByUser(userID uint, limit, offset int) ([]models.Order, error) {
	var out []models.Order
	for _, o := range f.orders {
		if o.BuyerID == userID || o.SellerID == userID {
			out = append(out, *o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

type fakeUsers struct {
	users map[uint]*models.User
}

func newFakeUsers(users ...*models.User) *fakeUsers {
	f := &fakeUsers{users: make(map[uint]*models.User)}
	for _, u := range users {
		f.users[u.ID] = u
	}
	return f
}

func (f *fakeUsers) GetByID(id uint) (*models.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	return u, nil
}

type fakeWebhookEvents struct {
	seen map[string]string
}

func newFakeWebhookEvents() *fakeWebhookEvents {
	return &fakeWebhookEvents{seen: make(map[string]string)}
}

func (f *fakeWebhookEvents) Seen(eventID string) (bool, error) {
	_, ok := f.seen[eventID]
	return ok, nil
}

func (f *fakeWebhookEvents) Record(evt *models.WebhookEvent) error {
	if _, ok := f.seen[evt.EventID]; ok {
		return repository.ErrDuplicateEvent
	}
	f.seen[evt.EventID] = evt.Name
	return nil
}

type fakeQueue struct {
	events []*models.OutboxEvent
}

func (f *fakeQueue) Enqueue(evt *models.OutboxEvent) error {
	f.events = append(f.events, evt)
	return nil
}

// fakeProvider stands in for the mobile-money API.
type fakeProvider struct {
	payouts      []payment.PayoutRequest
	paymentCodes []payment.PaymentCodeRequest
	failPayout   error
	failCode     error
	nextRef      int
}

func (f *fakeProvider) CreatePayout(ctx context.Context, req payment.PayoutRequest) (*payment.PayoutResponse, error) {
	if f.failPayout != nil {
		return nil, f.failPayout
	}
	f.payouts = append(f.payouts, req)
	f.nextRef++
	return &payment.PayoutResponse{ID: fmt.Sprintf("po-%d", f.nextRef), Status: "pending"}, nil
}

func (f *fakeProvider) CreatePaymentCode(ctx context.Context, req payment.PaymentCodeRequest) (*payment.PaymentCodeResponse, error) {
	if f.failCode != nil {
		return nil, f.failCode
	}
	f.paymentCodes = append(f.paymentCodes, req)
	f.nextRef++
	return &payment.PaymentCodeResponse{ID: fmt.Sprintf("pc-%d", f.nextRef), USSDCode: "*715*1#"}, nil
}

var errProviderDown = errors.New("provider unavailable")
