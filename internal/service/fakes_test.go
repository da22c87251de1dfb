package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"shopbooking-backend/internal/domain"
)

// memDB is an in-memory store with the same conditional-write rules as the
// SQL repositories. One mutex makes every write atomic.
type memDB struct {
	mu        sync.Mutex
	bookings  map[string]domain.Booking
	txns      map[string]domain.Transaction
	staff     map[int32]domain.Staff
	diags     []domain.PaymentDiagnostic
	nextTxnID int64

	txnInsertErr error
}

func newMemDB() *memDB {
	return &memDB{
		bookings: map[string]domain.Booking{},
		txns:     map[string]domain.Transaction{},
		staff:    map[int32]domain.Staff{},
	}
}

func (db *memDB) putBooking(b domain.Booking) {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.bookings[b.ID] = b
}

func (db *memDB) putStaff(s domain.Staff) {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.staff[s.ID] = s
}

func (db *memDB) booking(id string) domain.Booking {
	db.mu.Lock()
	defer db.mu.Unlock()
	return db.bookings[id]
}

func (db *memDB) txnCount() int {
	db.mu.Lock()
	defer db.mu.Unlock()
	return len(db.txns)
}

func (db *memDB) diagCount() int {
	db.mu.Lock()
	defer db.mu.Unlock()
	return len(db.diags)
}

type memBookings struct{ db *memDB }

func (r memBookings) Create(_ context.Context, b *domain.Booking) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if _, ok := r.db.bookings[b.ID]; ok {
		return fmt.Errorf("duplicate booking id %s", b.ID)
	}
	r.db.bookings[b.ID] = *b
	return nil
}

func (r memBookings) GetByID(_ context.Context, id string) (*domain.Booking, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	b, ok := r.db.bookings[id]
	if !ok {
		return nil, fmt.Errorf("booking %s: %w", id, domain.ErrNotFound)
	}
	return &b, nil
}

func (r memBookings) GetByInvoiceNumber(_ context.Context, inv string) (*domain.Booking, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var matches []domain.Booking
	for _, b := range r.db.bookings {
		if b.InvoiceNumber != nil && *b.InvoiceNumber == inv {
			matches = append(matches, b)
		}
	}
	if len(matches) == 0 {
		return nil, fmt.Errorf("invoice %s: %w", inv, domain.ErrNotFound)
	}
	sort.Slice(matches, func(i, j int) bool {
		ci := matches[i].ServiceStatus == domain.ServiceStatusCancelled
		cj := matches[j].ServiceStatus == domain.ServiceStatusCancelled
		if ci != cj {
			return !ci
		}
		return matches[i].CreatedAt.After(matches[j].CreatedAt)
	})
	return &matches[0], nil
}

func (r memBookings) List(_ context.Context, f domain.BookingFilter) ([]domain.Booking, int32, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var out []domain.Booking
	for _, b := range r.db.bookings {
		if f.StaffID != nil && b.StaffID != *f.StaffID {
			continue
		}
		out = append(out, b)
	}
	return out, int32(len(out)), nil
}

// update applies fn when the row exists and cond holds.
func (r memBookings) update(id string, cond func(b *domain.Booking) bool, fn func(b *domain.Booking)) (bool, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	b, ok := r.db.bookings[id]
	if !ok || !cond(&b) {
		return false, nil
	}
	fn(&b)
	b.UpdatedAt = time.Now()
	r.db.bookings[id] = b
	return true, nil
}

func always(*domain.Booking) bool { return true }

func (r memBookings) UpdateDetails(_ context.Context, id string, p domain.BookingPatch) (bool, error) {
	cond := always
	if p.Price != nil {
		cond = func(b *domain.Booking) bool { return b.CanEditPrice() }
	}
	return r.update(id, cond, func(b *domain.Booking) {
		if p.CustomerName != nil {
			b.CustomerName = *p.CustomerName
		}
		if p.CustomerEmail != nil {
			b.CustomerEmail = *p.CustomerEmail
		}
		if p.CustomerPhone != nil {
			b.CustomerPhone = *p.CustomerPhone
		}
		if p.StaffID != nil {
			b.StaffID = *p.StaffID
		}
		if p.ServiceName != nil {
			b.ServiceName = *p.ServiceName
		}
		if p.Price != nil {
			b.Price = *p.Price
		}
		if p.Notes != nil {
			b.Notes = *p.Notes
		}
	})
}

func (r memBookings) Reschedule(_ context.Context, id string, at time.Time) (bool, error) {
	return r.update(id, func(b *domain.Booking) bool { return b.CanReschedule() == nil },
		func(b *domain.Booking) { b.ScheduledAt = at })
}

func (r memBookings) MarkCompleted(_ context.Context, id string) (bool, error) {
	return r.update(id, func(b *domain.Booking) bool { return b.CanComplete() == nil },
		func(b *domain.Booking) { b.ServiceStatus = domain.ServiceStatusCompleted })
}

func (r memBookings) Cancel(_ context.Context, id string, at time.Time) (bool, error) {
	return r.update(id, func(b *domain.Booking) bool { return b.CanCancel() == nil },
		func(b *domain.Booking) {
			b.ServiceStatus = domain.ServiceStatusCancelled
			b.CancelledAt = &at
		})
}

func (r memBookings) Delete(_ context.Context, id string) (bool, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	b, ok := r.db.bookings[id]
	if !ok || !b.CanDelete() {
		return false, nil
	}
	delete(r.db.bookings, id)
	return true, nil
}

func (r memBookings) SetInvoiceNumber(_ context.Context, id, inv string) (bool, error) {
	return r.update(id, func(b *domain.Booking) bool { return b.InvoiceNumber == nil },
		func(b *domain.Booking) { b.InvoiceNumber = &inv })
}

func (r memBookings) MarkPaid(_ context.Context, id string, p domain.PaymentUpdate) (bool, error) {
	return r.update(id, func(b *domain.Booking) bool { return b.CanAcceptPayment() == nil },
		func(b *domain.Booking) {
			ref, at := p.Reference, p.ReceivedAt
			b.PaymentStatus = domain.PaymentStatusPaid
			b.PaymentReference = &ref
			b.PaymentAmount.Decimal, b.PaymentAmount.Valid = p.Amount, true
			b.PaymentReceivedAt = &at
			b.PaymentMethod = p.Method
		})
}

func (r memBookings) MarkPaymentFailed(_ context.Context, id string) (bool, error) {
	return r.update(id, func(b *domain.Booking) bool { return b.CanFail() == nil },
		func(b *domain.Booking) { b.PaymentStatus = domain.PaymentStatusFailed })
}

func (r memBookings) MarkRefunded(_ context.Context, id string) (bool, error) {
	return r.update(id, func(b *domain.Booking) bool { return b.CanRefund() == nil },
		func(b *domain.Booking) { b.PaymentStatus = domain.PaymentStatusRefunded })
}

func (r memBookings) ListPaidWithoutTransaction(_ context.Context, limit int) ([]domain.Booking, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var out []domain.Booking
	for _, b := range r.db.bookings {
		if _, ok := r.db.txns[b.ID]; b.PaymentStatus == domain.PaymentStatusPaid && !ok {
			out = append(out, b)
		}
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (r memBookings) ListScheduledBetween(_ context.Context, from, to time.Time) ([]domain.Booking, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var out []domain.Booking
	for _, b := range r.db.bookings {
		if b.ServiceStatus == domain.ServiceStatusScheduled && !b.ScheduledAt.Before(from) && b.ScheduledAt.Before(to) {
			out = append(out, b)
		}
	}
	return out, nil
}

type memTxns struct{ db *memDB }

func (r memTxns) CreateIfAbsent(_ context.Context, t *domain.Transaction) (bool, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if r.db.txnInsertErr != nil {
		return false, r.db.txnInsertErr
	}
	if _, ok := r.db.txns[t.BookingID]; ok {
		return false, nil
	}
	r.db.nextTxnID++
	t.ID = r.db.nextTxnID
	t.CreatedAt = time.Now()
	r.db.txns[t.BookingID] = *t
	return true, nil
}

func (r memTxns) GetByBookingID(_ context.Context, id string) (*domain.Transaction, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	t, ok := r.db.txns[id]
	if !ok {
		return nil, fmt.Errorf("transaction for booking %s: %w", id, domain.ErrNotFound)
	}
	return &t, nil
}

func (r memTxns) List(_ context.Context, f domain.TransactionFilter) ([]domain.Transaction, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var out []domain.Transaction
	for _, t := range r.db.txns {
		if f.StaffID != nil && t.StaffID != *f.StaffID {
			continue
		}
		if t.TransactionDate.Before(f.Start) || !t.TransactionDate.Before(f.End) {
			continue
		}
		out = append(out, t)
	}
	return out, nil
}

func (r memTxns) MarkRefunded(_ context.Context, id string) (bool, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	t, ok := r.db.txns[id]
	if !ok || t.Status != domain.TransactionStatusCompleted {
		return false, nil
	}
	t.Status = domain.TransactionStatusRefunded
	r.db.txns[id] = t
	return true, nil
}

type memStaff struct{ db *memDB }

func (r memStaff) GetByID(_ context.Context, id int32) (*domain.Staff, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	s, ok := r.db.staff[id]
	if !ok {
		return nil, fmt.Errorf("staff %d: %w", id, domain.ErrNotFound)
	}
	return &s, nil
}

func (r memStaff) ListActive(_ context.Context) ([]domain.Staff, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var out []domain.Staff
	for _, s := range r.db.staff {
		if s.Active {
			out = append(out, s)
		}
	}
	return out, nil
}

type memDiags struct{ db *memDB }

func (r memDiags) Create(_ context.Context, d *domain.PaymentDiagnostic) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	d.ID = int64(len(r.db.diags) + 1)
	r.db.diags = append(r.db.diags, *d)
	return nil
}

func (r memDiags) ListSince(_ context.Context, since time.Time) ([]domain.PaymentDiagnostic, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var out []domain.PaymentDiagnostic
	for _, d := range r.db.diags {
		if !d.CreatedAt.Before(since) {
			out = append(out, d)
		}
	}
	return out, nil
}

// recordingNotifier delivers synchronously so tests can inspect messages.
type recordingNotifier struct {
	mu   sync.Mutex
	msgs []*domain.Message
}

func (n *recordingNotifier) Dispatch(_ context.Context, msg *domain.Message) domain.DeliveryResult {
	if msg == nil {
		return domain.DeliveryResult{ChannelUsed: "none"}
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	n.msgs = append(n.msgs, msg)
	return domain.DeliveryResult{Success: true, ChannelUsed: "fake"}
}

func (n *recordingNotifier) DispatchAsync(ctx context.Context, msg *domain.Message) {
	n.Dispatch(ctx, msg)
}

func (n *recordingNotifier) kinds() []domain.MessageKind {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]domain.MessageKind, 0, len(n.msgs))
	for _, m := range n.msgs {
		out = append(out, m.Kind)
	}
	return out
}
