package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"

	"shopbooking-backend/internal/domain"
	"shopbooking-backend/internal/logger"
	"shopbooking-backend/internal/repository"
)

const bookingColumns = `id, customer_id, customer_name, customer_email, customer_phone, staff_id,
	service_name, scheduled_at, price, currency, service_status, payment_status,
	payment_method, payment_reference, invoice_number, payment_received_at, payment_amount,
	notes, cancelled_at, created_at, updated_at`

type bookingRepository struct {
	db *sql.DB
}

func NewBookingRepository(db *sql.DB) repository.BookingRepository {
	return &bookingRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBooking(row rowScanner) (*domain.Booking, error) {
	var (
		b             domain.Booking
		customerID    sql.NullInt32
		paymentMethod sql.NullString
		paymentRef    sql.NullString
		invoiceNumber sql.NullString
		receivedAt    sql.NullTime
		cancelledAt   sql.NullTime
	)
	err := row.Scan(
		&b.ID, &customerID, &b.CustomerName, &b.CustomerEmail, &b.CustomerPhone, &b.StaffID,
		&b.ServiceName, &b.ScheduledAt, &b.Price, &b.Currency, &b.ServiceStatus, &b.PaymentStatus,
		&paymentMethod, &paymentRef, &invoiceNumber, &receivedAt, &b.PaymentAmount,
		&b.Notes, &cancelledAt, &b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if customerID.Valid {
		b.CustomerID = &customerID.Int32
	}
	if paymentMethod.Valid {
		b.PaymentMethod = domain.PaymentMethod(paymentMethod.String)
	}
	if paymentRef.Valid {
		b.PaymentReference = &paymentRef.String
	}
	if invoiceNumber.Valid {
		b.InvoiceNumber = &invoiceNumber.String
	}
	if receivedAt.Valid {
		b.PaymentReceivedAt = &receivedAt.Time
	}
	if cancelledAt.Valid {
		b.CancelledAt = &cancelledAt.Time
	}
	return &b, nil
}

func (r *bookingRepository) Create(ctx context.Context, b *domain.Booking) error {
	logger.EnterMethod("bookingRepository.Create", "bookingID", b.ID, "staffID", b.StaffID)

	query := `INSERT INTO bookings (id, customer_id, customer_name, customer_email, customer_phone, staff_id,
	          service_name, scheduled_at, price, currency, service_status, payment_status, notes, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`
	now := time.Now()
	_, err := r.db.ExecContext(ctx, query,
		b.ID, b.CustomerID, b.CustomerName, b.CustomerEmail, b.CustomerPhone, b.StaffID,
		b.ServiceName, b.ScheduledAt, b.Price, b.Currency, b.ServiceStatus, b.PaymentStatus, b.Notes, now, now,
	)
	if err != nil {
		logger.ExitMethodWithError("bookingRepository.Create", err, "bookingID", b.ID)
		return fmt.Errorf("insert booking: %w", err)
	}
	b.CreatedAt = now
	b.UpdatedAt = now

	logger.ExitMethod("bookingRepository.Create", "bookingID", b.ID)
	return nil
}

func (r *bookingRepository) GetByID(ctx context.Context, id string) (*domain.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1`
	b, err := scanBooking(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("booking %s: %w", id, domain.ErrNotFound)
	}
	return b, err
}

func (r *bookingRepository) GetByInvoiceNumber(ctx context.Context, invoiceNumber string) (*domain.Booking, error) {
	// false sorts before true, so live bookings win over cancelled ones.
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE invoice_number = $1
	          ORDER BY (service_status = 'cancelled'), created_at DESC LIMIT 1`
	b, err := scanBooking(r.db.QueryRowContext(ctx, query, invoiceNumber))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("invoice %s: %w", invoiceNumber, domain.ErrNotFound)
	}
	return b, err
}

func (r *bookingRepository) List(ctx context.Context, f domain.BookingFilter) ([]domain.Booking, int32, error) {
	var (
		where []string
		args  []any
	)
	add := func(clause string, v any) {
		args = append(args, v)
		where = append(where, fmt.Sprintf(clause, len(args)))
	}

	if len(f.ServiceStatuses) > 0 {
		statuses := make([]string, len(f.ServiceStatuses))
		for i, s := range f.ServiceStatuses {
			statuses[i] = string(s)
		}
		add("service_status = ANY($%d)", pq.Array(statuses))
	}
	if len(f.PaymentStatuses) > 0 {
		statuses := make([]string, len(f.PaymentStatuses))
		for i, s := range f.PaymentStatuses {
			statuses[i] = string(s)
		}
		add("payment_status = ANY($%d)", pq.Array(statuses))
	}
	if f.From != nil {
		add("scheduled_at >= $%d", *f.From)
	}
	if f.To != nil {
		add("scheduled_at < $%d", *f.To)
	}
	if f.CustomerID != nil {
		add("customer_id = $%d", *f.CustomerID)
	}
	if f.StaffID != nil {
		add("staff_id = $%d", *f.StaffID)
	}
	if q := strings.TrimSpace(f.CustomerQuery); q != "" {
		args = append(args, "%"+q+"%")
		n := len(args)
		where = append(where, fmt.Sprintf("(customer_name ILIKE $%d OR customer_email ILIKE $%d OR customer_phone ILIKE $%d)", n, n, n))
	}

	base := `FROM bookings`
	if len(where) > 0 {
		base += " WHERE " + strings.Join(where, " AND ")
	}

	var count int32
	if err := r.db.QueryRowContext(ctx, "SELECT count(*) "+base, args...).Scan(&count); err != nil {
		return nil, 0, fmt.Errorf("count bookings: %w", err)
	}

	page, pageSize := f.Page, f.PageSize
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 200 {
		pageSize = 50
	}
	query := fmt.Sprintf("SELECT %s %s ORDER BY scheduled_at DESC LIMIT $%d OFFSET $%d",
		bookingColumns, base, len(args)+1, len(args)+2)
	args = append(args, pageSize, (page-1)*pageSize)

	bookings, err := r.queryBookings(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	return bookings, count, nil
}

func (r *bookingRepository) queryBookings(ctx context.Context, query string, args ...any) ([]domain.Booking, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query bookings: %w", err)
	}
	defer rows.Close()

	var bookings []domain.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("scan booking: %w", err)
		}
		bookings = append(bookings, *b)
	}
	return bookings, rows.Err()
}

// UpdateDetails writes only the fields present in the patch. Price changes
// are additionally guarded on the payment still being pending.
func (r *bookingRepository) UpdateDetails(ctx context.Context, id string, p domain.BookingPatch) (bool, error) {
	var (
		sets []string
		args []any
	)
	set := func(col string, v any) {
		args = append(args, v)
		sets = append(sets, fmt.Sprintf("%s = $%d", col, len(args)))
	}
	if p.CustomerName != nil {
		set("customer_name", *p.CustomerName)
	}
	if p.CustomerEmail != nil {
		set("customer_email", *p.CustomerEmail)
	}
	if p.CustomerPhone != nil {
		set("customer_phone", *p.CustomerPhone)
	}
	if p.StaffID != nil {
		set("staff_id", *p.StaffID)
	}
	if p.ServiceName != nil {
		set("service_name", *p.ServiceName)
	}
	if p.Price != nil {
		set("price", *p.Price)
	}
	if p.Notes != nil {
		set("notes", *p.Notes)
	}
	if len(sets) == 0 {
		return false, nil
	}
	set("updated_at", time.Now())

	args = append(args, id)
	query := fmt.Sprintf("UPDATE bookings SET %s WHERE id = $%d", strings.Join(sets, ", "), len(args))
	if p.Price != nil {
		query += " AND payment_status = 'pending' AND service_status <> 'cancelled'"
	}
	return r.execConditional(ctx, "update booking details", query, args...)
}

func (r *bookingRepository) Reschedule(ctx context.Context, id string, scheduledAt time.Time) (bool, error) {
	query := `UPDATE bookings SET scheduled_at = $1, updated_at = $2 WHERE id = $3 AND service_status = 'scheduled'`
	return r.execConditional(ctx, "reschedule booking", query, scheduledAt, time.Now(), id)
}

func (r *bookingRepository) MarkCompleted(ctx context.Context, id string) (bool, error) {
	query := `UPDATE bookings SET service_status = 'completed', updated_at = $1 WHERE id = $2 AND service_status = 'scheduled'`
	return r.execConditional(ctx, "complete booking", query, time.Now(), id)
}

func (r *bookingRepository) Cancel(ctx context.Context, id string, at time.Time) (bool, error) {
	query := `UPDATE bookings SET service_status = 'cancelled', cancelled_at = $1, updated_at = $1
	          WHERE id = $2 AND (service_status = 'scheduled'
	                OR (service_status = 'completed' AND payment_status IN ('pending', 'failed')))`
	return r.execConditional(ctx, "cancel booking", query, at, id)
}

func (r *bookingRepository) Delete(ctx context.Context, id string) (bool, error) {
	query := `DELETE FROM bookings WHERE id = $1 AND payment_status = 'pending'`
	return r.execConditional(ctx, "delete booking", query, id)
}

func (r *bookingRepository) SetInvoiceNumber(ctx context.Context, id, invoiceNumber string) (bool, error) {
	query := `UPDATE bookings SET invoice_number = $1, updated_at = $2 WHERE id = $3 AND invoice_number IS NULL`
	return r.execConditional(ctx, "set invoice number", query, invoiceNumber, time.Now(), id)
}

// MarkPaid is the single write that moves a booking to paid. Concurrent
// callers race on the WHERE clause; exactly one sees true.
func (r *bookingRepository) MarkPaid(ctx context.Context, id string, p domain.PaymentUpdate) (bool, error) {
	logger.EnterMethod("bookingRepository.MarkPaid", "bookingID", id, "reference", p.Reference)

	query := `UPDATE bookings
	          SET payment_status = 'paid', payment_method = $1, payment_reference = $2,
	              payment_amount = $3, payment_received_at = $4, updated_at = $5
	          WHERE id = $6 AND payment_status IN ('pending', 'failed') AND service_status <> 'cancelled'`
	ok, err := r.execConditional(ctx, "mark booking paid", query,
		p.Method, p.Reference, p.Amount, p.ReceivedAt, time.Now(), id)
	if err != nil {
		logger.ExitMethodWithError("bookingRepository.MarkPaid", err, "bookingID", id)
		return false, err
	}

	logger.ExitMethod("bookingRepository.MarkPaid", "bookingID", id, "applied", ok)
	return ok, nil
}

func (r *bookingRepository) MarkPaymentFailed(ctx context.Context, id string) (bool, error) {
	query := `UPDATE bookings SET payment_status = 'failed', updated_at = $1 WHERE id = $2 AND payment_status = 'pending' AND service_status <> 'cancelled'`
	return r.execConditional(ctx, "mark payment failed", query, time.Now(), id)
}

func (r *bookingRepository) MarkRefunded(ctx context.Context, id string) (bool, error) {
	query := `UPDATE bookings SET payment_status = 'refunded', updated_at = $1 WHERE id = $2 AND payment_status = 'paid'`
	return r.execConditional(ctx, "mark booking refunded", query, time.Now(), id)
}

func (r *bookingRepository) ListPaidWithoutTransaction(ctx context.Context, limit int) ([]domain.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings b
	          WHERE b.payment_status = 'paid'
	            AND NOT EXISTS (SELECT 1 FROM transactions t WHERE t.booking_id = b.id)
	          ORDER BY b.payment_received_at LIMIT $1`
	return r.queryBookings(ctx, query, limit)
}

func (r *bookingRepository) ListScheduledBetween(ctx context.Context, from, to time.Time) ([]domain.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings
	          WHERE service_status = 'scheduled' AND scheduled_at >= $1 AND scheduled_at < $2
	          ORDER BY scheduled_at`
	return r.queryBookings(ctx, query, from, to)
}

func (r *bookingRepository) execConditional(ctx context.Context, op, query string, args ...any) (bool, error) {
	logger.DatabaseCall(op, query)
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		logger.DatabaseResult(op, 0, err)
		return false, fmt.Errorf("%s: %w", op, err)
	}
	n, err := res.RowsAffected()
	logger.DatabaseResult(op, n, err)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return n == 1, nil
}
