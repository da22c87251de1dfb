package postgres

import (
	"context"
	"database/sql"
	"time"

	"shopbooking-backend/internal/domain"
	"shopbooking-backend/internal/repository"
)

type paymentDiagnosticRepository struct {
	db *sql.DB
}

func NewPaymentDiagnosticRepository(db *sql.DB) repository.PaymentDiagnosticRepository {
	return &paymentDiagnosticRepository{db: db}
}

func (r *paymentDiagnosticRepository) Create(ctx context.Context, d *domain.PaymentDiagnostic) error {
	query := `INSERT INTO payment_event_diagnostics
	          (event_type, reference, amount_minor, currency, invoice_number, booking_id, reason, raw_payload, created_at)
	          VALUES ($1, $2, $3, $4, NULLIF($5, ''), NULLIF($6, ''), $7, $8, $9) RETURNING id`
	if d.CreatedAt.IsZero() {
		d.CreatedAt = time.Now()
	}
	return r.db.QueryRowContext(ctx, query,
		d.EventType, d.Reference, d.AmountMinor, d.Currency, d.InvoiceNumber, d.BookingID, d.Reason, d.RawPayload, d.CreatedAt,
	).Scan(&d.ID)
}

func (r *paymentDiagnosticRepository) ListSince(ctx context.Context, since time.Time) ([]domain.PaymentDiagnostic, error) {
	query := `SELECT id, event_type, reference, amount_minor, currency, COALESCE(invoice_number, ''),
	                 COALESCE(booking_id, ''), reason, created_at
	          FROM payment_event_diagnostics WHERE created_at >= $1 ORDER BY created_at`
	rows, err := r.db.QueryContext(ctx, query, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.PaymentDiagnostic
	for rows.Next() {
		var d domain.PaymentDiagnostic
		if err := rows.Scan(&d.ID, &d.EventType, &d.Reference, &d.AmountMinor, &d.Currency,
			&d.InvoiceNumber, &d.BookingID, &d.Reason, &d.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

