package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"shopbooking-backend/internal/domain"
	"shopbooking-backend/internal/logger"
	"shopbooking-backend/internal/repository"
)

type transactionRepository struct {
	db *sql.DB
}

func NewTransactionRepository(db *sql.DB) repository.TransactionRepository {
	return &transactionRepository{db: db}
}

// CreateIfAbsent relies on the unique index on booking_id. A conflicting
// insert returns no row, which is the idempotent no-op path.
func (r *transactionRepository) CreateIfAbsent(ctx context.Context, t *domain.Transaction) (bool, error) {
	logger.EnterMethod("transactionRepository.CreateIfAbsent", "bookingID", t.BookingID)

	query := `INSERT INTO transactions (booking_id, staff_id, gross_amount, commission_rate, commission_amount,
	          currency, transaction_date, status, created_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	          ON CONFLICT (booking_id) DO NOTHING
	          RETURNING id, created_at`
	err := r.db.QueryRowContext(ctx, query,
		t.BookingID, t.StaffID, t.GrossAmount, t.CommissionRate, t.CommissionAmount,
		t.Currency, t.TransactionDate, t.Status, time.Now(),
	).Scan(&t.ID, &t.CreatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		logger.ExitMethod("transactionRepository.CreateIfAbsent", "bookingID", t.BookingID, "created", false)
		return false, nil
	}
	if err != nil {
		logger.ExitMethodWithError("transactionRepository.CreateIfAbsent", err, "bookingID", t.BookingID)
		return false, fmt.Errorf("insert transaction: %w", err)
	}

	logger.ExitMethod("transactionRepository.CreateIfAbsent", "bookingID", t.BookingID, "created", true, "transactionID", t.ID)
	return true, nil
}

const transactionColumns = `id, booking_id, staff_id, gross_amount, commission_rate, commission_amount,
	currency, transaction_date, status, created_at`

func scanTransaction(row rowScanner) (*domain.Transaction, error) {
	var t domain.Transaction
	err := row.Scan(&t.ID, &t.BookingID, &t.StaffID, &t.GrossAmount, &t.CommissionRate, &t.CommissionAmount,
		&t.Currency, &t.TransactionDate, &t.Status, &t.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *transactionRepository) GetByBookingID(ctx context.Context, bookingID string) (*domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE booking_id = $1`
	t, err := scanTransaction(r.db.QueryRowContext(ctx, query, bookingID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("transaction for booking %s: %w", bookingID, domain.ErrNotFound)
	}
	return t, err
}

func (r *transactionRepository) List(ctx context.Context, f domain.TransactionFilter) ([]domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions
	          WHERE transaction_date >= $1 AND transaction_date < $2`
	args := []any{f.Start, f.End}
	if f.StaffID != nil {
		query += " AND staff_id = $3"
		args = append(args, *f.StaffID)
	}
	query += " ORDER BY transaction_date"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}
	defer rows.Close()

	var txns []domain.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		txns = append(txns, *t)
	}
	return txns, rows.Err()
}

func (r *transactionRepository) MarkRefunded(ctx context.Context, bookingID string) (bool, error) {
	query := `UPDATE transactions SET status = 'refunded' WHERE booking_id = $1 AND status = 'completed'`
	res, err := r.db.ExecContext(ctx, query, bookingID)
	if err != nil {
		return false, fmt.Errorf("mark transaction refunded: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}
