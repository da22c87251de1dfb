package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"shopbooking-backend/internal/domain"
	"shopbooking-backend/internal/repository"
)

type notificationFailureRepository struct {
	db *sql.DB
}

func NewNotificationFailureRepository(db *sql.DB) repository.NotificationFailureRepository {
	return &notificationFailureRepository{db: db}
}

func (r *notificationFailureRepository) Create(ctx context.Context, f *domain.NotificationFailure) error {
	query := `INSERT INTO notification_failures (kind, recipients, subject, booking_id, payload, last_error, created_at)
	          VALUES ($1, $2, $3, NULLIF($4, ''), $5, $6, $7) RETURNING id`
	if f.CreatedAt.IsZero() {
		f.CreatedAt = time.Now()
	}
	err := r.db.QueryRowContext(ctx, query,
		f.Kind, pq.Array(f.Recipients), f.Subject, f.BookingID, []byte(f.Payload), f.LastError, f.CreatedAt,
	).Scan(&f.ID)
	if err != nil {
		return fmt.Errorf("insert notification failure: %w", err)
	}
	return nil
}

const failureColumns = `id, kind, recipients, subject, COALESCE(booking_id, ''), payload, last_error, created_at, resent_at`

func scanFailure(row rowScanner) (*domain.NotificationFailure, error) {
	var (
		f        domain.NotificationFailure
		payload  []byte
		resentAt sql.NullTime
	)
	err := row.Scan(&f.ID, &f.Kind, pq.Array(&f.Recipients), &f.Subject, &f.BookingID, &payload,
		&f.LastError, &f.CreatedAt, &resentAt)
	if err != nil {
		return nil, err
	}
	f.Payload = payload
	if resentAt.Valid {
		f.ResentAt = &resentAt.Time
	}
	return &f, nil
}

func (r *notificationFailureRepository) GetByID(ctx context.Context, id int64) (*domain.NotificationFailure, error) {
	query := `SELECT ` + failureColumns + ` FROM notification_failures WHERE id = $1`
	f, err := scanFailure(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("notification failure %d: %w", id, domain.ErrNotFound)
	}
	return f, err
}

func (r *notificationFailureRepository) ListPending(ctx context.Context, limit int) ([]domain.NotificationFailure, error) {
	query := `SELECT ` + failureColumns + ` FROM notification_failures
	          WHERE resent_at IS NULL ORDER BY created_at LIMIT $1`
	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.NotificationFailure
	for rows.Next() {
		f, err := scanFailure(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *f)
	}
	return out, rows.Err()
}

func (r *notificationFailureRepository) MarkResent(ctx context.Context, id int64, at time.Time) error {
	_, err := r.db.ExecContext(ctx, `UPDATE notification_failures SET resent_at = $1 WHERE id = $2`, at, id)
	return err
}
