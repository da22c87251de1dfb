package postgres

import (
	"context"
	"database/sql"

	_ "github.com/lib/pq"

	"shopbooking-backend/internal/repository"
)

// Store bundles every repository over one connection pool.
type Store struct {
	db *sql.DB
	repository.BookingRepository
	repository.TransactionRepository
	repository.StaffRepository
	repository.NotificationFailureRepository
	repository.PaymentDiagnosticRepository
}

func NewStore(db *sql.DB) *Store {
	return &Store{
		db:                            db,
		BookingRepository:             NewBookingRepository(db),
		TransactionRepository:         NewTransactionRepository(db),
		StaffRepository:               NewStaffRepository(db),
		NotificationFailureRepository: NewNotificationFailureRepository(db),
		PaymentDiagnosticRepository:   NewPaymentDiagnosticRepository(db),
	}
}

// Ping reports whether the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}
