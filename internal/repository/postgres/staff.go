package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"shopbooking-backend/internal/domain"
	"shopbooking-backend/internal/repository"
)

type staffRepository struct {
	db *sql.DB
}

func NewStaffRepository(db *sql.DB) repository.StaffRepository {
	return &staffRepository{db: db}
}

const staffColumns = `id, name, email, COALESCE(phone, ''), commission_rate,
	daily_target, weekly_target, monthly_target, active`

func (r *staffRepository) GetByID(ctx context.Context, id int32) (*domain.Staff, error) {
	s := &domain.Staff{}
	query := `SELECT ` + staffColumns + ` FROM staff WHERE id = $1`
	err := r.db.QueryRowContext(ctx, query, id).Scan(&s.ID, &s.Name, &s.Email, &s.Phone, &s.CommissionRate,
		&s.DailyTarget, &s.WeeklyTarget, &s.MonthlyTarget, &s.Active)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("staff %d: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return s, nil
}

func (r *staffRepository) ListActive(ctx context.Context) ([]domain.Staff, error) {
	query := `SELECT ` + staffColumns + ` FROM staff WHERE active ORDER BY name`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var staff []domain.Staff
	for rows.Next() {
		var s domain.Staff
		if err := rows.Scan(&s.ID, &s.Name, &s.Email, &s.Phone, &s.CommissionRate,
			&s.DailyTarget, &s.WeeklyTarget, &s.MonthlyTarget, &s.Active); err != nil {
			return nil, err
		}
		staff = append(staff, s)
	}
	return staff, rows.Err()
}
