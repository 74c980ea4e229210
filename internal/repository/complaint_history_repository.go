package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/complaint-service/internal/domain"
)

// ComplaintHistoryRepository stores audit entries.
type ComplaintHistoryRepository interface {
	Create(ctx context.Context, history *domain.ComplaintHistory) error
	ListByComplaint(ctx context.Context, complaintID string) ([]domain.ComplaintHistory, error)
}

type complaintHistoryRepository struct {
	pool *pgxpool.Pool
}

// NewComplaintHistoryRepository builds a Postgres repository. A nil pool
// yields a repository that records nothing.
func NewComplaintHistoryRepository(pool *pgxpool.Pool) ComplaintHistoryRepository {
	if pool == nil {
		return disabledHistoryRepository{}
	}
	return &complaintHistoryRepository{pool: pool}
}

func (r *complaintHistoryRepository) Create(ctx context.Context, history *domain.ComplaintHistory) error {
	const query = `
        INSERT INTO complaint_history (complaint_id, changed_by_id, change_type, old_value, new_value)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING id::text, created_at`
	return r.pool.QueryRow(ctx, query,
		history.ComplaintID,
		history.ChangedByID,
		string(history.ChangeType),
		history.OldValue,
		history.NewValue,
	).Scan(&history.ID, &history.CreatedAt)
}

func (r *complaintHistoryRepository) ListByComplaint(ctx context.Context, complaintID string) ([]domain.ComplaintHistory, error) {
	const query = `
        SELECT id::text, complaint_id, changed_by_id, change_type, old_value, new_value, created_at
        FROM complaint_history WHERE complaint_id=$1 ORDER BY created_at ASC, id ASC`
	rows, err := r.pool.Query(ctx, query, complaintID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make([]domain.ComplaintHistory, 0)
	for rows.Next() {
		var (
			history    domain.ComplaintHistory
			changeType string
		)
		if err := rows.Scan(
			&history.ID,
			&history.ComplaintID,
			&history.ChangedByID,
			&changeType,
			&history.OldValue,
			&history.NewValue,
			&history.CreatedAt,
		); err != nil {
			return nil, err
		}
		history.ChangeType = domain.ComplaintChangeType(changeType)
		result = append(result, history)
	}
	return result, rows.Err()
}

type disabledHistoryRepository struct{}

func (disabledHistoryRepository) Create(context.Context, *domain.ComplaintHistory) error {
	return nil
}

func (disabledHistoryRepository) ListByComplaint(context.Context, string) ([]domain.ComplaintHistory, error) {
	return []domain.ComplaintHistory{}, nil
}
