package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/facilitas/chamado-service/internal/domain"
)

// DeadlinePolicyRepository manages deadline policy persistence.
type DeadlinePolicyRepository interface {
	Create(ctx context.Context, policy *domain.DeadlinePolicy) error
	Update(ctx context.Context, policy *domain.DeadlinePolicy) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*domain.DeadlinePolicy, error)
	ListForSector(ctx context.Context, sectorID *string) ([]domain.DeadlinePolicy, error)
}

type deadlinePolicyRepository struct {
	pool *pgxpool.Pool
}

// NewDeadlinePolicyRepository builds the repository.
func NewDeadlinePolicyRepository(pool *pgxpool.Pool) DeadlinePolicyRepository {
	return &deadlinePolicyRepository{pool: pool}
}

func (r *deadlinePolicyRepository) Create(ctx context.Context, policy *domain.DeadlinePolicy) error {
	const query = `
        INSERT INTO deadline_policies (title, sector_id, duration)
        VALUES ($1,$2,$3)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		policy.Title,
		policy.SectorID,
		policy.Duration,
	).Scan(&policy.ID, &policy.CreatedAt, &policy.UpdatedAt)
}

func (r *deadlinePolicyRepository) Update(ctx context.Context, policy *domain.DeadlinePolicy) error {
	const query = `
        UPDATE deadline_policies SET title=$1, sector_id=$2, duration=$3, updated_at=NOW()
        WHERE id=$4`
	cmd, err := r.pool.Exec(ctx, query, policy.Title, policy.SectorID, policy.Duration, policy.ID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *deadlinePolicyRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM deadline_policies WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *deadlinePolicyRepository) GetByID(ctx context.Context, id string) (*domain.DeadlinePolicy, error) {
	const query = `SELECT id, title, sector_id, duration, created_at, updated_at FROM deadline_policies WHERE id=$1`
	var policy domain.DeadlinePolicy
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&policy.ID,
		&policy.Title,
		&policy.SectorID,
		&policy.Duration,
		&policy.CreatedAt,
		&policy.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &policy, nil
}

// ListForSector returns the policies applicable to a sector: its own plus
// the unscoped ones. A nil sectorID lists everything.
func (r *deadlinePolicyRepository) ListForSector(ctx context.Context, sectorID *string) ([]domain.DeadlinePolicy, error) {
	query := `SELECT id, title, sector_id, duration, created_at, updated_at FROM deadline_policies ORDER BY title`
	args := []any{}
	if sectorID != nil {
		query = `SELECT id, title, sector_id, duration, created_at, updated_at
                 FROM deadline_policies WHERE sector_id=$1 OR sector_id IS NULL ORDER BY title`
		args = append(args, *sectorID)
	}
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.DeadlinePolicy
	for rows.Next() {
		var policy domain.DeadlinePolicy
		if err := rows.Scan(&policy.ID, &policy.Title, &policy.SectorID, &policy.Duration, &policy.CreatedAt, &policy.UpdatedAt); err != nil {
			return nil, err
		}
		result = append(result, policy)
	}
	return result, rows.Err()
}
