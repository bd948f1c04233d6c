package repository

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/salim0986/okr-production-sub000/internal/domain"
)

type keyResultRepository struct {
	db DBTX
}

const keyResultColumns = `id, objective_id, title, target_value, current_value, assigned_to, units, start_date, end_date, status, created_at, updated_at`

func (r *keyResultRepository) Create(ctx context.Context, kr *domain.KeyResult) error {
	const query = `
        INSERT INTO key_results (objective_id, title, target_value, current_value, assigned_to, units, start_date, end_date, status)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
        RETURNING id, created_at, updated_at`
	return translate(r.db.QueryRow(ctx, query,
		kr.ObjectiveID,
		kr.Title,
		kr.TargetValue,
		kr.CurrentValue,
		kr.AssignedTo,
		kr.Units,
		kr.StartDate,
		kr.EndDate,
		kr.Status,
	).Scan(&kr.ID, &kr.CreatedAt, &kr.UpdatedAt))
}

func (r *keyResultRepository) Update(ctx context.Context, kr *domain.KeyResult) error {
	const query = `
        UPDATE key_results SET title=$1, target_value=$2, assigned_to=$3, units=$4, start_date=$5, end_date=$6, status=$7, updated_at=NOW()
        WHERE id=$8
        RETURNING updated_at`
	return translate(r.db.QueryRow(ctx, query,
		kr.Title,
		kr.TargetValue,
		kr.AssignedTo,
		kr.Units,
		kr.StartDate,
		kr.EndDate,
		kr.Status,
		kr.ID,
	).Scan(&kr.UpdatedAt))
}

func (r *keyResultRepository) GetByID(ctx context.Context, id string) (*domain.KeyResult, error) {
	query := `SELECT ` + keyResultColumns + ` FROM key_results WHERE id=$1`
	kr, err := scanKeyResult(r.db.QueryRow(ctx, query, id))
	if err != nil {
		return nil, translate(err)
	}
	return kr, nil
}

func (r *keyResultRepository) Delete(ctx context.Context, id string) error {
	return expectOne(r.db.Exec(ctx, `DELETE FROM key_results WHERE id=$1`, id))
}

func (r *keyResultRepository) ListByObjective(ctx context.Context, objectiveID string) ([]domain.KeyResult, error) {
	query := `SELECT ` + keyResultColumns + ` FROM key_results WHERE objective_id=$1 ORDER BY created_at ASC`
	return r.list(ctx, query, objectiveID)
}

func (r *keyResultRepository) ListByAssignee(ctx context.Context, userID string) ([]domain.KeyResult, error) {
	query := `SELECT ` + keyResultColumns + ` FROM key_results WHERE assigned_to=$1 ORDER BY created_at ASC`
	return r.list(ctx, query, userID)
}

func (r *keyResultRepository) SetCurrentValue(ctx context.Context, id string, value float64) error {
	const query = `UPDATE key_results SET current_value=$1, updated_at=NOW() WHERE id=$2`
	return expectOne(r.db.Exec(ctx, query, value, id))
}

func (r *keyResultRepository) list(ctx context.Context, query string, arg any) ([]domain.KeyResult, error) {
	rows, err := r.db.Query(ctx, query, arg)
	if err != nil {
		return nil, translate(err)
	}
	defer rows.Close()

	var result []domain.KeyResult
	for rows.Next() {
		kr, err := scanKeyResult(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *kr)
	}
	return result, rows.Err()
}

func scanKeyResult(row pgx.Row) (*domain.KeyResult, error) {
	var kr domain.KeyResult
	if err := row.Scan(
		&kr.ID,
		&kr.ObjectiveID,
		&kr.Title,
		&kr.TargetValue,
		&kr.CurrentValue,
		&kr.AssignedTo,
		&kr.Units,
		&kr.StartDate,
		&kr.EndDate,
		&kr.Status,
		&kr.CreatedAt,
		&kr.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &kr, nil
}
