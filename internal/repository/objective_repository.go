package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/salim0986/okr-production-sub000/internal/domain"
)

type objectiveRepository struct {
	db DBTX
}

const objectiveColumns = `o.id, o.team_id, o.title, o.description, o.start_date, o.end_date, o.progress, o.status, o.created_by, o.created_at, o.updated_at`

func (r *objectiveRepository) Create(ctx context.Context, objective *domain.Objective) error {
	const query = `
        INSERT INTO objectives (team_id, title, description, start_date, end_date, progress, status, created_by)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
        RETURNING id, created_at, updated_at`
	return translate(r.db.QueryRow(ctx, query,
		objective.TeamID,
		objective.Title,
		objective.Description,
		objective.StartDate,
		objective.EndDate,
		objective.Progress,
		objective.Status,
		objective.CreatedBy,
	).Scan(&objective.ID, &objective.CreatedAt, &objective.UpdatedAt))
}

func (r *objectiveRepository) Update(ctx context.Context, objective *domain.Objective) error {
	const query = `
        UPDATE objectives SET title=$1, description=$2, start_date=$3, end_date=$4, status=$5, updated_at=NOW()
        WHERE id=$6
        RETURNING updated_at`
	return translate(r.db.QueryRow(ctx, query,
		objective.Title,
		objective.Description,
		objective.StartDate,
		objective.EndDate,
		objective.Status,
		objective.ID,
	).Scan(&objective.UpdatedAt))
}

func (r *objectiveRepository) GetByID(ctx context.Context, id string) (*domain.Objective, error) {
	query := `SELECT ` + objectiveColumns + ` FROM objectives o WHERE o.id=$1`
	objective, err := scanObjective(r.db.QueryRow(ctx, query, id))
	if err != nil {
		return nil, translate(err)
	}
	return objective, nil
}

func (r *objectiveRepository) Delete(ctx context.Context, id string) error {
	return expectOne(r.db.Exec(ctx, `DELETE FROM objectives WHERE id=$1`, id))
}

func (r *objectiveRepository) List(ctx context.Context, filter ObjectiveFilter) ([]domain.Objective, error) {
	base := `SELECT ` + objectiveColumns + ` FROM objectives o JOIN teams t ON t.id = o.team_id`
	args := []any{filter.OrganizationID}
	clauses := []string{"t.organization_id=$1"}

	if filter.TeamID != nil {
		args = append(args, *filter.TeamID)
		clauses = append(clauses, fmt.Sprintf("o.team_id=$%d", len(args)))
	}
	if len(filter.Statuses) > 0 {
		placeholders := make([]string, len(filter.Statuses))
		for i, status := range filter.Statuses {
			args = append(args, status)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("o.status IN (%s)", strings.Join(placeholders, ",")))
	}

	limit, offset := normalizePage(filter.Limit, filter.Offset, 100)
	query := fmt.Sprintf(`%s WHERE %s ORDER BY o.end_date ASC, o.created_at ASC LIMIT %d OFFSET %d`,
		base, strings.Join(clauses, " AND "), limit, offset)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, translate(err)
	}
	defer rows.Close()

	var result []domain.Objective
	for rows.Next() {
		objective, err := scanObjective(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *objective)
	}
	return result, rows.Err()
}

func (r *objectiveRepository) UpdateProgress(ctx context.Context, id string, progress int, status domain.Status) error {
	const query = `UPDATE objectives SET progress=$1, status=$2, updated_at=NOW() WHERE id=$3`
	return expectOne(r.db.Exec(ctx, query, progress, status, id))
}

func scanObjective(row pgx.Row) (*domain.Objective, error) {
	var objective domain.Objective
	if err := row.Scan(
		&objective.ID,
		&objective.TeamID,
		&objective.Title,
		&objective.Description,
		&objective.StartDate,
		&objective.EndDate,
		&objective.Progress,
		&objective.Status,
		&objective.CreatedBy,
		&objective.CreatedAt,
		&objective.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &objective, nil
}
