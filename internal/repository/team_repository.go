package repository

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/salim0986/okr-production-sub000/internal/domain"
)

type teamRepository struct {
	db DBTX
}

const teamColumns = `id, organization_id, name, lead_id, created_at, updated_at`

func (r *teamRepository) Create(ctx context.Context, team *domain.Team) error {
	const query = `
        INSERT INTO teams (organization_id, name, lead_id)
        VALUES ($1,$2,$3)
        RETURNING id, created_at, updated_at`
	return translate(r.db.QueryRow(ctx, query,
		team.OrganizationID,
		team.Name,
		team.LeadID,
	).Scan(&team.ID, &team.CreatedAt, &team.UpdatedAt))
}

func (r *teamRepository) Update(ctx context.Context, team *domain.Team) error {
	const query = `
        UPDATE teams SET name=$1, lead_id=$2, updated_at=NOW()
        WHERE id=$3
        RETURNING updated_at`
	return translate(r.db.QueryRow(ctx, query, team.Name, team.LeadID, team.ID).Scan(&team.UpdatedAt))
}

func (r *teamRepository) GetByID(ctx context.Context, id string) (*domain.Team, error) {
	query := `SELECT ` + teamColumns + ` FROM teams WHERE id=$1`
	team, err := scanTeam(r.db.QueryRow(ctx, query, id))
	if err != nil {
		return nil, translate(err)
	}
	return team, nil
}

func (r *teamRepository) Delete(ctx context.Context, id string) error {
	return expectOne(r.db.Exec(ctx, `DELETE FROM teams WHERE id=$1`, id))
}

func (r *teamRepository) ListByOrganization(ctx context.Context, organizationID string) ([]domain.Team, error) {
	query := `SELECT ` + teamColumns + ` FROM teams WHERE organization_id=$1 ORDER BY name ASC`
	rows, err := r.db.Query(ctx, query, organizationID)
	if err != nil {
		return nil, translate(err)
	}
	defer rows.Close()

	var result []domain.Team
	for rows.Next() {
		team, err := scanTeam(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *team)
	}
	return result, rows.Err()
}

func (r *teamRepository) SetLead(ctx context.Context, teamID string, leadID *string) error {
	const query = `UPDATE teams SET lead_id=$1, updated_at=NOW() WHERE id=$2`
	return expectOne(r.db.Exec(ctx, query, leadID, teamID))
}

func (r *teamRepository) ClearLeadership(ctx context.Context, userID string) error {
	const query = `UPDATE teams SET lead_id=NULL, updated_at=NOW() WHERE lead_id=$1`
	_, err := r.db.Exec(ctx, query, userID)
	return translate(err)
}

func scanTeam(row pgx.Row) (*domain.Team, error) {
	var team domain.Team
	if err := row.Scan(
		&team.ID,
		&team.OrganizationID,
		&team.Name,
		&team.LeadID,
		&team.CreatedAt,
		&team.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &team, nil
}
