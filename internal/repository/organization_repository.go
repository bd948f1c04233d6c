package repository

import (
	"context"

	"github.com/salim0986/okr-production-sub000/internal/domain"
)

type organizationRepository struct {
	db DBTX
}

func (r *organizationRepository) Create(ctx context.Context, org *domain.Organization) error {
	const query = `
        INSERT INTO organizations (name, created_by)
        VALUES ($1, $2)
        RETURNING id, created_at`
	return translate(r.db.QueryRow(ctx, query, org.Name, org.CreatedBy).Scan(&org.ID, &org.CreatedAt))
}

func (r *organizationRepository) Update(ctx context.Context, org *domain.Organization) error {
	const query = `UPDATE organizations SET name=$1, created_by=$2 WHERE id=$3`
	return expectOne(r.db.Exec(ctx, query, org.Name, org.CreatedBy, org.ID))
}

func (r *organizationRepository) GetByID(ctx context.Context, id string) (*domain.Organization, error) {
	const query = `SELECT id, name, created_by, created_at FROM organizations WHERE id=$1`
	var org domain.Organization
	if err := r.db.QueryRow(ctx, query, id).Scan(&org.ID, &org.Name, &org.CreatedBy, &org.CreatedAt); err != nil {
		return nil, translate(err)
	}
	return &org, nil
}
