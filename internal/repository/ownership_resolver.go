package repository

import (
	"context"
	"fmt"

	"github.com/salim0986/okr-production-sub000/internal/domain"
)

type ownershipResolver struct {
	db DBTX
}

// Each query selects: organization, team organization, team, owner, assignee,
// assignee team. Everything is fetched with one round trip.
var ownershipQueries = map[domain.ResourceKind]string{
	domain.ResourceOrganization: `
        SELECT org.id, NULL::uuid, NULL::uuid, org.created_by, NULL::uuid, NULL::uuid
        FROM organizations org WHERE org.id=$1`,
	domain.ResourceTeam: `
        SELECT t.organization_id, NULL::uuid, t.id, NULL::uuid, NULL::uuid, NULL::uuid
        FROM teams t WHERE t.id=$1`,
	domain.ResourceUser: `
        SELECT u.organization_id, t.organization_id, u.team_id, u.id, NULL::uuid, NULL::uuid
        FROM users u LEFT JOIN teams t ON t.id = u.team_id
        WHERE u.id=$1`,
	domain.ResourceObjective: `
        SELECT t.organization_id, NULL::uuid, o.team_id, o.created_by, NULL::uuid, NULL::uuid
        FROM objectives o JOIN teams t ON t.id = o.team_id
        WHERE o.id=$1`,
	domain.ResourceKeyResult: `
        SELECT t.organization_id, NULL::uuid, o.team_id, NULL::uuid, kr.assigned_to, au.team_id
        FROM key_results kr
        JOIN objectives o ON o.id = kr.objective_id
        JOIN teams t ON t.id = o.team_id
        LEFT JOIN users au ON au.id = kr.assigned_to
        WHERE kr.id=$1`,
	domain.ResourceCheckIn: `
        SELECT t.organization_id, NULL::uuid, o.team_id, c.user_id, kr.assigned_to, au.team_id
        FROM check_ins c
        JOIN key_results kr ON kr.id = c.key_result_id
        JOIN objectives o ON o.id = kr.objective_id
        JOIN teams t ON t.id = o.team_id
        LEFT JOIN users au ON au.id = kr.assigned_to
        WHERE c.id=$1`,
	domain.ResourceComment: `
        SELECT t.organization_id, NULL::uuid, o.team_id, cm.user_id, kr.assigned_to, au.team_id
        FROM comments cm
        JOIN key_results kr ON kr.id = cm.key_result_id
        JOIN objectives o ON o.id = kr.objective_id
        JOIN teams t ON t.id = o.team_id
        LEFT JOIN users au ON au.id = kr.assigned_to
        WHERE cm.id=$1`,
	domain.ResourceNotification: `
        SELECT u.organization_id, NULL::uuid, NULL::uuid, n.user_id, NULL::uuid, NULL::uuid
        FROM notifications n JOIN users u ON u.id = n.user_id
        WHERE n.id=$1`,
}

func (r *ownershipResolver) Resolve(ctx context.Context, ref domain.ResourceRef) (*domain.Ownership, error) {
	query, ok := ownershipQueries[ref.Kind]
	if !ok {
		return nil, fmt.Errorf("resolve ownership: unknown resource kind %q", ref.Kind)
	}
	o := domain.Ownership{Ref: ref}
	err := r.db.QueryRow(ctx, query, ref.ID).Scan(
		&o.OrganizationID,
		&o.TeamOrganizationID,
		&o.TeamID,
		&o.OwnerID,
		&o.AssigneeID,
		&o.AssigneeTeamID,
	)
	if err != nil {
		return nil, translate(err)
	}
	return &o, nil
}
