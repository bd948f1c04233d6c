package memory

import (
	"context"
	"fmt"

	"github.com/salim0986/okr-production-sub000/internal/domain"
	"github.com/salim0986/okr-production-sub000/internal/repository"
)

type ownershipResolver struct{ s *Store }

func (r ownershipResolver) Resolve(ctx context.Context, ref domain.ResourceRef) (*domain.Ownership, error) {
	var out *domain.Ownership
	err := r.s.read(ctx, func(t *tables) error {
		o, err := t.resolve(ref)
		out = o
		return err
	})
	return out, err
}

func (t *tables) resolve(ref domain.ResourceRef) (*domain.Ownership, error) {
	o := &domain.Ownership{Ref: ref}
	switch ref.Kind {
	case domain.ResourceOrganization:
		org, ok := t.organizations[ref.ID]
		if !ok {
			return nil, repository.ErrNotFound
		}
		o.OrganizationID = org.ID
		o.OwnerID = org.CreatedBy
	case domain.ResourceTeam:
		team, ok := t.teams[ref.ID]
		if !ok {
			return nil, repository.ErrNotFound
		}
		o.OrganizationID = team.OrganizationID
		o.TeamID = strPtr(team.ID)
	case domain.ResourceUser:
		u, ok := t.users[ref.ID]
		if !ok {
			return nil, repository.ErrNotFound
		}
		o.OrganizationID = u.OrganizationID
		o.TeamID = u.TeamID
		o.OwnerID = strPtr(u.ID)
		if u.TeamID != nil {
			if team, ok := t.teams[*u.TeamID]; ok {
				o.TeamOrganizationID = strPtr(team.OrganizationID)
			}
		}
	case domain.ResourceObjective:
		obj, ok := t.objectives[ref.ID]
		if !ok {
			return nil, repository.ErrNotFound
		}
		if err := t.fillTeam(o, obj.TeamID); err != nil {
			return nil, err
		}
		o.OwnerID = obj.CreatedBy
	case domain.ResourceKeyResult:
		kr, ok := t.keyResults[ref.ID]
		if !ok {
			return nil, repository.ErrNotFound
		}
		if err := t.fillKeyResult(o, kr.ObjectiveID, kr.AssignedTo); err != nil {
			return nil, err
		}
	case domain.ResourceCheckIn:
		c, ok := t.checkIns[ref.ID]
		if !ok {
			return nil, repository.ErrNotFound
		}
		kr, ok := t.keyResults[c.KeyResultID]
		if !ok {
			return nil, repository.ErrNotFound
		}
		if err := t.fillKeyResult(o, kr.ObjectiveID, kr.AssignedTo); err != nil {
			return nil, err
		}
		o.OwnerID = strPtr(c.UserID)
	case domain.ResourceComment:
		c, ok := t.comments[ref.ID]
		if !ok {
			return nil, repository.ErrNotFound
		}
		kr, ok := t.keyResults[c.KeyResultID]
		if !ok {
			return nil, repository.ErrNotFound
		}
		if err := t.fillKeyResult(o, kr.ObjectiveID, kr.AssignedTo); err != nil {
			return nil, err
		}
		o.OwnerID = strPtr(c.UserID)
	case domain.ResourceNotification:
		n, ok := t.notifications[ref.ID]
		if !ok {
			return nil, repository.ErrNotFound
		}
		u, ok := t.users[n.UserID]
		if !ok {
			return nil, repository.ErrNotFound
		}
		o.OrganizationID = u.OrganizationID
		o.OwnerID = strPtr(n.UserID)
	default:
		return nil, fmt.Errorf("resolve ownership: unknown resource kind %q", ref.Kind)
	}
	return o, nil
}

func (t *tables) fillTeam(o *domain.Ownership, teamID string) error {
	team, ok := t.teams[teamID]
	if !ok {
		return repository.ErrNotFound
	}
	o.OrganizationID = team.OrganizationID
	o.TeamID = strPtr(team.ID)
	return nil
}

func (t *tables) fillKeyResult(o *domain.Ownership, objectiveID string, assignee *string) error {
	obj, ok := t.objectives[objectiveID]
	if !ok {
		return repository.ErrNotFound
	}
	if err := t.fillTeam(o, obj.TeamID); err != nil {
		return err
	}
	o.AssigneeID = assignee
	if assignee != nil {
		if u, ok := t.users[*assignee]; ok {
			o.AssigneeTeamID = u.TeamID
		}
	}
	return nil
}
