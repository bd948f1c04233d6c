package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/salim0986/okr-production-sub000/internal/domain"
	"github.com/salim0986/okr-production-sub000/internal/events"
	"github.com/salim0986/okr-production-sub000/internal/policy"
	"github.com/salim0986/okr-production-sub000/internal/repository"
	apperrors "github.com/salim0986/okr-production-sub000/pkg/util"
)

// TeamService manages teams, their membership and leadership.
type TeamService struct {
	store      repository.Store
	authz      *policy.Authorizer
	dispatcher events.Dispatcher
	logger     *zap.Logger
	now        func() time.Time
}

// NewTeamService constructs the service.
func NewTeamService(deps Dependencies) *TeamService {
	return &TeamService{
		store:      deps.Store,
		authz:      deps.authorizer(),
		dispatcher: deps.Dispatcher,
		logger:     deps.logger(),
		now:        deps.clock(),
	}
}

// Create adds a team to the caller's organization.
func (s *TeamService) Create(ctx context.Context, p domain.Principal, name string) (*domain.Team, error) {
	name, err := requireText("name", name)
	if err != nil {
		return nil, err
	}
	if err := s.authz.Authorize(ctx, p, policy.ActionCreateTeam, domain.Ref(domain.ResourceOrganization, p.OrganizationID)); err != nil {
		return nil, err
	}
	team := &domain.Team{OrganizationID: p.OrganizationID, Name: name}
	if err := s.store.Teams().Create(ctx, team); err != nil {
		return nil, repository.MapError(err, domain.ResourceTeam, "")
	}
	s.logger.Info("team created", zap.String("team_id", team.ID), zap.String("organization_id", team.OrganizationID))
	return team, nil
}

// List returns the teams visible to the caller: every team for admins, the
// caller's own team otherwise.
func (s *TeamService) List(ctx context.Context, p domain.Principal) ([]domain.Team, error) {
	teamID, empty, err := scopedTeam(p, nil)
	if err != nil {
		return nil, err
	}
	if empty {
		return []domain.Team{}, nil
	}
	if teamID != nil {
		team, err := s.Get(ctx, p, *teamID)
		if err != nil {
			return nil, err
		}
		return []domain.Team{*team}, nil
	}
	teams, err := s.store.Teams().ListByOrganization(ctx, p.OrganizationID)
	if err != nil {
		return nil, repository.MapError(err, domain.ResourceTeam, "")
	}
	return teams, nil
}

// Get returns one team.
func (s *TeamService) Get(ctx context.Context, p domain.Principal, id string) (*domain.Team, error) {
	if err := s.authz.Authorize(ctx, p, policy.ActionRead, domain.Ref(domain.ResourceTeam, id)); err != nil {
		return nil, err
	}
	team, err := s.store.Teams().GetByID(ctx, id)
	if err != nil {
		return nil, repository.MapError(err, domain.ResourceTeam, id)
	}
	return team, nil
}

// Rename changes a team's name.
func (s *TeamService) Rename(ctx context.Context, p domain.Principal, id, name string) (*domain.Team, error) {
	name, err := requireText("name", name)
	if err != nil {
		return nil, err
	}
	if err := s.authz.Authorize(ctx, p, policy.ActionUpdate, domain.Ref(domain.ResourceTeam, id)); err != nil {
		return nil, err
	}
	team, err := s.store.Teams().GetByID(ctx, id)
	if err != nil {
		return nil, repository.MapError(err, domain.ResourceTeam, id)
	}
	team.Name = name
	if err := s.store.Teams().Update(ctx, team); err != nil {
		return nil, repository.MapError(err, domain.ResourceTeam, id)
	}
	return team, nil
}

// Delete removes a team with its objectives. Members become unassigned and
// the lead is demoted to employee.
func (s *TeamService) Delete(ctx context.Context, p domain.Principal, id string) error {
	if err := s.authz.Authorize(ctx, p, policy.ActionDelete, domain.Ref(domain.ResourceTeam, id)); err != nil {
		return err
	}
	err := s.store.WithinTx(ctx, func(tx repository.Store) error {
		team, err := tx.Teams().GetByID(ctx, id)
		if err != nil {
			return err
		}
		if team.LeadID != nil {
			if err := demote(ctx, tx, *team.LeadID); err != nil {
				return err
			}
		}
		return tx.Teams().Delete(ctx, id)
	})
	if err != nil {
		return repository.MapError(err, domain.ResourceTeam, id)
	}
	s.logger.Info("team deleted", zap.String("team_id", id), zap.String("actor_id", p.ID))
	return nil
}

func demote(ctx context.Context, tx repository.Store, userID string) error {
	user, err := tx.Users().GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if user.Role != domain.RoleTeamLead {
		return nil
	}
	user.Role = domain.RoleEmployee
	return tx.Users().Update(ctx, user)
}

// takeLead makes userID the only lead of team inside tx. The previous lead is
// demoted to employee and any other team userID led loses its lead. Callers
// persist userID's own role and team.
func takeLead(ctx context.Context, tx repository.Store, team *domain.Team, userID string) (previous *string, err error) {
	if team.LeadID != nil && *team.LeadID != userID {
		previous = team.LeadID
		if err := demote(ctx, tx, *previous); err != nil {
			return nil, err
		}
	}
	if err := tx.Teams().ClearLeadership(ctx, userID); err != nil {
		return nil, err
	}
	if err := tx.Teams().SetLead(ctx, team.ID, &userID); err != nil {
		return nil, err
	}
	team.LeadID = &userID
	return previous, nil
}

// AssignLead makes userID the lead of teamID. The user joins the team and
// becomes team_lead; the previous lead stays a member as employee; any other
// team the user led loses its lead.
func (s *TeamService) AssignLead(ctx context.Context, p domain.Principal, teamID, userID string) (*domain.Team, error) {
	if err := s.authz.Authorize(ctx, p, policy.ActionAssignLead, domain.Ref(domain.ResourceTeam, teamID)); err != nil {
		return nil, err
	}
	if userID == "" {
		return nil, apperrors.NewValidationError("user_id is required", map[string]any{"field": "user_id"})
	}

	var (
		team     *domain.Team
		previous *string
		changed  bool
	)
	err := s.store.WithinTx(ctx, func(tx repository.Store) error {
		var err error
		team, err = tx.Teams().GetByID(ctx, teamID)
		if err != nil {
			return err
		}
		user, err := tx.Users().GetByID(ctx, userID)
		if err != nil {
			return repository.MapError(err, domain.ResourceUser, userID)
		}
		if user.OrganizationID != team.OrganizationID {
			return apperrors.NewNotFound(string(domain.ResourceUser), map[string]any{"id": userID})
		}
		if user.IsDeleted {
			return apperrors.NewValidationError("user is deactivated", map[string]any{"user_id": userID})
		}
		if user.Role == domain.RoleAdmin {
			return apperrors.NewValidationError("admins cannot lead a team", map[string]any{"user_id": userID})
		}
		if team.LeadID != nil && *team.LeadID == userID {
			return nil
		}

		if previous, err = takeLead(ctx, tx, team, userID); err != nil {
			return err
		}
		user.Role = domain.RoleTeamLead
		user.TeamID = &team.ID
		if err := tx.Users().Update(ctx, user); err != nil {
			return err
		}
		changed = true
		return nil
	})
	if err != nil {
		return nil, repository.MapError(err, domain.ResourceTeam, teamID)
	}
	if !changed {
		return team, nil
	}

	s.logger.Info("team lead assigned",
		zap.String("team_id", team.ID),
		zap.String("lead_id", userID),
		zap.Stringp("previous_lead_id", previous))
	publishEvent(ctx, s.dispatcher, s.now, events.Event{
		Type:           events.EventTeamLeadAssigned,
		OrganizationID: team.OrganizationID,
		SubjectID:      team.ID,
		ActorID:        p.ID,
		Payload: events.TeamLeadAssignedPayload{
			TeamID:         team.ID,
			TeamName:       team.Name,
			LeadID:         userID,
			PreviousLeadID: previous,
		},
	})
	return team, nil
}

// Members lists the non-deleted users of a team.
func (s *TeamService) Members(ctx context.Context, p domain.Principal, teamID string) ([]domain.User, error) {
	if err := s.authz.Authorize(ctx, p, policy.ActionRead, domain.Ref(domain.ResourceTeam, teamID)); err != nil {
		return nil, err
	}
	users, err := s.store.Users().List(ctx, repository.UserFilter{
		OrganizationID: p.OrganizationID,
		TeamID:         &teamID,
		Limit:          summaryLimit,
	})
	if err != nil {
		return nil, repository.MapError(err, domain.ResourceUser, "")
	}
	return users, nil
}
