package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/salim0986/okr-production-sub000/internal/auth"
	"github.com/salim0986/okr-production-sub000/internal/domain"
	"github.com/salim0986/okr-production-sub000/internal/events"
	"github.com/salim0986/okr-production-sub000/internal/policy"
	"github.com/salim0986/okr-production-sub000/internal/repository"
	apperrors "github.com/salim0986/okr-production-sub000/pkg/util"
)

// UserService manages organization members.
type UserService struct {
	store      repository.Store
	authz      *policy.Authorizer
	dispatcher events.Dispatcher
	logger     *zap.Logger
	now        func() time.Time
	bcryptCost int
}

// NewUserService constructs the service.
func NewUserService(bcryptCost int, deps Dependencies) *UserService {
	return &UserService{
		store:      deps.Store,
		authz:      deps.authorizer(),
		dispatcher: deps.Dispatcher,
		logger:     deps.logger(),
		now:        deps.clock(),
		bcryptCost: bcryptCost,
	}
}

// CreateUserInput describes a new member.
type CreateUserInput struct {
	Name     string
	Email    string
	Password string
	Role     string
	TeamID   *string
}

// UpdateUserInput carries optional field changes. ClearTeam unassigns the
// user and wins over TeamID.
type UpdateUserInput struct {
	Name      *string
	Email     *string
	Password  *string
	Role      *string
	TeamID    *string
	ClearTeam bool
}

// UserListFilter narrows user listings.
type UserListFilter struct {
	TeamID         *string
	Unassigned     bool
	Role           *domain.Role
	IncludeDeleted bool
	Limit          int
	Offset         int
}

// Create adds a member to the caller's organization. A team_lead created into
// a team without a lead becomes its lead.
func (s *UserService) Create(ctx context.Context, p domain.Principal, input CreateUserInput) (*domain.User, error) {
	if err := s.authz.Authorize(ctx, p, policy.ActionCreateUser, domain.Ref(domain.ResourceOrganization, p.OrganizationID)); err != nil {
		return nil, err
	}
	name, err := requireText("name", input.Name)
	if err != nil {
		return nil, err
	}
	email, err := requireText("email", input.Email)
	if err != nil {
		return nil, err
	}
	role, err := domain.ParseRole(input.Role)
	if err != nil {
		return nil, apperrors.NewValidationError(err.Error(), map[string]any{"field": "role"})
	}
	if role == domain.RoleTeamLead && input.TeamID == nil {
		return nil, errLeadWithoutTeam()
	}
	hash, err := auth.HashPassword(input.Password, s.bcryptCost)
	if err != nil {
		if errors.Is(err, auth.ErrEmptyPassword) {
			return nil, apperrors.NewValidationError("password is required", map[string]any{"field": "password"})
		}
		return nil, err
	}

	user := &domain.User{
		Name:           name,
		Email:          email,
		PasswordHash:   hash,
		Role:           role,
		OrganizationID: p.OrganizationID,
		TeamID:         input.TeamID,
	}
	err = s.store.WithinTx(ctx, func(tx repository.Store) error {
		var team *domain.Team
		if user.TeamID != nil {
			if team, err = teamInOrganization(ctx, tx, *user.TeamID, p.OrganizationID); err != nil {
				return err
			}
		}
		if err := tx.Users().Create(ctx, user); err != nil {
			return err
		}
		if role == domain.RoleTeamLead && team != nil {
			if team.LeadID != nil {
				return apperrors.NewConflict("team already has a lead", map[string]any{"team_id": team.ID})
			}
			return tx.Teams().SetLead(ctx, team.ID, &user.ID)
		}
		return nil
	})
	if err != nil {
		return nil, repository.MapError(err, domain.ResourceUser, "")
	}
	s.logger.Info("user created", zap.String("user_id", user.ID), zap.String("role", string(user.Role)))
	return user, nil
}

func errLeadWithoutTeam() error {
	return apperrors.NewValidationError("a team_lead must belong to a team", map[string]any{"field": "team_id"})
}

func teamInOrganization(ctx context.Context, store repository.Store, teamID, organizationID string) (*domain.Team, error) {
	team, err := store.Teams().GetByID(ctx, teamID)
	if err != nil {
		return nil, repository.MapError(err, domain.ResourceTeam, teamID)
	}
	if team.OrganizationID != organizationID {
		return nil, apperrors.NewNotFound(string(domain.ResourceTeam), map[string]any{"id": teamID})
	}
	return team, nil
}

// List returns members visible to the caller.
func (s *UserService) List(ctx context.Context, p domain.Principal, filter UserListFilter) ([]domain.User, error) {
	teamID, empty, err := scopedTeam(p, filter.TeamID)
	if err != nil {
		return nil, err
	}
	if empty {
		return []domain.User{}, nil
	}
	repoFilter := repository.UserFilter{
		OrganizationID: p.OrganizationID,
		TeamID:         teamID,
		Unassigned:     filter.Unassigned && teamID == nil,
		Role:           filter.Role,
		IncludeDeleted: filter.IncludeDeleted && p.Role == domain.RoleAdmin,
		Limit:          filter.Limit,
		Offset:         filter.Offset,
	}
	users, err := s.store.Users().List(ctx, repoFilter)
	if err != nil {
		return nil, repository.MapError(err, domain.ResourceUser, "")
	}
	return users, nil
}

// Get returns one member.
func (s *UserService) Get(ctx context.Context, p domain.Principal, id string) (*domain.User, error) {
	if err := s.authz.Authorize(ctx, p, policy.ActionRead, domain.Ref(domain.ResourceUser, id)); err != nil {
		return nil, err
	}
	user, err := s.store.Users().GetByID(ctx, id)
	if err != nil {
		return nil, repository.MapError(err, domain.ResourceUser, id)
	}
	return user, nil
}

// Update changes a member. Leaving the lead role or the led team clears the
// team's lead; becoming team_lead or moving as one takes over the team's lead
// and demotes the previous lead.
func (s *UserService) Update(ctx context.Context, p domain.Principal, id string, input UpdateUserInput) (*domain.User, error) {
	if err := s.authz.Authorize(ctx, p, policy.ActionUpdate, domain.Ref(domain.ResourceUser, id)); err != nil {
		return nil, err
	}
	var (
		user     *domain.User
		ledTeam  *domain.Team
		previous *string
	)
	err := s.store.WithinTx(ctx, func(tx repository.Store) error {
		var err error
		user, err = tx.Users().GetByID(ctx, id)
		if err != nil {
			return err
		}
		wasLead := user.Role == domain.RoleTeamLead
		previousTeam := user.TeamID

		if input.Name != nil {
			if user.Name, err = requireText("name", *input.Name); err != nil {
				return err
			}
		}
		if input.Email != nil {
			if user.Email, err = requireText("email", *input.Email); err != nil {
				return err
			}
		}
		if input.Password != nil {
			if user.PasswordHash, err = auth.HashPassword(*input.Password, s.bcryptCost); err != nil {
				return apperrors.NewValidationError(err.Error(), map[string]any{"field": "password"})
			}
		}
		if input.Role != nil {
			role, err := domain.ParseRole(*input.Role)
			if err != nil {
				return apperrors.NewValidationError(err.Error(), map[string]any{"field": "role"})
			}
			if user.ID == p.ID && role != user.Role {
				return apperrors.NewValidationError("you cannot change your own role", nil)
			}
			user.Role = role
		}
		switch {
		case input.ClearTeam:
			user.TeamID = nil
		case input.TeamID != nil:
			if _, err := teamInOrganization(ctx, tx, *input.TeamID, user.OrganizationID); err != nil {
				return err
			}
			user.TeamID = input.TeamID
		}

		teamChanged := !samePtr(previousTeam, user.TeamID)
		if wasLead && (user.Role != domain.RoleTeamLead || teamChanged) {
			if err := tx.Teams().ClearLeadership(ctx, user.ID); err != nil {
				return err
			}
		}
		if user.Role == domain.RoleTeamLead {
			if user.TeamID == nil {
				return errLeadWithoutTeam()
			}
			if !wasLead || teamChanged {
				if user.IsDeleted {
					return apperrors.NewValidationError("user is deactivated", map[string]any{"user_id": user.ID})
				}
				if ledTeam, err = teamInOrganization(ctx, tx, *user.TeamID, user.OrganizationID); err != nil {
					return err
				}
				if previous, err = takeLead(ctx, tx, ledTeam, user.ID); err != nil {
					return err
				}
			}
		}
		return tx.Users().Update(ctx, user)
	})
	if err != nil {
		return nil, repository.MapError(err, domain.ResourceUser, id)
	}
	if ledTeam != nil {
		s.logger.Info("team lead assigned",
			zap.String("team_id", ledTeam.ID),
			zap.String("lead_id", user.ID),
			zap.Stringp("previous_lead_id", previous))
		publishEvent(ctx, s.dispatcher, s.now, events.Event{
			Type:           events.EventTeamLeadAssigned,
			OrganizationID: ledTeam.OrganizationID,
			SubjectID:      ledTeam.ID,
			ActorID:        p.ID,
			Payload: events.TeamLeadAssignedPayload{
				TeamID:         ledTeam.ID,
				TeamName:       ledTeam.Name,
				LeadID:         user.ID,
				PreviousLeadID: previous,
			},
		})
	}
	return user, nil
}

func samePtr(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

// Deactivate soft-deletes a member. The record stays for history and is
// excluded from listings and aggregation.
func (s *UserService) Deactivate(ctx context.Context, p domain.Principal, id string) error {
	if err := s.authz.Authorize(ctx, p, policy.ActionDelete, domain.Ref(domain.ResourceUser, id)); err != nil {
		return err
	}
	if id == p.ID {
		return apperrors.NewValidationError("you cannot deactivate yourself", nil)
	}
	err := s.store.WithinTx(ctx, func(tx repository.Store) error {
		if err := tx.Teams().ClearLeadership(ctx, id); err != nil {
			return err
		}
		return tx.Users().SoftDelete(ctx, id)
	})
	if err != nil {
		return repository.MapError(err, domain.ResourceUser, id)
	}
	s.logger.Info("user deactivated", zap.String("user_id", id), zap.String("actor_id", p.ID))
	return nil
}

// Purge permanently removes a member and everything they authored.
func (s *UserService) Purge(ctx context.Context, p domain.Principal, id string) error {
	if err := s.authz.Authorize(ctx, p, policy.ActionPurge, domain.Ref(domain.ResourceUser, id)); err != nil {
		return err
	}
	if id == p.ID {
		return apperrors.NewValidationError("you cannot purge yourself", nil)
	}
	if err := s.store.Users().Delete(ctx, id); err != nil {
		return repository.MapError(err, domain.ResourceUser, id)
	}
	s.logger.Warn("user purged", zap.String("user_id", id), zap.String("actor_id", p.ID))
	return nil
}

// CheckIns lists a member's check-ins, newest first.
func (s *UserService) CheckIns(ctx context.Context, p domain.Principal, id string, limit, offset int) ([]domain.CheckIn, error) {
	if err := s.authz.Authorize(ctx, p, policy.ActionRead, domain.Ref(domain.ResourceUser, id)); err != nil {
		return nil, err
	}
	orgID := p.OrganizationID
	checkIns, err := s.store.CheckIns().List(ctx, repository.CheckInFilter{
		OrganizationID: &orgID,
		UserID:         &id,
		Limit:          limit,
		Offset:         offset,
	})
	if err != nil {
		return nil, repository.MapError(err, domain.ResourceCheckIn, "")
	}
	return checkIns, nil
}

// NormalizeRoleFilter parses an optional role query value.
func NormalizeRoleFilter(value string) (*domain.Role, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	role, err := domain.ParseRole(value)
	if err != nil {
		return nil, apperrors.NewValidationError(err.Error(), map[string]any{"field": "role"})
	}
	return &role, nil
}
