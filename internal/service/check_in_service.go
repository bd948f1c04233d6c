package service

import (
	"context"

	"github.com/salim0986/okr-production-sub000/internal/domain"
	"github.com/salim0986/okr-production-sub000/internal/policy"
	"github.com/salim0986/okr-production-sub000/internal/repository"
	"github.com/salim0986/okr-production-sub000/internal/workflow"
	apperrors "github.com/salim0986/okr-production-sub000/pkg/util"
)

// CheckInService exposes the check-in workflow and its review queue.
type CheckInService struct {
	store  repository.Store
	authz  *policy.Authorizer
	engine *workflow.Engine
}

// NewCheckInService constructs the service around a workflow engine built
// from the same dependencies.
func NewCheckInService(deps Dependencies) *CheckInService {
	authz := deps.authorizer()
	return &CheckInService{
		store: deps.Store,
		authz: authz,
		engine: workflow.New(workflow.Dependencies{
			Store:      deps.Store,
			Authorizer: authz,
			Dispatcher: deps.Dispatcher,
			Logger:     deps.logger(),
			Clock:      deps.clock(),
		}),
	}
}

// Submit records a pending check-in for the caller's key result.
func (s *CheckInService) Submit(ctx context.Context, p domain.Principal, keyResultID string, input workflow.SubmitInput) (*domain.CheckIn, error) {
	return s.engine.Submit(ctx, p, keyResultID, input)
}

// Approve accepts a pending check-in.
func (s *CheckInService) Approve(ctx context.Context, p domain.Principal, id string) (*workflow.Review, error) {
	return s.engine.Approve(ctx, p, id)
}

// Reject declines a pending check-in.
func (s *CheckInService) Reject(ctx context.Context, p domain.Principal, id string) (*workflow.Review, error) {
	return s.engine.Reject(ctx, p, id)
}

// Get returns one check-in.
func (s *CheckInService) Get(ctx context.Context, p domain.Principal, id string) (*domain.CheckIn, error) {
	if err := s.authz.Authorize(ctx, p, policy.ActionRead, domain.Ref(domain.ResourceCheckIn, id)); err != nil {
		return nil, err
	}
	checkIn, err := s.store.CheckIns().GetByID(ctx, id)
	if err != nil {
		return nil, repository.MapError(err, domain.ResourceCheckIn, id)
	}
	return checkIn, nil
}

// ListForKeyResult returns a key result's check-ins, newest first.
func (s *CheckInService) ListForKeyResult(ctx context.Context, p domain.Principal, keyResultID string, limit, offset int) ([]domain.CheckIn, error) {
	if err := s.authz.Authorize(ctx, p, policy.ActionRead, domain.Ref(domain.ResourceKeyResult, keyResultID)); err != nil {
		return nil, err
	}
	checkIns, err := s.store.CheckIns().List(ctx, repository.CheckInFilter{
		KeyResultID: &keyResultID,
		Limit:       limit,
		Offset:      offset,
	})
	if err != nil {
		return nil, repository.MapError(err, domain.ResourceCheckIn, "")
	}
	return checkIns, nil
}

// Pending returns the caller's review queue: every pending check-in of the
// organization for admins, those of the lead's own team for team leads.
func (s *CheckInService) Pending(ctx context.Context, p domain.Principal, limit, offset int) ([]domain.CheckIn, error) {
	filter := repository.CheckInFilter{Limit: limit, Offset: offset}
	status := domain.CheckInPending
	filter.Status = &status
	orgID := p.OrganizationID
	filter.OrganizationID = &orgID

	switch p.Role {
	case domain.RoleAdmin:
	case domain.RoleTeamLead:
		if p.TeamID == nil {
			return []domain.CheckIn{}, nil
		}
		filter.TeamID = p.TeamID
	default:
		return nil, apperrors.NewForbidden("only reviewers have a review queue")
	}
	checkIns, err := s.store.CheckIns().List(ctx, filter)
	if err != nil {
		return nil, repository.MapError(err, domain.ResourceCheckIn, "")
	}
	return checkIns, nil
}
