package service

import (
	"context"
	"errors"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/salim0986/okr-production-sub000/internal/aggregate"
	"github.com/salim0986/okr-production-sub000/internal/domain"
	"github.com/salim0986/okr-production-sub000/internal/events"
	"github.com/salim0986/okr-production-sub000/internal/policy"
	"github.com/salim0986/okr-production-sub000/internal/repository"
	"github.com/salim0986/okr-production-sub000/internal/workflow"
	apperrors "github.com/salim0986/okr-production-sub000/pkg/util"
)

// ObjectiveService manages objectives and their key results.
type ObjectiveService struct {
	store      repository.Store
	authz      *policy.Authorizer
	dispatcher events.Dispatcher
	logger     *zap.Logger
	now        func() time.Time
}

// NewObjectiveService constructs the service.
func NewObjectiveService(deps Dependencies) *ObjectiveService {
	return &ObjectiveService{
		store:      deps.Store,
		authz:      deps.authorizer(),
		dispatcher: deps.Dispatcher,
		logger:     deps.logger(),
		now:        deps.clock(),
	}
}

// CreateObjectiveInput describes a new objective.
type CreateObjectiveInput struct {
	TeamID      string
	Title       string
	Description string
	StartDate   time.Time
	EndDate     time.Time
}

// UpdateObjectiveInput carries optional objective changes.
type UpdateObjectiveInput struct {
	Title       *string
	Description *string
	StartDate   *time.Time
	EndDate     *time.Time
}

// ObjectiveListFilter narrows objective listings.
type ObjectiveListFilter struct {
	TeamID   *string
	Statuses []domain.Status
	Limit    int
	Offset   int
}

// ObjectiveDetail is an objective with its key results and live percentages.
type ObjectiveDetail struct {
	Objective   domain.Objective
	KeyResults  []KeyResultDetail
	Percent     int
	WorstStatus domain.Status
}

// KeyResultDetail pairs a key result with its percentage.
type KeyResultDetail struct {
	KeyResult domain.KeyResult
	Percent   int
}

// CreateKeyResultInput describes a new key result.
type CreateKeyResultInput struct {
	Title       string
	TargetValue float64
	Units       string
	AssignedTo  *string
	StartDate   *time.Time
	EndDate     *time.Time
	Status      *domain.Status
}

// UpdateKeyResultInput carries optional key result changes. Unassign clears
// the assignee and wins over AssignedTo.
type UpdateKeyResultInput struct {
	Title       *string
	TargetValue *float64
	Units       *string
	AssignedTo  *string
	Unassign    bool
	StartDate   *time.Time
	EndDate     *time.Time
	Status      *domain.Status
}

func validatePeriod(start, end time.Time) error {
	if start.IsZero() || end.IsZero() {
		return apperrors.NewValidationError("start_date and end_date are required", nil)
	}
	if end.Before(start) {
		return apperrors.NewValidationError("end_date must not be before start_date", map[string]any{"field": "end_date"})
	}
	return nil
}

func validateTarget(target float64) error {
	if math.IsNaN(target) || math.IsInf(target, 0) || target <= 0 {
		return apperrors.NewValidationError("target_value must be a positive number", map[string]any{"field": "target_value"})
	}
	return nil
}

// Create adds an objective to a team.
func (s *ObjectiveService) Create(ctx context.Context, p domain.Principal, input CreateObjectiveInput) (*domain.Objective, error) {
	if input.TeamID == "" {
		return nil, apperrors.NewValidationError("team_id is required", map[string]any{"field": "team_id"})
	}
	if err := s.authz.Authorize(ctx, p, policy.ActionCreateObjective, domain.Ref(domain.ResourceTeam, input.TeamID)); err != nil {
		return nil, err
	}
	title, err := requireText("title", input.Title)
	if err != nil {
		return nil, err
	}
	if err := validatePeriod(input.StartDate, input.EndDate); err != nil {
		return nil, err
	}
	creator := p.ID
	objective := &domain.Objective{
		TeamID:      input.TeamID,
		Title:       title,
		Description: input.Description,
		StartDate:   input.StartDate,
		EndDate:     input.EndDate,
		Status:      domain.StatusOnTrack,
		CreatedBy:   &creator,
	}
	if err := s.store.Objectives().Create(ctx, objective); err != nil {
		return nil, repository.MapError(err, domain.ResourceObjective, "")
	}
	s.logger.Info("objective created", zap.String("objective_id", objective.ID), zap.String("team_id", objective.TeamID))
	return objective, nil
}

// List returns the objectives visible to the caller.
func (s *ObjectiveService) List(ctx context.Context, p domain.Principal, filter ObjectiveListFilter) ([]domain.Objective, error) {
	teamID, empty, err := scopedTeam(p, filter.TeamID)
	if err != nil {
		return nil, err
	}
	if empty {
		return []domain.Objective{}, nil
	}
	objectives, err := s.store.Objectives().List(ctx, repository.ObjectiveFilter{
		OrganizationID: p.OrganizationID,
		TeamID:         teamID,
		Statuses:       filter.Statuses,
		Limit:          filter.Limit,
		Offset:         filter.Offset,
	})
	if err != nil {
		return nil, repository.MapError(err, domain.ResourceObjective, "")
	}
	return objectives, nil
}

// Get returns an objective with its key results.
func (s *ObjectiveService) Get(ctx context.Context, p domain.Principal, id string) (*ObjectiveDetail, error) {
	if err := s.authz.Authorize(ctx, p, policy.ActionRead, domain.Ref(domain.ResourceObjective, id)); err != nil {
		return nil, err
	}
	objective, err := s.store.Objectives().GetByID(ctx, id)
	if err != nil {
		return nil, repository.MapError(err, domain.ResourceObjective, id)
	}
	krs, err := s.store.KeyResults().ListByObjective(ctx, id)
	if err != nil {
		return nil, repository.MapError(err, domain.ResourceKeyResult, "")
	}
	detail := &ObjectiveDetail{
		Objective:   *objective,
		KeyResults:  make([]KeyResultDetail, 0, len(krs)),
		Percent:     aggregate.ObjectivePercent(krs),
		WorstStatus: aggregate.WorstStatus(krs),
	}
	for _, kr := range krs {
		detail.KeyResults = append(detail.KeyResults, KeyResultDetail{KeyResult: kr, Percent: aggregate.KeyResultPercent(kr)})
	}
	return detail, nil
}

// Update changes an objective's descriptive fields. Progress and status are
// derived from key results and cannot be set directly.
func (s *ObjectiveService) Update(ctx context.Context, p domain.Principal, id string, input UpdateObjectiveInput) (*domain.Objective, error) {
	if err := s.authz.Authorize(ctx, p, policy.ActionUpdate, domain.Ref(domain.ResourceObjective, id)); err != nil {
		return nil, err
	}
	var objective *domain.Objective
	err := s.store.WithinTx(ctx, func(tx repository.Store) error {
		var err error
		objective, err = tx.Objectives().GetByID(ctx, id)
		if err != nil {
			return err
		}
		if input.Title != nil {
			if objective.Title, err = requireText("title", *input.Title); err != nil {
				return err
			}
		}
		if input.Description != nil {
			objective.Description = *input.Description
		}
		if input.StartDate != nil {
			objective.StartDate = *input.StartDate
		}
		if input.EndDate != nil {
			objective.EndDate = *input.EndDate
		}
		if err := validatePeriod(objective.StartDate, objective.EndDate); err != nil {
			return err
		}
		return tx.Objectives().Update(ctx, objective)
	})
	if err != nil {
		return nil, repository.MapError(err, domain.ResourceObjective, id)
	}
	return objective, nil
}

// Delete removes an objective with its key results and their history.
func (s *ObjectiveService) Delete(ctx context.Context, p domain.Principal, id string) error {
	if err := s.authz.Authorize(ctx, p, policy.ActionDelete, domain.Ref(domain.ResourceObjective, id)); err != nil {
		return err
	}
	if err := s.store.Objectives().Delete(ctx, id); err != nil {
		return repository.MapError(err, domain.ResourceObjective, id)
	}
	s.logger.Info("objective deleted", zap.String("objective_id", id), zap.String("actor_id", p.ID))
	return nil
}

// CreateKeyResult adds a key result to an objective and refreshes the
// objective's derived progress.
func (s *ObjectiveService) CreateKeyResult(ctx context.Context, p domain.Principal, objectiveID string, input CreateKeyResultInput) (*domain.KeyResult, error) {
	owner, err := s.authz.Check(ctx, p, policy.ActionCreateKeyResult, domain.Ref(domain.ResourceObjective, objectiveID))
	if err != nil {
		return nil, err
	}
	title, err := requireText("title", input.Title)
	if err != nil {
		return nil, err
	}
	if err := validateTarget(input.TargetValue); err != nil {
		return nil, err
	}
	status := domain.StatusOnTrack
	if input.Status != nil {
		if err := validateStatus(*input.Status); err != nil {
			return nil, err
		}
		status = *input.Status
	}
	kr := &domain.KeyResult{
		ObjectiveID: objectiveID,
		Title:       title,
		TargetValue: input.TargetValue,
		Units:       input.Units,
		AssignedTo:  input.AssignedTo,
		StartDate:   input.StartDate,
		EndDate:     input.EndDate,
		Status:      status,
	}
	if err := validateOptionalPeriod(kr.StartDate, kr.EndDate); err != nil {
		return nil, err
	}
	err = s.store.WithinTx(ctx, func(tx repository.Store) error {
		if kr.AssignedTo != nil {
			if err := s.checkAssignee(ctx, tx, owner, *kr.AssignedTo); err != nil {
				return err
			}
		}
		if err := tx.KeyResults().Create(ctx, kr); err != nil {
			return err
		}
		_, err := workflow.RecomputeObjective(ctx, tx, objectiveID)
		return err
	})
	if err != nil {
		return nil, repository.MapError(err, domain.ResourceKeyResult, "")
	}
	s.logger.Info("key result created", zap.String("key_result_id", kr.ID), zap.String("objective_id", objectiveID))
	if kr.AssignedTo != nil {
		s.publishAssigned(ctx, p, owner.OrganizationID, kr)
	}
	return kr, nil
}

func validateStatus(status domain.Status) error {
	if _, ok := domain.ParseStatus(string(status)); !ok {
		return apperrors.NewValidationError("unknown status", map[string]any{"field": "status", "value": string(status)})
	}
	return nil
}

func validateOptionalPeriod(start, end *time.Time) error {
	if start != nil && end != nil && end.Before(*start) {
		return apperrors.NewValidationError("end_date must not be before start_date", map[string]any{"field": "end_date"})
	}
	return nil
}

// checkAssignee requires userID to be an active member of the objective's
// team, or an admin of its organization.
func (s *ObjectiveService) checkAssignee(ctx context.Context, tx repository.Store, owner *domain.Ownership, userID string) error {
	user, err := tx.Users().GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.NewValidationError("assignee does not exist", map[string]any{"field": "assigned_to"})
		}
		return err
	}
	if user.OrganizationID != owner.OrganizationID || user.IsDeleted {
		return apperrors.NewValidationError("assignee does not exist", map[string]any{"field": "assigned_to"})
	}
	if user.Role == domain.RoleAdmin {
		return nil
	}
	if owner.TeamID == nil || user.TeamID == nil || *user.TeamID != *owner.TeamID {
		return apperrors.NewValidationError("assignee must belong to the objective's team", map[string]any{"field": "assigned_to"})
	}
	return nil
}

// GetKeyResult returns one key result with its percentage.
func (s *ObjectiveService) GetKeyResult(ctx context.Context, p domain.Principal, id string) (*KeyResultDetail, error) {
	if err := s.authz.Authorize(ctx, p, policy.ActionRead, domain.Ref(domain.ResourceKeyResult, id)); err != nil {
		return nil, err
	}
	kr, err := s.store.KeyResults().GetByID(ctx, id)
	if err != nil {
		return nil, repository.MapError(err, domain.ResourceKeyResult, id)
	}
	return &KeyResultDetail{KeyResult: *kr, Percent: aggregate.KeyResultPercent(*kr)}, nil
}

// UpdateKeyResult changes a key result. The current value only moves through
// check-in approval.
func (s *ObjectiveService) UpdateKeyResult(ctx context.Context, p domain.Principal, id string, input UpdateKeyResultInput) (*domain.KeyResult, error) {
	owner, err := s.authz.Check(ctx, p, policy.ActionUpdate, domain.Ref(domain.ResourceKeyResult, id))
	if err != nil {
		return nil, err
	}
	var (
		kr       *domain.KeyResult
		assigned bool
	)
	err = s.store.WithinTx(ctx, func(tx repository.Store) error {
		var err error
		kr, err = tx.KeyResults().GetByID(ctx, id)
		if err != nil {
			return err
		}
		previous := kr.AssignedTo
		if input.Title != nil {
			if kr.Title, err = requireText("title", *input.Title); err != nil {
				return err
			}
		}
		if input.TargetValue != nil {
			if err := validateTarget(*input.TargetValue); err != nil {
				return err
			}
			kr.TargetValue = *input.TargetValue
		}
		if input.Units != nil {
			kr.Units = *input.Units
		}
		if input.StartDate != nil {
			kr.StartDate = input.StartDate
		}
		if input.EndDate != nil {
			kr.EndDate = input.EndDate
		}
		if err := validateOptionalPeriod(kr.StartDate, kr.EndDate); err != nil {
			return err
		}
		if input.Status != nil {
			if err := validateStatus(*input.Status); err != nil {
				return err
			}
			kr.Status = *input.Status
		}
		switch {
		case input.Unassign:
			kr.AssignedTo = nil
		case input.AssignedTo != nil:
			if err := s.checkAssignee(ctx, tx, owner, *input.AssignedTo); err != nil {
				return err
			}
			kr.AssignedTo = input.AssignedTo
		}
		assigned = kr.AssignedTo != nil && !samePtr(previous, kr.AssignedTo)
		if err := tx.KeyResults().Update(ctx, kr); err != nil {
			return err
		}
		_, err = workflow.RecomputeObjective(ctx, tx, kr.ObjectiveID)
		return err
	})
	if err != nil {
		return nil, repository.MapError(err, domain.ResourceKeyResult, id)
	}
	if assigned {
		s.publishAssigned(ctx, p, owner.OrganizationID, kr)
	}
	return kr, nil
}

// DeleteKeyResult removes a key result and refreshes its objective.
func (s *ObjectiveService) DeleteKeyResult(ctx context.Context, p domain.Principal, id string) error {
	if err := s.authz.Authorize(ctx, p, policy.ActionDelete, domain.Ref(domain.ResourceKeyResult, id)); err != nil {
		return err
	}
	err := s.store.WithinTx(ctx, func(tx repository.Store) error {
		kr, err := tx.KeyResults().GetByID(ctx, id)
		if err != nil {
			return err
		}
		if err := tx.KeyResults().Delete(ctx, id); err != nil {
			return err
		}
		_, err = workflow.RecomputeObjective(ctx, tx, kr.ObjectiveID)
		return err
	})
	if err != nil {
		return repository.MapError(err, domain.ResourceKeyResult, id)
	}
	s.logger.Info("key result deleted", zap.String("key_result_id", id), zap.String("actor_id", p.ID))
	return nil
}

func (s *ObjectiveService) publishAssigned(ctx context.Context, p domain.Principal, organizationID string, kr *domain.KeyResult) {
	publishEvent(ctx, s.dispatcher, s.now, events.Event{
		Type:           events.EventKeyResultAssigned,
		OrganizationID: organizationID,
		SubjectID:      kr.ID,
		ActorID:        p.ID,
		Payload: events.KeyResultAssignedPayload{
			KeyResultID: kr.ID,
			Title:       kr.Title,
			AssigneeID:  *kr.AssignedTo,
		},
	})
}
