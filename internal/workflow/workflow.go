// Package workflow drives check-ins through pending -> approved | rejected and
// propagates approved values to key results and their objective.
package workflow

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/salim0986/okr-production-sub000/internal/aggregate"
	"github.com/salim0986/okr-production-sub000/internal/domain"
	"github.com/salim0986/okr-production-sub000/internal/events"
	"github.com/salim0986/okr-production-sub000/internal/policy"
	"github.com/salim0986/okr-production-sub000/internal/repository"
	apperrors "github.com/salim0986/okr-production-sub000/pkg/util"
)

var transitions = map[domain.CheckInStatus][]domain.CheckInStatus{
	domain.CheckInPending: {domain.CheckInApproved, domain.CheckInRejected},
}

// CanTransition reports whether a check-in may move from one status to another.
func CanTransition(from, to domain.CheckInStatus) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Engine applies check-in transitions.
type Engine struct {
	store      repository.Store
	authz      *policy.Authorizer
	dispatcher events.Dispatcher
	logger     *zap.Logger
	now        func() time.Time
}

// Dependencies bundles collaborators for the engine.
type Dependencies struct {
	Store      repository.Store
	Authorizer *policy.Authorizer
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
	Clock      func() time.Time
}

// New constructs an Engine.
func New(deps Dependencies) *Engine {
	e := &Engine{
		store:      deps.Store,
		authz:      deps.Authorizer,
		dispatcher: deps.Dispatcher,
		logger:     deps.Logger,
		now:        deps.Clock,
	}
	if e.logger == nil {
		e.logger = zap.NewNop()
	}
	if e.now == nil {
		e.now = func() time.Time { return time.Now().UTC() }
	}
	return e
}

// SubmitInput describes a check-in submission.
type SubmitInput struct {
	ProgressValue float64
	Comment       *string
	CheckInDate   *time.Time
}

// Review is the outcome of an approve or reject.
type Review struct {
	CheckIn   domain.CheckIn
	KeyResult *domain.KeyResult
	Objective *domain.Objective
}

// Submit records a pending check-in against a key result. Only the key
// result's assignee may submit and the value must lie in [0, target].
func (e *Engine) Submit(ctx context.Context, p domain.Principal, keyResultID string, in SubmitInput) (*domain.CheckIn, error) {
	owner, err := e.authz.Check(ctx, p, policy.ActionSubmitCheckIn, domain.Ref(domain.ResourceKeyResult, keyResultID))
	if err != nil {
		return nil, err
	}
	kr, err := e.store.KeyResults().GetByID(ctx, keyResultID)
	if err != nil {
		return nil, repository.MapError(err, domain.ResourceKeyResult, keyResultID)
	}
	if err := validateProgress(in.ProgressValue, kr.TargetValue); err != nil {
		return nil, err
	}

	checkIn := &domain.CheckIn{
		KeyResultID:   kr.ID,
		UserID:        p.ID,
		ProgressValue: in.ProgressValue,
		Comment:       in.Comment,
		Status:        domain.CheckInPending,
		CheckInDate:   e.now(),
	}
	if in.CheckInDate != nil {
		checkIn.CheckInDate = *in.CheckInDate
	}
	if err := e.store.CheckIns().Create(ctx, checkIn); err != nil {
		return nil, repository.MapError(err, domain.ResourceCheckIn, "")
	}

	e.logger.Info("check-in submitted",
		zap.String("check_in_id", checkIn.ID),
		zap.String("key_result_id", kr.ID),
		zap.String("user_id", p.ID),
		zap.Float64("progress_value", checkIn.ProgressValue))
	e.publishEvent(ctx, events.Event{
		Type:           events.EventCheckInSubmitted,
		OrganizationID: owner.OrganizationID,
		SubjectID:      checkIn.ID,
		ActorID:        p.ID,
		Payload: events.CheckInSubmittedPayload{
			KeyResultID:    kr.ID,
			KeyResultTitle: kr.Title,
			TeamID:         owner.AssigneeTeamID,
			SubmitterID:    p.ID,
			ProgressValue:  checkIn.ProgressValue,
		},
	})
	return checkIn, nil
}

func validateProgress(value, target float64) error {
	details := map[string]any{"progress_value": value, "target_value": target}
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return apperrors.NewValidationError("progress_value must be a number", details)
	}
	if value < 0 {
		return apperrors.NewValidationError("progress_value must not be negative", details)
	}
	if value > target {
		return apperrors.NewValidationError("progress_value exceeds the key result target", details)
	}
	return nil
}

// Approve moves a pending check-in to approved and, in the same transaction,
// sets the key result's current value and recomputes its objective.
func (e *Engine) Approve(ctx context.Context, p domain.Principal, checkInID string) (*Review, error) {
	return e.review(ctx, p, checkInID, domain.CheckInApproved)
}

// Reject moves a pending check-in to rejected. The key result is untouched.
func (e *Engine) Reject(ctx context.Context, p domain.Principal, checkInID string) (*Review, error) {
	return e.review(ctx, p, checkInID, domain.CheckInRejected)
}

func (e *Engine) review(ctx context.Context, p domain.Principal, checkInID string, to domain.CheckInStatus) (*Review, error) {
	action := policy.ActionApprove
	if to == domain.CheckInRejected {
		action = policy.ActionReject
	}
	owner, err := e.authz.Check(ctx, p, action, domain.Ref(domain.ResourceCheckIn, checkInID))
	if err != nil {
		return nil, err
	}

	reviewedAt := e.now()
	var review Review
	err = e.store.WithinTx(ctx, func(tx repository.Store) error {
		checkIn, err := tx.CheckIns().GetByID(ctx, checkInID)
		if err != nil {
			return err
		}
		if !CanTransition(checkIn.Status, to) {
			return alreadyReviewed(checkIn)
		}
		if err := tx.CheckIns().TransitionStatus(ctx, checkInID, checkIn.Status, to, p.ID, reviewedAt); err != nil {
			if errors.Is(err, repository.ErrStaleState) {
				return apperrors.NewConflict("check-in was reviewed concurrently", map[string]any{"id": checkInID})
			}
			return err
		}
		checkIn.Status = to
		checkIn.ReviewedBy = &p.ID
		checkIn.ReviewedAt = &reviewedAt
		review.CheckIn = *checkIn

		kr, err := tx.KeyResults().GetByID(ctx, checkIn.KeyResultID)
		if err != nil {
			return err
		}
		review.KeyResult = kr
		if to != domain.CheckInApproved {
			return nil
		}

		if err := tx.KeyResults().SetCurrentValue(ctx, kr.ID, checkIn.ProgressValue); err != nil {
			return err
		}
		kr.CurrentValue = checkIn.ProgressValue

		objective, err := recomputeObjective(ctx, tx, kr.ObjectiveID)
		if err != nil {
			return err
		}
		review.Objective = objective
		return nil
	})
	if err != nil {
		e.logger.Warn("check-in review failed",
			zap.String("check_in_id", checkInID),
			zap.String("to", string(to)),
			zap.Error(err))
		return nil, repository.MapError(err, domain.ResourceCheckIn, checkInID)
	}

	e.logger.Info("check-in reviewed",
		zap.String("check_in_id", checkInID),
		zap.String("status", string(to)),
		zap.String("reviewer_id", p.ID))
	e.publishReview(ctx, p, owner, &review)
	return &review, nil
}

func alreadyReviewed(checkIn *domain.CheckIn) error {
	return apperrors.NewConflict("check-in already reviewed", map[string]any{
		"id":     checkIn.ID,
		"status": string(checkIn.Status),
	})
}

// recomputeObjective stores the objective's progress and worst status derived
// from its key results.
func recomputeObjective(ctx context.Context, tx repository.Store, objectiveID string) (*domain.Objective, error) {
	objective, err := tx.Objectives().GetByID(ctx, objectiveID)
	if err != nil {
		return nil, err
	}
	krs, err := tx.KeyResults().ListByObjective(ctx, objectiveID)
	if err != nil {
		return nil, err
	}
	progress := aggregate.ClampPercent(aggregate.ObjectivePercent(krs))
	status := aggregate.WorstStatus(krs)
	if err := tx.Objectives().UpdateProgress(ctx, objectiveID, progress, status); err != nil {
		return nil, err
	}
	objective.Progress = progress
	objective.Status = status
	return objective, nil
}

// RecomputeObjective re-derives an objective's stored progress after its key
// results changed outside the approval path.
func RecomputeObjective(ctx context.Context, store repository.Store, objectiveID string) (*domain.Objective, error) {
	var out *domain.Objective
	err := store.WithinTx(ctx, func(tx repository.Store) error {
		objective, err := recomputeObjective(ctx, tx, objectiveID)
		out = objective
		return err
	})
	if err != nil {
		return nil, repository.MapError(err, domain.ResourceObjective, objectiveID)
	}
	return out, nil
}

func (e *Engine) publishReview(ctx context.Context, p domain.Principal, owner *domain.Ownership, review *Review) {
	eventType := events.EventCheckInApproved
	if review.CheckIn.Status == domain.CheckInRejected {
		eventType = events.EventCheckInRejected
	}
	payload := events.CheckInReviewedPayload{
		KeyResultID:   review.CheckIn.KeyResultID,
		SubmitterID:   review.CheckIn.UserID,
		ReviewerID:    p.ID,
		Status:        review.CheckIn.Status,
		ProgressValue: review.CheckIn.ProgressValue,
	}
	if review.KeyResult != nil {
		payload.KeyResultTitle = review.KeyResult.Title
		payload.ObjectiveID = review.KeyResult.ObjectiveID
	}
	if review.Objective != nil {
		payload.ObjectiveStatus = review.Objective.Status
		payload.ObjectivePct = review.Objective.Progress
	}
	e.publishEvent(ctx, events.Event{
		Type:           eventType,
		OrganizationID: owner.OrganizationID,
		SubjectID:      review.CheckIn.ID,
		ActorID:        p.ID,
		Payload:        payload,
	})
}

func (e *Engine) publishEvent(ctx context.Context, event events.Event) {
	if e.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = e.now()
	}
	_ = e.dispatcher.Publish(ctx, event)
}
