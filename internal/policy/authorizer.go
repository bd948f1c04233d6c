package policy

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/salim0986/okr-production-sub000/internal/domain"
	"github.com/salim0986/okr-production-sub000/internal/repository"
	apperrors "github.com/salim0986/okr-production-sub000/pkg/util"
)

// Authorizer resolves a resource's ownership path with one storage call and
// applies Decide to it.
type Authorizer struct {
	resolver repository.OwnershipResolver
	logger   *zap.Logger
}

// NewAuthorizer constructs an Authorizer.
func NewAuthorizer(resolver repository.OwnershipResolver, logger *zap.Logger) *Authorizer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Authorizer{resolver: resolver, logger: logger}
}

// Authorize returns nil when p may perform action on ref.
func (a *Authorizer) Authorize(ctx context.Context, p domain.Principal, action Action, ref domain.ResourceRef) error {
	_, err := a.Check(ctx, p, action, ref)
	return err
}

// Check authorizes and returns the resolved ownership for callers that need
// the assignee or team.
func (a *Authorizer) Check(ctx context.Context, p domain.Principal, action Action, ref domain.ResourceRef) (*domain.Ownership, error) {
	if ref.ID == "" {
		return nil, apperrors.NewValidationError(string(ref.Kind)+" id required", nil)
	}
	// ids are UUIDs; anything else names no record.
	if _, err := uuid.Parse(ref.ID); err != nil {
		return nil, apperrors.NewNotFound(string(ref.Kind), map[string]any{"id": ref.ID})
	}
	owner, err := a.resolver.Resolve(ctx, ref)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewNotFound(string(ref.Kind), map[string]any{"id": ref.ID})
		}
		return nil, apperrors.NewStorageFailure(err)
	}
	decision := Decide(p, action, *owner)
	if !decision.Allowed {
		a.logger.Debug("access denied",
			zap.String("principal_id", p.ID),
			zap.String("action", string(action)),
			zap.String("resource", string(ref.Kind)),
			zap.String("resource_id", ref.ID),
			zap.String("reason", decision.Reason))
		return nil, decision.Err(ref)
	}
	return owner, nil
}
