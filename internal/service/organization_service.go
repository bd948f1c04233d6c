package service

import (
	"context"

	"github.com/salim0986/okr-production-sub000/internal/domain"
	"github.com/salim0986/okr-production-sub000/internal/policy"
	"github.com/salim0986/okr-production-sub000/internal/repository"
)

// OrganizationService exposes the caller's organization.
type OrganizationService struct {
	store repository.Store
	authz *policy.Authorizer
}

// NewOrganizationService constructs the service.
func NewOrganizationService(deps Dependencies) *OrganizationService {
	return &OrganizationService{store: deps.Store, authz: deps.authorizer()}
}

// Get returns the caller's organization.
func (s *OrganizationService) Get(ctx context.Context, p domain.Principal) (*domain.Organization, error) {
	ref := domain.Ref(domain.ResourceOrganization, p.OrganizationID)
	if err := s.authz.Authorize(ctx, p, policy.ActionRead, ref); err != nil {
		return nil, err
	}
	org, err := s.store.Organizations().GetByID(ctx, ref.ID)
	if err != nil {
		return nil, repository.MapError(err, ref.Kind, ref.ID)
	}
	return org, nil
}

// Rename changes the organization's name.
func (s *OrganizationService) Rename(ctx context.Context, p domain.Principal, name string) (*domain.Organization, error) {
	name, err := requireText("name", name)
	if err != nil {
		return nil, err
	}
	ref := domain.Ref(domain.ResourceOrganization, p.OrganizationID)
	if err := s.authz.Authorize(ctx, p, policy.ActionUpdate, ref); err != nil {
		return nil, err
	}
	org, err := s.store.Organizations().GetByID(ctx, ref.ID)
	if err != nil {
		return nil, repository.MapError(err, ref.Kind, ref.ID)
	}
	org.Name = name
	if err := s.store.Organizations().Update(ctx, org); err != nil {
		return nil, repository.MapError(err, ref.Kind, ref.ID)
	}
	return org, nil
}
