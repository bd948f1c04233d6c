package policy

import (
	"context"
	"errors"
	"testing"

	"github.com/salim0986/okr-production-sub000/internal/domain"
	"github.com/salim0986/okr-production-sub000/internal/repository"
	"github.com/salim0986/okr-production-sub000/internal/repository/memory"
	apperrors "github.com/salim0986/okr-production-sub000/pkg/util"
)

type world struct {
	store    *memory.Store
	auth     *Authorizer
	orgA     domain.Organization
	orgB     domain.Organization
	t1, t2   domain.Team
	lead1    domain.User
	emp2     domain.User
	adminB   domain.User
	checkIn2 domain.CheckIn
}

func build(t *testing.T) world {
	t.Helper()
	ctx := context.Background()
	w := world{store: memory.New()}
	must := func(err error) {
		t.Helper()
		if err != nil {
			t.Fatal(err)
		}
	}
	w.orgA = domain.Organization{Name: "A"}
	w.orgB = domain.Organization{Name: "B"}
	must(w.store.Organizations().Create(ctx, &w.orgA))
	must(w.store.Organizations().Create(ctx, &w.orgB))
	w.t1 = domain.Team{OrganizationID: w.orgA.ID, Name: "T1"}
	w.t2 = domain.Team{OrganizationID: w.orgA.ID, Name: "T2"}
	must(w.store.Teams().Create(ctx, &w.t1))
	must(w.store.Teams().Create(ctx, &w.t2))
	w.lead1 = domain.User{Name: "Lead", Email: "lead@a.test", Role: domain.RoleTeamLead, OrganizationID: w.orgA.ID, TeamID: &w.t1.ID}
	w.emp2 = domain.User{Name: "Emp", Email: "emp@a.test", Role: domain.RoleEmployee, OrganizationID: w.orgA.ID, TeamID: &w.t2.ID}
	w.adminB = domain.User{Name: "Admin B", Email: "admin@b.test", Role: domain.RoleAdmin, OrganizationID: w.orgB.ID}
	must(w.store.Users().Create(ctx, &w.lead1))
	must(w.store.Users().Create(ctx, &w.emp2))
	must(w.store.Users().Create(ctx, &w.adminB))

	obj := domain.Objective{TeamID: w.t2.ID, Title: "O", Status: domain.StatusOnTrack}
	must(w.store.Objectives().Create(ctx, &obj))
	kr := domain.KeyResult{ObjectiveID: obj.ID, Title: "K", TargetValue: 10, AssignedTo: &w.emp2.ID, Status: domain.StatusOnTrack}
	must(w.store.KeyResults().Create(ctx, &kr))
	w.checkIn2 = domain.CheckIn{KeyResultID: kr.ID, UserID: w.emp2.ID, ProgressValue: 5, Status: domain.CheckInPending}
	must(w.store.CheckIns().Create(ctx, &w.checkIn2))

	w.auth = NewAuthorizer(w.store.Ownership(), nil)
	return w
}

func TestAuthorize_LeadOfOtherTeamCannotApprove(t *testing.T) {
	w := build(t)
	err := w.auth.Authorize(context.Background(), w.lead1.Principal(), ActionApprove, domain.Ref(domain.ResourceCheckIn, w.checkIn2.ID))
	if !apperrors.HasCode(err, apperrors.CodeForbidden) {
		t.Errorf("Authorize = %v, want FORBIDDEN", err)
	}
}

func TestAuthorize_OtherOrganizationAdminSeesNotFound(t *testing.T) {
	w := build(t)
	err := w.auth.Authorize(context.Background(), w.adminB.Principal(), ActionRead, domain.Ref(domain.ResourceCheckIn, w.checkIn2.ID))
	if !apperrors.HasCode(err, apperrors.CodeNotFound) {
		t.Errorf("Authorize = %v, want NOT_FOUND", err)
	}
}

func TestAuthorize_MissingRecordIsNotFound(t *testing.T) {
	w := build(t)
	err := w.auth.Authorize(context.Background(), w.lead1.Principal(), ActionRead, domain.Ref(domain.ResourceObjective, "missing"))
	if !apperrors.HasCode(err, apperrors.CodeNotFound) {
		t.Errorf("Authorize = %v, want NOT_FOUND", err)
	}
}

func TestAuthorize_EmptyIDIsValidation(t *testing.T) {
	w := build(t)
	err := w.auth.Authorize(context.Background(), w.lead1.Principal(), ActionRead, domain.Ref(domain.ResourceObjective, ""))
	if !apperrors.HasCode(err, apperrors.CodeValidation) {
		t.Errorf("Authorize = %v, want VALIDATION_FAILED", err)
	}
}

func TestCheck_ReturnsOwnership(t *testing.T) {
	w := build(t)
	o, err := w.auth.Check(context.Background(), w.emp2.Principal(), ActionRead, domain.Ref(domain.ResourceCheckIn, w.checkIn2.ID))
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if o.TeamID == nil || *o.TeamID != w.t2.ID {
		t.Errorf("TeamID = %v, want %s", o.TeamID, w.t2.ID)
	}
}

func TestAuthorize_SystemPrincipal(t *testing.T) {
	w := build(t)
	err := w.auth.Authorize(context.Background(), domain.SystemPrincipal(), ActionApprove, domain.Ref(domain.ResourceCheckIn, w.checkIn2.ID))
	if err != nil {
		t.Errorf("Authorize(system) = %v, want nil", err)
	}
}

// syntaxErrorResolver fails the way Postgres does when a non-uuid reaches a
// uuid column.
type syntaxErrorResolver struct{ calls int }

func (r *syntaxErrorResolver) Resolve(context.Context, domain.ResourceRef) (*domain.Ownership, error) {
	r.calls++
	return nil, errors.New("invalid input syntax for type uuid")
}

var _ repository.OwnershipResolver = (*syntaxErrorResolver)(nil)

func TestCheck_MalformedIDIsNotFound(t *testing.T) {
	resolver := &syntaxErrorResolver{}
	auth := NewAuthorizer(resolver, nil)
	p := domain.Principal{ID: "u1", Role: domain.RoleAdmin, OrganizationID: "org1"}

	_, err := auth.Check(context.Background(), p, ActionRead, domain.Ref(domain.ResourceObjective, "abc"))
	if !apperrors.HasCode(err, apperrors.CodeNotFound) {
		t.Errorf("Check = %v, want NOT_FOUND", err)
	}
	if resolver.calls != 0 {
		t.Errorf("resolver calls = %d, want 0", resolver.calls)
	}
}
