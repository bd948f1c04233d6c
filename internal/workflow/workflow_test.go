package workflow

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/salim0986/okr-production-sub000/internal/aggregate"
	"github.com/salim0986/okr-production-sub000/internal/domain"
	"github.com/salim0986/okr-production-sub000/internal/events"
	"github.com/salim0986/okr-production-sub000/internal/policy"
	"github.com/salim0986/okr-production-sub000/internal/repository"
	"github.com/salim0986/okr-production-sub000/internal/repository/memory"
	apperrors "github.com/salim0986/okr-production-sub000/pkg/util"
)

var fixedNow = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

type scene struct {
	store     *memory.Store
	engine    *Engine
	events    []events.Event
	admin     domain.User
	lead      domain.User
	otherLead domain.User
	employee  domain.User
	peer      domain.User
	objective domain.Objective
	kr        domain.KeyResult
}

// setup seeds one organization with two teams. wrap, when set, decorates the
// store the engine runs against.
func setup(t *testing.T, wrap func(repository.Store) repository.Store) *scene {
	t.Helper()
	ctx := context.Background()
	mem := memory.New(memory.WithClock(func() time.Time { return fixedNow }))
	s := &scene{store: mem}
	var store repository.Store = mem
	if wrap != nil {
		store = wrap(mem)
	}
	must := func(err error) {
		t.Helper()
		if err != nil {
			t.Fatal(err)
		}
	}
	org := domain.Organization{Name: "Acme"}
	must(mem.Organizations().Create(ctx, &org))
	t1 := domain.Team{OrganizationID: org.ID, Name: "T1"}
	t2 := domain.Team{OrganizationID: org.ID, Name: "T2"}
	must(mem.Teams().Create(ctx, &t1))
	must(mem.Teams().Create(ctx, &t2))

	s.admin = domain.User{Name: "Ada", Email: "ada@acme.test", Role: domain.RoleAdmin, OrganizationID: org.ID}
	s.lead = domain.User{Name: "Lee", Email: "lee@acme.test", Role: domain.RoleTeamLead, OrganizationID: org.ID, TeamID: &t1.ID}
	s.otherLead = domain.User{Name: "Olu", Email: "olu@acme.test", Role: domain.RoleTeamLead, OrganizationID: org.ID, TeamID: &t2.ID}
	s.employee = domain.User{Name: "Emi", Email: "emi@acme.test", Role: domain.RoleEmployee, OrganizationID: org.ID, TeamID: &t1.ID}
	s.peer = domain.User{Name: "Pat", Email: "pat@acme.test", Role: domain.RoleEmployee, OrganizationID: org.ID, TeamID: &t1.ID}
	for _, u := range []*domain.User{&s.admin, &s.lead, &s.otherLead, &s.employee, &s.peer} {
		must(mem.Users().Create(ctx, u))
	}

	s.objective = domain.Objective{TeamID: t1.ID, Title: "Grow", Status: domain.StatusOnTrack, EndDate: fixedNow.AddDate(0, 1, 0)}
	must(mem.Objectives().Create(ctx, &s.objective))
	s.kr = domain.KeyResult{ObjectiveID: s.objective.ID, Title: "Signups", TargetValue: 50, AssignedTo: &s.employee.ID, Status: domain.StatusOnTrack}
	must(mem.KeyResults().Create(ctx, &s.kr))

	dispatcher := events.NewInMemoryDispatcher(nil)
	record := func(_ context.Context, e events.Event) error {
		s.events = append(s.events, e)
		return nil
	}
	dispatcher.Subscribe(events.EventCheckInSubmitted, record)
	dispatcher.Subscribe(events.EventCheckInApproved, record)
	dispatcher.Subscribe(events.EventCheckInRejected, record)

	s.engine = New(Dependencies{
		Store:      store,
		Authorizer: policy.NewAuthorizer(store.Ownership(), nil),
		Dispatcher: dispatcher,
		Clock:      func() time.Time { return fixedNow },
	})
	return s
}

func (s *scene) submit(t *testing.T, value float64) *domain.CheckIn {
	t.Helper()
	c, err := s.engine.Submit(context.Background(), s.employee.Principal(), s.kr.ID, SubmitInput{ProgressValue: value})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	return c
}

func TestCanTransition(t *testing.T) {
	if !CanTransition(domain.CheckInPending, domain.CheckInApproved) {
		t.Error("pending -> approved should be allowed")
	}
	if !CanTransition(domain.CheckInPending, domain.CheckInRejected) {
		t.Error("pending -> rejected should be allowed")
	}
	for _, from := range []domain.CheckInStatus{domain.CheckInApproved, domain.CheckInRejected} {
		for _, to := range []domain.CheckInStatus{domain.CheckInPending, domain.CheckInApproved, domain.CheckInRejected} {
			if CanTransition(from, to) {
				t.Errorf("CanTransition(%s, %s) = true, want false", from, to)
			}
		}
	}
}

func TestEndToEnd_SubmitApprove(t *testing.T) {
	s := setup(t, nil)
	ctx := context.Background()

	c := s.submit(t, 50)
	if c.Status != domain.CheckInPending {
		t.Fatalf("Status = %s, want pending", c.Status)
	}

	review, err := s.engine.Approve(ctx, s.lead.Principal(), c.ID)
	if err != nil {
		t.Fatalf("Approve: %v", err)
	}
	if review.CheckIn.Status != domain.CheckInApproved {
		t.Errorf("Status = %s, want approved", review.CheckIn.Status)
	}

	kr, err := s.store.KeyResults().GetByID(ctx, s.kr.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if kr.CurrentValue != 50 {
		t.Errorf("CurrentValue = %v, want 50", kr.CurrentValue)
	}
	if got := aggregate.KeyResultPercent(*kr); got != 100 {
		t.Errorf("KeyResultPercent = %d, want 100", got)
	}

	obj, _ := s.store.Objectives().GetByID(ctx, s.objective.ID)
	if obj.Progress != 100 {
		t.Errorf("objective Progress = %d, want 100", obj.Progress)
	}

	stored, _ := s.store.CheckIns().GetByID(ctx, c.ID)
	if stored.ReviewedBy == nil || *stored.ReviewedBy != s.lead.ID {
		t.Errorf("ReviewedBy = %v, want %s", stored.ReviewedBy, s.lead.ID)
	}
	if stored.ReviewedAt == nil || !stored.ReviewedAt.Equal(fixedNow) {
		t.Errorf("ReviewedAt = %v, want %v", stored.ReviewedAt, fixedNow)
	}

	if len(s.events) != 2 || s.events[0].Type != events.EventCheckInSubmitted || s.events[1].Type != events.EventCheckInApproved {
		t.Errorf("events = %+v, want submitted then approved", s.events)
	}
}

func TestSubmit_ValueAboveTargetRejected(t *testing.T) {
	s := setup(t, nil)
	ctx := context.Background()

	_, err := s.engine.Submit(ctx, s.employee.Principal(), s.kr.ID, SubmitInput{ProgressValue: 51})
	if !apperrors.HasCode(err, apperrors.CodeValidation) {
		t.Fatalf("Submit = %v, want VALIDATION_FAILED", err)
	}
	_, err = s.engine.Submit(ctx, s.employee.Principal(), s.kr.ID, SubmitInput{ProgressValue: -1})
	if !apperrors.HasCode(err, apperrors.CodeValidation) {
		t.Fatalf("Submit(-1) = %v, want VALIDATION_FAILED", err)
	}
	list, _ := s.store.CheckIns().List(ctx, repository.CheckInFilter{KeyResultID: &s.kr.ID})
	if len(list) != 0 {
		t.Errorf("check-ins stored = %d, want 0", len(list))
	}
}

func TestSubmit_BoundaryValues(t *testing.T) {
	s := setup(t, nil)
	s.submit(t, 0)
	s.submit(t, 50)
}

func TestSubmit_NonAssigneeForbidden(t *testing.T) {
	s := setup(t, nil)
	_, err := s.engine.Submit(context.Background(), s.peer.Principal(), s.kr.ID, SubmitInput{ProgressValue: 1})
	if !apperrors.HasCode(err, apperrors.CodeForbidden) {
		t.Errorf("Submit = %v, want FORBIDDEN", err)
	}
}

func TestApprove_Twice(t *testing.T) {
	s := setup(t, nil)
	ctx := context.Background()
	c := s.submit(t, 10)

	if _, err := s.engine.Approve(ctx, s.admin.Principal(), c.ID); err != nil {
		t.Fatalf("first Approve: %v", err)
	}
	_, err := s.engine.Approve(ctx, s.admin.Principal(), c.ID)
	if !apperrors.HasCode(err, apperrors.CodeConflict) {
		t.Errorf("second Approve = %v, want CONFLICT", err)
	}
	_, err = s.engine.Reject(ctx, s.admin.Principal(), c.ID)
	if !apperrors.HasCode(err, apperrors.CodeConflict) {
		t.Errorf("Reject after approve = %v, want CONFLICT", err)
	}
}

func TestApprove_ConcurrentOnlyOneWins(t *testing.T) {
	s := setup(t, nil)
	c := s.submit(t, 20)

	const workers = 8
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
		conflicts int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			var err error
			if i%2 == 0 {
				_, err = s.engine.Approve(context.Background(), s.admin.Principal(), c.ID)
			} else {
				_, err = s.engine.Reject(context.Background(), s.lead.Principal(), c.ID)
			}
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				successes++
			case apperrors.HasCode(err, apperrors.CodeConflict):
				conflicts++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}(i)
	}
	wg.Wait()
	if successes != 1 || conflicts != workers-1 {
		t.Errorf("successes = %d, conflicts = %d, want 1 and %d", successes, conflicts, workers-1)
	}
}

func TestApprove_LeadOfOtherTeamForbidden(t *testing.T) {
	s := setup(t, nil)
	c := s.submit(t, 5)
	_, err := s.engine.Approve(context.Background(), s.otherLead.Principal(), c.ID)
	if !apperrors.HasCode(err, apperrors.CodeForbidden) {
		t.Errorf("Approve = %v, want FORBIDDEN", err)
	}
	stored, _ := s.store.CheckIns().GetByID(context.Background(), c.ID)
	if stored.Status != domain.CheckInPending {
		t.Errorf("Status = %s, want pending", stored.Status)
	}
}

func TestApprove_EmployeeForbidden(t *testing.T) {
	s := setup(t, nil)
	c := s.submit(t, 5)
	_, err := s.engine.Approve(context.Background(), s.peer.Principal(), c.ID)
	if !apperrors.HasCode(err, apperrors.CodeForbidden) {
		t.Errorf("Approve = %v, want FORBIDDEN", err)
	}
}

func TestReject_LeavesKeyResultUntouched(t *testing.T) {
	s := setup(t, nil)
	ctx := context.Background()
	c := s.submit(t, 40)

	review, err := s.engine.Reject(ctx, s.lead.Principal(), c.ID)
	if err != nil {
		t.Fatalf("Reject: %v", err)
	}
	if review.CheckIn.Status != domain.CheckInRejected {
		t.Errorf("Status = %s, want rejected", review.CheckIn.Status)
	}
	kr, _ := s.store.KeyResults().GetByID(ctx, s.kr.ID)
	if kr.CurrentValue != 0 {
		t.Errorf("CurrentValue = %v, want 0", kr.CurrentValue)
	}
	if review.Objective != nil {
		t.Error("reject should not recompute the objective")
	}
}

type failingStore struct {
	repository.Store
}

func (f failingStore) KeyResults() repository.KeyResultRepository {
	return failingKeyResults{f.Store.KeyResults()}
}

func (f failingStore) WithinTx(ctx context.Context, fn func(tx repository.Store) error) error {
	return f.Store.WithinTx(ctx, func(tx repository.Store) error {
		return fn(failingStore{tx})
	})
}

type failingKeyResults struct {
	repository.KeyResultRepository
}

var errDiskFull = errors.New("disk full")

func (failingKeyResults) SetCurrentValue(context.Context, string, float64) error {
	return errDiskFull
}

func TestApprove_KeyResultFailureRollsBack(t *testing.T) {
	s := setup(t, func(st repository.Store) repository.Store { return failingStore{st} })
	ctx := context.Background()
	c := s.submit(t, 30)

	_, err := s.engine.Approve(ctx, s.admin.Principal(), c.ID)
	if !apperrors.HasCode(err, apperrors.CodeStorageFailure) {
		t.Fatalf("Approve = %v, want STORAGE_FAILURE", err)
	}
	if !errors.Is(err, errDiskFull) {
		t.Errorf("Approve error should wrap the cause, got %v", err)
	}

	stored, _ := s.store.CheckIns().GetByID(ctx, c.ID)
	if stored.Status != domain.CheckInPending {
		t.Errorf("check-in Status = %s, want pending after rollback", stored.Status)
	}
	if stored.ReviewedBy != nil {
		t.Error("ReviewedBy should be rolled back")
	}
	kr, _ := s.store.KeyResults().GetByID(ctx, s.kr.ID)
	if kr.CurrentValue != 0 {
		t.Errorf("CurrentValue = %v, want 0", kr.CurrentValue)
	}
}

func TestApprove_RecomputesObjectiveWorstStatus(t *testing.T) {
	s := setup(t, nil)
	ctx := context.Background()
	late := domain.KeyResult{ObjectiveID: s.objective.ID, Title: "Late", TargetValue: 10, CurrentValue: 0, Status: domain.StatusOverdue}
	if err := s.store.KeyResults().Create(ctx, &late); err != nil {
		t.Fatal(err)
	}
	c := s.submit(t, 25)
	review, err := s.engine.Approve(ctx, s.admin.Principal(), c.ID)
	if err != nil {
		t.Fatalf("Approve: %v", err)
	}
	// (50% + 0%) / 2
	if review.Objective.Progress != 25 {
		t.Errorf("Progress = %d, want 25", review.Objective.Progress)
	}
	if review.Objective.Status != domain.StatusOverdue {
		t.Errorf("Status = %s, want overdue", review.Objective.Status)
	}
}

func TestRecomputeObjective(t *testing.T) {
	s := setup(t, nil)
	ctx := context.Background()
	if err := s.store.KeyResults().SetCurrentValue(ctx, s.kr.ID, 10); err != nil {
		t.Fatal(err)
	}
	obj, err := RecomputeObjective(ctx, s.store, s.objective.ID)
	if err != nil {
		t.Fatalf("RecomputeObjective: %v", err)
	}
	if obj.Progress != 20 {
		t.Errorf("Progress = %d, want 20", obj.Progress)
	}
	if _, err := RecomputeObjective(ctx, s.store, "missing"); !apperrors.HasCode(err, apperrors.CodeNotFound) {
		t.Errorf("RecomputeObjective(missing) = %v, want NOT_FOUND", err)
	}
}
