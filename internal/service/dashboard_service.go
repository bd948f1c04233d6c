package service

import (
	"context"
	"time"

	"github.com/salim0986/okr-production-sub000/internal/aggregate"
	"github.com/salim0986/okr-production-sub000/internal/config"
	"github.com/salim0986/okr-production-sub000/internal/domain"
	"github.com/salim0986/okr-production-sub000/internal/policy"
	"github.com/salim0986/okr-production-sub000/internal/repository"
	apperrors "github.com/salim0986/okr-production-sub000/pkg/util"
)

// DashboardService assembles the role-specific summary views.
type DashboardService struct {
	store     repository.Store
	authz     *policy.Authorizer
	now       func() time.Time
	threshold int
	recent    int
}

// NewDashboardService constructs the service.
func NewDashboardService(cfg config.DashboardConfig, deps Dependencies) *DashboardService {
	threshold := cfg.AtRiskThreshold
	if threshold <= 0 {
		threshold = aggregate.DefaultAtRiskThreshold
	}
	recent := cfg.RecentCheckIns
	if recent <= 0 {
		recent = 10
	}
	return &DashboardService{
		store:     deps.Store,
		authz:     deps.authorizer(),
		now:       deps.clock(),
		threshold: threshold,
		recent:    recent,
	}
}

// Dashboard is the landing view of a principal. Exactly one of the summaries
// is set, chosen by role.
type Dashboard struct {
	Role           domain.Role
	Organization   *aggregate.OrganizationSummary
	Team           *aggregate.TeamSummary
	Member         *aggregate.MemberSummary
	RecentCheckIns []domain.CheckIn
}

// Dashboard returns the organization summary for admins, the team summary
// for team leads and the personal summary for employees.
func (s *DashboardService) Dashboard(ctx context.Context, p domain.Principal) (*Dashboard, error) {
	out := &Dashboard{Role: p.Role}
	filter := repository.CheckInFilter{Limit: s.recent}
	orgID := p.OrganizationID
	filter.OrganizationID = &orgID

	switch p.Role {
	case domain.RoleAdmin:
		summary, err := s.OrganizationSummary(ctx, p)
		if err != nil {
			return nil, err
		}
		out.Organization = summary
	case domain.RoleTeamLead:
		if p.TeamID == nil {
			member, err := s.MemberSummary(ctx, p, p.ID)
			if err != nil {
				return nil, err
			}
			out.Member = member
			filter.UserID = &p.ID
			break
		}
		summary, err := s.TeamSummary(ctx, p, *p.TeamID)
		if err != nil {
			return nil, err
		}
		out.Team = summary
		filter.TeamID = p.TeamID
	case domain.RoleEmployee:
		member, err := s.MemberSummary(ctx, p, p.ID)
		if err != nil {
			return nil, err
		}
		out.Member = member
		filter.UserID = &p.ID
	default:
		return nil, apperrors.NewForbidden("unknown role")
	}

	recent, err := s.store.CheckIns().List(ctx, filter)
	if err != nil {
		return nil, repository.MapError(err, domain.ResourceCheckIn, "")
	}
	out.RecentCheckIns = recent
	return out, nil
}

// OrganizationSummary rolls every team of the caller's organization up.
func (s *DashboardService) OrganizationSummary(ctx context.Context, p domain.Principal) (*aggregate.OrganizationSummary, error) {
	if p.Role != domain.RoleAdmin && !p.IsSystem() {
		return nil, apperrors.NewForbidden("organization summary requires admin")
	}
	if err := s.authz.Authorize(ctx, p, policy.ActionRead, domain.Ref(domain.ResourceOrganization, p.OrganizationID)); err != nil {
		return nil, err
	}
	teams, err := s.store.Teams().ListByOrganization(ctx, p.OrganizationID)
	if err != nil {
		return nil, repository.MapError(err, domain.ResourceTeam, "")
	}
	snapshots := make([]aggregate.TeamSnapshot, 0, len(teams))
	for _, team := range teams {
		snap, err := s.snapshot(ctx, team)
		if err != nil {
			return nil, err
		}
		snapshots = append(snapshots, snap)
	}
	unassigned, err := s.store.Users().List(ctx, repository.UserFilter{
		OrganizationID: p.OrganizationID,
		Unassigned:     true,
		Limit:          summaryLimit,
	})
	if err != nil {
		return nil, repository.MapError(err, domain.ResourceUser, "")
	}
	summary := aggregate.SummarizeOrganization(p.OrganizationID, snapshots, unassigned, s.threshold, s.now())
	return &summary, nil
}

// TeamSummary summarizes one team the caller can read.
func (s *DashboardService) TeamSummary(ctx context.Context, p domain.Principal, teamID string) (*aggregate.TeamSummary, error) {
	if err := s.authz.Authorize(ctx, p, policy.ActionRead, domain.Ref(domain.ResourceTeam, teamID)); err != nil {
		return nil, err
	}
	team, err := s.store.Teams().GetByID(ctx, teamID)
	if err != nil {
		return nil, repository.MapError(err, domain.ResourceTeam, teamID)
	}
	snap, err := s.snapshot(ctx, *team)
	if err != nil {
		return nil, err
	}
	summary := aggregate.SummarizeTeam(snap, s.threshold, s.now())
	return &summary, nil
}

// MemberSummary summarizes one member's key results and check-ins.
func (s *DashboardService) MemberSummary(ctx context.Context, p domain.Principal, userID string) (*aggregate.MemberSummary, error) {
	if err := s.authz.Authorize(ctx, p, policy.ActionRead, domain.Ref(domain.ResourceUser, userID)); err != nil {
		return nil, err
	}
	user, err := s.store.Users().GetByID(ctx, userID)
	if err != nil {
		return nil, repository.MapError(err, domain.ResourceUser, userID)
	}
	krs, err := s.store.KeyResults().ListByAssignee(ctx, userID)
	if err != nil {
		return nil, repository.MapError(err, domain.ResourceKeyResult, "")
	}
	checkIns, err := s.store.CheckIns().List(ctx, repository.CheckInFilter{UserID: &userID, Limit: summaryLimit})
	if err != nil {
		return nil, repository.MapError(err, domain.ResourceCheckIn, "")
	}
	summary := aggregate.SummarizeMember(*user, krs, checkIns, s.now())
	return &summary, nil
}

func (s *DashboardService) snapshot(ctx context.Context, team domain.Team) (aggregate.TeamSnapshot, error) {
	snap := aggregate.TeamSnapshot{Team: team}
	teamID := team.ID
	var err error
	snap.Members, err = s.store.Users().List(ctx, repository.UserFilter{
		OrganizationID: team.OrganizationID,
		TeamID:         &teamID,
		Limit:          summaryLimit,
	})
	if err != nil {
		return snap, repository.MapError(err, domain.ResourceUser, "")
	}
	snap.Objectives, err = s.store.Objectives().List(ctx, repository.ObjectiveFilter{
		OrganizationID: team.OrganizationID,
		TeamID:         &teamID,
		Limit:          summaryLimit,
	})
	if err != nil {
		return snap, repository.MapError(err, domain.ResourceObjective, "")
	}
	snap.CheckIns, err = s.store.CheckIns().List(ctx, repository.CheckInFilter{TeamID: &teamID, Limit: summaryLimit})
	if err != nil {
		return snap, repository.MapError(err, domain.ResourceCheckIn, "")
	}
	return snap, nil
}
