package aggregate

import (
	"time"

	"github.com/salim0986/okr-production-sub000/internal/domain"
)

// TeamSnapshot is the raw data a team summary is derived from.
type TeamSnapshot struct {
	Team       domain.Team
	Members    []domain.User
	Objectives []domain.Objective
	CheckIns   []domain.CheckIn
}

// TeamSummary is the team-lead dashboard payload.
type TeamSummary struct {
	TeamID          string
	TeamName        string
	LeadID          *string
	MemberCount     int
	ObjectiveCount  int
	AverageProgress int
	CompletedCount  int
	// AtRiskBelowThreshold counts objectives under the progress threshold.
	AtRiskBelowThreshold int
	// AtRiskByStatus counts objectives whose stored status is at_risk.
	AtRiskByStatus  int
	StatusCounts    map[domain.Status]int
	WorstStatus     domain.Status
	PendingCheckIns int
	LastCheckInAt   *time.Time
	LastActivity    *string
}

// SummarizeTeam builds a TeamSummary. Soft-deleted members are not counted.
func SummarizeTeam(snap TeamSnapshot, threshold int, now time.Time) TeamSummary {
	statuses := make([]domain.Status, 0, len(snap.Objectives))
	for _, o := range snap.Objectives {
		statuses = append(statuses, o.Status)
	}
	pending, last := checkInActivity(snap.CheckIns)
	return TeamSummary{
		TeamID:               snap.Team.ID,
		TeamName:             snap.Team.Name,
		LeadID:               snap.Team.LeadID,
		MemberCount:          countActive(snap.Members),
		ObjectiveCount:       len(snap.Objectives),
		AverageProgress:      TeamAverageProgress(snap.Objectives),
		CompletedCount:       CountByStatus(snap.Objectives, domain.StatusCompleted),
		AtRiskBelowThreshold: AtRiskCount(snap.Objectives, threshold),
		AtRiskByStatus:       CountByStatus(snap.Objectives, domain.StatusAtRisk),
		StatusCounts:         StatusHistogram(snap.Objectives),
		WorstStatus:          WorstOf(statuses...),
		PendingCheckIns:      pending,
		LastCheckInAt:        last,
		LastActivity:         HumanizeRecency(last, now),
	}
}

// OrganizationSummary is the admin dashboard payload.
type OrganizationSummary struct {
	OrganizationID       string
	TeamCount            int
	MemberCount          int
	ObjectiveCount       int
	AverageProgress      int
	CompletedCount       int
	AtRiskBelowThreshold int
	AtRiskByStatus       int
	StatusCounts         map[domain.Status]int
	PendingCheckIns      int
	Teams                []TeamSummary
}

// SummarizeOrganization rolls team snapshots up to the organization.
// Members without a team (admins) are passed separately so they count once.
func SummarizeOrganization(orgID string, teams []TeamSnapshot, unassigned []domain.User, threshold int, now time.Time) OrganizationSummary {
	summary := OrganizationSummary{
		OrganizationID: orgID,
		TeamCount:      len(teams),
		MemberCount:    countActive(unassigned),
		Teams:          make([]TeamSummary, 0, len(teams)),
	}
	var objectives []domain.Objective
	for _, snap := range teams {
		ts := SummarizeTeam(snap, threshold, now)
		summary.Teams = append(summary.Teams, ts)
		summary.MemberCount += ts.MemberCount
		summary.PendingCheckIns += ts.PendingCheckIns
		objectives = append(objectives, snap.Objectives...)
	}
	summary.ObjectiveCount = len(objectives)
	summary.AverageProgress = TeamAverageProgress(objectives)
	summary.CompletedCount = CountByStatus(objectives, domain.StatusCompleted)
	summary.AtRiskBelowThreshold = AtRiskCount(objectives, threshold)
	summary.AtRiskByStatus = CountByStatus(objectives, domain.StatusAtRisk)
	summary.StatusCounts = StatusHistogram(objectives)
	return summary
}

// MemberSummary is the employee dashboard payload.
type MemberSummary struct {
	UserID              string
	AssignedKeyResults  int
	AveragePercent      int
	CompletedKeyResults int
	WorstStatus         domain.Status
	PendingCheckIns     int
	ApprovedCheckIns    int
	RejectedCheckIns    int
	LastCheckInAt       *time.Time
	LastCheckIn         *string
	LastLogin           *string
}

// SummarizeMember derives the personal dashboard for user.
func SummarizeMember(user domain.User, keyResults []domain.KeyResult, checkIns []domain.CheckIn, now time.Time) MemberSummary {
	summary := MemberSummary{
		UserID:             user.ID,
		AssignedKeyResults: len(keyResults),
		AveragePercent:     ObjectivePercent(keyResults),
		WorstStatus:        WorstStatus(keyResults),
		LastLogin:          HumanizeRecency(user.LastLogin, now),
	}
	for _, kr := range keyResults {
		if kr.TargetValue > 0 && KeyResultPercent(kr) >= 100 {
			summary.CompletedKeyResults++
		}
	}
	for _, ci := range checkIns {
		switch ci.Status {
		case domain.CheckInApproved:
			summary.ApprovedCheckIns++
		case domain.CheckInRejected:
			summary.RejectedCheckIns++
		}
	}
	summary.PendingCheckIns, summary.LastCheckInAt = checkInActivity(checkIns)
	summary.LastCheckIn = HumanizeRecency(summary.LastCheckInAt, now)
	return summary
}

func countActive(users []domain.User) int {
	n := 0
	for _, u := range users {
		if !u.IsDeleted {
			n++
		}
	}
	return n
}

func checkInActivity(checkIns []domain.CheckIn) (int, *time.Time) {
	pending := 0
	var last *time.Time
	for i := range checkIns {
		if checkIns[i].Status == domain.CheckInPending {
			pending++
		}
		created := checkIns[i].CreatedAt
		if last == nil || created.After(*last) {
			last = &created
		}
	}
	return pending, last
}
