package dto

import (
	"time"

	"github.com/salim0986/okr-production-sub000/internal/domain"
)

// TeamSummaryResponse is the team-lead dashboard.
type TeamSummaryResponse struct {
	TeamID               string                `json:"team_id"`
	TeamName             string                `json:"team_name"`
	LeadID               *string               `json:"lead_id"`
	MemberCount          int                   `json:"member_count"`
	ObjectiveCount       int                   `json:"objective_count"`
	AverageProgress      int                   `json:"average_progress"`
	CompletedCount       int                   `json:"completed_count"`
	AtRiskBelowThreshold int                   `json:"at_risk_below_threshold"`
	AtRiskByStatus       int                   `json:"at_risk_by_status"`
	StatusCounts         map[domain.Status]int `json:"status_counts"`
	WorstStatus          domain.Status         `json:"worst_status"`
	PendingCheckIns      int                   `json:"pending_check_ins"`
	LastCheckInAt        *time.Time            `json:"last_check_in_at"`
	LastActivity         *string               `json:"last_activity"`
}

// OrganizationSummaryResponse is the admin dashboard.
type OrganizationSummaryResponse struct {
	OrganizationID       string                `json:"organization_id"`
	TeamCount            int                   `json:"team_count"`
	MemberCount          int                   `json:"member_count"`
	ObjectiveCount       int                   `json:"objective_count"`
	AverageProgress      int                   `json:"average_progress"`
	CompletedCount       int                   `json:"completed_count"`
	AtRiskBelowThreshold int                   `json:"at_risk_below_threshold"`
	AtRiskByStatus       int                   `json:"at_risk_by_status"`
	StatusCounts         map[domain.Status]int `json:"status_counts"`
	PendingCheckIns      int                   `json:"pending_check_ins"`
	Teams                []TeamSummaryResponse `json:"teams"`
}

// MemberSummaryResponse is the employee dashboard.
type MemberSummaryResponse struct {
	UserID              string        `json:"user_id"`
	AssignedKeyResults  int           `json:"assigned_key_results"`
	AveragePercent      int           `json:"average_percent"`
	DisplayPercent      int           `json:"display_percent"`
	CompletedKeyResults int           `json:"completed_key_results"`
	WorstStatus         domain.Status `json:"worst_status"`
	PendingCheckIns     int           `json:"pending_check_ins"`
	ApprovedCheckIns    int           `json:"approved_check_ins"`
	RejectedCheckIns    int           `json:"rejected_check_ins"`
	LastCheckInAt       *time.Time    `json:"last_check_in_at"`
	LastCheckIn         *string       `json:"last_check_in"`
	LastLogin           *string       `json:"last_login"`
}

// DashboardResponse carries the summary matching the caller's role.
type DashboardResponse struct {
	Role           string                       `json:"role"`
	Organization   *OrganizationSummaryResponse `json:"organization,omitempty"`
	Team           *TeamSummaryResponse         `json:"team,omitempty"`
	Member         *MemberSummaryResponse       `json:"member,omitempty"`
	RecentCheckIns []CheckInResponse            `json:"recent_check_ins"`
}
