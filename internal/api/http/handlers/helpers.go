package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/salim0986/okr-production-sub000/internal/aggregate"
	"github.com/salim0986/okr-production-sub000/internal/api/dto"
	"github.com/salim0986/okr-production-sub000/internal/domain"
	"github.com/salim0986/okr-production-sub000/internal/service"
	"github.com/salim0986/okr-production-sub000/internal/workflow"
	apperrors "github.com/salim0986/okr-production-sub000/pkg/util"
)

// parseBody decodes the JSON body into req and validates it.
func parseBody(c *fiber.Ctx, req any) error {
	if err := c.BodyParser(req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	return dto.Validate(req)
}

func page(c *fiber.Ctx) (limit, offset int) {
	return c.QueryInt("limit", 0), c.QueryInt("offset", 0)
}

func optionalQuery(c *fiber.Ctx, key string) *string {
	if v := c.Query(key); v != "" {
		return &v
	}
	return nil
}

func userResponse(u *domain.User) dto.UserResponse {
	return dto.UserResponse{
		ID:             u.ID,
		Name:           u.Name,
		Email:          u.Email,
		Role:           string(u.Role),
		OrganizationID: u.OrganizationID,
		TeamID:         u.TeamID,
		IsDeleted:      u.IsDeleted,
		LastLogin:      u.LastLogin,
		CreatedAt:      u.CreatedAt,
		UpdatedAt:      u.UpdatedAt,
	}
}

func usersResponse(users []domain.User) []dto.UserResponse {
	out := make([]dto.UserResponse, 0, len(users))
	for i := range users {
		out = append(out, userResponse(&users[i]))
	}
	return out
}

func organizationResponse(o *domain.Organization) dto.OrganizationResponse {
	return dto.OrganizationResponse{ID: o.ID, Name: o.Name, CreatedBy: o.CreatedBy, CreatedAt: o.CreatedAt}
}

func teamResponse(t *domain.Team) dto.TeamResponse {
	return dto.TeamResponse{
		ID:             t.ID,
		OrganizationID: t.OrganizationID,
		Name:           t.Name,
		LeadID:         t.LeadID,
		CreatedAt:      t.CreatedAt,
		UpdatedAt:      t.UpdatedAt,
	}
}

func objectiveResponse(o *domain.Objective) dto.ObjectiveResponse {
	return dto.ObjectiveResponse{
		ID:             o.ID,
		TeamID:         o.TeamID,
		Title:          o.Title,
		Description:    o.Description,
		StartDate:      o.StartDate,
		EndDate:        o.EndDate,
		Progress:       o.Progress,
		DisplayPercent: aggregate.ClampPercent(o.Progress),
		Status:         o.Status,
		CreatedBy:      o.CreatedBy,
		CreatedAt:      o.CreatedAt,
		UpdatedAt:      o.UpdatedAt,
	}
}

func objectiveDetailResponse(d *service.ObjectiveDetail) dto.ObjectiveDetailResponse {
	out := dto.ObjectiveDetailResponse{
		ObjectiveResponse: objectiveResponse(&d.Objective),
		Percent:           d.Percent,
		WorstStatus:       d.WorstStatus,
		KeyResults:        make([]dto.KeyResultResponse, 0, len(d.KeyResults)),
	}
	for i := range d.KeyResults {
		out.KeyResults = append(out.KeyResults, keyResultResponse(&d.KeyResults[i].KeyResult))
	}
	return out
}

func keyResultResponse(kr *domain.KeyResult) dto.KeyResultResponse {
	pct := aggregate.KeyResultPercent(*kr)
	return dto.KeyResultResponse{
		ID:             kr.ID,
		ObjectiveID:    kr.ObjectiveID,
		Title:          kr.Title,
		TargetValue:    kr.TargetValue,
		CurrentValue:   kr.CurrentValue,
		Units:          kr.Units,
		AssignedTo:     kr.AssignedTo,
		StartDate:      kr.StartDate,
		EndDate:        kr.EndDate,
		Status:         kr.Status,
		Percent:        pct,
		DisplayPercent: aggregate.ClampPercent(pct),
		CreatedAt:      kr.CreatedAt,
		UpdatedAt:      kr.UpdatedAt,
	}
}

func checkInResponse(ci *domain.CheckIn) dto.CheckInResponse {
	return dto.CheckInResponse{
		ID:            ci.ID,
		KeyResultID:   ci.KeyResultID,
		UserID:        ci.UserID,
		ProgressValue: ci.ProgressValue,
		Comment:       ci.Comment,
		Status:        ci.Status,
		CheckInDate:   ci.CheckInDate,
		ReviewedBy:    ci.ReviewedBy,
		ReviewedAt:    ci.ReviewedAt,
		CreatedAt:     ci.CreatedAt,
	}
}

func checkInsResponse(checkIns []domain.CheckIn) []dto.CheckInResponse {
	out := make([]dto.CheckInResponse, 0, len(checkIns))
	for i := range checkIns {
		out = append(out, checkInResponse(&checkIns[i]))
	}
	return out
}

func reviewResponse(r *workflow.Review) dto.ReviewResponse {
	out := dto.ReviewResponse{CheckIn: checkInResponse(&r.CheckIn)}
	if r.KeyResult != nil {
		kr := keyResultResponse(r.KeyResult)
		out.KeyResult = &kr
	}
	if r.Objective != nil {
		o := objectiveResponse(r.Objective)
		out.Objective = &o
	}
	return out
}

func commentResponse(cm *domain.Comment) dto.CommentResponse {
	return dto.CommentResponse{
		ID:          cm.ID,
		KeyResultID: cm.KeyResultID,
		UserID:      cm.UserID,
		CommentText: cm.Text,
		CreatedAt:   cm.CreatedAt,
		UpdatedAt:   cm.UpdatedAt,
	}
}

func notificationResponse(n *domain.Notification) dto.NotificationResponse {
	return dto.NotificationResponse{
		ID:        n.ID,
		Title:     n.Title,
		Message:   n.Message,
		Type:      n.Type,
		IsRead:    n.IsRead,
		CreatedAt: n.CreatedAt,
	}
}

func teamSummaryResponse(s *aggregate.TeamSummary) dto.TeamSummaryResponse {
	return dto.TeamSummaryResponse{
		TeamID:               s.TeamID,
		TeamName:             s.TeamName,
		LeadID:               s.LeadID,
		MemberCount:          s.MemberCount,
		ObjectiveCount:       s.ObjectiveCount,
		AverageProgress:      s.AverageProgress,
		CompletedCount:       s.CompletedCount,
		AtRiskBelowThreshold: s.AtRiskBelowThreshold,
		AtRiskByStatus:       s.AtRiskByStatus,
		StatusCounts:         s.StatusCounts,
		WorstStatus:          s.WorstStatus,
		PendingCheckIns:      s.PendingCheckIns,
		LastCheckInAt:        s.LastCheckInAt,
		LastActivity:         s.LastActivity,
	}
}

func organizationSummaryResponse(s *aggregate.OrganizationSummary) dto.OrganizationSummaryResponse {
	out := dto.OrganizationSummaryResponse{
		OrganizationID:       s.OrganizationID,
		TeamCount:            s.TeamCount,
		MemberCount:          s.MemberCount,
		ObjectiveCount:       s.ObjectiveCount,
		AverageProgress:      s.AverageProgress,
		CompletedCount:       s.CompletedCount,
		AtRiskBelowThreshold: s.AtRiskBelowThreshold,
		AtRiskByStatus:       s.AtRiskByStatus,
		StatusCounts:         s.StatusCounts,
		PendingCheckIns:      s.PendingCheckIns,
		Teams:                make([]dto.TeamSummaryResponse, 0, len(s.Teams)),
	}
	for i := range s.Teams {
		out.Teams = append(out.Teams, teamSummaryResponse(&s.Teams[i]))
	}
	return out
}

func memberSummaryResponse(s *aggregate.MemberSummary) dto.MemberSummaryResponse {
	return dto.MemberSummaryResponse{
		UserID:              s.UserID,
		AssignedKeyResults:  s.AssignedKeyResults,
		AveragePercent:      s.AveragePercent,
		DisplayPercent:      aggregate.ClampPercent(s.AveragePercent),
		CompletedKeyResults: s.CompletedKeyResults,
		WorstStatus:         s.WorstStatus,
		PendingCheckIns:     s.PendingCheckIns,
		ApprovedCheckIns:    s.ApprovedCheckIns,
		RejectedCheckIns:    s.RejectedCheckIns,
		LastCheckInAt:       s.LastCheckInAt,
		LastCheckIn:         s.LastCheckIn,
		LastLogin:           s.LastLogin,
	}
}
