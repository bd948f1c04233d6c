package repository

import (
	"context"
	"errors"
	"time"

	"github.com/salim0986/okr-production-sub000/internal/domain"
)

var (
	// ErrNotFound reports a point lookup or targeted update that matched nothing.
	ErrNotFound = errors.New("record not found")
	// ErrStaleState reports a conditional update whose expected state no longer holds.
	ErrStaleState = errors.New("record state changed")
	// ErrDuplicate reports a unique constraint violation.
	ErrDuplicate = errors.New("duplicate record")
)

// Store bundles every repository behind one handle so a unit of work can be
// run against a transaction.
type Store interface {
	Organizations() OrganizationRepository
	Teams() TeamRepository
	Users() UserRepository
	Objectives() ObjectiveRepository
	KeyResults() KeyResultRepository
	CheckIns() CheckInRepository
	Comments() CommentRepository
	Notifications() NotificationRepository
	Ownership() OwnershipResolver
	// WithinTx runs fn against a transactional Store. Any error from fn, or a
	// failed commit, rolls every write inside fn back.
	WithinTx(ctx context.Context, fn func(tx Store) error) error
}

// OwnershipResolver walks a resource up to its organization in one logical call.
type OwnershipResolver interface {
	Resolve(ctx context.Context, ref domain.ResourceRef) (*domain.Ownership, error)
}

// OrganizationRepository persists organizations.
type OrganizationRepository interface {
	Create(ctx context.Context, org *domain.Organization) error
	Update(ctx context.Context, org *domain.Organization) error
	GetByID(ctx context.Context, id string) (*domain.Organization, error)
}

// TeamRepository persists teams.
type TeamRepository interface {
	Create(ctx context.Context, team *domain.Team) error
	Update(ctx context.Context, team *domain.Team) error
	GetByID(ctx context.Context, id string) (*domain.Team, error)
	Delete(ctx context.Context, id string) error
	ListByOrganization(ctx context.Context, organizationID string) ([]domain.Team, error)
	// SetLead overwrites the team's lead_id.
	SetLead(ctx context.Context, teamID string, leadID *string) error
	// ClearLeadership removes userID as lead from whichever team it leads.
	ClearLeadership(ctx context.Context, userID string) error
}

// UserFilter defines query params for user listing.
type UserFilter struct {
	OrganizationID string
	TeamID         *string
	// Unassigned restricts to users without a team.
	Unassigned     bool
	Role           *domain.Role
	IncludeDeleted bool
	Limit          int
	Offset         int
}

// UserRepository persists users.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	Update(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	List(ctx context.Context, filter UserFilter) ([]domain.User, error)
	SoftDelete(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
	TouchLastLogin(ctx context.Context, id string, at time.Time) error
}

// ObjectiveFilter defines query params for objective listing.
type ObjectiveFilter struct {
	OrganizationID string
	TeamID         *string
	Statuses       []domain.Status
	Limit          int
	Offset         int
}

// ObjectiveRepository persists objectives.
type ObjectiveRepository interface {
	Create(ctx context.Context, objective *domain.Objective) error
	Update(ctx context.Context, objective *domain.Objective) error
	GetByID(ctx context.Context, id string) (*domain.Objective, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filter ObjectiveFilter) ([]domain.Objective, error)
	// UpdateProgress stores recomputed aggregate values.
	UpdateProgress(ctx context.Context, id string, progress int, status domain.Status) error
}

// KeyResultRepository persists key results.
type KeyResultRepository interface {
	Create(ctx context.Context, kr *domain.KeyResult) error
	// Update writes every field except current_value, which only check-in
	// approval changes.
	Update(ctx context.Context, kr *domain.KeyResult) error
	GetByID(ctx context.Context, id string) (*domain.KeyResult, error)
	Delete(ctx context.Context, id string) error
	ListByObjective(ctx context.Context, objectiveID string) ([]domain.KeyResult, error)
	ListByAssignee(ctx context.Context, userID string) ([]domain.KeyResult, error)
	SetCurrentValue(ctx context.Context, id string, value float64) error
}

// CheckInFilter defines query params for check-in listing.
type CheckInFilter struct {
	OrganizationID *string
	TeamID         *string
	KeyResultID    *string
	UserID         *string
	Status         *domain.CheckInStatus
	Limit          int
	Offset         int
}

// CheckInRepository persists check-ins.
type CheckInRepository interface {
	Create(ctx context.Context, checkIn *domain.CheckIn) error
	GetByID(ctx context.Context, id string) (*domain.CheckIn, error)
	List(ctx context.Context, filter CheckInFilter) ([]domain.CheckIn, error)
	// TransitionStatus moves a check-in from one status to another only if it
	// is still in from. It returns ErrStaleState when another writer won.
	TransitionStatus(ctx context.Context, id string, from, to domain.CheckInStatus, reviewerID string, at time.Time) error
}

// CommentRepository persists comments.
type CommentRepository interface {
	Create(ctx context.Context, comment *domain.Comment) error
	Update(ctx context.Context, comment *domain.Comment) error
	GetByID(ctx context.Context, id string) (*domain.Comment, error)
	Delete(ctx context.Context, id string) error
	ListByKeyResult(ctx context.Context, keyResultID string) ([]domain.Comment, error)
}

// NotificationRepository persists notifications.
type NotificationRepository interface {
	Create(ctx context.Context, n *domain.Notification) error
	GetByID(ctx context.Context, id string) (*domain.Notification, error)
	ListByUser(ctx context.Context, userID string, unreadOnly bool, limit, offset int) ([]domain.Notification, error)
	MarkRead(ctx context.Context, id string) error
	MarkAllRead(ctx context.Context, userID string) (int64, error)
}

func normalizePage(limit, offset, defaultLimit int) (int, int) {
	if limit <= 0 {
		limit = defaultLimit
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

// Paginate applies normalized limit/offset to an in-memory slice.
func Paginate[T any](items []T, limit, offset, defaultLimit int) []T {
	limit, offset = normalizePage(limit, offset, defaultLimit)
	if offset >= len(items) {
		return []T{}
	}
	end := offset + limit
	if end > len(items) {
		end = len(items)
	}
	return items[offset:end]
}
