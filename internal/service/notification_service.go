package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/salim0986/okr-production-sub000/internal/domain"
	"github.com/salim0986/okr-production-sub000/internal/events"
	"github.com/salim0986/okr-production-sub000/internal/policy"
	"github.com/salim0986/okr-production-sub000/internal/repository"
)

// Publisher pushes a payload on a named channel.
type Publisher interface {
	Publish(ctx context.Context, channel string, payload []byte) error
}

// NotificationService turns domain events into per-user notifications and
// serves the notification inbox.
type NotificationService struct {
	store         repository.Store
	authz         *policy.Authorizer
	dispatcher    events.Dispatcher
	publisher     Publisher
	channelPrefix string
	logger        *zap.Logger
	now           func() time.Time
}

// NewNotificationService creates the service. publisher may be nil, in which
// case notifications are only stored.
func NewNotificationService(deps Dependencies, publisher Publisher, channelPrefix string) *NotificationService {
	if channelPrefix == "" {
		channelPrefix = "notifications"
	}
	return &NotificationService{
		store:         deps.Store,
		authz:         deps.authorizer(),
		dispatcher:    deps.Dispatcher,
		publisher:     publisher,
		channelPrefix: channelPrefix,
		logger:        deps.logger(),
		now:           deps.clock(),
	}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventCheckInSubmitted, n.handleCheckInSubmitted)
	n.dispatcher.Subscribe(events.EventCheckInApproved, n.handleCheckInReviewed)
	n.dispatcher.Subscribe(events.EventCheckInRejected, n.handleCheckInReviewed)
	n.dispatcher.Subscribe(events.EventKeyResultAssigned, n.handleKeyResultAssigned)
	n.dispatcher.Subscribe(events.EventCommentAdded, n.handleCommentAdded)
	n.dispatcher.Subscribe(events.EventTeamLeadAssigned, n.handleTeamLeadAssigned)
}

func (n *NotificationService) handleCheckInSubmitted(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.CheckInSubmittedPayload)
	if !ok {
		return fmt.Errorf("unexpected payload %T for %s", event.Payload, event.Type)
	}
	teamID := payload.TeamID
	if teamID == nil {
		owner, err := n.authz.Check(ctx, domain.SystemPrincipal(), policy.ActionRead, domain.Ref(domain.ResourceKeyResult, payload.KeyResultID))
		if err != nil {
			return err
		}
		teamID = owner.TeamID
	}
	if teamID == nil {
		return nil
	}
	team, err := n.store.Teams().GetByID(ctx, *teamID)
	if err != nil {
		return repository.MapError(err, domain.ResourceTeam, *teamID)
	}
	if team.LeadID == nil {
		return nil
	}
	return n.notify(ctx, event, *team.LeadID, domain.NotificationCheckInSubmitted,
		"New check-in to review",
		fmt.Sprintf("A check-in of %g was submitted for %q.", payload.ProgressValue, payload.KeyResultTitle))
}

func (n *NotificationService) handleCheckInReviewed(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.CheckInReviewedPayload)
	if !ok {
		return fmt.Errorf("unexpected payload %T for %s", event.Payload, event.Type)
	}
	kind, title := domain.NotificationCheckInApproved, "Check-in approved"
	if payload.Status == domain.CheckInRejected {
		kind, title = domain.NotificationCheckInRejected, "Check-in rejected"
	}
	return n.notify(ctx, event, payload.SubmitterID, kind, title,
		fmt.Sprintf("Your check-in of %g for %q was %s.", payload.ProgressValue, payload.KeyResultTitle, payload.Status))
}

func (n *NotificationService) handleKeyResultAssigned(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.KeyResultAssignedPayload)
	if !ok {
		return fmt.Errorf("unexpected payload %T for %s", event.Payload, event.Type)
	}
	return n.notify(ctx, event, payload.AssigneeID, domain.NotificationKeyResultAssign,
		"Key result assigned",
		fmt.Sprintf("You are now responsible for %q.", payload.Title))
}

func (n *NotificationService) handleCommentAdded(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.CommentAddedPayload)
	if !ok {
		return fmt.Errorf("unexpected payload %T for %s", event.Payload, event.Type)
	}
	if payload.AssigneeID == nil {
		return nil
	}
	return n.notify(ctx, event, *payload.AssigneeID, domain.NotificationCommentAdded,
		"New comment",
		fmt.Sprintf("New comment on %q: %s", payload.KeyResultTitle, payload.Preview))
}

func (n *NotificationService) handleTeamLeadAssigned(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.TeamLeadAssignedPayload)
	if !ok {
		return fmt.Errorf("unexpected payload %T for %s", event.Payload, event.Type)
	}
	return n.notify(ctx, event, payload.LeadID, domain.NotificationTeamLeadAssigned,
		"Team lead assignment",
		fmt.Sprintf("You now lead the team %q.", payload.TeamName))
}

// notify stores a notification for recipient and pushes it on the
// recipient's channel. Actors are never notified of their own actions;
// deactivated recipients and recipients outside the event's organization are
// skipped.
func (n *NotificationService) notify(ctx context.Context, event events.Event, recipient string, kind domain.NotificationType, title, message string) error {
	if recipient == "" || recipient == event.ActorID {
		return nil
	}
	owner, err := n.authz.Check(ctx, domain.SystemPrincipal(), policy.ActionRead, domain.Ref(domain.ResourceUser, recipient))
	if err != nil {
		return err
	}
	if event.OrganizationID != "" && owner.OrganizationID != event.OrganizationID {
		n.logger.Warn("notification recipient outside event organization",
			zap.String("event_id", event.ID),
			zap.String("recipient_id", recipient))
		return nil
	}
	user, err := n.store.Users().GetByID(ctx, recipient)
	if err != nil {
		return repository.MapError(err, domain.ResourceUser, recipient)
	}
	if user.IsDeleted {
		n.logger.Debug("notification recipient deactivated",
			zap.String("event_id", event.ID),
			zap.String("recipient_id", recipient))
		return nil
	}

	notification := &domain.Notification{
		UserID:  recipient,
		Title:   title,
		Message: message,
		Type:    kind,
	}
	if err := n.store.Notifications().Create(ctx, notification); err != nil {
		return repository.MapError(err, domain.ResourceNotification, "")
	}
	n.logger.Debug("notification stored",
		zap.String("notification_id", notification.ID),
		zap.String("recipient_id", recipient),
		zap.String("event_type", string(event.Type)))
	n.push(ctx, notification)
	return nil
}

type pushMessage struct {
	ID        string                  `json:"id"`
	Type      domain.NotificationType `json:"type"`
	Title     string                  `json:"title"`
	Message   string                  `json:"message"`
	CreatedAt time.Time               `json:"created_at"`
}

func (n *NotificationService) push(ctx context.Context, notification *domain.Notification) {
	if n.publisher == nil {
		return
	}
	body, err := json.Marshal(pushMessage{
		ID:        notification.ID,
		Type:      notification.Type,
		Title:     notification.Title,
		Message:   notification.Message,
		CreatedAt: notification.CreatedAt,
	})
	if err != nil {
		n.logger.Warn("encode notification", zap.Error(err))
		return
	}
	channel := n.Channel(notification.UserID)
	if err := n.publisher.Publish(ctx, channel, body); err != nil {
		n.logger.Warn("notification push failed",
			zap.String("channel", channel),
			zap.String("notification_id", notification.ID),
			zap.Error(err))
	}
}

// Channel names the push channel of a user.
func (n *NotificationService) Channel(userID string) string {
	return n.channelPrefix + ":" + userID
}

// List returns the caller's notifications, newest first.
func (n *NotificationService) List(ctx context.Context, p domain.Principal, unreadOnly bool, limit, offset int) ([]domain.Notification, error) {
	notifications, err := n.store.Notifications().ListByUser(ctx, p.ID, unreadOnly, limit, offset)
	if err != nil {
		return nil, repository.MapError(err, domain.ResourceNotification, "")
	}
	return notifications, nil
}

// MarkRead marks one of the caller's notifications as read.
func (n *NotificationService) MarkRead(ctx context.Context, p domain.Principal, id string) error {
	if err := n.authz.Authorize(ctx, p, policy.ActionUpdate, domain.Ref(domain.ResourceNotification, id)); err != nil {
		return err
	}
	if err := n.store.Notifications().MarkRead(ctx, id); err != nil {
		return repository.MapError(err, domain.ResourceNotification, id)
	}
	return nil
}

// MarkAllRead marks every notification of the caller as read and returns how
// many changed.
func (n *NotificationService) MarkAllRead(ctx context.Context, p domain.Principal) (int64, error) {
	count, err := n.store.Notifications().MarkAllRead(ctx, p.ID)
	if err != nil {
		return 0, repository.MapError(err, domain.ResourceNotification, "")
	}
	return count, nil
}
