package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/salim0986/okr-production-sub000/internal/domain"
	"github.com/salim0986/okr-production-sub000/internal/events"
	"github.com/salim0986/okr-production-sub000/internal/policy"
	"github.com/salim0986/okr-production-sub000/internal/repository"
)

const commentPreviewLength = 80

// CommentService manages key result discussion threads.
type CommentService struct {
	store      repository.Store
	authz      *policy.Authorizer
	dispatcher events.Dispatcher
	logger     *zap.Logger
	now        func() time.Time
}

// NewCommentService constructs the service.
func NewCommentService(deps Dependencies) *CommentService {
	return &CommentService{
		store:      deps.Store,
		authz:      deps.authorizer(),
		dispatcher: deps.Dispatcher,
		logger:     deps.logger(),
		now:        deps.clock(),
	}
}

// Create adds a comment to a key result and notifies its assignee.
func (s *CommentService) Create(ctx context.Context, p domain.Principal, keyResultID, text string) (*domain.Comment, error) {
	text, err := requireText("comment_text", text)
	if err != nil {
		return nil, err
	}
	owner, err := s.authz.Check(ctx, p, policy.ActionComment, domain.Ref(domain.ResourceKeyResult, keyResultID))
	if err != nil {
		return nil, err
	}
	kr, err := s.store.KeyResults().GetByID(ctx, keyResultID)
	if err != nil {
		return nil, repository.MapError(err, domain.ResourceKeyResult, keyResultID)
	}
	comment := &domain.Comment{KeyResultID: keyResultID, UserID: p.ID, Text: text}
	if err := s.store.Comments().Create(ctx, comment); err != nil {
		return nil, repository.MapError(err, domain.ResourceComment, "")
	}

	publishEvent(ctx, s.dispatcher, s.now, events.Event{
		Type:           events.EventCommentAdded,
		OrganizationID: owner.OrganizationID,
		SubjectID:      comment.ID,
		ActorID:        p.ID,
		Payload: events.CommentAddedPayload{
			CommentID:      comment.ID,
			KeyResultID:    kr.ID,
			KeyResultTitle: kr.Title,
			AuthorID:       p.ID,
			AssigneeID:     kr.AssignedTo,
			Preview:        preview(text, commentPreviewLength),
		},
	})
	return comment, nil
}

// List returns a key result's comments, oldest first.
func (s *CommentService) List(ctx context.Context, p domain.Principal, keyResultID string) ([]domain.Comment, error) {
	if err := s.authz.Authorize(ctx, p, policy.ActionRead, domain.Ref(domain.ResourceKeyResult, keyResultID)); err != nil {
		return nil, err
	}
	comments, err := s.store.Comments().ListByKeyResult(ctx, keyResultID)
	if err != nil {
		return nil, repository.MapError(err, domain.ResourceComment, "")
	}
	return comments, nil
}

// Update edits a comment. Only its author may do so.
func (s *CommentService) Update(ctx context.Context, p domain.Principal, id, text string) (*domain.Comment, error) {
	text, err := requireText("comment_text", text)
	if err != nil {
		return nil, err
	}
	if err := s.authz.Authorize(ctx, p, policy.ActionUpdate, domain.Ref(domain.ResourceComment, id)); err != nil {
		return nil, err
	}
	var comment *domain.Comment
	err = s.store.WithinTx(ctx, func(tx repository.Store) error {
		var err error
		comment, err = tx.Comments().GetByID(ctx, id)
		if err != nil {
			return err
		}
		comment.Text = text
		return tx.Comments().Update(ctx, comment)
	})
	if err != nil {
		return nil, repository.MapError(err, domain.ResourceComment, id)
	}
	return comment, nil
}

// Delete removes a comment. Its author or an admin may do so.
func (s *CommentService) Delete(ctx context.Context, p domain.Principal, id string) error {
	if err := s.authz.Authorize(ctx, p, policy.ActionDelete, domain.Ref(domain.ResourceComment, id)); err != nil {
		return err
	}
	if err := s.store.Comments().Delete(ctx, id); err != nil {
		return repository.MapError(err, domain.ResourceComment, id)
	}
	s.logger.Info("comment deleted", zap.String("comment_id", id), zap.String("actor_id", p.ID))
	return nil
}
