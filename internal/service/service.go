package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/salim0986/okr-production-sub000/internal/domain"
	"github.com/salim0986/okr-production-sub000/internal/events"
	"github.com/salim0986/okr-production-sub000/internal/policy"
	"github.com/salim0986/okr-production-sub000/internal/repository"
	apperrors "github.com/salim0986/okr-production-sub000/pkg/util"
)

// summaryLimit bounds list queries that feed aggregation.
const summaryLimit = 10000

// Dependencies bundles collaborators shared by the application services.
type Dependencies struct {
	Store      repository.Store
	Authorizer *policy.Authorizer
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
	Clock      func() time.Time
}

func (d Dependencies) logger() *zap.Logger {
	if d.Logger == nil {
		return zap.NewNop()
	}
	return d.Logger
}

func (d Dependencies) clock() func() time.Time {
	if d.Clock == nil {
		return func() time.Time { return time.Now().UTC() }
	}
	return d.Clock
}

func (d Dependencies) authorizer() *policy.Authorizer {
	if d.Authorizer == nil {
		return policy.NewAuthorizer(d.Store.Ownership(), d.Logger)
	}
	return d.Authorizer
}

func publishEvent(ctx context.Context, dispatcher events.Dispatcher, now func() time.Time, event events.Event) {
	if dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = now()
	}
	_ = dispatcher.Publish(ctx, event)
}

func requireText(field, value string) (string, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return "", apperrors.NewValidationError(field+" is required", map[string]any{"field": field})
	}
	return trimmed, nil
}

// scopedTeam returns the team filter for list queries. empty is true when a
// restricted principal has no team and must see nothing.
func scopedTeam(p domain.Principal, requested *string) (teamID *string, empty bool, err error) {
	scope, restricted := policy.ListScope(p)
	if !restricted {
		return requested, false, nil
	}
	if scope == nil {
		return nil, true, nil
	}
	if requested != nil && *requested != *scope {
		return nil, false, apperrors.NewForbidden("resource belongs to another team")
	}
	return scope, false, nil
}

func preview(body string, max int) string {
	body = strings.TrimSpace(body)
	runes := []rune(body)
	if len(runes) <= max {
		return body
	}
	return string(runes[:max]) + "..."
}
