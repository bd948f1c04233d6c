package repository

import (
	"errors"

	"github.com/salim0986/okr-production-sub000/internal/domain"
	apperrors "github.com/salim0986/okr-production-sub000/pkg/util"
)

// MapError converts store sentinels into domain errors for the record kind
// and id that was being accessed. Domain errors pass through unchanged.
func MapError(err error, kind domain.ResourceKind, id string) error {
	if err == nil {
		return nil
	}
	var domainErr *apperrors.DomainError
	switch {
	case errors.As(err, &domainErr):
		return err
	case errors.Is(err, ErrNotFound):
		return apperrors.NewNotFound(string(kind), map[string]any{"id": id})
	case errors.Is(err, ErrStaleState):
		return apperrors.NewConflict(string(kind)+" was modified concurrently", map[string]any{"id": id})
	case errors.Is(err, ErrDuplicate):
		return apperrors.NewConflict(string(kind)+" already exists", map[string]any{"constraint": err.Error()})
	default:
		return apperrors.NewStorageFailure(err)
	}
}
