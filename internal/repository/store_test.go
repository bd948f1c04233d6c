package repository

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

func TestTranslate_NoRowsIsNotFound(t *testing.T) {
	if err := translate(fmt.Errorf("scan: %w", pgx.ErrNoRows)); !errors.Is(err, ErrNotFound) {
		t.Errorf("translate = %v, want ErrNotFound", err)
	}
}

func TestTranslate_MalformedUUIDIsNotFound(t *testing.T) {
	err := translate(&pgconn.PgError{Code: "22P02", Message: `invalid input syntax for type uuid: "abc"`})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("translate = %v, want ErrNotFound", err)
	}
}

func TestTranslate_UniqueViolationIsDuplicate(t *testing.T) {
	err := translate(&pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"})
	if !errors.Is(err, ErrDuplicate) {
		t.Errorf("translate = %v, want ErrDuplicate", err)
	}
}

func TestTranslate_OtherErrorsPassThrough(t *testing.T) {
	cause := &pgconn.PgError{Code: "40001"}
	if err := translate(cause); err != cause {
		t.Errorf("translate = %v, want the original error", err)
	}
}
