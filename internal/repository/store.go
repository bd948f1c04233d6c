package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DBTX is satisfied by both *pgxpool.Pool and pgx.Tx so every repository
// can run inside or outside a transaction.
type DBTX interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

type postgresStore struct {
	db DBTX
}

// NewPostgresStore returns a Store backed by the pgx pool.
func NewPostgresStore(pool *pgxpool.Pool) Store {
	return &postgresStore{db: pool}
}

func (s *postgresStore) Organizations() OrganizationRepository {
	return &organizationRepository{db: s.db}
}

func (s *postgresStore) Teams() TeamRepository {
	return &teamRepository{db: s.db}
}

func (s *postgresStore) Users() UserRepository {
	return &userRepository{db: s.db}
}

func (s *postgresStore) Objectives() ObjectiveRepository {
	return &objectiveRepository{db: s.db}
}

func (s *postgresStore) KeyResults() KeyResultRepository {
	return &keyResultRepository{db: s.db}
}

func (s *postgresStore) CheckIns() CheckInRepository {
	return &checkInRepository{db: s.db}
}

func (s *postgresStore) Comments() CommentRepository {
	return &commentRepository{db: s.db}
}

func (s *postgresStore) Notifications() NotificationRepository {
	return &notificationRepository{db: s.db}
}

func (s *postgresStore) Ownership() OwnershipResolver {
	return &ownershipResolver{db: s.db}
}

// WithinTx begins a transaction (a savepoint when already inside one) and
// commits it only if fn succeeds.
func (s *postgresStore) WithinTx(ctx context.Context, fn func(tx Store) error) error {
	return pgx.BeginFunc(ctx, s.db, func(tx pgx.Tx) error {
		return fn(&postgresStore{db: tx})
	})
}

const (
	uniqueViolation           = "23505"
	invalidTextRepresentation = "22P02"
)

// translate maps driver errors onto the package sentinels.
func translate(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case uniqueViolation:
			return fmt.Errorf("%w: %s", ErrDuplicate, pgErr.ConstraintName)
		case invalidTextRepresentation:
			// a malformed uuid matches no row
			return ErrNotFound
		}
	}
	return err
}

func expectOne(tag pgconn.CommandTag, err error) error {
	if err != nil {
		return translate(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
