package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/salim0986/okr-production-sub000/internal/domain"
)

type checkInRepository struct {
	db DBTX
}

const checkInColumns = `c.id, c.key_result_id, c.user_id, c.progress_value, c.comment, c.status, c.check_in_date, c.reviewed_by, c.reviewed_at, c.created_at`

func (r *checkInRepository) Create(ctx context.Context, checkIn *domain.CheckIn) error {
	const query = `
        INSERT INTO check_ins (key_result_id, user_id, progress_value, comment, status, check_in_date)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING id, created_at`
	return translate(r.db.QueryRow(ctx, query,
		checkIn.KeyResultID,
		checkIn.UserID,
		checkIn.ProgressValue,
		checkIn.Comment,
		checkIn.Status,
		checkIn.CheckInDate,
	).Scan(&checkIn.ID, &checkIn.CreatedAt))
}

func (r *checkInRepository) GetByID(ctx context.Context, id string) (*domain.CheckIn, error) {
	query := `SELECT ` + checkInColumns + ` FROM check_ins c WHERE c.id=$1`
	checkIn, err := scanCheckIn(r.db.QueryRow(ctx, query, id))
	if err != nil {
		return nil, translate(err)
	}
	return checkIn, nil
}

func (r *checkInRepository) List(ctx context.Context, filter CheckInFilter) ([]domain.CheckIn, error) {
	base := `SELECT ` + checkInColumns + `
        FROM check_ins c
        JOIN key_results kr ON kr.id = c.key_result_id
        JOIN objectives o ON o.id = kr.objective_id
        JOIN teams t ON t.id = o.team_id`
	var (
		args    []any
		clauses []string
	)
	add := func(expr string, value any) {
		args = append(args, value)
		clauses = append(clauses, fmt.Sprintf(expr, len(args)))
	}
	if filter.OrganizationID != nil {
		add("t.organization_id=$%d", *filter.OrganizationID)
	}
	if filter.TeamID != nil {
		add("o.team_id=$%d", *filter.TeamID)
	}
	if filter.KeyResultID != nil {
		add("c.key_result_id=$%d", *filter.KeyResultID)
	}
	if filter.UserID != nil {
		add("c.user_id=$%d", *filter.UserID)
	}
	if filter.Status != nil {
		add("c.status=$%d", *filter.Status)
	}

	query := base
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	limit, offset := normalizePage(filter.Limit, filter.Offset, 50)
	query += fmt.Sprintf(" ORDER BY c.check_in_date DESC, c.created_at DESC LIMIT %d OFFSET %d", limit, offset)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, translate(err)
	}
	defer rows.Close()

	var result []domain.CheckIn
	for rows.Next() {
		checkIn, err := scanCheckIn(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *checkIn)
	}
	return result, rows.Err()
}

func (r *checkInRepository) TransitionStatus(ctx context.Context, id string, from, to domain.CheckInStatus, reviewerID string, at time.Time) error {
	const query = `
        UPDATE check_ins SET status=$1, reviewed_by=$2, reviewed_at=$3
        WHERE id=$4 AND status=$5`
	tag, err := r.db.Exec(ctx, query, to, reviewerID, at, id, from)
	if err != nil {
		return translate(err)
	}
	if tag.RowsAffected() == 1 {
		return nil
	}
	var exists bool
	if err := r.db.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM check_ins WHERE id=$1)`, id).Scan(&exists); err != nil {
		return translate(err)
	}
	if !exists {
		return ErrNotFound
	}
	return ErrStaleState
}

func scanCheckIn(row pgx.Row) (*domain.CheckIn, error) {
	var checkIn domain.CheckIn
	if err := row.Scan(
		&checkIn.ID,
		&checkIn.KeyResultID,
		&checkIn.UserID,
		&checkIn.ProgressValue,
		&checkIn.Comment,
		&checkIn.Status,
		&checkIn.CheckInDate,
		&checkIn.ReviewedBy,
		&checkIn.ReviewedAt,
		&checkIn.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &checkIn, nil
}
