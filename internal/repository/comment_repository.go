package repository

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/salim0986/okr-production-sub000/internal/domain"
)

type commentRepository struct {
	db DBTX
}

const commentColumns = `id, key_result_id, user_id, text, created_at, updated_at`

func (r *commentRepository) Create(ctx context.Context, comment *domain.Comment) error {
	const query = `
        INSERT INTO comments (key_result_id, user_id, text)
        VALUES ($1,$2,$3)
        RETURNING id, created_at, updated_at`
	return translate(r.db.QueryRow(ctx, query,
		comment.KeyResultID,
		comment.UserID,
		comment.Text,
	).Scan(&comment.ID, &comment.CreatedAt, &comment.UpdatedAt))
}

func (r *commentRepository) Update(ctx context.Context, comment *domain.Comment) error {
	const query = `UPDATE comments SET text=$1, updated_at=NOW() WHERE id=$2 RETURNING updated_at`
	return translate(r.db.QueryRow(ctx, query, comment.Text, comment.ID).Scan(&comment.UpdatedAt))
}

func (r *commentRepository) GetByID(ctx context.Context, id string) (*domain.Comment, error) {
	query := `SELECT ` + commentColumns + ` FROM comments WHERE id=$1`
	comment, err := scanComment(r.db.QueryRow(ctx, query, id))
	if err != nil {
		return nil, translate(err)
	}
	return comment, nil
}

func (r *commentRepository) Delete(ctx context.Context, id string) error {
	return expectOne(r.db.Exec(ctx, `DELETE FROM comments WHERE id=$1`, id))
}

func (r *commentRepository) ListByKeyResult(ctx context.Context, keyResultID string) ([]domain.Comment, error) {
	query := `SELECT ` + commentColumns + ` FROM comments WHERE key_result_id=$1 ORDER BY created_at ASC`
	rows, err := r.db.Query(ctx, query, keyResultID)
	if err != nil {
		return nil, translate(err)
	}
	defer rows.Close()

	var result []domain.Comment
	for rows.Next() {
		comment, err := scanComment(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *comment)
	}
	return result, rows.Err()
}

func scanComment(row pgx.Row) (*domain.Comment, error) {
	var comment domain.Comment
	if err := row.Scan(
		&comment.ID,
		&comment.KeyResultID,
		&comment.UserID,
		&comment.Text,
		&comment.CreatedAt,
		&comment.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &comment, nil
}
