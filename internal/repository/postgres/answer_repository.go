package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/blindmatch/backend/internal/domain"
	"github.com/blindmatch/backend/internal/repository"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

type answerRepository struct {
	db *sqlx.DB
}

func NewAnswerRepository(db *sqlx.DB) repository.AnswerRepository {
	return &answerRepository{db: db}
}

func (r *answerRepository) Create(ctx context.Context, answer *domain.Answer) error {
	query := `
		INSERT INTO answers (user_id, question, answer, category)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`
	return r.db.QueryRowContext(ctx, query,
		answer.UserID, answer.Question, answer.Answer, answer.Category,
	).Scan(&answer.ID, &answer.CreatedAt)
}

func (r *answerRepository) ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]*domain.Answer, error) {
	var answers []*domain.Answer
	query := `SELECT * FROM answers WHERE user_id = $1 ORDER BY created_at DESC LIMIT $2`
	err := r.db.SelectContext(ctx, &answers, query, userID, limit)
	return answers, err
}

func (r *answerRepository) ListByUserCategory(ctx context.Context, userID uuid.UUID, category string) ([]*domain.Answer, error) {
	var answers []*domain.Answer
	query := `SELECT * FROM answers WHERE user_id = $1 AND category = $2 ORDER BY created_at`
	err := r.db.SelectContext(ctx, &answers, query, userID, category)
	return answers, err
}

type vectorRepository struct {
	db *sqlx.DB
}

func NewVectorRepository(db *sqlx.DB) repository.VectorRepository {
	return &vectorRepository{db: db}
}

func (r *vectorRepository) Upsert(ctx context.Context, vector *domain.EmbeddingVector) error {
	query := `
		INSERT INTO user_vectors (user_id, embedding, summary)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id) DO UPDATE SET
			embedding = EXCLUDED.embedding,
			summary = EXCLUDED.summary,
			updated_at = CURRENT_TIMESTAMP
		RETURNING id, updated_at
	`
	return r.db.QueryRowContext(ctx, query,
		vector.UserID, pq.Array(vector.Embedding), vector.Summary,
	).Scan(&vector.ID, &vector.UpdatedAt)
}

func (r *vectorRepository) GetByUserID(ctx context.Context, userID uuid.UUID) (*domain.EmbeddingVector, error) {
	var vector domain.EmbeddingVector
	query := `SELECT id, user_id, embedding, summary, updated_at FROM user_vectors WHERE user_id = $1`
	err := r.db.QueryRowContext(ctx, query, userID).Scan(
		&vector.ID, &vector.UserID, pq.Array(&vector.Embedding), &vector.Summary, &vector.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrVectorNotFound
		}
		return nil, err
	}
	return &vector, nil
}
