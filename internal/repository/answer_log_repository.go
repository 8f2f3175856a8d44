package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stemsi/cybertest-backend/internal/model"
)

// AnswerLogRepository persists answer events drained from the answer queue.
type AnswerLogRepository struct {
	pool *pgxpool.Pool
}

// NewAnswerLogRepository creates a new AnswerLogRepository.
func NewAnswerLogRepository(pool *pgxpool.Pool) *AnswerLogRepository {
	return &AnswerLogRepository{pool: pool}
}

// Insert appends one answer event.
func (r *AnswerLogRepository) Insert(ctx context.Context, e *model.AnswerLogEntry) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO exam_answer_log (session_token, question_id, answer, result, answered_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		e.SessionToken, e.QuestionID, e.Answer, string(e.Result), e.AnsweredAt,
	)
	return err
}

// CountBySession returns how many answer events were logged for a session.
func (r *AnswerLogRepository) CountBySession(ctx context.Context, sessionToken string) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM exam_answer_log WHERE session_token = $1`, sessionToken,
	).Scan(&n)
	return n, err
}
