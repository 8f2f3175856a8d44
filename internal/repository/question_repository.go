package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stemsi/cybertest-backend/internal/model"
)

// ErrNotFound is returned when a lookup by ID matches no row.
var ErrNotFound = errors.New("record not found")

const questionColumns = `id, version, question, options, correct, topic`

// dbtx is satisfied by both *pgxpool.Pool and pgx.Tx.
type dbtx interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	CopyFrom(ctx context.Context, table pgx.Identifier, columns []string, src pgx.CopyFromSource) (int64, error)
}

// BulkWriter is the part of the question store a bulk import runs inside one transaction.
type BulkWriter interface {
	ListTextsByVersion(ctx context.Context, version string) ([]string, error)
	DeleteByVersion(ctx context.Context, version string) (int64, error)
	CreateMany(ctx context.Context, questions []model.Question) (int64, error)
}

// QuestionRepository handles question data access.
type QuestionRepository struct {
	pool *pgxpool.Pool
	db   dbtx
}

// NewQuestionRepository creates a new QuestionRepository.
func NewQuestionRepository(pool *pgxpool.Pool) *QuestionRepository {
	return &QuestionRepository{pool: pool, db: pool}
}

// WithBulkTx runs fn against a writer bound to a single transaction. The transaction
// commits when fn returns nil and rolls back otherwise.
func (r *QuestionRepository) WithBulkTx(ctx context.Context, fn func(BulkWriter) error) error {
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(&QuestionRepository{db: tx})
	})
}

// GetByID retrieves a question by its identifier.
func (r *QuestionRepository) GetByID(ctx context.Context, id string) (*model.Question, error) {
	q := &model.Question{}
	err := r.db.QueryRow(ctx,
		`SELECT `+questionColumns+` FROM questions WHERE id = $1`, id,
	).Scan(&q.ID, &q.Version, &q.Text, &q.Options, &q.Correct, &q.Topic)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return q, nil
}

// ExistsByVersionAndText reports whether a question with the exact text exists in the version.
// A non-empty excludingID removes that question from the match (edit path).
func (r *QuestionRepository) ExistsByVersionAndText(ctx context.Context, version, text, excludingID string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS (
			SELECT 1 FROM questions
			WHERE version = $1 AND question = $2 AND ($3 = '' OR id <> $3)
		)`, version, text, excludingID,
	).Scan(&exists)
	return exists, err
}

// Sample draws up to count questions uniformly at random without replacement.
// An empty versions slice applies no version filter.
func (r *QuestionRepository) Sample(ctx context.Context, versions []string, count int) ([]model.Question, error) {
	if versions == nil {
		versions = []string{}
	}
	rows, err := r.db.Query(ctx,
		`SELECT `+questionColumns+`
		 FROM questions
		 WHERE cardinality($1::text[]) = 0 OR version = ANY($1::text[])
		 ORDER BY random()
		 LIMIT $2`, versions, count,
	)
	if err != nil {
		return nil, err
	}
	return scanQuestions(rows)
}

// List retrieves questions ordered by version (newest first), capped at limit.
func (r *QuestionRepository) List(ctx context.Context, limit int) ([]model.Question, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+questionColumns+`
		 FROM questions
		 ORDER BY version DESC, created_at
		 LIMIT $1`, limit,
	)
	if err != nil {
		return nil, err
	}
	return scanQuestions(rows)
}

// ListTextsByVersion returns every question text stored for a version.
func (r *QuestionRepository) ListTextsByVersion(ctx context.Context, version string) ([]string, error) {
	rows, err := r.db.Query(ctx, `SELECT question FROM questions WHERE version = $1`, version)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var texts []string
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, err
		}
		texts = append(texts, t)
	}
	return texts, rows.Err()
}

// Create inserts a new question. The caller assigns the ID.
func (r *QuestionRepository) Create(ctx context.Context, q *model.Question) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO questions (id, version, question, options, correct, topic)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		q.ID, q.Version, q.Text, q.Options, q.Correct, q.Topic,
	)
	return err
}

// CreateMany bulk inserts questions using COPY.
func (r *QuestionRepository) CreateMany(ctx context.Context, questions []model.Question) (int64, error) {
	rows := make([][]any, len(questions))
	for i, q := range questions {
		rows[i] = []any{q.ID, q.Version, q.Text, q.Options, q.Correct, q.Topic}
	}
	return r.db.CopyFrom(ctx,
		pgx.Identifier{"questions"},
		[]string{"id", "version", "question", "options", "correct", "topic"},
		pgx.CopyFromRows(rows),
	)
}

// Update overwrites every mutable field of a question.
func (r *QuestionRepository) Update(ctx context.Context, q *model.Question) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE questions
		 SET version = $2, question = $3, options = $4, correct = $5, topic = $6, updated_at = NOW()
		 WHERE id = $1`,
		q.ID, q.Version, q.Text, q.Options, q.Correct, q.Topic,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a question by ID.
func (r *QuestionRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM questions WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteByVersion removes every question of a version and returns how many were deleted.
func (r *QuestionRepository) DeleteByVersion(ctx context.Context, version string) (int64, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM questions WHERE version = $1`, version)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func scanQuestions(rows pgx.Rows) ([]model.Question, error) {
	defer rows.Close()

	var questions []model.Question
	for rows.Next() {
		var q model.Question
		if err := rows.Scan(&q.ID, &q.Version, &q.Text, &q.Options, &q.Correct, &q.Topic); err != nil {
			return nil, err
		}
		questions = append(questions, q)
	}
	return questions, rows.Err()
}
