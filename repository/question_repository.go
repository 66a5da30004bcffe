package repository

import (
	"context"
	"errors"
	"fmt"

	"humboard/database"
	"humboard/models"
	"humboard/service"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// QuestionRepository implements the service.QuestionRepository interface
type QuestionRepository struct {
	q queryable
}

// NewQuestionRepository creates a new question repository
func NewQuestionRepository(db *database.DB) *QuestionRepository {
	return &QuestionRepository{q: db.Pool}
}

// newQuestionRepositoryWithTx creates a new question repository with a transaction
func newQuestionRepositoryWithTx(tx queryable) *QuestionRepository {
	return &QuestionRepository{q: tx}
}

const questionColumns = `id, user_id, title, content, category, hum_spent, is_closed, adopted_answer_id, created_at, updated_at`

func scanQuestion(row pgx.Row) (*models.Question, error) {
	var question models.Question
	err := row.Scan(
		&question.ID,
		&question.UserID,
		&question.Title,
		&question.Content,
		&question.Category,
		&question.HumSpent,
		&question.IsClosed,
		&question.AdoptedAnswerID,
		&question.CreatedAt,
		&question.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &question, nil
}

// Create creates a new question
func (r *QuestionRepository) Create(ctx context.Context, question *models.Question) error {
	query := `
		INSERT INTO questions (user_id, title, content, category, hum_spent)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, is_closed, created_at, updated_at
	`

	err := r.q.QueryRow(ctx, query,
		question.UserID,
		question.Title,
		question.Content,
		question.Category,
		question.HumSpent,
	).Scan(&question.ID, &question.IsClosed, &question.CreatedAt, &question.UpdatedAt)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			// The only foreign key here points at users
			return service.ErrUserNotFound
		}
		return fmt.Errorf("failed to create question for user %d: %w", question.UserID, err)
	}

	return nil
}

func (r *QuestionRepository) getByID(ctx context.Context, id int64, lockClause string) (*models.Question, error) {
	query := `SELECT ` + questionColumns + ` FROM questions WHERE id = $1` + lockClause

	question, err := scanQuestion(r.q.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get question %d: %w", id, err)
	}

	return question, nil
}

// GetByID retrieves a question by id
func (r *QuestionRepository) GetByID(ctx context.Context, id int64) (*models.Question, error) {
	return r.getByID(ctx, id, "")
}

// GetByIDForUpdate retrieves a question holding an exclusive row lock.
// Settlement takes this lock so a concurrent adoption or vote on the
// same question serializes behind it.
func (r *QuestionRepository) GetByIDForUpdate(ctx context.Context, id int64) (*models.Question, error) {
	return r.getByID(ctx, id, " FOR UPDATE")
}

// GetByIDForShare retrieves a question holding a shared row lock. Votes
// and answers take this lock so they either commit before a settlement
// snapshot or observe the closed flag it wrote.
func (r *QuestionRepository) GetByIDForShare(ctx context.Context, id int64) (*models.Question, error) {
	return r.getByID(ctx, id, " FOR SHARE")
}

// MarkClosed closes the question and records the adopted answer. The
// closed check and the write are one conditional UPDATE.
func (r *QuestionRepository) MarkClosed(ctx context.Context, questionID, answerID int64) error {
	query := `
		UPDATE questions
		SET is_closed = TRUE, adopted_answer_id = $2, updated_at = NOW()
		WHERE id = $1 AND is_closed = FALSE
	`

	result, err := r.q.Exec(ctx, query, questionID, answerID)
	if err != nil {
		return fmt.Errorf("failed to close question %d: %w", questionID, err)
	}

	if result.RowsAffected() == 0 {
		return service.ErrQuestionClosed
	}

	return nil
}
