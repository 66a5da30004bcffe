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

// AnswerRepository implements the service.AnswerRepository interface
type AnswerRepository struct {
	q queryable
}

// NewAnswerRepository creates a new answer repository
func NewAnswerRepository(db *database.DB) *AnswerRepository {
	return &AnswerRepository{q: db.Pool}
}

// newAnswerRepositoryWithTx creates a new answer repository with a transaction
func newAnswerRepositoryWithTx(tx queryable) *AnswerRepository {
	return &AnswerRepository{q: tx}
}

const answerColumns = `id, question_id, user_id, content, hum_spent, is_adopted, created_at`

func scanAnswer(row pgx.Row) (*models.Answer, error) {
	var answer models.Answer
	err := row.Scan(
		&answer.ID,
		&answer.QuestionID,
		&answer.UserID,
		&answer.Content,
		&answer.HumSpent,
		&answer.IsAdopted,
		&answer.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &answer, nil
}

// Create creates a new answer
func (r *AnswerRepository) Create(ctx context.Context, answer *models.Answer) error {
	query := `
		INSERT INTO answers (question_id, user_id, content, hum_spent)
		VALUES ($1, $2, $3, $4)
		RETURNING id, is_adopted, created_at
	`

	err := r.q.QueryRow(ctx, query,
		answer.QuestionID,
		answer.UserID,
		answer.Content,
		answer.HumSpent,
	).Scan(&answer.ID, &answer.IsAdopted, &answer.CreatedAt)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			// The question was already read under a shared lock, so a
			// foreign-key violation can only mean an unknown author
			return service.ErrUserNotFound
		}
		return fmt.Errorf("failed to create answer for question %d: %w", answer.QuestionID, err)
	}

	return nil
}

// GetByID retrieves an answer by id
func (r *AnswerRepository) GetByID(ctx context.Context, id int64) (*models.Answer, error) {
	query := `SELECT ` + answerColumns + ` FROM answers WHERE id = $1`

	answer, err := scanAnswer(r.q.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get answer %d: %w", id, err)
	}

	return answer, nil
}

// GetByQuestion returns all answers for a question, oldest first
func (r *AnswerRepository) GetByQuestion(ctx context.Context, questionID int64) ([]*models.Answer, error) {
	query := `SELECT ` + answerColumns + ` FROM answers WHERE question_id = $1 ORDER BY created_at ASC, id ASC`

	rows, err := r.q.Query(ctx, query, questionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get answers for question %d: %w", questionID, err)
	}
	defer rows.Close()

	var answers []*models.Answer
	for rows.Next() {
		answer, err := scanAnswer(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan answer: %w", err)
		}
		answers = append(answers, answer)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate answers: %w", err)
	}

	return answers, nil
}

// MarkAdopted flags the answer as adopted
func (r *AnswerRepository) MarkAdopted(ctx context.Context, answerID int64) error {
	query := `UPDATE answers SET is_adopted = TRUE WHERE id = $1`

	result, err := r.q.Exec(ctx, query, answerID)
	if err != nil {
		return fmt.Errorf("failed to mark answer %d adopted: %w", answerID, err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("answer %d not found", answerID)
	}

	return nil
}
