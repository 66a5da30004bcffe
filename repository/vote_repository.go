package repository

import (
	"context"
	"errors"
	"fmt"

	"humboard/database"
	"humboard/models"
	"humboard/service"

	"github.com/jackc/pgx/v5/pgconn"
)

// VoteRepository implements the service.VoteRepository interface
type VoteRepository struct {
	q queryable
}

// NewVoteRepository creates a new vote repository
func NewVoteRepository(db *database.DB) *VoteRepository {
	return &VoteRepository{q: db.Pool}
}

// newVoteRepositoryWithTx creates a new vote repository with a transaction
func newVoteRepositoryWithTx(tx queryable) *VoteRepository {
	return &VoteRepository{q: tx}
}

// Create records a vote. The unique index on (answer_id, voter_id)
// enforces one vote per voter per answer even under concurrent inserts.
func (r *VoteRepository) Create(ctx context.Context, vote *models.Vote) error {
	query := `
		INSERT INTO votes (answer_id, voter_id, hum_spent)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`

	err := r.q.QueryRow(ctx, query,
		vote.AnswerID,
		vote.VoterID,
		vote.HumSpent,
	).Scan(&vote.ID, &vote.CreatedAt)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch pgErr.Code {
			case "23505":
				return service.ErrAlreadyVoted
			case "23503":
				// The answer was already fetched, so a foreign-key
				// violation can only mean an unknown voter
				return service.ErrUserNotFound
			}
		}
		return fmt.Errorf("failed to create vote for answer %d: %w", vote.AnswerID, err)
	}

	return nil
}

// GetByAnswer returns all votes for an answer, oldest first
func (r *VoteRepository) GetByAnswer(ctx context.Context, answerID int64) ([]*models.Vote, error) {
	query := `
		SELECT id, answer_id, voter_id, hum_spent, created_at
		FROM votes
		WHERE answer_id = $1
		ORDER BY created_at ASC, id ASC
	`

	rows, err := r.q.Query(ctx, query, answerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get votes for answer %d: %w", answerID, err)
	}
	defer rows.Close()

	var votes []*models.Vote
	for rows.Next() {
		var vote models.Vote
		err := rows.Scan(
			&vote.ID,
			&vote.AnswerID,
			&vote.VoterID,
			&vote.HumSpent,
			&vote.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan vote: %w", err)
		}
		votes = append(votes, &vote)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate votes: %w", err)
	}

	return votes, nil
}

// TotalStake returns the sum of hum_spent across the answer's votes
func (r *VoteRepository) TotalStake(ctx context.Context, answerID int64) (int64, error) {
	query := `SELECT COALESCE(SUM(hum_spent), 0) FROM votes WHERE answer_id = $1`

	var total int64
	if err := r.q.QueryRow(ctx, query, answerID).Scan(&total); err != nil {
		return 0, fmt.Errorf("failed to total stake for answer %d: %w", answerID, err)
	}

	return total, nil
}
