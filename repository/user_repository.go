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

// UserRepository implements the service.UserRepository interface
type UserRepository struct {
	q queryable
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *database.DB) *UserRepository {
	return &UserRepository{q: db.Pool}
}

// newUserRepositoryWithTx creates a new user repository with a transaction
func newUserRepositoryWithTx(tx queryable) *UserRepository {
	return &UserRepository{q: tx}
}

const userColumns = `id, username, hum_balance, rep_score, starting_balance, created_at, updated_at`

func scanUser(row pgx.Row) (*models.User, error) {
	var user models.User
	err := row.Scan(
		&user.ID,
		&user.Username,
		&user.HumBalance,
		&user.RepScore,
		&user.StartingBalance,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetByID retrieves a user by id
func (r *UserRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	user, err := scanUser(r.q.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user %d: %w", id, err)
	}

	return user, nil
}

// GetByUsername retrieves a user by username
func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE username = $1`

	user, err := scanUser(r.q.QueryRow(ctx, query, username))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user %q: %w", username, err)
	}

	return user, nil
}

// Create creates a new user funded with the starting balance
func (r *UserRepository) Create(ctx context.Context, username string, startingBalance int64) (*models.User, error) {
	query := `
		INSERT INTO users (username, hum_balance, starting_balance)
		VALUES ($1, $2, $2)
		RETURNING ` + userColumns

	user, err := scanUser(r.q.QueryRow(ctx, query, username, startingBalance))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, service.ErrUsernameTaken
		}
		return nil, fmt.Errorf("failed to create user %q: %w", username, err)
	}

	return user, nil
}

// Debit deducts amount from a user's balance atomically. The insufficiency
// check and the write are a single conditional UPDATE, so no intermediate
// state is observable and concurrent debits cannot both pass against a
// stale balance.
func (r *UserRepository) Debit(ctx context.Context, userID int64, amount int64) (int64, error) {
	if amount <= 0 {
		return 0, fmt.Errorf("amount must be positive")
	}

	query := `
		UPDATE users
		SET hum_balance = hum_balance - $1, updated_at = NOW()
		WHERE id = $2 AND hum_balance >= $1
		RETURNING hum_balance
	`

	var newBalance int64
	err := r.q.QueryRow(ctx, query, amount, userID).Scan(&newBalance)
	if errors.Is(err, pgx.ErrNoRows) {
		// Distinguish an unknown user from an insufficient balance
		user, getErr := r.GetByID(ctx, userID)
		if getErr != nil {
			return 0, fmt.Errorf("failed to check user: %w", getErr)
		}
		if user == nil {
			return 0, service.ErrUserNotFound
		}
		return 0, service.ErrInsufficientFunds
	}
	if err != nil {
		return 0, fmt.Errorf("failed to debit user %d: %w", userID, err)
	}

	return newBalance, nil
}

// Credit adds amount to a user's balance atomically
func (r *UserRepository) Credit(ctx context.Context, userID int64, amount int64) (int64, error) {
	if amount <= 0 {
		return 0, fmt.Errorf("amount must be positive")
	}

	query := `
		UPDATE users
		SET hum_balance = hum_balance + $1, updated_at = NOW()
		WHERE id = $2
		RETURNING hum_balance
	`

	var newBalance int64
	err := r.q.QueryRow(ctx, query, amount, userID).Scan(&newBalance)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, service.ErrUserNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("failed to credit user %d: %w", userID, err)
	}

	return newBalance, nil
}

// AdjustReputation adds delta to a user's rep score atomically
func (r *UserRepository) AdjustReputation(ctx context.Context, userID int64, delta int64) error {
	query := `
		UPDATE users
		SET rep_score = rep_score + $1, updated_at = NOW()
		WHERE id = $2
	`

	result, err := r.q.Exec(ctx, query, delta, userID)
	if err != nil {
		return fmt.Errorf("failed to adjust reputation for user %d: %w", userID, err)
	}

	if result.RowsAffected() == 0 {
		return service.ErrUserNotFound
	}

	return nil
}

// GetAll returns all users ordered by registration time
func (r *UserRepository) GetAll(ctx context.Context) ([]*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users ORDER BY created_at ASC`

	rows, err := r.q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to get all users: %w", err)
	}
	defer rows.Close()

	var users []*models.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, user)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate users: %w", err)
	}

	return users, nil
}
