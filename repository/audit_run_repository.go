package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"humboard/database"
	"humboard/models"

	"github.com/jackc/pgx/v5"
)

// AuditRunRepository implements the service.AuditRunRepository interface
type AuditRunRepository struct {
	db *database.DB
}

// NewAuditRunRepository creates a new audit run repository
func NewAuditRunRepository(db *database.DB) *AuditRunRepository {
	return &AuditRunRepository{db: db}
}

// GetByDate checks if an audit run exists for a specific date
func (r *AuditRunRepository) GetByDate(ctx context.Context, date time.Time) (*models.AuditRun, error) {
	// Normalize date to start of day
	dateOnly := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())

	query := `
		SELECT id, run_date, users_checked, discrepancies, execution_summary, created_at
		FROM audit_runs
		WHERE run_date = $1
	`

	var run models.AuditRun
	var summaryJSON []byte

	err := r.db.QueryRow(ctx, query, dateOnly).Scan(
		&run.ID,
		&run.RunDate,
		&run.UsersChecked,
		&run.Discrepancies,
		&summaryJSON,
		&run.CreatedAt,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get audit run for date %s: %w", dateOnly.Format("2006-01-02"), err)
	}

	if len(summaryJSON) > 0 {
		if err := json.Unmarshal(summaryJSON, &run.ExecutionSummary); err != nil {
			return nil, fmt.Errorf("failed to unmarshal execution summary: %w", err)
		}
	}

	return &run, nil
}

// Create creates a new audit run record
func (r *AuditRunRepository) Create(ctx context.Context, run *models.AuditRun) error {
	// Normalize date to start of day
	run.RunDate = time.Date(run.RunDate.Year(), run.RunDate.Month(), run.RunDate.Day(),
		0, 0, 0, 0, run.RunDate.Location())

	summaryJSON, err := json.Marshal(run.ExecutionSummary)
	if err != nil {
		return fmt.Errorf("failed to marshal execution summary: %w", err)
	}

	query := `
		INSERT INTO audit_runs (run_date, users_checked, discrepancies, execution_summary)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`

	err = r.db.QueryRow(ctx, query,
		run.RunDate,
		run.UsersChecked,
		run.Discrepancies,
		summaryJSON,
	).Scan(&run.ID, &run.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to create audit run: %w", err)
	}

	return nil
}
