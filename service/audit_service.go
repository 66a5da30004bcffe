package service

import (
	"context"
	"fmt"
	"time"

	"humboard/models"

	log "github.com/sirupsen/logrus"
)

// auditService implements the AuditService interface. It verifies the
// core reconciliation invariant: for every user, hum_balance minus
// starting_balance equals the sum of that user's ledger entries.
type auditService struct {
	uowFactory   UnitOfWorkFactory
	auditRunRepo AuditRunRepository
}

// NewAuditService creates a new audit service
func NewAuditService(uowFactory UnitOfWorkFactory, auditRunRepo AuditRunRepository) AuditService {
	return &auditService{
		uowFactory:   uowFactory,
		auditRunRepo: auditRunRepo,
	}
}

// RunAudit reconciles every user's balance against the transaction log
// and records the outcome. At most one run per day is recorded; a
// repeat call on the same day returns the existing run.
func (s *auditService) RunAudit(ctx context.Context) (*models.AuditRun, error) {
	today := time.Now().UTC()

	existing, err := s.auditRunRepo.GetByDate(ctx, today)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing audit run: %w", err)
	}
	if existing != nil {
		return existing, nil
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	users, err := uow.UserRepository().GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get users: %w", err)
	}

	var discrepancies int
	var mismatched []map[string]interface{}

	for _, user := range users {
		sum, err := uow.TransactionRepository().SumByUser(ctx, user.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to sum transactions: %w", err)
		}

		expected := user.HumBalance - user.StartingBalance
		if sum != expected {
			discrepancies++
			mismatched = append(mismatched, map[string]interface{}{
				"user_id":          user.ID,
				"balance":          user.HumBalance,
				"starting_balance": user.StartingBalance,
				"ledger_sum":       sum,
			})
			log.WithFields(log.Fields{
				"userID":          user.ID,
				"balance":         user.HumBalance,
				"startingBalance": user.StartingBalance,
				"ledgerSum":       sum,
			}).Warn("Ledger audit discrepancy: balance does not match transaction log")
		}
	}

	run := &models.AuditRun{
		RunDate:       today,
		UsersChecked:  len(users),
		Discrepancies: discrepancies,
		ExecutionSummary: map[string]interface{}{
			"mismatched_users": mismatched,
		},
	}

	if err := s.auditRunRepo.Create(ctx, run); err != nil {
		return nil, fmt.Errorf("failed to record audit run: %w", err)
	}

	log.WithFields(log.Fields{
		"usersChecked":  run.UsersChecked,
		"discrepancies": run.Discrepancies,
	}).Info("Ledger audit completed")

	return run, nil
}
