package service

import (
	"context"
	"fmt"

	"humboard/events"
	"humboard/models"
)

// ChargeUser is the single gate for every priced action: one atomic
// conditional debit plus its appended ledger entry, inside the caller's
// unit of work. Returns the post-debit balance. The caller is expected
// to roll back the whole unit of work on error, so a rejected charge
// never leaves a partial state.
func ChargeUser(ctx context.Context, uow UnitOfWork, userID, price int64, reason models.TransactionReason, relatedID *int64, relatedType *models.RelatedType) (int64, error) {
	newBalance, err := uow.UserRepository().Debit(ctx, userID, price)
	if err != nil {
		return 0, err
	}

	txn := &models.Transaction{
		UserID:      userID,
		Amount:      -price,
		Reason:      reason,
		RelatedID:   relatedID,
		RelatedType: relatedType,
	}
	if err := uow.TransactionRepository().Record(ctx, txn); err != nil {
		return 0, fmt.Errorf("failed to record charge: %w", err)
	}

	uow.EventBus().Publish(events.BalanceChangeEvent{
		UserID:       userID,
		OldBalance:   newBalance + price,
		NewBalance:   newBalance,
		Reason:       reason,
		ChangeAmount: -price,
	})

	return newBalance, nil
}

// CreditUser is the symmetric atomic increment-and-log. Amount is always
// positive; credits never fail for insufficiency. Platform-issued
// credits (the adoption reward) go through here with no funding debit.
func CreditUser(ctx context.Context, uow UnitOfWork, userID, amount int64, reason models.TransactionReason, relatedID *int64, relatedType *models.RelatedType) (int64, error) {
	newBalance, err := uow.UserRepository().Credit(ctx, userID, amount)
	if err != nil {
		return 0, err
	}

	txn := &models.Transaction{
		UserID:      userID,
		Amount:      amount,
		Reason:      reason,
		RelatedID:   relatedID,
		RelatedType: relatedType,
	}
	if err := uow.TransactionRepository().Record(ctx, txn); err != nil {
		return 0, fmt.Errorf("failed to record credit: %w", err)
	}

	uow.EventBus().Publish(events.BalanceChangeEvent{
		UserID:       userID,
		OldBalance:   newBalance - amount,
		NewBalance:   newBalance,
		Reason:       reason,
		ChangeAmount: amount,
	})

	return newBalance, nil
}

// related builds the optional transaction linkage to a domain entity
func related(id int64, relatedType models.RelatedType) (*int64, *models.RelatedType) {
	return &id, &relatedType
}
