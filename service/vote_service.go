package service

import (
	"context"
	"fmt"

	"humboard/config"
	"humboard/events"
	"humboard/models"
)

// voteService implements the VoteService interface
type voteService struct {
	uowFactory UnitOfWorkFactory
}

// NewVoteService creates a new vote service
func NewVoteService(uowFactory UnitOfWorkFactory) VoteService {
	return &voteService{
		uowFactory: uowFactory,
	}
}

// CastVote charges the vote price and records the vote as one atomic
// step. The vote insert precedes the charge inside the same DB
// transaction, so a duplicate vote rolls back without the voter being
// charged. The shared lock on the question row guarantees the vote
// either lands before a settlement's stake snapshot (and is refunded
// at adoption) or observes the closed flag and is rejected.
func (s *voteService) CastVote(ctx context.Context, answerID, voterID int64) (*models.Vote, error) {
	cfg := config.Get()

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	answer, err := uow.AnswerRepository().GetByID(ctx, answerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get answer: %w", err)
	}
	if answer == nil {
		return nil, ErrAnswerNotFound
	}

	question, err := uow.QuestionRepository().GetByIDForShare(ctx, answer.QuestionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get question: %w", err)
	}
	if question == nil {
		return nil, ErrQuestionNotFound
	}
	if question.IsClosed {
		return nil, ErrQuestionClosed
	}

	vote := &models.Vote{
		AnswerID: answerID,
		VoterID:  voterID,
		HumSpent: cfg.VotePrice,
	}

	if err := uow.VoteRepository().Create(ctx, vote); err != nil {
		return nil, err
	}

	relatedID, relatedType := related(vote.ID, models.RelatedTypeVote)
	if _, err := ChargeUser(ctx, uow, voterID, cfg.VotePrice, models.TransactionReasonVote, relatedID, relatedType); err != nil {
		return nil, err
	}

	uow.EventBus().Publish(events.VoteCastEvent{
		VoteID:   vote.ID,
		AnswerID: answerID,
		VoterID:  voterID,
		HumSpent: vote.HumSpent,
	})

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return vote, nil
}
