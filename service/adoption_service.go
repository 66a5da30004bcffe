package service

import (
	"context"
	"fmt"

	"humboard/events"
	"humboard/models"

	log "github.com/sirupsen/logrus"
)

// Reputation awarded at settlement time
const (
	adoptedAuthorRepBonus = 2
	voterRepBonus         = 1
)

// Flat consolation refund for each rejected answer's author,
// independent of that answer's own price or votes
const rejectRefundAmount = 1

// adoptionService implements the AdoptionService interface
type adoptionService struct {
	uowFactory UnitOfWorkFactory
}

// NewAdoptionService creates a new adoption service
func NewAdoptionService(uowFactory UnitOfWorkFactory) AdoptionService {
	return &adoptionService{
		uowFactory: uowFactory,
	}
}

// Adopt runs the one-time reward settlement for a question. The whole
// sequence executes inside a single DB transaction holding an exclusive
// lock on the question row, so it applies exactly once or not at all:
// a concurrent second adoption blocks on the lock, then observes the
// closed flag and fails before touching any balance.
//
// The stake snapshot, the credits and the closed-flag write share that
// transaction, so every vote counted in the stake is also refunded and
// no vote can slip in between snapshot and closure.
func (s *adoptionService) Adopt(ctx context.Context, questionID, answerID, requestedBy int64) (*models.AdoptionResult, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	// Preconditions, first failure wins
	question, err := uow.QuestionRepository().GetByIDForUpdate(ctx, questionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get question: %w", err)
	}
	if question == nil {
		return nil, ErrQuestionNotFound
	}
	if question.IsClosed {
		return nil, ErrQuestionClosed
	}

	adopted, err := uow.AnswerRepository().GetByID(ctx, answerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get answer: %w", err)
	}
	if adopted == nil || adopted.QuestionID != questionID {
		return nil, ErrAnswerNotFound
	}

	if question.UserID != requestedBy {
		return nil, ErrNotQuestionOwner
	}

	// Stake snapshot: total HUM spent endorsing the adopted answer
	stake, err := uow.VoteRepository().TotalStake(ctx, answerID)
	if err != nil {
		return nil, fmt.Errorf("failed to total stake: %w", err)
	}

	// Adopted author: reward is a platform-issued mint of twice the
	// stake, not a redistribution of the voters' spend
	reward := stake * 2
	if reward > 0 {
		relatedID, relatedType := related(answerID, models.RelatedTypeAnswer)
		if _, err := CreditUser(ctx, uow, adopted.UserID, reward, models.TransactionReasonAdoptReward, relatedID, relatedType); err != nil {
			return nil, fmt.Errorf("failed to credit adoption reward: %w", err)
		}
	}
	if err := uow.UserRepository().AdjustReputation(ctx, adopted.UserID, adoptedAuthorRepBonus); err != nil {
		return nil, fmt.Errorf("failed to adjust author reputation: %w", err)
	}

	// Rejected answers: flat consolation refund per author
	answers, err := uow.AnswerRepository().GetByQuestion(ctx, questionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get answers: %w", err)
	}
	for _, answer := range answers {
		if answer.ID == answerID {
			continue
		}
		relatedID, relatedType := related(answer.ID, models.RelatedTypeAnswer)
		if _, err := CreditUser(ctx, uow, answer.UserID, rejectRefundAmount, models.TransactionReasonRejectRefund, relatedID, relatedType); err != nil {
			return nil, fmt.Errorf("failed to credit reject refund: %w", err)
		}
	}

	// Voters on the adopted answer: refund each vote's recorded spend,
	// so the refunds sum to exactly the stake
	votes, err := uow.VoteRepository().GetByAnswer(ctx, answerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get votes: %w", err)
	}
	for _, vote := range votes {
		relatedID, relatedType := related(vote.ID, models.RelatedTypeVote)
		if _, err := CreditUser(ctx, uow, vote.VoterID, vote.HumSpent, models.TransactionReasonVoterRefund, relatedID, relatedType); err != nil {
			return nil, fmt.Errorf("failed to credit voter refund: %w", err)
		}
		if err := uow.UserRepository().AdjustReputation(ctx, vote.VoterID, voterRepBonus); err != nil {
			return nil, fmt.Errorf("failed to adjust voter reputation: %w", err)
		}
	}

	// One-way state transition
	if err := uow.QuestionRepository().MarkClosed(ctx, questionID, answerID); err != nil {
		return nil, err
	}
	if err := uow.AnswerRepository().MarkAdopted(ctx, answerID); err != nil {
		return nil, err
	}

	uow.EventBus().Publish(events.AnswerAdoptedEvent{
		QuestionID: questionID,
		AnswerID:   answerID,
		AuthorID:   adopted.UserID,
		Stake:      stake,
		Reward:     reward,
	})

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.WithFields(log.Fields{
		"questionID": questionID,
		"answerID":   answerID,
		"stake":      stake,
		"reward":     reward,
		"voters":     len(votes),
	}).Info("Answer adopted and rewards settled")

	return &models.AdoptionResult{
		QuestionID:      questionID,
		AdoptedAnswerID: answerID,
		Stake:           stake,
		Reward:          reward,
	}, nil
}
