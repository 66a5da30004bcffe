package service

import (
	"context"
	"fmt"
	"strings"

	"humboard/config"
	"humboard/models"
)

// answerService implements the AnswerService interface
type answerService struct {
	uowFactory UnitOfWorkFactory
}

// NewAnswerService creates a new answer service
func NewAnswerService(uowFactory UnitOfWorkFactory) AnswerService {
	return &answerService{
		uowFactory: uowFactory,
	}
}

// PostAnswer charges the answer price and creates the answer. The
// shared lock on the question row keeps a concurrent settlement from
// closing the question underneath this transaction; answers on closed
// questions are rejected so their authors are never left holding a
// spend that no settlement can refund.
func (s *answerService) PostAnswer(ctx context.Context, userID, questionID int64, content string) (*models.Answer, error) {
	if strings.TrimSpace(content) == "" {
		return nil, fmt.Errorf("answer content cannot be empty")
	}

	cfg := config.Get()

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	question, err := uow.QuestionRepository().GetByIDForShare(ctx, questionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get question: %w", err)
	}
	if question == nil {
		return nil, ErrQuestionNotFound
	}
	if question.IsClosed {
		return nil, ErrQuestionClosed
	}

	answer := &models.Answer{
		QuestionID: questionID,
		UserID:     userID,
		Content:    content,
		HumSpent:   cfg.AnswerPrice,
	}

	if err := uow.AnswerRepository().Create(ctx, answer); err != nil {
		return nil, fmt.Errorf("failed to create answer: %w", err)
	}

	relatedID, relatedType := related(answer.ID, models.RelatedTypeAnswer)
	if _, err := ChargeUser(ctx, uow, userID, cfg.AnswerPrice, models.TransactionReasonAnswer, relatedID, relatedType); err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return answer, nil
}
