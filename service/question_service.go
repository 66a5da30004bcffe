package service

import (
	"context"
	"fmt"
	"strings"

	"humboard/config"
	"humboard/models"
)

// questionService implements the QuestionService interface
type questionService struct {
	uowFactory UnitOfWorkFactory
}

// NewQuestionService creates a new question service
func NewQuestionService(uowFactory UnitOfWorkFactory) QuestionService {
	return &questionService{
		uowFactory: uowFactory,
	}
}

// Ask charges the question price and creates the question. The entity
// insert and the charge share one transaction: a failed charge rolls
// the question back, a failed insert rolls the charge back.
func (s *questionService) Ask(ctx context.Context, userID int64, title, content, category string) (*models.Question, error) {
	if strings.TrimSpace(title) == "" {
		return nil, fmt.Errorf("question title cannot be empty")
	}
	if strings.TrimSpace(content) == "" {
		return nil, fmt.Errorf("question content cannot be empty")
	}

	cfg := config.Get()

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	question := &models.Question{
		UserID:   userID,
		Title:    title,
		Content:  content,
		Category: category,
		HumSpent: cfg.QuestionPrice,
	}

	if err := uow.QuestionRepository().Create(ctx, question); err != nil {
		return nil, fmt.Errorf("failed to create question: %w", err)
	}

	relatedID, relatedType := related(question.ID, models.RelatedTypeQuestion)
	if _, err := ChargeUser(ctx, uow, userID, cfg.QuestionPrice, models.TransactionReasonAsk, relatedID, relatedType); err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return question, nil
}

// Get returns a question with its answers without charging anyone
func (s *questionService) Get(ctx context.Context, questionID int64) (*models.QuestionDetail, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	return loadQuestionDetail(ctx, uow, questionID)
}

// View charges the view price and returns the question with its
// answers. A pure metered read: the ledger entry is the only write.
func (s *questionService) View(ctx context.Context, questionID, userID int64) (*models.QuestionDetail, error) {
	cfg := config.Get()

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	question, err := uow.QuestionRepository().GetByID(ctx, questionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get question: %w", err)
	}
	if question == nil {
		return nil, ErrQuestionNotFound
	}

	relatedID, relatedType := related(questionID, models.RelatedTypeQuestion)
	if _, err := ChargeUser(ctx, uow, userID, cfg.ViewPrice, models.TransactionReasonView, relatedID, relatedType); err != nil {
		return nil, err
	}

	answers, err := uow.AnswerRepository().GetByQuestion(ctx, questionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get answers: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return &models.QuestionDetail{Question: question, Answers: answers}, nil
}

// loadQuestionDetail fetches a question and its answers within the
// caller's unit of work
func loadQuestionDetail(ctx context.Context, uow UnitOfWork, questionID int64) (*models.QuestionDetail, error) {
	question, err := uow.QuestionRepository().GetByID(ctx, questionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get question: %w", err)
	}
	if question == nil {
		return nil, ErrQuestionNotFound
	}

	answers, err := uow.AnswerRepository().GetByQuestion(ctx, questionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get answers: %w", err)
	}

	return &models.QuestionDetail{Question: question, Answers: answers}, nil
}
