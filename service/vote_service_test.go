package service

import (
	"context"
	"testing"

	"humboard/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestVoteService_CastVote_Success(t *testing.T) {
	ctx := context.Background()
	m := newAdoptionMocks(ctx)
	service := NewVoteService(m.factory)

	answer := &models.Answer{ID: 20, QuestionID: 10, UserID: 2}
	question := &models.Question{ID: 10, UserID: 1}

	m.uow.On("Commit").Return(nil)
	m.answers.On("GetByID", ctx, int64(20)).Return(answer, nil)
	m.question.On("GetByIDForShare", ctx, int64(10)).Return(question, nil)
	m.votes.On("Create", ctx, mock.MatchedBy(func(v *models.Vote) bool {
		return v.AnswerID == 20 && v.VoterID == 3 && v.HumSpent == 2
	})).Return(nil)
	m.users.On("Debit", ctx, int64(3), int64(2)).Return(int64(3), nil)
	m.txns.On("Record", ctx, mock.MatchedBy(func(txn *models.Transaction) bool {
		return txn.UserID == 3 &&
			txn.Amount == -2 &&
			txn.Reason == models.TransactionReasonVote
	})).Return(nil)

	vote, err := service.CastVote(ctx, 20, 3)

	assert.NoError(t, err)
	assert.Equal(t, int64(20), vote.AnswerID)
	assert.Equal(t, int64(3), vote.VoterID)
	assert.Equal(t, int64(2), vote.HumSpent)

	m.uow.AssertExpectations(t)
	m.votes.AssertExpectations(t)
	m.users.AssertExpectations(t)
	m.txns.AssertExpectations(t)
}

func TestVoteService_CastVote_Duplicate(t *testing.T) {
	ctx := context.Background()
	m := newAdoptionMocks(ctx)
	service := NewVoteService(m.factory)

	answer := &models.Answer{ID: 20, QuestionID: 10, UserID: 2}
	question := &models.Question{ID: 10, UserID: 1}

	m.answers.On("GetByID", ctx, int64(20)).Return(answer, nil)
	m.question.On("GetByIDForShare", ctx, int64(10)).Return(question, nil)
	m.votes.On("Create", ctx, mock.AnythingOfType("*models.Vote")).Return(ErrAlreadyVoted)

	vote, err := service.CastVote(ctx, 20, 3)

	assert.ErrorIs(t, err, ErrAlreadyVoted)
	assert.Nil(t, vote)

	// The duplicate rolls the whole transaction back: no charge
	m.users.AssertNotCalled(t, "Debit", ctx, mock.Anything, mock.Anything)
	m.txns.AssertNotCalled(t, "Record", ctx, mock.Anything)
	m.uow.AssertNotCalled(t, "Commit")
}

func TestVoteService_CastVote_UnknownVoter(t *testing.T) {
	ctx := context.Background()
	m := newAdoptionMocks(ctx)
	service := NewVoteService(m.factory)

	answer := &models.Answer{ID: 20, QuestionID: 10, UserID: 2}
	question := &models.Question{ID: 10, UserID: 1}

	m.answers.On("GetByID", ctx, int64(20)).Return(answer, nil)
	m.question.On("GetByIDForShare", ctx, int64(10)).Return(question, nil)
	m.votes.On("Create", ctx, mock.AnythingOfType("*models.Vote")).Return(ErrUserNotFound)

	vote, err := service.CastVote(ctx, 20, 999)

	assert.ErrorIs(t, err, ErrUserNotFound)
	assert.Nil(t, vote)
	m.users.AssertNotCalled(t, "Debit", ctx, mock.Anything, mock.Anything)
	m.uow.AssertNotCalled(t, "Commit")
}

func TestVoteService_CastVote_ClosedQuestion(t *testing.T) {
	ctx := context.Background()
	m := newAdoptionMocks(ctx)
	service := NewVoteService(m.factory)

	answer := &models.Answer{ID: 20, QuestionID: 10, UserID: 2}
	question := &models.Question{ID: 10, UserID: 1, IsClosed: true}

	m.answers.On("GetByID", ctx, int64(20)).Return(answer, nil)
	m.question.On("GetByIDForShare", ctx, int64(10)).Return(question, nil)

	vote, err := service.CastVote(ctx, 20, 3)

	assert.ErrorIs(t, err, ErrQuestionClosed)
	assert.Nil(t, vote)
	m.votes.AssertNotCalled(t, "Create", ctx, mock.Anything)
	m.users.AssertNotCalled(t, "Debit", ctx, mock.Anything, mock.Anything)
}

func TestVoteService_CastVote_InsufficientFunds(t *testing.T) {
	ctx := context.Background()
	m := newAdoptionMocks(ctx)
	service := NewVoteService(m.factory)

	answer := &models.Answer{ID: 20, QuestionID: 10, UserID: 2}
	question := &models.Question{ID: 10, UserID: 1}

	m.answers.On("GetByID", ctx, int64(20)).Return(answer, nil)
	m.question.On("GetByIDForShare", ctx, int64(10)).Return(question, nil)
	m.votes.On("Create", ctx, mock.AnythingOfType("*models.Vote")).Return(nil)
	m.users.On("Debit", ctx, int64(3), int64(2)).Return(int64(0), ErrInsufficientFunds)

	vote, err := service.CastVote(ctx, 20, 3)

	assert.ErrorIs(t, err, ErrInsufficientFunds)
	assert.Nil(t, vote)
	m.txns.AssertNotCalled(t, "Record", ctx, mock.Anything)
	m.uow.AssertNotCalled(t, "Commit")
}

func TestVoteService_CastVote_AnswerNotFound(t *testing.T) {
	ctx := context.Background()
	m := newAdoptionMocks(ctx)
	service := NewVoteService(m.factory)

	m.answers.On("GetByID", ctx, int64(99)).Return(nil, nil)

	vote, err := service.CastVote(ctx, 99, 3)

	assert.ErrorIs(t, err, ErrAnswerNotFound)
	assert.Nil(t, vote)
}
