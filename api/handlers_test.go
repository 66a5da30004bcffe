package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"humboard/config"
	"humboard/models"
	"humboard/service"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockUserService struct {
	mock.Mock
}

func (m *mockUserService) Register(ctx context.Context, username string) (*models.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *mockUserService) GetUser(ctx context.Context, userID int64) (*models.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *mockUserService) ListUsers(ctx context.Context) ([]*models.User, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.User), args.Error(1)
}

func (m *mockUserService) GetTransactions(ctx context.Context, userID int64, limit int) ([]*models.Transaction, error) {
	args := m.Called(ctx, userID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Transaction), args.Error(1)
}

type mockQuestionService struct {
	mock.Mock
}

func (m *mockQuestionService) Ask(ctx context.Context, userID int64, title, content, category string) (*models.Question, error) {
	args := m.Called(ctx, userID, title, content, category)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Question), args.Error(1)
}

func (m *mockQuestionService) Get(ctx context.Context, questionID int64) (*models.QuestionDetail, error) {
	args := m.Called(ctx, questionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.QuestionDetail), args.Error(1)
}

func (m *mockQuestionService) View(ctx context.Context, questionID, userID int64) (*models.QuestionDetail, error) {
	args := m.Called(ctx, questionID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.QuestionDetail), args.Error(1)
}

type mockAnswerService struct {
	mock.Mock
}

func (m *mockAnswerService) PostAnswer(ctx context.Context, userID, questionID int64, content string) (*models.Answer, error) {
	args := m.Called(ctx, userID, questionID, content)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Answer), args.Error(1)
}

type mockVoteService struct {
	mock.Mock
}

func (m *mockVoteService) CastVote(ctx context.Context, answerID, voterID int64) (*models.Vote, error) {
	args := m.Called(ctx, answerID, voterID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Vote), args.Error(1)
}

type mockAdoptionService struct {
	mock.Mock
}

func (m *mockAdoptionService) Adopt(ctx context.Context, questionID, answerID, requestedBy int64) (*models.AdoptionResult, error) {
	args := m.Called(ctx, questionID, answerID, requestedBy)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.AdoptionResult), args.Error(1)
}

type serverMocks struct {
	users     *mockUserService
	questions *mockQuestionService
	answers   *mockAnswerService
	votes     *mockVoteService
	adoptions *mockAdoptionService
}

func newTestServer() (*Server, *serverMocks) {
	gin.SetMode(gin.TestMode)

	m := &serverMocks{
		users:     new(mockUserService),
		questions: new(mockQuestionService),
		answers:   new(mockAnswerService),
		votes:     new(mockVoteService),
		adoptions: new(mockAdoptionService),
	}
	server := NewServer(config.NewTestConfig(), m.users, m.questions, m.answers, m.votes, m.adoptions)
	return server, m
}

func doRequest(server *Server, method, path string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	server.Router().ServeHTTP(w, req)
	return w
}

func TestRegisterUser(t *testing.T) {
	server, m := newTestServer()

	m.users.On("Register", mock.Anything, "alice").Return(&models.User{
		ID:         1,
		Username:   "alice",
		HumBalance: 5,
	}, nil)

	w := doRequest(server, http.MethodPost, "/users", gin.H{"username": "alice"})

	assert.Equal(t, http.StatusOK, w.Code)

	var resp userResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, int64(1), resp.ID)
	assert.Equal(t, int64(5), resp.HumBalance)
	m.users.AssertExpectations(t)
}

func TestRegisterUser_MissingUsername(t *testing.T) {
	server, m := newTestServer()

	w := doRequest(server, http.MethodPost, "/users", gin.H{})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	m.users.AssertNotCalled(t, "Register", mock.Anything, mock.Anything)
}

func TestRegisterUser_UsernameTaken(t *testing.T) {
	server, m := newTestServer()

	m.users.On("Register", mock.Anything, "alice").Return(nil, service.ErrUsernameTaken)

	w := doRequest(server, http.MethodPost, "/users", gin.H{"username": "alice"})

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAskQuestion(t *testing.T) {
	server, m := newTestServer()

	m.questions.On("Ask", mock.Anything, int64(1), "How?", "Details", "general").Return(&models.Question{
		ID:       10,
		UserID:   1,
		Title:    "How?",
		Content:  "Details",
		Category: "general",
		HumSpent: 3,
	}, nil)

	w := doRequest(server, http.MethodPost, "/questions", gin.H{
		"userId":   1,
		"title":    "How?",
		"content":  "Details",
		"category": "general",
	})

	assert.Equal(t, http.StatusOK, w.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, float64(10), resp["questionId"])
	assert.Equal(t, float64(3), resp["humSpent"])
}

func TestAskQuestion_InsufficientFunds(t *testing.T) {
	server, m := newTestServer()

	m.questions.On("Ask", mock.Anything, int64(1), "How?", "Details", "").
		Return(nil, service.ErrInsufficientFunds)

	w := doRequest(server, http.MethodPost, "/questions", gin.H{
		"userId":  1,
		"title":   "How?",
		"content": "Details",
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAskQuestion_UnknownUser(t *testing.T) {
	server, m := newTestServer()

	m.questions.On("Ask", mock.Anything, int64(999), "How?", "Details", "").
		Return(nil, service.ErrUserNotFound)

	w := doRequest(server, http.MethodPost, "/questions", gin.H{
		"userId":  999,
		"title":   "How?",
		"content": "Details",
	})

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetQuestion_NotFound(t *testing.T) {
	server, m := newTestServer()

	m.questions.On("Get", mock.Anything, int64(99)).Return(nil, service.ErrQuestionNotFound)

	w := doRequest(server, http.MethodGet, "/questions/99", nil)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetQuestion_InvalidID(t *testing.T) {
	server, m := newTestServer()

	w := doRequest(server, http.MethodGet, "/questions/abc", nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	m.questions.AssertNotCalled(t, "Get", mock.Anything, mock.Anything)
}

func TestCastVote(t *testing.T) {
	server, m := newTestServer()

	m.votes.On("CastVote", mock.Anything, int64(20), int64(3)).Return(&models.Vote{
		ID:       30,
		AnswerID: 20,
		VoterID:  3,
		HumSpent: 2,
	}, nil)

	w := doRequest(server, http.MethodPost, "/answers/20/votes", gin.H{"voterId": 3})

	assert.Equal(t, http.StatusOK, w.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, float64(30), resp["voteId"])
	assert.Equal(t, float64(2), resp["humSpent"])
}

func TestCastVote_Duplicate(t *testing.T) {
	server, m := newTestServer()

	m.votes.On("CastVote", mock.Anything, int64(20), int64(3)).Return(nil, service.ErrAlreadyVoted)

	w := doRequest(server, http.MethodPost, "/answers/20/votes", gin.H{"voterId": 3})

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAdoptAnswer(t *testing.T) {
	server, m := newTestServer()

	m.adoptions.On("Adopt", mock.Anything, int64(10), int64(20), int64(1)).Return(&models.AdoptionResult{
		QuestionID:      10,
		AdoptedAnswerID: 20,
		Stake:           4,
		Reward:          8,
	}, nil)

	w := doRequest(server, http.MethodPost, "/questions/10/adopt", gin.H{
		"userId":   1,
		"answerId": 20,
	})

	assert.Equal(t, http.StatusOK, w.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, float64(8), resp["reward"])
	m.adoptions.AssertExpectations(t)
}

func TestAdoptAnswer_NotOwner(t *testing.T) {
	server, m := newTestServer()

	m.adoptions.On("Adopt", mock.Anything, int64(10), int64(20), int64(7)).
		Return(nil, service.ErrNotQuestionOwner)

	w := doRequest(server, http.MethodPost, "/questions/10/adopt", gin.H{
		"userId":   7,
		"answerId": 20,
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHealthz(t *testing.T) {
	server, _ := newTestServer()

	w := doRequest(server, http.MethodGet, "/healthz", nil)

	assert.Equal(t, http.StatusOK, w.Code)
}
