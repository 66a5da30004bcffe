package api

import (
	"errors"
	"net/http"
	"strconv"

	"humboard/models"
	"humboard/service"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

type handler struct {
	users     service.UserService
	questions service.QuestionService
	answers   service.AnswerService
	votes     service.VoteService
	adoptions service.AdoptionService
}

// Request bodies are explicit typed structs; unknown or missing fields
// never reach the services.

type registerUserRequest struct {
	Username string `json:"username" binding:"required"`
}

type askQuestionRequest struct {
	UserID   int64  `json:"userId" binding:"required"`
	Title    string `json:"title" binding:"required"`
	Content  string `json:"content" binding:"required"`
	Category string `json:"category"`
}

type postAnswerRequest struct {
	UserID     int64  `json:"userId" binding:"required"`
	QuestionID int64  `json:"questionId" binding:"required"`
	Content    string `json:"content" binding:"required"`
}

type castVoteRequest struct {
	VoterID int64 `json:"voterId" binding:"required"`
}

type adoptAnswerRequest struct {
	UserID   int64 `json:"userId" binding:"required"`
	AnswerID int64 `json:"answerId" binding:"required"`
}

type viewQuestionRequest struct {
	UserID int64 `json:"userId" binding:"required"`
}

type userResponse struct {
	ID         int64  `json:"id"`
	Username   string `json:"username"`
	HumBalance int64  `json:"humBalance"`
	RepScore   int64  `json:"repScore"`
}

func toUserResponse(user *models.User) userResponse {
	return userResponse{
		ID:         user.ID,
		Username:   user.Username,
		HumBalance: user.HumBalance,
		RepScore:   user.RepScore,
	}
}

// writeError maps domain errors to status codes: rejected actions are
// 400, missing entities 404, anything else is an unexpected failure
func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrUserNotFound),
		errors.Is(err, service.ErrQuestionNotFound),
		errors.Is(err, service.ErrAnswerNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrInsufficientFunds),
		errors.Is(err, service.ErrQuestionClosed),
		errors.Is(err, service.ErrAlreadyVoted),
		errors.Is(err, service.ErrNotQuestionOwner),
		errors.Is(err, service.ErrUsernameTaken):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		log.WithField("requestID", c.GetString("requestID")).
			WithError(err).Error("Unexpected error handling request")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal Server Error"})
	}
}

func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return 0, false
	}
	return id, true
}

func (h *handler) root(c *gin.Context) {
	c.String(http.StatusOK, "Hello! Welcome to the Q&A platform API")
}

func (h *handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *handler) listUsers(c *gin.Context) {
	users, err := h.users.ListUsers(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}

	resp := make([]userResponse, 0, len(users))
	for _, user := range users {
		resp = append(resp, toUserResponse(user))
	}
	c.JSON(http.StatusOK, resp)
}

func (h *handler) registerUser(c *gin.Context) {
	var req registerUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	user, err := h.users.Register(c.Request.Context(), req.Username)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, toUserResponse(user))
}

func (h *handler) userTransactions(c *gin.Context) {
	userID, ok := pathID(c)
	if !ok {
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	txns, err := h.users.GetTransactions(c.Request.Context(), userID, limit)
	if err != nil {
		writeError(c, err)
		return
	}

	type transactionResponse struct {
		ID        int64                    `json:"id"`
		Amount    int64                    `json:"amount"`
		Reason    models.TransactionReason `json:"reason"`
		CreatedAt string                   `json:"createdAt"`
	}

	resp := make([]transactionResponse, 0, len(txns))
	for _, txn := range txns {
		resp = append(resp, transactionResponse{
			ID:        txn.ID,
			Amount:    txn.Amount,
			Reason:    txn.Reason,
			CreatedAt: txn.CreatedAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
		})
	}
	c.JSON(http.StatusOK, resp)
}

func (h *handler) getQuestion(c *gin.Context) {
	questionID, ok := pathID(c)
	if !ok {
		return
	}

	detail, err := h.questions.Get(c.Request.Context(), questionID)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"question": detail.Question, "answers": detail.Answers})
}

func (h *handler) askQuestion(c *gin.Context) {
	var req askQuestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	question, err := h.questions.Ask(c.Request.Context(), req.UserID, req.Title, req.Content, req.Category)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"questionId": question.ID,
		"title":      question.Title,
		"content":    question.Content,
		"category":   question.Category,
		"humSpent":   question.HumSpent,
	})
}

func (h *handler) postAnswer(c *gin.Context) {
	var req postAnswerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	answer, err := h.answers.PostAnswer(c.Request.Context(), req.UserID, req.QuestionID, req.Content)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"answerId":   answer.ID,
		"questionId": answer.QuestionID,
		"content":    answer.Content,
		"humSpent":   answer.HumSpent,
	})
}

func (h *handler) castVote(c *gin.Context) {
	answerID, ok := pathID(c)
	if !ok {
		return
	}

	var req castVoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	vote, err := h.votes.CastVote(c.Request.Context(), answerID, req.VoterID)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"voteId":   vote.ID,
		"answerId": vote.AnswerID,
		"voterId":  vote.VoterID,
		"humSpent": vote.HumSpent,
	})
}

func (h *handler) adoptAnswer(c *gin.Context) {
	questionID, ok := pathID(c)
	if !ok {
		return
	}

	var req adoptAnswerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	result, err := h.adoptions.Adopt(c.Request.Context(), questionID, req.AnswerID, req.UserID)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":  "Answer adopted",
		"answerId": result.AdoptedAnswerID,
		"stake":    result.Stake,
		"reward":   result.Reward,
	})
}

func (h *handler) viewQuestion(c *gin.Context) {
	questionID, ok := pathID(c)
	if !ok {
		return
	}

	var req viewQuestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	detail, err := h.questions.View(c.Request.Context(), questionID, req.UserID)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"question": detail.Question, "answers": detail.Answers})
}
