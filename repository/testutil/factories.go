package testutil

import (
	"time"

	"humboard/models"
)

// CreateTestQuestion creates a test question with default values
func CreateTestQuestion(userID int64) *models.Question {
	return &models.Question{
		UserID:   userID,
		Title:    "How do I test this?",
		Content:  "Looking for a reliable way to test question flows.",
		Category: "testing",
		HumSpent: 3,
	}
}

// CreateTestAnswer creates a test answer with default values
func CreateTestAnswer(questionID, userID int64) *models.Answer {
	return &models.Answer{
		QuestionID: questionID,
		UserID:     userID,
		Content:    "Use a real database and check the sums.",
		HumSpent:   2,
	}
}

// CreateTestVote creates a test vote with default values
func CreateTestVote(answerID, voterID int64) *models.Vote {
	return &models.Vote{
		AnswerID: answerID,
		VoterID:  voterID,
		HumSpent: 2,
	}
}

// CreateTestTransaction creates a test ledger entry with default values
func CreateTestTransaction(userID int64, amount int64, reason models.TransactionReason) *models.Transaction {
	return &models.Transaction{
		UserID: userID,
		Amount: amount,
		Reason: reason,
	}
}

// CreateTestAuditRun creates a test audit run with default values
func CreateTestAuditRun(runDate time.Time) *models.AuditRun {
	return &models.AuditRun{
		RunDate:       runDate,
		UsersChecked:  10,
		Discrepancies: 0,
		ExecutionSummary: map[string]interface{}{
			"duration_ms": 12,
		},
	}
}
