package models

import (
	"time"
)

// Question represents a posted question that cost the owner HUM to create
type Question struct {
	ID              int64     `db:"id" json:"id"`
	UserID          int64     `db:"user_id" json:"userId"`
	Title           string    `db:"title" json:"title"`
	Content         string    `db:"content" json:"content"`
	Category        string    `db:"category" json:"category"`
	HumSpent        int64     `db:"hum_spent" json:"humSpent"`
	IsClosed        bool      `db:"is_closed" json:"isClosed"`
	AdoptedAnswerID *int64    `db:"adopted_answer_id" json:"adoptedAnswerId"`
	CreatedAt       time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt       time.Time `db:"updated_at" json:"updatedAt"`
}

// QuestionDetail bundles a question with its answers for read endpoints
type QuestionDetail struct {
	Question *Question
	Answers  []*Answer
}

// AdoptionResult summarizes a completed reward settlement
type AdoptionResult struct {
	QuestionID      int64
	AdoptedAnswerID int64
	Stake           int64
	Reward          int64
}
