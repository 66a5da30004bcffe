package models

import (
	"time"
)

// Answer represents an answer posted against a question
type Answer struct {
	ID         int64     `db:"id" json:"id"`
	QuestionID int64     `db:"question_id" json:"questionId"`
	UserID     int64     `db:"user_id" json:"userId"`
	Content    string    `db:"content" json:"content"`
	HumSpent   int64     `db:"hum_spent" json:"humSpent"`
	IsAdopted  bool      `db:"is_adopted" json:"isAdopted"`
	CreatedAt  time.Time `db:"created_at" json:"createdAt"`
}
