package models

import (
	"time"
)

// Vote represents a voter's HUM stake endorsing an answer.
// Votes are never deleted or reassigned.
type Vote struct {
	ID        int64     `db:"id" json:"id"`
	AnswerID  int64     `db:"answer_id" json:"answerId"`
	VoterID   int64     `db:"voter_id" json:"voterId"`
	HumSpent  int64     `db:"hum_spent" json:"humSpent"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}
