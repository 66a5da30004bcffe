package models

import (
	"time"
)

// User represents a registered participant with a HUM balance
type User struct {
	ID              int64     `db:"id" json:"id"`
	Username        string    `db:"username" json:"username"`
	HumBalance      int64     `db:"hum_balance" json:"humBalance"`
	RepScore        int64     `db:"rep_score" json:"repScore"`
	StartingBalance int64     `db:"starting_balance" json:"startingBalance"`
	CreatedAt       time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt       time.Time `db:"updated_at" json:"updatedAt"`
}
