package models

import (
	"time"
)

// TransactionReason classifies a ledger entry
type TransactionReason string

const (
	TransactionReasonAsk          TransactionReason = "ASK"
	TransactionReasonAnswer       TransactionReason = "ANSWER"
	TransactionReasonVote         TransactionReason = "VOTE"
	TransactionReasonView         TransactionReason = "VIEW"
	TransactionReasonAdoptReward  TransactionReason = "ADOPT_REWARD"
	TransactionReasonRejectRefund TransactionReason = "REJECT_REFUND"
	TransactionReasonVoterRefund  TransactionReason = "VOTER_REFUND"
)

// RelatedType identifies what entity a transaction's related_id refers to
type RelatedType string

const (
	RelatedTypeQuestion RelatedType = "question"
	RelatedTypeAnswer   RelatedType = "answer"
	RelatedTypeVote     RelatedType = "vote"
)

// Transaction is one append-only ledger entry. For every user the sum of
// transaction amounts equals hum_balance minus starting_balance.
type Transaction struct {
	ID          int64             `db:"id" json:"id"`
	UserID      int64             `db:"user_id" json:"userId"`
	Amount      int64             `db:"amount" json:"amount"`
	Reason      TransactionReason `db:"reason" json:"reason"`
	RelatedID   *int64            `db:"related_id" json:"relatedId,omitempty"`
	RelatedType *RelatedType      `db:"related_type" json:"relatedType,omitempty"`
	CreatedAt   time.Time         `db:"created_at" json:"createdAt"`
}
