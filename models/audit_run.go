package models

import (
	"time"
)

// AuditRun represents one pass of the ledger reconciliation job
type AuditRun struct {
	ID               int64                  `db:"id" json:"id"`
	RunDate          time.Time              `db:"run_date" json:"runDate"`
	UsersChecked     int                    `db:"users_checked" json:"usersChecked"`
	Discrepancies    int                    `db:"discrepancies" json:"discrepancies"`
	ExecutionSummary map[string]interface{} `db:"execution_summary" json:"executionSummary"`
	CreatedAt        time.Time              `db:"created_at" json:"createdAt"`
}
