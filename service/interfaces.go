package service

import (
	"context"
	"time"

	"humboard/events"
	"humboard/models"
)

// UserRepository defines the interface for user data access
type UserRepository interface {
	// GetByID retrieves a user by id, nil when unknown
	GetByID(ctx context.Context, id int64) (*models.User, error)

	// GetByUsername retrieves a user by username, nil when unknown
	GetByUsername(ctx context.Context, username string) (*models.User, error)

	// Create creates a new user with the starting balance
	Create(ctx context.Context, username string, startingBalance int64) (*models.User, error)

	// Debit atomically deducts amount, failing with ErrInsufficientFunds
	// or ErrUserNotFound; returns the post-debit balance
	Debit(ctx context.Context, userID int64, amount int64) (int64, error)

	// Credit atomically adds amount and returns the post-credit balance
	Credit(ctx context.Context, userID int64, amount int64) (int64, error)

	// AdjustReputation atomically adds delta to a user's rep score
	AdjustReputation(ctx context.Context, userID int64, delta int64) error

	// GetAll returns all users
	GetAll(ctx context.Context) ([]*models.User, error)
}

// QuestionRepository defines the interface for question data access
type QuestionRepository interface {
	// Create creates a new question
	Create(ctx context.Context, question *models.Question) error

	// GetByID retrieves a question by id, nil when unknown
	GetByID(ctx context.Context, id int64) (*models.Question, error)

	// GetByIDForUpdate retrieves a question holding an exclusive row lock
	// for the rest of the surrounding transaction
	GetByIDForUpdate(ctx context.Context, id int64) (*models.Question, error)

	// GetByIDForShare retrieves a question holding a shared row lock,
	// blocking a concurrent settlement until this transaction finishes
	GetByIDForShare(ctx context.Context, id int64) (*models.Question, error)

	// MarkClosed closes the question and records the adopted answer.
	// Fails with ErrQuestionClosed if the question is already closed.
	MarkClosed(ctx context.Context, questionID, answerID int64) error
}

// AnswerRepository defines the interface for answer data access
type AnswerRepository interface {
	// Create creates a new answer
	Create(ctx context.Context, answer *models.Answer) error

	// GetByID retrieves an answer by id, nil when unknown
	GetByID(ctx context.Context, id int64) (*models.Answer, error)

	// GetByQuestion returns all answers for a question, oldest first
	GetByQuestion(ctx context.Context, questionID int64) ([]*models.Answer, error)

	// MarkAdopted flags the answer as the adopted one
	MarkAdopted(ctx context.Context, answerID int64) error
}

// VoteRepository defines the interface for the vote registry
type VoteRepository interface {
	// Create records a vote; fails with ErrAlreadyVoted when the voter
	// already has a vote on the answer
	Create(ctx context.Context, vote *models.Vote) error

	// GetByAnswer returns all votes for an answer, oldest first
	GetByAnswer(ctx context.Context, answerID int64) ([]*models.Vote, error)

	// TotalStake returns the sum of hum_spent across the answer's votes
	TotalStake(ctx context.Context, answerID int64) (int64, error)
}

// TransactionRepository defines the interface for the append-only ledger log
type TransactionRepository interface {
	// Record appends a new transaction entry
	Record(ctx context.Context, txn *models.Transaction) error

	// GetByUser returns the most recent transactions for a user
	GetByUser(ctx context.Context, userID int64, limit int) ([]*models.Transaction, error)

	// SumByUser returns the sum of all transaction amounts for a user
	SumByUser(ctx context.Context, userID int64) (int64, error)
}

// AuditRunRepository defines the interface for ledger audit run records
type AuditRunRepository interface {
	// GetByDate returns the audit run for a date, nil when none exists
	GetByDate(ctx context.Context, date time.Time) (*models.AuditRun, error)

	// Create creates a new audit run record
	Create(ctx context.Context, run *models.AuditRun) error
}

// EventPublisher defines the interface for publishing events
type EventPublisher interface {
	Publish(event events.Event)
}

// UnitOfWork provides transactional access to all repositories
type UnitOfWork interface {
	// Begin starts a new database transaction
	Begin(ctx context.Context) error

	// Commit commits the transaction and flushes pending events
	Commit() error

	// Rollback rolls back the transaction, no-op after commit
	Rollback() error

	UserRepository() UserRepository
	QuestionRepository() QuestionRepository
	AnswerRepository() AnswerRepository
	VoteRepository() VoteRepository
	TransactionRepository() TransactionRepository

	// EventBus returns the transactional event bus for this unit of work
	EventBus() EventPublisher
}

// UnitOfWorkFactory creates units of work
type UnitOfWorkFactory interface {
	Create() UnitOfWork
}

// UserService defines the interface for user operations
type UserService interface {
	// Register creates a new user funded with the starting balance
	Register(ctx context.Context, username string) (*models.User, error)

	// GetUser retrieves a user by id
	GetUser(ctx context.Context, userID int64) (*models.User, error)

	// ListUsers returns all users
	ListUsers(ctx context.Context) ([]*models.User, error)

	// GetTransactions returns a user's recent ledger entries
	GetTransactions(ctx context.Context, userID int64, limit int) ([]*models.Transaction, error)
}

// QuestionService defines the interface for question operations
type QuestionService interface {
	// Ask charges the question price and creates the question
	Ask(ctx context.Context, userID int64, title, content, category string) (*models.Question, error)

	// Get returns a question with its answers without charging anyone
	Get(ctx context.Context, questionID int64) (*models.QuestionDetail, error)

	// View charges the view price and returns the question with answers
	View(ctx context.Context, questionID, userID int64) (*models.QuestionDetail, error)
}

// AnswerService defines the interface for answer operations
type AnswerService interface {
	// PostAnswer charges the answer price and creates the answer
	PostAnswer(ctx context.Context, userID, questionID int64, content string) (*models.Answer, error)
}

// VoteService defines the interface for vote operations
type VoteService interface {
	// CastVote charges the vote price and records the vote in one
	// atomic step
	CastVote(ctx context.Context, answerID, voterID int64) (*models.Vote, error)
}

// AdoptionService defines the interface for the reward settlement engine
type AdoptionService interface {
	// Adopt settles the question: rewards the adopted answer's author,
	// refunds rejected authors and the adopted answer's voters, and
	// closes the question, exactly once
	Adopt(ctx context.Context, questionID, answerID, requestedBy int64) (*models.AdoptionResult, error)
}

// AuditService defines the interface for ledger reconciliation
type AuditService interface {
	// RunAudit verifies every user's balance against the transaction log
	RunAudit(ctx context.Context) (*models.AuditRun, error)
}
