package service

import (
	"errors"
)

// Domain errors. All of them signal a rejected action, not a system
// fault, and always leave ledger state unchanged.
var (
	ErrUserNotFound      = errors.New("user not found")
	ErrUsernameTaken     = errors.New("username already taken")
	ErrInsufficientFunds = errors.New("insufficient HUM balance")
	ErrQuestionNotFound  = errors.New("question not found")
	ErrAnswerNotFound    = errors.New("answer not found")
	ErrQuestionClosed    = errors.New("question already closed")
	ErrAlreadyVoted      = errors.New("already voted on this answer")
	ErrNotQuestionOwner  = errors.New("only the question owner can adopt an answer")
)
