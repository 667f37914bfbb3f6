package service

import (
	"errors"
	"fmt"
)

var (
	ErrEmptyPortfolio     = errors.New("portfolio has no holdings")
	ErrZeroPortfolioValue = errors.New("portfolio value is zero")
	ErrKYCIncomplete      = errors.New("identity verification is incomplete")
	ErrInvalidPolicy      = errors.New("invalid risk policy")
)

// ValidationError reports an input that violates the engine's contract.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

func invalid(field, msg string) error {
	return &ValidationError{Field: field, Message: msg}
}
