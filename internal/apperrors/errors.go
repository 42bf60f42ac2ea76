package apperrors

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
var ErrDuplicate = errors.New("resource already exists")

// ErrDivisionByZero indicates that a zero rate was about to be used as a divisor,
// either while rebasing to a new default currency or while converting an amount.
var ErrDivisionByZero = errors.New("division by zero rate")

// ErrTransaction indicates that the underlying store failed while executing a
// transaction; the whole operation has been rolled back.
var ErrTransaction = errors.New("transaction error")

// BulkRateConflictError is returned when a bulk dated-rate batch targets one or
// more (currency, start date) pairs that already have a recorded rate. The whole
// batch is rejected; Conflicts lists the offending currency codes.
type BulkRateConflictError struct {
	StartDate string
	Conflicts []string
}

func (e *BulkRateConflictError) Error() string {
	return fmt.Sprintf("dated rates already recorded at %s for: %s", e.StartDate, strings.Join(e.Conflicts, ", "))
}

// Unwrap lets callers match the error with errors.Is(err, ErrDuplicate).
func (e *BulkRateConflictError) Unwrap() error {
	return ErrDuplicate
}
