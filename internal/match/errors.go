package match

import (
	"errors"
	"fmt"

	"github.com/roach88/strata/internal/query"
)

// EvalError represents a malformed predicate detected during evaluation.
//
// Evaluation errors are fatal to the Match call that raised them: a
// malformed predicate never silently evaluates to false. The struct
// carries the offending column and operator so upstream layers can attach
// operation metadata without re-deriving context.
type EvalError struct {
	// Code identifies the error category.
	Code EvalErrorCode

	// Column is the condition column being evaluated.
	Column string

	// Operator is the condition operator being evaluated.
	Operator query.Operator

	// Message is a human-readable description.
	Message string
}

// EvalErrorCode categorizes evaluation errors.
type EvalErrorCode string

const (
	// ErrCodeNullComparison indicates a non-equality operator applied to
	// a null condition value.
	ErrCodeNullComparison EvalErrorCode = "NULL_COMPARISON"

	// ErrCodeNonArrayValue indicates a membership operator whose
	// condition value is not an array.
	ErrCodeNonArrayValue EvalErrorCode = "NON_ARRAY_VALUE"

	// ErrCodeUnknownOperator indicates an operator outside the supported set.
	ErrCodeUnknownOperator EvalErrorCode = "UNKNOWN_OPERATOR"
)

// Error implements the error interface.
func (e *EvalError) Error() string {
	return fmt.Sprintf("%s: %s (column=%s, operator=%s)", e.Code, e.Message, e.Column, e.Operator)
}

// IsNullComparisonError reports whether err is a null-comparison
// evaluation error. Uses errors.As to handle wrapped errors.
func IsNullComparisonError(err error) bool {
	var ee *EvalError
	if errors.As(err, &ee) {
		return ee.Code == ErrCodeNullComparison
	}
	return false
}

// newNullComparisonError creates an EvalError for a null operand.
func newNullComparisonError(column string, op query.Operator) *EvalError {
	return &EvalError{
		Code:     ErrCodeNullComparison,
		Column:   column,
		Operator: op,
		Message:  "null value is only legal with == and !=",
	}
}

// newNonArrayValueError creates an EvalError for a non-array operand.
func newNonArrayValueError(column string, op query.Operator) *EvalError {
	return &EvalError{
		Code:     ErrCodeNonArrayValue,
		Column:   column,
		Operator: op,
		Message:  "operator requires an array condition value",
	}
}

// newUnknownOperatorError creates an EvalError for an unsupported operator.
func newUnknownOperatorError(column string, op query.Operator) *EvalError {
	return &EvalError{
		Code:     ErrCodeUnknownOperator,
		Column:   column,
		Operator: op,
		Message:  "unsupported operator",
	}
}
