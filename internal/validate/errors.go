package validate

import (
	"errors"
	"fmt"
	"strconv"
)

// Error represents a failed key/item validation check.
type Error struct {
	// Code identifies the error category.
	Code ErrorCode

	// Field names the checked field (e.g., "key.type", "key.locations[1].type").
	Field string

	// Expected and Actual describe the disagreement. Empty for
	// missing-subject errors, which have no actual value to report.
	Expected string
	Actual   string

	// Message is a human-readable description.
	Message string
}

// ErrorCode categorizes validation errors.
type ErrorCode string

const (
	// ErrCodeMissingSubject indicates a required argument was absent.
	ErrCodeMissingSubject ErrorCode = "MISSING_SUBJECT"

	// ErrCodeKeyMismatch indicates a type tag disagreed with the expectation.
	ErrCodeKeyMismatch ErrorCode = "KEY_MISMATCH"

	// ErrCodeChainLength indicates the location chain length disagreed
	// with the expected hierarchy depth.
	ErrCodeChainLength ErrorCode = "CHAIN_LENGTH"
)

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Code == ErrCodeMissingSubject {
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s (field=%s, expected=%s, actual=%s)",
		e.Code, e.Message, e.Field, e.Expected, e.Actual)
}

// IsMissingSubject reports whether err is a missing-subject error,
// distinct from a present-but-mismatched subject. Uses errors.As to
// handle wrapped errors.
func IsMissingSubject(err error) bool {
	var ve *Error
	if errors.As(err, &ve) {
		return ve.Code == ErrCodeMissingSubject
	}
	return false
}

// IsMismatch reports whether err is a mismatch error (type tag or chain
// length).
func IsMismatch(err error) bool {
	var ve *Error
	if errors.As(err, &ve) {
		return ve.Code == ErrCodeKeyMismatch || ve.Code == ErrCodeChainLength
	}
	return false
}

func newMissingSubjectError(what string) *Error {
	return &Error{
		Code:    ErrCodeMissingSubject,
		Message: what + " is required",
	}
}

func newMismatchError(field, expected, actual string) *Error {
	return &Error{
		Code:     ErrCodeKeyMismatch,
		Field:    field,
		Expected: expected,
		Actual:   actual,
		Message:  "type tag does not match expectation",
	}
}

func newChainLengthError(expected, actual int) *Error {
	return &Error{
		Code:     ErrCodeChainLength,
		Field:    "key.locations",
		Expected: strconv.Itoa(expected),
		Actual:   strconv.Itoa(actual),
		Message:  "location chain length does not match expectation",
	}
}

func newLocationMismatchError(index int, expected, actual string) *Error {
	return &Error{
		Code:     ErrCodeKeyMismatch,
		Field:    fmt.Sprintf("key.locations[%d].type", index),
		Expected: expected,
		Actual:   actual,
		Message:  "location type tag does not match expectation",
	}
}
