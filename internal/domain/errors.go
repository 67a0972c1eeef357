package domain

import (
	"errors"
	"fmt"
)

type ErrorKind string

const (
	KindUnknownAgent        ErrorKind = "UNKNOWN_AGENT"
	KindInvalidTarget       ErrorKind = "INVALID_TARGET"
	KindMissingAmount       ErrorKind = "MISSING_AMOUNT"
	KindRuleInUse           ErrorKind = "RULE_IN_USE"
	KindDuplicateCommission ErrorKind = "DUPLICATE_COMMISSION"
	KindInvalidTransition   ErrorKind = "INVALID_TRANSITION"
	KindNotFound            ErrorKind = "NOT_FOUND"
	KindInvalidRule         ErrorKind = "INVALID_RULE"
	KindActiveRuleExists    ErrorKind = "ACTIVE_RULE_EXISTS"
	KindInvalidAmount       ErrorKind = "INVALID_AMOUNT"
	KindInvalidInput        ErrorKind = "INVALID_INPUT"
	KindForbidden           ErrorKind = "FORBIDDEN"
	KindInternal            ErrorKind = "INTERNAL"
)

// Sentinels for errors.Is. Any *Error with the same Kind matches.
var (
	ErrUnknownAgent        = &Error{Kind: KindUnknownAgent, Message: "agent not found or not an active agent"}
	ErrInvalidTarget       = &Error{Kind: KindInvalidTarget, Message: "invalid transaction target"}
	ErrMissingAmount       = &Error{Kind: KindMissingAmount, Message: "percentage rule requires a transaction amount"}
	ErrRuleInUse           = &Error{Kind: KindRuleInUse, Message: "commission rule is referenced by existing commissions"}
	ErrDuplicateCommission = &Error{Kind: KindDuplicateCommission, Message: "commission already exists for this transaction"}
	ErrInvalidTransition   = &Error{Kind: KindInvalidTransition, Message: "invalid commission status transition"}
	ErrNotFound            = &Error{Kind: KindNotFound, Message: "not found"}
	ErrInvalidRule         = &Error{Kind: KindInvalidRule, Message: "invalid commission rule"}
	ErrActiveRuleExists    = &Error{Kind: KindActiveRuleExists, Message: "an active rule already exists for this action type"}
	ErrInvalidAmount       = &Error{Kind: KindInvalidAmount, Message: "invalid amount"}
	ErrInvalidInput        = &Error{Kind: KindInvalidInput, Message: "invalid input"}
	ErrForbidden           = &Error{Kind: KindForbidden, Message: "forbidden"}
)

// Error is a business error carrying a machine-readable kind.
type Error struct {
	Kind    ErrorKind `json:"kind"`
	Message string    `json:"message"`
	Err     error     `json:"-"`
}

func NewError(kind ErrorKind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func WrapError(kind ErrorKind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// BusinessKind lets packages that cannot import domain recognise business errors.
func (e *Error) BusinessKind() string { return string(e.Kind) }

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

// KindOf returns the kind of the first *Error in err's chain, or "" if none.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}
