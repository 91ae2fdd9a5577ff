package domain

import (
	"errors"
	"fmt"
)

// ErrorKind classifies why an operation was rejected.
type ErrorKind int

const (
	KindUnknown ErrorKind = iota
	KindNotFound
	KindValidation
	KindIllegalTransition
	KindInsufficientStock
	KindIncompleteTasks
	KindConcurrencyConflict
)

func (k ErrorKind) String() string {
	switch k {
	case KindNotFound:
		return "NOT_FOUND"
	case KindValidation:
		return "VALIDATION_ERROR"
	case KindIllegalTransition:
		return "ILLEGAL_TRANSITION"
	case KindInsufficientStock:
		return "INSUFFICIENT_STOCK"
	case KindIncompleteTasks:
		return "INCOMPLETE_TASKS"
	case KindConcurrencyConflict:
		return "CONCURRENCY_CONFLICT"
	default:
		return "UNKNOWN"
	}
}

// Error is returned when an operation is rejected by business rules.
type Error struct {
	Kind    ErrorKind
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// Is reports whether target is an *Error of the same kind, so that
// errors.Is(err, ErrNotFound) matches any not-found error.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

var (
	ErrNotFound            = &Error{Kind: KindNotFound, Message: "not found"}
	ErrValidation          = &Error{Kind: KindValidation, Message: "validation error"}
	ErrIllegalTransition   = &Error{Kind: KindIllegalTransition, Message: "illegal transition"}
	ErrInsufficientStock   = &Error{Kind: KindInsufficientStock, Message: "insufficient stock"}
	ErrIncompleteTasks     = &Error{Kind: KindIncompleteTasks, Message: "incomplete tasks"}
	ErrConcurrencyConflict = &Error{Kind: KindConcurrencyConflict, Message: "concurrency conflict"}
)

func NotFoundf(format string, args ...any) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

func Validationf(format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

func IllegalTransitionf(format string, args ...any) *Error {
	return &Error{Kind: KindIllegalTransition, Message: fmt.Sprintf(format, args...)}
}

func InsufficientStockf(format string, args ...any) *Error {
	return &Error{Kind: KindInsufficientStock, Message: fmt.Sprintf(format, args...)}
}

func IncompleteTasksf(format string, args ...any) *Error {
	return &Error{Kind: KindIncompleteTasks, Message: fmt.Sprintf(format, args...)}
}

func ConcurrencyConflictf(format string, args ...any) *Error {
	return &Error{Kind: KindConcurrencyConflict, Message: fmt.Sprintf(format, args...)}
}

// KindOf returns the kind of the first *Error in err's chain, or KindUnknown.
func KindOf(err error) ErrorKind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return KindUnknown
}
