package planner

import "fmt"

type ErrorCode string

const (
	ErrCodeEmptyTitle    ErrorCode = "empty_title"
	ErrCodeMissingTomato ErrorCode = "missing_tomato"
	ErrCodeBadType       ErrorCode = "bad_type"
	ErrCodeBadDate       ErrorCode = "bad_date"
	ErrCodeBadPattern    ErrorCode = "bad_pattern"
	ErrCodeUnknownParent ErrorCode = "unknown_parent"
	ErrCodeAlreadyDone   ErrorCode = "already_done"
)

// InputError reports a line that cannot be turned into a task. Message is
// meant to be shown next to the input field.
type InputError struct {
	Code    ErrorCode
	Message string
}

func (e *InputError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func inputErr(code ErrorCode, format string, args ...any) error {
	return &InputError{Code: code, Message: fmt.Sprintf(format, args...)}
}
