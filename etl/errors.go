package etl

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrTask is the root of every failure raised by pipeline tasks.
var ErrTask = errors.New("etl task failed")

// TaskError is a task failure with structured details for the caller.
type TaskError struct {
	Message string
	Details map[string]any
}

// NewTaskError creates a TaskError. details may be nil.
func NewTaskError(message string, details map[string]any) *TaskError {
	if details == nil {
		details = map[string]any{}
	}
	return &TaskError{Message: message, Details: details}
}

func (e *TaskError) Error() string {
	if len(e.Details) == 0 {
		return e.Message
	}
	keys := make([]string, 0, len(e.Details))
	for k := range e.Details {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s=%v", k, e.Details[k])
	}
	return fmt.Sprintf("%s (%s)", e.Message, strings.Join(parts, ", "))
}

func (e *TaskError) Unwrap() error {
	return ErrTask
}
