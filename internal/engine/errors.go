package engine

import (
	"errors"
	"fmt"
)

// ErrAlreadyCompleted is returned when completing a task whose completion was
// already recorded.
var ErrAlreadyCompleted = errors.New("task is already completed")

// ValidationError reports user input the engine refuses to store.
type ValidationError struct {
	Field  string
	Reason string
}

func (e ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}
