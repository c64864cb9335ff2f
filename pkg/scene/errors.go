package scene

import (
	"errors"
	"fmt"
)

// ErrInvalidScene matches every *ValidationError through errors.Is.
var ErrInvalidScene = errors.New("invalid scene")

// Reason identifies the invariant a payload violated.
type Reason string

const (
	ReasonInvalidField      Reason = "invalid_field"
	ReasonCatalogMismatch   Reason = "catalog_mismatch"
	ReasonNoStates          Reason = "no_states"
	ReasonUnsortedStates    Reason = "unsorted_states"
	ReasonStateOutOfBounds  Reason = "state_out_of_bounds"
	ReasonChoiceOutOfBounds Reason = "choice_out_of_bounds"
	ReasonUnknownChoice     Reason = "unknown_choice"
	ReasonDeadlineExceeded  Reason = "deadline_exceeded"
)

// ValidationError reports the first invariant violation found in a payload,
// along with the id of the offending entity.
type ValidationError struct {
	Reason  Reason
	Entity  string
	Message string
}

func (e *ValidationError) Error() string {
	return "invalid scene: " + e.Message
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidScene
}

func failf(reason Reason, entity string, format string, args ...any) *ValidationError {
	return &ValidationError{
		Reason:  reason,
		Entity:  entity,
		Message: fmt.Sprintf(format, args...),
	}
}
