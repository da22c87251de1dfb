package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrInvalidTransition = errors.New("invalid state transition")
)

// TransitionError records which operation was refused and the state the
// booking was in at the time.
type TransitionError struct {
	Op            string
	ServiceStatus ServiceStatus
	PaymentStatus PaymentStatus
}

func NewTransitionError(op string, b *Booking) *TransitionError {
	return &TransitionError{Op: op, ServiceStatus: b.ServiceStatus, PaymentStatus: b.PaymentStatus}
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("cannot %s booking in state %s/%s", e.Op, e.ServiceStatus, e.PaymentStatus)
}

func (e *TransitionError) Is(target error) bool {
	return target == ErrInvalidTransition
}

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (v ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", v.Field, v.Message)
}

type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	if len(v) == 0 {
		return ""
	}
	msgs := make([]string, 0, len(v))
	for _, err := range v {
		msgs = append(msgs, err.Error())
	}
	return fmt.Sprintf("validation failed: %s", strings.Join(msgs, "; "))
}
