package orders

import (
	"fmt"
	"strings"
)

// ValidationError carries the offending field names so the HTTP layer can
// report field-level detail. Never retried automatically.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return "invalid order input: " + strings.Join(e.Fields, ", ")
}

type NotFoundError struct {
	OrderID int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("order %d not found", e.OrderID)
}

// InvalidTransitionError names the rejected transition. The caller must not
// retry the same pair; it may retry with a legal target.
type InvalidTransitionError struct {
	From, To Status
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid status transition %s -> %s", e.From, e.To)
}
