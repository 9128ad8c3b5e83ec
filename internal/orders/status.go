package orders

import "fmt"

type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusPreparing Status = "preparing"
	StatusInTransit Status = "in_transit"
	StatusDelivered Status = "delivered"
	StatusCanceled  Status = "canceled"
)

var validNext = map[Status]map[Status]bool{
	StatusPending:   {StatusConfirmed: true, StatusCanceled: true},
	StatusConfirmed: {StatusPreparing: true, StatusCanceled: true},
	StatusPreparing: {StatusInTransit: true, StatusCanceled: true},
	StatusInTransit: {StatusDelivered: true},
	StatusDelivered: {},
	StatusCanceled:  {},
}

func CanTransition(from, to Status) bool {
	return validNext[from][to]
}

// Terminal reports whether no further transitions exist from s.
func Terminal(s Status) bool {
	return len(validNext[s]) == 0
}

// ParseStatus guards the HTTP and persistence boundaries: unknown strings
// never become a Status.
func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusPending, StatusConfirmed, StatusPreparing,
		StatusInTransit, StatusDelivered, StatusCanceled:
		return Status(s), nil
	}
	return "", fmt.Errorf("unknown order status %q", s)
}
