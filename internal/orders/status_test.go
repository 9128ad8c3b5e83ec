package orders

import "testing"

func TestCanTransition_Table(t *testing.T) {
	all := []Status{StatusPending, StatusConfirmed, StatusPreparing, StatusInTransit, StatusDelivered, StatusCanceled}

	allowed := map[Status][]Status{
		StatusPending:   {StatusConfirmed, StatusCanceled},
		StatusConfirmed: {StatusPreparing, StatusCanceled},
		StatusPreparing: {StatusInTransit, StatusCanceled},
		StatusInTransit: {StatusDelivered},
		StatusDelivered: {},
		StatusCanceled:  {},
	}

	for _, from := range all {
		want := map[Status]bool{}
		for _, to := range allowed[from] {
			want[to] = true
		}
		for _, to := range all {
			if got := CanTransition(from, to); got != want[to] {
				t.Errorf("CanTransition(%s, %s) = %v, want %v", from, to, got, want[to])
			}
		}
	}
}

func TestTerminal(t *testing.T) {
	for _, s := range []Status{StatusDelivered, StatusCanceled} {
		if !Terminal(s) {
			t.Errorf("%s should be terminal", s)
		}
	}
	for _, s := range []Status{StatusPending, StatusConfirmed, StatusPreparing, StatusInTransit} {
		if Terminal(s) {
			t.Errorf("%s should not be terminal", s)
		}
	}
}

func TestParseStatus(t *testing.T) {
	for _, s := range []string{"pending", "confirmed", "preparing", "in_transit", "delivered", "canceled"} {
		got, err := ParseStatus(s)
		if err != nil {
			t.Fatalf("ParseStatus(%q): %v", s, err)
		}
		if string(got) != s {
			t.Fatalf("ParseStatus(%q) = %q", s, got)
		}
	}
	for _, s := range []string{"", "PENDING", "shipped", "in-transit", "cancelled"} {
		if _, err := ParseStatus(s); err == nil {
			t.Errorf("ParseStatus(%q) should fail", s)
		}
	}
}
