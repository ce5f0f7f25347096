package domain

import "testing"

func TestCanTransitionTo(t *testing.T) {
	statuses := []BookingStatus{BookingPending, BookingConfirmed, BookingCanceled, BookingCompleted}

	allowed := map[[2]BookingStatus]bool{
		{BookingPending, BookingConfirmed}:   true,
		{BookingPending, BookingCanceled}:    true,
		{BookingConfirmed, BookingCompleted}: true,
		{BookingConfirmed, BookingCanceled}:  true,
	}

	for _, from := range statuses {
		for _, to := range statuses {
			want := allowed[[2]BookingStatus{from, to}]
			if got := from.CanTransitionTo(to); got != want {
				t.Errorf("%s -> %s: got %v, want %v", from, to, got, want)
			}
		}
	}
}

func TestStatusValid(t *testing.T) {
	for _, s := range []BookingStatus{BookingPending, BookingConfirmed, BookingCanceled, BookingCompleted} {
		if !s.Valid() {
			t.Errorf("%s reported invalid", s)
		}
	}
	if BookingStatus("archived").Valid() {
		t.Errorf("unknown status reported valid")
	}
	if BookingStatus("").Valid() {
		t.Errorf("empty status reported valid")
	}
}

func TestStatusOccupies(t *testing.T) {
	occupies := map[BookingStatus]bool{
		BookingPending:   true,
		BookingConfirmed: true,
		BookingCanceled:  false,
		BookingCompleted: false,
	}
	for status, want := range occupies {
		if got := status.Occupies(); got != want {
			t.Errorf("%s.Occupies() = %v, want %v", status, got, want)
		}
	}
}
