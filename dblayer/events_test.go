package dblayer

import (
	"testing"
	"time"

	"konvele/dbtypes"
)

func TestResolveCheckIn(t *testing.T) {
	now := time.Date(2026, time.June, 15, 9, 30, 0, 0, time.UTC)
	registration := &dbtypes.Registration{
		ID:      "r1",
		EventID: "e1",
	}

	if err := resolveCheckIn(registration, "e1", now); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !registration.CheckedIn {
		t.Errorf("Expected registration to be marked checked in")
	}
	if !registration.CheckInDate.Equal(now) {
		t.Errorf("Bad CheckInDate; got %v, want %v", registration.CheckInDate, now)
	}
}

func TestResolveCheckInWrongEventBeforeAlreadyUsed(t *testing.T) {
	now := time.Date(2026, time.June, 15, 9, 30, 0, 0, time.UTC)

	// A used ticket for another event rules wrong-event, not already-used.
	registration := &dbtypes.Registration{
		ID:        "r1",
		EventID:   "e1",
		CheckedIn: true,
	}

	err := resolveCheckIn(registration, "e2", now)
	if err != ErrTicketWrongEvent {
		t.Errorf("Bad error; got %v, want %v", err, ErrTicketWrongEvent)
	}
}

func TestResolveCheckInAlreadyUsedKeepsTimestamp(t *testing.T) {
	original := time.Date(2026, time.June, 15, 9, 0, 0, 0, time.UTC)
	now := original.Add(45 * time.Minute)

	registration := &dbtypes.Registration{
		ID:          "r1",
		EventID:     "e1",
		CheckedIn:   true,
		CheckInDate: original,
	}

	err := resolveCheckIn(registration, "e1", now)
	if err != ErrTicketAlreadyUsed {
		t.Errorf("Bad error; got %v, want %v", err, ErrTicketAlreadyUsed)
	}
	if !registration.CheckInDate.Equal(original) {
		t.Errorf("Bad CheckInDate after repeat check-in; got %v, want %v", registration.CheckInDate, original)
	}
}
