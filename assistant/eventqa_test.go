package assistant

import (
	"testing"

	"konvele/dbtypes"
)

func TestFlattenSchedule(t *testing.T) {
	schedule := []dbtypes.ScheduleItem{
		{Time: "10:00", Title: "Doors open"},
		{Time: "11:00", Title: "Keynote", Speaker: "Grace"},
	}

	got := flattenSchedule(schedule)
	want := "10:00: Doors open, 11:00: Keynote"
	if got != want {
		t.Errorf("Bad flattened schedule; got %q, want %q", got, want)
	}
}

func TestFlattenScheduleEmpty(t *testing.T) {
	if got := flattenSchedule(nil); got != "" {
		t.Errorf("Expected empty string for empty schedule; got %q", got)
	}
}

func TestFlattenSpeakers(t *testing.T) {
	speakers := []dbtypes.Speaker{
		{Name: "Grace", Title: "CTO"},
		{Name: "Alan", Title: "Researcher"},
	}

	got := flattenSpeakers(speakers)
	want := "Grace (CTO), Alan (Researcher)"
	if got != want {
		t.Errorf("Bad flattened speakers; got %q, want %q", got, want)
	}
}
