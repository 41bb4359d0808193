package webui

import (
	"strings"
	"testing"

	"konvele/dbtypes"

	"github.com/google/go-cmp/cmp"
)

func TestSplitRow(t *testing.T) {
	got := splitRow("10:00 | Keynote | Grace", 3)
	want := []string{"10:00", "Keynote", "Grace"}
	if diff := cmp.Diff(got, want); diff != "" {
		t.Errorf("Bad split; diff (-got +want)\n%s", diff)
	}
}

func TestSplitRowPadsMissingFields(t *testing.T) {
	got := splitRow("10:00 | Keynote", 3)
	want := []string{"10:00", "Keynote", ""}
	if diff := cmp.Diff(got, want); diff != "" {
		t.Errorf("Bad split; diff (-got +want)\n%s", diff)
	}
}

func TestSplitRowBlankLine(t *testing.T) {
	if got := splitRow("   ", 3); got != nil {
		t.Errorf("Expected nil for blank line; got %v", got)
	}
}

func TestSpeakerRoundTrip(t *testing.T) {
	speakers := []dbtypes.Speaker{
		{Name: "Grace", Title: "CTO"},
		{Name: "Alan", Title: ""},
	}

	joined := joinSpeakers(speakers)

	got := []dbtypes.Speaker{}
	for _, line := range strings.Split(joined, "\n") {
		parts := splitRow(line, 2)
		if parts == nil {
			continue
		}
		got = append(got, dbtypes.Speaker{Name: parts[0], Title: parts[1]})
	}

	if diff := cmp.Diff(got, speakers); diff != "" {
		t.Errorf("Speakers did not survive the form round trip; diff (-got +want)\n%s", diff)
	}
}

func TestScheduleRoundTrip(t *testing.T) {
	schedule := []dbtypes.ScheduleItem{
		{Time: "10:00", Title: "Doors open", Speaker: ""},
		{Time: "11:00", Title: "Keynote", Speaker: "Grace"},
	}

	joined := joinSchedule(schedule)

	got := []dbtypes.ScheduleItem{}
	for _, line := range strings.Split(joined, "\n") {
		parts := splitRow(line, 3)
		if parts == nil {
			continue
		}
		got = append(got, dbtypes.ScheduleItem{Time: parts[0], Title: parts[1], Speaker: parts[2]})
	}

	if diff := cmp.Diff(got, schedule); diff != "" {
		t.Errorf("Schedule did not survive the form round trip; diff (-got +want)\n%s", diff)
	}
}
