package dblayer

import (
	"fmt"
	"testing"
	"time"

	"konvele/dbtypes"

	"github.com/google/go-cmp/cmp"
)

func TestComputeAnalyticsCheckInRate(t *testing.T) {
	now := time.Date(2026, time.June, 15, 12, 0, 0, 0, time.UTC)

	events := []*dbtypes.Event{
		{ID: "e1", Title: "GopherCon Watch Party", Date: now.Add(24 * time.Hour)},
	}
	registrations := []*dbtypes.Registration{}
	for i := 0; i < 10; i++ {
		registrations = append(registrations, &dbtypes.Registration{
			ID:               fmt.Sprintf("r%d", i),
			EventID:          "e1",
			RegistrationDate: now,
			CheckedIn:        i < 6,
		})
	}

	a := ComputeAnalytics(events, registrations, 0, false, now)

	if a.TotalRegistrations != 10 {
		t.Errorf("Bad TotalRegistrations; got %d, want 10", a.TotalRegistrations)
	}
	if a.CheckedInCount != 6 {
		t.Errorf("Bad CheckedInCount; got %d, want 6", a.CheckedInCount)
	}
	if a.CheckInRate != 60 {
		t.Errorf("Bad CheckInRate; got %d, want 60", a.CheckInRate)
	}
	if a.ActiveEventsCount != 1 {
		t.Errorf("Bad ActiveEventsCount; got %d, want 1", a.ActiveEventsCount)
	}
}

func TestComputeAnalyticsCheckInRateRounds(t *testing.T) {
	now := time.Date(2026, time.June, 15, 12, 0, 0, 0, time.UTC)

	events := []*dbtypes.Event{{ID: "e1", Date: now.Add(-time.Hour)}}
	registrations := []*dbtypes.Registration{
		{ID: "r1", EventID: "e1", RegistrationDate: now, CheckedIn: true},
		{ID: "r2", EventID: "e1", RegistrationDate: now},
		{ID: "r3", EventID: "e1", RegistrationDate: now},
	}

	a := ComputeAnalytics(events, registrations, 0, false, now)

	// 1/3 rounds to 33, not truncates to 33.33.
	if a.CheckInRate != 33 {
		t.Errorf("Bad CheckInRate; got %d, want 33", a.CheckInRate)
	}
	if a.ActiveEventsCount != 0 {
		t.Errorf("Expected a past event not to count as active; got %d", a.ActiveEventsCount)
	}
}

func TestComputeAnalyticsNoRegistrations(t *testing.T) {
	now := time.Date(2026, time.June, 15, 12, 0, 0, 0, time.UTC)

	a := ComputeAnalytics([]*dbtypes.Event{{ID: "e1", Date: now}}, nil, 0, false, now)

	if a.CheckInRate != 0 {
		t.Errorf("Expected zero check-in rate with no registrations; got %d", a.CheckInRate)
	}
	if len(a.RegistrationsOverTime) != 12 {
		t.Errorf("Expected 12 month buckets; got %d", len(a.RegistrationsOverTime))
	}
}

func TestComputeAnalyticsMonthBuckets(t *testing.T) {
	now := time.Date(2026, time.June, 15, 12, 0, 0, 0, time.UTC)

	registrations := []*dbtypes.Registration{
		{ID: "r1", EventID: "e1", RegistrationDate: time.Date(2026, time.January, 3, 0, 0, 0, 0, time.UTC)},
		{ID: "r2", EventID: "e1", RegistrationDate: time.Date(2026, time.January, 20, 0, 0, 0, 0, time.UTC)},
		{ID: "r3", EventID: "e1", RegistrationDate: time.Date(2026, time.June, 1, 0, 0, 0, 0, time.UTC)},
		// Prior-year registrations don't land in this year's buckets.
		{ID: "r4", EventID: "e1", RegistrationDate: time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC)},
	}

	a := ComputeAnalytics([]*dbtypes.Event{{ID: "e1", Date: now}}, registrations, 0, false, now)

	byMonth := map[string]int{}
	for _, mc := range a.RegistrationsOverTime {
		byMonth[mc.Bucket] = mc.Registrations
	}
	want := map[string]int{"January": 2, "June": 1}
	for month, count := range want {
		if byMonth[month] != count {
			t.Errorf("Bad count for %s; got %d, want %d", month, byMonth[month], count)
		}
	}
	if byMonth["March"] != 0 {
		t.Errorf("Expected empty month to be zero; got %d", byMonth["March"])
	}
}

func TestComputeAnalyticsSingleEventDayBuckets(t *testing.T) {
	now := time.Date(2026, time.June, 15, 12, 0, 0, 0, time.UTC)

	registrations := []*dbtypes.Registration{
		{ID: "r1", EventID: "e1", RegistrationDate: time.Date(2026, time.June, 1, 9, 0, 0, 0, time.UTC)},
		{ID: "r2", EventID: "e1", RegistrationDate: time.Date(2026, time.June, 1, 17, 0, 0, 0, time.UTC)},
		{ID: "r3", EventID: "e1", RegistrationDate: time.Date(2026, time.June, 2, 8, 0, 0, 0, time.UTC)},
	}

	a := ComputeAnalytics([]*dbtypes.Event{{ID: "e1", Date: now}}, registrations, 0, true, now)

	want := []BucketCount{
		{Bucket: "Jun 1", Registrations: 2},
		{Bucket: "Jun 2", Registrations: 1},
	}
	if diff := cmp.Diff(a.RegistrationsOverTime, want); diff != "" {
		t.Errorf("Bad day buckets; diff (-got +want)\n%s", diff)
	}
}

func TestComputeAnalyticsSingleEventNoRegistrations(t *testing.T) {
	now := time.Date(2026, time.June, 15, 12, 0, 0, 0, time.UTC)

	a := ComputeAnalytics([]*dbtypes.Event{{ID: "e1", Date: now}}, nil, 0, true, now)

	if len(a.RegistrationsOverTime) != 0 {
		t.Errorf("Expected no day buckets without registrations; got %v", a.RegistrationsOverTime)
	}
}

func TestComputeAnalyticsTopEvents(t *testing.T) {
	now := time.Date(2026, time.June, 15, 12, 0, 0, 0, time.UTC)

	events := []*dbtypes.Event{}
	registrations := []*dbtypes.Registration{}
	for i := 0; i < 7; i++ {
		id := fmt.Sprintf("e%d", i)
		events = append(events, &dbtypes.Event{ID: id, Title: id, Date: now})
		for j := 0; j <= i; j++ {
			registrations = append(registrations, &dbtypes.Registration{
				ID:               fmt.Sprintf("%s-r%d", id, j),
				EventID:          id,
				RegistrationDate: now,
			})
		}
	}

	a := ComputeAnalytics(events, registrations, 0, false, now)

	if len(a.TopEvents) != 5 {
		t.Fatalf("Expected top events capped at 5; got %d", len(a.TopEvents))
	}

	gotTitles := []string{}
	for _, top := range a.TopEvents {
		gotTitles = append(gotTitles, top.Title)
	}
	wantTitles := []string{"e6", "e5", "e4", "e3", "e2"}
	if diff := cmp.Diff(gotTitles, wantTitles); diff != "" {
		t.Errorf("Bad top events; diff (-got +want)\n%s", diff)
	}
}
