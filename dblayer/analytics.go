package dblayer

import (
	"context"
	"fmt"
	"sort"
	"time"

	"konvele/dbtypes"

	"google.golang.org/api/iterator"
)

// OrganizerAnalytics is the dashboard roll-up for an organizer, either
// across all of their events or scoped to one.
type OrganizerAnalytics struct {
	TotalEvents           int
	TotalRegistrations    int
	ActiveEventsCount     int
	CheckedInCount        int
	CheckInRate           int // rounded percentage
	TotalEngagement       int // chat messages + questions + votes
	RegistrationsOverTime []BucketCount
	TopEvents             []EventCount
}

// BucketCount is one bar of the registrations-over-time chart.  Across all
// of an organizer's events the buckets are the current year's months; scoped
// to a single event they are the days registrations arrived on.
type BucketCount struct {
	Bucket        string
	Registrations int
}

type EventCount struct {
	EventID       string
	Title         string
	Registrations int
}

// AnalyticsForOrganizer aggregates registrations and engagement across the
// organizer's events.  If eventID is non-empty the roll-up is scoped to that
// single event.
func (db *DB) AnalyticsForOrganizer(ctx context.Context, organizerID, eventID string) (*OrganizerAnalytics, error) {
	var events []*dbtypes.Event
	if eventID == "" {
		var err error
		events, err = db.EventsByOrganizer(ctx, organizerID)
		if err != nil {
			return nil, err
		}
	} else {
		event, err := db.GetEvent(ctx, eventID)
		if err != nil {
			return nil, err
		}
		events = []*dbtypes.Event{event}
	}

	if len(events) == 0 {
		return &OrganizerAnalytics{RegistrationsOverTime: monthCounts(nil, time.Now()), TopEvents: []EventCount{}}, nil
	}

	singleEvent := eventID != ""

	registrations := []*dbtypes.Registration{}
	engagement := 0
	for _, event := range events {
		regs, err := db.EventAttendees(ctx, event.ID)
		if err != nil {
			return nil, err
		}
		registrations = append(registrations, regs...)

		chat, err := db.ChatMessages(ctx, event.ID)
		if err != nil {
			return nil, err
		}
		questions, err := db.Questions(ctx, event.ID)
		if err != nil {
			return nil, err
		}
		votes, err := db.eventVotes(ctx, event.ID)
		if err != nil {
			return nil, err
		}
		engagement += len(chat) + len(questions) + len(votes)
	}

	return ComputeAnalytics(events, registrations, engagement, singleEvent, time.Now()), nil
}

func (db *DB) eventVotes(ctx context.Context, eventID string) ([]*dbtypes.Vote, error) {
	votes := []*dbtypes.Vote{}
	voteIter := db.firestoreClient.Collection("votes").Where("eventId", "==", eventID).Documents(ctx)
	defer voteIter.Stop()
	for {
		voteSnapshot, err := voteIter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("while iterating votes: %w", err)
		}

		vote := &dbtypes.Vote{}
		if err := voteSnapshot.DataTo(vote); err != nil {
			return nil, fmt.Errorf("while unmarshaling vote %s: %w", voteSnapshot.Ref.ID, err)
		}
		votes = append(votes, vote)
	}
	return votes, nil
}

// ComputeAnalytics does the pure aggregation over already-fetched documents.
// With singleEvent set, registrations are bucketed by day instead of by
// month.
func ComputeAnalytics(events []*dbtypes.Event, registrations []*dbtypes.Registration, engagement int, singleEvent bool, now time.Time) *OrganizerAnalytics {
	a := &OrganizerAnalytics{
		TotalEvents:        len(events),
		TotalRegistrations: len(registrations),
		TotalEngagement:    engagement,
	}

	for _, event := range events {
		if !event.Date.Before(now) {
			a.ActiveEventsCount++
		}
	}

	for _, reg := range registrations {
		if reg.CheckedIn {
			a.CheckedInCount++
		}
	}
	if a.TotalRegistrations > 0 {
		a.CheckInRate = int(float64(a.CheckedInCount)/float64(a.TotalRegistrations)*100 + 0.5)
	}

	if singleEvent {
		a.RegistrationsOverTime = dayCounts(registrations)
	} else {
		a.RegistrationsOverTime = monthCounts(registrations, now)
	}

	perEvent := map[string]int{}
	for _, reg := range registrations {
		perEvent[reg.EventID]++
	}
	for _, event := range events {
		a.TopEvents = append(a.TopEvents, EventCount{
			EventID:       event.ID,
			Title:         event.Title,
			Registrations: perEvent[event.ID],
		})
	}
	sort.SliceStable(a.TopEvents, func(i, j int) bool {
		return a.TopEvents[i].Registrations > a.TopEvents[j].Registrations
	})
	if len(a.TopEvents) > 5 {
		a.TopEvents = a.TopEvents[:5]
	}

	return a
}

func monthCounts(registrations []*dbtypes.Registration, now time.Time) []BucketCount {
	counts := make([]int, 12)
	for _, reg := range registrations {
		if reg.RegistrationDate.Year() == now.Year() {
			counts[reg.RegistrationDate.Month()-1]++
		}
	}

	out := make([]BucketCount, 12)
	for i := 0; i < 12; i++ {
		out[i] = BucketCount{
			Bucket:        time.Month(i + 1).String(),
			Registrations: counts[i],
		}
	}
	return out
}

// dayCounts buckets registrations by calendar day, in chronological order.
// Only days that saw at least one registration appear.
func dayCounts(registrations []*dbtypes.Registration) []BucketCount {
	counts := map[string]int{}
	for _, reg := range registrations {
		counts[reg.RegistrationDate.Format("2006-01-02")]++
	}

	days := make([]string, 0, len(counts))
	for day := range counts {
		days = append(days, day)
	}
	sort.Strings(days)

	out := make([]BucketCount, 0, len(days))
	for _, day := range days {
		t, err := time.Parse("2006-01-02", day)
		if err != nil {
			continue
		}
		out = append(out, BucketCount{
			Bucket:        t.Format("Jan 2"),
			Registrations: counts[day],
		})
	}
	return out
}
