package dblayer

import (
	"context"
	"fmt"
	"sort"
	"time"

	"konvele/dbtypes"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
)

// CreateEvent stores a new event document and returns its id.  The category
// must be one of the five known categories.
func (db *DB) CreateEvent(ctx context.Context, event *dbtypes.Event) (string, error) {
	if !dbtypes.ValidCategory(event.Category) {
		return "", ErrBadCategory
	}

	newEventRef := db.firestoreClient.Collection("events").NewDoc()
	event.ID = newEventRef.ID
	if _, err := newEventRef.Create(ctx, event); err != nil {
		return "", fmt.Errorf("while creating event: %w", err)
	}
	return newEventRef.ID, nil
}

// GetEvent returns the event with the given id, or ErrEventNotFound.
func (db *DB) GetEvent(ctx context.Context, id string) (*dbtypes.Event, error) {
	docSnap, err := db.firestoreClient.Collection("events").Doc(id).Get(ctx)
	if err != nil {
		if docSnap != nil && !docSnap.Exists() {
			return nil, ErrEventNotFound
		}
		return nil, fmt.Errorf("while retrieving event: %w", err)
	}

	event := &dbtypes.Event{}
	if err := docSnap.DataTo(event); err != nil {
		return nil, fmt.Errorf("while unmarshaling event: %w", err)
	}
	event.ID = docSnap.Ref.ID

	return event, nil
}

// ListEvents returns every event.
func (db *DB) ListEvents(ctx context.Context) ([]*dbtypes.Event, error) {
	return db.eventsFromQuery(ctx, db.firestoreClient.Collection("events").Query)
}

// EventsByOrganizer returns the organizer's events, newest first.
func (db *DB) EventsByOrganizer(ctx context.Context, organizerID string) ([]*dbtypes.Event, error) {
	events, err := db.eventsFromQuery(ctx, db.firestoreClient.Collection("events").Where("organizerId", "==", organizerID))
	if err != nil {
		return nil, err
	}

	sort.Slice(events, func(i, j int) bool {
		return events[i].Date.After(events[j].Date)
	})
	return events, nil
}

func (db *DB) eventsFromQuery(ctx context.Context, q firestore.Query) ([]*dbtypes.Event, error) {
	events := []*dbtypes.Event{}
	eventIter := q.Documents(ctx)
	defer eventIter.Stop()
	for {
		eventSnapshot, err := eventIter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("while iterating events: %w", err)
		}

		event := &dbtypes.Event{}
		if err := eventSnapshot.DataTo(event); err != nil {
			return nil, fmt.Errorf("while unmarshaling event %s: %w", eventSnapshot.Ref.ID, err)
		}
		event.ID = eventSnapshot.Ref.ID
		events = append(events, event)
	}
	return events, nil
}

// UpdateEvent overwrites an existing event document.
func (db *DB) UpdateEvent(ctx context.Context, event *dbtypes.Event) error {
	if !dbtypes.ValidCategory(event.Category) {
		return ErrBadCategory
	}

	if _, err := db.firestoreClient.Collection("events").Doc(event.ID).Set(ctx, event); err != nil {
		return fmt.Errorf("while updating event: %w", err)
	}
	return nil
}

// DeleteEvent removes an event and all of its registrations in one batch.
func (db *DB) DeleteEvent(ctx context.Context, id string) error {
	batch := db.firestoreClient.Batch()
	batch.Delete(db.firestoreClient.Collection("events").Doc(id))

	regIter := db.firestoreClient.Collection("registrations").Where("eventId", "==", id).Documents(ctx)
	defer regIter.Stop()
	for {
		regSnapshot, err := regIter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return fmt.Errorf("while iterating registrations for event %s: %w", id, err)
		}
		batch.Delete(regSnapshot.Ref)
	}

	if _, err := batch.Commit(ctx); err != nil {
		return fmt.Errorf("while deleting event: %w", err)
	}
	return nil
}

// Register enrolls a user in an event.  If the user is already registered,
// the existing registration is returned unchanged; the (event, user) pair is
// deduplicated by this lookup, not by a uniqueness constraint.
func (db *DB) Register(ctx context.Context, eventID string, user *dbtypes.User) (*dbtypes.Registration, error) {
	existing, err := db.registrationForUser(ctx, eventID, user.ID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	newRegRef := db.firestoreClient.Collection("registrations").NewDoc()
	registration := &dbtypes.Registration{
		ID:               newRegRef.ID,
		EventID:          eventID,
		UserID:           user.ID,
		UserName:         user.DisplayName,
		UserEmail:        user.Email,
		RegistrationDate: time.Now(),
		CheckedIn:        false,
	}
	if _, err := newRegRef.Create(ctx, registration); err != nil {
		return nil, fmt.Errorf("while creating registration: %w", err)
	}

	return registration, nil
}

func (db *DB) registrationForUser(ctx context.Context, eventID, userID string) (*dbtypes.Registration, error) {
	regIter := db.firestoreClient.Collection("registrations").
		Where("eventId", "==", eventID).
		Where("userId", "==", userID).
		Documents(ctx)
	defer regIter.Stop()
	for {
		regSnapshot, err := regIter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("while looking up registration: %w", err)
		}

		registration := &dbtypes.Registration{}
		if err := regSnapshot.DataTo(registration); err != nil {
			return nil, fmt.Errorf("while unmarshaling registration: %w", err)
		}
		registration.ID = regSnapshot.Ref.ID
		return registration, nil
	}
	return nil, nil
}

// RegistrationByID returns the registration with the given id, or
// ErrRegistrationNotFound.
func (db *DB) RegistrationByID(ctx context.Context, id string) (*dbtypes.Registration, error) {
	docSnap, err := db.firestoreClient.Collection("registrations").Doc(id).Get(ctx)
	if err != nil {
		if docSnap != nil && !docSnap.Exists() {
			return nil, ErrRegistrationNotFound
		}
		return nil, fmt.Errorf("while retrieving registration: %w", err)
	}

	registration := &dbtypes.Registration{}
	if err := docSnap.DataTo(registration); err != nil {
		return nil, fmt.Errorf("while unmarshaling registration: %w", err)
	}
	registration.ID = docSnap.Ref.ID
	return registration, nil
}

// resolveCheckIn applies the check-in ruling to a loaded registration: a
// ticket for another event is rejected before the redeemed flag is even
// considered, and a used ticket keeps its original check-in time.  On
// success the registration is marked redeemed as of now.
func resolveCheckIn(registration *dbtypes.Registration, eventID string, now time.Time) error {
	if registration.EventID != eventID {
		return ErrTicketWrongEvent
	}
	if registration.CheckedIn {
		return ErrTicketAlreadyUsed
	}
	registration.CheckedIn = true
	registration.CheckInDate = now
	return nil
}

// CheckIn redeems a ticket.  The id is whatever was scanned from the QR code
// or typed in by the organizer.
//
// Resolution order: unknown id -> ErrRegistrationNotFound; ticket for a
// different event -> ErrTicketWrongEvent; already redeemed ->
// ErrTicketAlreadyUsed, returning the existing registration so the original
// check-in time can be shown.  On success the registration is returned with
// CheckedIn set and a fresh CheckInDate.  A repeated CheckIn never alters the
// original timestamp.
func (db *DB) CheckIn(ctx context.Context, eventID, registrationID string) (*dbtypes.Registration, error) {
	regRef := db.firestoreClient.Collection("registrations").Doc(registrationID)

	var registration *dbtypes.Registration
	err := db.firestoreClient.RunTransaction(ctx, func(ctx context.Context, txn *firestore.Transaction) error {
		// The transaction function can run more than once; reset state each
		// attempt.
		registration = nil

		regSnap, err := txn.Get(regRef)
		if err != nil {
			if regSnap != nil && !regSnap.Exists() {
				return ErrRegistrationNotFound
			}
			return fmt.Errorf("while reading registration: %w", err)
		}

		registration = &dbtypes.Registration{}
		if err := regSnap.DataTo(registration); err != nil {
			return fmt.Errorf("while unmarshaling registration: %w", err)
		}
		registration.ID = regSnap.Ref.ID

		if err := resolveCheckIn(registration, eventID, time.Now()); err != nil {
			return err
		}

		if err := txn.Update(regRef, []firestore.Update{
			{Path: "checkedIn", Value: true},
			{Path: "checkInDate", Value: registration.CheckInDate},
		}); err != nil {
			return fmt.Errorf("while updating registration: %w", err)
		}

		return nil
	})
	if err == ErrTicketAlreadyUsed {
		return registration, err
	}
	if err != nil {
		return nil, err
	}

	return registration, nil
}

// EventAttendees returns every registration for an event.
func (db *DB) EventAttendees(ctx context.Context, eventID string) ([]*dbtypes.Registration, error) {
	registrations := []*dbtypes.Registration{}
	regIter := db.firestoreClient.Collection("registrations").Where("eventId", "==", eventID).Documents(ctx)
	defer regIter.Stop()
	for {
		regSnapshot, err := regIter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("while iterating registrations: %w", err)
		}

		registration := &dbtypes.Registration{}
		if err := regSnapshot.DataTo(registration); err != nil {
			return nil, fmt.Errorf("while unmarshaling registration %s: %w", regSnapshot.Ref.ID, err)
		}
		registration.ID = regSnapshot.Ref.ID
		registrations = append(registrations, registration)
	}
	return registrations, nil
}

// RegisteredEventsForUser returns the events a user holds registrations for.
func (db *DB) RegisteredEventsForUser(ctx context.Context, userID string) ([]*dbtypes.Event, error) {
	regIter := db.firestoreClient.Collection("registrations").Where("userId", "==", userID).Documents(ctx)
	defer regIter.Stop()

	eventIDs := []string{}
	for {
		regSnapshot, err := regIter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("while iterating registrations: %w", err)
		}

		registration := &dbtypes.Registration{}
		if err := regSnapshot.DataTo(registration); err != nil {
			return nil, fmt.Errorf("while unmarshaling registration %s: %w", regSnapshot.Ref.ID, err)
		}
		eventIDs = append(eventIDs, registration.EventID)
	}

	if len(eventIDs) == 0 {
		return []*dbtypes.Event{}, nil
	}

	events := []*dbtypes.Event{}
	for _, id := range eventIDs {
		event, err := db.GetEvent(ctx, id)
		if err == ErrEventNotFound {
			// Registration outlived its event; skip it.
			continue
		}
		if err != nil {
			return nil, err
		}
		events = append(events, event)
	}
	return events, nil
}
