// Package digester scans for ended events and mails the organiser an
// AI-generated engagement summary.  Each event is summarized at most once;
// the summaryEmailSent flag is claimed in a transaction before any email is
// attempted.
package digester

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"konvele/assistant"
	"konvele/dbtypes"

	"cloud.google.com/go/firestore"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"google.golang.org/api/iterator"
)

var errAlreadyClaimed = fmt.Errorf("summary email already claimed")

type Digester struct {
	firestoreClient *firestore.Client
	assist          *assistant.Assistant
	sendgridClient  *sendgrid.Client
	recheckPeriod   time.Duration
}

func New(firestoreClient *firestore.Client, assist *assistant.Assistant, sendgridClient *sendgrid.Client, recheckPeriod time.Duration) *Digester {
	return &Digester{
		firestoreClient: firestoreClient,
		assist:          assist,
		sendgridClient:  sendgridClient,
		recheckPeriod:   recheckPeriod,
	}
}

func (d *Digester) Run(ctx context.Context) error {
	ticker := time.NewTicker(d.recheckPeriod)
	defer ticker.Stop()

	// Scan once right away --- ticker doesn't fire until the tick period has
	// elapsed.
	if err := d.scanEvents(ctx); err != nil {
		slog.ErrorContext(ctx, "Error during digester pass", slog.Any("err", err))
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}

		if err := d.scanEvents(ctx); err != nil {
			slog.ErrorContext(ctx, "Error during digester pass", slog.Any("err", err))
		}
	}
}

func (d *Digester) scanEvents(ctx context.Context) error {
	slog.InfoContext(ctx, "Starting digester pass")
	defer func() {
		slog.InfoContext(ctx, "Finished digester pass")
	}()

	now := time.Now()

	eventIter := d.firestoreClient.Collection("events").Documents(ctx)
	defer eventIter.Stop()
	for {
		eventSnapshot, err := eventIter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return fmt.Errorf("while iterating events: %w", err)
		}

		event := &dbtypes.Event{}
		if err := eventSnapshot.DataTo(event); err != nil {
			return fmt.Errorf("while unmarshaling event %s: %w", eventSnapshot.Ref.ID, err)
		}
		event.ID = eventSnapshot.Ref.ID

		if event.SummaryEmailSent || !event.Date.Before(now) {
			continue
		}

		slog.InfoContext(ctx, "Processing ended event", slog.String("event", event.ID))

		if err := d.processEvent(ctx, eventSnapshot.Ref, event); err != nil {
			// One bad event shouldn't stall the whole pass.
			slog.ErrorContext(ctx, "Error while processing event",
				slog.String("event", event.ID), slog.Any("err", err))
		}
	}

	return nil
}

func (d *Digester) processEvent(ctx context.Context, eventDocRef *firestore.DocumentRef, event *dbtypes.Event) error {
	err := d.firestoreClient.RunTransaction(ctx, func(ctx context.Context, txn *firestore.Transaction) error {
		eventDocSnap, err := txn.Get(eventDocRef)
		if err != nil {
			return fmt.Errorf("while reading event: %w", err)
		}

		// The transaction function can run multiple times, and another
		// digester replica may have claimed the event in the meantime.
		current := &dbtypes.Event{}
		if err := eventDocSnap.DataTo(current); err != nil {
			return fmt.Errorf("while unmarshaling event: %w", err)
		}
		if current.SummaryEmailSent {
			return errAlreadyClaimed
		}

		return txn.Update(eventDocRef, []firestore.Update{
			{Path: "summaryEmailSent", Value: true},
		})
	})
	if err == errAlreadyClaimed {
		return nil
	}
	if err != nil {
		return fmt.Errorf("while claiming summary email: %w", err)
	}

	summary, err := d.assist.GenerateEventSummary(ctx, event.ID, event.Title)
	if err != nil {
		return fmt.Errorf("while generating summary: %w", err)
	}

	if err := d.emailOrganizer(ctx, event, summary); err != nil {
		return fmt.Errorf("while emailing organizer: %w", err)
	}

	return nil
}

func (d *Digester) emailOrganizer(ctx context.Context, event *dbtypes.Event, summary string) error {
	organizerDocSnap, err := d.firestoreClient.Collection("users").Doc(event.OrganizerID).Get(ctx)
	if err != nil {
		return fmt.Errorf("while reading organizer: %w", err)
	}

	organizer := &dbtypes.User{}
	if err := organizerDocSnap.DataTo(organizer); err != nil {
		return fmt.Errorf("while unmarshaling organizer: %w", err)
	}

	if organizer.Email == "" {
		slog.WarnContext(ctx, "Organizer has no email address; skipping summary email",
			slog.String("event", event.ID))
		return nil
	}

	message := mail.NewV3Mail()
	message.SetFrom(mail.NewEmail("Konvele", "digest@konvele.dev"))
	message.Subject = fmt.Sprintf("Your event summary: %s", event.Title)

	personalization := mail.NewPersonalization()
	personalization.AddTos(mail.NewEmail(organizer.DisplayName, organizer.Email))
	message.AddPersonalizations(personalization)

	message.AddContent(mail.NewContent("text/plain", summary))

	resp, err := d.sendgridClient.SendWithContext(ctx, message)
	if err != nil {
		return fmt.Errorf("while sending email: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("while sending email: got status %d", resp.StatusCode)
	}

	slog.InfoContext(ctx, "Sent summary email",
		slog.String("event", event.ID), slog.String("organizer", organizer.Email))

	return nil
}
