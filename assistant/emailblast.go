package assistant

import (
	"context"
	"fmt"

	"github.com/golang/glog"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

// SendEmailBlast mails every attendee of an event.  Recipients without an
// email address are skipped, and a failure for one recipient doesn't stop
// the rest; the count of successful sends is returned.
func (a *Assistant) SendEmailBlast(ctx context.Context, eventID, subject, body string) (int, error) {
	attendees, err := a.db.EventAttendees(ctx, eventID)
	if err != nil {
		return 0, err
	}

	sent := 0
	for _, attendee := range attendees {
		if attendee.UserEmail == "" {
			continue
		}

		message := mail.NewV3Mail()
		message.From = mail.NewEmail("Konvele", "no-reply@konvele.app")
		message.Subject = subject

		personalization := mail.NewPersonalization()
		personalization.To = append(personalization.To, mail.NewEmail(attendee.UserName, attendee.UserEmail))
		message.Personalizations = append(message.Personalizations, personalization)

		message.Content = append(message.Content, mail.NewContent("text/html", body))

		resp, err := a.sendgridClient.SendWithContext(ctx, message)
		if err != nil {
			glog.Errorf("Error while emailing %s: %v", attendee.UserEmail, err)
			continue
		}
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			glog.Errorf("Non-2XX response while emailing %s: %d %s", attendee.UserEmail, resp.StatusCode, resp.Body)
			continue
		}
		sent++
	}

	if sent == 0 && len(attendees) > 0 {
		return 0, fmt.Errorf("no blast emails were delivered")
	}
	return sent, nil
}
