// Package ticket renders attendee tickets: the QR code image, the
// downloadable PDF card, and the registration confirmation email.
//
// The QR payload is the bare registration document id.  It carries no
// checksum, signature, or expiry; possession of a valid id string is enough
// to check in as that attendee.
package ticket

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"text/template"

	"konvele/dbtypes"

	"github.com/go-pdf/fpdf"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	qrcode "github.com/skip2/go-qrcode"
)

// QRPNG encodes the registration id as a QR code PNG of the given pixel
// size.
func QRPNG(registrationID string, size int) ([]byte, error) {
	png, err := qrcode.Encode(registrationID, qrcode.Medium, size)
	if err != nil {
		return nil, fmt.Errorf("while encoding QR code: %w", err)
	}
	return png, nil
}

// PDF renders the A4 ticket card with the event details, attendee info, and
// embedded QR code.
func PDF(event *dbtypes.Event, registration *dbtypes.Registration) ([]byte, error) {
	qrPNG, err := QRPNG(registration.ID, 512)
	if err != nil {
		return nil, err
	}

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	pageWidth, _ := pdf.GetPageSize()
	cardWidth := 90.0
	cardX := (pageWidth - cardWidth) / 2
	cardY := 30.0

	pdf.SetFillColor(245, 245, 245)
	pdf.RoundedRect(cardX, cardY, cardWidth, 150, 4, "1234", "F")

	pdf.SetFont("Helvetica", "B", 16)
	pdf.SetXY(cardX+8, cardY+10)
	pdf.MultiCell(cardWidth-16, 8, event.Title, "", "C", false)

	pdf.SetFont("Helvetica", "", 11)
	pdf.SetX(cardX + 8)
	pdf.MultiCell(cardWidth-16, 6, event.Date.Format("Monday, January 2, 2006"), "", "C", false)
	pdf.SetX(cardX + 8)
	pdf.MultiCell(cardWidth-16, 6, event.Location, "", "C", false)

	pdf.Ln(4)
	pdf.SetFont("Helvetica", "B", 12)
	pdf.SetX(cardX + 8)
	pdf.MultiCell(cardWidth-16, 6, registration.UserName, "", "C", false)
	pdf.SetFont("Helvetica", "", 10)
	pdf.SetX(cardX + 8)
	pdf.MultiCell(cardWidth-16, 5, registration.UserEmail, "", "C", false)

	qrSize := 50.0
	pdf.RegisterImageOptionsReader("ticket-qr", fpdf.ImageOptions{ImageType: "PNG"}, bytes.NewReader(qrPNG))
	pdf.ImageOptions("ticket-qr", cardX+(cardWidth-qrSize)/2, pdf.GetY()+6, qrSize, qrSize, false, fpdf.ImageOptions{ImageType: "PNG"}, 0, "")

	pdf.SetY(pdf.GetY() + qrSize + 10)
	pdf.SetFont("Helvetica", "", 8)
	pdf.SetX(cardX + 8)
	pdf.MultiCell(cardWidth-16, 4, registration.ID, "", "C", false)

	out := &bytes.Buffer{}
	if err := pdf.Output(out); err != nil {
		return nil, fmt.Errorf("while writing ticket PDF: %w", err)
	}
	return out.Bytes(), nil
}

// FileName is the suggested download name for a ticket PDF.
func FileName(event *dbtypes.Event, registration *dbtypes.Registration) string {
	slug := strings.ToLower(strings.Join(strings.Fields(event.Title), "-"))
	tail := registration.ID
	if len(tail) > 8 {
		tail = tail[len(tail)-8:]
	}
	return fmt.Sprintf("ticket-%s-%s.pdf", slug, tail)
}

const confirmationPlain = `Hi {{.Registration.UserName}},

You are successfully registered for {{.EventTitle}}. Your ticket ID is {{.Registration.ID}}.

Present the QR code on your ticket page at the event entrance.

We look forward to seeing you there!
`

var confirmationTemplate = template.Must(template.New("confirmation").Parse(confirmationPlain))

// SendConfirmation emails the registration confirmation.  Callers treat a
// failure here as non-fatal: the registration has already committed.
func SendConfirmation(ctx context.Context, sendgridClient *sendgrid.Client, registration *dbtypes.Registration, eventTitle string) error {
	if registration.UserEmail == "" {
		return nil
	}

	message := mail.NewV3Mail()
	message.From = mail.NewEmail("Konvele", "no-reply@konvele.app")
	message.Subject = fmt.Sprintf("You're registered for %s!", eventTitle)

	personalization := mail.NewPersonalization()
	personalization.To = append(personalization.To, mail.NewEmail(registration.UserName, registration.UserEmail))
	message.Personalizations = append(message.Personalizations, personalization)

	textContent := &bytes.Buffer{}
	if err := confirmationTemplate.Execute(textContent, struct {
		Registration *dbtypes.Registration
		EventTitle   string
	}{registration, eventTitle}); err != nil {
		return fmt.Errorf("while templating confirmation email: %w", err)
	}

	message.Content = append(message.Content, mail.NewContent("text/plain", textContent.String()))

	resp, err := sendgridClient.SendWithContext(ctx, message)
	if err != nil {
		return fmt.Errorf("while sending mail through SendGrid: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("non-2XX response while sending mail through Sendgrid: %d %s", resp.StatusCode, resp.Body)
	}
	return nil
}
