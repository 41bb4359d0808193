package webui

import (
	"bytes"
	"io"
	"net/http"
	"strconv"

	"konvele/dblayer"
	"konvele/dbtypes"
	"konvele/ticket"
	"konvele/webui/uitemplates"

	"github.com/golang/glog"
)

type ticketBundle struct {
	Event        *dbtypes.Event
	Registration *dbtypes.Registration
}

// loadOwnRegistration fetches the registration named in the "id" query
// parameter, enforcing that it belongs to the logged-in user.  Organisers of
// the event may also view it.
func (u *WebUI) loadOwnRegistration(w http.ResponseWriter, r *http.Request) (*ticketBundle, bool) {
	ctx := r.Context()

	user, ok := u.requireUser(w, r)
	if !ok {
		return nil, false
	}

	registrationID := r.URL.Query().Get("id")
	registration, err := u.db.RegistrationByID(ctx, registrationID)
	if err == dblayer.ErrRegistrationNotFound {
		http.Error(w, "Not Found", http.StatusNotFound)
		return nil, false
	}
	if err != nil {
		glog.Errorf("Error while getting registration %q: %v", registrationID, err)
		http.Error(w, "Internal Error", http.StatusInternalServerError)
		return nil, false
	}

	event, err := u.db.GetEvent(ctx, registration.EventID)
	if err != nil {
		glog.Errorf("Error while getting event %q: %v", registration.EventID, err)
		http.Error(w, "Internal Error", http.StatusInternalServerError)
		return nil, false
	}

	if registration.UserID != user.ID && event.OrganizerID != user.ID {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return nil, false
	}

	return &ticketBundle{Event: event, Registration: registration}, true
}

func (u *WebUI) ticketHandler(w http.ResponseWriter, r *http.Request) {
	bundle, ok := u.loadOwnRegistration(w, r)
	if !ok {
		return
	}

	renderPage(w, uitemplates.TicketTemplate, &uitemplates.TicketParams{
		RegistrationID: bundle.Registration.ID,
		EventTitle:     bundle.Event.Title,
		EventDate:      bundle.Event.Date.Format("Monday, January 2, 2006 3:04 PM"),
		EventLocation:  bundle.Event.Location,
		UserName:       bundle.Registration.UserName,
		QRLink:         "/ticket-qr.png?id=" + bundle.Registration.ID,
		PDFLink:        "/ticket.pdf?id=" + bundle.Registration.ID,
	})
}

func (u *WebUI) ticketQRHandler(w http.ResponseWriter, r *http.Request) {
	bundle, ok := u.loadOwnRegistration(w, r)
	if !ok {
		return
	}

	size := 256
	if s := r.URL.Query().Get("size"); s != "" {
		if parsed, err := strconv.Atoi(s); err == nil && parsed >= 64 && parsed <= 1024 {
			size = parsed
		}
	}

	png, err := ticket.QRPNG(bundle.Registration.ID, size)
	if err != nil {
		glog.Errorf("Error while rendering ticket QR for registration %q: %v", bundle.Registration.ID, err)
		http.Error(w, "Internal Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	if _, err := io.Copy(w, bytes.NewReader(png)); err != nil {
		glog.Errorf("Error while writing ticket QR: %v", err)
	}
}

func (u *WebUI) ticketPDFHandler(w http.ResponseWriter, r *http.Request) {
	bundle, ok := u.loadOwnRegistration(w, r)
	if !ok {
		return
	}

	pdf, err := ticket.PDF(bundle.Event, bundle.Registration)
	if err != nil {
		glog.Errorf("Error while rendering ticket PDF for registration %q: %v", bundle.Registration.ID, err)
		http.Error(w, "Internal Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", "attachment; filename="+ticket.FileName(bundle.Event, bundle.Registration))
	if _, err := io.Copy(w, bytes.NewReader(pdf)); err != nil {
		glog.Errorf("Error while writing ticket PDF: %v", err)
	}
}
