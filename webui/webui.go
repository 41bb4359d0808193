// Package webui implements the Konvele web interface.
package webui

import (
	"bytes"
	"context"
	"html/template"
	"io"
	"net/http"
	"strings"
	"time"

	"konvele/assistant"
	"konvele/dblayer"
	"konvele/dbtypes"
	"konvele/webui/uitemplates"
	"konvele/wshub"

	"cloud.google.com/go/storage"
	"github.com/golang/glog"
	"github.com/sendgrid/sendgrid-go"
)

const sessionCookieName = "Konvele-Session"

type WebUI struct {
	db             *dblayer.DB
	assist         *assistant.Assistant
	hub            *wshub.Hub
	sendgridClient *sendgrid.Client
	storageClient  *storage.Client
	imageBucket    string
}

func New(db *dblayer.DB, assist *assistant.Assistant, hub *wshub.Hub, sendgridClient *sendgrid.Client, storageClient *storage.Client, imageBucket string) *WebUI {
	return &WebUI{
		db:             db,
		assist:         assist,
		hub:            hub,
		sendgridClient: sendgridClient,
		storageClient:  storageClient,
		imageBucket:    imageBucket,
	}
}

func (u *WebUI) Register(m *http.ServeMux) {
	m.HandleFunc("/", u.homeHandler)
	m.HandleFunc("/log-in", u.logInHandler)
	m.HandleFunc("/log-out", u.logOutHandler)
	m.HandleFunc("/settings", u.settingsHandler)

	m.HandleFunc("/events", u.listEventsHandler)
	m.HandleFunc("/show-event", u.showEventHandler)
	m.HandleFunc("/create-event", u.createEventHandler)
	m.HandleFunc("/edit-event", u.editEventHandler)
	m.HandleFunc("/delete-event", u.deleteEventHandler)
	m.HandleFunc("/register-for-event", u.registerHandler)
	m.HandleFunc("/attendees", u.attendeesHandler)
	m.HandleFunc("/analytics", u.analyticsHandler)

	m.HandleFunc("/ticket", u.ticketHandler)
	m.HandleFunc("/ticket-qr.png", u.ticketQRHandler)
	m.HandleFunc("/ticket.pdf", u.ticketPDFHandler)
	m.HandleFunc("/check-in", u.checkInHandler)

	m.HandleFunc("/send-chat", u.sendChatHandler)
	m.HandleFunc("/ask-question", u.askQuestionHandler)
	m.HandleFunc("/toggle-upvote", u.toggleUpvoteHandler)
	m.HandleFunc("/mark-answered", u.markAnsweredHandler)
	m.HandleFunc("/create-poll", u.createPollHandler)
	m.HandleFunc("/vote", u.voteHandler)
	m.HandleFunc("/ws/event", u.eventSocketHandler)

	m.HandleFunc("/blog", u.listPostsHandler)
	m.HandleFunc("/show-post", u.showPostHandler)
	m.HandleFunc("/new-post", u.newPostHandler)
	m.HandleFunc("/edit-post", u.editPostHandler)
	m.HandleFunc("/delete-post", u.deletePostHandler)

	m.HandleFunc("/messages", u.messagesHandler)
	m.HandleFunc("/conversation", u.conversationHandler)
	m.HandleFunc("/start-conversation", u.startConversationHandler)
	m.HandleFunc("/ws/conversation", u.conversationSocketHandler)
	m.HandleFunc("/ws/inbox", u.inboxSocketHandler)

	m.HandleFunc("/peer-connect", u.peerConnectHandler)
	m.HandleFunc("/recommendations", u.recommendationsHandler)
	m.HandleFunc("/event-assistant", u.eventAssistantHandler)
	m.HandleFunc("/event-summary", u.eventSummaryHandler)
	m.HandleFunc("/email-blast", u.emailBlastHandler)
}

// getLoggedInUser loads the user associated with the session cookie in the
// request, if it exists.
func (u *WebUI) getLoggedInUser(ctx context.Context, r *http.Request) (*dbtypes.User, error) {
	var sessionCookie *http.Cookie
	for _, cookie := range r.Cookies() {
		if cookie.Name == sessionCookieName {
			sessionCookie = cookie
		}
	}
	if sessionCookie == nil {
		// No session cookie; user is not logged in.
		return nil, nil
	}

	return u.db.UserFromSessionCookie(ctx, sessionCookie.Value)
}

// renderPage executes the template into a buffer first so that a template
// error can still become a clean 500.
func renderPage(w http.ResponseWriter, tmpl *template.Template, params interface{}) {
	content := bytes.Buffer{}
	if err := tmpl.Execute(&content, params); err != nil {
		glog.Errorf("Error while executing template: %v", err)
		http.Error(w, "Internal Error", http.StatusInternalServerError)
		return
	}

	if _, err := io.Copy(w, &content); err != nil {
		// It's too late to write an error to the HTTP response.
		glog.Errorf("Error while writing output: %v", err)
		return
	}
}

// requireUser loads the logged-in user or redirects to the login page.  The
// returned bool reports whether the handler should continue.
func (u *WebUI) requireUser(w http.ResponseWriter, r *http.Request) (*dbtypes.User, bool) {
	user, err := u.getLoggedInUser(r.Context(), r)
	if err != nil {
		glog.Errorf("Error while getting logged-in user: %v", err)
		http.Error(w, "Internal Error", http.StatusInternalServerError)
		return nil, false
	}
	if user == nil {
		http.Redirect(w, r, "/log-in", http.StatusFound)
		return nil, false
	}
	return user, true
}

// requireOrganiser is requireUser plus a role gate.  Admins pass too.
func (u *WebUI) requireOrganiser(w http.ResponseWriter, r *http.Request) (*dbtypes.User, bool) {
	user, ok := u.requireUser(w, r)
	if !ok {
		return nil, false
	}
	if user.Role != dbtypes.RoleOrganiser && user.Role != dbtypes.RoleAdmin {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return nil, false
	}
	return user, true
}

// homeHandler renders the home page.
func (u *WebUI) homeHandler(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.Error(w, "Not Found", http.StatusNotFound)
		return
	}

	ctx := r.Context()

	params := &uitemplates.HomeParams{}

	user, err := u.getLoggedInUser(ctx, r)
	if err != nil {
		glog.Errorf("Error while getting logged-in user: %v", err)
		http.Error(w, "Internal Error", http.StatusInternalServerError)
		return
	}
	if user != nil {
		params.LoggedIn = true
		params.DisplayName = user.DisplayName
		params.Role = user.Role
	}

	events, err := u.db.ListEvents(ctx)
	if err != nil {
		glog.Errorf("Error while listing events: %v", err)
		http.Error(w, "Internal Error", http.StatusInternalServerError)
		return
	}
	now := time.Now()
	for _, event := range events {
		if event.Date.Before(now) {
			continue
		}
		params.UpcomingEvents = append(params.UpcomingEvents, uitemplates.EventItem{
			ID:       event.ID,
			Title:    event.Title,
			Category: event.Category,
			Date:     event.Date.Format("Jan 2, 2006 3:04 PM"),
			Location: event.Location,
			ShowLink: "/show-event?id=" + event.ID,
		})
	}

	renderPage(w, uitemplates.HomeTemplate, params)
}

func (u *WebUI) logInHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	user, err := u.getLoggedInUser(ctx, r)
	if err != nil {
		glog.Errorf("Error while getting logged-in user: %v", err)
		http.Error(w, "Internal Error", http.StatusInternalServerError)
		return
	}

	if user != nil {
		// User is already logged in.  Send them back home.
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}

	if r.Method == http.MethodPost {
		if err := r.ParseForm(); err != nil {
			glog.Errorf("Error while parsing form: %v", err)
			http.Error(w, "Internal Error", http.StatusInternalServerError)
			return
		}

		session, err := u.db.SessionFromPassword(ctx, r.PostForm.Get("email"), r.PostForm.Get("password"))
		switch err {
		case nil:
			http.SetCookie(w, &http.Cookie{
				Name:     sessionCookieName,
				Value:    session.Cookie,
				SameSite: http.SameSiteStrictMode,
				Expires:  session.Expires,
			})
			http.Redirect(w, r, "/", http.StatusFound)
			return
		case dblayer.ErrEmailMustNotBeEmpty, dblayer.ErrPasswordMustNotBeEmpty, dblayer.ErrUnknownUserOrWrongPassword:
			renderPage(w, uitemplates.LogInTemplate, &uitemplates.LogInParams{UserError: userErrorText(err)})
			return
		default:
			glog.Errorf("Error while processing log in form: %v", err)
			http.Error(w, "Internal Error", http.StatusInternalServerError)
			return
		}
	}

	renderPage(w, uitemplates.LogInTemplate, &uitemplates.LogInParams{})
}

func userErrorText(err error) string {
	switch err {
	case dblayer.ErrEmailMustNotBeEmpty:
		return "Email must not be empty"
	case dblayer.ErrPasswordMustNotBeEmpty:
		return "Password must not be empty"
	case dblayer.ErrUnknownUserOrWrongPassword:
		return "Unknown user or wrong password"
	}
	return "Something went wrong"
}

func (u *WebUI) logOutHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	for _, cookie := range r.Cookies() {
		if cookie.Name != sessionCookieName {
			continue
		}
		if err := u.db.DeleteSession(ctx, cookie.Value); err != nil {
			glog.Errorf("Error while deleting session: %v", err)
		}
	}

	http.SetCookie(w, &http.Cookie{
		Name:    sessionCookieName,
		Value:   "",
		Expires: time.Unix(0, 0),
	})
	http.Redirect(w, r, "/", http.StatusFound)
}

func (u *WebUI) settingsHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	user, ok := u.requireUser(w, r)
	if !ok {
		return
	}

	params := &uitemplates.SettingsParams{
		DisplayName: user.DisplayName,
		PhotoURL:    user.PhotoURL,
		Stream:      user.Stream,
		CollegeName: user.CollegeName,
		Year:        user.Year,
		Skills:      strings.Join(user.Skills, ", "),
		IsStudent:   user.Role == dbtypes.RoleStudent,
	}

	if r.Method == http.MethodPost {
		if err := r.ParseForm(); err != nil {
			glog.Errorf("Error while parsing form: %v", err)
			http.Error(w, "Internal Error", http.StatusInternalServerError)
			return
		}

		displayName := strings.TrimSpace(r.PostForm.Get("displayName"))
		if displayName == "" {
			params.UserError = "Display name must not be empty"
			renderPage(w, uitemplates.SettingsTemplate, params)
			return
		}

		skills := []string{}
		for _, skill := range strings.Split(r.PostForm.Get("skills"), ",") {
			skill = strings.TrimSpace(skill)
			if skill != "" {
				skills = append(skills, skill)
			}
		}

		err := u.db.UpdateUserProfile(ctx, user.ID,
			displayName,
			strings.TrimSpace(r.PostForm.Get("photoURL")),
			strings.TrimSpace(r.PostForm.Get("stream")),
			strings.TrimSpace(r.PostForm.Get("collegeName")),
			strings.TrimSpace(r.PostForm.Get("year")),
			skills)
		if err != nil {
			glog.Errorf("Error while updating profile: %v", err)
			params.UserError = "Saving your profile failed; please try again"
			renderPage(w, uitemplates.SettingsTemplate, params)
			return
		}

		http.Redirect(w, r, "/settings", http.StatusFound)
		return
	}

	renderPage(w, uitemplates.SettingsTemplate, params)
}
