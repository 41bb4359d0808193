package webui

import (
	"encoding/json"
	"net/http"
	"strings"

	"konvele/dblayer"
	"konvele/dbtypes"
	"konvele/webui/uitemplates"

	"github.com/golang/glog"
)

// peerConnectHandler renders the mentorship matching page.  Submitting a
// skill runs the matcher and re-renders with results.
func (u *WebUI) peerConnectHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	user, ok := u.requireUser(w, r)
	if !ok {
		return
	}

	params := &uitemplates.PeerConnectParams{}

	if r.Method == http.MethodPost {
		if err := r.ParseForm(); err != nil {
			glog.Errorf("Error while parsing form: %v", err)
			http.Error(w, "Internal Error", http.StatusInternalServerError)
			return
		}

		skill := strings.TrimSpace(r.PostForm.Get("skill"))
		if skill == "" {
			params.UserError = "Tell us what you want to learn"
			renderPage(w, uitemplates.PeerConnectTemplate, params)
			return
		}
		params.Skill = skill

		matches, err := u.assist.FindMentors(ctx, user.ID, skill)
		if err != nil {
			glog.Errorf("Error while matching mentors for user %q: %v", user.ID, err)
			params.UserError = "Mentor matching is unavailable right now; please try again later"
			renderPage(w, uitemplates.PeerConnectTemplate, params)
			return
		}

		for _, match := range matches {
			params.Matches = append(params.Matches, uitemplates.MentorItem{
				UserID:      match.UID,
				DisplayName: match.DisplayName,
				Skills:      strings.Join(match.Skills, ", "),
				Reason:      match.Reason,
			})
		}
	}

	renderPage(w, uitemplates.PeerConnectTemplate, params)
}

func (u *WebUI) recommendationsHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	user, ok := u.requireUser(w, r)
	if !ok {
		return
	}

	recommendations, err := u.assist.RecommendEvents(ctx, user.ID)
	if err != nil {
		glog.Errorf("Error while recommending events for user %q: %v", user.ID, err)
		http.Error(w, "Internal Error", http.StatusInternalServerError)
		return
	}

	params := &uitemplates.RecommendationsParams{}
	for _, rec := range recommendations {
		params.Recommendations = append(params.Recommendations, uitemplates.RecommendationItem{
			Title:    rec.Title,
			Reason:   rec.Reason,
			ShowLink: "/show-event?id=" + rec.ID,
		})
	}

	renderPage(w, uitemplates.RecommendationsTemplate, params)
}

// eventAssistantHandler answers a free-form question about an event.  It is
// called from the event page via fetch and replies in JSON.
func (u *WebUI) eventAssistantHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	_, ok := u.requireUser(w, r)
	if !ok {
		return
	}

	query, ok := postFormValue(w, r, "query")
	if !ok {
		return
	}
	eventID := r.URL.Query().Get("event")
	if eventID == "" || strings.TrimSpace(query) == "" {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	answer, err := u.assist.AnswerEventQuestion(ctx, eventID, query)
	if err != nil {
		glog.Errorf("Error while answering event question for event %q: %v", eventID, err)
		http.Error(w, "Internal Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(map[string]string{"answer": answer}); err != nil {
		glog.Errorf("Error while writing assistant answer: %v", err)
	}
}

func (u *WebUI) eventSummaryHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	user, ok := u.requireOrganiser(w, r)
	if !ok {
		return
	}

	eventID := r.URL.Query().Get("event")
	event, err := u.db.GetEvent(ctx, eventID)
	if err == dblayer.ErrEventNotFound {
		http.Error(w, "Not Found", http.StatusNotFound)
		return
	}
	if err != nil {
		glog.Errorf("Error while getting event %q: %v", eventID, err)
		http.Error(w, "Internal Error", http.StatusInternalServerError)
		return
	}
	if event.OrganizerID != user.ID && user.Role != dbtypes.RoleAdmin {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}

	summary, err := u.assist.GenerateEventSummary(ctx, event.ID, event.Title)
	if err != nil {
		glog.Errorf("Error while generating summary for event %q: %v", eventID, err)
		http.Error(w, "Internal Error", http.StatusInternalServerError)
		return
	}

	renderPage(w, uitemplates.EventSummaryTemplate, &uitemplates.EventSummaryParams{
		EventID:    event.ID,
		EventTitle: event.Title,
		Summary:    summary,
	})
}

func (u *WebUI) emailBlastHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	user, ok := u.requireOrganiser(w, r)
	if !ok {
		return
	}

	eventID := r.URL.Query().Get("event")
	event, err := u.db.GetEvent(ctx, eventID)
	if err == dblayer.ErrEventNotFound {
		http.Error(w, "Not Found", http.StatusNotFound)
		return
	}
	if err != nil {
		glog.Errorf("Error while getting event %q: %v", eventID, err)
		http.Error(w, "Internal Error", http.StatusInternalServerError)
		return
	}
	if event.OrganizerID != user.ID && user.Role != dbtypes.RoleAdmin {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}

	params := &uitemplates.EmailBlastParams{
		EventID:    event.ID,
		EventTitle: event.Title,
	}

	if r.Method == http.MethodPost {
		if err := r.ParseForm(); err != nil {
			glog.Errorf("Error while parsing form: %v", err)
			http.Error(w, "Internal Error", http.StatusInternalServerError)
			return
		}

		subject := strings.TrimSpace(r.PostForm.Get("subject"))
		body := strings.TrimSpace(r.PostForm.Get("body"))
		if subject == "" || body == "" {
			params.UserError = "Subject and body must not be empty"
			renderPage(w, uitemplates.EmailBlastTemplate, params)
			return
		}

		sent, err := u.assist.SendEmailBlast(ctx, event.ID, subject, body)
		if err != nil {
			glog.Errorf("Error while sending email blast for event %q: %v", eventID, err)
			params.UserError = "Sending failed; please try again"
			renderPage(w, uitemplates.EmailBlastTemplate, params)
			return
		}

		params.SentCount = sent
		params.Sent = true
	}

	renderPage(w, uitemplates.EmailBlastTemplate, params)
}
