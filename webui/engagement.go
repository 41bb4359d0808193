package webui

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"konvele/dblayer"
	"konvele/dbtypes"
	"konvele/webui/uitemplates"

	"github.com/golang/glog"
)

// postFormValue parses the POST form once and fetches a field, rejecting
// non-POST requests.
func postFormValue(w http.ResponseWriter, r *http.Request, field string) (string, bool) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return "", false
	}
	if err := r.ParseForm(); err != nil {
		glog.Errorf("Error while parsing form: %v", err)
		http.Error(w, "Internal Error", http.StatusInternalServerError)
		return "", false
	}
	return r.PostForm.Get(field), true
}

func (u *WebUI) sendChatHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	user, ok := u.requireUser(w, r)
	if !ok {
		return
	}

	text, ok := postFormValue(w, r, "text")
	if !ok {
		return
	}
	eventID := r.URL.Query().Get("event")

	err := u.db.SendChatMessage(ctx, eventID, user, text)
	var scoringErr *dblayer.ScoringError
	if errors.As(err, &scoringErr) {
		// The message landed; only the leaderboard bump failed.
		glog.Errorf("Error while scoring chat message: %v", err)
		err = nil
	}
	if err != nil {
		glog.Errorf("Error while sending chat message: %v", err)
		http.Error(w, "Internal Error", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, "/show-event?id="+eventID, http.StatusFound)
}

func (u *WebUI) askQuestionHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	user, ok := u.requireUser(w, r)
	if !ok {
		return
	}

	text, ok := postFormValue(w, r, "text")
	if !ok {
		return
	}
	eventID := r.URL.Query().Get("event")

	err := u.db.AskQuestion(ctx, eventID, user, text)
	var scoringErr *dblayer.ScoringError
	if errors.As(err, &scoringErr) {
		glog.Errorf("Error while scoring question: %v", err)
		err = nil
	}
	if err != nil {
		glog.Errorf("Error while asking question: %v", err)
		http.Error(w, "Internal Error", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, "/show-event?id="+eventID, http.StatusFound)
}

func (u *WebUI) toggleUpvoteHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	user, ok := u.requireUser(w, r)
	if !ok {
		return
	}

	questionID, ok := postFormValue(w, r, "question")
	if !ok {
		return
	}

	if err := u.db.ToggleQuestionUpvote(ctx, questionID, user.ID); err != nil {
		glog.Errorf("Error while toggling upvote on question %q: %v", questionID, err)
		http.Error(w, "Internal Error", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, "/show-event?id="+r.URL.Query().Get("event"), http.StatusFound)
}

func (u *WebUI) markAnsweredHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	_, ok := u.requireOrganiser(w, r)
	if !ok {
		return
	}

	questionID, ok := postFormValue(w, r, "question")
	if !ok {
		return
	}
	answered := r.PostForm.Get("answered") != "false"

	if err := u.db.MarkQuestionAnswered(ctx, questionID, answered); err != nil {
		glog.Errorf("Error while marking question %q answered: %v", questionID, err)
		http.Error(w, "Internal Error", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, "/show-event?id="+r.URL.Query().Get("event"), http.StatusFound)
}

func (u *WebUI) createPollHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	_, ok := u.requireOrganiser(w, r)
	if !ok {
		return
	}

	question, ok := postFormValue(w, r, "question")
	if !ok {
		return
	}
	eventID := r.URL.Query().Get("event")

	options := []string{}
	for _, opt := range r.PostForm["option"] {
		options = append(options, strings.TrimSpace(opt))
	}

	if _, err := u.db.CreatePoll(ctx, eventID, question, options); err != nil {
		glog.Errorf("Error while creating poll for event %q: %v", eventID, err)
		http.Error(w, "Internal Error", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, "/show-event?id="+eventID, http.StatusFound)
}

func (u *WebUI) voteHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	user, ok := u.requireUser(w, r)
	if !ok {
		return
	}

	pollID, ok := postFormValue(w, r, "poll")
	if !ok {
		return
	}
	optionID := r.PostForm.Get("option")
	eventID := r.URL.Query().Get("event")

	err := u.db.Vote(ctx, pollID, optionID, user, eventID)
	var scoringErr *dblayer.ScoringError
	if errors.As(err, &scoringErr) {
		glog.Errorf("Error while scoring vote: %v", err)
		err = nil
	}
	if err != nil {
		glog.Errorf("Error while recording vote on poll %q: %v", pollID, err)
		http.Error(w, "Internal Error", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, "/show-event?id="+eventID, http.StatusFound)
}

// checkInResult is the JSON reply for the scanner page.
type checkInResult struct {
	Status    string `json:"status"`
	Message   string `json:"message"`
	UserName  string `json:"userName,omitempty"`
	UserEmail string `json:"userEmail,omitempty"`
}

func (u *WebUI) checkInHandler(w http.ResponseWriter, r *http.Request) {
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

	if r.Method == http.MethodPost {
		if err := r.ParseForm(); err != nil {
			glog.Errorf("Error while parsing form: %v", err)
			http.Error(w, "Internal Error", http.StatusInternalServerError)
			return
		}

		// The scanner posts the raw QR payload, which is the registration
		// document id.  Manual entry posts the same field.
		registrationID := strings.TrimSpace(r.PostForm.Get("registration"))

		registration, err := u.db.CheckIn(ctx, eventID, registrationID)
		result := checkInResult{}
		switch {
		case err == nil:
			result.Status = "ok"
			result.Message = "Checked in."
			result.UserName = registration.UserName
			result.UserEmail = registration.UserEmail
		case err == dblayer.ErrRegistrationNotFound:
			result.Status = "not-found"
			result.Message = "Ticket not found."
		case err == dblayer.ErrTicketWrongEvent:
			result.Status = "wrong-event"
			result.Message = "Invalid ticket for this event."
		case err == dblayer.ErrTicketAlreadyUsed:
			result.Status = "already-used"
			result.Message = "This ticket has already been used."
			result.UserName = registration.UserName
			result.UserEmail = registration.UserEmail
		default:
			glog.Errorf("Error while checking in registration %q: %v", registrationID, err)
			http.Error(w, "Internal Error", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(result); err != nil {
			glog.Errorf("Error while writing check-in result: %v", err)
		}
		return
	}

	renderPage(w, uitemplates.CheckInTemplate, &uitemplates.CheckInParams{
		EventID:    event.ID,
		EventTitle: event.Title,
	})
}

// eventSocketHandler upgrades the connection and streams live engagement
// updates for the event.
func (u *WebUI) eventSocketHandler(w http.ResponseWriter, r *http.Request) {
	user, err := u.getLoggedInUser(r.Context(), r)
	if err != nil {
		glog.Errorf("Error while getting logged-in user: %v", err)
		http.Error(w, "Internal Error", http.StatusInternalServerError)
		return
	}
	if user == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	eventID := r.URL.Query().Get("id")
	if eventID == "" {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	if err := u.hub.Serve(w, r, eventID); err != nil {
		glog.Errorf("Error while serving event socket for event %q: %v", eventID, err)
	}
}
