package webui

import (
	"net/http"
	"strings"

	"konvele/dblayer"
	"konvele/webui/uitemplates"

	"github.com/golang/glog"
)

func (u *WebUI) messagesHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	user, ok := u.requireUser(w, r)
	if !ok {
		return
	}

	conversations, err := u.db.ConversationsForUser(ctx, user.ID)
	if err != nil {
		glog.Errorf("Error while listing conversations for user %q: %v", user.ID, err)
		http.Error(w, "Internal Error", http.StatusInternalServerError)
		return
	}

	params := &uitemplates.MessagesParams{}
	for _, conv := range conversations {
		item := uitemplates.ConversationItem{
			ID:          conv.ID,
			LastMessage: conv.LastMessage,
			When:        conv.LastMessageTimestamp.Format("Jan 2, 3:04 PM"),
			ShowLink:    "/conversation?id=" + conv.ID,
		}
		// Display the other participant's name.
		for id, participant := range conv.Participants {
			if id != user.ID {
				item.OtherName = participant.DisplayName
			}
		}
		params.Conversations = append(params.Conversations, item)
	}

	renderPage(w, uitemplates.MessagesTemplate, params)
}

func (u *WebUI) conversationHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	user, ok := u.requireUser(w, r)
	if !ok {
		return
	}

	conversationID := r.URL.Query().Get("id")
	if conversationID == "" {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	// Membership check via the user's own conversation list.
	conversations, err := u.db.ConversationsForUser(ctx, user.ID)
	if err != nil {
		glog.Errorf("Error while listing conversations for user %q: %v", user.ID, err)
		http.Error(w, "Internal Error", http.StatusInternalServerError)
		return
	}
	otherName := ""
	found := false
	for _, conv := range conversations {
		if conv.ID != conversationID {
			continue
		}
		found = true
		for id, participant := range conv.Participants {
			if id != user.ID {
				otherName = participant.DisplayName
			}
		}
	}
	if !found {
		http.Error(w, "Not Found", http.StatusNotFound)
		return
	}

	if r.Method == http.MethodPost {
		if err := r.ParseForm(); err != nil {
			glog.Errorf("Error while parsing form: %v", err)
			http.Error(w, "Internal Error", http.StatusInternalServerError)
			return
		}

		text := strings.TrimSpace(r.PostForm.Get("text"))
		if text != "" {
			if err := u.db.SendDirectMessage(ctx, conversationID, user.ID, text); err != nil {
				glog.Errorf("Error while sending message in conversation %q: %v", conversationID, err)
				http.Error(w, "Internal Error", http.StatusInternalServerError)
				return
			}
		}

		http.Redirect(w, r, "/conversation?id="+conversationID, http.StatusFound)
		return
	}

	messages, err := u.db.ConversationMessages(ctx, conversationID)
	if err != nil {
		glog.Errorf("Error while loading messages for conversation %q: %v", conversationID, err)
		http.Error(w, "Internal Error", http.StatusInternalServerError)
		return
	}

	params := &uitemplates.ConversationParams{
		ID:        conversationID,
		OtherName: otherName,
	}
	for _, msg := range messages {
		params.Messages = append(params.Messages, uitemplates.MessageItem{
			Text:   msg.Text,
			Mine:   msg.SenderID == user.ID,
			System: msg.SenderID == "",
			When:   msg.Timestamp.Format("Jan 2, 3:04 PM"),
		})
	}

	renderPage(w, uitemplates.ConversationTemplate, params)
}

// conversationSocketHandler upgrades the connection and streams live message
// updates for a conversation the user participates in.
func (u *WebUI) conversationSocketHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	user, err := u.getLoggedInUser(ctx, r)
	if err != nil {
		glog.Errorf("Error while getting logged-in user: %v", err)
		http.Error(w, "Internal Error", http.StatusInternalServerError)
		return
	}
	if user == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	conversationID := r.URL.Query().Get("id")
	if conversationID == "" {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	// Membership check via the user's own conversation list.
	conversations, err := u.db.ConversationsForUser(ctx, user.ID)
	if err != nil {
		glog.Errorf("Error while listing conversations for user %q: %v", user.ID, err)
		http.Error(w, "Internal Error", http.StatusInternalServerError)
		return
	}
	found := false
	for _, conv := range conversations {
		if conv.ID == conversationID {
			found = true
		}
	}
	if !found {
		http.Error(w, "Not Found", http.StatusNotFound)
		return
	}

	if err := u.hub.ServeConversation(w, r, conversationID); err != nil {
		glog.Errorf("Error while serving socket for conversation %q: %v", conversationID, err)
	}
}

// inboxSocketHandler upgrades the connection and streams the user's
// conversation list.
func (u *WebUI) inboxSocketHandler(w http.ResponseWriter, r *http.Request) {
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

	if err := u.hub.ServeInbox(w, r, user.ID); err != nil {
		glog.Errorf("Error while serving inbox socket for user %q: %v", user.ID, err)
	}
}

func (u *WebUI) startConversationHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()

	user, ok := u.requireUser(w, r)
	if !ok {
		return
	}

	if err := r.ParseForm(); err != nil {
		glog.Errorf("Error while parsing form: %v", err)
		http.Error(w, "Internal Error", http.StatusInternalServerError)
		return
	}

	otherID := r.PostForm.Get("user")
	if otherID == "" || otherID == user.ID {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	conversationID, err := u.db.EnsureConversation(ctx, user.ID, otherID)
	if err == dblayer.ErrUserNotFound {
		http.Error(w, "Not Found", http.StatusNotFound)
		return
	}
	if err != nil {
		glog.Errorf("Error while starting conversation between %q and %q: %v", user.ID, otherID, err)
		http.Error(w, "Internal Error", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, "/conversation?id="+conversationID, http.StatusFound)
}
