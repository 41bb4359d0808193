package webui

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"konvele/dblayer"
	"konvele/dbtypes"
	"konvele/ticket"
	"konvele/webui/uitemplates"

	"github.com/golang/glog"
	"github.com/google/uuid"
)

const eventDateForm = "2006-01-02T15:04"

func (u *WebUI) listEventsHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	user, err := u.getLoggedInUser(ctx, r)
	if err != nil {
		glog.Errorf("Error while getting logged-in user: %v", err)
		http.Error(w, "Internal Error", http.StatusInternalServerError)
		return
	}

	events, err := u.db.ListEvents(ctx)
	if err != nil {
		glog.Errorf("Error while listing events: %v", err)
		http.Error(w, "Internal Error", http.StatusInternalServerError)
		return
	}

	params := &uitemplates.ListEventsParams{
		LoggedIn:   user != nil,
		Categories: dbtypes.EventCategories,
	}
	if user != nil && (user.Role == dbtypes.RoleOrganiser || user.Role == dbtypes.RoleAdmin) {
		params.CanCreate = true
	}

	category := r.URL.Query().Get("category")
	for _, event := range events {
		if category != "" && event.Category != category {
			continue
		}
		params.Events = append(params.Events, uitemplates.EventItem{
			ID:       event.ID,
			Title:    event.Title,
			Category: event.Category,
			Date:     event.Date.Format("Jan 2, 2006 3:04 PM"),
			Location: event.Location,
			ImageURL: event.ImageURL,
			ShowLink: "/show-event?id=" + event.ID,
		})
	}

	renderPage(w, uitemplates.ListEventsTemplate, params)
}

func (u *WebUI) showEventHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	eventID := r.URL.Query().Get("id")
	if eventID == "" {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

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

	user, err := u.getLoggedInUser(ctx, r)
	if err != nil {
		glog.Errorf("Error while getting logged-in user: %v", err)
		http.Error(w, "Internal Error", http.StatusInternalServerError)
		return
	}

	params := &uitemplates.ShowEventParams{
		ID:              event.ID,
		Title:           event.Title,
		Category:        event.Category,
		Date:            event.Date.Format("Monday, January 2, 2006 3:04 PM"),
		Location:        event.Location,
		Description:     event.Description,
		LongDescription: event.LongDescription,
		ImageURL:        event.ImageURL,
		LoggedIn:        user != nil,
	}

	for _, speaker := range event.Speakers {
		params.Speakers = append(params.Speakers, uitemplates.SpeakerItem{
			Name:  speaker.Name,
			Title: speaker.Title,
		})
	}
	for _, item := range event.Schedule {
		params.Schedule = append(params.Schedule, uitemplates.ScheduleEntry{
			Time:    item.Time,
			Title:   item.Title,
			Speaker: item.Speaker,
		})
	}

	if user != nil {
		params.IsOrganizer = user.ID == event.OrganizerID || user.Role == dbtypes.RoleAdmin

		chat, err := u.db.ChatMessages(ctx, eventID)
		if err != nil {
			glog.Errorf("Error while loading chat for event %q: %v", eventID, err)
			http.Error(w, "Internal Error", http.StatusInternalServerError)
			return
		}
		for _, msg := range chat {
			params.ChatMessages = append(params.ChatMessages, uitemplates.ChatItem{
				UserName: msg.UserName,
				Text:     msg.Text,
				When:     msg.Timestamp.Format("3:04 PM"),
			})
		}

		questions, err := u.db.Questions(ctx, eventID)
		if err != nil {
			glog.Errorf("Error while loading questions for event %q: %v", eventID, err)
			http.Error(w, "Internal Error", http.StatusInternalServerError)
			return
		}
		for _, q := range questions {
			upvoted := false
			for _, id := range q.UpvotedBy {
				if id == user.ID {
					upvoted = true
				}
			}
			params.Questions = append(params.Questions, uitemplates.QuestionItem{
				ID:       q.ID,
				UserName: q.UserName,
				Text:     q.Text,
				Upvotes:  q.Upvotes,
				Answered: q.IsAnswered,
				Upvoted:  upvoted,
			})
		}

		polls, err := u.db.Polls(ctx, eventID)
		if err != nil {
			glog.Errorf("Error while loading polls for event %q: %v", eventID, err)
			http.Error(w, "Internal Error", http.StatusInternalServerError)
			return
		}
		for _, poll := range polls {
			votes, err := u.db.PollVotes(ctx, poll.ID)
			if err != nil {
				glog.Errorf("Error while loading votes for poll %q: %v", poll.ID, err)
				http.Error(w, "Internal Error", http.StatusInternalServerError)
				return
			}
			item := uitemplates.PollItem{
				ID:       poll.ID,
				Question: poll.Question,
			}
			for _, tally := range dblayer.TallyVotes(poll.Options, votes) {
				voted := false
				for _, vote := range votes {
					if vote.UserID == user.ID && vote.OptionID == tally.OptionID {
						voted = true
					}
				}
				item.Options = append(item.Options, uitemplates.PollOptionItem{
					ID:      tally.OptionID,
					Text:    tally.Text,
					Votes:   tally.Votes,
					Percent: tally.Percentage,
					Voted:   voted,
				})
			}
			params.Polls = append(params.Polls, item)
		}

		leaderboard, err := u.db.Leaderboard(ctx, eventID)
		if err != nil {
			glog.Errorf("Error while loading leaderboard for event %q: %v", eventID, err)
			http.Error(w, "Internal Error", http.StatusInternalServerError)
			return
		}
		for i, entry := range leaderboard {
			params.Leaderboard = append(params.Leaderboard, uitemplates.LeaderboardItem{
				Rank:     i + 1,
				UserName: entry.UserName,
				Score:    entry.Score,
			})
		}

		registrations, err := u.db.EventAttendees(ctx, eventID)
		if err != nil {
			glog.Errorf("Error while loading registrations for event %q: %v", eventID, err)
			http.Error(w, "Internal Error", http.StatusInternalServerError)
			return
		}
		for _, reg := range registrations {
			if reg.UserID == user.ID {
				params.Registered = true
				params.RegistrationID = reg.ID
			}
		}
	}

	renderPage(w, uitemplates.ShowEventTemplate, params)
}

// eventFromForm builds an Event from the posted form fields, reporting a
// user-facing validation message when the input is unacceptable.
func (u *WebUI) eventFromForm(r *http.Request) (*dbtypes.Event, string, error) {
	title := strings.TrimSpace(r.PostForm.Get("title"))
	if title == "" {
		return nil, "Title must not be empty", nil
	}

	category := r.PostForm.Get("category")
	if !dbtypes.ValidCategory(category) {
		return nil, fmt.Sprintf("Category must be one of %s", strings.Join(dbtypes.EventCategories, ", ")), nil
	}

	date, err := time.ParseInLocation(eventDateForm, r.PostForm.Get("date"), time.Local)
	if err != nil {
		return nil, "Date must be filled in", nil
	}

	event := &dbtypes.Event{
		Title:           title,
		Category:        category,
		Date:            date,
		Location:        strings.TrimSpace(r.PostForm.Get("location")),
		Description:     strings.TrimSpace(r.PostForm.Get("description")),
		LongDescription: strings.TrimSpace(r.PostForm.Get("longDescription")),
	}

	for _, tag := range strings.Split(r.PostForm.Get("tags"), ",") {
		tag = strings.TrimSpace(tag)
		if tag != "" {
			event.Tags = append(event.Tags, tag)
		}
	}

	// Speakers and schedule come in as newline-separated "a | b | c" rows.
	for _, line := range strings.Split(r.PostForm.Get("speakers"), "\n") {
		parts := splitRow(line, 2)
		if parts == nil {
			continue
		}
		event.Speakers = append(event.Speakers, dbtypes.Speaker{Name: parts[0], Title: parts[1]})
	}
	for _, line := range strings.Split(r.PostForm.Get("schedule"), "\n") {
		parts := splitRow(line, 3)
		if parts == nil {
			continue
		}
		event.Schedule = append(event.Schedule, dbtypes.ScheduleItem{Time: parts[0], Title: parts[1], Speaker: parts[2]})
	}

	return event, "", nil
}

// splitRow splits a " | "-delimited row into exactly n trimmed fields,
// padding with blanks.  Returns nil for blank lines.
func splitRow(line string, n int) []string {
	if strings.TrimSpace(line) == "" {
		return nil
	}
	parts := strings.Split(line, "|")
	out := make([]string, n)
	for i := 0; i < n && i < len(parts); i++ {
		out[i] = strings.TrimSpace(parts[i])
	}
	return out
}

// uploadEventImage stores the uploaded image (if any) in the image bucket and
// returns its public URL.  Returns "" when no image was uploaded.
func (u *WebUI) uploadEventImage(r *http.Request) (string, error) {
	file, header, err := r.FormFile("image")
	if err == http.ErrMissingFile {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("while reading uploaded image: %w", err)
	}
	defer file.Close()

	ctx := r.Context()

	objectName := "event-images/" + uuid.New().String() + "-" + header.Filename
	writer := u.storageClient.Bucket(u.imageBucket).Object(objectName).NewWriter(ctx)
	writer.ContentType = header.Header.Get("Content-Type")
	if _, err := io.Copy(writer, file); err != nil {
		writer.Close()
		return "", fmt.Errorf("while writing image to bucket: %w", err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("while finalizing image upload: %w", err)
	}

	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", u.imageBucket, objectName), nil
}

func (u *WebUI) createEventHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	user, ok := u.requireOrganiser(w, r)
	if !ok {
		return
	}

	params := &uitemplates.EventFormParams{
		FormTitle:  "Create Event",
		PostTarget: "/create-event",
		Categories: dbtypes.EventCategories,
	}

	if r.Method == http.MethodPost {
		if err := r.ParseMultipartForm(10 << 20); err != nil {
			glog.Errorf("Error while parsing form: %v", err)
			http.Error(w, "Internal Error", http.StatusInternalServerError)
			return
		}

		event, userError, err := u.eventFromForm(r)
		if err != nil {
			glog.Errorf("Error while reading event form: %v", err)
			http.Error(w, "Internal Error", http.StatusInternalServerError)
			return
		}
		if userError != "" {
			params.UserError = userError
			renderPage(w, uitemplates.EventFormTemplate, params)
			return
		}

		imageURL, err := u.uploadEventImage(r)
		if err != nil {
			glog.Errorf("Error while uploading event image: %v", err)
			http.Error(w, "Internal Error", http.StatusInternalServerError)
			return
		}
		event.ImageURL = imageURL
		event.OrganizerID = user.ID

		id, err := u.db.CreateEvent(ctx, event)
		if err != nil {
			glog.Errorf("Error while creating event: %v", err)
			http.Error(w, "Internal Error", http.StatusInternalServerError)
			return
		}

		http.Redirect(w, r, "/show-event?id="+id, http.StatusFound)
		return
	}

	renderPage(w, uitemplates.EventFormTemplate, params)
}

func (u *WebUI) editEventHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	user, ok := u.requireOrganiser(w, r)
	if !ok {
		return
	}

	eventID := r.URL.Query().Get("id")
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

	params := &uitemplates.EventFormParams{
		FormTitle:  "Edit Event",
		PostTarget: "/edit-event?id=" + event.ID,
		Categories: dbtypes.EventCategories,

		Title:           event.Title,
		Category:        event.Category,
		Date:            event.Date.Format(eventDateForm),
		Location:        event.Location,
		Description:     event.Description,
		LongDescription: event.LongDescription,
		Tags:            strings.Join(event.Tags, ", "),
		Speakers:        joinSpeakers(event.Speakers),
		Schedule:        joinSchedule(event.Schedule),
	}

	if r.Method == http.MethodPost {
		if err := r.ParseMultipartForm(10 << 20); err != nil {
			glog.Errorf("Error while parsing form: %v", err)
			http.Error(w, "Internal Error", http.StatusInternalServerError)
			return
		}

		updated, userError, err := u.eventFromForm(r)
		if err != nil {
			glog.Errorf("Error while reading event form: %v", err)
			http.Error(w, "Internal Error", http.StatusInternalServerError)
			return
		}
		if userError != "" {
			params.UserError = userError
			renderPage(w, uitemplates.EventFormTemplate, params)
			return
		}

		imageURL, err := u.uploadEventImage(r)
		if err != nil {
			glog.Errorf("Error while uploading event image: %v", err)
			http.Error(w, "Internal Error", http.StatusInternalServerError)
			return
		}
		if imageURL == "" {
			imageURL = event.ImageURL
		}

		updated.ID = event.ID
		updated.ImageURL = imageURL
		updated.OrganizerID = event.OrganizerID
		updated.SummaryEmailSent = event.SummaryEmailSent

		if err := u.db.UpdateEvent(ctx, updated); err != nil {
			glog.Errorf("Error while updating event %q: %v", event.ID, err)
			http.Error(w, "Internal Error", http.StatusInternalServerError)
			return
		}

		http.Redirect(w, r, "/show-event?id="+event.ID, http.StatusFound)
		return
	}

	renderPage(w, uitemplates.EventFormTemplate, params)
}

func joinSpeakers(speakers []dbtypes.Speaker) string {
	lines := []string{}
	for _, s := range speakers {
		lines = append(lines, s.Name+" | "+s.Title)
	}
	return strings.Join(lines, "\n")
}

func joinSchedule(schedule []dbtypes.ScheduleItem) string {
	lines := []string{}
	for _, item := range schedule {
		lines = append(lines, item.Time+" | "+item.Title+" | "+item.Speaker)
	}
	return strings.Join(lines, "\n")
}

func (u *WebUI) deleteEventHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()

	user, ok := u.requireOrganiser(w, r)
	if !ok {
		return
	}

	eventID := r.URL.Query().Get("id")
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

	if err := u.db.DeleteEvent(ctx, eventID); err != nil {
		glog.Errorf("Error while deleting event %q: %v", eventID, err)
		http.Error(w, "Internal Error", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, "/events", http.StatusFound)
}

func (u *WebUI) registerHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()

	user, ok := u.requireUser(w, r)
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

	registration, err := u.db.Register(ctx, eventID, user)
	if err != nil {
		glog.Errorf("Error while registering user %q for event %q: %v", user.ID, eventID, err)
		http.Error(w, "Internal Error", http.StatusInternalServerError)
		return
	}

	// Confirmation email is best-effort; the registration already exists.
	if u.sendgridClient != nil {
		if err := ticket.SendConfirmation(ctx, u.sendgridClient, registration, event.Title); err != nil {
			glog.Errorf("Error while sending confirmation email for registration %q: %v", registration.ID, err)
		}
	}

	http.Redirect(w, r, "/ticket?id="+registration.ID, http.StatusFound)
}

func (u *WebUI) attendeesHandler(w http.ResponseWriter, r *http.Request) {
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

	registrations, err := u.db.EventAttendees(ctx, eventID)
	if err != nil {
		glog.Errorf("Error while loading registrations for event %q: %v", eventID, err)
		http.Error(w, "Internal Error", http.StatusInternalServerError)
		return
	}

	params := &uitemplates.AttendeesParams{
		EventID:    event.ID,
		EventTitle: event.Title,
	}
	for _, reg := range registrations {
		item := uitemplates.AttendeeItem{
			RegistrationID: reg.ID,
			UserName:       reg.UserName,
			UserEmail:      reg.UserEmail,
			CheckedIn:      reg.CheckedIn,
		}
		if reg.CheckedIn {
			item.CheckInTime = reg.CheckInDate.Format("Jan 2, 3:04 PM")
			params.CheckedInCount++
		}
		params.Attendees = append(params.Attendees, item)
	}
	params.TotalCount = len(params.Attendees)

	renderPage(w, uitemplates.AttendeesTemplate, params)
}

func (u *WebUI) analyticsHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	user, ok := u.requireOrganiser(w, r)
	if !ok {
		return
	}

	analytics, err := u.db.AnalyticsForOrganizer(ctx, user.ID, r.URL.Query().Get("event"))
	if err != nil {
		if errors.Is(err, dblayer.ErrEventNotFound) {
			http.Error(w, "Not Found", http.StatusNotFound)
			return
		}
		glog.Errorf("Error while computing analytics for organizer %q: %v", user.ID, err)
		http.Error(w, "Internal Error", http.StatusInternalServerError)
		return
	}

	events, err := u.db.EventsByOrganizer(ctx, user.ID)
	if err != nil {
		glog.Errorf("Error while listing events for organizer %q: %v", user.ID, err)
		http.Error(w, "Internal Error", http.StatusInternalServerError)
		return
	}

	params := &uitemplates.AnalyticsParams{
		TotalEvents:        analytics.TotalEvents,
		TotalRegistrations: analytics.TotalRegistrations,
		ActiveEventsCount:  analytics.ActiveEventsCount,
		CheckedInCount:     analytics.CheckedInCount,
		CheckInRate:        analytics.CheckInRate,
		TotalEngagement:    analytics.TotalEngagement,
	}
	for _, event := range events {
		params.Events = append(params.Events, uitemplates.EventItem{
			ID:    event.ID,
			Title: event.Title,
		})
	}
	for _, bucket := range analytics.RegistrationsOverTime {
		params.RegistrationsOverTime = append(params.RegistrationsOverTime, uitemplates.BucketCount{
			Bucket: bucket.Bucket,
			Count:  bucket.Registrations,
		})
	}
	for _, top := range analytics.TopEvents {
		params.TopEvents = append(params.TopEvents, uitemplates.TopEventItem{
			Title:         top.Title,
			Registrations: top.Registrations,
		})
	}

	renderPage(w, uitemplates.AnalyticsTemplate, params)
}
