// Package dbtypes holds the Firestore document types shared by the rest of
// the application.
package dbtypes

import (
	"time"

	"cloud.google.com/go/firestore"
)

// Role labels stored on User documents.
const (
	RoleAdmin     = "admin"
	RoleOrganiser = "organiser"
	RoleStudent   = "student"
)

// Event categories.  Writes outside this set are rejected before they reach
// Firestore.
var EventCategories = []string{"Tech", "Business", "Marketing", "Design", "Science"}

// User represents a person registered and interacting with the application.
//
// Students additionally carry the profile fields used by peer mentorship
// matching.
type User struct {
	ID           string `firestore:"id"`
	Email        string `firestore:"email"`
	PasswordHash string `firestore:"passwordHash"`
	DisplayName  string `firestore:"displayName"`
	PhotoURL     string `firestore:"photoURL"`
	Role         string `firestore:"role"`

	Skills      []string `firestore:"skills"`
	Stream      string   `firestore:"stream"`
	CollegeName string   `firestore:"collegeName"`
	Year        string   `firestore:"year"`
}

// Session represents a log-in session for a User.
type Session struct {
	Cookie  string                 `firestore:"cookie"`
	User    *firestore.DocumentRef `firestore:"user"`
	Expires time.Time              `firestore:"expires"`
}

type Speaker struct {
	Name   string `firestore:"name"`
	Title  string `firestore:"title"`
	Avatar string `firestore:"avatar"`
}

type ScheduleItem struct {
	Time    string `firestore:"time"`
	Title   string `firestore:"title"`
	Speaker string `firestore:"speaker"`
}

// Event is a scheduled gathering managed by an organiser.
//
// Date is always a time.Time at this boundary; whatever shape a legacy
// document stored, it is normalized on read.
type Event struct {
	ID              string         `firestore:"id"`
	Title           string         `firestore:"title"`
	Category        string         `firestore:"category"`
	Date            time.Time      `firestore:"date"`
	Location        string         `firestore:"location"`
	Description     string         `firestore:"description"`
	LongDescription string         `firestore:"longDescription"`
	ImageURL        string         `firestore:"imageUrl"`
	Speakers        []Speaker      `firestore:"speakers"`
	Schedule        []ScheduleItem `firestore:"schedule"`
	OrganizerID     string         `firestore:"organizerId"`
	Tags            []string       `firestore:"tags"`

	// Set by the digester once the post-event summary email has gone out.
	SummaryEmailSent bool `firestore:"summaryEmailSent"`
}

// Registration is a user's enrollment record for an event.  At most one
// exists per (event, user) pair; the pair is deduplicated by lookup before
// insert, not by a uniqueness constraint.
type Registration struct {
	ID               string    `firestore:"id"`
	EventID          string    `firestore:"eventId"`
	UserID           string    `firestore:"userId"`
	UserName         string    `firestore:"userName"`
	UserEmail        string    `firestore:"userEmail"`
	RegistrationDate time.Time `firestore:"registrationDate"`
	CheckedIn        bool      `firestore:"checkedIn"`
	CheckInDate      time.Time `firestore:"checkInDate"`
}

// ChatMessage is one append-only live chat entry for an event.
type ChatMessage struct {
	ID           string    `firestore:"id"`
	EventID      string    `firestore:"eventId"`
	UserID       string    `firestore:"userId"`
	UserName     string    `firestore:"userName"`
	UserPhotoURL string    `firestore:"userPhotoURL"`
	Text         string    `firestore:"text"`
	Timestamp    time.Time `firestore:"timestamp"`
}

// Question is an audience Q&A entry.  UpvotedBy mirrors Upvotes so that a
// toggle can tell whether this user already upvoted.
type Question struct {
	ID           string    `firestore:"id"`
	EventID      string    `firestore:"eventId"`
	UserID       string    `firestore:"userId"`
	UserName     string    `firestore:"userName"`
	UserPhotoURL string    `firestore:"userPhotoURL"`
	Text         string    `firestore:"text"`
	Upvotes      int64     `firestore:"upvotes"`
	UpvotedBy    []string  `firestore:"upvotedBy"`
	IsAnswered   bool      `firestore:"isAnswered"`
	Timestamp    time.Time `firestore:"timestamp"`
}

type PollOption struct {
	ID   string `firestore:"id"`
	Text string `firestore:"text"`
}

type Poll struct {
	ID        string       `firestore:"id"`
	EventID   string       `firestore:"eventId"`
	Question  string       `firestore:"question"`
	Options   []PollOption `firestore:"options"`
	Timestamp time.Time    `firestore:"timestamp"`
}

// Vote records a user's single active choice on a poll.  EventID is carried
// for scoring attribution.
type Vote struct {
	ID       string `firestore:"id"`
	PollID   string `firestore:"pollId"`
	OptionID string `firestore:"optionId"`
	UserID   string `firestore:"userId"`
	EventID  string `firestore:"eventId"`
}

// LeaderboardEntry is the accumulated engagement score for one user in one
// event, upserted via increment.
type LeaderboardEntry struct {
	ID           string `firestore:"id"`
	EventID      string `firestore:"eventId"`
	UserID       string `firestore:"userId"`
	UserName     string `firestore:"userName"`
	UserPhotoURL string `firestore:"userPhotoURL"`
	Score        int64  `firestore:"score"`
}

type BlogPost struct {
	ID             string    `firestore:"id"`
	Title          string    `firestore:"title"`
	Content        string    `firestore:"content"`
	AuthorID       string    `firestore:"authorId"`
	AuthorName     string    `firestore:"authorName"`
	AuthorPhotoURL string    `firestore:"authorPhotoURL"`
	CreatedAt      time.Time `firestore:"createdAt"`
	UpdatedAt      time.Time `firestore:"updatedAt"`
	Tags           []string  `firestore:"tags"`
}

// ConversationParticipant is the denormalized display info stored on a
// Conversation for each participant id.
type ConversationParticipant struct {
	DisplayName string `firestore:"displayName"`
	PhotoURL    string `firestore:"photoURL"`
}

// Conversation is a private two-party thread.  At most one exists per
// unordered participant pair.  An empty LastMessageSenderID marks the
// synthetic system message written at creation.
type Conversation struct {
	ID                   string                             `firestore:"id"`
	ParticipantIDs       []string                           `firestore:"participantIds"`
	Participants         map[string]ConversationParticipant `firestore:"participants"`
	LastMessage          string                             `firestore:"lastMessage"`
	LastMessageTimestamp time.Time                          `firestore:"lastMessageTimestamp"`
	LastMessageSenderID  string                             `firestore:"lastMessageSenderId"`
}

// Message is one entry in a conversation's messages subcollection.
type Message struct {
	ID             string    `firestore:"id"`
	ConversationID string    `firestore:"conversationId"`
	SenderID       string    `firestore:"senderId"`
	Text           string    `firestore:"text"`
	Timestamp      time.Time `firestore:"timestamp"`
}

// ValidCategory reports whether c is one of the five event categories.
func ValidCategory(c string) bool {
	for _, cat := range EventCategories {
		if c == cat {
			return true
		}
	}
	return false
}
