package dblayer

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"konvele/dbtypes"

	"cloud.google.com/go/firestore"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"google.golang.org/api/iterator"
)

// Points awarded per participation action.
const (
	ChatMessagePoints = 1
	QuestionPoints    = 10
	FirstVotePoints   = 5
)

// SendChatMessage appends a chat message for an event and awards the sender
// one point.  Scoring is best-effort: the message has already committed, so a
// scoring failure is reported back only so the caller can log it.
func (db *DB) SendChatMessage(ctx context.Context, eventID string, user *dbtypes.User, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	newMsgRef := db.firestoreClient.Collection("chatMessages").NewDoc()
	message := &dbtypes.ChatMessage{
		ID:           newMsgRef.ID,
		EventID:      eventID,
		UserID:       user.ID,
		UserName:     user.DisplayName,
		UserPhotoURL: user.PhotoURL,
		Text:         text,
		Timestamp:    time.Now(),
	}
	if _, err := newMsgRef.Create(ctx, message); err != nil {
		return fmt.Errorf("while creating chat message: %w", err)
	}

	if err := db.AwardPoints(ctx, eventID, user, ChatMessagePoints); err != nil {
		return &ScoringError{Err: err}
	}
	return nil
}

// ChatMessages returns an event's chat, oldest first.
func (db *DB) ChatMessages(ctx context.Context, eventID string) ([]*dbtypes.ChatMessage, error) {
	messages := []*dbtypes.ChatMessage{}
	msgIter := db.chatQuery(eventID).Documents(ctx)
	defer msgIter.Stop()
	for {
		msgSnapshot, err := msgIter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("while iterating chat messages: %w", err)
		}

		message := &dbtypes.ChatMessage{}
		if err := msgSnapshot.DataTo(message); err != nil {
			return nil, fmt.Errorf("while unmarshaling chat message %s: %w", msgSnapshot.Ref.ID, err)
		}
		message.ID = msgSnapshot.Ref.ID
		messages = append(messages, message)
	}
	return messages, nil
}

func (db *DB) chatQuery(eventID string) firestore.Query {
	return db.firestoreClient.Collection("chatMessages").
		Where("eventId", "==", eventID).
		OrderBy("timestamp", firestore.Asc)
}

// AskQuestion appends a Q&A entry for an event and awards the author ten
// points, best-effort.
func (db *DB) AskQuestion(ctx context.Context, eventID string, user *dbtypes.User, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	newQuestionRef := db.firestoreClient.Collection("questions").NewDoc()
	question := &dbtypes.Question{
		ID:           newQuestionRef.ID,
		EventID:      eventID,
		UserID:       user.ID,
		UserName:     user.DisplayName,
		UserPhotoURL: user.PhotoURL,
		Text:         text,
		Upvotes:      0,
		UpvotedBy:    []string{},
		IsAnswered:   false,
		Timestamp:    time.Now(),
	}
	if _, err := newQuestionRef.Create(ctx, question); err != nil {
		return fmt.Errorf("while creating question: %w", err)
	}

	if err := db.AwardPoints(ctx, eventID, user, QuestionPoints); err != nil {
		return &ScoringError{Err: err}
	}
	return nil
}

// Questions returns an event's Q&A entries in display order: unanswered
// first, then by upvotes descending, then newest first.
func (db *DB) Questions(ctx context.Context, eventID string) ([]*dbtypes.Question, error) {
	questions := []*dbtypes.Question{}
	questionIter := db.firestoreClient.Collection("questions").Where("eventId", "==", eventID).Documents(ctx)
	defer questionIter.Stop()
	for {
		questionSnapshot, err := questionIter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("while iterating questions: %w", err)
		}

		question := &dbtypes.Question{}
		if err := questionSnapshot.DataTo(question); err != nil {
			return nil, fmt.Errorf("while unmarshaling question %s: %w", questionSnapshot.Ref.ID, err)
		}
		question.ID = questionSnapshot.Ref.ID
		questions = append(questions, question)
	}

	SortQuestions(questions)
	return questions, nil
}

// SortQuestions orders Q&A entries for display: unanswered first, then by
// upvotes descending, then newest first.
func SortQuestions(questions []*dbtypes.Question) {
	sort.SliceStable(questions, func(i, j int) bool {
		a, b := questions[i], questions[j]
		if a.IsAnswered != b.IsAnswered {
			return !a.IsAnswered
		}
		if a.Upvotes != b.Upvotes {
			return a.Upvotes > b.Upvotes
		}
		return a.Timestamp.After(b.Timestamp)
	})
}

// ToggleQuestionUpvote adds the user to a question's upvoters, or removes
// them if they already upvoted.
func (db *DB) ToggleQuestionUpvote(ctx context.Context, questionID, userID string) error {
	questionRef := db.firestoreClient.Collection("questions").Doc(questionID)

	questionSnap, err := questionRef.Get(ctx)
	if err != nil {
		if questionSnap != nil && !questionSnap.Exists() {
			return nil
		}
		return fmt.Errorf("while reading question: %w", err)
	}

	question := &dbtypes.Question{}
	if err := questionSnap.DataTo(question); err != nil {
		return fmt.Errorf("while unmarshaling question: %w", err)
	}

	upvoted := false
	for _, id := range question.UpvotedBy {
		if id == userID {
			upvoted = true
		}
	}

	delta := int64(1)
	var arrayOp interface{} = firestore.ArrayUnion(userID)
	if upvoted {
		delta = -1
		arrayOp = firestore.ArrayRemove(userID)
	}

	if _, err := questionRef.Update(ctx, []firestore.Update{
		{Path: "upvotes", Value: firestore.Increment(delta)},
		{Path: "upvotedBy", Value: arrayOp},
	}); err != nil {
		return fmt.Errorf("while toggling upvote: %w", err)
	}
	return nil
}

// MarkQuestionAnswered sets or clears a question's answered flag.
func (db *DB) MarkQuestionAnswered(ctx context.Context, questionID string, answered bool) error {
	questionRef := db.firestoreClient.Collection("questions").Doc(questionID)
	if _, err := questionRef.Update(ctx, []firestore.Update{
		{Path: "isAnswered", Value: answered},
	}); err != nil {
		return fmt.Errorf("while marking question answered: %w", err)
	}
	return nil
}

// CreatePoll stores a poll for an event.  Options are assigned stable
// sequential ids; a poll needs at least two non-blank options.
func (db *DB) CreatePoll(ctx context.Context, eventID, question string, options []string) (string, error) {
	question = strings.TrimSpace(question)

	pollOptions := []dbtypes.PollOption{}
	for _, opt := range options {
		opt = strings.TrimSpace(opt)
		if opt == "" {
			continue
		}
		pollOptions = append(pollOptions, dbtypes.PollOption{
			ID:   fmt.Sprintf("option_%d", len(pollOptions)+1),
			Text: opt,
		})
	}

	if question == "" || len(pollOptions) < 2 {
		return "", fmt.Errorf("poll needs a question and at least two options")
	}

	newPollRef := db.firestoreClient.Collection("polls").NewDoc()
	poll := &dbtypes.Poll{
		ID:        newPollRef.ID,
		EventID:   eventID,
		Question:  question,
		Options:   pollOptions,
		Timestamp: time.Now(),
	}
	if _, err := newPollRef.Create(ctx, poll); err != nil {
		return "", fmt.Errorf("while creating poll: %w", err)
	}
	return newPollRef.ID, nil
}

// Polls returns an event's polls, newest first.
func (db *DB) Polls(ctx context.Context, eventID string) ([]*dbtypes.Poll, error) {
	polls := []*dbtypes.Poll{}
	pollIter := db.pollsQuery(eventID).Documents(ctx)
	defer pollIter.Stop()
	for {
		pollSnapshot, err := pollIter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("while iterating polls: %w", err)
		}

		poll := &dbtypes.Poll{}
		if err := pollSnapshot.DataTo(poll); err != nil {
			return nil, fmt.Errorf("while unmarshaling poll %s: %w", pollSnapshot.Ref.ID, err)
		}
		poll.ID = pollSnapshot.Ref.ID
		polls = append(polls, poll)
	}
	return polls, nil
}

func (db *DB) pollsQuery(eventID string) firestore.Query {
	return db.firestoreClient.Collection("polls").
		Where("eventId", "==", eventID).
		OrderBy("timestamp", firestore.Desc)
}

// PollVotes returns every vote on a poll.
func (db *DB) PollVotes(ctx context.Context, pollID string) ([]*dbtypes.Vote, error) {
	votes := []*dbtypes.Vote{}
	voteIter := db.firestoreClient.Collection("votes").Where("pollId", "==", pollID).Documents(ctx)
	defer voteIter.Stop()
	for {
		voteSnapshot, err := voteIter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("while iterating votes: %w", err)
		}

		vote := &dbtypes.Vote{}
		if err := voteSnapshot.DataTo(vote); err != nil {
			return nil, fmt.Errorf("while unmarshaling vote %s: %w", voteSnapshot.Ref.ID, err)
		}
		vote.ID = voteSnapshot.Ref.ID
		votes = append(votes, vote)
	}
	return votes, nil
}

// votePlan is what the vote transaction should do, given the user's
// existing votes on the poll.
type votePlan struct {
	DeleteIDs []string
	Create    bool
	FirstVote bool
}

// planVote decides the single-vote resolution: a user holds at most one
// vote per poll.  No existing vote means create plus first-vote scoring; an
// existing vote for the same option is kept and nothing new is created; an
// existing vote for another option is deleted and replaced, with no scoring.
func planVote(existing []*dbtypes.Vote, optionID string) votePlan {
	plan := votePlan{
		Create:    true,
		FirstVote: len(existing) == 0,
	}
	for _, vote := range existing {
		if vote.OptionID == optionID {
			plan.Create = false
			continue
		}
		plan.DeleteIDs = append(plan.DeleteIDs, vote.ID)
	}
	return plan
}

// Vote records the user's choice on a poll.  A user holds at most one vote
// per poll: voting again for the same option is a no-op, and switching
// options deletes the old vote and writes the new one in a single
// transaction.  Five points are awarded only on the user's first vote on the
// poll, never on a switch; scoring failures are reported as *ScoringError so
// the caller can treat them as non-fatal.
func (db *DB) Vote(ctx context.Context, pollID, optionID string, user *dbtypes.User, eventID string) error {
	tracer := otel.Tracer("konvele/dblayer")
	var span trace.Span
	ctx, span = tracer.Start(ctx, "DB.Vote")
	defer span.End()

	firstVote := false
	err := db.firestoreClient.RunTransaction(ctx, func(ctx context.Context, txn *firestore.Transaction) error {
		voteIter := txn.Documents(db.firestoreClient.Collection("votes").
			Where("pollId", "==", pollID).
			Where("userId", "==", user.ID))
		defer voteIter.Stop()

		existing := []*dbtypes.Vote{}
		for {
			voteSnapshot, err := voteIter.Next()
			if err == iterator.Done {
				break
			}
			if err != nil {
				return fmt.Errorf("while looking up existing vote: %w", err)
			}

			vote := &dbtypes.Vote{}
			if err := voteSnapshot.DataTo(vote); err != nil {
				return fmt.Errorf("while unmarshaling existing vote: %w", err)
			}
			vote.ID = voteSnapshot.Ref.ID
			existing = append(existing, vote)
		}

		plan := planVote(existing, optionID)
		firstVote = plan.FirstVote

		for _, id := range plan.DeleteIDs {
			if err := txn.Delete(db.firestoreClient.Collection("votes").Doc(id)); err != nil {
				return fmt.Errorf("while deleting old vote: %w", err)
			}
		}

		if !plan.Create {
			return nil
		}

		newVoteRef := db.firestoreClient.Collection("votes").NewDoc()
		if err := txn.Create(newVoteRef, &dbtypes.Vote{
			ID:       newVoteRef.ID,
			PollID:   pollID,
			OptionID: optionID,
			UserID:   user.ID,
			EventID:  eventID,
		}); err != nil {
			return fmt.Errorf("while creating vote: %w", err)
		}

		return nil
	})
	if err != nil {
		return fmt.Errorf("while running vote transaction: %w", err)
	}

	if firstVote {
		if err := db.AwardPoints(ctx, eventID, user, FirstVotePoints); err != nil {
			return &ScoringError{Err: err}
		}
	}
	return nil
}

// OptionTally is the per-option result of a poll for display.
type OptionTally struct {
	OptionID   string
	Text       string
	Votes      int
	Percentage int
}

// TallyVotes computes per-option vote counts and display percentages.  With
// zero total votes every percentage is 0.
func TallyVotes(options []dbtypes.PollOption, votes []*dbtypes.Vote) []OptionTally {
	counts := map[string]int{}
	for _, v := range votes {
		counts[v.OptionID]++
	}

	tallies := make([]OptionTally, 0, len(options))
	for _, opt := range options {
		tally := OptionTally{
			OptionID: opt.ID,
			Text:     opt.Text,
			Votes:    counts[opt.ID],
		}
		if len(votes) > 0 {
			tally.Percentage = int(float64(tally.Votes)/float64(len(votes))*100 + 0.5)
		}
		tallies = append(tallies, tally)
	}
	return tallies
}

// ScoringError marks a failure of the best-effort scoring side effect.  The
// primary write has already committed when one of these is returned.
type ScoringError struct {
	Err error
}

func (e *ScoringError) Error() string {
	return fmt.Sprintf("while awarding points: %v", e.Err)
}

func (e *ScoringError) Unwrap() error {
	return e.Err
}
