package dblayer

import (
	"context"
	"fmt"

	"konvele/dbtypes"

	"cloud.google.com/go/firestore"
	"go.opentelemetry.io/otel"
	"google.golang.org/api/iterator"
)

// Subscription is a standing live query.  Updates carries the full current
// materialized view of the query; every change to any matching document
// yields a fresh complete slice, starting with an immediate initial
// snapshot.  A query matching nothing yields an empty slice, not an error.
//
// Only the latest view is retained: if the consumer lags, intermediate views
// are replaced rather than queued.  Stop tears the listener down; Updates is
// closed once no further deliveries can occur.
type Subscription[T any] struct {
	Updates <-chan []*T

	cancel context.CancelFunc
	done   chan struct{}

	// Err is set before Updates is closed when the listener died for a
	// reason other than Stop.
	Err error
}

// Stop releases the subscription.  It blocks until the listener goroutine
// has exited, after which no further deliveries occur.
func (s *Subscription[T]) Stop() {
	s.cancel()
	<-s.done
}

func watchQuery[T any](ctx context.Context, q firestore.Query, decode func(*firestore.DocumentSnapshot) (*T, error), post func([]*T)) *Subscription[T] {
	ctx, cancel := context.WithCancel(ctx)
	updates := make(chan []*T, 1)
	sub := &Subscription[T]{
		Updates: updates,
		cancel:  cancel,
		done:    make(chan struct{}),
	}

	go func() {
		defer close(sub.done)
		defer close(updates)

		tracer := otel.Tracer("konvele/dblayer")
		snapIter := q.Snapshots(ctx)
		defer snapIter.Stop()

		for {
			qsnap, err := snapIter.Next()
			if err != nil {
				if ctx.Err() != nil {
					// Stopped by the caller.
					return
				}
				sub.Err = fmt.Errorf("while waiting for query snapshot: %w", err)
				return
			}

			_, span := tracer.Start(ctx, "Subscription.materialize")

			view := []*T{}
			decodeErr := false
			for {
				docSnapshot, err := qsnap.Documents.Next()
				if err == iterator.Done {
					break
				}
				if err != nil {
					sub.Err = fmt.Errorf("while iterating snapshot documents: %w", err)
					decodeErr = true
					break
				}

				item, err := decode(docSnapshot)
				if err != nil {
					sub.Err = fmt.Errorf("while decoding document %s: %w", docSnapshot.Ref.ID, err)
					decodeErr = true
					break
				}
				view = append(view, item)
			}

			span.End()

			if decodeErr {
				return
			}

			if post != nil {
				post(view)
			}

			// Latest-wins delivery: replace an unconsumed view instead of
			// queueing behind it.  This goroutine is the only sender, so
			// the drain-then-send pair cannot block.
			select {
			case updates <- view:
			default:
				select {
				case <-updates:
				default:
				}
				updates <- view
			}
		}
	}()

	return sub
}

// WatchChat subscribes to an event's chat, oldest message first.
func (db *DB) WatchChat(ctx context.Context, eventID string) *Subscription[dbtypes.ChatMessage] {
	return watchQuery(ctx, db.chatQuery(eventID), decodeInto[dbtypes.ChatMessage](func(m *dbtypes.ChatMessage, id string) { m.ID = id }), nil)
}

// WatchQuestions subscribes to an event's Q&A in display order.
func (db *DB) WatchQuestions(ctx context.Context, eventID string) *Subscription[dbtypes.Question] {
	q := db.firestoreClient.Collection("questions").Where("eventId", "==", eventID)
	return watchQuery(ctx, q, decodeInto[dbtypes.Question](func(qn *dbtypes.Question, id string) { qn.ID = id }), SortQuestions)
}

// WatchPolls subscribes to an event's polls, newest first.
func (db *DB) WatchPolls(ctx context.Context, eventID string) *Subscription[dbtypes.Poll] {
	return watchQuery(ctx, db.pollsQuery(eventID), decodeInto[dbtypes.Poll](func(p *dbtypes.Poll, id string) { p.ID = id }), nil)
}

// WatchPollVotes subscribes to the votes on one poll.
func (db *DB) WatchPollVotes(ctx context.Context, pollID string) *Subscription[dbtypes.Vote] {
	q := db.firestoreClient.Collection("votes").Where("pollId", "==", pollID)
	return watchQuery(ctx, q, decodeInto[dbtypes.Vote](func(v *dbtypes.Vote, id string) { v.ID = id }), nil)
}

// WatchEventVotes subscribes to every vote cast in an event, across polls.
func (db *DB) WatchEventVotes(ctx context.Context, eventID string) *Subscription[dbtypes.Vote] {
	q := db.firestoreClient.Collection("votes").Where("eventId", "==", eventID)
	return watchQuery(ctx, q, decodeInto[dbtypes.Vote](func(v *dbtypes.Vote, id string) { v.ID = id }), nil)
}

// WatchLeaderboard subscribes to an event's leaderboard, highest score
// first.
func (db *DB) WatchLeaderboard(ctx context.Context, eventID string) *Subscription[dbtypes.LeaderboardEntry] {
	return watchQuery(ctx, db.leaderboardQuery(eventID), decodeInto[dbtypes.LeaderboardEntry](func(e *dbtypes.LeaderboardEntry, id string) { e.ID = id }), nil)
}

// WatchConversations subscribes to a user's conversation list, most
// recently active first.
func (db *DB) WatchConversations(ctx context.Context, userID string) *Subscription[dbtypes.Conversation] {
	return watchQuery(ctx, db.conversationsQuery(userID), decodeInto[dbtypes.Conversation](func(c *dbtypes.Conversation, id string) { c.ID = id }), nil)
}

// WatchConversationMessages subscribes to one conversation's messages,
// oldest first.
func (db *DB) WatchConversationMessages(ctx context.Context, conversationID string) *Subscription[dbtypes.Message] {
	return watchQuery(ctx, db.messagesQuery(conversationID), decodeInto[dbtypes.Message](func(m *dbtypes.Message, id string) { m.ID = id }), nil)
}

func decodeInto[T any](setID func(*T, string)) func(*firestore.DocumentSnapshot) (*T, error) {
	return func(docSnapshot *firestore.DocumentSnapshot) (*T, error) {
		item := new(T)
		if err := docSnapshot.DataTo(item); err != nil {
			return nil, err
		}
		setID(item, docSnapshot.Ref.ID)
		return item, nil
	}
}
