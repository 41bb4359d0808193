package dblayer

import (
	"context"
	"fmt"

	"konvele/dbtypes"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
)

// AwardPoints adds points to the user's leaderboard entry for an event,
// creating the entry on first participation.  The add is a commutative
// server-side increment, so concurrent awards from different participants
// never lose points to each other.
//
// Callers treat failures here as non-fatal: the action that earned the
// points has already committed, and lost points are an accepted degradation.
func (db *DB) AwardPoints(ctx context.Context, eventID string, user *dbtypes.User, points int64) error {
	entryIter := db.firestoreClient.Collection("leaderboard").
		Where("eventId", "==", eventID).
		Where("userId", "==", user.ID).
		Documents(ctx)
	defer entryIter.Stop()

	var entrySnapshot *firestore.DocumentSnapshot
	for {
		var err error
		entrySnapshot, err = entryIter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return fmt.Errorf("while looking up leaderboard entry: %w", err)
		}

		// There is supposed to be at most one entry per (event, user).
		break
	}

	if entrySnapshot == nil {
		newEntryRef := db.firestoreClient.Collection("leaderboard").NewDoc()
		entry := &dbtypes.LeaderboardEntry{
			ID:           newEntryRef.ID,
			EventID:      eventID,
			UserID:       user.ID,
			UserName:     user.DisplayName,
			UserPhotoURL: user.PhotoURL,
			Score:        points,
		}
		if _, err := newEntryRef.Create(ctx, entry); err != nil {
			return fmt.Errorf("while creating leaderboard entry: %w", err)
		}
		return nil
	}

	if _, err := entrySnapshot.Ref.Update(ctx, []firestore.Update{
		{Path: "score", Value: firestore.Increment(points)},
	}); err != nil {
		return fmt.Errorf("while incrementing score: %w", err)
	}
	return nil
}

// Leaderboard returns an event's leaderboard entries, highest score first.
func (db *DB) Leaderboard(ctx context.Context, eventID string) ([]*dbtypes.LeaderboardEntry, error) {
	entries := []*dbtypes.LeaderboardEntry{}
	entryIter := db.leaderboardQuery(eventID).Documents(ctx)
	defer entryIter.Stop()
	for {
		entrySnapshot, err := entryIter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("while iterating leaderboard: %w", err)
		}

		entry := &dbtypes.LeaderboardEntry{}
		if err := entrySnapshot.DataTo(entry); err != nil {
			return nil, fmt.Errorf("while unmarshaling leaderboard entry %s: %w", entrySnapshot.Ref.ID, err)
		}
		entry.ID = entrySnapshot.Ref.ID
		entries = append(entries, entry)
	}
	return entries, nil
}

func (db *DB) leaderboardQuery(eventID string) firestore.Query {
	return db.firestoreClient.Collection("leaderboard").
		Where("eventId", "==", eventID).
		OrderBy("score", firestore.Desc)
}
