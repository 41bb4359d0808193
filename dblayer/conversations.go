package dblayer

import (
	"context"
	"fmt"
	"strings"
	"time"

	"konvele/dbtypes"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
)

// ConversationStartedMessage is the synthetic preview written when a
// conversation is created.  Its sender id is empty, marking it as a system
// message.
const ConversationStartedMessage = "Conversation started."

// conversationWith scans one participant's conversations for the one that
// also includes other, returning its id or "".  Because every conversation
// in the input already contains the first participant, scanning A's list
// for B and B's list for A land on the same document, whichever party asks.
func conversationWith(conversations []*dbtypes.Conversation, otherID string) string {
	for _, conversation := range conversations {
		for _, id := range conversation.ParticipantIDs {
			if id == otherID {
				return conversation.ID
			}
		}
	}
	return ""
}

// EnsureConversation returns the id of the conversation between the two
// users, creating it if none exists.  Firestore can only filter
// array-contains on one value, so conversations containing userA are fetched
// and the userB filter happens client-side.
//
// The existence check and the create are not guarded by a transaction: two
// parties calling this at the same moment can each create a conversation for
// the pair.  The duplicate is tolerated rather than prevented.
func (db *DB) EnsureConversation(ctx context.Context, userAID, userBID string) (string, error) {
	existing := []*dbtypes.Conversation{}
	convIter := db.firestoreClient.Collection("conversations").
		Where("participantIds", "array-contains", userAID).
		Documents(ctx)
	defer convIter.Stop()
	for {
		convSnapshot, err := convIter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return "", fmt.Errorf("while iterating conversations: %w", err)
		}

		conversation := &dbtypes.Conversation{}
		if err := convSnapshot.DataTo(conversation); err != nil {
			return "", fmt.Errorf("while unmarshaling conversation %s: %w", convSnapshot.Ref.ID, err)
		}
		conversation.ID = convSnapshot.Ref.ID
		existing = append(existing, conversation)
	}
	if id := conversationWith(existing, userBID); id != "" {
		return id, nil
	}

	userA, err := db.UserByID(ctx, userAID)
	if err != nil {
		return "", err
	}
	userB, err := db.UserByID(ctx, userBID)
	if err != nil {
		return "", err
	}

	newConvRef := db.firestoreClient.Collection("conversations").NewDoc()
	conversation := &dbtypes.Conversation{
		ID:             newConvRef.ID,
		ParticipantIDs: []string{userAID, userBID},
		Participants: map[string]dbtypes.ConversationParticipant{
			userAID: {DisplayName: userA.DisplayName, PhotoURL: userA.PhotoURL},
			userBID: {DisplayName: userB.DisplayName, PhotoURL: userB.PhotoURL},
		},
		LastMessage:          ConversationStartedMessage,
		LastMessageTimestamp: time.Now(),
		LastMessageSenderID:  "",
	}
	if _, err := newConvRef.Create(ctx, conversation); err != nil {
		return "", fmt.Errorf("while creating conversation: %w", err)
	}

	return newConvRef.ID, nil
}

// ConversationsForUser lists the user's conversations, most recently active
// first.
func (db *DB) ConversationsForUser(ctx context.Context, userID string) ([]*dbtypes.Conversation, error) {
	conversations := []*dbtypes.Conversation{}
	convIter := db.conversationsQuery(userID).Documents(ctx)
	defer convIter.Stop()
	for {
		convSnapshot, err := convIter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("while iterating conversations: %w", err)
		}

		conversation := &dbtypes.Conversation{}
		if err := convSnapshot.DataTo(conversation); err != nil {
			return nil, fmt.Errorf("while unmarshaling conversation %s: %w", convSnapshot.Ref.ID, err)
		}
		conversation.ID = convSnapshot.Ref.ID
		conversations = append(conversations, conversation)
	}
	return conversations, nil
}

func (db *DB) conversationsQuery(userID string) firestore.Query {
	return db.firestoreClient.Collection("conversations").
		Where("participantIds", "array-contains", userID).
		OrderBy("lastMessageTimestamp", firestore.Desc)
}

// ConversationMessages lists a conversation's messages, oldest first.
func (db *DB) ConversationMessages(ctx context.Context, conversationID string) ([]*dbtypes.Message, error) {
	messages := []*dbtypes.Message{}
	msgIter := db.messagesQuery(conversationID).Documents(ctx)
	defer msgIter.Stop()
	for {
		msgSnapshot, err := msgIter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("while iterating messages: %w", err)
		}

		message := &dbtypes.Message{}
		if err := msgSnapshot.DataTo(message); err != nil {
			return nil, fmt.Errorf("while unmarshaling message %s: %w", msgSnapshot.Ref.ID, err)
		}
		message.ID = msgSnapshot.Ref.ID
		messages = append(messages, message)
	}
	return messages, nil
}

func (db *DB) messagesQuery(conversationID string) firestore.Query {
	return db.firestoreClient.Collection("conversations").Doc(conversationID).
		Collection("messages").
		OrderBy("timestamp", firestore.Asc)
}

// SendDirectMessage appends a message to the conversation and updates the
// parent's last-message preview fields in a single batch, so a conversation
// list never shows a preview whose message doesn't exist.
func (db *DB) SendDirectMessage(ctx context.Context, conversationID, senderID, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	now := time.Now()
	convRef := db.firestoreClient.Collection("conversations").Doc(conversationID)
	newMsgRef := convRef.Collection("messages").NewDoc()

	batch := db.firestoreClient.Batch()
	batch.Create(newMsgRef, &dbtypes.Message{
		ID:             newMsgRef.ID,
		ConversationID: conversationID,
		SenderID:       senderID,
		Text:           text,
		Timestamp:      now,
	})
	batch.Update(convRef, []firestore.Update{
		{Path: "lastMessage", Value: text},
		{Path: "lastMessageTimestamp", Value: now},
		{Path: "lastMessageSenderId", Value: senderID},
	})

	if _, err := batch.Commit(ctx); err != nil {
		return fmt.Errorf("while sending message: %w", err)
	}
	return nil
}
