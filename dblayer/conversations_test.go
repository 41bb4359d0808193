package dblayer

import (
	"testing"

	"konvele/dbtypes"
)

func TestConversationWithFindsPairEitherWay(t *testing.T) {
	pair := &dbtypes.Conversation{
		ID:             "conv-1",
		ParticipantIDs: []string{"alice", "bo"},
	}
	other := &dbtypes.Conversation{
		ID:             "conv-2",
		ParticipantIDs: []string{"alice", "carol"},
	}

	// Alice's list scanned for Bo, and Bo's list scanned for Alice, both
	// resolve to the same conversation.
	if got := conversationWith([]*dbtypes.Conversation{other, pair}, "bo"); got != "conv-1" {
		t.Errorf("Bad conversation id for alice->bo; got %q, want %q", got, "conv-1")
	}
	if got := conversationWith([]*dbtypes.Conversation{pair}, "alice"); got != "conv-1" {
		t.Errorf("Bad conversation id for bo->alice; got %q, want %q", got, "conv-1")
	}
}

func TestConversationWithNoMatch(t *testing.T) {
	conversations := []*dbtypes.Conversation{
		{ID: "conv-2", ParticipantIDs: []string{"alice", "carol"}},
	}

	if got := conversationWith(conversations, "bo"); got != "" {
		t.Errorf("Expected no match; got %q", got)
	}
	if got := conversationWith(nil, "bo"); got != "" {
		t.Errorf("Expected no match on empty list; got %q", got)
	}
}
