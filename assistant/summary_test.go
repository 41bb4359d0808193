package assistant

import (
	"strings"
	"testing"

	"konvele/dbtypes"
)

func TestSummaryPromptEmptyEvent(t *testing.T) {
	prompt := summaryPrompt("Quiet Night", &EventData{PollVotes: map[string][]*dbtypes.Vote{}})

	for _, want := range []string{
		"No chat messages.",
		"No questions were asked.",
		"No polls were conducted.",
		"Total Registered: 0",
		"Check-in Rate: 0.0%",
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("Expected prompt to contain %q", want)
		}
	}
}

func TestSummaryPromptAttendance(t *testing.T) {
	data := &EventData{
		Registrations: []*dbtypes.Registration{
			{ID: "r1", CheckedIn: true},
			{ID: "r2", CheckedIn: true},
			{ID: "r3"},
		},
		PollVotes: map[string][]*dbtypes.Vote{},
	}

	prompt := summaryPrompt("Launch Day", data)

	for _, want := range []string{
		"Total Registered: 3",
		"Total Checked-in: 2",
		"Check-in Rate: 66.7%",
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("Expected prompt to contain %q", want)
		}
	}
}

func TestSummaryPromptQuestionOrderAndMarker(t *testing.T) {
	data := &EventData{
		Questions: []*dbtypes.Question{
			{UserName: "amir", Text: "What about generics?", Upvotes: 2},
			{UserName: "bo", Text: "When is v2?", Upvotes: 9, IsAnswered: true},
		},
		PollVotes: map[string][]*dbtypes.Vote{},
	}

	prompt := summaryPrompt("AMA", data)

	answered := "(Upvotes: 9) bo: When is v2? [Answered]"
	if !strings.Contains(prompt, answered) {
		t.Fatalf("Expected prompt to contain %q", answered)
	}

	// Most upvoted question comes first in the transcript.
	if strings.Index(prompt, "bo: When is v2?") > strings.Index(prompt, "amir: What about generics?") {
		t.Errorf("Expected the most upvoted question to appear first")
	}
}

func TestSummaryPromptPollResults(t *testing.T) {
	data := &EventData{
		Polls: []*dbtypes.Poll{
			{
				ID:       "p1",
				Question: "Favorite editor?",
				Options: []dbtypes.PollOption{
					{ID: "option_0", Text: "vim"},
					{ID: "option_1", Text: "emacs"},
				},
			},
		},
		PollVotes: map[string][]*dbtypes.Vote{
			"p1": {
				{OptionID: "option_0"},
				{OptionID: "option_0"},
				{OptionID: "option_1"},
			},
		},
	}

	prompt := summaryPrompt("Editor Wars", data)

	for _, want := range []string{
		`Poll: "Favorite editor?"`,
		"vim: 2 votes (67%)",
		"emacs: 1 votes (33%)",
		"Total Votes: 3",
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("Expected prompt to contain %q", want)
		}
	}
}
