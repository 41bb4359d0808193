package dblayer

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"konvele/dbtypes"

	"github.com/google/go-cmp/cmp"
)

func TestTallyVotes(t *testing.T) {
	options := []dbtypes.PollOption{
		{ID: "option_0", Text: "Go"},
		{ID: "option_1", Text: "Rust"},
		{ID: "option_2", Text: "Zig"},
	}
	votes := []*dbtypes.Vote{
		{OptionID: "option_0"},
		{OptionID: "option_0"},
		{OptionID: "option_1"},
	}

	got := TallyVotes(options, votes)
	want := []OptionTally{
		{OptionID: "option_0", Text: "Go", Votes: 2, Percentage: 67},
		{OptionID: "option_1", Text: "Rust", Votes: 1, Percentage: 33},
		{OptionID: "option_2", Text: "Zig", Votes: 0, Percentage: 0},
	}
	if diff := cmp.Diff(got, want); diff != "" {
		t.Errorf("Bad tallies; diff (-got +want)\n%s", diff)
	}
}

func TestTallyVotesNoVotes(t *testing.T) {
	options := []dbtypes.PollOption{
		{ID: "option_0", Text: "Yes"},
		{ID: "option_1", Text: "No"},
	}

	for _, tally := range TallyVotes(options, nil) {
		if tally.Votes != 0 || tally.Percentage != 0 {
			t.Errorf("Expected zero votes and zero percentage for option %q; got %d votes, %d%%",
				tally.OptionID, tally.Votes, tally.Percentage)
		}
	}
}

func TestTallyVotesIgnoresUnknownOption(t *testing.T) {
	options := []dbtypes.PollOption{
		{ID: "option_0", Text: "Only"},
	}
	votes := []*dbtypes.Vote{
		{OptionID: "option_0"},
		{OptionID: "option_9"},
	}

	got := TallyVotes(options, votes)
	if len(got) != 1 {
		t.Fatalf("Expected 1 tally; got %d", len(got))
	}
	// The stray vote still counts toward the total.
	if got[0].Votes != 1 || got[0].Percentage != 50 {
		t.Errorf("Bad tally for option_0; got %d votes, %d%%; want 1 vote, 50%%", got[0].Votes, got[0].Percentage)
	}
}

func mkQuestion(t *testing.T, id string, upvotes int64, answered bool, ts time.Time) *dbtypes.Question {
	t.Helper()
	return &dbtypes.Question{
		ID:         id,
		Upvotes:    upvotes,
		IsAnswered: answered,
		Timestamp:  ts,
	}
}

func TestSortQuestionsUnansweredFirst(t *testing.T) {
	base := time.Date(2026, time.March, 14, 10, 0, 0, 0, time.UTC)

	questions := []*dbtypes.Question{
		mkQuestion(t, "answered-high", 50, true, base),
		mkQuestion(t, "open-low", 1, false, base),
	}
	SortQuestions(questions)

	if questions[0].ID != "open-low" {
		t.Errorf("Expected unanswered question first; got %q", questions[0].ID)
	}
}

func TestSortQuestionsByUpvotesThenRecency(t *testing.T) {
	base := time.Date(2026, time.March, 14, 10, 0, 0, 0, time.UTC)

	questions := []*dbtypes.Question{
		mkQuestion(t, "old-three", 3, false, base),
		mkQuestion(t, "new-three", 3, false, base.Add(time.Minute)),
		mkQuestion(t, "one", 1, false, base),
		mkQuestion(t, "answered", 10, true, base),
	}
	SortQuestions(questions)

	gotOrder := []string{}
	for _, q := range questions {
		gotOrder = append(gotOrder, q.ID)
	}
	wantOrder := []string{"new-three", "old-three", "one", "answered"}
	if diff := cmp.Diff(gotOrder, wantOrder); diff != "" {
		t.Errorf("Bad question order; diff (-got +want)\n%s", diff)
	}
}

func TestPlanVoteFirstVote(t *testing.T) {
	plan := planVote(nil, "option_1")

	if !plan.Create {
		t.Errorf("Expected first vote to create")
	}
	if !plan.FirstVote {
		t.Errorf("Expected first vote to score")
	}
	if len(plan.DeleteIDs) != 0 {
		t.Errorf("Expected no deletes on first vote; got %v", plan.DeleteIDs)
	}
}

func TestPlanVoteSwitchReplacesWithoutScoring(t *testing.T) {
	existing := []*dbtypes.Vote{
		{ID: "v1", PollID: "p1", OptionID: "option_1", UserID: "u1"},
	}

	plan := planVote(existing, "option_2")

	if !plan.Create {
		t.Errorf("Expected a switch to create the new vote")
	}
	if plan.FirstVote {
		t.Errorf("Expected a switch not to score again")
	}
	if diff := cmp.Diff(plan.DeleteIDs, []string{"v1"}); diff != "" {
		t.Errorf("Bad deletes; diff (-got +want)\n%s", diff)
	}
}

func TestPlanVoteSameOptionIsNoOp(t *testing.T) {
	existing := []*dbtypes.Vote{
		{ID: "v1", PollID: "p1", OptionID: "option_1", UserID: "u1"},
	}

	plan := planVote(existing, "option_1")

	if plan.Create {
		t.Errorf("Expected re-voting the same option not to create")
	}
	if plan.FirstVote {
		t.Errorf("Expected re-voting the same option not to score")
	}
	if len(plan.DeleteIDs) != 0 {
		t.Errorf("Expected no deletes; got %v", plan.DeleteIDs)
	}
}

func TestPlanVoteCleansStrayDuplicates(t *testing.T) {
	// Two votes for one user on one poll violate the invariant; re-voting
	// keeps the matching one and deletes the stray.
	existing := []*dbtypes.Vote{
		{ID: "v1", PollID: "p1", OptionID: "option_1", UserID: "u1"},
		{ID: "v2", PollID: "p1", OptionID: "option_2", UserID: "u1"},
	}

	plan := planVote(existing, "option_1")

	if plan.Create {
		t.Errorf("Expected the kept vote to satisfy the choice")
	}
	if plan.FirstVote {
		t.Errorf("Expected no scoring with existing votes present")
	}
	if diff := cmp.Diff(plan.DeleteIDs, []string{"v2"}); diff != "" {
		t.Errorf("Bad deletes; diff (-got +want)\n%s", diff)
	}
}

func TestScoringErrorUnwrap(t *testing.T) {
	inner := fmt.Errorf("leaderboard write failed")
	err := error(&ScoringError{Err: inner})

	if !errors.Is(err, inner) {
		t.Errorf("Expected ScoringError to unwrap to the inner error")
	}

	var scoringErr *ScoringError
	if !errors.As(err, &scoringErr) {
		t.Errorf("Expected errors.As to match *ScoringError")
	}
}
