package assistant

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"konvele/dblayer"
	"konvele/dbtypes"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
	"google.golang.org/genai"
)

// EventData is everything the summary flow feeds the model, gathered from
// the engagement collections.
type EventData struct {
	Registrations []*dbtypes.Registration
	ChatMessages  []*dbtypes.ChatMessage
	Questions     []*dbtypes.Question
	Polls         []*dbtypes.Poll
	PollVotes     map[string][]*dbtypes.Vote
}

// GenerateEventSummary produces the organizer-facing post-event summary from
// the event's attendance, chat, Q&A, and poll data.
func (a *Assistant) GenerateEventSummary(ctx context.Context, eventID, eventTitle string) (string, error) {
	data, err := a.gatherEventData(ctx, eventID)
	if err != nil {
		return "", err
	}

	prompt := summaryPrompt(eventTitle, data)

	var out struct {
		Summary string `json:"summary"`
	}
	schema := &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"summary": {Type: genai.TypeString, Description: "A summary of the event, including key feedback, attendance insights, and engagement metrics."},
		},
		Required: []string{"summary"},
	}
	if err := a.generateJSON(ctx, prompt, schema, &out); err != nil {
		return "", err
	}
	return out.Summary, nil
}

func (a *Assistant) gatherEventData(ctx context.Context, eventID string) (*EventData, error) {
	data := &EventData{PollVotes: map[string][]*dbtypes.Vote{}}

	var err error
	if data.Registrations, err = a.db.EventAttendees(ctx, eventID); err != nil {
		return nil, err
	}
	if data.ChatMessages, err = a.db.ChatMessages(ctx, eventID); err != nil {
		return nil, err
	}
	if data.Questions, err = a.db.Questions(ctx, eventID); err != nil {
		return nil, err
	}
	if data.Polls, err = a.db.Polls(ctx, eventID); err != nil {
		return nil, err
	}

	// Per-poll vote queries are independent; fetch them concurrently with a
	// bound.
	eg, ctx := errgroup.WithContext(ctx)
	sem := semaphore.NewWeighted(8)
	var mu sync.Mutex

	for _, poll := range data.Polls {
		poll := poll

		if err := sem.Acquire(ctx, 1); err != nil {
			return nil, fmt.Errorf("while acquiring concurrency limiter semaphore: %w", err)
		}

		eg.Go(func() error {
			defer sem.Release(1)
			votes, err := a.db.PollVotes(ctx, poll.ID)
			if err != nil {
				return fmt.Errorf("while fetching votes for poll %s: %w", poll.ID, err)
			}
			mu.Lock()
			data.PollVotes[poll.ID] = votes
			mu.Unlock()
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, err
	}

	return data, nil
}

func summaryPrompt(eventTitle string, data *EventData) string {
	totalRegistrations := len(data.Registrations)
	checkedIn := 0
	for _, reg := range data.Registrations {
		if reg.CheckedIn {
			checkedIn++
		}
	}
	checkInRate := 0.0
	if totalRegistrations > 0 {
		checkInRate = float64(checkedIn) / float64(totalRegistrations) * 100
	}
	attendance := fmt.Sprintf("Total Registered: %d\nTotal Checked-in: %d\nCheck-in Rate: %.1f%%", totalRegistrations, checkedIn, checkInRate)

	chatLines := make([]string, 0, len(data.ChatMessages))
	for _, m := range data.ChatMessages {
		chatLines = append(chatLines, fmt.Sprintf("%s: %s", m.UserName, m.Text))
	}
	chatTranscript := strings.Join(chatLines, "\n")
	if chatTranscript == "" {
		chatTranscript = "No chat messages."
	}

	questions := append([]*dbtypes.Question{}, data.Questions...)
	sort.SliceStable(questions, func(i, j int) bool {
		return questions[i].Upvotes > questions[j].Upvotes
	})
	qaLines := make([]string, 0, len(questions))
	for _, q := range questions {
		line := fmt.Sprintf("(Upvotes: %d) %s: %s", q.Upvotes, q.UserName, q.Text)
		if q.IsAnswered {
			line += " [Answered]"
		}
		qaLines = append(qaLines, line)
	}
	qaTranscript := strings.Join(qaLines, "\n")
	if qaTranscript == "" {
		qaTranscript = "No questions were asked."
	}

	pollBlocks := make([]string, 0, len(data.Polls))
	for _, poll := range data.Polls {
		votes := data.PollVotes[poll.ID]
		tallies := dblayer.TallyVotes(poll.Options, votes)
		optionResults := make([]string, 0, len(tallies))
		for _, t := range tallies {
			optionResults = append(optionResults, fmt.Sprintf("%s: %d votes (%d%%)", t.Text, t.Votes, t.Percentage))
		}
		pollBlocks = append(pollBlocks, fmt.Sprintf("Poll: %q\nResults: %s\nTotal Votes: %d", poll.Question, strings.Join(optionResults, ", "), len(votes)))
	}
	pollResults := strings.Join(pollBlocks, "\n\n")
	if pollResults == "" {
		pollResults = "No polls were conducted."
	}

	return fmt.Sprintf(`You are an AI assistant that generates insightful post-event summaries for event organizers.

Analyze the provided data for the event titled %q. Generate a concise and informative summary that highlights key aspects of the event.

Your summary should be structured with the following sections:
1. Attendance Summary: Briefly describe the registration and check-in numbers. Note any significant trends.
2. Key Discussion Topics: Identify the main themes and topics discussed in the live chat. What were the most talked-about subjects?
3. Audience Questions: Summarize the most upvoted or frequently asked questions from the Q&A session. What was the audience most curious about?
4. Poll Insights: Describe the results of any polls conducted. What do the results indicate about audience opinion or knowledge?
5. Overall Engagement: Provide a brief, overall conclusion about the event's engagement level based on all the data.

Here is the data:

Attendance Data:
%s

Chat Transcript:
%s

Q&A Transcript:
%s

Poll Results:
%s

Generate the summary now.`, eventTitle, attendance, chatTranscript, qaTranscript, pollResults)
}
