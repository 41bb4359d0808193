package assistant

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"konvele/dbtypes"

	"google.golang.org/genai"
)

// RecommendedEvent is one suggestion from the recommendation flow.
type RecommendedEvent struct {
	ID     string
	Title  string
	Reason string
}

// RecommendEvents suggests upcoming events the user hasn't registered for.
// A user with no registration history gets the three soonest upcoming events
// without a model call.
func (a *Assistant) RecommendEvents(ctx context.Context, userID string) ([]RecommendedEvent, error) {
	allEvents, err := a.db.ListEvents(ctx)
	if err != nil {
		return nil, err
	}
	registered, err := a.db.RegisteredEventsForUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	registeredIDs := map[string]bool{}
	for _, event := range registered {
		registeredIDs[event.ID] = true
	}

	now := time.Now()
	upcoming := []*dbtypes.Event{}
	for _, event := range allEvents {
		if !registeredIDs[event.ID] && event.Date.After(now) {
			upcoming = append(upcoming, event)
		}
	}

	if len(upcoming) == 0 {
		return []RecommendedEvent{}, nil
	}

	if len(registered) == 0 {
		// No history to analyze; return the soonest events instead of
		// calling the model.
		sort.Slice(upcoming, func(i, j int) bool {
			return upcoming[i].Date.Before(upcoming[j].Date)
		})
		if len(upcoming) > 3 {
			upcoming = upcoming[:3]
		}
		recommendations := make([]RecommendedEvent, 0, len(upcoming))
		for _, event := range upcoming {
			recommendations = append(recommendations, RecommendedEvent{
				ID:     event.ID,
				Title:  event.Title,
				Reason: "A popular upcoming event you might like.",
			})
		}
		return recommendations, nil
	}

	type promptEvent struct {
		ID       string   `json:"id"`
		Title    string   `json:"title"`
		Category string   `json:"category"`
		Tags     []string `json:"tags"`
		Summary  string   `json:"summary"`
	}
	toPromptEvents := func(events []*dbtypes.Event) []promptEvent {
		out := make([]promptEvent, 0, len(events))
		for _, e := range events {
			out = append(out, promptEvent{ID: e.ID, Title: e.Title, Category: e.Category, Tags: e.Tags, Summary: e.Description})
		}
		return out
	}

	registeredJSON, err := json.Marshal(toPromptEvents(registered))
	if err != nil {
		return nil, fmt.Errorf("while encoding registered events: %w", err)
	}
	upcomingJSON, err := json.Marshal(toPromptEvents(upcoming))
	if err != nil {
		return nil, fmt.Errorf("while encoding upcoming events: %w", err)
	}

	prompt := fmt.Sprintf(`You are an expert event recommender for a platform called Konvele. Your goal is to help users discover new events they'll love.

Analyze the user's past registered events, paying close attention to the event tags and categories to understand their interests. Based on this analysis, recommend up to 5 events from the list of available upcoming events.

For each recommendation, provide a short, compelling reason (max 1-2 sentences) explaining why the user would be interested. The reason should be engaging and directly relate to their past activity (especially similar tags) or the event's content.

User's Registered Events (for interest analysis):
%s

Available Upcoming Events (to recommend from):
%s

Provide your recommendations in the specified JSON format.`, registeredJSON, upcomingJSON)

	var out struct {
		Recommendations []struct {
			ID     string `json:"id"`
			Title  string `json:"title"`
			Reason string `json:"reason"`
		} `json:"recommendations"`
	}
	schema := &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"recommendations": {
				Type:        genai.TypeArray,
				Description: "A list of recommended events.",
				Items: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"id":     {Type: genai.TypeString, Description: "The ID of the recommended event."},
						"title":  {Type: genai.TypeString, Description: "The title of the recommended event."},
						"reason": {Type: genai.TypeString, Description: "A short, compelling reason why the user might be interested in this event."},
					},
					Required: []string{"id", "title", "reason"},
				},
			},
		},
		Required: []string{"recommendations"},
	}
	if err := a.generateJSON(ctx, prompt, schema, &out); err != nil {
		return nil, err
	}

	recommendations := make([]RecommendedEvent, 0, len(out.Recommendations))
	for _, rec := range out.Recommendations {
		recommendations = append(recommendations, RecommendedEvent{ID: rec.ID, Title: rec.Title, Reason: rec.Reason})
	}
	return recommendations, nil
}
