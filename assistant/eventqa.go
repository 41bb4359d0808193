package assistant

import (
	"context"
	"fmt"
	"strings"

	"konvele/dblayer"
	"konvele/dbtypes"

	"google.golang.org/genai"
)

const maxToolRounds = 4

// AnswerEventQuestion runs the per-event Q&A assistant.  The model is given
// a getEventDetails function it may call mid-completion; the function
// resolves against the events collection and hands structured event data
// back before the model produces its final answer.
func (a *Assistant) AnswerEventQuestion(ctx context.Context, eventID, query string) (string, error) {
	getEventDetails := &genai.FunctionDeclaration{
		Name:        "getEventDetails",
		Description: "Retrieves the details for a specific event, including its title, description, date, location, schedule, and speakers.",
		Parameters: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"eventId": {Type: genai.TypeString},
			},
			Required: []string{"eventId"},
		},
	}

	config := &genai.GenerateContentConfig{
		Tools: []*genai.Tool{
			{FunctionDeclarations: []*genai.FunctionDeclaration{getEventDetails}},
		},
	}

	prompt := fmt.Sprintf(`You are a friendly and helpful AI assistant for an event platform called Konvele. Your goal is to answer attendee questions about a specific event.

1. Use the 'getEventDetails' tool with the event id %q to get all the information about the event.
2. Use the retrieved event details to answer the user's query.
3. If the information is not available in the event details, politely state that you do not have that information.
4. Do not make up information. Be concise and helpful.
5. The user's question is: %q`, eventID, query)

	contents := []*genai.Content{genai.NewContentFromText(prompt, genai.RoleUser)}

	for round := 0; round < maxToolRounds; round++ {
		resp, err := a.genaiClient.Models.GenerateContent(ctx, a.model, contents, config)
		if err != nil {
			return "", fmt.Errorf("while generating completion: %w", err)
		}

		calls := resp.FunctionCalls()
		if len(calls) == 0 {
			return resp.Text(), nil
		}

		if len(resp.Candidates) > 0 && resp.Candidates[0].Content != nil {
			contents = append(contents, resp.Candidates[0].Content)
		}

		parts := []*genai.Part{}
		for _, call := range calls {
			result := a.dispatchTool(ctx, call)
			parts = append(parts, genai.NewPartFromFunctionResponse(call.Name, result))
		}
		contents = append(contents, genai.NewContentFromParts(parts, genai.RoleUser))
	}

	return "", fmt.Errorf("assistant did not produce an answer after %d tool rounds", maxToolRounds)
}

func (a *Assistant) dispatchTool(ctx context.Context, call *genai.FunctionCall) map[string]interface{} {
	switch call.Name {
	case "getEventDetails":
		id, _ := call.Args["eventId"].(string)
		return a.eventDetailsTool(ctx, id)
	default:
		return map[string]interface{}{"error": fmt.Sprintf("unknown tool %q", call.Name)}
	}
}

// eventDetailsTool resolves an event and flattens it into the shape the
// model consumes: a long-form date and schedule/speakers joined into plain
// strings.
func (a *Assistant) eventDetailsTool(ctx context.Context, eventID string) map[string]interface{} {
	event, err := a.db.GetEvent(ctx, eventID)
	if err == dblayer.ErrEventNotFound {
		return map[string]interface{}{"error": "Event not found"}
	}
	if err != nil {
		return map[string]interface{}{"error": err.Error()}
	}

	return map[string]interface{}{
		"title":           event.Title,
		"category":        event.Category,
		"date":            event.Date.Format("Monday, January 2, 2006"),
		"location":        event.Location,
		"description":     event.Description,
		"longDescription": event.LongDescription,
		"schedule":        flattenSchedule(event.Schedule),
		"speakers":        flattenSpeakers(event.Speakers),
	}
}

func flattenSchedule(schedule []dbtypes.ScheduleItem) string {
	items := make([]string, 0, len(schedule))
	for _, item := range schedule {
		items = append(items, fmt.Sprintf("%s: %s", item.Time, item.Title))
	}
	return strings.Join(items, ", ")
}

func flattenSpeakers(speakers []dbtypes.Speaker) string {
	items := make([]string, 0, len(speakers))
	for _, s := range speakers {
		items = append(items, fmt.Sprintf("%s (%s)", s.Name, s.Title))
	}
	return strings.Join(items, ", ")
}
