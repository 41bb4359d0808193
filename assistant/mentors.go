package assistant

import (
	"context"
	"encoding/json"
	"fmt"

	"konvele/dbtypes"

	"google.golang.org/genai"
)

// MatchedMentor is a student profile paired with the model's explanation of
// why they fit.
type MatchedMentor struct {
	UID         string
	DisplayName string
	Email       string
	PhotoURL    string
	Skills      []string
	Reason      string
}

// FindMentors asks the model to pick up to five student mentors for the
// given skill, from everyone except the requester, and joins the picks back
// to their profiles.
func (a *Assistant) FindMentors(ctx context.Context, userID, skillToLearn string) ([]MatchedMentor, error) {
	students, err := a.db.AllUsers(ctx, dbtypes.RoleStudent)
	if err != nil {
		return nil, err
	}

	byID := map[string]*dbtypes.User{}
	type candidate struct {
		UID         string   `json:"uid"`
		DisplayName string   `json:"displayName"`
		Skills      []string `json:"skills"`
	}
	candidates := []candidate{}
	for _, s := range students {
		if s.ID == userID {
			continue
		}
		byID[s.ID] = s
		skills := s.Skills
		if skills == nil {
			skills = []string{}
		}
		candidates = append(candidates, candidate{UID: s.ID, DisplayName: s.DisplayName, Skills: skills})
	}

	if len(candidates) == 0 {
		return []MatchedMentor{}, nil
	}

	candidatesJSON, err := json.Marshal(candidates)
	if err != nil {
		return nil, fmt.Errorf("while encoding mentor candidates: %w", err)
	}

	prompt := fmt.Sprintf(`You are an AI-powered matchmaker for a student community platform called Konvele. Your goal is to connect students who want to learn with those who have the right skills to teach them.

A user wants to learn the following skill: %q.

Analyze the list of potential mentors below. Identify the top 5 students who would be the best fit to mentor this user. Your decision should be based on the relevance of the skills listed in their profiles.

For each match, provide a short, personalized reason (1-2 sentences) explaining why they are a good match. For example, you could mention specific, relevant skills they possess.

List of Potential Mentors:
%s

Provide your top 5 recommendations in the specified JSON format.`, skillToLearn, candidatesJSON)

	var out struct {
		Matches []struct {
			UID    string `json:"uid"`
			Reason string `json:"reason"`
		} `json:"matches"`
	}
	schema := &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"matches": {
				Type:        genai.TypeArray,
				Description: "A list of up to 5 potential mentors.",
				Items: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"uid":    {Type: genai.TypeString, Description: "The user ID of the matched mentor."},
						"reason": {Type: genai.TypeString, Description: "A short, personalized reason why this person is a good match."},
					},
					Required: []string{"uid", "reason"},
				},
			},
		},
		Required: []string{"matches"},
	}
	if err := a.generateJSON(ctx, prompt, schema, &out); err != nil {
		return nil, err
	}

	mentors := []MatchedMentor{}
	for _, match := range out.Matches {
		student, ok := byID[match.UID]
		if !ok {
			// The model invented an id; drop it.
			continue
		}
		mentors = append(mentors, MatchedMentor{
			UID:         student.ID,
			DisplayName: student.DisplayName,
			Email:       student.Email,
			PhotoURL:    student.PhotoURL,
			Skills:      student.Skills,
			Reason:      match.Reason,
		})
	}
	return mentors, nil
}
