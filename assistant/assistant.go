// Package assistant holds the hosted-AI flows: post-event summaries, mentor
// matching, event recommendations, the per-event Q&A assistant, and the
// attendee email blast.
//
// Every flow sends a prompt template plus typed input to the Gen AI service
// and asks for schema-constrained JSON back.  Service failures are returned
// to the caller verbatim; there is no retry and no fallback content.  An
// in-flight generation cannot be cancelled beyond abandoning its result.
package assistant

import (
	"context"
	"encoding/json"
	"fmt"

	"konvele/dblayer"

	"github.com/sendgrid/sendgrid-go"
	"google.golang.org/genai"
)

type Assistant struct {
	db             *dblayer.DB
	genaiClient    *genai.Client
	sendgridClient *sendgrid.Client
	model          string
}

func New(db *dblayer.DB, genaiClient *genai.Client, sendgridClient *sendgrid.Client, model string) *Assistant {
	return &Assistant{
		db:             db,
		genaiClient:    genaiClient,
		sendgridClient: sendgridClient,
		model:          model,
	}
}

// generateJSON sends the prompt with a response schema attached and decodes
// the model's JSON reply into out.
func (a *Assistant) generateJSON(ctx context.Context, prompt string, schema *genai.Schema, out interface{}) error {
	resp, err := a.genaiClient.Models.GenerateContent(ctx, a.model, genai.Text(prompt), &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   schema,
	})
	if err != nil {
		return fmt.Errorf("while generating completion: %w", err)
	}

	if err := json.Unmarshal([]byte(resp.Text()), out); err != nil {
		return fmt.Errorf("while decoding completion %q: %w", resp.Text(), err)
	}
	return nil
}
