package llm

import (
	"context"

	"github.com/kbukum/minutes/jsonrepair"
)

// Complete sends system and user prompts and returns the text response.
// It accepts any Completer so wrapped or fake backends work the same way.
func Complete(ctx context.Context, c Completer, system, user string) (string, error) {
	resp, err := c.Complete(ctx, CompletionRequest{
		SystemPrompt: system,
		Messages:     []Message{{Role: RoleUser, Content: user}},
	})
	if err != nil {
		return "", err
	}
	return resp.Content, nil
}

// CompleteJSON sends a prompt in JSON mode and decodes the reply leniently.
// A reply that cannot be decoded yields an empty container rather than an
// error; only transport failures are returned.
func CompleteJSON(ctx context.Context, c Completer, system, user string) (any, jsonrepair.Outcome, error) {
	resp, err := c.Complete(ctx, CompletionRequest{
		SystemPrompt: system,
		Messages:     []Message{{Role: RoleUser, Content: user}},
		JSONMode:     true,
	})
	if err != nil {
		return nil, jsonrepair.Fallback, err
	}
	v, outcome := jsonrepair.Parse(resp.Content)
	return v, outcome, nil
}
