package generator

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	openaisdk "github.com/openai/openai-go"

	contractx "github.com/wrenhealth/concierge/agent/contract"
)

// selector picks the next speaker with a single temperature-zero completion
// against the raw SDK client; no graph is needed for a one-shot choice.
type selector struct {
	client *openaisdk.Client
	model  string
	prompt string
}

// NoSpeaker is the selector's answer when no role should speak.
const NoSpeaker = "none"

type selectorOutput struct {
	NextSpeaker string `json:"next_speaker"`
}

func (s *selector) selectNext(ctx context.Context, req contractx.SelectionRequest) (string, error) {
	if s.client == nil {
		return "", fmt.Errorf("%w: selector client is not configured", contractx.ErrModelInvoke)
	}

	candidates := candidateIDs(req)
	if len(candidates) == 0 {
		return "", nil
	}
	if len(candidates) == 1 {
		return candidates[0], nil
	}

	payload := map[string]any{
		"roster":          req.Roster,
		"conversation":    renderTranscript(req.Transcript, transcriptWindow),
		"last_speaker":    req.LastSpeaker,
		"must_not_repeat": req.RepeatForbidden,
	}
	input, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("%w: marshal selection payload: %v", contractx.ErrValidation, err)
	}

	completion, err := s.client.Chat.Completions.New(ctx, openaisdk.ChatCompletionNewParams{
		Model: openaisdk.ChatModel(s.model),
		Messages: []openaisdk.ChatCompletionMessageParamUnion{
			openaisdk.SystemMessage(s.prompt),
			openaisdk.UserMessage(string(input)),
		},
		Temperature: openaisdk.Float(0),
	})
	if err != nil {
		return "", fmt.Errorf("%w: speaker selection: %v", contractx.ErrModelInvoke, err)
	}
	if len(completion.Choices) == 0 {
		return "", fmt.Errorf("%w: speaker selection returned no choices", contractx.ErrSchemaViolation)
	}

	choice, err := parseSelection(completion.Choices[0].Message.Content)
	if err != nil {
		return "", err
	}
	if choice == "" {
		return "", nil
	}
	for _, id := range candidates {
		if id == choice {
			return choice, nil
		}
	}
	return "", fmt.Errorf("%w: selected speaker %q is not eligible", contractx.ErrSchemaViolation, choice)
}

// candidateIDs applies the no-repeat rule: the last speaker is excluded
// unless it is the only eligible role.
func candidateIDs(req contractx.SelectionRequest) []string {
	ids := make([]string, 0, len(req.Roster))
	for _, role := range req.Roster {
		if req.RepeatForbidden && role.ID == req.LastSpeaker {
			continue
		}
		ids = append(ids, role.ID)
	}
	if len(ids) == 0 && len(req.Roster) == 1 {
		ids = append(ids, req.Roster[0].ID)
	}
	return ids
}

// parseSelection tolerates fenced output, since some models wrap JSON in
// markdown no matter what the prompt says.
func parseSelection(content string) (string, error) {
	trimmed := strings.TrimSpace(content)
	trimmed = strings.TrimPrefix(trimmed, "```json")
	trimmed = strings.TrimPrefix(trimmed, "```")
	trimmed = strings.TrimSuffix(trimmed, "```")
	trimmed = strings.TrimSpace(trimmed)

	var out selectorOutput
	if err := json.Unmarshal([]byte(trimmed), &out); err != nil {
		return "", fmt.Errorf("%w: decode selection %q: %v", contractx.ErrSchemaViolation, content, err)
	}

	choice := strings.TrimSpace(out.NextSpeaker)
	if choice == "" || strings.EqualFold(choice, NoSpeaker) {
		return "", nil
	}
	return choice, nil
}
