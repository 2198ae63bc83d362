package generator

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	contractx "github.com/wrenhealth/concierge/agent/contract"
	statex "github.com/wrenhealth/concierge/agent/state"
	toolx "github.com/wrenhealth/concierge/agent/tool"
)

// turnLLMOutput is the JSON shape every role replies with.
type turnLLMOutput struct {
	Message string `json:"message"`
}

// roleRunner holds the compiled graphs for one role. toolRunner is nil for
// roles without tool access.
type roleRunner struct {
	roleID           string
	structuredRunner compose.Runnable[map[string]any, turnLLMOutput]
	toolRunner       compose.Runnable[map[string]any, *schema.Message]
}

// produce runs one turn. Tool-capable roles plan first: when the request
// carries no tool results yet, the planning graph may emit tool requests for
// the orchestrator to resolve; otherwise the structured graph finalizes the
// message.
func (r *roleRunner) produce(ctx context.Context, req contractx.TurnRequest) (contractx.TurnResponse, error) {
	if r.toolRunner != nil && len(req.ToolResults) == 0 {
		return r.runToolPlanning(ctx, req)
	}
	return r.runStructured(ctx, req)
}

func (r *roleRunner) runStructured(ctx context.Context, req contractx.TurnRequest) (contractx.TurnResponse, error) {
	input, err := marshalTurnPayload(req, true)
	if err != nil {
		return contractx.TurnResponse{}, err
	}

	out, err := r.structuredRunner.Invoke(ctx, map[string]any{"input": input})
	if err != nil {
		return contractx.TurnResponse{}, fmt.Errorf("%w: turn invoke for role=%s: %v", contractx.ErrModelInvoke, r.roleID, err)
	}

	message := strings.TrimSpace(out.Message)
	if message == "" {
		return contractx.TurnResponse{}, fmt.Errorf("%w: empty message from role=%s", contractx.ErrSchemaViolation, r.roleID)
	}
	return contractx.TurnResponse{Content: message}, nil
}

func (r *roleRunner) runToolPlanning(ctx context.Context, req contractx.TurnRequest) (contractx.TurnResponse, error) {
	input, err := marshalTurnPayload(req, false)
	if err != nil {
		return contractx.TurnResponse{}, err
	}

	msg, err := r.toolRunner.Invoke(ctx, map[string]any{"input": input})
	if err != nil {
		return contractx.TurnResponse{}, fmt.Errorf("%w: tool planning invoke for role=%s: %v", contractx.ErrModelInvoke, r.roleID, err)
	}
	if msg == nil {
		return contractx.TurnResponse{}, fmt.Errorf("%w: empty tool planning response for role=%s", contractx.ErrSchemaViolation, r.roleID)
	}

	toolRequests, err := toToolRequests(msg.ToolCalls)
	if err != nil {
		return contractx.TurnResponse{}, err
	}
	if len(toolRequests) == 0 {
		content := strings.TrimSpace(msg.Content)
		if content == "" {
			return contractx.TurnResponse{}, fmt.Errorf("%w: role=%s produced neither content nor tool requests", contractx.ErrSchemaViolation, r.roleID)
		}
		return contractx.TurnResponse{Content: content}, nil
	}

	for _, tr := range toolRequests {
		if !toolx.Allowed(r.roleID, tr.Tool) {
			return contractx.TurnResponse{}, fmt.Errorf("%w: tool=%s is not allowed for role=%s", contractx.ErrSchemaViolation, tr.Tool, r.roleID)
		}
	}
	return contractx.TurnResponse{ToolRequests: toolRequests}, nil
}

func marshalTurnPayload(req contractx.TurnRequest, includeToolResults bool) (string, error) {
	payload := map[string]any{
		"profile_context": req.ProfileContext,
		"conversation":    renderTranscript(req.Transcript, transcriptWindow),
	}
	if includeToolResults {
		payload["tool_results"] = req.ToolResults
	}

	input, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("%w: marshal turn payload: %v", contractx.ErrValidation, err)
	}
	return string(input), nil
}

// transcriptWindow bounds how much history each turn sees.
const transcriptWindow = 20

type transcriptEntry struct {
	Speaker string `json:"speaker"`
	Content string `json:"content"`
}

func renderTranscript(messages []statex.Message, limit int) []transcriptEntry {
	if limit > 0 && len(messages) > limit {
		messages = messages[len(messages)-limit:]
	}
	entries := make([]transcriptEntry, 0, len(messages))
	for _, msg := range messages {
		entries = append(entries, transcriptEntry{Speaker: msg.RoleID, Content: msg.Content})
	}
	return entries
}

func toToolRequests(calls []schema.ToolCall) ([]contractx.ToolRequest, error) {
	if len(calls) == 0 {
		return nil, nil
	}
	reqs := make([]contractx.ToolRequest, 0, len(calls))
	for _, call := range calls {
		tool := strings.TrimSpace(call.Function.Name)
		if tool == "" {
			return nil, fmt.Errorf("%w: tool call name is empty", contractx.ErrSchemaViolation)
		}

		args := map[string]any{}
		rawArgs := strings.TrimSpace(call.Function.Arguments)
		if rawArgs != "" {
			if err := json.Unmarshal([]byte(rawArgs), &args); err != nil {
				return nil, fmt.Errorf("%w: invalid tool args for tool=%s: %v", contractx.ErrSchemaViolation, tool, err)
			}
		}
		reqs = append(reqs, contractx.ToolRequest{Tool: tool, Args: args})
	}
	return reqs, nil
}
