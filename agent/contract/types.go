package contract

import (
	statex "github.com/wrenhealth/concierge/agent/state"
)

// RoleDescription is the selector's view of one roster role.
type RoleDescription struct {
	ID          string `json:"id"`
	Tier        int    `json:"tier"`
	Description string `json:"description"`
}

// SelectionRequest asks the generation service to pick the next speaker.
// RepeatForbidden tells it to exclude LastSpeaker unless it is the only
// eligible role.
type SelectionRequest struct {
	Transcript      []statex.Message  `json:"transcript"`
	Roster          []RoleDescription `json:"roster"`
	LastSpeaker     string            `json:"last_speaker"`
	RepeatForbidden bool              `json:"repeat_forbidden"`
}

// TurnRequest asks the generation service to produce one role's turn.
// ToolResults is non-empty on the second pass of a turn, after the
// orchestrator has resolved the tool requests from the first pass.
type TurnRequest struct {
	RoleID         string           `json:"role_id"`
	ProfileContext string           `json:"profile_context"`
	Transcript     []statex.Message `json:"transcript"`
	ToolResults    []ToolResult     `json:"tool_results,omitempty"`
}

// TurnResponse is the produced turn: final content, or tool requests that
// must be resolved before the turn can finish.
type TurnResponse struct {
	Content      string        `json:"content"`
	ToolRequests []ToolRequest `json:"tool_requests,omitempty"`
}

type ToolRequest struct {
	Tool string         `json:"tool"`
	Args map[string]any `json:"args,omitempty"`
}

// ToolResult carries a resolved tool call. Failures travel in Error as data,
// not as Go errors; handlers degrade rather than propagate.
type ToolResult struct {
	Tool   string         `json:"tool"`
	Args   map[string]any `json:"args,omitempty"`
	Result any            `json:"result,omitempty"`
	Error  string         `json:"error,omitempty"`
}
