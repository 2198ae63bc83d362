package contract

import "context"

// Generator is the boundary to the external content/selection capability.
// Both calls may fail (timeout, malformed payload); callers must treat a
// failure as "no further turn this round", never as a user-visible error.
type Generator interface {
	// SelectNext returns the id of the role that should speak next, or ""
	// to end the round.
	SelectNext(ctx context.Context, req SelectionRequest) (string, error)

	// ProduceTurn produces content and tool requests for one role's turn.
	ProduceTurn(ctx context.Context, req TurnRequest) (TurnResponse, error)
}

// ToolGateway resolves tool requests on behalf of a role. A request naming a
// tool outside the role's capability set fails the whole batch with
// ErrToolNotAllowed; a handler failure degrades to an error result for that
// entry only.
type ToolGateway interface {
	Execute(ctx context.Context, roleID string, reqs []ToolRequest) ([]ToolResult, error)
}
