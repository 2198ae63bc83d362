package orchestrator

import (
	"context"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/compose"
	"github.com/rs/zerolog/log"

	contractx "github.com/wrenhealth/concierge/agent/contract"
	"github.com/wrenhealth/concierge/agent/conversation"
	rosterx "github.com/wrenhealth/concierge/agent/roster"
	statex "github.com/wrenhealth/concierge/agent/state"
)

// GraphInput is one incoming user message.
type GraphInput struct {
	SessionID string
	Text      string
}

// graphState threads the session through the turn pipeline. startSeq marks
// the first message of this turn so extraction only sees the current round.
type graphState struct {
	session    *statex.Session
	profileCtx string
	startSeq   int
	reason     conversation.TerminationReason
}

func (o *Orchestrator) compileTurnGraph(
	ctx context.Context,
) (compose.Runnable[GraphInput, TurnResult], error) {
	graph := compose.NewGraph[GraphInput, TurnResult]()

	if err := graph.AddLambdaNode("validate_request",
		compose.InvokableLambda(func(ctx context.Context, in GraphInput) (*graphState, error) {
			return o.validateRequest(in)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node validate_request: %w", err)
	}

	if err := graph.AddLambdaNode("load_profile",
		compose.InvokableLambda(func(ctx context.Context, in *graphState) (*graphState, error) {
			return o.loadProfile(ctx, in)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node load_profile: %w", err)
	}

	if err := graph.AddLambdaNode("run_rounds",
		compose.InvokableLambda(func(ctx context.Context, in *graphState) (*graphState, error) {
			return o.runRounds(ctx, in)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node run_rounds: %w", err)
	}

	if err := graph.AddLambdaNode("extract_response",
		compose.InvokableLambda(func(ctx context.Context, in *graphState) (TurnResult, error) {
			return o.extractResponse(in)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node extract_response: %w", err)
	}

	edges := [][2]string{
		{compose.START, "validate_request"},
		{"validate_request", "load_profile"},
		{"load_profile", "run_rounds"},
		{"run_rounds", "extract_response"},
		{"extract_response", compose.END},
	}
	for _, edge := range edges {
		if err := graph.AddEdge(edge[0], edge[1]); err != nil {
			return nil, fmt.Errorf("add edge %s->%s: %w", edge[0], edge[1], err)
		}
	}

	runner, err := graph.Compile(ctx, compose.WithGraphName("orchestrator.turn"))
	if err != nil {
		return nil, fmt.Errorf("compile turn graph: %w", err)
	}
	return runner, nil
}

func (o *Orchestrator) validateRequest(in GraphInput) (*graphState, error) {
	text := strings.TrimSpace(in.Text)
	if text == "" {
		return nil, fmt.Errorf("%w: message text is empty", contractx.ErrValidation)
	}

	session := o.sessions.GetOrCreate(in.SessionID)
	session.BeginTurn()
	startSeq := session.NextSeq()
	if _, err := session.Append(rosterx.RoleUser, text, nil); err != nil {
		return nil, err
	}

	return &graphState{session: session, startSeq: startSeq}, nil
}

func (o *Orchestrator) loadProfile(ctx context.Context, st *graphState) (*graphState, error) {
	profileCtx, err := o.profiles.Context(ctx)
	if err != nil {
		// A missing profile degrades the prompt context, not the turn.
		log.Warn().Err(err).Str("session", st.session.ID).Msg("profile context unavailable")
		profileCtx = ""
	}
	st.profileCtx = profileCtx
	return st, nil
}

func (o *Orchestrator) extractResponse(st *graphState) (TurnResult, error) {
	reply := conversation.Extract(st.session.Since(st.startSeq))

	if o.metrics != nil {
		o.metrics.RoundsPerTurn.Observe(float64(st.session.Round))
		o.metrics.Terminations.WithLabelValues(string(st.reason)).Inc()
		if reply.Crisis {
			o.metrics.Alerts.WithLabelValues("crisis").Inc()
		}
		if reply.Emergency {
			o.metrics.Alerts.WithLabelValues("emergency").Inc()
		}
	}

	log.Info().
		Str("session", st.session.ID).
		Int("rounds", st.session.Round).
		Str("reason", string(st.reason)).
		Bool("crisis", reply.Crisis).
		Bool("emergency", reply.Emergency).
		Msg("turn complete")

	return TurnResult{
		SessionID: st.session.ID,
		Reply:     reply,
		Rounds:    st.session.Round,
		Reason:    st.reason,
	}, nil
}
