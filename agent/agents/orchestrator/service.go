package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/compose"
	"github.com/rs/zerolog/log"

	contractx "github.com/wrenhealth/concierge/agent/contract"
	"github.com/wrenhealth/concierge/agent/conversation"
	"github.com/wrenhealth/concierge/agent/profile"
	rosterx "github.com/wrenhealth/concierge/agent/roster"
	statex "github.com/wrenhealth/concierge/agent/state"
	"github.com/wrenhealth/concierge/pkg/observability"
)

// apologyReply is surfaced when a turn dies on an internal failure. The
// session stays usable.
const apologyReply = "I'm sorry, something went wrong on my end. Please try again."

type Config struct {
	MaxRounds int `split_words:"true" default:"30"`
}

// TurnResult is the outcome of one user turn.
type TurnResult struct {
	SessionID string
	Reply     conversation.Reply
	Rounds    int
	Reason    conversation.TerminationReason
}

// Orchestrator drives the round loop for every session: speaker selection,
// turn production, tool dispatch, termination and response extraction.
type Orchestrator struct {
	cfg       Config
	sessions  *statex.Registry
	roster    rosterx.Roster
	generator contractx.Generator
	tools     contractx.ToolGateway
	profiles  *profile.Manager
	metrics   *observability.Metrics

	graphRunner compose.Runnable[GraphInput, TurnResult]
}

func New(
	cfg Config,
	sessions *statex.Registry,
	roster rosterx.Roster,
	generator contractx.Generator,
	tools contractx.ToolGateway,
	profiles *profile.Manager,
	metrics *observability.Metrics,
) (*Orchestrator, error) {
	if sessions == nil {
		return nil, errors.New("session registry is required")
	}
	if generator == nil {
		return nil, errors.New("generation service is required")
	}
	if tools == nil {
		return nil, errors.New("tool gateway is required")
	}
	if profiles == nil {
		return nil, errors.New("profile manager is required")
	}
	if err := roster.Validate(); err != nil {
		return nil, err
	}
	if cfg.MaxRounds <= 0 {
		cfg.MaxRounds = 30
	}

	o := &Orchestrator{
		cfg:       cfg,
		sessions:  sessions,
		roster:    roster,
		generator: generator,
		tools:     tools,
		profiles:  profiles,
		metrics:   metrics,
	}

	graphRunner, err := o.compileTurnGraph(context.Background())
	if err != nil {
		return nil, err
	}
	o.graphRunner = graphRunner
	return o, nil
}

// SendMessage runs one full user turn and returns the extracted reply. A
// validation failure propagates; anything else degrades to an apology so the
// caller never sees an internal error for a live session. Turns on the same
// session are serialized by the session's turn lock.
func (o *Orchestrator) SendMessage(ctx context.Context, sessionID, text string) (result TurnResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Any("panic", r).Str("session", sessionID).Msg("turn panicked")
			result = TurnResult{
				SessionID: sessionID,
				Reply:     conversation.Reply{Text: apologyReply},
				Reason:    conversation.ReasonGenFailure,
			}
			err = nil
		}
	}()

	if strings.TrimSpace(text) == "" {
		return TurnResult{}, fmt.Errorf("%w: message text is empty", contractx.ErrValidation)
	}

	session := o.sessions.GetOrCreate(sessionID)
	session.Lock()
	defer session.Unlock()

	result, err = o.graphRunner.Invoke(ctx, GraphInput{SessionID: session.ID, Text: text})
	if err != nil {
		if errors.Is(err, contractx.ErrValidation) {
			return TurnResult{}, err
		}
		log.Error().Err(err).Str("session", sessionID).Msg("turn failed")
		return TurnResult{
			SessionID: sessionID,
			Reply:     conversation.Reply{Text: apologyReply},
			Reason:    conversation.ReasonGenFailure,
		}, nil
	}
	return result, nil
}

// ResetSession wipes a session's transcript and counters in place.
func (o *Orchestrator) ResetSession(sessionID string) error {
	if sessionID == "" {
		return fmt.Errorf("%w: session id is required", contractx.ErrValidation)
	}
	o.sessions.Reset(sessionID)
	return nil
}
