package orchestrator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	contractx "github.com/wrenhealth/concierge/agent/contract"
	"github.com/wrenhealth/concierge/agent/conversation"
	rosterx "github.com/wrenhealth/concierge/agent/roster"
	statex "github.com/wrenhealth/concierge/agent/state"
)

// runRounds drives the selection loop for one user turn. A surfaced tier-0
// or tier-1 determination lowers maxTier so no lower-priority role speaks
// after it. Selection and generation failures end the turn quietly; the
// extractor falls back when nothing displayable was produced.
func (o *Orchestrator) runRounds(ctx context.Context, st *graphState) (*graphState, error) {
	session := st.session
	maxTier := -1

	for session.AdvanceRound(o.cfg.MaxRounds) {
		eligible := o.roster.Eligible(maxTier)

		next, err := o.generator.SelectNext(ctx, contractx.SelectionRequest{
			Transcript:      session.Transcript(),
			Roster:          describeRoles(eligible),
			LastSpeaker:     session.LastSpeaker,
			RepeatForbidden: true,
		})
		if err != nil {
			o.countGeneratorError("select")
			log.Error().Err(err).Str("session", session.ID).Int("round", session.Round).Msg("speaker selection failed")
			st.reason = conversation.ReasonGenFailure
			return st, nil
		}
		if next == "" {
			st.reason = conversation.ReasonNoSelection
			return st, nil
		}

		role, ok := eligible.ByID(next)
		if !ok {
			o.countGeneratorError("select")
			log.Error().Str("session", session.ID).Str("speaker", next).Msg("selected speaker not eligible")
			st.reason = conversation.ReasonGenFailure
			return st, nil
		}

		msg, err := o.runTurn(ctx, st, role)
		if err != nil {
			o.countGeneratorError("turn")
			// A contract violation rejects only the offending turn; the
			// round continues so other roles can still answer.
			if errors.Is(err, contractx.ErrSchemaViolation) || errors.Is(err, contractx.ErrToolNotAllowed) {
				log.Warn().Err(err).Str("session", session.ID).Str("role", role.ID).Msg("turn rejected")
				continue
			}
			log.Error().Err(err).Str("session", session.ID).Str("role", role.ID).Msg("turn production failed")
			st.reason = conversation.ReasonGenFailure
			return st, nil
		}

		if conversation.IsDetermination(msg) {
			maxTier = role.Tier
		}
		session.AdvancePhase(conversation.NextPhase(session.Phase, msg))

		if stop, reason := conversation.IsTermination(msg); stop {
			st.reason = reason
			return st, nil
		}
	}

	st.reason = conversation.ReasonRoundCap
	return st, nil
}

// runTurn produces one role's message, resolving tool requests between the
// planning and finalizing passes. Resolved tool results are logged to the
// transcript before the second pass so later rounds see them.
func (o *Orchestrator) runTurn(ctx context.Context, st *graphState, role rosterx.Role) (statex.Message, error) {
	session := st.session

	req := contractx.TurnRequest{
		RoleID:         role.ID,
		ProfileContext: st.profileCtx,
		Transcript:     session.Transcript(),
	}
	resp, err := o.generator.ProduceTurn(ctx, req)
	if err != nil {
		return statex.Message{}, err
	}

	var invocations []statex.ToolInvocation
	if len(resp.ToolRequests) > 0 {
		results, err := o.tools.Execute(ctx, role.ID, resp.ToolRequests)
		if err != nil {
			return statex.Message{}, err
		}
		invocations = toInvocations(results)

		if _, err := session.Append(rosterx.RoleToolLog, renderToolLog(results), invocations); err != nil {
			return statex.Message{}, err
		}

		req.Transcript = session.Transcript()
		req.ToolResults = results
		resp, err = o.generator.ProduceTurn(ctx, req)
		if err != nil {
			return statex.Message{}, err
		}
	}

	if strings.TrimSpace(resp.Content) == "" {
		return statex.Message{}, fmt.Errorf("%w: role=%s finalized an empty turn", contractx.ErrSchemaViolation, role.ID)
	}
	return session.Append(role.ID, resp.Content, invocations)
}

func toInvocations(results []contractx.ToolResult) []statex.ToolInvocation {
	out := make([]statex.ToolInvocation, 0, len(results))
	for _, r := range results {
		out = append(out, statex.ToolInvocation{
			Tool:   r.Tool,
			Args:   r.Args,
			Result: r.Result,
			Error:  r.Error,
		})
	}
	return out
}

func renderToolLog(results []contractx.ToolResult) string {
	raw, err := json.Marshal(results)
	if err != nil {
		return fmt.Sprintf("tool results unavailable: %v", err)
	}
	return string(raw)
}

func describeRoles(roster rosterx.Roster) []contractx.RoleDescription {
	out := make([]contractx.RoleDescription, 0, len(roster))
	for _, role := range roster {
		out = append(out, contractx.RoleDescription{
			ID:          role.ID,
			Tier:        role.Tier,
			Description: role.Description,
		})
	}
	return out
}

func (o *Orchestrator) countGeneratorError(call string) {
	if o.metrics != nil {
		o.metrics.GeneratorErrors.WithLabelValues(call).Inc()
	}
}
