package generator

import (
	"context"
	"fmt"

	contractx "github.com/wrenhealth/concierge/agent/contract"
	llmx "github.com/wrenhealth/concierge/agent/llm"
	rosterx "github.com/wrenhealth/concierge/agent/roster"
	toolx "github.com/wrenhealth/concierge/agent/tool"
	"github.com/wrenhealth/concierge/pkg/openrouter"
)

// Service compiles one pair of graphs per roster role at startup and serves
// the generation contract: speaker selection and turn production.
type Service struct {
	runners  map[string]*roleRunner
	selector *selector
}

var _ contractx.Generator = (*Service)(nil)

func New(ctx context.Context, cfg llmx.Config, roster rosterx.Roster, selectorPrompt string) (*Service, error) {
	if err := roster.Validate(); err != nil {
		return nil, err
	}
	if selectorPrompt == "" {
		return nil, fmt.Errorf("%w: selector directive is empty", contractx.ErrPromptMissing)
	}

	runners := make(map[string]*roleRunner, len(roster))
	for _, role := range roster {
		if role.Directive == "" {
			return nil, fmt.Errorf("%w: role=%s has no directive", contractx.ErrPromptMissing, role.ID)
		}

		modelCfg := cfg.ForRole(role.ID)
		chatModel, err := modelCfg.New(ctx)
		if err != nil {
			return nil, fmt.Errorf("%w: create model for role=%s: %v", contractx.ErrModelInvoke, role.ID, err)
		}

		runner := &roleRunner{roleID: role.ID}
		runner.structuredRunner, err = compileStructuredTurnGraph(
			ctx, chatModel, role.Directive, "generator."+role.ID+".turn_graph")
		if err != nil {
			return nil, fmt.Errorf("%w: role=%s: %v", contractx.ErrModelInvoke, role.ID, err)
		}

		if infos := toolx.InfosForRole(role.ID); len(infos) > 0 {
			toolModel, err := chatModel.WithTools(infos)
			if err != nil {
				return nil, fmt.Errorf("%w: bind tools for role=%s: %v", contractx.ErrModelInvoke, role.ID, err)
			}
			runner.toolRunner, err = compileToolPlanningGraph(
				ctx, toolModel, role.Directive, "generator."+role.ID+".tool_graph")
			if err != nil {
				return nil, fmt.Errorf("%w: role=%s: %v", contractx.ErrModelInvoke, role.ID, err)
			}
		}
		runners[role.ID] = runner
	}

	selectorCfg := cfg.ForSelector()
	sel := &selector{
		client: openrouter.NewClient(selectorCfg),
		model:  selectorCfg.Model,
		prompt: selectorPrompt,
	}

	return &Service{runners: runners, selector: sel}, nil
}

func (s *Service) SelectNext(ctx context.Context, req contractx.SelectionRequest) (string, error) {
	return s.selector.selectNext(ctx, req)
}

func (s *Service) ProduceTurn(ctx context.Context, req contractx.TurnRequest) (contractx.TurnResponse, error) {
	runner, ok := s.runners[req.RoleID]
	if !ok {
		return contractx.TurnResponse{}, fmt.Errorf("%w: unknown role %q", contractx.ErrValidation, req.RoleID)
	}
	return runner.produce(ctx, req)
}
