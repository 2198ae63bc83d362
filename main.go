package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	generatorx "github.com/wrenhealth/concierge/agent/agents/generator"
	orchestratorx "github.com/wrenhealth/concierge/agent/agents/orchestrator"
	llmx "github.com/wrenhealth/concierge/agent/llm"
	profilex "github.com/wrenhealth/concierge/agent/profile"
	promptx "github.com/wrenhealth/concierge/agent/prompt"
	rosterx "github.com/wrenhealth/concierge/agent/roster"
	statex "github.com/wrenhealth/concierge/agent/state"
	toolx "github.com/wrenhealth/concierge/agent/tool"
	configx "github.com/wrenhealth/concierge/pkg/config"
	"github.com/wrenhealth/concierge/pkg/geoip"
	"github.com/wrenhealth/concierge/pkg/healthapi"
	logx "github.com/wrenhealth/concierge/pkg/logger"
	"github.com/wrenhealth/concierge/pkg/observability"
	serverx "github.com/wrenhealth/concierge/server"
)

func main() {
	logCfg := configx.MustNew[logx.Config]("LOG")
	logx.Init(*logCfg)

	llmCfg := configx.MustNew[llmx.Config]("LLM")
	apiCfg := configx.MustNew[healthapi.Config]("HEALTHAPI")
	geoCfg := configx.MustNew[geoip.Config]("GEOIP")
	toolCfg := configx.MustNew[toolx.Config]("TOOL")
	profileCfg := configx.MustNew[profilex.StoreConfig]("PROFILE")
	orchCfg := configx.MustNew[orchestratorx.Config]("ORCHESTRATOR")
	srvCfg := configx.MustNew[serverx.Config]("SERVER")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	metrics := observability.NewMetrics("concierge")

	store, err := profilex.NewStore(ctx, *profileCfg)
	if err != nil {
		log.Fatal().Err(err).Msg("create profile store")
	}
	profiles := profilex.NewManager(store, geoip.NewDetector(*geoCfg))
	go profiles.DetectTimezone(ctx)

	apiClient, err := healthapi.NewClient(*apiCfg)
	if err != nil {
		log.Fatal().Err(err).Msg("create health api client")
	}
	gateway := toolx.NewGateway(*toolCfg, apiClient, profiles, metrics)

	prompts := promptx.Load()
	roster := rosterx.New(prompts)

	generator, err := generatorx.New(ctx, *llmCfg, roster, prompts.Selector)
	if err != nil {
		log.Fatal().Err(err).Msg("create generation service")
	}

	sessions := statex.NewRegistry(nil)
	sessions.SetLifecycleHooks(metrics.ActiveSessions.Inc, metrics.ActiveSessions.Dec)

	orch, err := orchestratorx.New(*orchCfg, sessions, roster, generator, gateway, profiles, metrics)
	if err != nil {
		log.Fatal().Err(err).Msg("create orchestrator")
	}

	srv := serverx.New(*srvCfg, orch, profiles)
	httpServer := &http.Server{
		Addr:              srv.Addr(),
		Handler:           srv.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("addr", httpServer.Addr).Msg("concierge listening")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("http server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("shutdown failed")
	}
}
