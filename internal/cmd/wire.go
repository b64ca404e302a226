package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/threadlens/threadlens/internal/ailink"
	"github.com/threadlens/threadlens/internal/ailink/driver/openai"
	"github.com/threadlens/threadlens/internal/config"
	"github.com/threadlens/threadlens/internal/core/engine"
	"github.com/threadlens/threadlens/internal/core/reddit"
	"github.com/threadlens/threadlens/internal/core/store"
)

// pipeline bundles a wired scout with the resources behind it.
type pipeline struct {
	Scout *engine.Scout
	Store *store.Store // nil when persistence is disabled
	Cfg   *config.Config
}

// Close releases pipeline resources.
func (p *pipeline) Close() error {
	if p == nil || p.Store == nil {
		return nil
	}
	return p.Store.Close()
}

// buildPipeline assembles the scout pipeline from the merged configuration.
func buildPipeline(ctx context.Context, logger *zap.Logger) (*pipeline, error) {
	cfg, err := config.FromViper(viper.GetViper())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigInvalid, err)
	}

	client := reddit.NewClient(reddit.Config{
		BaseURL:   cfg.Reddit.BaseURL,
		UserAgent: cfg.Reddit.UserAgent,
		Delay:     cfg.Reddit.Delay,
		Jitter:    cfg.Reddit.Jitter,
		Timeout:   cfg.Reddit.Timeout,
		Logger:    logger,
	})

	var st *store.Store
	var cache engine.CommunityCache
	if cfg.Store.Enabled {
		st, err = store.Open(ctx, cfg.Store)
		if err != nil {
			return nil, fmt.Errorf("%w: open: %v", ErrStoreFailure, err)
		}
		if err := st.Migrate(ctx); err != nil {
			_ = st.Close()
			return nil, fmt.Errorf("%w: migrate: %v", ErrStoreFailure, err)
		}
		cache = st
	}

	resolver := engine.NewResolver(client, cache)
	if cfg.Store.TTL > 0 {
		resolver.CacheTTL = cfg.Store.TTL
	}

	discoverer := &engine.Discoverer{
		Source:         client,
		Resolver:       resolver,
		Log:            logger,
		NicheThreshold: cfg.Scout.NicheThreshold,
	}

	var completer engine.Completer
	llmEnabled := cfg.LLM.Enabled && strings.TrimSpace(cfg.LLM.APIKey) != ""
	if llmEnabled {
		driver := openai.NewClient(cfg.LLM.BaseURL, cfg.LLM.APIKey)
		driver.Timeout = cfg.LLM.Timeout
		completer = &ailink.Completer{Driver: driver, Model: cfg.LLM.Model}
	}

	planner := &engine.PlanBuilder{
		Resolver:     resolver,
		Discoverer:   discoverer,
		Completer:    completer,
		Log:          logger,
		LLMEnabled:   llmEnabled,
		LLMTimeout:   cfg.LLM.Timeout,
		MaxDiscovery: cfg.Scout.MaxDiscovery,
	}

	scout := &engine.Scout{
		Planner: planner,
		FanOut:  &engine.FanOut{Source: client, Log: logger},
		Enricher: &engine.Enricher{
			Source: client,
			Log:    logger,
			Limit:  cfg.Scout.ReplyLimit,
		},
		Log:          logger,
		Budget:       cfg.Scout.Budget,
		DefaultLimit: cfg.Scout.Limit,
	}

	return &pipeline{Scout: scout, Store: st, Cfg: cfg}, nil
}
