// Package app wires configuration, storage, the check pipeline and the
// HTTP server into one lifecycle.
package app

import (
	"context"
	"fmt"
	"net/http"

	"github.com/joho/godotenv"

	"paperguard/internal/retention"
	"paperguard/pkg/chain"
	"paperguard/pkg/check"
	"paperguard/pkg/config"
	"paperguard/pkg/quota"
	"paperguard/pkg/similarity"
	"paperguard/pkg/store"
)

// App encapsulates the server components and lifecycle.
type App struct {
	eff       config.EffectiveConfigResult
	version   string
	commit    string
	buildDate string

	limiter *quota.Limiter
	checker *check.Checker

	srv *http.Server
}

// New initializes resources that do not require a running context: the
// store, the quota limiter and the check pipeline. It does not start the
// HTTP server; call Run to start it and block until shutdown.
func New(eff config.EffectiveConfigResult, version, commit, buildDate string) (*App, error) {
	_ = godotenv.Load(".env")

	if err := validateConfig(eff); err != nil {
		return nil, err
	}

	if err := store.Open(eff.DBPath); err != nil {
		return nil, fmt.Errorf("failed to open pebble at %s: %w", eff.DBPath, err)
	}

	cfg := eff.Config
	limiter := quota.NewLimiter(cfg.Check.MaxChecksOrDefault())

	var gw chain.Gateway
	if cfg.Chain.RPCEndpoint != "" {
		gw = chain.NewClient(cfg.Chain.RPCEndpoint, cfg.Chain.Contract, cfg.Chain.TimeoutOrDefault())
	}
	checker := check.New(limiter, gw, similarity.NewScorer(), cfg.Check.ThresholdOrDefault())

	a := &App{
		eff:       eff,
		version:   version,
		commit:    commit,
		buildDate: buildDate,
		limiter:   limiter,
		checker:   checker,
	}
	return a, nil
}

// Run starts the retention scheduler (if enabled) and the HTTP server, and
// blocks until ctx is canceled or a fatal server error occurs.
func (a *App) Run(ctx context.Context) error {
	stopRetention, err := retention.Start(ctx, a.eff.Config.Retention)
	if err != nil {
		return err
	}
	defer stopRetention()

	a.printBanner()

	errCh := a.startHTTP(ctx)

	select {
	case <-ctx.Done():
		a.shutdown()
		return nil
	case err := <-errCh:
		a.shutdown()
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	}
}

func (a *App) shutdown() {
	if a.srv != nil {
		_ = a.srv.Close()
	}
	_ = store.Close()
}

// validateConfig fails fast on settings that would only surface as runtime
// errors later.
func validateConfig(eff config.EffectiveConfigResult) error {
	if eff.Config == nil {
		return fmt.Errorf("no configuration resolved")
	}
	if eff.DBPath == "" {
		return fmt.Errorf("db path not set (use --db or PAPERGUARD_DB_PATH)")
	}
	cfg := eff.Config
	if cfg.Chain.RPCEndpoint != "" && cfg.Chain.Contract == "" {
		return fmt.Errorf("chain.rpc_endpoint set without chain.contract")
	}
	if cfg.Chain.Contract != "" {
		if _, err := chain.NormalizeAddress(cfg.Chain.Contract); err != nil {
			return fmt.Errorf("invalid chain.contract: %w", err)
		}
	}
	if cfg.Retention.Enabled {
		if _, err := retention.ParsePeriod(cfg.Retention.Period); err != nil {
			return err
		}
	}
	return nil
}
