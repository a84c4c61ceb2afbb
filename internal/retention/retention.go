// Package retention prunes old check-log entries on a cron schedule.
// Paper records are never touched; only the best-effort check history is
// subject to expiry.
package retention

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/adhocore/gronx"

	"paperguard/pkg/config"
	"paperguard/pkg/logger"
	"paperguard/pkg/store"
)

// Start starts the retention scheduler if enabled. Returns a cancel func.
func Start(ctx context.Context, cfg config.RetentionConfig) (context.CancelFunc, error) {
	if !cfg.Enabled {
		logger.Info("retention_disabled")
		return func() {}, nil
	}

	period, err := ParsePeriod(cfg.Period)
	if err != nil {
		logger.Error("retention_invalid_period", "period", cfg.Period, "error", err)
		return nil, err
	}

	// map empty cron to default daily @02:00
	cronExpr := cfg.Cron
	if cronExpr == "" {
		cronExpr = "0 2 * * *"
	}
	if !gronx.IsValid(cronExpr) {
		logger.Error("retention_invalid_cron", "cron", cfg.Cron)
		return nil, fmt.Errorf("invalid retention cron expression: %s", cfg.Cron)
	}

	logger.Info("retention_enabled", "cron", cronExpr, "period", cfg.Period)
	ctx2, cancel := context.WithCancel(ctx)
	go runScheduler(ctx2, cronExpr, period)
	logger.Info("retention_scheduler_started")
	return cancel, nil
}

// RunOnce prunes check logs older than period relative to now. Exposed for
// admin triggers and tests.
func RunOnce(period time.Duration) error {
	cutoff := time.Now().UTC().Add(-period)
	n, err := store.PruneCheckLogs(cutoff)
	if err != nil {
		return err
	}
	logger.Info("retention_run_done", "pruned", n, "cutoff", cutoff.Format(time.RFC3339))
	return nil
}

// runScheduler uses gronx to compute the next tick for the configured cron
// expression and sleeps until that time.
func runScheduler(ctx context.Context, cronExpr string, period time.Duration) {
	for {
		select {
		case <-ctx.Done():
			logger.Info("retention_scheduler_stopping")
			return
		default:
		}

		now := time.Now().UTC()
		next, err := gronx.NextTickAfter(cronExpr, now, false)
		if err != nil {
			logger.Error("retention_nexttick_failed", "cron", cronExpr, "error", err)
			select {
			case <-time.After(30 * time.Second):
			case <-ctx.Done():
				logger.Info("retention_scheduler_stopping")
				return
			}
			continue
		}

		wait := time.Until(next)
		if wait <= 0 {
			if err := RunOnce(period); err != nil {
				logger.Error("retention_run_error", "error", err)
			}
			// avoid a tight loop around a tick boundary
			select {
			case <-time.After(time.Second):
			case <-ctx.Done():
				logger.Info("retention_scheduler_stopping")
				return
			}
			continue
		}

		select {
		case <-time.After(wait):
			if err := RunOnce(period); err != nil {
				logger.Error("retention_run_error", "error", err)
			}
		case <-ctx.Done():
			logger.Info("retention_scheduler_stopping")
			return
		}
	}
}

// ParsePeriod parses a retention period such as "720h", "90d" or "12w".
// Bare Go durations are accepted as-is; d and w suffixes are expanded.
func ParsePeriod(s string) (time.Duration, error) {
	raw := strings.TrimSpace(strings.ToLower(s))
	if raw == "" {
		return 0, fmt.Errorf("retention period not set")
	}
	if d, err := time.ParseDuration(raw); err == nil {
		if d <= 0 {
			return 0, fmt.Errorf("retention period must be positive: %s", s)
		}
		return d, nil
	}
	unit := raw[len(raw)-1]
	n, err := strconv.Atoi(raw[:len(raw)-1])
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid retention period: %s", s)
	}
	switch unit {
	case 'd':
		return time.Duration(n) * 24 * time.Hour, nil
	case 'w':
		return time.Duration(n) * 7 * 24 * time.Hour, nil
	}
	return 0, fmt.Errorf("invalid retention period unit: %s", s)
}
