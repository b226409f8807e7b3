package sweeper

import (
	"context"
	"fmt"
	"time"

	"github.com/adhocore/gronx"

	"consoled/pkg/config"
	"consoled/pkg/logger"
	"consoled/pkg/store"
)

// Start starts the unread sweep scheduler if enabled. Returns a cancel func.
//
// Unread references are written independently of console records, so a
// console deleted on another node can leave dangling ids behind in user
// unread sets. The sweep drops any reference whose console no longer
// exists.
func Start(ctx context.Context, cfg config.SweepConfig) (context.CancelFunc, error) {
	if !cfg.Enabled {
		logger.Info("sweep_disabled")
		return func() {}, nil
	}

	// map empty cron to default daily @02:00
	cronExpr := cfg.Cron
	if cronExpr == "" {
		cronExpr = "0 2 * * *"
	}
	if !gronx.IsValid(cronExpr) {
		logger.Error("sweep_invalid_cron", "cron", cfg.Cron)
		return nil, fmt.Errorf("invalid sweep cron expression: %s", cfg.Cron)
	}

	logger.Info("sweep_enabled", "cron", cronExpr)
	ctx2, cancel := context.WithCancel(ctx)
	go runScheduler(ctx2, cronExpr)
	return cancel, nil
}

// runScheduler uses gronx to compute the next tick for the configured cron
// expression and sleeps until that time.
func runScheduler(ctx context.Context, cronExpr string) {
	for {
		select {
		case <-ctx.Done():
			logger.Info("sweep_scheduler_stopping")
			return
		default:
		}

		now := time.Now().UTC()
		next, err := gronx.NextTickAfter(cronExpr, now, false)
		if err != nil {
			logger.Error("sweep_nexttick_failed", "cron", cronExpr, "error", err)
			select {
			case <-time.After(30 * time.Second):
			case <-ctx.Done():
				return
			}
			continue
		}

		wait := time.Until(next)
		if wait <= 0 {
			wait = time.Second
		}
		select {
		case <-time.After(wait):
			if err := RunOnce(ctx); err != nil {
				logger.Error("sweep_run_error", "error", err)
			}
		case <-ctx.Done():
			logger.Info("sweep_scheduler_stopping")
			return
		}
	}
}

// RunOnce performs a single sweep over every user's unread set.
func RunOnce(ctx context.Context) error {
	ids, err := store.ListConsoleIDs()
	if err != nil {
		return fmt.Errorf("failed to list consoles: %w", err)
	}
	live := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		live[id] = struct{}{}
	}

	users, err := store.ListUsers()
	if err != nil {
		return fmt.Errorf("failed to list users: %w", err)
	}

	var pruned int
	for _, u := range users {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		unread, err := store.GetUnread(u.ID)
		if err != nil {
			logger.Warn("sweep_unread_read_failed", "user", u.ID, "error", err)
			continue
		}
		kept := unread[:0]
		for _, id := range unread {
			if _, ok := live[id]; ok {
				kept = append(kept, id)
			}
		}
		if len(kept) == len(unread) {
			continue
		}
		if err := store.SetUnread(u.ID, kept); err != nil {
			logger.Warn("sweep_unread_write_failed", "user", u.ID, "error", err)
			continue
		}
		pruned += len(unread) - len(kept)
	}

	logger.AuditInfo("sweep_completed", "users", len(users), "pruned", pruned)
	return nil
}
