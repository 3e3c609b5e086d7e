// Package migrate copies accounts between stores.
package migrate

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/sells-group/account-engine/internal/model"
	"github.com/sells-group/account-engine/internal/store"
)

// Config bounds the copy.
type Config struct {
	// Concurrency is the number of accounts written at once. Default: 4.
	Concurrency int `yaml:"concurrency" mapstructure:"concurrency"`
	// RateLimit caps writes per second; 0 disables the limit.
	RateLimit float64 `yaml:"rate_limit" mapstructure:"rate_limit"`
	// DryRun lists what would be copied without writing.
	DryRun bool `yaml:"-" mapstructure:"-"`
}

// Result lists the copied account ids and the per-account failures. A
// partially saved account counts as copied; its sub-entity errors are
// recorded alongside.
type Result = store.SaveResult

// Run copies every account in from into to. The destination schema is
// migrated first. Per-account failures never stop the run.
func Run(ctx context.Context, from, to store.Store, cfg Config) (*Result, error) {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 4
	}

	if !cfg.DryRun {
		if err := to.Migrate(ctx); err != nil {
			return nil, eris.Wrap(err, "migrate: prepare destination")
		}
	}

	accts, err := from.List(ctx)
	if err != nil {
		return nil, eris.Wrap(err, "migrate: list source")
	}

	var limiter *rate.Limiter
	if cfg.RateLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), max(int(cfg.RateLimit), 1))
	}

	log := zap.L().With(zap.Int("accounts", len(accts)), zap.Bool("dry_run", cfg.DryRun))
	log.Info("migrate: starting")
	start := time.Now()

	res := &Result{}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.Concurrency)

	for i := range accts {
		acct := &accts[i]
		g.Go(func() error {
			if limiter != nil {
				if err := limiter.Wait(gctx); err != nil {
					return eris.Wrap(err, "migrate: rate limit")
				}
			}
			if cfg.DryRun {
				res.Ok(acct.ID)
				return nil
			}
			copyOne(gctx, to, acct, res)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return res, err
	}

	log.Info("migrate: finished",
		zap.Int("copied", len(res.Applied)),
		zap.Int("errors", len(res.Errors)),
		zap.Duration("elapsed", time.Since(start)),
	)
	return res, nil
}

func copyOne(ctx context.Context, to store.Store, acct *model.Account, res *Result) {
	saved, err := to.Save(ctx, acct)
	if err != nil {
		zap.L().Warn("migrate: account failed", zap.String("account_id", acct.ID), zap.Error(err))
		res.Fail(eris.Wrapf(err, "account %s", acct.ID))
		return
	}
	res.Ok(acct.ID)
	for _, e := range saved.Errors {
		res.Fail(eris.Wrapf(e, "account %s", acct.ID))
	}
}
