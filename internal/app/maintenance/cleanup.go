package maintenance

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	iauth "github.com/nursultanq/gymapp/internal/auth"
	"github.com/nursultanq/gymapp/internal/services"
	"github.com/nursultanq/gymapp/pkg/logger"
)

const (
	defaultSchedule       = "@hourly"
	defaultTokenRetention = 7 * 24 * time.Hour
	defaultAuditRetention = 30 * 24 * time.Hour
)

// Cleaner runs background maintenance: flagging and pruning stale token
// rows and enforcing audit-log retention. Token validation never depends on
// it; the expired flag it maintains is advisory.
type Cleaner struct {
	tokens *iauth.TokenService
	audit  *services.AuditService
	cron   *cron.Cron
	log    *zap.Logger

	schedule       string
	tokenRetention time.Duration
	auditRetention time.Duration
}

// Option customises the Cleaner.
type Option func(*Cleaner)

// WithCron injects a preconfigured cron instance, primarily for testing.
func WithCron(c *cron.Cron) Option {
	return func(cleaner *Cleaner) {
		if c != nil {
			cleaner.cron = c
		}
	}
}

// WithSchedule overrides the cron specification for the cleanup job.
func WithSchedule(spec string) Option {
	return func(cleaner *Cleaner) {
		if spec != "" {
			cleaner.schedule = spec
		}
	}
}

// WithTokenRetention adjusts how long revoked or expired token rows are kept.
func WithTokenRetention(d time.Duration) Option {
	return func(cleaner *Cleaner) {
		if d > 0 {
			cleaner.tokenRetention = d
		}
	}
}

// WithAuditRetention adjusts how long audit entries are kept.
func WithAuditRetention(d time.Duration) Option {
	return func(cleaner *Cleaner) {
		if d > 0 {
			cleaner.auditRetention = d
		}
	}
}

// NewCleaner constructs a Cleaner with sensible defaults. A nil dependency
// results in the corresponding cleanup being skipped.
func NewCleaner(tokens *iauth.TokenService, audit *services.AuditService, opts ...Option) *Cleaner {
	cleaner := &Cleaner{
		tokens:         tokens,
		audit:          audit,
		schedule:       defaultSchedule,
		tokenRetention: defaultTokenRetention,
		auditRetention: defaultAuditRetention,
		log:            logger.WithModule("maintenance"),
	}

	for _, opt := range opts {
		opt(cleaner)
	}

	if cleaner.cron == nil {
		cleaner.cron = cron.New(cron.WithLogger(cron.DiscardLogger))
	}
	return cleaner
}

// Start registers the cleanup job with the cron scheduler and launches it.
func (c *Cleaner) Start() error {
	if c.tokens == nil && c.audit == nil {
		return nil
	}

	if _, err := c.cron.AddFunc(c.schedule, func() {
		if err := c.RunOnce(context.Background()); err != nil {
			c.log.Warn("maintenance run failed", zap.Error(err))
		}
	}); err != nil {
		return err
	}

	c.cron.Start()
	return nil
}

// Stop halts the underlying scheduler, waiting for any running jobs to complete.
func (c *Cleaner) Stop() context.Context {
	if c.cron == nil {
		return context.Background()
	}
	return c.cron.Stop()
}

// RunOnce executes all configured cleanup routines sequentially. Primarily
// used in tests and during graceful shutdown.
func (c *Cleaner) RunOnce(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	var errs error

	if c.tokens != nil {
		flagged, err := c.tokens.MarkExpired(ctx, c.tokenRetention)
		if err != nil {
			errs = multierr.Append(errs, err)
		} else if flagged > 0 {
			c.log.Info("flagged expired tokens", zap.Int64("count", flagged))
		}
	}

	if c.audit != nil {
		removed, err := c.audit.Prune(ctx, c.auditRetention)
		if err != nil {
			errs = multierr.Append(errs, err)
		} else if removed > 0 {
			c.log.Info("pruned audit entries", zap.Int64("count", removed))
		}
	}

	return errs
}
