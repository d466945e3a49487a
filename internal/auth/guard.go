package auth

import (
	"context"
	stderrors "errors"
	"time"

	"go.uber.org/zap"

	"github.com/nursultanq/gymapp/internal/accounts"
	"github.com/nursultanq/gymapp/internal/models"
	"github.com/nursultanq/gymapp/pkg/crypto"
	"github.com/nursultanq/gymapp/pkg/errors"
	"github.com/nursultanq/gymapp/pkg/logger"
	"github.com/nursultanq/gymapp/pkg/metrics"
)

// Lockout defaults. Both are configurable; these values apply when the
// config leaves them unset.
const (
	DefaultMaxFailedAttempts = 2
	DefaultBlockDuration     = time.Minute
)

// GuardConfig carries the lockout policy for a Guard.
type GuardConfig struct {
	MaxFailedAttempts int
	BlockDuration     time.Duration
	Clock             func() time.Time
}

// Guard decides whether a presented username/password pair authenticates,
// maintaining per-account lockout state to defend against repeated guessing.
//
// Lockout state moves through three situations: not blocked, blocked with
// the timer still running, and blocked with the timer elapsed. Every branch
// that changes lockout fields persists the account before returning.
type Guard struct {
	store       *accounts.Store
	maxAttempts int
	blockFor    time.Duration
	now         func() time.Time
	log         *zap.Logger
}

// NewGuard constructs a credential guard over the account store.
func NewGuard(store *accounts.Store, cfg GuardConfig) (*Guard, error) {
	if store == nil {
		return nil, stderrors.New("guard: account store is required")
	}

	maxAttempts := cfg.MaxFailedAttempts
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxFailedAttempts
	}

	blockFor := cfg.BlockDuration
	if blockFor <= 0 {
		blockFor = DefaultBlockDuration
	}

	now := cfg.Clock
	if now == nil {
		now = time.Now
	}

	return &Guard{
		store:       store,
		maxAttempts: maxAttempts,
		blockFor:    blockFor,
		now:         now,
		log:         logger.WithModule("auth.guard"),
	}, nil
}

// Validate authenticates the username/password pair and returns the resolved
// account on success. An unknown username is rejected before any lockout
// state runs; it has no account to mutate.
func (g *Guard) Validate(ctx context.Context, username, password string) (models.Account, error) {
	account, err := g.store.FindByUsername(ctx, username)
	if err != nil {
		if stderrors.Is(err, accounts.ErrNotFound) {
			metrics.AuthAttempts.WithLabelValues("failure").Inc()
			return models.Account{}, errors.ErrInvalidCredentials
		}
		return models.Account{}, errors.Wrap(err, "look up account")
	}

	if err := g.authenticate(ctx, account, password); err != nil {
		return models.Account{}, err
	}

	metrics.AuthAttempts.WithLabelValues("success").Inc()
	return account, nil
}

// ChangePassword re-runs the guard with the current password before storing
// the new hash, so a blocked account cannot rotate its way out of a lockout.
func (g *Guard) ChangePassword(ctx context.Context, username, current, next string) error {
	account, err := g.Validate(ctx, username, current)
	if err != nil {
		return err
	}

	if next == "" {
		return errors.NewBadRequest("new password must not be empty")
	}

	hashed, err := crypto.HashPassword(next)
	if err != nil {
		return errors.Wrap(err, "hash password")
	}

	account.User().Password = hashed
	if err := g.store.Save(ctx, account); err != nil {
		return errors.Wrap(err, "persist password change")
	}

	g.log.Info("password changed", zap.String("username", username))
	return nil
}

func (g *Guard) authenticate(ctx context.Context, account models.Account, password string) error {
	user := account.User()
	if !user.HasRequiredFields() {
		return errors.ErrInvalidUser
	}

	now := g.now()

	if user.IsBlocked {
		if user.BlockStartTime != nil && now.Before(user.BlockStartTime.Add(g.blockFor)) {
			// Active block window: nothing is persisted and the
			// password is not even compared.
			metrics.AuthAttempts.WithLabelValues("blocked").Inc()
			return errors.ErrUserBlocked
		}
		return g.retryAfterExpiredBlock(ctx, account, password)
	}

	if crypto.VerifyPassword(user.Password, password) {
		if user.FailedLoginAttempts > 0 {
			user.FailedLoginAttempts = 0
			user.BlockStartTime = nil
			if err := g.store.Save(ctx, account); err != nil {
				return errors.Wrap(err, "reset failed attempts")
			}
		}
		return nil
	}

	user.FailedLoginAttempts++
	if user.FailedLoginAttempts >= g.maxAttempts {
		// The attempt that reaches the threshold triggers the block.
		user.IsBlocked = true
		blockedAt := now
		user.BlockStartTime = &blockedAt
		if err := g.store.Save(ctx, account); err != nil {
			return errors.Wrap(err, "persist lockout")
		}

		g.log.Warn("account blocked after repeated failures",
			zap.String("username", user.Username),
			zap.Int("attempts", user.FailedLoginAttempts))
		metrics.AuthAttempts.WithLabelValues("blocked").Inc()
		return errors.ErrUserBlocked
	}

	if err := g.store.Save(ctx, account); err != nil {
		return errors.Wrap(err, "persist failed attempt")
	}
	metrics.AuthAttempts.WithLabelValues("failure").Inc()
	return errors.ErrInvalidCredentials
}

// retryAfterExpiredBlock handles the attempt that arrives after the block
// window has elapsed. The block always clears; a wrong password starts a
// fresh count at 1 and does not re-block within the same attempt.
func (g *Guard) retryAfterExpiredBlock(ctx context.Context, account models.Account, password string) error {
	user := account.User()
	user.IsBlocked = false

	if crypto.VerifyPassword(user.Password, password) {
		user.FailedLoginAttempts = 0
		user.BlockStartTime = nil
		if err := g.store.Save(ctx, account); err != nil {
			return errors.Wrap(err, "clear expired block")
		}
		return nil
	}

	user.FailedLoginAttempts = 1
	user.BlockStartTime = nil
	if err := g.store.Save(ctx, account); err != nil {
		return errors.Wrap(err, "persist failed attempt")
	}
	metrics.AuthAttempts.WithLabelValues("failure").Inc()
	return errors.ErrInvalidCredentials
}
