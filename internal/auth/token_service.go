package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/nursultanq/gymapp/internal/models"
	"github.com/nursultanq/gymapp/pkg/logger"
	"github.com/nursultanq/gymapp/pkg/metrics"
)

// ErrTokenNotFound is returned when no persisted token matches, whether the
// account has no tokens at all or none of them is still valid.
var ErrTokenNotFound = errors.New("token: not found")

// TokenService mints, validates, and revokes bearer tokens. Every issued
// token is persisted; validation fails closed when the record is missing or
// revoked. Expiry is always computed from the signed payload, the stored
// expired column is advisory only.
type TokenService struct {
	db  *gorm.DB
	jwt *JWTService
	now func() time.Time
	log *zap.Logger
}

// NewTokenService constructs a TokenService over the database and signer.
func NewTokenService(db *gorm.DB, jwtService *JWTService, clock func() time.Time) (*TokenService, error) {
	if db == nil {
		return nil, errors.New("token service: db is required")
	}
	if jwtService == nil {
		return nil, errors.New("token service: jwt service is required")
	}
	if clock == nil {
		clock = time.Now
	}

	return &TokenService{
		db:  db,
		jwt: jwtService,
		now: clock,
		log: logger.WithModule("auth.tokens"),
	}, nil
}

// Issue mints a signed bearer token for the account and persists its record.
func (s *TokenService) Issue(ctx context.Context, account models.Account) (string, error) {
	username := account.Username()
	if username == "" {
		return "", errors.New("token service: empty account")
	}

	signed, _, err := s.jwt.GenerateAccessToken(account)
	if err != nil {
		return "", err
	}

	record := &models.Token{
		Token:    signed,
		Kind:     models.TokenKindBearer,
		Username: username,
	}
	if err := s.db.WithContext(ctx).Create(record).Error; err != nil {
		return "", fmt.Errorf("token service: persist token: %w", err)
	}

	metrics.TokensIssued.Inc()
	s.log.Debug("token issued", zap.String("username", username))
	return signed, nil
}

// IsValidForAccount reports whether the token authenticates the given
// username. Missing records and revoked tokens fail closed; a signature or
// claim parse failure is a hard error for the request, never anonymous
// access.
func (s *TokenService) IsValidForAccount(ctx context.Context, tokenString, username string) (bool, error) {
	record, err := s.findRecord(ctx, tokenString)
	if err != nil {
		if errors.Is(err, ErrTokenNotFound) {
			return false, nil
		}
		return false, err
	}
	if record.Revoked {
		return false, nil
	}

	claims, err := s.jwt.ValidateAccessToken(tokenString)
	if err != nil {
		if isExpiryError(err) {
			return false, nil
		}
		return false, err
	}

	return claims.Username() == username, nil
}

// IsValid reports whether the token is known, unrevoked, and unexpired. Both
// validation forms apply the same revocation and expiry checks.
func (s *TokenService) IsValid(ctx context.Context, tokenString string) (bool, error) {
	record, err := s.findRecord(ctx, tokenString)
	if err != nil {
		if errors.Is(err, ErrTokenNotFound) {
			return false, nil
		}
		return false, err
	}
	if record.Revoked {
		return false, nil
	}

	if _, err := s.jwt.ValidateAccessToken(tokenString); err != nil {
		if isExpiryError(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// isExpiryError distinguishes "token past its expiry" from malformed or
// badly signed tokens, which stay hard errors.
func isExpiryError(err error) bool {
	return errors.Is(err, jwt.ErrTokenExpired) || errors.Is(err, jwt.ErrTokenNotValidYet)
}

// Authenticate validates the token and resolves the claims it carries. Used
// by the HTTP middleware to establish the request principal.
func (s *TokenService) Authenticate(ctx context.Context, tokenString string) (*Claims, error) {
	record, err := s.findRecord(ctx, tokenString)
	if err != nil {
		return nil, err
	}
	if record.Revoked {
		return nil, ErrTokenNotFound
	}

	return s.jwt.ValidateAccessToken(tokenString)
}

// Revoke permanently invalidates the token. There is no un-revoke.
func (s *TokenService) Revoke(ctx context.Context, tokenString string) error {
	result := s.db.WithContext(ctx).Model(&models.Token{}).
		Where("token = ?", tokenString).
		Update("revoked", true)
	if result.Error != nil {
		return fmt.Errorf("token service: revoke: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrTokenNotFound
	}

	metrics.TokensRevoked.Inc()
	return nil
}

// ValidTokenForAccount returns the first unrevoked, unexpired token owned by
// the account. "No tokens" and "no valid token among many" report the same
// not-found condition.
func (s *TokenService) ValidTokenForAccount(ctx context.Context, account models.Account) (string, error) {
	username := account.Username()
	if username == "" {
		return "", errors.New("token service: empty account")
	}

	var records []models.Token
	err := s.db.WithContext(ctx).
		Where("username = ? AND revoked = ?", username, false).
		Order("created_at ASC").
		Find(&records).Error
	if err != nil {
		return "", fmt.Errorf("token service: list tokens: %w", err)
	}

	for _, record := range records {
		if record.Expired {
			continue
		}
		if _, err := s.jwt.ValidateAccessToken(record.Token); err != nil {
			continue
		}
		return record.Token, nil
	}
	return "", ErrTokenNotFound
}

// MarkExpired flips the advisory expired flag on rows whose embedded expiry
// has passed, and deletes rows that expired before the retention cutoff.
// Called by the maintenance cleaner; validation never depends on it.
func (s *TokenService) MarkExpired(ctx context.Context, retention time.Duration) (int64, error) {
	now := s.now()

	var flagged int64
	var records []models.Token
	err := s.db.WithContext(ctx).
		Where("expired = ?", false).
		Find(&records).Error
	if err != nil {
		return 0, fmt.Errorf("token service: list tokens: %w", err)
	}

	for _, record := range records {
		claims, err := s.jwt.ValidateAccessToken(record.Token)
		if err == nil && claims.ExpiresAt != nil && claims.ExpiresAt.After(now) {
			continue
		}
		res := s.db.WithContext(ctx).Model(&models.Token{}).
			Where("id = ?", record.ID).
			Update("expired", true)
		if res.Error != nil {
			return flagged, fmt.Errorf("token service: flag expired: %w", res.Error)
		}
		flagged += res.RowsAffected
	}

	if retention > 0 {
		cutoff := now.Add(-retention)
		res := s.db.WithContext(ctx).
			Where("(expired = ? OR revoked = ?) AND created_at < ?", true, true, cutoff).
			Delete(&models.Token{})
		if res.Error != nil {
			return flagged, fmt.Errorf("token service: prune tokens: %w", res.Error)
		}
		if res.RowsAffected > 0 {
			s.log.Info("pruned stale tokens", zap.Int64("count", res.RowsAffected))
		}
	}

	return flagged, nil
}

func (s *TokenService) findRecord(ctx context.Context, tokenString string) (*models.Token, error) {
	if tokenString == "" {
		return nil, ErrTokenNotFound
	}

	var record models.Token
	err := s.db.WithContext(ctx).Where("token = ?", tokenString).Take(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTokenNotFound
		}
		return nil, fmt.Errorf("token service: query token: %w", err)
	}
	return &record, nil
}
