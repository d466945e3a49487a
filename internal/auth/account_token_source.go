package auth

import (
	"context"
	stderrors "errors"

	"github.com/nursultanq/gymapp/internal/accounts"
)

// AccountTokenSource supplies bearer tokens for outbound calls made on behalf
// of a fixed account. The account's oldest still-valid token is reused; when
// none remains, a fresh one is issued.
type AccountTokenSource struct {
	store    *accounts.Store
	tokens   *TokenService
	username string
}

// NewAccountTokenSource constructs a token source bound to the given account.
func NewAccountTokenSource(store *accounts.Store, tokens *TokenService, username string) (*AccountTokenSource, error) {
	if store == nil {
		return nil, stderrors.New("token source: account store is required")
	}
	if tokens == nil {
		return nil, stderrors.New("token source: token service is required")
	}
	if username == "" {
		return nil, stderrors.New("token source: username is required")
	}
	return &AccountTokenSource{store: store, tokens: tokens, username: username}, nil
}

// Token returns a currently-valid token for the bound account.
func (s *AccountTokenSource) Token(ctx context.Context) (string, error) {
	account, err := s.store.FindByUsername(ctx, s.username)
	if err != nil {
		return "", err
	}

	token, err := s.tokens.ValidTokenForAccount(ctx, account)
	if err == nil {
		return token, nil
	}
	if !stderrors.Is(err, ErrTokenNotFound) {
		return "", err
	}
	return s.tokens.Issue(ctx, account)
}
