package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/nursultanq/gymapp/internal/accounts"
)

// maxUsernameAttempts bounds the serial-suffix probe so a pathological
// dataset cannot loop forever.
const maxUsernameAttempts = 1000

// generateUsername builds the login name for a new account as
// "first.last", lowercased. When the name is already in use in either
// account space, a numeric suffix is appended ("john.smith1",
// "john.smith2", ...) until a free one is found.
func generateUsername(ctx context.Context, store *accounts.Store, firstName, lastName string) (string, error) {
	base := strings.ToLower(strings.TrimSpace(firstName)) + "." + strings.ToLower(strings.TrimSpace(lastName))
	base = strings.ReplaceAll(base, " ", "")

	taken, err := store.UsernameTaken(ctx, base, "")
	if err != nil {
		return "", err
	}
	if !taken {
		return base, nil
	}

	for i := 1; i <= maxUsernameAttempts; i++ {
		candidate := fmt.Sprintf("%s%d", base, i)
		taken, err := store.UsernameTaken(ctx, candidate, "")
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("username: no free serial for %q", base)
}
