package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAppErrorMessageFormatting(t *testing.T) {
	base := New("TEST_CODE", "something failed", http.StatusBadRequest)
	require.Equal(t, "something failed", base.Error())

	wrapped := base.WithInternal(errors.New("boom"))
	require.Equal(t, "something failed: boom", wrapped.Error())
	require.EqualError(t, wrapped.Unwrap(), "boom")

	// The original error must not gain the internal error.
	require.Nil(t, base.Internal)
}

func TestFromErrorRecognisesAppErrors(t *testing.T) {
	appErr := FromError(ErrUserBlocked)
	require.Same(t, ErrUserBlocked, appErr)

	chained := fmt.Errorf("handler: %w", ErrInvalidCredentials)
	require.Same(t, ErrInvalidCredentials, FromError(chained))
}

func TestFromErrorDefaultsToInternal(t *testing.T) {
	err := FromError(errors.New("database exploded"))
	require.Equal(t, ErrInternalServer.Code, err.Code)
	require.Equal(t, http.StatusInternalServerError, err.StatusCode)
	require.EqualError(t, err.Internal, "database exploded")

	require.Nil(t, FromError(nil))
}

func TestBlockedAndCredentialErrorsAreDistinguishable(t *testing.T) {
	require.Equal(t, ErrUserBlocked.StatusCode, ErrInvalidCredentials.StatusCode)
	require.NotEqual(t, ErrUserBlocked.Code, ErrInvalidCredentials.Code)
	require.NotEqual(t, ErrUserBlocked.Message, ErrInvalidCredentials.Message)
}

func TestWrapKeepsOriginal(t *testing.T) {
	cause := errors.New("dial tcp: refused")
	err := Wrap(cause, "stats service unavailable")
	require.ErrorIs(t, err, cause)
	require.Equal(t, http.StatusInternalServerError, err.StatusCode)
}
