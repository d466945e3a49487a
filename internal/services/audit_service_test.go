package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestAuditLogAndList(t *testing.T) {
	db, _ := newServiceDB(t)
	svc, err := NewAuditService(db)
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, svc.Log(ctx, AuditEntry{
		Username:  "john.smith",
		Action:    AuditActionLogin,
		Result:    AuditResultFailure,
		IPAddress: "10.0.0.1",
		Metadata:  map[string]any{"attempts": 1},
	}))
	require.NoError(t, svc.Log(ctx, AuditEntry{
		Username: "john.smith",
		Action:   AuditActionLogin,
		Result:   AuditResultSuccess,
	}))
	require.NoError(t, svc.Log(ctx, AuditEntry{
		Username: "anna.jones",
		Action:   AuditActionLogout,
		Result:   AuditResultSuccess,
	}))

	entries, total, err := svc.List(ctx, AuditListOptions{})
	require.NoError(t, err)
	require.EqualValues(t, 3, total)
	require.Len(t, entries, 3)

	entries, total, err = svc.List(ctx, AuditListOptions{
		Filters: AuditFilters{Username: "john.smith", Result: AuditResultFailure},
	})
	require.NoError(t, err)
	require.EqualValues(t, 1, total)
	require.Contains(t, string(entries[0].Metadata), "attempts")
}

func TestAuditLogRequiresActionAndResult(t *testing.T) {
	db, _ := newServiceDB(t)
	svc, err := NewAuditService(db)
	require.NoError(t, err)

	require.Error(t, svc.Log(context.Background(), AuditEntry{Result: AuditResultSuccess}))
	require.Error(t, svc.Log(context.Background(), AuditEntry{Action: AuditActionLogin}))
}

func TestAuditPrune(t *testing.T) {
	db, _ := newServiceDB(t)
	svc, err := NewAuditService(db)
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, svc.Log(ctx, AuditEntry{
		Username: "john.smith",
		Action:   AuditActionLogin,
		Result:   AuditResultSuccess,
	}))

	// Nothing old enough yet.
	removed, err := svc.Prune(ctx, 24*time.Hour)
	require.NoError(t, err)
	require.EqualValues(t, 0, removed)

	require.NoError(t, db.Exec(
		"UPDATE audit_logs SET created_at = ?",
		time.Now().Add(-48*time.Hour),
	).Error)

	removed, err = svc.Prune(ctx, 24*time.Hour)
	require.NoError(t, err)
	require.EqualValues(t, 1, removed)
}
