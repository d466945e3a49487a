package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/nursultanq/gymapp/internal/accounts"
	iauth "github.com/nursultanq/gymapp/internal/auth"
	"github.com/nursultanq/gymapp/internal/database"
)

type testEnv struct {
	router *gin.Engine
	clock  *testClock
}

type testClock struct {
	current time.Time
}

func (c *testClock) Now() time.Time { return c.current }

func newTestEnv(t *testing.T) *testEnv {
	return newTestEnvWithOptions(t, Options{MetricsEnabled: true})
}

func newTestEnvWithOptions(t *testing.T, opts Options) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := database.Open(database.Config{Driver: "sqlite", Path: ":memory:"})
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrateAndSeed(db))

	store, err := accounts.NewStore(db)
	require.NoError(t, err)

	clock := &testClock{current: time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)}
	guard, err := iauth.NewGuard(store, iauth.GuardConfig{Clock: clock.Now})
	require.NoError(t, err)

	jwtService, err := iauth.NewJWTService(iauth.JWTConfig{Secret: "test-secret", Clock: clock.Now})
	require.NoError(t, err)
	tokens, err := iauth.NewTokenService(db, jwtService, clock.Now)
	require.NoError(t, err)

	router, err := NewRouter(db, guard, tokens, nil, opts)
	require.NoError(t, err)
	return &testEnv{router: router, clock: clock}
}

func (e *testEnv) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(encoded)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func decodeData(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var envelope struct {
		Success bool           `json:"success"`
		Data    map[string]any `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	return envelope.Data
}

func register(t *testing.T, env *testEnv, path string, body any) (string, string) {
	t.Helper()
	rec := env.do(t, http.MethodPost, path, "", body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	data := decodeData(t, rec)
	return data["username"].(string), data["password"].(string)
}

func login(t *testing.T, env *testEnv, username, password string) string {
	t.Helper()
	rec := env.do(t, http.MethodPost, "/api/public/login", "", gin.H{
		"username": username,
		"password": password,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	return decodeData(t, rec)["token"].(string)
}

func TestRegistrationReturnsCredentialsOnce(t *testing.T) {
	env := newTestEnv(t)

	username, password := register(t, env, "/api/public/trainees", gin.H{
		"first_name": "Maria",
		"last_name":  "Petrova",
		"address":    "1 Gym Street",
	})
	require.Equal(t, "maria.petrova", username)
	require.Len(t, password, 10)

	// The generated credentials work immediately.
	token := login(t, env, username, password)
	require.NotEmpty(t, token)
}

func TestLoginLockoutOverHTTP(t *testing.T) {
	env := newTestEnv(t)

	username, password := register(t, env, "/api/public/trainers", gin.H{
		"first_name":     "Sam",
		"last_name":      "Trainer",
		"specialization": "FITNESS",
	})

	// Two consecutive wrong passwords: 401 then blocked.
	rec := env.do(t, http.MethodPost, "/api/public/login", "", gin.H{
		"username": username, "password": "wrong-1",
	})
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Contains(t, rec.Body.String(), "INVALID_CREDENTIALS")

	rec = env.do(t, http.MethodPost, "/api/public/login", "", gin.H{
		"username": username, "password": "wrong-2",
	})
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Contains(t, rec.Body.String(), "USER_BLOCKED")

	// The correct password is rejected during the block window.
	rec = env.do(t, http.MethodPost, "/api/public/login", "", gin.H{
		"username": username, "password": password,
	})
	require.Contains(t, rec.Body.String(), "USER_BLOCKED")

	// After the window the account recovers.
	env.clock.current = env.clock.current.Add(61 * time.Second)
	token := login(t, env, username, password)
	require.NotEmpty(t, token)
}

func TestLogoutRevokesTokenPermanently(t *testing.T) {
	env := newTestEnv(t)

	username, password := register(t, env, "/api/public/trainees", gin.H{
		"first_name": "Maria",
		"last_name":  "Petrova",
	})
	token := login(t, env, username, password)

	rec := env.do(t, http.MethodGet, "/api/trainees/"+username, token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, http.MethodPost, "/api/user/logout", token, nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	// Replaying the revoked token on a protected endpoint is a 401.
	rec = env.do(t, http.MethodGet, "/api/trainees/"+username, token, nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = env.do(t, http.MethodPost, "/api/user/logout", token, nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestOwnershipEnforced(t *testing.T) {
	env := newTestEnv(t)

	username, password := register(t, env, "/api/public/trainees", gin.H{
		"first_name": "Maria",
		"last_name":  "Petrova",
	})
	other, _ := register(t, env, "/api/public/trainees", gin.H{
		"first_name": "Olga",
		"last_name":  "Ivanova",
	})
	token := login(t, env, username, password)

	rec := env.do(t, http.MethodGet, "/api/trainees/"+other, token, nil)
	require.Equal(t, http.StatusForbidden, rec.Code)

	// Password change for someone else is rejected too.
	rec = env.do(t, http.MethodPut, "/api/user/password", token, gin.H{
		"username":     other,
		"old_password": "whatever-pass",
		"new_password": "brand-new-pass",
	})
	require.Equal(t, http.StatusForbidden, rec.Code)
}

func TestChangePasswordFlow(t *testing.T) {
	env := newTestEnv(t)

	username, password := register(t, env, "/api/public/trainees", gin.H{
		"first_name": "Maria",
		"last_name":  "Petrova",
	})
	token := login(t, env, username, password)

	rec := env.do(t, http.MethodPut, "/api/user/password", token, gin.H{
		"username":     username,
		"old_password": password,
		"new_password": "brand-new-pass",
	})
	require.Equal(t, http.StatusNoContent, rec.Code, rec.Body.String())

	rec = env.do(t, http.MethodPost, "/api/public/login", "", gin.H{
		"username": username, "password": password,
	})
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	login(t, env, username, "brand-new-pass")
}

func TestTokenValidateEndpoint(t *testing.T) {
	env := newTestEnv(t)

	username, password := register(t, env, "/api/public/trainees", gin.H{
		"first_name": "Maria",
		"last_name":  "Petrova",
	})
	token := login(t, env, username, password)

	rec := env.do(t, http.MethodPost, "/api/public/token/validate", "", gin.H{"token": token})
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, true, decodeData(t, rec)["valid"])

	// Unknown tokens report invalid rather than erroring.
	rec = env.do(t, http.MethodPost, "/api/public/token/validate", "", gin.H{"token": "unknown"})
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, false, decodeData(t, rec)["valid"])

	// Revocation propagates to cross-service validation.
	env.do(t, http.MethodPost, "/api/user/logout", token, nil)
	rec = env.do(t, http.MethodPost, "/api/public/token/validate", "", gin.H{"token": token})
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, false, decodeData(t, rec)["valid"])
}

func TestTrainingLifecycleOverHTTP(t *testing.T) {
	env := newTestEnv(t)

	traineeUsername, traineePassword := register(t, env, "/api/public/trainees", gin.H{
		"first_name": "Maria",
		"last_name":  "Petrova",
	})
	trainerUsername, _ := register(t, env, "/api/public/trainers", gin.H{
		"first_name":     "Sam",
		"last_name":      "Trainer",
		"specialization": "YOGA",
	})
	token := login(t, env, traineeUsername, traineePassword)

	// A blank date must be a 400, not a panic turned 500.
	rec := env.do(t, http.MethodPost, "/api/trainings", token, gin.H{
		"trainee_username": traineeUsername,
		"trainer_username": trainerUsername,
		"name":             "Morning yoga",
		"date":             " ",
		"duration_minutes": 45,
	})
	require.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())

	rec = env.do(t, http.MethodPost, "/api/trainings", token, gin.H{
		"trainee_username": traineeUsername,
		"trainer_username": trainerUsername,
		"name":             "Morning yoga",
		"date":             "2026-04-01",
		"duration_minutes": 45,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	trainingID := decodeData(t, rec)["id"].(string)

	rec = env.do(t, http.MethodGet, "/api/trainees/"+traineeUsername+"/trainings", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "Morning yoga")

	// Filtering by type.
	rec = env.do(t, http.MethodGet,
		"/api/trainees/"+traineeUsername+"/trainings?training_type=ZUMBA", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotContains(t, rec.Body.String(), "Morning yoga")

	// Only a party to the session can remove it.
	strangerUsername, strangerPassword := register(t, env, "/api/public/trainees", gin.H{
		"first_name": "Ivan",
		"last_name":  "Orlov",
	})
	strangerToken := login(t, env, strangerUsername, strangerPassword)
	rec = env.do(t, http.MethodDelete, "/api/trainings/"+trainingID, strangerToken, nil)
	require.Equal(t, http.StatusForbidden, rec.Code)

	rec = env.do(t, http.MethodDelete, "/api/trainings/"+trainingID, token, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = env.do(t, http.MethodGet, "/api/trainees/"+traineeUsername+"/trainings", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotContains(t, rec.Body.String(), "Morning yoga")

	rec = env.do(t, http.MethodDelete, "/api/trainings/"+trainingID, token, nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestTrainingTypesAndHealth(t *testing.T) {
	env := newTestEnv(t)

	username, password := register(t, env, "/api/public/trainees", gin.H{
		"first_name": "Maria",
		"last_name":  "Petrova",
	})
	token := login(t, env, username, password)

	rec := env.do(t, http.MethodGet, "/api/training-types", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "YOGA")

	rec = env.do(t, http.MethodGet, "/health", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	// Protected routes reject anonymous access.
	rec = env.do(t, http.MethodGet, "/api/training-types", "", nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuditTrailScopedToPrincipal(t *testing.T) {
	env := newTestEnv(t)

	username, password := register(t, env, "/api/public/trainees", gin.H{
		"first_name": "Maria",
		"last_name":  "Petrova",
	})
	otherUsername, otherPassword := register(t, env, "/api/public/trainees", gin.H{
		"first_name": "Ivan",
		"last_name":  "Orlov",
	})
	token := login(t, env, username, password)
	_ = login(t, env, otherUsername, otherPassword)

	rec := env.do(t, http.MethodGet, "/api/user/audit", token, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.Contains(t, rec.Body.String(), "auth.login")
	require.Contains(t, rec.Body.String(), username)
	require.NotContains(t, rec.Body.String(), otherUsername)

	// Result filter narrows to failed attempts only.
	rec = env.do(t, http.MethodGet, "/api/user/audit?result=failure", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotContains(t, rec.Body.String(), "auth.login")

	rec = env.do(t, http.MethodGet, "/api/user/audit?page=0", token, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/user/audit", "", nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestMetricsEndpointConfigGated(t *testing.T) {
	env := newTestEnvWithOptions(t, Options{})
	rec := env.do(t, http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)

	env = newTestEnvWithOptions(t, Options{MetricsEnabled: true, MetricsEndpoint: "/internal/metrics"})
	rec = env.do(t, http.MethodGet, "/internal/metrics", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = env.do(t, http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUnassignedTrainersOverHTTP(t *testing.T) {
	env := newTestEnv(t)

	traineeUsername, traineePassword := register(t, env, "/api/public/trainees", gin.H{
		"first_name": "Maria",
		"last_name":  "Petrova",
	})
	register(t, env, "/api/public/trainers", gin.H{
		"first_name":     "Sam",
		"last_name":      "Trainer",
		"specialization": "FITNESS",
	})
	token := login(t, env, traineeUsername, traineePassword)

	rec := env.do(t, http.MethodPut, "/api/trainees/"+traineeUsername+"/trainers", token, gin.H{
		"trainers": []string{"sam.trainer"},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = env.do(t, http.MethodGet, "/api/trainees/"+traineeUsername+"/unassigned-trainers", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotContains(t, rec.Body.String(), "sam.trainer")
}
