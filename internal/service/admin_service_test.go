package service

import (
	"context"
	"testing"
	"time"

	"mini-shop-be/internal/config"
	"mini-shop-be/internal/dto"
	"mini-shop-be/internal/repository/memory"
	"mini-shop-be/pkg/admin/dashboard"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nopLogger struct{}

func (nopLogger) Debug(string, string, map[string]interface{}) {}
func (nopLogger) Info(string, string, map[string]interface{})  {}
func (nopLogger) Warn(string, string, map[string]interface{})  {}
func (nopLogger) Error(string, string, map[string]interface{}) {}
func (nopLogger) Sync() error                                  { return nil }

func newTestAdminService() IAdminService {
	cfg := config.AdminConfig{
		Username:        "admin",
		Password:        "password",
		JWTSecret:       "test-secret",
		SessionTTLHours: 1,
	}
	sessions := memory.NewSessionRepository(time.Hour)
	return NewAdminService(cfg, sessions, dashboard.NewAggregator(nopLogger{}), nopLogger{})
}

func TestAdminLoginSuccess(t *testing.T) {
	svc := newTestAdminService()

	res, err := svc.Login(context.Background(), &dto.AdminLoginRequest{Username: "admin", Password: "password"})
	require.NoError(t, err)

	assert.True(t, res.Ok)
	assert.Equal(t, "admin", res.Username)
	assert.NotEmpty(t, res.Token)
}

func TestAdminLoginInvalidCredentials(t *testing.T) {
	svc := newTestAdminService()

	_, err := svc.Login(context.Background(), &dto.AdminLoginRequest{Username: "admin", Password: "wrong"})
	assert.ErrorIs(t, err, ErrUnauthorized)

	_, err = svc.Login(context.Background(), &dto.AdminLoginRequest{Username: "root", Password: "password"})
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestAuthorizeIssuedToken(t *testing.T) {
	svc := newTestAdminService()

	res, err := svc.Login(context.Background(), &dto.AdminLoginRequest{Username: "admin", Password: "password"})
	require.NoError(t, err)

	assert.NoError(t, svc.Authorize(res.Token))
}

func TestAuthorizeRejectsGarbageToken(t *testing.T) {
	svc := newTestAdminService()

	assert.ErrorIs(t, svc.Authorize("wrong"), ErrUnauthorized)
	assert.ErrorIs(t, svc.Authorize(""), ErrUnauthorized)
}

func TestAuthorizeRejectsForeignSignature(t *testing.T) {
	other := NewAdminService(config.AdminConfig{
		Username:        "admin",
		Password:        "password",
		JWTSecret:       "other-secret",
		SessionTTLHours: 1,
	}, memory.NewSessionRepository(time.Hour), dashboard.NewAggregator(nopLogger{}), nopLogger{})

	foreign, err := other.Login(context.Background(), &dto.AdminLoginRequest{Username: "admin", Password: "password"})
	require.NoError(t, err)

	svc := newTestAdminService()
	assert.ErrorIs(t, svc.Authorize(foreign.Token), ErrUnauthorized)
}

func TestLogoutRevokesSession(t *testing.T) {
	svc := newTestAdminService()

	res, err := svc.Login(context.Background(), &dto.AdminLoginRequest{Username: "admin", Password: "password"})
	require.NoError(t, err)
	require.NoError(t, svc.Authorize(res.Token))

	require.NoError(t, svc.Logout(res.Token))

	// Token still carries a valid signature but the session is gone.
	assert.ErrorIs(t, svc.Authorize(res.Token), ErrUnauthorized)
}
