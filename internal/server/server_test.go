package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"mini-shop-be/internal/bootstrap"
	"mini-shop-be/internal/config"
	"mini-shop-be/internal/dto"
	"mini-shop-be/internal/entity"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestApp(t *testing.T) *fiber.App {
	t.Helper()
	tmp := t.TempDir()
	t.Setenv("DATA_FILE_PATH", filepath.Join(tmp, "payments.json"))
	t.Setenv("LOG_FILE_PATH", filepath.Join(tmp, "app.log"))
	t.Setenv("UPLOAD_DIR", filepath.Join(tmp, "uploads"))
	t.Setenv("ADMIN_USERNAME", "admin")
	t.Setenv("ADMIN_PASSWORD", "password")
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("NATS_URL", "")
	t.Setenv("REDIS_URL", "")

	cfg := config.Load()
	container := bootstrap.NewContainer(cfg)
	return New(cfg, container).GetApp()
}

func submitTopup(t *testing.T, app *fiber.App, playerId string, coin, amountLAK string) *entity.Payment {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	require.NoError(t, w.WriteField("playerId", playerId))
	require.NoError(t, w.WriteField("coin", coin))
	require.NoError(t, w.WriteField("amountLAK", amountLAK))
	require.NoError(t, w.Close())

	req := httptest.NewRequest("POST", "/api/payment/topup", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, 200, resp.StatusCode)

	var result dto.TopupResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	require.NotNil(t, result.Data)
	return result.Data
}

func adminLogin(t *testing.T, app *fiber.App) string {
	t.Helper()

	body, _ := json.Marshal(dto.AdminLoginRequest{Username: "admin", Password: "password"})
	req := httptest.NewRequest("POST", "/api/admin/login", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, 200, resp.StatusCode)

	var result dto.AdminLoginResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	require.True(t, result.Ok)
	require.NotEmpty(t, result.Token)
	return result.Token
}

func listPayments(t *testing.T, app *fiber.App) []*entity.Payment {
	t.Helper()

	resp, err := app.Test(httptest.NewRequest("GET", "/api/payment/list", nil), -1)
	require.NoError(t, err)
	require.Equal(t, 200, resp.StatusCode)

	var list []*entity.Payment
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&list))
	return list
}

func pendingCount(payments []*entity.Payment) int {
	n := 0
	for _, p := range payments {
		if p.Status == entity.PaymentStatusPending {
			n++
		}
	}
	return n
}

func TestHealthCheck(t *testing.T) {
	app := newTestApp(t)

	resp, err := app.Test(httptest.NewRequest("GET", "/", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	var health dto.HealthResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&health))
	assert.Equal(t, "ok", health.Status)
}

func TestTopupThenApproveScenario(t *testing.T) {
	app := newTestApp(t)

	p := submitTopup(t, app, "p1", "10", "50000")
	assert.Equal(t, entity.PaymentStatusPending, p.Status)
	assert.Equal(t, float64(10), p.CoinAmount)
	assert.Equal(t, float64(50000), p.AmountLAK)
	require.Len(t, p.Notifications, 1)
	assert.Equal(t, entity.NotificationTypeCreated, p.Notifications[0].Type)

	pendingBefore := pendingCount(listPayments(t, app))

	token := adminLogin(t, app)
	req := httptest.NewRequest("POST", fmt.Sprintf("/api/admin/approve/%d", p.Id), nil)
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, 200, resp.StatusCode)

	var result dto.TransitionResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	assert.Equal(t, "approved", result.Message)
	assert.False(t, result.Retransitioned)
	assert.Equal(t, entity.PaymentStatusApproved, result.Data.Status)
	require.Len(t, result.Data.Notifications, 2)
	assert.Equal(t, "Your top-up has been approved.", result.Data.Notifications[1].Message)

	assert.Equal(t, pendingBefore-1, pendingCount(listPayments(t, app)))
}

func TestTopupValidation(t *testing.T) {
	app := newTestApp(t)

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	require.NoError(t, w.WriteField("playerId", ""))
	require.NoError(t, w.WriteField("coin", "10"))
	require.NoError(t, w.WriteField("amountLAK", "50000"))
	require.NoError(t, w.Close())

	req := httptest.NewRequest("POST", "/api/payment/topup", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, 400, resp.StatusCode)
}

func TestRejectWithMessage(t *testing.T) {
	app := newTestApp(t)
	p := submitTopup(t, app, "p2", "5", "20000")

	body := strings.NewReader(`{"message":"slip unreadable"}`)
	req := httptest.NewRequest("POST", fmt.Sprintf("/api/payment/reject/%d", p.Id), body)
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, 200, resp.StatusCode)

	var result dto.TransitionResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	assert.Equal(t, entity.PaymentStatusRejected, result.Data.Status)
	last := result.Data.Notifications[len(result.Data.Notifications)-1]
	assert.Equal(t, "slip unreadable", last.Message)
}

func TestApproveUnknownIdReturns404(t *testing.T) {
	app := newTestApp(t)

	resp, err := app.Test(httptest.NewRequest("POST", "/api/payment/approve/999", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, 404, resp.StatusCode)
}

func TestPaymentNotifications(t *testing.T) {
	app := newTestApp(t)
	p := submitTopup(t, app, "p3", "1", "1000")

	resp, err := app.Test(httptest.NewRequest("GET", fmt.Sprintf("/api/payment/%d/notifications", p.Id), nil), -1)
	require.NoError(t, err)
	require.Equal(t, 200, resp.StatusCode)

	var result dto.PaymentNotificationsResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	assert.Equal(t, p.Id, result.Id)
	assert.Equal(t, "p3", result.PlayerId)
	require.Len(t, result.Notifications, 1)
	assert.Equal(t, entity.NotificationTypeCreated, result.Notifications[0].Type)
}

func TestAdminRoutesRequireAuth(t *testing.T) {
	app := newTestApp(t)

	t.Run("missing token", func(t *testing.T) {
		resp, err := app.Test(httptest.NewRequest("GET", "/api/admin/payments", nil), -1)
		require.NoError(t, err)
		assert.Equal(t, 401, resp.StatusCode)
	})

	t.Run("wrong bearer token", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/api/admin/payments", nil)
		req.Header.Set("Authorization", "Bearer wrong")
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		assert.Equal(t, 401, resp.StatusCode)
	})

	t.Run("issued token via X-Access-Token", func(t *testing.T) {
		token := adminLogin(t, app)
		req := httptest.NewRequest("GET", "/api/admin/payments", nil)
		req.Header.Set("X-Access-Token", token)
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		assert.Equal(t, 200, resp.StatusCode)
	})
}

func TestAdminLoginRejectsBadCredentials(t *testing.T) {
	app := newTestApp(t)

	body, _ := json.Marshal(dto.AdminLoginRequest{Username: "admin", Password: "nope"})
	req := httptest.NewRequest("POST", "/api/admin/login", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, 401, resp.StatusCode)
}

func TestAdminPaymentsLegacyShape(t *testing.T) {
	app := newTestApp(t)
	p := submitTopup(t, app, "p1", "10", "50000")
	token := adminLogin(t, app)

	req := httptest.NewRequest("GET", "/api/admin/payments", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, 200, resp.StatusCode)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var adapted []map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &adapted))
	require.Len(t, adapted, 1)
	assert.Equal(t, float64(p.Id), adapted[0]["id"])
	assert.Contains(t, adapted[0], "coin")
	assert.Contains(t, adapted[0], "time")
	assert.NotContains(t, adapted[0], "coinAmount")
}

func TestAdminDailySummary(t *testing.T) {
	app := newTestApp(t)
	submitTopup(t, app, "p1", "10", "50000")
	submitTopup(t, app, "p2", "5", "20000")
	token := adminLogin(t, app)

	req := httptest.NewRequest("GET", "/api/admin/daily-summary", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, 200, resp.StatusCode)

	var summary []dto.DailySummaryEntry
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&summary))
	require.Len(t, summary, 1)
	assert.Equal(t, 2, summary[0].Count)
	assert.Equal(t, float64(70000), summary[0].TotalLAK)
	assert.Equal(t, float64(15), summary[0].TotalCoin)
}

func TestAdminNotifyAppendsEntry(t *testing.T) {
	app := newTestApp(t)
	p := submitTopup(t, app, "p1", "10", "50000")
	token := adminLogin(t, app)

	body := strings.NewReader(`{"message":"please re-upload your slip"}`)
	req := httptest.NewRequest("POST", fmt.Sprintf("/api/admin/notify/%d", p.Id), body)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, 200, resp.StatusCode)

	var result dto.NotifyResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	assert.Equal(t, "notified", result.Message)

	// Status untouched, entry appended.
	nresp, err := app.Test(httptest.NewRequest("GET", fmt.Sprintf("/api/payment/%d/notifications", p.Id), nil), -1)
	require.NoError(t, err)
	var notifs dto.PaymentNotificationsResponse
	require.NoError(t, json.NewDecoder(nresp.Body).Decode(&notifs))
	require.Len(t, notifs.Notifications, 2)
	assert.Equal(t, entity.NotificationTypeNotify, notifs.Notifications[1].Type)
}
