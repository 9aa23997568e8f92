package controller

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"ai-knowledge-bot/internal/pkg/logger"
	"ai-knowledge-bot/internal/pkg/serverutils"
	"ai-knowledge-bot/pkg/rag/session"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "ops-secret"

type fakeSessions struct {
	mu       sync.Mutex
	cleared  []string
	forgot   []string
	withUser []string
}

func (f *fakeSessions) Status(_ context.Context, userID string) (*session.Status, error) {
	return &session.Status{UserID: userID, State: "AWAITING_URL", Chunks: 4, Turns: 2}, nil
}

func (f *fakeSessions) ClearState(_ context.Context, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cleared = append(f.cleared, userID)
	return nil
}

func (f *fakeSessions) Forget(_ context.Context, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.forgot = append(f.forgot, userID)
	return nil
}

func (f *fakeSessions) WithUser(ctx context.Context, userID string, fn func(ctx context.Context) error) error {
	f.mu.Lock()
	f.withUser = append(f.withUser, userID)
	f.mu.Unlock()
	return fn(ctx)
}

func adminToken(t *testing.T) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": "ops",
		"role":    "admin",
		"exp":     time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return token
}

func newTestApp(sessions SessionAdmin, log logger.ILogger) *fiber.App {
	app := fiber.New()
	app.Use(serverutils.ErrorHandlerMiddleware())
	NewHealthController(func() int { return 3 }).RegisterRoutes(app)
	api := app.Group("/api")
	auth := serverutils.JwtMiddleware(testSecret)
	NewSessionController(sessions).RegisterRoutes(api, auth)
	NewLogController(log).RegisterRoutes(api, auth)
	return app
}

func call(t *testing.T, app *fiber.App, method, path, token string) (int, map[string]interface{}) {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return resp.StatusCode, body
}

func TestHealthIsPublic(t *testing.T) {
	app := newTestApp(&fakeSessions{}, logger.NewNop())

	code, body := call(t, app, "GET", "/check/healthy", "")
	assert.Equal(t, 200, code)
	data := body["data"].(map[string]interface{})
	assert.Equal(t, "ok", data["status"])
	assert.Equal(t, float64(3), data["loaded_sessions"])
}

func TestSessionRoutes(t *testing.T) {
	sessions := &fakeSessions{}
	app := newTestApp(sessions, logger.NewNop())
	token := adminToken(t)

	code, _ := call(t, app, "GET", "/api/admin/sessions/42", "")
	assert.Equal(t, 401, code)

	code, body := call(t, app, "GET", "/api/admin/sessions/42", token)
	require.Equal(t, 200, code)
	data := body["data"].(map[string]interface{})
	assert.Equal(t, "42", data["user_id"])
	assert.Equal(t, "AWAITING_URL", data["state"])
	assert.Equal(t, float64(4), data["chunks"])

	code, _ = call(t, app, "DELETE", "/api/admin/sessions/42/state", token)
	assert.Equal(t, 200, code)
	code, _ = call(t, app, "DELETE", "/api/admin/sessions/42/memory", token)
	assert.Equal(t, 200, code)

	assert.Equal(t, []string{"42"}, sessions.cleared)
	assert.Equal(t, []string{"42"}, sessions.forgot)
	assert.Equal(t, []string{"42", "42", "42"}, sessions.withUser)
}

func TestLogRoutes(t *testing.T) {
	log := logger.New(logger.Options{FilePath: filepath.Join(t.TempDir(), "bot.log"), FileOnly: true})
	log.Info("TRAINING", "Training completed", map[string]interface{}{"user_id": "1"})
	log.Warn("TRAINING", "Training failed", map[string]interface{}{"user_id": "2"})
	log.Info("CONVERSATION", "Question answered", nil)
	_ = log.Sync()

	app := newTestApp(&fakeSessions{}, log)
	token := adminToken(t)

	tests := []struct {
		name      string
		path      string
		wantCode  int
		wantItems int
	}{
		{name: "all", path: "/api/admin/logs", wantCode: 200, wantItems: 3},
		{name: "level filter", path: "/api/admin/logs?level=warn", wantCode: 200, wantItems: 1},
		{name: "paged", path: "/api/admin/logs?limit=2&offset=2", wantCode: 200, wantItems: 1},
		{name: "bad limit", path: "/api/admin/logs?limit=abc", wantCode: 400},
		{name: "bad offset", path: "/api/admin/logs?offset=-1", wantCode: 400},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, body := call(t, app, "GET", tt.path, token)
			require.Equal(t, tt.wantCode, code)
			if tt.wantCode != 200 {
				return
			}
			items := body["data"].(map[string]interface{})["items"].([]interface{})
			assert.Len(t, items, tt.wantItems)
		})
	}

	code, body := call(t, app, "GET", "/api/admin/logs?limit=1", token)
	require.Equal(t, 200, code)
	newest := body["data"].(map[string]interface{})["items"].([]interface{})[0].(map[string]interface{})
	assert.Equal(t, "Question answered", newest["message"])

	code, _ = call(t, app, "GET", "/api/admin/logs/"+newest["id"].(string), token)
	assert.Equal(t, 200, code)
	code, _ = call(t, app, "GET", "/api/admin/logs/missing", token)
	assert.Equal(t, 404, code)
}
