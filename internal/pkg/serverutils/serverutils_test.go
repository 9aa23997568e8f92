package serverutils

import (
	"encoding/json"
	"errors"
	"net/http/httptest"
	"testing"
	"time"

	"ai-knowledge-bot/pkg/apperror"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func signToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return token
}

func newApp() *fiber.App {
	app := fiber.New()
	app.Use(ErrorHandlerMiddleware())
	app.Get("/admin", JwtMiddleware(testSecret), func(ctx *fiber.Ctx) error {
		return ctx.JSON(SuccessResponse("ok", ctx.Locals("user_id")))
	})
	app.Get("/boom", func(ctx *fiber.Ctx) error {
		return apperror.Service("ollama.Chat", errors.New("down"))
	})
	app.Get("/panic", func(ctx *fiber.Ctx) error {
		panic("unexpected")
	})
	return app
}

func TestJwtMiddleware(t *testing.T) {
	valid := signToken(t, jwt.MapClaims{"user_id": "ops", "role": "admin", "exp": time.Now().Add(time.Hour).Unix()})
	notAdmin := signToken(t, jwt.MapClaims{"user_id": "u", "role": "user"})
	expired := signToken(t, jwt.MapClaims{"role": "admin", "exp": time.Now().Add(-time.Hour).Unix()})

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{name: "missing", header: "", want: 401},
		{name: "malformed", header: "Bearer nope", want: 401},
		{name: "expired", header: "Bearer " + expired, want: 401},
		{name: "not admin", header: "Bearer " + notAdmin, want: 403},
		{name: "admin", header: "Bearer " + valid, want: 200},
	}

	app := newApp()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/admin", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tt.want, resp.StatusCode)
		})
	}
}

func TestErrorHandlerMapsKinds(t *testing.T) {
	app := newApp()

	resp, err := app.Test(httptest.NewRequest("GET", "/boom", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusServiceUnavailable, resp.StatusCode)

	var body BaseResponse[any]
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.False(t, body.Success)
	assert.Contains(t, body.Message, "ollama.Chat")

	resp, err = app.Test(httptest.NewRequest("GET", "/panic", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, 404, StatusFor(fiber.ErrNotFound))
	assert.Equal(t, 502, StatusFor(apperror.Transport("load", errors.New("x"))))
	assert.Equal(t, 409, StatusFor(apperror.Logic("ask", errors.New("x"))))
	assert.Equal(t, 500, StatusFor(errors.New("plain")))
}
