package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"biolink/internal/config"
	"biolink/internal/models"
	"biolink/internal/testutil"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewServerWithDeps_RequiresDependencies(t *testing.T) {
	_, err := NewServerWithDeps(nil, testutil.NewSQLiteDB(t), nil)
	assert.Error(t, err)

	_, err = NewServerWithDeps(&config.Config{}, nil, nil)
	assert.Error(t, err)
}

func TestHealthChecks(t *testing.T) {
	t.Run("without redis", func(t *testing.T) {
		_, app := newTestApp(t, testConfig(t), nil)

		assert.Equal(t, http.StatusOK, get(t, app, "/health/live").StatusCode)

		resp := get(t, app, "/health/ready")
		require.Equal(t, http.StatusOK, resp.StatusCode)
		var body struct {
			Status string            `json:"status"`
			Checks map[string]string `json:"checks"`
		}
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.Equal(t, "healthy", body.Status)
		assert.Equal(t, "disabled", body.Checks["redis"])
	})

	t.Run("redis down", func(t *testing.T) {
		mr := miniredis.NewMiniRedis()
		require.NoError(t, mr.Start())
		_, app := newTestApp(t, testConfig(t), mr)
		mr.Close()

		resp := get(t, app, "/health/ready")
		assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	})
}

func TestMiddleware_Headers(t *testing.T) {
	_, app := newTestApp(t, testConfig(t), nil)

	resp := get(t, app, "/login")
	assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))
	assert.NotEmpty(t, resp.Header.Get("X-Trace-ID"))
	assert.Equal(t, "nosniff", resp.Header.Get("X-Content-Type-Options"))
	assert.Contains(t, resp.Header.Get("Content-Security-Policy"), "default-src 'self'")
}

func TestStaticAssets(t *testing.T) {
	_, app := newTestApp(t, testConfig(t), nil)

	for _, asset := range []string{"/static/style.css", "/static/script.js"} {
		resp := get(t, app, asset)
		assert.Equal(t, http.StatusOK, resp.StatusCode, asset)
	}

	resp := get(t, app, "/static/uploads/missing.png")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestMetricsEndpoint(t *testing.T) {
	_, app := newTestApp(t, testConfig(t), nil)
	get(t, app, "/health/live")

	resp := get(t, app, "/metrics")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, readBody(t, resp), "biolink")
}

func TestErrorHandler(t *testing.T) {
	s, _ := newTestApp(t, testConfig(t), nil)

	app := fiber.New(fiber.Config{Views: newViewEngine(), ErrorHandler: s.errorHandler})
	app.Get("/boom", func(c *fiber.Ctx) error { return fiber.NewError(fiber.StatusTeapot, "short and stout") })
	app.Get("/api/boom", func(c *fiber.Ctx) error { return assert.AnError })

	resp := get(t, app, "/boom")
	assert.Equal(t, http.StatusTeapot, resp.StatusCode)
	assert.Contains(t, readBody(t, resp), "short and stout")

	resp = get(t, app, "/api/boom")
	require.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	var errResp models.ErrorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&errResp))
	assert.Equal(t, models.CodeInternal, errResp.Code)
	assert.Empty(t, errResp.Details)
}

func TestParseLinkInputs(t *testing.T) {
	var got []models.LinkInput
	app := fiber.New()
	app.Post("/", func(c *fiber.Ctx) error {
		got = parseLinkInputs(c)
		return c.SendStatus(fiber.StatusNoContent)
	})

	form := url.Values{
		"link_label":  {"One", "Two"},
		"link_url":    {"https://one.example", "https://two.example", "https://three.example"},
		"customLabel": {"Legacy"},
		"customUrl":   {"https://legacy.example"},
	}
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	assert.Equal(t, []models.LinkInput{
		{Label: "One", URL: "https://one.example"},
		{Label: "Two", URL: "https://two.example"},
		{Label: "", URL: "https://three.example"},
		{Label: "Legacy", URL: "https://legacy.example"},
	}, got)
}

func TestViewHelpers(t *testing.T) {
	assert.Equal(t, "", avatarURL(""))
	assert.Equal(t, "/static/uploads/user1_abc.png", avatarURL("uploads/user1_abc.png"))
	assert.Equal(t, "A", initial("ada"))
	assert.Equal(t, "É", initial(" émile"))
	assert.Equal(t, "?", initial("  "))
	assert.Equal(t, "/u/ada", publicPath("ada"))
	assert.Equal(t, "/u/ada%20lovelace", publicPath("ada lovelace"))
	assert.Equal(t, "/u/a%2Fb", publicPath("a/b"))
}

func TestConsumeFlash(t *testing.T) {
	app := fiber.New()
	var got *Flash
	app.Get("/", func(c *fiber.Ctx) error {
		got = consumeFlash(c)
		return c.SendStatus(fiber.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: flashCookieName, Value: url.QueryEscape("success|Profile saved")})
	resp, err := app.Test(req)
	require.NoError(t, err)

	require.NotNil(t, got)
	assert.Equal(t, Flash{Kind: flashSuccess, Message: "Profile saved"}, *got)
	cleared := responseCookie(resp, flashCookieName)
	require.NotNil(t, cleared)
	assert.Empty(t, cleared.Value)

	got = nil
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: flashCookieName, Value: url.QueryEscape("weird|Oops")})
	_, err = app.Test(req)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, flashError, got.Kind)
}
