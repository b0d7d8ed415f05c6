package server

import (
	"bytes"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"biolink/internal/config"
	"biolink/internal/testutil"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

const testPassword = "correct-horse-battery"

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		Env:                   "test",
		Port:                  "0",
		SessionSecret:         "test-session-secret-with-32-chars!!",
		DBDriver:              config.DriverSQLite,
		DBPath:                ":memory:",
		UploadDir:             t.TempDir(),
		AvatarMaxUploadSizeMB: 1,
		FeatureFlags:          "public_api=on,live_preview=on",
	}
}

// newTestApp builds a fully wired app over in-memory sqlite. Pass a miniredis
// instance to enable the cache layer.
func newTestApp(t *testing.T, cfg *config.Config, mr *miniredis.Miniredis) (*Server, *fiber.App) {
	t.Helper()

	var rdb *redis.Client
	if mr != nil {
		rdb = redis.NewClient(&redis.Options{Addr: mr.Addr()})
		t.Cleanup(func() { _ = rdb.Close() })
	}

	s, err := NewServerWithDeps(cfg, testutil.NewSQLiteDB(t), rdb)
	require.NoError(t, err)
	return s, s.NewApp()
}

func doRequest(t *testing.T, app *fiber.App, req *http.Request, cookies ...*http.Cookie) *http.Response {
	t.Helper()
	for _, c := range cookies {
		if c != nil {
			req.AddCookie(c)
		}
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func get(t *testing.T, app *fiber.App, target string, cookies ...*http.Cookie) *http.Response {
	t.Helper()
	return doRequest(t, app, httptest.NewRequest(http.MethodGet, target, nil), cookies...)
}

func postForm(t *testing.T, app *fiber.App, target string, form url.Values, cookies ...*http.Cookie) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return doRequest(t, app, req, cookies...)
}

type fileField struct {
	field    string
	filename string
	content  []byte
}

func postMultipart(t *testing.T, app *fiber.App, target string, form url.Values, file *fileField, cookies ...*http.Cookie) *http.Response {
	t.Helper()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	for key, values := range form {
		for _, v := range values {
			require.NoError(t, writer.WriteField(key, v))
		}
	}
	if file != nil {
		part, err := writer.CreateFormFile(file.field, file.filename)
		require.NoError(t, err)
		_, err = part.Write(file.content)
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, target, &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return doRequest(t, app, req, cookies...)
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(b)
}

func responseCookie(resp *http.Response, name string) *http.Cookie {
	for _, c := range resp.Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// registerAndLogin creates an account and returns the session cookie.
func registerAndLogin(t *testing.T, app *fiber.App, username string) *http.Cookie {
	t.Helper()

	resp := postForm(t, app, "/register", url.Values{
		"username": {username},
		"password": {testPassword},
		"confirm":  {testPassword},
	})
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)

	resp = postForm(t, app, "/login", url.Values{
		"username": {username},
		"password": {testPassword},
	})
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)

	session := responseCookie(resp, sessionCookieName)
	require.NotNil(t, session)
	require.NotEmpty(t, session.Value)
	return session
}
