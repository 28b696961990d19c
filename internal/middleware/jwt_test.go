package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/todo-list-api/internal/config"
	"github.com/iliyamo/todo-list-api/internal/utils"
)

func authTestConfig() config.Config {
	return config.Config{JWTSecret: "test-secret", AuthRequired: true}
}

// invoke runs the JWTAuth middleware around a probe handler and reports
// whether the probe executed plus the identity it observed.
func invoke(t *testing.T, cfg config.Config, authorization string) (*httptest.ResponseRecorder, bool, uint64, string) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/items", nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	ran := false
	var gotID uint64
	var gotName string
	h := JWTAuth(cfg)(func(c echo.Context) error {
		ran = true
		gotID, _ = UserID(c)
		gotName = Username(c)
		return c.String(http.StatusOK, "ok")
	})
	require.NoError(t, h(c))
	return rec, ran, gotID, gotName
}

func TestJWTAuth_ValidToken(t *testing.T) {
	cfg := authTestConfig()
	tok, err := utils.NewAccessToken(cfg.JWTSecret, 7, "alice", time.Hour)
	require.NoError(t, err)

	rec, ran, id, name := invoke(t, cfg, "Bearer "+tok.Token)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, ran)
	assert.Equal(t, uint64(7), id)
	assert.Equal(t, "alice", name)
}

func TestJWTAuth_RejectsBeforeHandler(t *testing.T) {
	cfg := authTestConfig()
	expired, err := utils.NewAccessToken(cfg.JWTSecret, 7, "alice", -time.Minute)
	require.NoError(t, err)
	foreign, err := utils.NewAccessToken("other-secret", 7, "alice", time.Hour)
	require.NoError(t, err)

	cases := map[string]string{
		"missing header":    "",
		"wrong scheme":      "Basic abc123",
		"no bearer prefix":  expired.Token,
		"garbage token":     "Bearer not-a-jwt",
		"expired token":     "Bearer " + expired.Token,
		"wrong signing key": "Bearer " + foreign.Token,
	}
	for name, header := range cases {
		rec, ran, _, _ := invoke(t, cfg, header)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, name)
		assert.False(t, ran, "%s: protected handler must not execute", name)
		// Every failure looks the same to the client.
		assert.Contains(t, rec.Body.String(), "invalid or expired token", name)
	}
}

func TestJWTAuth_Disabled(t *testing.T) {
	cfg := config.Config{JWTSecret: "test-secret", AuthRequired: false}

	rec, ran, id, name := invoke(t, cfg, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, ran)
	assert.Equal(t, uint64(1), id)
	assert.Equal(t, "local", name)
}

func TestUserID_NoIdentity(t *testing.T) {
	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	_, err := UserID(c)
	assert.ErrorIs(t, err, ErrNoIdentity)
	assert.Empty(t, Username(c))
}
