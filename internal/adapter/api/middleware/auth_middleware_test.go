package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"campuschat/internal/domain/entity"
	"campuschat/internal/infrastructure/ratelimit"
	"campuschat/pkg/utils"
)

const testSecret = "middleware-secret"

func runAuth(t *testing.T, header string) (*httptest.ResponseRecorder, entity.Identity, error) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/v1/rooms", nil)
	if header != "" {
		req.Header.Set(echo.HeaderAuthorization, header)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	var seen entity.Identity
	err := NewAuthMiddleware(testSecret).Authenticate(func(c echo.Context) error {
		seen, _ = IdentityFrom(c)
		return c.NoContent(http.StatusOK)
	})(c)
	return rec, seen, err
}

func TestAuthenticateSetsIdentity(t *testing.T) {
	token, err := utils.SignToken(testSecret, "u1", "a@b.com", "Ann", time.Hour)
	require.NoError(t, err)

	rec, identity, err := runAuth(t, "Bearer "+token)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, entity.Identity{UserID: "u1", Email: "a@b.com", Name: "Ann", Token: token}, identity)
}

func TestAuthenticateRejects(t *testing.T) {
	other, err := utils.SignToken("someone-else", "u1", "a@b.com", "", time.Hour)
	require.NoError(t, err)

	for _, header := range []string{"", "Token abc", "Bearer", "Bearer " + other} {
		_, _, err := runAuth(t, header)
		var httpErr *echo.HTTPError
		require.ErrorAs(t, err, &httpErr, "header %q", header)
		assert.Equal(t, http.StatusUnauthorized, httpErr.Code)
	}
}

func TestRateLimitMiddleware(t *testing.T) {
	e := echo.New()
	limited := RateLimit(ratelimit.NewRateLimiter(1, 1))(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})

	codes := make([]int, 0, 2)
	var last *httptest.ResponseRecorder
	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		last = httptest.NewRecorder()
		require.NoError(t, limited(e.NewContext(req, last)))
		codes = append(codes, last.Code)
	}

	assert.Equal(t, []int{http.StatusOK, http.StatusTooManyRequests}, codes)
	assert.NotEmpty(t, last.Header().Get("Retry-After"))

	var body struct {
		Success bool `json:"success"`
		Error   struct {
			Code string `json:"code"`
		} `json:"error"`
		Timestamp string `json:"timestamp"`
	}
	require.NoError(t, json.Unmarshal(last.Body.Bytes(), &body))
	assert.False(t, body.Success)
	assert.Equal(t, "TOO_MANY_REQUESTS", body.Error.Code)
	assert.NotEmpty(t, body.Timestamp)
}
