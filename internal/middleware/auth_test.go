package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubValidator maps a single token to a user id.
type stubValidator struct {
	token  string
	userID string
}

func (s *stubValidator) ValidateToken(ctx context.Context, token string) (string, error) {
	if token != s.token {
		return "", errors.New("unknown token")
	}
	return s.userID, nil
}

func request(t *testing.T, authorization string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/messages", nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestAuth_ValidToken(t *testing.T) {
	mw := Auth(&stubValidator{token: "secret", userID: "alice"})
	c, _ := request(t, "Bearer secret")

	var seen string
	err := mw(func(c echo.Context) error {
		seen = UserID(c)
		return c.NoContent(http.StatusOK)
	})(c)

	require.NoError(t, err)
	assert.Equal(t, "alice", seen)
}

func TestAuth_MissingHeader(t *testing.T) {
	mw := Auth(&stubValidator{token: "secret", userID: "alice"})
	c, _ := request(t, "")

	err := mw(func(c echo.Context) error { return nil })(c)

	var httpErr *echo.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusUnauthorized, httpErr.Code)
}

func TestAuth_InvalidToken(t *testing.T) {
	mw := Auth(&stubValidator{token: "secret", userID: "alice"})
	c, _ := request(t, "Bearer wrong")

	err := mw(func(c echo.Context) error { return nil })(c)

	var httpErr *echo.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusUnauthorized, httpErr.Code)
}

func TestAuth_NonBearerScheme(t *testing.T) {
	mw := Auth(&stubValidator{token: "secret", userID: "alice"})
	c, _ := request(t, "Basic c2VjcmV0")

	err := mw(func(c echo.Context) error { return nil })(c)

	var httpErr *echo.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusUnauthorized, httpErr.Code)
}
