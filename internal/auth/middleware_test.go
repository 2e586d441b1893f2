package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func protectedServer(t *testing.T) (*echo.Echo, *Service) {
	t.Helper()
	svc, _ := tempService(t)

	e := echo.New()
	e.GET("/protected", func(c echo.Context) error {
		member := GetMemberFromContext(c)
		return c.JSON(http.StatusOK, map[string]string{"email": member.Email})
	}, RequireAuth(svc))

	return e, svc
}

func cookieValue(rec *httptest.ResponseRecorder, name string) string {
	for _, cookie := range rec.Result().Cookies() {
		if cookie.Name == name {
			return cookie.Value
		}
	}
	return ""
}

func TestRequireAuthWithoutSession(t *testing.T) {
	e, _ := protectedServer(t)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.NotEmpty(t, cookieValue(rec, SessionCookie), "a fresh session cookie must be handed out")
}

func TestRequireAuthWithBadToken(t *testing.T) {
	e, svc := protectedServer(t)

	sessionID, err := svc.CreateSession()
	require.NoError(t, err)
	_, _, err = svc.Join("alice@example.com", "secret", sessionID, "127.0.0.1", "test")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("X-Session-ID", sessionID)
	req.Header.Set("Authorization", "Bearer not-the-token")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// The replacement session differs from the one presented
	fresh := cookieValue(rec, SessionCookie)
	assert.NotEmpty(t, fresh)
	assert.NotEqual(t, sessionID, fresh)
}

func TestRequireAuthWithValidPair(t *testing.T) {
	e, svc := protectedServer(t)

	sessionID, err := svc.CreateSession()
	require.NoError(t, err)
	_, token, err := svc.Join("bob@example.com", "secret", sessionID, "127.0.0.1", "test")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookie, Value: sessionID})
	req.AddCookie(&http.Cookie{Name: TokenCookie, Value: token})
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "bob@example.com")
}
