package auth

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"library-backend/internal/models"
)

// Cookie names for the credential pair
const (
	SessionCookie = "lsession"
	TokenCookie   = "ltoken"
)

// Context keys for storing member data
const (
	ContextKeyMember    = "member"
	ContextKeySessionID = "session_id"
)

// RequireAuth gates protected routes on the session+token pair. A token
// alone is not accepted: token values are only unique within a session's
// history. The gate resolves every request to one of three outcomes:
// no session at all (a fresh one is handed out, caller must log in),
// invalid or expired pair (a replacement session is handed out, caller
// must log in again), or authenticated (member loaded into context).
func RequireAuth(authSvc *Service) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			sessionID, token := CredentialsFromRequest(c)

			if sessionID == "" {
				if err := issueFreshSession(c, authSvc); err != nil {
					return serverError(c, err)
				}
				return c.JSON(http.StatusUnauthorized, map[string]string{
					"error": "authentication required",
				})
			}

			valid, err := authSvc.Validate(sessionID, token)
			if err != nil {
				return serverError(c, err)
			}
			if !valid {
				// Invalid or expired pair: supersede the session so the
				// client starts the login flow from a clean slate.
				if err := issueFreshSession(c, authSvc); err != nil {
					return serverError(c, err)
				}
				return c.JSON(http.StatusUnauthorized, map[string]string{
					"error": "session expired, please log in again",
				})
			}

			member, err := authSvc.MemberForSession(sessionID)
			if err != nil {
				return serverError(c, err)
			}

			c.Set(ContextKeyMember, member)
			c.Set(ContextKeySessionID, sessionID)

			return next(c)
		}
	}
}

func issueFreshSession(c echo.Context, authSvc *Service) error {
	id, err := authSvc.CreateSession()
	if err != nil {
		return err
	}
	SetSessionCookie(c, id)
	return nil
}

func serverError(c echo.Context, err error) error {
	c.Logger().Error("auth gate error: ", err)
	return c.JSON(http.StatusInternalServerError, map[string]string{
		"error": "internal server error",
	})
}

// CredentialsFromRequest extracts the session id and token from the
// request, preferring headers over cookies.
func CredentialsFromRequest(c echo.Context) (sessionID, token string) {
	sessionID = c.Request().Header.Get("X-Session-ID")
	if sessionID == "" {
		if cookie, err := c.Cookie(SessionCookie); err == nil {
			sessionID = cookie.Value
		}
	}

	authHeader := c.Request().Header.Get("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		token = strings.TrimPrefix(authHeader, "Bearer ")
	}
	if token == "" {
		if cookie, err := c.Cookie(TokenCookie); err == nil {
			token = cookie.Value
		}
	}

	return sessionID, token
}

// SetSessionCookie stores the session id on the client
func SetSessionCookie(c echo.Context, sessionID string) {
	c.SetCookie(&http.Cookie{
		Name:     SessionCookie,
		Value:    sessionID,
		Path:     "/",
		HttpOnly: true,
		Secure:   c.Request().TLS != nil,
		SameSite: http.SameSiteStrictMode,
	})
}

// SetTokenCookie stores the token on the client
func SetTokenCookie(c echo.Context, token string) {
	c.SetCookie(&http.Cookie{
		Name:     TokenCookie,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   c.Request().TLS != nil,
		SameSite: http.SameSiteStrictMode,
	})
}

// ClearTokenCookie removes the token from the client
func ClearTokenCookie(c echo.Context) {
	c.SetCookie(&http.Cookie{
		Name:     TokenCookie,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		MaxAge:   -1,
	})
}

// GetMemberFromContext retrieves the authenticated member from the context
func GetMemberFromContext(c echo.Context) *models.Member {
	member, ok := c.Get(ContextKeyMember).(*models.Member)
	if !ok {
		return nil
	}
	return member
}

// GetSessionIDFromContext retrieves the current session id from the context
func GetSessionIDFromContext(c echo.Context) string {
	sessionID, ok := c.Get(ContextKeySessionID).(string)
	if !ok {
		return ""
	}
	return sessionID
}
