package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"library-backend/internal/auth"
	"library-backend/internal/database"
	"library-backend/internal/models"
)

// ensureSession returns the caller's session id, creating a fresh
// session and setting its cookie when the request carries none.
func ensureSession(c echo.Context) (string, error) {
	sessionID, _ := auth.CredentialsFromRequest(c)
	if sessionID != "" {
		if _, err := authService.SessionExists(sessionID); err == nil {
			return sessionID, nil
		}
	}
	sessionID, err := authService.CreateSession()
	if err != nil {
		return "", err
	}
	auth.SetSessionCookie(c, sessionID)
	return sessionID, nil
}

// join handles POST /api/auth/join
func joinHandler(c echo.Context) error {
	var req models.JoinRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "invalid request body",
		})
	}

	req.Email = strings.TrimSpace(req.Email)
	if req.Email == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "email and password are required",
		})
	}
	if req.ConfirmPassword != "" && req.ConfirmPassword != req.Password {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "passwords do not match",
		})
	}

	sessionID, err := ensureSession(c)
	if err != nil {
		c.Logger().Error("join session error: ", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "failed to establish session",
		})
	}

	member, token, err := authService.Join(req.Email, req.Password, sessionID, c.RealIP(), c.Request().UserAgent())
	if err != nil {
		if errors.Is(err, database.ErrDuplicateEmail) {
			return c.JSON(http.StatusConflict, map[string]string{
				"error": "email is already registered",
			})
		}
		c.Logger().Error("join error: ", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "failed to create member",
		})
	}

	auth.SetTokenCookie(c, token)

	Audit.Log(member.ID, member.Email, models.ActionMemberJoin, member.Email, nil, c.RealIP())

	return c.JSON(http.StatusCreated, map[string]interface{}{
		"member": member,
		"token":  token,
	})
}

// login handles POST /api/auth/login
func loginHandler(c echo.Context) error {
	var req models.LoginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "invalid request body",
		})
	}

	if req.Email == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "email and password are required",
		})
	}

	sessionID, err := ensureSession(c)
	if err != nil {
		c.Logger().Error("login session error: ", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "failed to establish session",
		})
	}

	member, token, err := authService.Login(req.Email, req.Password, sessionID, c.RealIP(), c.Request().UserAgent())
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrInvalidCredentials):
			return c.JSON(http.StatusUnauthorized, map[string]string{
				"error": "invalid email or password",
			})
		case errors.Is(err, auth.ErrMemberDisabled):
			return c.JSON(http.StatusForbidden, map[string]string{
				"error": "member account is disabled",
			})
		default:
			c.Logger().Error("login error: ", err)
			return c.JSON(http.StatusInternalServerError, map[string]string{
				"error": "authentication failed",
			})
		}
	}

	auth.SetTokenCookie(c, token)
	loginLimiter.RecordSuccess(c.RealIP())

	Audit.Log(member.ID, member.Email, models.ActionMemberLogin, member.Email, nil, c.RealIP())

	return c.JSON(http.StatusOK, map[string]interface{}{
		"member": member,
		"token":  token,
	})
}

// logout handles POST /api/auth/logout
func logoutHandler(c echo.Context) error {
	sessionID, _ := auth.CredentialsFromRequest(c)
	if sessionID == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "no session",
		})
	}

	member, err := authService.MemberForSession(sessionID)
	if err == nil {
		Audit.Log(member.ID, member.Email, models.ActionMemberLogout, member.Email, nil, c.RealIP())
	}

	if err := authService.Logout(sessionID); err != nil {
		c.Logger().Error("logout error: ", err)
	}

	auth.ClearTokenCookie(c)

	return c.JSON(http.StatusOK, map[string]string{
		"message": "logged out successfully",
	})
}

// getCurrentMember handles GET /api/auth/me
func getCurrentMember(c echo.Context) error {
	member := auth.GetMemberFromContext(c)
	if member == nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{
			"error": "not authenticated",
		})
	}
	return c.JSON(http.StatusOK, member)
}
