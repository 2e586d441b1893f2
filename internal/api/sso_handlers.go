package api

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"library-backend/internal/auth"
	"library-backend/internal/database"
	"library-backend/internal/models"
	"library-backend/internal/sso"
)

const ssoStateCookie = "sso_state"

// ssoLogin handles GET /api/auth/sso/login
func ssoLoginHandler(c echo.Context) error {
	state := sso.GenerateState()

	c.SetCookie(&http.Cookie{
		Name:     ssoStateCookie,
		Value:    state,
		Path:     "/",
		HttpOnly: true,
		Secure:   c.Request().TLS != nil,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   300,
	})

	return c.Redirect(http.StatusFound, ssoClient.AuthURL(state))
}

// ssoCallback handles GET /api/auth/sso/callback
func ssoCallbackHandler(c echo.Context) error {
	stateCookie, err := c.Cookie(ssoStateCookie)
	if err != nil || stateCookie.Value == "" || stateCookie.Value != c.QueryParam("state") {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "invalid state parameter",
		})
	}

	code := c.QueryParam("code")
	if code == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "missing authorization code",
		})
	}

	ctx := c.Request().Context()

	oauthToken, err := ssoClient.Exchange(ctx, code)
	if err != nil {
		c.Logger().Error("sso exchange error: ", err)
		return c.JSON(http.StatusBadGateway, map[string]string{
			"error": "failed to exchange authorization code",
		})
	}

	rawIDToken, ok := oauthToken.Extra("id_token").(string)
	if !ok || rawIDToken == "" {
		return c.JSON(http.StatusBadGateway, map[string]string{
			"error": "identity provider returned no ID token",
		})
	}

	identity, err := ssoClient.Identity(ctx, rawIDToken)
	if err != nil {
		c.Logger().Error("sso identity error: ", err)
		return c.JSON(http.StatusUnauthorized, map[string]string{
			"error": "failed to verify identity token",
		})
	}
	if identity.Email == "" {
		return c.JSON(http.StatusBadGateway, map[string]string{
			"error": "identity provider returned no email",
		})
	}

	member, err := memberForIdentity(identity)
	if err != nil {
		c.Logger().Error("sso member error: ", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "failed to provision member",
		})
	}

	sessionID, err := ensureSession(c)
	if err != nil {
		c.Logger().Error("sso session error: ", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "failed to establish session",
		})
	}

	token, err := authService.BindSession(member, sessionID, c.RealIP(), c.Request().UserAgent())
	if err != nil {
		if errors.Is(err, auth.ErrMemberDisabled) {
			return c.JSON(http.StatusForbidden, map[string]string{
				"error": "member account is disabled",
			})
		}
		c.Logger().Error("sso bind error: ", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "authentication failed",
		})
	}

	auth.SetTokenCookie(c, token)

	Audit.Log(member.ID, member.Email, models.ActionSSOLogin, identity.Subject, map[string]string{
		"subject": identity.Subject,
	}, c.RealIP())

	return c.JSON(http.StatusOK, map[string]interface{}{
		"member": member,
		"token":  token,
	})
}

// memberForIdentity finds the member matching an SSO identity by email,
// enrolling them on first login. SSO members never use the local
// password, so it is set to a random value.
func memberForIdentity(identity *sso.Identity) (*models.Member, error) {
	member, err := memberRepo.GetByEmail(identity.Email)
	if err == nil {
		return member, nil
	}
	if !errors.Is(err, database.ErrMemberNotFound) {
		return nil, err
	}

	hash, err := auth.HashPassword(randomPassword())
	if err != nil {
		return nil, err
	}

	member = &models.Member{
		Email:        identity.Email,
		PasswordHash: hash,
		Active:       true,
	}
	if err := memberRepo.Create(member); err != nil {
		return nil, err
	}
	return member, nil
}

func randomPassword() string {
	b := make([]byte, 32)
	rand.Read(b)
	return base64.URLEncoding.EncodeToString(b)
}
