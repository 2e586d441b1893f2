package api

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"library-backend/internal/auth"
	"library-backend/internal/database"
	"library-backend/internal/models"
)

// deactivateMember handles DELETE /api/members/:id. Members may only
// deactivate their own account.
func deactivateMemberHandler(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	member := auth.GetMemberFromContext(c)
	if member.ID != id {
		return c.JSON(http.StatusForbidden, map[string]string{
			"error": "cannot deactivate another member",
		})
	}

	if err := authService.DeactivateMember(id); err != nil {
		if errors.Is(err, database.ErrMemberNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{
				"error": "member not found",
			})
		}
		c.Logger().Error("deactivate member error: ", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "failed to deactivate member",
		})
	}

	Audit.Log(member.ID, member.Email, models.ActionMemberDeactivate, member.Email, nil, c.RealIP())
	auth.ClearTokenCookie(c)

	return c.JSON(http.StatusOK, map[string]string{
		"message": "member deactivated",
	})
}
