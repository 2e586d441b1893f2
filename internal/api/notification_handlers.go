package api

import (
	"github.com/labstack/echo/v4"

	"library-backend/internal/auth"
)

// notifications handles GET /api/notifications/ws, upgrading to a
// websocket that streams the member's lending events.
func notificationsHandler(c echo.Context) error {
	member := auth.GetMemberFromContext(c)
	return hub.ServeWS(c, member.ID)
}
