package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"library-backend/internal/models"
)

// listAuditLogs handles GET /api/audit
func listAuditLogsHandler(c echo.Context) error {
	filter := models.AuditFilter{
		Limit:  50,
		Offset: 0,
	}

	if limit := c.QueryParam("limit"); limit != "" {
		if l, err := strconv.Atoi(limit); err == nil && l > 0 && l <= 1000 {
			filter.Limit = l
		}
	}
	if offset := c.QueryParam("offset"); offset != "" {
		if o, err := strconv.Atoi(offset); err == nil && o >= 0 {
			filter.Offset = o
		}
	}
	if memberID := c.QueryParam("member_id"); memberID != "" {
		if id, err := strconv.ParseInt(memberID, 10, 64); err == nil {
			filter.MemberID = &id
		}
	}
	if action := c.QueryParam("action"); action != "" {
		filter.Action = action
	}
	if prefix := c.QueryParam("action_prefix"); prefix != "" {
		filter.ActionPrefix = prefix
	}
	if start := c.QueryParam("start"); start != "" {
		if t, err := time.Parse(time.RFC3339, start); err == nil {
			filter.StartTime = t
		}
	}
	if end := c.QueryParam("end"); end != "" {
		if t, err := time.Parse(time.RFC3339, end); err == nil {
			filter.EndTime = t
		}
	}

	logs, total, err := Audit.repo.List(filter)
	if err != nil {
		c.Logger().Error("list audit logs error: ", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "failed to list audit logs",
		})
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"logs":   logs,
		"total":  total,
		"limit":  filter.Limit,
		"offset": filter.Offset,
	})
}
