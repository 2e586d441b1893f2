package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"library-backend/internal/auth"
	"library-backend/internal/database"
	"library-backend/internal/models"
	"library-backend/internal/notify"
)

type borrowRequest struct {
	StockID int64 `json:"stock_id" form:"stock_id"`
}

// checkout handles POST /api/borrows/checkout
func checkoutHandler(c echo.Context) error {
	member := auth.GetMemberFromContext(c)

	var req borrowRequest
	if err := c.Bind(&req); err != nil || req.StockID <= 0 {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "stock_id is required",
		})
	}

	borrowID, err := catalogService.Checkout(member.ID, req.StockID)
	if err != nil {
		switch {
		case errors.Is(err, database.ErrCheckoutLimit):
			return c.JSON(http.StatusConflict, map[string]string{
				"error": "checkout limit reached",
			})
		case errors.Is(err, database.ErrMemberInactive):
			return c.JSON(http.StatusForbidden, map[string]string{
				"error": "member account is disabled",
			})
		case errors.Is(err, database.ErrStockInactive):
			return c.JSON(http.StatusConflict, map[string]string{
				"error": "stock unit is not available",
			})
		case errors.Is(err, database.ErrStockNotFound):
			return c.JSON(http.StatusNotFound, map[string]string{
				"error": "stock unit not found",
			})
		default:
			c.Logger().Error("checkout error: ", err)
			return c.JSON(http.StatusInternalServerError, map[string]string{
				"error": "checkout failed",
			})
		}
	}

	Audit.LogFromContext(c, models.ActionBorrowCheckout, "", map[string]int64{
		"borrow_id": borrowID,
		"stock_id":  req.StockID,
	})
	hub.Broadcast(notify.Event{
		MemberID: member.ID,
		Action:   models.ActionBorrowCheckout,
		Message:  fmt.Sprintf("checked out stock unit %d", req.StockID),
	})

	return c.JSON(http.StatusCreated, map[string]interface{}{
		"borrow_id": borrowID,
		"stock_id":  req.StockID,
	})
}

// checkin handles POST /api/borrows/checkin
func checkinHandler(c echo.Context) error {
	member := auth.GetMemberFromContext(c)

	var req borrowRequest
	if err := c.Bind(&req); err != nil || req.StockID <= 0 {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "stock_id is required",
		})
	}

	if err := catalogService.Checkin(member.ID, req.StockID); err != nil {
		switch {
		case errors.Is(err, database.ErrBorrowNotFound):
			return c.JSON(http.StatusNotFound, map[string]string{
				"error": "no open borrow for this stock unit",
			})
		case errors.Is(err, database.ErrStockNotFound), errors.Is(err, database.ErrResourceNotFound):
			return c.JSON(http.StatusNotFound, map[string]string{
				"error": "stock unit not found",
			})
		default:
			c.Logger().Error("checkin error: ", err)
			return c.JSON(http.StatusInternalServerError, map[string]string{
				"error": "checkin failed",
			})
		}
	}

	Audit.LogFromContext(c, models.ActionBorrowCheckin, "", map[string]int64{
		"stock_id": req.StockID,
	})
	hub.Broadcast(notify.Event{
		MemberID: member.ID,
		Action:   models.ActionBorrowCheckin,
		Message:  fmt.Sprintf("checked in stock unit %d", req.StockID),
	})

	return c.JSON(http.StatusOK, map[string]string{
		"message": "checked in",
	})
}

// listBorrows handles GET /api/borrows
func listBorrowsHandler(c echo.Context) error {
	member := auth.GetMemberFromContext(c)

	borrows, err := catalogService.ListBorrows(member.ID)
	if err != nil {
		c.Logger().Error("list borrows error: ", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "failed to list borrows",
		})
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"borrows": borrows,
		"count":   len(borrows),
	})
}
