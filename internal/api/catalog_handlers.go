package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"library-backend/internal/database"
	"library-backend/internal/models"
)

// searchResources handles GET /api/resources/search
func searchResourcesHandler(c echo.Context) error {
	q := models.SearchQuery{
		Author: c.QueryParam("author"),
		Title:  c.QueryParam("title"),
		ISBN:   c.QueryParam("isbn"),
	}

	resources, err := catalogService.SearchResources(q)
	if err != nil {
		c.Logger().Error("search error: ", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "search failed",
		})
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"resources": resources,
		"count":     len(resources),
	})
}

// addResource handles POST /api/resources
func addResourceHandler(c echo.Context) error {
	var req models.AddResourceRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "invalid request body",
		})
	}

	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "title is required",
		})
	}
	if req.AuthorLast == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "author last name is required",
		})
	}

	resource, err := catalogService.AddResourceToInventory(req)
	if err != nil {
		if errors.Is(err, database.ErrAmbiguousAuthor) {
			return c.JSON(http.StatusConflict, map[string]string{
				"error": "author name matches more than one author",
			})
		}
		c.Logger().Error("add resource error: ", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "failed to add resource",
		})
	}

	Audit.LogFromContext(c, models.ActionResourceAdd, resource.Title, map[string]interface{}{
		"resource_id": resource.ID,
		"isbn_10":     resource.ISBN10,
		"isbn_13":     resource.ISBN13,
	})

	return c.JSON(http.StatusCreated, resource)
}

// getResource handles GET /api/resources/:id
func getResourceHandler(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	resource, err := catalogService.GetResource(id)
	if err != nil {
		if errors.Is(err, database.ErrResourceNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{
				"error": "resource not found",
			})
		}
		c.Logger().Error("get resource error: ", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "failed to get resource",
		})
	}

	return c.JSON(http.StatusOK, resource)
}

// listStock handles GET /api/resources/:id/stock
func listStockHandler(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	stock, err := catalogService.ListStock(id)
	if err != nil {
		c.Logger().Error("list stock error: ", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "failed to list stock",
		})
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"stock": stock,
		"count": len(stock),
	})
}

// deactivateResource handles DELETE /api/resources/:id
func deactivateResourceHandler(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	if err := catalogService.DeactivateResource(id); err != nil {
		if errors.Is(err, database.ErrResourceNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{
				"error": "resource not found",
			})
		}
		c.Logger().Error("deactivate resource error: ", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "failed to deactivate resource",
		})
	}

	Audit.LogFromContext(c, models.ActionResourceDeactivate, "", map[string]int64{
		"resource_id": id,
	})

	return c.JSON(http.StatusOK, map[string]string{
		"message": "resource deactivated",
	})
}
