package handlers

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/announcement-search-api/internal/models"
	"github.com/announcement-search-api/internal/services"
)

// SearchHandler handles search endpoints
type SearchHandler struct {
	hybridSearch *services.HybridSearchService
}

// NewSearchHandler creates a new search handler
func NewSearchHandler(hybridSearch *services.HybridSearchService) *SearchHandler {
	return &SearchHandler{
		hybridSearch: hybridSearch,
	}
}

// HybridSearch handles POST /search/hybrid - ranked announcement search
// across the K-Startup and BizInfo catalogs.
//
// An empty query returns 200 with an empty result set; an upstream
// embedding or vector-search failure returns 500 with {"error": ...}.
func (h *SearchHandler) HybridSearch(c echo.Context) error {
	ctx := c.Request().Context()

	var req models.HybridSearchRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "invalid request body",
		})
	}

	if req.Source != "" && !req.Source.Valid() {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": fmt.Sprintf("unknown source %q", req.Source),
		})
	}

	resp, err := h.hybridSearch.Search(ctx, req)
	if err != nil {
		c.Logger().Errorf("Hybrid search failed: %v", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": err.Error(),
		})
	}

	return c.JSON(http.StatusOK, resp)
}

// RegisterRoutes registers search routes
func (h *SearchHandler) RegisterRoutes(g *echo.Group) {
	g.POST("/search/hybrid", h.HybridSearch)
}
