package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/craftroni/shop/internal/search"
	"github.com/craftroni/shop/internal/util"
)

// SearchHandler serves storefront suggestions from the Elasticsearch
// mirror. When no index is configured the endpoint reports 503 rather
// than silently returning nothing.
type SearchHandler struct {
	Index *search.Index
}

func (h *SearchHandler) Search(c echo.Context) error {
	q := c.QueryParam("q")
	if q == "" {
		return respondError(c, http.StatusBadRequest, "missing search query")
	}
	if !h.Index.Enabled() {
		return respondError(c, http.StatusServiceUnavailable, "search is not configured")
	}

	page := util.ParseIntDefault(c.QueryParam("page"), 1)
	size := util.ParseIntDefault(c.QueryParam("limit"), util.DefaultPageSize)
	from, limit := util.Paginate(page, size)

	total, items, err := h.Index.Search(c.Request().Context(), q, from, limit)
	if err != nil {
		return serverError(c, err)
	}

	return respondData(c, http.StatusOK, echo.Map{
		"total": total,
		"items": items,
	})
}
