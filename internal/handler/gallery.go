package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/ateliermori/commission-api/internal/gallery"
)

// GalleryHandler proxies the public portfolio gallery from the upstream
// content API.  No auth: the gallery is the shop window.  Responses are
// cached by the Redis middleware registered on these routes, so the
// upstream sees a small fraction of visitor traffic.
type GalleryHandler struct {
	Client *gallery.Client
}

func NewGalleryHandler(c *gallery.Client) *GalleryHandler {
	return &GalleryHandler{Client: c}
}

// List returns one page of published media.  Query parameters: "after"
// (opaque cursor from the previous page) and "limit".  Upstream failures
// surface as 502; the gallery degrades, the rest of the site does not.
func (h *GalleryHandler) List(c echo.Context) error {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	page, err := h.Client.Media(c.Request().Context(), c.QueryParam("after"), limit)
	if err != nil {
		return c.JSON(http.StatusBadGateway, echo.Map{"error": "gallery temporarily unavailable"})
	}
	return c.JSON(http.StatusOK, page)
}

// Children returns the sub-items of a carousel post.
func (h *GalleryHandler) Children(c echo.Context) error {
	mediaID := c.Param("id")
	if mediaID == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	page, err := h.Client.Children(c.Request().Context(), mediaID)
	if err != nil {
		return c.JSON(http.StatusBadGateway, echo.Map{"error": "gallery temporarily unavailable"})
	}
	return c.JSON(http.StatusOK, page)
}
