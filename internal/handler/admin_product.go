package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// GetProduct handles GET /v1/products/:id.
func (h *AdminHandler) GetProduct(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return badRequest(c, "invalid product id")
	}
	p, err := h.Lifecycle.GetProduct(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, newProductResponse(p))
}

// ApproveProduct handles PATCH /v1/products/:id/approve.
func (h *AdminHandler) ApproveProduct(c echo.Context) error {
	adminID, err := getUserID(c)
	if err != nil {
		return writeError(c, err)
	}
	id, ok := parseID(c, "id")
	if !ok {
		return badRequest(c, "invalid product id")
	}
	p, err := h.Lifecycle.ApproveProduct(c.Request().Context(), id, adminID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, newProductResponse(p))
}

// RejectProduct handles PATCH /v1/products/:id/reject with
// {"reason": "..."}.
func (h *AdminHandler) RejectProduct(c echo.Context) error {
	adminID, err := getUserID(c)
	if err != nil {
		return writeError(c, err)
	}
	id, ok := parseID(c, "id")
	if !ok {
		return badRequest(c, "invalid product id")
	}
	var body reasonRequest
	if err := c.Bind(&body); err != nil {
		return badRequest(c, "invalid request body")
	}
	p, err := h.Lifecycle.RejectProduct(c.Request().Context(), id, body.Reason, adminID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, newProductResponse(p))
}
