package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/chiragcj27/chariot-sub001/internal/service"
)

// StorefrontHandler serves the public read path.
type StorefrontHandler struct {
	Lifecycle *service.Lifecycle
}

func NewStorefrontHandler(life *service.Lifecycle) *StorefrontHandler {
	if life == nil {
		panic("nil lifecycle passed to NewStorefrontHandler")
	}
	return &StorefrontHandler{Lifecycle: life}
}

// Availability handles GET /v1/storefront/products/:id/availability.
func (h *StorefrontHandler) Availability(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return badRequest(c, "invalid product id")
	}
	a, err := h.Lifecycle.ProductAvailability(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, a)
}
