package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/chiragcj27/chariot-sub001/internal/clock"
	"github.com/chiragcj27/chariot-sub001/internal/model"
	"github.com/chiragcj27/chariot-sub001/internal/repository"
	"github.com/chiragcj27/chariot-sub001/internal/service"
)

// SellerHandler serves a seller's own account and catalogue.  The
// authenticated user id is the seller id.
type SellerHandler struct {
	Lifecycle *service.Lifecycle
	Clock     clock.Clock
}

func NewSellerHandler(life *service.Lifecycle, clk clock.Clock) *SellerHandler {
	if life == nil {
		panic("nil lifecycle passed to NewSellerHandler")
	}
	if clk == nil {
		clk = clock.System{}
	}
	return &SellerHandler{Lifecycle: life, Clock: clk}
}

// Me handles GET /v1/seller/me.
func (h *SellerHandler) Me(c echo.Context) error {
	sellerID, err := getUserID(c)
	if err != nil {
		return writeError(c, err)
	}
	s, err := h.Lifecycle.GetSeller(c.Request().Context(), sellerID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, newSellerResponse(s, h.Clock.Now()))
}

// Reapply handles POST /v1/seller/reapply.
func (h *SellerHandler) Reapply(c echo.Context) error {
	sellerID, err := getUserID(c)
	if err != nil {
		return writeError(c, err)
	}
	return h.reapply(c, sellerID)
}

// ReapplyByID handles POST /v1/sellers/:id/reapply.  A seller may only
// reapply for itself.
func (h *SellerHandler) ReapplyByID(c echo.Context) error {
	sellerID, err := getUserID(c)
	if err != nil {
		return writeError(c, err)
	}
	id, ok := parseID(c, "id")
	if !ok {
		return badRequest(c, "invalid seller id")
	}
	if id != sellerID {
		return writeError(c, repository.ErrForbidden)
	}
	return h.reapply(c, sellerID)
}

func (h *SellerHandler) reapply(c echo.Context, sellerID uint64) error {
	var body reasonRequest
	if err := c.Bind(&body); err != nil {
		return badRequest(c, "invalid request body")
	}
	s, err := h.Lifecycle.SubmitReapplication(c.Request().Context(), sellerID, body.Reason)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, newSellerResponse(s, h.Clock.Now()))
}

// ListProducts handles GET /v1/seller/products?status=.
func (h *SellerHandler) ListProducts(c echo.Context) error {
	sellerID, err := getUserID(c)
	if err != nil {
		return writeError(c, err)
	}
	ps, err := h.Lifecycle.ListSellerProducts(c.Request().Context(), sellerID, model.ProductStatus(c.QueryParam("status")))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"products": newProductList(ps)})
}

// GetProduct handles GET /v1/seller/products/:id.
func (h *SellerHandler) GetProduct(c echo.Context) error {
	return h.productAction(c, func(c echo.Context, productID, sellerID uint64) (model.Product, error) {
		return h.Lifecycle.GetOwnedProduct(c.Request().Context(), productID, sellerID)
	})
}

type editProductRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	PriceCents  *uint32 `json:"price_cents"`
}

// EditProduct handles PATCH /v1/seller/products/:id.  Any accepted edit
// sends the product back to PENDING review.
func (h *SellerHandler) EditProduct(c echo.Context) error {
	var body editProductRequest
	if err := c.Bind(&body); err != nil {
		return badRequest(c, "invalid request body")
	}
	return h.productAction(c, func(c echo.Context, productID, sellerID uint64) (model.Product, error) {
		return h.Lifecycle.SubmitProductEdit(c.Request().Context(), productID, sellerID, service.ProductEdit{
			Name:        body.Name,
			Description: body.Description,
			PriceCents:  body.PriceCents,
		})
	})
}

// ReactivateProduct handles POST /v1/seller/products/:id/reactivate.
func (h *SellerHandler) ReactivateProduct(c echo.Context) error {
	return h.productAction(c, func(c echo.Context, productID, sellerID uint64) (model.Product, error) {
		return h.Lifecycle.ReactivateProduct(c.Request().Context(), productID, sellerID)
	})
}

// DeactivateProduct handles POST /v1/seller/products/:id/deactivate.
func (h *SellerHandler) DeactivateProduct(c echo.Context) error {
	return h.productAction(c, func(c echo.Context, productID, sellerID uint64) (model.Product, error) {
		return h.Lifecycle.DeactivateProduct(c.Request().Context(), productID, sellerID)
	})
}

func (h *SellerHandler) productAction(c echo.Context, do func(echo.Context, uint64, uint64) (model.Product, error)) error {
	sellerID, err := getUserID(c)
	if err != nil {
		return writeError(c, err)
	}
	productID, ok := parseID(c, "id")
	if !ok {
		return badRequest(c, "invalid product id")
	}
	p, err := do(c, productID, sellerID)
	if errors.Is(err, repository.ErrForbidden) {
		// Do not reveal that another seller's product exists.
		return fail(c, http.StatusNotFound, "not_found", "product not found")
	}
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, newProductResponse(p))
}
