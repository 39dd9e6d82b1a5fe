package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/chiragcj27/chariot-sub001/internal/clock"
	"github.com/chiragcj27/chariot-sub001/internal/model"
	"github.com/chiragcj27/chariot-sub001/internal/service"
)

// AdminHandler serves the admin review endpoints.  Routes are mounted
// behind JWTAuth and RequireRole("ADMIN"); the authenticated user id is
// recorded as the acting admin.
type AdminHandler struct {
	Lifecycle *service.Lifecycle
	Clock     clock.Clock
}

// NewAdminHandler panics if the lifecycle is nil.
func NewAdminHandler(life *service.Lifecycle, clk clock.Clock) *AdminHandler {
	if life == nil {
		panic("nil lifecycle passed to NewAdminHandler")
	}
	if clk == nil {
		clk = clock.System{}
	}
	return &AdminHandler{Lifecycle: life, Clock: clk}
}

// sellerAction resolves the acting admin and the :id seller.
func (h *AdminHandler) sellerAction(c echo.Context) (adminID, sellerID uint64, err error) {
	adminID, err = getUserID(c)
	if err != nil {
		return 0, 0, err
	}
	sellerID, ok := parseID(c, "id")
	if !ok {
		return 0, 0, errBadID
	}
	return adminID, sellerID, nil
}

var errBadID = errors.New("invalid id")

func (h *AdminHandler) seller(c echo.Context, s model.Seller) error {
	return c.JSON(http.StatusOK, newSellerResponse(s, h.Clock.Now()))
}

// GetSeller handles GET /v1/sellers/:id.
func (h *AdminHandler) GetSeller(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return badRequest(c, "invalid seller id")
	}
	s, err := h.Lifecycle.GetSeller(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	return h.seller(c, s)
}

// ApproveSeller handles POST /v1/sellers/:id/approve.
func (h *AdminHandler) ApproveSeller(c echo.Context) error {
	adminID, sellerID, err := h.sellerAction(c)
	if errors.Is(err, errBadID) {
		return badRequest(c, "invalid seller id")
	} else if err != nil {
		return writeError(c, err)
	}
	s, err := h.Lifecycle.ApproveSeller(c.Request().Context(), sellerID, adminID)
	if err != nil {
		return writeError(c, err)
	}
	return h.seller(c, s)
}

type reasonRequest struct {
	Reason string `json:"reason"`
}

// RejectSeller handles POST /v1/sellers/:id/reject with {"reason": "..."}.
func (h *AdminHandler) RejectSeller(c echo.Context) error {
	adminID, sellerID, err := h.sellerAction(c)
	if errors.Is(err, errBadID) {
		return badRequest(c, "invalid seller id")
	} else if err != nil {
		return writeError(c, err)
	}
	var body reasonRequest
	if err := c.Bind(&body); err != nil {
		return badRequest(c, "invalid request body")
	}
	s, err := h.Lifecycle.RejectSeller(c.Request().Context(), sellerID, body.Reason, adminID)
	if err != nil {
		return writeError(c, err)
	}
	return h.seller(c, s)
}

// blacklistRequest accepts the expiry as expiry_date or expiryDate, in
// RFC 3339.
type blacklistRequest struct {
	Reason          string     `json:"reason"`
	ExpiryDate      *time.Time `json:"expiry_date"`
	ExpiryDateCamel *time.Time `json:"expiryDate"`
}

func (r blacklistRequest) expiry() *time.Time {
	if r.ExpiryDate != nil {
		return r.ExpiryDate
	}
	return r.ExpiryDateCamel
}

// BlacklistSeller handles POST /v1/sellers/:id/blacklist.  The blacklist
// is committed even when some products could not be deactivated; the
// response is then still 200 and carries a cascade_warning with the
// product ids queued for retry.
func (h *AdminHandler) BlacklistSeller(c echo.Context) error {
	adminID, sellerID, err := h.sellerAction(c)
	if errors.Is(err, errBadID) {
		return badRequest(c, "invalid seller id")
	} else if err != nil {
		return writeError(c, err)
	}
	var body blacklistRequest
	if err := c.Bind(&body); err != nil {
		return badRequest(c, "invalid request body; expiry_date must be RFC 3339")
	}
	expiry := body.expiry()
	if expiry == nil {
		return fail(c, http.StatusBadRequest, "validation_failed", "expiry_date is required")
	}

	s, err := h.Lifecycle.Blacklist(c.Request().Context(), sellerID, body.Reason, expiry.UTC(), adminID)
	var cerr *service.CascadeError
	if errors.As(err, &cerr) {
		failed := cerr.FailedProductIDs
		if failed == nil {
			failed = []uint64{}
		}
		return c.JSON(http.StatusOK, echo.Map{
			"seller": newSellerResponse(s, h.Clock.Now()),
			"cascade_warning": echo.Map{
				"error":              cerr.Error(),
				"failed_product_ids": failed,
			},
		})
	}
	if err != nil {
		return writeError(c, err)
	}
	return h.seller(c, s)
}

// RemoveBlacklist handles POST /v1/sellers/:id/blacklist/remove.
func (h *AdminHandler) RemoveBlacklist(c echo.Context) error {
	adminID, sellerID, err := h.sellerAction(c)
	if errors.Is(err, errBadID) {
		return badRequest(c, "invalid seller id")
	} else if err != nil {
		return writeError(c, err)
	}
	s, err := h.Lifecycle.RemoveBlacklist(c.Request().Context(), sellerID, adminID)
	if err != nil {
		return writeError(c, err)
	}
	return h.seller(c, s)
}

// DecideReapplication handles POST /v1/sellers/:id/reapply/decide with
// {"approve": bool}.
func (h *AdminHandler) DecideReapplication(c echo.Context) error {
	adminID, sellerID, err := h.sellerAction(c)
	if errors.Is(err, errBadID) {
		return badRequest(c, "invalid seller id")
	} else if err != nil {
		return writeError(c, err)
	}
	var body struct {
		Approve *bool `json:"approve"`
	}
	if err := c.Bind(&body); err != nil {
		return badRequest(c, "invalid request body")
	}
	if body.Approve == nil {
		return fail(c, http.StatusBadRequest, "validation_failed", "approve is required")
	}
	s, err := h.Lifecycle.DecideReapplication(c.Request().Context(), sellerID, *body.Approve, adminID)
	if err != nil {
		return writeError(c, err)
	}
	return h.seller(c, s)
}

// ListSellerProducts handles GET /v1/sellers/:id/products?status=ACTIVE.
func (h *AdminHandler) ListSellerProducts(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return badRequest(c, "invalid seller id")
	}
	ps, err := h.Lifecycle.ListSellerProducts(c.Request().Context(), id, model.ProductStatus(c.QueryParam("status")))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"products": newProductList(ps)})
}

// RetryCascade handles POST /v1/sellers/:id/cascade/retry.  An empty body
// sweeps every ACTIVE product of the seller.
func (h *AdminHandler) RetryCascade(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return badRequest(c, "invalid seller id")
	}
	var body struct {
		ProductIDs []uint64 `json:"product_ids"`
	}
	if err := c.Bind(&body); err != nil {
		return badRequest(c, "invalid request body")
	}
	err := h.Lifecycle.RetryCascade(c.Request().Context(), id, body.ProductIDs)
	var cerr *service.CascadeError
	if errors.As(err, &cerr) {
		return c.JSON(http.StatusOK, echo.Map{
			"completed":          false,
			"failed_product_ids": cerr.FailedProductIDs,
		})
	}
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"completed": true, "failed_product_ids": []uint64{}})
}
