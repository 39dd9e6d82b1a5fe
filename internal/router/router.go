// Package router registers the HTTP surface on an Echo instance.
package router

import (
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/chiragcj27/chariot-sub001/internal/handler"
	"github.com/chiragcj27/chariot-sub001/internal/middleware"
)

// Deps carries everything the routes need.  RateLimit and Cache may be
// nil, in which case those layers are skipped.
type Deps struct {
	Admin      *handler.AdminHandler
	Seller     *handler.SellerHandler
	Storefront *handler.StorefrontHandler
	JWTSecret  string

	RateLimit echo.MiddlewareFunc
	Cache     echo.MiddlewareFunc
	Gatherer  prometheus.Gatherer
}

// RegisterRoutes registers the unauthenticated operational endpoints.
func RegisterRoutes(e *echo.Echo, gatherer prometheus.Gatherer) {
	e.GET("/healthz", handler.Health)
	if gatherer != nil {
		e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	}
}

// Register mounts every route.  Admin and seller routes share the /v1
// prefix (and /sellers/:id), so their middleware chains are attached per
// route rather than per group.
func Register(e *echo.Echo, d Deps) {
	RegisterRoutes(e, d.Gatherer)

	v1 := e.Group("/v1")

	// The limiter runs after JWTAuth so buckets can be keyed per user.
	admin := chain(d.RateLimit,
		middleware.JWTAuth(d.JWTSecret),
		middleware.RequireRole(middleware.RoleAdmin))
	seller := chain(d.RateLimit,
		middleware.JWTAuth(d.JWTSecret),
		middleware.RequireRole(middleware.RoleSeller))

	registerAdmin(v1, d.Admin, admin)
	registerSeller(v1, d.Seller, seller)

	public := chain(d.RateLimit)
	if d.Cache != nil {
		public = append(public, d.Cache)
	}
	v1.GET("/storefront/products/:id/availability", d.Storefront.Availability, public...)
}

// chain returns auth followed by limit, skipping a nil limit.
func chain(limit echo.MiddlewareFunc, auth ...echo.MiddlewareFunc) []echo.MiddlewareFunc {
	out := append([]echo.MiddlewareFunc{}, auth...)
	if limit != nil {
		out = append(out, limit)
	}
	return out
}

func registerAdmin(g *echo.Group, a *handler.AdminHandler, m []echo.MiddlewareFunc) {
	// ---- Sellers ----
	g.GET("/sellers/:id", a.GetSeller, m...)
	g.GET("/sellers/:id/products", a.ListSellerProducts, m...)
	g.POST("/sellers/:id/approve", a.ApproveSeller, m...)
	g.POST("/sellers/:id/reject", a.RejectSeller, m...)
	g.POST("/sellers/:id/blacklist", a.BlacklistSeller, m...)
	g.POST("/sellers/:id/blacklist/remove", a.RemoveBlacklist, m...)
	g.POST("/sellers/:id/reapply/decide", a.DecideReapplication, m...)
	g.POST("/sellers/:id/cascade/retry", a.RetryCascade, m...)

	// ---- Products ----
	g.GET("/products/:id", a.GetProduct, m...)
	g.PATCH("/products/:id/approve", a.ApproveProduct, m...)
	g.PATCH("/products/:id/reject", a.RejectProduct, m...)
}

func registerSeller(g *echo.Group, s *handler.SellerHandler, m []echo.MiddlewareFunc) {
	g.POST("/sellers/:id/reapply", s.ReapplyByID, m...)

	g.GET("/seller/me", s.Me, m...)
	g.POST("/seller/reapply", s.Reapply, m...)
	g.GET("/seller/products", s.ListProducts, m...)
	g.GET("/seller/products/:id", s.GetProduct, m...)
	g.PATCH("/seller/products/:id", s.EditProduct, m...)
	g.POST("/seller/products/:id/reactivate", s.ReactivateProduct, m...)
	g.POST("/seller/products/:id/deactivate", s.DeactivateProduct, m...)
}
