package middleware

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"github.com/chiragcj27/chariot-sub001/internal/config"
)

const secret = "test-secret"

func sign(t *testing.T, claims jwt.MapClaims, method jwt.SigningMethod) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(method, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return tok
}

func protected() *echo.Echo {
	e := echo.New()
	g := e.Group("/admin", JWTAuth(secret), RequireRole(RoleAdmin))
	g.GET("/whoami", func(c echo.Context) error {
		id, _ := UserID(c)
		return c.String(http.StatusOK, strconv.FormatUint(id, 10)+":"+Role(c))
	})
	return e
}

func TestJWTAuthAndRequireRole(t *testing.T) {
	exp := time.Now().Add(time.Hour).Unix()
	tests := []struct {
		name   string
		header string
		status int
		body   string
	}{
		{"missing header", "", http.StatusUnauthorized, ""},
		{"garbage token", "Bearer nope", http.StatusUnauthorized, ""},
		{"admin numeric sub", "Bearer " + sign(t, jwt.MapClaims{"sub": 42, "role": RoleAdmin, "exp": exp}, jwt.SigningMethodHS256), http.StatusOK, "42:ADMIN"},
		{"admin string sub", "Bearer " + sign(t, jwt.MapClaims{"sub": "43", "role": RoleAdmin, "exp": exp}, jwt.SigningMethodHS256), http.StatusOK, "43:ADMIN"},
		{"seller is forbidden", "Bearer " + sign(t, jwt.MapClaims{"sub": 7, "role": RoleSeller, "exp": exp}, jwt.SigningMethodHS256), http.StatusForbidden, ""},
		{"missing subject", "Bearer " + sign(t, jwt.MapClaims{"role": RoleAdmin, "exp": exp}, jwt.SigningMethodHS256), http.StatusUnauthorized, ""},
		{"missing expiry", "Bearer " + sign(t, jwt.MapClaims{"sub": 42, "role": RoleAdmin}, jwt.SigningMethodHS256), http.StatusUnauthorized, ""},
		{"expired", "Bearer " + sign(t, jwt.MapClaims{"sub": 42, "role": RoleAdmin, "exp": time.Now().Add(-time.Minute).Unix()}, jwt.SigningMethodHS256), http.StatusUnauthorized, ""},
		{"wrong algorithm", "Bearer " + sign(t, jwt.MapClaims{"sub": 42, "role": RoleAdmin, "exp": exp}, jwt.SigningMethodHS512), http.StatusUnauthorized, ""},
	}
	e := protected()
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/admin/whoami", nil)
			if tc.header != "" {
				req.Header.Set(echo.HeaderAuthorization, tc.header)
			}
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, req)
			if rec.Code != tc.status {
				t.Fatalf("status = %d, want %d (%s)", rec.Code, tc.status, rec.Body.String())
			}
			if tc.body != "" && rec.Body.String() != tc.body {
				t.Fatalf("body = %q, want %q", rec.Body.String(), tc.body)
			}
		})
	}
}

func TestRequestIDKeepsOrGenerates(t *testing.T) {
	e := echo.New()
	e.Use(RequestID)
	e.GET("/", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(echo.HeaderXRequestID, "abc")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	if got := rec.Header().Get(echo.HeaderXRequestID); got != "abc" {
		t.Fatalf("expected caller id, got %q", got)
	}

	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if got := rec.Header().Get(echo.HeaderXRequestID); len(got) != 36 {
		t.Fatalf("expected generated uuid, got %q", got)
	}
}

func TestPassThroughWithoutRedis(t *testing.T) {
	e := echo.New()
	e.Use(NewTokenBucket(config.RateLimitConfig{Enabled: true}, nil))
	e.Use(NewRedisCache(config.CacheConfig{Enabled: true}, nil))
	e.GET("/", func(c echo.Context) error { return c.String(http.StatusOK, "ok") })

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusOK || rec.Header().Get("X-Cache") != "" {
		t.Fatalf("expected untouched response, got %d %v", rec.Code, rec.Header())
	}
}

func TestCacheKeyUsesConcretePath(t *testing.T) {
	e := echo.New()
	cfg := config.CacheConfig{Prefix: "cache"}
	key := func(path string) string {
		c := e.NewContext(httptest.NewRequest(http.MethodGet, path, nil), httptest.NewRecorder())
		c.SetPath("/v1/storefront/products/:id/availability")
		return cacheKey(cfg, c)
	}
	if key("/v1/storefront/products/1/availability") == key("/v1/storefront/products/2/availability") {
		t.Fatal("different products must not share a cache entry")
	}
}
