package logger

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestFromContextFallbacks(t *testing.T) {
	fallback := zap.NewNop()
	if got := FromContext(context.Background(), fallback); got != fallback {
		t.Fatal("expected fallback logger for empty context")
	}
	stored := zap.NewExample()
	ctx := WithContext(context.Background(), stored)
	if got := FromContext(ctx, fallback); got != stored {
		t.Fatal("expected logger stored in context")
	}
}

func TestMiddlewareLogsRequest(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	e := echo.New()
	e.Use(Middleware(zap.New(core)))

	var sawLogger bool
	e.GET("/sellers/:id", func(c echo.Context) error {
		sawLogger = FromContext(c.Request().Context(), nil) == FromEcho(c)
		return c.NoContent(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodGet, "/sellers/4", nil)
	req.Header.Set(echo.HeaderXRequestID, "req-1")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if !sawLogger {
		t.Fatal("handler did not see the request logger on both contexts")
	}
	entries := logs.FilterMessage("http request completed").All()
	if len(entries) != 1 {
		t.Fatalf("expected one log entry, got %d", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["request_id"] != "req-1" || fields["path"] != "/sellers/:id" || fields["status"] != int64(http.StatusNoContent) {
		t.Fatalf("unexpected fields: %v", fields)
	}
}
