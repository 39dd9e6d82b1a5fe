package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/chiragcj27/chariot-sub001/internal/clock"
	"github.com/chiragcj27/chariot-sub001/internal/model"
	"github.com/chiragcj27/chariot-sub001/internal/repository"
	"github.com/chiragcj27/chariot-sub001/internal/service"
	"github.com/chiragcj27/chariot-sub001/internal/trust"
)

func newContext(method, path, body string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	out := map[string]any{}
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return out
}

func TestWriteErrorMapping(t *testing.T) {
	tests := []struct {
		err    error
		status int
		code   string
	}{
		{fmt.Errorf("reject seller: %w", trust.ErrValidation), http.StatusBadRequest, "validation_failed"},
		{repository.ErrNotFound, http.StatusNotFound, "not_found"},
		{fmt.Errorf("product 3: %w", repository.ErrForbidden), http.StatusForbidden, "forbidden"},
		{fmt.Errorf("approve seller: %w", trust.ErrInvalidTransition), http.StatusConflict, "invalid_transition"},
		{fmt.Errorf("seller 1 after 3 attempts: %w", service.ErrConcurrentModification), http.StatusConflict, "concurrent_modification"},
		{&service.CascadeError{SellerID: 2, FailedProductIDs: []uint64{5}}, http.StatusConflict, "cascade_incomplete"},
		{context.DeadlineExceeded, http.StatusServiceUnavailable, "timeout"},
		{errUnauthenticated, http.StatusUnauthorized, "unauthorized"},
		{errors.New("disk on fire"), http.StatusInternalServerError, "internal_error"},
	}
	for _, tt := range tests {
		c, rec := newContext(http.MethodGet, "/", "")
		if err := writeError(c, tt.err); err != nil {
			t.Fatalf("%v: %v", tt.err, err)
		}
		body := decode(t, rec)
		if rec.Code != tt.status || body["code"] != tt.code {
			t.Errorf("%v: got %d %v, want %d %s", tt.err, rec.Code, body, tt.status, tt.code)
		}
		if tt.code == "concurrent_modification" && body["retryable"] != true {
			t.Errorf("conflict must be retryable: %v", body)
		}
	}
}

// stuckProducts fails every write so the cascade cannot finish.
type stuckProducts struct {
	repository.ProductStore
}

func (stuckProducts) CompareAndSwap(context.Context, uint64, uint64, model.Product) (bool, uint64, error) {
	return false, 0, errors.New("lock wait timeout")
}

func TestBlacklistReportsCascadeWarning(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemoryStore()
	clk := clock.NewManual(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	sid, _ := store.Sellers().Create(ctx, model.Seller{ApprovalStatus: model.SellerApproved})
	pid, _ := store.Products().Create(ctx, model.Product{SellerID: sid, Name: "lamp", Status: model.ProductActive, IsAdminApproved: true})

	life := service.NewLifecycle(service.Dependencies{
		Sellers:  store.Sellers(),
		Products: stuckProducts{store.Products()},
		Clock:    clk,
	})
	h := NewAdminHandler(life, clk)

	body := fmt.Sprintf(`{"reason":"fraud","expiry_date":%q}`, clk.Now().Add(48*time.Hour).Format(time.RFC3339))
	c, rec := newContext(http.MethodPost, "/", body)
	c.SetParamNames("id")
	c.SetParamValues(fmt.Sprint(sid))
	c.Set("user_id", uint64(7))

	if err := h.BlacklistSeller(c); err != nil {
		t.Fatal(err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
	}
	out := decode(t, rec)
	warning, _ := out["cascade_warning"].(map[string]any)
	if warning == nil {
		t.Fatalf("missing cascade_warning: %v", out)
	}
	ids, _ := warning["failed_product_ids"].([]any)
	if len(ids) != 1 || ids[0] != float64(pid) {
		t.Fatalf("failed ids: %v", warning)
	}
	seller, _ := out["seller"].(map[string]any)
	if seller == nil || seller["blacklist"] == nil {
		t.Fatalf("blacklist must be committed: %v", out)
	}
}

func TestParseIDRejectsZeroAndGarbage(t *testing.T) {
	for _, v := range []string{"0", "-1", "abc", ""} {
		c, _ := newContext(http.MethodGet, "/", "")
		c.SetParamNames("id")
		c.SetParamValues(v)
		if _, ok := parseID(c, "id"); ok {
			t.Errorf("parseID(%q) accepted", v)
		}
	}
}

func TestHandlersRequireAuthenticatedUser(t *testing.T) {
	life := service.NewLifecycle(service.Dependencies{
		Sellers:  repository.NewMemoryStore().Sellers(),
		Products: repository.NewMemoryStore().Products(),
	})
	c, rec := newContext(http.MethodGet, "/", "")
	if err := NewSellerHandler(life, nil).Me(c); err != nil {
		t.Fatal(err)
	}
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("got %d", rec.Code)
	}
}
