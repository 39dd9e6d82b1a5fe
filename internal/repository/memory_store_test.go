package repository

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/chiragcj27/chariot-sub001/internal/model"
)

func TestMemorySellerCompareAndSwap(t *testing.T) {
	ctx := context.Background()
	sellers := NewMemoryStore().Sellers()

	id, err := sellers.Create(ctx, model.Seller{})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	s, v, err := sellers.Get(ctx, id)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if s.ApprovalStatus != model.SellerPending || v != 1 {
		t.Fatalf("unexpected initial state: %+v v=%d", s, v)
	}

	s.ApprovalStatus = model.SellerApproved
	ok, next, err := sellers.CompareAndSwap(ctx, id, v, s)
	if err != nil || !ok || next != 2 {
		t.Fatalf("swap: ok=%v next=%d err=%v", ok, next, err)
	}
	ok, current, err := sellers.CompareAndSwap(ctx, id, v, s)
	if err != nil || ok || current != 2 {
		t.Fatalf("stale swap: ok=%v current=%d err=%v", ok, current, err)
	}
	if _, _, err := sellers.CompareAndSwap(ctx, 99, 1, s); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, _, err := sellers.Get(ctx, 99); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestMemoryGetReturnsCopies(t *testing.T) {
	ctx := context.Background()
	sellers := NewMemoryStore().Sellers()
	id, _ := sellers.Create(ctx, model.Seller{ApprovalStatus: model.SellerApproved})

	s, v, _ := sellers.Get(ctx, id)
	s.Blacklist = &model.BlacklistRecord{Reason: "x"}
	if _, _, err := sellers.CompareAndSwap(ctx, id, v, s); err != nil {
		t.Fatalf("swap: %v", err)
	}
	s.Blacklist.Reason = "changed after write"

	stored, _, _ := sellers.Get(ctx, id)
	if stored.Blacklist.Reason != "x" {
		t.Fatalf("store aliased caller memory: %q", stored.Blacklist.Reason)
	}
}

func TestMemoryConcurrentSwapsHaveOneWinner(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	sellerID, _ := store.Sellers().Create(ctx, model.Seller{})
	id, _ := store.Products().Create(ctx, model.Product{SellerID: sellerID, Status: model.ProductPending})
	_, v, _ := store.Products().Get(ctx, id)

	var wins int32
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, _, err := store.Products().CompareAndSwap(ctx, id, v, model.Product{Status: model.ProductActive, IsAdminApproved: true})
			if err != nil {
				t.Errorf("swap: %v", err)
			}
			if ok {
				atomic.AddInt32(&wins, 1)
			}
		}()
	}
	wg.Wait()
	if wins != 1 {
		t.Fatalf("expected exactly one winner, got %d", wins)
	}
	p, _, _ := store.Products().Get(ctx, id)
	if p.SellerID != sellerID {
		t.Fatalf("swap must not change ownership: %d", p.SellerID)
	}
}

func TestMemoryProductListBySeller(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	a, _ := store.Sellers().Create(ctx, model.Seller{})
	b, _ := store.Sellers().Create(ctx, model.Seller{})

	for _, st := range []model.ProductStatus{model.ProductActive, model.ProductDraft, model.ProductActive} {
		if _, err := store.Products().Create(ctx, model.Product{SellerID: a, Status: st}); err != nil {
			t.Fatalf("create: %v", err)
		}
	}
	if _, err := store.Products().Create(ctx, model.Product{SellerID: b, Status: model.ProductActive}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := store.Products().Create(ctx, model.Product{SellerID: 404}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown seller, got %v", err)
	}

	active, _ := store.Products().ListBySeller(ctx, a, model.ProductActive)
	if len(active) != 2 || active[0].ID >= active[1].ID {
		t.Fatalf("unexpected active list: %+v", active)
	}
	all, _ := store.Products().ListBySeller(ctx, a, "")
	if len(all) != 3 {
		t.Fatalf("expected 3 products, got %d", len(all))
	}
	none, _ := store.Products().ListBySeller(ctx, 404, "")
	if none == nil || len(none) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", none)
	}
}
