package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/chiragcj27/chariot-sub001/internal/model"
)

type sellerRow struct {
	seller  model.Seller
	version uint64
}

type productRow struct {
	product model.Product
	version uint64
}

// MemoryStore is a goroutine-safe in-memory SellerStore and ProductStore.
// Versions start at 1 and increase by one on every successful swap.  It
// backs local development and tests; production uses the MySQL stores.
type MemoryStore struct {
	mu       sync.Mutex
	sellers  map[uint64]sellerRow
	products map[uint64]productRow

	lastSellerID  uint64
	lastProductID uint64
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sellers:  map[uint64]sellerRow{},
		products: map[uint64]productRow{},
	}
}

// Sellers returns a view of the store that satisfies SellerStore.
func (m *MemoryStore) Sellers() SellerStore { return memorySellers{m} }

// Products returns a view of the store that satisfies ProductStore.
func (m *MemoryStore) Products() ProductStore { return memoryProducts{m} }

type memorySellers struct{ m *MemoryStore }

func (s memorySellers) Get(_ context.Context, id uint64) (model.Seller, uint64, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	row, ok := s.m.sellers[id]
	if !ok {
		return model.Seller{}, 0, ErrNotFound
	}
	return row.seller.Clone(), row.version, nil
}

func (s memorySellers) CompareAndSwap(_ context.Context, id, version uint64, next model.Seller) (bool, uint64, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	row, ok := s.m.sellers[id]
	if !ok {
		return false, 0, ErrNotFound
	}
	if row.version != version {
		return false, row.version, nil
	}
	next = next.Clone()
	next.ID = id
	next.CreatedAt = row.seller.CreatedAt
	next.UpdatedAt = time.Now().UTC()
	s.m.sellers[id] = sellerRow{seller: next, version: version + 1}
	return true, version + 1, nil
}

func (s memorySellers) Create(_ context.Context, seller model.Seller) (uint64, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	s.m.lastSellerID++
	seller = seller.Clone()
	seller.ID = s.m.lastSellerID
	if seller.ApprovalStatus == "" {
		seller.ApprovalStatus = model.SellerPending
	}
	now := time.Now().UTC()
	seller.CreatedAt, seller.UpdatedAt = now, now
	s.m.sellers[seller.ID] = sellerRow{seller: seller, version: 1}
	return seller.ID, nil
}

type memoryProducts struct{ m *MemoryStore }

func (p memoryProducts) Get(_ context.Context, id uint64) (model.Product, uint64, error) {
	p.m.mu.Lock()
	defer p.m.mu.Unlock()
	row, ok := p.m.products[id]
	if !ok {
		return model.Product{}, 0, ErrNotFound
	}
	return row.product.Clone(), row.version, nil
}

func (p memoryProducts) CompareAndSwap(_ context.Context, id, version uint64, next model.Product) (bool, uint64, error) {
	p.m.mu.Lock()
	defer p.m.mu.Unlock()
	row, ok := p.m.products[id]
	if !ok {
		return false, 0, ErrNotFound
	}
	if row.version != version {
		return false, row.version, nil
	}
	next = next.Clone()
	next.ID = id
	next.SellerID = row.product.SellerID // ownership never changes
	next.CreatedAt = row.product.CreatedAt
	next.UpdatedAt = time.Now().UTC()
	p.m.products[id] = productRow{product: next, version: version + 1}
	return true, version + 1, nil
}

func (p memoryProducts) Create(_ context.Context, product model.Product) (uint64, error) {
	p.m.mu.Lock()
	defer p.m.mu.Unlock()
	if _, ok := p.m.sellers[product.SellerID]; !ok {
		return 0, ErrNotFound
	}
	p.m.lastProductID++
	product = product.Clone()
	product.ID = p.m.lastProductID
	if product.Status == "" {
		product.Status = model.ProductDraft
	}
	now := time.Now().UTC()
	product.CreatedAt, product.UpdatedAt = now, now
	p.m.products[product.ID] = productRow{product: product, version: 1}
	return product.ID, nil
}

func (p memoryProducts) ListBySeller(_ context.Context, sellerID uint64, status model.ProductStatus) ([]model.Product, error) {
	p.m.mu.Lock()
	defer p.m.mu.Unlock()
	out := []model.Product{}
	for _, row := range p.m.products {
		if row.product.SellerID != sellerID {
			continue
		}
		if status != "" && row.product.Status != status {
			continue
		}
		out = append(out, row.product.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}
