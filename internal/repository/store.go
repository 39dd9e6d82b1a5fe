package repository

import (
	"context"

	"github.com/chiragcj27/chariot-sub001/internal/model"
)

// SellerStore persists seller trust fields keyed by seller id.
//
// Get returns the seller with its current version.  CompareAndSwap writes
// s only if the stored version still equals version and reports the new
// version on success; ok is false when another writer got there first.
// No other method mutates an existing seller.
type SellerStore interface {
	Get(ctx context.Context, id uint64) (model.Seller, uint64, error)
	CompareAndSwap(ctx context.Context, id, version uint64, s model.Seller) (bool, uint64, error)
	// Create inserts a newly registered seller and returns its id.
	Create(ctx context.Context, s model.Seller) (uint64, error)
}

// ProductStore persists product lifecycle fields keyed by product id and
// indexed by seller id.
type ProductStore interface {
	Get(ctx context.Context, id uint64) (model.Product, uint64, error)
	CompareAndSwap(ctx context.Context, id, version uint64, p model.Product) (bool, uint64, error)
	Create(ctx context.Context, p model.Product) (uint64, error)
	// ListBySeller returns the seller's products ordered by id.  An empty
	// status returns every product.
	ListBySeller(ctx context.Context, sellerID uint64, status model.ProductStatus) ([]model.Product, error)
}
