package model

import "time"

// ProductStatus is the lifecycle state of a product listing.
type ProductStatus string

const (
	ProductDraft    ProductStatus = "DRAFT"
	ProductPending  ProductStatus = "PENDING"
	ProductActive   ProductStatus = "ACTIVE"
	ProductInactive ProductStatus = "INACTIVE"
	ProductRejected ProductStatus = "REJECTED"
	ProductArchived ProductStatus = "ARCHIVED"
	ProductDeleted  ProductStatus = "DELETED"
)

// Valid reports whether s is a known product status.
func (s ProductStatus) Valid() bool {
	switch s {
	case ProductDraft, ProductPending, ProductActive, ProductInactive,
		ProductRejected, ProductArchived, ProductDeleted:
		return true
	}
	return false
}

// Product represents a seller's listing as stored in the `products`
// table.  Name, Description and PriceCents are the material fields: a
// seller changing any of them sends the product back to admin review.
//
// Fields:
//  ID              – primary key identifier.
//  SellerID        – owning seller.
//  Name            – display name.
//  Description     – free text description.
//  PriceCents      – list price in cents.
//  Status          – lifecycle state (see ProductStatus).
//  IsAdminApproved – set when an admin approved the current content.
//  IsAdminRejected – set when an admin rejected the current content.
//  RejectionReason – reason for the last rejection (nullable).
//  CreatedAt       – timestamp of creation.
//  UpdatedAt       – timestamp of last update.
type Product struct {
	ID              uint64        // products.id
	SellerID        uint64        // products.seller_id
	Name            string        // products.name
	Description     string        // products.description
	PriceCents      uint32        // products.price_cents
	Status          ProductStatus // products.status
	IsAdminApproved bool          // products.is_admin_approved
	IsAdminRejected bool          // products.is_admin_rejected
	RejectionReason *string       // products.rejection_reason (nullable)
	CreatedAt       time.Time     // products.created_at
	UpdatedAt       time.Time     // products.updated_at
}

// Clone returns a copy that does not share the RejectionReason pointer.
func (p Product) Clone() Product {
	out := p
	if p.RejectionReason != nil {
		r := *p.RejectionReason
		out.RejectionReason = &r
	}
	return out
}
