package handler

import (
	"time"

	"github.com/chiragcj27/chariot-sub001/internal/model"
)

type blacklistResponse struct {
	Reason        string    `json:"reason"`
	BlacklistedAt time.Time `json:"blacklisted_at"`
	BlacklistedBy uint64    `json:"blacklisted_by"`
	ExpiryDate    time.Time `json:"expiry_date"`
	IsExpired     bool      `json:"is_expired"`
}

type decisionResponse struct {
	Approved  bool      `json:"approved"`
	DecidedAt time.Time `json:"decided_at"`
	DecidedBy uint64    `json:"decided_by"`
}

type reapplicationResponse struct {
	SubmittedAt time.Time         `json:"submitted_at"`
	Reason      string            `json:"reason"`
	Decision    *decisionResponse `json:"decision"`
}

type sellerResponse struct {
	ID              uint64                 `json:"id"`
	ApprovalStatus  model.ApprovalStatus   `json:"approval_status"`
	RejectionReason string                 `json:"rejection_reason,omitempty"`
	Blacklist       *blacklistResponse     `json:"blacklist"`
	Reapplication   *reapplicationResponse `json:"reapplication"`
	CanListProducts bool                   `json:"can_list_products"`
}

// newSellerResponse renders a seller at now.  is_expired and
// can_list_products are derived here and never stored.
func newSellerResponse(s model.Seller, now time.Time) sellerResponse {
	out := sellerResponse{
		ID:              s.ID,
		ApprovalStatus:  s.ApprovalStatus,
		RejectionReason: s.RejectionReason,
		CanListProducts: s.CanListProducts(now),
	}
	if b := s.Blacklist; b != nil {
		out.Blacklist = &blacklistResponse{
			Reason:        b.Reason,
			BlacklistedAt: b.BlacklistedAt,
			BlacklistedBy: b.BlacklistedBy,
			ExpiryDate:    b.ExpiryDate,
			IsExpired:     b.IsExpired(now),
		}
	}
	if r := s.Reapplication; r != nil {
		out.Reapplication = &reapplicationResponse{SubmittedAt: r.SubmittedAt, Reason: r.Reason}
		if d := r.Decision; d != nil {
			out.Reapplication.Decision = &decisionResponse{Approved: d.Approved, DecidedAt: d.DecidedAt, DecidedBy: d.DecidedBy}
		}
	}
	return out
}

type productResponse struct {
	ID              uint64              `json:"id"`
	SellerID        uint64              `json:"seller_id"`
	Name            string              `json:"name"`
	Description     string              `json:"description"`
	PriceCents      uint32              `json:"price_cents"`
	Status          model.ProductStatus `json:"status"`
	IsAdminApproved bool                `json:"is_admin_approved"`
	IsAdminRejected bool                `json:"is_admin_rejected"`
	RejectionReason *string             `json:"rejection_reason"`
	UpdatedAt       time.Time           `json:"updated_at"`
}

func newProductResponse(p model.Product) productResponse {
	return productResponse{
		ID:              p.ID,
		SellerID:        p.SellerID,
		Name:            p.Name,
		Description:     p.Description,
		PriceCents:      p.PriceCents,
		Status:          p.Status,
		IsAdminApproved: p.IsAdminApproved,
		IsAdminRejected: p.IsAdminRejected,
		RejectionReason: p.RejectionReason,
		UpdatedAt:       p.UpdatedAt,
	}
}

func newProductList(ps []model.Product) []productResponse {
	out := make([]productResponse, 0, len(ps))
	for _, p := range ps {
		out = append(out, newProductResponse(p))
	}
	return out
}
