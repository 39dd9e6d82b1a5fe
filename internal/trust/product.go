package trust

import (
	"strings"
	"time"

	"github.com/chiragcj27/chariot-sub001/internal/model"
)

// ApproveProduct moves a PENDING product to ACTIVE and marks the current
// content as admin approved.
func ApproveProduct(p model.Product) (model.Product, error) {
	const op = "approve product"
	if p.Status != model.ProductPending {
		return p, invalid(op, "product status must be PENDING (is %s)", p.Status)
	}
	next := p.Clone()
	next.Status = model.ProductActive
	next.IsAdminApproved = true
	next.IsAdminRejected = false
	next.RejectionReason = nil
	return next, nil
}

// RejectProduct moves a PENDING product to REJECTED with a reason.
func RejectProduct(p model.Product, reason string) (model.Product, error) {
	const op = "reject product"
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return p, validation(op, "reason is required")
	}
	if p.Status != model.ProductPending {
		return p, invalid(op, "product status must be PENDING (is %s)", p.Status)
	}
	next := p.Clone()
	next.Status = model.ProductRejected
	next.IsAdminApproved = false
	next.IsAdminRejected = true
	next.RejectionReason = &reason
	return next, nil
}

// SubmitProductEdit sends an ACTIVE, INACTIVE, PENDING or REJECTED product
// back to review after its seller changed it.  Any earlier admin decision
// is cleared because it no longer describes the current content.  Edits
// to DRAFT, ARCHIVED or DELETED products do not trigger review.
func SubmitProductEdit(p model.Product) (model.Product, error) {
	const op = "submit product edit"
	switch p.Status {
	case model.ProductActive, model.ProductInactive, model.ProductPending, model.ProductRejected:
	default:
		return p, invalid(op, "product status must not be DRAFT, ARCHIVED or DELETED (is %s)", p.Status)
	}
	next := p.Clone()
	next.Status = model.ProductPending
	next.IsAdminApproved = false
	next.IsAdminRejected = false
	next.RejectionReason = nil
	return next, nil
}

// DeactivateProduct takes an ACTIVE product off the storefront without
// rejecting it.  IsAdminApproved is kept so the product can be reactivated
// without another review.
func DeactivateProduct(p model.Product) (model.Product, error) {
	const op = "deactivate product"
	if p.Status != model.ProductActive {
		return p, invalid(op, "product status must be ACTIVE (is %s)", p.Status)
	}
	next := p.Clone()
	next.Status = model.ProductInactive
	return next, nil
}

// ReactivateProduct puts an INACTIVE, admin-approved product back on the
// storefront.  The seller must be approved with no blacklist on record;
// an expired but unresolved blacklist still blocks reactivation until the
// seller is reinstated through a reapplication or a manual removal.
func ReactivateProduct(p model.Product, s model.Seller, now time.Time) (model.Product, error) {
	const op = "reactivate product"
	if p.Status != model.ProductInactive {
		return p, invalid(op, "product status must be INACTIVE (is %s)", p.Status)
	}
	if !p.IsAdminApproved {
		return p, invalid(op, "product must be admin approved")
	}
	if s.ApprovalStatus != model.SellerApproved {
		return p, invalid(op, "seller approval status must be APPROVED (is %s)", s.ApprovalStatus)
	}
	if s.Blacklist != nil {
		if !s.Blacklist.IsExpired(now) {
			return p, invalid(op, "seller is blacklisted until %s", s.Blacklist.ExpiryDate.Format(time.RFC3339))
		}
		return p, invalid(op, "seller must be reinstated before reactivating products")
	}
	next := p.Clone()
	next.Status = model.ProductActive
	return next, nil
}

// ProductAvailable is the storefront read-path check.  A product's ACTIVE
// status is necessary but not sufficient: the seller's trust state is
// re-verified because the blacklist cascade is only eventually consistent.
func ProductAvailable(p model.Product, s model.Seller, now time.Time) bool {
	return p.Status == model.ProductActive && p.SellerID == s.ID && s.CanListProducts(now)
}
