package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/chiragcj27/chariot-sub001/internal/model"
	"github.com/chiragcj27/chariot-sub001/internal/queue"
	"github.com/chiragcj27/chariot-sub001/internal/repository"
	"github.com/chiragcj27/chariot-sub001/internal/trust"
)

// ProductEdit carries the material fields a seller may change.  Nil
// fields are left as they are.
type ProductEdit struct {
	Name        *string
	Description *string
	PriceCents  *uint32
}

func (e ProductEdit) empty() bool {
	return e.Name == nil && e.Description == nil && e.PriceCents == nil
}

func (e ProductEdit) apply(p model.Product) (model.Product, error) {
	if e.Name != nil {
		name := strings.TrimSpace(*e.Name)
		if name == "" {
			return p, fmt.Errorf("%w: name must not be empty", trust.ErrValidation)
		}
		p.Name = name
	}
	if e.Description != nil {
		p.Description = *e.Description
	}
	if e.PriceCents != nil {
		p.PriceCents = *e.PriceCents
	}
	return p, nil
}

// Availability is the storefront's view of a product.
type Availability struct {
	ProductID uint64 `json:"product_id"`
	SellerID  uint64 `json:"seller_id"`
	Available bool   `json:"available"`
	Reason    string `json:"reason,omitempty"`
}

// ApproveProduct approves a PENDING product.  The owning seller must be
// in good standing at the time of approval.
func (l *Lifecycle) ApproveProduct(ctx context.Context, productID, adminID uint64) (model.Product, error) {
	p, err := l.mutateProduct(ctx, productID, func(cur model.Product, now time.Time) (model.Product, error) {
		s, _, err := l.sellers.Get(ctx, cur.SellerID)
		if err != nil {
			return cur, err
		}
		if err := trust.RequireSellerInGoodStanding(s, now); err != nil {
			return cur, err
		}
		return trust.ApproveProduct(cur)
	})
	if err != nil {
		l.record(ctx, "approve_product", err)
		return model.Product{}, err
	}
	l.emitProduct(ctx, queue.ProductApproved, p, adminID, "")

	p, err = l.settleApproval(ctx, p, adminID)
	l.record(ctx, "approve_product", err)
	if err != nil {
		return model.Product{}, err
	}
	return p, nil
}

// settleApproval re-checks the seller after an approval has committed.
// A blacklist committed between the standing check and the write may
// already have run its cascade without seeing this product as ACTIVE, so
// the product is swept here.  A blacklist committed after this read lists
// the product as ACTIVE itself.
func (l *Lifecycle) settleApproval(ctx context.Context, p model.Product, adminID uint64) (model.Product, error) {
	s, _, err := l.sellers.Get(ctx, p.SellerID)
	if err != nil {
		// RetryCascade is a no-op unless the seller is blacklisted.
		l.log(ctx).Warn("re-check of seller after product approval failed",
			zap.Uint64("seller_id", p.SellerID), zap.Uint64("product_id", p.ID), zap.Error(err))
		l.requestCascadeRetry(ctx, p.SellerID, adminID, []uint64{p.ID})
		return p, nil
	}
	standing := trust.RequireSellerInGoodStanding(s, l.clock.Now())
	if standing == nil {
		return p, nil
	}

	deactivated, failed := l.cascade(ctx, p.SellerID, []uint64{p.ID})
	if len(deactivated) > 0 {
		l.emitProduct(ctx, queue.ProductDeactivated, p, adminID, "seller lost good standing during approval")
	}
	if failed != nil {
		l.requestCascadeRetry(ctx, p.SellerID, adminID, []uint64{p.ID})
		return model.Product{}, &CascadeError{SellerID: p.SellerID, FailedProductIDs: []uint64{p.ID}}
	}
	return model.Product{}, fmt.Errorf("product %d was deactivated after approval: %w", p.ID, standing)
}

// RejectProduct rejects a PENDING product with a reason.
func (l *Lifecycle) RejectProduct(ctx context.Context, productID uint64, reason string, adminID uint64) (model.Product, error) {
	p, err := l.mutateProduct(ctx, productID, func(cur model.Product, _ time.Time) (model.Product, error) {
		return trust.RejectProduct(cur, reason)
	})
	l.record(ctx, "reject_product", err)
	if err != nil {
		return model.Product{}, err
	}
	l.emitProduct(ctx, queue.ProductRejected, p, adminID, *p.RejectionReason)
	return p, nil
}

// SubmitProductEdit applies a seller's edit and sends the product back to
// review.  The edit and the status change are written together, so no
// reader sees new content under an old approval.
func (l *Lifecycle) SubmitProductEdit(ctx context.Context, productID, sellerID uint64, edit ProductEdit) (model.Product, error) {
	if edit.empty() {
		err := fmt.Errorf("%w: no fields to update", trust.ErrValidation)
		l.record(ctx, "submit_product_edit", err)
		return model.Product{}, err
	}
	p, err := l.mutateProduct(ctx, productID, func(cur model.Product, _ time.Time) (model.Product, error) {
		if err := owns(cur, sellerID); err != nil {
			return cur, err
		}
		edited, err := edit.apply(cur)
		if err != nil {
			return cur, err
		}
		return trust.SubmitProductEdit(edited)
	})
	l.record(ctx, "submit_product_edit", err)
	if err != nil {
		return model.Product{}, err
	}
	l.emitProduct(ctx, queue.ProductResubmitted, p, sellerID, "")
	return p, nil
}

// DeactivateProduct lets a seller take an ACTIVE product off sale.
func (l *Lifecycle) DeactivateProduct(ctx context.Context, productID, sellerID uint64) (model.Product, error) {
	p, err := l.mutateProduct(ctx, productID, func(cur model.Product, _ time.Time) (model.Product, error) {
		if err := owns(cur, sellerID); err != nil {
			return cur, err
		}
		return trust.DeactivateProduct(cur)
	})
	l.record(ctx, "deactivate_product", err)
	if err != nil {
		return model.Product{}, err
	}
	l.emitProduct(ctx, queue.ProductDeactivated, p, sellerID, "seller request")
	return p, nil
}

// ReactivateProduct puts an INACTIVE, approved product back on sale.  The
// seller is re-read on every attempt so a blacklist committed in between
// is seen.
func (l *Lifecycle) ReactivateProduct(ctx context.Context, productID, sellerID uint64) (model.Product, error) {
	p, err := l.mutateProduct(ctx, productID, func(cur model.Product, now time.Time) (model.Product, error) {
		if err := owns(cur, sellerID); err != nil {
			return cur, err
		}
		s, _, err := l.sellers.Get(ctx, sellerID)
		if err != nil {
			return cur, err
		}
		return trust.ReactivateProduct(cur, s, now)
	})
	l.record(ctx, "reactivate_product", err)
	if err != nil {
		return model.Product{}, err
	}
	l.emitProduct(ctx, queue.ProductReactivated, p, sellerID, "")
	return p, nil
}

// GetProduct returns the current product state.
func (l *Lifecycle) GetProduct(ctx context.Context, productID uint64) (model.Product, error) {
	p, _, err := l.products.Get(ctx, productID)
	return p, err
}

// GetOwnedProduct returns a product only if sellerID owns it.
func (l *Lifecycle) GetOwnedProduct(ctx context.Context, productID, sellerID uint64) (model.Product, error) {
	p, _, err := l.products.Get(ctx, productID)
	if err != nil {
		return model.Product{}, err
	}
	if err := owns(p, sellerID); err != nil {
		return model.Product{}, err
	}
	return p, nil
}

// ListSellerProducts lists a seller's products, optionally by status.
func (l *Lifecycle) ListSellerProducts(ctx context.Context, sellerID uint64, status model.ProductStatus) ([]model.Product, error) {
	if status != "" && !status.Valid() {
		return nil, fmt.Errorf("%w: unknown product status %q", trust.ErrValidation, status)
	}
	if _, _, err := l.sellers.Get(ctx, sellerID); err != nil {
		return nil, err
	}
	return l.products.ListBySeller(ctx, sellerID, status)
}

// ProductAvailability answers whether a product may be shown and sold.
// An ACTIVE status alone is not enough: the seller's trust state is
// checked on every call because a blacklist cascade may still be running.
func (l *Lifecycle) ProductAvailability(ctx context.Context, productID uint64) (Availability, error) {
	p, _, err := l.products.Get(ctx, productID)
	if err != nil {
		return Availability{}, err
	}
	s, _, err := l.sellers.Get(ctx, p.SellerID)
	if err != nil {
		return Availability{}, err
	}
	now := l.clock.Now()
	a := Availability{ProductID: p.ID, SellerID: p.SellerID, Available: trust.ProductAvailable(p, s, now)}
	switch {
	case a.Available:
	case p.Status != model.ProductActive:
		a.Reason = "product is not active"
	case s.ApprovalStatus != model.SellerApproved:
		a.Reason = "seller is not approved"
	default:
		a.Reason = "seller is blacklisted"
	}
	return a, nil
}

// cascade deactivates a blacklisted seller's products.  With ids == nil
// it lists the seller's ACTIVE products; otherwise it works on ids.  Each
// pass retries only what failed in the previous one.  Products that are
// gone, owned by someone else or no longer ACTIVE are skipped.  A non-nil
// failed means the cascade is incomplete; it is empty when the listing
// itself failed and the whole seller has to be swept again.
func (l *Lifecycle) cascade(ctx context.Context, sellerID uint64, ids []uint64) (deactivated, failed []uint64) {
	pending := ids
	if pending == nil {
		active, err := l.products.ListBySeller(ctx, sellerID, model.ProductActive)
		if err != nil {
			l.log(ctx).Error("cascade: list active products failed", zap.Uint64("seller_id", sellerID), zap.Error(err))
			l.metrics.Cascade("failed", 1)
			return nil, []uint64{}
		}
		for _, p := range active {
			pending = append(pending, p.ID)
		}
	}

	for sweep := 1; sweep <= l.cascadeSweeps && len(pending) > 0; sweep++ {
		var next []uint64
		for _, id := range pending {
			_, err := l.mutateProduct(ctx, id, func(cur model.Product, _ time.Time) (model.Product, error) {
				if err := owns(cur, sellerID); err != nil {
					return cur, err
				}
				return trust.DeactivateProduct(cur)
			})
			switch {
			case err == nil:
				deactivated = append(deactivated, id)
			case errors.Is(err, trust.ErrInvalidTransition),
				errors.Is(err, repository.ErrNotFound),
				errors.Is(err, repository.ErrForbidden):
				l.metrics.Cascade("skipped", 1)
			default:
				l.log(ctx).Warn("cascade: deactivate product failed",
					zap.Uint64("seller_id", sellerID), zap.Uint64("product_id", id),
					zap.Int("sweep", sweep), zap.Error(err))
				next = append(next, id)
			}
		}
		pending = next
	}
	l.metrics.Cascade("deactivated", len(deactivated))
	l.metrics.Cascade("failed", len(pending))
	if len(pending) > 0 {
		failed = pending
	}
	return deactivated, failed
}

func (l *Lifecycle) emitProduct(ctx context.Context, t queue.EventType, p model.Product, actorID uint64, reason string) {
	ev := l.event(t, p.SellerID, actorID)
	ev.ProductID = p.ID
	ev.Reason = reason
	l.emit(ctx, ev)
}

func owns(p model.Product, sellerID uint64) error {
	if p.SellerID != sellerID {
		return fmt.Errorf("product %d is not owned by seller %d: %w", p.ID, sellerID, repository.ErrForbidden)
	}
	return nil
}
