package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/chiragcj27/chariot-sub001/internal/model"
	"github.com/chiragcj27/chariot-sub001/internal/queue"
	"github.com/chiragcj27/chariot-sub001/internal/trust"
)

// ApproveSeller approves a PENDING seller.
func (l *Lifecycle) ApproveSeller(ctx context.Context, sellerID, adminID uint64) (model.Seller, error) {
	s, err := l.mutateSeller(ctx, sellerID, func(cur model.Seller, _ time.Time) (model.Seller, error) {
		return trust.ApproveSeller(cur)
	})
	l.record(ctx, "approve_seller", err)
	if err != nil {
		return model.Seller{}, err
	}
	l.emit(ctx, l.event(queue.SellerApproved, sellerID, adminID))
	return s, nil
}

// RejectSeller rejects a PENDING seller with a reason.
func (l *Lifecycle) RejectSeller(ctx context.Context, sellerID uint64, reason string, adminID uint64) (model.Seller, error) {
	s, err := l.mutateSeller(ctx, sellerID, func(cur model.Seller, _ time.Time) (model.Seller, error) {
		return trust.RejectSeller(cur, reason)
	})
	l.record(ctx, "reject_seller", err)
	if err != nil {
		return model.Seller{}, err
	}
	ev := l.event(queue.SellerRejected, sellerID, adminID)
	ev.Reason = s.RejectionReason
	l.emit(ctx, ev)
	return s, nil
}

// Blacklist blacklists an approved seller and then deactivates every
// ACTIVE product the seller owns.  The blacklist is committed first and
// is never rolled back: if some products stay ACTIVE after the sweeps,
// the committed seller is returned together with a *CascadeError and the
// leftover ids are queued for an asynchronous retry.
func (l *Lifecycle) Blacklist(ctx context.Context, sellerID uint64, reason string, expiry time.Time, adminID uint64) (model.Seller, error) {
	s, err := l.mutateSeller(ctx, sellerID, func(cur model.Seller, now time.Time) (model.Seller, error) {
		return trust.Blacklist(cur, reason, expiry, adminID, now)
	})
	if err != nil {
		l.record(ctx, "blacklist", err)
		return model.Seller{}, err
	}

	deactivated, failed := l.cascade(ctx, sellerID, nil)

	ev := l.event(queue.SellerBlacklisted, sellerID, adminID)
	ev.Reason = s.Blacklist.Reason
	ev.ProductIDs = deactivated
	l.emit(ctx, ev)

	if failed == nil {
		l.record(ctx, "blacklist", nil)
		return s, nil
	}
	l.requestCascadeRetry(ctx, sellerID, adminID, failed)

	cerr := &CascadeError{SellerID: sellerID, FailedProductIDs: failed}
	l.record(ctx, "blacklist", cerr)
	return s, cerr
}

// RemoveBlacklist lifts a blacklist early.  Products deactivated by the
// blacklist stay INACTIVE until the seller reactivates them.
func (l *Lifecycle) RemoveBlacklist(ctx context.Context, sellerID, adminID uint64) (model.Seller, error) {
	s, err := l.mutateSeller(ctx, sellerID, func(cur model.Seller, _ time.Time) (model.Seller, error) {
		return trust.RemoveBlacklist(cur, adminID)
	})
	l.record(ctx, "remove_blacklist", err)
	if err != nil {
		return model.Seller{}, err
	}
	l.emit(ctx, l.event(queue.SellerBlacklistRemoved, sellerID, adminID))
	return s, nil
}

// SubmitReapplication records a seller's request to lift an expired
// blacklist.
func (l *Lifecycle) SubmitReapplication(ctx context.Context, sellerID uint64, reason string) (model.Seller, error) {
	s, err := l.mutateSeller(ctx, sellerID, func(cur model.Seller, now time.Time) (model.Seller, error) {
		return trust.SubmitReapplication(cur, reason, now)
	})
	l.record(ctx, "submit_reapplication", err)
	if err != nil {
		return model.Seller{}, err
	}
	ev := l.event(queue.ReapplicationSubmitted, sellerID, sellerID)
	ev.Reason = s.Reapplication.Reason
	l.emit(ctx, ev)
	return s, nil
}

// DecideReapplication approves or rejects the pending reapplication.
// Approval clears the blacklist; products are not reactivated.
func (l *Lifecycle) DecideReapplication(ctx context.Context, sellerID uint64, approve bool, adminID uint64) (model.Seller, error) {
	s, err := l.mutateSeller(ctx, sellerID, func(cur model.Seller, now time.Time) (model.Seller, error) {
		return trust.DecideReapplication(cur, approve, adminID, now)
	})
	l.record(ctx, "decide_reapplication", err)
	if err != nil {
		return model.Seller{}, err
	}
	ev := l.event(queue.ReapplicationDecided, sellerID, adminID)
	ev.Reason = "rejected"
	if approve {
		ev.Reason = "approved"
	}
	l.emit(ctx, ev)
	l.log(ctx).Info("reapplication decided",
		zap.Uint64("seller_id", sellerID), zap.Bool("approved", approve), zap.Uint64("admin_id", adminID))
	return s, nil
}

// RetryCascade re-runs the deactivation sweep for a blacklisted seller.
// With no productIDs every ACTIVE product of the seller is swept.  It is
// a no-op once the seller no longer carries a blacklist, and products
// that are no longer ACTIVE are skipped, so it is safe to call repeatedly.
func (l *Lifecycle) RetryCascade(ctx context.Context, sellerID uint64, productIDs []uint64) error {
	s, _, err := l.sellers.Get(ctx, sellerID)
	if err != nil {
		l.record(ctx, "retry_cascade", err)
		return err
	}
	if s.Blacklist == nil {
		l.log(ctx).Info("cascade retry skipped, seller has no blacklist", zap.Uint64("seller_id", sellerID))
		l.record(ctx, "retry_cascade", nil)
		return nil
	}

	if len(productIDs) == 0 {
		productIDs = nil
	}
	deactivated, failed := l.cascade(ctx, sellerID, productIDs)
	if len(deactivated) > 0 {
		ev := l.event(queue.ProductDeactivated, sellerID, 0)
		ev.ProductIDs = deactivated
		ev.Reason = "blacklist cascade retry"
		l.emit(ctx, ev)
	}
	if failed != nil {
		cerr := &CascadeError{SellerID: sellerID, FailedProductIDs: failed}
		l.record(ctx, "retry_cascade", cerr)
		return cerr
	}
	l.record(ctx, "retry_cascade", nil)
	return nil
}

// requestCascadeRetry queues ids for an asynchronous RetryCascade.  An
// empty ids asks for a sweep of every ACTIVE product of the seller.
func (l *Lifecycle) requestCascadeRetry(ctx context.Context, sellerID, actorID uint64, ids []uint64) {
	retry := l.event(queue.CascadeRetryRequested, sellerID, actorID)
	retry.ProductIDs = ids
	l.emit(ctx, retry)
}

// GetSeller returns the current seller state.
func (l *Lifecycle) GetSeller(ctx context.Context, sellerID uint64) (model.Seller, error) {
	s, _, err := l.sellers.Get(ctx, sellerID)
	return s, err
}
