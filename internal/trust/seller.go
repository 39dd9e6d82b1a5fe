// Package trust decides which seller and product state transitions are
// legal.  Every function is pure: it receives the current state, the
// requested action and the current time, and returns the next state or a
// *TransitionError.  Nothing here performs I/O or retries; persistence and
// cascades belong to the lifecycle coordinator in package service.
package trust

import (
	"strings"
	"time"

	"github.com/chiragcj27/chariot-sub001/internal/model"
)

// ApproveSeller moves a PENDING seller to APPROVED.
func ApproveSeller(s model.Seller) (model.Seller, error) {
	const op = "approve seller"
	if s.ApprovalStatus != model.SellerPending {
		return s, invalid(op, "approval status must be PENDING (is %s)", s.ApprovalStatus)
	}
	next := s.Clone()
	next.ApprovalStatus = model.SellerApproved
	next.RejectionReason = ""
	return next, nil
}

// RejectSeller moves a PENDING seller to REJECTED with a reason.
func RejectSeller(s model.Seller, reason string) (model.Seller, error) {
	const op = "reject seller"
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return s, validation(op, "reason is required")
	}
	if s.ApprovalStatus != model.SellerPending {
		return s, invalid(op, "approval status must be PENDING (is %s)", s.ApprovalStatus)
	}
	next := s.Clone()
	next.ApprovalStatus = model.SellerRejected
	next.RejectionReason = reason
	return next, nil
}

// Blacklist records a blacklist on an APPROVED seller.  A seller that is
// already blacklisted can only be blacklisted again once the previous
// record has expired.  Any prior reapplication is discarded.
func Blacklist(s model.Seller, reason string, expiryDate time.Time, admin uint64, now time.Time) (model.Seller, error) {
	const op = "blacklist seller"
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return s, validation(op, "reason is required")
	}
	if admin == 0 {
		return s, validation(op, "admin id is required")
	}
	if !expiryDate.After(now) {
		return s, validation(op, "expiry date must be in the future")
	}
	if s.ApprovalStatus != model.SellerApproved {
		return s, invalid(op, "approval status must be APPROVED (is %s)", s.ApprovalStatus)
	}
	if s.Blacklist != nil && !s.Blacklist.IsExpired(now) {
		return s, invalid(op, "existing blacklist must be expired (expires %s)", s.Blacklist.ExpiryDate.Format(time.RFC3339))
	}
	next := s.Clone()
	next.Blacklist = &model.BlacklistRecord{
		Reason:        reason,
		BlacklistedAt: now,
		BlacklistedBy: admin,
		ExpiryDate:    expiryDate,
	}
	next.Reapplication = nil
	return next, nil
}

// SubmitReapplication opens a request to lift an expired blacklist.  Only
// one request may be pending at a time; a rejected request may be
// followed by a new one.
func SubmitReapplication(s model.Seller, reason string, now time.Time) (model.Seller, error) {
	const op = "submit reapplication"
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return s, validation(op, "reason is required")
	}
	if s.Blacklist == nil {
		return s, invalid(op, "seller must be blacklisted")
	}
	if !s.Blacklist.IsExpired(now) {
		return s, invalid(op, "blacklist must be expired (expires %s)", s.Blacklist.ExpiryDate.Format(time.RFC3339))
	}
	if s.Reapplication.Pending() {
		return s, invalid(op, "a reapplication is already pending")
	}
	next := s.Clone()
	next.Reapplication = &model.ReapplicationRequest{SubmittedAt: now, Reason: reason}
	return next, nil
}

// DecideReapplication resolves the pending reapplication.  Approval clears
// the blacklist entirely; rejection leaves it in place and allows the
// seller to apply again.
func DecideReapplication(s model.Seller, approve bool, admin uint64, now time.Time) (model.Seller, error) {
	const op = "decide reapplication"
	if admin == 0 {
		return s, validation(op, "admin id is required")
	}
	if !s.Reapplication.Pending() {
		return s, invalid(op, "a pending reapplication is required")
	}
	next := s.Clone()
	next.Reapplication.Decision = &model.ReapplicationDecision{
		Approved:  approve,
		DecidedAt: now,
		DecidedBy: admin,
	}
	if approve {
		next.Blacklist = nil
	}
	return next, nil
}

// RemoveBlacklist is a manual early release, independent of expiry and of
// any reapplication.  It clears both records.
func RemoveBlacklist(s model.Seller, admin uint64) (model.Seller, error) {
	const op = "remove blacklist"
	if admin == 0 {
		return s, validation(op, "admin id is required")
	}
	if s.Blacklist == nil {
		return s, invalid(op, "seller must be blacklisted")
	}
	next := s.Clone()
	next.Blacklist = nil
	next.Reapplication = nil
	return next, nil
}

// RequireSellerInGoodStanding fails unless the seller's products may be
// publicly active at now.
func RequireSellerInGoodStanding(s model.Seller, now time.Time) error {
	const op = "check seller standing"
	if s.ApprovalStatus != model.SellerApproved {
		return invalid(op, "seller approval status must be APPROVED (is %s)", s.ApprovalStatus)
	}
	if s.Blacklist != nil && !s.Blacklist.IsExpired(now) {
		return invalid(op, "seller is blacklisted until %s", s.Blacklist.ExpiryDate.Format(time.RFC3339))
	}
	return nil
}
