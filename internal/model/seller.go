package model

import "time"

// ApprovalStatus is the admin review state of a seller account.
type ApprovalStatus string

const (
	SellerPending  ApprovalStatus = "PENDING"
	SellerApproved ApprovalStatus = "APPROVED"
	SellerRejected ApprovalStatus = "REJECTED"
)

// Seller represents the trust-relevant part of a seller account as stored
// in the `sellers` table.  Registration and profile data live elsewhere;
// only the fields that gate product visibility are modelled here.
//
// Fields:
//  ID              – primary key identifier.
//  ApprovalStatus  – PENDING, APPROVED or REJECTED.
//  RejectionReason – reason given when the account was rejected.
//  Blacklist       – present iff the seller has been blacklisted and not
//                    yet reinstated.
//  Reapplication   – outstanding or most recently resolved request to lift
//                    an expired blacklist.
//  CreatedAt       – timestamp of creation.
//  UpdatedAt       – timestamp of last update.
type Seller struct {
	ID              uint64                // sellers.id
	ApprovalStatus  ApprovalStatus        // sellers.approval_status
	RejectionReason string                // sellers.rejection_reason
	Blacklist       *BlacklistRecord      // sellers.blacklist_* (nullable)
	Reapplication   *ReapplicationRequest // sellers.reapply_* (nullable)
	CreatedAt       time.Time             // sellers.created_at
	UpdatedAt       time.Time             // sellers.updated_at
}

// BlacklistRecord captures who blacklisted a seller, why and until when.
// Expiry is never stored as a flag; use IsExpired with the current time.
type BlacklistRecord struct {
	Reason        string
	BlacklistedAt time.Time
	BlacklistedBy uint64
	ExpiryDate    time.Time
}

// IsExpired reports whether the blacklist has lapsed at now.
func (b BlacklistRecord) IsExpired(now time.Time) bool {
	return now.After(b.ExpiryDate)
}

// ReapplicationRequest is a seller's request to lift an expired blacklist.
type ReapplicationRequest struct {
	SubmittedAt time.Time
	Reason      string
	Decision    *ReapplicationDecision // nil while pending
}

// ReapplicationDecision records the admin outcome of a reapplication.
type ReapplicationDecision struct {
	Approved  bool
	DecidedAt time.Time
	DecidedBy uint64
}

// Pending reports whether the request still awaits an admin decision.
func (r *ReapplicationRequest) Pending() bool {
	return r != nil && r.Decision == nil
}

// CanListProducts reports whether the seller's products may be publicly
// active at now: the account is approved and carries no blacklist that is
// still in force.
func (s Seller) CanListProducts(now time.Time) bool {
	if s.ApprovalStatus != SellerApproved {
		return false
	}
	return s.Blacklist == nil || s.Blacklist.IsExpired(now)
}

// Reinstated reports whether the seller is approved with no blacklist on
// record at all.
func (s Seller) Reinstated() bool {
	return s.ApprovalStatus == SellerApproved && s.Blacklist == nil
}

// Clone returns a deep copy so callers can derive a new state without
// aliasing the nested records of the original.
func (s Seller) Clone() Seller {
	out := s
	if s.Blacklist != nil {
		b := *s.Blacklist
		out.Blacklist = &b
	}
	if s.Reapplication != nil {
		r := *s.Reapplication
		if s.Reapplication.Decision != nil {
			d := *s.Reapplication.Decision
			r.Decision = &d
		}
		out.Reapplication = &r
	}
	return out
}
