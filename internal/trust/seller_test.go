package trust

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/chiragcj27/chariot-sub001/internal/model"
)

var t0 = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func approvedSeller() model.Seller {
	return model.Seller{ID: 7, ApprovalStatus: model.SellerApproved}
}

func blacklistedSeller(expiry time.Time) model.Seller {
	s := approvedSeller()
	s.Blacklist = &model.BlacklistRecord{Reason: "policy violation", BlacklistedAt: t0, BlacklistedBy: 1, ExpiryDate: expiry}
	return s
}

func TestApproveSellerTwice(t *testing.T) {
	s := model.Seller{ID: 1, ApprovalStatus: model.SellerPending}
	first, err := ApproveSeller(s)
	if err != nil {
		t.Fatalf("first approve: %v", err)
	}
	if first.ApprovalStatus != model.SellerApproved {
		t.Fatalf("expected APPROVED, got %s", first.ApprovalStatus)
	}
	second, err := ApproveSeller(first)
	if !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("state changed by rejected call: %+v vs %+v", first, second)
	}
}

func TestRejectSeller(t *testing.T) {
	tests := []struct {
		name   string
		status model.ApprovalStatus
		reason string
		want   error
	}{
		{"pending with reason", model.SellerPending, "incomplete documents", nil},
		{"blank reason", model.SellerPending, "   ", ErrValidation},
		{"already approved", model.SellerApproved, "late", ErrInvalidTransition},
		{"already rejected", model.SellerRejected, "again", ErrInvalidTransition},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			next, err := RejectSeller(model.Seller{ID: 1, ApprovalStatus: tc.status}, tc.reason)
			if tc.want != nil {
				if !errors.Is(err, tc.want) {
					t.Fatalf("expected %v, got %v", tc.want, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if next.ApprovalStatus != model.SellerRejected || next.RejectionReason != tc.reason {
				t.Fatalf("unexpected seller: %+v", next)
			}
		})
	}
}

func TestBlacklistGating(t *testing.T) {
	expiry := t0.Add(7 * 24 * time.Hour)
	tests := []struct {
		name   string
		seller model.Seller
		reason string
		expiry time.Time
		admin  uint64
		want   error
	}{
		{"approved seller", approvedSeller(), "policy violation", expiry, 1, nil},
		{"pending seller", model.Seller{ID: 2, ApprovalStatus: model.SellerPending}, "x", expiry, 1, ErrInvalidTransition},
		{"rejected seller", model.Seller{ID: 2, ApprovalStatus: model.SellerRejected}, "x", expiry, 1, ErrInvalidTransition},
		{"active blacklist", blacklistedSeller(t0.Add(time.Hour)), "again", expiry, 1, ErrInvalidTransition},
		{"expired blacklist", blacklistedSeller(t0.Add(-time.Hour)), "repeat offence", expiry, 1, nil},
		{"missing reason", approvedSeller(), "", expiry, 1, ErrValidation},
		{"expiry in the past", approvedSeller(), "x", t0.Add(-time.Minute), 1, ErrValidation},
		{"expiry equals now", approvedSeller(), "x", t0, 1, ErrValidation},
		{"missing admin", approvedSeller(), "x", expiry, 0, ErrValidation},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			next, err := Blacklist(tc.seller, tc.reason, tc.expiry, tc.admin, t0)
			if tc.want != nil {
				if !errors.Is(err, tc.want) {
					t.Fatalf("expected %v, got %v", tc.want, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if next.Blacklist == nil || next.Blacklist.ExpiryDate != tc.expiry || next.Blacklist.BlacklistedBy != tc.admin {
				t.Fatalf("blacklist not recorded: %+v", next.Blacklist)
			}
			if next.Reapplication != nil {
				t.Fatalf("expected reapplication cleared, got %+v", next.Reapplication)
			}
		})
	}
}

func TestBlacklistDoesNotMutateInput(t *testing.T) {
	in := blacklistedSeller(t0.Add(-time.Hour))
	in.Reapplication = &model.ReapplicationRequest{SubmittedAt: t0, Reason: "r"}
	before := in.Clone()
	if _, err := Blacklist(in, "again", t0.Add(time.Hour), 3, t0); err != nil {
		t.Fatalf("blacklist: %v", err)
	}
	if !reflect.DeepEqual(before, in) {
		t.Fatalf("input mutated: %+v", in)
	}
}

func TestSubmitReapplicationGating(t *testing.T) {
	expired := blacklistedSeller(t0.Add(-time.Hour))

	if _, err := SubmitReapplication(approvedSeller(), "resolved", t0); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition without blacklist, got %v", err)
	}
	if _, err := SubmitReapplication(blacklistedSeller(t0.Add(time.Hour)), "resolved", t0); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition for unexpired blacklist, got %v", err)
	}
	if _, err := SubmitReapplication(expired, "", t0); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation for blank reason, got %v", err)
	}

	first, err := SubmitReapplication(expired, "resolved", t0)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if !first.Reapplication.Pending() || first.Reapplication.Reason != "resolved" {
		t.Fatalf("unexpected reapplication: %+v", first.Reapplication)
	}
	if _, err := SubmitReapplication(first, "again", t0); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected second pending submission to fail, got %v", err)
	}
}

func TestDecideReapplication(t *testing.T) {
	pending, err := SubmitReapplication(blacklistedSeller(t0.Add(-time.Hour)), "resolved", t0)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}

	approved, err := DecideReapplication(pending, true, 9, t0.Add(time.Minute))
	if err != nil {
		t.Fatalf("approve: %v", err)
	}
	if approved.Blacklist != nil {
		t.Fatalf("expected blacklist cleared")
	}
	if d := approved.Reapplication.Decision; d == nil || !d.Approved || d.DecidedBy != 9 {
		t.Fatalf("unexpected decision: %+v", d)
	}
	if _, err := DecideReapplication(approved, true, 9, t0); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected no pending reapplication, got %v", err)
	}

	rejected, err := DecideReapplication(pending, false, 9, t0.Add(time.Minute))
	if err != nil {
		t.Fatalf("reject: %v", err)
	}
	if rejected.Blacklist == nil || rejected.Reapplication.Decision.Approved {
		t.Fatalf("rejection must keep blacklist: %+v", rejected)
	}
	again, err := SubmitReapplication(rejected, "fixed for real", t0.Add(2*time.Minute))
	if err != nil {
		t.Fatalf("resubmit after rejection: %v", err)
	}
	if !again.Reapplication.Pending() {
		t.Fatalf("expected a fresh pending reapplication")
	}

	if _, err := DecideReapplication(pending, true, 0, t0); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation for missing admin, got %v", err)
	}
}

func TestRemoveBlacklist(t *testing.T) {
	s := blacklistedSeller(t0.Add(time.Hour))
	s.Reapplication = &model.ReapplicationRequest{SubmittedAt: t0, Reason: "r"}
	next, err := RemoveBlacklist(s, 4)
	if err != nil {
		t.Fatalf("remove: %v", err)
	}
	if next.Blacklist != nil || next.Reapplication != nil {
		t.Fatalf("expected records cleared: %+v", next)
	}
	if _, err := RemoveBlacklist(next, 4); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
}

func TestTransitionErrorNamesPrecondition(t *testing.T) {
	_, err := ApproveSeller(model.Seller{ApprovalStatus: model.SellerRejected})
	var te *TransitionError
	if !errors.As(err, &te) {
		t.Fatalf("expected *TransitionError, got %T", err)
	}
	if te.Op != "approve seller" || te.Precondition != "approval status must be PENDING (is REJECTED)" {
		t.Fatalf("unexpected error detail: %+v", te)
	}
}
