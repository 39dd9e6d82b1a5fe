package trust

import (
	"errors"
	"testing"
	"time"

	"github.com/chiragcj27/chariot-sub001/internal/model"
)

func product(status model.ProductStatus) model.Product {
	return model.Product{ID: 11, SellerID: 7, Name: "lamp", Status: status}
}

func TestApproveAndRejectProduct(t *testing.T) {
	for _, st := range []model.ProductStatus{model.ProductDraft, model.ProductActive, model.ProductRejected, model.ProductDeleted} {
		if _, err := ApproveProduct(product(st)); !errors.Is(err, ErrInvalidTransition) {
			t.Fatalf("approve from %s: expected ErrInvalidTransition, got %v", st, err)
		}
		if _, err := RejectProduct(product(st), "bad photos"); !errors.Is(err, ErrInvalidTransition) {
			t.Fatalf("reject from %s: expected ErrInvalidTransition, got %v", st, err)
		}
	}

	rejected, err := RejectProduct(product(model.ProductPending), "bad photos")
	if err != nil {
		t.Fatalf("reject: %v", err)
	}
	if rejected.Status != model.ProductRejected || !rejected.IsAdminRejected || rejected.IsAdminApproved {
		t.Fatalf("unexpected rejected product: %+v", rejected)
	}
	if rejected.RejectionReason == nil || *rejected.RejectionReason != "bad photos" {
		t.Fatalf("expected rejection reason recorded")
	}
	if _, err := RejectProduct(product(model.ProductPending), ""); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}

	resubmitted, err := SubmitProductEdit(rejected)
	if err != nil {
		t.Fatalf("resubmit: %v", err)
	}
	approved, err := ApproveProduct(resubmitted)
	if err != nil {
		t.Fatalf("approve: %v", err)
	}
	if approved.Status != model.ProductActive || !approved.IsAdminApproved || approved.IsAdminRejected || approved.RejectionReason != nil {
		t.Fatalf("unexpected approved product: %+v", approved)
	}
}

func TestSubmitProductEdit(t *testing.T) {
	reason := "blurry"
	rejected := product(model.ProductRejected)
	rejected.IsAdminRejected = true
	rejected.RejectionReason = &reason

	next, err := SubmitProductEdit(rejected)
	if err != nil {
		t.Fatalf("edit rejected: %v", err)
	}
	if next.Status != model.ProductPending || next.IsAdminRejected || next.RejectionReason != nil {
		t.Fatalf("unexpected product: %+v", next)
	}
	if rejected.RejectionReason == nil {
		t.Fatalf("input product mutated")
	}

	pending, err := SubmitProductEdit(next)
	if err != nil || pending.Status != model.ProductPending {
		t.Fatalf("edit pending should be idempotent: %+v %v", pending, err)
	}

	active := product(model.ProductActive)
	active.IsAdminApproved = true
	requeued, err := SubmitProductEdit(active)
	if err != nil {
		t.Fatalf("edit active: %v", err)
	}
	if requeued.IsAdminApproved {
		t.Fatalf("edit must clear prior approval")
	}

	inactive := product(model.ProductInactive)
	inactive.IsAdminApproved = true
	reviewed, err := SubmitProductEdit(inactive)
	if err != nil {
		t.Fatalf("edit inactive: %v", err)
	}
	if reviewed.Status != model.ProductPending || reviewed.IsAdminApproved || reviewed.IsAdminRejected {
		t.Fatalf("edit of inactive product must force review: %+v", reviewed)
	}

	for _, st := range []model.ProductStatus{model.ProductDraft, model.ProductArchived, model.ProductDeleted} {
		if _, err := SubmitProductEdit(product(st)); !errors.Is(err, ErrInvalidTransition) {
			t.Fatalf("edit from %s: expected ErrInvalidTransition, got %v", st, err)
		}
	}
}

func TestAdminFlagsNeverBothSet(t *testing.T) {
	steps := []func(model.Product) (model.Product, error){
		ApproveProduct,
		func(p model.Product) (model.Product, error) { return RejectProduct(p, "r") },
		SubmitProductEdit,
		DeactivateProduct,
		func(p model.Product) (model.Product, error) { return ReactivateProduct(p, approvedSeller(), t0) },
	}
	// Walk every sequence of up to four steps from each starting status.
	var walk func(p model.Product, depth int)
	walk = func(p model.Product, depth int) {
		if p.IsAdminApproved && p.IsAdminRejected {
			t.Fatalf("both admin flags set: %+v", p)
		}
		if p.Status == model.ProductActive && !p.IsAdminApproved {
			t.Fatalf("active product without approval: %+v", p)
		}
		if depth == 0 {
			return
		}
		for _, step := range steps {
			if next, err := step(p); err == nil {
				walk(next, depth-1)
			}
		}
	}
	for _, st := range []model.ProductStatus{model.ProductDraft, model.ProductPending, model.ProductRejected} {
		walk(product(st), 4)
	}
}

func TestDeactivateAndReactivate(t *testing.T) {
	active := product(model.ProductActive)
	active.IsAdminApproved = true

	inactive, err := DeactivateProduct(active)
	if err != nil {
		t.Fatalf("deactivate: %v", err)
	}
	if inactive.Status != model.ProductInactive || !inactive.IsAdminApproved {
		t.Fatalf("deactivation must keep approval: %+v", inactive)
	}
	if _, err := DeactivateProduct(inactive); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}

	if _, err := ReactivateProduct(inactive, blacklistedSeller(t0.Add(time.Hour)), t0); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected blacklisted seller to block reactivation, got %v", err)
	}
	if _, err := ReactivateProduct(inactive, blacklistedSeller(t0.Add(-time.Hour)), t0); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected unresolved expired blacklist to block reactivation, got %v", err)
	}
	back, err := ReactivateProduct(inactive, approvedSeller(), t0)
	if err != nil {
		t.Fatalf("reactivate: %v", err)
	}
	if back.Status != model.ProductActive {
		t.Fatalf("expected ACTIVE, got %s", back.Status)
	}

	unapproved := product(model.ProductInactive)
	if _, err := ReactivateProduct(unapproved, approvedSeller(), t0); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected unapproved product to stay inactive, got %v", err)
	}
}

func TestProductAvailable(t *testing.T) {
	active := product(model.ProductActive)
	active.IsAdminApproved = true

	if !ProductAvailable(active, approvedSeller(), t0) {
		t.Fatalf("expected product available")
	}
	if ProductAvailable(active, blacklistedSeller(t0.Add(time.Hour)), t0) {
		t.Fatalf("blacklisted seller's product must not be available even while ACTIVE")
	}
	if ProductAvailable(product(model.ProductInactive), approvedSeller(), t0) {
		t.Fatalf("inactive product must not be available")
	}
	if ProductAvailable(active, model.Seller{ID: 7, ApprovalStatus: model.SellerRejected}, t0) {
		t.Fatalf("rejected seller's product must not be available")
	}
}

func TestRequireSellerInGoodStanding(t *testing.T) {
	if err := RequireSellerInGoodStanding(approvedSeller(), t0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := RequireSellerInGoodStanding(blacklistedSeller(t0.Add(-time.Hour)), t0); err != nil {
		t.Fatalf("expired blacklist should not block approval: %v", err)
	}
	if err := RequireSellerInGoodStanding(blacklistedSeller(t0.Add(time.Hour)), t0); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
	if err := RequireSellerInGoodStanding(model.Seller{ApprovalStatus: model.SellerPending}, t0); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
}
