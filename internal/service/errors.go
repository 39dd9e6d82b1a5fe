package service

import (
	"errors"
	"fmt"
)

var (
	// ErrConcurrentModification is returned when every read-decide-write
	// attempt lost its compare-and-swap.  The whole request may be retried.
	ErrConcurrentModification = errors.New("concurrent modification")
	// ErrCascadePartialFailure reports that the seller write committed but
	// some products could not be deactivated.
	ErrCascadePartialFailure = errors.New("cascade partially failed")
)

// CascadeError lists the products a blacklist cascade left ACTIVE.  It is
// returned together with the committed seller and unwraps to
// ErrCascadePartialFailure.
type CascadeError struct {
	SellerID         uint64
	FailedProductIDs []uint64
}

func (e *CascadeError) Error() string {
	return fmt.Sprintf("seller %d: %v: %d product(s) still active %v",
		e.SellerID, ErrCascadePartialFailure, len(e.FailedProductIDs), e.FailedProductIDs)
}

func (e *CascadeError) Unwrap() error { return ErrCascadePartialFailure }
