// Package queue defines the lifecycle messages exchanged over RabbitMQ,
// the publisher that sends them and the background consumer that writes
// the admin audit trail and retries failed cascades.
package queue

import (
	"time"

	"github.com/google/uuid"
)

// Queue names.  Both are durable.
const (
	EventsQueue       = "lifecycle.events"
	CascadeRetryQueue = "lifecycle.cascade.retry"
)

// EventType names a committed lifecycle transition.
type EventType string

const (
	SellerApproved         EventType = "seller.approved"
	SellerRejected         EventType = "seller.rejected"
	SellerBlacklisted      EventType = "seller.blacklisted"
	SellerBlacklistRemoved EventType = "seller.blacklist_removed"
	ReapplicationSubmitted EventType = "seller.reapplication_submitted"
	ReapplicationDecided   EventType = "seller.reapplication_decided"
	ProductApproved        EventType = "product.approved"
	ProductRejected        EventType = "product.rejected"
	ProductResubmitted     EventType = "product.resubmitted"
	ProductDeactivated     EventType = "product.deactivated"
	ProductReactivated     EventType = "product.reactivated"

	// CascadeRetryRequested carries product ids a blacklist cascade could
	// not deactivate.  It is routed to CascadeRetryQueue.
	CascadeRetryRequested EventType = "cascade.retry_requested"
)

// LifecycleEvent is the JSON payload of every lifecycle message.
//
// Fields:
//   - EventID: random id so consumers can de-duplicate redeliveries.
//   - Type: which transition was committed.
//   - SellerID: the seller involved (always set).
//   - ProductID: the product involved, for product events.
//   - ProductIDs: product ids affected by a cascade or awaiting retry.
//   - ActorID: the admin or seller who triggered the transition.
//   - Reason: free-text reason recorded with the transition, if any.
//   - OccurredAt: the coordinator's clock when the write committed.
type LifecycleEvent struct {
	EventID    string    `json:"event_id"`
	Type       EventType `json:"type"`
	SellerID   uint64    `json:"seller_id"`
	ProductID  uint64    `json:"product_id,omitempty"`
	ProductIDs []uint64  `json:"product_ids,omitempty"`
	ActorID    uint64    `json:"actor_id,omitempty"`
	Reason     string    `json:"reason,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// NewEvent stamps a fresh event id on an event of the given type.
func NewEvent(t EventType, sellerID uint64, at time.Time) LifecycleEvent {
	return LifecycleEvent{
		EventID:    uuid.NewString(),
		Type:       t,
		SellerID:   sellerID,
		OccurredAt: at.UTC(),
	}
}

// QueueFor returns the queue an event type is routed to.
func QueueFor(t EventType) string {
	if t == CascadeRetryRequested {
		return CascadeRetryQueue
	}
	return EventsQueue
}
