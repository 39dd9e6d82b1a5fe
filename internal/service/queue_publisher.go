package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/chiragcj27/chariot-sub001/internal/queue"
)

// EventPublisher delivers committed lifecycle events.  queue.AMQPPublisher
// is the production implementation.
type EventPublisher interface {
	Publish(ctx context.Context, ev queue.LifecycleEvent) error
}

const publishTimeout = 3 * time.Second

// emit publishes ev without letting a broker problem fail the request
// that committed it.  The request's cancellation is detached so an event
// for a committed write is still attempted after the client goes away.
func (l *Lifecycle) emit(ctx context.Context, ev queue.LifecycleEvent) {
	if l.publisher == nil {
		return
	}
	pctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()
	if err := l.publisher.Publish(pctx, ev); err != nil {
		l.log(ctx).Warn("publish lifecycle event failed",
			zap.String("event_type", string(ev.Type)),
			zap.String("event_id", ev.EventID),
			zap.Uint64("seller_id", ev.SellerID),
			zap.Error(err))
	}
}

func (l *Lifecycle) event(t queue.EventType, sellerID, actorID uint64) queue.LifecycleEvent {
	ev := queue.NewEvent(t, sellerID, l.clock.Now())
	ev.ActorID = actorID
	return ev
}
