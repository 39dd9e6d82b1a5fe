package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// CascadeRetrier re-runs the product deactivation sweep for a blacklisted
// seller.  The lifecycle coordinator implements it.
type CascadeRetrier interface {
	RetryCascade(ctx context.Context, sellerID uint64, productIDs []uint64) error
}

// errMalformed marks deliveries that can never be processed.
var errMalformed = errors.New("malformed message")

// auditFile is the file under LogDir that receives one line per event.
const auditFile = "lifecycle.log"

// Consumer drains both lifecycle queues.  Events are appended to the
// audit log; cascade retry requests are handed to Retrier.
type Consumer struct {
	URL     string
	LogDir  string
	Retrier CascadeRetrier
	Logger  *zap.Logger
}

// Run connects to the broker and consumes until ctx is cancelled.  Dial
// failures back off exponentially up to 30s and a dropped connection is
// re-established, so Run only returns ctx.Err().
func (c *Consumer) Run(ctx context.Context) error {
	log := c.Logger
	if log == nil {
		log = zap.NewNop()
	}
	backoff := time.Second
	for {
		conn, err := amqp.Dial(c.URL)
		if err != nil {
			log.Warn("lifecycle consumer: dial failed", zap.Error(err), zap.Duration("retry_in", backoff))
			if !sleep(ctx, backoff) {
				return ctx.Err()
			}
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second

		err = c.consume(ctx, conn, log)
		_ = conn.Close()
		if ctx.Err() != nil {
			return ctx.Err()
		}
		log.Warn("lifecycle consumer: consume loop ended, reconnecting", zap.Error(err))
		if !sleep(ctx, 2*time.Second) {
			return ctx.Err()
		}
	}
}

func (c *Consumer) consume(ctx context.Context, conn *amqp.Connection, log *zap.Logger) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(50, 0, false); err != nil {
		log.Warn("lifecycle consumer: set QoS failed", zap.Error(err))
	}

	deliveries := map[string]<-chan amqp.Delivery{}
	for _, name := range []string{EventsQueue, CascadeRetryQueue} {
		if _, err := ch.QueueDeclare(name, true, false, false, false, nil); err != nil {
			return fmt.Errorf("queue declare %s: %w", name, err)
		}
		msgs, err := ch.Consume(name, "", false, false, false, false, nil)
		if err != nil {
			return fmt.Errorf("queue consume %s: %w", name, err)
		}
		deliveries[name] = msgs
	}

	events, retries := deliveries[EventsQueue], deliveries[CascadeRetryQueue]
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-events:
			if !ok {
				return errors.New("events deliveries closed")
			}
			settle(d, c.HandleEvent(d.Body), log)
		case d, ok := <-retries:
			if !ok {
				return errors.New("retry deliveries closed")
			}
			settle(d, c.HandleRetry(ctx, d.Body), log)
		}
	}
}

// settle acks on success.  Malformed messages are dropped; any other
// failure is requeued once and dropped on its second delivery.
func settle(d amqp.Delivery, err error, log *zap.Logger) {
	if err == nil {
		_ = d.Ack(false)
		return
	}
	requeue := !errors.Is(err, errMalformed) && !d.Redelivered
	log.Error("lifecycle consumer: handle message failed",
		zap.String("queue", d.RoutingKey), zap.Bool("requeue", requeue), zap.Error(err))
	_ = d.Nack(false, requeue)
}

// HandleEvent appends one audit line for the event to LogDir/lifecycle.log.
func (c *Consumer) HandleEvent(body []byte) error {
	var ev LifecycleEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("%w: %v", errMalformed, err)
	}
	if ev.Type == "" || ev.SellerID == 0 {
		return fmt.Errorf("%w: missing type or seller_id", errMalformed)
	}
	dir := c.LogDir
	if dir == "" {
		dir = "logs"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("mkdir %s: %w", dir, err)
	}
	f, err := os.OpenFile(filepath.Join(dir, auditFile), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open audit log: %w", err)
	}
	defer f.Close()

	if _, err := f.WriteString(auditLine(ev)); err != nil {
		return fmt.Errorf("write audit log: %w", err)
	}
	return nil
}

func auditLine(ev LifecycleEvent) string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] %s | event_id=%s | seller_id=%d",
		ev.OccurredAt.UTC().Format(time.RFC3339), ev.Type, ev.EventID, ev.SellerID)
	if ev.ProductID != 0 {
		fmt.Fprintf(&b, " | product_id=%d", ev.ProductID)
	}
	if len(ev.ProductIDs) > 0 {
		ids := make([]string, len(ev.ProductIDs))
		for i, id := range ev.ProductIDs {
			ids[i] = fmt.Sprint(id)
		}
		fmt.Fprintf(&b, " | product_ids=[%s]", strings.Join(ids, ","))
	}
	if ev.ActorID != 0 {
		fmt.Fprintf(&b, " | actor_id=%d", ev.ActorID)
	}
	if ev.Reason != "" {
		fmt.Fprintf(&b, " | reason=%q", ev.Reason)
	}
	b.WriteByte('\n')
	return b.String()
}

// HandleRetry asks the Retrier to deactivate the listed products again.
func (c *Consumer) HandleRetry(ctx context.Context, body []byte) error {
	var ev LifecycleEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("%w: %v", errMalformed, err)
	}
	if ev.Type != CascadeRetryRequested || ev.SellerID == 0 {
		return fmt.Errorf("%w: unexpected %q for seller %d", errMalformed, ev.Type, ev.SellerID)
	}
	if c.Retrier == nil {
		return errors.New("no cascade retrier configured")
	}
	return c.Retrier.RetryCascade(ctx, ev.SellerID, ev.ProductIDs)
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
