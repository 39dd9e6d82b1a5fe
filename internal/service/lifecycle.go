// Package service holds the lifecycle coordinator: the only code allowed
// to change seller and product state.  Each operation loads the entity
// with its version, asks the trust engine for the next state and writes
// it back with a compare-and-swap, retrying a bounded number of times
// when another writer got there first.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/chiragcj27/chariot-sub001/internal/clock"
	"github.com/chiragcj27/chariot-sub001/internal/logger"
	"github.com/chiragcj27/chariot-sub001/internal/metrics"
	"github.com/chiragcj27/chariot-sub001/internal/model"
	"github.com/chiragcj27/chariot-sub001/internal/repository"
	"github.com/chiragcj27/chariot-sub001/internal/trust"
)

const (
	defaultMaxAttempts   = 3
	defaultCascadeSweeps = 2
)

// Dependencies wires a Lifecycle.  Sellers and Products are required;
// everything else has a usable zero value.
type Dependencies struct {
	Sellers   repository.SellerStore
	Products  repository.ProductStore
	Clock     clock.Clock
	Publisher EventPublisher
	Logger    *zap.Logger
	Metrics   *metrics.Metrics

	// MaxAttempts bounds the read-decide-write loop of every operation.
	MaxAttempts int
	// CascadeSweeps bounds how many passes a blacklist cascade makes over
	// the products that failed to deactivate.
	CascadeSweeps int
}

// Lifecycle coordinates seller and product transitions.  It keeps no
// mutable state of its own and is safe for concurrent use.
type Lifecycle struct {
	sellers   repository.SellerStore
	products  repository.ProductStore
	clock     clock.Clock
	publisher EventPublisher
	logger    *zap.Logger
	metrics   *metrics.Metrics

	maxAttempts   int
	cascadeSweeps int
}

// NewLifecycle panics when a store is missing.
func NewLifecycle(deps Dependencies) *Lifecycle {
	if deps.Sellers == nil || deps.Products == nil {
		panic("nil store passed to NewLifecycle")
	}
	l := &Lifecycle{
		sellers:       deps.Sellers,
		products:      deps.Products,
		clock:         deps.Clock,
		publisher:     deps.Publisher,
		logger:        deps.Logger,
		metrics:       deps.Metrics,
		maxAttempts:   deps.MaxAttempts,
		cascadeSweeps: deps.CascadeSweeps,
	}
	if l.clock == nil {
		l.clock = clock.System{}
	}
	if l.logger == nil {
		l.logger = zap.NewNop()
	}
	if l.maxAttempts <= 0 {
		l.maxAttempts = defaultMaxAttempts
	}
	if l.cascadeSweeps <= 0 {
		l.cascadeSweeps = defaultCascadeSweeps
	}
	return l
}

// versioned is the part of a store the read-decide-write loop needs.
type versioned[T any] interface {
	Get(ctx context.Context, id uint64) (T, uint64, error)
	CompareAndSwap(ctx context.Context, id, version uint64, next T) (bool, uint64, error)
}

// mutate runs decide against the current entity and writes its result
// if the version is unchanged.  A lost swap re-reads and decides again,
// so a retry sees the winner's state and may fail its precondition.
func mutate[T any](ctx context.Context, l *Lifecycle, entity string, store versioned[T], id uint64,
	decide func(cur T, now time.Time) (T, error)) (T, error) {
	var zero T
	for attempt := 1; attempt <= l.maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return zero, err
		}
		cur, version, err := store.Get(ctx, id)
		if err != nil {
			return zero, err
		}
		next, err := decide(cur, l.clock.Now())
		if err != nil {
			return zero, err
		}
		ok, _, err := store.CompareAndSwap(ctx, id, version, next)
		if err != nil {
			return zero, err
		}
		if ok {
			return next, nil
		}
		l.metrics.CASConflict(entity)
		l.log(ctx).Debug("compare-and-swap lost",
			zap.String("entity", entity), zap.Uint64("id", id), zap.Int("attempt", attempt))
	}
	return zero, fmt.Errorf("%s %d after %d attempts: %w", entity, id, l.maxAttempts, ErrConcurrentModification)
}

func (l *Lifecycle) mutateSeller(ctx context.Context, id uint64, decide func(model.Seller, time.Time) (model.Seller, error)) (model.Seller, error) {
	return mutate[model.Seller](ctx, l, "seller", l.sellers, id, decide)
}

func (l *Lifecycle) mutateProduct(ctx context.Context, id uint64, decide func(model.Product, time.Time) (model.Product, error)) (model.Product, error) {
	return mutate[model.Product](ctx, l, "product", l.products, id, decide)
}

func (l *Lifecycle) log(ctx context.Context) *zap.Logger {
	return logger.FromContext(ctx, l.logger)
}

// record counts the outcome of op and logs failures that are not plain
// caller mistakes.
func (l *Lifecycle) record(ctx context.Context, op string, err error) {
	outcome := outcomeOf(err)
	l.metrics.Transition(op, outcome)
	switch outcome {
	case "ok", "invalid_transition", "validation", "not_found", "forbidden":
	default:
		l.log(ctx).Warn("lifecycle operation failed", zap.String("op", op), zap.Error(err))
	}
}

func outcomeOf(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, trust.ErrInvalidTransition):
		return "invalid_transition"
	case errors.Is(err, trust.ErrValidation):
		return "validation"
	case errors.Is(err, repository.ErrNotFound):
		return "not_found"
	case errors.Is(err, repository.ErrForbidden):
		return "forbidden"
	case errors.Is(err, ErrConcurrentModification):
		return "conflict"
	case errors.Is(err, ErrCascadePartialFailure):
		return "cascade_partial"
	default:
		return "error"
	}
}
