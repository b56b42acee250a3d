package core

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// MetadataKeyOutboxAttempts carries the delivery attempt count on a claimed
// event so the dispatcher can decide between rescheduling and dead-lettering.
const MetadataKeyOutboxAttempts = "_outbox_attempts"

type OutboxDispatcherConfig struct {
	BatchSize      int
	MaxAttempts    int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
}

func DefaultOutboxDispatcherConfig() OutboxDispatcherConfig {
	return OutboxDispatcherConfig{
		BatchSize:      50,
		MaxAttempts:    5,
		InitialBackoff: 2 * time.Second,
		MaxBackoff:     5 * time.Minute,
	}
}

// OutboxDispatcher drains claimed lifecycle events into the registered
// projectors. Delivery is at-least-once; projectors must tolerate replays.
type OutboxDispatcher struct {
	store    OutboxStore
	registry ProjectorRegistry
	config   OutboxDispatcherConfig
	now      func() time.Time
}

func NewOutboxDispatcher(
	store OutboxStore,
	registry ProjectorRegistry,
	config OutboxDispatcherConfig,
) (*OutboxDispatcher, error) {
	if store == nil {
		return nil, fmt.Errorf("core: outbox store is required")
	}
	defaults := DefaultOutboxDispatcherConfig()
	if config.BatchSize <= 0 {
		config.BatchSize = defaults.BatchSize
	}
	if config.MaxAttempts <= 0 {
		config.MaxAttempts = defaults.MaxAttempts
	}
	if config.InitialBackoff <= 0 {
		config.InitialBackoff = defaults.InitialBackoff
	}
	if config.MaxBackoff <= 0 {
		config.MaxBackoff = defaults.MaxBackoff
	}
	return &OutboxDispatcher{
		store:    store,
		registry: registry,
		config:   config,
		now:      func() time.Time { return time.Now().UTC() },
	}, nil
}

// DispatchPending claims up to batchSize events and pushes each through every
// registered projector. A failing event is rescheduled with backoff until its
// attempts run out, then parked as failed; other events in the batch still
// get delivered.
func (d *OutboxDispatcher) DispatchPending(ctx context.Context, batchSize int) (DispatchStats, error) {
	if d == nil || d.store == nil {
		return DispatchStats{}, fmt.Errorf("core: outbox dispatcher is not configured")
	}
	limit := batchSize
	if limit <= 0 {
		limit = d.config.BatchSize
	}
	events, err := d.store.ClaimBatch(ctx, limit)
	if err != nil {
		return DispatchStats{}, err
	}

	stats := DispatchStats{Claimed: len(events)}
	var failures []error
	for _, event := range events {
		deliverErr := d.deliver(ctx, event)
		if deliverErr == nil {
			if ackErr := d.store.Ack(ctx, strings.TrimSpace(event.ID)); ackErr != nil {
				failures = append(failures, ackErr)
				continue
			}
			stats.Delivered++
			continue
		}
		failures = append(failures, deliverErr)

		attempted := deliveryAttempts(event) + 1
		if attempted >= d.config.MaxAttempts {
			stats.Failed++
			if retryErr := d.store.Retry(ctx, strings.TrimSpace(event.ID), deliverErr, time.Time{}); retryErr != nil {
				failures = append(failures, retryErr)
			}
			continue
		}
		stats.Retried++
		nextAttemptAt := d.now().Add(d.nextBackoffDelay(attempted))
		if retryErr := d.store.Retry(ctx, strings.TrimSpace(event.ID), deliverErr, nextAttemptAt); retryErr != nil {
			failures = append(failures, retryErr)
		}
	}

	return stats, errors.Join(failures...)
}

func (d *OutboxDispatcher) deliver(ctx context.Context, event LifecycleEvent) error {
	if d.registry == nil {
		return nil
	}
	for i, handler := range d.registry.Handlers() {
		if handler == nil {
			continue
		}
		if err := handler.Handle(ctx, event); err != nil {
			return fmt.Errorf("core: lifecycle projector %d failed for event %q: %w", i, event.ID, err)
		}
	}
	return nil
}

// nextBackoffDelay doubles the initial backoff per attempt, capped at
// MaxBackoff.
func (d *OutboxDispatcher) nextBackoffDelay(attempt int) time.Duration {
	delay := d.config.InitialBackoff
	for i := 1; i < attempt; i++ {
		delay *= 2
		if delay <= 0 || delay >= d.config.MaxBackoff {
			return d.config.MaxBackoff
		}
	}
	if delay > d.config.MaxBackoff {
		return d.config.MaxBackoff
	}
	return delay
}

func deliveryAttempts(event LifecycleEvent) int {
	raw, ok := event.Metadata[MetadataKeyOutboxAttempts]
	if !ok {
		return 0
	}
	attempts := 0
	switch typed := raw.(type) {
	case int:
		attempts = typed
	case int64:
		attempts = int(typed)
	case float64:
		attempts = int(typed)
	case string:
		parsed, err := strconv.Atoi(strings.TrimSpace(typed))
		if err != nil {
			return 0
		}
		attempts = parsed
	}
	if attempts < 0 {
		return 0
	}
	return attempts
}

var _ LifecycleDispatcher = (*OutboxDispatcher)(nil)
