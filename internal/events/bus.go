package events

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/vrlink/extension/internal/gateway"
)

// MaxDrainPerFrame bounds how many native events one frame may drain. The
// bound keeps an event storm from stalling the frame cadence; events beyond
// it stay queued in the runtime and are drained on subsequent frames, never
// dropped.
const MaxDrainPerFrame = 64

// HandlerFunc consumes one published event.
type HandlerFunc func(Event)

// Logger interface for pluggable logging.
type Logger interface {
	Debug(msg string, keysAndValues ...any)
	Info(msg string, keysAndValues ...any)
	Error(msg string, keysAndValues ...any)
}

// Option configures a subscription.
type Option func(*config)

type config struct {
	bufferSize int
	blocking   bool
	logged     bool
}

// Buffered makes the subscription async with a queue of the given size.
func Buffered(size int) Option {
	return func(c *config) {
		c.bufferSize = size
	}
}

// Blocking makes a buffered subscription block when its queue is full
// instead of dropping.
func Blocking() Option {
	return func(c *config) {
		c.blocking = true
	}
}

// Logged adds debug logging around the subscription.
func Logged() Option {
	return func(c *config) {
		c.logged = true
	}
}

// Poller is the slice of the gateway the bus drains from.
type Poller interface {
	PollEvents(max int) ([]gateway.Event, error)
}

// Bus routes structured runtime events to subscribers.
type Bus struct {
	logger Logger

	subs map[Kind][]HandlerFunc

	published metric.Int64Counter
	dropped   metric.Int64Counter
	queueSize metric.Int64ObservableGauge

	mu      sync.RWMutex
	buffers []chan Event
}

// NewBus creates a Bus reporting through the global OTel meter (no-op if
// none is configured).
func NewBus(logger Logger) (*Bus, error) {
	b := &Bus{
		logger: logger,
		subs:   make(map[Kind][]HandlerFunc),
	}

	m := meter()

	var err error

	b.queueSize, err = m.Int64ObservableGauge(
		"events.queue.size",
		metric.WithDescription("Current number of events in subscriber queues"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating queue size gauge: %w", err)
	}

	_, err = m.RegisterCallback(
		func(ctx context.Context, o metric.Observer) error {
			b.mu.RLock()
			defer b.mu.RUnlock()
			var total int64
			for _, buf := range b.buffers {
				total += int64(len(buf))
			}
			o.ObserveInt64(b.queueSize, total)
			return nil
		},
		b.queueSize,
	)
	if err != nil {
		return nil, fmt.Errorf("registering queue callback: %w", err)
	}

	b.published, err = m.Int64Counter(
		"events.published",
		metric.WithDescription("Total events published"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating published counter: %w", err)
	}

	b.dropped, err = m.Int64Counter(
		"events.dropped",
		metric.WithDescription("Total events dropped due to full subscriber queue"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating dropped counter: %w", err)
	}

	return b, nil
}

// Subscribe registers a handler for the given kind with optional
// configuration. Subscriptions are not removable; the bus lives for the
// session.
func (b *Bus) Subscribe(kind Kind, h HandlerFunc, opts ...Option) {
	cfg := &config{}
	for _, opt := range opts {
		opt(cfg)
	}

	handler := h

	if cfg.bufferSize > 0 {
		handler = b.withBuffer(kind, cfg.bufferSize, cfg.blocking, handler)
	}

	if cfg.logged {
		handler = b.withLogging(kind, handler)
	}

	b.subs[kind] = append(b.subs[kind], handler)
}

// Publish delivers an event to every subscriber of its kind.
func (b *Bus) Publish(e Event) {
	attrs := metric.WithAttributes(attribute.String("kind", e.Kind.String()))
	b.published.Add(context.Background(), 1, attrs)
	for _, h := range b.subs[e.Kind] {
		h(e)
	}
}

// Drain pulls up to MaxDrainPerFrame native events and republishes them as
// structured events. Returns the number drained.
func (b *Bus) Drain(p Poller, now time.Time) int {
	polled, err := p.PollEvents(MaxDrainPerFrame)
	if err != nil {
		b.logger.Error("event poll failed", "error", err)
		return 0
	}
	for _, nev := range polled {
		b.Publish(Event{
			Kind:        kindOf(nev.Code),
			Code:        nev.Code,
			DeviceIndex: nev.DeviceIndex,
			Timestamp:   now,
		})
	}
	return len(polled)
}

func (b *Bus) withBuffer(kind Kind, size int, blocking bool, h HandlerFunc) HandlerFunc {
	buffer := make(chan Event, size)

	b.mu.Lock()
	b.buffers = append(b.buffers, buffer)
	b.mu.Unlock()

	kindAttr := attribute.String("kind", kind.String())

	go func() {
		for e := range buffer {
			h(e)
		}
	}()

	if blocking {
		return func(e Event) {
			buffer <- e
		}
	}

	return func(e Event) {
		select {
		case buffer <- e:
		default:
			b.dropped.Add(context.Background(), 1, metric.WithAttributes(kindAttr))
		}
	}
}

func (b *Bus) withLogging(kind Kind, h HandlerFunc) HandlerFunc {
	return func(e Event) {
		start := time.Now()
		b.logger.Debug("handling event", "kind", kind.String(), "code", e.Code)
		h(e)
		b.logger.Debug("event handled", "kind", kind.String(), "duration", time.Since(start))
	}
}
