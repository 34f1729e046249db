package dispatcher

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/c4timer/extension/pkg/host"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const instrumentationName = "github.com/c4timer/extension/internal/dispatcher"

// Event is a signal delivered by the game server.
type Event struct {
	Name      string
	Payload   any
	Timestamp time.Time
}

// HandlerFunc processes an event. Returning host.Stop halts propagation.
type HandlerFunc func(Event) (host.HookResult, error)

// Logger interface for pluggable logging.
type Logger interface {
	Debug(msg string, keysAndValues ...any)
	Info(msg string, keysAndValues ...any)
	Error(msg string, keysAndValues ...any)
}

// ListenerID identifies one registration, for Remove.
type ListenerID uint64

type listener struct {
	id ListenerID
	fn HandlerFunc
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Info(string, ...any)  {}
func (nopLogger) Error(string, ...any) {}

// Option configures handler registration.
type Option func(*config)

type config struct {
	logged bool
}

// Logged adds debug logging to the handler.
func Logged() Option {
	return func(c *config) {
		c.logged = true
	}
}

// Dispatcher routes events to registered listeners. Listeners for the same
// event run in registration order on the caller's goroutine.
type Dispatcher struct {
	mu       sync.RWMutex
	handlers map[string][]listener
	nextID   ListenerID
	logger   Logger

	// OTEL metrics
	listeners metric.Int64ObservableGauge
	processed metric.Int64Counter
	failed    metric.Int64Counter
}

// New creates a new Dispatcher with the given logger; nil discards logs.
// Uses the global OTel meter for metrics (no-op if not configured).
func New(logger Logger) (*Dispatcher, error) {
	if logger == nil {
		logger = nopLogger{}
	}
	d := &Dispatcher{
		handlers: make(map[string][]listener),
		logger:   logger,
	}

	m := otel.Meter(instrumentationName)

	var err error

	d.listeners, err = m.Int64ObservableGauge(
		"dispatcher.listeners",
		metric.WithDescription("Number of listeners registered per event"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating listeners gauge: %w", err)
	}

	_, err = m.RegisterCallback(
		func(ctx context.Context, o metric.Observer) error {
			d.mu.RLock()
			defer d.mu.RUnlock()
			for name, hs := range d.handlers {
				o.ObserveInt64(d.listeners, int64(len(hs)),
					metric.WithAttributes(attribute.String("event", name)))
			}
			return nil
		},
		d.listeners,
	)
	if err != nil {
		return nil, fmt.Errorf("registering listeners callback: %w", err)
	}

	d.processed, err = m.Int64Counter(
		"dispatcher.events.processed",
		metric.WithDescription("Total events processed"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating processed counter: %w", err)
	}

	d.failed, err = m.Int64Counter(
		"dispatcher.events.failed",
		metric.WithDescription("Total listener invocations that returned an error or panicked"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating failed counter: %w", err)
	}

	return d, nil
}

// Register appends a listener for the given event with optional configuration.
// The returned id removes exactly this listener.
func (d *Dispatcher) Register(name string, h HandlerFunc, opts ...Option) ListenerID {
	cfg := &config{}
	for _, opt := range opts {
		opt(cfg)
	}

	handler := d.withRecover(name, h)

	if cfg.logged {
		handler = d.withLogging(name, handler)
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	d.nextID++
	d.handlers[name] = append(d.handlers[name], listener{id: d.nextID, fn: handler})
	return d.nextID
}

// Remove drops the listener registered under id, leaving the other listeners
// of the event in order. It reports whether the listener was found.
func (d *Dispatcher) Remove(name string, id ListenerID) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	ls := d.handlers[name]
	for i, l := range ls {
		if l.id != id {
			continue
		}
		kept := make([]listener, 0, len(ls)-1)
		kept = append(kept, ls[:i]...)
		kept = append(kept, ls[i+1:]...)
		if len(kept) == 0 {
			delete(d.handlers, name)
		} else {
			d.handlers[name] = kept
		}
		return true
	}
	return false
}

// Dispatch runs the listeners registered for e.Name until one returns host.Stop.
// Listener errors are logged and never returned; the server loop must keep going.
func (d *Dispatcher) Dispatch(e Event) host.HookResult {
	d.mu.RLock()
	hs := d.handlers[e.Name]
	d.mu.RUnlock()

	result := host.Continue
	if len(hs) == 0 {
		return result
	}

	attrs := metric.WithAttributes(attribute.String("event", e.Name))
	for _, h := range hs {
		r, err := h.fn(e)
		if err != nil {
			d.failed.Add(context.Background(), 1, attrs)
			d.logger.Error("listener failed", "event", e.Name, "error", err)
			continue
		}
		if r > result {
			result = r
		}
		if r == host.Stop {
			break
		}
	}
	d.processed.Add(context.Background(), 1, attrs)

	return result
}

// HasHandler returns true if at least one listener is registered for the event.
func (d *Dispatcher) HasHandler(name string) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.handlers[name]) > 0
}

func (d *Dispatcher) withRecover(name string, h HandlerFunc) HandlerFunc {
	return func(e Event) (result host.HookResult, err error) {
		defer func() {
			if p := recover(); p != nil {
				result = host.Continue
				err = fmt.Errorf("listener for %s panicked: %v", name, p)
			}
		}()
		return h(e)
	}
}

func (d *Dispatcher) withLogging(name string, h HandlerFunc) HandlerFunc {
	return func(e Event) (host.HookResult, error) {
		start := time.Now()
		d.logger.Debug("handling event", "event", name)

		result, err := h(e)

		if err != nil {
			d.logger.Error("event failed", "event", name, "duration", time.Since(start), "error", err)
		} else {
			d.logger.Debug("event complete", "event", name, "duration", time.Since(start), "result", result.String())
		}

		return result, err
	}
}
