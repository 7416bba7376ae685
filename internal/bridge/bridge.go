// Package bridge dispatches named method calls onto a bounded worker pool,
// the server-side half of a platform method channel.
package bridge

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/memohai/contactbridge/internal/logger"
)

var (
	// ErrNotImplemented reports a method no handler is registered for.
	ErrNotImplemented = errors.New("method not implemented")
	// ErrBusy reports a full task queue. Callers may retry later.
	ErrBusy = errors.New("bridge queue is full")
	// ErrClosed reports an invoke after Close.
	ErrClosed = errors.New("bridge is closed")
)

// HandlerFunc serves one method call. Args is the decoded argument map,
// possibly nil. The returned value must be JSON-serializable.
type HandlerFunc func(ctx context.Context, args map[string]any) (any, error)

const (
	DefaultWorkers   = 10
	DefaultQueueSize = 1000
)

// Config bounds the dispatcher's concurrency. Zero values take the
// defaults; a zero RequestTimeout disables per-call deadlines.
type Config struct {
	Workers        int
	QueueSize      int
	RequestTimeout time.Duration
}

func (c Config) withDefaults() Config {
	if c.Workers <= 0 {
		c.Workers = DefaultWorkers
	}
	if c.QueueSize <= 0 {
		c.QueueSize = DefaultQueueSize
	}
	return c
}

type task struct {
	id     string
	ctx    context.Context
	method string
	args   map[string]any
	done   chan result
}

type result struct {
	value any
	err   error
}

// Dispatcher routes method calls to registered handlers through a fixed
// worker pool with a bounded queue. Register all handlers before serving;
// Handle is not safe to call concurrently with Invoke.
type Dispatcher struct {
	cfg      Config
	handlers map[string]HandlerFunc
	tasks    chan task

	mu        sync.RWMutex
	closeOnce sync.Once
	closed    bool
	wg        sync.WaitGroup
}

func New(cfg Config) *Dispatcher {
	cfg = cfg.withDefaults()
	d := &Dispatcher{
		cfg:      cfg,
		handlers: make(map[string]HandlerFunc),
		tasks:    make(chan task, cfg.QueueSize),
	}
	d.wg.Add(cfg.Workers)
	for i := 0; i < cfg.Workers; i++ {
		go d.worker()
	}
	return d
}

// Handle registers fn for method, replacing any previous handler.
func (d *Dispatcher) Handle(method string, fn HandlerFunc) {
	d.handlers[method] = fn
}

// Methods returns the registered method names.
func (d *Dispatcher) Methods() []string {
	names := make([]string, 0, len(d.handlers))
	for name := range d.handlers {
		names = append(names, name)
	}
	return names
}

// Invoke queues the call and blocks until its handler returns, the queue
// rejects it, or ctx is done. Unknown methods fail fast with
// ErrNotImplemented without consuming a queue slot.
func (d *Dispatcher) Invoke(ctx context.Context, method string, args map[string]any) (any, error) {
	if _, ok := d.handlers[method]; !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotImplemented, method)
	}

	t := task{
		id:     uuid.NewString(),
		ctx:    ctx,
		method: method,
		args:   args,
		done:   make(chan result, 1),
	}
	if err := d.enqueue(t); err != nil {
		return nil, err
	}

	select {
	case r := <-t.done:
		return r.value, r.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (d *Dispatcher) enqueue(t task) error {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return ErrClosed
	}
	select {
	case d.tasks <- t:
		return nil
	default:
		return ErrBusy
	}
}

// Close stops accepting work and waits for queued tasks to drain.
func (d *Dispatcher) Close() {
	d.closeOnce.Do(func() {
		d.mu.Lock()
		d.closed = true
		close(d.tasks)
		d.mu.Unlock()
	})
	d.wg.Wait()
}

func (d *Dispatcher) worker() {
	defer d.wg.Done()
	for t := range d.tasks {
		t.done <- d.run(t)
	}
}

func (d *Dispatcher) run(t task) (r result) {
	ctx := t.ctx
	if d.cfg.RequestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.cfg.RequestTimeout)
		defer cancel()
	}
	log := logger.FromContext(ctx).With(
		slog.String("task", t.id), slog.String("method", t.method))
	ctx = logger.WithContext(ctx, log)

	defer func() {
		if p := recover(); p != nil {
			log.Error("handler panicked", slog.Any("panic", p))
			r = result{err: fmt.Errorf("method %s panicked: %v", t.method, p)}
		}
	}()

	start := time.Now()
	value, err := d.handlers[t.method](ctx, t.args)
	if err != nil {
		log.Warn("method failed",
			slog.Duration("elapsed", time.Since(start)), slog.Any("error", err))
		return result{err: err}
	}
	log.Debug("method served", slog.Duration("elapsed", time.Since(start)))
	return result{value: value}
}
