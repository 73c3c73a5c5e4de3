// Package inbound processes webhook event batches: it acknowledges fast,
// queues each event, and runs one pipeline per event on a worker pool.
package inbound

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"

	"github.com/memohai/imgkeeper/internal/channel"
	"github.com/memohai/imgkeeper/internal/dedup"
	"github.com/memohai/imgkeeper/internal/media"
	"github.com/memohai/imgkeeper/internal/metrics"
)

const (
	defaultWorkers   = 4
	defaultQueueSize = 256
)

// ErrDispatcherClosed is returned by Shutdown when called twice.
var ErrDispatcherClosed = errors.New("dispatcher closed")

// ImageSaver persists one image message.
type ImageSaver interface {
	Save(ctx context.Context, messageID string, source channel.Source) (media.SavedImage, error)
}

// Notifier delivers best-effort outbound messages.
type Notifier interface {
	AdminConfigured() bool
	Reply(ctx context.Context, source channel.Source, replyToken, text string) bool
	NotifyAdmin(ctx context.Context, text string) bool
}

// Policy holds the notification switches.
type Policy struct {
	// ReplyOnPrivate acknowledges private-chat images, follows and commands.
	ReplyOnPrivate bool
	// NotifyAdminAlways pushes to the admin for private-chat images too.
	NotifyAdminAlways bool
	// NotifyAdminOnError pushes pipeline failures to the admin.
	NotifyAdminOnError bool
}

// Options configures a Dispatcher.
type Options struct {
	Workers   int
	QueueSize int
	Policy    Policy
}

// Dispatcher fans webhook events out to a worker pool. Events of one batch
// may run concurrently and complete in any order; the steps of a single
// event's pipeline always run in sequence.
type Dispatcher struct {
	saver    ImageSaver
	resolver media.FolderResolver
	notifier Notifier
	seen     dedup.Store
	policy   Policy
	logger   *slog.Logger

	queue     chan channel.Event
	workers   int
	startOnce sync.Once
	wg        sync.WaitGroup
	ctx       context.Context
	cancel    context.CancelFunc
	mu        sync.RWMutex
	closed    bool
}

// NewDispatcher creates a Dispatcher. A nil seen store disables dedup.
func NewDispatcher(log *slog.Logger, saver ImageSaver, resolver media.FolderResolver, notifier Notifier, seen dedup.Store, opts Options) *Dispatcher {
	if log == nil {
		log = slog.Default()
	}
	if seen == nil {
		seen = dedup.Nop{}
	}
	if opts.Workers <= 0 {
		opts.Workers = defaultWorkers
	}
	if opts.QueueSize <= 0 {
		opts.QueueSize = defaultQueueSize
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Dispatcher{
		saver:    saver,
		resolver: resolver,
		notifier: notifier,
		seen:     seen,
		policy:   opts.Policy,
		logger:   log.With(slog.String("component", "inbound")),
		queue:    make(chan channel.Event, opts.QueueSize),
		workers:  opts.Workers,
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Start launches the worker pool. Events dispatched before Start wait in the
// queue. The pool stops when ctx is cancelled or Shutdown is called.
func (d *Dispatcher) Start(ctx context.Context) {
	d.startOnce.Do(func() {
		d.logger.Info("dispatcher start", slog.Int("workers", d.workers))
		for i := 0; i < d.workers; i++ {
			d.wg.Add(1)
			go d.worker()
		}
		go func() {
			select {
			case <-ctx.Done():
				d.cancel()
			case <-d.ctx.Done():
			}
		}()
	})
}

func (d *Dispatcher) worker() {
	defer d.wg.Done()
	for {
		select {
		case <-d.ctx.Done():
			return
		case ev, ok := <-d.queue:
			if !ok {
				return
			}
			d.process(d.ctx, ev)
		}
	}
}

// Dispatch enqueues events without waiting for their pipelines and returns
// how many were accepted. Events are dropped when the queue is full or the
// dispatcher is shut down.
func (d *Dispatcher) Dispatch(events []channel.Event) int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	accepted := 0
	for _, ev := range events {
		metrics.EventsReceived.WithLabelValues(string(ev.Kind), ev.Source.Kind.String()).Inc()
		if d.closed {
			metrics.EventsDropped.WithLabelValues("shutdown").Inc()
			continue
		}
		select {
		case d.queue <- ev:
			accepted++
		default:
			metrics.EventsDropped.WithLabelValues("queue_full").Inc()
			d.logger.Warn("inbound queue full, event dropped",
				slog.String("kind", string(ev.Kind)),
				slog.String("message_id", ev.Message.ID),
			)
		}
	}
	return accepted
}

// QueueDepth returns the number of events waiting for a worker.
func (d *Dispatcher) QueueDepth() int {
	return len(d.queue)
}

func (d *Dispatcher) QueueCapacity() int {
	return cap(d.queue)
}

// Shutdown stops accepting events and waits for queued pipelines to finish
// until ctx expires, then cancels the rest.
func (d *Dispatcher) Shutdown(ctx context.Context) error {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return ErrDispatcherClosed
	}
	d.closed = true
	close(d.queue)
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()
	var err error
	select {
	case <-done:
	case <-ctx.Done():
		err = ctx.Err()
	}
	d.cancel()
	d.logger.Info("dispatcher stop")
	return err
}

// process runs one event with isolated failure capture: errors and panics
// are logged and reported, never propagated to other events.
func (d *Dispatcher) process(ctx context.Context, ev channel.Event) {
	if err := d.safeHandle(ctx, ev); err != nil {
		metrics.EventFailures.WithLabelValues(string(ev.Kind)).Inc()
		d.logger.Error("event processing failed",
			slog.String("kind", string(ev.Kind)),
			slog.String("source", ev.Source.Kind.String()),
			slog.String("source_id", ev.Source.ID()),
			slog.String("message_id", ev.Message.ID),
			slog.Any("error", err),
		)
		if d.policy.NotifyAdminOnError && d.notifier != nil && d.notifier.AdminConfigured() {
			d.notifier.NotifyAdmin(ctx, failureText(ev, err))
		}
	}
}

func (d *Dispatcher) safeHandle(ctx context.Context, ev channel.Event) (err error) {
	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("event pipeline panic", slog.Any("panic", r), slog.String("stack", string(debug.Stack())))
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return d.Handle(ctx, ev)
}
