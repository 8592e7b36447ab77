// Package notify delivers notifications: a bounded worker pool persists each
// one and hands it to a publisher (the in-process hub, or Redis pub/sub when
// several instances serve the same users).
package notify

import (
	"context"
	"sync"
	"time"

	"github.com/Chandrasura25/Social-media-backend-case-study/models"
	"github.com/Chandrasura25/Social-media-backend-case-study/utils"
)

// Store persists notifications before they are published.
type Store interface {
	Create(ctx context.Context, n *models.Notification) error
}

// Publisher pushes a stored notification to connected clients.
type Publisher interface {
	Publish(ctx context.Context, n models.Notification) error
}

// Dispatcher runs delivery off the request path. It is at-most-once: a full
// queue drops the notification, and store or publish failures are logged and
// discarded.
type Dispatcher struct {
	store     Store
	publisher Publisher
	queue     chan models.Notification
	timeout   time.Duration

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

// NewDispatcher starts workers goroutines reading from a queue of queueSize.
// store or publisher may be nil.
func NewDispatcher(store Store, publisher Publisher, workers, queueSize int) *Dispatcher {
	if workers <= 0 {
		workers = 1
	}
	if queueSize <= 0 {
		queueSize = 1
	}
	d := &Dispatcher{
		store:     store,
		publisher: publisher,
		queue:     make(chan models.Notification, queueSize),
		timeout:   5 * time.Second,
	}
	d.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go d.work()
	}
	return d
}

// Publish enqueues n without blocking.
func (d *Dispatcher) Publish(n models.Notification) {
	if n.RecipientID == 0 || !n.Type.Valid() {
		utils.Sugar.Warnw("dropping malformed notification", "recipient", n.RecipientID, "type", n.Type)
		return
	}
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return
	}
	select {
	case d.queue <- n:
	default:
		utils.Sugar.Warnw("notification queue full, dropping", "recipient", n.RecipientID, "type", n.Type)
	}
}

// Close stops accepting notifications and waits for queued ones to finish.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	close(d.queue)
	d.mu.Unlock()
	d.wg.Wait()
}

func (d *Dispatcher) work() {
	defer d.wg.Done()
	for n := range d.queue {
		d.deliver(n)
	}
}

func (d *Dispatcher) deliver(n models.Notification) {
	defer func() {
		if r := recover(); r != nil {
			utils.Sugar.Errorw("notification delivery panicked", "recipient", n.RecipientID, "panic", r)
		}
	}()
	ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
	defer cancel()

	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now()
	}
	if d.store != nil {
		if err := d.store.Create(ctx, &n); err != nil {
			utils.Sugar.Warnw("persist notification failed", "recipient", n.RecipientID, "type", n.Type, "error", err)
		}
	}
	if d.publisher != nil {
		if err := d.publisher.Publish(ctx, n); err != nil {
			utils.Sugar.Warnw("publish notification failed", "recipient", n.RecipientID, "type", n.Type, "error", err)
		}
	}
}
