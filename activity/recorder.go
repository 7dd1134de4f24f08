// Package activity records admin actions without putting database writes on
// the request path.
package activity

import (
	"context"
	"sync"
	"time"

	"trendscope-backend/models"

	"github.com/google/uuid"
	"github.com/sethvargo/go-retry"
	"github.com/sirupsen/logrus"
)

const (
	DefaultBatchSize     = 50
	DefaultFlushInterval = 5 * time.Second
	DefaultQueueSize     = 1000

	flushTimeout = 5 * time.Second
)

// Sink persists a batch. It must be safe to call again with a batch that was
// already partly or fully written.
type Sink interface {
	Write(ctx context.Context, batch []models.ActivityLog) error
}

type Options struct {
	BatchSize     int
	FlushInterval time.Duration
	QueueSize     int
}

// Recorder owns a bounded queue drained by a single goroutine. Entries are
// written when BatchSize of them are pending or when FlushInterval elapses,
// whichever comes first. Delivery is at-least-once for accepted entries: a
// failed write keeps the batch and retries it on the next trigger. While a
// backlog of QueueSize entries is waiting, the queue stops draining and
// Record starts refusing new entries.
type Recorder struct {
	sink      Sink
	batchSize int
	interval  time.Duration
	backlog   int

	mu      sync.RWMutex
	closed  bool
	queue   chan models.ActivityLog
	closing chan struct{}
	done    chan struct{}
}

func NewRecorder(sink Sink, opts Options) *Recorder {
	if opts.BatchSize < 1 {
		opts.BatchSize = DefaultBatchSize
	}
	if opts.FlushInterval <= 0 {
		opts.FlushInterval = DefaultFlushInterval
	}
	if opts.QueueSize < 1 {
		opts.QueueSize = DefaultQueueSize
	}

	r := &Recorder{
		sink:      sink,
		batchSize: opts.BatchSize,
		interval:  opts.FlushInterval,
		backlog:   opts.QueueSize,
		queue:     make(chan models.ActivityLog, opts.QueueSize),
		closing:   make(chan struct{}),
		done:      make(chan struct{}),
	}
	go r.run()
	return r
}

// Record enqueues an entry without blocking. It reports false when the entry
// was refused because the queue is full or the recorder is closed. A nil
// Recorder refuses everything.
func (r *Recorder) Record(entry models.ActivityLog) bool {
	if r == nil {
		return false
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.closed {
		return false
	}
	select {
	case r.queue <- entry:
		return true
	default:
		logrus.WithFields(logrus.Fields{
			"action": entry.Action,
			"entity": entry.EntityType,
		}).Warn("activity queue full, entry refused")
		return false
	}
}

// Log is a shorthand for Record.
func (r *Recorder) Log(userID uuid.UUID, action, entityType, entityID, details string) bool {
	entry := models.ActivityLog{
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		Details:    details,
	}
	if userID != uuid.Nil {
		entry.UserID = &userID
	}
	return r.Record(entry)
}

// Close stops accepting entries, drains the queue and writes what is pending.
// It returns ctx.Err() if ctx ends first; the final write keeps going in the
// background in that case.
func (r *Recorder) Close(ctx context.Context) error {
	r.mu.Lock()
	if !r.closed {
		r.closed = true
		close(r.queue)
		close(r.closing)
	}
	r.mu.Unlock()

	select {
	case <-r.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (r *Recorder) run() {
	defer close(r.done)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	var pending []models.ActivityLog
	for {
		in := r.queue
		if len(pending) >= r.backlog {
			in = nil
		}

		select {
		case entry, ok := <-in:
			if !ok {
				r.shutdown(pending)
				return
			}
			pending = append(pending, entry)
			if len(pending) >= r.batchSize {
				pending = r.flush(pending)
			}
		case <-ticker.C:
			pending = r.flush(pending)
		case <-r.closing:
			r.shutdown(pending)
			return
		}
	}
}

// flush writes pending and returns what is still unwritten.
func (r *Recorder) flush(pending []models.ActivityLog) []models.ActivityLog {
	if len(pending) == 0 {
		return pending
	}
	ctx, cancel := context.WithTimeout(context.Background(), flushTimeout)
	defer cancel()

	if err := r.sink.Write(ctx, pending); err != nil {
		logrus.WithError(err).WithField("pending", len(pending)).Warn("activity flush failed, will retry")
		return pending
	}
	return pending[:0]
}

func (r *Recorder) shutdown(pending []models.ActivityLog) {
	for entry := range r.queue {
		pending = append(pending, entry)
	}
	if len(pending) == 0 {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*flushTimeout)
	defer cancel()

	backoff := retry.WithMaxRetries(2, retry.NewConstant(200*time.Millisecond))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		if err := r.sink.Write(ctx, pending); err != nil {
			return retry.RetryableError(err)
		}
		return nil
	})
	if err != nil {
		logrus.WithError(err).WithField("lost", len(pending)).Error("activity entries could not be written on shutdown")
	}
}
