package queue

import (
	"errors"
	"sync"

	"github.com/sirupsen/logrus"

	"sateihub/server/internal/models"
)

var (
	ErrQueueFull   = errors.New("queue is full")
	ErrQueueClosed = errors.New("queue is closed")
)

// SnapshotQueue is an in-memory queue of valuation snapshot batches.
// Producers never block: a full queue rejects the batch, and callers
// treat that as a logged, non-fatal event.
type SnapshotQueue struct {
	items    chan []*models.ValuationRecord
	done     chan struct{}
	closed   bool
	mu       sync.RWMutex
	logger   *logrus.Logger
	handlers []func([]*models.ValuationRecord) error
}

func NewSnapshotQueue(bufferSize int, logger *logrus.Logger) *SnapshotQueue {
	if logger == nil {
		logger = logrus.New()
	}
	return &SnapshotQueue{
		items:  make(chan []*models.ValuationRecord, bufferSize),
		done:   make(chan struct{}),
		logger: logger,
	}
}

// Push enqueues a batch without blocking.
func (q *SnapshotQueue) Push(records []*models.ValuationRecord) error {
	q.mu.RLock()
	if q.closed {
		q.mu.RUnlock()
		return ErrQueueClosed
	}
	q.mu.RUnlock()

	select {
	case q.items <- records:
		q.logger.WithField("batch_size", len(records)).Debug("pushed snapshot batch to queue")
		return nil
	default:
		return ErrQueueFull
	}
}

// Subscribe registers a handler invoked for every drained batch.
func (q *SnapshotQueue) Subscribe(handler func([]*models.ValuationRecord) error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.handlers = append(q.handlers, handler)
}

// Start launches the drain loop.
func (q *SnapshotQueue) Start() {
	go q.process()
}

func (q *SnapshotQueue) process() {
	for {
		select {
		case <-q.done:
			return
		case batch := <-q.items:
			q.dispatch(batch)
		}
	}
}

func (q *SnapshotQueue) dispatch(batch []*models.ValuationRecord) {
	q.mu.RLock()
	handlers := q.handlers
	q.mu.RUnlock()

	for _, handler := range handlers {
		if err := handler(batch); err != nil {
			q.logger.WithError(err).Error("snapshot batch handler failed")
		}
	}
}

// Close stops the queue and rejects further pushes.
func (q *SnapshotQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return nil
	}

	q.closed = true
	close(q.done)
	close(q.items)
	return nil
}

// Len returns the number of buffered batches.
func (q *SnapshotQueue) Len() int {
	return len(q.items)
}

func (q *SnapshotQueue) IsClosed() bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.closed
}
