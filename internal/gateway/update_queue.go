package gateway

import (
	"sync"

	"github.com/rxtech-lab/argo-grid/internal/types"
)

// UpdateQueue buffers order updates produced on venue goroutines until the
// engine goroutine drains them. Notify fires at most once per batch.
type UpdateQueue struct {
	mu      sync.Mutex
	pending []types.OrderUpdate
	notify  chan struct{}
}

// NewUpdateQueue returns an empty queue.
func NewUpdateQueue() *UpdateQueue {
	return &UpdateQueue{
		mu:      sync.Mutex{},
		pending: nil,
		notify:  make(chan struct{}, 1),
	}
}

// Push appends an update and wakes the consumer.
func (q *UpdateQueue) Push(update types.OrderUpdate) {
	q.mu.Lock()
	q.pending = append(q.pending, update)
	q.mu.Unlock()

	select {
	case q.notify <- struct{}{}:
	default:
	}
}

// Notify returns a channel that receives after one or more Push calls.
func (q *UpdateQueue) Notify() <-chan struct{} {
	return q.notify
}

// Drain returns every pending update in push order and empties the queue.
func (q *UpdateQueue) Drain() []types.OrderUpdate {
	q.mu.Lock()
	defer q.mu.Unlock()

	updates := q.pending
	q.pending = nil

	return updates
}
