// Package offline defers state mutations attempted without connectivity and
// replays them, in order, once connectivity returns.
package offline

import (
	"log"
	"sync"
)

// Action is one deferred zero-argument mutation.
type Action func()

// Queue buffers actions while offline. Flush captures and clears the buffer
// before executing anything, so an action that re-enqueues during the flush
// lands in the next batch and nothing ever runs twice.
type Queue struct {
	mu        sync.Mutex
	online    bool
	actions   []Action
	onPending func(count int)
}

// NewQueue returns a queue that starts online. onPending, if non-nil, is
// invoked with the pending count after every enqueue and every flush capture.
func NewQueue(onPending func(count int)) *Queue {
	return &Queue{online: true, onPending: onPending}
}

// Perform runs the action now when online or immediate, otherwise defers it.
func (q *Queue) Perform(action Action, immediate bool) {
	q.mu.Lock()
	if !q.online && !immediate {
		q.actions = append(q.actions, action)
		count := len(q.actions)
		notify := q.onPending
		q.mu.Unlock()

		if notify != nil {
			notify(count)
		}
		return
	}
	q.mu.Unlock()

	action()
}

// Online reports the connectivity flag.
func (q *Queue) Online() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.online
}

// Pending reports the number of deferred actions.
func (q *Queue) Pending() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.actions)
}

// SetConnectivity updates the flag. Coming back online flushes the queue;
// going offline has no side effect beyond the flag.
func (q *Queue) SetConnectivity(online bool) {
	q.mu.Lock()
	wasOnline := q.online
	q.online = online
	q.mu.Unlock()

	if online && !wasOnline {
		q.Flush()
	}
}

// Flush executes the currently queued actions in enqueue order. The queue is
// cleared before any action runs; a panicking action is logged and the rest
// still execute.
func (q *Queue) Flush() {
	q.mu.Lock()
	captured := q.actions
	q.actions = nil
	notify := q.onPending
	q.mu.Unlock()

	if notify != nil {
		notify(0)
	}

	for _, action := range captured {
		runIsolated(action)
	}
}

func runIsolated(action Action) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("offline: queued action failed: %v", r)
		}
	}()
	action()
}
