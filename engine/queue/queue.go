// Package queue is the FIFO that funnels commands from every producer
// (human input, automated players, network peers) to the single goroutine
// that owns the duel state.
package queue

import (
	"context"
	"errors"
	"sync"

	"github.com/nathoo/moduel/types"
)

// ErrClosed is returned by Pop once the queue is closed and drained.
var ErrClosed = errors.New("queue closed")

// Queue is a thread-safe unbounded FIFO of commands.
type Queue struct {
	mu     sync.Mutex
	items  []types.Command
	closed bool
	wake   chan struct{}
}

// New creates an empty queue.
func New() *Queue {
	return &Queue{wake: make(chan struct{}, 1)}
}

// Push appends cmd. Pushing to a closed queue is a no-op and returns false.
func (q *Queue) Push(cmd types.Command) bool {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return false
	}
	q.items = append(q.items, cmd)
	q.mu.Unlock()
	q.signal()
	return true
}

// Pop removes and returns the oldest command, blocking until one is
// available, the queue is closed and empty, or ctx is done.
func (q *Queue) Pop(ctx context.Context) (types.Command, error) {
	for {
		q.mu.Lock()
		if len(q.items) > 0 {
			cmd := q.items[0]
			q.items[0] = types.Command{}
			q.items = q.items[1:]
			q.mu.Unlock()
			return cmd, nil
		}
		if q.closed {
			q.mu.Unlock()
			return types.Command{}, ErrClosed
		}
		q.mu.Unlock()

		select {
		case <-ctx.Done():
			return types.Command{}, ctx.Err()
		case <-q.wake:
		}
	}
}

// Close stops accepting commands. Already queued commands can still be popped.
func (q *Queue) Close() {
	q.mu.Lock()
	q.closed = true
	q.mu.Unlock()
	q.signal()
}

// Len returns the number of queued commands.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

func (q *Queue) signal() {
	select {
	case q.wake <- struct{}{}:
	default:
	}
}
