// Package events delivers state-change messages to observers.
// Delivery is synchronous and single pass: every subscriber sees messages in
// the exact order they were published, and handlers must not publish.
package events

import (
	"sync"

	"github.com/nathoo/moduel/types"
)

// Filter decides whether a subscriber receives a message.
type Filter func(types.Message) bool

// Handler consumes a delivered message.
type Handler func(types.Message)

type subscription struct {
	id      int
	filter  Filter
	handler Handler
}

// Bus is an ordered observer list.
type Bus struct {
	mu   sync.Mutex
	subs []subscription
	next int
}

// NewBus creates a bus with no subscribers.
func NewBus() *Bus {
	return &Bus{}
}

// Subscribe registers h for messages accepted by filter (nil accepts all).
// Subscribers are called in subscription order. The returned func removes
// the subscription.
func (b *Bus) Subscribe(filter Filter, h Handler) func() {
	if filter == nil {
		filter = All
	}
	b.mu.Lock()
	b.next++
	id := b.next
	b.subs = append(b.subs, subscription{id: id, filter: filter, handler: h})
	b.mu.Unlock()

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		for i, s := range b.subs {
			if s.id == id {
				b.subs = append(b.subs[:i:i], b.subs[i+1:]...)
				return
			}
		}
	}
}

// Publish delivers msgs in order. Each message reaches every matching
// subscriber before the next message is delivered.
func (b *Bus) Publish(msgs ...types.Message) {
	b.mu.Lock()
	subs := make([]subscription, len(b.subs))
	copy(subs, b.subs)
	b.mu.Unlock()

	for _, m := range msgs {
		for _, s := range subs {
			if s.filter(m) {
				s.handler(m)
			}
		}
	}
}

// Len returns the number of subscribers.
func (b *Bus) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}

// All accepts every message.
func All(types.Message) bool { return true }

// Delivers reports whether m is meant for the player with id: broadcasts
// and messages targeted at that player.
func Delivers(m types.Message, id types.EntityID) bool {
	return m.Target == types.Broadcast || m.Target == id
}

// ForPlayer returns a Filter that accepts what Delivers accepts for id.
func ForPlayer(id types.EntityID) Filter {
	return func(m types.Message) bool {
		return Delivers(m, id)
	}
}
