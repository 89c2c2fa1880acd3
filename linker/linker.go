// Package linker keeps a two-way mapping between entity ids, which are valid
// on both ends of a connection, and local handles (rendering objects on a
// client, peers or simulation objects on a host).
package linker

import (
	"sync"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/nathoo/moduel/types"
)

// Linker maps ids to handles of type H and back. The first mapping for an id
// or a handle wins; later conflicting links are logged and ignored.
// Safe for concurrent use.
type Linker[H comparable] struct {
	mu       sync.RWMutex
	byID     map[types.EntityID]H
	byHandle map[H]types.EntityID
	log      zerolog.Logger
}

// New creates an empty linker. name tags its log lines.
func New[H comparable](name string) *Linker[H] {
	return NewWithLogger[H](name, log.Logger)
}

// NewWithLogger creates an empty linker that logs to l.
func NewWithLogger[H comparable](name string, l zerolog.Logger) *Linker[H] {
	return &Linker[H]{
		byID:     map[types.EntityID]H{},
		byHandle: map[H]types.EntityID{},
		log:      l.With().Str("component", "linker").Str("linker", name).Logger(),
	}
}

// Link records id <-> handle. It returns false, leaving the existing
// mapping intact, if either side is already linked.
func (l *Linker[H]) Link(id types.EntityID, handle H) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.byID[id]; ok {
		l.log.Warn().Uint32("id", uint32(id)).Msg("id already linked, ignoring")
		return false
	}
	if prev, ok := l.byHandle[handle]; ok {
		l.log.Warn().
			Uint32("id", uint32(id)).
			Uint32("linked_to", uint32(prev)).
			Msg("handle already linked, ignoring")
		return false
	}
	l.byID[id] = handle
	l.byHandle[handle] = id
	return true
}

// Handle returns the handle linked to id.
func (l *Linker[H]) Handle(id types.EntityID) (H, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	h, ok := l.byID[id]
	return h, ok
}

// ID returns the id linked to handle.
func (l *Linker[H]) ID(handle H) (types.EntityID, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	id, ok := l.byHandle[handle]
	return id, ok
}

// UnlinkID removes the mapping for id in both directions.
func (l *Linker[H]) UnlinkID(id types.EntityID) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	h, ok := l.byID[id]
	if !ok {
		return false
	}
	delete(l.byID, id)
	delete(l.byHandle, h)
	return true
}

// UnlinkHandle removes the mapping for handle in both directions.
func (l *Linker[H]) UnlinkHandle(handle H) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	id, ok := l.byHandle[handle]
	if !ok {
		return false
	}
	delete(l.byHandle, handle)
	delete(l.byID, id)
	return true
}

// Len returns the number of links.
func (l *Linker[H]) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.byID)
}

// Each calls fn for every link. fn must not call back into the linker.
func (l *Linker[H]) Each(fn func(id types.EntityID, handle H)) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	for id, h := range l.byID {
		fn(id, h)
	}
}
