// Package registry assigns unique ids to simulation entities and resolves
// them back in O(1). A Registry is scoped to one duel; ids are never reused.
package registry

import (
	"sync"

	"github.com/nathoo/moduel/types"
)

// Entity is anything the registry can index. Implementations embed Indexed.
type Entity interface {
	ID() types.EntityID
	assign(id types.EntityID)
}

// Indexed carries the id assigned at registration. Embed it in entity structs.
type Indexed struct {
	id types.EntityID
}

// ID returns the registry id, or 0 if the entity was never registered.
func (x *Indexed) ID() types.EntityID { return x.id }

func (x *Indexed) assign(id types.EntityID) { x.id = id }

// Registry maps ids to entities. Safe for concurrent use.
type Registry struct {
	mu      sync.RWMutex
	next    types.EntityID
	entries map[types.EntityID]Entity
}

// New creates an empty registry. The first id handed out is 1.
func New() *Registry {
	return &Registry{
		next:    1,
		entries: map[types.EntityID]Entity{},
	}
}

// Register assigns the next id to e and records it. Registering the same
// entity twice returns its existing id.
func (r *Registry) Register(e Entity) types.EntityID {
	r.mu.Lock()
	defer r.mu.Unlock()
	if id := e.ID(); id != 0 {
		if cur, ok := r.entries[id]; ok && cur == e {
			return id
		}
	}
	id := r.next
	r.next++
	e.assign(id)
	r.entries[id] = e
	return id
}

// Lookup returns the entity registered under id.
func (r *Registry) Lookup(id types.EntityID) (Entity, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[id]
	return e, ok
}

// Len returns the number of registered entities.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}
