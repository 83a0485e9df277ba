package registry

import (
	"sync"

	"github.com/arthur-debert/envmerge/pkg/logging"
	"github.com/arthur-debert/envmerge/pkg/merge"
	"github.com/arthur-debert/envmerge/pkg/types"
)

// ChangeFunc is called with the new merged collection after every change
type ChangeFunc func(merged *merge.Collection)

// Option configures a Registry
type Option func(*Registry)

// WithCaseInsensitive makes the merged collection fold variable names that
// differ only by case
func WithCaseInsensitive(caseInsensitive bool) Option {
	return func(r *Registry) {
		r.caseInsensitive = caseInsensitive
	}
}

// Registry maps contributor ids to their collections, in registration order.
// It is safe for concurrent use.
type Registry struct {
	mu              sync.RWMutex
	caseInsensitive bool
	order           []string
	collections     map[string]*types.Collection
	merged          *merge.Collection

	listenersMu sync.Mutex
	listeners   []listener
	nextID      int
}

type listener struct {
	id int
	fn ChangeFunc
}

// New creates an empty Registry
func New(opts ...Option) *Registry {
	r := &Registry{
		collections: make(map[string]*types.Collection),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.merged = merge.Empty(r.caseInsensitive)
	return r
}

// CaseInsensitive reports whether variable names are folded when merging
func (r *Registry) CaseInsensitive() bool {
	return r.caseInsensitive
}

// Set registers collection for contributorID, replacing any collection it
// already had. A replaced contributor keeps its registration position. The
// registry stores a copy of collection.
func (r *Registry) Set(contributorID string, collection *types.Collection) {
	if collection == nil {
		collection = types.NewCollection(false)
	}

	r.mu.Lock()
	if _, exists := r.collections[contributorID]; !exists {
		r.order = append(r.order, contributorID)
	}
	r.collections[contributorID] = collection.Clone()
	merged := r.recomputeLocked()
	r.mu.Unlock()

	logger := logging.GetLogger("registry")
	logger.Debug().
		Str("contributor", contributorID).
		Int("variables", collection.Len()).
		Bool("persistent", collection.Persistent).
		Msg("Collection set")

	r.notify(merged)
}

// SetEntries registers a collection built from entries for contributorID
func (r *Registry) SetEntries(contributorID string, persistent bool, entries ...types.Entry) {
	r.Set(contributorID, types.NewCollection(persistent, entries...))
}

// Delete removes the collection of contributorID and reports whether one was
// registered. The merged collection is rebuilt either way.
func (r *Registry) Delete(contributorID string) bool {
	r.mu.Lock()
	_, existed := r.collections[contributorID]
	if existed {
		delete(r.collections, contributorID)
		for i, id := range r.order {
			if id == contributorID {
				r.order = append(r.order[:i:i], r.order[i+1:]...)
				break
			}
		}
	}
	merged := r.recomputeLocked()
	r.mu.Unlock()

	logger := logging.GetLogger("registry")
	logger.Debug().
		Str("contributor", contributorID).
		Bool("existed", existed).
		Msg("Collection deleted")

	r.notify(merged)
	return existed
}

// Replace swaps the whole registry content for contributions, taken in
// order, with a single rebuild. Later duplicates of an id overwrite earlier
// ones in place.
func (r *Registry) Replace(contributions []types.Contribution) {
	r.mu.Lock()
	r.order = nil
	r.collections = make(map[string]*types.Collection, len(contributions))
	for _, c := range contributions {
		collection := c.Collection
		if collection == nil {
			collection = types.NewCollection(false)
		}
		if _, exists := r.collections[c.ID]; !exists {
			r.order = append(r.order, c.ID)
		}
		r.collections[c.ID] = collection.Clone()
	}
	merged := r.recomputeLocked()
	r.mu.Unlock()

	r.notify(merged)
}

// Get returns a copy of the collection registered for contributorID
func (r *Registry) Get(contributorID string) (*types.Collection, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.collections[contributorID]
	if !ok {
		return nil, false
	}
	return c.Clone(), true
}

// Has checks if contributorID has a registered collection
func (r *Registry) Has(contributorID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.collections[contributorID]
	return ok
}

// List returns the registered contributor ids in registration order
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return append([]string(nil), r.order...)
}

// Count returns the number of registered contributors
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.order)
}

// All returns copies of every registered collection in registration order
func (r *Registry) All() []types.Contribution {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.contributionsLocked(true)
}

// Merged returns the current merged collection. The returned value is
// immutable and stays valid after later changes to the registry.
func (r *Registry) Merged() *merge.Collection {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.merged
}

// OnChange registers fn to be called after every change with the new merged
// collection. Listeners run outside the registry lock, in the order they were
// added. The returned function removes the listener.
func (r *Registry) OnChange(fn ChangeFunc) func() {
	r.listenersMu.Lock()
	defer r.listenersMu.Unlock()

	id := r.nextID
	r.nextID++
	r.listeners = append(r.listeners, listener{id: id, fn: fn})

	return func() {
		r.listenersMu.Lock()
		defer r.listenersMu.Unlock()
		for i, l := range r.listeners {
			if l.id == id {
				r.listeners = append(r.listeners[:i:i], r.listeners[i+1:]...)
				return
			}
		}
	}
}

func (r *Registry) recomputeLocked() *merge.Collection {
	// Merge only reads the collections, no copies needed under the lock
	r.merged = merge.Merge(r.contributionsLocked(false), r.caseInsensitive)
	return r.merged
}

func (r *Registry) contributionsLocked(clone bool) []types.Contribution {
	out := make([]types.Contribution, 0, len(r.order))
	for _, id := range r.order {
		c := r.collections[id]
		if clone {
			c = c.Clone()
		}
		out = append(out, types.Contribution{ID: id, Collection: c})
	}
	return out
}

func (r *Registry) notify(merged *merge.Collection) {
	r.listenersMu.Lock()
	listeners := append([]listener(nil), r.listeners...)
	r.listenersMu.Unlock()

	for _, l := range listeners {
		l.fn(merged)
	}
}
