package market

import "sync"

// Registry is one seller's collection of active listings plus that seller's
// three event stream handles. It is created lazily on the account's first
// listing and retained for the life of the account; an empty registry is
// harmless.
type Registry struct {
	mu       sync.Mutex
	listings map[AssetID]Listing

	listingLog   Appender
	buyingLog    Appender
	delistingLog Appender
}

func newRegistry() *Registry {
	return &Registry{listings: make(map[AssetID]Listing)}
}

// Get returns the listing for id, if present.
func (r *Registry) Get(id AssetID) (Listing, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.listings[id]
	return l, ok
}

// Len reports the number of active listings.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.listings)
}

// Snapshot copies the active listings; mutating the copy does not touch the
// registry.
func (r *Registry) Snapshot() map[AssetID]Listing {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[AssetID]Listing, len(r.listings))
	for id, l := range r.listings {
		out[id] = l
	}
	return out
}
