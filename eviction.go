package atlas

// PlotEvictionCallback is notified whenever the atlas evicts a plot.
// The locator passed to Evict is the plot's pre-reset locator, so
// downstream caches can drop every entry keyed by that exact generation.
type PlotEvictionCallback interface {
	Evict(PlotLocator)
}

// EvictionFunc adapts a plain function to PlotEvictionCallback.
type EvictionFunc func(PlotLocator)

// Evict calls f.
func (f EvictionFunc) Evict(l PlotLocator) { f(l) }

// evictionRegistry holds registered listeners in registration order.
// Listener failures are defects to report, never cache corruption: a
// panicking listener is recovered and logged, and notification of the
// remaining listeners proceeds.
type evictionRegistry struct {
	entries []evictionEntry
	nextID  int
}

type evictionEntry struct {
	id int
	cb PlotEvictionCallback
}

// register adds a listener and returns a handle for unregistering.
func (r *evictionRegistry) register(cb PlotEvictionCallback) int {
	r.nextID++
	r.entries = append(r.entries, evictionEntry{id: r.nextID, cb: cb})
	return r.nextID
}

// unregister removes a listener by handle. Unknown handles are ignored.
func (r *evictionRegistry) unregister(id int) {
	for i, e := range r.entries {
		if e.id == id {
			r.entries = append(r.entries[:i], r.entries[i+1:]...)
			return
		}
	}
}

// notify delivers the evicted locator to every listener, in registration
// order, exactly once each.
func (r *evictionRegistry) notify(loc PlotLocator) {
	for _, e := range r.entries {
		notifyOne(e.cb, loc)
	}
}

func notifyOne(cb PlotEvictionCallback, loc PlotLocator) {
	defer func() {
		if rec := recover(); rec != nil {
			Logger().Warn("atlas: eviction listener panicked",
				"panic", rec,
				"page", loc.PageIndex(),
				"plot", loc.PlotIndex(),
				"generation", loc.GenID())
		}
	}()
	cb.Evict(loc)
}
