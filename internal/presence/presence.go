// Package presence implements broadcast.PresenceRegistry, tracking the
// set of hostnames currently known to be listening.
package presence

import (
	"context"
	"sync"
)

// Change is one presence transition: hostname became present or absent.
type Change struct {
	Host    string
	Present bool
}

const watchBuffer = 16

// Registry is an in-memory, mutex-guarded set of known peer hostnames.
// Entries are added by Mark and removed by Forget; nothing expires them
// automatically, so a caller wiring this to a transport is responsible
// for calling Forget when a peer is known to be gone.
type Registry struct {
	mu    sync.RWMutex
	hosts map[string]struct{}

	watchCh   chan Change
	watchDone <-chan struct{}
	watchOnce sync.Once
}

// New returns an empty Registry.
func New() *Registry {
	return &Registry{hosts: make(map[string]struct{})}
}

// Watch returns a channel of presence changes observed from this call
// onward. The channel is never closed, and changes may still be
// delivered on it after ctx is done. Only the first call establishes
// the feed, so Watch should be called once, before the Mark/Forget calls
// it needs to observe; later calls return the same channel regardless of
// the ctx passed in.
func (r *Registry) Watch(ctx context.Context) <-chan Change {
	r.watchOnce.Do(func() {
		r.watchCh = make(chan Change, watchBuffer)
		r.watchDone = ctx.Done()
	})
	return r.watchCh
}

// notify delivers change to the active watcher, if any, without blocking
// the caller: a watcher that isn't keeping up simply misses changes.
func (r *Registry) notify(change Change) {
	r.mu.RLock()
	ch, done := r.watchCh, r.watchDone
	r.mu.RUnlock()
	if ch == nil {
		return
	}
	select {
	case ch <- change:
	case <-done:
	default:
	}
}

// Mark records hostname as currently present.
func (r *Registry) Mark(hostname string) {
	r.mu.Lock()
	_, already := r.hosts[hostname]
	r.hosts[hostname] = struct{}{}
	r.mu.Unlock()

	if !already {
		r.notify(Change{Host: hostname, Present: true})
	}
}

// Forget removes hostname from the known set.
func (r *Registry) Forget(hostname string) {
	r.mu.Lock()
	_, known := r.hosts[hostname]
	delete(r.hosts, hostname)
	r.mu.Unlock()

	if known {
		r.notify(Change{Host: hostname, Present: false})
	}
}

// Hosts implements broadcast.PresenceRegistry, returning a snapshot
// slice safe for the caller to retain.
func (r *Registry) Hosts() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.hosts))
	for h := range r.hosts {
		out = append(out, h)
	}
	return out
}
