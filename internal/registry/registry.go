// Package registry tracks the live terminal sessions owned by one shellpool
// instance. Sessions are created through the registry so lifecycle events are
// published consistently and ids never collide.
package registry

import (
	"sort"
	"sync"

	"github.com/Dicklesworthstone/shellpool/internal/events"
	"github.com/Dicklesworthstone/shellpool/internal/session"
)

// Registry is a concurrency-safe pool of sessions keyed by numeric id.
type Registry struct {
	mu       sync.Mutex
	nextID   int
	sessions map[int]*session.Session
	bus      *events.Bus
}

// Option configures a Registry.
type Option func(*Registry)

// WithBus publishes session lifecycle events on bus.
func WithBus(bus *events.Bus) Option {
	return func(r *Registry) { r.bus = bus }
}

// New creates an empty registry.
func New(opts ...Option) *Registry {
	r := &Registry{
		nextID:   1,
		sessions: make(map[int]*session.Session),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Create builds a new session from the given factory and options, assigns it
// the next id, and registers it. The registry's bus, if any, is threaded into
// the session ahead of caller options so callers may still override it.
func (r *Registry) Create(integration session.Integration, factory session.ProcessFactory, opts ...session.Option) *session.Session {
	r.mu.Lock()
	id := r.nextID
	r.nextID++
	r.mu.Unlock()

	if r.bus != nil {
		opts = append([]session.Option{session.WithBus(r.bus)}, opts...)
	}
	s := session.New(id, integration, factory, opts...)

	r.mu.Lock()
	r.sessions[id] = s
	r.mu.Unlock()

	if r.bus != nil {
		r.bus.Publish(events.NewSessionCreated(id, s.TaskID()))
	}
	return s
}

// Get returns the session with the given id, or nil.
func (r *Registry) Get(id int) *session.Session {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sessions[id]
}

// Remove drops a session from the pool. Returns false if the id is unknown.
// The session itself is not torn down; callers own its backing pane.
func (r *Registry) Remove(id int) bool {
	r.mu.Lock()
	_, ok := r.sessions[id]
	delete(r.sessions, id)
	r.mu.Unlock()

	if ok && r.bus != nil {
		r.bus.Publish(events.NewSessionRemoved(id))
	}
	return ok
}

// All returns every registered session in id order.
func (r *Registry) All() []*session.Session {
	r.mu.Lock()
	ids := make([]int, 0, len(r.sessions))
	for id := range r.sessions {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	out := make([]*session.Session, 0, len(ids))
	for _, id := range ids {
		out = append(out, r.sessions[id])
	}
	r.mu.Unlock()
	return out
}

// Busy returns the sessions currently between submission and settlement.
func (r *Registry) Busy() []*session.Session {
	var out []*session.Session
	for _, s := range r.All() {
		if s.Busy() {
			out = append(out, s)
		}
	}
	return out
}

// ForTask returns the sessions tagged with the given task id.
func (r *Registry) ForTask(taskID string) []*session.Session {
	var out []*session.Session
	for _, s := range r.All() {
		if s.TaskID() == taskID {
			out = append(out, s)
		}
	}
	return out
}

// Len returns the number of registered sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}
