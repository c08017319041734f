package smoke

import "sync"

// ResourceKind names one class of platform resource the harness creates.
type ResourceKind string

const (
	KindRule       ResourceKind = "rule"
	KindChannel    ResourceKind = "channel"
	KindTemplate   ResourceKind = "template"
	KindSLAConfig  ResourceKind = "sla_config"
	KindUser       ResourceKind = "user"
	KindEscalation ResourceKind = "escalation"
	KindSchedule   ResourceKind = "schedule"
)

// Registry tracks the identifiers of resources created during a run so
// cleanup can delete them even after partial scenario failures. One id
// per kind is enough: the lifecycle scenarios create at most one
// long-lived resource of each kind.
type Registry struct {
	mu  sync.Mutex
	ids map[ResourceKind]string
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{ids: make(map[ResourceKind]string)}
}

// Put records the id for a kind. Empty ids are ignored so failed
// creations never shadow a real registration.
func (r *Registry) Put(kind ResourceKind, id string) {
	if id == "" {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ids[kind] = id
}

// Drop removes the registration for a kind, for resources deleted
// inline by a scenario.
func (r *Registry) Drop(kind ResourceKind) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.ids, kind)
}

// Get returns the registered id for a kind.
func (r *Registry) Get(kind ResourceKind) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	id, ok := r.ids[kind]
	return id, ok
}

// Snapshot returns a copy of all registrations.
func (r *Registry) Snapshot() map[ResourceKind]string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[ResourceKind]string, len(r.ids))
	for kind, id := range r.ids {
		out[kind] = id
	}
	return out
}
