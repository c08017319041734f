package stub

import "sync"

// Delivery is one recorded webhook request.
type Delivery struct {
	Path string
	Body string
}

// State is the shared mutable state of the stub set. It is safe for
// concurrent use: the listeners' handler goroutines read and append
// while the harness flips the firing flag and polls the delivery count.
type State struct {
	mu         sync.RWMutex
	firing     bool
	deliveries []Delivery
}

// NewState returns a State whose emulated metric starts out firing, so
// a freshly created alert rule transitions to firing on its first
// evaluation cycle.
func NewState() *State {
	return &State{firing: true}
}

// Firing reports whether the emulated metric currently matches.
func (s *State) Firing() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.firing
}

// SetFiring flips the emulated metric.
func (s *State) SetFiring(firing bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.firing = firing
}

// Record appends one webhook delivery.
func (s *State) Record(path, body string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deliveries = append(s.deliveries, Delivery{Path: path, Body: body})
}

// Deliveries returns a copy of all recorded deliveries in arrival order.
func (s *State) Deliveries() []Delivery {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Delivery, len(s.deliveries))
	copy(out, s.deliveries)
	return out
}

// DeliveryCount returns the number of recorded deliveries.
func (s *State) DeliveryCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.deliveries)
}
