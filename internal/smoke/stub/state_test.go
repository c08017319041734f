package stub

import "testing"

func TestStateStartsFiring(t *testing.T) {
	s := NewState()
	if !s.Firing() {
		t.Error("new state must start in the firing condition")
	}
}

func TestStateFlipFiring(t *testing.T) {
	s := NewState()
	s.SetFiring(false)
	if s.Firing() {
		t.Error("expected firing=false after flip")
	}
	s.SetFiring(true)
	if !s.Firing() {
		t.Error("expected firing=true after flipping back")
	}
}

func TestStateRecordsDeliveries(t *testing.T) {
	s := NewState()
	if s.DeliveryCount() != 0 {
		t.Fatalf("expected empty delivery log, got %d", s.DeliveryCount())
	}

	s.Record("/hook", `{"status":"firing"}`)
	s.Record("/hook", `{"status":"resolved"}`)

	if s.DeliveryCount() != 2 {
		t.Fatalf("expected 2 deliveries, got %d", s.DeliveryCount())
	}
	deliveries := s.Deliveries()
	if deliveries[0].Body != `{"status":"firing"}` {
		t.Errorf("unexpected first delivery body: %s", deliveries[0].Body)
	}
	if deliveries[1].Path != "/hook" {
		t.Errorf("unexpected second delivery path: %s", deliveries[1].Path)
	}
}

func TestStateDeliveriesReturnsCopy(t *testing.T) {
	s := NewState()
	s.Record("/hook", "a")

	deliveries := s.Deliveries()
	deliveries[0].Body = "mutated"

	if s.Deliveries()[0].Body != "a" {
		t.Error("mutating the returned slice must not affect the state")
	}
}
