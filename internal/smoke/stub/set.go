package stub

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"
)

// Ports configures the listening ports of the stub set. Zero means an
// ephemeral port, which the tests use to avoid collisions.
type Ports struct {
	Metrics   int
	Webhook   int
	ChatBot   int
	Messaging int
}

// Set bundles the four stub listeners of one smoke run.
type Set struct {
	Metrics   *Server
	Webhook   *Server
	ChatBot   *Server
	Messaging *Server
}

// NewSet creates the stub set over a shared state.
func NewSet(state *State, ports Ports) *Set {
	return &Set{
		Metrics:   NewMetrics(state, ports.Metrics),
		Webhook:   NewWebhook(state, ports.Webhook),
		ChatBot:   NewChatBot(ports.ChatBot),
		Messaging: NewMessaging(ports.Messaging),
	}
}

func (s *Set) servers() []*Server {
	return []*Server{s.Metrics, s.Webhook, s.ChatBot, s.Messaging}
}

// Start binds all listeners and waits until each accepts connections.
// On any failure the already started listeners are stopped again.
func (s *Set) Start(ctx context.Context) error {
	started := make([]*Server, 0, 4)
	for _, srv := range s.servers() {
		if err := srv.Start(ctx); err != nil {
			for _, prev := range started {
				prev.Stop(ctx)
			}
			return err
		}
		started = append(started, srv)
	}

	readyCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	g, gctx := errgroup.WithContext(readyCtx)
	for _, srv := range s.servers() {
		srv := srv
		g.Go(func() error {
			return srv.WaitForReady(gctx)
		})
	}
	if err := g.Wait(); err != nil {
		s.Stop(ctx)
		return err
	}
	return nil
}

// Stop shuts all listeners down. Every server gets a shutdown attempt;
// the first error is returned.
func (s *Set) Stop(ctx context.Context) error {
	var firstErr error
	for _, srv := range s.servers() {
		if err := srv.Stop(ctx); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
