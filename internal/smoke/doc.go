// Package smoke implements the integration smoke-test harness for the
// alert-center platform.
//
// The harness treats the platform as a black box: it talks to the public
// REST API through a thin JSON client, observes the real-time WebSocket
// channel as a plain client, and emulates every outbound integration
// (webhook, chat bot, team messaging, metrics source) with the stub
// listeners in the stub subpackage.
//
// A Runner executes one suite of named scenarios strictly sequentially.
// Each scenario is isolated: its failure is recorded as a CheckOutcome
// and never aborts the rest of the suite. Eventually-consistent platform
// behavior (alert transitions, webhook deliveries, SLA breaches) is
// observed through the Poller, a bounded predicate wait with a
// seconds-scale cadence. Resources created along the way are tracked in
// a Registry so the cleanup phase can delete them even after partial
// failures.
package smoke
