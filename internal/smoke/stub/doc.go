// Package stub provides the local HTTP listeners that emulate the
// platform's outbound integrations during a smoke run: a metrics
// query endpoint, a notification webhook receiver, a chat-bot API, and
// a team-messaging webhook. The listeners share a State that lets the
// harness flip the emulated metric between firing and resolved and
// inspect recorded webhook deliveries.
package stub
