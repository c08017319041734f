package smoke

import (
	"context"
	"strings"
	"time"

	"github.com/gorilla/websocket"
)

// Transcript is the immutable result of one WebSocket capture session.
type Transcript struct {
	Messages []string
	// Unavailable is set when the WebSocket endpoint could not be
	// dialed at all. Scenarios treat this distinctly from an empty
	// transcript on a healthy connection.
	Unavailable bool
}

// Contains reports whether any captured message contains sub.
func (t Transcript) Contains(sub string) bool {
	for _, msg := range t.Messages {
		if strings.Contains(msg, sub) {
			return true
		}
	}
	return false
}

// Capture is a background WebSocket recording session. It is started
// before the slow suite's lifecycle scenarios and joined afterwards.
type Capture struct {
	done       chan struct{}
	transcript Transcript
}

// StartCapture dials the push endpoint and records raw text frames in
// the background until expected messages arrived or the timeout
// elapsed. Dial failure is recorded in the transcript, never returned:
// whether push notifications work is itself a scenario verdict.
func StartCapture(ctx context.Context, url string, expected int, timeout time.Duration, logger Logger) *Capture {
	c := &Capture{done: make(chan struct{})}

	go func() {
		defer close(c.done)

		deadline := time.Now().Add(timeout)
		dialer := *websocket.DefaultDialer
		dialer.HandshakeTimeout = 10 * time.Second

		conn, _, err := dialer.DialContext(ctx, url, nil)
		if err != nil {
			logger.Debug("websocket dial %s failed: %v\n", url, err)
			c.transcript.Unavailable = true
			return
		}
		defer conn.Close()
		logger.Debug("websocket capture connected to %s\n", url)

		for len(c.transcript.Messages) < expected {
			if err := conn.SetReadDeadline(deadline); err != nil {
				return
			}
			_, payload, err := conn.ReadMessage()
			if err != nil {
				// Deadline expiry or server close ends the session with
				// whatever was captured so far.
				logger.Debug("websocket capture ended: %v\n", err)
				return
			}
			c.transcript.Messages = append(c.transcript.Messages, string(payload))
		}
	}()

	return c
}

// Wait blocks until the capture session ended and returns its
// transcript.
func (c *Capture) Wait() Transcript {
	<-c.done
	return c.transcript
}
