package messaging

import (
	"context"
	"sync"
	"time"
)

// Noop accepts every message and keeps the last few in memory. It backs the
// "none" driver and doubles as a test publisher.
type Noop struct {
	mu       sync.Mutex
	limit    int
	messages []Published
}

// Published is a message recorded by Noop.
type Published struct {
	Destination string
	Message     OutgoingMessage
}

// NewNoop returns a Noop that remembers at most limit messages (0 means 100).
func NewNoop(limit int) *Noop {
	if limit <= 0 {
		limit = 100
	}
	return &Noop{limit: limit}
}

// Publish records msg.
func (n *Noop) Publish(ctx context.Context, destination string, msg OutgoingMessage) (PublishResult, error) {
	if err := ctx.Err(); err != nil {
		return PublishResult{}, err
	}
	if destination == "" {
		return PublishResult{}, ErrDestinationRequired
	}

	n.mu.Lock()
	n.messages = append(n.messages, Published{Destination: destination, Message: msg})
	if len(n.messages) > n.limit {
		n.messages = n.messages[len(n.messages)-n.limit:]
	}
	n.mu.Unlock()

	return PublishResult{Topic: destination, Timestamp: time.Now()}, nil
}

// Messages returns a copy of the recorded messages.
func (n *Noop) Messages() []Published {
	n.mu.Lock()
	defer n.mu.Unlock()

	return append([]Published(nil), n.messages...)
}

// Close implements io.Closer.
func (n *Noop) Close() error {
	return nil
}
