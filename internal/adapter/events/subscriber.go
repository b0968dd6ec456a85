// internal/adapter/events/subscriber.go

package events

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/nats-io/nats.go"
)

// Subscriber delivers the raw JSON payloads published on a subject
type Subscriber interface {
	// Subscribe registers handler and returns a function that removes it
	Subscribe(subject string, handler func(data []byte)) (func(), error)
}

// NATSSubscriber subscribes to subjects on a NATS connection
type NATSSubscriber struct {
	conn   *nats.Conn
	prefix string
}

// NewNATSSubscriber creates a subscriber using the same prefix as the publisher
func NewNATSSubscriber(conn *nats.Conn, prefix string) *NATSSubscriber {
	return &NATSSubscriber{conn: conn, prefix: prefix}
}

// Subscribe implements Subscriber
func (s *NATSSubscriber) Subscribe(subject string, handler func(data []byte)) (func(), error) {
	sub, err := s.conn.Subscribe(Qualify(s.prefix, subject), func(msg *nats.Msg) {
		handler(msg.Data)
	})
	if err != nil {
		return nil, fmt.Errorf("error subscribing to %s: %w", subject, err)
	}

	return func() {
		_ = sub.Unsubscribe()
	}, nil
}

// LocalBus is an in-process Publisher and Subscriber, used when NATS is not configured
type LocalBus struct {
	mu       sync.RWMutex
	nextID   int
	handlers map[string]map[int]func([]byte)
}

// NewLocalBus creates an empty bus
func NewLocalBus() *LocalBus {
	return &LocalBus{handlers: make(map[string]map[int]func([]byte))}
}

// Publish marshals payload and delivers it synchronously to every handler on subject
func (b *LocalBus) Publish(subject string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("error marshaling %s event: %w", subject, err)
	}

	b.mu.RLock()
	handlers := make([]func([]byte), 0, len(b.handlers[subject]))
	for _, h := range b.handlers[subject] {
		handlers = append(handlers, h)
	}
	b.mu.RUnlock()

	for _, h := range handlers {
		h(data)
	}
	return nil
}

// Subscribe implements Subscriber
func (b *LocalBus) Subscribe(subject string, handler func(data []byte)) (func(), error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.handlers[subject] == nil {
		b.handlers[subject] = make(map[int]func([]byte))
	}
	id := b.nextID
	b.nextID++
	b.handlers[subject][id] = handler

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.handlers[subject], id)
	}, nil
}

// Subscribers returns the number of handlers registered on subject
func (b *LocalBus) Subscribers(subject string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()

	return len(b.handlers[subject])
}
