// internal/adapter/events/publisher.go

package events

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/nats-io/nats.go"
)

// Subjects published by the API
const (
	SubjectPostCreated        = "post.created"
	SubjectPostModerated      = "post.moderated"
	SubjectPostDeleted        = "post.deleted"
	SubjectCommentCreated     = "comment.created"
	SubjectMunicipalitySynced = "municipality.synced"
)

// Publisher publishes domain events as JSON
type Publisher interface {
	Publish(subject string, payload interface{}) error
}

// NATSPublisher publishes events on a NATS connection
type NATSPublisher struct {
	conn   *nats.Conn
	prefix string
}

// NewNATSPublisher creates a publisher. A non-empty prefix is prepended to
// every subject as "<prefix>.<subject>".
func NewNATSPublisher(conn *nats.Conn, prefix string) *NATSPublisher {
	return &NATSPublisher{conn: conn, prefix: prefix}
}

// Subject returns the fully qualified subject
func (p *NATSPublisher) Subject(subject string) string {
	return Qualify(p.prefix, subject)
}

// Publish marshals payload and sends it on the qualified subject
func (p *NATSPublisher) Publish(subject string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("error marshaling %s event: %w", subject, err)
	}

	if err := p.conn.Publish(p.Subject(subject), data); err != nil {
		return fmt.Errorf("error publishing %s event: %w", subject, err)
	}
	return nil
}

// Qualify joins prefix and subject
func Qualify(prefix, subject string) string {
	if prefix == "" {
		return subject
	}
	return prefix + "." + subject
}

// Nop discards every event
type Nop struct{}

// Publish implements Publisher
func (Nop) Publish(string, interface{}) error { return nil }

// Recorder keeps published events in memory for tests. It is safe for
// concurrent publishers.
type Recorder struct {
	mu     sync.Mutex
	Events []Event
}

// Event is one recorded publication
type Event struct {
	Subject string
	Payload interface{}
}

// Publish implements Publisher
func (r *Recorder) Publish(subject string, payload interface{}) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.Events = append(r.Events, Event{Subject: subject, Payload: payload})
	return nil
}

// Subjects returns the recorded subjects in order
func (r *Recorder) Subjects() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]string, len(r.Events))
	for i, e := range r.Events {
		out[i] = e.Subject
	}
	return out
}
