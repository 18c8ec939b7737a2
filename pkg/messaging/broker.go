package messaging

import (
	"context"
	"encoding/json"
)

// Broker publishes domain events and fans them out to subscribers
type Broker interface {
	Publish(ctx context.Context, topic string, payload []byte) error
	// Subscribe calls handler for every message on topic until ctx is done.
	Subscribe(ctx context.Context, topic string, handler func([]byte) error) error
	Close() error
}

// Message is the envelope published for every outbox event
type Message struct {
	ID          string          `json:"id"`
	Type        string          `json:"type"`
	AggregateID string          `json:"aggregateId"`
	Payload     json.RawMessage `json:"payload"`
}

type nopBroker struct{}

// NewNopBroker returns a broker that drops everything. It stands in when
// no Redis URL is configured.
func NewNopBroker() Broker {
	return nopBroker{}
}

func (nopBroker) Publish(context.Context, string, []byte) error { return nil }

func (nopBroker) Subscribe(context.Context, string, func([]byte) error) error { return nil }

func (nopBroker) Close() error { return nil }
