package messaging

import (
	"context"
	"time"
)

// Broker defines the interface for message brokers
type Broker interface {
	Publish(ctx context.Context, channel string, message interface{}) error
	Subscribe(ctx context.Context, channel string) (<-chan []byte, error)
	Close() error
}

// Message is the envelope every published payload travels in.
type Message struct {
	Type      string      `json:"type"`
	Payload   interface{} `json:"payload"`
	Timestamp time.Time   `json:"timestamp"`
}

// NewMessage wraps payload with its type and the current time.
func NewMessage(msgType string, payload interface{}) Message {
	return Message{Type: msgType, Payload: payload, Timestamp: time.Now().UTC()}
}

type nopBroker struct{}

// NewNopBroker returns a broker that drops every message.
func NewNopBroker() Broker {
	return nopBroker{}
}

func (nopBroker) Publish(context.Context, string, interface{}) error { return nil }

func (nopBroker) Subscribe(ctx context.Context, _ string) (<-chan []byte, error) {
	ch := make(chan []byte)
	go func() {
		<-ctx.Done()
		close(ch)
	}()
	return ch, nil
}

func (nopBroker) Close() error { return nil }
