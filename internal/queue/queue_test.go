package queue

import (
	"context"
	"testing"

	amqp "github.com/rabbitmq/amqp091-go"
)

func TestToMessage(t *testing.T) {
	m := toMessage(amqp.Delivery{
		RoutingKey: KeyPasswordReset,
		Body:       []byte(`{"email":"a@x.com"}`),
		Headers:    amqp.Table{"X-Request-ID": "req-1"},
	})
	if m.Key != KeyPasswordReset || m.RequestID != "req-1" || string(m.Body) != `{"email":"a@x.com"}` {
		t.Fatalf("unexpected message: %#v", m)
	}

	m = toMessage(amqp.Delivery{RoutingKey: KeyUserRegistered})
	if m.RequestID != "" {
		t.Fatalf("missing header must give empty request id, got %q", m.RequestID)
	}
}

func TestNoopPublisher(t *testing.T) {
	p := NewNoop()
	if err := p.Publish(context.Background(), DefaultExchange, KeyUserLoggedIn, UserLoggedIn{}, ""); err != nil {
		t.Fatal(err)
	}
	if err := p.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestConsumeUninitialized(t *testing.T) {
	var c *Consumer
	if err := c.Consume(context.Background(), 1, nil); err == nil {
		t.Fatal("nil consumer must fail")
	}
	c.Close()
}
