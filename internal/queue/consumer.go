package queue

import (
	"context"
	"errors"
	"fmt"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"

	applog "github.com/Marcella2706/task2-GeekHaven/internal/log"
)

const prefetch = 50

// Message is what a consumer handler sees of a delivery.
type Message struct {
	Key       string
	Body      []byte
	RequestID string
}

type Handler func(ctx context.Context, m Message) error

type Consumer struct {
	conn *amqp.Connection
	ch   *amqp.Channel
	q    string
}

// NewConsumer declares exchange and a durable queue bound to every key in keys.
func NewConsumer(url, exchange, queue string, keys []string) (*Consumer, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial rabbit: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}
	fail := func(step string, err error) (*Consumer, error) {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("%s: %w", step, err)
	}

	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		return fail("declare exchange", err)
	}
	qd, err := ch.QueueDeclare(queue, true, false, false, false, nil)
	if err != nil {
		return fail("declare queue", err)
	}
	for _, key := range keys {
		if err := ch.QueueBind(qd.Name, key, exchange, false, nil); err != nil {
			return fail("bind queue "+key, err)
		}
	}
	return &Consumer{conn: conn, ch: ch, q: qd.Name}, nil
}

func (c *Consumer) Close() {
	if c == nil {
		return
	}
	if c.ch != nil {
		_ = c.ch.Close()
	}
	if c.conn != nil {
		_ = c.conn.Close()
	}
}

// Consume runs workers until ctx is done. A handler error nacks with requeue.
func (c *Consumer) Consume(ctx context.Context, workers int, handle Handler) error {
	if c == nil || c.ch == nil {
		return fmt.Errorf("consumer is not initialized")
	}
	if workers <= 0 {
		workers = 1
	}
	if err := c.ch.Qos(prefetch, 0, false); err != nil {
		return fmt.Errorf("qos: %w", err)
	}
	msgs, err := c.ch.Consume(c.q, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("consume: %w", err)
	}

	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			for {
				select {
				case d, ok := <-msgs:
					if !ok {
						return
					}
					if err := handle(ctx, toMessage(d)); err != nil {
						applog.Errorf("handle %s: %v, requeueing", d.RoutingKey, err)
						_ = d.Nack(false, true)
						continue
					}
					_ = d.Ack(false)
				case <-ctx.Done():
					return
				}
			}
		}()
	}

	finished := make(chan struct{})
	go func() {
		wg.Wait()
		close(finished)
	}()
	select {
	case <-ctx.Done():
		<-finished
		return nil
	case <-finished:
		if ctx.Err() != nil {
			return nil
		}
		return errors.New("delivery channel closed")
	}
}

func toMessage(d amqp.Delivery) Message {
	reqID, _ := d.Headers["X-Request-ID"].(string)
	return Message{Key: d.RoutingKey, Body: d.Body, RequestID: reqID}
}
