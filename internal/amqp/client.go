// Package amqp publishes and consumes ledger change events over RabbitMQ.
package amqp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rabbitmq/amqp091-go"
)

// Circuit breaker states.
const (
	StateClosed int32 = iota
	StateOpen
	StateHalfOpen
)

const (
	maxFailures    = 5
	openTimeout    = 30 * time.Second
	publishTimeout = 5 * time.Second
	dialRetries    = 5
)

// ErrCircuitOpen is returned by Publish while the broker is considered down.
var ErrCircuitOpen = errors.New("circuit breaker is open")

type Client struct {
	url          string
	exchangeName string
	queueName    string
	dial         func(url string) (*amqp091.Connection, error)

	mu      sync.Mutex
	conn    *amqp091.Connection
	channel *amqp091.Channel

	state        int32
	failureCount int64
	lastFailure  time.Time
}

// NewClient dials the broker with exponential backoff and declares the
// exchange, queue and binding.
func NewClient(ctx context.Context, url, exchangeName, queueName string) (*Client, error) {
	c := &Client{
		url:          url,
		exchangeName: exchangeName,
		queueName:    queueName,
		dial:         amqp091.Dial,
	}
	if err := c.connect(ctx); err != nil {
		return nil, err
	}
	return c, nil
}

// connect dials without holding mu, then swaps the new connection in and
// closes the one it replaces.
func (c *Client) connect(ctx context.Context) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = time.Second
	b.MaxInterval = 30 * time.Second

	var (
		conn    *amqp091.Connection
		ch      *amqp091.Channel
		attempt int
	)
	op := func() error {
		attempt++
		dialed, err := c.dial(c.url)
		if err != nil {
			slog.WarnContext(ctx, "AMQP dial failed", "attempt", attempt, "error", err, "component", "amqp")
			return err
		}
		opened, err := dialed.Channel()
		if err != nil {
			dialed.Close()
			return err
		}
		if err := declare(opened, c.exchangeName, c.queueName); err != nil {
			opened.Close()
			dialed.Close()
			return backoff.Permanent(err)
		}
		conn, ch = dialed, opened
		return nil
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(b, dialRetries), ctx)
	if err := backoff.Retry(op, policy); err != nil {
		return fmt.Errorf("connect AMQP: %w", err)
	}

	c.mu.Lock()
	oldConn, oldCh := c.conn, c.channel
	c.conn, c.channel = conn, ch
	c.mu.Unlock()

	if oldCh != nil {
		oldCh.Close()
	}
	if oldConn != nil {
		oldConn.Close()
	}
	slog.InfoContext(ctx, "AMQP connected", "exchange", c.exchangeName, "queue", c.queueName, "component", "amqp")
	return nil
}

func declare(ch *amqp091.Channel, exchange, queue string) error {
	if err := ch.ExchangeDeclare(exchange, "direct", true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare exchange: %w", err)
	}
	if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare queue: %w", err)
	}
	// Direct exchange: the routing key is the queue name.
	if err := ch.QueueBind(queue, queue, exchange, false, nil); err != nil {
		return fmt.Errorf("bind queue: %w", err)
	}
	return nil
}

// PublishBucketChanged publishes a persistent BucketChangedMessage.
func (c *Client) PublishBucketChanged(ctx context.Context, msg *BucketChangedMessage) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if c.isCircuitOpen() {
		return fmt.Errorf("publish %s: %w", msg.Date, ErrCircuitOpen)
	}

	body, err := msg.ToJSON()
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	c.mu.Lock()
	ch := c.channel
	c.mu.Unlock()
	if ch == nil || ch.IsClosed() {
		if err := c.connect(ctx); err != nil {
			c.recordFailure()
			return err
		}
		c.mu.Lock()
		ch = c.channel
		c.mu.Unlock()
	}

	pctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	err = ch.PublishWithContext(pctx, c.exchangeName, c.queueName, false, false, amqp091.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp091.Persistent,
		Timestamp:    msg.Timestamp,
		Body:         body,
	})
	if err != nil {
		c.recordFailure()
		if isConnectionError(err) {
			c.dropChannel()
		}
		return fmt.Errorf("publish message: %w", err)
	}
	c.recordSuccess()

	slog.InfoContext(ctx, "Published bucket change",
		"date", msg.Date,
		"count", msg.Count,
		"component", "amqp")
	return nil
}

// ConsumeBucketChanged delivers messages from the shared work queue to
// handler until ctx is done. Each message goes to one consumer.
// Malformed messages are dropped; handler errors requeue the delivery.
func (c *Client) ConsumeBucketChanged(ctx context.Context, handler func(context.Context, *BucketChangedMessage) error) error {
	c.mu.Lock()
	ch := c.channel
	c.mu.Unlock()
	if ch == nil {
		return errors.New("consume: channel not open")
	}

	msgs, err := ch.Consume(c.queueName, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("start consuming: %w", err)
	}
	slog.InfoContext(ctx, "Started consuming bucket changes", "queue", c.queueName, "component", "amqp")
	return deliver(ctx, msgs, handler)
}

// SubscribeBucketChanged gives this process its own copy of every change:
// a server-named, exclusive queue is bound to the exchange next to the work
// queue. It blocks until ctx is done.
func (c *Client) SubscribeBucketChanged(ctx context.Context, handler func(context.Context, *BucketChangedMessage) error) error {
	c.mu.Lock()
	conn := c.conn
	c.mu.Unlock()
	if conn == nil {
		return errors.New("subscribe: connection not open")
	}

	// A dedicated channel so a consumer failure does not close the publisher's.
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("open subscribe channel: %w", err)
	}
	defer ch.Close()

	q, err := ch.QueueDeclare("", false, true, true, false, nil)
	if err != nil {
		return fmt.Errorf("declare subscriber queue: %w", err)
	}
	if err := ch.QueueBind(q.Name, c.queueName, c.exchangeName, false, nil); err != nil {
		return fmt.Errorf("bind subscriber queue: %w", err)
	}
	msgs, err := ch.Consume(q.Name, "", false, true, false, false, nil)
	if err != nil {
		return fmt.Errorf("start subscription: %w", err)
	}
	slog.InfoContext(ctx, "Subscribed to bucket changes", "queue", q.Name, "component", "amqp")
	return deliver(ctx, msgs, handler)
}

func deliver(ctx context.Context, msgs <-chan amqp091.Delivery, handler func(context.Context, *BucketChangedMessage) error) error {
	for {
		select {
		case <-ctx.Done():
			slog.InfoContext(ctx, "Stopping message consumption", "reason", ctx.Err(), "component", "amqp")
			return ctx.Err()
		case d, ok := <-msgs:
			if !ok {
				return errors.New("message channel closed")
			}
			msg, err := BucketChangedMessageFromJSON(d.Body)
			if err != nil {
				slog.ErrorContext(ctx, "Failed to unmarshal message", "error", err, "component", "amqp")
				d.Nack(false, false)
				continue
			}
			if err := handler(ctx, msg); err != nil {
				slog.ErrorContext(ctx, "Failed to handle bucket change",
					"error", err, "date", msg.Date, "component", "amqp")
				d.Nack(false, true)
				continue
			}
			d.Ack(false)
		}
	}
}

func (c *Client) isCircuitOpen() bool {
	switch atomic.LoadInt32(&c.state) {
	case StateOpen:
		c.mu.Lock()
		last := c.lastFailure
		c.mu.Unlock()
		if time.Since(last) > openTimeout {
			atomic.StoreInt32(&c.state, StateHalfOpen)
			return false
		}
		return true
	default:
		return false
	}
}

func (c *Client) recordSuccess() {
	atomic.StoreInt64(&c.failureCount, 0)
	atomic.StoreInt32(&c.state, StateClosed)
}

func (c *Client) recordFailure() {
	c.mu.Lock()
	c.lastFailure = time.Now()
	c.mu.Unlock()
	if atomic.AddInt64(&c.failureCount, 1) >= maxFailures || atomic.LoadInt32(&c.state) == StateHalfOpen {
		atomic.StoreInt32(&c.state, StateOpen)
	}
}

func (c *Client) dropChannel() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.channel != nil {
		c.channel.Close()
		c.channel = nil
	}
}

func isConnectionError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, amqp091.ErrClosed) {
		return true
	}
	msg := err.Error()
	for _, s := range []string{"connection", "EOF", "broken pipe", "closed network"} {
		if strings.Contains(msg, s) {
			return true
		}
	}
	return false
}

func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.channel != nil {
		c.channel.Close()
	}
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}
