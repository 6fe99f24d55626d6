package amqp

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rabbitmq/amqp091-go"
)

func TestIsConnectionError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{"nil error", nil, false},
		{"connection refused", errors.New("dial tcp: connection refused"), true},
		{"EOF", errors.New("unexpected EOF"), true},
		{"broken pipe", errors.New("write: broken pipe"), true},
		{"closed network", errors.New("use of closed network connection"), true},
		{"other", errors.New("some other error"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isConnectionError(tt.err); got != tt.expected {
				t.Errorf("isConnectionError(%v) = %v, want %v", tt.err, got, tt.expected)
			}
		})
	}
}

func TestClient_CircuitBreaker(t *testing.T) {
	client := &Client{exchangeName: "gagyebu", queueName: "ledger_changes"}

	if client.isCircuitOpen() {
		t.Fatal("circuit should start closed")
	}

	for i := 0; i < maxFailures; i++ {
		client.recordFailure()
	}
	if !client.isCircuitOpen() {
		t.Fatal("circuit should open after max failures")
	}

	client.lastFailure = time.Now().Add(-openTimeout - time.Second)
	if client.isCircuitOpen() {
		t.Error("circuit should go half-open after the timeout")
	}
	if atomic.LoadInt32(&client.state) != StateHalfOpen {
		t.Errorf("state = %d, want half-open", client.state)
	}

	// A single failure while half-open reopens.
	client.recordFailure()
	if atomic.LoadInt32(&client.state) != StateOpen {
		t.Error("failure in half-open state should reopen the circuit")
	}

	client.recordSuccess()
	if client.isCircuitOpen() || atomic.LoadInt64(&client.failureCount) != 0 {
		t.Error("success should close the circuit and reset failures")
	}
}

func TestClient_PublishGuards(t *testing.T) {
	client := &Client{exchangeName: "gagyebu", queueName: "ledger_changes"}
	msg := NewBucketChangedMessage("2024-05-01", 1)

	t.Run("open circuit", func(t *testing.T) {
		atomic.StoreInt32(&client.state, StateOpen)
		client.lastFailure = time.Now()

		err := client.PublishBucketChanged(context.Background(), msg)
		if !errors.Is(err, ErrCircuitOpen) {
			t.Fatalf("err = %v, want ErrCircuitOpen", err)
		}
		if !strings.Contains(err.Error(), "2024-05-01") {
			t.Errorf("error should name the date, got %q", err)
		}
	})

	t.Run("cancelled context", func(t *testing.T) {
		client.recordSuccess()
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		if err := client.PublishBucketChanged(ctx, msg); !errors.Is(err, context.Canceled) {
			t.Errorf("err = %v, want context.Canceled", err)
		}
	})
}

func TestBucketChangedMessage(t *testing.T) {
	msg := NewBucketChangedMessage("2024-05-01", 3)
	if time.Since(msg.Timestamp) > time.Second {
		t.Error("timestamp should be recent")
	}

	body, err := msg.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON() error = %v", err)
	}
	if !strings.Contains(string(body), `"date":"2024-05-01","count":3`) {
		t.Errorf("unexpected body %s", body)
	}

	if _, err := BucketChangedMessageFromJSON([]byte(`{"date": 5}`)); err == nil {
		t.Error("expected error for mistyped date")
	}
}

func TestClient_ConnectDialsOutsideLock(t *testing.T) {
	dialing := make(chan struct{})
	release := make(chan struct{})
	var once atomic.Bool
	client := &Client{
		url:          "amqp://broker",
		exchangeName: "gagyebu",
		queueName:    "ledger_changes",
		dial: func(string) (*amqp091.Connection, error) {
			if once.CompareAndSwap(false, true) {
				close(dialing)
			}
			<-release
			return nil, errors.New("dial tcp: connection refused")
		},
	}

	ctx, cancel := context.WithCancel(context.Background())
	connectErr := make(chan error, 1)
	go func() { connectErr <- client.connect(ctx) }()
	<-dialing

	unblocked := make(chan struct{})
	go func() {
		client.recordFailure()
		_ = client.Close()
		close(unblocked)
	}()
	select {
	case <-unblocked:
	case <-time.After(time.Second):
		t.Fatal("recordFailure and Close blocked behind a dial in progress")
	}

	cancel()
	close(release)
	select {
	case err := <-connectErr:
		if err == nil {
			t.Fatal("connect should fail when every dial fails")
		}
	case <-time.After(5 * time.Second):
		t.Fatal("connect did not stop after cancel")
	}
	if client.conn != nil || client.channel != nil {
		t.Error("failed connect must not install a connection")
	}
}

type recordingAcker struct {
	acks, nacks, requeues int
}

func (r *recordingAcker) Ack(uint64, bool) error { r.acks++; return nil }
func (r *recordingAcker) Nack(_ uint64, _ bool, requeue bool) error {
	r.nacks++
	if requeue {
		r.requeues++
	}
	return nil
}
func (r *recordingAcker) Reject(uint64, bool) error { return nil }

func TestDeliver(t *testing.T) {
	acker := &recordingAcker{}
	msgs := make(chan amqp091.Delivery, 3)
	msgs <- amqp091.Delivery{Acknowledger: acker, Body: []byte(`{"date":"2024-05-01","count":1}`)}
	msgs <- amqp091.Delivery{Acknowledger: acker, Body: []byte(`not json`)}
	msgs <- amqp091.Delivery{Acknowledger: acker, Body: []byte(`{"date":"2024-05-02","count":0}`)}
	close(msgs)

	var seen []string
	err := deliver(context.Background(), msgs, func(_ context.Context, m *BucketChangedMessage) error {
		seen = append(seen, m.Date)
		if m.Date == "2024-05-02" {
			return errors.New("store down")
		}
		return nil
	})

	if err == nil || !strings.Contains(err.Error(), "closed") {
		t.Errorf("err = %v, want message channel closed", err)
	}
	if strings.Join(seen, ",") != "2024-05-01,2024-05-02" {
		t.Errorf("handled %v", seen)
	}
	if acker.acks != 1 || acker.nacks != 2 || acker.requeues != 1 {
		t.Errorf("acks=%d nacks=%d requeues=%d, want 1/2/1", acker.acks, acker.nacks, acker.requeues)
	}
}
