package mqtt

import (
	"errors"
	"testing"
	"time"
)

func TestNewMessage(t *testing.T) {
	msg, err := NewMessage("radrx/hit", map[string]int{"damage": 2})
	if err != nil {
		t.Fatal(err)
	}
	if msg.Topic != "radrx/hit" || string(msg.Payload) != `{"damage":2}` {
		t.Fatalf("unexpected message %+v", msg)
	}

	if _, err = NewMessage("radrx/hit", make(chan int)); err == nil {
		t.Fatalf("expected an encoding error")
	}
}

func TestPublishQueueFull(t *testing.T) {
	m := New()
	for i := 0; i < queue; i++ {
		if err := m.Publish(Message{Topic: "t"}); err != nil {
			t.Fatalf("publish %d: %v", i, err)
		}
	}
	if err := m.Publish(Message{Topic: "t"}); !errors.Is(err, ErrQueueFull) {
		t.Fatalf("expected ErrQueueFull, got %v", err)
	}
}

func TestServiceWithoutBroker(t *testing.T) {
	m := New()
	if err := m.Connect("", "radrx"); err != nil {
		t.Fatal(err)
	}

	done := make(chan struct{})
	go func() {
		m.Service()
		close(done)
	}()

	_ = m.Publish(Message{Topic: "t", Payload: []byte("x")})
	close(m.C)

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("service did not stop")
	}
	if err := m.Disconnect(); err != nil {
		t.Fatal(err)
	}
}
