package server

import (
	"testing"
	"time"

	"github.com/ayusman/motioncam/internal/store"
)

func TestHub_Broadcast_DropsSlowClient(t *testing.T) {
	hub := NewHub(nil)

	slow := &client{send: make(chan eventMessage, 1)}
	fast := &client{send: make(chan eventMessage, 4)}
	hub.clients[slow] = true
	hub.clients[fast] = true

	start := time.Now()
	hub.Broadcast(store.Event{ID: "ev-1"})
	hub.Broadcast(store.Event{ID: "ev-2"})
	if elapsed := time.Since(start); elapsed > 100*time.Millisecond {
		t.Errorf("Broadcast() blocked for %v", elapsed)
	}

	if hub.Clients() != 1 {
		t.Fatalf("expected 1 client left, got %d", hub.Clients())
	}
	if !hub.clients[fast] {
		t.Error("fast client should stay connected")
	}

	if msg := <-slow.send; msg.Event.ID != "ev-1" {
		t.Errorf("slow client first message = %s, want ev-1", msg.Event.ID)
	}
	if _, ok := <-slow.send; ok {
		t.Error("slow client queue should be closed")
	}
	if len(fast.send) != 2 {
		t.Errorf("fast client queued %d messages, want 2", len(fast.send))
	}
}

func TestHub_Close(t *testing.T) {
	hub := NewHub(nil)

	c := &client{send: make(chan eventMessage, 1)}
	hub.clients[c] = true

	hub.Close()
	if hub.Clients() != 0 {
		t.Errorf("expected no clients, got %d", hub.Clients())
	}
	if _, ok := <-c.send; ok {
		t.Error("client queue should be closed")
	}

	// Removing an already closed client is a no-op.
	hub.remove(c)
}
