// Copyright (c) 2026 M. Howell.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package notify

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/mhowell/story-poker/domain"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// dialHub spins up a test server that registers every connection with
// the hub under sessionID, and dials it once.
func dialHub(t *testing.T, hub *Hub, sessionID string) *websocket.Conn {
	t.Helper()

	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade failed: %v", err)
			return
		}
		hub.AddConnection(sessionID, conn)
	}))
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	client, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}
	t.Cleanup(func() { client.Close() })
	return client
}

func TestHubPublish(t *testing.T) {
	hub := NewHub(discardLogger())
	client := dialHub(t, hub, "session-1")

	// Registration happens server-side; wait for it
	deadline := time.Now().Add(2 * time.Second)
	for hub.SubscriberCount("session-1") == 0 {
		if time.Now().After(deadline) {
			t.Fatal("connection never registered")
		}
		time.Sleep(10 * time.Millisecond)
	}

	hub.Publish(domain.Event{
		Type:      domain.EventVoteSubmitted,
		SessionID: "session-1",
		Timestamp: time.Now(),
		VoteCount: 2,
	})

	client.SetReadDeadline(time.Now().Add(2 * time.Second))
	var got domain.Event
	if err := client.ReadJSON(&got); err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if got.Type != domain.EventVoteSubmitted {
		t.Errorf("type = %s, want %s", got.Type, domain.EventVoteSubmitted)
	}
	if got.VoteCount != 2 {
		t.Errorf("vote_count = %d, want 2", got.VoteCount)
	}
}

func TestHubPublishOtherSession(t *testing.T) {
	hub := NewHub(discardLogger())
	client := dialHub(t, hub, "session-1")

	deadline := time.Now().Add(2 * time.Second)
	for hub.SubscriberCount("session-1") == 0 {
		if time.Now().After(deadline) {
			t.Fatal("connection never registered")
		}
		time.Sleep(10 * time.Millisecond)
	}

	// Events for other sessions never reach this subscriber
	hub.Publish(domain.Event{
		Type:      domain.EventVotesRevealed,
		SessionID: "session-2",
		Timestamp: time.Now(),
	})

	client.SetReadDeadline(time.Now().Add(200 * time.Millisecond))
	var got domain.Event
	if err := client.ReadJSON(&got); err == nil {
		t.Errorf("received event for foreign session: %+v", got)
	}
}

func TestHubRemoveConnection(t *testing.T) {
	hub := NewHub(discardLogger())

	// Publishing with no subscribers is a no-op
	hub.Publish(domain.Event{Type: domain.EventSessionStarted, SessionID: "nobody"})

	if hub.SubscriberCount("nobody") != 0 {
		t.Error("phantom subscriber")
	}
}
