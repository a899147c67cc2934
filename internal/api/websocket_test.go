package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/hollowpine/StorylineEngine/internal/events"
)

func TestWebSocketReceivesBacklog(t *testing.T) {
	events.Clear()

	for i := 0; i < 5; i++ {
		events.Emit("info", "action.started", "", map[string]interface{}{"index": i})
	}

	server := httptest.NewServer(http.HandlerFunc(wsEventsHandler))
	defer server.Close()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("failed to connect: %v", err)
	}
	defer conn.Close()

	received := 0
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	for received < 5 {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			t.Fatalf("failed to read message: %v", err)
		}
		var e events.Event
		if err := json.Unmarshal(msg, &e); err != nil {
			t.Fatalf("failed to unmarshal event: %v", err)
		}
		if e.Name != "action.started" {
			t.Errorf("unexpected event %s", e.Name)
		}
		received++
	}
}

func TestWebSocketReceivesLiveEvents(t *testing.T) {
	events.Clear()

	server := httptest.NewServer(http.HandlerFunc(wsEventsHandler))
	defer server.Close()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("failed to connect: %v", err)
	}
	defer conn.Close()

	// Give the handler a moment to subscribe before emitting.
	deadline := time.Now().Add(time.Second)
	for events.SubscriberCount() == 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}

	events.Emit("info", "cutscene.completed", "", map[string]interface{}{"graph": "intro"})

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("failed to read live event: %v", err)
	}
	var e events.Event
	if err := json.Unmarshal(msg, &e); err != nil {
		t.Fatalf("failed to unmarshal event: %v", err)
	}
	if e.Name != "cutscene.completed" {
		t.Errorf("expected cutscene.completed, got %s", e.Name)
	}
	if e.Fields["graph"] != "intro" {
		t.Errorf("expected graph intro, got %v", e.Fields["graph"])
	}
}
