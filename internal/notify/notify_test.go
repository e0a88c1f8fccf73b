package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{}

// testServer runs a websocket endpoint that, once subscribed, sends the
// given events and then waits for the client to go away.
func testServer(t *testing.T, events []Event) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade failed: %v", err)
			return
		}
		defer conn.Close()

		// First message must be a subscribe request.
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		var msg subscribeMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			t.Errorf("bad subscribe message: %v", err)
			return
		}
		if msg.Action != "subscribe" || len(msg.RecordIDs) == 0 {
			t.Errorf("unexpected subscribe message: %+v", msg)
			return
		}

		for _, event := range events {
			payload, _ := json.Marshal(event)
			if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}
		}
		// Hold the connection open until the client closes it.
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
}

func wsURL(server *httptest.Server) string {
	return "ws" + strings.TrimPrefix(server.URL, "http")
}

func TestSubscribeAndReceive(t *testing.T) {
	recordID := uuid.New()
	sent := []Event{
		{Type: EventItemCreated, RecordID: recordID.String(), ItemID: uuid.NewString()},
		{Type: EventItemUpdated, RecordID: recordID.String(), ItemID: uuid.NewString()},
	}
	server := testServer(t, sent)
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	client, err := Dial(ctx, wsURL(server))
	if err != nil {
		t.Fatalf("Dial failed: %v", err)
	}
	defer client.Close()

	if err := client.Subscribe(recordID); err != nil {
		t.Fatalf("Subscribe failed: %v", err)
	}

	for i, want := range sent {
		select {
		case got, ok := <-client.Events():
			if !ok {
				t.Fatalf("stream closed early: %v", client.Err())
			}
			if got.Type != want.Type || got.ItemID != want.ItemID {
				t.Errorf("event %d = %+v, want %+v", i, got, want)
			}
		case <-ctx.Done():
			t.Fatal("timed out waiting for event")
		}
	}
}

func TestSubscribeRequiresRecordIDs(t *testing.T) {
	server := testServer(t, nil)
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	client, err := Dial(ctx, wsURL(server))
	if err != nil {
		t.Fatalf("Dial failed: %v", err)
	}
	defer client.Close()

	if err := client.Subscribe(); err == nil {
		t.Error("expected error for empty subscription")
	}
}

func TestDialFailure(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if _, err := Dial(ctx, "ws://127.0.0.1:1/nope"); err == nil {
		t.Error("expected dial error")
	}
}

func TestCloseEndsStream(t *testing.T) {
	server := testServer(t, nil)
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	client, err := Dial(ctx, wsURL(server))
	if err != nil {
		t.Fatalf("Dial failed: %v", err)
	}
	if err := client.Subscribe(uuid.New()); err != nil {
		t.Fatalf("Subscribe failed: %v", err)
	}
	client.Close()

	select {
	case _, ok := <-client.Events():
		if ok {
			t.Error("expected closed channel after Close")
		}
	case <-ctx.Done():
		t.Fatal("timed out waiting for channel close")
	}
	if err := client.Err(); err != nil {
		t.Errorf("clean close must not set Err: %v", err)
	}
}

func TestWatch(t *testing.T) {
	recordID := uuid.New()
	sent := []Event{
		{Type: EventItemDeleted, RecordID: recordID.String(), ItemID: uuid.NewString()},
	}
	server := testServer(t, sent)
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	received := make(chan Event, 1)
	go Watch(ctx, wsURL(server), []uuid.UUID{recordID}, func(e Event) {
		received <- e
		cancel()
	})

	select {
	case got := <-received:
		if got.Type != EventItemDeleted {
			t.Errorf("Type = %q", got.Type)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for event")
	}
}

func TestMalformedEventSkipped(t *testing.T) {
	recordID := uuid.New()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
		conn.WriteMessage(websocket.TextMessage, []byte("{not json"))
		payload, _ := json.Marshal(Event{Type: EventItemCreated, RecordID: recordID.String()})
		conn.WriteMessage(websocket.TextMessage, payload)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	client, err := Dial(ctx, wsURL(server))
	if err != nil {
		t.Fatalf("Dial failed: %v", err)
	}
	defer client.Close()
	if err := client.Subscribe(recordID); err != nil {
		t.Fatalf("Subscribe failed: %v", err)
	}

	select {
	case got, ok := <-client.Events():
		if !ok {
			t.Fatalf("stream closed: %v", client.Err())
		}
		// The malformed frame is dropped, the valid one delivered.
		if got.Type != EventItemCreated {
			t.Errorf("Type = %q", got.Type)
		}
	case <-ctx.Done():
		t.Fatal("timed out waiting for event")
	}
}
