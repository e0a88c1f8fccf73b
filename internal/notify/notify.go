// Package notify streams record change events from the service's
// notification endpoint over a websocket. Applications subscribe to
// record IDs and receive item change events on a channel, typically to
// keep a local cache fresh.
package notify

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/evergreen-health/recordkit/core/errors"
	"github.com/evergreen-health/recordkit/internal/logging"
)

// Event types delivered by the stream.
const (
	EventItemCreated = "item-created"
	EventItemUpdated = "item-updated"
	EventItemDeleted = "item-deleted"
)

// Event is one record change notification.
type Event struct {
	Type         string    `json:"type"`
	RecordID     string    `json:"record_id"`
	ItemID       string    `json:"item_id"`
	VersionStamp string    `json:"version_stamp,omitempty"`
	TypeID       string    `json:"type_id,omitempty"`
	Timestamp    time.Time `json:"timestamp"`
}

// subscribeMessage is the request sent to add record subscriptions.
type subscribeMessage struct {
	Action    string   `json:"action"`
	RecordIDs []string `json:"record_ids"`
}

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

// Client is a live notification stream.
type Client struct {
	conn   *websocket.Conn
	events chan Event
	done   chan struct{}

	writeMu sync.Mutex
	once    sync.Once

	mu  sync.Mutex
	err error
}

// Dial connects to the notification endpoint.
func Dial(ctx context.Context, url string) (*Client, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, errors.Wrapf(err, "dial notification endpoint %s", url)
	}
	c := &Client{
		conn:   conn,
		events: make(chan Event, 16),
		done:   make(chan struct{}),
	}
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	go c.readLoop()
	go c.pingLoop()
	logging.NotifyEvent("connected", "", "url", url)
	return c, nil
}

// Subscribe adds record IDs to the subscription set.
func (c *Client) Subscribe(recordIDs ...uuid.UUID) error {
	if len(recordIDs) == 0 {
		return errors.NewValidation("record_ids", "at least one record ID is required")
	}
	ids := make([]string, len(recordIDs))
	for i, id := range recordIDs {
		ids[i] = id.String()
	}
	msg := subscribeMessage{Action: "subscribe", RecordIDs: ids}
	data, err := json.Marshal(msg)
	if err != nil {
		return errors.Wrap(err, "encode subscribe message")
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
		return errors.Wrap(err, "send subscribe message")
	}
	for _, id := range ids {
		logging.NotifyEvent("subscribed", id)
	}
	return nil
}

// Events returns the event channel. It is closed when the stream ends;
// check Err afterwards.
func (c *Client) Events() <-chan Event {
	return c.events
}

// Err reports why the stream ended, nil for a clean close.
func (c *Client) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

// Close shuts the stream down.
func (c *Client) Close() error {
	var err error
	c.once.Do(func() {
		close(c.done)
		c.writeMu.Lock()
		c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		c.conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		c.writeMu.Unlock()
		err = c.conn.Close()
	})
	return err
}

func (c *Client) readLoop() {
	defer close(c.events)
	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			select {
			case <-c.done:
				// Clean shutdown.
			default:
				c.mu.Lock()
				c.err = errors.Wrap(err, "notification stream read")
				c.mu.Unlock()
				logging.NotifyEvent("disconnected", "", "error", err.Error())
			}
			return
		}
		var event Event
		if err := json.Unmarshal(data, &event); err != nil {
			logging.Warn("notify: dropping malformed event", "error", err)
			continue
		}
		logging.NotifyEvent(event.Type, event.RecordID, "item_id", event.ItemID)
		select {
		case c.events <- event:
		case <-c.done:
			return
		}
	}
}

func (c *Client) pingLoop() {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			c.writeMu.Lock()
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			err := c.conn.WriteMessage(websocket.PingMessage, nil)
			c.writeMu.Unlock()
			if err != nil {
				return
			}
		case <-c.done:
			return
		}
	}
}

// Watch dials, subscribes, and forwards events until the context is
// cancelled or the stream ends.
func Watch(ctx context.Context, url string, recordIDs []uuid.UUID, handle func(Event)) error {
	c, err := Dial(ctx, url)
	if err != nil {
		return err
	}
	defer c.Close()
	if err := c.Subscribe(recordIDs...); err != nil {
		return err
	}
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-c.Events():
			if !ok {
				return c.Err()
			}
			handle(event)
		}
	}
}
