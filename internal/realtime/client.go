// Package realtime is the chat connection to the backend's realtime
// service. Frames are JSON envelopes {"event": name, "data": {...}}.
package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"slices"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/vikrantan5/FitSphere-sub000/internal/domain"
)

// Event names on the wire.
const (
	EventJoinRoom    = "join_room"
	EventSendMessage = "send_message"
	EventNewMessage  = "new_message"
)

var ErrNotConnected = errors.New("chat is not connected")

// Envelope is one frame.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

type joinRoom struct {
	UserID string `json:"user_id"`
}

type sendMessage struct {
	SenderID   string      `json:"sender_id"`
	SenderName string      `json:"sender_name"`
	SenderRole domain.Role `json:"sender_role"`
	ReceiverID *string     `json:"receiver_id"`
	Message    string      `json:"message"`
}

// Observer counts frames in each direction.
type Observer interface {
	ObserveRealtime(direction, event string)
}

// Options tune the connection.
type Options struct {
	MaxReconnects int
	Backoff       time.Duration
	Header        http.Header // sent on every dial, e.g. Authorization
	Dialer        *websocket.Dialer
	Observer      Observer
}

// Client is one user's chat connection. Messages sent while disconnected
// are dropped with ErrNotConnected; nothing is buffered, deduplicated or
// acknowledged.
type Client struct {
	url  string
	opts Options

	mu           sync.Mutex
	conn         *websocket.Conn
	stop         chan struct{}
	reconnecting bool
	userID       string
	handlers     []func(domain.ChatMessage)
}

// New prepares a client for url. No connection is made until Connect.
func New(url string, opts Options) *Client {
	if opts.Dialer == nil {
		opts.Dialer = websocket.DefaultDialer
	}
	if opts.Backoff <= 0 {
		opts.Backoff = time.Second
	}
	return &Client{url: url, opts: opts}
}

// Connect opens the connection and joins the user's room. Calling it while
// connected, or while a reconnect is under way, is a no-op.
func (c *Client) Connect(ctx context.Context, userID, userName string, role domain.Role) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn != nil || c.reconnecting {
		return nil
	}

	conn, _, err := c.opts.Dialer.DialContext(ctx, c.url, c.opts.Header)
	if err != nil {
		return err
	}
	c.userID = userID
	if err := c.joinLocked(conn); err != nil {
		conn.Close()
		return err
	}
	c.conn = conn
	c.stop = make(chan struct{})
	go c.readLoop(conn, c.stop)

	log.Printf("INFO: Chat connected for %s (%s, %s)", userID, userName, role)
	return nil
}

func (c *Client) joinLocked(conn *websocket.Conn) error {
	return c.writeLocked(conn, EventJoinRoom, joinRoom{UserID: c.userID})
}

func (c *Client) writeLocked(conn *websocket.Conn, event string, data any) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return err
	}
	if err := conn.WriteJSON(Envelope{Event: event, Data: raw}); err != nil {
		return err
	}
	c.observe("out", event)
	return nil
}

// Connected reports whether a connection is currently open.
func (c *Client) Connected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn != nil
}

// Send publishes a message. A nil receiverID addresses the admin pool.
func (c *Client) Send(message, senderID, senderName string, senderRole domain.Role, receiverID *string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil {
		return ErrNotConnected
	}
	return c.writeLocked(c.conn, EventSendMessage, sendMessage{
		SenderID:   senderID,
		SenderName: senderName,
		SenderRole: senderRole,
		ReceiverID: receiverID,
		Message:    message,
	})
}

// OnIncoming registers fn for every new_message. Handlers run on the single
// reader goroutine, in registration order, once per event in receipt order.
func (c *Client) OnIncoming(fn func(domain.ChatMessage)) {
	c.mu.Lock()
	c.handlers = append(c.handlers, fn)
	c.mu.Unlock()
}

// Disconnect closes the connection. Safe to call when not connected.
func (c *Client) Disconnect() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.stop != nil {
		close(c.stop)
		c.stop = nil
	}
	c.reconnecting = false
	if c.conn != nil {
		_ = c.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second))
		c.conn.Close()
		c.conn = nil
	}
}

func (c *Client) readLoop(conn *websocket.Conn, stop chan struct{}) {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			select {
			case <-stop:
				return
			default:
			}
			log.Printf("WARN: Chat connection lost: %v", err)
			c.mu.Lock()
			if c.stop == stop {
				c.conn = nil
				c.reconnecting = true
			}
			c.mu.Unlock()
			conn = c.reconnect(stop)
			if conn == nil {
				return
			}
			continue
		}
		c.dispatch(data)
	}
}

// reconnect retries with a fixed backoff. It returns nil when the client
// was stopped or the attempts ran out.
func (c *Client) reconnect(stop chan struct{}) *websocket.Conn {
	for attempt := 1; attempt <= c.opts.MaxReconnects; attempt++ {
		select {
		case <-stop:
			return nil
		case <-time.After(c.opts.Backoff):
		}

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		conn, _, err := c.opts.Dialer.DialContext(ctx, c.url, c.opts.Header)
		cancel()
		if err != nil {
			log.Printf("WARN: Chat reconnect attempt %d/%d failed: %v", attempt, c.opts.MaxReconnects, err)
			continue
		}

		c.mu.Lock()
		select {
		case <-stop:
			c.mu.Unlock()
			conn.Close()
			return nil
		default:
		}
		if err := c.joinLocked(conn); err != nil {
			c.mu.Unlock()
			conn.Close()
			continue
		}
		c.conn = conn
		c.reconnecting = false
		c.mu.Unlock()
		c.observe("in", "reconnect")
		return conn
	}

	c.mu.Lock()
	if c.stop == stop {
		c.conn = nil
		c.stop = nil
		c.reconnecting = false
	}
	c.mu.Unlock()
	log.Printf("ERROR: Chat gave up after %d reconnect attempts", c.opts.MaxReconnects)
	return nil
}

func (c *Client) dispatch(data []byte) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		log.Printf("WARN: Ignoring malformed chat frame: %v", err)
		return
	}
	c.observe("in", env.Event)
	if env.Event != EventNewMessage {
		return
	}
	var msg domain.ChatMessage
	if err := json.Unmarshal(env.Data, &msg); err != nil {
		log.Printf("WARN: Ignoring malformed chat message: %v", err)
		return
	}

	c.mu.Lock()
	handlers := slices.Clone(c.handlers)
	c.mu.Unlock()
	for _, fn := range handlers {
		fn(msg)
	}
}

func (c *Client) observe(direction, event string) {
	if c.opts.Observer != nil {
		c.opts.Observer.ObserveRealtime(direction, event)
	}
}
