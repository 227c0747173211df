package api

import (
	"encoding/json"
	"log"
	"net/http"
	"slices"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/vikrantan5/FitSphere-sub000/internal/domain"
	"github.com/vikrantan5/FitSphere-sub000/internal/metrics"
	"github.com/vikrantan5/FitSphere-sub000/internal/realtime"
	"github.com/vikrantan5/FitSphere-sub000/internal/service"
)

// ChatSettings locate the backend realtime service.
type ChatSettings struct {
	RealtimeURL    string
	MaxReconnects  int
	AllowedOrigins []string
}

// ChatHandler bridges a browser websocket to the backend realtime service.
// The bearer token never reaches the browser: the dashboard dials upstream
// on the member's behalf.
type ChatHandler struct {
	authService service.AuthService
	metrics     *metrics.Metrics
	settings    ChatSettings
	upgrader    websocket.Upgrader
}

func NewChatHandler(authService service.AuthService, m *metrics.Metrics, settings ChatSettings) *ChatHandler {
	h := &ChatHandler{authService: authService, metrics: m, settings: settings}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     h.checkOrigin,
	}
	return h
}

func (h *ChatHandler) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	if slices.Contains(h.settings.AllowedOrigins, "*") {
		return true
	}
	return slices.Contains(h.settings.AllowedOrigins, origin)
}

// outgoing is what the browser sends to publish a message.
type outgoing struct {
	Message    string  `json:"message"`
	ReceiverID *string `json:"receiver_id"`
}

// Connect godoc
// @Summary Open the chat websocket
// @Tags Chat
// @Success 101 "Switching protocols"
// @Failure 401 {object} gin.H "Not signed in"
// @Failure 502 {object} gin.H "Chat service unreachable"
// @Router /chat/ws [get]
func (h *ChatHandler) Connect(c *gin.Context) {
	sess, err := getSession(c)
	if err != nil {
		respondError(c, err)
		return
	}
	profile := sess.Profile
	if profile == nil {
		// Identity is needed for the room; refresh the cached profile once.
		profile, err = h.authService.Me(c.Request.Context(), getSessionID(c))
		if err != nil {
			respondError(c, err)
			return
		}
	}

	opts := realtime.Options{
		MaxReconnects: h.settings.MaxReconnects,
		Header:        http.Header{"Authorization": []string{"Bearer " + sess.Token}},
	}
	if h.metrics != nil {
		opts.Observer = h.metrics
	}
	upstream := realtime.New(h.settings.RealtimeURL, opts)

	// Registered before dialing: the service may replay messages as soon as
	// the room is joined, before the browser side exists.
	relay := &chatRelay{}
	upstream.OnIncoming(relay.deliver)

	// Dial upstream before upgrading so a failure is still a plain HTTP error.
	if err := upstream.Connect(c.Request.Context(), profile.ID, profile.Name, sess.Role); err != nil {
		log.Printf("ERROR: Failed to connect to chat service: %v", err)
		abortWithError(c, http.StatusBadGateway, "Chat service is unavailable")
		return
	}

	browser, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("WARN: Chat upgrade failed: %v", err)
		upstream.Disconnect()
		return
	}
	if err := relay.attach(browser); err != nil {
		log.Printf("WARN: Failed to forward queued chat messages: %v", err)
	}

	defer func() {
		upstream.Disconnect()
		browser.Close()
	}()

	for {
		var env realtime.Envelope
		if err := browser.ReadJSON(&env); err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Printf("WARN: Chat browser connection closed: %v", err)
			}
			return
		}
		if env.Event != realtime.EventSendMessage {
			continue
		}

		var out outgoing
		if err := json.Unmarshal(env.Data, &out); err != nil {
			_ = relay.write("error", gin.H{"error": "Malformed message"})
			continue
		}
		text := strings.TrimSpace(out.Message)
		if text == "" {
			continue
		}
		if err := upstream.Send(text, profile.ID, profile.Name, sess.Role, out.ReceiverID); err != nil {
			_ = relay.write("error", gin.H{"error": err.Error()})
		}
	}
}

// chatRelay forwards upstream messages to the browser. Messages that arrive
// before the browser is attached are held and flushed in order on attach.
// Writes are serialized; gorilla allows one concurrent writer.
type chatRelay struct {
	mu      sync.Mutex
	conn    *websocket.Conn
	pending []domain.ChatMessage
}

func (r *chatRelay) deliver(msg domain.ChatMessage) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.conn == nil {
		r.pending = append(r.pending, msg)
		return
	}
	if err := r.writeLocked(realtime.EventNewMessage, msg); err != nil {
		log.Printf("WARN: Failed to forward chat message to browser: %v", err)
	}
}

func (r *chatRelay) attach(conn *websocket.Conn) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.conn = conn
	pending := r.pending
	r.pending = nil
	for _, msg := range pending {
		if err := r.writeLocked(realtime.EventNewMessage, msg); err != nil {
			return err
		}
	}
	return nil
}

func (r *chatRelay) write(event string, data any) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.conn == nil {
		return realtime.ErrNotConnected
	}
	return r.writeLocked(event, data)
}

func (r *chatRelay) writeLocked(event string, data any) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return err
	}
	return r.conn.WriteJSON(realtime.Envelope{Event: event, Data: raw})
}
