package ws

import (
	"context"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/jansevak/jansevak-be/internal/api/middleware"
	"github.com/jansevak/jansevak-be/internal/assistant"
	"github.com/jansevak/jansevak-be/internal/metrics"
)

const (
	writeWait      = 10 * time.Second
	maxMessageSize = 8 * 1024
)

// Asker answers a prompt on a channel. *assistant.Service implements it.
type Asker interface {
	Ask(ctx context.Context, channel assistant.Channel, prompt string) assistant.Result
}

// ChatHandler serves the floating chatbot over WebSocket
type ChatHandler struct {
	assistant      Asker
	jwtSecret      string
	messagesPerMin int
	upgrader       websocket.Upgrader
}

// NewChatHandler creates a chat handler. An empty jwtSecret allows anonymous connections.
func NewChatHandler(a Asker, jwtSecret string, messagesPerMin int) *ChatHandler {
	return &ChatHandler{
		assistant:      a,
		jwtSecret:      jwtSecret,
		messagesPerMin: messagesPerMin,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true // CORS policy is enforced by the portal's reverse proxy
			},
		},
	}
}

// IncomingMessage represents a message from the client
type IncomingMessage struct {
	ID      string `json:"id,omitempty"`
	Content string `json:"content"`
}

// Outgoing message types
const (
	TypeTyping  = "typing"
	TypeMessage = "message"
	TypeError   = "error"
	TypeDone    = "done"
)

// OutgoingMessage represents a message to the client
type OutgoingMessage struct {
	Type     string `json:"type"`
	ID       string `json:"id,omitempty"`
	Content  string `json:"content,omitempty"`
	Fallback bool   `json:"fallback,omitempty"`
}

// HandleChat upgrades the connection and answers each incoming prompt
func (h *ChatHandler) HandleChat(c *gin.Context) {
	userID := ""
	if h.jwtSecret != "" {
		claims, err := middleware.ParseToken(h.jwtSecret, middleware.BearerToken(c))
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			return
		}
		userID = claims.UserID
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("WebSocket upgrade error: %v", err)
		return
	}

	metrics.WSConnections.Inc()
	defer metrics.WSConnections.Dec()

	log.Printf("WebSocket connected: user=%q", userID)

	s := newSession(conn, h.assistant, middleware.NewWebSocketLimiter(h.messagesPerMin))
	s.run(c.Request.Context())

	log.Printf("WebSocket closed: user=%q", userID)
}

// session is one chatbot connection. Prompts are answered concurrently, so
// answers may arrive out of order; the echoed id lets the client match them.
type session struct {
	conn      *websocket.Conn
	assistant Asker
	limiter   *middleware.WebSocketLimiter

	writeMu sync.Mutex
	wg      sync.WaitGroup
}

func newSession(conn *websocket.Conn, a Asker, limiter *middleware.WebSocketLimiter) *session {
	return &session{conn: conn, assistant: a, limiter: limiter}
}

func (s *session) run(parent context.Context) {
	ctx, cancel := context.WithCancel(parent)
	defer func() {
		cancel()
		s.wg.Wait()
		s.conn.Close()
	}()

	s.conn.SetReadLimit(maxMessageSize)

	for {
		var msg IncomingMessage
		if err := s.conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("WebSocket error: %v", err)
			}
			return
		}

		if strings.TrimSpace(msg.Content) == "" {
			s.send(OutgoingMessage{Type: TypeError, ID: msg.ID, Content: "Message content is required"})
			continue
		}

		if !s.limiter.Allow() {
			s.send(OutgoingMessage{Type: TypeError, ID: msg.ID, Content: "Rate limit exceeded. Please slow down."})
			continue
		}

		s.wg.Add(1)
		go func(msg IncomingMessage) {
			defer s.wg.Done()
			s.answer(ctx, msg)
		}(msg)
	}
}

func (s *session) answer(ctx context.Context, msg IncomingMessage) {
	if err := s.send(OutgoingMessage{Type: TypeTyping, ID: msg.ID}); err != nil {
		return
	}

	res := s.assistant.Ask(ctx, assistant.ChannelWS, msg.Content)

	if err := s.send(OutgoingMessage{
		Type:     TypeMessage,
		ID:       msg.ID,
		Content:  res.Text,
		Fallback: res.IsFallback(),
	}); err != nil {
		return
	}
	s.send(OutgoingMessage{Type: TypeDone, ID: msg.ID})
}

func (s *session) send(msg OutgoingMessage) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return s.conn.WriteJSON(msg)
}
