package streaming

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/abzsd/CareAgents/internal/logger"
)

// Envelope message types.
const (
	TypeConnected    = "connected"
	TypeChatMessage  = "chat_message"
	TypeChatResponse = "chat_response"
	TypeStreamStart  = "stream_start"
	TypeStreamChunk  = "stream_chunk"
	TypeStreamEnd    = "stream_end"
	TypeTyping       = "typing"
	TypeError        = "error"
	TypeSystem       = "system"
)

// Error variables
var (
	ErrSessionNotFound = errors.New("session not found")
)

// Envelope is the wire format for every websocket message.
type Envelope struct {
	Type      string `json:"type"`
	SessionID string `json:"session_id,omitempty"`
	PatientID string `json:"patient_id,omitempty"`
	Content   string `json:"content,omitempty"`
	IsTyping  bool   `json:"is_typing,omitempty"`
	Timestamp int64  `json:"timestamp"`
}

// session is one connected client. Writes are serialized per connection.
type session struct {
	id     string
	userID string
	conn   *websocket.Conn
	mu     sync.Mutex
}

func (s *session) write(env Envelope) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn.WriteJSON(env)
}

// Hub tracks connected websocket sessions and routes envelopes to them.
type Hub struct {
	mu       sync.RWMutex
	sessions map[string]*session
	byUser   map[string]string
}

// NewHub creates an empty Hub.
func NewHub() *Hub {
	return &Hub{
		sessions: make(map[string]*session),
		byUser:   make(map[string]string),
	}
}

// Register adds a connection and sends it a connected envelope. A user's
// previous session, if any, is evicted first.
func (h *Hub) Register(conn *websocket.Conn, userID string) string {
	h.mu.Lock()
	if old, ok := h.byUser[userID]; ok {
		if s, ok := h.sessions[old]; ok {
			s.conn.Close()
			delete(h.sessions, old)
		}
	}

	s := &session{id: uuid.NewString(), userID: userID, conn: conn}
	h.sessions[s.id] = s
	h.byUser[userID] = s.id
	h.mu.Unlock()

	logger.Log.Infow("websocket session registered", "session_id", s.id, "user_id", userID)

	if err := s.write(Envelope{
		Type:      TypeConnected,
		SessionID: s.id,
		Timestamp: time.Now().Unix(),
	}); err != nil {
		h.Unregister(s.id)
		return ""
	}
	return s.id
}

// Unregister drops a session and closes its connection.
func (h *Hub) Unregister(sessionID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	s, ok := h.sessions[sessionID]
	if !ok {
		return
	}
	s.conn.Close()
	delete(h.sessions, sessionID)
	if h.byUser[s.userID] == sessionID {
		delete(h.byUser, s.userID)
	}
	logger.Log.Infow("websocket session unregistered", "session_id", sessionID)
}

// Send delivers an envelope to one session, evicting it on write failure.
func (h *Hub) Send(sessionID string, env Envelope) error {
	h.mu.RLock()
	s, ok := h.sessions[sessionID]
	h.mu.RUnlock()
	if !ok {
		return ErrSessionNotFound
	}

	env.SessionID = sessionID
	if env.Timestamp == 0 {
		env.Timestamp = time.Now().Unix()
	}

	if err := s.write(env); err != nil {
		logger.Log.Errorw("websocket write failed, evicting session", "session_id", sessionID, "err", err)
		h.Unregister(sessionID)
		return err
	}
	return nil
}

// SendToUser delivers an envelope to the user's current session.
func (h *Hub) SendToUser(userID string, env Envelope) error {
	h.mu.RLock()
	sessionID, ok := h.byUser[userID]
	h.mu.RUnlock()
	if !ok {
		return ErrSessionNotFound
	}
	return h.Send(sessionID, env)
}

// Typing toggles the typing indicator on one session.
func (h *Hub) Typing(sessionID string, on bool) {
	h.Send(sessionID, Envelope{Type: TypeTyping, IsTyping: on})
}

// SendError delivers an error envelope to one session.
func (h *Hub) SendError(sessionID, message string) {
	h.Send(sessionID, Envelope{Type: TypeError, Content: message})
}

// Broadcast delivers an envelope to every session except the excluded ids.
// Dead connections are evicted.
func (h *Hub) Broadcast(env Envelope, exclude ...string) {
	skip := make(map[string]bool, len(exclude))
	for _, id := range exclude {
		skip[id] = true
	}

	h.mu.RLock()
	targets := make([]string, 0, len(h.sessions))
	for id := range h.sessions {
		if !skip[id] {
			targets = append(targets, id)
		}
	}
	h.mu.RUnlock()

	for _, id := range targets {
		h.Send(id, env)
	}
}

// Count returns the number of live sessions.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions)
}
