package handlers

import (
	"context"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/abzsd/CareAgents/internal/logger"
	"github.com/abzsd/CareAgents/internal/middlewares"
	"github.com/abzsd/CareAgents/internal/streaming"
)

// ChatAgent answers chat messages, emitting the reply in ordered chunks.
type ChatAgent interface {
	HandleMessage(ctx context.Context, patientID, message string, emit func(chunk string) error) error
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// NewChatWSHandler returns an HTTP handler that upgrades to a websocket and
// streams agent replies for incoming chat messages.
// @Summary Chat websocket
// @Description Upgrades to a websocket. Send chat_message envelopes; replies stream back as stream_start / stream_chunk / stream_end.
// @Tags chat
// @Success 101 "Switching protocols"
// @Failure 401 {object} handlers.ErrorResponse "Missing or invalid token"
// @Security BearerAuth
// @Router /ws/chat [get]
func NewChatWSHandler(hub *streaming.Hub, agent ChatAgent) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims := middlewares.GetClaimsFromContext(r.Context())
		if claims == nil {
			writeError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logger.Log.Errorw("websocket upgrade failed", "err", err)
			return
		}

		sessionID := hub.Register(conn, claims.UserID)
		if sessionID == "" {
			return
		}
		defer hub.Unregister(sessionID)

		for {
			var env streaming.Envelope
			if err := conn.ReadJSON(&env); err != nil {
				return
			}

			if env.Type != streaming.TypeChatMessage {
				hub.SendError(sessionID, "unsupported message type")
				continue
			}
			if env.Content == "" {
				hub.SendError(sessionID, "empty message")
				continue
			}

			patientID := env.PatientID
			if patientID == "" {
				patientID = claims.UserID
			}

			hub.Typing(sessionID, true)
			hub.Send(sessionID, streaming.Envelope{Type: streaming.TypeStreamStart})

			err := agent.HandleMessage(r.Context(), patientID, env.Content, func(chunk string) error {
				return hub.Send(sessionID, streaming.Envelope{
					Type:    streaming.TypeStreamChunk,
					Content: chunk,
				})
			})

			hub.Typing(sessionID, false)
			if err != nil {
				logger.Log.Errorw("chat agent failed", "session_id", sessionID, "err", err)
				hub.SendError(sessionID, "assistant unavailable, try again")
				continue
			}
			hub.Send(sessionID, streaming.Envelope{Type: streaming.TypeStreamEnd})
		}
	}
}
