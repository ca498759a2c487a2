package ws

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"intelligent-chatbot/backend/internal/completion"
	"intelligent-chatbot/backend/internal/service"
	"intelligent-chatbot/backend/pkg/errors"
	"intelligent-chatbot/backend/pkg/jwt"
	"intelligent-chatbot/backend/pkg/logger"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	maxMessageSize = 64 * 1024
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin: func(r *http.Request) bool {
		// Origin policy is enforced by the CORS layer in front.
		return true
	},
}

// inbound is one chat turn sent over the socket.
type inbound struct {
	Messages       []completion.Message `json:"messages"`
	Content        string               `json:"content"`
	Language       string               `json:"language"`
	Model          string               `json:"model"`
	ConversationID string               `json:"conversationId"`
}

// outbound mirrors the HTTP chat response, plus an error variant.
type outbound struct {
	Response       string `json:"response,omitempty"`
	ConversationID string `json:"conversationId,omitempty"`
	UsedFallback   bool   `json:"usedFallback,omitempty"`
	Error          string `json:"error,omitempty"`
}

// Handler serves interactive chat over a websocket, running each
// inbound turn through the same pipeline as the HTTP endpoint.
type Handler struct {
	chat       *service.ChatService
	jwtService *jwt.Service
	log        *logger.Logger
}

func NewHandler(chat *service.ChatService, jwtService *jwt.Service, log *logger.Logger) *Handler {
	return &Handler{
		chat:       chat,
		jwtService: jwtService,
		log:        log,
	}
}

// Serve upgrades the connection and processes chat turns until the
// client disconnects. Identity comes from an optional token query
// parameter; invalid tokens fall back to anonymous.
func (h *Handler) Serve(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", "error", err.Error())
		return
	}
	defer conn.Close()

	userID := ""
	if token := c.Query("token"); token != "" {
		if claims, err := h.jwtService.ValidateToken(token); err == nil {
			userID = claims.UserID
		}
	}

	conn.SetReadLimit(maxMessageSize)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		var msg inbound
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.log.Warn("websocket read error", "error", err.Error())
			}
			return
		}
		conn.SetReadDeadline(time.Now().Add(pongWait))

		messages := msg.Messages
		if len(messages) == 0 && msg.Content != "" {
			messages = []completion.Message{{Role: "user", Content: msg.Content}}
		}

		response, err := h.chat.Send(c.Request.Context(), service.ChatRequest{
			Messages:       messages,
			Language:       msg.Language,
			Model:          msg.Model,
			ConversationID: msg.ConversationID,
			UserID:         userID,
		})

		conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err != nil {
			appErr := errors.FromError(err)
			if werr := conn.WriteJSON(outbound{Error: appErr.Message}); werr != nil {
				return
			}
			continue
		}

		if werr := conn.WriteJSON(outbound{
			Response:       response.Response,
			ConversationID: response.ConversationID,
			UsedFallback:   response.UsedFallback,
		}); werr != nil {
			return
		}
	}
}
