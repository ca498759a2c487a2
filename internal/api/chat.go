package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"intelligent-chatbot/backend/internal/completion"
	"intelligent-chatbot/backend/internal/service"
	"intelligent-chatbot/backend/pkg/errors"
	"intelligent-chatbot/backend/pkg/middleware"
)

// ChatController handles the chat endpoint.
type ChatController struct {
	chat *service.ChatService
}

func NewChatController(chat *service.ChatService) *ChatController {
	return &ChatController{chat: chat}
}

// RegisterRoutes registers the chat routes on the given group.
func (c *ChatController) RegisterRoutes(group *gin.RouterGroup) {
	group.POST("/chat", c.SendMessage)
}

type chatMessage struct {
	Role    string `json:"role" binding:"required"`
	Content string `json:"content" binding:"required"`
}

type chatRequest struct {
	Messages       []chatMessage `json:"messages"`
	Language       string        `json:"language"`
	Model          string        `json:"model"`
	ConversationID string        `json:"conversationId"`
	UserID         string        `json:"userId"`
}

// SendMessage runs the chat pipeline for one inbound message. Identity
// comes from the bearer token when present, falling back to the
// caller-supplied userId.
func (c *ChatController) SendMessage(ctx *gin.Context) {
	var req chatRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.Error(errors.NewValidationError("Invalid request body: " + err.Error()))
		return
	}
	if len(req.Messages) == 0 {
		ctx.Error(errors.NewValidationError("messages is required"))
		return
	}

	userID := middleware.AuthenticatedUser(ctx)
	if userID == "" {
		userID = req.UserID
	}

	messages := make([]completion.Message, len(req.Messages))
	for i, m := range req.Messages {
		messages[i] = completion.Message{Role: m.Role, Content: m.Content}
	}

	response, err := c.chat.Send(ctx.Request.Context(), service.ChatRequest{
		Messages:       messages,
		Language:       req.Language,
		Model:          req.Model,
		ConversationID: req.ConversationID,
		UserID:         userID,
	})
	if err != nil {
		ctx.Error(err)
		return
	}

	ctx.JSON(http.StatusOK, response)
}
