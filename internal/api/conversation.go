package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"intelligent-chatbot/backend/internal/models"
	"intelligent-chatbot/backend/internal/service"
	"intelligent-chatbot/backend/pkg/errors"
	"intelligent-chatbot/backend/pkg/jwt"
	"intelligent-chatbot/backend/pkg/middleware"
)

// ConversationController handles conversation lookup and deletion.
type ConversationController struct {
	conversations service.ConversationStore
	jwtService    *jwt.Service
}

func NewConversationController(conversations service.ConversationStore, jwtService *jwt.Service) *ConversationController {
	return &ConversationController{
		conversations: conversations,
		jwtService:    jwtService,
	}
}

// RegisterRoutes registers conversation routes on the given group.
// The query-style lookup is public (scoped by the ids the caller
// already holds); the id-path routes require a bearer token and are
// restricted to the owning user.
func (c *ConversationController) RegisterRoutes(group *gin.RouterGroup) {
	group.GET("/conversation", c.Query)

	owned := group.Group("/conversations")
	owned.Use(middleware.RequireAuth(c.jwtService))
	{
		owned.GET("/:id", c.GetByID)
		owned.DELETE("/:id", c.DeleteByID)
	}
}

// Query fetches a conversation by id, or a user's conversations with an
// optional latest flag.
func (c *ConversationController) Query(ctx *gin.Context) {
	id := ctx.Query("id")
	userID := ctx.Query("userId")
	latest := ctx.Query("latest") == "true"

	switch {
	case id != "":
		conversation, err := c.conversations.Get(ctx.Request.Context(), id)
		if err != nil {
			ctx.Error(errors.NewStoreError("Failed to fetch conversation"))
			return
		}
		if conversation == nil {
			ctx.Error(errors.NewNotFoundError(errors.CodeNotFound, "Conversation not found"))
			return
		}
		ctx.JSON(http.StatusOK, gin.H{"conversation": conversation})

	case userID != "":
		limit := 10
		if latest {
			limit = 1
		}
		conversations, err := c.conversations.ListRecent(ctx.Request.Context(), userID, limit)
		if err != nil {
			ctx.Error(errors.NewStoreError("Failed to fetch conversations"))
			return
		}
		if latest {
			if len(conversations) == 0 {
				ctx.JSON(http.StatusOK, gin.H{"conversation": nil})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"conversation": conversations[0]})
			return
		}
		ctx.JSON(http.StatusOK, gin.H{"conversations": conversations})

	default:
		limit := 10
		if raw := ctx.Query("limit"); raw != "" {
			if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
				limit = parsed
			}
		}
		conversations, err := c.conversations.ListRecent(ctx.Request.Context(), "", limit)
		if err != nil {
			ctx.Error(errors.NewStoreError("Failed to fetch conversations"))
			return
		}
		ctx.JSON(http.StatusOK, gin.H{"conversations": conversations})
	}
}

// GetByID returns one of the caller's conversations with its messages.
func (c *ConversationController) GetByID(ctx *gin.Context) {
	conversation, ok := c.ownedConversation(ctx)
	if !ok {
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"conversation": conversation})
}

// DeleteByID removes one of the caller's conversations; messages are
// cascade-deleted with it.
func (c *ConversationController) DeleteByID(ctx *gin.Context) {
	conversation, ok := c.ownedConversation(ctx)
	if !ok {
		return
	}

	if err := c.conversations.Delete(ctx.Request.Context(), conversation.ID); err != nil {
		ctx.Error(errors.NewStoreError("Failed to delete conversation"))
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"success": true})
}

// ownedConversation loads the conversation in the id path parameter and
// verifies the authenticated caller owns it. A conversation belonging
// to someone else is reported as not found rather than forbidden.
func (c *ConversationController) ownedConversation(ctx *gin.Context) (*models.Conversation, bool) {
	id := ctx.Param("id")
	userID := middleware.AuthenticatedUser(ctx)

	conversation, err := c.conversations.Get(ctx.Request.Context(), id)
	if err != nil {
		ctx.Error(errors.NewStoreError("Failed to fetch conversation"))
		return nil, false
	}
	if conversation == nil || conversation.UserID != userID {
		ctx.Error(errors.NewNotFoundError(errors.CodeNotFound, "Conversation not found"))
		return nil, false
	}
	return conversation, true
}
