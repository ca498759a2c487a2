package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"intelligent-chatbot/backend/internal/service"
	"intelligent-chatbot/backend/pkg/errors"
)

// KnowledgeController handles the knowledge-base admin endpoints.
type KnowledgeController struct {
	knowledge *service.KnowledgeService
}

func NewKnowledgeController(knowledge *service.KnowledgeService) *KnowledgeController {
	return &KnowledgeController{knowledge: knowledge}
}

// RegisterRoutes registers the knowledge routes on the given group.
func (c *KnowledgeController) RegisterRoutes(group *gin.RouterGroup) {
	group.GET("/knowledge", c.List)
	group.POST("/knowledge", c.Add)
}

// List returns all knowledge entries, newest first.
func (c *KnowledgeController) List(ctx *gin.Context) {
	entries, err := c.knowledge.List(ctx.Request.Context())
	if err != nil {
		ctx.Error(err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"entries": entries})
}

type addKnowledgeRequest struct {
	Title    string   `json:"title"`
	Content  string   `json:"content"`
	Category string   `json:"category"`
	Tags     []string `json:"tags"`
}

// Add stores a new knowledge entry. Title, content and category are
// required.
func (c *KnowledgeController) Add(ctx *gin.Context) {
	var req addKnowledgeRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.Error(errors.NewValidationError("Invalid request body"))
		return
	}

	if err := c.knowledge.Add(ctx.Request.Context(), req.Title, req.Content, req.Category, req.Tags); err != nil {
		ctx.Error(err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"success": true})
}
