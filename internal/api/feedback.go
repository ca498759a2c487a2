package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"intelligent-chatbot/backend/internal/service"
	"intelligent-chatbot/backend/pkg/errors"
)

// FeedbackController handles the feedback endpoint.
type FeedbackController struct {
	feedback *service.FeedbackService
}

func NewFeedbackController(feedback *service.FeedbackService) *FeedbackController {
	return &FeedbackController{feedback: feedback}
}

// RegisterRoutes registers the feedback routes on the given group.
func (c *FeedbackController) RegisterRoutes(group *gin.RouterGroup) {
	group.POST("/feedback", c.Submit)
}

type feedbackRequest struct {
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

// Submit stores a user rating, optionally with a comment.
func (c *FeedbackController) Submit(ctx *gin.Context) {
	var req feedbackRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.Error(errors.NewValidationError("Invalid request body"))
		return
	}

	if err := c.feedback.Record(ctx.Request.Context(), req.Rating, req.Comment); err != nil {
		ctx.Error(err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"success": true})
}
