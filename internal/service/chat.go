package service

import (
	"context"
	"time"

	"intelligent-chatbot/backend/internal/completion"
	"intelligent-chatbot/backend/internal/fallback"
	"intelligent-chatbot/backend/internal/moderation"
	"intelligent-chatbot/backend/pkg/errors"
	"intelligent-chatbot/backend/pkg/logger"
	"intelligent-chatbot/backend/shared/observability"
)

// KnowledgeSearcher retrieves the knowledge blob for a query.
type KnowledgeSearcher interface {
	Search(ctx context.Context, query string) string
}

// CompletionClient is the completion gateway surface the pipeline needs.
type CompletionClient interface {
	Complete(ctx context.Context, req completion.Request) (string, error)
	DefaultModel() string
}

// ChatRequest is one inbound chat turn.
type ChatRequest struct {
	Messages       []completion.Message
	Language       string
	Model          string
	ConversationID string
	UserID         string
}

// ChatResponse is the pipeline's reply.
type ChatResponse struct {
	Response       string `json:"response"`
	ConversationID string `json:"conversationId,omitempty"`
	UsedFallback   bool   `json:"usedFallback"`
}

// ChatService orchestrates one chat turn: moderation, knowledge lookup,
// completion with fallback, and persistence for identified users.
type ChatService struct {
	moderator     *moderation.Moderator
	knowledge     KnowledgeSearcher
	gateway       CompletionClient
	fallback      *fallback.Responder
	conversations ConversationStore
	metrics       *observability.ChatMetrics
	log           *logger.Logger
}

func NewChatService(
	moderator *moderation.Moderator,
	knowledge KnowledgeSearcher,
	gateway CompletionClient,
	responder *fallback.Responder,
	conversations ConversationStore,
	metrics *observability.ChatMetrics,
	log *logger.Logger,
) *ChatService {
	return &ChatService{
		moderator:     moderator,
		knowledge:     knowledge,
		gateway:       gateway,
		fallback:      responder,
		conversations: conversations,
		metrics:       metrics,
		log:           log,
	}
}

// Send processes one chat turn. Moderation rejections come back as an
// AppError; provider failures are recovered locally via the fallback
// responder and tagged in the response. Persistence happens only for
// requests carrying a user identity, and its failure never fails the
// turn.
func (s *ChatService) Send(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	if len(req.Messages) == 0 {
		return nil, errors.NewValidationError("messages is required")
	}

	userMessage := latestUserMessage(req.Messages)
	if userMessage == "" {
		return nil, errors.NewValidationError("at least one user message is required")
	}

	s.metrics.RecordRequest(ctx, req.UserID != "")

	verdict := s.moderator.Check(userMessage)
	if !verdict.IsSafe {
		s.metrics.RecordRejection(ctx)
		s.log.Warn("message rejected by moderation", "conversation_id", req.ConversationID)
		return nil, errors.NewModerationRejection(verdict.Scores)
	}

	knowledgeBlob := s.knowledge.Search(ctx, userMessage)

	model := req.Model
	if model == "" {
		model = s.gateway.DefaultModel()
	}

	reply, err := s.gateway.Complete(ctx, completion.Request{
		Model:     model,
		Messages:  req.Messages,
		Knowledge: knowledgeBlob,
		Language:  req.Language,
	})

	usedFallback := false
	if err != nil {
		usedFallback = true
		reason := completion.ReasonProviderError
		if cerr, ok := err.(*completion.Error); ok {
			reason = cerr.Reason
		}
		s.metrics.RecordFallback(ctx, reason)
		s.log.Warn("completion failed, using fallback responder",
			"reason", reason,
			"error", err.Error(),
		)
		reply = s.fallback.Respond(userMessage, knowledgeBlob, req.Language)
	}

	conversationID := req.ConversationID
	if req.UserID != "" {
		conversationID = s.persist(ctx, req, userMessage, reply, usedFallback)
	}

	return &ChatResponse{
		Response:       reply,
		ConversationID: conversationID,
		UsedFallback:   usedFallback,
	}, nil
}

// persist records the user and assistant turns. The conversation row is
// created before any message so an interrupted request leaves an empty
// conversation rather than a dangling message. Store failures degrade
// to skipping persistence.
func (s *ChatService) persist(ctx context.Context, req ChatRequest, userMessage, reply string, usedFallback bool) string {
	conversationID := req.ConversationID
	if conversationID == "" {
		id, err := s.conversations.Create(ctx, req.UserID)
		if err != nil {
			s.log.Warn("skipping persistence", "error", err.Error())
			return ""
		}
		conversationID = id
	}

	metadata := map[string]any{
		"timestamp": time.Now().UnixMilli(),
	}
	if req.Language != "" {
		metadata["language"] = req.Language
	}

	if _, err := s.conversations.AddMessage(ctx, conversationID, "user", userMessage, metadata); err != nil {
		s.log.Warn("failed to persist user message", "error", err.Error())
		return conversationID
	}

	assistantMeta := map[string]any{
		"timestamp": time.Now().UnixMilli(),
	}
	if req.Language != "" {
		assistantMeta["language"] = req.Language
	}
	if usedFallback {
		assistantMeta["fallback"] = true
	}

	if _, err := s.conversations.AddMessage(ctx, conversationID, "assistant", reply, assistantMeta); err != nil {
		s.log.Warn("failed to persist assistant message", "error", err.Error())
	}

	return conversationID
}

// latestUserMessage returns the content of the most recent user turn.
func latestUserMessage(messages []completion.Message) string {
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == "user" {
			return messages[i].Content
		}
	}
	return ""
}
