package di

import (
	"fmt"
	"time"

	"gorm.io/gorm"

	"intelligent-chatbot/backend/internal/api"
	"intelligent-chatbot/backend/internal/completion"
	"intelligent-chatbot/backend/internal/fallback"
	"intelligent-chatbot/backend/internal/knowledge"
	"intelligent-chatbot/backend/internal/moderation"
	"intelligent-chatbot/backend/internal/service"
	"intelligent-chatbot/backend/internal/ws"
	"intelligent-chatbot/backend/pkg/config"
	"intelligent-chatbot/backend/pkg/jwt"
	"intelligent-chatbot/backend/pkg/logger"
	"intelligent-chatbot/backend/pkg/resilience"
	"intelligent-chatbot/backend/pkg/secrets"
	"intelligent-chatbot/backend/shared/observability"
	"intelligent-chatbot/backend/shared/redis"
)

// Container holds all the dependencies for the application.
type Container struct {
	DB         *gorm.DB
	Logger     *logger.Logger
	Config     *config.Config
	JWTService *jwt.Service
	Secrets    secrets.Manager
	Redis      *redis.Client
	Metrics    *observability.ChatMetrics

	Moderator *moderation.Moderator
	Lookup    *knowledge.Lookup
	Gateway   *completion.Gateway
	Responder *fallback.Responder

	ChatService         *service.ChatService
	ConversationService *service.ConversationService
	KnowledgeService    *service.KnowledgeService
	FeedbackService     *service.FeedbackService

	ChatController         *api.ChatController
	ConversationController *api.ConversationController
	KnowledgeController    *api.KnowledgeController
	FeedbackController     *api.FeedbackController
	WSHandler              *ws.Handler
}

// New wires all services from the database handle and configuration.
func New(db *gorm.DB, cfg *config.Config, log *logger.Logger) (*Container, error) {
	if cfg == nil {
		cfg = config.Get()
	}
	if log == nil {
		log = logger.New(logger.DefaultConfig())
	}

	jwtService := jwt.NewService(cfg.JWT.Secret, 24*time.Hour)

	secretsManager, err := secrets.NewManager(log)
	if err != nil {
		return nil, fmt.Errorf("failed to create secrets manager: %w", err)
	}

	redisClient := redis.NewClient(redis.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	metrics, err := observability.NewChatMetrics()
	if err != nil {
		log.Warn("chat metrics unavailable", "error", err.Error())
		metrics = nil
	}

	moderator := moderation.New(moderation.DefaultTerms())
	responder := fallback.New(fallback.DefaultReplies(), cfg.Completion.DefaultLanguage)

	knowledgeRepo := knowledge.NewGormRepository(db)
	extractor := knowledge.NewExtractor(knowledge.DefaultStopWords())
	lookup := knowledge.NewLookup(knowledgeRepo, extractor, log)

	breaker := resilience.New(resilience.DefaultConfig("completion-provider"), log)
	gateway := completion.NewGateway(completion.OptionsFromConfig(cfg), secretsManager, breaker, log)

	conversationService := service.NewConversationService(db)
	chatService := service.NewChatService(moderator, lookup, gateway, responder, conversationService, metrics, log)
	knowledgeService := service.NewKnowledgeService(knowledgeRepo, redisClient, cfg, log)
	feedbackService := service.NewFeedbackService(db)

	return &Container{
		DB:         db,
		Logger:     log,
		Config:     cfg,
		JWTService: jwtService,
		Secrets:    secretsManager,
		Redis:      redisClient,
		Metrics:    metrics,

		Moderator: moderator,
		Lookup:    lookup,
		Gateway:   gateway,
		Responder: responder,

		ChatService:         chatService,
		ConversationService: conversationService,
		KnowledgeService:    knowledgeService,
		FeedbackService:     feedbackService,

		ChatController:         api.NewChatController(chatService),
		ConversationController: api.NewConversationController(conversationService, jwtService),
		KnowledgeController:    api.NewKnowledgeController(knowledgeService),
		FeedbackController:     api.NewFeedbackController(feedbackService),
		WSHandler:              ws.NewHandler(chatService, jwtService, log),
	}, nil
}

// Close releases resources held by the container.
func (c *Container) Close() error {
	if c.Redis != nil {
		return c.Redis.Close()
	}
	return nil
}
