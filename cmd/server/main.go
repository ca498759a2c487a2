package main

import (
	"context"
	stdlog "log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"intelligent-chatbot/backend/internal/models"
	"intelligent-chatbot/backend/pkg/config"
	"intelligent-chatbot/backend/pkg/di"
	"intelligent-chatbot/backend/pkg/logger"
	"intelligent-chatbot/backend/pkg/router"
	"intelligent-chatbot/backend/shared/observability"
)

func main() {
	if err := godotenv.Load(); err != nil {
		stdlog.Println("No .env file found")
	}

	cfg := config.New()

	logConfig := logger.DefaultConfig()
	logConfig.Level = cfg.Logging.Level
	logConfig.JSON = cfg.Logging.Format != "text"

	log := logger.New(logConfig)
	logger.SetGlobal(log)

	log.Info("Starting application", "version", os.Getenv("APP_VERSION"))

	db, err := config.NewDB()
	if err != nil {
		log.LogError(err, "Failed to initialize database")
		os.Exit(1)
	}

	if err := db.AutoMigrate(
		&models.Conversation{},
		&models.Message{},
		&models.KnowledgeEntry{},
		&models.Feedback{},
	); err != nil {
		log.LogError(err, "Failed to migrate database")
		os.Exit(1)
	}

	if err := db.Exec("CREATE INDEX IF NOT EXISTS idx_messages_conversation ON messages(conversation_id, created_at)").Error; err != nil {
		log.LogError(err, "Failed to create message index", "index", "idx_messages_conversation")
	}
	if err := db.Exec("CREATE INDEX IF NOT EXISTS idx_conversations_user ON conversations(user_id, updated_at)").Error; err != nil {
		log.LogError(err, "Failed to create conversation index", "index", "idx_conversations_user")
	}

	shutdownTracing := observability.SetupTracing("chatbot-backend", log)
	defer shutdownTracing()

	if metricsAddr := os.Getenv("METRICS_ADDR"); metricsAddr != "" {
		observability.SetupPrometheusMetrics(metricsAddr, log)
	}

	container, err := di.New(db, cfg, log)
	if err != nil {
		log.LogError(err, "Failed to initialize dependency container")
		os.Exit(1)
	}
	defer container.Close()

	r := router.New(container)
	r.SetupRoutes()

	// No write timeout here: the websocket endpoint holds connections
	// open and manages its own deadlines.
	srv := &http.Server{
		Addr:        ":" + cfg.Server.Port,
		Handler:     r.Engine,
		ReadTimeout: cfg.Server.Timeout,
	}

	go func() {
		log.Info("Server starting", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.LogError(err, "Server failed to start")
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.LogError(err, "Server forced to shutdown")
	}

	log.Info("Server exited gracefully")
}
