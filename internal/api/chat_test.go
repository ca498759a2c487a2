package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"intelligent-chatbot/backend/internal/completion"
	"intelligent-chatbot/backend/internal/fallback"
	"intelligent-chatbot/backend/internal/models"
	"intelligent-chatbot/backend/internal/moderation"
	"intelligent-chatbot/backend/internal/service"
	"intelligent-chatbot/backend/pkg/errors"
	"intelligent-chatbot/backend/pkg/jwt"
	"intelligent-chatbot/backend/pkg/logger"
	"intelligent-chatbot/backend/pkg/middleware"
)

type stubSearcher struct{}

func (stubSearcher) Search(ctx context.Context, query string) string { return "" }

type stubGateway struct {
	reply string
	err   error
}

func (s *stubGateway) Complete(ctx context.Context, req completion.Request) (string, error) {
	return s.reply, s.err
}

func (s *stubGateway) DefaultModel() string { return "meta-llama/llama-4-maverick:free" }

type recordingStore struct {
	conversations map[string]*models.Conversation
	created       int
	addCalls      int
	deleted       []string
}

func newRecordingStore() *recordingStore {
	return &recordingStore{conversations: make(map[string]*models.Conversation)}
}

func (s *recordingStore) Create(ctx context.Context, userID string) (string, error) {
	s.created++
	id := "conv-1"
	s.conversations[id] = &models.Conversation{ID: id, UserID: userID}
	return id, nil
}

func (s *recordingStore) AddMessage(ctx context.Context, conversationID, role, content string, metadata map[string]any) (string, error) {
	s.addCalls++
	return "msg-1", nil
}

func (s *recordingStore) Get(ctx context.Context, id string) (*models.Conversation, error) {
	return s.conversations[id], nil
}

func (s *recordingStore) ListRecent(ctx context.Context, userID string, limit int) ([]models.Conversation, error) {
	var out []models.Conversation
	for _, c := range s.conversations {
		if userID == "" || c.UserID == userID {
			out = append(out, *c)
		}
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *recordingStore) Delete(ctx context.Context, id string) error {
	s.deleted = append(s.deleted, id)
	delete(s.conversations, id)
	return nil
}

func testJWT() *jwt.Service {
	return jwt.NewService("test-secret", time.Hour)
}

func newChatRouter(gateway *stubGateway, store *recordingStore, jwtService *jwt.Service) *gin.Engine {
	gin.SetMode(gin.TestMode)
	log := logger.New(logger.Config{Level: "error", Output: io.Discard})

	chatService := service.NewChatService(
		moderation.New(nil),
		stubSearcher{},
		gateway,
		fallback.New(fallback.DefaultReplies(), "en"),
		store,
		nil,
		log,
	)

	engine := gin.New()
	engine.Use(errors.ErrorHandler())
	group := engine.Group("/api")
	group.Use(middleware.OptionalAuth(jwtService))
	NewChatController(chatService).RegisterRoutes(group)
	return engine
}

func postJSON(t *testing.T, engine *gin.Engine, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)

	req, _ := http.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func TestChatEndpointSuccess(t *testing.T) {
	store := newRecordingStore()
	engine := newChatRouter(&stubGateway{reply: "Hi there!"}, store, testJWT())

	w := postJSON(t, engine, "/api/chat", gin.H{
		"messages": []gin.H{{"role": "user", "content": "hello"}},
	}, nil)

	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Response     string `json:"response"`
		UsedFallback bool   `json:"usedFallback"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Hi there!", resp.Response)
	assert.False(t, resp.UsedFallback)

	// Anonymous requests are never persisted.
	assert.Zero(t, store.created)
	assert.Zero(t, store.addCalls)
}

func TestChatEndpointFallback(t *testing.T) {
	gateway := &stubGateway{err: &completion.Error{Reason: completion.ReasonMissingKey}}
	engine := newChatRouter(gateway, newRecordingStore(), testJWT())

	w := postJSON(t, engine, "/api/chat", gin.H{
		"messages": []gin.H{{"role": "user", "content": "hello"}},
	}, nil)

	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		UsedFallback bool `json:"usedFallback"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.UsedFallback)
}

func TestChatEndpointModeration(t *testing.T) {
	engine := newChatRouter(&stubGateway{reply: "never"}, newRecordingStore(), testJWT())

	w := postJSON(t, engine, "/api/chat", gin.H{
		"messages": []gin.H{{"role": "user", "content": "I will attack you"}},
	}, nil)

	require.Equal(t, http.StatusBadRequest, w.Code)

	var resp struct {
		Error struct {
			Code    string             `json:"code"`
			Details map[string]float64 `json:"details"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, errors.CodeContentRejected, resp.Error.Code)
	assert.Equal(t, 0.9, resp.Error.Details["violence"])
	assert.Contains(t, resp.Error.Details, "hate")
}

func TestChatEndpointMissingMessages(t *testing.T) {
	engine := newChatRouter(&stubGateway{}, newRecordingStore(), testJWT())

	w := postJSON(t, engine, "/api/chat", gin.H{"messages": []gin.H{}}, nil)

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), errors.CodeValidation)
}

func TestChatEndpointAuthenticatedPersists(t *testing.T) {
	store := newRecordingStore()
	jwtService := testJWT()
	engine := newChatRouter(&stubGateway{reply: "stored"}, store, jwtService)

	token, err := jwtService.GenerateToken("user-1", "user@example.com")
	require.NoError(t, err)

	w := postJSON(t, engine, "/api/chat", gin.H{
		"messages": []gin.H{{"role": "user", "content": "remember this"}},
	}, map[string]string{"Authorization": "Bearer " + token})

	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		ConversationID string `json:"conversationId"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "conv-1", resp.ConversationID)
	assert.Equal(t, 1, store.created)
	assert.Equal(t, 2, store.addCalls)
}

func TestChatEndpointBodyUserID(t *testing.T) {
	store := newRecordingStore()
	engine := newChatRouter(&stubGateway{reply: "ok"}, store, testJWT())

	w := postJSON(t, engine, "/api/chat", gin.H{
		"messages": []gin.H{{"role": "user", "content": "hello"}},
		"userId":   "user-2",
	}, nil)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, store.created)
	assert.Equal(t, "user-2", store.conversations["conv-1"].UserID)
}
