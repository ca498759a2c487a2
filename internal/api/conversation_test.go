package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"intelligent-chatbot/backend/internal/models"
	"intelligent-chatbot/backend/pkg/errors"
	"intelligent-chatbot/backend/pkg/jwt"
	"intelligent-chatbot/backend/pkg/middleware"
)

func newConversationRouter(store *recordingStore, jwtService *jwt.Service) *gin.Engine {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	engine.Use(errors.ErrorHandler())
	group := engine.Group("/api")
	group.Use(middleware.OptionalAuth(jwtService))
	NewConversationController(store, jwtService).RegisterRoutes(group)
	return engine
}

func getPath(engine *gin.Engine, path string, headers map[string]string) *httptest.ResponseRecorder {
	req, _ := http.NewRequest(http.MethodGet, path, nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func TestConversationQueryByID(t *testing.T) {
	store := newRecordingStore()
	store.conversations["conv-42"] = &models.Conversation{ID: "conv-42", UserID: "user-1"}
	engine := newConversationRouter(store, testJWT())

	w := getPath(engine, "/api/conversation?id=conv-42", nil)

	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Conversation models.Conversation `json:"conversation"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "conv-42", resp.Conversation.ID)
}

func TestConversationQueryByIDNotFound(t *testing.T) {
	engine := newConversationRouter(newRecordingStore(), testJWT())

	w := getPath(engine, "/api/conversation?id=missing", nil)

	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), errors.CodeNotFound)
}

func TestConversationQueryByUser(t *testing.T) {
	store := newRecordingStore()
	store.conversations["conv-1"] = &models.Conversation{ID: "conv-1", UserID: "user-1"}
	store.conversations["conv-2"] = &models.Conversation{ID: "conv-2", UserID: "user-2"}
	engine := newConversationRouter(store, testJWT())

	w := getPath(engine, "/api/conversation?userId=user-1", nil)

	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Conversations []models.Conversation `json:"conversations"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Conversations, 1)
	assert.Equal(t, "conv-1", resp.Conversations[0].ID)
}

func TestConversationQueryLatest(t *testing.T) {
	store := newRecordingStore()
	store.conversations["conv-1"] = &models.Conversation{ID: "conv-1", UserID: "user-1"}
	engine := newConversationRouter(store, testJWT())

	w := getPath(engine, "/api/conversation?userId=user-1&latest=true", nil)

	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Conversation *models.Conversation `json:"conversation"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotNil(t, resp.Conversation)
	assert.Equal(t, "conv-1", resp.Conversation.ID)
}

func TestConversationQueryLatestEmpty(t *testing.T) {
	engine := newConversationRouter(newRecordingStore(), testJWT())

	w := getPath(engine, "/api/conversation?userId=user-1&latest=true", nil)

	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Conversation *models.Conversation `json:"conversation"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Nil(t, resp.Conversation)
}

func TestConversationGetRequiresAuth(t *testing.T) {
	engine := newConversationRouter(newRecordingStore(), testJWT())

	w := getPath(engine, "/api/conversations/conv-1", nil)

	require.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), errors.CodeUnauthorized)
}

func TestConversationGetOwned(t *testing.T) {
	store := newRecordingStore()
	store.conversations["conv-1"] = &models.Conversation{ID: "conv-1", UserID: "user-1"}
	jwtService := testJWT()
	engine := newConversationRouter(store, jwtService)

	token, err := jwtService.GenerateToken("user-1", "")
	require.NoError(t, err)

	w := getPath(engine, "/api/conversations/conv-1", map[string]string{
		"Authorization": "Bearer " + token,
	})

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "conv-1")
}

func TestConversationGetNotOwnedIsNotFound(t *testing.T) {
	store := newRecordingStore()
	store.conversations["conv-1"] = &models.Conversation{ID: "conv-1", UserID: "user-1"}
	jwtService := testJWT()
	engine := newConversationRouter(store, jwtService)

	token, err := jwtService.GenerateToken("someone-else", "")
	require.NoError(t, err)

	w := getPath(engine, "/api/conversations/conv-1", map[string]string{
		"Authorization": "Bearer " + token,
	})

	// Ownership failures are reported as not found, not forbidden.
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestConversationDelete(t *testing.T) {
	store := newRecordingStore()
	store.conversations["conv-1"] = &models.Conversation{ID: "conv-1", UserID: "user-1"}
	jwtService := testJWT()
	engine := newConversationRouter(store, jwtService)

	token, err := jwtService.GenerateToken("user-1", "")
	require.NoError(t, err)

	req, _ := http.NewRequest(http.MethodDelete, "/api/conversations/conv-1", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"conv-1"}, store.deleted)
}
