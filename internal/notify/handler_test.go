package notify

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"social-chat-service/internal/models"
	"social-chat-service/internal/ws"
)

func setupNotifyRouter(emitter *recordingEmitter) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handler := NewHandler(NewDispatcher(emitter))
	r.POST("/internal/notifications", handler.Dispatch)
	return r
}

func TestDispatchEndpointAccepts(t *testing.T) {
	emitter := &recordingEmitter{}
	router := setupNotifyRouter(emitter)

	body := []byte(`{"user_id": 4, "status": "info", "text": "new follower", "link": "/profile/9"}`)
	req := httptest.NewRequest(http.MethodPost, "/internal/notifications", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusAccepted, rec.Code)
	require.Len(t, emitter.emits, 1)
	assert.Equal(t, ws.UserRoom(4), emitter.emits[0].Room)

	n := emitter.emits[0].Payload.(models.Notification)
	assert.Equal(t, "new follower", n.Text)
	assert.Equal(t, "/profile/9", n.Link)
}

func TestDispatchEndpointValidates(t *testing.T) {
	emitter := &recordingEmitter{}
	router := setupNotifyRouter(emitter)

	cases := []string{
		`{"status": "info", "text": "missing user"}`,
		`{"user_id": 4, "text": "missing status"}`,
		`{"user_id": 4, "status": "info"}`,
		`not json`,
	}
	for _, body := range cases {
		req := httptest.NewRequest(http.MethodPost, "/internal/notifications", bytes.NewReader([]byte(body)))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code, "body %s", body)
	}
	assert.Empty(t, emitter.emits)
}
