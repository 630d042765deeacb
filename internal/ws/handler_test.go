package ws

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"social-chat-service/internal/auth"
	"social-chat-service/internal/mocks"
)

func setupWSRouter(handler *Handler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/ws", handler.Handle)
	return r
}

func TestHandleRejectsMissingCookie(t *testing.T) {
	verifier := new(mocks.VerifierMock)
	handler := NewHandler(NewRouter(), nil, verifier, nil)
	router := setupWSRouter(handler)

	req := httptest.NewRequest(http.MethodGet, "/ws", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	verifier.AssertNotCalled(t, "Verify", mock.Anything, mock.Anything)
}

func TestHandleRejectsInvalidToken(t *testing.T) {
	verifier := new(mocks.VerifierMock)
	verifier.On("Verify", mock.Anything, "bad-token").Return(0, auth.ErrInvalidToken).Once()
	handler := NewHandler(NewRouter(), nil, verifier, nil)
	router := setupWSRouter(handler)

	req := httptest.NewRequest(http.MethodGet, "/ws", nil)
	req.Header.Set("Cookie", auth.CookieName+"=bad-token")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	verifier.AssertExpectations(t)
}
