package notify

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"social-chat-service/internal/models"
)

type dispatchRequest struct {
	UserID   int    `json:"user_id" binding:"required,gt=0"`
	Status   string `json:"status" binding:"required"`
	Text     string `json:"text" binding:"required"`
	Link     string `json:"link"`
	Duration int    `json:"duration" binding:"omitempty,gte=0"`
}

// Handler exposes the dispatcher on an internal HTTP endpoint so sibling
// services can push notifications without speaking the socket protocol.
type Handler struct {
	dispatcher *Dispatcher
}

// NewHandler builds the HTTP entrypoint for notifications.
func NewHandler(dispatcher *Dispatcher) *Handler {
	return &Handler{dispatcher: dispatcher}
}

// Dispatch accepts a notification and queues it for delivery. Always 202:
// delivery is best effort and the caller cannot act on a miss.
func (h *Handler) Dispatch(c *gin.Context) {
	var req dispatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	h.dispatcher.Dispatch(c.Request.Context(), req.UserID, models.Notification{
		Status:   req.Status,
		Text:     req.Text,
		Link:     req.Link,
		Duration: req.Duration,
	})
	c.JSON(http.StatusAccepted, gin.H{"status": "queued"})
}
