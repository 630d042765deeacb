package ws

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"social-chat-service/internal/auth"
	"social-chat-service/internal/observability"
	"social-chat-service/internal/telemetry"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	// The session cookie is the credential; origin checks belong to the
	// proxy in front of this service.
	CheckOrigin: func(*http.Request) bool { return true },
}

// Handler upgrades authenticated HTTP requests to websocket sessions and
// pumps their frames into the coordinator.
type Handler struct {
	router      *Router
	coordinator *Coordinator
	verifier    auth.TokenVerifier
	audit       *telemetry.AuditEmitter
}

// NewHandler builds the websocket entrypoint.
func NewHandler(router *Router, coordinator *Coordinator, verifier auth.TokenVerifier, audit *telemetry.AuditEmitter) *Handler {
	return &Handler{
		router:      router,
		coordinator: coordinator,
		verifier:    verifier,
		audit:       audit,
	}
}

// Handle authenticates the request, upgrades it, and starts the session
// read loop. Authentication happens before the upgrade so rejected clients
// get a plain HTTP status.
func (h *Handler) Handle(c *gin.Context) {
	ctx, span := otel.Tracer("social-chat-service/ws").Start(c.Request.Context(), "ws.handshake")
	defer span.End()

	token, err := auth.TokenFromCookieHeader(c.GetHeader("Cookie"))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	userID, err := h.verifier.Verify(ctx, token)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		return
	}
	span.SetAttributes(attribute.Int("user.id", userID))
	if reqID := observability.RequestIDFromRequest(c.Request); reqID != "" {
		span.SetAttributes(attribute.String("request.id", reqID))
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade has already written its own error response.
		log.Printf("ws upgrade failed user=%d: %v", userID, err)
		return
	}

	sess := NewSession(userID, conn)
	sess.IP = observability.IPFromRequest(c.Request)

	h.router.Join(sess, UserRoom(userID))
	observability.IncWSActive("client")
	observability.IncWSEvent("connection", "opened")

	id64 := int64(userID)
	h.audit.Emit(ctx, "info", fmt.Sprintf("ws connected from %s", sess.IP), sess.ID, &id64)

	// The request context dies with the handshake; the session outlives it.
	go h.serve(context.Background(), sess, conn)
}

func (h *Handler) serve(ctx context.Context, sess *Session, conn *websocket.Conn) {
	defer func() {
		h.router.LeaveAll(sess)
		observability.DecWSActive("client")
		observability.IncWSEvent("connection", "closed")

		id64 := int64(sess.UserID)
		h.audit.Emit(ctx, "info", "ws disconnected", sess.ID, &id64)

		sess.Close()
	}()

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("ws read failed conn=%s user=%d: %v", sess.ID, sess.UserID, err)
			}
			return
		}

		var ev Event
		if err := json.Unmarshal(raw, &ev); err != nil {
			// A malformed frame is the client's problem, not the
			// connection's.
			observability.IncWSEvent("frame", "malformed")
			if sendErr := sess.Send(EvError, errorPayload{Error: "malformed frame"}); sendErr != nil {
				return
			}
			continue
		}

		h.coordinator.HandleEvent(ctx, sess, ev)
	}
}
