package notify

import (
	"context"
	"fmt"

	"social-chat-service/internal/models"
	"social-chat-service/internal/ws"
)

// Dispatcher pushes transient notifications into users' personal rooms.
// Delivery is fire and forget; a user with no open connection simply
// misses the toast.
type Dispatcher struct {
	emitter ws.Emitter
}

// NewDispatcher builds a Dispatcher on top of the broadcast backplane.
func NewDispatcher(emitter ws.Emitter) *Dispatcher {
	return &Dispatcher{emitter: emitter}
}

// Dispatch delivers one notification to every connection the user holds.
func (d *Dispatcher) Dispatch(ctx context.Context, userID int, n models.Notification) {
	d.emitter.Emit(ctx, ws.UserRoom(userID), ws.EvNotification, n)
}

// FriendRequestSent notifies the recipient of a new friend request.
func (d *Dispatcher) FriendRequestSent(ctx context.Context, toUserID int, fromUsername string) {
	d.Dispatch(ctx, toUserID, models.Notification{
		Status: "info",
		Text:   fmt.Sprintf("%s sent you a friend request", fromUsername),
		Link:   "/friends/requests",
	})
}

// FriendRequestAccepted notifies the original sender that their request was
// accepted.
func (d *Dispatcher) FriendRequestAccepted(ctx context.Context, toUserID int, byUsername string) {
	d.Dispatch(ctx, toUserID, models.Notification{
		Status: "success",
		Text:   fmt.Sprintf("%s accepted your friend request", byUsername),
		Link:   "/friends",
	})
}
