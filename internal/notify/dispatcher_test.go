package notify

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"social-chat-service/internal/models"
	"social-chat-service/internal/ws"
)

type emitRecord struct {
	Room    ws.Room
	Event   string
	Payload any
}

type recordingEmitter struct {
	mu    sync.Mutex
	emits []emitRecord
}

func (e *recordingEmitter) Emit(_ context.Context, room ws.Room, event string, payload any) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.emits = append(e.emits, emitRecord{Room: room, Event: event, Payload: payload})
}

func TestDispatchTargetsUserRoom(t *testing.T) {
	emitter := &recordingEmitter{}
	dispatcher := NewDispatcher(emitter)

	dispatcher.Dispatch(context.Background(), 7, models.Notification{Status: "info", Text: "hello"})

	require.Len(t, emitter.emits, 1)
	assert.Equal(t, ws.UserRoom(7), emitter.emits[0].Room)
	assert.Equal(t, ws.EvNotification, emitter.emits[0].Event)

	n := emitter.emits[0].Payload.(models.Notification)
	assert.Equal(t, "hello", n.Text)
}

func TestFriendRequestHelpers(t *testing.T) {
	emitter := &recordingEmitter{}
	dispatcher := NewDispatcher(emitter)

	dispatcher.FriendRequestSent(context.Background(), 2, "alice")
	dispatcher.FriendRequestAccepted(context.Background(), 1, "bob")

	require.Len(t, emitter.emits, 2)

	sent := emitter.emits[0].Payload.(models.Notification)
	assert.Equal(t, ws.UserRoom(2), emitter.emits[0].Room)
	assert.Contains(t, sent.Text, "alice")
	assert.Equal(t, "info", sent.Status)

	accepted := emitter.emits[1].Payload.(models.Notification)
	assert.Equal(t, ws.UserRoom(1), emitter.emits[1].Room)
	assert.Contains(t, accepted.Text, "bob")
	assert.Equal(t, "success", accepted.Status)
}
