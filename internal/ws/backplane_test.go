package ws

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBackplaneLocalModeDelivers(t *testing.T) {
	router := NewRouter()
	sess, conn := newTestSession(1)
	router.Join(sess, ChatRoom(4))

	backplane := NewBackplane(router, nil, "chat.rooms")
	backplane.Start(context.Background())

	backplane.Emit(context.Background(), ChatRoom(4), "newMessage", map[string]string{"content": "hi"})

	frames := conn.recorded()
	require.Len(t, frames, 1)
	assert.Equal(t, "newMessage", frames[0].Event)

	raw, ok := frames[0].Data.(json.RawMessage)
	require.True(t, ok)
	var payload map[string]string
	require.NoError(t, json.Unmarshal(raw, &payload))
	assert.Equal(t, "hi", payload["content"])
}

func TestBackplaneLocalModeScopesToRoom(t *testing.T) {
	router := NewRouter()
	inRoom, inConn := newTestSession(1)
	outOfRoom, outConn := newTestSession(2)
	router.Join(inRoom, ChatRoom(4))
	router.Join(outOfRoom, ChatRoom(5))

	backplane := NewBackplane(router, nil, "chat.rooms")
	backplane.Emit(context.Background(), ChatRoom(4), "newMessage", nil)

	assert.Len(t, inConn.recorded(), 1)
	assert.Empty(t, outConn.recorded())
}
