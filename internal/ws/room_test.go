package ws

import "testing"

func TestRoomNames(t *testing.T) {
	if got := UserRoom(5); got != "user_5" {
		t.Fatalf("unexpected user room %q", got)
	}
	if got := ChatRoom(12); got != "chat_12" {
		t.Fatalf("unexpected chat room %q", got)
	}
}
