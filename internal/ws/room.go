package ws

import "strconv"

// Room addresses a broadcast group of connections. Rooms are labels, not
// stored entities; both kinds follow a fixed naming convention and raw
// strings never appear at call sites.
type Room string

// UserRoom is the personal notification room every authenticated
// connection of that user joins automatically.
func UserRoom(userID int) Room {
	return Room("user_" + strconv.Itoa(userID))
}

// ChatRoom carries message fan-out for one chat; joined explicitly.
func ChatRoom(chatID int) Room {
	return Room("chat_" + strconv.Itoa(chatID))
}

func (r Room) String() string {
	return string(r)
}
