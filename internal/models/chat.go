package models

import "time"

// Chat types.
const (
	ChatTypePrivate = "private"
	ChatTypeGroup   = "group"
)

// Chat is a persisted conversation. Private chats keep the ordered member
// pair in user1_id/user2_id to back the uniqueness constraint; group chats
// leave both null and rely on chat_members alone.
type Chat struct {
	ID         int       `db:"id" json:"id"`
	Type       string    `db:"chat_type" json:"type"`
	Name       string    `db:"name" json:"name"`
	AvatarPath string    `db:"avatar_path" json:"avatar"`
	User1ID    *int      `db:"user1_id" json:"-"`
	User2ID    *int      `db:"user2_id" json:"-"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

// ChatSummary is the chat-list view for one user. Private chats display the
// other participant's name and avatar, resolved by the coordinator.
type ChatSummary struct {
	ChatID      int             `json:"chat_id"`
	Type        string          `json:"type"`
	Name        string          `json:"name"`
	AvatarPath  string          `json:"avatar"`
	FriendID    int             `json:"friend_id,omitempty"`
	Members     []User          `json:"members,omitempty"`
	LastMessage *MessagePreview `json:"last_message,omitempty"`
}

// MessagePreview is the last-message excerpt shown in chat lists.
type MessagePreview struct {
	SenderID   int    `json:"sender_id"`
	SenderName string `json:"sender_name,omitempty"`
	Text       string `json:"text"`
}

// ChatDetail is the full view of one chat sent to a single requester.
type ChatDetail struct {
	ID        int       `json:"id"`
	Type      string    `json:"type"`
	Name      string    `json:"name"`
	Avatar    string    `json:"avatar"`
	Members   []User    `json:"members"`
	Messages  []Message `json:"messages"`
	CreatedAt time.Time `json:"created_at"`
}
