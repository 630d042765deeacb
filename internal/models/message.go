package models

import "time"

// Message is a persisted chat entry. Immutable once created.
type Message struct {
	ID        int       `db:"id" json:"id"`
	ChatID    int       `db:"chat_id" json:"chat_id"`
	SenderID  int       `db:"sender_id" json:"sender_id"`
	Content   string    `db:"content" json:"content"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`

	// Hydrated from the users table for broadcast and history views.
	SenderUsername string `db:"sender_username" json:"sender_username,omitempty"`
	SenderAvatar   string `db:"sender_avatar" json:"sender_avatar,omitempty"`

	Images []MessageImage `json:"images,omitempty"`
}

// MessageImage is an attachment stored in the object store.
type MessageImage struct {
	ID          int    `db:"id" json:"id"`
	MessageID   int    `db:"message_id" json:"message_id"`
	StoragePath string `db:"storage_path" json:"path"`
	StorageKey  string `db:"storage_key" json:"-"`
}
