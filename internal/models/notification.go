package models

// Notification is a transient event delivered to a user's personal room.
// It has no lifecycle beyond delivery and is never persisted.
type Notification struct {
	Status   string `json:"status"`
	Text     string `json:"text"`
	Link     string `json:"link,omitempty"`
	Duration int    `json:"duration,omitempty"`
}
