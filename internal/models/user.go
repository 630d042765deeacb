package models

// User is the minimal user projection the chat core reads for hydration.
type User struct {
	ID         int    `db:"id" json:"id"`
	Username   string `db:"username" json:"username"`
	AvatarPath string `db:"avatar_path" json:"avatar"`
}
