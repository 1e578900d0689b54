package models

import "time"

const (
	ChannelTypeStandard = "standard"
	ChannelTypeDM       = "dm"
)

type User struct {
	UserID       int64      `db:"user_id" json:"user_id"`
	Username     string     `db:"username" json:"username"`
	Email        string     `db:"email" json:"email"`
	PasswordHash string     `db:"password_hash" json:"-"`
	AvatarURL    *string    `db:"avatar_url" json:"avatar_url"`
	Status       string     `db:"status" json:"status"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt    *time.Time `db:"updated_at" json:"updated_at"`
}

type NewUser struct {
	Username     string
	Email        string
	PasswordHash string
	AvatarURL    *string
	Status       string
}

// UserResponse is the public projection of a user, the only user shape
// that ever leaves the process. The password digest stays out of it.
type UserResponse struct {
	UserID    int64     `json:"user_id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	AvatarURL *string   `json:"avatar_url"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

func (u User) Response() UserResponse {
	return UserResponse{
		UserID:    u.UserID,
		Username:  u.Username,
		Email:     u.Email,
		AvatarURL: u.AvatarURL,
		Status:    u.Status,
		CreatedAt: u.CreatedAt,
	}
}

type Server struct {
	ServerID    int64      `db:"server_id" json:"server_id"`
	ServerName  string     `db:"server_name" json:"server_name"`
	OwnerUserID int64      `db:"owner_user_id" json:"owner_user_id"`
	IconURL     *string    `db:"icon_url" json:"icon_url"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt   *time.Time `db:"updated_at" json:"updated_at"`
}

type NewServer struct {
	ServerName  string
	OwnerUserID int64
	IconURL     *string
}

type ServerMember struct {
	ServerID int64     `db:"server_id" json:"server_id"`
	UserID   int64     `db:"user_id" json:"user_id"`
	Nickname *string   `db:"nickname" json:"nickname"`
	JoinedAt time.Time `db:"joined_at" json:"joined_at"`
}

type NewServerMember struct {
	ServerID int64
	UserID   int64
	Nickname *string
}

type Channel struct {
	ChannelID   int64      `db:"channel_id" json:"channel_id"`
	ServerID    *int64     `db:"server_id" json:"server_id"`
	Name        string     `db:"name" json:"name"`
	ChannelType string     `db:"type" json:"channel_type"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt   *time.Time `db:"updated_at" json:"updated_at"`
}

type NewChannel struct {
	ServerID    *int64
	Name        string
	ChannelType string
}

type DirectMessageMember struct {
	ChannelID int64 `db:"channel_id" json:"channel_id"`
	UserID    int64 `db:"user_id" json:"user_id"`
}

type Message struct {
	MessageID    int64      `db:"message_id" json:"message_id"`
	ChannelID    int64      `db:"channel_id" json:"channel_id"`
	AuthorUserID int64      `db:"author_user_id" json:"author_user_id"`
	Content      string     `db:"content" json:"content"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt    *time.Time `db:"updated_at" json:"updated_at"`
	EditedAt     *time.Time `db:"edited_at" json:"edited_at"`
}

type NewMessage struct {
	ChannelID    int64
	AuthorUserID int64
	Content      string
}

type ServerWithMembers struct {
	Server  Server         `json:"server"`
	Members []UserResponse `json:"members"`
}

type MessageWithAuthor struct {
	MessageID int64        `json:"message_id"`
	Content   string       `json:"content"`
	Author    UserResponse `json:"author"`
	CreatedAt time.Time    `json:"created_at"`
	EditedAt  *time.Time   `json:"edited_at"`
}

type ChannelWithMessages struct {
	Channel  Channel             `json:"channel"`
	Messages []MessageWithAuthor `json:"messages"`
}
