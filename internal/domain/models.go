package domain

import "time"

// User roles.
const (
	RoleUser      = "user"
	RoleModerator = "moderator"
	RoleAdmin     = "admin"
)

// User presence statuses.
const (
	StatusOnline  = "online"
	StatusOffline = "offline"
	StatusAway    = "away"
	StatusBusy    = "busy"
)

// ValidStatus reports whether s is one of the presence statuses.
func ValidStatus(s string) bool {
	switch s {
	case StatusOnline, StatusOffline, StatusAway, StatusBusy:
		return true
	}
	return false
}

// Conversation types.
const (
	ConversationDM    = "dm"
	ConversationGroup = "group"
)

// Project visibility types.
const (
	ProjectPublic   = "public"
	ProjectPrivate  = "private"
	ProjectInternal = "internal"
)

// User represents an application user, created lazily on first GitHub sign-in.
type User struct {
	ID             string     `db:"id" json:"id"`
	GithubUsername string     `db:"github_username" json:"github_username"`
	Name           *string    `db:"name" json:"name"`
	Email          *string    `db:"email" json:"email,omitempty"`
	ImageURL       *string    `db:"image_url" json:"image_url"`
	Bio            *string    `db:"bio" json:"bio"`
	Role           string     `db:"role" json:"role"`
	Status         string     `db:"status" json:"status"`
	LastActiveAt   *time.Time `db:"last_active_at" json:"last_active_at"`
	Settings       string     `db:"settings" json:"settings"`
	CreatedAt      time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time  `db:"updated_at" json:"updated_at"`
}

// Conversation represents a chat conversation (dm or group).
// DMKey is the canonicalized participant-pair key ("minID:maxID"), set only
// for dm conversations; a unique index on it makes DM creation race-free.
type Conversation struct {
	ID          string    `db:"id" json:"id"`
	Type        string    `db:"type" json:"type"`
	Name        *string   `db:"name" json:"name"`
	Description *string   `db:"description" json:"description"`
	CreatedBy   *string   `db:"created_by" json:"created_by"`
	DMKey       *string   `db:"dm_key" json:"-"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// ConversationParticipant represents the membership of a user in a conversation.
type ConversationParticipant struct {
	ID             string    `db:"id" json:"id"`
	ConversationID string    `db:"conversation_id" json:"conversation_id"`
	UserID         string    `db:"user_id" json:"user_id"`
	IsAdmin        bool      `db:"is_admin" json:"is_admin"`
	JoinedAt       time.Time `db:"joined_at" json:"joined_at"`
}

// Message represents a single chat message. Messages are immutable once
// created; the parent conversation's updated_at is bumped on every append.
type Message struct {
	ID             string    `db:"id" json:"id"`
	ConversationID string    `db:"conversation_id" json:"conversation_id"`
	SenderID       string    `db:"sender_id" json:"sender_id"`
	Content        string    `db:"content" json:"content"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
}

// ConversationRead is the per-(conversation, user) read watermark. Unread
// counts are derived from messages newer than UpdatedAt, not per-message flags.
type ConversationRead struct {
	ID                string    `db:"id" json:"id"`
	ConversationID    string    `db:"conversation_id" json:"conversation_id"`
	UserID            string    `db:"user_id" json:"user_id"`
	LastReadMessageID *string   `db:"last_read_message_id" json:"last_read_message_id"`
	UpdatedAt         time.Time `db:"updated_at" json:"updated_at"`
}

// Project is a collaboration space with a group conversation created
// alongside it at construction time.
type Project struct {
	ID             string    `db:"id" json:"id"`
	Name           string    `db:"name" json:"name"`
	Description    *string   `db:"description" json:"description"`
	Type           string    `db:"type" json:"type"`
	OwnerID        string    `db:"owner_id" json:"owner_id"`
	RepoURL        *string   `db:"repo_url" json:"repo_url"`
	Languages      string    `db:"languages" json:"languages"`
	ConversationID string    `db:"conversation_id" json:"conversation_id"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
}
