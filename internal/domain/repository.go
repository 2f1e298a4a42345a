package domain

import (
	"context"
	"time"
)

// UserRepository defines persistence operations for users.
type UserRepository interface {
	Create(ctx context.Context, u *User) error
	GetByID(ctx context.Context, id string) (*User, error)
	GetByUsername(ctx context.Context, githubUsername string) (*User, error)
	Update(ctx context.Context, u *User) error
	SearchByUsernamePrefix(ctx context.Context, prefix string, limit int) ([]*User, error)
	ListByUsernames(ctx context.Context, usernames []string) ([]*User, error)
	ListOnlineByUsernames(ctx context.Context, usernames []string) ([]*User, error)
	SetStatus(ctx context.Context, id, status string) error
}

// ConversationRepository defines persistence operations for conversations.
type ConversationRepository interface {
	// CreateDirect inserts a dm conversation plus both participant rows in one
	// transaction. Returns ErrConflict when the dm_key already exists.
	CreateDirect(ctx context.Context, c *Conversation, userA, userB string) error
	// CreateGroup inserts a group conversation plus participant rows; the
	// creator's row is flagged admin.
	CreateGroup(ctx context.Context, c *Conversation, creatorID string, memberIDs []string) error
	GetByID(ctx context.Context, id string) (*Conversation, error)
	GetByDMKey(ctx context.Context, dmKey string) (*Conversation, error)
	ListDMsForUser(ctx context.Context, userID string, limit int) ([]*Conversation, error)
	ListGroups(ctx context.Context) ([]*Conversation, error)
	// Touch bumps updated_at, the cheap "last activity" sort key.
	Touch(ctx context.Context, id string) error
}

// ParticipantRepository defines operations around conversation participants.
type ParticipantRepository interface {
	ListParticipants(ctx context.Context, conversationID string) ([]*User, error)
	IsParticipant(ctx context.Context, conversationID, userID string) (bool, error)
}

// MessageRepository defines persistence operations for messages.
type MessageRepository interface {
	Create(ctx context.Context, m *Message) error
	ListForConversation(ctx context.Context, conversationID string) ([]*Message, error)
	GetLatest(ctx context.Context, conversationID string) (*Message, error)
	CountSince(ctx context.Context, conversationID string, since time.Time) (int, error)
}

// ReadRepository defines operations on per-user read watermarks.
type ReadRepository interface {
	Get(ctx context.Context, conversationID, userID string) (*ConversationRead, error)
	Upsert(ctx context.Context, conversationID, userID string, lastReadMessageID *string) error
}

// ProjectRepository defines persistence operations for projects.
type ProjectRepository interface {
	Create(ctx context.Context, p *Project) error
	GetByID(ctx context.Context, id string) (*Project, error)
	List(ctx context.Context) ([]*Project, error)
}
