package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"devcampfire/internal/domain"
)

const conversationColumns = `id, type, name, description, created_by, dm_key, created_at, updated_at`

type ConversationRepo struct {
	db *sql.DB
}

func NewConversationRepo(db *sql.DB) *ConversationRepo {
	return &ConversationRepo{db: db}
}

var _ domain.ConversationRepository = (*ConversationRepo)(nil)

func (r *ConversationRepo) CreateDirect(ctx context.Context, c *domain.Conversation, userA, userB string) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	c.Type = domain.ConversationDM

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	err = tx.QueryRowContext(ctx, `
		INSERT INTO conversations (id, type, name, description, created_by, dm_key)
		VALUES (?, ?, ?, ?, ?, ?)
		RETURNING created_at, updated_at
	`, c.ID, c.Type, c.Name, c.Description, c.CreatedBy, c.DMKey).
		Scan(&c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrConflict
		}
		return fmt.Errorf("insert conversation: %w", err)
	}

	for _, uid := range []string{userA, userB} {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO conversation_participants (id, conversation_id, user_id)
			VALUES (?, ?, ?)
		`, uuid.NewString(), c.ID, uid); err != nil {
			return fmt.Errorf("insert participant: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func (r *ConversationRepo) CreateGroup(ctx context.Context, c *domain.Conversation, creatorID string, memberIDs []string) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	c.Type = domain.ConversationGroup

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	err = tx.QueryRowContext(ctx, `
		INSERT INTO conversations (id, type, name, description, created_by)
		VALUES (?, ?, ?, ?, ?)
		RETURNING created_at, updated_at
	`, c.ID, c.Type, c.Name, c.Description, c.CreatedBy).
		Scan(&c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert conversation: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO conversation_participants (id, conversation_id, user_id, is_admin)
		VALUES (?, ?, ?, 1)
	`, uuid.NewString(), c.ID, creatorID); err != nil {
		return fmt.Errorf("insert creator participant: %w", err)
	}
	for _, uid := range memberIDs {
		if uid == creatorID {
			continue
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT OR IGNORE INTO conversation_participants (id, conversation_id, user_id)
			VALUES (?, ?, ?)
		`, uuid.NewString(), c.ID, uid); err != nil {
			return fmt.Errorf("insert participant: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func (r *ConversationRepo) GetByID(ctx context.Context, id string) (*domain.Conversation, error) {
	query := `SELECT ` + conversationColumns + ` FROM conversations WHERE id = ?`
	return r.scanConversation(ctx, query, id)
}

func (r *ConversationRepo) GetByDMKey(ctx context.Context, dmKey string) (*domain.Conversation, error) {
	query := `SELECT ` + conversationColumns + ` FROM conversations WHERE dm_key = ?`
	return r.scanConversation(ctx, query, dmKey)
}

func (r *ConversationRepo) ListDMsForUser(ctx context.Context, userID string, limit int) ([]*domain.Conversation, error) {
	query := `
		SELECT c.id, c.type, c.name, c.description, c.created_by, c.dm_key, c.created_at, c.updated_at
		FROM conversations c
		JOIN conversation_participants cp ON cp.conversation_id = c.id
		WHERE cp.user_id = ? AND c.type = ?
		ORDER BY c.updated_at DESC
	`
	args := []any{userID, domain.ConversationDM}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list dm conversations: %w", err)
	}
	defer rows.Close()
	return scanConversations(rows)
}

func (r *ConversationRepo) ListGroups(ctx context.Context) ([]*domain.Conversation, error) {
	query := `
		SELECT ` + conversationColumns + `
		FROM conversations
		WHERE type = ?
		ORDER BY updated_at DESC
	`
	rows, err := r.db.QueryContext(ctx, query, domain.ConversationGroup)
	if err != nil {
		return nil, fmt.Errorf("list group conversations: %w", err)
	}
	defer rows.Close()
	return scanConversations(rows)
}

func (r *ConversationRepo) Touch(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `
		UPDATE conversations SET updated_at = CURRENT_TIMESTAMP WHERE id = ?
	`, id); err != nil {
		return fmt.Errorf("touch conversation: %w", err)
	}
	return nil
}

func (r *ConversationRepo) scanConversation(ctx context.Context, query string, arg any) (*domain.Conversation, error) {
	c := &domain.Conversation{}
	err := r.db.QueryRowContext(ctx, query, arg).Scan(
		&c.ID,
		&c.Type,
		&c.Name,
		&c.Description,
		&c.CreatedBy,
		&c.DMKey,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan conversation: %w", err)
	}
	return c, nil
}

func scanConversations(rows *sql.Rows) ([]*domain.Conversation, error) {
	var res []*domain.Conversation
	for rows.Next() {
		c := &domain.Conversation{}
		if err := rows.Scan(
			&c.ID,
			&c.Type,
			&c.Name,
			&c.Description,
			&c.CreatedBy,
			&c.DMKey,
			&c.CreatedAt,
			&c.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan conversation: %w", err)
		}
		res = append(res, c)
	}
	return res, rows.Err()
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
