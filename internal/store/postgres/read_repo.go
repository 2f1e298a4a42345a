package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"devcampfire/internal/domain"
)

type ReadRepo struct {
	db *sql.DB
}

func NewReadRepo(db *sql.DB) *ReadRepo {
	return &ReadRepo{db: db}
}

var _ domain.ReadRepository = (*ReadRepo)(nil)

func (r *ReadRepo) Get(ctx context.Context, conversationID, userID string) (*domain.ConversationRead, error) {
	cr := &domain.ConversationRead{}
	err := r.db.QueryRowContext(ctx, `
		SELECT id, conversation_id, user_id, last_read_message_id, updated_at
		FROM conversation_reads
		WHERE conversation_id = $1 AND user_id = $2
	`, conversationID, userID).Scan(
		&cr.ID,
		&cr.ConversationID,
		&cr.UserID,
		&cr.LastReadMessageID,
		&cr.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get read watermark: %w", err)
	}
	return cr, nil
}

func (r *ReadRepo) Upsert(ctx context.Context, conversationID, userID string, lastReadMessageID *string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO conversation_reads (id, conversation_id, user_id, last_read_message_id, updated_at)
		VALUES ($1, $2, $3, $4, NOW())
		ON CONFLICT (conversation_id, user_id)
		DO UPDATE SET last_read_message_id = EXCLUDED.last_read_message_id, updated_at = NOW()
	`, uuid.NewString(), conversationID, userID, lastReadMessageID)
	if err != nil {
		return fmt.Errorf("upsert read watermark: %w", err)
	}
	return nil
}
