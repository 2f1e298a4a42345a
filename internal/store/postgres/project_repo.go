package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"devcampfire/internal/domain"
)

const projectColumns = `id, name, description, type, owner_id, repo_url, languages, conversation_id, created_at, updated_at`

type ProjectRepo struct {
	db *sql.DB
}

func NewProjectRepo(db *sql.DB) *ProjectRepo {
	return &ProjectRepo{db: db}
}

var _ domain.ProjectRepository = (*ProjectRepo)(nil)

func (r *ProjectRepo) Create(ctx context.Context, p *domain.Project) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.Type == "" {
		p.Type = domain.ProjectPublic
	}
	if p.Languages == "" {
		p.Languages = "[]"
	}
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO projects (id, name, description, type, owner_id, repo_url, languages, conversation_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at, updated_at
	`, p.ID, p.Name, p.Description, p.Type, p.OwnerID, p.RepoURL, p.Languages, p.ConversationID).
		Scan(&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert project: %w", err)
	}
	return nil
}

func (r *ProjectRepo) GetByID(ctx context.Context, id string) (*domain.Project, error) {
	p := &domain.Project{}
	err := r.db.QueryRowContext(ctx, `SELECT `+projectColumns+` FROM projects WHERE id = $1`, id).Scan(
		&p.ID,
		&p.Name,
		&p.Description,
		&p.Type,
		&p.OwnerID,
		&p.RepoURL,
		&p.Languages,
		&p.ConversationID,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get project: %w", err)
	}
	return p, nil
}

func (r *ProjectRepo) List(ctx context.Context) ([]*domain.Project, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+projectColumns+` FROM projects ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	defer rows.Close()

	var res []*domain.Project
	for rows.Next() {
		p := &domain.Project{}
		if err := rows.Scan(
			&p.ID,
			&p.Name,
			&p.Description,
			&p.Type,
			&p.OwnerID,
			&p.RepoURL,
			&p.Languages,
			&p.ConversationID,
			&p.CreatedAt,
			&p.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan project: %w", err)
		}
		res = append(res, p)
	}
	return res, rows.Err()
}
