package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"devcampfire/internal/domain"
)

const userColumns = `id, github_username, name, email, image_url, bio, role, status, last_active_at, settings, created_at, updated_at`

type UserRepo struct {
	db *sql.DB
}

func NewUserRepo(db *sql.DB) *UserRepo {
	return &UserRepo{db: db}
}

var _ domain.UserRepository = (*UserRepo)(nil)

func (r *UserRepo) Create(ctx context.Context, u *domain.User) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	if u.Role == "" {
		u.Role = domain.RoleUser
	}
	if u.Status == "" {
		u.Status = domain.StatusOffline
	}
	if u.Settings == "" {
		u.Settings = "{}"
	}
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO users (id, github_username, name, email, image_url, bio, role, status, settings)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING created_at, updated_at
	`, u.ID, u.GithubUsername, u.Name, u.Email, u.ImageURL, u.Bio, u.Role, u.Status, u.Settings).
		Scan(&u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (r *UserRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = ?`
	return r.scanUser(ctx, query, id)
}

func (r *UserRepo) GetByUsername(ctx context.Context, githubUsername string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE github_username = ?`
	return r.scanUser(ctx, query, githubUsername)
}

func (r *UserRepo) Update(ctx context.Context, u *domain.User) error {
	query := `
		UPDATE users
		SET name = ?, email = ?, image_url = ?, bio = ?, role = ?, status = ?, settings = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`
	_, err := r.db.ExecContext(ctx, query,
		u.Name,
		u.Email,
		u.ImageURL,
		u.Bio,
		u.Role,
		u.Status,
		u.Settings,
		u.ID,
	)
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	return nil
}

func (r *UserRepo) SearchByUsernamePrefix(ctx context.Context, prefix string, limit int) ([]*domain.User, error) {
	query := `
		SELECT ` + userColumns + `
		FROM users
		WHERE github_username LIKE ? ESCAPE '\'
		ORDER BY github_username ASC
		LIMIT ?
	`
	rows, err := r.db.QueryContext(ctx, query, escapeLike(prefix)+"%", limit)
	if err != nil {
		return nil, fmt.Errorf("search users: %w", err)
	}
	defer rows.Close()
	return scanUsers(rows)
}

func (r *UserRepo) ListByUsernames(ctx context.Context, usernames []string) ([]*domain.User, error) {
	if len(usernames) == 0 {
		return nil, nil
	}
	query := `SELECT ` + userColumns + ` FROM users WHERE github_username IN (` + placeholders(len(usernames)) + `)`
	rows, err := r.db.QueryContext(ctx, query, usernameArgs(usernames)...)
	if err != nil {
		return nil, fmt.Errorf("list users by usernames: %w", err)
	}
	defer rows.Close()
	return scanUsers(rows)
}

func (r *UserRepo) ListOnlineByUsernames(ctx context.Context, usernames []string) ([]*domain.User, error) {
	if len(usernames) == 0 {
		return nil, nil
	}
	query := `
		SELECT ` + userColumns + `
		FROM users
		WHERE status = ? AND github_username IN (` + placeholders(len(usernames)) + `)
	`
	args := append([]any{domain.StatusOnline}, usernameArgs(usernames)...)
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list online users: %w", err)
	}
	defer rows.Close()
	return scanUsers(rows)
}

func (r *UserRepo) SetStatus(ctx context.Context, id, status string) error {
	query := `UPDATE users SET status = ?, last_active_at = CURRENT_TIMESTAMP, updated_at = CURRENT_TIMESTAMP WHERE id = ?`
	if _, err := r.db.ExecContext(ctx, query, status, id); err != nil {
		return fmt.Errorf("set status: %w", err)
	}
	return nil
}

func (r *UserRepo) scanUser(ctx context.Context, query string, arg any) (*domain.User, error) {
	u := &domain.User{}
	err := r.db.QueryRowContext(ctx, query, arg).Scan(
		&u.ID,
		&u.GithubUsername,
		&u.Name,
		&u.Email,
		&u.ImageURL,
		&u.Bio,
		&u.Role,
		&u.Status,
		&u.LastActiveAt,
		&u.Settings,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan user: %w", err)
	}
	return u, nil
}

func scanUsers(rows *sql.Rows) ([]*domain.User, error) {
	var users []*domain.User
	for rows.Next() {
		u := &domain.User{}
		if err := rows.Scan(
			&u.ID,
			&u.GithubUsername,
			&u.Name,
			&u.Email,
			&u.ImageURL,
			&u.Bio,
			&u.Role,
			&u.Status,
			&u.LastActiveAt,
			&u.Settings,
			&u.CreatedAt,
			&u.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func placeholders(n int) string {
	return strings.TrimRight(strings.Repeat("?,", n), ",")
}

func usernameArgs(usernames []string) []any {
	args := make([]any, len(usernames))
	for i, u := range usernames {
		args[i] = u
	}
	return args
}

func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `%`, `\%`)
	return strings.ReplaceAll(s, `_`, `\_`)
}
