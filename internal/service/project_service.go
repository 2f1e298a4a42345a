package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"devcampfire/internal/domain"
)

type ProjectService struct {
	projects      domain.ProjectRepository
	conversations domain.ConversationRepository
}

func NewProjectService(projects domain.ProjectRepository, conversations domain.ConversationRepository) *ProjectService {
	return &ProjectService{
		projects:      projects,
		conversations: conversations,
	}
}

// CreateProjectInput is the payload for creating a project.
type CreateProjectInput struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Type        string   `json:"type"`
	RepoURL     string   `json:"repo_url"`
	Languages   []string `json:"languages"`
}

// Create creates a project and its linked group conversation. The owner is
// the sole initial participant and admin of the conversation.
func (s *ProjectService) Create(ctx context.Context, owner *domain.User, in CreateProjectInput) (*domain.Project, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: project name is required", domain.ErrInvalidInput)
	}

	projectType := in.Type
	switch projectType {
	case "":
		projectType = domain.ProjectPublic
	case domain.ProjectPublic, domain.ProjectPrivate, domain.ProjectInternal:
	default:
		return nil, fmt.Errorf("%w: unknown project type %q", domain.ErrInvalidInput, in.Type)
	}

	conv := &domain.Conversation{
		Type:      domain.ConversationGroup,
		Name:      &name,
		CreatedBy: &owner.ID,
	}
	if err := s.conversations.CreateGroup(ctx, conv, owner.ID, nil); err != nil {
		return nil, fmt.Errorf("create project conversation: %w", err)
	}

	languages := "[]"
	if len(in.Languages) > 0 {
		raw, err := json.Marshal(in.Languages)
		if err != nil {
			return nil, fmt.Errorf("encode languages: %w", err)
		}
		languages = string(raw)
	}

	project := &domain.Project{
		Name:           name,
		Type:           projectType,
		OwnerID:        owner.ID,
		Languages:      languages,
		ConversationID: conv.ID,
	}
	if desc := strings.TrimSpace(in.Description); desc != "" {
		project.Description = &desc
	}
	if repo := strings.TrimSpace(in.RepoURL); repo != "" {
		project.RepoURL = &repo
	}
	if err := s.projects.Create(ctx, project); err != nil {
		return nil, fmt.Errorf("create project: %w", err)
	}
	return project, nil
}

func (s *ProjectService) GetByID(ctx context.Context, id string) (*domain.Project, error) {
	return s.projects.GetByID(ctx, id)
}

func (s *ProjectService) List(ctx context.Context) ([]*domain.Project, error) {
	return s.projects.List(ctx)
}
