package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"devcampfire/internal/domain"
	"devcampfire/internal/service"
)

func TestCreateProject(t *testing.T) {
	owner := &domain.User{ID: "u1", GithubUsername: "alice"}

	t.Run("CreatesConversationAndProject", func(t *testing.T) {
		projects := new(MockProjectRepo)
		convs := new(MockConversationRepo)
		svc := service.NewProjectService(projects, convs)

		convs.On("CreateGroup", mock.Anything, mock.MatchedBy(func(c *domain.Conversation) bool {
			return c.Type == domain.ConversationGroup && c.Name != nil && *c.Name == "campfire"
		}), "u1", []string(nil)).Run(func(args mock.Arguments) {
			args.Get(1).(*domain.Conversation).ID = "c1"
		}).Return(nil)
		projects.On("Create", mock.Anything, mock.MatchedBy(func(p *domain.Project) bool {
			return p.Name == "campfire" && p.OwnerID == "u1" && p.ConversationID == "c1"
		})).Return(nil)

		project, err := svc.Create(context.Background(), owner, service.CreateProjectInput{
			Name:      "campfire",
			Languages: []string{"Go", "TypeScript"},
		})
		assert.NoError(t, err)
		assert.Equal(t, "c1", project.ConversationID)
		assert.Equal(t, domain.ProjectPublic, project.Type)
		assert.JSONEq(t, `["Go","TypeScript"]`, project.Languages)
	})

	t.Run("EmptyName", func(t *testing.T) {
		projects := new(MockProjectRepo)
		convs := new(MockConversationRepo)
		svc := service.NewProjectService(projects, convs)

		_, err := svc.Create(context.Background(), owner, service.CreateProjectInput{Name: "  "})
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
		convs.AssertNotCalled(t, "CreateGroup", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("UnknownType", func(t *testing.T) {
		svc := service.NewProjectService(new(MockProjectRepo), new(MockConversationRepo))

		_, err := svc.Create(context.Background(), owner, service.CreateProjectInput{Name: "x", Type: "secret"})
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})
}
