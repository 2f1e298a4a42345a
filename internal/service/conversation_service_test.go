package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"devcampfire/internal/domain"
	"devcampfire/internal/service"
)

func newConversationService(
	convs *MockConversationRepo,
	parts *MockParticipantRepo,
	msgs *MockMessageRepo,
	reads *MockReadRepo,
	users *MockUserRepo,
) *service.ConversationService {
	return service.NewConversationService(convs, parts, msgs, reads, users)
}

func TestDMKey(t *testing.T) {
	assert.Equal(t, "a:b", service.DMKey("a", "b"))
	assert.Equal(t, "a:b", service.DMKey("b", "a"))
}

func TestResolveDirect(t *testing.T) {
	caller := &domain.User{ID: "u1", GithubUsername: "alice"}
	target := &domain.User{ID: "u2", GithubUsername: "bob"}
	key := service.DMKey("u1", "u2")

	t.Run("CreatesWhenAbsent", func(t *testing.T) {
		convs := new(MockConversationRepo)
		users := new(MockUserRepo)
		svc := newConversationService(convs, new(MockParticipantRepo), new(MockMessageRepo), new(MockReadRepo), users)

		users.On("GetByUsername", mock.Anything, "bob").Return(target, nil)
		convs.On("GetByDMKey", mock.Anything, key).Return(nil, nil)
		convs.On("CreateDirect", mock.Anything, mock.MatchedBy(func(c *domain.Conversation) bool {
			return c.Type == domain.ConversationDM && c.DMKey != nil && *c.DMKey == key
		}), "u1", "u2").Return(nil)

		conv, created, err := svc.ResolveDirect(context.Background(), caller, "bob")
		assert.NoError(t, err)
		assert.True(t, created)
		assert.Equal(t, domain.ConversationDM, conv.Type)
	})

	t.Run("ReturnsExisting", func(t *testing.T) {
		convs := new(MockConversationRepo)
		users := new(MockUserRepo)
		svc := newConversationService(convs, new(MockParticipantRepo), new(MockMessageRepo), new(MockReadRepo), users)

		existing := &domain.Conversation{ID: "c1", Type: domain.ConversationDM, DMKey: &key}
		users.On("GetByUsername", mock.Anything, "bob").Return(target, nil)
		convs.On("GetByDMKey", mock.Anything, key).Return(existing, nil)

		conv, created, err := svc.ResolveDirect(context.Background(), caller, "bob")
		assert.NoError(t, err)
		assert.False(t, created)
		assert.Equal(t, "c1", conv.ID)
		convs.AssertNotCalled(t, "CreateDirect", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("RefetchesAfterConflict", func(t *testing.T) {
		convs := new(MockConversationRepo)
		users := new(MockUserRepo)
		svc := newConversationService(convs, new(MockParticipantRepo), new(MockMessageRepo), new(MockReadRepo), users)

		winner := &domain.Conversation{ID: "c-winner", Type: domain.ConversationDM, DMKey: &key}
		users.On("GetByUsername", mock.Anything, "bob").Return(target, nil)
		convs.On("GetByDMKey", mock.Anything, key).Return(nil, nil).Once()
		convs.On("CreateDirect", mock.Anything, mock.Anything, "u1", "u2").Return(domain.ErrConflict)
		convs.On("GetByDMKey", mock.Anything, key).Return(winner, nil).Once()

		conv, created, err := svc.ResolveDirect(context.Background(), caller, "bob")
		assert.NoError(t, err)
		assert.False(t, created)
		assert.Equal(t, "c-winner", conv.ID)
	})

	t.Run("TargetNotFound", func(t *testing.T) {
		convs := new(MockConversationRepo)
		users := new(MockUserRepo)
		svc := newConversationService(convs, new(MockParticipantRepo), new(MockMessageRepo), new(MockReadRepo), users)

		users.On("GetByUsername", mock.Anything, "ghost").Return(nil, nil)

		_, _, err := svc.ResolveDirect(context.Background(), caller, "ghost")
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("SelfDMRejected", func(t *testing.T) {
		convs := new(MockConversationRepo)
		users := new(MockUserRepo)
		svc := newConversationService(convs, new(MockParticipantRepo), new(MockMessageRepo), new(MockReadRepo), users)

		users.On("GetByUsername", mock.Anything, "alice").Return(caller, nil)

		_, _, err := svc.ResolveDirect(context.Background(), caller, "alice")
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})
}

func TestListDMs(t *testing.T) {
	now := time.Now()
	conv := &domain.Conversation{ID: "c1", Type: domain.ConversationDM, UpdatedAt: now}
	alice := &domain.User{ID: "u1", GithubUsername: "alice"}
	bob := &domain.User{ID: "u2", GithubUsername: "bob"}

	convs := new(MockConversationRepo)
	parts := new(MockParticipantRepo)
	msgs := new(MockMessageRepo)
	reads := new(MockReadRepo)
	svc := newConversationService(convs, parts, msgs, reads, new(MockUserRepo))

	watermark := now.Add(-time.Hour)
	latest := &domain.Message{ID: "m9", ConversationID: "c1", SenderID: "u2", Content: "hi", CreatedAt: now}

	convs.On("ListDMsForUser", mock.Anything, "u1", 20).Return([]*domain.Conversation{conv}, nil)
	parts.On("ListParticipants", mock.Anything, "c1").Return([]*domain.User{alice, bob}, nil)
	msgs.On("GetLatest", mock.Anything, "c1").Return(latest, nil)
	reads.On("Get", mock.Anything, "c1", "u1").Return(&domain.ConversationRead{UpdatedAt: watermark}, nil)
	msgs.On("CountSince", mock.Anything, "c1", watermark).Return(3, nil)

	summaries, err := svc.ListDMs(context.Background(), "u1", 20)
	assert.NoError(t, err)
	assert.Len(t, summaries, 1)
	assert.Equal(t, 3, summaries[0].UnreadCount)
	assert.Len(t, summaries[0].Participants, 2)
	assert.NotNil(t, summaries[0].LatestMessage)
	assert.Equal(t, "bob", summaries[0].LatestMessage.Sender.GithubUsername)
}

func TestUnreadCountWithoutWatermark(t *testing.T) {
	convs := new(MockConversationRepo)
	msgs := new(MockMessageRepo)
	reads := new(MockReadRepo)
	svc := newConversationService(convs, new(MockParticipantRepo), msgs, reads, new(MockUserRepo))

	// No watermark counts from the beginning of time.
	reads.On("Get", mock.Anything, "c1", "u1").Return(nil, nil)
	msgs.On("CountSince", mock.Anything, "c1", time.Time{}).Return(7, nil)

	count, err := svc.UnreadCount(context.Background(), "c1", "u1")
	assert.NoError(t, err)
	assert.Equal(t, 7, count)
}

func TestMarkRead(t *testing.T) {
	conv := &domain.Conversation{ID: "c1", Type: domain.ConversationDM}

	t.Run("Success", func(t *testing.T) {
		convs := new(MockConversationRepo)
		parts := new(MockParticipantRepo)
		reads := new(MockReadRepo)
		svc := newConversationService(convs, parts, new(MockMessageRepo), reads, new(MockUserRepo))

		msgID := "m5"
		convs.On("GetByID", mock.Anything, "c1").Return(conv, nil)
		parts.On("IsParticipant", mock.Anything, "c1", "u1").Return(true, nil)
		reads.On("Upsert", mock.Anything, "c1", "u1", &msgID).Return(nil)

		err := svc.MarkRead(context.Background(), "c1", "u1", &msgID)
		assert.NoError(t, err)
		reads.AssertExpectations(t)
	})

	t.Run("NotParticipant", func(t *testing.T) {
		convs := new(MockConversationRepo)
		parts := new(MockParticipantRepo)
		reads := new(MockReadRepo)
		svc := newConversationService(convs, parts, new(MockMessageRepo), reads, new(MockUserRepo))

		convs.On("GetByID", mock.Anything, "c1").Return(conv, nil)
		parts.On("IsParticipant", mock.Anything, "c1", "intruder").Return(false, nil)

		err := svc.MarkRead(context.Background(), "c1", "intruder", nil)
		assert.ErrorIs(t, err, domain.ErrForbidden)
		reads.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("ConversationMissing", func(t *testing.T) {
		convs := new(MockConversationRepo)
		svc := newConversationService(convs, new(MockParticipantRepo), new(MockMessageRepo), new(MockReadRepo), new(MockUserRepo))

		convs.On("GetByID", mock.Anything, "nope").Return(nil, nil)

		err := svc.MarkRead(context.Background(), "nope", "u1", nil)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestCreateRoom(t *testing.T) {
	caller := &domain.User{ID: "u1", GithubUsername: "alice"}

	t.Run("Success", func(t *testing.T) {
		convs := new(MockConversationRepo)
		svc := newConversationService(convs, new(MockParticipantRepo), new(MockMessageRepo), new(MockReadRepo), new(MockUserRepo))

		convs.On("CreateGroup", mock.Anything, mock.MatchedBy(func(c *domain.Conversation) bool {
			return c.Type == domain.ConversationGroup && c.Name != nil && *c.Name == "gophers"
		}), "u1", []string(nil)).Return(nil)

		room, err := svc.CreateRoom(context.Background(), caller, "  gophers  ", "")
		assert.NoError(t, err)
		assert.Equal(t, "gophers", *room.Name)
		assert.Nil(t, room.Description)
	})

	t.Run("EmptyName", func(t *testing.T) {
		convs := new(MockConversationRepo)
		svc := newConversationService(convs, new(MockParticipantRepo), new(MockMessageRepo), new(MockReadRepo), new(MockUserRepo))

		_, err := svc.CreateRoom(context.Background(), caller, "   ", "desc")
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})
}

func TestResolveDirectRepoError(t *testing.T) {
	convs := new(MockConversationRepo)
	users := new(MockUserRepo)
	svc := newConversationService(convs, new(MockParticipantRepo), new(MockMessageRepo), new(MockReadRepo), users)

	boom := errors.New("db down")
	users.On("GetByUsername", mock.Anything, "bob").Return(nil, boom)

	_, _, err := svc.ResolveDirect(context.Background(), &domain.User{ID: "u1"}, "bob")
	assert.ErrorIs(t, err, boom)
}
