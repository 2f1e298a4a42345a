package sqlite_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"devcampfire/internal/domain"
	"devcampfire/internal/store/sqlite"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sqlite.Open(":memory:")
	require.NoError(t, err)
	// The pool must not fan out over separate in-memory databases.
	db.SetMaxOpenConns(1)
	require.NoError(t, sqlite.Migrate(db))
	t.Cleanup(func() { db.Close() })
	return db
}

func createUser(t *testing.T, db *sql.DB, username string) *domain.User {
	t.Helper()
	u := &domain.User{GithubUsername: username}
	require.NoError(t, sqlite.NewUserRepo(db).Create(context.Background(), u))
	return u
}

func TestUserRepo(t *testing.T) {
	db := newTestDB(t)
	repo := sqlite.NewUserRepo(db)
	ctx := context.Background()

	alice := createUser(t, db, "alice")
	assert.NotEmpty(t, alice.ID)
	assert.Equal(t, domain.RoleUser, alice.Role)
	assert.False(t, alice.CreatedAt.IsZero())

	t.Run("GetByUsername", func(t *testing.T) {
		got, err := repo.GetByUsername(ctx, "alice")
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, alice.ID, got.ID)

		missing, err := repo.GetByUsername(ctx, "ghost")
		require.NoError(t, err)
		assert.Nil(t, missing)
	})

	t.Run("PrefixSearch", func(t *testing.T) {
		createUser(t, db, "alex")
		createUser(t, db, "bob")

		found, err := repo.SearchByUsernamePrefix(ctx, "al", 10)
		require.NoError(t, err)
		require.Len(t, found, 2)
		assert.Equal(t, "alex", found[0].GithubUsername)
		assert.Equal(t, "alice", found[1].GithubUsername)
	})

	t.Run("LikeWildcardsAreLiteral", func(t *testing.T) {
		found, err := repo.SearchByUsernamePrefix(ctx, "a%", 10)
		require.NoError(t, err)
		assert.Empty(t, found)
	})

	t.Run("StatusFiltering", func(t *testing.T) {
		require.NoError(t, repo.SetStatus(ctx, alice.ID, domain.StatusOnline))

		online, err := repo.ListOnlineByUsernames(ctx, []string{"alice", "alex", "ghost"})
		require.NoError(t, err)
		require.Len(t, online, 1)
		assert.Equal(t, "alice", online[0].GithubUsername)
		assert.NotNil(t, online[0].LastActiveAt)

		inApp, err := repo.ListByUsernames(ctx, []string{"alice", "alex", "ghost"})
		require.NoError(t, err)
		assert.Len(t, inApp, 2)
	})
}

func TestConversationRepoDMDedup(t *testing.T) {
	db := newTestDB(t)
	repo := sqlite.NewConversationRepo(db)
	ctx := context.Background()

	alice := createUser(t, db, "alice")
	bob := createUser(t, db, "bob")
	key := alice.ID + ":" + bob.ID

	first := &domain.Conversation{DMKey: &key, CreatedBy: &alice.ID}
	require.NoError(t, repo.CreateDirect(ctx, first, alice.ID, bob.ID))

	// Second insert with the same pair key loses on the unique index.
	second := &domain.Conversation{DMKey: &key, CreatedBy: &bob.ID}
	err := repo.CreateDirect(ctx, second, bob.ID, alice.ID)
	assert.ErrorIs(t, err, domain.ErrConflict)

	found, err := repo.GetByDMKey(ctx, key)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, first.ID, found.ID)

	// Both sides were enrolled as participants by the winning insert.
	parts := sqlite.NewParticipantRepo(db)
	for _, uid := range []string{alice.ID, bob.ID} {
		ok, err := parts.IsParticipant(ctx, first.ID, uid)
		require.NoError(t, err)
		assert.True(t, ok)
	}

	dms, err := repo.ListDMsForUser(ctx, alice.ID, 0)
	require.NoError(t, err)
	assert.Len(t, dms, 1)
}

func TestConversationRepoGroups(t *testing.T) {
	db := newTestDB(t)
	repo := sqlite.NewConversationRepo(db)
	parts := sqlite.NewParticipantRepo(db)
	ctx := context.Background()

	alice := createUser(t, db, "alice")
	bob := createUser(t, db, "bob")

	name := "gophers"
	room := &domain.Conversation{Name: &name, CreatedBy: &alice.ID}
	require.NoError(t, repo.CreateGroup(ctx, room, alice.ID, []string{bob.ID, alice.ID}))

	groups, err := repo.ListGroups(ctx)
	require.NoError(t, err)
	require.Len(t, groups, 1)
	assert.Equal(t, domain.ConversationGroup, groups[0].Type)

	members, err := parts.ListParticipants(ctx, room.ID)
	require.NoError(t, err)
	assert.Len(t, members, 2)

	ok, err := parts.IsParticipant(ctx, room.ID, "nobody")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMessageRepoAndWatermark(t *testing.T) {
	db := newTestDB(t)
	convRepo := sqlite.NewConversationRepo(db)
	msgRepo := sqlite.NewMessageRepo(db)
	readRepo := sqlite.NewReadRepo(db)
	ctx := context.Background()

	alice := createUser(t, db, "alice")
	bob := createUser(t, db, "bob")
	key := alice.ID + ":" + bob.ID
	conv := &domain.Conversation{DMKey: &key}
	require.NoError(t, convRepo.CreateDirect(ctx, conv, alice.ID, bob.ID))

	for _, content := range []string{"hello", "world"} {
		m := &domain.Message{ConversationID: conv.ID, SenderID: alice.ID, Content: content}
		require.NoError(t, msgRepo.Create(ctx, m))
		assert.NotEmpty(t, m.ID)
		assert.False(t, m.CreatedAt.IsZero())
	}

	msgs, err := msgRepo.ListForConversation(ctx, conv.ID)
	require.NoError(t, err)
	assert.Len(t, msgs, 2)

	latest, err := msgRepo.GetLatest(ctx, conv.ID)
	require.NoError(t, err)
	require.NotNil(t, latest)

	// No watermark: everything is unread.
	count, err := msgRepo.CountSince(ctx, conv.ID, time.Time{})
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	// Mark read, then nothing is unread.
	require.NoError(t, readRepo.Upsert(ctx, conv.ID, bob.ID, &latest.ID))
	read, err := readRepo.Get(ctx, conv.ID, bob.ID)
	require.NoError(t, err)
	require.NotNil(t, read)
	require.NotNil(t, read.LastReadMessageID)
	assert.Equal(t, latest.ID, *read.LastReadMessageID)

	count, err = msgRepo.CountSince(ctx, conv.ID, read.UpdatedAt)
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	// Upsert again replaces, it does not duplicate.
	require.NoError(t, readRepo.Upsert(ctx, conv.ID, bob.ID, nil))
	var rows int
	require.NoError(t, db.QueryRow(
		`SELECT COUNT(*) FROM conversation_reads WHERE conversation_id = ? AND user_id = ?`,
		conv.ID, bob.ID,
	).Scan(&rows))
	assert.Equal(t, 1, rows)
}

func TestProjectRepo(t *testing.T) {
	db := newTestDB(t)
	convRepo := sqlite.NewConversationRepo(db)
	projRepo := sqlite.NewProjectRepo(db)
	ctx := context.Background()

	alice := createUser(t, db, "alice")
	name := "campfire"
	conv := &domain.Conversation{Name: &name, CreatedBy: &alice.ID}
	require.NoError(t, convRepo.CreateGroup(ctx, conv, alice.ID, nil))

	project := &domain.Project{
		Name:           "campfire",
		Type:           domain.ProjectPublic,
		OwnerID:        alice.ID,
		Languages:      `["Go"]`,
		ConversationID: conv.ID,
	}
	require.NoError(t, projRepo.Create(ctx, project))
	assert.NotEmpty(t, project.ID)

	got, err := projRepo.GetByID(ctx, project.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, conv.ID, got.ConversationID)

	all, err := projRepo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	missing, err := projRepo.GetByID(ctx, "nope")
	require.NoError(t, err)
	assert.Nil(t, missing)
}
