package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"devcampfire/internal/domain"
)

type ConversationService struct {
	conversations domain.ConversationRepository
	participants  domain.ParticipantRepository
	messages      domain.MessageRepository
	reads         domain.ReadRepository
	users         domain.UserRepository
}

func NewConversationService(
	conversations domain.ConversationRepository,
	participants domain.ParticipantRepository,
	messages domain.MessageRepository,
	reads domain.ReadRepository,
	users domain.UserRepository,
) *ConversationService {
	return &ConversationService{
		conversations: conversations,
		participants:  participants,
		messages:      messages,
		reads:         reads,
		users:         users,
	}
}

// DMKey canonicalizes a participant pair into the unique dm_key value.
func DMKey(userA, userB string) string {
	if userB < userA {
		userA, userB = userB, userA
	}
	return userA + ":" + userB
}

// ParticipantInfo is the trimmed user shape embedded in conversation payloads.
type ParticipantInfo struct {
	ID             string  `json:"id"`
	Name           *string `json:"name"`
	GithubUsername string  `json:"github_username"`
	ImageURL       *string `json:"image_url"`
	Status         string  `json:"status"`
}

func toParticipantInfo(u *domain.User) ParticipantInfo {
	return ParticipantInfo{
		ID:             u.ID,
		Name:           u.Name,
		GithubUsername: u.GithubUsername,
		ImageURL:       u.ImageURL,
		Status:         u.Status,
	}
}

// ConversationSummary is the list-view payload: conversation plus
// participants, latest message, and the caller's unread count.
type ConversationSummary struct {
	*domain.Conversation
	Participants  []ParticipantInfo `json:"participants"`
	LatestMessage *MessageResponse  `json:"latest_message"`
	UnreadCount   int               `json:"unread_count"`
}

// ResolveDirect returns the DM conversation between the caller and the
// target username, creating it (plus both participant rows) when absent.
// The returned bool reports whether a new conversation was created.
//
// Concurrent calls for the same pair race on the dm_key unique index; the
// loser re-fetches the winner's row, so both callers end up with one id.
func (s *ConversationService) ResolveDirect(ctx context.Context, caller *domain.User, targetUsername string) (*domain.Conversation, bool, error) {
	target, err := s.users.GetByUsername(ctx, targetUsername)
	if err != nil {
		return nil, false, fmt.Errorf("get target user: %w", err)
	}
	if target == nil {
		return nil, false, fmt.Errorf("%w: target user %q", domain.ErrNotFound, targetUsername)
	}
	if target.ID == caller.ID {
		return nil, false, fmt.Errorf("%w: cannot start a dm with yourself", domain.ErrInvalidInput)
	}

	key := DMKey(caller.ID, target.ID)
	existing, err := s.conversations.GetByDMKey(ctx, key)
	if err != nil {
		return nil, false, fmt.Errorf("find dm: %w", err)
	}
	if existing != nil {
		return existing, false, nil
	}

	conv := &domain.Conversation{
		Type:      domain.ConversationDM,
		CreatedBy: &caller.ID,
		DMKey:     &key,
	}
	err = s.conversations.CreateDirect(ctx, conv, caller.ID, target.ID)
	if errors.Is(err, domain.ErrConflict) {
		// Lost the race; the other creator's conversation is the one.
		existing, ferr := s.conversations.GetByDMKey(ctx, key)
		if ferr != nil {
			return nil, false, fmt.Errorf("refetch dm after conflict: %w", ferr)
		}
		if existing == nil {
			return nil, false, fmt.Errorf("dm vanished after conflict: %w", domain.ErrInternal)
		}
		return existing, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("create dm: %w", err)
	}
	return conv, true, nil
}

// ListDMs returns the caller's DM conversations, newest activity first,
// joined with participants, latest message, and unread count.
func (s *ConversationService) ListDMs(ctx context.Context, userID string, limit int) ([]*ConversationSummary, error) {
	convs, err := s.conversations.ListDMsForUser(ctx, userID, limit)
	if err != nil {
		return nil, err
	}

	summaries := make([]*ConversationSummary, 0, len(convs))
	for _, conv := range convs {
		summary, err := s.summarize(ctx, conv, userID)
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, summary)
	}
	return summaries, nil
}

func (s *ConversationService) summarize(ctx context.Context, conv *domain.Conversation, userID string) (*ConversationSummary, error) {
	participants, err := s.participants.ListParticipants(ctx, conv.ID)
	if err != nil {
		return nil, fmt.Errorf("list participants: %w", err)
	}
	infos := make([]ParticipantInfo, len(participants))
	byID := make(map[string]*domain.User, len(participants))
	for i, p := range participants {
		infos[i] = toParticipantInfo(p)
		byID[p.ID] = p
	}

	var latest *MessageResponse
	if msg, err := s.messages.GetLatest(ctx, conv.ID); err != nil {
		return nil, fmt.Errorf("get latest message: %w", err)
	} else if msg != nil {
		latest = newMessageResponse(msg, byID[msg.SenderID])
	}

	unread, err := s.UnreadCount(ctx, conv.ID, userID)
	if err != nil {
		return nil, err
	}

	return &ConversationSummary{
		Conversation:  conv,
		Participants:  infos,
		LatestMessage: latest,
		UnreadCount:   unread,
	}, nil
}

// UnreadCount counts messages newer than the caller's read watermark; with
// no watermark every message counts. A timestamp watermark, not per-message
// flags, so it is only as monotonic as the message timestamps are.
func (s *ConversationService) UnreadCount(ctx context.Context, conversationID, userID string) (int, error) {
	watermark := time.Time{}
	read, err := s.reads.Get(ctx, conversationID, userID)
	if err != nil {
		return 0, fmt.Errorf("get read watermark: %w", err)
	}
	if read != nil {
		watermark = read.UpdatedAt
	}
	count, err := s.messages.CountSince(ctx, conversationID, watermark)
	if err != nil {
		return 0, err
	}
	return count, nil
}

// MarkRead upserts the caller's read watermark for the conversation.
func (s *ConversationService) MarkRead(ctx context.Context, conversationID, userID string, lastReadMessageID *string) error {
	conv, err := s.conversations.GetByID(ctx, conversationID)
	if err != nil {
		return fmt.Errorf("get conversation: %w", err)
	}
	if conv == nil {
		return fmt.Errorf("%w: conversation %s", domain.ErrNotFound, conversationID)
	}
	isParticipant, err := s.participants.IsParticipant(ctx, conversationID, userID)
	if err != nil {
		return fmt.Errorf("check participant: %w", err)
	}
	if !isParticipant {
		return fmt.Errorf("%w: not a participant in this conversation", domain.ErrForbidden)
	}
	return s.reads.Upsert(ctx, conversationID, userID, lastReadMessageID)
}

// ListRooms returns all group conversations.
func (s *ConversationService) ListRooms(ctx context.Context) ([]*domain.Conversation, error) {
	return s.conversations.ListGroups(ctx)
}

// CreateRoom creates a named group conversation with the caller as admin.
func (s *ConversationService) CreateRoom(ctx context.Context, caller *domain.User, name, description string) (*domain.Conversation, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: room name is required", domain.ErrInvalidInput)
	}

	conv := &domain.Conversation{
		Type:      domain.ConversationGroup,
		Name:      &name,
		CreatedBy: &caller.ID,
	}
	if description = strings.TrimSpace(description); description != "" {
		conv.Description = &description
	}
	if err := s.conversations.CreateGroup(ctx, conv, caller.ID, nil); err != nil {
		return nil, fmt.Errorf("create room: %w", err)
	}
	return conv, nil
}
