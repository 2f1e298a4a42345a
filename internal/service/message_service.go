package service

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"devcampfire/internal/domain"
	"devcampfire/internal/realtime"
)

type MessageService struct {
	messages      domain.MessageRepository
	conversations domain.ConversationRepository
	participants  domain.ParticipantRepository
	users         domain.UserRepository
	publisher     realtime.Publisher
}

func NewMessageService(
	messages domain.MessageRepository,
	conversations domain.ConversationRepository,
	participants domain.ParticipantRepository,
	users domain.UserRepository,
	publisher realtime.Publisher,
) *MessageService {
	return &MessageService{
		messages:      messages,
		conversations: conversations,
		participants:  participants,
		users:         users,
		publisher:     publisher,
	}
}

// SenderInfo is the trimmed sender shape embedded in message payloads.
type SenderInfo struct {
	ID             string  `json:"id"`
	Name           *string `json:"name"`
	GithubUsername string  `json:"github_username"`
	ImageURL       *string `json:"image_url"`
}

// MessageResponse is a message joined with its sender.
type MessageResponse struct {
	ID             string      `json:"id"`
	ConversationID string      `json:"conversation_id"`
	Content        string      `json:"content"`
	Sender         *SenderInfo `json:"sender"`
	CreatedAt      time.Time   `json:"created_at"`
	UpdatedAt      time.Time   `json:"updated_at"`
}

func newMessageResponse(msg *domain.Message, sender *domain.User) *MessageResponse {
	resp := &MessageResponse{
		ID:             msg.ID,
		ConversationID: msg.ConversationID,
		Content:        msg.Content,
		CreatedAt:      msg.CreatedAt,
		UpdatedAt:      msg.UpdatedAt,
	}
	if sender != nil {
		resp.Sender = &SenderInfo{
			ID:             sender.ID,
			Name:           sender.Name,
			GithubUsername: sender.GithubUsername,
			ImageURL:       sender.ImageURL,
		}
	}
	return resp
}

// Append validates and persists a message from the sender, bumps the
// conversation's activity timestamp, and notifies subscribers. Realtime
// delivery is best effort: a failed publish is logged and the message is
// still returned as persisted.
func (s *MessageService) Append(ctx context.Context, conversationID string, sender *domain.User, content string) (*MessageResponse, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, fmt.Errorf("%w: message content is required", domain.ErrInvalidInput)
	}

	conv, err := s.conversations.GetByID(ctx, conversationID)
	if err != nil {
		return nil, fmt.Errorf("get conversation: %w", err)
	}
	if conv == nil {
		return nil, fmt.Errorf("%w: conversation %s", domain.ErrNotFound, conversationID)
	}

	isParticipant, err := s.participants.IsParticipant(ctx, conversationID, sender.ID)
	if err != nil {
		return nil, fmt.Errorf("check participant: %w", err)
	}
	if !isParticipant {
		return nil, fmt.Errorf("%w: not a participant in this conversation", domain.ErrForbidden)
	}

	msg := &domain.Message{
		ConversationID: conversationID,
		SenderID:       sender.ID,
		Content:        content,
	}
	if err := s.messages.Create(ctx, msg); err != nil {
		return nil, fmt.Errorf("create message: %w", err)
	}

	if err := s.conversations.Touch(ctx, conversationID); err != nil {
		log.Printf("touch conversation %s: %v", conversationID, err)
	}

	resp := newMessageResponse(msg, sender)
	channel := realtime.ConversationChannel(conversationID)
	if err := s.publisher.Publish(ctx, channel, realtime.EventNewMessage, resp); err != nil {
		log.Printf("publish %s on %s: %v", realtime.EventNewMessage, channel, err)
	}
	if err := s.publisher.Publish(ctx, channel, realtime.EventUpdateConversation, map[string]any{
		"conversation_id": conversationID,
		"updated_at":      msg.CreatedAt,
	}); err != nil {
		log.Printf("publish %s on %s: %v", realtime.EventUpdateConversation, channel, err)
	}

	return resp, nil
}

// List returns the conversation's messages, oldest first, each joined with
// its sender. Only participants may read.
func (s *MessageService) List(ctx context.Context, conversationID, callerID string) ([]*MessageResponse, error) {
	conv, err := s.conversations.GetByID(ctx, conversationID)
	if err != nil {
		return nil, fmt.Errorf("get conversation: %w", err)
	}
	if conv == nil {
		return nil, fmt.Errorf("%w: conversation %s", domain.ErrNotFound, conversationID)
	}

	isParticipant, err := s.participants.IsParticipant(ctx, conversationID, callerID)
	if err != nil {
		return nil, fmt.Errorf("check participant: %w", err)
	}
	if !isParticipant {
		return nil, fmt.Errorf("%w: not a participant in this conversation", domain.ErrForbidden)
	}

	msgs, err := s.messages.ListForConversation(ctx, conversationID)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}

	participants, err := s.participants.ListParticipants(ctx, conversationID)
	if err != nil {
		return nil, fmt.Errorf("list participants: %w", err)
	}
	senders := make(map[string]*domain.User, len(participants))
	for _, p := range participants {
		senders[p.ID] = p
	}

	responses := make([]*MessageResponse, 0, len(msgs))
	for _, msg := range msgs {
		sender := senders[msg.SenderID]
		if sender == nil {
			// Sender may have left the conversation; resolve directly.
			sender, err = s.users.GetByID(ctx, msg.SenderID)
			if err != nil {
				return nil, fmt.Errorf("get sender: %w", err)
			}
			senders[msg.SenderID] = sender
		}
		responses = append(responses, newMessageResponse(msg, sender))
	}
	return responses, nil
}
