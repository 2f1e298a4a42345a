package realtime

import "context"

// Event names published after a successful message write.
const (
	EventNewMessage         = "new-message"
	EventUpdateConversation = "update-conversation"
)

// ConversationChannel returns the per-conversation channel name.
func ConversationChannel(conversationID string) string {
	return "conversation-" + conversationID
}

// Publisher delivers named events to all subscribers of a channel.
// Delivery is best effort, at most once: a failed publish is the caller's
// to log, never to surface as a write failure.
type Publisher interface {
	Publish(ctx context.Context, channel, event string, data any) error
}
