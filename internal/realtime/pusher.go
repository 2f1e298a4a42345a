package realtime

import (
	"context"
	"fmt"

	"github.com/pusher/pusher-http-go/v5"
)

// PusherPublisher fans events out through the Pusher Channels HTTP API.
type PusherPublisher struct {
	client pusher.Client
}

func NewPusherPublisher(appID, key, secret, cluster string) *PusherPublisher {
	return &PusherPublisher{
		client: pusher.Client{
			AppID:   appID,
			Key:     key,
			Secret:  secret,
			Cluster: cluster,
		},
	}
}

var _ Publisher = (*PusherPublisher)(nil)

func (p *PusherPublisher) Publish(_ context.Context, channel, event string, data any) error {
	if err := p.client.Trigger(channel, event, data); err != nil {
		return fmt.Errorf("pusher trigger %s on %s: %w", event, channel, err)
	}
	return nil
}
