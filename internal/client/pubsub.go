package client

import (
	"context"
	"encoding/json"

	"cloud.google.com/go/pubsub"
	"google.golang.org/api/option"

	"github.com/windfall/kidvocab_service/internal/errors"
)

// PubSubClient wraps the Google Cloud Pub/Sub client.
type PubSubClient struct {
	client *pubsub.Client
	topic  *pubsub.Topic
}

// NewPubSubClient creates a new Pub/Sub client.
func NewPubSubClient(ctx context.Context, projectID, topicID string, opts ...option.ClientOption) (*PubSubClient, error) {
	client, err := pubsub.NewClient(ctx, projectID, opts...)
	if err != nil {
		return nil, errors.PubSub("failed to create pubsub client", err)
	}

	topic := client.Topic(topicID)

	return &PubSubClient{
		client: client,
		topic:  topic,
	}, nil
}

// Close flushes pending messages and closes the client.
func (c *PubSubClient) Close() {
	if c.topic != nil {
		c.topic.Stop()
	}
	if c.client != nil {
		c.client.Close()
	}
}

// PublishWithAttributes publishes a JSON message with attributes and waits
// for the server to acknowledge it.
func (c *PubSubClient) PublishWithAttributes(ctx context.Context, data interface{}, attrs map[string]string) error {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return errors.InternalWrap("failed to encode pubsub message", err)
	}

	result := c.topic.Publish(ctx, &pubsub.Message{
		Data:       jsonData,
		Attributes: attrs,
	})

	if _, err := result.Get(ctx); err != nil {
		return errors.PubSub("failed to publish message", err)
	}
	return nil
}
