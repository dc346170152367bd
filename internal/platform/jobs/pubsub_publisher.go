package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"cloud.google.com/go/pubsub"

	"github.com/woodcraft-atelier/api/internal/services"
)

// EventInquiryCreated is the eventType attribute of inquiry notifications.
const EventInquiryCreated = "inquiry.created"

// PubSubInquiryPublisher publishes inquiry notifications to a Pub/Sub topic.
type PubSubInquiryPublisher struct {
	topic   *pubsub.Topic
	marshal func(any) ([]byte, error)
}

var _ services.InquiryNotifier = (*PubSubInquiryPublisher)(nil)

// NewPubSubInquiryPublisher constructs a Pub/Sub backed inquiry notifier.
func NewPubSubInquiryPublisher(topic *pubsub.Topic) (*PubSubInquiryPublisher, error) {
	if topic == nil {
		return nil, errors.New("pubsub inquiry publisher: topic is required")
	}
	return &PubSubInquiryPublisher{
		topic:   topic,
		marshal: json.Marshal,
	}, nil
}

// PublishInquiryCreated sends the event and waits for the server message id.
func (p *PubSubInquiryPublisher) PublishInquiryCreated(ctx context.Context, event services.InquiryCreatedEvent) (string, error) {
	if p == nil || p.topic == nil {
		return "", errors.New("pubsub inquiry publisher: not initialised")
	}

	data, err := p.marshal(event)
	if err != nil {
		return "", fmt.Errorf("marshal inquiry event: %w", err)
	}

	attrs := map[string]string{"eventType": EventInquiryCreated}
	setAttr(attrs, "inquiryId", event.InquiryID)
	setAttr(attrs, "projectId", event.ProjectID)

	result := p.topic.Publish(ctx, &pubsub.Message{
		Data:       data,
		Attributes: attrs,
	})

	id, err := result.Get(ctx)
	if err != nil {
		return "", fmt.Errorf("publish inquiry event: %w", err)
	}
	return id, nil
}

// Check reports whether the topic exists; used as a readiness probe.
func (p *PubSubInquiryPublisher) Check(ctx context.Context) error {
	ok, err := p.topic.Exists(ctx)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("pubsub topic %s does not exist", p.topic.ID())
	}
	return nil
}

// Stop flushes pending messages.
func (p *PubSubInquiryPublisher) Stop() {
	if p != nil && p.topic != nil {
		p.topic.Stop()
	}
}

func setAttr(attrs map[string]string, key string, value string) {
	if v := strings.TrimSpace(value); v != "" {
		attrs[key] = v
	}
}
