package jobs

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"cloud.google.com/go/pubsub"
	"cloud.google.com/go/pubsub/pstest"
	"google.golang.org/api/option"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/woodcraft-atelier/api/internal/services"
)

func newTestClient(t *testing.T) (*pstest.Server, *pubsub.Client) {
	t.Helper()
	srv := pstest.NewServer()
	t.Cleanup(func() { _ = srv.Close() })

	client, err := pubsub.NewClient(context.Background(), "test-project",
		option.WithEndpoint(srv.Addr),
		option.WithoutAuthentication(),
		option.WithGRPCDialOption(grpc.WithTransportCredentials(insecure.NewCredentials())),
	)
	if err != nil {
		t.Fatalf("pubsub.NewClient: %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })
	return srv, client
}

func TestPubSubInquiryPublisherPublishesMessage(t *testing.T) {
	ctx := context.Background()
	srv, client := newTestClient(t)

	topic, err := client.CreateTopic(ctx, "inquiries")
	if err != nil {
		t.Fatalf("CreateTopic: %v", err)
	}

	publisher, err := NewPubSubInquiryPublisher(topic)
	if err != nil {
		t.Fatalf("NewPubSubInquiryPublisher: %v", err)
	}
	defer publisher.Stop()

	event := services.InquiryCreatedEvent{
		InquiryID:  "inq_01",
		ProjectID:  "oak-table",
		ClientName: "Amina",
		Email:      "amina@example.com",
		Subject:    "Dining table quote",
		CreatedAt:  time.Date(2025, 5, 6, 9, 0, 0, 0, time.UTC),
	}

	if _, err := publisher.PublishInquiryCreated(ctx, event); err != nil {
		t.Fatalf("PublishInquiryCreated: %v", err)
	}

	messages := srv.Messages()
	if len(messages) != 1 {
		t.Fatalf("expected 1 message, got %d", len(messages))
	}

	var payload services.InquiryCreatedEvent
	if err := json.Unmarshal(messages[0].Data, &payload); err != nil {
		t.Fatalf("unmarshal payload: %v", err)
	}
	if payload.InquiryID != event.InquiryID || !payload.CreatedAt.Equal(event.CreatedAt) {
		t.Fatalf("unexpected payload %#v", payload)
	}
	if got := messages[0].Attributes["eventType"]; got != EventInquiryCreated {
		t.Fatalf("expected eventType attribute, got %q", got)
	}
	if got := messages[0].Attributes["projectId"]; got != "oak-table" {
		t.Fatalf("expected projectId attribute, got %q", got)
	}
}

func TestPubSubInquiryPublisherOmitsEmptyProject(t *testing.T) {
	ctx := context.Background()
	srv, client := newTestClient(t)
	topic, err := client.CreateTopic(ctx, "inquiries")
	if err != nil {
		t.Fatalf("CreateTopic: %v", err)
	}
	publisher, _ := NewPubSubInquiryPublisher(topic)
	defer publisher.Stop()

	if _, err := publisher.PublishInquiryCreated(ctx, services.InquiryCreatedEvent{InquiryID: "inq_02"}); err != nil {
		t.Fatalf("PublishInquiryCreated: %v", err)
	}
	if _, ok := srv.Messages()[0].Attributes["projectId"]; ok {
		t.Fatalf("projectId attribute should not be present")
	}
}

func TestPubSubInquiryPublisherCheck(t *testing.T) {
	ctx := context.Background()
	_, client := newTestClient(t)

	missing, _ := NewPubSubInquiryPublisher(client.Topic("absent"))
	if err := missing.Check(ctx); err == nil {
		t.Fatalf("expected error for missing topic")
	}

	topic, err := client.CreateTopic(ctx, "present")
	if err != nil {
		t.Fatalf("CreateTopic: %v", err)
	}
	present, _ := NewPubSubInquiryPublisher(topic)
	if err := present.Check(ctx); err != nil {
		t.Fatalf("Check: %v", err)
	}
}

func TestNewPubSubInquiryPublisherRequiresTopic(t *testing.T) {
	if _, err := NewPubSubInquiryPublisher(nil); err == nil {
		t.Fatalf("expected error for nil topic")
	}
}
