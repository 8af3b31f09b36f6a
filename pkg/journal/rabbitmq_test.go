package journal

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

func TestNewPublishingCarriesEntry(t *testing.T) {
	t.Parallel()

	at := time.Unix(1700000000, 0).UTC()
	entry := Entry{ID: "id-1", Digest: "D", Operation: "execute_inference", Status: StatusRejected, SubmittedAt: at}
	msg, err := newPublishing(entry, true)
	if err != nil {
		t.Fatalf("new publishing: %v", err)
	}
	if msg.DeliveryMode != amqp.Persistent || msg.MessageId != "id-1" || msg.Type != "execute_inference" {
		t.Fatalf("unexpected message: %+v", msg)
	}
	if msg.Headers["status"] != "rejected" || msg.Headers["digest"] != "D" {
		t.Fatalf("unexpected headers: %+v", msg.Headers)
	}
	var decoded Entry
	if err := json.Unmarshal(msg.Body, &decoded); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if decoded.Digest != "D" || !decoded.SubmittedAt.Equal(at) {
		t.Fatalf("unexpected body: %+v", decoded)
	}
}

func TestRabbitMQPublisherValidation(t *testing.T) {
	t.Parallel()

	if _, err := NewRabbitMQPublisher(RabbitMQConfig{}); err == nil {
		t.Fatalf("expected error for empty URL")
	}
	var p *RabbitMQPublisher
	if err := p.Record(context.Background(), Entry{}); err == nil {
		t.Fatalf("expected error for uninitialised publisher")
	}
	if err := p.Close(); err != nil {
		t.Fatalf("closing nil publisher: %v", err)
	}
}
