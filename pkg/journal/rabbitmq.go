package journal

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"
)

// RabbitMQConfig describes where submission notifications are published.
type RabbitMQConfig struct {
	URL      string `json:"url"`
	Exchange string `json:"exchange"`
	// RoutingKey doubles as the queue name when Exchange is empty.
	RoutingKey string `json:"routing_key"`
	Durable    bool   `json:"durable"`
}

// RabbitMQPublisher publishes every entry as a JSON message.
type RabbitMQPublisher struct {
	mu         sync.Mutex
	conn       *amqp.Connection
	ch         *amqp.Channel
	exchange   string
	routingKey string
	durable    bool
}

// NewRabbitMQPublisher dials the broker and declares the target queue when
// publishing to the default exchange.
func NewRabbitMQPublisher(cfg RabbitMQConfig) (*RabbitMQPublisher, error) {
	if cfg.URL == "" {
		return nil, errors.New("RabbitMQ URL 不能为空")
	}
	routingKey := cfg.RoutingKey
	if routingKey == "" {
		routingKey = "suiai.submissions"
	}
	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("连接 RabbitMQ 失败: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("创建 RabbitMQ channel 失败: %w", err)
	}
	if cfg.Exchange == "" {
		if _, err := ch.QueueDeclare(routingKey, cfg.Durable, false, false, false, nil); err != nil {
			ch.Close()
			conn.Close()
			return nil, fmt.Errorf("声明 RabbitMQ 队列失败: %w", err)
		}
	}
	return &RabbitMQPublisher{conn: conn, ch: ch, exchange: cfg.Exchange, routingKey: routingKey, durable: cfg.Durable}, nil
}

// Record implements Sink.
func (p *RabbitMQPublisher) Record(ctx context.Context, entry Entry) error {
	if p == nil || p.ch == nil {
		return errors.New("RabbitMQ 发布器未初始化")
	}
	msg, err := newPublishing(Prepare(entry), p.durable)
	if err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.ch.PublishWithContext(ctx, p.exchange, p.routingKey, false, false, msg); err != nil {
		return fmt.Errorf("RabbitMQ 发布提交记录失败: %w", err)
	}
	return nil
}

func newPublishing(entry Entry, durable bool) (amqp.Publishing, error) {
	body, err := json.Marshal(entry)
	if err != nil {
		return amqp.Publishing{}, fmt.Errorf("序列化提交记录失败: %w", err)
	}
	msg := amqp.Publishing{
		ContentType: "application/json",
		MessageId:   entry.ID,
		Timestamp:   entry.SubmittedAt,
		Type:        entry.Operation,
		Headers: amqp.Table{
			"status": string(entry.Status),
			"digest": entry.Digest,
		},
		Body: body,
	}
	if durable {
		msg.DeliveryMode = amqp.Persistent
	}
	return msg, nil
}

// Close implements Sink.
func (p *RabbitMQPublisher) Close() error {
	if p == nil {
		return nil
	}
	if p.ch != nil {
		_ = p.ch.Close()
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}

var _ Sink = (*RabbitMQPublisher)(nil)
