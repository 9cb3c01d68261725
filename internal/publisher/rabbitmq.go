package publisher

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"mofa_notifier/internal/domain"
)

// RabbitMQ fans delivered digests out to a durable direct exchange.
type RabbitMQ struct {
	conn       *amqp.Connection
	channel    *amqp.Channel
	exchange   string
	routingKey string
	logger     *slog.Logger
}

type Config struct {
	URL        string
	Exchange   string
	RoutingKey string
	QueueName  string
}

// NewRabbitMQ dials the broker and declares the exchange, queue and binding.
func NewRabbitMQ(cfg Config, logger *slog.Logger) (*RabbitMQ, error) {
	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("connect to rabbitmq: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	if err := declareTopology(ch, cfg); err != nil {
		ch.Close()
		conn.Close()
		return nil, err
	}

	logger.Info("connected to rabbitmq",
		"exchange", cfg.Exchange,
		"queue", cfg.QueueName,
		"routing_key", cfg.RoutingKey,
	)

	return &RabbitMQ{
		conn:       conn,
		channel:    ch,
		exchange:   cfg.Exchange,
		routingKey: cfg.RoutingKey,
		logger:     logger,
	}, nil
}

func declareTopology(ch *amqp.Channel, cfg Config) error {
	// durable, not auto-deleted, not internal, wait for confirmation
	if err := ch.ExchangeDeclare(cfg.Exchange, amqp.ExchangeDirect, true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare exchange: %w", err)
	}

	q, err := ch.QueueDeclare(cfg.QueueName, true, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("declare queue: %w", err)
	}

	if err := ch.QueueBind(q.Name, cfg.RoutingKey, cfg.Exchange, false, nil); err != nil {
		return fmt.Errorf("bind queue %s: %w", q.Name, err)
	}

	return nil
}

// DigestMessage is the JSON body published for each delivered digest.
type DigestMessage struct {
	ID          string          `json:"id"`
	Text        string          `json:"text"`
	NoticeCount int             `json:"notice_count"`
	Notices     []NoticeMessage `json:"notices"`
	GeneratedAt time.Time       `json:"generated_at"`
	Timestamp   time.Time       `json:"timestamp"`
}

type NoticeMessage struct {
	TypeCode        string     `json:"type_code"`
	TypeName        string     `json:"type_name,omitempty"`
	TypeNameLong    string     `json:"type_name_long,omitempty"`
	PublishedAt     *time.Time `json:"published_at,omitempty"`
	CountryCode     string     `json:"country_code"`
	CountryName     string     `json:"country_name,omitempty"`
	AreaCode        string     `json:"area_code,omitempty"`
	AreaName        string     `json:"area_name,omitempty"`
	Title           string     `json:"title"`
	DetailURL       string     `json:"detail_url"`
	OfficeCode      string     `json:"office_code,omitempty"`
	OfficeName      string     `json:"office_name,omitempty"`
	RiskLevels      []int      `json:"risk_levels,omitempty"`
	InfectionLevels []int      `json:"infection_levels,omitempty"`
}

func newDigestMessage(d *domain.Digest) DigestMessage {
	notices := make([]NoticeMessage, len(d.Notices))
	for i, n := range d.Notices {
		notices[i] = NoticeMessage{
			TypeCode:        n.TypeCode,
			TypeName:        n.TypeName,
			TypeNameLong:    n.TypeNameLong,
			PublishedAt:     n.PublishedAt,
			CountryCode:     n.CountryCode,
			CountryName:     n.CountryName,
			AreaCode:        n.AreaCode,
			AreaName:        n.AreaName,
			Title:           n.Title,
			DetailURL:       n.DetailURL,
			OfficeCode:      n.OfficeCode,
			OfficeName:      n.OfficeName,
			RiskLevels:      n.RiskLevels.Descending(),
			InfectionLevels: n.InfectionLevels.Descending(),
		}
	}

	return DigestMessage{
		ID:          d.ID,
		Text:        d.Text,
		NoticeCount: len(d.Notices),
		Notices:     notices,
		GeneratedAt: d.GeneratedAt,
		Timestamp:   time.Now().UTC(),
	}
}

// Publish sends digest as a persistent JSON message keyed by its id.
func (r *RabbitMQ) Publish(ctx context.Context, digest *domain.Digest) error {
	body, err := json.Marshal(newDigestMessage(digest))
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	err = r.channel.PublishWithContext(
		ctx,
		r.exchange,
		r.routingKey,
		false,
		false,
		amqp.Publishing{
			DeliveryMode: amqp.Persistent,
			ContentType:  "application/json",
			MessageId:    digest.ID,
			Body:         body,
			Timestamp:    time.Now(),
		},
	)
	if err != nil {
		return fmt.Errorf("publish message: %w", err)
	}

	r.logger.Debug("published digest",
		"digest_id", digest.ID,
		"notices", len(digest.Notices),
	)

	return nil
}

func (r *RabbitMQ) Close() error {
	if r.channel != nil {
		r.channel.Close()
	}
	if r.conn != nil {
		return r.conn.Close()
	}
	return nil
}
