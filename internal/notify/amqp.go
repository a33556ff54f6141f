package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"

	"recruitdesk/internal/constants"
	apperrors "recruitdesk/internal/errors"
	"recruitdesk/internal/models"
	"recruitdesk/internal/tracing"
)

// Envelope wraps every published event
type Envelope struct {
	Meta EnvelopeMeta `json:"meta"`
	Data any          `json:"data"`
}

type EnvelopeMeta struct {
	ID            string    `json:"id"`
	CorrelationID string    `json:"correlation_id,omitempty"`
	Producer      string    `json:"producer"`
	Time          time.Time `json:"time"`
	Type          string    `json:"type"`
}

const producer = "recruitdesk"

// amqpChannel is the part of *amqp.Channel the notifier uses
type amqpChannel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// AMQPNotifier publishes decisions to a topic exchange
type AMQPNotifier struct {
	conn       *amqp.Connection
	channel    func() (amqpChannel, error)
	exchange   string
	routingKey string
	logger     *logrus.Logger
}

// NewAMQPNotifier dials the broker and declares the durable topic exchange
func NewAMQPNotifier(cfg models.AMQPConfig, logger *logrus.Logger) (*AMQPNotifier, error) {
	if cfg.URL == "" {
		return nil, apperrors.NewConfigError("moderation.amqp.url", "AMQP URL is required for the amqp notifier")
	}
	exchange := cfg.Exchange
	if exchange == "" {
		exchange = constants.DefaultAMQPExchange
	}
	routingKey := cfg.RoutingKey
	if routingKey == "" {
		routingKey = constants.DefaultAMQPRoutingKey
	}

	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, apperrors.NewAPIError("notifier", "amqp", 0, err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open AMQP channel: %w", err)
	}
	defer ch.Close()

	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to declare exchange %s: %w", exchange, err)
	}

	n := newAMQPNotifier(func() (amqpChannel, error) {
		ch, err := conn.Channel()
		if err != nil {
			return nil, err
		}
		return ch, nil
	}, exchange, routingKey, logger)
	n.conn = conn
	return n, nil
}

func newAMQPNotifier(channel func() (amqpChannel, error), exchange, routingKey string, logger *logrus.Logger) *AMQPNotifier {
	if logger == nil {
		logger = logrus.New()
		logger.SetLevel(logrus.WarnLevel)
	}
	return &AMQPNotifier{channel: channel, exchange: exchange, routingKey: routingKey, logger: logger}
}

func (a *AMQPNotifier) Notify(ctx context.Context, n models.DecisionNotification) error {
	env := Envelope{
		Meta: EnvelopeMeta{
			ID:            uuid.NewString(),
			CorrelationID: tracing.GetRequestID(ctx),
			Producer:      producer,
			Time:          n.Timestamp,
			Type:          a.routingKey,
		},
		Data: n,
	}
	body, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("failed to marshal envelope: %w", err)
	}

	ch, err := a.channel()
	if err != nil {
		return apperrors.NewAPIError("notifier", a.exchange, 0, err)
	}
	defer ch.Close()

	err = ch.PublishWithContext(ctx, a.exchange, a.routingKey, false, false, amqp.Publishing{
		ContentType:   "application/json",
		DeliveryMode:  amqp.Persistent,
		MessageId:     env.Meta.ID,
		CorrelationId: env.Meta.CorrelationID,
		Timestamp:     env.Meta.Time,
		Type:          env.Meta.Type,
		AppId:         producer,
		Body:          body,
	})
	if err != nil {
		return apperrors.NewAPIError("notifier", a.exchange, 0, err)
	}

	a.logger.WithFields(logrus.Fields{
		"exchange":    a.exchange,
		"routing_key": a.routingKey,
		"message_id":  env.Meta.ID,
	}).Debug("Published moderation decision")
	return nil
}

func (a *AMQPNotifier) Close() error {
	if a.conn == nil {
		return nil
	}
	return a.conn.Close()
}
