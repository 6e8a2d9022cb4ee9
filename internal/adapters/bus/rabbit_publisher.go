package bus

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rabbitmq/amqp091-go"

	"route-optimizer-service/internal/apperr"
	"route-optimizer-service/internal/ports"
)

const reconnectDelay = 3 * time.Second

// RabbitPublisher publishes lifecycle events to a durable topic
// exchange. The connection self-heals: a NotifyClose signal wakes a
// background loop that redials until the broker answers or Close is
// called.
type RabbitPublisher struct {
	logger    *slog.Logger
	conn      *amqp091.Connection
	connClose chan *amqp091.Error
	chMu      sync.RWMutex
	ch        *amqp091.Channel
	isClosed  atomic.Bool
}

func NewRabbitPublisher(dsn string, logger *slog.Logger) (*RabbitPublisher, error) {
	p := &RabbitPublisher{logger: logger}

	if err := p.createChannel(dsn); err != nil {
		return nil, err
	}

	go p.reconnectConn(dsn)
	return p, nil
}

func (p *RabbitPublisher) Close() error {
	p.isClosed.Store(true)
	defer p.logger.Info("rabbit closed")
	return p.conn.Close()
}

// Publish sends one event to the named exchange, routed by its event
// type. Returns a provider-kind error when the channel is down so the
// caller can log and move on.
func (p *RabbitPublisher) Publish(ctx context.Context, topic string, event ports.Event) error {
	body, err := json.Marshal(event)
	if err != nil {
		return apperr.Provider("marshal event", err)
	}

	p.chMu.RLock()
	ch := p.ch
	p.chMu.RUnlock()
	if ch == nil || ch.IsClosed() {
		return apperr.Provider("publish event", errors.New("channel unavailable"))
	}

	err = ch.PublishWithContext(ctx,
		topic,
		event.EventType,
		false,
		false,
		amqp091.Publishing{
			ContentType: "application/json",
			MessageId:   event.EventID,
			Timestamp:   event.Timestamp,
			Body:        body,
		},
	)
	if err != nil {
		return apperr.Provider("publish event", err)
	}

	return nil
}

func (p *RabbitPublisher) reconnectConn(dsn string) {
	for {
		<-p.connClose
		if p.isClosed.Load() {
			return
		}
		p.logger.Warn("rabbitMQ not working")
		for {
			if p.isClosed.Load() {
				return
			}
			p.logger.Info("trying to connect to rabbitmq")
			if err := p.createChannel(dsn); err != nil {
				time.Sleep(reconnectDelay)
				continue
			}
			p.logger.Info("connected to rabbitmq")
			break
		}
	}
}

func (p *RabbitPublisher) createChannel(dsn string) error {
	conn, err := amqp091.Dial(dsn)
	if err != nil {
		return err
	}
	p.conn = conn
	p.connClose = make(chan *amqp091.Error)
	p.conn.NotifyClose(p.connClose)

	ch, err := conn.Channel()
	if err != nil {
		return errors.Join(conn.Close(), err)
	}

	err = ch.ExchangeDeclare(
		"route_topic", // name
		"topic",       // type
		true,          // durable
		false,         // auto-deleted
		false,         // internal
		false,         // no-wait
		nil,           // args
	)
	if err != nil {
		return errors.Join(conn.Close(), err)
	}

	p.chMu.Lock()
	p.ch = ch
	p.chMu.Unlock()
	return nil
}
