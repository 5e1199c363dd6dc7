package ingest

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"git.home.luguber.info/inful/eventmetrics/internal/config"
	merrors "git.home.luguber.info/inful/eventmetrics/internal/errors"
	"git.home.luguber.info/inful/eventmetrics/internal/logfields"
)

// Message is the part of a JetStream message the consumer relies on.
type Message interface {
	Data() []byte
	Subject() string
	Ack() error
	Term() error
}

// Consumer reads user and admin events from two JetStream subjects.
type Consumer struct {
	cfg        config.NATSConfig
	dispatcher *Dispatcher
	logger     *slog.Logger

	mu       sync.Mutex
	conn     *nats.Conn
	contexts []jetstream.ConsumeContext
}

// NewConsumer returns an unconnected consumer; Start connects.
func NewConsumer(cfg config.NATSConfig, d *Dispatcher, logger *slog.Logger) *Consumer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Consumer{cfg: cfg, dispatcher: d, logger: logger}
}

// Start connects, ensures the stream exists and begins consuming both subjects.
func (c *Consumer) Start(ctx context.Context) error {
	conn, err := nats.Connect(c.cfg.URL, nats.Name("eventmetrics"), nats.MaxReconnects(-1))
	if err != nil {
		return merrors.IngestFailed(c.cfg.URL, fmt.Errorf("failed to connect to NATS: %w", err))
	}

	js, err := jetstream.New(conn)
	if err != nil {
		conn.Close()
		return merrors.IngestFailed(c.cfg.URL, fmt.Errorf("failed to create JetStream context: %w", err))
	}

	_, err = js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:     c.cfg.Stream,
		Subjects: []string{c.cfg.UserSubject, c.cfg.AdminSubject},
	})
	if err != nil {
		conn.Close()
		return merrors.IngestFailed(c.cfg.Stream, fmt.Errorf("failed to ensure stream: %w", err))
	}

	c.mu.Lock()
	c.conn = conn
	c.mu.Unlock()

	subjects := []struct {
		subject string
		suffix  string
		handle  func(Message)
	}{
		{c.cfg.UserSubject, "user", c.HandleUser},
		{c.cfg.AdminSubject, "admin", c.HandleAdmin},
	}
	for _, s := range subjects {
		consumer, err := js.CreateOrUpdateConsumer(ctx, c.cfg.Stream, jetstream.ConsumerConfig{
			Durable:       c.cfg.Durable + "-" + s.suffix,
			FilterSubject: s.subject,
			AckPolicy:     jetstream.AckExplicitPolicy,
		})
		if err != nil {
			c.Stop()
			return merrors.IngestFailed(s.subject, fmt.Errorf("failed to create consumer: %w", err))
		}
		handle := s.handle
		cc, err := consumer.Consume(func(msg jetstream.Msg) { handle(msg) })
		if err != nil {
			c.Stop()
			return merrors.IngestFailed(s.subject, fmt.Errorf("failed to start consumer: %w", err))
		}
		c.mu.Lock()
		c.contexts = append(c.contexts, cc)
		c.mu.Unlock()
		c.logger.Info("Consuming events", logfields.Stream(c.cfg.Stream), logfields.Subject(s.subject))
	}
	return nil
}

// HandleUser records a user event message. Undecodable payloads are terminated
// so they are not redelivered.
func (c *Consumer) HandleUser(msg Message) {
	c.settle(msg, c.dispatcher.User(bytes.NewReader(msg.Data())))
}

// HandleAdmin records an admin event message. Contract violations are
// terminated like undecodable payloads.
func (c *Consumer) HandleAdmin(msg Message) {
	c.settle(msg, c.dispatcher.Admin(bytes.NewReader(msg.Data())))
}

func (c *Consumer) settle(msg Message, err error) {
	if err != nil {
		c.logger.Warn("Dropping event message", logfields.Subject(msg.Subject()), logfields.Error(err))
		if termErr := msg.Term(); termErr != nil {
			c.logger.Debug("Term failed", logfields.Error(termErr))
		}
		return
	}
	if ackErr := msg.Ack(); ackErr != nil {
		c.logger.Debug("Ack failed", logfields.Subject(msg.Subject()), logfields.Error(ackErr))
	}
}

// Stop halts consumption and drains the connection. Safe to call repeatedly.
func (c *Consumer) Stop() {
	c.mu.Lock()
	contexts := c.contexts
	conn := c.conn
	c.contexts = nil
	c.conn = nil
	c.mu.Unlock()

	for _, cc := range contexts {
		cc.Stop()
	}
	if conn != nil {
		if err := conn.Drain(); err != nil {
			conn.Close()
		}
	}
}
