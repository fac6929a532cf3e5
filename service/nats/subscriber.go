package nats

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

// Handler receives the payload of one event.
type Handler func(data []byte)

// Subscriber delivers events published for one wallet.
type Subscriber interface {
	// Subscribe calls handler for every event published for address from now
	// on, until stop is called.
	Subscribe(ctx context.Context, address string, handler Handler) (stop func(), err error)

	// Close closes the connection to NATS.
	Close() error
}

// JetStreamSubscriber reads transaction events from NATS JetStream using an
// ephemeral consumer per subscription.
type JetStreamSubscriber struct {
	nc     *nats.Conn
	js     jetstream.JetStream
	logger *slog.Logger
}

// NewSubscriber connects to NATS and checks the transaction stream exists.
func NewSubscriber(natsURL string, logger *slog.Logger) (*JetStreamSubscriber, error) {
	nc, err := nats.Connect(natsURL,
		nats.Name("walletdash"),
		nats.Timeout(10*time.Second),
		nats.ReconnectWait(1*time.Second),
		nats.MaxReconnects(-1),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("failed to create JetStream context: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if _, err := js.Stream(ctx, StreamName); err != nil {
		nc.Close()
		return nil, fmt.Errorf("failed to find stream %s: %w", StreamName, err)
	}

	logger.Info("NATS subscriber initialized", "url", natsURL, "stream", StreamName)

	return &JetStreamSubscriber{nc: nc, js: js, logger: logger}, nil
}

// Subscribe implements Subscriber. Only events published after the call are
// delivered.
func (s *JetStreamSubscriber) Subscribe(ctx context.Context, address string, handler Handler) (func(), error) {
	subject := Subject(address)
	cons, err := s.js.CreateOrUpdateConsumer(ctx, StreamName, jetstream.ConsumerConfig{
		FilterSubject: subject,
		AckPolicy:     jetstream.AckExplicitPolicy,
		DeliverPolicy: jetstream.DeliverNewPolicy,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create consumer for %s: %w", subject, err)
	}

	cc, err := cons.Consume(func(msg jetstream.Msg) {
		handler(msg.Data())
		if err := msg.Ack(); err != nil {
			s.logger.Warn("failed to ack event", "subject", subject, "error", err)
		}
	})
	if err != nil {
		return nil, fmt.Errorf("failed to consume %s: %w", subject, err)
	}

	s.logger.Debug("subscribed to wallet events", "subject", subject)
	return cc.Stop, nil
}

// Close closes the connection to NATS.
func (s *JetStreamSubscriber) Close() error {
	if s.nc != nil {
		s.nc.Close()
		s.logger.Info("NATS subscriber closed")
	}
	return nil
}
