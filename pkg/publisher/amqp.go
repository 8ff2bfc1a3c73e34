package publisher

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/Azure/go-amqp"

	"github.com/fadedpez/nothanks/internal/logging"
	"github.com/fadedpez/nothanks/pkg/entities"
)

// AMQPConfig holds the broker connection settings
type AMQPConfig struct {
	URL      string
	Username string
	Password string
	// Address is the queue or topic the sender link targets
	Address string
	Timeout time.Duration
}

// sender is the part of *amqp.Sender the publisher needs
type sender interface {
	Send(ctx context.Context, msg *amqp.Message) error
	Close(ctx context.Context) error
}

// AMQPPublisher sends each result as a durable JSON message on one sender link
type AMQPPublisher struct {
	client  *amqp.Client
	sender  sender
	address string
	timeout time.Duration
}

// NewAMQPPublisher dials the broker and opens a sender to cfg.Address
func NewAMQPPublisher(cfg AMQPConfig) (*AMQPPublisher, error) {
	clientOpts := []amqp.ConnOption{
		amqp.ConnSASLPlain(cfg.Username, cfg.Password),
	}
	if strings.HasPrefix(cfg.URL, "amqps://") {
		clientOpts = append(clientOpts, amqp.ConnTLSConfig(&tls.Config{MinVersion: tls.VersionTLS12}))
	}

	client, err := amqp.Dial(cfg.URL, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("dialing AMQP server: %w", err)
	}

	session, err := client.NewSession()
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("creating AMQP session: %w", err)
	}

	s, err := session.NewSender(amqp.LinkTargetAddress(cfg.Address))
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("creating sender link: %w", err)
	}

	logging.Default.Info("Publishing game results to %s", cfg.Address)
	p := newAMQPPublisher(s, cfg.Address, cfg.Timeout)
	p.client = client
	return p, nil
}

func newAMQPPublisher(s sender, address string, timeout time.Duration) *AMQPPublisher {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &AMQPPublisher{sender: s, address: address, timeout: timeout}
}

// Publish sends result and waits for the broker to settle it
func (p *AMQPPublisher) Publish(ctx context.Context, result *entities.GameResult) error {
	msg, err := newResultMessage(result)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	if err := p.sender.Send(ctx, msg); err != nil {
		return fmt.Errorf("publishing game %s to %s: %w", result.ID, p.address, err)
	}
	return nil
}

// Close closes the sender link and the connection
func (p *AMQPPublisher) Close() error {
	if err := p.sender.Close(context.Background()); err != nil {
		logging.Default.Warn("unable to close AMQP sender: %v", err)
	}
	if p.client == nil {
		return nil
	}
	return p.client.Close()
}

const jsonContentType = "application/json"

func newResultMessage(result *entities.GameResult) (*amqp.Message, error) {
	body, err := json.Marshal(result)
	if err != nil {
		return nil, fmt.Errorf("encoding game result: %w", err)
	}

	created := result.CompletedAt
	if created.IsZero() {
		created = time.Now()
	}

	contentType := amqp.AMQPSymbol(jsonContentType)
	return &amqp.Message{
		Data: [][]byte{body},
		ApplicationProperties: map[string]interface{}{
			"gameType":  string(result.GameType),
			"channelID": result.ChannelID,
			"winners":   strings.Join(result.Winners(), ","),
		},
		Properties: &amqp.MessageProperties{
			MessageID:    result.ID,
			CreationTime: &created,
			ContentType:  &contentType,
		},
		Header: &amqp.MessageHeader{
			Durable: true,
		},
	}, nil
}
