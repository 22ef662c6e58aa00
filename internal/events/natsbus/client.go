// Package natsbus mirrors room state onto NATS and accepts operator control
// messages from it.
package natsbus

import (
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"
)

// Config holds NATS connection settings
type Config struct {
	URL           string
	MaxReconnects int
	ReconnectWait time.Duration
}

// Subscription is an active subscription
type Subscription interface {
	Unsubscribe() error
}

// Transport is the part of a NATS connection the bus uses
type Transport interface {
	Publish(subject string, data []byte) error
	QueueSubscribe(subject, queue string, handler func(data []byte)) (Subscription, error)
}

// Client wraps a NATS connection
type Client struct {
	conn *nats.Conn
}

// Ensure Client implements Transport
var _ Transport = (*Client)(nil)

// NewClient connects to NATS
func NewClient(cfg Config, logger *slog.Logger) (*Client, error) {
	logger = logger.With(slog.String("component", "nats"))
	opts := []nats.Option{
		nats.Name("trucogame"),
		nats.MaxReconnects(cfg.MaxReconnects),
		nats.ReconnectWait(cfg.ReconnectWait),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			if err != nil {
				logger.Warn("nats disconnected", slog.String("error", err.Error()))
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.Info("nats reconnected", slog.String("url", nc.ConnectedUrl()))
		}),
	}

	conn, err := nats.Connect(cfg.URL, opts...)
	if err != nil {
		return nil, err
	}

	return &Client{conn: conn}, nil
}

// Publish sends data on subject
func (c *Client) Publish(subject string, data []byte) error {
	return c.conn.Publish(subject, data)
}

// QueueSubscribe delivers each message on subject to one member of queue
func (c *Client) QueueSubscribe(subject, queue string, handler func(data []byte)) (Subscription, error) {
	sub, err := c.conn.QueueSubscribe(subject, queue, func(msg *nats.Msg) {
		handler(msg.Data)
	})
	if err != nil {
		return nil, err
	}
	return sub, nil
}

// Close drains pending messages and closes the connection
func (c *Client) Close() error {
	return c.conn.Drain()
}
