// Package natsbus publishes game events to NATS for spectators and audit
// consumers. Each session gets its own subject, <prefix>.<session_id>, and
// every message is the JSON encoding of one service.GameEvent.
package natsbus

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"github.com/wricardo/jodytama/game/service"
)

// DefaultSubjectPrefix is used when no prefix is configured
const DefaultSubjectPrefix = "jodytama.events"

// ErrClosed is returned by Publish after Close
var ErrClosed = errors.New("natsbus: publisher closed")

// Conn is the subset of *nats.Conn the publisher needs
type Conn interface {
	Publish(subject string, data []byte) error
	Drain() error
	IsClosed() bool
}

// Publisher implements service.EventPublisher on top of a NATS connection
type Publisher struct {
	conn   Conn
	prefix string
	logger *zap.Logger
}

// Option configures a Publisher
type Option func(*Publisher)

// WithSubjectPrefix overrides DefaultSubjectPrefix
func WithSubjectPrefix(prefix string) Option {
	return func(p *Publisher) {
		if prefix = strings.Trim(prefix, "."); prefix != "" {
			p.prefix = prefix
		}
	}
}

// WithLogger sets the publisher's logger
func WithLogger(logger *zap.Logger) Option {
	return func(p *Publisher) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// Connect dials the NATS server at url and returns a publisher on it
func Connect(url string, opts ...Option) (*Publisher, error) {
	nc, err := nats.Connect(url,
		nats.Name("jodytama"),
		nats.Timeout(5*time.Second),
		nats.MaxReconnects(-1),
	)
	if err != nil {
		return nil, fmt.Errorf("natsbus: connect %s: %w", url, err)
	}
	p := New(nc, opts...)
	p.logger.Info("connected to NATS", zap.String("url", nc.ConnectedUrlRedacted()), zap.String("prefix", p.prefix))
	return p, nil
}

// New wraps an existing connection
func New(conn Conn, opts ...Option) *Publisher {
	p := &Publisher{
		conn:   conn,
		prefix: DefaultSubjectPrefix,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.logger = p.logger.Named("natsbus")
	return p
}

// Subject returns the subject events of sessionID are published on
func (p *Publisher) Subject(sessionID string) string {
	return p.prefix + "." + subjectToken(sessionID)
}

// subjectToken keeps a session id from splitting or wildcarding the subject
func subjectToken(id string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '.', '*', '>', ' ', '\t', '\r', '\n':
			return '_'
		}
		return r
	}, id)
}

// Publish sends each event as its own message. It stops at the first failure.
func (p *Publisher) Publish(ctx context.Context, sessionID string, events []service.GameEvent) error {
	if p.conn.IsClosed() {
		return ErrClosed
	}
	subject := p.Subject(sessionID)
	for _, ev := range events {
		if err := ctx.Err(); err != nil {
			return err
		}
		data, err := json.Marshal(ev)
		if err != nil {
			return fmt.Errorf("natsbus: encode %s event: %w", ev.Type, err)
		}
		if err := p.conn.Publish(subject, data); err != nil {
			return fmt.Errorf("natsbus: publish to %s: %w", subject, err)
		}
	}
	p.logger.Debug("published events", zap.String("subject", subject), zap.Int("events", len(events)))
	return nil
}

// Close drains pending messages and closes the connection
func (p *Publisher) Close() error {
	if p.conn.IsClosed() {
		return nil
	}
	return p.conn.Drain()
}
