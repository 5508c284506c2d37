package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog/log"

	"matrimony-service/internal/models"
	"matrimony-service/internal/observability"
)

// SubjectPrefix is prepended to the notification type to form the NATS subject.
const SubjectPrefix = "notifications."

// NATSNotifier publishes notifications for the email/SMS/push workers.
type NATSNotifier struct {
	conn *nats.Conn
}

// NewNATSNotifier connects to NATS. An empty url yields a Noop so local runs
// work without a broker.
func NewNATSNotifier(url, name string) (Notifier, func(), error) {
	if url == "" {
		log.Info().Msg("nats disabled, notifications go to websocket only")
		return Noop{}, func() {}, nil
	}

	conn, err := nats.Connect(url,
		nats.Name(name),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				log.Warn().Err(err).Msg("nats disconnected")
			}
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			log.Info().Str("url", c.ConnectedUrl()).Msg("nats reconnected")
		}),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("connect nats: %w", err)
	}

	log.Info().Str("url", conn.ConnectedUrl()).Msg("nats connected")
	return &NATSNotifier{conn: conn}, conn.Close, nil
}

// Subject returns the subject a notification is published on.
func Subject(n models.Notification) string {
	return SubjectPrefix + string(n.Type)
}

func (p *NATSNotifier) Notify(ctx context.Context, n models.Notification) error {
	body, err := json.Marshal(n)
	if err != nil {
		return err
	}

	msg := nats.NewMsg(Subject(n))
	msg.Data = body
	msg.Header.Set("recipient", n.RecipientID)
	if requestID := observability.RequestIDFromContext(ctx); requestID != "" {
		msg.Header.Set("x-request-id", requestID)
	}
	if traceID := observability.TraceIDFromContext(ctx); traceID != "" {
		msg.Header.Set("trace_id", traceID)
	}

	if err := p.conn.PublishMsg(msg); err != nil {
		return fmt.Errorf("publish %s: %w", msg.Subject, err)
	}
	return nil
}
