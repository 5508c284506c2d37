package telemetry

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"matrimony-service/internal/models"
	"matrimony-service/internal/observability"
)

type Publisher interface {
	Publish(ctx context.Context, routingKey string, event any) error
	Close() error
}

// ActivityLog appends audit entries for mutating operations to the activity exchange.
// Publishing is best effort: failures are logged and counted, never returned.
type ActivityLog struct {
	publisher   Publisher
	routingKey  string
	service     string
	environment string
}

type ActivityEnvelope struct {
	SchemaVersion int             `json:"schema_version"`
	EventType     string          `json:"event_type"`
	OccurredAt    string          `json:"occurred_at"`
	Service       string          `json:"service"`
	Environment   string          `json:"environment"`
	RequestID     string          `json:"request_id"`
	TraceID       string          `json:"trace_id,omitempty"`
	UserID        *string         `json:"user_id,omitempty"`
	Payload       models.Activity `json:"payload"`
}

func NewActivityLog(publisher Publisher, routingKey, service, environment string) *ActivityLog {
	return &ActivityLog{
		publisher:   publisher,
		routingKey:  routingKey,
		service:     service,
		environment: environment,
	}
}

// Record publishes one activity entry.
func (l *ActivityLog) Record(ctx context.Context, activity models.Activity) {
	if l == nil || l.publisher == nil {
		return
	}
	if activity.OccurredAt.IsZero() {
		activity.OccurredAt = time.Now().UTC()
	}

	envelope := ActivityEnvelope{
		SchemaVersion: 1,
		EventType:     "activity_log",
		OccurredAt:    activity.OccurredAt.UTC().Format(time.RFC3339Nano),
		Service:       l.service,
		Environment:   l.environment,
		RequestID:     observability.RequestIDFromContext(ctx),
		Payload:       activity,
	}
	if activity.ActorID != "" {
		actor := activity.ActorID
		envelope.UserID = &actor
	}
	envelope.TraceID = observability.TraceIDFromContext(ctx)

	log.Debug().
		Str("action", activity.Action).
		Str("request_id", envelope.RequestID).
		Str("interest_id", activity.InterestID).
		Msg("activity record")

	if err := l.publisher.Publish(ctx, l.routingKey, envelope); err != nil {
		observability.IncBestEffortFailure("activity")
		log.Warn().Err(err).Str("action", activity.Action).Msg("activity publish failed")
	}
}
