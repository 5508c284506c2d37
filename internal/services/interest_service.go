package services

import (
	"context"
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"matrimony-service/internal/models"
	"matrimony-service/internal/notify"
	"matrimony-service/internal/observability"
	"matrimony-service/internal/privacy"
	"matrimony-service/internal/repositories"
)

var tracer = otel.Tracer("matrimony-service/services")

// ActivityRecorder receives audit entries. Implementations must not block the caller on failure.
type ActivityRecorder interface {
	Record(ctx context.Context, activity models.Activity)
}

// InterestView is an interest as shown to one of its parties, with the
// counterpart's profile already redacted for that party.
type InterestView struct {
	models.Interest
	IsExpired bool                    `json:"isExpired"`
	Profile   privacy.RedactedProfile `json:"profile"`
}

// InterestService owns the interest lifecycle.
type InterestService struct {
	interests repositories.InterestRepository
	profiles  repositories.ProfileRepository
	notifier  notify.Notifier
	activity  ActivityRecorder

	Now   func() time.Time
	NewID func() string
}

// NewInterestService wires the service. A nil notifier or activity recorder disables that side effect.
func NewInterestService(interests repositories.InterestRepository, profiles repositories.ProfileRepository, notifier notify.Notifier, activity ActivityRecorder) *InterestService {
	if notifier == nil {
		notifier = notify.Noop{}
	}
	return &InterestService{
		interests: interests,
		profiles:  profiles,
		notifier:  notifier,
		activity:  activity,
		Now:       func() time.Time { return time.Now().UTC() },
		NewID:     func() string { return uuid.NewString() },
	}
}

// Create sends an interest from fromUser to toUser.
func (s *InterestService) Create(ctx context.Context, fromUser, toUser, message string) (models.Interest, error) {
	ctx, span := tracer.Start(ctx, "InterestService.Create", trace.WithAttributes(
		attribute.String("interest.from_user", fromUser),
		attribute.String("interest.to_user", toUser),
	))
	defer span.End()

	interest, err := s.create(ctx, fromUser, toUser, message)
	s.finish(span, "create", err)
	if err != nil {
		return models.Interest{}, err
	}

	s.record(ctx, models.ActivityInterestSent, fromUser, toUser, interest.ID)
	s.notify(ctx, models.Notification{
		Type:        models.NotifyInterestReceived,
		RecipientID: toUser,
		ActorID:     fromUser,
		InterestID:  interest.ID,
		Message:     interest.Message,
	})
	return interest, nil
}

func (s *InterestService) create(ctx context.Context, fromUser, toUser, message string) (models.Interest, error) {
	if fromUser == "" || toUser == "" {
		return models.Interest{}, models.NewInputError("toUserId", "is required")
	}
	if fromUser == toUser {
		return models.Interest{}, models.NewInputError("toUserId", "cannot send interest to yourself")
	}
	if err := validateMessage(message); err != nil {
		return models.Interest{}, err
	}

	target, err := s.profiles.GetProfile(ctx, toUser)
	if errors.Is(err, models.ErrProfileNotFound) {
		return models.Interest{}, models.ErrTargetNotEligible
	}
	if err != nil {
		return models.Interest{}, fmt.Errorf("load target profile: %w", err)
	}
	if !target.Eligible() || target.Privacy.Blocks(fromUser) {
		return models.Interest{}, models.ErrTargetNotEligible
	}

	sender, err := s.profiles.GetProfile(ctx, fromUser)
	switch {
	case errors.Is(err, models.ErrProfileNotFound):
		// no profile, no block list
	case err != nil:
		return models.Interest{}, fmt.Errorf("load sender profile: %w", err)
	case sender.Privacy.Blocks(toUser):
		return models.Interest{}, models.ErrTargetNotEligible
	}

	now := s.Now()
	return s.interests.Create(ctx, models.Interest{
		ID:        s.NewID(),
		FromUser:  fromUser,
		ToUser:    toUser,
		PairKey:   models.PairKey(fromUser, toUser),
		Status:    models.InterestPending,
		Message:   message,
		IsRead:    false,
		ExpiresAt: now.Add(models.InterestTTL),
		CreatedAt: now,
		UpdatedAt: now,
	})
}

// Respond accepts or rejects a pending interest on behalf of its recipient.
// A nil message leaves the original message in place.
func (s *InterestService) Respond(ctx context.Context, id, actingUser string, decision models.InterestStatus, message *string) (models.Interest, error) {
	ctx, span := tracer.Start(ctx, "InterestService.Respond", trace.WithAttributes(
		attribute.String("interest.id", id),
		attribute.String("interest.decision", string(decision)),
	))
	defer span.End()

	interest, err := s.respond(ctx, id, actingUser, decision, message)
	s.finish(span, "respond", err)
	if err != nil {
		return models.Interest{}, err
	}

	action, kind := models.ActivityInterestAccepted, models.NotifyInterestAccepted
	if decision == models.InterestRejected {
		action, kind = models.ActivityInterestRejected, models.NotifyInterestRejected
	}
	s.record(ctx, action, actingUser, interest.FromUser, interest.ID)
	s.notify(ctx, models.Notification{
		Type:        kind,
		RecipientID: interest.FromUser,
		ActorID:     actingUser,
		InterestID:  interest.ID,
	})
	return interest, nil
}

func (s *InterestService) respond(ctx context.Context, id, actingUser string, decision models.InterestStatus, message *string) (models.Interest, error) {
	if decision != models.InterestAccepted && decision != models.InterestRejected {
		return models.Interest{}, models.NewInputError("status", "must be accepted or rejected")
	}
	if message != nil {
		if err := validateMessage(*message); err != nil {
			return models.Interest{}, err
		}
	}

	current, err := s.interests.Get(ctx, id)
	if err != nil {
		return models.Interest{}, err
	}
	if current.ToUser != actingUser {
		return models.Interest{}, models.ErrNotAuthorized
	}
	if current.Status != models.InterestPending {
		return models.Interest{}, models.ErrInvalidTransition
	}
	return s.interests.Respond(ctx, id, decision, message, s.Now())
}

// Withdraw retracts a pending interest on behalf of its sender.
func (s *InterestService) Withdraw(ctx context.Context, id, actingUser string) (models.Interest, error) {
	ctx, span := tracer.Start(ctx, "InterestService.Withdraw", trace.WithAttributes(attribute.String("interest.id", id)))
	defer span.End()

	interest, err := s.withdraw(ctx, id, actingUser)
	s.finish(span, "withdraw", err)
	if err != nil {
		return models.Interest{}, err
	}
	s.record(ctx, models.ActivityInterestWithdrawn, actingUser, interest.ToUser, interest.ID)
	return interest, nil
}

func (s *InterestService) withdraw(ctx context.Context, id, actingUser string) (models.Interest, error) {
	current, err := s.interests.Get(ctx, id)
	if err != nil {
		return models.Interest{}, err
	}
	if current.FromUser != actingUser {
		return models.Interest{}, models.ErrNotAuthorized
	}
	if current.Status != models.InterestPending {
		return models.Interest{}, models.ErrInvalidTransition
	}
	return s.interests.Withdraw(ctx, id, s.Now())
}

// MarkRead flags a received interest as read. Repeating it is harmless.
func (s *InterestService) MarkRead(ctx context.Context, id, actingUser string) (models.Interest, error) {
	ctx, span := tracer.Start(ctx, "InterestService.MarkRead", trace.WithAttributes(attribute.String("interest.id", id)))
	defer span.End()

	current, err := s.interests.Get(ctx, id)
	if err == nil && current.ToUser != actingUser {
		err = models.ErrNotAuthorized
	}
	if err != nil {
		s.finish(span, "read", err)
		return models.Interest{}, err
	}
	if current.IsRead {
		s.finish(span, "read", nil)
		return current, nil
	}

	interest, err := s.interests.MarkRead(ctx, id, s.Now())
	s.finish(span, "read", err)
	if err != nil {
		return models.Interest{}, err
	}
	s.record(ctx, models.ActivityInterestRead, actingUser, interest.FromUser, interest.ID)
	return interest, nil
}

// ListReceived returns interests addressed to userID, newest first.
func (s *InterestService) ListReceived(ctx context.Context, userID string, filter models.InterestFilter) ([]InterestView, error) {
	ctx, span := tracer.Start(ctx, "InterestService.ListReceived")
	defer span.End()

	interests, err := s.interests.ListReceived(ctx, userID, filter.Status)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	return s.views(ctx, userID, interests, filter)
}

// ListSent returns interests sent by userID, newest first.
func (s *InterestService) ListSent(ctx context.Context, userID string, filter models.InterestFilter) ([]InterestView, error) {
	ctx, span := tracer.Start(ctx, "InterestService.ListSent")
	defer span.End()

	interests, err := s.interests.ListSent(ctx, userID, filter.Status)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	return s.views(ctx, userID, interests, filter)
}

// Stats summarises userID's interest records as stored. Unlike the listings it
// does not consult counterpart profiles, so an interest whose counterpart has
// no profile or has blocked userID is counted here but missing from
// ListReceived and ListSent.
func (s *InterestService) Stats(ctx context.Context, userID string) (models.InterestStats, error) {
	return s.interests.Stats(ctx, userID)
}

// views attaches the redacted counterpart profile to each interest. Entries
// whose counterpart has no profile or has blocked the viewer are left out.
func (s *InterestService) views(ctx context.Context, viewerID string, interests []models.Interest, filter models.InterestFilter) ([]InterestView, error) {
	now := s.Now()
	kept := make([]models.Interest, 0, len(interests))
	ids := make([]string, 0, len(interests))
	seen := make(map[string]struct{}, len(interests))
	for _, in := range interests {
		if filter.Actionable && !in.Actionable(now) {
			continue
		}
		kept = append(kept, in)
		other := in.Counterpart(viewerID)
		if _, ok := seen[other]; !ok {
			seen[other] = struct{}{}
			ids = append(ids, other)
		}
	}

	profiles, err := s.profiles.GetProfiles(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load counterpart profiles: %w", err)
	}

	out := make([]InterestView, 0, len(kept))
	for _, in := range kept {
		p, ok := profiles[in.Counterpart(viewerID)]
		if !ok {
			continue
		}
		redacted, err := privacy.Apply(p, privacy.Viewer{
			ID:        viewerID,
			Path:      privacy.PathRelationship,
			Connected: in.Status == models.InterestAccepted,
		})
		if err != nil {
			continue
		}
		out = append(out, InterestView{Interest: in, IsExpired: in.Expired(now), Profile: redacted})
	}
	return out, nil
}

func (s *InterestService) record(ctx context.Context, action, actor, target, interestID string) {
	if s.activity == nil {
		return
	}
	s.activity.Record(ctx, models.Activity{
		Action:     action,
		ActorID:    actor,
		TargetID:   target,
		InterestID: interestID,
		OccurredAt: s.Now(),
	})
}

func (s *InterestService) notify(ctx context.Context, n models.Notification) {
	n.CreatedAt = s.Now()
	if err := s.notifier.Notify(ctx, n); err != nil {
		observability.IncBestEffortFailure("notification")
		log.Warn().Err(err).
			Str("type", string(n.Type)).
			Str("recipient_id", n.RecipientID).
			Str("interest_id", n.InterestID).
			Msg("notification dispatch failed")
	}
}

func (s *InterestService) finish(span trace.Span, action string, err error) {
	outcome := Outcome(err)
	observability.ObserveInterest(action, outcome)
	if outcome == "error" {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.SetAttributes(attribute.String("interest.outcome", outcome))
}

// Outcome classifies an interest operation result for metrics.
func Outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, models.ErrInvalidInput):
		return "invalid_input"
	case errors.Is(err, models.ErrTargetNotEligible):
		return "not_eligible"
	case errors.Is(err, models.ErrDuplicateRelationship):
		return "duplicate"
	case errors.Is(err, models.ErrNotAuthorized):
		return "not_authorized"
	case errors.Is(err, models.ErrInvalidTransition):
		return "invalid_transition"
	case errors.Is(err, models.ErrInterestNotFound):
		return "not_found"
	default:
		return "error"
	}
}

func validateMessage(message string) error {
	if utf8.RuneCountInString(message) > models.MaxInterestMessageLength {
		return models.NewInputError("message", fmt.Sprintf("must be at most %d characters", models.MaxInterestMessageLength))
	}
	return nil
}
