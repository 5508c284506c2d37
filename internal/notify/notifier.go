// Package notify delivers interest notifications to their recipients.
package notify

import (
	"context"
	"errors"

	"matrimony-service/internal/models"
)

// Notifier delivers a notification to its recipient.
type Notifier interface {
	Notify(ctx context.Context, n models.Notification) error
}

// Multi fans a notification out to every notifier and joins their errors.
type Multi []Notifier

func (m Multi) Notify(ctx context.Context, n models.Notification) error {
	var errs []error
	for _, notifier := range m {
		if notifier == nil {
			continue
		}
		if err := notifier.Notify(ctx, n); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Noop drops notifications.
type Noop struct{}

func (Noop) Notify(context.Context, models.Notification) error { return nil }
