package notify

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"matrimony-service/internal/models"
)

type recordingNotifier struct {
	got []models.Notification
	err error
}

func (r *recordingNotifier) Notify(_ context.Context, n models.Notification) error {
	r.got = append(r.got, n)
	return r.err
}

func TestMultiDeliversToAll(t *testing.T) {
	first := &recordingNotifier{err: assert.AnError}
	second := &recordingNotifier{}
	n := models.Notification{Type: models.NotifyInterestReceived, RecipientID: "bob"}

	err := Multi{first, nil, second}.Notify(context.Background(), n)

	require.ErrorIs(t, err, assert.AnError)
	assert.Equal(t, []models.Notification{n}, first.got)
	assert.Equal(t, []models.Notification{n}, second.got)
}

func TestMultiNoErrors(t *testing.T) {
	assert.NoError(t, Multi{Noop{}, &recordingNotifier{}}.Notify(context.Background(), models.Notification{}))
}

func TestSubject(t *testing.T) {
	assert.Equal(t, "notifications.interest_accepted", Subject(models.Notification{Type: models.NotifyInterestAccepted}))
}

func TestNewNATSNotifierDisabled(t *testing.T) {
	n, closeFn, err := NewNATSNotifier("", "test")
	require.NoError(t, err)
	assert.IsType(t, Noop{}, n)
	closeFn()
}
