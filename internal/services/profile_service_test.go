package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"matrimony-service/internal/mocks"
	"matrimony-service/internal/models"
	"matrimony-service/internal/privacy"
)

func newTestProfileService() (*ProfileService, *mocks.ProfileRepositoryMock, *mocks.InterestRepositoryMock) {
	profiles := new(mocks.ProfileRepositoryMock)
	interests := new(mocks.InterestRepositoryMock)
	return NewProfileService(profiles, interests), profiles, interests
}

func TestGetProfileOwnerSeesEverything(t *testing.T) {
	svc, profiles, interests := newTestProfileService()
	hide := false
	p := eligibleProfile("alice")
	p.Privacy.ShowContact = &hide
	p.Contact = models.Contact{Phone: "123"}
	profiles.On("GetProfile", mock.Anything, "alice").Return(p, nil).Once()

	got, err := svc.GetProfile(context.Background(), "alice", "alice")

	require.NoError(t, err)
	assert.True(t, got.IsOwner)
	require.NotNil(t, got.Contact)
	require.NotNil(t, got.Privacy)
	interests.AssertNotCalled(t, "HasAccepted", mock.Anything, mock.Anything, mock.Anything)
	profiles.AssertExpectations(t)
}

func TestGetProfileBlockedViewerIsDenied(t *testing.T) {
	svc, profiles, interests := newTestProfileService()
	p := eligibleProfile("alice")
	p.Privacy.BlockedUsers = []string{"bob"}
	profiles.On("GetProfile", mock.Anything, "alice").Return(p, nil).Once()
	interests.On("HasAccepted", mock.Anything, "bob", "alice").Return(true, nil).Once()

	_, err := svc.GetProfile(context.Background(), "bob", "alice")

	require.ErrorIs(t, err, privacy.ErrAccessDenied)
	profiles.AssertExpectations(t)
	interests.AssertExpectations(t)
}

func TestGetProfileHidden(t *testing.T) {
	p := eligibleProfile("alice")
	p.Privacy.IsHidden = true

	t.Run("stranger", func(t *testing.T) {
		svc, profiles, interests := newTestProfileService()
		profiles.On("GetProfile", mock.Anything, "alice").Return(p, nil).Once()
		interests.On("HasAccepted", mock.Anything, "bob", "alice").Return(false, nil).Once()

		_, err := svc.GetProfile(context.Background(), "bob", "alice")

		require.ErrorIs(t, err, privacy.ErrNotFound)
	})

	t.Run("match", func(t *testing.T) {
		svc, profiles, interests := newTestProfileService()
		profiles.On("GetProfile", mock.Anything, "alice").Return(p, nil).Once()
		interests.On("HasAccepted", mock.Anything, "bob", "alice").Return(true, nil).Once()

		got, err := svc.GetProfile(context.Background(), "bob", "alice")

		require.NoError(t, err)
		assert.Equal(t, "alice", got.UserID)
	})
}

func TestGetProfileMissing(t *testing.T) {
	svc, profiles, _ := newTestProfileService()
	profiles.On("GetProfile", mock.Anything, "ghost").Return(models.Profile{}, models.ErrProfileNotFound).Once()

	_, err := svc.GetProfile(context.Background(), "bob", "ghost")

	require.ErrorIs(t, err, models.ErrProfileNotFound)
}

func TestSearchFiltersThroughPrivacy(t *testing.T) {
	svc, profiles, interests := newTestProfileService()
	hidden := eligibleProfile("carol")
	hidden.Privacy.IsHidden = true
	blocking := eligibleProfile("dave")
	blocking.Privacy.BlockedUsers = []string{"bob"}
	matchOnly := eligibleProfile("erin")
	matchOnly.Privacy.WhoCanContact = models.ContactMatches
	matchOnly.Contact = models.Contact{Email: "erin@example.com"}
	hiddenMatch := eligibleProfile("fay")
	hiddenMatch.Privacy.IsHidden = true

	criteria := models.ProfileSearch{Gender: "female"}
	profiles.On("Search", mock.Anything, "bob", criteria.Normalize()).
		Return([]models.Profile{eligibleProfile("alice"), hidden, blocking, matchOnly, hiddenMatch}, nil).Once()
	interests.On("AcceptedCounterparts", mock.Anything, "bob").Return([]string{"fay"}, nil).Once()

	got, err := svc.Search(context.Background(), "bob", criteria)

	require.NoError(t, err)
	ids := make([]string, 0, len(got))
	for _, p := range got {
		ids = append(ids, p.UserID)
	}
	assert.Equal(t, []string{"alice", "erin", "fay"}, ids)
	assert.Nil(t, got[1].Contact)
	profiles.AssertExpectations(t)
	interests.AssertExpectations(t)
}

func TestSearchRejectsBadAgeRange(t *testing.T) {
	svc, profiles, _ := newTestProfileService()

	_, err := svc.Search(context.Background(), "bob", models.ProfileSearch{MinAge: 40, MaxAge: 30})

	require.ErrorIs(t, err, models.ErrInvalidInput)
	profiles.AssertNotCalled(t, "Search", mock.Anything, mock.Anything, mock.Anything)
}

func TestSearchRejectsPageBeyondLimit(t *testing.T) {
	svc, profiles, _ := newTestProfileService()

	_, err := svc.Search(context.Background(), "bob", models.ProfileSearch{Page: models.MaxSearchPage + 1})

	require.ErrorIs(t, err, models.ErrInvalidInput)
	profiles.AssertNotCalled(t, "Search", mock.Anything, mock.Anything, mock.Anything)
}
