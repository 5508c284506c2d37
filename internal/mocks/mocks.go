package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"matrimony-service/internal/models"
	"matrimony-service/internal/notify"
	"matrimony-service/internal/repositories"
)

type InterestRepositoryMock struct {
	mock.Mock
}

func (m *InterestRepositoryMock) Create(ctx context.Context, interest models.Interest) (models.Interest, error) {
	args := m.Called(ctx, interest)
	return interestArg(args, 0), args.Error(1)
}

func (m *InterestRepositoryMock) Get(ctx context.Context, id string) (models.Interest, error) {
	args := m.Called(ctx, id)
	return interestArg(args, 0), args.Error(1)
}

func (m *InterestRepositoryMock) Respond(ctx context.Context, id string, status models.InterestStatus, message *string, at time.Time) (models.Interest, error) {
	args := m.Called(ctx, id, status, message, at)
	return interestArg(args, 0), args.Error(1)
}

func (m *InterestRepositoryMock) Withdraw(ctx context.Context, id string, at time.Time) (models.Interest, error) {
	args := m.Called(ctx, id, at)
	return interestArg(args, 0), args.Error(1)
}

func (m *InterestRepositoryMock) MarkRead(ctx context.Context, id string, at time.Time) (models.Interest, error) {
	args := m.Called(ctx, id, at)
	return interestArg(args, 0), args.Error(1)
}

func (m *InterestRepositoryMock) ListReceived(ctx context.Context, userID string, status *models.InterestStatus) ([]models.Interest, error) {
	args := m.Called(ctx, userID, status)
	var list []models.Interest
	if val := args.Get(0); val != nil {
		list = val.([]models.Interest)
	}
	return list, args.Error(1)
}

func (m *InterestRepositoryMock) ListSent(ctx context.Context, userID string, status *models.InterestStatus) ([]models.Interest, error) {
	args := m.Called(ctx, userID, status)
	var list []models.Interest
	if val := args.Get(0); val != nil {
		list = val.([]models.Interest)
	}
	return list, args.Error(1)
}

func (m *InterestRepositoryMock) Stats(ctx context.Context, userID string) (models.InterestStats, error) {
	args := m.Called(ctx, userID)
	var stats models.InterestStats
	if val := args.Get(0); val != nil {
		stats = val.(models.InterestStats)
	}
	return stats, args.Error(1)
}

func (m *InterestRepositoryMock) HasAccepted(ctx context.Context, userA, userB string) (bool, error) {
	args := m.Called(ctx, userA, userB)
	return args.Bool(0), args.Error(1)
}

func (m *InterestRepositoryMock) AcceptedCounterparts(ctx context.Context, userID string) ([]string, error) {
	args := m.Called(ctx, userID)
	var ids []string
	if val := args.Get(0); val != nil {
		ids = val.([]string)
	}
	return ids, args.Error(1)
}

func interestArg(args mock.Arguments, i int) models.Interest {
	var interest models.Interest
	if val := args.Get(i); val != nil {
		interest = val.(models.Interest)
	}
	return interest
}

type ProfileRepositoryMock struct {
	mock.Mock
}

func (m *ProfileRepositoryMock) GetProfile(ctx context.Context, userID string) (models.Profile, error) {
	args := m.Called(ctx, userID)
	var p models.Profile
	if val := args.Get(0); val != nil {
		p = val.(models.Profile)
	}
	return p, args.Error(1)
}

func (m *ProfileRepositoryMock) GetProfiles(ctx context.Context, userIDs []string) (map[string]models.Profile, error) {
	args := m.Called(ctx, userIDs)
	var out map[string]models.Profile
	if val := args.Get(0); val != nil {
		out = val.(map[string]models.Profile)
	}
	return out, args.Error(1)
}

func (m *ProfileRepositoryMock) Search(ctx context.Context, viewerID string, criteria models.ProfileSearch) ([]models.Profile, error) {
	args := m.Called(ctx, viewerID, criteria)
	var list []models.Profile
	if val := args.Get(0); val != nil {
		list = val.([]models.Profile)
	}
	return list, args.Error(1)
}

type NotifierMock struct {
	mock.Mock
}

func (m *NotifierMock) Notify(ctx context.Context, n models.Notification) error {
	args := m.Called(ctx, n)
	return args.Error(0)
}

type ActivityRecorderMock struct {
	mock.Mock
}

func (m *ActivityRecorderMock) Record(ctx context.Context, activity models.Activity) {
	m.Called(ctx, activity)
}

var (
	_ repositories.InterestRepository = (*InterestRepositoryMock)(nil)
	_ repositories.ProfileRepository  = (*ProfileRepositoryMock)(nil)
	_ notify.Notifier                 = (*NotifierMock)(nil)
)
