package notify

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/ovsyanik/course-marketplace/internal/models"
)

type RepoMock struct{ mock.Mock }

func (m *RepoMock) ListSubscribers(ctx context.Context, courseID int) ([]*models.Subscription, error) {
	args := m.Called(ctx, courseID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Subscription), args.Error(1)
}

// PublisherRecorder запоминает опубликованные задания вместо отправки в брокер.
type PublisherRecorder struct {
	published []any
	failWith  error
}

func (p *PublisherRecorder) Publish(message any) error {
	if p.failWith != nil {
		return p.failWith
	}
	p.published = append(p.published, message)
	return nil
}

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func TestMaybeNotify_BoundaryNotReached(t *testing.T) {
	repo := new(RepoMock)
	recorder := &PublisherRecorder{}
	service := New(repo, recorder, newTestLogger())

	course := &models.Course{ID: 1, Title: "Go с нуля"}

	// ровно четыре часа — рассылки нет
	count, err := service.MaybeNotify(context.Background(), course, time.Now().Add(-4*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 0, count)
	assert.Empty(t, recorder.published)
	repo.AssertNotCalled(t, "ListSubscribers", mock.Anything, mock.Anything)
}

func TestMaybeNotify_BoundaryExceeded(t *testing.T) {
	repo := new(RepoMock)
	repo.On("ListSubscribers", mock.Anything, 1).Return([]*models.Subscription{
		{ID: 10, UserUID: "uid-1", CourseID: 1, UserEmail: "first@test.com"},
	}, nil)
	recorder := &PublisherRecorder{}
	service := New(repo, recorder, newTestLogger())

	course := &models.Course{ID: 1, Title: "Go с нуля"}

	// четыре часа и секунда — по одному заданию на подписчика
	count, err := service.MaybeNotify(context.Background(), course, time.Now().Add(-4*time.Hour-time.Second))
	require.NoError(t, err)
	assert.Equal(t, 1, count)
	require.Len(t, recorder.published, 1)
	assert.Equal(t, UpdateJob{Email: "first@test.com", CourseTitle: "Go с нуля"}, recorder.published[0])
}

func TestMaybeNotify_NoSubscribers(t *testing.T) {
	repo := new(RepoMock)
	repo.On("ListSubscribers", mock.Anything, 1).Return([]*models.Subscription{}, nil)
	recorder := &PublisherRecorder{}
	service := New(repo, recorder, newTestLogger())

	course := &models.Course{ID: 1, Title: "Go с нуля"}

	count, err := service.MaybeNotify(context.Background(), course, time.Now().Add(-5*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 0, count)
	assert.Empty(t, recorder.published)
}

func TestMaybeNotify_OneJobPerSubscriber(t *testing.T) {
	repo := new(RepoMock)
	repo.On("ListSubscribers", mock.Anything, 1).Return([]*models.Subscription{
		{ID: 10, UserUID: "uid-1", CourseID: 1, UserEmail: "first@test.com"},
		{ID: 11, UserUID: "uid-2", CourseID: 1, UserEmail: "second@test.com"},
		{ID: 12, UserUID: "uid-3", CourseID: 1, UserEmail: "third@test.com"},
	}, nil)
	recorder := &PublisherRecorder{}
	service := New(repo, recorder, newTestLogger())

	course := &models.Course{ID: 1, Title: "Go с нуля"}

	count, err := service.MaybeNotify(context.Background(), course, time.Now().Add(-26*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 3, count)
	assert.Len(t, recorder.published, 3)
}

func TestMaybeNotify_PublishFailureNotPropagated(t *testing.T) {
	repo := new(RepoMock)
	repo.On("ListSubscribers", mock.Anything, 1).Return([]*models.Subscription{
		{ID: 10, UserUID: "uid-1", CourseID: 1, UserEmail: "first@test.com"},
	}, nil)
	recorder := &PublisherRecorder{failWith: errors.New("broker is down")}
	service := New(repo, recorder, newTestLogger())

	course := &models.Course{ID: 1, Title: "Go с нуля"}

	count, err := service.MaybeNotify(context.Background(), course, time.Now().Add(-5*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}
