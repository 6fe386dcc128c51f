package subscription

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/ovsyanik/course-marketplace/internal/models"
	"github.com/ovsyanik/course-marketplace/internal/storage"
)

type RepoMock struct{ mock.Mock }

func (m *RepoMock) ReadCourse(ctx context.Context, id int) (*models.Course, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Course), args.Error(1)
}

func (m *RepoMock) FindSubscription(ctx context.Context, userUID string, courseID int) (bool, error) {
	args := m.Called(ctx, userUID, courseID)
	return args.Bool(0), args.Error(1)
}

func (m *RepoMock) CreateSubscription(ctx context.Context, userUID string, courseID int) (int, error) {
	args := m.Called(ctx, userUID, courseID)
	return args.Int(0), args.Error(1)
}

func (m *RepoMock) RemoveSubscription(ctx context.Context, userUID string, courseID int) (int, error) {
	args := m.Called(ctx, userUID, courseID)
	return args.Int(0), args.Error(1)
}

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func TestToggle(t *testing.T) {
	tests := []struct {
		name      string
		subscribe bool
		setupMock func(*RepoMock)
		want      Outcome
		wantErr   bool
	}{
		{
			name:      "подписка оформлена",
			subscribe: true,
			setupMock: func(m *RepoMock) {
				m.On("ReadCourse", mock.Anything, 7).Return(&models.Course{ID: 7}, nil)
				m.On("FindSubscription", mock.Anything, "uid-1", 7).Return(false, nil)
				m.On("CreateSubscription", mock.Anything, "uid-1", 7).Return(1, nil)
			},
			want: OutcomeCreated,
		},
		{
			name:      "повторная подписка не создает вторую запись",
			subscribe: true,
			setupMock: func(m *RepoMock) {
				m.On("ReadCourse", mock.Anything, 7).Return(&models.Course{ID: 7}, nil)
				m.On("FindSubscription", mock.Anything, "uid-1", 7).Return(true, nil)
			},
			want: OutcomeAlreadySubscribed,
		},
		{
			name:      "гонка на вставке разрешается индексом",
			subscribe: true,
			setupMock: func(m *RepoMock) {
				m.On("ReadCourse", mock.Anything, 7).Return(&models.Course{ID: 7}, nil)
				m.On("FindSubscription", mock.Anything, "uid-1", 7).Return(false, nil)
				m.On("CreateSubscription", mock.Anything, "uid-1", 7).Return(0, nil)
			},
			want: OutcomeAlreadySubscribed,
		},
		{
			name:      "подписка отменена",
			subscribe: false,
			setupMock: func(m *RepoMock) {
				m.On("ReadCourse", mock.Anything, 7).Return(&models.Course{ID: 7}, nil)
				m.On("FindSubscription", mock.Anything, "uid-1", 7).Return(true, nil)
				m.On("RemoveSubscription", mock.Anything, "uid-1", 7).Return(1, nil)
			},
			want: OutcomeRemoved,
		},
		{
			name:      "отмена без подписки",
			subscribe: false,
			setupMock: func(m *RepoMock) {
				m.On("ReadCourse", mock.Anything, 7).Return(&models.Course{ID: 7}, nil)
				m.On("FindSubscription", mock.Anything, "uid-1", 7).Return(false, nil)
			},
			want: OutcomeNotSubscribed,
		},
		{
			name:      "ошибка хранилища",
			subscribe: true,
			setupMock: func(m *RepoMock) {
				m.On("ReadCourse", mock.Anything, 7).Return(&models.Course{ID: 7}, nil)
				m.On("FindSubscription", mock.Anything, "uid-1", 7).Return(false, errors.New("db error"))
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(RepoMock)
			tt.setupMock(repo)
			service := New(repo, newTestLogger())

			got, err := service.Toggle(context.Background(), "uid-1", 7, tt.subscribe)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			repo.AssertExpectations(t)
		})
	}
}

func TestToggle_CourseNotFound(t *testing.T) {
	repo := new(RepoMock)
	repo.On("ReadCourse", mock.Anything, 404).Return(nil, storage.ErrNotFound)

	service := New(repo, newTestLogger())

	_, err := service.Toggle(context.Background(), "uid-1", 404, true)
	require.Error(t, err)
	assert.ErrorIs(t, err, storage.ErrNotFound)
	repo.AssertNotCalled(t, "FindSubscription", mock.Anything, mock.Anything, mock.Anything)
	repo.AssertNotCalled(t, "CreateSubscription", mock.Anything, mock.Anything, mock.Anything)
}

func TestToggle_SubscribeThenUnsubscribe(t *testing.T) {
	repo := new(RepoMock)
	repo.On("ReadCourse", mock.Anything, 7).Return(&models.Course{ID: 7}, nil)
	repo.On("FindSubscription", mock.Anything, "uid-1", 7).Return(false, nil).Once()
	repo.On("CreateSubscription", mock.Anything, "uid-1", 7).Return(1, nil).Once()
	repo.On("FindSubscription", mock.Anything, "uid-1", 7).Return(true, nil).Once()
	repo.On("RemoveSubscription", mock.Anything, "uid-1", 7).Return(1, nil).Once()

	service := New(repo, newTestLogger())

	first, err := service.Toggle(context.Background(), "uid-1", 7, true)
	require.NoError(t, err)
	assert.Equal(t, OutcomeCreated, first)

	second, err := service.Toggle(context.Background(), "uid-1", 7, false)
	require.NoError(t, err)
	assert.Equal(t, OutcomeRemoved, second)

	repo.AssertExpectations(t)
}
