package lesson

import (
	"context"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/ovsyanik/course-marketplace/internal/authz"
	"github.com/ovsyanik/course-marketplace/internal/models"
)

type RepoMock struct{ mock.Mock }

func (m *RepoMock) CreateLesson(ctx context.Context, lesson models.Lesson) (int, error) {
	args := m.Called(ctx, lesson)
	return args.Int(0), args.Error(1)
}

func (m *RepoMock) ReadLesson(ctx context.Context, id int) (*models.Lesson, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Lesson), args.Error(1)
}

func (m *RepoMock) UpdateLesson(ctx context.Context, req models.Lesson, id int) (int, error) {
	args := m.Called(ctx, req, id)
	return args.Int(0), args.Error(1)
}

func (m *RepoMock) UpdateLessonWithCourseRefresh(ctx context.Context, req models.Lesson, id, courseID int) (time.Time, error) {
	args := m.Called(ctx, req, id, courseID)
	return args.Get(0).(time.Time), args.Error(1)
}

func (m *RepoMock) RemoveLesson(ctx context.Context, id int) (int, error) {
	args := m.Called(ctx, id)
	return args.Int(0), args.Error(1)
}

func (m *RepoMock) ListLessons(ctx context.Context, limit, offset int) ([]*models.Lesson, error) {
	args := m.Called(ctx, limit, offset)
	return args.Get(0).([]*models.Lesson), args.Error(1)
}

func (m *RepoMock) ListLessonsByAuthor(ctx context.Context, authorUID string, limit, offset int) ([]*models.Lesson, error) {
	args := m.Called(ctx, authorUID, limit, offset)
	return args.Get(0).([]*models.Lesson), args.Error(1)
}

func (m *RepoMock) ReadCourse(ctx context.Context, id int) (*models.Course, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Course), args.Error(1)
}

type NotifierMock struct{ mock.Mock }

func (m *NotifierMock) MaybeNotify(ctx context.Context, course *models.Course, previousUpdatedAt time.Time) (int, error) {
	args := m.Called(ctx, course, previousUpdatedAt)
	return args.Int(0), args.Error(1)
}

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }

func TestValidateLink(t *testing.T) {
	cases := []struct {
		name string
		link *string
		ok   bool
	}{
		{name: "nil link", link: nil, ok: true},
		{name: "empty link", link: strPtr(""), ok: true},
		{name: "youtube", link: strPtr("https://youtube.com/watch?v=abc"), ok: true},
		{name: "www subdomain", link: strPtr("https://www.youtube.com/watch?v=abc"), ok: true},
		{name: "scheme-less link", link: strPtr("www.youtube.com/watch?v=abc"), ok: true},
		{name: "uppercase host", link: strPtr("https://WWW.YOUTUBE.COM/watch?v=abc"), ok: true},
		{name: "foreign host", link: strPtr("https://rutube.ru/video/abc"), ok: false},
		{name: "vimeo", link: strPtr("https://vimeo.com/1"), ok: false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateLink(tc.link)
			if tc.ok {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrLinkNotAllowed)
			}
		})
	}
}

func TestCreate_RejectsForeignLink(t *testing.T) {
	repo := new(RepoMock)
	service := New(repo, new(NotifierMock), newTestLogger())

	_, err := service.Create(context.Background(),
		models.DummyLesson{Title: "Урок", Link: strPtr("https://vimeo.com/1")},
		"uid-1", authz.RoleUser)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrLinkNotAllowed)
	repo.AssertNotCalled(t, "CreateLesson", mock.Anything, mock.Anything)
}

func TestCreate_ModeratorForbidden(t *testing.T) {
	repo := new(RepoMock)
	service := New(repo, new(NotifierMock), newTestLogger())

	_, err := service.Create(context.Background(), models.DummyLesson{Title: "Урок"}, "uid-mod", authz.RoleModerator)
	require.Error(t, err)
	assert.ErrorIs(t, err, authz.ErrForbidden)
}

func TestUpdate_OrphanLessonSkipsNotifications(t *testing.T) {
	repo := new(RepoMock)
	repo.On("ReadLesson", mock.Anything, 1).
		Return(&models.Lesson{ID: 1, Title: "Урок", AuthorUID: strPtr("uid-1")}, nil)
	repo.On("UpdateLesson", mock.Anything, mock.Anything, 1).Return(1, nil)

	notifier := new(NotifierMock)

	service := New(repo, notifier, newTestLogger())

	err := service.Update(context.Background(), 1, models.DummyLesson{Title: "Урок"}, "uid-1", authz.RoleUser)
	require.NoError(t, err)
	notifier.AssertNotCalled(t, "MaybeNotify", mock.Anything, mock.Anything, mock.Anything)
	repo.AssertNotCalled(t, "UpdateLessonWithCourseRefresh", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestUpdate_BoundLessonRefreshesCourseAndNotifies(t *testing.T) {
	previous := time.Now().Add(-6 * time.Hour)

	repo := new(RepoMock)
	repo.On("ReadLesson", mock.Anything, 1).
		Return(&models.Lesson{ID: 1, Title: "Урок", AuthorUID: strPtr("uid-1"), CourseID: intPtr(5)}, nil)
	repo.On("UpdateLessonWithCourseRefresh", mock.Anything, mock.Anything, 1, 5).Return(previous, nil)
	repo.On("ReadCourse", mock.Anything, 5).
		Return(&models.Course{ID: 5, Title: "Go"}, nil)

	notifier := new(NotifierMock)
	notifier.On("MaybeNotify", mock.Anything, mock.MatchedBy(func(c *models.Course) bool {
		return c.ID == 5
	}), previous).Return(2, nil)

	service := New(repo, notifier, newTestLogger())

	err := service.Update(context.Background(), 1,
		models.DummyLesson{Title: "Урок", CourseID: intPtr(5)}, "uid-1", authz.RoleUser)
	require.NoError(t, err)
	notifier.AssertExpectations(t)
}

func TestUpdate_DetachRefreshesFormerCourse(t *testing.T) {
	previous := time.Now().Add(-6 * time.Hour)

	repo := new(RepoMock)
	repo.On("ReadLesson", mock.Anything, 1).
		Return(&models.Lesson{ID: 1, Title: "Урок", AuthorUID: strPtr("uid-1"), CourseID: intPtr(5)}, nil)
	repo.On("UpdateLessonWithCourseRefresh", mock.Anything, mock.MatchedBy(func(l models.Lesson) bool {
		return l.CourseID == nil
	}), 1, 5).Return(previous, nil)
	repo.On("ReadCourse", mock.Anything, 5).
		Return(&models.Course{ID: 5, Title: "Go"}, nil)

	notifier := new(NotifierMock)
	notifier.On("MaybeNotify", mock.Anything, mock.MatchedBy(func(c *models.Course) bool {
		return c.ID == 5
	}), previous).Return(1, nil)

	service := New(repo, notifier, newTestLogger())

	// Отвязка урока: прежний курс обновляется и может уведомить подписчиков
	err := service.Update(context.Background(), 1,
		models.DummyLesson{Title: "Урок"}, "uid-1", authz.RoleUser)
	require.NoError(t, err)
	notifier.AssertExpectations(t)
	repo.AssertNotCalled(t, "UpdateLesson", mock.Anything, mock.Anything, mock.Anything)
}

func TestUpdate_MoveNotifiesFormerCourse(t *testing.T) {
	previous := time.Now().Add(-6 * time.Hour)

	repo := new(RepoMock)
	repo.On("ReadLesson", mock.Anything, 1).
		Return(&models.Lesson{ID: 1, Title: "Урок", AuthorUID: strPtr("uid-1"), CourseID: intPtr(5)}, nil)
	repo.On("UpdateLessonWithCourseRefresh", mock.Anything, mock.MatchedBy(func(l models.Lesson) bool {
		return l.CourseID != nil && *l.CourseID == 9
	}), 1, 5).Return(previous, nil)
	repo.On("ReadCourse", mock.Anything, 5).
		Return(&models.Course{ID: 5, Title: "Go"}, nil)

	notifier := new(NotifierMock)
	notifier.On("MaybeNotify", mock.Anything, mock.MatchedBy(func(c *models.Course) bool {
		return c.ID == 5
	}), previous).Return(1, nil)

	service := New(repo, notifier, newTestLogger())

	// Перенос урока в другой курс: уведомляется курс, из которого урок ушёл
	err := service.Update(context.Background(), 1,
		models.DummyLesson{Title: "Урок", CourseID: intPtr(9)}, "uid-1", authz.RoleUser)
	require.NoError(t, err)
	notifier.AssertExpectations(t)
	repo.AssertNotCalled(t, "ReadCourse", mock.Anything, 9)
}

func TestUpdate_StrangerForbidden(t *testing.T) {
	repo := new(RepoMock)
	repo.On("ReadLesson", mock.Anything, 1).
		Return(&models.Lesson{ID: 1, Title: "Урок", AuthorUID: strPtr("uid-1")}, nil)

	service := New(repo, new(NotifierMock), newTestLogger())

	err := service.Update(context.Background(), 1, models.DummyLesson{Title: "Урок"}, "uid-2", authz.RoleUser)
	require.Error(t, err)
	assert.ErrorIs(t, err, authz.ErrForbidden)
}

func TestList_RoleScoping(t *testing.T) {
	repo := new(RepoMock)
	repo.On("ListLessonsByAuthor", mock.Anything, "uid-1", 20, 0).
		Return([]*models.Lesson{{ID: 1, Title: "Урок"}}, nil)

	service := New(repo, new(NotifierMock), newTestLogger())

	items, err := service.List(context.Background(), "uid-1", authz.RoleUser, 20, 0)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Урок", items[0].Title)
	repo.AssertNotCalled(t, "ListLessons", mock.Anything, mock.Anything, mock.Anything)
}

func TestRemove_Owner(t *testing.T) {
	repo := new(RepoMock)
	repo.On("ReadLesson", mock.Anything, 1).
		Return(&models.Lesson{ID: 1, Title: "Урок", AuthorUID: strPtr("uid-1")}, nil)
	repo.On("RemoveLesson", mock.Anything, 1).Return(1, nil)

	service := New(repo, new(NotifierMock), newTestLogger())

	err := service.Remove(context.Background(), 1, "uid-1", authz.RoleUser)
	require.NoError(t, err)
}
