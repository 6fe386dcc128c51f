package storage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ovsyanik/course-marketplace/internal/models"
)

func TestCreateSubscription_Idempotent(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	ctx := context.Background()
	factory := NewTestDataFactory(storage)

	authorUID := factory.CreateUser(t, "author@example.com", false)
	userUID := factory.CreateUser(t, "student@example.com", false)
	courseID := factory.CreateCourse(t, "Go с нуля", authorUID, time.Now())

	inserted, err := storage.CreateSubscription(ctx, userUID, courseID)
	require.NoError(t, err)
	assert.Equal(t, 1, inserted)

	// Повторная подписка упирается в уникальный индекс и ничего не пишет
	inserted, err = storage.CreateSubscription(ctx, userUID, courseID)
	require.NoError(t, err)
	assert.Equal(t, 0, inserted)

	count, err := storage.CountSubscriptions(ctx, userUID, courseID)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	exists, err := storage.FindSubscription(ctx, userUID, courseID)
	require.NoError(t, err)
	assert.True(t, exists)

	removed, err := storage.RemoveSubscription(ctx, userUID, courseID)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	removed, err = storage.RemoveSubscription(ctx, userUID, courseID)
	require.NoError(t, err)
	assert.Equal(t, 0, removed)

	exists, err = storage.FindSubscription(ctx, userUID, courseID)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestListSubscribers_ReturnsEmails(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	ctx := context.Background()
	factory := NewTestDataFactory(storage)

	authorUID := factory.CreateUser(t, "author@example.com", false)
	firstUID := factory.CreateUser(t, "first@example.com", false)
	secondUID := factory.CreateUser(t, "second@example.com", false)
	courseID := factory.CreateCourse(t, "Go с нуля", authorUID, time.Now())
	otherCourseID := factory.CreateCourse(t, "Другой курс", authorUID, time.Now())

	_, err := storage.CreateSubscription(ctx, firstUID, courseID)
	require.NoError(t, err)
	_, err = storage.CreateSubscription(ctx, secondUID, courseID)
	require.NoError(t, err)
	_, err = storage.CreateSubscription(ctx, firstUID, otherCourseID)
	require.NoError(t, err)

	subs, err := storage.ListSubscribers(ctx, courseID)
	require.NoError(t, err)
	require.Len(t, subs, 2)
	assert.Equal(t, "first@example.com", subs[0].UserEmail)
	assert.Equal(t, "second@example.com", subs[1].UserEmail)
}

func TestUpdateLessonWithCourseRefresh(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	ctx := context.Background()
	factory := NewTestDataFactory(storage)

	authorUID := factory.CreateUser(t, "author@example.com", false)
	staleUpdatedAt := time.Now().Add(-6 * time.Hour).UTC().Truncate(time.Second)
	courseID := factory.CreateCourse(t, "Go с нуля", authorUID, staleUpdatedAt)
	lessonID := factory.CreateLesson(t, "Старое название", courseID, authorUID)

	previous, err := storage.UpdateLessonWithCourseRefresh(ctx, models.Lesson{
		Title:    "Новое название",
		CourseID: &courseID,
	}, lessonID, courseID)
	require.NoError(t, err)

	// Возвращается updated_at курса до обновления
	assert.WithinDuration(t, staleUpdatedAt, previous, time.Second)

	course, err := storage.ReadCourse(ctx, courseID)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now(), course.UpdatedAt, time.Minute)

	lesson, err := storage.ReadLesson(ctx, lessonID)
	require.NoError(t, err)
	assert.Equal(t, "Новое название", lesson.Title)
	require.NotNil(t, lesson.CourseID)
	assert.Equal(t, courseID, *lesson.CourseID)
}

func TestUpdateLessonWithCourseRefresh_CourseNotFound(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	ctx := context.Background()
	factory := NewTestDataFactory(storage)

	authorUID := factory.CreateUser(t, "author@example.com", false)
	courseID := factory.CreateCourse(t, "Go с нуля", authorUID, time.Now())
	lessonID := factory.CreateLesson(t, "Урок", courseID, authorUID)

	missing := courseID + 100
	_, err := storage.UpdateLessonWithCourseRefresh(ctx, models.Lesson{
		Title:    "Урок",
		CourseID: &missing,
	}, lessonID, missing)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestListStaleActiveUsers(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	ctx := context.Background()
	factory := NewTestDataFactory(storage)

	staleUID := factory.CreateUserWithLastLogin(t, "stale@example.com", time.Now().Add(-40*24*time.Hour))
	factory.CreateUserWithLastLogin(t, "fresh@example.com", time.Now().Add(-time.Hour))
	// Пользователь без единого входа не считается неактивным
	factory.CreateUser(t, "never@example.com", false)

	cutoff := time.Now().Add(-30 * 24 * time.Hour)
	stale, err := storage.ListStaleActiveUsers(ctx, cutoff)
	require.NoError(t, err)
	require.Len(t, stale, 1)
	assert.Equal(t, staleUID, stale[0].UID)

	require.NoError(t, storage.DeactivateUser(ctx, staleUID))

	// Деактивированный пользователь выпадает из выборки
	stale, err = storage.ListStaleActiveUsers(ctx, cutoff)
	require.NoError(t, err)
	assert.Empty(t, stale)

	user, err := storage.GetUserByUID(ctx, staleUID)
	require.NoError(t, err)
	assert.False(t, user.IsActive)
}

func TestCourseLifecycle(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	ctx := context.Background()
	factory := NewTestDataFactory(storage)

	authorUID := factory.CreateUser(t, "author@example.com", false)
	description := "описание"

	id, err := storage.CreateCourse(ctx, models.Course{
		Title:       "Go с нуля",
		Description: &description,
		AuthorUID:   &authorUID,
	})
	require.NoError(t, err)

	course, err := storage.ReadCourse(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Go с нуля", course.Title)
	require.NotNil(t, course.Description)
	assert.Equal(t, description, *course.Description)
	require.NotNil(t, course.AuthorUID)
	assert.Equal(t, authorUID, *course.AuthorUID)

	updated, err := storage.UpdateCourse(ctx, models.Course{
		Title:     "Go с нуля 2.0",
		AuthorUID: &authorUID,
	}, id)
	require.NoError(t, err)
	assert.Equal(t, 1, updated)

	course, err = storage.ReadCourse(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Go с нуля 2.0", course.Title)

	removed, err := storage.RemoveCourse(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	_, err = storage.ReadCourse(ctx, id)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestListPayments_Filters(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	ctx := context.Background()
	factory := NewTestDataFactory(storage)

	authorUID := factory.CreateUser(t, "author@example.com", false)
	payerUID := factory.CreateUser(t, "payer@example.com", false)
	courseID := factory.CreateCourse(t, "Go с нуля", authorUID, time.Now())
	lessonID := factory.CreateLesson(t, "Урок", courseID, authorUID)

	_, err := storage.CreatePayment(ctx, models.Payment{
		PayerUID: payerUID,
		CourseID: &courseID,
		Amount:   2000,
		Way:      models.PayWayTransaction,
	})
	require.NoError(t, err)
	_, err = storage.CreatePayment(ctx, models.Payment{
		PayerUID: payerUID,
		LessonID: &lessonID,
		Amount:   500,
		Way:      models.PayWayCash,
	})
	require.NoError(t, err)

	// Свежие записи первыми по умолчанию
	all, err := storage.ListPayments(ctx, models.FilterPayments{Limit: 20})
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, 500, all[0].Amount)

	oldest, err := storage.ListPayments(ctx, models.FilterPayments{OldestFirst: true, Limit: 20})
	require.NoError(t, err)
	require.Len(t, oldest, 2)
	assert.Equal(t, 2000, oldest[0].Amount)

	way := models.PayWayCash
	cashOnly, err := storage.ListPayments(ctx, models.FilterPayments{Way: &way, Limit: 20})
	require.NoError(t, err)
	require.Len(t, cashOnly, 1)
	assert.Equal(t, models.PayWayCash, cashOnly[0].Way)
	assert.Equal(t, 500, cashOnly[0].Amount)

	byCourse, err := storage.ListPayments(ctx, models.FilterPayments{CourseID: &courseID, Limit: 20})
	require.NoError(t, err)
	require.Len(t, byCourse, 1)
	assert.Equal(t, 2000, byCourse[0].Amount)
	assert.Equal(t, "payer@example.com", byCourse[0].PayerEmail)

	count, err := storage.CountPaymentsByPayer(ctx, payerUID)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}
