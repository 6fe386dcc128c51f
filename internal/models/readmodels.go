// Package models содержит модели чтения для ответов API.
// Модели чтения собираются явными функциями из уже загруженного графа
// сущностей: сущности хранилища не несут презентационной логики.
package models

import "time"

// CourseListItem — элемент списка курсов с количеством уроков.
type CourseListItem struct {
	ID             int     `json:"id"`
	Title          string  `json:"title"`
	Description    *string `json:"description"`
	Author         *string `json:"author"`
	LessonQuantity int     `json:"lesson_quantity"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// LessonDetail — развёрнутое представление урока: вместо идентификаторов
// автора и курса подставляются email автора и название курса.
type LessonDetail struct {
	Title       string  `json:"title"`
	Description *string `json:"description"`
	Author      *string `json:"author"`
	Link        *string `json:"link"`
	Course      *string `json:"course"`
}

// LessonListItem — элемент списка уроков.
type LessonListItem struct {
	ID          int     `json:"id"`
	Title       string  `json:"title"`
	Description *string `json:"description"`
	Link        *string `json:"link"`
	Course      *int    `json:"course"`
	Author      *string `json:"author"`
}

// CourseDetail — развёрнутое представление курса со списком уроков
// и признаком подписки текущего пользователя.
type CourseDetail struct {
	ID           int            `json:"id"`
	Title        string         `json:"title"`
	Description  *string        `json:"description"`
	Author       *string        `json:"author"`
	IsSubscribed bool           `json:"is_subscribed"`
	UpdatedAt    time.Time      `json:"updated_at"`
	Lessons      []LessonDetail `json:"lessons_list"`
}

// PaymentInfo — представление записи журнала платежей: вместо
// идентификаторов курса/урока подставляется название оплаченного объекта.
type PaymentInfo struct {
	ID          int       `json:"id"`
	PaidBy      string    `json:"paid_by"`
	PaymentDate time.Time `json:"payment_date"`
	PaidFor     *string   `json:"paid_for"`
	Amount      int       `json:"amount"`
	Way         string    `json:"payment_way"`
}

// AssembleLessonDetail собирает модель чтения урока из загруженных сущностей.
// authorEmail и courseTitle могут быть nil, если соответствующая связь отсутствует.
func AssembleLessonDetail(lesson *Lesson, authorEmail, courseTitle *string) LessonDetail {
	return LessonDetail{
		Title:       lesson.Title,
		Description: lesson.Description,
		Author:      authorEmail,
		Link:        lesson.Link,
		Course:      courseTitle,
	}
}

// AssembleLessonListItem собирает элемент списка уроков.
func AssembleLessonListItem(lesson *Lesson) LessonListItem {
	return LessonListItem{
		ID:          lesson.ID,
		Title:       lesson.Title,
		Description: lesson.Description,
		Link:        lesson.Link,
		Course:      lesson.CourseID,
		Author:      lesson.AuthorUID,
	}
}

// AssembleCourseDetail собирает развёрнутую модель курса из курса,
// email автора, уроков курса и признака подписки запрашивающего.
func AssembleCourseDetail(course *Course, authorEmail *string, lessons []LessonDetail, isSubscribed bool) CourseDetail {
	if lessons == nil {
		lessons = []LessonDetail{}
	}
	return CourseDetail{
		ID:           course.ID,
		Title:        course.Title,
		Description:  course.Description,
		Author:       authorEmail,
		IsSubscribed: isSubscribed,
		UpdatedAt:    course.UpdatedAt,
		Lessons:      lessons,
	}
}

// AssemblePaymentInfo собирает представление записи журнала платежей.
// paidFor — название оплаченного курса либо урока.
func AssemblePaymentInfo(payment *Payment, payerEmail string, paidFor *string) PaymentInfo {
	return PaymentInfo{
		ID:          payment.ID,
		PaidBy:      payerEmail,
		PaymentDate: payment.PaymentDate,
		PaidFor:     paidFor,
		Amount:      payment.Amount,
		Way:         payment.Way,
	}
}
