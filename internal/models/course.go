// Package models содержит доменные структуры каталога курсов,
// а также вспомогательные типы для работы с данными из внешних источников (например, JSON-запросы).
package models

import "time"

// Course представляет учебный курс каталога.
// Поля Preview, Description и AuthorUID могут быть nil — это допустимо
// для курса без превью, описания или автора (автор удалён).
type Course struct {
	ID          int        // Идентификатор курса
	Title       string     // Название курса
	Preview     *string    // Ссылка на превью-изображение
	Description *string    // Описание курса
	AuthorUID   *string    // UID автора курса
	UpdatedAt   time.Time  // Время последнего обновления материалов
}

// Lesson представляет урок, входящий (или не входящий) в состав курса.
// CourseID может быть nil — урок без привязки к курсу допустим.
type Lesson struct {
	ID          int     // Идентификатор урока
	Title       string  // Название урока
	Preview     *string // Ссылка на превью-изображение
	Description *string // Описание урока
	Link        *string // Ссылка на видео (только youtube.com)
	CourseID    *int    // Идентификатор родительского курса
	AuthorUID   *string // UID автора урока
}

// Subscription представляет подписку пользователя на обновления курса.
// Чисто связующая сущность: на пару (пользователь, курс) существует
// не более одной записи, уникальность гарантирует индекс в базе.
type Subscription struct {
	ID        int    // Идентификатор записи
	UserUID   string // UID подписанного пользователя
	CourseID  int    // Идентификатор курса
	UserEmail string // Email подписчика (заполняется при выборке для рассылки)
}

// DummyCourse используется для приёма данных курса из JSON-запроса.
type DummyCourse struct {
	Title       string  `json:"title" validate:"required"` // Название курса
	Preview     *string `json:"preview"`                   // Ссылка на превью
	Description *string `json:"description"`               // Описание
}

// DummyLesson используется для приёма данных урока из JSON-запроса.
// Link проверяется отдельным доменным валидатором, не тегом.
type DummyLesson struct {
	Title       string  `json:"title" validate:"required"` // Название урока
	Preview     *string `json:"preview"`                   // Ссылка на превью
	Description *string `json:"description"`               // Описание
	Link        *string `json:"link"`                      // Ссылка на видео
	CourseID    *int    `json:"course"`                    // Родительский курс
}

// DummySubscribe используется для приёма флага подписки из JSON-запроса.
// Указатель нужен, чтобы отличать пропущенное поле от явного false.
type DummySubscribe struct {
	Subscribe *bool `json:"subscribe" validate:"required"` // true — подписаться, false — отписаться
}
