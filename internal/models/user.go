// Package models содержит доменную модель пользователя системы,
// включающую данные учётной записи, хэш пароля и признак модератора.
// Структура используется в бизнес‑логике и при работе с хранилищем.
package models

import "time"

// User представляет зарегистрированного пользователя системы.
// Email служит логином, отдельного имени пользователя нет.
type User struct {
	UID          string     // Уникальный идентификатор пользователя
	Email        string     // Электронная почта (уникальная, логин)
	PasswordHash string     // Хэш пароля пользователя
	IsModerator  bool       // Членство в группе модераторов
	IsActive     bool       // Активна ли учётная запись
	LastLogin    *time.Time // Время последнего входа в систему
	Phone        *string    // Телефон
	City         *string    // Город
	Avatar       *string    // Ссылка на аватар
}

// DummyRegister используется для приёма данных регистрации из JSON-запроса.
type DummyRegister struct {
	Email    string  `json:"email" validate:"required,email"`  // Электронная почта
	Password string  `json:"password" validate:"required"`     // Пароль в открытом виде
	Phone    *string `json:"phone"`                            // Телефон
	City     *string `json:"city"`                             // Город
	Avatar   *string `json:"avatar"`                           // Ссылка на аватар
}

// DummyLogin используется для приёма данных входа из JSON-запроса.
type DummyLogin struct {
	Email    string `json:"email" validate:"required,email"` // Электронная почта
	Password string `json:"password" validate:"required"`    // Пароль в открытом виде
}

// DummyProfile используется для приёма обновляемых полей профиля.
type DummyProfile struct {
	Phone  *string `json:"phone"`  // Телефон
	City   *string `json:"city"`   // Город
	Avatar *string `json:"avatar"` // Ссылка на аватар
}
