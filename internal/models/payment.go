// Package models содержит доменную модель платежа.
// Платёж — запись неизменяемого журнала: создаётся один раз и никогда
// не редактируется, выборка идёт в порядке убывания даты оплаты.
package models

import "time"

// Способы оплаты. Журнал хранит их как строки фиксированного перечня.
const (
	// PayWayCash — оплата наличными, заводится вручную через API платежей.
	PayWayCash = "cash"
	// PayWayTransaction — оплата картой через внешнего платёжного провайдера.
	PayWayTransaction = "external-transaction"
)

// Payment представляет запись журнала платежей.
// Ровно одно из полей CourseID и LessonID должно быть заполнено —
// инвариант поддерживается вызывающим кодом, не схемой.
type Payment struct {
	ID          int       // Идентификатор записи
	PayerUID    string    // UID плательщика
	PaymentDate time.Time // Дата оплаты, выставляется при создании
	CourseID    *int      // Оплаченный курс
	LessonID    *int      // Оплаченный урок
	Amount      int       // Сумма платежа, положительная
	Way         string    // Способ оплаты: cash | external-transaction
}

// PaymentWithRefs — запись журнала вместе с загруженными связями:
// email плательщика и названиями оплаченного курса/урока.
// Используется как входной граф сущностей для сборки PaymentInfo.
type PaymentWithRefs struct {
	Payment
	PayerEmail  string  // Email плательщика
	CourseTitle *string // Название оплаченного курса
	LessonTitle *string // Название оплаченного урока
}

// PaidFor возвращает название оплаченного объекта: курс, если он задан,
// иначе урок.
func (p *PaymentWithRefs) PaidFor() *string {
	if p.CourseID != nil {
		return p.CourseTitle
	}
	if p.LessonID != nil {
		return p.LessonTitle
	}
	return nil
}

// DummyPayment используется для приёма данных платежа из JSON-запроса
// (ручная запись, например оплата наличными).
type DummyPayment struct {
	CourseID *int   `json:"course"`                                            // Оплаченный курс
	LessonID *int   `json:"lesson"`                                            // Оплаченный урок
	Amount   int    `json:"amount" validate:"required,gt=0"`                   // Сумма (>0)
	Way      string `json:"way" validate:"required,oneof=cash external-transaction"` // Способ оплаты
}

// FilterPayments описывает фильтры выборки журнала платежей.
// Nil-поле означает отсутствие фильтра по нему.
type FilterPayments struct {
	CourseID    *int    // Фильтр по курсу
	LessonID    *int    // Фильтр по уроку
	Way         *string // Фильтр по способу оплаты
	OldestFirst bool    // Сортировка по дате оплаты: по умолчанию свежие первыми
	Limit       int     // Размер страницы
	Offset      int     // Смещение
}

// DummyBuy используется для приёма карточных данных при покупке курса.
type DummyBuy struct {
	CardNumber string `json:"card_number" validate:"required,numeric"` // Номер карты
	ExpMonth   int    `json:"exp_month" validate:"required,min=1,max=12"` // Месяц истечения
	ExpYear    int    `json:"exp_year" validate:"required"`            // Год истечения
	CVC        string `json:"cvc" validate:"required,numeric"`         // Код проверки
}
