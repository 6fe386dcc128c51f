package paymentprovider

// StatusSucceeded — финальный статус успешно проведённого платежа
// у внешнего провайдера.
const StatusSucceeded = "succeeded"

// Card — карточные данные для регистрации платёжного метода.
type Card struct {
	Number   string // Номер карты
	ExpMonth int    // Месяц истечения
	ExpYear  int    // Год истечения
	CVC      string // Код проверки
}

// PaymentMethod — ответ провайдера на регистрацию платёжного метода.
type PaymentMethod struct {
	ID   string `json:"id"`   // Токен платёжного метода
	Type string `json:"type"` // Тип метода, всегда card
}

// PaymentIntent — ответ провайдера на создание и подтверждение платежа.
type PaymentIntent struct {
	ID     string `json:"id"`     // Идентификатор платежа
	Status string `json:"status"` // Статус: succeeded | requires_action | canceled и пр.
	Amount int    `json:"amount"` // Сумма платежа
}
