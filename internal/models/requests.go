package models

import "encoding/json"

// DummyRegister используется для приёма данных регистрации из JSON-запроса,
// прежде чем конвертировать их в User.
type DummyRegister struct {
	Name        string `json:"name" validate:"required,max=100"`        // Отображаемое имя
	Email       string `json:"email" validate:"required,email"`         // Электронная почта
	Password    string `json:"password" validate:"required,min=6"`      // Пароль (минимум 6 символов)
	PhoneNumber string `json:"phone_number,omitempty" validate:"omitempty,max=100"` // Телефон (опционально)
}

// DummyLogin используется для приёма учётных данных из JSON-запроса.
type DummyLogin struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// DummyAgreement используется для приёма данных нового соглашения из
// JSON-запроса. Сумма приходит строкой, чтобы валидировать и парсить
// её в десятичное число вручную.
type DummyAgreement struct {
	BuyerUID        string          `json:"buyer_uid,omitempty" validate:"omitempty,uuid"` // Покупатель (опционально)
	BuyerEmail      string          `json:"buyer_email" validate:"required,email"`         // Почта покупателя
	Name            string          `json:"name" validate:"required,max=200"`              // Название соглашения
	Amount          string          `json:"amount" validate:"required"`                    // Сумма в формате 100.00
	AmountBreakdown json.RawMessage `json:"amount_breakdown,omitempty"`                    // Разбивка суммы
	Currency        string          `json:"currency,omitempty" validate:"omitempty,max=100"`
	Description     string          `json:"description,omitempty"`
	Document        string          `json:"document,omitempty"` // Ссылка на документ в файловом хранилище
	DaysToDeliver   int             `json:"days_to_deliver" validate:"gte=0"`
	TransactionType string          `json:"transaction_type" validate:"required,oneof=down_payment full_payment"`
	ExtraData       json.RawMessage `json:"extra_data,omitempty"`
}

// DummyStatusUpdate используется для приёма нового статуса соглашения.
type DummyStatusUpdate struct {
	Status string `json:"status" validate:"required,oneof=active completed canceled"`
}

// DummyDispute используется для приёма данных нового спора.
type DummyDispute struct {
	AgreementUID string          `json:"agreement_uid" validate:"required,uuid"`
	Data         json.RawMessage `json:"data,omitempty"`
}
