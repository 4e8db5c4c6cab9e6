package models

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType классифицирует соглашение по способу оплаты.
type TransactionType string

// Допустимые типы транзакции.
const (
	DownPayment TransactionType = "down_payment"
	FullPayment TransactionType = "full_payment"
)

// Valid сообщает, является ли значение одним из допустимых типов.
func (t TransactionType) Valid() bool {
	return t == DownPayment || t == FullPayment
}

// AgreementStatus описывает состояние жизненного цикла соглашения.
type AgreementStatus string

// Состояния соглашения.
const (
	StatusPending   AgreementStatus = "pending"
	StatusActive    AgreementStatus = "active"
	StatusCompleted AgreementStatus = "completed"
	StatusDisputed  AgreementStatus = "disputed"
	StatusCanceled  AgreementStatus = "canceled"
)

// CanTransition сообщает, допустим ли переход из текущего состояния в next.
// Разрешены только рёбра pending→{active,canceled} и
// active→{completed,disputed,canceled}; завершённые состояния терминальны.
func (s AgreementStatus) CanTransition(next AgreementStatus) bool {
	switch s {
	case StatusPending:
		return next == StatusActive || next == StatusCanceled
	case StatusActive:
		return next == StatusCompleted || next == StatusDisputed || next == StatusCanceled
	default:
		return false
	}
}

// PaymentAgreement представляет платёжное соглашение между покупателем и продавцом.
//
// Ссылка на покупателя слабая: при удалении покупателя она обнуляется,
// а BuyerEmail остаётся заполненным, чтобы уведомления продолжали
// доходить. Продавец владеет записью — с его удалением соглашение
// удаляется каскадно.
type PaymentAgreement struct {
	UUID            string          // Уникальный идентификатор
	BuyerUID        *string         // Покупатель (nil после удаления его учётной записи)
	BuyerEmail      string          // Почта покупателя, всегда заполнена
	SellerUID       string          // Продавец
	Name            string          // Название соглашения
	Amount          decimal.Decimal // Сумма, NUMERIC(15,2)
	AmountBreakdown json.RawMessage // Произвольная разбивка суммы, без схемы
	Currency        string          // Код валюты
	Description     *string         // Описание (опционально)
	Document        *string         // Ссылка на приложенный документ
	DaysToDeliver   int             // Срок поставки в днях, неотрицательный
	TransactionType TransactionType
	Status          AgreementStatus
	ExtraData       json.RawMessage // Произвольные данные, без схемы
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
