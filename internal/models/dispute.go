package models

import (
	"encoding/json"
	"time"
)

// DisputeStatus описывает состояние спора.
type DisputeStatus string

// Состояния спора.
const (
	DisputeOpen     DisputeStatus = "open"
	DisputeResolved DisputeStatus = "resolved"
)

// Dispute представляет спор по существующему соглашению.
// Спор принадлежит соглашению и удаляется вместе с ним; ссылка на
// инициатора слабая и обнуляется при удалении пользователя.
type Dispute struct {
	UUID         string          // Уникальный идентификатор
	AgreementUID string          // Соглашение, по которому открыт спор
	RaisedByUID  *string         // Инициатор (nil после удаления учётной записи)
	Status       DisputeStatus
	Data         json.RawMessage // Произвольные данные спора, без схемы
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
