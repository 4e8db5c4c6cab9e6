package models

import "time"

// VerificationToken представляет одноразовый код подтверждения почты,
// привязанный к пользователю. Значение кода уникально среди токенов
// этого вида; уникальность обеспечивается перегенерацией при коллизии
// и уникальным индексом в базе.
type VerificationToken struct {
	ID        int64      // Идентификатор записи
	UserUID   string     // Пользователь, которому выдан код
	Token     string     // 7-символьный код
	CreatedOn time.Time  // Момент выпуска
	ExpiresOn *time.Time // Срок действия (nil — бессрочный)
	Active    bool       // Сбрасывается при использовании кода
}

// IsActive возвращает true, если токен не использован и не просрочен.
// Результат — чистая функция от (Active, ExpiresOn); состояние
// «просрочен» отдельно не хранится.
func (t *VerificationToken) IsActive(now time.Time) bool {
	if !t.Active {
		return false
	}
	return t.ExpiresOn == nil || now.Before(*t.ExpiresOn)
}
