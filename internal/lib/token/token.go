// Package token реализует генерацию коротких уникальных кодов,
// используемых для подтверждения почты. Код состоит из 7 символов
// латинского алфавита и цифр; уникальность проверяется через функцию
// обратного вызова, обращающуюся к хранилищу.
package token

import (
	"errors"
	"fmt"
	"math/rand/v2"
)

// Length длина генерируемого кода.
const Length = 7

const alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

const maxAttempts = 10

// ErrExhausted возвращается, когда не удалось подобрать свободный код
// за допустимое число попыток. При длине 7 и алфавите из 62 символов
// это возможно только при ошибке проверки или вырожденной таблице.
var ErrExhausted = errors.New("token generation attempts exhausted")

// ExistsFunc проверяет, занят ли код среди токенов того же вида.
type ExistsFunc func(value string) (bool, error)

// Generate подбирает уникальный код, перегенерируя его при коллизии.
// Проверка exists ограничивает уникальность областью конкретного вида
// токена, а не всеми токенами вообще.
func Generate(exists ExistsFunc) (string, error) {
	const op = "token.Generate"
	for range maxAttempts {
		value := random()
		taken, err := exists(value)
		if err != nil {
			return "", fmt.Errorf("%s: %w", op, err)
		}
		if !taken {
			return value, nil
		}
	}
	return "", fmt.Errorf("%s: %w", op, ErrExhausted)
}

func random() string {
	b := make([]byte, Length)
	for i := range b {
		b[i] = alphabet[rand.IntN(len(alphabet))]
	}
	return string(b)
}
