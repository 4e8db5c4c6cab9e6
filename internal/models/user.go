// Package models содержит доменные структуры сервиса: пользователей,
// токены подтверждения почты, платёжные соглашения и споры.
// Структуры используются в бизнес‑логике и при работе с хранилищем.
package models

import "time"

// User представляет зарегистрированного пользователя системы.
// Почта глобально уникальна и служит единственным учётным идентификатором;
// пароль хранится только в виде bcrypt-хэша.
type User struct {
	UUID          string     // Уникальный идентификатор пользователя
	Name          string     // Отображаемое имя
	Email         string     // Электронная почта (уникальная)
	PhoneNumber   *string    // Телефон (опционально)
	PasswordHash  string     // Хэш пароля пользователя
	EmailVerified bool       // Подтверждена ли почта
	IsActive      bool       // Активна ли учётная запись
	IsAdmin       bool       // Признак администратора
	CreatedAt     time.Time  // Дата создания
	LastActive    time.Time  // Обновляется при каждом обращении
}
