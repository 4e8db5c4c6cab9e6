// Package repository реализует хранилище данных на основе PostgreSQL
// для пользователей, токенов подтверждения почты, платёжных соглашений
// и споров. Записи изменяются в транзакциях; хуки, зарегистрированные
// через Tx.AfterCommit, выполняются только после успешного COMMIT —
// на этом держится гарантия «уведомление только после фиксации».
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	// Регистрация драйвера pgx для использования с database/sql.
	_ "github.com/jackc/pgx/v5/stdlib"
)

// Ошибки хранилища, на которые опирается слой бизнес-логики.
var (
	// ErrNotFound запись не найдена.
	ErrNotFound = errors.New("not found")
	// ErrUniqueViolation нарушен уникальный индекс (почта, значение токена).
	ErrUniqueViolation = errors.New("unique violation")
	// ErrInvalidState запись существует, но её состояние не допускает операцию.
	ErrInvalidState = errors.New("invalid state")
)

// Storage инкапсулирует соединение с базой данных PostgreSQL.
type Storage struct {
	DB *sql.DB
}

// New создаёт подключение к PostgreSQL.
func New(storageConnectionString string) (*Storage, error) {
	const op = "storage.New"

	db, err := sql.Open("pgx", storageConnectionString)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err = db.PingContext(context.Background()); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &Storage{
		DB: db,
	}, nil
}

// Tx объединяет транзакцию и очередь хуков, выполняемых после фиксации.
type Tx struct {
	tx          *sql.Tx
	afterCommit []func()
}

// AfterCommit регистрирует функцию, которая будет вызвана после
// успешного COMMIT. При откате транзакции хуки не выполняются.
func (t *Tx) AfterCommit(fn func()) {
	t.afterCommit = append(t.afterCommit, fn)
}

// WithTx выполняет fn внутри транзакции. Хуки, зарегистрированные fn,
// запускаются в порядке регистрации строго после успешной фиксации.
func (s *Storage) WithTx(ctx context.Context, fn func(t *Tx) error) error {
	const op = "storage.WithTx"

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	t := &Tx{tx: tx}
	if err := fn(t); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("%s: rollback: %w", op, errors.Join(err, rbErr))
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	for _, hook := range t.afterCommit {
		hook()
	}
	return nil
}

// wrapRowError приводит ошибки database/sql и pgx к ошибкам хранилища.
func wrapRowError(op string, err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
		return fmt.Errorf("%s: %w", op, ErrUniqueViolation)
	}
	return fmt.Errorf("%s: %w", op, err)
}

// CheckDatabaseReady проверяет готовность базы данных.
func CheckDatabaseReady(storage *Storage) error {
	var exists bool
	err := storage.DB.QueryRow(`SELECT EXISTS (
        SELECT FROM information_schema.tables
        WHERE table_name = 'payment_agreements'
    )`).Scan(&exists)
	if err != nil || !exists {
		return fmt.Errorf("required table payment_agreements missing or query error: %w", err)
	}
	return nil
}
