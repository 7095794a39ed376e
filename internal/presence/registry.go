// Package presence отвечает на вопрос «на каком соединении сейчас пользователь».
// На пользователя хранится одно соединение, побеждает последняя регистрация.
package presence

import "context"

type Registry interface {
	Register(ctx context.Context, userID, connID string) error
	Lookup(ctx context.Context, userID string) (connID string, ok bool, err error)
	// Remove удаляет запись, значение которой равно connID. Отсутствие записи — не ошибка.
	Remove(ctx context.Context, connID string) error
	Online(ctx context.Context) (int, error)
	// Touch отмечает, что соединение connID живо.
	Touch(ctx context.Context, connID string) error
}
