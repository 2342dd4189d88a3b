package repository

import (
	"context"
	"database/sql/driver"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"go.mongodb.org/mongo-driver/mongo"
)

// Ошибки репозиториев. Ошибки драйверов оборачиваются и не возвращаются
// вызывающему коду в исходном виде.
var (
	ErrCarNotFound   = errors.New("car not found")
	ErrUserNotFound  = errors.New("user not found")
	ErrEmailTaken    = errors.New("email already registered")
	ErrUsernameTaken = errors.New("username already taken")
	ErrUnavailable   = errors.New("storage unavailable")
)

// Коды ошибок PostgreSQL.
const (
	pgUniqueViolationCode        = "23505"
	pgCannotConnectNowCode       = "57P03"
	pgInsufficientResourcesClass = "53"
)

// Имена ограничений уникальности из миграции users.
const (
	usersEmailKey    = "users_email_key"
	usersUsernameKey = "users_username_key"
)

// wrapErr дополняет err операцией op и помечает ее как ErrUnavailable, если
// хранилище не смогло обработать запрос вовремя или вообще.
func wrapErr(op string, err error) error {
	if isUnavailable(err) {
		return fmt.Errorf("%s: %w: %w", op, ErrUnavailable, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}

func isUnavailable(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, driver.ErrBadConn) {
		return true
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == pgCannotConnectNowCode || string(pqErr.Code.Class()) == pgInsufficientResourcesClass
	}

	return mongo.IsTimeout(err) || mongo.IsNetworkError(err)
}

// uniqueViolation возвращает имя нарушенного ограничения уникальности PostgreSQL.
func uniqueViolation(err error) (string, bool) {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == pgUniqueViolationCode {
		return pqErr.Constraint, true
	}
	return "", false
}
