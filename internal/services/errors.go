package services

import (
	"errors"
	"fmt"

	"github.com/maynagashev/autoassist/internal/repository"
)

// Ошибки сервисов. Обработчики сопоставляют их HTTP-статусам.
var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrEmailTaken         = errors.New("email already registered")
	ErrUsernameTaken      = errors.New("username already taken")
	ErrCarNotFound        = errors.New("car not found")
	ErrStorageUnavailable = errors.New("storage temporarily unavailable")
)

// storageErr сохраняет ошибку репозитория в цепочке и помечает недоступность
// сервисной ошибкой.
func storageErr(op string, err error) error {
	if errors.Is(err, repository.ErrUnavailable) {
		return fmt.Errorf("%s: %w: %w", op, ErrStorageUnavailable, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}
