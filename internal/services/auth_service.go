package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/maynagashev/autoassist/internal/models"
	"github.com/maynagashev/autoassist/internal/repository"
	"github.com/maynagashev/autoassist/internal/validation"
)

// AuthService определяет методы регистрации, входа и проверки токенов.
type AuthService interface {
	Register(ctx context.Context, req models.RegisterRequest) (*models.AuthResult, error)
	Login(ctx context.Context, req models.LoginRequest) (*models.AuthResult, error)
	Verify(ctx context.Context, token string) (*models.User, error)
}

// AuthOptions настраивает хеширование паролей и обращения к хранилищу.
type AuthOptions struct {
	BcryptCost   int
	QueryTimeout time.Duration
}

var _ AuthService = (*authService)(nil)

type authService struct {
	users    repository.UserRepository
	tokens   *TokenManager
	validate *validation.Validator
	opts     AuthOptions
	log      *slog.Logger

	dummyOnce sync.Once
	dummyHash []byte
}

func NewAuthService(
	users repository.UserRepository,
	tokens *TokenManager,
	validate *validation.Validator,
	opts AuthOptions,
	log *slog.Logger,
) AuthService {
	if opts.BcryptCost == 0 {
		opts.BcryptCost = bcrypt.DefaultCost
	}
	return &authService{users: users, tokens: tokens, validate: validate, opts: opts, log: log}
}

// Register проверяет запрос, отклоняет занятый email или имя пользователя (именно
// в таком порядке) и сохраняет пользователя с bcrypt-хешем.
func (s *authService) Register(ctx context.Context, req models.RegisterRequest) (*models.AuthResult, error) {
	req.Username = strings.TrimSpace(req.Username)
	req.Email = normalizeEmail(req.Email)
	if err := s.validate.Struct(req); err != nil {
		return nil, err
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	if _, err := s.users.GetUserByEmail(ctx, req.Email); err == nil {
		s.log.Info("Попытка регистрации с существующим email", "email", req.Email)
		return nil, ErrEmailTaken
	} else if !errors.Is(err, repository.ErrUserNotFound) {
		return nil, storageErr("check email", err)
	}

	if _, err := s.users.GetUserByUsername(ctx, req.Username); err == nil {
		s.log.Info("Попытка регистрации с существующим именем пользователя", "username", req.Username)
		return nil, ErrUsernameTaken
	} else if !errors.Is(err, repository.ErrUserNotFound) {
		return nil, storageErr("check username", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.opts.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user, err := s.users.CreateUser(ctx, &models.User{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: string(hash),
	})
	switch {
	case errors.Is(err, repository.ErrEmailTaken):
		return nil, ErrEmailTaken
	case errors.Is(err, repository.ErrUsernameTaken):
		return nil, ErrUsernameTaken
	case err != nil:
		return nil, storageErr("create user", err)
	}

	token, err := s.tokens.Issue(user)
	if err != nil {
		return nil, err
	}

	s.log.Info("Пользователь зарегистрирован", "id", user.ID, "username", user.Username)
	return &models.AuthResult{User: user, Token: token}, nil
}

// Login возвращает ErrInvalidCredentials и для неизвестного email, и для неверного
// пароля. Для неизвестного email все равно выполняется одно сравнение bcrypt.
func (s *authService) Login(ctx context.Context, req models.LoginRequest) (*models.AuthResult, error) {
	req.Email = normalizeEmail(req.Email)
	if err := s.validate.Struct(req); err != nil {
		return nil, err
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	user, err := s.users.GetUserByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			_ = bcrypt.CompareHashAndPassword(s.dummy(), []byte(req.Password))
			s.log.Info("Попытка входа с неизвестным email")
			return nil, ErrInvalidCredentials
		}
		return nil, storageErr("find user", err)
	}

	if err = bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		s.log.Info("Попытка входа с неверным паролем", "id", user.ID)
		return nil, ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user)
	if err != nil {
		return nil, err
	}

	s.log.Info("Пользователь вошел в систему", "id", user.ID)
	return &models.AuthResult{User: user, Token: token}, nil
}

// Verify проверяет токен и загружает пользователя. Токен удаленного пользователя невалиден.
func (s *authService) Verify(ctx context.Context, token string) (*models.User, error) {
	claims, err := s.tokens.Parse(token)
	if err != nil {
		return nil, err
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	user, err := s.users.GetUserByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, storageErr("load user", err)
	}
	return user, nil
}

func (s *authService) dummy() []byte {
	s.dummyOnce.Do(func() {
		s.dummyHash, _ = bcrypt.GenerateFromPassword([]byte("autoassist-dummy-password"), s.opts.BcryptCost)
	})
	return s.dummyHash
}

func (s *authService) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.opts.QueryTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.opts.QueryTimeout)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
