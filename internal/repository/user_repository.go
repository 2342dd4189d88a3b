package repository

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/jmoiron/sqlx"

	"github.com/maynagashev/autoassist/internal/models"
)

const userColumns = "id, username, email, password_hash, created_at, updated_at"

// UserRepository определяет методы для работы с пользователями.
type UserRepository interface {
	CreateUser(ctx context.Context, user *models.User) (*models.User, error)
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
}

var _ UserRepository = (*postgresUserRepository)(nil)

type postgresUserRepository struct {
	db  *sqlx.DB
	log *slog.Logger
}

// NewPostgresUserRepository создает UserRepository для PostgreSQL.
func NewPostgresUserRepository(db *sqlx.DB, log *slog.Logger) UserRepository {
	return &postgresUserRepository{db: db, log: log}
}

// CreateUser добавляет пользователя и возвращает его с созданным id и временными метками.
// Нарушение уникальности возвращается как ErrEmailTaken или ErrUsernameTaken в зависимости от ограничения.
func (r *postgresUserRepository) CreateUser(ctx context.Context, user *models.User) (*models.User, error) {
	query := `INSERT INTO users (username, email, password_hash) VALUES ($1, $2, $3)
	          RETURNING id, created_at, updated_at`

	created := *user
	err := r.db.QueryRowxContext(ctx, query, user.Username, user.Email, user.PasswordHash).
		Scan(&created.ID, &created.CreatedAt, &created.UpdatedAt)
	if err != nil {
		if constraint, ok := uniqueViolation(err); ok {
			r.log.Warn("Пользователь уже существует", "username", user.Username, "constraint", constraint)
			if constraint == usersUsernameKey {
				return nil, ErrUsernameTaken
			}
			return nil, ErrEmailTaken
		}
		r.log.Error("Ошибка добавления пользователя", "username", user.Username, "error", err)
		return nil, wrapErr("insert user", err)
	}

	r.log.Info("Пользователь создан", "id", created.ID, "username", created.Username)
	return &created, nil
}

func (r *postgresUserRepository) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	return r.getUser(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

func (r *postgresUserRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.getUser(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
}

func (r *postgresUserRepository) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	return r.getUser(ctx, `SELECT `+userColumns+` FROM users WHERE username = $1`, username)
}

func (r *postgresUserRepository) getUser(ctx context.Context, query string, arg any) (*models.User, error) {
	var user models.User
	if err := r.db.GetContext(ctx, &user, query, arg); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		r.log.Error("Ошибка получения пользователя", "error", err)
		return nil, wrapErr("get user", err)
	}
	return &user, nil
}
