package repository_test

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maynagashev/autoassist/internal/logging"
	"github.com/maynagashev/autoassist/internal/models"
	"github.com/maynagashev/autoassist/internal/repository"
)

var userColumns = []string{"id", "username", "email", "password_hash", "created_at", "updated_at"}

func setupUserRepoMock(t *testing.T) (repository.UserRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return repository.NewPostgresUserRepository(sqlx.NewDb(db, "sqlmock"), logging.Discard()), mock
}

func TestCreateUser(t *testing.T) {
	query := regexp.QuoteMeta(`INSERT INTO users (username, email, password_hash) VALUES ($1, $2, $3) RETURNING id, created_at, updated_at`)
	now := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)

	tests := []struct {
		name        string
		mockSetup   func(mock sqlmock.Sqlmock)
		expectedID  int64
		expectedErr error
	}{
		{
			name: "created",
			mockSetup: func(mock sqlmock.Sqlmock) {
				rows := sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(int64(7), now, now)
				mock.ExpectQuery(query).WithArgs("newuser", "new@example.com", "hash").WillReturnRows(rows)
			},
			expectedID: 7,
		},
		{
			name: "email taken",
			mockSetup: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(query).WithArgs("newuser", "new@example.com", "hash").
					WillReturnError(&pq.Error{Code: "23505", Constraint: "users_email_key"})
			},
			expectedErr: repository.ErrEmailTaken,
		},
		{
			name: "username taken",
			mockSetup: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(query).WithArgs("newuser", "new@example.com", "hash").
					WillReturnError(&pq.Error{Code: "23505", Constraint: "users_username_key"})
			},
			expectedErr: repository.ErrUsernameTaken,
		},
		{
			name: "too many connections",
			mockSetup: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(query).WithArgs("newuser", "new@example.com", "hash").
					WillReturnError(&pq.Error{Code: "53300"})
			},
			expectedErr: repository.ErrUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock := setupUserRepoMock(t)
			tt.mockSetup(mock)

			user, err := repo.CreateUser(context.Background(), &models.User{
				Username: "newuser", Email: "new@example.com", PasswordHash: "hash",
			})

			if tt.expectedErr != nil {
				require.ErrorIs(t, err, tt.expectedErr)
				assert.Nil(t, user)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.expectedID, user.ID)
				assert.Equal(t, "newuser", user.Username)
				assert.Equal(t, now, user.CreatedAt)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestGetUserByEmail(t *testing.T) {
	query := regexp.QuoteMeta(`SELECT id, username, email, password_hash, created_at, updated_at FROM users WHERE email = $1`)
	now := time.Now().UTC()

	t.Run("found", func(t *testing.T) {
		repo, mock := setupUserRepoMock(t)
		mock.ExpectQuery(query).WithArgs("a@b.c").WillReturnRows(
			sqlmock.NewRows(userColumns).AddRow(int64(1), "alice", "a@b.c", "hash", now, now))

		user, err := repo.GetUserByEmail(context.Background(), "a@b.c")
		require.NoError(t, err)
		assert.Equal(t, &models.User{
			ID: 1, Username: "alice", Email: "a@b.c", PasswordHash: "hash", CreatedAt: now, UpdatedAt: now,
		}, user)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not found", func(t *testing.T) {
		repo, mock := setupUserRepoMock(t)
		mock.ExpectQuery(query).WithArgs("x@y.z").WillReturnError(sql.ErrNoRows)

		user, err := repo.GetUserByEmail(context.Background(), "x@y.z")
		require.ErrorIs(t, err, repository.ErrUserNotFound)
		assert.Nil(t, user)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("database error", func(t *testing.T) {
		repo, mock := setupUserRepoMock(t)
		mock.ExpectQuery(query).WithArgs("x@y.z").WillReturnError(errors.New("boom"))

		_, err := repo.GetUserByEmail(context.Background(), "x@y.z")
		require.Error(t, err)
		assert.NotErrorIs(t, err, repository.ErrUserNotFound)
		assert.NotErrorIs(t, err, repository.ErrUnavailable)
		assert.Contains(t, err.Error(), "get user")
	})
}

func TestGetUserByIDAndUsername(t *testing.T) {
	now := time.Now().UTC()
	repo, mock := setupUserRepoMock(t)

	mock.ExpectQuery(regexp.QuoteMeta(`FROM users WHERE id = $1`)).WithArgs(int64(3)).
		WillReturnRows(sqlmock.NewRows(userColumns).AddRow(int64(3), "bob", "bob@example.com", "h", now, now))
	mock.ExpectQuery(regexp.QuoteMeta(`FROM users WHERE username = $1`)).WithArgs("bob").
		WillReturnRows(sqlmock.NewRows(userColumns))

	user, err := repo.GetUserByID(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, "bob", user.Username)

	_, err = repo.GetUserByUsername(context.Background(), "bob")
	require.ErrorIs(t, err, repository.ErrUserNotFound)

	assert.NoError(t, mock.ExpectationsWereMet())
}
