package repository

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/maynagashev/autoassist/internal/models"
)

var _ UserRepository = (*mongoUserRepository)(nil)

type mongoUserRepository struct {
	db   *mongo.Database
	coll *mongo.Collection
	log  *slog.Logger
}

// NewMongoUserRepository создает UserRepository для MongoDB.
// Уникальность обеспечивают индексы из EnsureMongoIndexes.
func NewMongoUserRepository(db *mongo.Database, log *slog.Logger) UserRepository {
	return &mongoUserRepository{db: db, coll: db.Collection(usersCollection), log: log}
}

func (r *mongoUserRepository) CreateUser(ctx context.Context, user *models.User) (*models.User, error) {
	id, err := reserveIDs(ctx, r.db, usersCollection, 1)
	if err != nil {
		return nil, err
	}

	now := mongoNow()
	created := *user
	created.ID = id
	created.CreatedAt = now
	created.UpdatedAt = now

	if _, err = r.coll.InsertOne(ctx, created); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			r.log.Warn("Пользователь уже существует", "username", user.Username)
			if strings.Contains(err.Error(), usersUsernameKey) {
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

func (r *mongoUserRepository) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	return r.getUser(ctx, bson.D{{Key: "_id", Value: id}})
}

func (r *mongoUserRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.getUser(ctx, bson.D{{Key: "email", Value: email}})
}

func (r *mongoUserRepository) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	return r.getUser(ctx, bson.D{{Key: "username", Value: username}})
}

func (r *mongoUserRepository) getUser(ctx context.Context, filter bson.D) (*models.User, error) {
	var user models.User
	if err := r.coll.FindOne(ctx, filter).Decode(&user); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrUserNotFound
		}
		r.log.Error("Ошибка получения пользователя", "error", err)
		return nil, wrapErr("get user", err)
	}
	return &user, nil
}
