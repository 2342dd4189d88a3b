package repository

import (
	"context"
	"fmt"
	"log/slog"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/maynagashev/autoassist/internal/config"
)

// Имена коллекций.
const (
	carsCollection     = "cars"
	usersCollection    = "users"
	countersCollection = "counters"
)

// NewMongoDB подключается к MongoDB и проверяет доступность primary.
func NewMongoDB(ctx context.Context, cfg config.StorageConfig, log *slog.Logger) (*mongo.Client, error) {
	log.Info("Подключение к MongoDB...", "database", cfg.MongoDatabase)

	opts := options.Client().ApplyURI(cfg.MongoURI).SetTimeout(cfg.QueryTimeout)
	if cfg.MaxOpenConns > 0 {
		opts.SetMaxPoolSize(uint64(cfg.MaxOpenConns))
	}
	if cfg.ConnMaxIdleTime > 0 {
		opts.SetMaxConnIdleTime(cfg.ConnMaxIdleTime)
	}

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, wrapErr("connect to mongo", err)
	}
	if err = client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, wrapErr("ping mongo", err)
	}

	log.Info("Соединение с MongoDB успешно установлено")
	return client, nil
}

// EnsureMongoIndexes создает уникальные индексы пользователей и индексы сортировки автомобилей.
func EnsureMongoIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection(usersCollection).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true).SetName(usersEmailKey)},
		{Keys: bson.D{{Key: "username", Value: 1}}, Options: options.Index().SetUnique(true).SetName(usersUsernameKey)},
	})
	if err != nil {
		return fmt.Errorf("create user indexes: %w", err)
	}

	_, err = db.Collection(carsCollection).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "brand", Value: 1}}},
		{Keys: bson.D{{Key: "price", Value: 1}}},
		{Keys: bson.D{{Key: "year", Value: 1}}},
		{Keys: bson.D{{Key: "created_at", Value: 1}}},
	})
	if err != nil {
		return fmt.Errorf("create car indexes: %w", err)
	}
	return nil
}

// reserveIDs атомарно увеличивает счетчик name на n и возвращает первый зарезервированный id.
// Документы хранят int64 id, чтобы оба хранилища отдавали одинаковые идентификаторы.
func reserveIDs(ctx context.Context, db *mongo.Database, name string, n int) (int64, error) {
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)
	res := db.Collection(countersCollection).FindOneAndUpdate(ctx,
		bson.D{{Key: "_id", Value: name}},
		bson.D{{Key: "$inc", Value: bson.D{{Key: "seq", Value: int64(n)}}}},
		opts,
	)

	var counter struct {
		Seq int64 `bson:"seq"`
	}
	if err := res.Decode(&counter); err != nil {
		return 0, wrapErr("reserve "+name+" ids", err)
	}
	return counter.Seq - int64(n) + 1, nil
}
