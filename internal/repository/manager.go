package repository

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/maynagashev/autoassist/internal/config"
	"github.com/maynagashev/autoassist/internal/logging"
)

// Manager владеет подключением к хранилищу и выдает привязанные к нему репозитории.
type Manager interface {
	Cars() CarRepository
	Users() UserRepository
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}

// Open подключается к выбранному хранилищу и готовит схему:
// миграции goose для PostgreSQL, индексы для MongoDB.
func Open(ctx context.Context, cfg config.StorageConfig, log *slog.Logger) (Manager, error) {
	switch cfg.Driver {
	case config.DriverPostgres:
		db, err := NewPostgresDB(ctx, cfg, log)
		if err != nil {
			return nil, err
		}
		if err = Migrate(ctx, db); err != nil {
			_ = db.Close()
			return nil, err
		}
		return NewPostgresManager(db, log), nil

	case config.DriverMongo:
		client, err := NewMongoDB(ctx, cfg, log)
		if err != nil {
			return nil, err
		}
		db := client.Database(cfg.MongoDatabase)
		if err = EnsureMongoIndexes(ctx, db); err != nil {
			_ = client.Disconnect(ctx)
			return nil, err
		}
		return NewMongoManager(client, db, log), nil

	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}

type postgresManager struct {
	db    *sqlx.DB
	cars  CarRepository
	users UserRepository
}

// NewPostgresManager оборачивает открытый пул PostgreSQL.
func NewPostgresManager(db *sqlx.DB, log *slog.Logger) Manager {
	return &postgresManager{
		db:    db,
		cars:  NewPostgresCarRepository(db, logging.Component(log, "car_repository")),
		users: NewPostgresUserRepository(db, logging.Component(log, "user_repository")),
	}
}

func (m *postgresManager) Cars() CarRepository   { return m.cars }
func (m *postgresManager) Users() UserRepository { return m.users }

func (m *postgresManager) Ping(ctx context.Context) error {
	if err := m.db.PingContext(ctx); err != nil {
		return wrapErr("ping postgres", err)
	}
	return nil
}

func (m *postgresManager) Close(context.Context) error {
	return m.db.Close()
}

type mongoManager struct {
	client *mongo.Client
	cars   CarRepository
	users  UserRepository
}

// NewMongoManager оборачивает подключенный клиент MongoDB.
func NewMongoManager(client *mongo.Client, db *mongo.Database, log *slog.Logger) Manager {
	return &mongoManager{
		client: client,
		cars:   NewMongoCarRepository(db, logging.Component(log, "car_repository")),
		users:  NewMongoUserRepository(db, logging.Component(log, "user_repository")),
	}
}

func (m *mongoManager) Cars() CarRepository   { return m.cars }
func (m *mongoManager) Users() UserRepository { return m.users }

func (m *mongoManager) Ping(ctx context.Context) error {
	if err := m.client.Ping(ctx, readpref.Primary()); err != nil {
		return wrapErr("ping mongo", err)
	}
	return nil
}

func (m *mongoManager) Close(ctx context.Context) error {
	return m.client.Disconnect(ctx)
}
