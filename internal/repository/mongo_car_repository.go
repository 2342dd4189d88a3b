package repository

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/maynagashev/autoassist/internal/carquery"
	"github.com/maynagashev/autoassist/internal/models"
)

var _ CarRepository = (*mongoCarRepository)(nil)

type mongoCarRepository struct {
	db   *mongo.Database
	coll *mongo.Collection
	log  *slog.Logger
}

// NewMongoCarRepository создает CarRepository для MongoDB.
// Пакетная запись использует транзакции и требует replica set.
func NewMongoCarRepository(db *mongo.Database, log *slog.Logger) CarRepository {
	return &mongoCarRepository{db: db, coll: db.Collection(carsCollection), log: log}
}

// Search отвечает одной агрегацией: страница и количество это два
// фасета поверх одного $match и получаются за одно чтение.
func (r *mongoCarRepository) Search(ctx context.Context, opts carquery.Options) (*models.CarPage, error) {
	opts = opts.Normalize()

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: carquery.MongoFilter(opts)}},
		{{Key: "$facet", Value: bson.D{
			{Key: "items", Value: bson.A{
				bson.D{{Key: "$sort", Value: carquery.MongoSort(opts)}},
				bson.D{{Key: "$skip", Value: int64(opts.Offset())}},
				bson.D{{Key: "$limit", Value: int64(opts.Limit)}},
			}},
			{Key: "total", Value: bson.A{
				bson.D{{Key: "$count", Value: "n"}},
			}},
		}}},
	}

	cur, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		r.log.Error("Ошибка агрегации автомобилей", "error", err)
		return nil, wrapErr("aggregate cars", err)
	}

	var facets []struct {
		Items []models.Car `bson:"items"`
		Total []struct {
			N int64 `bson:"n"`
		} `bson:"total"`
	}
	if err = cur.All(ctx, &facets); err != nil {
		return nil, wrapErr("decode cars", err)
	}

	page := &models.CarPage{Items: []models.Car{}}
	var total int64
	if len(facets) > 0 {
		if facets[0].Items != nil {
			page.Items = facets[0].Items
		}
		if len(facets[0].Total) > 0 {
			total = facets[0].Total[0].N
		}
	}
	page.Pagination = opts.Paginate(total)

	r.log.Debug("Поиск автомобилей выполнен", "total", total, "page", opts.Page, "returned", len(page.Items))
	return page, nil
}

func (r *mongoCarRepository) GetByID(ctx context.Context, id int64) (*models.Car, error) {
	var car models.Car
	err := r.coll.FindOne(ctx, bson.D{{Key: "_id", Value: id}}).Decode(&car)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrCarNotFound
		}
		return nil, wrapErr("get car", err)
	}
	return &car, nil
}

func (r *mongoCarRepository) Brands(ctx context.Context) ([]string, error) {
	raw, err := r.coll.Distinct(ctx, "brand", bson.D{})
	if err != nil {
		return nil, wrapErr("list brands", err)
	}

	brands := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok {
			brands = append(brands, s)
		}
	}
	slices.Sort(brands)
	return brands, nil
}

type distinctValue[T any] struct {
	Value T `bson:"_id"`
}

func distinctFacet(field string) bson.A {
	return bson.A{
		bson.D{{Key: "$match", Value: bson.D{{Key: field, Value: bson.D{{Key: "$nin", Value: bson.A{nil, ""}}}}}}},
		bson.D{{Key: "$group", Value: bson.D{{Key: "_id", Value: "$" + field}}}},
		bson.D{{Key: "$sort", Value: bson.D{{Key: "_id", Value: 1}}}},
	}
}

func distinctValues[T any](in []distinctValue[T]) []T {
	out := make([]T, 0, len(in))
	for _, v := range in {
		out = append(out, v.Value)
	}
	return out
}

// FilterOptions вычисляет каждый список вариантов как фасет одной агрегации.
func (r *mongoCarRepository) FilterOptions(ctx context.Context) (*models.FilterOptions, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$facet", Value: bson.D{
			{Key: "brands", Value: distinctFacet("brand")},
			{Key: "fuel_types", Value: distinctFacet("fuel_type")},
			{Key: "transmissions", Value: distinctFacet("transmission")},
			{Key: "body_types", Value: distinctFacet("body_type")},
			{Key: "years", Value: bson.A{
				bson.D{{Key: "$group", Value: bson.D{{Key: "_id", Value: "$year"}}}},
				bson.D{{Key: "$sort", Value: bson.D{{Key: "_id", Value: -1}}}},
			}},
			{Key: "prices", Value: bson.A{
				bson.D{{Key: "$group", Value: bson.D{
					{Key: "_id", Value: nil},
					{Key: "min_price", Value: bson.D{{Key: "$min", Value: "$price"}}},
					{Key: "max_price", Value: bson.D{{Key: "$max", Value: "$price"}}},
				}}},
			}},
		}}},
	}

	cur, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, wrapErr("aggregate filter options", err)
	}

	var facets []struct {
		Brands        []distinctValue[string] `bson:"brands"`
		FuelTypes     []distinctValue[string] `bson:"fuel_types"`
		Transmissions []distinctValue[string] `bson:"transmissions"`
		BodyTypes     []distinctValue[string] `bson:"body_types"`
		Years         []distinctValue[int]    `bson:"years"`
		Prices        []models.PriceRange     `bson:"prices"`
	}
	if err = cur.All(ctx, &facets); err != nil {
		return nil, wrapErr("decode filter options", err)
	}

	out := &models.FilterOptions{
		Brands:        []string{},
		FuelTypes:     []string{},
		Transmissions: []string{},
		BodyTypes:     []string{},
		Years:         []int{},
	}
	if len(facets) == 0 {
		return out, nil
	}
	f := facets[0]
	out.Brands = distinctValues(f.Brands)
	out.FuelTypes = distinctValues(f.FuelTypes)
	out.Transmissions = distinctValues(f.Transmissions)
	out.BodyTypes = distinctValues(f.BodyTypes)
	out.Years = distinctValues(f.Years)
	if len(f.Prices) > 0 {
		out.PriceRange = f.Prices[0]
	}
	return out, nil
}

func (r *mongoCarRepository) Create(ctx context.Context, car *models.Car) (*models.Car, error) {
	id, err := reserveIDs(ctx, r.db, carsCollection, 1)
	if err != nil {
		return nil, err
	}

	created := *car
	stampCar(&created, id, mongoNow())
	if _, err = r.coll.InsertOne(ctx, created); err != nil {
		r.log.Error("Ошибка добавления автомобиля", "brand", car.Brand, "model", car.Model, "error", err)
		return nil, wrapErr("insert car", err)
	}

	r.log.Info("Автомобиль создан", "id", created.ID)
	return &created, nil
}

func (r *mongoCarRepository) BulkInsert(ctx context.Context, cars []models.Car) (int, error) {
	if len(cars) == 0 {
		return 0, nil
	}
	docs, err := r.prepare(ctx, cars)
	if err != nil {
		return 0, err
	}

	err = r.inTransaction(ctx, func(sc mongo.SessionContext) error {
		_, err := r.coll.InsertMany(sc, docs)
		return err
	})
	if err != nil {
		return 0, wrapErr("bulk insert cars", err)
	}

	r.log.Info("Автомобили добавлены", "count", len(cars))
	return len(cars), nil
}

func (r *mongoCarRepository) ReplaceAll(ctx context.Context, cars []models.Car) (int64, error) {
	docs, err := r.prepare(ctx, cars)
	if err != nil {
		return 0, err
	}

	var deleted int64
	err = r.inTransaction(ctx, func(sc mongo.SessionContext) error {
		res, err := r.coll.DeleteMany(sc, bson.D{})
		if err != nil {
			return err
		}
		deleted = res.DeletedCount
		if len(docs) == 0 {
			return nil
		}
		_, err = r.coll.InsertMany(sc, docs)
		return err
	})
	if err != nil {
		return 0, wrapErr("replace cars", err)
	}

	r.log.Info("Автомобили заменены", "deleted", deleted, "inserted", len(cars))
	return deleted, nil
}

// prepare назначает id и временные метки копии cars.
func (r *mongoCarRepository) prepare(ctx context.Context, cars []models.Car) ([]any, error) {
	if len(cars) == 0 {
		return nil, nil
	}
	first, err := reserveIDs(ctx, r.db, carsCollection, len(cars))
	if err != nil {
		return nil, err
	}

	now := mongoNow()
	docs := make([]any, len(cars))
	for i := range cars {
		c := cars[i]
		stampCar(&c, first+int64(i), now)
		docs[i] = c
	}
	return docs, nil
}

func (r *mongoCarRepository) inTransaction(ctx context.Context, fn func(sc mongo.SessionContext) error) error {
	session, err := r.db.Client().StartSession()
	if err != nil {
		return err
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (any, error) {
		return nil, fn(sc)
	})
	return err
}

func stampCar(c *models.Car, id int64, now time.Time) {
	c.ID = id
	c.CreatedAt = now
	c.UpdatedAt = now
}

// mongoNow соответствует миллисекундной точности дат BSON.
func mongoNow() time.Time {
	return time.Now().UTC().Truncate(time.Millisecond)
}
