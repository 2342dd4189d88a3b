package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"

	"github.com/maynagashev/autoassist/internal/carquery"
	"github.com/maynagashev/autoassist/internal/models"
)

const (
	carsTable  = "cars"
	carColumns = "id, brand, model, variant, year, price, fuel_type, transmission, mileage, " +
		"engine_cc, power_bhp, seats, body_type, image_url, description, created_at, updated_at"
	insertCarSQL = `INSERT INTO cars (brand, model, variant, year, price, fuel_type, transmission, mileage,
	engine_cc, power_bhp, seats, body_type, image_url, description)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`
)

// filterColumns это текстовые колонки для вариантов фильтров в порядке ответа.
var filterColumns = []string{"brand", "fuel_type", "transmission", "body_type"}

// CarRepository определяет методы для работы с объявлениями об автомобилях.
type CarRepository interface {
	Search(ctx context.Context, opts carquery.Options) (*models.CarPage, error)
	GetByID(ctx context.Context, id int64) (*models.Car, error)
	Brands(ctx context.Context) ([]string, error)
	FilterOptions(ctx context.Context) (*models.FilterOptions, error)
	Create(ctx context.Context, car *models.Car) (*models.Car, error)
	// BulkInsert сохраняет либо все автомобили, либо ни одного.
	BulkInsert(ctx context.Context, cars []models.Car) (int, error)
	// ReplaceAll удаляет все сохраненные автомобили и вставляет cars в той же транзакции.
	// Возвращает количество удаленных строк.
	ReplaceAll(ctx context.Context, cars []models.Car) (int64, error)
}

var _ CarRepository = (*postgresCarRepository)(nil)

type postgresCarRepository struct {
	db  *sqlx.DB
	log *slog.Logger
}

// NewPostgresCarRepository создает CarRepository для PostgreSQL.
func NewPostgresCarRepository(db *sqlx.DB, log *slog.Logger) CarRepository {
	return &postgresCarRepository{db: db, log: log}
}

// Search выполняет подсчет и выборку страницы в одном снимке только для чтения,
// total всегда описывает те же данные, что и items.
func (r *postgresCarRepository) Search(ctx context.Context, opts carquery.Options) (*models.CarPage, error) {
	opts = opts.Normalize()

	tx, err := r.db.BeginTxx(ctx, &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true})
	if err != nil {
		return nil, wrapErr("begin search", err)
	}
	defer tx.Rollback() //nolint:errcheck // после коммита ничего не делает

	countQuery, countArgs := carquery.CountQuery(carsTable, opts)
	var total int64
	if err = tx.GetContext(ctx, &total, countQuery, countArgs...); err != nil {
		r.log.Error("Ошибка подсчета автомобилей", "error", err)
		return nil, wrapErr("count cars", err)
	}

	pageQuery, pageArgs := carquery.PageQuery(carsTable, carColumns, opts)
	items := make([]models.Car, 0, opts.Limit)
	if err = tx.SelectContext(ctx, &items, pageQuery, pageArgs...); err != nil {
		r.log.Error("Ошибка выборки автомобилей", "error", err)
		return nil, wrapErr("select cars", err)
	}

	if err = tx.Commit(); err != nil {
		return nil, wrapErr("commit search", err)
	}

	r.log.Debug("Поиск автомобилей выполнен", "total", total, "page", opts.Page, "returned", len(items))
	return &models.CarPage{Items: items, Pagination: opts.Paginate(total)}, nil
}

func (r *postgresCarRepository) GetByID(ctx context.Context, id int64) (*models.Car, error) {
	query := `SELECT ` + carColumns + ` FROM cars WHERE id = $1`

	var car models.Car
	if err := r.db.GetContext(ctx, &car, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCarNotFound
		}
		r.log.Error("Ошибка получения автомобиля", "id", id, "error", err)
		return nil, wrapErr("get car", err)
	}
	return &car, nil
}

func (r *postgresCarRepository) Brands(ctx context.Context) ([]string, error) {
	brands := []string{}
	if err := r.db.SelectContext(ctx, &brands, `SELECT DISTINCT brand FROM cars ORDER BY brand`); err != nil {
		return nil, wrapErr("list brands", err)
	}
	return brands, nil
}

// FilterOptions собирает все агрегаты внутри одной транзакции только для чтения.
func (r *postgresCarRepository) FilterOptions(ctx context.Context) (*models.FilterOptions, error) {
	tx, err := r.db.BeginTxx(ctx, &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true})
	if err != nil {
		return nil, wrapErr("begin filter options", err)
	}
	defer tx.Rollback() //nolint:errcheck // после коммита ничего не делает

	values := make(map[string][]string, len(filterColumns))
	for _, col := range filterColumns {
		query := fmt.Sprintf(
			`SELECT DISTINCT %[1]s FROM cars WHERE %[1]s IS NOT NULL AND %[1]s <> '' ORDER BY %[1]s`, col)
		list := []string{}
		if err = tx.SelectContext(ctx, &list, query); err != nil {
			return nil, wrapErr("distinct "+col, err)
		}
		values[col] = list
	}

	years := []int{}
	if err = tx.SelectContext(ctx, &years, `SELECT DISTINCT year FROM cars ORDER BY year DESC`); err != nil {
		return nil, wrapErr("distinct year", err)
	}

	var prices models.PriceRange
	err = tx.GetContext(ctx, &prices,
		`SELECT COALESCE(MIN(price), 0) AS min_price, COALESCE(MAX(price), 0) AS max_price FROM cars`)
	if err != nil {
		return nil, wrapErr("price range", err)
	}

	if err = tx.Commit(); err != nil {
		return nil, wrapErr("commit filter options", err)
	}

	return &models.FilterOptions{
		Brands:        values["brand"],
		FuelTypes:     values["fuel_type"],
		Transmissions: values["transmission"],
		BodyTypes:     values["body_type"],
		Years:         years,
		PriceRange:    prices,
	}, nil
}

func (r *postgresCarRepository) Create(ctx context.Context, car *models.Car) (*models.Car, error) {
	query := insertCarSQL + ` RETURNING id, created_at, updated_at`

	created := *car
	err := r.db.QueryRowxContext(ctx, query, carArgs(car)...).
		Scan(&created.ID, &created.CreatedAt, &created.UpdatedAt)
	if err != nil {
		r.log.Error("Ошибка добавления автомобиля", "brand", car.Brand, "model", car.Model, "error", err)
		return nil, wrapErr("insert car", err)
	}

	r.log.Info("Автомобиль создан", "id", created.ID)
	return &created, nil
}

func (r *postgresCarRepository) BulkInsert(ctx context.Context, cars []models.Car) (int, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, wrapErr("begin bulk insert", err)
	}
	defer tx.Rollback() //nolint:errcheck // после коммита ничего не делает

	if err = insertCars(ctx, tx, cars); err != nil {
		return 0, err
	}
	if err = tx.Commit(); err != nil {
		return 0, wrapErr("commit bulk insert", err)
	}

	r.log.Info("Автомобили добавлены", "count", len(cars))
	return len(cars), nil
}

func (r *postgresCarRepository) ReplaceAll(ctx context.Context, cars []models.Car) (int64, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, wrapErr("begin replace", err)
	}
	defer tx.Rollback() //nolint:errcheck // после коммита ничего не делает

	res, err := tx.ExecContext(ctx, `DELETE FROM cars`)
	if err != nil {
		return 0, wrapErr("delete cars", err)
	}
	deleted, err := res.RowsAffected()
	if err != nil {
		return 0, wrapErr("delete cars", err)
	}

	if err = insertCars(ctx, tx, cars); err != nil {
		return 0, err
	}
	if err = tx.Commit(); err != nil {
		return 0, wrapErr("commit replace", err)
	}

	r.log.Info("Автомобили заменены", "deleted", deleted, "inserted", len(cars))
	return deleted, nil
}

func insertCars(ctx context.Context, tx *sqlx.Tx, cars []models.Car) error {
	stmt, err := tx.PreparexContext(ctx, insertCarSQL)
	if err != nil {
		return wrapErr("prepare insert", err)
	}
	defer stmt.Close()

	for i := range cars {
		if _, err = stmt.ExecContext(ctx, carArgs(&cars[i])...); err != nil {
			return wrapErr(fmt.Sprintf("insert car %d", i), err)
		}
	}
	return nil
}

func carArgs(c *models.Car) []any {
	return []any{
		c.Brand, c.Model, c.Variant, c.Year, c.Price, c.FuelType, c.Transmission, c.Mileage,
		c.EngineCC, c.PowerBHP, c.Seats, c.BodyType, c.ImageURL, c.Description,
	}
}
