package repository_test

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maynagashev/autoassist/internal/carquery"
	"github.com/maynagashev/autoassist/internal/logging"
	"github.com/maynagashev/autoassist/internal/models"
	"github.com/maynagashev/autoassist/internal/repository"
)

var carColumns = []string{
	"id", "brand", "model", "variant", "year", "price", "fuel_type", "transmission", "mileage",
	"engine_cc", "power_bhp", "seats", "body_type", "image_url", "description", "created_at", "updated_at",
}

const selectCars = "SELECT id, brand, model, variant, year, price, fuel_type, transmission, mileage, " +
	"engine_cc, power_bhp, seats, body_type, image_url, description, created_at, updated_at FROM cars"

const insertCar = `INSERT INTO cars (brand, model, variant, year, price, fuel_type, transmission, mileage,
	engine_cc, power_bhp, seats, body_type, image_url, description)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`

func setupCarRepoMock(t *testing.T) (repository.CarRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return repository.NewPostgresCarRepository(sqlx.NewDb(db, "sqlmock"), logging.Discard()), mock
}

func strPtr(s string) *string { return &s }

func carRow(rows *sqlmock.Rows, id int64, brand, model string, year int, price float64, now time.Time) *sqlmock.Rows {
	return rows.AddRow(id, brand, model, nil, year, price, "Petrol", "Manual", nil,
		nil, nil, int64(5), "Hatchback", nil, nil, now, now)
}

func TestCarSearch(t *testing.T) {
	now := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)
	repo, mock := setupCarRepoMock(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(*) FROM cars WHERE brand ILIKE $1 AND year = $2`)).
		WithArgs("%maru%", 2020).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(int64(3)))
	rows := sqlmock.NewRows(carColumns)
	carRow(rows, 2, "Maruti", "Swift", 2020, 650000, now)
	carRow(rows, 1, "Maruti", "Baleno", 2020, 700000, now)
	mock.ExpectQuery(regexp.QuoteMeta(selectCars+` WHERE brand ILIKE $1 AND year = $2 ORDER BY price ASC, id ASC LIMIT $3 OFFSET $4`)).
		WithArgs("%maru%", 2020, 2, 0).
		WillReturnRows(rows)
	mock.ExpectCommit()

	year := 2020
	page, err := repo.Search(context.Background(), carquery.Options{
		Brand: "maru", Year: &year, Limit: 2, SortBy: "price", SortOrder: "asc",
	})
	require.NoError(t, err)

	require.Len(t, page.Items, 2)
	assert.Equal(t, "Swift", page.Items[0].Model)
	assert.Nil(t, page.Items[0].Variant)
	require.NotNil(t, page.Items[0].FuelType)
	assert.Equal(t, "Petrol", *page.Items[0].FuelType)
	require.NotNil(t, page.Items[0].Seats)
	assert.Equal(t, 5, *page.Items[0].Seats)
	assert.Equal(t, models.Pagination{Page: 1, Limit: 2, Total: 3, Pages: 2}, page.Pagination)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCarSearch_Empty(t *testing.T) {
	repo, mock := setupCarRepoMock(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(*) FROM cars WHERE price >= $1 AND price <= $2`)).
		WithArgs(900.0, 100.0).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(int64(0)))
	mock.ExpectQuery(regexp.QuoteMeta(selectCars + ` WHERE price >= $1 AND price <= $2 ORDER BY created_at DESC, id DESC LIMIT $3 OFFSET $4`)).
		WithArgs(900.0, 100.0, 10, 0).
		WillReturnRows(sqlmock.NewRows(carColumns))
	mock.ExpectCommit()

	lo, hi := 900.0, 100.0
	page, err := repo.Search(context.Background(), carquery.Options{PriceMin: &lo, PriceMax: &hi})
	require.NoError(t, err)

	assert.NotNil(t, page.Items)
	assert.Empty(t, page.Items)
	assert.Equal(t, models.Pagination{Page: 1, Limit: 10, Total: 0, Pages: 0}, page.Pagination)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCarSearch_Unavailable(t *testing.T) {
	repo, mock := setupCarRepoMock(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(*) FROM cars WHERE TRUE`)).
		WillReturnError(&pq.Error{Code: "57P03"})
	mock.ExpectRollback()

	_, err := repo.Search(context.Background(), carquery.Options{})
	require.ErrorIs(t, err, repository.ErrUnavailable)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCarSearch_BeginTimeout(t *testing.T) {
	repo, mock := setupCarRepoMock(t)
	mock.ExpectBegin().WillReturnError(context.DeadlineExceeded)

	_, err := repo.Search(context.Background(), carquery.Options{})
	require.ErrorIs(t, err, repository.ErrUnavailable)
}

func TestCarGetByID(t *testing.T) {
	now := time.Now().UTC()
	query := regexp.QuoteMeta(selectCars + ` WHERE id = $1`)

	t.Run("found", func(t *testing.T) {
		repo, mock := setupCarRepoMock(t)
		mock.ExpectQuery(query).WithArgs(int64(5)).
			WillReturnRows(carRow(sqlmock.NewRows(carColumns), 5, "Honda", "City", 2019, 900000, now))

		car, err := repo.GetByID(context.Background(), 5)
		require.NoError(t, err)
		assert.Equal(t, int64(5), car.ID)
		assert.Equal(t, "Honda", car.Brand)
		assert.InDelta(t, 900000, car.Price, 0.001)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not found", func(t *testing.T) {
		repo, mock := setupCarRepoMock(t)
		mock.ExpectQuery(query).WithArgs(int64(99)).WillReturnRows(sqlmock.NewRows(carColumns))

		car, err := repo.GetByID(context.Background(), 99)
		require.ErrorIs(t, err, repository.ErrCarNotFound)
		assert.Nil(t, car)
	})
}

func TestCarBrands(t *testing.T) {
	repo, mock := setupCarRepoMock(t)
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT DISTINCT brand FROM cars ORDER BY brand`)).
		WillReturnRows(sqlmock.NewRows([]string{"brand"}).AddRow("Honda").AddRow("Maruti"))

	brands, err := repo.Brands(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"Honda", "Maruti"}, brands)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCarFilterOptions(t *testing.T) {
	repo, mock := setupCarRepoMock(t)

	mock.ExpectBegin()
	distinct := func(col string, vals ...string) {
		rows := sqlmock.NewRows([]string{col})
		for _, v := range vals {
			rows.AddRow(v)
		}
		mock.ExpectQuery(regexp.QuoteMeta(
			`SELECT DISTINCT ` + col + ` FROM cars WHERE ` + col + ` IS NOT NULL AND ` + col + ` <> '' ORDER BY ` + col)).
			WillReturnRows(rows)
	}
	distinct("brand", "Honda", "Tata")
	distinct("fuel_type", "Diesel", "Petrol")
	distinct("transmission", "Manual")
	distinct("body_type")
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT DISTINCT year FROM cars ORDER BY year DESC`)).
		WillReturnRows(sqlmock.NewRows([]string{"year"}).AddRow(int64(2024)).AddRow(int64(2019)))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT COALESCE(MIN(price), 0) AS min_price, COALESCE(MAX(price), 0) AS max_price FROM cars`)).
		WillReturnRows(sqlmock.NewRows([]string{"min_price", "max_price"}).AddRow(350000.0, 2500000.0))
	mock.ExpectCommit()

	opts, err := repo.FilterOptions(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"Honda", "Tata"}, opts.Brands)
	assert.Equal(t, []string{"Diesel", "Petrol"}, opts.FuelTypes)
	assert.Equal(t, []string{"Manual"}, opts.Transmissions)
	assert.Equal(t, []string{}, opts.BodyTypes)
	assert.Equal(t, []int{2024, 2019}, opts.Years)
	assert.Equal(t, models.PriceRange{MinPrice: 350000, MaxPrice: 2500000}, opts.PriceRange)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCarCreate(t *testing.T) {
	now := time.Now().UTC()
	repo, mock := setupCarRepoMock(t)

	mock.ExpectQuery(regexp.QuoteMeta(insertCar+` RETURNING id, created_at, updated_at`)).
		WithArgs("Tata", "Nexon", "XZ", 2023, 1200000.0, "Diesel", nil, nil, nil, nil, nil, "SUV", nil, nil).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(int64(42), now, now))

	in := &models.Car{
		Brand: "Tata", Model: "Nexon", Variant: strPtr("XZ"), Year: 2023, Price: 1200000,
		FuelType: strPtr("Diesel"), BodyType: strPtr("SUV"),
	}
	car, err := repo.Create(context.Background(), in)
	require.NoError(t, err)

	assert.Equal(t, int64(42), car.ID)
	assert.Equal(t, now, car.CreatedAt)
	assert.Equal(t, int64(0), in.ID, "input must not be modified")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func sampleCars(n int) []models.Car {
	cars := make([]models.Car, n)
	for i := range cars {
		cars[i] = models.Car{Brand: "Maruti", Model: "Alto", Year: 2018, Price: 300000}
	}
	return cars
}

func anyArgs() []any {
	args := make([]any, 14)
	for i := range args {
		args[i] = sqlmock.AnyArg()
	}
	return args
}

func TestCarBulkInsert(t *testing.T) {
	t.Run("all rows committed", func(t *testing.T) {
		repo, mock := setupCarRepoMock(t)

		mock.ExpectBegin()
		prep := mock.ExpectPrepare(regexp.QuoteMeta(insertCar))
		for i := 0; i < 3; i++ {
			prep.ExpectExec().WithArgs(anyArgs()...).WillReturnResult(sqlmock.NewResult(int64(i+1), 1))
		}
		mock.ExpectCommit()

		n, err := repo.BulkInsert(context.Background(), sampleCars(3))
		require.NoError(t, err)
		assert.Equal(t, 3, n)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("failure rolls back everything", func(t *testing.T) {
		repo, mock := setupCarRepoMock(t)

		mock.ExpectBegin()
		prep := mock.ExpectPrepare(regexp.QuoteMeta(insertCar))
		prep.ExpectExec().WithArgs(anyArgs()...).WillReturnResult(sqlmock.NewResult(1, 1))
		prep.ExpectExec().WithArgs(anyArgs()...).WillReturnError(errors.New("check constraint"))
		mock.ExpectRollback()

		n, err := repo.BulkInsert(context.Background(), sampleCars(3))
		require.Error(t, err)
		assert.Equal(t, 0, n)
		assert.Contains(t, err.Error(), "insert car 1")
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestCarReplaceAll(t *testing.T) {
	repo, mock := setupCarRepoMock(t)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM cars`)).WillReturnResult(sqlmock.NewResult(0, 4))
	prep := mock.ExpectPrepare(regexp.QuoteMeta(insertCar))
	prep.ExpectExec().WithArgs(anyArgs()...).WillReturnResult(sqlmock.NewResult(1, 1))
	prep.ExpectExec().WithArgs(anyArgs()...).WillReturnResult(sqlmock.NewResult(2, 1))
	mock.ExpectCommit()

	deleted, err := repo.ReplaceAll(context.Background(), sampleCars(2))
	require.NoError(t, err)
	assert.Equal(t, int64(4), deleted)
	assert.NoError(t, mock.ExpectationsWereMet())
}
