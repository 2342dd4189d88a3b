package repository_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maynagashev/autoassist/internal/carquery"
	"github.com/maynagashev/autoassist/internal/config"
	"github.com/maynagashev/autoassist/internal/logging"
	"github.com/maynagashev/autoassist/internal/models"
	"github.com/maynagashev/autoassist/internal/repository"
)

func storageConfig(driver string) config.StorageConfig {
	return config.StorageConfig{
		Driver:          driver,
		DatabaseDSN:     os.Getenv("DATABASE_DSN"),
		MongoURI:        os.Getenv("MONGO_URI"),
		MongoDatabase:   "autoassist_test",
		MaxOpenConns:    5,
		MaxIdleConns:    2,
		ConnMaxLifetime: time.Minute,
		ConnMaxIdleTime: 30 * time.Second,
		QueryTimeout:    5 * time.Second,
	}
}

func TestOpen_InvalidDSN(t *testing.T) {
	cfg := storageConfig(config.DriverPostgres)
	cfg.DatabaseDSN = "definitely not a dsn"

	m, err := repository.Open(context.Background(), cfg, logging.Discard())
	require.Error(t, err)
	assert.Nil(t, m)
}

func TestOpen_UnknownDriver(t *testing.T) {
	_, err := repository.Open(context.Background(), storageConfig("sqlite"), logging.Discard())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown storage driver")
}

// TestStorageIntegration прогоняет один сценарий на каждом доступном хранилище.
func TestStorageIntegration(t *testing.T) {
	backends := map[string]string{
		config.DriverPostgres: "DATABASE_DSN",
		config.DriverMongo:    "MONGO_URI",
	}

	for driver, envKey := range backends {
		t.Run(driver, func(t *testing.T) {
			if os.Getenv(envKey) == "" {
				t.Skipf("%s is not set", envKey)
			}
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			m, err := repository.Open(ctx, storageConfig(driver), logging.Discard())
			require.NoError(t, err)
			defer func() { _ = m.Close(ctx) }()
			require.NoError(t, m.Ping(ctx))

			petrol := "Petrol"
			cars := []models.Car{
				{Brand: "Maruti", Model: "Swift", Year: 2020, Price: 650000, FuelType: &petrol},
				{Brand: "Maruti", Model: "Baleno", Year: 2021, Price: 750000},
				{Brand: "Honda", Model: "City 100%", Year: 2020, Price: 1100000},
			}
			_, err = m.Cars().ReplaceAll(ctx, cars)
			require.NoError(t, err)

			year := 2020
			page, err := m.Cars().Search(ctx, carquery.Options{Brand: "maru", Year: &year})
			require.NoError(t, err)
			require.Len(t, page.Items, 1)
			assert.Equal(t, "Swift", page.Items[0].Model)
			assert.Equal(t, int64(1), page.Pagination.Total)

			page, err = m.Cars().Search(ctx, carquery.Options{Search: "100%"})
			require.NoError(t, err)
			require.Len(t, page.Items, 1)
			assert.Equal(t, "Honda", page.Items[0].Brand)

			page, err = m.Cars().Search(ctx, carquery.Options{Search: "%"})
			require.NoError(t, err)
			assert.Len(t, page.Items, 1, "percent sign must match literally")

			brands, err := m.Cars().Brands(ctx)
			require.NoError(t, err)
			assert.Equal(t, []string{"Honda", "Maruti"}, brands)

			opts, err := m.Cars().FilterOptions(ctx)
			require.NoError(t, err)
			assert.Equal(t, []int{2021, 2020}, opts.Years)
			assert.Equal(t, []string{"Petrol"}, opts.FuelTypes)
			assert.InDelta(t, 650000, opts.PriceRange.MinPrice, 0.01)
			assert.InDelta(t, 1100000, opts.PriceRange.MaxPrice, 0.01)

			suffix := time.Now().Format("150405.000000")
			user := &models.User{Username: "it_" + suffix[:6] + suffix[7:], Email: "it" + suffix + "@example.com", PasswordHash: "h"}
			created, err := m.Users().CreateUser(ctx, user)
			require.NoError(t, err)

			_, err = m.Users().CreateUser(ctx, &models.User{Username: "other" + suffix[7:], Email: user.Email, PasswordHash: "h"})
			require.ErrorIs(t, err, repository.ErrEmailTaken)

			found, err := m.Users().GetUserByID(ctx, created.ID)
			require.NoError(t, err)
			assert.Equal(t, user.Email, found.Email)
		})
	}
}
