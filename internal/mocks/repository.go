// Package mocks содержит testify-моки интерфейсов репозиториев, сервисов и хранилища.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/maynagashev/autoassist/internal/carquery"
	"github.com/maynagashev/autoassist/internal/models"
	"github.com/maynagashev/autoassist/internal/repository"
)

var (
	_ repository.UserRepository = (*UserRepository)(nil)
	_ repository.CarRepository  = (*CarRepository)(nil)
)

type UserRepository struct {
	mock.Mock
}

func (m *UserRepository) CreateUser(ctx context.Context, user *models.User) (*models.User, error) {
	args := m.Called(ctx, user)
	u, _ := args.Get(0).(*models.User)
	return u, args.Error(1)
}

func (m *UserRepository) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	args := m.Called(ctx, id)
	u, _ := args.Get(0).(*models.User)
	return u, args.Error(1)
}

func (m *UserRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	u, _ := args.Get(0).(*models.User)
	return u, args.Error(1)
}

func (m *UserRepository) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	args := m.Called(ctx, username)
	u, _ := args.Get(0).(*models.User)
	return u, args.Error(1)
}

type CarRepository struct {
	mock.Mock
}

func (m *CarRepository) Search(ctx context.Context, opts carquery.Options) (*models.CarPage, error) {
	args := m.Called(ctx, opts)
	p, _ := args.Get(0).(*models.CarPage)
	return p, args.Error(1)
}

func (m *CarRepository) GetByID(ctx context.Context, id int64) (*models.Car, error) {
	args := m.Called(ctx, id)
	c, _ := args.Get(0).(*models.Car)
	return c, args.Error(1)
}

func (m *CarRepository) Brands(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	b, _ := args.Get(0).([]string)
	return b, args.Error(1)
}

func (m *CarRepository) FilterOptions(ctx context.Context) (*models.FilterOptions, error) {
	args := m.Called(ctx)
	f, _ := args.Get(0).(*models.FilterOptions)
	return f, args.Error(1)
}

func (m *CarRepository) Create(ctx context.Context, car *models.Car) (*models.Car, error) {
	args := m.Called(ctx, car)
	c, _ := args.Get(0).(*models.Car)
	return c, args.Error(1)
}

func (m *CarRepository) BulkInsert(ctx context.Context, cars []models.Car) (int, error) {
	args := m.Called(ctx, cars)
	return args.Int(0), args.Error(1)
}

func (m *CarRepository) ReplaceAll(ctx context.Context, cars []models.Car) (int64, error) {
	args := m.Called(ctx, cars)
	n, _ := args.Get(0).(int64)
	return n, args.Error(1)
}
