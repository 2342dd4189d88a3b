package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/maynagashev/autoassist/internal/carquery"
	"github.com/maynagashev/autoassist/internal/models"
	"github.com/maynagashev/autoassist/internal/services"
)

var (
	_ services.AuthService = (*AuthService)(nil)
	_ services.CarService  = (*CarService)(nil)
)

type AuthService struct {
	mock.Mock
}

func (m *AuthService) Register(ctx context.Context, req models.RegisterRequest) (*models.AuthResult, error) {
	args := m.Called(ctx, req)
	r, _ := args.Get(0).(*models.AuthResult)
	return r, args.Error(1)
}

func (m *AuthService) Login(ctx context.Context, req models.LoginRequest) (*models.AuthResult, error) {
	args := m.Called(ctx, req)
	r, _ := args.Get(0).(*models.AuthResult)
	return r, args.Error(1)
}

func (m *AuthService) Verify(ctx context.Context, token string) (*models.User, error) {
	args := m.Called(ctx, token)
	u, _ := args.Get(0).(*models.User)
	return u, args.Error(1)
}

type CarService struct {
	mock.Mock
}

func (m *CarService) Search(ctx context.Context, opts carquery.Options) (*models.CarPage, error) {
	args := m.Called(ctx, opts)
	p, _ := args.Get(0).(*models.CarPage)
	return p, args.Error(1)
}

func (m *CarService) GetByID(ctx context.Context, id int64) (*models.Car, error) {
	args := m.Called(ctx, id)
	c, _ := args.Get(0).(*models.Car)
	return c, args.Error(1)
}

func (m *CarService) Brands(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	b, _ := args.Get(0).([]string)
	return b, args.Error(1)
}

func (m *CarService) FilterOptions(ctx context.Context) (*models.FilterOptions, error) {
	args := m.Called(ctx)
	f, _ := args.Get(0).(*models.FilterOptions)
	return f, args.Error(1)
}

func (m *CarService) Create(ctx context.Context, req *models.CreateCarRequest) (*models.Car, error) {
	args := m.Called(ctx, req)
	c, _ := args.Get(0).(*models.Car)
	return c, args.Error(1)
}

func (m *CarService) BulkInsert(ctx context.Context, cars []models.Car) (int, error) {
	args := m.Called(ctx, cars)
	return args.Int(0), args.Error(1)
}

func (m *CarService) ReplaceAll(ctx context.Context, cars []models.Car) (int64, error) {
	args := m.Called(ctx, cars)
	n, _ := args.Get(0).(int64)
	return n, args.Error(1)
}
