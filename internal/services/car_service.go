package services

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/maynagashev/autoassist/internal/carquery"
	"github.com/maynagashev/autoassist/internal/models"
	"github.com/maynagashev/autoassist/internal/repository"
	"github.com/maynagashev/autoassist/internal/validation"
)

// CarService предоставляет каталог обработчикам и импортеру.
type CarService interface {
	Search(ctx context.Context, opts carquery.Options) (*models.CarPage, error)
	GetByID(ctx context.Context, id int64) (*models.Car, error)
	Brands(ctx context.Context) ([]string, error)
	FilterOptions(ctx context.Context) (*models.FilterOptions, error)
	Create(ctx context.Context, req *models.CreateCarRequest) (*models.Car, error)
	BulkInsert(ctx context.Context, cars []models.Car) (int, error)
	ReplaceAll(ctx context.Context, cars []models.Car) (int64, error)
}

var _ CarService = (*carService)(nil)

type carService struct {
	cars     repository.CarRepository
	validate *validation.Validator
	timeout  time.Duration
	log      *slog.Logger
}

// NewCarService создает CarService. Чтения и одиночные записи ограничены
// queryTimeout, пакетные записи следуют только контексту вызывающего.
func NewCarService(
	cars repository.CarRepository,
	validate *validation.Validator,
	queryTimeout time.Duration,
	log *slog.Logger,
) CarService {
	return &carService{cars: cars, validate: validate, timeout: queryTimeout, log: log}
}

func (s *carService) Search(ctx context.Context, opts carquery.Options) (*models.CarPage, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	opts = opts.Normalize()
	page, err := s.cars.Search(ctx, opts)
	if err != nil {
		return nil, storageErr("search cars", err)
	}
	s.log.Debug("Поиск автомобилей выполнен", "page", opts.Page, "limit", opts.Limit, "total", page.Pagination.Total)
	return page, nil
}

func (s *carService) GetByID(ctx context.Context, id int64) (*models.Car, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	car, err := s.cars.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrCarNotFound) {
			return nil, ErrCarNotFound
		}
		return nil, storageErr("get car", err)
	}
	return car, nil
}

func (s *carService) Brands(ctx context.Context) ([]string, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	brands, err := s.cars.Brands(ctx)
	if err != nil {
		return nil, storageErr("list brands", err)
	}
	return brands, nil
}

func (s *carService) FilterOptions(ctx context.Context) (*models.FilterOptions, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	opts, err := s.cars.FilterOptions(ctx)
	if err != nil {
		return nil, storageErr("filter options", err)
	}
	return opts, nil
}

// Create проверяет запрос до обращения к хранилищу.
func (s *carService) Create(ctx context.Context, req *models.CreateCarRequest) (*models.Car, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, err
	}

	car := req.ToCar()
	car.Clean()

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	created, err := s.cars.Create(ctx, car)
	if err != nil {
		return nil, storageErr("create car", err)
	}
	return created, nil
}

func (s *carService) BulkInsert(ctx context.Context, cars []models.Car) (int, error) {
	n, err := s.cars.BulkInsert(ctx, cars)
	if err != nil {
		return 0, storageErr("bulk insert", err)
	}
	return n, nil
}

func (s *carService) ReplaceAll(ctx context.Context, cars []models.Car) (int64, error) {
	deleted, err := s.cars.ReplaceAll(ctx, cars)
	if err != nil {
		return 0, storageErr("replace cars", err)
	}
	return deleted, nil
}

func (s *carService) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.timeout)
}
