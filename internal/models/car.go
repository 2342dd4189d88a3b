package models

import (
	"strings"
	"time"
)

// Car это одно объявление в каталоге.
// Одни и те же имена полей используются в колонках PostgreSQL, документах MongoDB и JSON,
// между хранилищем и API нет слоя преобразования.
// Необязательные атрибуты это указатели: NULL в базе, null в JSON.
type Car struct {
	ID           int64     `db:"id" json:"id" bson:"_id"`
	Brand        string    `db:"brand" json:"brand" bson:"brand"`
	Model        string    `db:"model" json:"model" bson:"model"`
	Variant      *string   `db:"variant" json:"variant" bson:"variant"`
	Year         int       `db:"year" json:"year" bson:"year"`
	Price        float64   `db:"price" json:"price" bson:"price"`
	FuelType     *string   `db:"fuel_type" json:"fuel_type" bson:"fuel_type"`
	Transmission *string   `db:"transmission" json:"transmission" bson:"transmission"`
	Mileage      *string   `db:"mileage" json:"mileage" bson:"mileage"`
	EngineCC     *string   `db:"engine_cc" json:"engine_cc" bson:"engine_cc"`
	PowerBHP     *string   `db:"power_bhp" json:"power_bhp" bson:"power_bhp"`
	Seats        *int      `db:"seats" json:"seats" bson:"seats"`
	BodyType     *string   `db:"body_type" json:"body_type" bson:"body_type"`
	ImageURL     *string   `db:"image_url" json:"image_url" bson:"image_url"`
	Description  *string   `db:"description" json:"description" bson:"description"`
	CreatedAt    time.Time `db:"created_at" json:"created_at" bson:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at" bson:"updated_at"`
}

// Clean обрезает пробелы в текстовых полях и заменяет пустые необязательные значения на nil.
func (c *Car) Clean() {
	c.Brand = strings.TrimSpace(c.Brand)
	c.Model = strings.TrimSpace(c.Model)
	for _, f := range []**string{
		&c.Variant, &c.FuelType, &c.Transmission, &c.Mileage, &c.EngineCC,
		&c.PowerBHP, &c.BodyType, &c.ImageURL, &c.Description,
	} {
		*f = cleanString(*f)
	}
}

func cleanString(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

// Pagination описывает одну страницу результата поиска.
type Pagination struct {
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
	Pages int   `json:"pages"`
}

// CarPage это результат поиска автомобилей.
type CarPage struct {
	Items      []Car      `json:"items"`
	Pagination Pagination `json:"pagination"`
}

// PriceRange хранит общую минимальную и максимальную цену.
type PriceRange struct {
	MinPrice float64 `db:"min_price" json:"min_price" bson:"min_price"`
	MaxPrice float64 `db:"max_price" json:"max_price" bson:"max_price"`
}

// FilterOptions перечисляет значения, по которым можно фильтровать каталог.
// JSON-ключи соответствуют контракту, который уже использует фронтенд.
type FilterOptions struct {
	Brands        []string   `json:"brands"`
	FuelTypes     []string   `json:"fuelTypes"`
	Transmissions []string   `json:"transmissions"`
	BodyTypes     []string   `json:"bodyTypes"`
	Years         []int      `json:"years"`
	PriceRange    PriceRange `json:"priceRange"`
}

// CreateCarRequest это тело запроса POST /api/cars.
type CreateCarRequest struct {
	Brand        string   `json:"brand" validate:"required,max=100"`
	Model        string   `json:"model" validate:"required,max=100"`
	Variant      *string  `json:"variant" validate:"omitempty,max=200"`
	Year         int      `json:"year" validate:"required,caryear"`
	Price        *float64 `json:"price" validate:"required,gte=0"`
	FuelType     *string  `json:"fuel_type" validate:"omitempty,max=50"`
	Transmission *string  `json:"transmission" validate:"omitempty,max=50"`
	Mileage      *string  `json:"mileage" validate:"omitempty,max=50"`
	EngineCC     *string  `json:"engine_cc" validate:"omitempty,max=50"`
	PowerBHP     *string  `json:"power_bhp" validate:"omitempty,max=50"`
	Seats        *int     `json:"seats" validate:"omitempty,min=1,max=50"`
	BodyType     *string  `json:"body_type" validate:"omitempty,max=50"`
	ImageURL     *string  `json:"image_url" validate:"omitempty,max=500"`
	Description  *string  `json:"description"`
}

// ToCar преобразует запрос в Car, готовый к сохранению.
func (r *CreateCarRequest) ToCar() *Car {
	car := &Car{
		Brand:        r.Brand,
		Model:        r.Model,
		Variant:      r.Variant,
		Year:         r.Year,
		FuelType:     r.FuelType,
		Transmission: r.Transmission,
		Mileage:      r.Mileage,
		EngineCC:     r.EngineCC,
		PowerBHP:     r.PowerBHP,
		Seats:        r.Seats,
		BodyType:     r.BodyType,
		ImageURL:     r.ImageURL,
		Description:  r.Description,
	}
	if r.Price != nil {
		car.Price = *r.Price
	}
	return car
}
