// Package carquery превращает необязательные параметры поиска по каталогу автомобилей
// в условия запросов к хранилищу.
//
// Каждый фильтр необязателен. Заданные фильтры объединяются через AND, отсутствующие
// ничего не добавляют. Текстовые фильтры ищут подстроку без учета регистра, а значение
// пользователя всегда сравнивается буквально. Поля сортировки берутся из закрытого списка,
// поэтому данные запроса никогда не попадают в SQL как идентификатор.
package carquery

import (
	"math"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/maynagashev/autoassist/internal/models"
)

// Границы пагинации.
const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100
	MinYear      = 1900

	// MaxPage удерживает (page-1)*limit в пределах int для любого допустимого limit.
	MaxPage = math.MaxInt / MaxLimit
)

// Поля сортировки.
const (
	SortPrice     = "price"
	SortYear      = "year"
	SortBrand     = "brand"
	SortModel     = "model"
	SortCreatedAt = "created_at"
)

// Направления сортировки.
const (
	OrderAsc  = "asc"
	OrderDesc = "desc"
)

// sortFields сопоставляет допустимые значения sort_by с полями хранилища.
var sortFields = map[string]string{
	SortPrice:     "price",
	SortYear:      "year",
	SortBrand:     "brand",
	SortModel:     "model",
	SortCreatedAt: "created_at",
}

// Options хранит параметры поиска одного запроса.
// nil-указатели и пустые строки означают отсутствие фильтра.
type Options struct {
	Page         int
	Limit        int
	Brand        string
	PriceMin     *float64
	PriceMax     *float64
	Year         *int
	FuelType     string
	Transmission string
	BodyType     string
	Search       string
	SortBy       string
	SortOrder    string
}

// FromValues читает параметры из query-строки URL.
// Значения, которые не разбираются или выходят за допустимый диапазон, считаются отсутствующими.
// Результат нормализуется.
func FromValues(v url.Values, now time.Time) Options {
	o := Options{
		Page:         parseInt(v.Get("page")),
		Limit:        parseInt(v.Get("limit")),
		Brand:        v.Get("brand"),
		FuelType:     v.Get("fuel_type"),
		Transmission: v.Get("transmission"),
		BodyType:     v.Get("body_type"),
		Search:       v.Get("search"),
		SortBy:       v.Get("sort_by"),
		SortOrder:    v.Get("sort_order"),
	}

	o.PriceMin = parsePrice(v.Get("price_min"))
	o.PriceMax = parsePrice(v.Get("price_max"))

	if year, err := strconv.Atoi(strings.TrimSpace(v.Get("year"))); err == nil &&
		year >= MinYear && year <= now.Year()+1 {
		o.Year = &year
	}

	return o.Normalize()
}

// Normalize применяет значения по умолчанию и правила подстановки:
// page < 1 становится 1, page > MaxPage становится MaxPage,
// limit вне [1, MaxLimit] заменяется значением по умолчанию или обрезается,
// неизвестное поле сортировки заменяется на created_at, неизвестное направление на desc.
func (o Options) Normalize() Options {
	switch {
	case o.Page < 1:
		o.Page = DefaultPage
	case o.Page > MaxPage:
		o.Page = MaxPage
	}
	switch {
	case o.Limit < 1:
		o.Limit = DefaultLimit
	case o.Limit > MaxLimit:
		o.Limit = MaxLimit
	}

	o.Brand = strings.TrimSpace(o.Brand)
	o.FuelType = strings.TrimSpace(o.FuelType)
	o.Transmission = strings.TrimSpace(o.Transmission)
	o.BodyType = strings.TrimSpace(o.BodyType)
	o.Search = strings.TrimSpace(o.Search)

	if o.PriceMin != nil && (*o.PriceMin < 0 || math.IsNaN(*o.PriceMin)) {
		o.PriceMin = nil
	}
	if o.PriceMax != nil && (*o.PriceMax < 0 || math.IsNaN(*o.PriceMax)) {
		o.PriceMax = nil
	}

	if _, ok := sortFields[o.SortBy]; !ok {
		o.SortBy = SortCreatedAt
	}
	if strings.EqualFold(strings.TrimSpace(o.SortOrder), OrderAsc) {
		o.SortOrder = OrderAsc
	} else {
		o.SortOrder = OrderDesc
	}
	return o
}

// Offset возвращает количество строк, пропускаемых до текущей страницы.
func (o Options) Offset() int {
	return (o.Page - 1) * o.Limit
}

// Paginate формирует блок пагинации для результата с total совпадениями.
func (o Options) Paginate(total int64) models.Pagination {
	pages := 0
	if total > 0 {
		pages = int((total + int64(o.Limit) - 1) / int64(o.Limit))
	}
	return models.Pagination{Page: o.Page, Limit: o.Limit, Total: total, Pages: pages}
}

func parseInt(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0
	}
	return n
}

func parsePrice(s string) *float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f < 0 || math.IsInf(f, 0) || math.IsNaN(f) {
		return nil
	}
	return &f
}
