package handlers

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-chi/chi/v5"

	"github.com/maynagashev/autoassist/internal/carquery"
	"github.com/maynagashev/autoassist/internal/middleware"
	"github.com/maynagashev/autoassist/internal/models"
	"github.com/maynagashev/autoassist/internal/response"
	"github.com/maynagashev/autoassist/internal/services"
	"github.com/maynagashev/autoassist/internal/validation"
)

const maxSearchQueryLen = 100

// CarHandler обрабатывает запросы /api/cars.
type CarHandler struct {
	service services.CarService
	rw      *response.Writer
	log     *slog.Logger
	now     func() time.Time
}

func NewCarHandler(s services.CarService, rw *response.Writer, log *slog.Logger) *CarHandler {
	return &CarHandler{service: s, rw: rw, log: log, now: time.Now}
}

// WithClock заменяет часы, ограничивающие фильтр по году.
func (h *CarHandler) WithClock(now func() time.Time) *CarHandler {
	h.now = now
	return h
}

// List возвращает страницу автомобилей, подходящих под фильтры из query-строки.
func (h *CarHandler) List(w http.ResponseWriter, r *http.Request) {
	opts := carquery.FromValues(r.URL.Query(), h.now())
	h.search(w, r, opts, func(int64) string { return "Cars retrieved successfully" })
}

// Search работает как List, но требует текстовый запрос в q.
func (h *CarHandler) Search(w http.ResponseWriter, r *http.Request) {
	q := strings.TrimSpace(r.URL.Query().Get("q"))
	switch {
	case q == "":
		h.rw.Error(w, r, validation.NewError("q", "Search query is required"))
		return
	case utf8.RuneCountInString(q) > maxSearchQueryLen:
		h.rw.Error(w, r, validation.NewError("q", "Search query must be between 1 and 100 characters"))
		return
	}

	opts := carquery.FromValues(r.URL.Query(), h.now())
	opts.Search = q
	h.search(w, r, opts, func(total int64) string {
		return fmt.Sprintf("Found %d cars matching %q", total, q)
	})
}

func (h *CarHandler) search(
	w http.ResponseWriter,
	r *http.Request,
	opts carquery.Options,
	message func(total int64) string,
) {
	page, err := h.service.Search(r.Context(), opts)
	if err != nil {
		h.rw.Error(w, r, err)
		return
	}
	items := page.Items
	if items == nil {
		items = []models.Car{}
	}
	pagination := page.Pagination
	h.rw.JSON(w, http.StatusOK, response.Envelope{
		Success:    true,
		Data:       items,
		Pagination: &pagination,
		Message:    message(page.Pagination.Total),
	})
}

// GetByID возвращает один автомобиль.
func (h *CarHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id < 1 {
		h.rw.Error(w, r, validation.NewError("id", "Car ID must be a positive integer"))
		return
	}

	car, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		h.rw.Error(w, r, err)
		return
	}
	h.rw.OK(w, car, "Car retrieved successfully")
}

// Brands возвращает список уникальных марок.
func (h *CarHandler) Brands(w http.ResponseWriter, r *http.Request) {
	brands, err := h.service.Brands(r.Context())
	if err != nil {
		h.rw.Error(w, r, err)
		return
	}
	if brands == nil {
		brands = []string{}
	}
	h.rw.OK(w, brands, "Brands retrieved successfully")
}

// Filters возвращает доступные значения каждого фильтра и диапазон цен.
func (h *CarHandler) Filters(w http.ResponseWriter, r *http.Request) {
	opts, err := h.service.FilterOptions(r.Context())
	if err != nil {
		h.rw.Error(w, r, err)
		return
	}
	h.rw.OK(w, opts, "Filter options retrieved successfully")
}

// Create сохраняет новый автомобиль. Требует аутентифицированного пользователя.
func (h *CarHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.CreateCarRequest
	if !decodeJSON(w, r, h.rw, &req) {
		return
	}

	car, err := h.service.Create(r.Context(), &req)
	if err != nil {
		h.rw.Error(w, r, err)
		return
	}

	attrs := []any{"car_id", car.ID}
	if user, ok := middleware.UserFromContext(r.Context()); ok {
		attrs = append(attrs, "user_id", user.ID)
	}
	h.log.Info("Автомобиль создан", attrs...)
	h.rw.JSON(w, http.StatusCreated, response.Envelope{
		Success: true,
		Data:    car,
		Message: "Car created successfully",
	})
}
