package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/maynagashev/autoassist/internal/response"
)

// APIVersion отдается индексным эндпоинтом.
const APIVersion = "1.0.0"

const pingTimeout = 2 * time.Second

// Pinger проверяет доступность хранилища.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler обрабатывает эндпоинты проверки состояния и индекса.
type HealthHandler struct {
	storage Pinger
	env     string
	rw      *response.Writer
	log     *slog.Logger
	now     func() time.Time
}

func NewHealthHandler(storage Pinger, env string, rw *response.Writer, log *slog.Logger) *HealthHandler {
	return &HealthHandler{storage: storage, env: env, rw: rw, log: log, now: time.Now}
}

type healthData struct {
	Status      string    `json:"status"`
	Storage     string    `json:"storage"`
	Timestamp   time.Time `json:"timestamp"`
	Environment string    `json:"environment"`
}

// Health отвечает 200, пока хранилище отвечает на ping, и 503 в остальных случаях.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), pingTimeout)
	defer cancel()

	data := healthData{Status: "ok", Storage: "up", Timestamp: h.now().UTC(), Environment: h.env}
	if err := h.storage.Ping(ctx); err != nil {
		h.log.Warn("Хранилище не отвечает на ping", "error", err)
		data.Status, data.Storage = "degraded", "down"
		w.Header().Set("Retry-After", strconv.Itoa(response.RetryAfterSeconds))
		h.rw.JSON(w, http.StatusServiceUnavailable, response.Envelope{
			Data:  data,
			Error: response.MsgUnavailable,
		})
		return
	}
	h.rw.OK(w, data, "AutoAssist Backend is running")
}

type indexData struct {
	Version   string            `json:"version"`
	Endpoints map[string]string `json:"endpoints"`
}

// Index описывает API для / и /api.
func (h *HealthHandler) Index(w http.ResponseWriter, _ *http.Request) {
	h.rw.OK(w, indexData{
		Version: APIVersion,
		Endpoints: map[string]string{
			"auth":   "/api/auth",
			"cars":   "/api/cars",
			"health": "/health",
		},
	}, "Welcome to AutoAssist Backend API")
}

// Ping отвечает простым "pong".
func (h *HealthHandler) Ping(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("pong"))
}
