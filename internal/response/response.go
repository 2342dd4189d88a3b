// Package response пишет общий для всех эндпоинтов JSON-конверт:
//
//	{success, data?, error?, details?, pagination?, message?, stack?}
package response

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/maynagashev/autoassist/internal/models"
	"github.com/maynagashev/autoassist/internal/services"
	"github.com/maynagashev/autoassist/internal/validation"
)

// RetryAfterSeconds отправляется вместе с ответами 503.
const RetryAfterSeconds = 5

// Сообщения об ошибках для клиентов.
const (
	MsgValidationFailed   = "Validation failed"
	MsgInvalidBody        = "Invalid request body"
	MsgEmailTaken         = "User with this email already exists"
	MsgUsernameTaken      = "Username already taken"
	MsgInvalidCredentials = "Invalid email or password"
	MsgInvalidToken       = "Invalid or expired token"
	MsgCarNotFound        = "Car not found"
	MsgTooManyRequests    = "Too many requests, please try again later"
	MsgUnavailable        = "Service temporarily unavailable, please retry"
	MsgTooLarge           = "Request entity too large"
	MsgServerError        = "Server Error"
)

type Envelope struct {
	Success    bool                    `json:"success"`
	Data       any                     `json:"data,omitempty"`
	Error      string                  `json:"error,omitempty"`
	Details    []validation.FieldError `json:"details,omitempty"`
	Pagination *models.Pagination      `json:"pagination,omitempty"`
	Message    string                  `json:"message,omitempty"`
	Stack      string                  `json:"stack,omitempty"`
}

// Writer формирует конверты. При exposeErrors ответы 500 содержат
// цепочку ошибок в поле stack.
type Writer struct {
	log          *slog.Logger
	exposeErrors bool
}

func NewWriter(log *slog.Logger, exposeErrors bool) *Writer {
	return &Writer{log: log, exposeErrors: exposeErrors}
}

// JSON пишет env с указанным статусом.
func (rw *Writer) JSON(w http.ResponseWriter, status int, env Envelope) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(env); err != nil {
		rw.log.Error("Ошибка кодирования ответа", "error", err)
	}
}

// OK пишет успешный конверт со статусом 200.
func (rw *Writer) OK(w http.ResponseWriter, data any, message string) {
	rw.JSON(w, http.StatusOK, Envelope{Success: true, Data: data, Message: message})
}

// Fail пишет конверт ошибки с заданным сообщением.
func (rw *Writer) Fail(w http.ResponseWriter, status int, message string) {
	rw.JSON(w, status, Envelope{Success: false, Error: message})
}

// Error сопоставляет err статус и безопасное для клиента сообщение.
// Неизвестные ошибки логируются, ответ 500.
func (rw *Writer) Error(w http.ResponseWriter, r *http.Request, err error) {
	var verr *validation.Error
	switch {
	case errors.As(err, &verr):
		rw.JSON(w, http.StatusBadRequest, Envelope{Error: MsgValidationFailed, Details: verr.Fields})
	case errors.Is(err, services.ErrEmailTaken):
		rw.Fail(w, http.StatusBadRequest, MsgEmailTaken)
	case errors.Is(err, services.ErrUsernameTaken):
		rw.Fail(w, http.StatusBadRequest, MsgUsernameTaken)
	case errors.Is(err, services.ErrInvalidCredentials):
		rw.Fail(w, http.StatusUnauthorized, MsgInvalidCredentials)
	case errors.Is(err, services.ErrInvalidToken):
		rw.Fail(w, http.StatusUnauthorized, MsgInvalidToken)
	case errors.Is(err, services.ErrCarNotFound):
		rw.Fail(w, http.StatusNotFound, MsgCarNotFound)
	case errors.Is(err, services.ErrStorageUnavailable):
		rw.log.Warn("Хранилище недоступно", "path", r.URL.Path, "error", err)
		w.Header().Set("Retry-After", strconv.Itoa(RetryAfterSeconds))
		rw.Fail(w, http.StatusServiceUnavailable, MsgUnavailable)
	default:
		rw.log.Error("Ошибка обработки запроса", "method", r.Method, "path", r.URL.Path, "error", err)
		env := Envelope{Error: MsgServerError}
		if rw.exposeErrors {
			env.Stack = err.Error()
		}
		rw.JSON(w, http.StatusInternalServerError, env)
	}
}
