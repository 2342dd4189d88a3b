// Package handlers реализует HTTP-эндпоинты поверх сервисов.
package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/maynagashev/autoassist/internal/middleware"
	"github.com/maynagashev/autoassist/internal/response"
)

// decodeJSON читает тело запроса в dst. При непригодном теле сама отвечает
// на запрос и возвращает false.
func decodeJSON(w http.ResponseWriter, r *http.Request, rw *response.Writer, dst any) bool {
	err := json.NewDecoder(r.Body).Decode(dst)
	if err == nil {
		return true
	}
	if middleware.IsBodyTooLarge(err) {
		rw.Fail(w, http.StatusRequestEntityTooLarge, response.MsgTooLarge)
		return false
	}
	rw.Fail(w, http.StatusBadRequest, response.MsgInvalidBody)
	return false
}

// NotFound отвечает на неизвестные маршруты конвертом с ошибкой.
func NotFound(rw *response.Writer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rw.Fail(w, http.StatusNotFound, fmt.Sprintf("Route %s %s not found", r.Method, r.URL.Path))
	}
}

// MethodNotAllowed отвечает на известные пути с неподдерживаемым методом.
func MethodNotAllowed(rw *response.Writer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rw.Fail(w, http.StatusMethodNotAllowed, fmt.Sprintf("Method %s not allowed on %s", r.Method, r.URL.Path))
	}
}
