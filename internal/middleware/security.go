package middleware

import (
	"errors"
	"net/http"

	"github.com/maynagashev/autoassist/internal/response"
)

// SecurityHeaders выставляет заголовки, ограничивающие обработку контента браузером.
func SecurityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Referrer-Policy", "no-referrer")
		h.Set("Cross-Origin-Resource-Policy", "same-site")
		next.ServeHTTP(w, r)
	})
}

// MaxBody отклоняет с 413 тела с заявленным размером больше limit и обрезает потоковые.
func MaxBody(limit int64, rw *response.Writer) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.ContentLength > limit {
				rw.Fail(w, http.StatusRequestEntityTooLarge, response.MsgTooLarge)
				return
			}
			r.Body = http.MaxBytesReader(w, r.Body, limit)
			next.ServeHTTP(w, r)
		})
	}
}

// IsBodyTooLarge сообщает, вызвана ли err обрезанием тела в MaxBody.
func IsBodyTooLarge(err error) bool {
	var mbe *http.MaxBytesError
	return errors.As(err, &mbe)
}
