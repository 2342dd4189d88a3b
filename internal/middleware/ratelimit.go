package middleware

import (
	"net/http"
	"time"

	"github.com/go-chi/httprate"

	"github.com/maynagashev/autoassist/internal/response"
)

// RateLimit пропускает limit запросов с одного IP клиента в скользящем окне и
// затем отвечает 429 с JSON-конвертом. Ключом служит адрес из RemoteAddr,
// поэтому заголовки прокси учитываются, только если перед ним отработал RealIP из chi.
func RateLimit(limit int, window time.Duration, rw *response.Writer) func(http.Handler) http.Handler {
	return httprate.Limit(limit, window,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, _ *http.Request) {
			rw.Fail(w, http.StatusTooManyRequests, response.MsgTooManyRequests)
		}),
	)
}
