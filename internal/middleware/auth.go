package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/maynagashev/autoassist/internal/models"
	"github.com/maynagashev/autoassist/internal/response"
)

type contextKey string

// UserKey хранит аутентифицированного *models.User в контексте запроса.
const UserKey contextKey = "user"

// TokenVerifier находит пользователя по bearer-токену.
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (*models.User, error)
}

// Authenticator отклоняет запросы без валидного bearer-токена и сохраняет
// пользователя токена в контексте.
func Authenticator(verifier TokenVerifier, rw *response.Writer) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r.Header.Get("Authorization"))
			if !ok {
				rw.Fail(w, http.StatusUnauthorized, response.MsgInvalidToken)
				return
			}

			user, err := verifier.Verify(r.Context(), token)
			if err != nil {
				rw.Error(w, r, err)
				return
			}

			ctx := context.WithValue(r.Context(), UserKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserFromContext возвращает пользователя, сохраненного Authenticator.
func UserFromContext(ctx context.Context) (*models.User, bool) {
	user, ok := ctx.Value(UserKey).(*models.User)
	return user, ok && user != nil
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
