// Package middlewarectx содержит HTTP middleware: аутентификацию по JWT,
// проверку премиум- и админ-доступа, ограничение частоты запросов и метрики.
//
// JWTMiddleware проверяет токен из заголовка Authorization и кладет в контекст
// запроса models.Principal с правами, вычисленными по хранилищу подписок.
package middlewarectx

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/middleware"

	"github.com/magabrotheeeer/app-despesas/internal/http/response"
	"github.com/magabrotheeeer/app-despesas/internal/lib/apperr"
	"github.com/magabrotheeeer/app-despesas/internal/models"
)

// Key тип для ключей контекста HTTP-запроса.
type Key string

// PrincipalKey ключ пользователя запроса в контексте.
const PrincipalKey Key = "principal"

// Authenticator проверяет access-токен.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*models.Principal, error)
}

// WithPrincipal возвращает контекст с пользователем p.
func WithPrincipal(ctx context.Context, p *models.Principal) context.Context {
	return context.WithValue(ctx, PrincipalKey, p)
}

// PrincipalFromContext возвращает пользователя запроса, если он аутентифицирован.
func PrincipalFromContext(ctx context.Context) (*models.Principal, bool) {
	p, ok := ctx.Value(PrincipalKey).(*models.Principal)
	return p, ok && p != nil
}

// BearerToken извлекает токен из заголовка Authorization. Схема сравнивается
// без учета регистра.
func BearerToken(r *http.Request) string {
	scheme, token, ok := strings.Cut(strings.TrimSpace(r.Header.Get("Authorization")), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

// JWTMiddleware возвращает middleware, который пропускает только запросы
// с действующим access-токеном.
func JWTMiddleware(auth Authenticator, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const op = "middlewarectx.JWTMiddleware"
			log := log.With(
				slog.String("op", op),
				slog.String("request_id", middleware.GetReqID(r.Context())),
			)

			token := BearerToken(r)
			if token == "" {
				response.Fail(w, r, log, apperr.ErrTokenRequired)
				return
			}

			p, err := auth.Authenticate(r.Context(), token)
			if err != nil {
				response.Fail(w, r, log, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), p)))
		})
	}
}
