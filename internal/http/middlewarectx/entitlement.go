package middlewarectx

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/middleware"

	"github.com/magabrotheeeer/app-despesas/internal/http/response"
	"github.com/magabrotheeeer/app-despesas/internal/lib/apperr"
)

// Rules статический список защищенных префиксов маршрутов.
type Rules struct {
	PremiumPrefixes []string
	AdminPrefixes   []string
	// UpgradeURL страница оформления премиума для браузерной навигации.
	UpgradeURL string
}

func matchPrefix(path string, prefixes []string) bool {
	for _, p := range prefixes {
		p = strings.TrimRight(p, "/")
		if p == "" {
			continue
		}
		if path == p || strings.HasPrefix(path, p+"/") {
			return true
		}
	}
	return false
}

func wantsHTML(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "text/html")
}

// EntitlementMiddleware пропускает запросы к премиум-префиксам только
// премиум-пользователей, к админ-префиксам только администраторов.
// Должен стоять после JWTMiddleware.
func EntitlementMiddleware(rules Rules, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const op = "middlewarectx.EntitlementMiddleware"
			path := r.URL.Path
			premium := matchPrefix(path, rules.PremiumPrefixes)
			admin := matchPrefix(path, rules.AdminPrefixes)
			if !premium && !admin {
				next.ServeHTTP(w, r)
				return
			}

			log := log.With(
				slog.String("op", op),
				slog.String("request_id", middleware.GetReqID(r.Context())),
				slog.String("path", path),
			)

			p, ok := PrincipalFromContext(r.Context())
			if !ok {
				response.Fail(w, r, log, apperr.ErrTokenRequired)
				return
			}

			if admin && !p.IsAdmin {
				log.Info("admin access denied", slog.String("user_id", p.UserID))
				response.Fail(w, r, log, apperr.ErrAdminRequired)
				return
			}

			if premium && !p.IsPremium {
				log.Info("premium access denied",
					slog.String("user_id", p.UserID),
					slog.String("subscription_status", string(p.SubscriptionStatus)),
				)
				if wantsHTML(r) && rules.UpgradeURL != "" {
					http.Redirect(w, r, rules.UpgradeURL, http.StatusSeeOther)
					return
				}
				response.Fail(w, r, log, apperr.ErrPremiumRequired)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
