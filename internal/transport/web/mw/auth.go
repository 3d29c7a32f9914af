package mw

import (
	"net/http"
	"strings"

	"github.com/Ozymandias089/devlog-api/internal/domain"
)

type AuthDeps struct {
	Tokens domain.TokenService
}

// PublicPath: точное совпадение или префикс из allow-list
func PublicPath(path string, allow []string) bool {
	for _, p := range allow {
		if path == p || strings.HasPrefix(path, p) {
			return true
		}
	}
	return false
}

// OptionalAuth — единственная точка проверки bearer-токена.
// Запрос никогда не отклоняется здесь: публичный путь и отсутствующий/кривой/
// отозванный токен равно приводят к анонимному проходу. Решение о 401
// принимает RequireAuth по установленной identity — так «не смогли проверить»
// не смешивается с «проверка явно провалена».
func OptionalAuth(deps AuthDeps, public []string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if PublicPath(r.URL.Path, public) {
			next.ServeHTTP(w, r)
			return
		}

		raw := extractBearer(r.Header.Get("Authorization"))
		if raw == "" {
			next.ServeHTTP(w, r) // без пользователя
			return
		}

		cl, err := deps.Tokens.ValidateAccess(r.Context(), domain.Token(raw))
		if err != nil {
			// fail closed: недоступный Redis так же даёт анонимный проход
			next.ServeHTTP(w, r)
			return
		}

		id := domain.Identity{Subject: cl.Subject, Role: cl.Role, RawToken: domain.Token(raw)}
		next.ServeHTTP(w, r.WithContext(domain.WithIdentity(r.Context(), id)))
	})
}

// RequireAuth — слой контроля доступа: 401, если identity не установлена
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := domain.IdentityFromCtx(r.Context()); !ok {
			http.Error(w, `{"error":{"code":1001,"text":"unauthorized"}}`, http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireRole — как RequireAuth, но с проверкой роли
func RequireRole(role domain.Role, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := domain.IdentityFromCtx(r.Context())
		if !ok {
			http.Error(w, `{"error":{"code":1001,"text":"unauthorized"}}`, http.StatusUnauthorized)
			return
		}
		if id.Role != role {
			http.Error(w, `{"error":{"code":1002,"text":"forbidden"}}`, http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func extractBearer(h string) string {
	if len(h) > 7 && strings.EqualFold(h[:7], "Bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return ""
}
