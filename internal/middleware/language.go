package middleware

import (
	"net/http"

	"github.com/pkordes/blog/internal/i18n"
)

// NewLanguageHandler returns a middleware that resolves the request language
// with res and stores it in the request context for i18n.FromContext. The
// chosen language is echoed in the Content-Language response header.
func NewLanguageHandler(res *i18n.Resolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			lang := res.Resolve(r)
			w.Header().Set("Content-Language", lang)
			next.ServeHTTP(w, r.WithContext(i18n.WithLanguage(r.Context(), lang)))
		})
	}
}
