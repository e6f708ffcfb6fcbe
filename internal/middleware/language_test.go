package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/blog/internal/i18n"
	"github.com/pkordes/blog/internal/middleware"
)

func TestLanguageHandler_StoresResolvedLanguage(t *testing.T) {
	res, err := i18n.NewResolver([]string{"en", "de"}, "en")
	require.NoError(t, err)

	var seen string
	h := middleware.NewLanguageHandler(res)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = i18n.FromContext(r.Context())
	}))

	tests := []struct {
		target string
		accept string
		want   string
	}{
		{"/posts?language=de", "", "de"},
		{"/posts", "de-DE,de;q=0.9", "de"},
		{"/posts", "ja", "en"},
	}
	for _, tc := range tests {
		req := httptest.NewRequest(http.MethodGet, tc.target, nil)
		if tc.accept != "" {
			req.Header.Set("Accept-Language", tc.accept)
		}
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		assert.Equal(t, tc.want, seen, tc.target+" "+tc.accept)
		assert.Equal(t, tc.want, rec.Header().Get("Content-Language"))
	}
}
