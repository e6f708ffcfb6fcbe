// Package i18n resolves the active content language of a request and carries
// it through the request context.
package i18n

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"golang.org/x/text/language"
)

// Fallback is returned by FromContext when no language was stored.
const Fallback = "en"

// QueryParam is the query parameter that overrides Accept-Language.
const QueryParam = "language"

type ctxKey struct{}

// WithLanguage returns a copy of ctx carrying lang as the active language.
func WithLanguage(ctx context.Context, lang string) context.Context {
	return context.WithValue(ctx, ctxKey{}, lang)
}

// FromContext returns the active language stored by WithLanguage, or Fallback.
func FromContext(ctx context.Context) string {
	if lang, ok := ctx.Value(ctxKey{}).(string); ok && lang != "" {
		return lang
	}
	return Fallback
}

// Resolver maps user-supplied language preferences onto the configured set of
// content languages.
type Resolver struct {
	supported []string
	matcher   language.Matcher
	def       string
}

// NewResolver builds a Resolver for languages. def must be one of them.
func NewResolver(languages []string, def string) (*Resolver, error) {
	if len(languages) == 0 {
		return nil, fmt.Errorf("i18n.NewResolver: no languages configured")
	}
	r := &Resolver{supported: make([]string, 0, len(languages))}
	tags := make([]language.Tag, 0, len(languages))
	for _, l := range languages {
		tag, err := language.Parse(l)
		if err != nil {
			return nil, fmt.Errorf("i18n.NewResolver: parse %q: %w", l, err)
		}
		tags = append(tags, tag)
		r.supported = append(r.supported, strings.ToLower(l))
	}
	r.matcher = language.NewMatcher(tags)

	if !r.IsSupported(def) {
		return nil, fmt.Errorf("i18n.NewResolver: default language %q not in %v", def, languages)
	}
	r.def = strings.ToLower(def)
	return r, nil
}

// Default returns the configured default language.
func (r *Resolver) Default() string { return r.def }

// Supported returns the configured languages in configuration order.
func (r *Resolver) Supported() []string {
	out := make([]string, len(r.supported))
	copy(out, r.supported)
	return out
}

// IsSupported reports whether lang is exactly one of the configured codes.
func (r *Resolver) IsSupported(lang string) bool {
	lang = strings.ToLower(lang)
	for _, s := range r.supported {
		if s == lang {
			return true
		}
	}
	return false
}

// Match returns the configured language that best fits pref, which may be a
// single code ("de-AT") or a full Accept-Language header value. The second
// result is false when nothing matched with any confidence.
func (r *Resolver) Match(pref string) (string, bool) {
	pref = strings.TrimSpace(pref)
	if pref == "" {
		return "", false
	}
	tags, _, err := language.ParseAcceptLanguage(pref)
	if err != nil || len(tags) == 0 {
		return "", false
	}
	_, idx, conf := r.matcher.Match(tags...)
	if conf == language.No || idx < 0 || idx >= len(r.supported) {
		return "", false
	}
	return r.supported[idx], true
}

// Resolve picks the language for req: the query parameter first, then the
// Accept-Language header, then the default.
func (r *Resolver) Resolve(req *http.Request) string {
	if lang, ok := r.Match(req.URL.Query().Get(QueryParam)); ok {
		return lang
	}
	if lang, ok := r.Match(req.Header.Get("Accept-Language")); ok {
		return lang
	}
	return r.def
}
