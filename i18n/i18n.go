// Package i18n holds the form's message catalogs and picks a locale per
// request.
package i18n

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"net/http"
	"path"
	"sort"
	"strings"

	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

//go:embed locales/*.yaml
var embeddedLocales embed.FS

// Catalog maps locales to flattened message keys such as "error.general".
type Catalog struct {
	messages map[language.Tag]map[string]string
	tags     []language.Tag
	matcher  language.Matcher
	fallback language.Tag
}

// Load reads the embedded catalogs. defaultLocale is used when a request's
// Accept-Language matches nothing and when a key is missing in the matched
// locale.
func Load(defaultLocale string) (*Catalog, error) {
	return LoadFS(embeddedLocales, "locales", defaultLocale)
}

// LoadFS reads every *.yaml file in dir. The file name without extension is
// the BCP 47 locale.
func LoadFS(fsys fs.FS, dir, defaultLocale string) (*Catalog, error) {
	fallback, err := language.Parse(defaultLocale)
	if err != nil {
		return nil, fmt.Errorf("i18n: default locale %q: %w", defaultLocale, err)
	}

	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("i18n: read %s: %w", dir, err)
	}

	c := &Catalog{
		messages: make(map[language.Tag]map[string]string),
		fallback: fallback,
	}
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || path.Ext(name) != ".yaml" {
			continue
		}
		tag, err := language.Parse(strings.TrimSuffix(name, ".yaml"))
		if err != nil {
			return nil, fmt.Errorf("i18n: locale file %s: %w", name, err)
		}
		data, err := fs.ReadFile(fsys, path.Join(dir, name))
		if err != nil {
			return nil, fmt.Errorf("i18n: read %s: %w", name, err)
		}
		var doc map[string]any
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("i18n: parse %s: %w", name, err)
		}
		msgs := make(map[string]string)
		flatten("", doc, msgs)
		c.messages[tag] = msgs
	}

	if _, ok := c.messages[fallback]; !ok {
		return nil, fmt.Errorf("i18n: no catalog for default locale %s", fallback)
	}

	// The matcher falls back to its first tag.
	c.tags = append(c.tags, fallback)
	others := make([]language.Tag, 0, len(c.messages)-1)
	for tag := range c.messages {
		if tag != fallback {
			others = append(others, tag)
		}
	}
	sort.Slice(others, func(i, j int) bool { return others[i].String() < others[j].String() })
	c.tags = append(c.tags, others...)
	c.matcher = language.NewMatcher(c.tags)
	return c, nil
}

func flatten(prefix string, node map[string]any, out map[string]string) {
	for k, v := range node {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		switch val := v.(type) {
		case map[string]any:
			flatten(key, val, out)
		case string:
			out[key] = val
		default:
			out[key] = fmt.Sprint(val)
		}
	}
}

// Locales returns the available locales, default first.
func (c *Catalog) Locales() []language.Tag {
	return append([]language.Tag(nil), c.tags...)
}

// Default returns the fallback locale.
func (c *Catalog) Default() language.Tag {
	return c.fallback
}

// Match picks the best available locale for an Accept-Language header.
func (c *Catalog) Match(acceptLanguage string) language.Tag {
	prefs, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(prefs) == 0 {
		return c.fallback
	}
	_, idx, conf := c.matcher.Match(prefs...)
	if conf == language.No {
		return c.fallback
	}
	return c.tags[idx]
}

// Lookup returns the message for key in tag, falling back to the default
// locale.
func (c *Catalog) Lookup(tag language.Tag, key string) (string, bool) {
	if msg, ok := c.messages[tag][key]; ok {
		return msg, true
	}
	msg, ok := c.messages[c.fallback][key]
	return msg, ok
}

// T returns the message for key, or key itself when no catalog has it.
func (c *Catalog) T(tag language.Tag, key string) string {
	if msg, ok := c.Lookup(tag, key); ok {
		return msg
	}
	return key
}

// Tf formats the message for key with args.
func (c *Catalog) Tf(tag language.Tag, key string, args ...any) string {
	return fmt.Sprintf(c.T(tag, key), args...)
}

type localeKey struct{}

// WithLocale stores tag in ctx.
func WithLocale(ctx context.Context, tag language.Tag) context.Context {
	return context.WithValue(ctx, localeKey{}, tag)
}

// LocaleFrom returns the locale stored in ctx.
func LocaleFrom(ctx context.Context) (language.Tag, bool) {
	tag, ok := ctx.Value(localeKey{}).(language.Tag)
	return tag, ok
}

// Locale returns the request locale from ctx, or the default locale.
func (c *Catalog) Locale(ctx context.Context) language.Tag {
	if tag, ok := LocaleFrom(ctx); ok {
		return tag
	}
	return c.fallback
}

// Middleware resolves the request locale from Accept-Language and stores it
// in the request context.
func (c *Catalog) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tag := c.Match(r.Header.Get("Accept-Language"))
		w.Header().Set("Content-Language", tag.String())
		next.ServeHTTP(w, r.WithContext(WithLocale(r.Context(), tag)))
	})
}
