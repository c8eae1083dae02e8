package hxcmp

import (
	"errors"
	"fmt"
	"net/http"
	"sync"

	"github.com/rs/zerolog"
)

// attacher is implemented by *Component[P] and, through embedding, by
// every user component.
type attacher interface {
	attach(reg *Registry)
}

// Registry manages component registration and routing.
type Registry struct {
	mu         sync.RWMutex
	mux        *http.ServeMux
	encoder    *Encoder
	components map[string]HXComponent
	log        zerolog.Logger

	// OnError is called when a component request fails.
	// Customize this to handle errors appropriately for your application.
	OnError ErrorHandler
}

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithLogger sets the logger used when no request-scoped logger is present.
func WithLogger(l zerolog.Logger) RegistryOption {
	return func(reg *Registry) {
		reg.log = l
	}
}

// NewRegistry creates a new component registry with the given props key.
func NewRegistry(key []byte, opts ...RegistryOption) *Registry {
	enc, err := NewEncoder(key)
	if err != nil {
		panic(fmt.Sprintf("hxcmp: failed to create encoder: %v", err))
	}

	reg := &Registry{
		mux:        http.NewServeMux(),
		encoder:    enc,
		components: make(map[string]HXComponent),
		log:        zerolog.Nop(),
	}
	reg.OnError = reg.defaultOnError
	for _, opt := range opts {
		opt(reg)
	}
	return reg
}

// Encoder returns the registry's encoder (used by components).
func (reg *Registry) Encoder() *Encoder {
	return reg.encoder
}

// Add registers components with the registry.
// Panics on a prefix collision.
func (reg *Registry) Add(components ...HXComponent) {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	for _, comp := range components {
		prefix := comp.HXPrefix()
		if _, exists := reg.components[prefix]; exists {
			panic(fmt.Sprintf("hxcmp: prefix collision for %q", prefix))
		}
		if a, ok := comp.(attacher); ok {
			a.attach(reg)
		}
		reg.components[prefix] = comp
		reg.mux.HandleFunc(prefix+"/", comp.HXServeHTTP)
		reg.log.Debug().Str("prefix", prefix).Msg("component registered")
	}
}

// Handler returns the HTTP handler for component routes.
// Mount this at "/_c/" in your application.
func (reg *Registry) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// CSRF protection: mutating methods require HX-Request header
		if r.Method != http.MethodGet && r.Method != http.MethodHead && !IsHTMX(r) {
			http.Error(w, "Forbidden: HTMX request required", http.StatusForbidden)
			return
		}

		reg.mu.RLock()
		mux := reg.mux
		reg.mu.RUnlock()
		mux.ServeHTTP(w, r)
	})
}

// handleError indirects through the OnError field so replacing it after
// registration still takes effect.
func (reg *Registry) handleError(w http.ResponseWriter, r *http.Request, err error) {
	if reg.OnError == nil {
		reg.defaultOnError(w, r, err)
		return
	}
	reg.OnError(w, r, err)
}

func (reg *Registry) defaultOnError(w http.ResponseWriter, r *http.Request, err error) {
	l := zerolog.Ctx(r.Context())
	if l.GetLevel() == zerolog.Disabled {
		l = &reg.log
	}

	switch {
	case IsNotFound(err):
		http.Error(w, "Not found", http.StatusNotFound)
	case errors.Is(err, ErrMethodNotAllowed):
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	case IsBadRequest(err):
		l.Warn().Err(err).Str("path", r.URL.Path).Msg("rejected component parameters")
		http.Error(w, "Bad request", http.StatusBadRequest)
	case errors.Is(err, ErrHydrationFailed):
		l.Error().Err(err).Str("path", r.URL.Path).Msg("component hydration failed")
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusInternalServerError)
		_ = ErrorComponent(err).Render(r.Context(), w)
	default:
		l.Error().Err(err).Str("path", r.URL.Path).Msg("component request failed")
		http.Error(w, "Internal error", http.StatusInternalServerError)
	}
}
