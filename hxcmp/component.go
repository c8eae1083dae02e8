package hxcmp

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/a-h/templ"
	"github.com/rs/zerolog"
)

// Handler is the signature of an action handler.
//
// Handlers receive hydrated props and the request (for form values and
// HTMX headers) and return a Result describing the response.
type Handler[P any] func(ctx context.Context, props P, r *http.Request) Result[P]

// actionDef holds metadata about a registered action.
type actionDef[P any] struct {
	name    string
	method  string
	handler Handler[P]
}

// Component[P] is the base type embedded by user components.
// P is the Props type for this component.
//
// Components embed *Component[P] to gain action registration, routing, URL
// generation, and result handling. The embedding pattern promotes methods
// directly onto the user's component type.
//
//	type SignupForm struct {
//	    *hxcmp.Component[Props]
//	    sessions *SessionStore
//	}
//
// Each component instance receives a deterministic URL prefix based on its
// name and source location (file:line), ensuring uniqueness without manual
// coordination.
type Component[P any] struct {
	name      string
	prefix    string
	sensitive bool
	actions   map[string]*actionDef[P]
	encoder   *Encoder
	lifecycle Lifecycle[P]
	fallback  ErrorHandler
}

// New creates a new component with the given name. lc is the concrete
// component (the struct embedding the returned value); its Hydrate and
// Render methods drive the request lifecycle.
//
// By default, props are signed (visible in URLs but tamper-proof via HMAC).
// Call .Sensitive() to encrypt them instead.
func New[P any](name string, lc Lifecycle[P]) *Component[P] {
	prefix := "/_c/" + name + "-" + componentHash(name, 1)
	return &Component[P]{
		name:      name,
		prefix:    prefix,
		actions:   make(map[string]*actionDef[P]),
		lifecycle: lc,
	}
}

// Sensitive marks the component as sensitive, enabling full encryption.
func (c *Component[P]) Sensitive() *Component[P] {
	c.sensitive = true
	return c
}

// Name returns the component's name.
func (c *Component[P]) Name() string {
	return c.name
}

// Prefix returns the component's URL prefix.
// All actions for this component are mounted under this prefix.
func (c *Component[P]) Prefix() string {
	return c.prefix
}

// IsSensitive returns whether the component uses encrypted props.
func (c *Component[P]) IsSensitive() bool {
	return c.sensitive
}

// Action registers a named action handler with default POST method.
//
// Actions use semantic names that describe intent (submit, blur, reload)
// rather than HTTP methods:
//
//	c.Action("submit", c.handleSubmit)  // POST by default
//	c.Action("preview", c.handlePreview).Method(http.MethodGet)
func (c *Component[P]) Action(name string, handler Handler[P]) *ActionBuilder {
	def := &actionDef[P]{
		name:    name,
		method:  http.MethodPost,
		handler: handler,
	}
	c.actions[name] = def
	return &ActionBuilder{method: &def.method}
}

// attach is called by Registry.Add.
func (c *Component[P]) attach(reg *Registry) {
	c.encoder = reg.encoder
	c.fallback = reg.handleError
}

// Wire returns the HTMX attributes that bind an element to an action.
// An empty action name targets the default render (GET). vals are extra
// request parameters sent with the props.
func (c *Component[P]) Wire(action string, props P, vals ...map[string]string) templ.Attributes {
	method := http.MethodGet
	if action != "" {
		def, ok := c.actions[action]
		if !ok {
			panic(fmt.Sprintf("hxcmp: %s has no action %q", c.name, action))
		}
		method = def.method
	}
	return WireAttrs(c.actionPath(action), method, c.encodeProps(props), vals...)
}

// URL returns the GET URL for the default render with encoded props.
func (c *Component[P]) URL(props P) string {
	path := c.actionPath("")
	if encoded := c.encodeProps(props); encoded != "" {
		return path + "?p=" + encoded
	}
	return path
}

// Mount returns a templ component that hydrates props and renders the
// component inline, for embedding in full-page layouts. A hydration failure
// renders ErrorComponent in its place.
func (c *Component[P]) Mount(props P) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if err := c.lifecycle.Hydrate(ctx, &props); err != nil {
			zerolog.Ctx(ctx).Error().Err(err).Str("component", c.name).Msg("hydrate on mount")
			return ErrorComponent(err).Render(ctx, w)
		}
		return c.lifecycle.Render(ctx, props).Render(ctx, w)
	})
}

func (c *Component[P]) actionPath(action string) string {
	return c.prefix + "/" + action
}

func (c *Component[P]) encodeProps(props P) string {
	if c.encoder == nil {
		return ""
	}
	encoded, err := c.encoder.Encode(props, c.sensitive)
	if err != nil {
		return ""
	}
	return encoded
}

// HXPrefix returns the component's URL prefix.
func (c *Component[P]) HXPrefix() string {
	return c.prefix
}

// HXServeHTTP decodes props, hydrates, routes to the action handler and
// applies its Result. GET on the component root renders.
func (c *Component[P]) HXServeHTTP(w http.ResponseWriter, r *http.Request) {
	var props P
	if encoded := r.FormValue("p"); encoded != "" {
		if c.encoder == nil {
			c.fail(w, r, fmt.Errorf("%w: %s is not registered", ErrInvalidFormat, c.name))
			return
		}
		if err := c.encoder.Decode(encoded, c.sensitive, &props); err != nil {
			c.fail(w, r, WrapDecodeError(err))
			return
		}
	}

	if err := c.lifecycle.Hydrate(r.Context(), &props); err != nil {
		c.fail(w, r, fmt.Errorf("%w: %w", ErrHydrationFailed, err))
		return
	}

	name := strings.Trim(strings.TrimPrefix(r.URL.Path, c.prefix), "/")
	if name == "" {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			c.fail(w, r, ErrMethodNotAllowed)
			return
		}
		c.render(w, r, props, 0, nil)
		return
	}

	def, ok := c.actions[name]
	if !ok {
		c.fail(w, r, fmt.Errorf("%w: action %q", ErrNotFound, name))
		return
	}
	if def.method != r.Method {
		c.fail(w, r, ErrMethodNotAllowed)
		return
	}

	c.handleResult(w, r, def.handler(r.Context(), props, r))
}

func (c *Component[P]) handleResult(w http.ResponseWriter, r *http.Request, result Result[P]) {
	if err := result.GetErr(); err != nil {
		c.fail(w, r, err)
		return
	}

	// Headers must be set before WriteHeader.
	h := w.Header()
	for k, v := range result.GetHeaders() {
		h.Set(k, v)
	}
	if trigger := BuildTriggerHeader(result.GetTrigger(), result.GetTriggerData()); trigger != "" {
		h.Set("HX-Trigger", trigger)
	}

	switch {
	case result.ShouldReload():
		h.Set("HX-Refresh", "true")
	case !result.ShouldSkip():
		c.render(w, r, result.GetProps(), result.GetStatus(), result.GetFlashes())
		return
	}
	if status := result.GetStatus(); status != 0 {
		w.WriteHeader(status)
	}
}

// render buffers the output so a failing template still produces a clean
// error response.
func (c *Component[P]) render(w http.ResponseWriter, r *http.Request, props P, status int, flashes []Flash) {
	var buf bytes.Buffer
	if err := c.lifecycle.Render(r.Context(), props).Render(r.Context(), &buf); err != nil {
		c.fail(w, r, fmt.Errorf("hxcmp: render %s: %w", c.name, err))
		return
	}
	buf.WriteString(RenderFlashesOOB(flashes))

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if status != 0 {
		w.WriteHeader(status)
	}
	if _, err := w.Write(buf.Bytes()); err != nil {
		zerolog.Ctx(r.Context()).Debug().Err(err).Str("component", c.name).Msg("write response")
	}
}

func (c *Component[P]) fail(w http.ResponseWriter, r *http.Request, err error) {
	if c.fallback != nil {
		c.fallback(w, r, err)
		return
	}
	http.Error(w, "Internal error", http.StatusInternalServerError)
}

// componentHash generates a deterministic hash based on component name and source location.
func componentHash(name string, skip int) string {
	_, file, line, ok := runtime.Caller(skip + 1)
	var input string
	if ok {
		// Base filename only, for portability across environments.
		input = fmt.Sprintf("%s:%d:%s", filepath.Base(file), line, name)
	} else {
		input = name
	}
	h := sha256.Sum256([]byte(input))
	return hex.EncodeToString(h[:4])
}
