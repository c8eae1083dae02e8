// Package hxcmpecho provides Echo framework integration for hxcmp components.
//
// Mount components onto an Echo instance or group:
//
//	e := echo.New()
//	e.Use(hxcmpecho.RequestID(), hxcmpecho.RequestLogger(log))
//	reg := hxcmpecho.Mount(e, hxcmpecho.WithKey(key))
//	reg.Add(myComponent)
package hxcmpecho

import (
	"crypto/rand"
	"fmt"
	"time"

	"github.com/a-h/templ"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/pthm/signupform/hxcmp"
	"github.com/pthm/signupform/i18n"
)

// HeaderRequestID carries the request ID in both directions.
const HeaderRequestID = echo.HeaderXRequestID

// Option configures the Mount and MountGroup functions.
type Option func(*options)

type options struct {
	key []byte
	reg []hxcmp.RegistryOption
}

// WithKey sets the props key for the registry.
// The key should be 32 bytes of cryptographically random data.
// If not provided, a random key is generated (suitable for development only).
func WithKey(key []byte) Option {
	return func(o *options) {
		o.key = key
	}
}

// WithLogger sets the registry's fallback logger.
func WithLogger(l zerolog.Logger) Option {
	return func(o *options) {
		o.reg = append(o.reg, hxcmp.WithLogger(l))
	}
}

// Mount creates a registry and mounts the component handler on an Echo instance.
func Mount(e *echo.Echo, opts ...Option) *hxcmp.Registry {
	reg := newRegistry(opts)
	e.Any("/_c/*", echo.WrapHandler(reg.Handler()))
	return reg
}

// MountGroup creates a registry and mounts the component handler on an Echo group.
// Components share the group's middleware. The group must be rooted at "/".
func MountGroup(g *echo.Group, opts ...Option) *hxcmp.Registry {
	reg := newRegistry(opts)
	g.Any("/_c/*", echo.WrapHandler(reg.Handler()))
	return reg
}

func newRegistry(opts []Option) *hxcmp.Registry {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}

	key := o.key
	if key == nil {
		key = make([]byte, 32)
		if _, err := rand.Read(key); err != nil {
			panic(fmt.Sprintf("hxcmpecho: failed to generate random key: %v", err))
		}
	}
	return hxcmp.NewRegistry(key, o.reg...)
}

// Render writes a templ component to the Echo response.
//
//	func handler(c echo.Context) error {
//	    return hxcmpecho.Render(c, myTemplate())
//	}
func Render(c echo.Context, component templ.Component) error {
	c.Response().Header().Set(echo.HeaderContentType, echo.MIMETextHTMLCharsetUTF8)
	return component.Render(c.Request().Context(), c.Response())
}

// RequestID reuses an incoming X-Request-ID or assigns a new one, and echoes
// it on the response.
func RequestID() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			rid := c.Request().Header.Get(HeaderRequestID)
			if rid == "" {
				rid = uuid.NewString()
				c.Request().Header.Set(HeaderRequestID, rid)
			}
			c.Response().Header().Set(HeaderRequestID, rid)
			return next(c)
		}
	}
}

// RequestLogger attaches a request-scoped logger to the context and logs
// every request when it completes. Run it after RequestID.
func RequestLogger(l zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			req := c.Request()

			rl := l.With().Str("request_id", req.Header.Get(HeaderRequestID)).Logger()
			c.SetRequest(req.WithContext(rl.WithContext(req.Context())))

			err := next(c)
			if err != nil {
				c.Error(err)
			}

			status := c.Response().Status
			ev := rl.Info()
			if status >= 500 {
				ev = rl.Error().Err(err)
			}
			ev.Str("method", req.Method).
				Str("path", req.URL.Path).
				Int("status", status).
				Dur("duration", time.Since(start)).
				Msg("request")
			return nil
		}
	}
}

// Locale negotiates the request locale from Accept-Language.
func Locale(catalog *i18n.Catalog) echo.MiddlewareFunc {
	return echo.WrapMiddleware(catalog.Middleware)
}
