package hxcmp

import (
	"context"
	"net/http"

	"github.com/a-h/templ"
)

// Hydrater is implemented by components to reconstruct rich objects from
// serialized IDs in props. Called before any handler (including GET/render).
//
//	func (c *SignupForm) Hydrate(ctx context.Context, props *Props) error {
//	    sess, ok := c.sessions.Get(props.SessionID)
//	    if !ok {
//	        sess = c.sessions.Create()
//	    }
//	    props.Session = sess
//	    return nil
//	}
//
// Hydrate runs exactly once per request. Handlers can assume hydrated props
// are complete.
type Hydrater[P any] interface {
	Hydrate(ctx context.Context, props *P) error
}

// Renderer is implemented by components to produce templ output.
//
// Render receives fully-hydrated props and should be pure - it reads props
// and produces HTML without side effects.
type Renderer[P any] interface {
	Render(ctx context.Context, props P) templ.Component
}

// Lifecycle is the pair of methods every component provides.
type Lifecycle[P any] interface {
	Hydrater[P]
	Renderer[P]
}

// HXComponent is what the registry routes requests to.
//
// *Component[P] implements it, so any struct embedding it does too.
type HXComponent interface {
	HXPrefix() string
	HXServeHTTP(w http.ResponseWriter, r *http.Request)
}

// ErrorHandler writes the response for a failed request.
type ErrorHandler func(w http.ResponseWriter, r *http.Request, err error)
