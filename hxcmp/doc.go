// Package hxcmp is the component runtime behind the signup form: server-rendered,
// interactive HTML components driven by HTMX and rendered with templ.
//
// # Core Concepts
//
// Components embed *Component[P] where P is the Props type. Props travel to
// the browser signed (or encrypted) and come back with every request, so they
// should hold only identifiers; rich state is looked up during hydration.
//
//	type SignupForm struct {
//	    *hxcmp.Component[Props]
//	    sessions *SessionStore
//	}
//
//	func New(sessions *SessionStore) *SignupForm {
//	    c := &SignupForm{sessions: sessions}
//	    c.Component = hxcmp.New[Props]("signupform", c)
//	    c.Action("submit", c.handleSubmit)
//	    return c
//	}
//
// The lifecycle is formalized through two interfaces:
//   - Hydrater[P]: Hydrate(ctx, *P) reconstructs rich objects from IDs
//   - Renderer[P]: Render(ctx, P) produces the templ.Component output
//
// Hydrate runs before any handler. Render runs for GET requests and after
// handlers that return OK.
//
// # Actions and Routing
//
// Each component receives a URL prefix derived from its name and the source
// location of the New call. Actions are mounted below it:
//
//	GET  /_c/signupform-1a2b3c4d/          render
//	POST /_c/signupform-1a2b3c4d/submit    action "submit"
//
// Templates bind elements to actions with Wire, which returns the hx-get /
// hx-post attribute together with the encoded props:
//
//	attrs := c.Wire("submit", props)
//
// # Security Model
//
// Props are signed with HMAC by default and encrypted with AES-GCM for
// components marked Sensitive. Mutating requests must carry the
// HX-Request: true header that HTMX sends, which blocks plain cross-origin
// form posts without extra tokens.
//
// # Results
//
// Handlers return a Result[P] describing what should happen next: render
// (OK), fail through the registry's OnError (Err), flash a toast, trigger a
// client event, or force a full page reload (Reload).
package hxcmp
