// Package signupform is the subscription signup form component.
//
// Form state lives server-side in a Session; the encrypted props carry only
// the session ID. Every action re-renders the whole component.
package signupform

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/a-h/templ"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"

	"github.com/pthm/signupform/form"
	"github.com/pthm/signupform/hxcmp"
	"github.com/pthm/signupform/i18n"
)

// EventCompleted is triggered on the client after a successful signup.
const EventCompleted = "signup:completed"

// Props identifies the session behind a rendered form.
type Props struct {
	SessionID string `msgpack:"sid"`

	// Session is resolved by Hydrate.
	Session *Session `msgpack:"-"`
}

// SignupForm renders and drives the signup form.
type SignupForm struct {
	*hxcmp.Component[Props]
	sessions *SessionStore
	catalog  *i18n.Catalog
	metrics  *Metrics
	policy   *bluemonday.Policy
	log      zerolog.Logger
}

// Option configures a SignupForm.
type Option func(*SignupForm)

// WithMetrics records submit outcomes in m.
func WithMetrics(m *Metrics) Option {
	return func(c *SignupForm) {
		c.metrics = m
	}
}

// WithLogger sets the component's fallback logger. Request-scoped loggers
// take precedence.
func WithLogger(l zerolog.Logger) Option {
	return func(c *SignupForm) {
		c.log = l
	}
}

// New creates the component.
func New(sessions *SessionStore, catalog *i18n.Catalog, opts ...Option) *SignupForm {
	c := &SignupForm{
		sessions: sessions,
		catalog:  catalog,
		policy:   bluemonday.StrictPolicy(),
		log:      zerolog.Nop(),
	}
	c.Component = hxcmp.New[Props]("signupform", c)
	c.Sensitive()
	for _, opt := range opts {
		opt(c)
	}

	c.Action("submit", c.handleSubmit)
	c.Action("blur", c.handleBlur)
	c.Action("edit", c.handleEdit)
	c.Action("reload", c.handleReload)
	return c
}

// Hydrate resolves the session, starting a new one when the ID is missing
// or has expired.
func (c *SignupForm) Hydrate(ctx context.Context, props *Props) error {
	if props.SessionID != "" {
		if sess, ok := c.sessions.Get(props.SessionID); ok {
			props.Session = sess
			return nil
		}
		c.logger(ctx).Debug().Str("session", props.SessionID).Msg("session expired, starting a new one")
	}
	sess := c.sessions.Create()
	props.SessionID = sess.ID
	props.Session = sess
	return nil
}

// Render produces the component HTML.
func (c *SignupForm) Render(ctx context.Context, props Props) templ.Component {
	return c.view(props)
}

func (c *SignupForm) logger(ctx context.Context) *zerolog.Logger {
	if l := zerolog.Ctx(ctx); l.GetLevel() != zerolog.Disabled {
		return l
	}
	return &c.log
}

// stateFromRequest reads the posted form fields. Unknown subscription
// types are treated as unselected.
func stateFromRequest(r *http.Request) form.State {
	typ, _ := form.ParseSubscriptionType(r.FormValue(string(form.FieldType)))
	return form.State{
		FirstName:      r.FormValue(string(form.FieldFirstName)),
		LastName:       r.FormValue(string(form.FieldLastName)),
		Email:          r.FormValue(string(form.FieldEmail)),
		Terms:          r.FormValue(string(form.FieldTerms)) != "",
		Type:           typ,
		AdditionalInfo: r.FormValue(string(form.FieldAdditionalInfo)),
	}
}

func (c *SignupForm) handleEdit(ctx context.Context, props Props, r *http.Request) hxcmp.Result[Props] {
	props.Session.Form.Update(stateFromRequest(r))
	return hxcmp.OK(props)
}

func (c *SignupForm) handleBlur(ctx context.Context, props Props, r *http.Request) hxcmp.Result[Props] {
	name := hxcmp.TriggerName(r)
	if name == "" {
		name = r.FormValue("field")
	}
	field, ok := form.ParseField(name)
	if !ok {
		return hxcmp.Err(props, fmt.Errorf("%w: unknown field %q", hxcmp.ErrInvalidFormat, name))
	}

	f := props.Session.Form
	f.Update(stateFromRequest(r))
	f.Blur(field)
	return hxcmp.OK(props)
}

func (c *SignupForm) handleSubmit(ctx context.Context, props Props, r *http.Request) hxcmp.Result[Props] {
	f := props.Session.Form
	f.Update(stateFromRequest(r))

	outcome, err := f.Submit(ctx)
	switch {
	case errors.Is(err, form.ErrSubmitInProgress):
		c.metrics.ObserveOutcome(OutcomeConflict)
		return hxcmp.Skip[Props]().
			Header("HX-Reswap", hxcmp.SwapNone.String()).
			Status(http.StatusConflict)
	case errors.Is(err, form.ErrAlreadySubmitted):
		return hxcmp.OK(props)
	case err != nil:
		return hxcmp.Err(props, err)
	}

	c.metrics.ObserveOutcome(string(outcome))
	c.logger(ctx).Info().
		Str("session", props.SessionID).
		Str("outcome", string(outcome)).
		Msg("signup submitted")

	result := hxcmp.OK(props)
	switch outcome {
	case form.OutcomeSubmitted:
		result = result.Trigger(EventCompleted, map[string]any{"type": string(f.State().Type)})
	case form.OutcomeTransportError:
		tag := c.catalog.Locale(ctx)
		result = result.Flash(hxcmp.FlashError, c.catalog.T(tag, form.MsgGeneralMessage))
	}
	return result
}

func (c *SignupForm) handleReload(ctx context.Context, props Props, r *http.Request) hxcmp.Result[Props] {
	c.sessions.Discard(props.SessionID)
	return hxcmp.Reload[Props]()
}
