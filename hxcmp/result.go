package hxcmp

// Result[P] is returned from action handlers to control rendering and side effects.
//
// Result is a fluent builder that lets handlers specify flash messages,
// events, reloads, and custom headers without writing directly to the
// ResponseWriter. The runtime applies it after the handler returns, setting
// headers and calling Render as appropriate.
//
//	// Success - auto-render with updated props
//	return hxcmp.OK(props)
//
//	// Success with flash message
//	return hxcmp.OK(props).Flash(hxcmp.FlashSuccess, "Thanks for signing up")
//
//	// Domain failure routed to the registry's OnError
//	return hxcmp.Err(props, err)
//
//	// Discard client state with a full page reload
//	return hxcmp.Reload[Props]()
type Result[P any] struct {
	props       P
	err         error
	reload      bool
	flashes     []Flash
	trigger     string
	triggerData map[string]any
	headers     map[string]string
	status      int
	skip        bool
}

// OK creates a success result that will auto-render with the given props.
func OK[P any](props P) Result[P] {
	return Result[P]{props: props}
}

// Err creates an error result that passes the error to the OnError handler.
func Err[P any](props P, err error) Result[P] {
	return Result[P]{props: props, err: err}
}

// Skip creates a result that renders nothing. Headers and status still apply.
func Skip[P any]() Result[P] {
	return Result[P]{skip: true}
}

// Reload creates a result that forces a full page reload via HX-Refresh.
// Nothing is rendered; the browser requests the page again from scratch.
func Reload[P any]() Result[P] {
	return Result[P]{reload: true}
}

// Flash adds a flash message (toast notification) to the result.
//
// Flash messages are rendered as out-of-band swaps appended to the #toasts
// container. Only rendered results carry flashes.
func (r Result[P]) Flash(level, message string) Result[P] {
	r.flashes = append(r.flashes, Flash{Level: level, Message: message})
	return r
}

// Trigger emits an event via the HX-Trigger header.
//
//	return hxcmp.OK(props).Trigger("signup:completed", map[string]any{"type": "starter"})
func (r Result[P]) Trigger(event string, data ...map[string]any) Result[P] {
	r.trigger = event
	if len(data) > 0 {
		r.triggerData = data[0]
	}
	return r
}

// Header sets a custom response header.
func (r Result[P]) Header(key, value string) Result[P] {
	if r.headers == nil {
		r.headers = make(map[string]string)
	}
	r.headers[key] = value
	return r
}

// Status sets the HTTP status code. Zero means 200.
func (r Result[P]) Status(code int) Result[P] {
	r.status = code
	return r
}

// GetProps returns the props from the result.
func (r Result[P]) GetProps() P {
	return r.props
}

// GetErr returns the error from the result.
func (r Result[P]) GetErr() error {
	return r.err
}

// ShouldReload reports whether the result forces a full page reload.
func (r Result[P]) ShouldReload() bool {
	return r.reload
}

// GetFlashes returns the flash messages.
func (r Result[P]) GetFlashes() []Flash {
	return r.flashes
}

// GetTrigger returns the trigger event name.
func (r Result[P]) GetTrigger() string {
	return r.trigger
}

// GetTriggerData returns the trigger event data.
func (r Result[P]) GetTriggerData() map[string]any {
	return r.triggerData
}

// GetHeaders returns the response headers.
func (r Result[P]) GetHeaders() map[string]string {
	return r.headers
}

// GetStatus returns the HTTP status code (0 means not set, use default 200).
func (r Result[P]) GetStatus() int {
	return r.status
}

// ShouldSkip returns whether rendering is suppressed.
func (r Result[P]) ShouldSkip() bool {
	return r.skip
}
